package flat

import "fmt"

func assert(truth bool, msg ...interface{}) {
	if !truth {
		panic(fmt.Sprint(append([]interface{}{"Assertion failed: "}, msg...)...))
	}
}
