package flat

import "math"

type Circle struct {
	r float64
}

func NewCircleShape(radius float64) *Circle {
	assert(radius > 0, "circle radius must be positive, got ", radius)
	return &Circle{r: radius}
}

func (*Circle) Kind() ShapeKind {
	return ShapeCircle
}

func (circle *Circle) Radius() float64 {
	return circle.r
}

func (circle *Circle) Moment(mass float64) float64 {
	return MomentForCircle(mass, circle.r)
}

func (circle *Circle) Area() float64 {
	return math.Pi * circle.r * circle.r
}

func (*Circle) sealed() {}
