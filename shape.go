package flat

// ShapeKind tags the concrete type behind a Shape.
type ShapeKind int

const (
	ShapeCircle ShapeKind = iota
	ShapeBox
	shapeKindNum
)

func (k ShapeKind) String() string {
	switch k {
	case ShapeCircle:
		return "circle"
	case ShapeBox:
		return "box"
	}
	return "unknown"
}

// Shape is the immutable local-space geometry of a body.
// The only implementations are *Circle and *Box.
type Shape interface {
	Kind() ShapeKind
	// Moment returns the moment of inertia for the given mass.
	Moment(mass float64) float64
	// Area lets callers derive a mass from a density.
	Area() float64

	sealed()
}

// MomentForCircle is the moment of inertia of a solid disk.
func MomentForCircle(m, r float64) float64 {
	return 0.5 * m * r * r
}

// MomentForBox is the moment of inertia of a solid rectangle about its center.
func MomentForBox(m, width, height float64) float64 {
	return m * (width*width + height*height) / 12.0
}
