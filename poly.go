package flat

// Box is a rectangle centered on the body's position.
type Box struct {
	w, h float64

	// local vertices, clockwise in screen space (y down)
	verts []Vector
}

func NewBoxShape(width, height float64) *Box {
	assert(width > 0 && height > 0, "box dimensions must be positive, got ", width, "x", height)

	left := -width / 2
	right := width / 2
	top := -height / 2
	bottom := height / 2

	return &Box{
		w: width,
		h: height,
		verts: []Vector{
			{left, top},
			{right, top},
			{right, bottom},
			{left, bottom},
		},
	}
}

func (*Box) Kind() ShapeKind {
	return ShapeBox
}

func (box *Box) Width() float64 {
	return box.w
}

func (box *Box) Height() float64 {
	return box.h
}

func (box *Box) Moment(mass float64) float64 {
	return MomentForBox(mass, box.w, box.h)
}

func (box *Box) Area() float64 {
	return box.w * box.h
}

func (*Box) sealed() {}

// PolyContainsPoint reports whether p lies inside or on the convex polygon.
// Works for either winding.
func PolyContainsPoint(verts []Vector, p Vector) bool {
	count := len(verts)
	var sign float64
	for i := 0; i < count; i++ {
		a := verts[i]
		b := verts[(i+1)%count]
		c := b.Sub(a).Cross(p.Sub(a))
		if c == 0 {
			continue
		}
		if sign == 0 {
			sign = c
		} else if (c > 0) != (sign > 0) {
			return false
		}
	}
	return true
}
