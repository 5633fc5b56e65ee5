package flat

// Draw flags
const (
	DRAW_SHAPES           = 1 << 0
	DRAW_BOUNDING_BOXES   = 1 << 1
	DRAW_COLLISION_POINTS = 1 << 2
)

// 16 bytes
type FColor struct {
	R, G, B, A float32
}

// Drawer renders world geometry. All coordinates are in world space, the implementation
// owns the camera.
type Drawer interface {
	DrawCircle(pos Vector, angle, radius float64, outline, fill FColor, data interface{})
	DrawSegment(a, b Vector, fill FColor, data interface{})
	DrawPolygon(verts []Vector, outline, fill FColor, data interface{})
	DrawDot(size float64, pos Vector, fill FColor, data interface{})

	Flags() int
	OutlineColor() FColor
	BodyColor(body *Body, data interface{}) FColor
	CollisionPointColor() FColor
	Data() interface{}
}

func DrawBody(body *Body, options Drawer) {
	data := options.Data()

	outline := options.OutlineColor()
	fill := options.BodyColor(body, data)

	switch shape := body.shape.(type) {
	case *Circle:
		options.DrawCircle(body.p, body.a, shape.r, outline, fill, data)
	case *Box:
		options.DrawPolygon(body.TransformedVertices(), outline, fill, data)
	default:
		panic("Unknown shape type")
	}
}

func DrawBB(bb BB, options Drawer) {
	verts := []Vector{{bb.L, bb.B}, {bb.R, bb.B}, {bb.R, bb.T}, {bb.L, bb.T}}
	color := options.OutlineColor()
	data := options.Data()
	for i := range verts {
		options.DrawSegment(verts[i], verts[(i+1)%len(verts)], color, data)
	}
}

// DrawWorld draws every body, then the contacts of the last tick, as selected by Flags.
func DrawWorld(w *World, options Drawer) {
	flags := options.Flags()

	w.EachBody(func(body *Body) {
		if flags&DRAW_SHAPES != 0 {
			DrawBody(body, options)
		}
		if flags&DRAW_BOUNDING_BOXES != 0 {
			DrawBB(body.BB(), options)
		}
	})

	if flags&DRAW_COLLISION_POINTS != 0 {
		color := options.CollisionPointColor()
		data := options.Data()

		for _, arb := range w.arbiters {
			for i := 0; i < arb.count; i++ {
				p := arb.contacts[i]
				options.DrawDot(4, p, color, data)
				options.DrawSegment(p, p.Add(arb.n.Mult(0.5)), color, data)
			}
		}
	}
}
