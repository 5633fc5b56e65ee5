package flat

import (
	"fmt"
	"math"
)

// DefaultRestitution is the bounciness given to new bodies.
const DefaultRestitution = 0.5

type Body struct {
	id int

	shape Shape

	// mass and it's inverse
	m     float64
	m_inv float64

	// moment of inertia and it's inverse
	i     float64
	i_inv float64

	// position, velocity, force
	p Vector
	v Vector
	f Vector

	// angle and angular velocity (radians)
	a float64
	w float64

	// restitution
	e float64

	static bool

	// World space geometry, valid while dirty is false.
	transform Transform
	verts     []Vector
	bb        BB
	dirty     bool

	UserData interface{}

	world *World
}

func (b Body) String() string {
	return fmt.Sprint("Body ", b.id, " ", b.shape.Kind())
}

var bodyCur int = 0

// NewBody creates a body at position. Masses below 1 are raised to 1.
// Static bodies get zero inverse mass and moment.
func NewBody(position Vector, mass float64, shape Shape, static bool) *Body {
	assert(shape != nil, "body needs a shape")

	mass = math.Max(mass, 1)

	body := &Body{
		id:     bodyCur,
		shape:  shape,
		p:      position,
		e:      DefaultRestitution,
		static: static,
		dirty:  true,
	}
	bodyCur++

	body.m = mass
	body.i = shape.Moment(mass)
	if !static {
		body.m_inv = 1 / body.m
		body.i_inv = 1 / body.i
	}

	if shape.Kind() == ShapeBox {
		body.verts = make([]Vector, len(shape.(*Box).verts))
	}

	return body
}

func NewBox(position Vector, mass, width, height float64, static bool) *Body {
	return NewBody(position, mass, NewBoxShape(width, height), static)
}

func NewCircle(position Vector, mass, radius float64, static bool) *Body {
	return NewBody(position, mass, NewCircleShape(radius), static)
}

func (body *Body) Shape() Shape {
	return body.shape
}

func (body *Body) Kind() ShapeKind {
	return body.shape.Kind()
}

// Radius is the circle radius, or 0 for boxes.
func (body *Body) Radius() float64 {
	if circle, ok := body.shape.(*Circle); ok {
		return circle.r
	}
	return 0
}

func (body *Body) IsStatic() bool {
	return body.static
}

func (body *Body) Mass() float64 {
	return body.m
}

func (body *Body) InverseMass() float64 {
	return body.m_inv
}

func (body *Body) Moment() float64 {
	return body.i
}

func (body *Body) InverseMoment() float64 {
	return body.i_inv
}

func (body *Body) Restitution() float64 {
	return body.e
}

// SetRestitution clamps e to [0, 1].
func (body *Body) SetRestitution(e float64) {
	body.e = Clamp01(e)
}

func (body *Body) Position() Vector {
	return body.p
}

func (body *Body) SetPosition(position Vector) {
	body.p = position
	body.dirty = true
}

// Translate moves the body by delta.
func (body *Body) Translate(delta Vector) {
	body.p = body.p.Add(delta)
	body.dirty = true
}

func (body *Body) Angle() float64 {
	return body.a
}

func (body *Body) SetAngle(angle float64) {
	body.a = angle
	body.dirty = true
}

// Rotate adds radians to the body's angle.
func (body *Body) Rotate(radians float64) {
	body.a += radians
	body.dirty = true
}

func (body *Body) Velocity() Vector {
	return body.v
}

func (body *Body) SetVelocity(v Vector) {
	body.v = v
}

func (body *Body) AngularVelocity() float64 {
	return body.w
}

func (body *Body) SetAngularVelocity(angularVelocity float64) {
	body.w = angularVelocity
}

func (body *Body) Force() Vector {
	return body.f
}

// ApplyForce accumulates force until the next integration.
func (body *Body) ApplyForce(force Vector) {
	body.f = body.f.Add(force)
}

// World returns the world the body was added to, or nil once removed.
func (body *Body) World() *World {
	return body.world
}

// KineticEnergy is the linear plus rotational energy. Static bodies have none.
func (body *Body) KineticEnergy() float64 {
	if body.static {
		return 0
	}
	vsq := body.v.Dot(body.v)
	wsq := body.w * body.w
	return 0.5 * (vsq*body.m + wsq*body.i)
}

// Integrate advances the body by dt under gravity. Static bodies do not move.
func (body *Body) Integrate(dt float64, gravity Vector) {
	if body.static {
		body.f = Vector{}
		return
	}

	acceleration := body.f.Mult(1 / body.m).Add(gravity)
	body.v = body.v.Add(acceleration.Mult(dt))
	body.p = body.p.Add(body.v.Mult(dt))
	body.a += body.w * dt
	body.dirty = true

	body.f = Vector{}
}

func (body *Body) updateTransform() {
	if !body.dirty {
		return
	}

	body.transform = NewTransformRigid(body.p, body.a)

	switch shape := body.shape.(type) {
	case *Box:
		for i, v := range shape.verts {
			body.verts[i] = body.transform.Point(v)
		}
		body.bb = NewBBForPoints(body.verts)
	case *Circle:
		body.bb = NewBBForCircle(body.p, shape.r)
	default:
		panic("Unknown shape type")
	}

	body.dirty = false
}

// TransformedVertices returns the world space vertices of a box, nil for circles.
// The slice is owned by the body and must not be modified.
func (body *Body) TransformedVertices() []Vector {
	body.updateTransform()
	return body.verts
}

// BB returns the world space bounding box.
func (body *Body) BB() BB {
	body.updateTransform()
	return body.bb
}

// WorldToLocal maps a world space point into the body's unrotated frame.
func (body *Body) WorldToLocal(point Vector) Vector {
	body.updateTransform()
	return NewTransformRigidInverse(body.transform).Point(point)
}

// ContainsPoint reports whether the world space point p is inside the body.
func (body *Body) ContainsPoint(p Vector) bool {
	if !body.BB().ContainsVect(p) {
		return false
	}
	switch shape := body.shape.(type) {
	case *Circle:
		return p.DistanceSq(body.p) <= shape.r*shape.r
	case *Box:
		local := body.WorldToLocal(p)
		return math.Abs(local.X) <= shape.w/2 && math.Abs(local.Y) <= shape.h/2
	}
	return false
}
