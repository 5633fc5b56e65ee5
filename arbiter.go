package flat

import "fmt"

// Arbiter records one overlapping pair found during a sub-step. The world buffers
// arbiters for the whole tick and replays them through the resolver once all
// sub-steps have run.
type Arbiter struct {
	a, b *Body

	// unit normal from a toward b, or zero for coincident circles
	n     Vector
	depth float64

	contacts [MaxContactsPerArbiter]Vector
	count    int

	UserData interface{}
}

func newArbiter(a, b *Body, info CollisionInfo) *Arbiter {
	return &Arbiter{
		a:     a,
		b:     b,
		n:     info.Normal,
		depth: info.Depth,
	}
}

func (arb *Arbiter) String() string {
	return fmt.Sprintf("Arbiter %v/%v n=%v depth=%.4f contacts=%d", arb.a, arb.b, arb.n, arb.depth, arb.count)
}

func (arb *Arbiter) Bodies() (*Body, *Body) {
	return arb.a, arb.b
}

func (arb *Arbiter) Normal() Vector {
	return arb.n
}

func (arb *Arbiter) Depth() float64 {
	return arb.depth
}

func (arb *Arbiter) Count() int {
	return arb.count
}

// Contacts returns a copy of the contact points in world space.
func (arb *Arbiter) Contacts() []Vector {
	contacts := make([]Vector, arb.count)
	copy(contacts, arb.contacts[:arb.count])
	return contacts
}

// Restitution is the smaller of the two bodies' coefficients.
func (arb *Arbiter) Restitution() float64 {
	if arb.a.e < arb.b.e {
		return arb.a.e
	}
	return arb.b.e
}

// Separate pushes the bodies apart along the normal. A static body stays put and the
// dynamic one takes the whole depth, otherwise each moves half.
func (arb *Arbiter) Separate() {
	a, b := arb.a, arb.b
	mtv := arb.n.Mult(arb.depth)

	switch {
	case a.static && b.static:
	case a.static:
		b.Translate(mtv)
	case b.static:
		a.Translate(mtv.Neg())
	default:
		half := mtv.Mult(0.5)
		a.Translate(half.Neg())
		b.Translate(half)
	}
}

func (arb *Arbiter) findContacts() {
	arb.count = 0
	for _, p := range FindContacts(arb.a, arb.b) {
		if arb.count == MaxContactsPerArbiter {
			break
		}
		arb.contacts[arb.count] = p
		arb.count++
	}
}

// ResolveFunc changes the velocities of an arbiter's bodies.
type ResolveFunc func(arb *Arbiter)

// ResolveRotational applies a restitution impulse at every contact point, with the
// angular response given by each body's moment. Impulses for all contacts are computed
// from the incoming velocities before any of them is applied.
func ResolveRotational(arb *Arbiter) {
	if arb.count == 0 {
		ResolveLinear(arb)
		return
	}

	a, b := arb.a, arb.b
	n := arb.n
	e := arb.Restitution()

	var impulses, r1s, r2s [MaxContactsPerArbiter]Vector
	var applied [MaxContactsPerArbiter]bool

	for i := 0; i < arb.count; i++ {
		r1 := arb.contacts[i].Sub(a.p)
		r2 := arb.contacts[i].Sub(b.p)

		vrn := relative_velocity(a, b, r1, r2).Dot(n)
		if vrn >= 0 {
			continue
		}

		r1n := r1.Perp().Dot(n)
		r2n := r2.Perp().Dot(n)
		denom := a.m_inv + b.m_inv + r1n*r1n*a.i_inv + r2n*r2n*b.i_inv
		if denom == 0 {
			continue
		}

		j := -(1 + e) * vrn / denom / float64(arb.count)
		impulses[i] = n.Mult(j)
		r1s[i] = r1
		r2s[i] = r2
		applied[i] = true
	}

	for i := 0; i < arb.count; i++ {
		if applied[i] {
			apply_impulses(a, b, r1s[i], r2s[i], impulses[i])
		}
	}
}

// ResolveLinear ignores contact points and rotation, exchanging impulse through the
// centers of mass only.
func ResolveLinear(arb *Arbiter) {
	a, b := arb.a, arb.b
	n := arb.n

	vrn := b.v.Sub(a.v).Dot(n)
	if vrn >= 0 {
		return
	}

	denom := a.m_inv + b.m_inv
	if denom == 0 {
		return
	}

	j := -(1 + arb.Restitution()) * vrn / denom
	apply_impulses(a, b, Vector{}, Vector{}, n.Mult(j))
}

func apply_impulses(a, b *Body, r1, r2, j Vector) {
	apply_impulse(a, j.Neg(), r1)
	apply_impulse(b, j, r2)
}

// Static bodies have zero inverse mass, but skipping them keeps their state untouched
// even by negative zero.
func apply_impulse(body *Body, j, r Vector) {
	if body.static {
		return
	}
	body.v = body.v.Add(j.Mult(body.m_inv))
	body.w += body.i_inv * r.Cross(j)
}

func relative_velocity(a, b *Body, r1, r2 Vector) Vector {
	v1_sum := a.v.Add(r1.Perp().Mult(a.w))
	v2_sum := b.v.Add(r2.Perp().Mult(b.w))
	return v2_sum.Sub(v1_sum)
}
