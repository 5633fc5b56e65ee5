package flat

import "math"

// MaxContactsPerArbiter bounds the manifold size.
const MaxContactsPerArbiter = 2

// ContactPrecision is the number of decimal digits distances are rounded to before
// two candidate contacts are treated as tied.
const ContactPrecision = 5

// CircleContacts returns the point on a's circumference facing b's center.
// Coincident centers give the zero vector.
func CircleContacts(a, b *Body) []Vector {
	return []Vector{CircleContactPoint(a.p, a.Radius(), b.p)}
}

func CircleContactPoint(centerA Vector, radiusA float64, centerB Vector) Vector {
	ab := centerB.Sub(centerA)
	if ab.IsZero() {
		return Vector{}
	}
	return centerA.Add(ab.Normalize().Mult(radiusA))
}

// PolyCircleContacts expects the box as a and the circle as b.
func PolyCircleContacts(a, b *Body) []Vector {
	return []Vector{PolyCircleContactPoint(a.TransformedVertices(), b.p)}
}

// PolyCircleContactPoint returns the point on the polygon outline closest to center.
func PolyCircleContactPoint(verts []Vector, center Vector) Vector {
	count := len(verts)
	minDistSq := math.Inf(1)
	var contact Vector
	for i := 0; i < count; i++ {
		p, distSq := center.ClosestPointOnSegment(verts[i], verts[(i+1)%count])
		if distSq < minDistSq {
			minDistSq = distSq
			contact = p
		}
	}
	return contact
}

func PolyContacts(a, b *Body) []Vector {
	return PolyContactPoints(a.TransformedVertices(), b.TransformedVertices())
}

// manifold collects the closest vertex/edge points, keeping two when their distances
// agree to ContactPrecision digits.
type manifold struct {
	minDistSq float64
	points    [MaxContactsPerArbiter]Vector
	count     int
}

func (m *manifold) push(p Vector, distSq float64) {
	if m.count > 0 && Round(distSq, ContactPrecision) == Round(m.minDistSq, ContactPrecision) {
		if m.count < MaxContactsPerArbiter && !p.Round(ContactPrecision).Equal(m.points[0].Round(ContactPrecision)) {
			m.points[m.count] = p
			m.count++
		}
		return
	}
	if m.count == 0 || distSq < m.minDistSq {
		m.minDistSq = distSq
		m.points[0] = p
		m.count = 1
	}
}

func (m *manifold) edges(verts, poly []Vector) {
	count := len(poly)
	for _, p := range verts {
		for i := 0; i < count; i++ {
			closest, distSq := p.ClosestPointOnSegment(poly[i], poly[(i+1)%count])
			m.push(closest, distSq)
		}
	}
}

// PolyContactPoints returns one or two points where the polygons touch: every vertex of
// each polygon is measured against every edge of the other and the nearest pairs win.
func PolyContactPoints(vertsA, vertsB []Vector) []Vector {
	var m manifold
	m.edges(vertsA, vertsB)
	m.edges(vertsB, vertsA)

	contacts := make([]Vector, m.count)
	copy(contacts, m.points[:m.count])
	return contacts
}
