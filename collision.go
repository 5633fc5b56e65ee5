package flat

import (
	"math"
)

// CollisionInfo is the minimum translation vector between two overlapping shapes.
// Normal points from the first shape toward the second. It is unit length, or zero
// when the shapes share a center and no direction can be derived.
type CollisionInfo struct {
	Normal Vector
	Depth  float64
}

// MTV returns the translation that moves the second shape out of the first.
func (info CollisionInfo) MTV() Vector {
	return info.Normal.Mult(info.Depth)
}

func projectVertices(verts []Vector, axis Vector) (min, max float64) {
	min = math.Inf(1)
	max = math.Inf(-1)
	for _, v := range verts {
		proj := axis.Dot(v)
		if proj < min {
			min = proj
		}
		if proj > max {
			max = proj
		}
	}
	return min, max
}

// projectCircle projects onto an axis of any length, scaling the radius with it.
func projectCircle(center Vector, radius float64, axis Vector) (min, max float64) {
	c := axis.Dot(center)
	r := radius * axis.Length()
	return c - r, c + r
}

// closestVertex returns the polygon vertex nearest to p.
func closestVertex(verts []Vector, p Vector) Vector {
	minDist := math.Inf(1)
	var result Vector
	for _, v := range verts {
		if d := v.DistanceSq(p); d < minDist {
			minDist = d
			result = v
		}
	}
	return result
}

// testAxis projects both shapes on axis. It returns false if the axis separates them,
// otherwise it keeps axis in normal when its overlap is below depth. Overlaps are
// compared as measured on the unnormalized axis, so ties keep the axis found first.
func testAxis(axis Vector, projA, projB func(axis Vector) (float64, float64), normal *Vector, depth *float64) bool {
	minA, maxA := projA(axis)
	minB, maxB := projB(axis)
	if minA >= maxB || minB >= maxA {
		return false
	}

	axisDepth := math.Min(maxB-minA, maxA-minB)
	if axisDepth < *depth {
		*depth = axisDepth
		*normal = axis
	}
	return true
}

// satAxes runs testAxis over the edge perpendiculars of poly, stopping at the first
// separating one.
func satAxes(poly []Vector, projA, projB func(axis Vector) (float64, float64), normal *Vector, depth *float64) bool {
	count := len(poly)
	for i := 0; i < count; i++ {
		axis := poly[(i+1)%count].Sub(poly[i]).Perp()
		if axis.IsZero() {
			// degenerate edge, no direction to test
			continue
		}
		if !testAxis(axis, projA, projB, normal, depth) {
			return false
		}
	}
	return true
}

// orient turns the winning raw axis into a unit normal pointing along dir, and its
// overlap into a distance.
func orient(axis Vector, depth float64, dir Vector) CollisionInfo {
	if axis.Dot(dir) < 0 {
		axis = axis.Neg()
	}
	return CollisionInfo{Normal: axis.Normalize(), Depth: depth / axis.Length()}
}

// IntersectPolygons runs the separating axis test over the edge perpendiculars of both
// convex polygons, A's first. The axis of least raw overlap wins and is normalized
// afterwards, oriented from centerA toward centerB.
func IntersectPolygons(vertsA, vertsB []Vector, centerA, centerB Vector) (CollisionInfo, bool) {
	assert(len(vertsA) > 0 && len(vertsB) > 0, "polygon has no vertices")

	normal := Vector{}
	depth := math.Inf(1)

	projA := func(axis Vector) (float64, float64) { return projectVertices(vertsA, axis) }
	projB := func(axis Vector) (float64, float64) { return projectVertices(vertsB, axis) }

	if !satAxes(vertsA, projA, projB, &normal, &depth) {
		return CollisionInfo{}, false
	}
	if !satAxes(vertsB, projA, projB, &normal, &depth) {
		return CollisionInfo{}, false
	}
	return orient(normal, depth, centerB.Sub(centerA)), true
}

// IntersectPolygonCircle tests a convex polygon against a circle. Besides the polygon's
// edge normals it tests the axis toward the polygon vertex closest to the circle, which
// separates circles sitting off a corner. The normal points from polyCenter toward the
// circle.
func IntersectPolygonCircle(verts []Vector, polyCenter, circleCenter Vector, radius float64) (CollisionInfo, bool) {
	assert(len(verts) > 0, "polygon has no vertices")

	normal := Vector{}
	depth := math.Inf(1)

	projPoly := func(axis Vector) (float64, float64) { return projectVertices(verts, axis) }
	projCircle := func(axis Vector) (float64, float64) { return projectCircle(circleCenter, radius, axis) }

	if !satAxes(verts, projPoly, projCircle, &normal, &depth) {
		return CollisionInfo{}, false
	}

	axis := closestVertex(verts, circleCenter).Sub(circleCenter)
	if !axis.IsZero() && !testAxis(axis, projPoly, projCircle, &normal, &depth) {
		return CollisionInfo{}, false
	}
	return orient(normal, depth, circleCenter.Sub(polyCenter)), true
}

// IntersectCircles reports overlap of two circles. Coincident centers give a zero normal.
func IntersectCircles(centerA Vector, radiusA float64, centerB Vector, radiusB float64) (CollisionInfo, bool) {
	distance := centerA.Distance(centerB)
	radii := radiusA + radiusB
	if distance >= radii {
		return CollisionInfo{}, false
	}

	return CollisionInfo{
		Normal: centerB.Sub(centerA).Normalize(),
		Depth:  radii - distance,
	}, true
}

type CollisionFunc func(a, b *Body) (CollisionInfo, bool)

type ContactFunc func(a, b *Body) []Vector

func CircleToCircle(a, b *Body) (CollisionInfo, bool) {
	return IntersectCircles(a.p, a.Radius(), b.p, b.Radius())
}

func PolyToPoly(a, b *Body) (CollisionInfo, bool) {
	return IntersectPolygons(a.TransformedVertices(), b.TransformedVertices(), a.p, b.p)
}

// PolyToCircle expects the box as a and the circle as b.
func PolyToCircle(a, b *Body) (CollisionInfo, bool) {
	return IntersectPolygonCircle(a.TransformedVertices(), a.p, b.p, b.Radius())
}

type collisionEntry struct {
	collide CollisionFunc
	contact ContactFunc
	// The functions take their arguments in the opposite order, so the bodies are
	// swapped on the way in and the normal negated on the way out.
	swap bool
}

// Indexed by [kind of a][kind of b].
var builtinCollisionFuncs = [shapeKindNum][shapeKindNum]collisionEntry{
	ShapeCircle: {
		ShapeCircle: {CircleToCircle, CircleContacts, false},
		ShapeBox:    {PolyToCircle, PolyCircleContacts, true},
	},
	ShapeBox: {
		ShapeCircle: {PolyToCircle, PolyCircleContacts, false},
		ShapeBox:    {PolyToPoly, PolyContacts, false},
	},
}

// Collide runs the narrow phase for a pair of bodies. The normal points from a toward b.
func Collide(a, b *Body) (CollisionInfo, bool) {
	entry := builtinCollisionFuncs[a.Kind()][b.Kind()]
	if !entry.swap {
		return entry.collide(a, b)
	}

	info, ok := entry.collide(b, a)
	if ok {
		info.Normal = info.Normal.Neg()
	}
	return info, ok
}

// FindContacts returns the world space contact points of two overlapping bodies.
func FindContacts(a, b *Body) []Vector {
	entry := builtinCollisionFuncs[a.Kind()][b.Kind()]
	if entry.swap {
		return entry.contact(b, a)
	}
	return entry.contact(a, b)
}
