package main

import (
	"math"
	"math/rand"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/flatphys/flat"
)

// spawner builds the random bodies the demo drops into the world.
type spawner struct {
	rng    *rand.Rand
	bounds flat.Vector
}

func newSpawner(seed int64, bounds flat.Vector) *spawner {
	return &spawner{rng: rand.New(rand.NewSource(seed)), bounds: bounds}
}

// randRange returns a value in [lo, hi) / div, in steps of 1/div.
func (s *spawner) randRange(lo, hi int, div float64) float64 {
	return float64(lo+s.rng.Intn(hi-lo)) / div
}

func (s *spawner) color() colorful.Color {
	return colorful.Hsv(s.rng.Float64()*360, 0.55+s.rng.Float64()*0.35, 0.95)
}

func (s *spawner) decorate(body *flat.Body) *flat.Body {
	body.SetRestitution(s.rng.Float64())
	body.UserData = s.color()
	return body
}

// box is 0.5 to 4 meters a side, weighing its area. Bodies never weigh less than 1.
func (s *spawner) box(pos flat.Vector) *flat.Body {
	width := s.randRange(5, 40, 10)
	height := s.randRange(5, 40, 10)
	shape := flat.NewBoxShape(width, height)
	return s.decorate(flat.NewBody(pos, shape.Area(), shape, false))
}

// circle has a radius of 0.5 to 2 meters, weighing its radius squared.
func (s *spawner) circle(pos flat.Vector) *flat.Body {
	radius := s.randRange(5, 20, 10)
	return s.decorate(flat.NewCircle(pos, radius*radius, radius, false))
}

// scatter makes n small bodies at random places, one in five a rotated box.
func (s *spawner) scatter(n int) []*flat.Body {
	bodies := make([]*flat.Body, 0, n)
	for i := 0; i < n; i++ {
		pos := flat.Vector{X: s.rng.Float64() * s.bounds.X, Y: s.rng.Float64() * s.bounds.Y}
		mass := s.randRange(10, 20, 10)

		var body *flat.Body
		if s.rng.Float64() <= 0.2 {
			body = flat.NewBox(pos, mass, s.randRange(10, 20, 20), s.randRange(10, 20, 20), false)
			body.SetAngle(s.rng.Float64() * 2 * math.Pi)
		} else {
			body = flat.NewCircle(pos, mass, s.randRange(10, 20, 20), false)
		}
		bodies = append(bodies, s.decorate(body))
	}
	return bodies
}
