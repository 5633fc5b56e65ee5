// Package flat is a small 2D rigid body physics engine for circles and boxes.
//
// A World integrates its bodies at a fixed tick rate split into sub-steps, culls
// pairs by bounding box, detects overlap with the separating axis test, pushes
// overlapping bodies apart and then applies restitution impulses once per tick.
package flat
