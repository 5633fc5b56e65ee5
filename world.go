package flat

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// PostSolveFunc is called for every arbiter of a tick once velocities are resolved.
// Bodies added or removed from inside it take effect after the tick.
type PostSolveFunc func(w *World, arb *Arbiter)

// World owns an ordered set of bodies and steps them.
type World struct {
	bodies []*Body

	// changes requested while the world is locked
	pendingAdd    []*Body
	pendingRemove map[*Body]struct{}
	locked        int

	// arbiters of the last tick
	arbiters []*Arbiter

	gravity Vector
	voidY   float64

	tps         int
	subSteps    int
	maxSubSteps int
	stepBudget  time.Duration

	resolve   ResolveFunc
	postSolve PostSolveFunc

	logger *slog.Logger

	// telemetry
	frames    int
	fps       int
	fpsStamp  time.Time
	lastStep  time.Duration
	stepCount uint64

	now func() time.Time
}

// Stats is a snapshot of world telemetry.
type Stats struct {
	Bodies     int
	FPS        int
	SubSteps   int
	Collisions int
	LastStep   time.Duration
	Steps      uint64
	// total kinetic energy of the dynamic bodies
	Energy float64
}

// NewWorld creates an empty world. Bodies from cfg.Scene are not added, see LoadScene.
func NewWorld(cfg Config) (*World, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	resolve, _ := cfg.ResolveFunc()

	w := &World{
		pendingRemove: map[*Body]struct{}{},
		gravity:       cfg.Gravity,
		voidY:         cfg.VoidY,
		tps:           cfg.TicksPerSecond,
		subSteps:      cfg.SubSteps,
		maxSubSteps:   cfg.MaxSubSteps,
		stepBudget:    cfg.StepBudget,
		resolve:       resolve,
		logger:        slog.Default(),
		now:           time.Now,
	}
	w.fpsStamp = w.now()
	return w, nil
}

func (w *World) SetLogger(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	w.logger = logger
}

func (w *World) Gravity() Vector {
	return w.gravity
}

func (w *World) SetGravity(gravity Vector) {
	w.gravity = gravity
}

// SetResolver replaces the velocity resolver. nil restores ResolveRotational.
func (w *World) SetResolver(resolve ResolveFunc) {
	if resolve == nil {
		resolve = ResolveRotational
	}
	w.resolve = resolve
}

func (w *World) SetPostSolve(postSolve PostSolveFunc) {
	w.postSolve = postSolve
}

func (w *World) VoidY() float64 {
	return w.voidY
}

func (w *World) SetVoidY(y float64) {
	w.voidY = y
}

func (w *World) TicksPerSecond() int {
	return w.tps
}

func (w *World) SubSteps() int {
	return w.subSteps
}

// SetSubSteps sets the sub-step count Update starts from, clamped to [1, MaxSubSteps].
func (w *World) SetSubSteps(n int) {
	w.subSteps = clampSubSteps(n, w.maxSubSteps)
}

func clampSubSteps(n, max int) int {
	if n > max {
		n = max
	}
	if n < 1 {
		n = 1
	}
	return n
}

func (w *World) IsLocked() bool {
	return w.locked > 0
}

func (w *World) lock() {
	w.locked++
}

func (w *World) unlock() {
	w.locked--
	assert(w.locked >= 0, "World lock underflow")

	if w.locked != 0 {
		return
	}

	for _, body := range w.pendingAdd {
		w.bodies = append(w.bodies, body)
	}
	w.pendingAdd = w.pendingAdd[:0]

	if len(w.pendingRemove) > 0 {
		w.compact()
	}
}

// compact drops every pending removal in one pass, keeping the order of the rest.
func (w *World) compact() {
	kept := w.bodies[:0]
	for _, body := range w.bodies {
		if _, ok := w.pendingRemove[body]; ok {
			body.world = nil
			continue
		}
		kept = append(kept, body)
	}
	for i := len(kept); i < len(w.bodies); i++ {
		w.bodies[i] = nil
	}
	w.bodies = kept

	for body := range w.pendingRemove {
		delete(w.pendingRemove, body)
	}
}

// AddBody adds body to the world. While the world is stepping the body is appended
// after the current tick.
func (w *World) AddBody(body *Body) *Body {
	assert(body.world == nil, "You have already added this body to a world. You must not add it a second time.")
	body.world = w

	if w.IsLocked() {
		w.pendingAdd = append(w.pendingAdd, body)
		return body
	}
	w.bodies = append(w.bodies, body)
	return body
}

// RemoveBody removes body from the world. While the world is stepping the removal is
// deferred until the tick completes.
func (w *World) RemoveBody(body *Body) {
	assert(body.world == w, "Cannot remove a body that was not added to the world. (removed twice maybe?)")

	w.pendingRemove[body] = struct{}{}
	if !w.IsLocked() {
		w.compact()
	}
}

// Bodies returns the bodies in insertion order. The slice is a copy.
func (w *World) Bodies() []*Body {
	bodies := make([]*Body, len(w.bodies))
	copy(bodies, w.bodies)
	return bodies
}

// EachBody calls f for every body in order. Bodies added or removed by f take effect
// once it returns.
func (w *World) EachBody(f func(body *Body)) {
	w.lock()
	defer w.unlock()
	for _, body := range w.bodies {
		f(body)
	}
}

func (w *World) BodyCount() int {
	return len(w.bodies)
}

// Arbiters returns the collisions found during the last tick.
func (w *World) Arbiters() []*Arbiter {
	return w.arbiters
}

// LoadScene builds every body of scene and adds it. It returns the bodies in scene
// order. Nothing is added if any body fails to build.
func (w *World) LoadScene(scene Scene) ([]*Body, error) {
	bodies := make([]*Body, 0, len(scene.Bodies))
	for i, sb := range scene.Bodies {
		body, err := sb.Body()
		if err != nil {
			return nil, fmt.Errorf("scene body %d: %w", i, err)
		}
		bodies = append(bodies, body)
	}
	for _, body := range bodies {
		w.AddBody(body)
	}
	w.logger.Debug("scene loaded", "bodies", len(bodies))
	return bodies, nil
}

// Step advances the world by one tick of 1/ticksPerSecond seconds, split into subSteps
// integrations. Overlaps are separated as soon as they are found, velocities are
// resolved once for the whole tick.
func (w *World) Step(ticksPerSecond, subSteps int) {
	if ticksPerSecond <= 0 || subSteps <= 0 {
		return
	}

	w.stepCount++
	dt := 1 / float64(ticksPerSecond*subSteps)
	gravity := w.gravity
	arbiters := make([]*Arbiter, 0, len(w.arbiters))

	w.lock()
	{
		bodies := w.bodies
		for s := 0; s < subSteps; s++ {
			for _, body := range bodies {
				body.Integrate(dt, gravity)
			}
			arbiters = w.collide(bodies, arbiters)
		}
		w.arbiters = arbiters

		resolve := w.resolve
		for _, arb := range arbiters {
			resolve(arb)
		}

		if w.postSolve != nil {
			for _, arb := range arbiters {
				w.postSolve(w, arb)
			}
		}

		for _, body := range bodies {
			if body.p.Y > w.voidY {
				if _, ok := w.pendingRemove[body]; !ok {
					w.logger.Debug("body fell out of the world", "body", body.id, "y", body.p.Y)
					w.RemoveBody(body)
				}
			}
		}
	}
	w.unlock()
}

// collide tests every unordered pair once, separates what overlaps and buffers an
// arbiter for it.
func (w *World) collide(bodies []*Body, arbiters []*Arbiter) []*Arbiter {
	count := len(bodies)
	for i := 0; i < count-1; i++ {
		a := bodies[i]
		for j := i + 1; j < count; j++ {
			b := bodies[j]
			if a.static && b.static {
				continue
			}
			if !a.BB().Intersects(b.BB()) {
				continue
			}

			info, ok := Collide(a, b)
			if !ok {
				continue
			}

			arb := newArbiter(a, b, info)
			arb.Separate()
			arb.findContacts()
			arbiters = append(arbiters, arb)
		}
	}
	return arbiters
}

// Update runs one frame: a Step at the configured rate with the current sub-step count,
// then adapts the sub-step count to the time it took.
func (w *World) Update() {
	start := w.now()
	w.Step(w.tps, w.subSteps)
	end := w.now()

	w.lastStep = end.Sub(start)
	w.adaptSubSteps(w.lastStep)

	w.frames++
	if end.Sub(w.fpsStamp) >= time.Second {
		w.fps = w.frames
		w.frames = 0
		w.fpsStamp = end
	}
}

// adaptSubSteps adds a sub-step when the last tick used less than half of the budget
// and drops one when it went over. A zero budget disables adaptation.
func (w *World) adaptSubSteps(elapsed time.Duration) {
	if w.stepBudget <= 0 {
		return
	}

	n := w.subSteps
	switch {
	case elapsed > w.stepBudget:
		n--
	case elapsed < w.stepBudget/2:
		n++
	}
	n = clampSubSteps(n, w.maxSubSteps)

	if n != w.subSteps {
		w.logger.Debug("sub-steps adapted", "from", w.subSteps, "to", n, "elapsed", elapsed)
		w.subSteps = n
	}
}

func (w *World) Stats() Stats {
	stats := Stats{
		Bodies:     len(w.bodies),
		FPS:        w.fps,
		SubSteps:   w.subSteps,
		Collisions: len(w.arbiters),
		LastStep:   w.lastStep,
		Steps:      w.stepCount,
	}
	w.EachBody(func(body *Body) {
		stats.Energy += body.KineticEnergy()
	})
	return stats
}

// LogStats writes the current Stats at info level.
func (w *World) LogStats(ctx context.Context) {
	stats := w.Stats()
	w.logger.InfoContext(ctx, "world stats",
		"fps", stats.FPS,
		"bodies", stats.Bodies,
		"sub_steps", stats.SubSteps,
		"collisions", stats.Collisions,
		"last_step", stats.LastStep,
		"energy", stats.Energy,
	)
}
