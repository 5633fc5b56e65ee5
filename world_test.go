package flat

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"math"
	"strings"
	"testing"
	"time"
)

func newTestWorld(t *testing.T, configure func(cfg *Config)) *World {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Scene = Scene{}
	if configure != nil {
		configure(&cfg)
	}
	w, err := NewWorld(cfg)
	if err != nil {
		t.Fatal(err)
	}
	return w
}

func TestNewWorld_InvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Resolver = "verlet"
	if _, err := NewWorld(cfg); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("got %v, want ErrInvalidConfig", err)
	}
}

func TestWorld_AddRemove(t *testing.T) {
	w := newTestWorld(t, nil)
	a := w.AddBody(NewCircle(Vector{}, 1, 1, false))
	b := w.AddBody(NewCircle(Vector{5, 0}, 1, 1, false))
	c := w.AddBody(NewCircle(Vector{10, 0}, 1, 1, false))

	if a.World() != w {
		t.Error("body does not know its world")
	}

	w.RemoveBody(b)
	bodies := w.Bodies()
	if len(bodies) != 2 || bodies[0] != a || bodies[1] != c {
		t.Errorf("bodies after removal %v", bodies)
	}
	if b.World() != nil {
		t.Error("removed body still has a world")
	}

	// a removed body can be added again
	w.AddBody(b)
	if w.BodyCount() != 3 || w.Bodies()[2] != b {
		t.Errorf("re-added body not appended: %v", w.Bodies())
	}
}

func TestWorld_AddTwicePanics(t *testing.T) {
	w := newTestWorld(t, nil)
	body := w.AddBody(NewCircle(Vector{}, 1, 1, false))

	defer func() {
		if recover() == nil {
			t.Error("Expected panic adding a body twice")
		}
	}()
	w.AddBody(body)
}

func TestWorld_VoidRemoval(t *testing.T) {
	w := newTestWorld(t, func(cfg *Config) { cfg.VoidY = 10 })

	falling := w.AddBody(NewCircle(Vector{0, 9.99}, 1, 0.5, false))
	falling.SetVelocity(Vector{0, 5})
	resting := w.AddBody(NewCircle(Vector{5, 0}, 1, 0.5, false))

	w.Step(60, 5)

	if w.BodyCount() != 1 || w.Bodies()[0] != resting {
		t.Errorf("bodies after step %v", w.Bodies())
	}
	if falling.World() != nil {
		t.Error("void body still attached")
	}
}

func TestWorld_DeferredChangesInPostSolve(t *testing.T) {
	w := newTestWorld(t, func(cfg *Config) { cfg.Gravity = Vector{} })

	a := w.AddBody(NewCircle(Vector{0, 0}, 1, 1, false))
	b := w.AddBody(NewCircle(Vector{1.5, 0}, 1, 1, false))
	var spawned *Body

	calls := 0
	w.SetPostSolve(func(w *World, arb *Arbiter) {
		calls++
		if !w.IsLocked() {
			t.Error("world not locked during post-solve")
		}
		_, second := arb.Bodies()
		w.RemoveBody(second)
		spawned = w.AddBody(NewCircle(Vector{20, 0}, 1, 1, false))

		if w.BodyCount() != 2 {
			t.Errorf("body count changed mid tick: %d", w.BodyCount())
		}
	})

	w.Step(60, 1)

	if calls != 1 {
		t.Fatalf("post-solve called %d times", calls)
	}
	bodies := w.Bodies()
	if len(bodies) != 2 || bodies[0] != a || bodies[1] != spawned {
		t.Errorf("bodies after tick %v", bodies)
	}
	if b.World() != nil {
		t.Error("removed body still attached")
	}
	if w.IsLocked() {
		t.Error("world still locked")
	}
}

func TestWorld_StaticPairsNeverCollide(t *testing.T) {
	w := newTestWorld(t, nil)
	a := w.AddBody(NewBox(Vector{0, 0}, 1, 2, 2, true))
	b := w.AddBody(NewBox(Vector{0.5, 0}, 1, 2, 2, true))

	w.Step(60, 5)

	if len(w.Arbiters()) != 0 {
		t.Errorf("static pair produced %d arbiters", len(w.Arbiters()))
	}
	if !a.Position().Equal(Vector{0, 0}) || !b.Position().Equal(Vector{0.5, 0}) {
		t.Error("static bodies moved")
	}
}

func TestWorld_StaticBodyInvariant(t *testing.T) {
	w := newTestWorld(t, nil)
	ground := w.AddBody(NewBox(Vector{0, 10}, 1, 20, 1, true))
	ground.SetAngle(0.05)
	for i := 0; i < 5; i++ {
		w.AddBody(NewCircle(Vector{float64(i) - 2, 9}, 1, 0.6, false))
		w.AddBody(NewBox(Vector{float64(i) - 2.5, 8}, 2, 0.8, 0.8, false))
	}

	p, a, v, av := ground.Position(), ground.Angle(), ground.Velocity(), ground.AngularVelocity()
	collided := false
	for i := 0; i < 60; i++ {
		w.Step(60, 5)
		collided = collided || len(w.Arbiters()) > 0
	}

	if !collided {
		t.Fatal("nothing collided")
	}
	if ground.Position() != p || ground.Angle() != a || ground.Velocity() != v || ground.AngularVelocity() != av {
		t.Errorf("static ground changed: p=%v a=%v v=%v w=%v", ground.Position(), ground.Angle(), ground.Velocity(), ground.AngularVelocity())
	}
}

func TestWorld_Resting(t *testing.T) {
	w := newTestWorld(t, nil)
	w.AddBody(NewBox(Vector{0, 10}, 1, 20, 1, true))
	box := w.AddBody(NewBox(Vector{0, 8.9}, 1, 1, 1, false))

	for i := 0; i < 120; i++ {
		w.Step(60, 5)
	}

	if box.World() != w {
		t.Fatal("box fell out of the world")
	}
	// the ground's top face is at 9.5
	if y := box.Position().Y; y < 8.5 || y > 9.1 {
		t.Errorf("box center at %v, want it resting near 9", y)
	}
	if math.Abs(box.Angle()) > 0.1 {
		t.Errorf("box tipped over: %v", box.Angle())
	}
}

func TestWorld_StepSubStepInvariance(t *testing.T) {
	for _, subSteps := range []int{1, 3, 10} {
		w := newTestWorld(t, nil)
		body := w.AddBody(NewCircle(Vector{}, 1, 1, false))
		for i := 0; i < 60; i++ {
			w.Step(60, subSteps)
		}
		if math.Abs(body.Velocity().Y-9.8) > 1e-9 {
			t.Errorf("subSteps %d: velocity after 1s %v", subSteps, body.Velocity())
		}
	}
}

func TestWorld_Resolver(t *testing.T) {
	for _, resolver := range []string{ResolverRotational, ResolverLinear} {
		w := newTestWorld(t, func(cfg *Config) {
			cfg.Gravity = Vector{}
			cfg.Resolver = resolver
		})
		a := w.AddBody(NewCircle(Vector{0, 0}, 1, 1, false))
		b := w.AddBody(NewCircle(Vector{1.99, 0}, 1, 1, false))
		a.SetRestitution(1)
		b.SetRestitution(1)
		a.SetVelocity(Vector{1, 0})

		w.Step(60, 1)

		if !a.Velocity().Near(Vector{}, 1e-9) || !b.Velocity().Near(Vector{1, 0}, 1e-9) {
			t.Errorf("%s: a=%v b=%v", resolver, a.Velocity(), b.Velocity())
		}
	}
}

func TestWorld_AdaptSubSteps(t *testing.T) {
	w := newTestWorld(t, func(cfg *Config) {
		cfg.SubSteps = 2
		cfg.MaxSubSteps = 3
		cfg.StepBudget = 10 * time.Millisecond
	})

	steps := []struct {
		elapsed time.Duration
		want    int
	}{
		{time.Millisecond, 3},
		{time.Millisecond, 3},
		{7 * time.Millisecond, 3},
		{20 * time.Millisecond, 2},
		{20 * time.Millisecond, 1},
		{20 * time.Millisecond, 1},
		{4 * time.Millisecond, 2},
	}
	for i, step := range steps {
		w.adaptSubSteps(step.elapsed)
		if w.SubSteps() != step.want {
			t.Errorf("step %d: sub-steps %d, want %d", i, w.SubSteps(), step.want)
		}
	}

	w.SetSubSteps(100)
	if w.SubSteps() != 3 {
		t.Errorf("SetSubSteps not clamped: %d", w.SubSteps())
	}
}

func TestWorld_UpdateStats(t *testing.T) {
	clock := time.Unix(0, 0)
	w := newTestWorld(t, func(cfg *Config) { cfg.StepBudget = 0 })
	w.now = func() time.Time { return clock }
	w.fpsStamp = clock
	w.AddBody(NewCircle(Vector{}, 1, 1, false))

	for i := 0; i <= 20; i++ {
		w.Update()
		clock = clock.Add(50 * time.Millisecond)
	}

	stats := w.Stats()
	if stats.FPS != 21 {
		t.Errorf("fps %d, want 21", stats.FPS)
	}
	if stats.Steps != 21 || stats.Bodies != 1 || stats.SubSteps != 5 {
		t.Errorf("stats %+v", stats)
	}
}

func TestWorld_StatsEnergy(t *testing.T) {
	w := newTestWorld(t, nil)
	a := w.AddBody(NewCircle(Vector{}, 2, 1, false))
	a.SetVelocity(Vector{3, 0})
	b := w.AddBody(NewCircle(Vector{5, 0}, 1, 1, false))
	b.SetVelocity(Vector{0, -2})
	ground := w.AddBody(NewBox(Vector{0, 10}, 1, 20, 1, true))
	ground.SetVelocity(Vector{100, 0})

	// 0.5*2*9 + 0.5*1*4, the static ground counts for nothing
	if e := w.Stats().Energy; math.Abs(e-11) > 1e-12 {
		t.Errorf("energy %v, want 11", e)
	}
}

func TestWorld_EachBodyDefersChanges(t *testing.T) {
	w := newTestWorld(t, nil)
	a := w.AddBody(NewCircle(Vector{}, 1, 1, false))
	w.AddBody(NewCircle(Vector{5, 0}, 1, 1, false))

	visited := 0
	w.EachBody(func(body *Body) {
		visited++
		if body == a {
			w.RemoveBody(a)
			w.AddBody(NewCircle(Vector{10, 0}, 1, 1, false))
		}
		if w.BodyCount() != 2 {
			t.Errorf("body count changed during iteration: %d", w.BodyCount())
		}
	})

	if visited != 2 {
		t.Errorf("visited %d bodies", visited)
	}
	if w.BodyCount() != 2 || a.World() != nil {
		t.Errorf("changes not applied: count %d, removed body world %v", w.BodyCount(), a.World())
	}
}

func TestWorld_LogStats(t *testing.T) {
	var buf bytes.Buffer
	w := newTestWorld(t, nil)
	w.SetLogger(slog.New(slog.NewTextHandler(&buf, nil)))
	w.AddBody(NewCircle(Vector{}, 1, 1, false))

	w.LogStats(context.Background())

	out := buf.String()
	for _, want := range []string{"world stats", "bodies=1", "sub_steps=5", "energy=0"} {
		if !strings.Contains(out, want) {
			t.Errorf("log %q missing %q", out, want)
		}
	}
}

func TestWorld_LoadScene(t *testing.T) {
	w := newTestWorld(t, nil)
	bodies, err := w.LoadScene(DefaultScene())
	if err != nil {
		t.Fatal(err)
	}
	if len(bodies) != 6 || w.BodyCount() != 6 {
		t.Fatalf("loaded %d bodies, world has %d", len(bodies), w.BodyCount())
	}
	if bodies[0].IsStatic() || !bodies[1].IsStatic() {
		t.Error("control box must be dynamic and the ground static")
	}
	if bodies[4].Angle() != math.Pi/20 {
		t.Errorf("slope angle %v", bodies[4].Angle())
	}

	bad := Scene{Bodies: []SceneBody{
		{Shape: "circle", Radius: 1, Mass: 1},
		{Shape: "triangle", Mass: 1},
	}}
	if _, err := w.LoadScene(bad); !errors.Is(err, ErrUnknownShape) {
		t.Errorf("got %v, want ErrUnknownShape", err)
	}
	if w.BodyCount() != 6 {
		t.Errorf("failed scene added bodies: %d", w.BodyCount())
	}
}
