package main

import (
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/flatphys/flat"
)

func TestCameraRoundTrip(t *testing.T) {
	cam := newCamera()
	cam.pan(flat.Vector{X: -3, Y: 2})
	cam.zoomBy(0.5)

	x, y := cam.worldToScreen(flat.Vector{X: 10, Y: 4})
	// (10-3)*2*1.5, (4+2)*1*1.5
	if math.Abs(x-21) > 1e-9 || math.Abs(y-9) > 1e-9 {
		t.Errorf("screen position %v,%v", x, y)
	}

	p := cam.screenToWorld(21, 9)
	cx, cy := cam.worldToScreen(p)
	if math.Abs(cx-21.5) > 1e-9 || math.Abs(cy-9.5) > 1e-9 {
		t.Errorf("cell center maps back to %v,%v", cx, cy)
	}

	cam.zoomBy(100)
	if cam.zoom != maxZoom {
		t.Errorf("zoom not clamped: %v", cam.zoom)
	}
	cam.zoomBy(-100)
	if cam.zoom != minZoom {
		t.Errorf("zoom not clamped: %v", cam.zoom)
	}
}

func TestSpawner(t *testing.T) {
	sp := newSpawner(1, flat.DefaultBounds)

	for i := 0; i < 50; i++ {
		box := sp.box(flat.Vector{})
		shape := box.Shape().(*flat.Box)
		if shape.Width() < 0.5 || shape.Width() >= 4 || shape.Height() < 0.5 || shape.Height() >= 4 {
			t.Fatalf("box %vx%v out of range", shape.Width(), shape.Height())
		}
		if math.Abs(box.Mass()-math.Max(shape.Width()*shape.Height(), 1)) > 1e-9 {
			t.Errorf("box mass %v", box.Mass())
		}

		circle := sp.circle(flat.Vector{})
		r := circle.Radius()
		if r < 0.5 || r >= 2 {
			t.Fatalf("radius %v out of range", r)
		}
		if math.Abs(circle.Mass()-math.Max(r*r, 1)) > 1e-9 {
			t.Errorf("circle mass %v", circle.Mass())
		}
		if _, ok := circle.UserData.(colorful.Color); !ok {
			t.Error("spawned body has no color")
		}
	}

	for _, body := range sp.scatter(40) {
		p := body.Position()
		if p.X < 0 || p.X > flat.DefaultBounds.X || p.Y < 0 || p.Y > flat.DefaultBounds.Y {
			t.Errorf("scattered body outside bounds: %v", p)
		}
		if body.IsStatic() {
			t.Error("scattered body is static")
		}
	}
}

func TestHitFrequency(t *testing.T) {
	if f := hitFrequency(0); f != 220 {
		t.Errorf("silent impact %v", f)
	}
	if f := hitFrequency(5); f != 520 {
		t.Errorf("impact at 5 m/s %v", f)
	}
	if f := hitFrequency(1000); f != 1760 {
		t.Errorf("impact not clamped: %v", f)
	}
}

func TestOptions(t *testing.T) {
	opts, err := parseFlags([]string{"-ticks", "30", "-substeps", "40", "-log-level", "debug"})
	if err != nil {
		t.Fatal(err)
	}

	cfg, err := opts.config()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.TicksPerSecond != 30 || cfg.SubSteps != 40 || cfg.MaxSubSteps != 40 {
		t.Errorf("config %+v", cfg)
	}
	if level, err := opts.level(); err != nil || level != slog.LevelDebug {
		t.Errorf("level %v %v", level, err)
	}

	opts.logLevel = "chatty"
	if _, err := opts.level(); err == nil {
		t.Error("Expected an error for an unknown level")
	}
}

func TestNewWorldAndControl(t *testing.T) {
	cfg := flat.DefaultConfig()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	world, control, err := newWorld(cfg, logger, newSpawner(2, cfg.Bounds), 5)
	if err != nil {
		t.Fatal(err)
	}
	if world.BodyCount() != len(cfg.Scene.Bodies)+5 {
		t.Errorf("%d bodies", world.BodyCount())
	}
	if control == nil || control.UserData != controlColor {
		t.Fatal("control body not found")
	}

	c := &controller{world: world, control: control}
	c.dir = flat.Vector{X: 1, Y: -1}
	c.applyControl()

	want := flat.Vector{X: 1, Y: -1}.Mult(control.Mass() * controlForce)
	if !control.Force().Equal(want) {
		t.Errorf("force %v, want %v", control.Force(), want)
	}
	if !c.dir.IsZero() {
		t.Error("direction not reset after applying")
	}

	// no force once the control body is gone
	world.RemoveBody(control)
	c.dir = flat.Vector{X: 1}
	control.Integrate(0, flat.Vector{})
	c.applyControl()
	if !control.Force().IsZero() {
		t.Errorf("removed body pushed: %v", control.Force())
	}
}
