package flat

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

var (
	ErrUnknownShape  = errors.New("unknown shape")
	ErrInvalidConfig = errors.New("invalid config")
)

// DefaultBounds is the simulated area in meters, a 640x480 window at 20 pixels per meter.
var DefaultBounds = Vector{32, 24}

const (
	ResolverRotational = "rotational"
	ResolverLinear     = "linear"
)

// Config holds the tunables of a World.
type Config struct {
	TicksPerSecond int `yaml:"ticks_per_second"`
	// SubSteps is the starting sub-step count, adapted by Update within [1, MaxSubSteps].
	SubSteps    int `yaml:"sub_steps"`
	MaxSubSteps int `yaml:"max_sub_steps"`
	// StepBudget is the wall-clock time one Update may spend before sub-steps are lowered.
	StepBudget time.Duration `yaml:"step_budget"`

	Gravity Vector `yaml:"gravity"`
	Bounds  Vector `yaml:"bounds"`
	// Bodies whose Y exceeds VoidY are removed after each tick.
	VoidY float64 `yaml:"void_y"`

	Resolver string `yaml:"resolver"`

	Scene Scene `yaml:"scene"`
}

// Scene lists the bodies a World starts with.
type Scene struct {
	Bodies []SceneBody `yaml:"bodies"`
}

type SceneBody struct {
	Shape    string  `yaml:"shape"`
	Position Vector  `yaml:"position"`
	Mass     float64 `yaml:"mass"`
	Width    float64 `yaml:"width,omitempty"`
	Height   float64 `yaml:"height,omitempty"`
	Radius   float64 `yaml:"radius,omitempty"`
	Angle    float64 `yaml:"angle,omitempty"`
	Static   bool    `yaml:"static,omitempty"`
	// nil keeps DefaultRestitution
	Restitution *float64 `yaml:"restitution,omitempty"`
	// Control marks the body driven by player input.
	Control bool `yaml:"control,omitempty"`
}

func DefaultConfig() Config {
	return Config{
		TicksPerSecond: 60,
		SubSteps:       5,
		MaxSubSteps:    20,
		StepBudget:     time.Second / 60,
		Gravity:        Vector{0, 9.8},
		Bounds:         DefaultBounds,
		VoidY:          DefaultBounds.Y,
		Resolver:       ResolverRotational,
		Scene:          DefaultScene(),
	}
}

// DefaultScene is the playground: a ground slab, two walls, two slopes and the
// control box in the middle.
func DefaultScene() Scene {
	b := DefaultBounds
	return Scene{Bodies: []SceneBody{
		{Shape: "box", Position: b.Mult(0.5), Mass: 1, Width: 1, Height: 1, Control: true},
		{Shape: "box", Position: Vector{b.X / 2, b.Y - 0.5}, Mass: 1, Width: b.X - 10, Height: 1, Static: true},
		{Shape: "box", Position: Vector{5, b.Y / 2}, Mass: 1, Width: 1, Height: b.Y, Static: true},
		{Shape: "box", Position: Vector{b.X - 5, b.Y / 2}, Mass: 1, Width: 1, Height: b.Y, Static: true},
		{Shape: "box", Position: Vector{12, b.Y - 10}, Mass: 1, Width: 10, Height: 1, Angle: math.Pi / 20, Static: true},
		{Shape: "box", Position: Vector{b.X - 10, b.Y - 5}, Mass: 1, Width: 9, Height: 1, Angle: -math.Pi / 10, Static: true},
	}}
}

// LoadConfig reads a YAML file over DefaultConfig.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// ParseConfig decodes YAML over DefaultConfig. Keys missing from data keep their
// default. A scene given in data replaces the default scene.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.Resolver = strings.ToLower(strings.TrimSpace(cfg.Resolver))
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (cfg Config) Validate() error {
	switch {
	case cfg.TicksPerSecond <= 0:
		return fmt.Errorf("%w: ticks_per_second must be positive, got %d", ErrInvalidConfig, cfg.TicksPerSecond)
	case cfg.SubSteps <= 0:
		return fmt.Errorf("%w: sub_steps must be positive, got %d", ErrInvalidConfig, cfg.SubSteps)
	case cfg.MaxSubSteps < cfg.SubSteps:
		return fmt.Errorf("%w: max_sub_steps %d is below sub_steps %d", ErrInvalidConfig, cfg.MaxSubSteps, cfg.SubSteps)
	case cfg.StepBudget < 0:
		return fmt.Errorf("%w: negative step_budget %v", ErrInvalidConfig, cfg.StepBudget)
	}
	if _, err := cfg.ResolveFunc(); err != nil {
		return err
	}
	for i, body := range cfg.Scene.Bodies {
		if err := body.validate(); err != nil {
			return fmt.Errorf("scene body %d: %w", i, err)
		}
	}
	return nil
}

// ResolveFunc maps the Resolver name to its function. An empty name is rotational.
func (cfg Config) ResolveFunc() (ResolveFunc, error) {
	switch cfg.Resolver {
	case ResolverRotational, "":
		return ResolveRotational, nil
	case ResolverLinear:
		return ResolveLinear, nil
	}
	return nil, fmt.Errorf("%w: unknown resolver %q", ErrInvalidConfig, cfg.Resolver)
}

func (sb SceneBody) validate() error {
	switch sb.Shape {
	case "box":
		if sb.Width <= 0 || sb.Height <= 0 {
			return fmt.Errorf("%w: box needs positive width and height, got %vx%v", ErrInvalidConfig, sb.Width, sb.Height)
		}
	case "circle":
		if sb.Radius <= 0 {
			return fmt.Errorf("%w: circle needs a positive radius, got %v", ErrInvalidConfig, sb.Radius)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownShape, sb.Shape)
	}
	return nil
}

// Body builds the described body. It is not added to any world.
func (sb SceneBody) Body() (*Body, error) {
	if err := sb.validate(); err != nil {
		return nil, err
	}

	var body *Body
	if sb.Shape == "box" {
		body = NewBox(sb.Position, sb.Mass, sb.Width, sb.Height, sb.Static)
	} else {
		body = NewCircle(sb.Position, sb.Mass, sb.Radius, sb.Static)
	}
	body.SetAngle(sb.Angle)
	if sb.Restitution != nil {
		body.SetRestitution(*sb.Restitution)
	}
	return body, nil
}
