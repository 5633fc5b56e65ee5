// Command flatdemo runs a flat world in the terminal.
//
// WASD pushes the blue box, the left mouse button drops a box and the right one a
// circle. Arrow keys pan, +/- zoom, r scatters small bodies, c and b toggle contact
// and bounding box display, p logs world stats and q quits.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/flatphys/flat"
	"github.com/flatphys/flat/internal/logging"
)

type options struct {
	configPath string
	ticks      int
	subSteps   int
	bodies     int
	logLevel   string
	logFile    string
	mute       bool
	seed       int64
}

func parseFlags(args []string) (options, error) {
	var opts options
	fs := flag.NewFlagSet("flatdemo", flag.ContinueOnError)
	fs.StringVar(&opts.configPath, "config", "", "YAML world config, defaults when empty")
	fs.IntVar(&opts.ticks, "ticks", 0, "ticks per second, overrides the config")
	fs.IntVar(&opts.subSteps, "substeps", 0, "starting sub-steps per tick, overrides the config")
	fs.IntVar(&opts.bodies, "bodies", 0, "random bodies to scatter at start")
	fs.StringVar(&opts.logLevel, "log-level", "", "debug, info, warn or error (default $"+logging.EnvLevel+" or info)")
	fs.StringVar(&opts.logFile, "log-file", "flatdemo.log", "log destination")
	fs.BoolVar(&opts.mute, "mute", false, "disable collision sounds")
	fs.Int64Var(&opts.seed, "seed", time.Now().UnixNano(), "random seed for spawned bodies")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	return opts, nil
}

func (opts options) level() (slog.Level, error) {
	if opts.logLevel == "" {
		return logging.LevelFromEnv(slog.LevelInfo), nil
	}
	level, ok := logging.ParseLevel(opts.logLevel)
	if !ok {
		return level, fmt.Errorf("unknown log level %q", opts.logLevel)
	}
	return level, nil
}

func (opts options) config() (flat.Config, error) {
	cfg := flat.DefaultConfig()
	if opts.configPath != "" {
		var err error
		if cfg, err = flat.LoadConfig(opts.configPath); err != nil {
			return flat.Config{}, err
		}
	}
	if opts.ticks > 0 {
		cfg.TicksPerSecond = opts.ticks
	}
	if opts.subSteps > 0 {
		cfg.SubSteps = opts.subSteps
		if cfg.MaxSubSteps < cfg.SubSteps {
			cfg.MaxSubSteps = cfg.SubSteps
		}
	}
	return cfg, cfg.Validate()
}

// newWorld builds the world and its scene, returning the control body if the scene
// marks one.
func newWorld(cfg flat.Config, logger *slog.Logger, sp *spawner, scatter int) (*flat.World, *flat.Body, error) {
	world, err := flat.NewWorld(cfg)
	if err != nil {
		return nil, nil, err
	}
	world.SetLogger(logger)

	bodies, err := world.LoadScene(cfg.Scene)
	if err != nil {
		return nil, nil, err
	}

	var control *flat.Body
	for i, body := range bodies {
		switch {
		case cfg.Scene.Bodies[i].Control:
			control = body
			body.UserData = controlColor
		case body.IsStatic():
			body.UserData = staticColor
		default:
			body.UserData = sp.color()
		}
	}

	for _, body := range sp.scatter(scatter) {
		world.AddBody(body)
	}
	return world, control, nil
}

func run(ctx context.Context, args []string) error {
	opts, err := parseFlags(args)
	if err != nil {
		return err
	}
	level, err := opts.level()
	if err != nil {
		return err
	}
	logger, closer, err := logging.OpenFile(opts.logFile, level)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer closer.Close()

	cfg, err := opts.config()
	if err != nil {
		return err
	}

	sp := newSpawner(opts.seed, cfg.Bounds)
	world, control, err := newWorld(cfg, logger, sp, opts.bodies)
	if err != nil {
		return err
	}

	sound := newHitSound(opts.mute, logger)
	defer sound.close()
	world.SetPostSolve(sound.postSolve)

	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()
	screen.EnableMouse()

	drawer := &screenDrawer{screen: screen, cam: newCamera(), flags: flat.DRAW_SHAPES | flat.DRAW_COLLISION_POINTS}
	c := &controller{
		ctx:     ctx,
		world:   world,
		control: control,
		cam:     drawer.cam,
		drawer:  drawer,
		spawner: sp,
	}

	logger.Info("demo started", "ticks", cfg.TicksPerSecond, "sub_steps", cfg.SubSteps, "bodies", world.BodyCount())

	ticker := time.NewTicker(time.Second / time.Duration(cfg.TicksPerSecond))
	defer ticker.Stop()

	events := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			events <- ev
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev := <-events:
			if !c.handle(ev) {
				world.LogStats(ctx)
				return nil
			}

		case <-ticker.C:
			c.applyControl()
			world.Update()

			screen.Clear()
			flat.DrawWorld(world, drawer)
			stats := world.Stats()
			drawer.drawText(0, 0, fmt.Sprintf("fps %d  bodies %d  sub-steps %d  contacts %d  energy %.0f J",
				stats.FPS, stats.Bodies, stats.SubSteps, stats.Collisions, stats.Energy))
			screen.Show()
		}
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "flatdemo:", err)
		stop()
		os.Exit(1)
	}
}
