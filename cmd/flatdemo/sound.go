package main

import (
	"log/slog"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"

	"github.com/flatphys/flat"
)

const (
	sampleRate = beep.SampleRate(44100)

	// impacts slower than this along the normal stay silent
	minHitSpeed = 1.5
	hitGap      = 60 * time.Millisecond
	hitLength   = 40 * time.Millisecond
)

// hitSound plays a short tone for hard impacts, pitched by impact speed.
type hitSound struct {
	enabled bool
	last    time.Time
}

func newHitSound(mute bool, logger *slog.Logger) *hitSound {
	hs := &hitSound{}
	if mute {
		return hs
	}
	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/10)); err != nil {
		// the demo runs fine without sound
		logger.Warn("audio initialization failed", "error", err)
		return hs
	}
	hs.enabled = true
	return hs
}

func hitFrequency(speed float64) float64 {
	return flat.Clamp(220+speed*60, 220, 1760)
}

func (hs *hitSound) play(speed float64) {
	if !hs.enabled || speed < minHitSpeed {
		return
	}
	now := time.Now()
	if now.Sub(hs.last) < hitGap {
		return
	}
	hs.last = now

	sine, err := generators.SineTone(sampleRate, hitFrequency(speed))
	if err != nil {
		return
	}
	speaker.Play(beep.Take(sampleRate.N(hitLength), sine))
}

// postSolve measures how fast the pair now separates along the normal.
func (hs *hitSound) postSolve(w *flat.World, arb *flat.Arbiter) {
	a, b := arb.Bodies()
	hs.play(b.Velocity().Sub(a.Velocity()).Dot(arb.Normal()))
}

func (hs *hitSound) close() {
	if hs.enabled {
		speaker.Close()
		hs.enabled = false
	}
}
