package engine

import (
	"context"
	"time"

	"github.com/ivlev/gallery3d/internal/gallery"
)

// TickerScheduler ticks on the wall clock at FPS frames per second. Frames
// bounds the run; 0 runs until ctx is done.
type TickerScheduler struct {
	FPS    int
	Frames uint64
}

func (s TickerScheduler) Run(ctx context.Context, tick func() error) error {
	fps := s.FPS
	if fps <= 0 {
		fps = 60
	}
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	for n := uint64(0); s.Frames == 0 || n < s.Frames; n++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
		if err := tick(); err != nil {
			return err
		}
	}
	return nil
}

// StepScheduler advances a manual clock by Step before every tick and never
// sleeps. Recordings and tests use it for reproducible frames.
type StepScheduler struct {
	Clock  *gallery.ManualClock
	Step   time.Duration
	Frames uint64
}

func (s StepScheduler) Run(ctx context.Context, tick func() error) error {
	step := s.Step
	if step <= 0 {
		step = time.Second / 60
	}

	for n := uint64(0); s.Frames == 0 || n < s.Frames; n++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if s.Clock != nil {
			s.Clock.Advance(step)
		}
		if err := tick(); err != nil {
			return err
		}
	}
	return nil
}
