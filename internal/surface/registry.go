// Package surface opens the place a gallery is drawn to: a desktop window,
// an offscreen compositor or a video recording.
package surface

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/ivlev/gallery3d/internal/config"
	"github.com/ivlev/gallery3d/internal/engine"
	"github.com/ivlev/gallery3d/internal/gallery"
	"github.com/ivlev/gallery3d/internal/renderer"
	"github.com/ivlev/gallery3d/internal/video"
	"github.com/ivlev/gallery3d/internal/window"
)

const (
	Window   = "window"
	Headless = "headless"
	Record   = "record"
)

// DefaultHeadlessFrames bounds headless runs without an explicit frame count.
const DefaultHeadlessFrames = 600

// Surface bundles what a gallery needs to run on one target.
type Surface struct {
	Name      string
	Renderer  engine.Renderer
	Scheduler engine.Scheduler
	Inputs    []engine.InputSource
	Clock     gallery.Clock
}

// Open creates the named surface. Recordings start ffmpeg right away; the
// file is finished when the renderer is closed.
func Open(ctx context.Context, name string, opts config.RunOptions, enc video.Encoder) (*Surface, error) {
	fps := opts.FPS
	if fps <= 0 {
		fps = 60
	}
	step := time.Second / time.Duration(fps)

	switch name {
	case Window, "":
		w := window.New("Gallery 3D", opts.Width, opts.Height, fps)
		return &Surface{
			Name:      Window,
			Renderer:  w,
			Scheduler: w,
			Inputs:    []engine.InputSource{w},
			Clock:     gallery.SystemClock{},
		}, nil

	case Headless:
		frames := opts.Frames
		if frames == 0 {
			frames = DefaultHeadlessFrames
		}
		h := renderer.NewHeadless(opts.Width, opts.Height)
		h.SnapshotPath = opts.Snapshot
		if opts.Realtime {
			return &Surface{
				Name:      Headless,
				Renderer:  h,
				Scheduler: engine.TickerScheduler{FPS: fps, Frames: frames},
				Clock:     gallery.SystemClock{},
			}, nil
		}
		clock := gallery.NewManualClock(time.Now())
		return &Surface{
			Name:      Headless,
			Renderer:  h,
			Scheduler: engine.StepScheduler{Clock: clock, Step: step, Frames: frames},
			Clock:     clock,
		}, nil

	case Record:
		if opts.OutputVideo == "" {
			return nil, fmt.Errorf("record surface needs an output video path")
		}
		if opts.Frames == 0 {
			return nil, fmt.Errorf("record surface needs a frame count")
		}
		if enc == nil {
			enc = &video.FFmpegEncoder{}
		}

		duration := float64(opts.Frames) / float64(fps)
		stream, err := enc.Start(ctx, opts.OutputVideo, video.Params{
			Width:     opts.Width,
			Height:    opts.Height,
			FPS:       fps,
			Encoder:   opts.VideoEncoder,
			Quality:   opts.Quality,
			AudioPath: opts.AudioPath,
			FadeIn:    opts.Fade,
			FadeOut:   opts.Fade,
			Duration:  duration,
		})
		if err != nil {
			return nil, fmt.Errorf("start recording: %w", err)
		}

		clock := gallery.NewManualClock(time.Now())
		h := renderer.NewHeadless(opts.Width, opts.Height)
		h.SnapshotPath = opts.Snapshot
		h.Sink = func(img *image.RGBA) error { return stream.WriteFrame(img) }
		return &Surface{
			Name:      Record,
			Renderer:  &recorder{Headless: h, stream: stream},
			Scheduler: engine.StepScheduler{Clock: clock, Step: step, Frames: opts.Frames},
			Clock:     clock,
		}, nil

	default:
		return nil, fmt.Errorf("unknown surface: %s", name)
	}
}

// recorder finishes the video after the last frame.
type recorder struct {
	*renderer.Headless
	stream video.Stream
}

func (r *recorder) Close() error {
	herr := r.Headless.Close()
	if err := r.stream.Close(); err != nil {
		return err
	}
	return herr
}
