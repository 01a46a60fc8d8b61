package video

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"io"
	"os/exec"
	"strings"
)

// Params describe one recording.
type Params struct {
	Width, Height int
	FPS           int
	Encoder       string // ffmpeg codec name, e.g. libx264
	Quality       int
	AudioPath     string
	// Fade in and out, in seconds. The fade out needs Duration to know
	// where the recording ends.
	FadeIn   float64
	FadeOut  float64
	Duration float64
}

// Encoder starts recordings.
type Encoder interface {
	Start(ctx context.Context, outputPath string, p Params) (Stream, error)
}

// Stream accepts frames of exactly the recording size.
type Stream interface {
	WriteFrame(img image.Image) error
	Close() error
}

// FFmpegEncoder pipes raw RGBA frames into an ffmpeg process.
type FFmpegEncoder struct {
	Binary string // defaults to "ffmpeg"
}

type ffmpegStream struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stderr *bytes.Buffer
	width  int
	height int
	scrap  *image.RGBA
	closed bool
}

func (e *FFmpegEncoder) Start(ctx context.Context, outputPath string, p Params) (Stream, error) {
	if p.Width <= 0 || p.Height <= 0 {
		return nil, fmt.Errorf("invalid video size %dx%d", p.Width, p.Height)
	}
	if p.FPS <= 0 {
		p.FPS = 60
	}
	if p.Encoder == "" {
		p.Encoder = "libx264"
	}

	bin := e.Binary
	if bin == "" {
		bin = "ffmpeg"
	}

	cmd := exec.CommandContext(ctx, bin, buildFFmpegArgs(outputPath, p)...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("stdin pipe error: %w", err)
	}
	stderr := &bytes.Buffer{}
	cmd.Stderr = stderr

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("ffmpeg start error: %w", err)
	}

	return &ffmpegStream{cmd: cmd, stdin: stdin, stderr: stderr, width: p.Width, height: p.Height}, nil
}

func buildFFmpegArgs(outputPath string, p Params) []string {
	args := []string{
		"-y",
		"-f", "rawvideo",
		"-pixel_format", "rgba",
		"-video_size", fmt.Sprintf("%dx%d", p.Width, p.Height),
		"-framerate", fmt.Sprintf("%d", p.FPS),
		"-i", "-",
	}

	audio := p.AudioPath != ""
	if audio {
		args = append(args, "-i", p.AudioPath)
	}

	var filters []string
	if p.FadeIn > 0 {
		filters = append(filters, fmt.Sprintf("fade=t=in:st=0:d=%f", p.FadeIn))
	}
	if p.FadeOut > 0 && p.Duration > p.FadeOut {
		filters = append(filters, fmt.Sprintf("fade=t=out:st=%f:d=%f", p.Duration-p.FadeOut, p.FadeOut))
	}
	if len(filters) > 0 {
		args = append(args, "-vf", strings.Join(filters, ","))
	}

	if audio {
		args = append(args, "-map", "0:v", "-map", "1:a", "-c:a", "aac", "-shortest")
	}

	args = append(args, "-pix_fmt", "yuv420p", "-c:v", p.Encoder)

	// Качество в зависимости от энкодера
	switch p.Encoder {
	case "h264_videotoolbox":
		bitrate := p.Quality * 100 // кбит/с. 75 -> 7.5Мбит/с
		args = append(args, "-b:v", fmt.Sprintf("%dk", bitrate))
	case "h264_nvenc":
		args = append(args, "-cq", fmt.Sprintf("%d", p.Quality))
	default: // libx264
		args = append(args, "-crf", fmt.Sprintf("%d", p.Quality), "-preset", "medium")
	}

	return append(args, outputPath)
}

func (s *ffmpegStream) WriteFrame(img image.Image) error {
	if s.closed {
		return errors.New("video stream closed")
	}
	b := img.Bounds()
	if b.Dx() != s.width || b.Dy() != s.height {
		return fmt.Errorf("frame size %dx%d, stream expects %dx%d", b.Dx(), b.Dy(), s.width, s.height)
	}
	if err := s.writeRawRGBA(img); err != nil {
		return fmt.Errorf("write raw error: %w", err)
	}
	return nil
}

func (s *ffmpegStream) writeRawRGBA(img image.Image) error {
	rgba, ok := img.(*image.RGBA)
	if !ok || !isPacked(rgba) {
		if s.scrap == nil {
			s.scrap = image.NewRGBA(image.Rect(0, 0, s.width, s.height))
		}
		draw.Draw(s.scrap, s.scrap.Rect, img, img.Bounds().Min, draw.Src)
		rgba = s.scrap
	}
	_, err := s.stdin.Write(rgba.Pix)
	return err
}

func isPacked(img *image.RGBA) bool {
	return img.Stride == img.Rect.Dx()*4 && img.Rect.Min == image.Point{}
}

// Close flushes the pipe and waits for ffmpeg to finish the file.
func (s *ffmpegStream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.stdin.Close()
	if err := s.cmd.Wait(); err != nil {
		return fmt.Errorf("ffmpeg wait error: %w, output: %s", err, lastLines(s.stderr.String(), 5))
	}
	return nil
}

func lastLines(s string, n int) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
