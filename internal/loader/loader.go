package loader

import (
	"context"
	"fmt"
	"image"
	"log"
	"runtime"
	"time"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/sync/errgroup"

	"github.com/ivlev/gallery3d/internal/source"
)

// Loader decodes every image of a source concurrently.
type Loader struct {
	Source  source.Source
	Workers int
	// MaxSize bounds the longer edge of a texture; 0 keeps originals.
	MaxSize int
}

func New(src source.Source, workers, maxSize int) *Loader {
	return &Loader{Source: src, Workers: workers, MaxSize: maxSize}
}

// LoadAll returns one texture per source image, in source order. A failing
// image becomes a placeholder and never aborts the load. The only error is
// ctx being done, in which case partial results are discarded.
func (l *Loader) LoadAll(ctx context.Context) ([]Texture, error) {
	total := l.Source.Len()
	textures := make([]Texture, total)
	if total == 0 {
		return textures, nil
	}

	workers := l.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i := 0; i < total; i++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			textures[i] = l.load(i)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load textures: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("load textures: %w", err)
	}
	return textures, nil
}

func (l *Loader) load(i int) Texture {
	ref := l.Source.Ref(i)
	start := time.Now()

	img, err := l.Source.Open(i)
	if err == nil && img == nil {
		err = fmt.Errorf("empty image")
	}
	if err != nil {
		log.Printf("[!] Не удалось загрузить %s: %v (используется заглушка)", ref, err)
		Logger().Warn("texture placeholder", "ref", ref, "err", err)
		return Placeholder(ref, PlaceholderSize, err)
	}

	img = Fit(img, l.MaxSize)
	Logger().Debug("texture loaded", "ref", ref, "size", img.Bounds().Size(), "took", time.Since(start))
	return newTexture(ref, img)
}

// Fit downscales img so that its longer edge is at most maxSize, keeping the
// aspect ratio. Smaller images are returned unchanged.
func Fit(img image.Image, maxSize int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if maxSize <= 0 || (w <= maxSize && h <= maxSize) || w <= 0 || h <= 0 {
		return img
	}

	nw, nh := maxSize, maxSize
	if w >= h {
		nh = h * maxSize / w
	} else {
		nw = w * maxSize / h
	}
	if nw < 1 {
		nw = 1
	}
	if nh < 1 {
		nh = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
	return dst
}
