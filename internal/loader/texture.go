package loader

import (
	"image"
	"image/color"
	"image/draw"

	qrcode "github.com/skip2/go-qrcode"
)

// PlaceholderSize is the edge of the square image shown for a ref that
// failed to load.
const PlaceholderSize = 256

// Texture is a decoded gallery image. Textures are read-only once loaded.
type Texture struct {
	Ref         string
	Image       image.Image
	Width       int
	Height      int
	Placeholder bool
	Err         error
}

// Aspect is width over height, 1 for empty textures.
func (t *Texture) Aspect() float64 {
	if t == nil || t.Width <= 0 || t.Height <= 0 {
		return 1
	}
	return float64(t.Width) / float64(t.Height)
}

func newTexture(ref string, img image.Image) Texture {
	b := img.Bounds()
	return Texture{Ref: ref, Image: img, Width: b.Dx(), Height: b.Dy()}
}

// Placeholder renders the failed ref as a QR code so that a broken image is
// still identifiable on screen. It falls back to a flat gray square.
func Placeholder(ref string, size int, cause error) Texture {
	if size <= 0 {
		size = PlaceholderSize
	}

	var img image.Image
	if qr, err := qrcode.New(ref, qrcode.Medium); err == nil {
		img = qr.Image(size)
	} else {
		gray := image.NewRGBA(image.Rect(0, 0, size, size))
		draw.Draw(gray, gray.Bounds(), &image.Uniform{C: color.RGBA{R: 128, G: 128, B: 128, A: 255}}, image.Point{}, draw.Src)
		img = gray
	}

	t := newTexture(ref, img)
	t.Placeholder = true
	t.Err = cause
	return t
}
