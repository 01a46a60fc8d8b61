package renderer

import (
	"image"
	"math"

	"github.com/disintegration/imaging"
	xdraw "golang.org/x/image/draw"
)

// BlurRadius converts a blur amount into a radius in pixels for a plane
// drawn w pixels wide. The surface program samples ±2 texels of 1/512 of the
// texture scaled by the amount.
func BlurRadius(amount float64, w int) int {
	if amount <= 0 || w <= 0 {
		return 0
	}
	return int(2*amount/512*float64(w) + 0.5)
}

// BlurSigma is the gaussian sigma with the variance of a box of BlurRadius.
func BlurSigma(amount float64, w int) float64 {
	r := float64(BlurRadius(amount, w))
	return math.Sqrt(r * (r + 1) / 3)
}

// blur replaces the pixels of img with their gaussian blur.
func blur(img *image.RGBA, sigma float64) {
	if sigma <= 0 || img.Rect.Empty() {
		return
	}
	out := imaging.Blur(img, sigma)
	xdraw.Draw(img, img.Rect, out, out.Bounds().Min, xdraw.Src)
}
