package gallery

import "math"

const (
	maxHorizontalOffset = 8
	maxVerticalOffset   = 8
)

// Offset is a fixed position of a slot in the viewing plane.
type Offset struct {
	X, Y float64
}

// SpatialPosition returns the planar offset of slot i. It depends only on i.
func SpatialPosition(i int) Offset {
	horizontalAngle := math.Mod(float64(i)*2.618, math.Pi*2)
	verticalAngle := math.Mod(float64(i)*1.618+math.Pi/3, math.Pi*2)
	horizontalRadius := float64(i%3) * 1.2
	verticalRadius := float64((i+1)%4) * 0.8

	return Offset{
		X: math.Sin(horizontalAngle) * horizontalRadius * maxHorizontalOffset / 3,
		Y: math.Cos(verticalAngle) * verticalRadius * maxVerticalOffset / 4,
	}
}

// SpatialPositions lays out n slots. n <= 0 gives an empty layout.
func SpatialPositions(n int) []Offset {
	if n <= 0 {
		return nil
	}
	positions := make([]Offset, n)
	for i := range positions {
		positions[i] = SpatialPosition(i)
	}
	return positions
}
