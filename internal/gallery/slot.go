package gallery

// Slot is one rendering surface of the gallery. Index and Offset never
// change; Depth and ImageIndex move every frame, Hovered is recomputed.
type Slot struct {
	Index      int
	Offset     Offset
	Depth      float64
	ImageIndex int
	Hovered    bool
}

// WorldZ maps depth to the viewing axis so that both wrap boundaries land
// on the same visual extreme.
func (s Slot) WorldZ(depthRange float64) float64 {
	return s.Depth - depthRange/2
}

// NormalizedDepth is the input of the fade and blur curves.
func (s Slot) NormalizedDepth(depthRange float64) float64 {
	if depthRange <= 0 {
		return 0
	}
	return s.Depth / depthRange
}

// NewSlots creates visibleCount slots spread evenly over the depth range.
// The count is clamped to totalImages.
func NewSlots(visibleCount, totalImages int, depthRange float64) []Slot {
	if visibleCount > totalImages {
		visibleCount = totalImages
	}
	if visibleCount <= 0 {
		return nil
	}

	positions := SpatialPositions(visibleCount)
	slots := make([]Slot, visibleCount)
	for i := range slots {
		slots[i] = Slot{
			Index:      i,
			Offset:     positions[i],
			Depth:      depthRange / float64(visibleCount) * float64(i),
			ImageIndex: i % totalImages,
		}
	}
	return slots
}
