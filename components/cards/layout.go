package cards

// ToGridLayout converts persisted layout items into the external grid
// library's format. Order and length are preserved; no validation happens
// here, absent coordinates flow through as zero values.
func ToGridLayout(items []LayoutItem) []GridItem {
	out := make([]GridItem, len(items))
	for i, item := range items {
		out[i] = GridItem{
			I: item.CardID,
			X: item.X,
			Y: item.Y,
			W: item.W,
			H: item.H,
		}
	}
	return out
}

// FromGridLayout converts grid library items back into the persisted layout
// format, discarding grid-only interaction flags. Inverse of ToGridLayout.
func FromGridLayout(items []GridItem) []LayoutItem {
	out := make([]LayoutItem, len(items))
	for i, item := range items {
		out[i] = LayoutItem{
			CardID: item.I,
			X:      item.X,
			Y:      item.Y,
			W:      item.W,
			H:      item.H,
		}
	}
	return out
}
