package vopl

import "math/rand"

// RandomGrid fills percentage (0..100) of a chunk with random colours from
// 1..maxColor. maxColor is clamped to the palette.
func RandomGrid(r *rand.Rand, percentage float64, maxColor uint8) *Grid {
	percentage = min(max(percentage, 0), 100)
	if maxColor == 0 || int(maxColor) >= len(Palette) {
		maxColor = uint8(len(Palette) - 1)
	}
	want := int(float64(Volume)*percentage/100 + 0.5)

	// Partial Fisher-Yates: only the first want positions are drawn.
	idx := make([]int, Volume)
	for i := range idx {
		idx[i] = i
	}
	for i := 0; i < want; i++ {
		j := i + r.Intn(Volume-i)
		idx[i], idx[j] = idx[j], idx[i]
	}

	g := new(Grid)
	for _, i := range idx[:want] {
		y := i / (Width * Depth)
		x := i / Depth % Width
		z := i % Depth
		g[y][x][z] = uint8(1 + r.Intn(int(maxColor)))
	}
	return g
}
