package vopl

import "sort"

// Payloads list voxels in Morton (Z-order) so nearby voxels sit close
// together in the stream and compress better.

// spread3 inserts two zero bits between each of the low 10 bits of v.
func spread3(v uint32) uint32 {
	v = (v | v<<16) & 0x030000FF
	v = (v | v<<8) & 0x0300F00F
	v = (v | v<<4) & 0x030C30C3
	v = (v | v<<2) & 0x09249249
	return v
}

func morton3(x, y, z uint32) uint32 {
	return spread3(x) | spread3(y)<<1 | spread3(z)<<2
}

// mortonOrder[rank] is the raster index (x + z*Width + y*Width*Depth) of the
// voxel at that position of the stream.
var mortonOrder = buildMortonOrder()

func buildMortonOrder() []int {
	order := make([]int, Volume)
	keys := make([]uint32, Volume)
	i := 0
	for y := 0; y < Height; y++ {
		for z := 0; z < Depth; z++ {
			for x := 0; x < Width; x++ {
				order[i] = i
				keys[i] = morton3(uint32(x), uint32(y), uint32(z))
				i++
			}
		}
	}
	sort.SliceStable(order, func(a, b int) bool {
		return keys[order[a]] < keys[order[b]]
	})
	return order
}

// flatten returns the grid as a Morton ordered stream.
func flatten(g *Grid) []uint8 {
	raster := make([]uint8, 0, Volume)
	for y := 0; y < Height; y++ {
		for z := 0; z < Depth; z++ {
			for x := 0; x < Width; x++ {
				raster = append(raster, g[y][x][z])
			}
		}
	}
	stream := make([]uint8, Volume)
	for rank, i := range mortonOrder {
		stream[rank] = raster[i]
	}
	return stream
}

// unflatten fills the grid from a Morton ordered stream.
func unflatten(g *Grid, stream []uint8) {
	for rank, i := range mortonOrder {
		y := i / (Width * Depth)
		z := i / Width % Depth
		x := i % Width
		g[y][x][z] = stream[rank]
	}
}
