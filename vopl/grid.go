package vopl

import "github.com/voxelsplace/blockmesh/mesh"

const (
	Height = 16
	Width  = 16
	Depth  = 16

	// Volume is the number of voxels in a chunk.
	Volume = Width * Height * Depth
)

// Grid is one chunk of palette indices, indexed Grid[y][x][z]. Index 0 is
// empty space.
type Grid [Height][Width][Depth]uint8

// PaddedShape is the shape of the array returned by Grid.Padded: the chunk
// plus a one-voxel empty border on every side.
var PaddedShape = mesh.Cube(Width + 2)

// Padded copies the grid into a flat array of PaddedShape, shifted by one
// voxel so every chunk voxel has six in-bounds neighbours. The returned
// extent covers the whole array and is ready to pass to the mesher; quad
// coordinates are offset by one from grid coordinates.
func (g *Grid) Padded() ([]uint8, mesh.Extent) {
	voxels := make([]uint8, PaddedShape.Size())
	for y := 0; y < Height; y++ {
		for x := 0; x < Width; x++ {
			for z := 0; z < Depth; z++ {
				c := g[y][x][z]
				if c == 0 {
					continue
				}
				voxels[PaddedShape.Linearize([3]uint32{uint32(x) + 1, uint32(y) + 1, uint32(z) + 1})] = c
			}
		}
	}
	return voxels, mesh.ExtentOf(PaddedShape)
}

// At returns the voxel at grid coordinates, or 0 outside the chunk.
func (g *Grid) At(x, y, z int) uint8 {
	if x < 0 || x >= Width || y < 0 || y >= Height || z < 0 || z >= Depth {
		return 0
	}
	return g[y][x][z]
}

// Filled returns the number of non-empty voxels.
func (g *Grid) Filled() int {
	n := 0
	for y := range g {
		for x := range g[y] {
			for _, c := range g[y][x] {
				if c != 0 {
					n++
				}
			}
		}
	}
	return n
}
