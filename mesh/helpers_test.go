package mesh

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

type boolVoxel bool

const (
	empty boolVoxel = false
	full  boolVoxel = true
)

func (b boolVoxel) Visibility() Visibility {
	if b {
		return Opaque
	}
	return Empty
}

func (b boolVoxel) MergeKey() boolVoxel         { return b }
func (b boolVoxel) NeighbourMergeKey() boolVoxel { return b }

var boolPolicy = IntrinsicMerge[boolVoxel, boolVoxel, boolVoxel]{}

// cell is a voxel with an explicit visibility and a surface kind.
type cell struct {
	vis  Visibility
	kind uint8
}

func (c cell) Visibility() Visibility   { return c.vis }
func (c cell) MergeKey() uint8          { return c.kind }
func (c cell) NeighbourMergeKey() uint8 { return c.kind }

var cellPolicy = IntrinsicMerge[cell, uint8, uint8]{}

// paletteVoxels treats 0 as empty, 3 as translucent and anything else as
// opaque. The value is both merge keys.
var palettePolicy = Funcs[uint8, uint8, uint8]{
	VisibilityFunc: func(v uint8) Visibility {
		switch v {
		case 0:
			return Empty
		case 3:
			return Translucent
		default:
			return Opaque
		}
	},
	MergeKeyFunc:          func(v uint8) uint8 { return v },
	NeighbourMergeKeyFunc: func(v uint8) uint8 { return v },
}

func randomVoxels(r *rand.Rand, shape Shape3, fill float64) []uint8 {
	voxels := make([]uint8, shape.Size())
	ExtentOf(shape).Padded(-1).Each(func(p [3]uint32) {
		if r.Float64() < fill {
			voxels[shape.Linearize(p)] = uint8(1 + r.Intn(3))
		}
	})
	return voxels
}

// faceCells expands the quads of one face into the unit face cells they
// cover, failing the test if two quads cover the same cell.
func faceCells(t *testing.T, f OrientedBlockFace, quads []Quad) map[[3]uint32]struct{} {
	t.Helper()

	u, v := f.UAxis(), f.VAxis()
	cells := make(map[[3]uint32]struct{})
	for _, q := range quads {
		require.GreaterOrEqual(t, q.Width, uint32(1))
		require.GreaterOrEqual(t, q.Height, uint32(1))
		for b := uint32(0); b < q.Height; b++ {
			for a := uint32(0); a < q.Width; a++ {
				p := q.Minimum
				p[u] += a
				p[v] += b
				_, dup := cells[p]
				require.False(t, dup, "cell %v covered twice", p)
				cells[p] = struct{}{}
			}
		}
	}
	return cells
}
