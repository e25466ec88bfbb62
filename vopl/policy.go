package vopl

import "github.com/voxelsplace/blockmesh/mesh"

// Policy decides how palette voxels mesh. Visibility follows the palette
// alpha unless Overrides says otherwise; faces merge when they share a
// colour and look at neighbours of the same visibility.
//
// The zero value is ready to use.
type Policy struct {
	// Overrides replaces the palette visibility of specific colours, e.g. to
	// hide a colour in one chunk.
	Overrides map[uint8]mesh.Visibility
}

func (p Policy) Visibility(c uint8) mesh.Visibility {
	if v, ok := p.Overrides[c]; ok {
		return v
	}
	return paletteVisibility(c)
}

func (p Policy) MergeKey(c uint8) uint8 { return c }

func (p Policy) NeighbourMergeKey(c uint8) mesh.Visibility {
	return p.Visibility(c)
}

func paletteVisibility(c uint8) mesh.Visibility {
	switch rgba := Color(c); {
	case c == 0 || rgba[3] == 0:
		return mesh.Empty
	case rgba[3] < 1:
		return mesh.Translucent
	default:
		return mesh.Opaque
	}
}
