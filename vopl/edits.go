package vopl

import "fmt"

// Edit streams (VPI18) carry voxel changes as packed 18-bit entries: a
// 12-bit index x + y*16 + z*256 above a 6-bit colour. Entries follow each
// other with no padding; colour 0 clears the voxel.
const (
	editBits      = 18
	editColorBits = 6
	editColorMask = 1<<editColorBits - 1
)

// Edit sets one voxel. Color 0 clears it.
type Edit struct {
	Index uint16
	Color uint8
}

// NewEdit returns the edit for grid coordinates.
func NewEdit(x, y, z int, color uint8) Edit {
	return Edit{Index: uint16(x + y*Width + z*Width*Height), Color: color}
}

// XYZ returns the grid coordinates of the edited voxel.
func (e Edit) XYZ() (x, y, z int) {
	i := int(e.Index)
	return i % Width, i / Width % Height, i / (Width * Height)
}

// EncodeEdits packs edits into a VPI18 stream. Indices and colours are
// truncated to their field widths.
func EncodeEdits(edits []Edit) []byte {
	w := newBitWriter((len(edits)*editBits + 7) / 8)
	for _, e := range edits {
		w.write(uint64(e.Index&0x0FFF)<<editColorBits|uint64(e.Color&editColorMask), editBits)
	}
	return w.bytes()
}

// DecodeEdits unpacks a VPI18 stream. Trailing bits that do not form a
// whole entry are ignored.
func DecodeEdits(data []byte) ([]Edit, error) {
	r := newBitReader(data)
	edits := make([]Edit, 0, len(data)*8/editBits)
	for len(edits) < cap(edits) {
		v, err := r.read(editBits)
		if err != nil {
			return nil, err
		}
		e := Edit{Index: uint16(v >> editColorBits), Color: uint8(v & editColorMask)}
		if int(e.Index) >= Volume {
			return nil, fmt.Errorf("edit index %d out of range", e.Index)
		}
		edits = append(edits, e)
	}
	return edits, nil
}

// Edits returns the edits that build g from an empty chunk, in index order.
func (g *Grid) Edits() []Edit {
	var edits []Edit
	for z := 0; z < Depth; z++ {
		for y := 0; y < Height; y++ {
			for x := 0; x < Width; x++ {
				if c := g[y][x][z]; c != 0 {
					edits = append(edits, NewEdit(x, y, z, c))
				}
			}
		}
	}
	return edits
}

// Apply applies edits in order. Nothing is applied if any index is out of
// range.
func (g *Grid) Apply(edits []Edit) error {
	for _, e := range edits {
		if int(e.Index) >= Volume {
			return fmt.Errorf("edit index %d out of range", e.Index)
		}
	}
	for _, e := range edits {
		x, y, z := e.XYZ()
		g[y][x][z] = e.Color
	}
	return nil
}
