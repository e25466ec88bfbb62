package mesh

import "math"

// Shape maps 3D coordinates to indices of a flat voxel array.
//
// Meshing relies on the mapping being linear: stepping one cell along an axis
// always moves the linear index by the same stride.
type Shape interface {
	Size() uint32
	Linearize(p [3]uint32) uint32
	Delinearize(i uint32) [3]uint32
}

// Shape3 is an X*Y*Z array laid out with x varying fastest, then y, then z.
type Shape3 struct {
	X, Y, Z uint32
}

// Cube returns a Shape3 with the same length on every axis.
func Cube(n uint32) Shape3 { return Shape3{n, n, n} }

func (s Shape3) Size() uint32 { return s.X * s.Y * s.Z }

func (s Shape3) Linearize(p [3]uint32) uint32 {
	return p[0] + s.X*(p[1]+s.Y*p[2])
}

func (s Shape3) Delinearize(i uint32) [3]uint32 {
	z := i / (s.X * s.Y)
	i -= z * s.X * s.Y
	y := i / s.X
	return [3]uint32{i - y*s.X, y, z}
}

func (s Shape3) dims() [3]uint32 { return [3]uint32{s.X, s.Y, s.Z} }

// axisStrides returns the linear index step of one cell along x, y and z.
func axisStrides(s Shape) [3]int {
	origin := int(s.Linearize([3]uint32{}))
	return [3]int{
		int(s.Linearize([3]uint32{1, 0, 0})) - origin,
		int(s.Linearize([3]uint32{0, 1, 0})) - origin,
		int(s.Linearize([3]uint32{0, 0, 1})) - origin,
	}
}

// stride returns the linear offset of a signed direction.
func stride(strides [3]int, d [3]int) int {
	return d[0]*strides[0] + d[1]*strides[1] + d[2]*strides[2]
}

// Extent is an inclusive box of grid coordinates.
type Extent struct {
	Min, Max [3]uint32
}

// ExtentOf returns the extent covering every cell of a Shape3.
func ExtentOf(s Shape3) Extent {
	return Extent{Max: [3]uint32{s.X - 1, s.Y - 1, s.Z - 1}}
}

// Shape returns the number of cells along each axis. It is zero on any axis
// where Max < Min.
func (e Extent) Shape() [3]uint32 {
	var out [3]uint32
	for i := range out {
		if e.Max[i] >= e.Min[i] {
			out[i] = e.Max[i] - e.Min[i] + 1
		}
	}
	return out
}

// Empty reports whether the extent contains no cells.
func (e Extent) Empty() bool {
	s := e.Shape()
	return s[0] == 0 || s[1] == 0 || s[2] == 0
}

// Padded grows the extent by n cells on every side, or shrinks it when n is
// negative. Growth stops at the ends of the uint32 range. A shrink past the
// centre yields an empty extent.
func (e Extent) Padded(n int) Extent {
	out := e
	for i := 0; i < 3; i++ {
		lo := int64(e.Min[i]) - int64(n)
		hi := int64(e.Max[i]) + int64(n)
		lo = max(lo, 0)
		hi = min(hi, math.MaxUint32)
		if hi < lo {
			// Max below Min marks the extent empty.
			out.Min[i], out.Max[i] = 1, 0
			continue
		}
		out.Min[i], out.Max[i] = uint32(lo), uint32(hi)
	}
	return out
}

// Contains reports whether p lies inside the extent.
func (e Extent) Contains(p [3]uint32) bool {
	for i := 0; i < 3; i++ {
		if p[i] < e.Min[i] || p[i] > e.Max[i] {
			return false
		}
	}
	return true
}

// Each calls fn for every cell of the extent, x varying fastest.
func (e Extent) Each(fn func(p [3]uint32)) {
	if e.Empty() {
		return
	}
	for z := e.Min[2]; z <= e.Max[2]; z++ {
		for y := e.Min[1]; y <= e.Max[1]; y++ {
			for x := e.Min[0]; x <= e.Max[0]; x++ {
				fn([3]uint32{x, y, z})
			}
		}
	}
}
