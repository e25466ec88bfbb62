package mesh

// Axis is one of the three grid axes.
type Axis uint8

const (
	X Axis = iota
	Y
	Z
)

func (a Axis) String() string {
	return [...]string{"x", "y", "z"}[a]
}

// UnitVector returns the positive unit vector along the axis.
func (a Axis) UnitVector() [3]int {
	var v [3]int
	v[a] = 1
	return v
}

// Permutation assigns the normal, U and V roles to the three axes.
type Permutation uint8

const (
	XYZ Permutation = iota
	ZXY
	YZX
	ZYX
	XZY
	YXZ
)

var permutationAxes = [...][3]Axis{
	XYZ: {X, Y, Z},
	ZXY: {Z, X, Y},
	YZX: {Y, Z, X},
	ZYX: {Z, Y, X},
	XZY: {X, Z, Y},
	YXZ: {Y, X, Z},
}

// Axes returns the normal, U and V axes.
func (p Permutation) Axes() [3]Axis { return permutationAxes[p] }

// Sign is +1 for even permutations and -1 for odd ones.
func (p Permutation) Sign() int {
	if p <= YZX {
		return 1
	}
	return -1
}

// OrientedBlockFace is one of the six faces of a unit cube: an axis
// permutation (normal, U, V) and the sign of the normal.
type OrientedBlockFace struct {
	NSign       int
	Permutation Permutation
}

// NewFace returns the face with the given normal sign and axes.
func NewFace(nSign int, p Permutation) OrientedBlockFace {
	return OrientedBlockFace{NSign: nSign, Permutation: p}
}

func (f OrientedBlockFace) NormalAxis() Axis { return f.Permutation.Axes()[0] }
func (f OrientedBlockFace) UAxis() Axis      { return f.Permutation.Axes()[1] }
func (f OrientedBlockFace) VAxis() Axis      { return f.Permutation.Axes()[2] }

// Normal returns the positive unit vector along the face normal axis.
func (f OrientedBlockFace) Normal() [3]int { return f.NormalAxis().UnitVector() }

// SignedNormal returns the outward normal of the face.
func (f OrientedBlockFace) SignedNormal() [3]int {
	n := f.Normal()
	for i := range n {
		n[i] *= f.NSign
	}
	return n
}

func (f OrientedBlockFace) U() [3]int { return f.UAxis().UnitVector() }
func (f OrientedBlockFace) V() [3]int { return f.VAxis().UnitVector() }

// CounterClockwise reports whether the corners (min, min+U, min+V, min+U+V)
// wind counter-clockwise when seen from outside the face.
func (f OrientedBlockFace) CounterClockwise() bool {
	return f.NSign*f.Permutation.Sign() > 0
}

func (f OrientedBlockFace) valid() bool {
	if f.NSign != 1 && f.NSign != -1 {
		return false
	}
	return int(f.Permutation) < len(permutationAxes)
}

// QuadCoordinateConfig is a face table plus the axis whose positive face has
// its U texture coordinate flipped by renderers.
type QuadCoordinateConfig struct {
	Faces     [6]OrientedBlockFace
	UFlipFace Axis
}

// RightHandedYUp is the face table used by OpenGL-style renderers:
// -X, -Y, -Z, +X, +Y, +Z.
var RightHandedYUp = QuadCoordinateConfig{
	Faces: [6]OrientedBlockFace{
		NewFace(-1, XZY),
		NewFace(-1, YZX),
		NewFace(-1, ZXY),
		NewFace(1, XZY),
		NewFace(1, YZX),
		NewFace(1, ZXY),
	},
	UFlipFace: X,
}
