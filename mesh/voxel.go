package mesh

// Visibility describes how a voxel influences mesh generation.
type Visibility uint8

const (
	// Empty voxels never produce geometry.
	Empty Visibility = iota
	// Translucent voxels produce geometry but let light through.
	Translucent
	// Opaque voxels block light.
	Opaque
)

func (v Visibility) String() string {
	switch v {
	case Empty:
		return "empty"
	case Translucent:
		return "translucent"
	case Opaque:
		return "opaque"
	default:
		return "unknown"
	}
}

// Voxel is implemented by voxel types that know their own visibility.
type Voxel interface {
	Visibility() Visibility
}

// MergeVoxel is implemented by voxel types that also know their merge keys.
type MergeVoxel[K, N comparable] interface {
	Voxel
	MergeKey() K
	NeighbourMergeKey() N
}

// Policy classifies voxels of type T. Implementations must be pure: the same
// voxel always yields the same visibility.
type Policy[T any] interface {
	Visibility(voxel T) Visibility
}

// MergePolicy extends Policy with the two keys the greedy mesher compares.
// Two faces merge only when both the voxels' MergeKey values and the
// MergeKey values of the voxels across the face (NeighbourMergeKey) match.
type MergePolicy[T any, K, N comparable] interface {
	Policy[T]
	MergeKey(voxel T) K
	NeighbourMergeKey(voxel T) N
}

// Intrinsic is a Policy that defers to the voxel's own methods.
type Intrinsic[T Voxel] struct{}

func (Intrinsic[T]) Visibility(voxel T) Visibility { return voxel.Visibility() }

// IntrinsicMerge is a MergePolicy that defers to the voxel's own methods.
type IntrinsicMerge[T MergeVoxel[K, N], K, N comparable] struct{}

func (IntrinsicMerge[T, K, N]) Visibility(voxel T) Visibility { return voxel.Visibility() }
func (IntrinsicMerge[T, K, N]) MergeKey(voxel T) K          { return voxel.MergeKey() }
func (IntrinsicMerge[T, K, N]) NeighbourMergeKey(voxel T) N { return voxel.NeighbourMergeKey() }

// Funcs adapts plain functions into a MergePolicy. It lets callers mesh the
// same voxel array under different rules without touching the voxel type.
// A nil VisibilityFunc treats every voxel as Empty; nil key functions return
// the zero key.
type Funcs[T any, K, N comparable] struct {
	VisibilityFunc        func(T) Visibility
	MergeKeyFunc          func(T) K
	NeighbourMergeKeyFunc func(T) N
}

func (f Funcs[T, K, N]) Visibility(voxel T) Visibility {
	if f.VisibilityFunc == nil {
		return Empty
	}
	return f.VisibilityFunc(voxel)
}

func (f Funcs[T, K, N]) MergeKey(voxel T) K {
	if f.MergeKeyFunc == nil {
		var zero K
		return zero
	}
	return f.MergeKeyFunc(voxel)
}

func (f Funcs[T, K, N]) NeighbourMergeKey(voxel T) N {
	if f.NeighbourMergeKeyFunc == nil {
		var zero N
		return zero
	}
	return f.NeighbourMergeKeyFunc(voxel)
}

// FaceVisible reports whether the face between a voxel and its neighbour
// needs geometry, given both visibilities.
//
// A face between two translucent voxels is never meshed.
func FaceVisible(self, neighbour Visibility) bool {
	if self == Empty {
		return false
	}
	switch neighbour {
	case Empty:
		return true
	case Translucent:
		return self == Opaque
	default:
		return false
	}
}
