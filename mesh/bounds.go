package mesh

import (
	"errors"
	"fmt"
)

var (
	// ErrOutOfBounds is returned when the extent does not fit the shape or the
	// voxel array is shorter than the shape.
	ErrOutOfBounds = errors.New("extent out of bounds")

	// ErrInvalidFaces is returned for a face table with a malformed entry.
	ErrInvalidFaces = errors.New("invalid face table")
)

// view is a voxel array whose bounds were checked once against a shape and
// an extent. Every index derived from the interior of that extent, plus or
// minus one face stride, is in range.
type view[T any] struct {
	voxels  []T
	shape   Shape
	strides [3]int
}

func newView[T any](voxels []T, shape Shape, ext Extent, faces *[6]OrientedBlockFace) (view[T], error) {
	if faces == nil {
		return view[T]{}, fmt.Errorf("%w: nil", ErrInvalidFaces)
	}
	for i, f := range faces {
		if !f.valid() {
			return view[T]{}, fmt.Errorf("%w: face %d", ErrInvalidFaces, i)
		}
	}
	if int64(len(voxels)) < int64(shape.Size()) {
		return view[T]{}, fmt.Errorf("%w: %d voxels for shape of size %d", ErrOutOfBounds, len(voxels), shape.Size())
	}
	for i := 0; i < 3; i++ {
		if ext.Min[i] > ext.Max[i] {
			return view[T]{}, fmt.Errorf("%w: min %v above max %v", ErrOutOfBounds, ext.Min, ext.Max)
		}
	}
	// Other shapes only expose linearization: a far corner that lands past the
	// array or does not round-trip lies outside the shape.
	if s, ok := shape.(Shape3); ok {
		d := s.dims()
		for i := 0; i < 3; i++ {
			if ext.Max[i] >= d[i] {
				return view[T]{}, fmt.Errorf("%w: max %v outside shape %v", ErrOutOfBounds, ext.Max, d)
			}
		}
	} else if shape.Linearize(ext.Max) >= shape.Size() || shape.Delinearize(shape.Linearize(ext.Max)) != ext.Max {
		return view[T]{}, fmt.Errorf("%w: max %v outside shape", ErrOutOfBounds, ext.Max)
	}
	return view[T]{voxels: voxels, shape: shape, strides: axisStrides(shape)}, nil
}

func (v view[T]) at(i int) T { return v.voxels[i] }

func (v view[T]) index(p [3]uint32) int { return int(v.shape.Linearize(p)) }
