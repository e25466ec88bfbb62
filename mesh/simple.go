package mesh

// VisibleBlockFaces appends one unit quad to out for every visible face of
// every voxel in the interior of ext (ext shrunk by one cell on each side).
// The one-cell border is only read as neighbours.
//
// It is faster than GreedyQuads but produces many more quads.
func VisibleBlockFaces[T any](
	voxels []T,
	shape Shape,
	ext Extent,
	faces *[6]OrientedBlockFace,
	out *QuadGroups,
	policy Policy[T],
) error {
	v, err := newView(voxels, shape, ext, faces)
	if err != nil {
		return err
	}

	var kernel [6]int
	for i, f := range faces {
		kernel[i] = stride(v.strides, f.SignedNormal())
	}

	ext.Padded(-1).Each(func(p [3]uint32) {
		i := v.index(p)
		self := policy.Visibility(v.at(i))
		if self == Empty {
			return
		}
		for face, s := range kernel {
			if FaceVisible(self, policy.Visibility(v.at(i+s))) {
				out.Groups[face] = append(out.Groups[face], Quad{Minimum: p, Width: 1, Height: 1})
			}
		}
	})
	return nil
}
