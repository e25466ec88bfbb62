package mesh

import "golang.org/x/sync/errgroup"

// GreedyQuads meshes the interior of ext (ext shrunk by one cell on each
// side) and merges adjacent faces that share both merge keys into as few
// rectangles as a width-first, non-backtracking scan finds. The result
// replaces the previous contents of buf.Quads.
//
// For each face, slices orthogonal to the normal are scanned row by row: U
// varies fastest and V advances between rows. The first unvisited visible
// face seeds a quad which grows along U while the faces keep matching, then
// along V while whole rows of that width match.
func GreedyQuads[T any, K, N comparable](
	voxels []T,
	shape Shape,
	ext Extent,
	faces *[6]OrientedBlockFace,
	buf *GreedyBuffer,
	policy MergePolicy[T, K, N],
) error {
	v, err := newView(voxels, shape, ext, faces)
	if err != nil {
		return err
	}
	buf.Reset(len(voxels))

	interior := ext.Padded(-1)
	for i, f := range faces {
		clear(buf.visited)
		buf.Quads.Groups[i] = greedyFace(v, interior, f, buf.visited, buf.Quads.Groups[i], policy)
	}
	return nil
}

// GreedyQuadsParallel is GreedyQuads with the six faces meshed concurrently.
// Each face scans in the same order as GreedyQuads, so the output is
// identical; it costs one visited bitmap per face instead of one in total.
func GreedyQuadsParallel[T any, K, N comparable](
	voxels []T,
	shape Shape,
	ext Extent,
	faces *[6]OrientedBlockFace,
	buf *GreedyBuffer,
	policy MergePolicy[T, K, N],
) error {
	v, err := newView(voxels, shape, ext, faces)
	if err != nil {
		return err
	}
	buf.Reset(len(voxels))

	interior := ext.Padded(-1)
	var g errgroup.Group
	for i, f := range faces {
		visited := buf.visited
		if i > 0 {
			visited = make([]bool, len(voxels))
		}
		g.Go(func() error {
			clear(visited)
			buf.Quads.Groups[i] = greedyFace(v, interior, f, visited, buf.Quads.Groups[i], policy)
			return nil
		})
	}
	return g.Wait()
}

// faceStrides are the linear index steps used while scanning one face.
type faceStrides struct {
	u, v int
	// neighbour is the offset to the voxel on the other side of the face.
	neighbour int
}

func greedyFace[T any, K, N comparable](
	v view[T],
	interior Extent,
	f OrientedBlockFace,
	visited []bool,
	quads []Quad,
	policy MergePolicy[T, K, N],
) []Quad {
	if interior.Empty() {
		return quads
	}

	axes := f.Permutation.Axes()
	in, iu, iv := axes[0], axes[1], axes[2]
	m := merger[T, K, N]{
		view:    v,
		visited: visited,
		policy:  policy,
		strides: faceStrides{
			u:         v.strides[iu],
			v:         v.strides[iv],
			neighbour: stride(v.strides, f.SignedNormal()),
		},
	}

	for n := interior.Min[in]; n <= interior.Max[in]; n++ {
		for b := interior.Min[iv]; b <= interior.Max[iv]; b++ {
			for a := interior.Min[iu]; a <= interior.Max[iu]; a++ {
				var p [3]uint32
				p[in], p[iu], p[iv] = n, a, b

				i := v.index(p)
				if !m.needsMesh(i) {
					continue
				}

				// Keep the quad inside the slice.
				maxWidth := int(interior.Max[iu]-a) + 1
				maxHeight := int(interior.Max[iv]-b) + 1

				width, height := m.findQuad(i, maxWidth, maxHeight)
				m.markVisited(i, width, height)
				quads = append(quads, Quad{Minimum: p, Width: uint32(width), Height: uint32(height)})
			}
		}
	}
	return quads
}

type merger[T any, K, N comparable] struct {
	view    view[T]
	visited []bool
	policy  MergePolicy[T, K, N]
	strides faceStrides
}

func (m *merger[T, K, N]) needsMesh(i int) bool {
	if m.visited[i] {
		return false
	}
	return FaceVisible(
		m.policy.Visibility(m.view.at(i)),
		m.policy.Visibility(m.view.at(i+m.strides.neighbour)),
	)
}

// findQuad returns the size of the quad seeded at linear index i. The width
// is fixed first; a row joins the quad only when it matches over that whole
// width.
func (m *merger[T, K, N]) findQuad(i, maxWidth, maxHeight int) (width, height int) {
	key := m.policy.MergeKey(m.view.at(i))
	neighbourKey := m.policy.NeighbourMergeKey(m.view.at(i + m.strides.neighbour))

	width = m.rowWidth(i, maxWidth, key, neighbourKey)
	height = 1
	for row := i + m.strides.v; height < maxHeight; row += m.strides.v {
		if m.rowWidth(row, width, key, neighbourKey) < width {
			break
		}
		height++
	}
	return width, height
}

func (m *merger[T, K, N]) rowWidth(start, maxWidth int, key K, neighbourKey N) int {
	width := 0
	for i := start; width < maxWidth; i += m.strides.u {
		if !m.needsMesh(i) {
			break
		}
		if m.policy.MergeKey(m.view.at(i)) != key ||
			m.policy.NeighbourMergeKey(m.view.at(i+m.strides.neighbour)) != neighbourKey {
			break
		}
		width++
	}
	return width
}

func (m *merger[T, K, N]) markVisited(i, width, height int) {
	for b := 0; b < height; b++ {
		row := i + b*m.strides.v
		for a := 0; a < width; a++ {
			m.visited[row+a*m.strides.u] = true
		}
	}
}
