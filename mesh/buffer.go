package mesh

// Quad is an axis-aligned rectangle of unit faces. Its orientation comes
// from the face group it belongs to: Width runs along the face's U axis and
// Height along its V axis.
type Quad struct {
	Minimum [3]uint32 `json:"minimum"`
	Width   uint32    `json:"width"`
	Height  uint32    `json:"height"`
}

// Area returns the number of unit faces the quad covers.
func (q Quad) Area() uint32 { return q.Width * q.Height }

// QuadGroups holds one quad list per face of the face table.
type QuadGroups struct {
	Groups [6][]Quad `json:"groups"`
}

// Count returns the total number of quads.
func (g *QuadGroups) Count() int {
	n := 0
	for _, q := range g.Groups {
		n += len(q)
	}
	return n
}

// Reset empties every group and keeps the allocations.
func (g *QuadGroups) Reset() {
	for i := range g.Groups {
		g.Groups[i] = g.Groups[i][:0]
	}
}

// GreedyBuffer holds the output of GreedyQuads along with its scratch space.
// Reusing one buffer across calls avoids reallocating the visited bitmap.
type GreedyBuffer struct {
	Quads   QuadGroups
	visited []bool
}

// NewGreedyBuffer returns a buffer for voxel arrays of the given length.
func NewGreedyBuffer(size int) *GreedyBuffer {
	return &GreedyBuffer{visited: make([]bool, size)}
}

// Reset empties the quads and resizes the visited bitmap.
func (b *GreedyBuffer) Reset(size int) {
	b.Quads.Reset()
	if cap(b.visited) < size {
		b.visited = make([]bool, size)
		return
	}
	b.visited = b.visited[:size]
}
