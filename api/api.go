// Package api converts chunk files to meshes and packs in memory. It backs
// the command line tool, the HTTP service and the WASM bridge.
package api

import (
	"bytes"
	"maps"
	"math"
	"path/filepath"
	"runtime"
	"slices"
	"strconv"
	"strings"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/qmuntal/gltf"
	"github.com/segmentio/encoding/json"
	"github.com/voxelsplace/blockmesh/glb"
	"github.com/voxelsplace/blockmesh/mesh"
	"github.com/voxelsplace/blockmesh/vopl"
	"golang.org/x/sync/errgroup"
)

const generator = "blockmesh"

// Options configures meshing.
type Options struct {
	// Naive emits one quad per visible face instead of merging.
	Naive bool

	// Parallel meshes the six faces concurrently. Ignored when Naive is set.
	Parallel bool

	// Overrides replaces the palette visibility of specific colours.
	Overrides map[uint8]mesh.Visibility
}

// ParseHidden parses a comma separated list of palette indices into
// overrides that make those colours empty.
func ParseHidden(list string) (map[uint8]mesh.Visibility, error) {
	if strings.TrimSpace(list) == "" {
		return nil, nil
	}
	overrides := make(map[uint8]mesh.Visibility)
	for _, s := range strings.Split(list, ",") {
		c, err := strconv.ParseUint(strings.TrimSpace(s), 10, 8)
		if err != nil {
			return nil, errors.New("invalid palette index").
				WithTag("value", s).
				Wrap(err)
		}
		overrides[uint8(c)] = mesh.Empty
	}
	return overrides, nil
}

// Algorithm names the mesher the options select.
func (o Options) Algorithm() string {
	if o.Naive {
		return "naive"
	}
	return "greedy"
}

// Stats counts the quads produced per face of mesh.RightHandedYUp.
type Stats struct {
	Quads [6]int `json:"quads"`
	Total int    `json:"total"`
}

func (s *Stats) add(g *mesh.QuadGroups) {
	for i, quads := range g.Groups {
		s.Quads[i] += len(quads)
		s.Total += len(quads)
	}
}

type chunkMesh struct {
	voxels []uint8
	groups mesh.QuadGroups
}

// color returns the colour of the voxel a quad starts at.
func (c *chunkMesh) color(p [3]uint32) [4]float32 {
	return vopl.Color(c.voxels[vopl.PaddedShape.Linearize(p)])
}

// MeshGrid meshes a chunk with the palette policy. Quad coordinates are in
// the padded space of vopl.Grid.Padded, one more than grid coordinates.
func MeshGrid(g *vopl.Grid, opts Options) (*mesh.QuadGroups, error) {
	m, err := meshGrid(g, opts)
	if err != nil {
		return nil, err
	}
	return &m.groups, nil
}

func meshGrid(g *vopl.Grid, opts Options) (*chunkMesh, error) {
	voxels, ext := g.Padded()
	policy := vopl.Policy{Overrides: opts.Overrides}
	faces := &mesh.RightHandedYUp.Faces

	m := &chunkMesh{voxels: voxels}
	var err error
	switch {
	case opts.Naive:
		err = mesh.VisibleBlockFaces(voxels, vopl.PaddedShape, ext, faces, &m.groups, policy)
	case opts.Parallel:
		buf := mesh.NewGreedyBuffer(len(voxels))
		err = mesh.GreedyQuadsParallel(voxels, vopl.PaddedShape, ext, faces, buf, policy)
		m.groups = buf.Quads
	default:
		buf := mesh.NewGreedyBuffer(len(voxels))
		err = mesh.GreedyQuads(voxels, vopl.PaddedShape, ext, faces, buf, policy)
		m.groups = buf.Quads
	}
	if err != nil {
		return nil, errors.New("meshing chunk failed").
			WithTag("algorithm", opts.Algorithm()).
			Wrap(err)
	}
	return m, nil
}

func decodeGrid(voplBytes []byte) (*vopl.Grid, error) {
	g, err := vopl.Decode(voplBytes)
	if err != nil {
		return nil, errors.New("decoding vopl failed").Wrap(err)
	}
	return g, nil
}

// VOPLToGLB meshes a .vopl file and returns it as binary glTF with the
// chunk's minimum corner at the origin.
func VOPLToGLB(voplBytes []byte, opts Options) ([]byte, Stats, error) {
	var stats Stats

	g, err := decodeGrid(voplBytes)
	if err != nil {
		return nil, stats, err
	}
	m, err := meshGrid(g, opts)
	if err != nil {
		return nil, stats, err
	}
	stats.add(&m.groups)

	b := glb.NewBuilder(generator)
	b.Add("chunk", &m.groups, &mesh.RightHandedYUp, m.color, [3]float32{-1, -1, -1})
	out, err := encodeGLB(b)
	return out, stats, err
}

// PackToGLB meshes every entry of a .voplpack concurrently and returns one
// binary glTF scene with a node per entry, laid out side by side on a square
// grid in the XZ plane.
func PackToGLB(packBytes []byte, opts Options) ([]byte, Stats, error) {
	var stats Stats

	pack, _, err := vopl.UnmarshalPack(packBytes)
	if err != nil {
		return nil, stats, errors.New("decoding voplpack failed").Wrap(err)
	}
	if len(pack.Entries) == 0 {
		return nil, stats, errors.New("voplpack has no entries")
	}

	meshes := make([]*chunkMesh, len(pack.Entries))
	var eg errgroup.Group
	eg.SetLimit(runtime.GOMAXPROCS(0))
	for i, e := range pack.Entries {
		eg.Go(func() error {
			g, err := e.File(pack.Header).Grid()
			if err != nil {
				return errors.New("decoding pack entry failed").
					WithTag("entry", e.Name).
					Wrap(err)
			}
			if meshes[i], err = meshGrid(g, opts); err != nil {
				return errors.New("meshing pack entry failed").
					WithTag("entry", e.Name).
					Wrap(err)
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, stats, err
	}

	cols := int(math.Ceil(math.Sqrt(float64(len(meshes)))))
	stepX, stepZ := float32(pack.Header.W), float32(pack.Header.D)

	b := glb.NewBuilder(generator)
	for i, m := range meshes {
		stats.add(&m.groups)
		row, col := i/cols, i%cols
		translation := [3]float32{float32(col)*stepX - 1, -1, float32(row)*stepZ - 1}
		b.Add(filepath.Base(pack.Entries[i].Name), &m.groups, &mesh.RightHandedYUp, m.color, translation)
	}
	out, err := encodeGLB(b)
	return out, stats, err
}

func encodeGLB(b *glb.Builder) ([]byte, error) {
	var out bytes.Buffer
	if err := b.Encode(&out); err != nil {
		return nil, errors.New("encoding glb failed").Wrap(err)
	}
	return out.Bytes(), nil
}

// FaceQuads are the quads of one face, in grid coordinates.
type FaceQuads struct {
	Normal [3]int        `json:"normal"`
	U      [3]int        `json:"u"`
	V      [3]int        `json:"v"`
	Quads  []ColoredQuad `json:"quads"`
}

// ColoredQuad is a quad with the palette index of its voxels.
type ColoredQuad struct {
	mesh.Quad
	Color uint8 `json:"color"`
}

// Quads is the JSON document VOPLToQuadsJSON returns.
type Quads struct {
	Algorithm string       `json:"algorithm"`
	Faces     [6]FaceQuads `json:"faces"`
	Stats     Stats        `json:"stats"`
}

// VOPLToQuads meshes a .vopl file and returns its quads in grid coordinates.
func VOPLToQuads(voplBytes []byte, opts Options) (*Quads, error) {
	g, err := decodeGrid(voplBytes)
	if err != nil {
		return nil, err
	}
	m, err := meshGrid(g, opts)
	if err != nil {
		return nil, err
	}

	out := &Quads{Algorithm: opts.Algorithm()}
	out.Stats.add(&m.groups)
	for i, f := range mesh.RightHandedYUp.Faces {
		fq := FaceQuads{
			Normal: f.SignedNormal(),
			U:      f.U(),
			V:      f.V(),
			Quads:  make([]ColoredQuad, 0, len(m.groups.Groups[i])),
		}
		for _, q := range m.groups.Groups[i] {
			c := m.voxels[vopl.PaddedShape.Linearize(q.Minimum)]
			for a := range q.Minimum {
				q.Minimum[a]--
			}
			fq.Quads = append(fq.Quads, ColoredQuad{Quad: q, Color: c})
		}
		out.Faces[i] = fq
	}
	return out, nil
}

// VOPLToQuadsJSON is VOPLToQuads encoded as JSON.
func VOPLToQuadsJSON(voplBytes []byte, opts Options) ([]byte, error) {
	q, err := VOPLToQuads(voplBytes, opts)
	if err != nil {
		return nil, err
	}
	return q.JSON()
}

// JSON encodes the document.
func (q *Quads) JSON() ([]byte, error) {
	b, err := json.Marshal(q)
	if err != nil {
		return nil, errors.New("encoding quads failed").Wrap(err)
	}
	return b, nil
}

// PackVOPLs builds a .voplpack from .vopl files keyed by name. Entries are
// sorted by name and every file must share the first file's header.
func PackVOPLs(files map[string][]byte, layout vopl.Layout, comp vopl.Compression) ([]byte, error) {
	if len(files) == 0 {
		return nil, errors.New("no files to pack")
	}

	pack := &vopl.Pack{}
	for _, name := range slices.Sorted(maps.Keys(files)) {
		f, err := vopl.ParseFile(files[name])
		if err != nil {
			return nil, errors.New("parsing vopl failed").
				WithTag("name", name).
				Wrap(err)
		}
		if err := pack.Add(name, f); err != nil {
			return nil, errors.New("adding vopl to pack failed").
				WithTag("name", name).
				Wrap(err)
		}
	}

	out, err := pack.Marshal(layout, comp)
	if err != nil {
		return nil, errors.New("encoding voplpack failed").Wrap(err)
	}
	return out, nil
}

// UnpackVOPLPack returns the .vopl files of a .voplpack keyed by name.
func UnpackVOPLPack(packBytes []byte) (map[string][]byte, error) {
	pack, _, err := vopl.UnmarshalPack(packBytes)
	if err != nil {
		return nil, errors.New("decoding voplpack failed").Wrap(err)
	}
	out := make(map[string][]byte, len(pack.Entries))
	for _, e := range pack.Entries {
		out[e.Name] = e.File(pack.Header).Bytes()
	}
	return out, nil
}

// DecodeGLB parses binary glTF, mainly so callers can inspect what
// VOPLToGLB and PackToGLB produced.
func DecodeGLB(b []byte) (*gltf.Document, error) {
	var doc gltf.Document
	if err := gltf.NewDecoder(bytes.NewReader(b)).Decode(&doc); err != nil {
		return nil, errors.New("decoding glb failed").Wrap(err)
	}
	return &doc, nil
}

// EditsToVOPL builds a .vopl file from a VPI18 edit stream applied to an
// empty chunk.
func EditsToVOPL(stream []byte) ([]byte, error) {
	return ApplyEdits(vopl.Encode(new(vopl.Grid)), stream)
}

// ApplyEdits applies a VPI18 edit stream to a .vopl file and returns the
// re-encoded file.
func ApplyEdits(voplBytes, stream []byte) ([]byte, error) {
	g, err := decodeGrid(voplBytes)
	if err != nil {
		return nil, err
	}
	edits, err := vopl.DecodeEdits(stream)
	if err != nil {
		return nil, errors.New("decoding edits failed").Wrap(err)
	}
	if err := g.Apply(edits); err != nil {
		return nil, errors.New("applying edits failed").Wrap(err)
	}
	return vopl.Encode(g), nil
}

// VOPLToEdits returns the VPI18 edit stream that builds a .vopl file's chunk
// from empty.
func VOPLToEdits(voplBytes []byte) ([]byte, error) {
	g, err := decodeGrid(voplBytes)
	if err != nil {
		return nil, err
	}
	return vopl.EncodeEdits(g.Edits()), nil
}
