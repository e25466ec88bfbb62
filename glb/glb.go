// Package glb turns quad groups into binary glTF scenes.
package glb

import (
	"io"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"github.com/voxelsplace/blockmesh/mesh"
)

// ColorFunc returns the RGBA colour of the voxel at a quad minimum.
type ColorFunc func(p [3]uint32) [4]float32

// Builder collects meshes into one glTF document, one node per mesh.
type Builder struct {
	doc       *gltf.Document
	materials [2]*int // opaque, blend
}

// NewBuilder returns an empty document whose asset generator is set to
// generator.
func NewBuilder(generator string) *Builder {
	doc := gltf.NewDocument()
	doc.Asset.Generator = generator
	return &Builder{doc: doc}
}

// Document returns the document built so far.
func (b *Builder) Document() *gltf.Document { return b.doc }

// Add triangulates groups, meshed with the faces of config, into a new mesh
// named name and places it in the scene at translation. Texture coordinates
// repeat once per voxel with V pointing down, as glTF expects. Translucent
// colours switch the mesh to a blended material.
func (b *Builder) Add(name string, groups *mesh.QuadGroups, config *mesh.QuadCoordinateConfig, color ColorFunc, translation [3]float32) {
	node := &gltf.Node{Name: name, Translation: [3]float64{float64(translation[0]), float64(translation[1]), float64(translation[2])}}

	quads := groups.Count()
	if quads > 0 {
		positions := make([][3]float32, 0, quads*4)
		normals := make([][3]float32, 0, quads*4)
		colors := make([][4]float32, 0, quads*4)
		uvs := make([][2]float32, 0, quads*4)
		indices := make([]uint32, 0, quads*6)
		blend := false

		for i, f := range config.Faces {
			n := f.SignedNormal()
			normal := [3]float32{float32(n[0]), float32(n[1]), float32(n[2])}
			winding := windingIndices(f)

			for _, q := range groups.Groups[i] {
				rgba := color(q.Minimum)
				if rgba[3] < 1 {
					blend = true
				}

				base := uint32(len(positions))
				corners := Corners(f, q)
				tex := TexCoords(f, config.UFlipFace, true, q)
				positions = append(positions, corners[:]...)
				uvs = append(uvs, tex[:]...)
				for range 4 {
					normals = append(normals, normal)
					colors = append(colors, rgba)
				}
				for _, idx := range winding {
					indices = append(indices, base+idx)
				}
			}
		}

		prim := &gltf.Primitive{
			Attributes: map[string]int{
				gltf.POSITION:   modeler.WritePosition(b.doc, positions),
				gltf.NORMAL:     modeler.WriteNormal(b.doc, normals),
				gltf.TEXCOORD_0: modeler.WriteTextureCoord(b.doc, uvs),
				gltf.COLOR_0:    modeler.WriteColor(b.doc, colors),
			},
			Indices:  gltf.Index(modeler.WriteIndices(b.doc, indices)),
			Material: b.material(blend),
		}
		b.doc.Meshes = append(b.doc.Meshes, &gltf.Mesh{Name: name, Primitives: []*gltf.Primitive{prim}})
		node.Mesh = gltf.Index(len(b.doc.Meshes) - 1)
	}

	b.doc.Nodes = append(b.doc.Nodes, node)
	b.doc.Scenes[0].Nodes = append(b.doc.Scenes[0].Nodes, len(b.doc.Nodes)-1)
}

func (b *Builder) material(blend bool) *int {
	i := 0
	if blend {
		i = 1
	}
	if b.materials[i] != nil {
		return b.materials[i]
	}

	m := &gltf.Material{
		Name: "opaque",
		PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
			BaseColorFactor: &[4]float64{1, 1, 1, 1},
			MetallicFactor:  gltf.Float(0),
			RoughnessFactor: gltf.Float(1),
		},
		AlphaMode: gltf.AlphaOpaque,
	}
	if blend {
		m.Name = "blend"
		m.AlphaMode = gltf.AlphaBlend
	}
	b.doc.Materials = append(b.doc.Materials, m)
	b.materials[i] = gltf.Index(len(b.doc.Materials) - 1)
	return b.materials[i]
}

// Encode writes the document as binary glTF.
func (b *Builder) Encode(w io.Writer) error {
	enc := gltf.NewEncoder(w)
	enc.AsBinary = true
	return enc.Encode(b.doc)
}

// Corners returns the four corners of q in the order minimum, minimum+U,
// minimum+V, minimum+U+V, where U and V are scaled by the quad width and
// height. Faces on the positive side of a voxel sit one unit along the
// normal.
func Corners(f mesh.OrientedBlockFace, q mesh.Quad) [4][3]float32 {
	var base [3]float32
	for i, m := range q.Minimum {
		base[i] = float32(m)
	}
	if f.NSign > 0 {
		base = add(base, f.Normal(), 1)
	}

	w, h := float32(q.Width), float32(q.Height)
	return [4][3]float32{
		base,
		add(base, f.U(), w),
		add(base, f.V(), h),
		add(add(base, f.U(), w), f.V(), h),
	}
}

// TexCoords returns the UV coordinates of the corners Corners returns,
// spanning the quad width and height so textures tile once per voxel. U is
// mirrored on the positive face of uFlipFace and on the negative faces of the
// other axes, so textures read the same way round a cube. flipV mirrors V for
// formats whose V axis points down.
func TexCoords(f mesh.OrientedBlockFace, uFlipFace mesh.Axis, flipV bool, q mesh.Quad) [4][2]float32 {
	flipU := uFlipFace == f.NormalAxis()
	if f.NSign < 0 {
		flipU = !flipU
	}

	w, h := float32(q.Width), float32(q.Height)
	u := [4]float32{0, w, 0, w}
	v := [4]float32{0, 0, h, h}
	if flipU {
		u = [4]float32{w, 0, w, 0}
	}
	if flipV {
		v = [4]float32{h, h, 0, 0}
	}
	return [4][2]float32{{u[0], v[0]}, {u[1], v[1]}, {u[2], v[2]}, {u[3], v[3]}}
}

func add(p [3]float32, d [3]int, scale float32) [3]float32 {
	for i := range p {
		p[i] += float32(d[i]) * scale
	}
	return p
}

// windingIndices returns the two triangles of a quad so that they face
// outward.
func windingIndices(f mesh.OrientedBlockFace) [6]uint32 {
	if f.CounterClockwise() {
		return [6]uint32{0, 1, 2, 1, 3, 2}
	}
	return [6]uint32{0, 2, 1, 2, 3, 1}
}
