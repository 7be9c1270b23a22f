// Package scene provides minimal scene assembly helpers for feeding the
// engine: entities with transforms and materials, mesh constructors, and an
// orbiting camera. It exists for demos and tests; real applications usually
// build FrameInput from their own scene graph.
package scene

import (
	vibegi "github.com/Liam-Griffiths/liams-vibe-gi"
)

// Entity is a named mesh instance with a world transform.
type Entity struct {
	Name      string
	Transform vibegi.Mat4
	Mesh      *vibegi.Mesh
}

// Scene is an ordered collection of entities plus the dominant light.
type Scene struct {
	entities []*Entity

	// Light drives direct reflectance in the cascade gather.
	Light vibegi.Light
}

// New creates an empty scene with a default overhead light.
func New() *Scene {
	return &Scene{
		Light: vibegi.Light{
			Position: vibegi.V3(0, 4, 0),
			Color:    vibegi.V3(8, 8, 7.5),
			Radius:   12,
		},
	}
}

// Add appends an entity to the scene.
func (s *Scene) Add(e *Entity) { s.entities = append(s.entities, e) }

// Entities returns the entities in insertion order.
func (s *Scene) Entities() []*Entity { return s.entities }

// Drawables flattens the scene into the form FrameInput consumes.
func (s *Scene) Drawables() []vibegi.Drawable {
	out := make([]vibegi.Drawable, 0, len(s.entities))
	for _, e := range s.entities {
		if e.Mesh == nil {
			continue
		}
		out = append(out, vibegi.Drawable{Model: e.Transform, Mesh: e.Mesh})
	}
	return out
}

// NewPlane builds a size x size horizontal quad centered at the origin with
// its normal facing +Y.
func NewPlane(size float32, albedo vibegi.Vec3) *vibegi.Mesh {
	h := size / 2
	return &vibegi.Mesh{
		Vertices: []vibegi.Vertex{
			{Position: vibegi.V3(-h, 0, -h), Normal: vibegi.V3(0, 1, 0)},
			{Position: vibegi.V3(h, 0, -h), Normal: vibegi.V3(0, 1, 0)},
			{Position: vibegi.V3(h, 0, h), Normal: vibegi.V3(0, 1, 0)},
			{Position: vibegi.V3(-h, 0, h), Normal: vibegi.V3(0, 1, 0)},
		},
		Indices: []uint32{0, 2, 1, 0, 3, 2},
		Albedo:  albedo,
	}
}

// NewBox builds an axis-aligned box centered at the origin with per-face
// normals. Emission may be zero for non-emissive surfaces.
func NewBox(size, albedo, emission vibegi.Vec3) *vibegi.Mesh {
	hx, hy, hz := size.X/2, size.Y/2, size.Z/2
	m := &vibegi.Mesh{Albedo: albedo, Emission: emission}

	addFace := func(a, b, c, d, n vibegi.Vec3) {
		base := uint32(len(m.Vertices))
		for _, p := range []vibegi.Vec3{a, b, c, d} {
			m.Vertices = append(m.Vertices, vibegi.Vertex{Position: p, Normal: n})
		}
		m.Indices = append(m.Indices,
			base, base+1, base+2,
			base, base+2, base+3)
	}

	// +X, -X, +Y, -Y, +Z, -Z
	addFace(vibegi.V3(hx, -hy, -hz), vibegi.V3(hx, hy, -hz), vibegi.V3(hx, hy, hz), vibegi.V3(hx, -hy, hz), vibegi.V3(1, 0, 0))
	addFace(vibegi.V3(-hx, -hy, hz), vibegi.V3(-hx, hy, hz), vibegi.V3(-hx, hy, -hz), vibegi.V3(-hx, -hy, -hz), vibegi.V3(-1, 0, 0))
	addFace(vibegi.V3(-hx, hy, -hz), vibegi.V3(-hx, hy, hz), vibegi.V3(hx, hy, hz), vibegi.V3(hx, hy, -hz), vibegi.V3(0, 1, 0))
	addFace(vibegi.V3(-hx, -hy, hz), vibegi.V3(-hx, -hy, -hz), vibegi.V3(hx, -hy, -hz), vibegi.V3(hx, -hy, hz), vibegi.V3(0, -1, 0))
	addFace(vibegi.V3(-hx, -hy, hz), vibegi.V3(hx, -hy, hz), vibegi.V3(hx, hy, hz), vibegi.V3(-hx, hy, hz), vibegi.V3(0, 0, 1))
	addFace(vibegi.V3(hx, -hy, -hz), vibegi.V3(-hx, -hy, -hz), vibegi.V3(-hx, hy, -hz), vibegi.V3(hx, hy, -hz), vibegi.V3(0, 0, -1))
	return m
}

// Demo builds a small enclosed test scene: a floor, two colored walls, a
// center box, and an emissive panel near the ceiling. Indirect bounce off
// the colored walls makes cascade output easy to eyeball.
func Demo() *Scene {
	s := New()
	s.Add(&Entity{
		Name:      "floor",
		Transform: vibegi.Identity(),
		Mesh:      NewPlane(10, vibegi.V3(0.7, 0.7, 0.7)),
	})
	s.Add(&Entity{
		Name:      "red_wall",
		Transform: vibegi.Translation(vibegi.V3(-5, 2.5, 0)),
		Mesh:      NewBox(vibegi.V3(0.2, 5, 10), vibegi.V3(0.8, 0.1, 0.1), vibegi.Vec3{}),
	})
	s.Add(&Entity{
		Name:      "green_wall",
		Transform: vibegi.Translation(vibegi.V3(5, 2.5, 0)),
		Mesh:      NewBox(vibegi.V3(0.2, 5, 10), vibegi.V3(0.1, 0.8, 0.1), vibegi.Vec3{}),
	})
	s.Add(&Entity{
		Name:      "box",
		Transform: vibegi.Translation(vibegi.V3(0, 0.75, 0)).Mul(vibegi.RotationY(0.4)),
		Mesh:      NewBox(vibegi.V3(1.5, 1.5, 1.5), vibegi.V3(0.6, 0.6, 0.8), vibegi.Vec3{}),
	})
	s.Add(&Entity{
		Name:      "lamp",
		Transform: vibegi.Translation(vibegi.V3(0, 4.5, 0)),
		Mesh:      NewBox(vibegi.V3(2, 0.1, 2), vibegi.V3(1, 1, 1), vibegi.V3(6, 6, 5.5)),
	})
	return s
}
