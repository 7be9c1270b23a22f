package vibegi

// Vertex is a single mesh vertex in object space.
type Vertex struct {
	Position Vec3
	Normal   Vec3
}

// Mesh is an indexed triangle mesh with a uniform surface material.
// Albedo is linear-space diffuse reflectance; Emission is radiant exitance
// in the same units as light color.
type Mesh struct {
	Vertices []Vertex
	Indices  []uint32

	Albedo   Vec3
	Emission Vec3
}

// TriangleCount returns the number of triangles in the mesh.
func (m *Mesh) TriangleCount() int { return len(m.Indices) / 3 }

// Triangle returns the three vertices of triangle i.
func (m *Mesh) Triangle(i int) (v0, v1, v2 Vertex) {
	base := i * 3
	return m.Vertices[m.Indices[base]],
		m.Vertices[m.Indices[base+1]],
		m.Vertices[m.Indices[base+2]]
}

// Drawable pairs a mesh with its object-to-world transform.
type Drawable struct {
	Model Mat4
	Mesh  *Mesh
}

// Light is a point light. Color carries the light's intensity; Radius is the
// falloff distance beyond which the light contributes nothing.
type Light struct {
	Position Vec3
	Color    Vec3
	Radius   float32
}

// FrameInput carries everything the engine needs to render one frame.
type FrameInput struct {
	// View and Projection are the camera matrices for this frame. Previous
	// frame matrices are retained internally for velocity computation.
	View       Mat4
	Projection Mat4

	// Drawables is the geometry visible this frame.
	Drawables []Drawable

	// Light is the dominant light driving direct reflectance in the
	// cascade gather.
	Light Light

	// ActiveCascades limits how many of the finest levels are computed
	// this frame. Zero means all configured levels; values are clamped to
	// [1, configured count].
	ActiveCascades int

	// DenoiseLevels restricts the bilateral denoiser to the finest N
	// computed levels. Zero means all computed levels; negative skips
	// denoising entirely.
	DenoiseLevels int
}
