package vibegi

import (
	"testing"

	"github.com/chewxy/math32"
)

// quadMesh returns a camera-facing unit quad at z = 0 spanning [-s, s].
func quadMesh(s float32, albedo, emission Vec3) *Mesh {
	return &Mesh{
		Vertices: []Vertex{
			{Position: V3(-s, -s, 0), Normal: V3(0, 0, 1)},
			{Position: V3(s, -s, 0), Normal: V3(0, 0, 1)},
			{Position: V3(s, s, 0), Normal: V3(0, 0, 1)},
			{Position: V3(-s, s, 0), Normal: V3(0, 0, 1)},
		},
		Indices:  []uint32{0, 1, 2, 0, 2, 3},
		Albedo:   albedo,
		Emission: emission,
	}
}

// frontalInput frames a quad with a camera at +Z looking at the origin.
func frontalInput(mesh *Mesh) *FrameInput {
	return &FrameInput{
		View:       LookAt(V3(0, 0, 5), V3(0, 0, 0), V3(0, 1, 0)),
		Projection: Perspective(math32.Pi/2, 4.0/3.0, 0.1, 100),
		Drawables:  []Drawable{{Model: Identity(), Mesh: mesh}},
		Light:      Light{Position: V3(0, 0, 3), Color: V3(5, 5, 5), Radius: 20},
	}
}

func newTestEngine(t *testing.T, w, h int, opts ...Option) *Engine {
	t.Helper()
	e, err := New(w, h, opts...)
	if err != nil {
		t.Fatalf("New(%d, %d) = %v", w, h, err)
	}
	t.Cleanup(e.Close)
	return e
}

func TestRenderGBufferCoverage(t *testing.T) {
	e := newTestEngine(t, 64, 48, WithNumCascades(3))
	mesh := quadMesh(1, V3(0.8, 0.2, 0.2), Vec3{})
	if err := e.RenderFrame(frontalInput(mesh)); err != nil {
		t.Fatalf("RenderFrame() = %v", err)
	}

	g := e.GBuffer()

	// The quad covers the screen center.
	center := g.Position.At(32, 24)
	if center.W != 1 {
		t.Fatalf("center coverage = %v, want 1", center.W)
	}
	// World position interpolates to near the quad plane.
	if math32.Abs(center.Z) > 0.01 {
		t.Errorf("center world Z = %v, want ~0", center.Z)
	}

	// Corners are background.
	if corner := g.Position.At(0, 0); corner.W != 0 {
		t.Errorf("corner coverage = %v, want 0", corner.W)
	}
}

func TestRenderGBufferAttributes(t *testing.T) {
	albedo := V3(0.8, 0.2, 0.2)
	emission := V3(1, 2, 3)
	e := newTestEngine(t, 64, 48, WithNumCascades(3))
	if err := e.RenderFrame(frontalInput(quadMesh(1, albedo, emission))); err != nil {
		t.Fatalf("RenderFrame() = %v", err)
	}

	g := e.GBuffer()
	x, y := 32, 24

	if got := g.Albedo.At(x, y).Vec3(); !vec3Near(got, albedo) {
		t.Errorf("albedo = %v, want %v", got, albedo)
	}
	if got := g.Emission.At(x, y).Vec3(); !vec3Near(got, emission) {
		t.Errorf("emission = %v, want %v", got, emission)
	}
	// The quad normal faces the camera.
	if got := g.Normal.At(x, y).Vec3(); !vec3Near(got, V3(0, 0, 1)) {
		t.Errorf("normal = %v, want +Z", got)
	}
	// Linear depth is the camera distance to the quad plane.
	if got := g.Depth.At(x, y).X; math32.Abs(got-5) > 0.01 {
		t.Errorf("depth = %v, want 5", got)
	}
}

func TestRenderGBufferDepthTest(t *testing.T) {
	nearQuad := quadMesh(0.5, V3(1, 0, 0), Vec3{})
	farQuad := quadMesh(2, V3(0, 1, 0), Vec3{})

	e := newTestEngine(t, 64, 48, WithNumCascades(3))
	in := frontalInput(farQuad)
	// Near quad sits closer to the camera; draw order must not matter.
	in.Drawables = append(in.Drawables, Drawable{
		Model: Translation(V3(0, 0, 1)), Mesh: nearQuad,
	})
	if err := e.RenderFrame(in); err != nil {
		t.Fatalf("RenderFrame() = %v", err)
	}

	g := e.GBuffer()
	if got := g.Albedo.At(32, 24).Vec3(); !vec3Near(got, V3(1, 0, 0)) {
		t.Errorf("center albedo = %v, want near quad red", got)
	}
}

func TestRenderGBufferVelocity(t *testing.T) {
	mesh := quadMesh(1, V3(0.5, 0.5, 0.5), Vec3{})
	e := newTestEngine(t, 64, 48, WithNumCascades(3))

	// First frame has no previous camera: velocity is zero.
	if err := e.RenderFrame(frontalInput(mesh)); err != nil {
		t.Fatalf("RenderFrame() = %v", err)
	}
	vel := e.GBuffer().Velocity.At(32, 24)
	if !near(vel.X, 0) || !near(vel.Y, 0) {
		t.Errorf("first frame velocity = (%v, %v), want zero", vel.X, vel.Y)
	}

	// A repeated static frame still has zero velocity.
	if err := e.RenderFrame(frontalInput(mesh)); err != nil {
		t.Fatalf("RenderFrame() = %v", err)
	}
	vel = e.GBuffer().Velocity.At(32, 24)
	if !near(vel.X, 0) || !near(vel.Y, 0) {
		t.Errorf("static frame velocity = (%v, %v), want zero", vel.X, vel.Y)
	}

	// Camera pan produces horizontal screen-space motion.
	in := frontalInput(mesh)
	in.View = LookAt(V3(0.5, 0, 5), V3(0.5, 0, 0), V3(0, 1, 0))
	if err := e.RenderFrame(in); err != nil {
		t.Fatalf("RenderFrame() = %v", err)
	}
	vel = e.GBuffer().Velocity.At(32, 24)
	if math32.Abs(vel.X) < 1e-4 {
		t.Errorf("panned frame velocity X = %v, want nonzero", vel.X)
	}
}

func TestRenderGBufferBehindCameraCulled(t *testing.T) {
	e := newTestEngine(t, 32, 32, WithNumCascades(2))
	in := frontalInput(quadMesh(1, V3(1, 1, 1), Vec3{}))
	// Move the quad behind the camera.
	in.Drawables[0].Model = Translation(V3(0, 0, 10))
	if err := e.RenderFrame(in); err != nil {
		t.Fatalf("RenderFrame() = %v", err)
	}
	g := e.GBuffer()
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			if g.Position.At(x, y).W != 0 {
				t.Fatalf("pixel (%d,%d) covered by geometry behind the camera", x, y)
			}
		}
	}
}

func TestRenderGBufferNilMeshSkipped(t *testing.T) {
	e := newTestEngine(t, 32, 32, WithNumCascades(2))
	in := frontalInput(quadMesh(1, V3(1, 1, 1), Vec3{}))
	in.Drawables = append(in.Drawables, Drawable{Model: Identity()})
	if err := e.RenderFrame(in); err != nil {
		t.Errorf("RenderFrame() with nil mesh drawable = %v", err)
	}
}

func TestGBufferSampleUVNearest(t *testing.T) {
	e := newTestEngine(t, 64, 48, WithNumCascades(2))
	if err := e.RenderFrame(frontalInput(quadMesh(1, V3(0.3, 0.6, 0.9), Vec3{}))); err != nil {
		t.Fatalf("RenderFrame() = %v", err)
	}
	pos, normal, albedo, _, depth := e.GBuffer().sampleUV(0.5, 0.5)
	if pos.W != 1 {
		t.Fatalf("center sample coverage = %v", pos.W)
	}
	if !vec3Near(normal, V3(0, 0, 1)) {
		t.Errorf("sampled normal = %v", normal)
	}
	if !vec3Near(albedo.Vec3(), V3(0.3, 0.6, 0.9)) {
		t.Errorf("sampled albedo = %v", albedo)
	}
	if math32.Abs(depth-5) > 0.01 {
		t.Errorf("sampled depth = %v, want 5", depth)
	}
}
