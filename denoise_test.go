package vibegi

import (
	"testing"

	"github.com/chewxy/math32"
)

// noisyLevel fills the finest cascade with salt-and-pepper noise after
// covering the whole G-buffer with a flat quad.
func noisyLevel(t *testing.T, e *Engine) *Buffer {
	t.Helper()
	in := frontalInput(quadMesh(20, V3(0.7, 0.7, 0.7), Vec3{}))
	in.DenoiseLevels = -1
	if err := e.RenderFrame(in); err != nil {
		t.Fatalf("RenderFrame() = %v", err)
	}
	b, err := e.CascadeRadiance(0)
	if err != nil {
		t.Fatalf("CascadeRadiance(0) = %v", err)
	}
	for y := 0; y < b.Height(); y++ {
		for x := 0; x < b.Width(); x++ {
			v := float32(0)
			if (x+y)%2 == 0 {
				v = 1
			}
			b.Set(x, y, V4(v, v, v, 1))
		}
	}
	return b
}

// variance measures the mean squared deviation of the red channel.
func variance(b *Buffer) float32 {
	var mean float32
	n := float32(b.Width() * b.Height())
	for y := 0; y < b.Height(); y++ {
		for x := 0; x < b.Width(); x++ {
			mean += b.At(x, y).X
		}
	}
	mean /= n
	var sum float32
	for y := 0; y < b.Height(); y++ {
		for x := 0; x < b.Width(); x++ {
			d := b.At(x, y).X - mean
			sum += d * d
		}
	}
	return sum / n
}

func TestDenoiseSmoothsFlatSurface(t *testing.T) {
	e := newTestEngine(t, 48, 48, WithNumCascades(2), WithTemporalAccumulation(false))
	b := noisyLevel(t, e)

	before := variance(b)
	e.denoiseCascades(1, 1)
	after := variance(b)

	if after >= before {
		t.Errorf("variance %v did not drop from %v on a flat surface", after, before)
	}
	if after > before*0.25 {
		t.Errorf("variance only dropped from %v to %v; filter too weak", before, after)
	}
}

func TestDenoisePreservesGeometricEdges(t *testing.T) {
	// Two quads at different depths split the screen. Radiance differs
	// across the silhouette; the bilateral weights must keep it that way.
	left := &Mesh{
		Vertices: []Vertex{
			{Position: V3(-20, -20, 0), Normal: V3(0, 0, 1)},
			{Position: V3(0, -20, 0), Normal: V3(0, 0, 1)},
			{Position: V3(0, 20, 0), Normal: V3(0, 0, 1)},
			{Position: V3(-20, 20, 0), Normal: V3(0, 0, 1)},
		},
		Indices: []uint32{0, 1, 2, 0, 2, 3},
		Albedo:  V3(0.7, 0.7, 0.7),
	}
	right := &Mesh{
		Vertices: []Vertex{
			{Position: V3(0, -20, 2.5), Normal: V3(0, 0, 1)},
			{Position: V3(20, -20, 2.5), Normal: V3(0, 0, 1)},
			{Position: V3(20, 20, 2.5), Normal: V3(0, 0, 1)},
			{Position: V3(0, 20, 2.5), Normal: V3(0, 0, 1)},
		},
		Indices: []uint32{0, 1, 2, 0, 2, 3},
		Albedo:  V3(0.7, 0.7, 0.7),
	}

	e := newTestEngine(t, 48, 48, WithNumCascades(1), WithTemporalAccumulation(false))
	in := frontalInput(left)
	in.Drawables = append(in.Drawables, Drawable{Model: Identity(), Mesh: right})
	in.DenoiseLevels = -1
	if err := e.RenderFrame(in); err != nil {
		t.Fatalf("RenderFrame() = %v", err)
	}

	b, _ := e.CascadeRadiance(0)
	w, h := b.Width(), b.Height()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := float32(0)
			if x >= w/2 {
				v = 1
			}
			b.Set(x, y, V4(v, v, v, 1))
		}
	}

	e.denoiseCascades(1, 1)

	// Pixels well inside each side must keep their value: the depth gap
	// between the quads zeroes the cross-edge weights.
	midY := h / 2
	leftVal := b.At(w/2-denoiseRadius-2, midY).X
	rightVal := b.At(w/2+denoiseRadius+2, midY).X
	if leftVal > 0.1 {
		t.Errorf("left side bled to %v across the depth edge", leftVal)
	}
	if rightVal < 0.9 {
		t.Errorf("right side bled to %v across the depth edge", rightVal)
	}
}

func TestDenoiseLevelRestriction(t *testing.T) {
	e := newTestEngine(t, 48, 48, WithNumCascades(3), WithTemporalAccumulation(false))
	in := frontalInput(quadMesh(20, V3(0.7, 0.7, 0.7), Vec3{}))
	in.DenoiseLevels = -1
	if err := e.RenderFrame(in); err != nil {
		t.Fatalf("RenderFrame() = %v", err)
	}

	// Fill all levels with checkerboards, then denoise only the finest.
	for i := 0; i < 3; i++ {
		b, _ := e.CascadeRadiance(i)
		for y := 0; y < b.Height(); y++ {
			for x := 0; x < b.Width(); x++ {
				v := float32((x + y) % 2)
				b.Set(x, y, V4(v, v, v, 1))
			}
		}
	}
	coarse, _ := e.CascadeRadiance(1)
	coarseBefore := variance(coarse)

	e.denoiseCascades(3, 1)

	finest, _ := e.CascadeRadiance(0)
	if v := variance(finest); v >= 0.2 {
		t.Errorf("finest level variance = %v, want smoothed", v)
	}
	if v := variance(coarse); v != coarseBefore {
		t.Errorf("level 1 variance changed from %v to %v; restriction ignored", coarseBefore, v)
	}
}

func TestDenoiseZeroMeansAllActive(t *testing.T) {
	e := newTestEngine(t, 48, 48, WithNumCascades(2), WithTemporalAccumulation(false))
	in := frontalInput(quadMesh(20, V3(0.7, 0.7, 0.7), Vec3{}))
	in.DenoiseLevels = -1
	if err := e.RenderFrame(in); err != nil {
		t.Fatalf("RenderFrame() = %v", err)
	}
	for i := 0; i < 2; i++ {
		b, _ := e.CascadeRadiance(i)
		for y := 0; y < b.Height(); y++ {
			for x := 0; x < b.Width(); x++ {
				v := float32((x + y) % 2)
				b.Set(x, y, V4(v, v, v, 1))
			}
		}
	}

	e.denoiseCascades(2, 0)
	for i := 0; i < 2; i++ {
		b, _ := e.CascadeRadiance(i)
		if v := variance(b); v >= 0.2 {
			t.Errorf("level %d variance = %v, want all levels smoothed", i, v)
		}
	}
}

func TestDenoiseBackgroundUntouched(t *testing.T) {
	e := newTestEngine(t, 32, 32, WithNumCascades(1), WithTemporalAccumulation(false))
	in := litSceneInput()
	in.Drawables = nil // background only
	if err := e.RenderFrame(in); err != nil {
		t.Fatalf("RenderFrame() = %v", err)
	}
	b, _ := e.CascadeRadiance(0)
	b.Clear(V4(3, 3, 3, 1))
	e.denoiseCascades(1, 0)
	// Background pixels pass through; the values survive both axes.
	if got := b.At(16, 16); !vec4Near(got, V4(3, 3, 3, 1)) {
		t.Errorf("background pixel = %v after denoise, want passthrough", got)
	}
}

func TestDenoiseSkippedWhenNegative(t *testing.T) {
	// Two identical renders of a bounce-lit scene, one with denoising
	// disabled. The pass runs exactly when DenoiseLevels is non-negative,
	// so the raw output must match a manual denoise of the skipped render.
	raw := newTestEngine(t, 48, 48, WithNumCascades(2), WithTemporalAccumulation(false))
	filtered := newTestEngine(t, 48, 48, WithNumCascades(2), WithTemporalAccumulation(false))

	in := litSceneInput()
	in.DenoiseLevels = -1
	if err := raw.RenderFrame(in); err != nil {
		t.Fatalf("raw RenderFrame() = %v", err)
	}
	in2 := litSceneInput()
	in2.DenoiseLevels = 0
	if err := filtered.RenderFrame(in2); err != nil {
		t.Fatalf("filtered RenderFrame() = %v", err)
	}

	raw.denoiseCascades(2, 0)

	rb, _ := raw.CascadeRadiance(0)
	fb, _ := filtered.CascadeRadiance(0)
	if bufferDelta(rb, fb) != 0 {
		t.Error("manual denoise of a skipped render differs from an in-frame denoise")
	}
}

func TestDenoiseEdgePreservationUsesNormals(t *testing.T) {
	// A box corner: two faces meeting at 90 degrees, same depth range.
	// The pow(n·n) weight must stop bleeding across the crease.
	leftFace := &Mesh{
		Vertices: []Vertex{
			{Position: V3(-4, -4, -4), Normal: V3(1, 0, 0)},
			{Position: V3(0, -4, 0), Normal: V3(1, 0, 0)},
			{Position: V3(0, 4, 0), Normal: V3(1, 0, 0)},
			{Position: V3(-4, 4, -4), Normal: V3(1, 0, 0)},
		},
		Indices: []uint32{0, 1, 2, 0, 2, 3},
		Albedo:  V3(0.7, 0.7, 0.7),
	}
	rightFace := &Mesh{
		Vertices: []Vertex{
			{Position: V3(0, -4, 0), Normal: V3(-1, 0, 0)},
			{Position: V3(4, -4, -4), Normal: V3(-1, 0, 0)},
			{Position: V3(4, 4, -4), Normal: V3(-1, 0, 0)},
			{Position: V3(0, 4, 0), Normal: V3(-1, 0, 0)},
		},
		Indices: []uint32{0, 1, 2, 0, 2, 3},
		Albedo:  V3(0.7, 0.7, 0.7),
	}

	e := newTestEngine(t, 48, 48, WithNumCascades(1), WithTemporalAccumulation(false))
	in := frontalInput(leftFace)
	in.Drawables = append(in.Drawables, Drawable{Model: Identity(), Mesh: rightFace})
	in.DenoiseLevels = -1
	if err := e.RenderFrame(in); err != nil {
		t.Fatalf("RenderFrame() = %v", err)
	}

	b, _ := e.CascadeRadiance(0)
	w, h := b.Width(), b.Height()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := float32(0)
			if x >= w/2 {
				v = 1
			}
			b.Set(x, y, V4(v, v, v, 1))
		}
	}

	e.denoiseCascades(1, 1)

	leftVal := b.At(w/2-denoiseRadius-2, h/2).X
	rightVal := b.At(w/2+denoiseRadius+2, h/2).X
	if math32.Abs(leftVal-0) > 0.15 || math32.Abs(rightVal-1) > 0.15 {
		t.Errorf("crease bled: left %v right %v", leftVal, rightVal)
	}
}
