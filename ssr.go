package vibegi

import "github.com/chewxy/math32"

// SSR march configuration. The march steps grow geometrically so nearby
// reflections stay sharp while distant ones still terminate.
const (
	ssrMaxSteps      = 32
	ssrInitialStep   = 0.05
	ssrStepGrowth    = 1.12
	ssrHitThickness  = 0.15
	ssrEdgeFadeStart = 0.85
)

// SSR computes screen-space reflections by marching the reflected view ray
// through the G-buffer and sampling scene color at the hit point. The alpha
// channel of the output carries hit confidence for compositing.
type SSR struct {
	out *Buffer
}

// NewSSR creates a screen-space reflection effect.
func NewSSR() *SSR { return &SSR{} }

// Name implements Effect.
func (s *SSR) Name() string { return "ssr" }

// Setup implements Effect.
func (s *SSR) Setup(width, height int) error {
	if width <= 0 || height <= 0 {
		return ErrInvalidDimensions
	}
	s.out = NewBuffer(width, height, FormatRGBA16Float)
	return nil
}

// Cleanup implements Effect.
func (s *SSR) Cleanup() { s.out = nil }

// Output returns the reflection buffer.
func (s *SSR) Output() *Buffer { return s.out }

// Execute implements Effect. fc.Color must hold the scene color the
// reflections sample from.
func (s *SSR) Execute(fc *FrameContext) error {
	if s.out == nil {
		return ErrNilBuffer
	}
	if fc.Color == nil {
		return ErrNilBuffer
	}

	w, h := s.out.Width(), s.out.Height()
	g := fc.GBuffer
	viewProj := fc.Projection.Mul(fc.View)

	for py := 0; py < h; py++ {
		v := (float32(py) + 0.5) / float32(h)
		for px := 0; px < w; px++ {
			u := (float32(px) + 0.5) / float32(w)
			wpos, normal, _, _, _ := g.sampleUV(u, v)
			if wpos.W == 0 {
				s.out.Set(px, py, Vec4{})
				continue
			}
			p := wpos.Vec3()
			viewDir := p.Sub(fc.ViewPos).Normalize()
			refl := viewDir.Sub(normal.Scale(2 * viewDir.Dot(normal)))

			s.out.Set(px, py, s.march(p, refl, viewProj, fc, g))
		}
	}
	return nil
}

// march walks the reflection ray, reprojecting each step into the screen
// and testing against G-buffer depth.
func (s *SSR) march(origin, dir Vec3, viewProj Mat4, fc *FrameContext, g *GBuffer) Vec4 {
	step := float32(ssrInitialStep)
	t := step
	for i := 0; i < ssrMaxSteps; i++ {
		sample := origin.Add(dir.Scale(t))
		clip := viewProj.MulVec4(Vec4{sample.X, sample.Y, sample.Z, 1})
		if clip.W <= 0 {
			return Vec4{}
		}
		su := clip.X/clip.W*0.5 + 0.5
		sv := 0.5 - clip.Y/clip.W*0.5
		if su < 0 || su > 1 || sv < 0 || sv > 1 {
			return Vec4{}
		}

		spos, _, _, _, _ := g.sampleUV(su, sv)
		if spos.W != 0 {
			rayDepth := -fc.View.MulPoint(sample).Z
			sceneDepth := -fc.View.MulPoint(spos.Vec3()).Z
			if rayDepth > sceneDepth && rayDepth-sceneDepth < ssrHitThickness {
				color := fc.Color.SampleUV(su, sv)
				// Fade reflections that resolve near the screen border,
				// where the march would otherwise cut off abruptly.
				edge := math32.Max(math32.Abs(su*2-1), math32.Abs(sv*2-1))
				fade := 1 - clamp32((edge-ssrEdgeFadeStart)/(1-ssrEdgeFadeStart), 0, 1)
				return Vec4{color.X, color.Y, color.Z, fade}
			}
		}

		step *= ssrStepGrowth
		t += step
	}
	return Vec4{}
}
