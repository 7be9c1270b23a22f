package vibegi

import (
	"math/rand/v2"

	"github.com/chewxy/math32"
)

// SSAO kernel configuration, matching the classic hemisphere-kernel
// technique: samples biased toward the origin, rotated per pixel by a tiled
// 4x4 noise pattern.
const (
	ssaoKernelSize = 32
	ssaoNoiseDim   = 4

	// DefaultSSAORadius is the world-space sampling radius.
	DefaultSSAORadius = 0.5

	// DefaultSSAOBias offsets depth comparisons to avoid self-occlusion
	// acne on flat surfaces.
	DefaultSSAOBias = 0.025
)

// SSAO computes screen-space ambient occlusion from the G-buffer.
// The raw estimate is noisy; Execute follows it with a 4x4 box blur sized to
// the noise tile, and Output returns the blurred result.
type SSAO struct {
	Radius float32
	Bias   float32

	kernel [ssaoKernelSize]Vec3
	noise  [ssaoNoiseDim * ssaoNoiseDim]Vec3

	raw     *Buffer
	blurred *Buffer
}

// NewSSAO creates an SSAO effect with default radius and bias.
// The sample kernel is generated from a fixed seed so output is
// reproducible across runs.
func NewSSAO() *SSAO {
	s := &SSAO{
		Radius: DefaultSSAORadius,
		Bias:   DefaultSSAOBias,
	}
	rng := rand.New(rand.NewPCG(0x5ca1ab1e, 0x0ddba11))
	for i := range s.kernel {
		v := Vec3{
			rng.Float32()*2 - 1,
			rng.Float32()*2 - 1,
			rng.Float32(), // positive-Z hemisphere
		}.Normalize().Scale(rng.Float32())
		// Bias samples toward the origin so near occluders dominate.
		scale := float32(i) / ssaoKernelSize
		scale = 0.1 + scale*scale*0.9
		s.kernel[i] = v.Scale(scale)
	}
	for i := range s.noise {
		// Rotation around Z only.
		s.noise[i] = Vec3{rng.Float32()*2 - 1, rng.Float32()*2 - 1, 0}
	}
	return s
}

// Name implements Effect.
func (s *SSAO) Name() string { return "ssao" }

// Setup implements Effect.
func (s *SSAO) Setup(width, height int) error {
	if width <= 0 || height <= 0 {
		return ErrInvalidDimensions
	}
	s.raw = NewBuffer(width, height, FormatR16Float)
	s.blurred = NewBuffer(width, height, FormatR16Float)
	return nil
}

// Cleanup implements Effect.
func (s *SSAO) Cleanup() {
	s.raw = nil
	s.blurred = nil
}

// Output returns the blurred occlusion buffer. Occlusion lives in the X
// channel: 1 is fully open, 0 fully occluded.
func (s *SSAO) Output() *Buffer { return s.blurred }

// Execute implements Effect.
func (s *SSAO) Execute(fc *FrameContext) error {
	if s.raw == nil || s.blurred == nil {
		return ErrNilBuffer
	}
	if a := Accelerator(); a != nil && a.CanAccelerate(AccelSSAO) {
		err := a.SSAOPass(passTarget(s.raw), SSAOArgs{
			GBuffer: GBufferTargets{
				Position: passTarget(fc.GBuffer.Position),
				Normal:   passTarget(fc.GBuffer.Normal),
				Albedo:   passTarget(fc.GBuffer.Albedo),
				Depth:    passTarget(fc.GBuffer.Depth),
				Emission: passTarget(fc.GBuffer.Emission),
			},
			View:       fc.View,
			Projection: fc.Projection,
			Radius:     s.Radius,
			Bias:       s.Bias,
			Kernel:     s.kernel[:],
			Noise:      s.noise[:],
			NoiseDim:   ssaoNoiseDim,
		})
		if err == nil {
			s.blur()
			return nil
		}
		Logger().Debug("ssao pass on CPU", "err", err)
	}

	w, h := s.raw.Width(), s.raw.Height()
	g := fc.GBuffer
	for py := 0; py < h; py++ {
		v := (float32(py) + 0.5) / float32(h)
		for px := 0; px < w; px++ {
			u := (float32(px) + 0.5) / float32(w)
			wpos, wnormal, _, _, _ := g.sampleUV(u, v)
			if wpos.W == 0 {
				s.raw.Set(px, py, Vec4{X: 1})
				continue
			}

			// Work in view space so depth comparisons are linear.
			pos := fc.View.MulPoint(wpos.Vec3())
			normal := fc.View.MulDir(wnormal).Normalize()

			// Tangent basis rotated by the tiled noise vector.
			rot := s.noise[(py%ssaoNoiseDim)*ssaoNoiseDim+px%ssaoNoiseDim]
			tangent := rot.Sub(normal.Scale(rot.Dot(normal))).Normalize()
			if tangent.LengthSq() == 0 {
				tangent = Vec3{1, 0, 0}
			}
			bitangent := normal.Cross(tangent)

			var occlusion float32
			for _, k := range s.kernel {
				sample := pos.
					Add(tangent.Scale(k.X * s.Radius)).
					Add(bitangent.Scale(k.Y * s.Radius)).
					Add(normal.Scale(k.Z * s.Radius))

				clip := fc.Projection.MulVec4(Vec4{sample.X, sample.Y, sample.Z, 1})
				if clip.W <= 0 {
					continue
				}
				su := clip.X/clip.W*0.5 + 0.5
				sv := 0.5 - clip.Y/clip.W*0.5
				if su < 0 || su > 1 || sv < 0 || sv > 1 {
					continue
				}
				spos, _, _, _, _ := g.sampleUV(su, sv)
				if spos.W == 0 {
					continue
				}
				sceneDepth := -fc.View.MulPoint(spos.Vec3()).Z
				sampleDepth := -sample.Z
				if sceneDepth+s.Bias < sampleDepth {
					// Range check keeps distant background geometry
					// from darkening foreground edges.
					rangeCheck := s.Radius / math32.Max(s.Radius, sampleDepth-sceneDepth)
					occlusion += clamp32(rangeCheck, 0, 1)
				}
			}
			s.raw.Set(px, py, Vec4{X: 1 - occlusion/ssaoKernelSize})
		}
	}
	s.blur()
	return nil
}

// blur averages the raw estimate over the 4x4 noise tile, removing the
// rotation pattern.
func (s *SSAO) blur() {
	w, h := s.raw.Width(), s.raw.Height()
	for py := 0; py < h; py++ {
		for px := 0; px < w; px++ {
			var sum float32
			var count float32
			for dy := -ssaoNoiseDim / 2; dy < ssaoNoiseDim/2; dy++ {
				for dx := -ssaoNoiseDim / 2; dx < ssaoNoiseDim/2; dx++ {
					sx := px + dx
					sy := py + dy
					if sx < 0 || sx >= w || sy < 0 || sy >= h {
						continue
					}
					sum += s.raw.At(sx, sy).X
					count++
				}
			}
			s.blurred.Set(px, py, Vec4{X: sum / count})
		}
	}
}
