package vibegi

import "github.com/chewxy/math32"

// FXAA thresholds from the standard console preset.
const (
	fxaaEdgeThreshold    = 0.125
	fxaaEdgeThresholdMin = 0.0312
)

// FXAA applies fast approximate anti-aliasing: a purely spatial filter that
// blurs along detected luminance edges. Cheaper than TAA and free of
// ghosting, at the cost of softening fine detail.
type FXAA struct {
	out *Buffer
}

// NewFXAA creates a fast approximate anti-aliasing effect.
func NewFXAA() *FXAA { return &FXAA{} }

// Name implements Effect.
func (f *FXAA) Name() string { return "fxaa" }

// Setup implements Effect.
func (f *FXAA) Setup(width, height int) error {
	if width <= 0 || height <= 0 {
		return ErrInvalidDimensions
	}
	f.out = NewBuffer(width, height, FormatRGBA16Float)
	return nil
}

// Cleanup implements Effect.
func (f *FXAA) Cleanup() { f.out = nil }

// Output returns the anti-aliased color buffer.
func (f *FXAA) Output() *Buffer { return f.out }

func luma(v Vec4) float32 {
	return 0.299*v.X + 0.587*v.Y + 0.114*v.Z
}

// Execute implements Effect. fc.Color must hold the input color.
func (f *FXAA) Execute(fc *FrameContext) error {
	if f.out == nil {
		return ErrNilBuffer
	}
	if fc.Color == nil {
		return ErrNilBuffer
	}

	src := fc.Color
	w, h := f.out.Width(), f.out.Height()

	for py := 0; py < h; py++ {
		for px := 0; px < w; px++ {
			center := src.At(px, py)
			lC := luma(center)
			lN := luma(src.At(px, clampInt(py-1, 0, h-1)))
			lS := luma(src.At(px, clampInt(py+1, 0, h-1)))
			lE := luma(src.At(clampInt(px+1, 0, w-1), py))
			lW := luma(src.At(clampInt(px-1, 0, w-1), py))

			lMin := math32.Min(lC, math32.Min(math32.Min(lN, lS), math32.Min(lE, lW)))
			lMax := math32.Max(lC, math32.Max(math32.Max(lN, lS), math32.Max(lE, lW)))
			contrast := lMax - lMin
			if contrast < math32.Max(fxaaEdgeThresholdMin, lMax*fxaaEdgeThreshold) {
				f.out.Set(px, py, center)
				continue
			}

			// Blur perpendicular to the stronger gradient axis.
			horizontal := math32.Abs(lN+lS-2*lC) >= math32.Abs(lE+lW-2*lC)
			var a, b Vec4
			if horizontal {
				a = src.At(px, clampInt(py-1, 0, h-1))
				b = src.At(px, clampInt(py+1, 0, h-1))
			} else {
				a = src.At(clampInt(px-1, 0, w-1), py)
				b = src.At(clampInt(px+1, 0, w-1), py)
			}
			blend := clamp32(contrast/math32.Max(lMax, 1e-4), 0, 0.75)
			blurred := center.Scale(0.5).Add(a.Scale(0.25)).Add(b.Scale(0.25))
			f.out.Set(px, py, center.Lerp(blurred, blend))
		}
	}
	return nil
}
