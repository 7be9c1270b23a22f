package vibegi

import "github.com/chewxy/math32"

// TAA blend configuration. History carries most of the weight; the 3x3
// neighborhood clamp rejects history that no longer matches the current
// frame, so disocclusions resolve in one frame instead of smearing.
const taaHistoryWeight = 0.9

// TAA applies temporal anti-aliasing: the current frame is blended with the
// reprojected previous output, with the history color clamped to the current
// frame's 3x3 neighborhood range.
type TAA struct {
	out     *Buffer
	history *Buffer
	primed  bool
}

// NewTAA creates a temporal anti-aliasing effect.
func NewTAA() *TAA { return &TAA{} }

// Name implements Effect.
func (t *TAA) Name() string { return "taa" }

// Setup implements Effect.
func (t *TAA) Setup(width, height int) error {
	if width <= 0 || height <= 0 {
		return ErrInvalidDimensions
	}
	t.out = NewBuffer(width, height, FormatRGBA16Float)
	t.history = NewBuffer(width, height, FormatRGBA16Float)
	t.primed = false
	return nil
}

// Cleanup implements Effect.
func (t *TAA) Cleanup() {
	t.out = nil
	t.history = nil
	t.primed = false
}

// Output returns the anti-aliased color buffer.
func (t *TAA) Output() *Buffer { return t.out }

// History returns the accumulated history buffer, or nil before Setup.
// Useful for inspecting what the next frame will reproject from.
func (t *TAA) History() *Buffer { return t.history }

// Execute implements Effect. fc.Color must hold the current frame's color.
// The result is also copied into the internal history buffer for the next
// frame.
func (t *TAA) Execute(fc *FrameContext) error {
	if t.out == nil || t.history == nil {
		return ErrNilBuffer
	}
	if fc.Color == nil {
		return ErrNilBuffer
	}

	w, h := t.out.Width(), t.out.Height()
	g := fc.GBuffer

	for py := 0; py < h; py++ {
		v := (float32(py) + 0.5) / float32(h)
		for px := 0; px < w; px++ {
			u := (float32(px) + 0.5) / float32(w)
			current := fc.Color.At(px, py)
			if !t.primed {
				t.out.Set(px, py, current)
				continue
			}

			// Velocity is an NDC delta; UV space halves it and flips Y.
			vel := g.Velocity.At(px, py)
			pu := u - vel.X*0.5
			pv := v + vel.Y*0.5
			if pu < 0 || pu > 1 || pv < 0 || pv > 1 {
				t.out.Set(px, py, current)
				continue
			}

			hist := t.history.SampleUV(pu, pv)
			lo, hi := neighborhoodBounds(fc.Color, px, py)
			hist = clampVec4(hist, lo, hi)

			t.out.Set(px, py, current.Lerp(hist, taaHistoryWeight))
		}
	}

	if err := t.history.CopyFrom(t.out); err != nil {
		return err
	}
	t.primed = true
	return nil
}

// neighborhoodBounds returns the component-wise min and max of the 3x3
// neighborhood around (x, y).
func neighborhoodBounds(b *Buffer, x, y int) (lo, hi Vec4) {
	first := true
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			sx := clampInt(x+dx, 0, b.Width()-1)
			sy := clampInt(y+dy, 0, b.Height()-1)
			s := b.At(sx, sy)
			if first {
				lo, hi = s, s
				first = false
				continue
			}
			lo.X = math32.Min(lo.X, s.X)
			lo.Y = math32.Min(lo.Y, s.Y)
			lo.Z = math32.Min(lo.Z, s.Z)
			lo.W = math32.Min(lo.W, s.W)
			hi.X = math32.Max(hi.X, s.X)
			hi.Y = math32.Max(hi.Y, s.Y)
			hi.Z = math32.Max(hi.Z, s.Z)
			hi.W = math32.Max(hi.W, s.W)
		}
	}
	return lo, hi
}

func clampVec4(v, lo, hi Vec4) Vec4 {
	return Vec4{
		clamp32(v.X, lo.X, hi.X),
		clamp32(v.Y, lo.Y, hi.Y),
		clamp32(v.Z, lo.Z, hi.Z),
		clamp32(v.W, lo.W, hi.W),
	}
}
