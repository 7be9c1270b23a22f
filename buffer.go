package vibegi

import (
	"image"

	"github.com/chewxy/math32"
)

// Buffer is a rectangular HDR render target.
//
// Pixels are stored as packed float32 RGBA, 4 floats per pixel, regardless of
// the declared Format. This is the canonical CPU representation every software
// pass reads and writes; the Format only governs the precision class the
// buffer is mirrored with on the GPU.
type Buffer struct {
	width  int
	height int
	format Format
	pix    []float32
}

// NewBuffer creates a buffer with the given dimensions and format.
// Dimensions must be positive; callers are expected to validate first
// (see the resource table), so NewBuffer panics on non-positive sizes.
func NewBuffer(width, height int, format Format) *Buffer {
	if width <= 0 || height <= 0 {
		panic("vibegi: NewBuffer with non-positive dimensions")
	}
	return &Buffer{
		width:  width,
		height: height,
		format: format,
		pix:    make([]float32, width*height*4),
	}
}

// Width returns the width of the buffer in pixels.
func (b *Buffer) Width() int { return b.width }

// Height returns the height of the buffer in pixels.
func (b *Buffer) Height() int { return b.height }

// Format returns the declared pixel format.
func (b *Buffer) Format() Format { return b.format }

// Pix returns the raw pixel data, 4 floats per pixel in row-major order.
func (b *Buffer) Pix() []float32 { return b.pix }

// At returns the pixel at (x, y). Out-of-bounds reads return zero.
func (b *Buffer) At(x, y int) Vec4 {
	if x < 0 || x >= b.width || y < 0 || y >= b.height {
		return Vec4{}
	}
	i := (y*b.width + x) * 4
	return Vec4{b.pix[i], b.pix[i+1], b.pix[i+2], b.pix[i+3]}
}

// Set writes the pixel at (x, y). Out-of-bounds writes are ignored.
func (b *Buffer) Set(x, y int, v Vec4) {
	if x < 0 || x >= b.width || y < 0 || y >= b.height {
		return
	}
	i := (y*b.width + x) * 4
	b.pix[i] = v.X
	b.pix[i+1] = v.Y
	b.pix[i+2] = v.Z
	b.pix[i+3] = v.W
}

// Clear fills the entire buffer with v.
func (b *Buffer) Clear(v Vec4) {
	for i := 0; i < len(b.pix); i += 4 {
		b.pix[i] = v.X
		b.pix[i+1] = v.Y
		b.pix[i+2] = v.Z
		b.pix[i+3] = v.W
	}
}

// CopyFrom copies src into b. Both buffers must have identical dimensions;
// formats may differ (a blit between precision classes is allowed).
func (b *Buffer) CopyFrom(src *Buffer) error {
	if src == nil {
		return ErrNilBuffer
	}
	if src.width != b.width || src.height != b.height {
		return ErrSizeMismatch
	}
	copy(b.pix, src.pix)
	return nil
}

// SampleUV samples the buffer bilinearly at normalized coordinates (u, v)
// with clamp-to-edge addressing. (0,0) maps to the center of the top-left
// texel and (1,1) to the center of the bottom-right texel.
func (b *Buffer) SampleUV(u, v float32) Vec4 {
	fx := clamp32(u, 0, 1) * float32(b.width-1)
	fy := clamp32(v, 0, 1) * float32(b.height-1)
	x0 := int(math32.Floor(fx))
	y0 := int(math32.Floor(fy))
	x1 := clampInt(x0+1, 0, b.width-1)
	y1 := clampInt(y0+1, 0, b.height-1)
	tx := fx - float32(x0)
	ty := fy - float32(y0)

	top := b.At(x0, y0).Lerp(b.At(x1, y0), tx)
	bot := b.At(x0, y1).Lerp(b.At(x1, y1), tx)
	return top.Lerp(bot, ty)
}

// SampleNearestUV samples the buffer with nearest-neighbor addressing.
func (b *Buffer) SampleNearestUV(u, v float32) Vec4 {
	x := clampInt(int(clamp32(u, 0, 1)*float32(b.width-1)+0.5), 0, b.width-1)
	y := clampInt(int(clamp32(v, 0, 1)*float32(b.height-1)+0.5), 0, b.height-1)
	return b.At(x, y)
}

// ToImage converts the buffer to an 8-bit image.RGBA, clamping each channel
// to [0,1]. HDR content should be tone-mapped by the caller first; this is a
// debug conversion, not a display transform.
func (b *Buffer) ToImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, b.width, b.height))
	for y := 0; y < b.height; y++ {
		for x := 0; x < b.width; x++ {
			p := b.At(x, y)
			i := img.PixOffset(x, y)
			img.Pix[i] = uint8(clamp32(p.X, 0, 1)*255 + 0.5)
			img.Pix[i+1] = uint8(clamp32(p.Y, 0, 1)*255 + 0.5)
			img.Pix[i+2] = uint8(clamp32(p.Z, 0, 1)*255 + 0.5)
			img.Pix[i+3] = uint8(clamp32(p.W, 0, 1)*255 + 0.5)
		}
	}
	return img
}

// Bounds returns the pixel bounds of the buffer.
func (b *Buffer) Bounds() image.Rectangle {
	return image.Rect(0, 0, b.width, b.height)
}
