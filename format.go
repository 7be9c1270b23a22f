package vibegi

import "github.com/gogpu/gputypes"

// Format identifies the pixel format of a render target.
//
// The software path stores every target as packed float32 RGBA regardless of
// format; the format describes the precision class the target is mirrored
// with on the GPU and how many channels carry meaningful data.
type Format uint8

const (
	// FormatRGBA32Float is full-precision HDR color. Used by the finest
	// cascade levels where banding from reduced precision is visible.
	FormatRGBA32Float Format = iota

	// FormatRGBA16Float is half-precision HDR color. Used by coarser
	// cascade levels and emission.
	FormatRGBA16Float

	// FormatRGBA8Unorm is 8-bit normalized color. Used for albedo.
	FormatRGBA8Unorm

	// FormatRG16Float is a two-channel half-float target. Used for
	// screen-space velocity.
	FormatRG16Float

	// FormatR16Float is a single-channel half-float target. Used for
	// linear depth and ambient occlusion.
	FormatR16Float
)

// String returns the WebGPU-style name of the format.
func (f Format) String() string {
	switch f {
	case FormatRGBA32Float:
		return "rgba32float"
	case FormatRGBA16Float:
		return "rgba16float"
	case FormatRGBA8Unorm:
		return "rgba8unorm"
	case FormatRG16Float:
		return "rg16float"
	case FormatR16Float:
		return "r16float"
	default:
		return "unknown"
	}
}

// Channels returns the number of meaningful channels in the format.
func (f Format) Channels() int {
	switch f {
	case FormatRG16Float:
		return 2
	case FormatR16Float:
		return 1
	default:
		return 4
	}
}

// BytesPerPixel returns the GPU-side size of one texel.
func (f Format) BytesPerPixel() int {
	switch f {
	case FormatRGBA32Float:
		return 16
	case FormatRGBA16Float:
		return 8
	case FormatRGBA8Unorm, FormatRG16Float:
		return 4
	case FormatR16Float:
		return 2
	default:
		return 0
	}
}

// ToGPU returns the matching gputypes texture format.
func (f Format) ToGPU() gputypes.TextureFormat {
	switch f {
	case FormatRGBA32Float:
		return gputypes.TextureFormatRGBA32Float
	case FormatRGBA16Float:
		return gputypes.TextureFormatRGBA16Float
	case FormatRGBA8Unorm:
		return gputypes.TextureFormatRGBA8Unorm
	case FormatRG16Float:
		return gputypes.TextureFormatRG16Float
	case FormatR16Float:
		return gputypes.TextureFormatR16Float
	default:
		return gputypes.TextureFormatUndefined
	}
}
