package vibegi

import "github.com/chewxy/math32"

// Cascade hierarchy defaults.
const (
	// DefaultNumCascades is the number of cascade levels created when
	// WithNumCascades is not given.
	DefaultNumCascades = 6

	// MaxCascades bounds the hierarchy depth. Beyond this the distance
	// bands exceed any practical scene extent.
	MaxCascades = 12

	// DefaultResolutionFloor is the minimum edge length, in pixels, of a
	// coarse cascade level under the default resolution policy.
	DefaultResolutionFloor = 128

	// DefaultMaxHistoryWeight caps the temporal history blend weight.
	DefaultMaxHistoryWeight = 0.95

	// DefaultLightResetDistance is how far the dominant light may move
	// between frames before temporal history is discarded, in world units.
	DefaultLightResetDistance = 0.1
)

// ResolutionPolicy maps a cascade level index and screen size to the level's
// render target size. Policies may return any positive size; the engine
// clamps results so resolutions never increase with level index.
type ResolutionPolicy func(level, screenWidth, screenHeight int) (w, h int)

// DefaultResolutionPolicy returns the standard resolution schedule: levels 0
// and 1 at full resolution, level 2 at three-quarter resolution, and each
// level beyond that at screen >> (level-1), no smaller than floor pixels per
// edge. A non-positive floor falls back to DefaultResolutionFloor.
func DefaultResolutionPolicy(floor int) ResolutionPolicy {
	if floor <= 0 {
		floor = DefaultResolutionFloor
	}
	return func(level, screenWidth, screenHeight int) (int, int) {
		switch {
		case level <= 1:
			return screenWidth, screenHeight
		case level == 2:
			return (screenWidth * 3) >> 2, (screenHeight * 3) >> 2
		default:
			return max(floor, screenWidth>>(level-1)),
				max(floor, screenHeight>>(level-1))
		}
	}
}

// CascadeLevel describes one level of the hierarchy. Level 0 is the finest.
type CascadeLevel struct {
	// Index is the level's position in the hierarchy.
	Index int

	// Width and Height are the level's render target size.
	Width, Height int

	// MinDist and MaxDist bound the world-space distance band
	// [2^i, 2^(i+1)) the level gathers radiance over.
	MinDist, MaxDist float32

	// Format is the precision class of the level's targets.
	Format Format
}

// cascadeFormat returns the storage precision for level i. The two finest
// levels accumulate many small contributions and need full float precision;
// coarser levels tolerate half floats.
func cascadeFormat(i int) Format {
	if i < 2 {
		return FormatRGBA32Float
	}
	return FormatRGBA16Float
}

// buildCascadeLevels computes the level descriptions for an n-level
// hierarchy at the given screen size. Level sizes follow the policy, clamped
// so no level is larger than the previous one (a floor can otherwise push a
// coarse level above its neighbor at small screen sizes).
func buildCascadeLevels(n, screenW, screenH int, policy ResolutionPolicy) []CascadeLevel {
	levels := make([]CascadeLevel, n)
	prevW, prevH := screenW, screenH
	for i := 0; i < n; i++ {
		w, h := policy(i, screenW, screenH)
		w = clampInt(w, 1, prevW)
		h = clampInt(h, 1, prevH)
		levels[i] = CascadeLevel{
			Index:   i,
			Width:   w,
			Height:  h,
			MinDist: math32.Pow(2, float32(i)),
			MaxDist: math32.Pow(2, float32(i+1)),
			Format:  cascadeFormat(i),
		}
		prevW, prevH = w, h
	}
	return levels
}
