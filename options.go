package vibegi

// Option configures an Engine during creation.
// Use functional options to customize Engine behavior.
//
// Example:
//
//	// Default configuration
//	eng, err := vibegi.New(1280, 720)
//
//	// Custom cascade hierarchy
//	eng, err := vibegi.New(1280, 720,
//	    vibegi.WithNumCascades(5),
//	    vibegi.WithTemporalAccumulation(false))
type Option func(*engineOptions)

// engineOptions holds optional configuration for Engine creation.
type engineOptions struct {
	numCascades      int
	policy           ResolutionPolicy
	resolutionFloor  int
	temporal         bool
	maxHistoryWeight float32
	lightResetDist   float32
	effects          []Effect
}

// defaultEngineOptions returns the default engine options.
func defaultEngineOptions() engineOptions {
	return engineOptions{
		numCascades:      DefaultNumCascades,
		policy:           nil, // DefaultResolutionPolicy applied in New
		resolutionFloor:  DefaultResolutionFloor,
		temporal:         true,
		maxHistoryWeight: DefaultMaxHistoryWeight,
		lightResetDist:   DefaultLightResetDistance,
	}
}

// WithNumCascades sets the number of cascade levels in the hierarchy.
// The default is DefaultNumCascades. New returns ErrInvalidCascadeCount
// when n is not in [1, MaxCascades].
func WithNumCascades(n int) Option {
	return func(o *engineOptions) {
		o.numCascades = n
	}
}

// WithResolutionPolicy overrides how each cascade level's resolution is
// derived from the screen size. The default policy keeps the two finest
// levels at full resolution and roughly halves each coarser level, with a
// floor (see DefaultResolutionPolicy).
//
// Whatever the policy returns, the engine clamps each level to the size of
// the previous (finer) level so resolutions never increase with level index.
func WithResolutionPolicy(p ResolutionPolicy) Option {
	return func(o *engineOptions) {
		o.policy = p
	}
}

// WithResolutionFloor sets the minimum edge length for coarse cascade levels
// under the default resolution policy. Ignored when a custom policy is set.
func WithResolutionFloor(px int) Option {
	return func(o *engineOptions) {
		o.resolutionFloor = px
	}
}

// WithTemporalAccumulation enables or disables temporal accumulation at
// creation time. It can be toggled later with Engine.SetTemporalAccumulation.
func WithTemporalAccumulation(enabled bool) Option {
	return func(o *engineOptions) {
		o.temporal = enabled
	}
}

// WithMaxHistoryWeight caps the history blend weight used by temporal
// accumulation. The per-frame weight grows as frame/(frame+1) and never
// exceeds this cap. Values are clamped to [0, 1).
func WithMaxHistoryWeight(w float32) Option {
	return func(o *engineOptions) {
		o.maxHistoryWeight = clamp32(w, 0, 0.9999)
	}
}

// WithLightResetDistance sets how far the dominant light may move between
// frames before temporal history is discarded. The default is
// DefaultLightResetDistance, in world units.
func WithLightResetDistance(d float32) Option {
	return func(o *engineOptions) {
		o.lightResetDist = d
	}
}

// WithEffects registers auxiliary screen-space effects (SSAO, SSR, TAA,
// FXAA) with the engine. Effects get Setup on engine creation and every
// resize, and Cleanup on resize and Close. They run only when the caller
// invokes them through the engine's effect methods or RunEffect.
func WithEffects(effects ...Effect) Option {
	return func(o *engineOptions) {
		o.effects = append(o.effects, effects...)
	}
}
