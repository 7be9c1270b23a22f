package vibegi

import "fmt"

// Engine owns the G-buffer, the cascade hierarchy, and all associated render
// targets, and drives the per-frame pass sequence.
//
// An Engine is not safe for concurrent use; one goroutine renders at a time.
type Engine struct {
	width, height int
	numCascades   int
	policy        ResolutionPolicy
	levels        []CascadeLevel

	res  *resourceTable
	gbuf *GBuffer

	temporalEnabled  bool
	maxHistoryWeight float32
	lightResetDist   float32
	frameCounter     int

	lastLightPos Vec3
	haveLightPos bool

	// Previous-frame camera, kept for velocity and reprojection.
	prevView, prevProj Mat4
	havePrev           bool

	// Current-frame camera, captured at RenderFrame for effect contexts.
	lastView, lastProj Mat4

	effects []Effect
	closed  bool
}

// New creates an engine for the given screen size. Render targets for the
// G-buffer and every cascade level are allocated immediately.
func New(width, height int, opts ...Option) (*Engine, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	o := defaultEngineOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.numCascades < 1 || o.numCascades > MaxCascades {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCascadeCount, o.numCascades)
	}
	policy := o.policy
	if policy == nil {
		policy = DefaultResolutionPolicy(o.resolutionFloor)
	}

	e := &Engine{
		width:            width,
		height:           height,
		numCascades:      o.numCascades,
		policy:           policy,
		temporalEnabled:  o.temporal,
		maxHistoryWeight: o.maxHistoryWeight,
		lightResetDist:   o.lightResetDist,
		lastView:         Identity(),
		lastProj:         Identity(),
		effects:          o.effects,
	}
	if err := e.setup(); err != nil {
		return nil, err
	}
	return e, nil
}

// setup allocates every render target for the current screen size and runs
// effect setup. Callers must have released the previous generation first.
func (e *Engine) setup() error {
	e.res = newResourceTable()
	e.gbuf = allocGBuffer(e.res, e.width, e.height)
	e.levels = buildCascadeLevels(e.numCascades, e.width, e.height, e.policy)
	for _, lv := range e.levels {
		e.res.alloc(cascadeTargetName(lv.Index), lv.Width, lv.Height, lv.Format)
		e.res.alloc(cascadeTemporalName(lv.Index), lv.Width, lv.Height, lv.Format)
		e.res.alloc(cascadeScratchName(lv.Index), lv.Width, lv.Height, lv.Format)
	}
	if !e.res.complete() {
		Logger().Warn("render target setup incomplete",
			"width", e.width, "height", e.height)
	}
	for _, ef := range e.effects {
		if err := ef.Setup(e.width, e.height); err != nil {
			return fmt.Errorf("vibegi: effect %q setup: %w", ef.Name(), err)
		}
	}
	Logger().Info("engine setup",
		"width", e.width, "height", e.height, "cascades", e.numCascades)
	return nil
}

// teardown releases every render target and runs effect cleanup.
func (e *Engine) teardown() {
	for _, ef := range e.effects {
		ef.Cleanup()
	}
	e.res.release()
	e.gbuf = nil
}

// Resize rebuilds every render target for a new screen size. All temporal
// history is discarded: the old targets' content is meaningless at the new
// resolution.
func (e *Engine) Resize(width, height int) error {
	if e.closed {
		return ErrEngineClosed
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	e.teardown()
	e.width = width
	e.height = height
	e.frameCounter = 0
	e.havePrev = false
	e.haveLightPos = false
	return e.setup()
}

// Close releases all engine resources. The engine cannot be used afterwards;
// Close is idempotent.
func (e *Engine) Close() {
	if e.closed {
		return
	}
	e.teardown()
	e.closed = true
}

// RenderFrame runs the full per-frame sequence: G-buffer rasterization, the
// cascade hierarchy coarsest-first with temporal accumulation, and the
// bilateral denoiser. Registered effects do not run automatically; invoke
// them through RunEffect or directly after compositing.
//
// On success the frame counter advances and the finest cascade is available
// via CascadeRadiance(0).
func (e *Engine) RenderFrame(in *FrameInput) error {
	if e.closed {
		return ErrEngineClosed
	}
	if in == nil {
		return ErrNilFrameInput
	}
	if !e.gbuf.complete() {
		return fmt.Errorf("vibegi: g-buffer incomplete: %w", ErrNilBuffer)
	}

	active := in.ActiveCascades
	if active == 0 {
		active = e.numCascades
	}
	if active < 1 || active > e.numCascades {
		clamped := clampInt(active, 1, e.numCascades)
		Logger().Warn("active cascade count clamped",
			"requested", active, "used", clamped)
		active = clamped
	}

	e.lastView = in.View
	e.lastProj = in.Projection

	e.checkLightMotion(in.Light)
	e.renderGBuffer(in)
	e.computeCascades(in, active)
	if in.DenoiseLevels >= 0 {
		e.denoiseCascades(active, in.DenoiseLevels)
	}

	e.prevView = in.View
	e.prevProj = in.Projection
	e.havePrev = true
	e.frameCounter++
	return nil
}

// Width returns the current screen width.
func (e *Engine) Width() int { return e.width }

// Height returns the current screen height.
func (e *Engine) Height() int { return e.height }

// NumCascades returns the configured number of cascade levels.
func (e *Engine) NumCascades() int { return e.numCascades }

// FrameCounter returns the number of frames rendered since the last history
// reset.
func (e *Engine) FrameCounter() int { return e.frameCounter }

// CascadeLevels returns a copy of the current level descriptions.
func (e *Engine) CascadeLevels() []CascadeLevel {
	out := make([]CascadeLevel, len(e.levels))
	copy(out, e.levels)
	return out
}

// CascadeRadiance returns the radiance buffer of the given cascade level.
// Level 0 is the finest. The buffer holds the denoised result of the most
// recent RenderFrame; callers must treat it as read-only.
func (e *Engine) CascadeRadiance(level int) (*Buffer, error) {
	if e.closed {
		return nil, ErrEngineClosed
	}
	if level < 0 || level >= e.numCascades {
		return nil, fmt.Errorf("%w: %d of %d", ErrLevelOutOfRange, level, e.numCascades)
	}
	b := e.res.get(cascadeTargetName(level))
	if b == nil {
		return nil, fmt.Errorf("vibegi: cascade %d: %w", level, ErrNilBuffer)
	}
	return b, nil
}

// GBuffer returns the geometry attachments of the most recent frame.
// Callers must treat the buffers as read-only.
func (e *Engine) GBuffer() *GBuffer { return e.gbuf }

// TargetNames returns the logical names of all engine-owned render targets,
// in allocation order. Useful for debug dumps.
func (e *Engine) TargetNames() []string { return e.res.names() }

// Target returns the engine-owned render target with the given logical
// name, or nil if none exists.
func (e *Engine) Target(name string) *Buffer { return e.res.get(name) }
