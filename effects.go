package vibegi

import "fmt"

// FrameContext is the per-frame state handed to auxiliary effects. It is
// valid for the duration of one Execute call; effects must not retain it.
type FrameContext struct {
	// GBuffer holds the current frame's geometry attachments.
	GBuffer *GBuffer

	// View and Projection are the camera matrices the frame was rendered
	// with. ViewPos is the camera position in world space.
	View       Mat4
	Projection Mat4
	ViewPos    Vec3

	// PrevViewProjection is the previous frame's combined camera matrix,
	// used for reprojection.
	PrevViewProjection Mat4

	// FrameCounter is the number of frames completed since the last
	// history reset.
	FrameCounter int

	// Color is the composited scene color, needed by reflection and
	// anti-aliasing effects. May be nil for effects that only read the
	// G-buffer.
	Color *Buffer
}

// Effect is an auxiliary screen-space pass (SSAO, SSR, TAA, FXAA).
//
// Effects registered with WithEffects share the engine's resource
// lifecycle: Setup runs at engine creation and after every resize, Cleanup
// runs before every resize and at Close. Execute runs only when the caller
// invokes it, directly or through Engine.RunEffect.
type Effect interface {
	// Name identifies the effect ("ssao", "ssr", "taa", "fxaa").
	Name() string

	// Setup allocates the effect's render targets for the given screen size.
	Setup(width, height int) error

	// Cleanup releases the effect's render targets.
	Cleanup()

	// Execute runs the effect for the current frame.
	Execute(fc *FrameContext) error
}

// RunEffect executes the named registered effect against the current
// frame's state. color may be nil for G-buffer-only effects.
func (e *Engine) RunEffect(name string, color *Buffer) error {
	if e.closed {
		return ErrEngineClosed
	}
	for _, ef := range e.effects {
		if ef.Name() == name {
			fc := e.frameContext(color)
			return ef.Execute(&fc)
		}
	}
	return fmt.Errorf("vibegi: no effect registered as %q", name)
}

// EffectOutput returns the named effect's output buffer for compositing,
// or nil if no such effect is registered or it has not run. The buffer is
// owned by the effect and is overwritten on its next Execute.
func (e *Engine) EffectOutput(name string) *Buffer {
	for _, ef := range e.effects {
		if ef.Name() != name {
			continue
		}
		if o, ok := ef.(interface{ Output() *Buffer }); ok {
			return o.Output()
		}
		return nil
	}
	return nil
}

// Effects returns the registered effects in registration order.
func (e *Engine) Effects() []Effect {
	out := make([]Effect, len(e.effects))
	copy(out, e.effects)
	return out
}

// frameContext captures the engine state effects read.
func (e *Engine) frameContext(color *Buffer) FrameContext {
	viewPos := e.lastView.Inverse().MulPoint(Vec3{})
	return FrameContext{
		GBuffer:            e.gbuf,
		View:               e.lastView,
		Projection:         e.lastProj,
		ViewPos:            viewPos,
		PrevViewProjection: e.prevProj.Mul(e.prevView),
		FrameCounter:       e.frameCounter,
		Color:              color,
	}
}
