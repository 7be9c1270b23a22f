package vibegi

import (
	"errors"
	"sync"
)

// ErrFallbackToCPU indicates the GPU accelerator cannot handle this pass.
// The caller should transparently fall back to the software path.
var ErrFallbackToCPU = errors.New("vibegi: falling back to CPU pass execution")

// AcceleratedOp describes pass types for GPU capability checking.
type AcceleratedOp uint32

const (
	// AccelCascade represents the radiance cascade gather pass.
	AccelCascade AcceleratedOp = 1 << iota

	// AccelBlur represents the bilateral denoise pass.
	AccelBlur

	// AccelSSAO represents the ambient occlusion pass.
	AccelSSAO

	// AccelSSR represents the screen-space reflection pass.
	AccelSSR
)

// PassTarget provides pixel buffer access for GPU pass output and input.
// Data is packed float32 RGBA, 4 floats per pixel, laid out row by row.
// Accelerators write results back into Data so the CPU-side view stays
// authoritative across fallbacks.
type PassTarget struct {
	Data          []float32
	Width, Height int
	Format        Format
}

// GBufferTargets bundles the geometry attachments a pass reads.
type GBufferTargets struct {
	Position PassTarget
	Normal   PassTarget
	Albedo   PassTarget
	Depth    PassTarget
	Emission PassTarget
}

// CascadeArgs carries the uniforms of one cascade gather dispatch.
type CascadeArgs struct {
	Level            CascadeLevel
	GBuffer          GBufferTargets
	Coarser          *PassTarget
	History          *PassTarget
	UseHistory       bool
	Frame            int
	Light            Light
	MaxHistoryWeight float32

	// Focal is the projection Y scale used to convert world-space gather
	// radii into screen space.
	Focal float32
}

// BlurArgs carries the uniforms of one bilateral blur dispatch.
type BlurArgs struct {
	Input      PassTarget
	Horizontal bool
	GBuffer    GBufferTargets
}

// SSAOArgs carries the uniforms of one ambient occlusion dispatch. Kernel
// and Noise come from the effect so GPU and software output match.
type SSAOArgs struct {
	GBuffer    GBufferTargets
	View       Mat4
	Projection Mat4
	Radius     float32
	Bias       float32
	Kernel     []Vec3
	Noise      []Vec3
	NoiseDim   int
}

// GPUAccelerator is an optional GPU pass execution provider.
//
// When registered via RegisterAccelerator, the Engine tries GPU execution
// first for supported passes. If the accelerator returns ErrFallbackToCPU
// or any error, the pass transparently runs on the software path.
//
// Implementations are provided by GPU backend packages. Users opt in via
// blank import:
//
//	import _ "github.com/Liam-Griffiths/liams-vibe-gi/gpu" // enables GPU passes
type GPUAccelerator interface {
	// Name returns the accelerator name (e.g., "wgpu", "vulkan").
	Name() string

	// Init initializes GPU resources. Called once during registration.
	Init() error

	// Close releases GPU resources.
	Close()

	// CanAccelerate reports whether the accelerator supports the given pass.
	// This is a fast check used to skip the GPU entirely for unsupported passes.
	CanAccelerate(op AcceleratedOp) bool

	// CascadePass executes one radiance cascade level into dst.
	// Returns ErrFallbackToCPU if the dispatch cannot run on the GPU.
	CascadePass(dst PassTarget, args CascadeArgs) error

	// BlurPass executes one bilateral blur axis into dst.
	// Returns ErrFallbackToCPU if the dispatch cannot run on the GPU.
	BlurPass(dst PassTarget, args BlurArgs) error

	// SSAOPass executes the ambient occlusion estimate into dst.
	// Returns ErrFallbackToCPU if the dispatch cannot run on the GPU.
	SSAOPass(dst PassTarget, args SSAOArgs) error
}

var (
	accelMu sync.RWMutex
	accel   GPUAccelerator
)

// RegisterAccelerator registers a GPU accelerator for optional GPU pass
// execution.
//
// Only one accelerator can be registered. Subsequent calls replace the
// previous one. The accelerator's Init() method is called during
// registration. If Init() fails, the accelerator is not registered and the
// error is returned.
//
// Typical usage via blank import in GPU backend packages:
//
//	func init() {
//	    vibegi.RegisterAccelerator(NewWGPUAccelerator())
//	}
func RegisterAccelerator(a GPUAccelerator) error {
	if a == nil {
		return errors.New("vibegi: accelerator must not be nil")
	}
	if err := a.Init(); err != nil {
		return err
	}
	propagateLogger(a, Logger())
	accelMu.Lock()
	old := accel
	accel = a
	accelMu.Unlock()
	if old != nil {
		old.Close()
	}
	return nil
}

// Accelerator returns the currently registered GPU accelerator, or nil if none.
func Accelerator() GPUAccelerator {
	accelMu.RLock()
	a := accel
	accelMu.RUnlock()
	return a
}

// accelerator returns the registered accelerator for a pass dispatch, or
// nil when pass execution should stay on the CPU.
func (e *Engine) accelerator() GPUAccelerator {
	return Accelerator()
}

// passTarget wraps a buffer as an accelerator target.
func passTarget(b *Buffer) PassTarget {
	return PassTarget{
		Data:   b.Pix(),
		Width:  b.Width(),
		Height: b.Height(),
		Format: b.Format(),
	}
}

// optionalTarget wraps a possibly-nil buffer.
func optionalTarget(b *Buffer) *PassTarget {
	if b == nil {
		return nil
	}
	t := passTarget(b)
	return &t
}

// gbufferTargets exposes the engine's G-buffer attachments to a pass.
func (e *Engine) gbufferTargets() GBufferTargets {
	return GBufferTargets{
		Position: passTarget(e.gbuf.Position),
		Normal:   passTarget(e.gbuf.Normal),
		Albedo:   passTarget(e.gbuf.Albedo),
		Depth:    passTarget(e.gbuf.Depth),
		Emission: passTarget(e.gbuf.Emission),
	}
}
