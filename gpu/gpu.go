//go:build !nogpu

// Package gpu registers the GPU accelerator for hardware-accelerated pass
// execution.
//
// Import this package to run the radiance cascade gather, the bilateral
// denoise blur, and the ambient occlusion estimate as wgpu/hal compute
// dispatches. The engine tries the GPU first for each pass and falls back
// to the software path on any failure.
//
// If GPU initialization fails (no Vulkan device available), the
// registration is silently skipped and all passes run on the CPU.
//
// Usage:
//
//	import _ "github.com/Liam-Griffiths/liams-vibe-gi/gpu" // enable GPU passes
package gpu

import (
	vibegi "github.com/Liam-Griffiths/liams-vibe-gi"
	gpuimpl "github.com/Liam-Griffiths/liams-vibe-gi/internal/gpu"
)

func init() {
	if err := vibegi.RegisterAccelerator(gpuimpl.NewAccelerator()); err != nil {
		vibegi.Logger().Warn("GPU accelerator not available", "err", err)
	}
}
