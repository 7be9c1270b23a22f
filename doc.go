// Package vibegi implements a real-time global illumination engine based on
// radiance cascades.
//
// # Overview
//
// vibegi computes screen-space indirect lighting for a deferred renderer. A
// frame is rendered into a G-buffer (position, normal, albedo, linear depth,
// velocity, emission), then a hierarchy of radiance cascades estimates
// incoming radiance at progressively coarser resolutions for progressively
// larger distance bands. Cascades are accumulated temporally across frames
// and denoised with an edge-aware bilateral filter before being consumed by
// a compositor.
//
// # Quick Start
//
//	import vibegi "github.com/Liam-Griffiths/liams-vibe-gi"
//
//	eng, err := vibegi.New(1280, 720)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer eng.Close()
//
//	for running {
//		err := eng.RenderFrame(&vibegi.FrameInput{
//			View:       cam.View(),
//			Projection: cam.Projection(),
//			Drawables:  scene.Drawables(),
//			Light:      scene.Light,
//		})
//		// eng.CascadeRadiance(0) now holds the finest denoised cascade.
//	}
//
// # Architecture
//
// The library is organized into:
//   - Public API: Engine, FrameInput, Buffer, Effect, cascade accessors
//   - Internal: gpu (wgpu/hal compute pipelines, WGSL shaders)
//   - scene: minimal entity/camera helpers for feeding the engine
//
// Every pass has a pure-Go software implementation that serves as the
// reference path. Importing the gpu subpackage registers a wgpu-backed
// accelerator; passes fall back to the software path when the GPU is
// unavailable or a pass is unsupported.
//
// # Coordinate System
//
// World space is right-handed with Y up. Screen space follows standard
// computer graphics conventions: origin at top-left, X right, Y down.
// Texture coordinates are in [0,1] with (0,0) at the top-left texel.
//
// # Temporal Accumulation
//
// Each cascade level keeps a history buffer. History is blended only once at
// least one frame has completed; Resize, Close, disabling accumulation, and
// large light motion all reset the history so stale radiance never ghosts
// into a changed scene.
package vibegi

// Version information
const (
	// Version is the current version of the library
	Version = "0.2.0"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 2

	// VersionPatch is the patch version
	VersionPatch = 0
)
