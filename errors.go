package vibegi

import "errors"

// Sentinel errors returned by the engine. Wrap-aware callers should test
// with errors.Is; most failures are wrapped with pass or target context.
var (
	// ErrInvalidDimensions is returned when a requested screen or target
	// size is not positive.
	ErrInvalidDimensions = errors.New("vibegi: invalid dimensions")

	// ErrInvalidCascadeCount is returned when the configured or requested
	// number of cascade levels is out of range.
	ErrInvalidCascadeCount = errors.New("vibegi: invalid cascade count")

	// ErrEngineClosed is returned by operations on a closed engine.
	ErrEngineClosed = errors.New("vibegi: engine is closed")

	// ErrLevelOutOfRange is returned when a cascade level index does not
	// exist in the current hierarchy.
	ErrLevelOutOfRange = errors.New("vibegi: cascade level out of range")

	// ErrNilFrameInput is returned by RenderFrame when the input is nil.
	ErrNilFrameInput = errors.New("vibegi: nil frame input")

	// ErrNilBuffer is returned when a required buffer is nil.
	ErrNilBuffer = errors.New("vibegi: nil buffer")

	// ErrSizeMismatch is returned when two buffers that must match in size
	// do not.
	ErrSizeMismatch = errors.New("vibegi: buffer size mismatch")
)
