package vibegi

import "fmt"

// resourceTable owns every render target the engine allocates. Targets are
// keyed by logical name ("gbuffer_position", "cascade_3_temporal", ...) so
// that setup, debug dumps, and the GPU mirror all agree on identity. The
// table is rebuilt wholesale on resize: release, then allocate fresh.
type resourceTable struct {
	targets map[string]*Buffer
	order   []string
}

func newResourceTable() *resourceTable {
	return &resourceTable{targets: make(map[string]*Buffer)}
}

// alloc creates a target and registers it under name. Invalid dimensions are
// reported but not fatal: the incomplete target is recorded as nil and
// passes that depend on it skip their work, matching how an incomplete
// framebuffer degrades rather than aborts rendering.
func (t *resourceTable) alloc(name string, w, h int, format Format) *Buffer {
	if _, ok := t.targets[name]; ok {
		Logger().Warn("duplicate render target", "name", name)
	} else {
		t.order = append(t.order, name)
	}
	if w <= 0 || h <= 0 {
		Logger().Error("render target incomplete",
			"name", name, "width", w, "height", h)
		t.targets[name] = nil
		return nil
	}
	b := NewBuffer(w, h, format)
	t.targets[name] = b
	Logger().Debug("render target allocated",
		"name", name, "width", w, "height", h, "format", format.String())
	return b
}

// get returns the target registered under name, or nil.
func (t *resourceTable) get(name string) *Buffer {
	return t.targets[name]
}

// complete reports whether every registered target allocated successfully.
func (t *resourceTable) complete() bool {
	for _, name := range t.order {
		if t.targets[name] == nil {
			return false
		}
	}
	return true
}

// names returns the registered target names in allocation order.
func (t *resourceTable) names() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// release drops every target. Safe to call on an empty table; alloc after
// release starts a fresh generation.
func (t *resourceTable) release() {
	for _, name := range t.order {
		delete(t.targets, name)
	}
	t.order = t.order[:0]
}

// Logical target names. Cascade targets are parameterized by level index.
const (
	targetGBufferPosition = "gbuffer_position"
	targetGBufferNormal   = "gbuffer_normal"
	targetGBufferAlbedo   = "gbuffer_albedo"
	targetGBufferDepth    = "gbuffer_depth"
	targetGBufferVelocity = "gbuffer_velocity"
	targetGBufferEmission = "gbuffer_emission"
)

func cascadeTargetName(i int) string   { return fmt.Sprintf("cascade_%d", i) }
func cascadeTemporalName(i int) string { return fmt.Sprintf("cascade_%d_temporal", i) }
func cascadeScratchName(i int) string  { return fmt.Sprintf("cascade_%d_scratch", i) }
