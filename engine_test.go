package vibegi

import (
	"errors"
	"testing"
)

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name    string
		w, h    int
		opts    []Option
		wantErr error
	}{
		{"zero width", 0, 100, nil, ErrInvalidDimensions},
		{"zero height", 100, 0, nil, ErrInvalidDimensions},
		{"negative width", -1, 100, nil, ErrInvalidDimensions},
		{"negative height", 100, -1, nil, ErrInvalidDimensions},
		{"zero cascades", 100, 100, []Option{WithNumCascades(0)}, ErrInvalidCascadeCount},
		{"negative cascades", 100, 100, []Option{WithNumCascades(-3)}, ErrInvalidCascadeCount},
		{"too many cascades", 100, 100, []Option{WithNumCascades(MaxCascades + 1)}, ErrInvalidCascadeCount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.w, tt.h, tt.opts...)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("New() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewDefaults(t *testing.T) {
	e := newTestEngine(t, 800, 600)
	if e.NumCascades() != DefaultNumCascades {
		t.Errorf("NumCascades() = %d, want %d", e.NumCascades(), DefaultNumCascades)
	}
	if !e.TemporalAccumulation() {
		t.Error("temporal accumulation disabled by default")
	}
	if e.Width() != 800 || e.Height() != 600 {
		t.Errorf("size = %dx%d, want 800x600", e.Width(), e.Height())
	}
	if e.FrameCounter() != 0 {
		t.Errorf("FrameCounter() = %d on fresh engine", e.FrameCounter())
	}
}

func TestNewAllocatesTargets(t *testing.T) {
	e := newTestEngine(t, 320, 240, WithNumCascades(4))

	names := e.TargetNames()
	// 6 G-buffer attachments + 3 per cascade level.
	want := 6 + 4*3
	if len(names) != want {
		t.Fatalf("TargetNames() returned %d targets, want %d: %v", len(names), want, names)
	}
	for _, name := range names {
		if e.Target(name) == nil {
			t.Errorf("target %q is nil", name)
		}
	}
	if e.Target("no_such_target") != nil {
		t.Error("Target(unknown) != nil")
	}
}

func TestCascadeTargetSizes(t *testing.T) {
	e := newTestEngine(t, 800, 600, WithNumCascades(6))
	for _, lv := range e.CascadeLevels() {
		b, err := e.CascadeRadiance(lv.Index)
		if err != nil {
			t.Fatalf("CascadeRadiance(%d) = %v", lv.Index, err)
		}
		if b.Width() != lv.Width || b.Height() != lv.Height {
			t.Errorf("level %d buffer = %dx%d, descriptor says %dx%d",
				lv.Index, b.Width(), b.Height(), lv.Width, lv.Height)
		}
		if b.Format() != lv.Format {
			t.Errorf("level %d buffer format = %v, descriptor says %v",
				lv.Index, b.Format(), lv.Format)
		}
	}
}

func TestResize(t *testing.T) {
	tests := []struct {
		name       string
		initWidth  int
		initHeight int
		newWidth   int
		newHeight  int
		wantErr    bool
	}{
		{"grow both", 100, 100, 200, 200, false},
		{"shrink both", 200, 200, 100, 100, false},
		{"same size", 100, 100, 100, 100, false},
		{"zero width", 100, 100, 0, 100, true},
		{"zero height", 100, 100, 100, 0, true},
		{"negative width", 100, 100, -1, 100, true},
		{"negative height", 100, 100, 100, -1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(t, tt.initWidth, tt.initHeight, WithNumCascades(2))

			err := e.Resize(tt.newWidth, tt.newHeight)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Resize() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr {
				if e.Width() != tt.newWidth || e.Height() != tt.newHeight {
					t.Errorf("size = %dx%d, want %dx%d",
						e.Width(), e.Height(), tt.newWidth, tt.newHeight)
				}
				g := e.GBuffer()
				if g == nil || g.Position.Width() != tt.newWidth {
					t.Error("G-buffer not rebuilt at the new size")
				}
			}
		})
	}
}

func TestResizeDiscardsHistory(t *testing.T) {
	e := newTestEngine(t, 64, 48, WithNumCascades(2))
	in := litSceneInput()
	for i := 0; i < 3; i++ {
		if err := e.RenderFrame(in); err != nil {
			t.Fatalf("RenderFrame() = %v", err)
		}
	}

	if err := e.Resize(96, 72); err != nil {
		t.Fatalf("Resize() = %v", err)
	}
	if e.FrameCounter() != 0 {
		t.Errorf("FrameCounter() = %d after resize, want 0", e.FrameCounter())
	}

	// The next frame renders cleanly at the new size.
	if err := e.RenderFrame(in); err != nil {
		t.Fatalf("RenderFrame() after resize = %v", err)
	}
	b, err := e.CascadeRadiance(0)
	if err != nil {
		t.Fatalf("CascadeRadiance(0) = %v", err)
	}
	if b.Width() != 96 || b.Height() != 72 {
		t.Errorf("finest cascade = %dx%d after resize, want 96x72", b.Width(), b.Height())
	}
}

func TestCloseIdempotent(t *testing.T) {
	e, err := New(32, 32)
	if err != nil {
		t.Fatalf("New() = %v", err)
	}
	e.Close()
	e.Close() // second close is a no-op

	if err := e.RenderFrame(litSceneInput()); !errors.Is(err, ErrEngineClosed) {
		t.Errorf("RenderFrame() after Close = %v, want ErrEngineClosed", err)
	}
	if err := e.Resize(64, 64); !errors.Is(err, ErrEngineClosed) {
		t.Errorf("Resize() after Close = %v, want ErrEngineClosed", err)
	}
	if _, err := e.CascadeRadiance(0); !errors.Is(err, ErrEngineClosed) {
		t.Errorf("CascadeRadiance() after Close = %v, want ErrEngineClosed", err)
	}
}

func TestRenderFrameNilInput(t *testing.T) {
	e := newTestEngine(t, 32, 32)
	if err := e.RenderFrame(nil); !errors.Is(err, ErrNilFrameInput) {
		t.Errorf("RenderFrame(nil) = %v, want ErrNilFrameInput", err)
	}
}

func TestRenderFrameAdvancesCounter(t *testing.T) {
	e := newTestEngine(t, 32, 32, WithNumCascades(2))
	in := litSceneInput()
	for i := 1; i <= 3; i++ {
		if err := e.RenderFrame(in); err != nil {
			t.Fatalf("frame %d: %v", i, err)
		}
		if e.FrameCounter() != i {
			t.Errorf("FrameCounter() = %d after frame %d", e.FrameCounter(), i)
		}
	}
}

func TestCascadeRadianceRange(t *testing.T) {
	e := newTestEngine(t, 32, 32, WithNumCascades(3))
	if _, err := e.CascadeRadiance(-1); !errors.Is(err, ErrLevelOutOfRange) {
		t.Errorf("CascadeRadiance(-1) = %v, want ErrLevelOutOfRange", err)
	}
	if _, err := e.CascadeRadiance(3); !errors.Is(err, ErrLevelOutOfRange) {
		t.Errorf("CascadeRadiance(3) = %v, want ErrLevelOutOfRange", err)
	}
	for i := 0; i < 3; i++ {
		if _, err := e.CascadeRadiance(i); err != nil {
			t.Errorf("CascadeRadiance(%d) = %v", i, err)
		}
	}
}

func TestCascadeLevelsReturnsCopy(t *testing.T) {
	e := newTestEngine(t, 64, 64, WithNumCascades(3))
	levels := e.CascadeLevels()
	levels[0].Width = -1
	if e.CascadeLevels()[0].Width == -1 {
		t.Error("CascadeLevels() exposed internal slice")
	}
}
