package vibegi

import "testing"

func TestResourceTableAlloc(t *testing.T) {
	tbl := newResourceTable()

	b := tbl.alloc("color", 16, 8, FormatRGBA16Float)
	if b == nil {
		t.Fatal("alloc returned nil for valid dimensions")
	}
	if got := tbl.get("color"); got != b {
		t.Error("get did not return the allocated buffer")
	}
	if !tbl.complete() {
		t.Error("table with one valid target should be complete")
	}
}

func TestResourceTableIncomplete(t *testing.T) {
	tbl := newResourceTable()
	tbl.alloc("good", 8, 8, FormatRGBA16Float)
	if b := tbl.alloc("bad", 0, 8, FormatRGBA16Float); b != nil {
		t.Error("alloc with zero width returned a buffer")
	}

	// The failed target is recorded, not dropped.
	if tbl.complete() {
		t.Error("table with a failed target should be incomplete")
	}
	names := tbl.names()
	if len(names) != 2 || names[0] != "good" || names[1] != "bad" {
		t.Errorf("names() = %v", names)
	}
	if tbl.get("bad") != nil {
		t.Error("failed target should read as nil")
	}
}

func TestResourceTableRelease(t *testing.T) {
	tbl := newResourceTable()
	tbl.alloc("a", 4, 4, FormatRGBA32Float)
	tbl.alloc("b", 4, 4, FormatRGBA32Float)

	tbl.release()
	if len(tbl.names()) != 0 {
		t.Errorf("names() = %v after release, want empty", tbl.names())
	}
	if tbl.get("a") != nil {
		t.Error("released target still readable")
	}

	// A fresh generation starts cleanly after release.
	if b := tbl.alloc("a", 8, 8, FormatRGBA32Float); b == nil {
		t.Fatal("alloc after release failed")
	}
	if got := tbl.get("a"); got == nil || got.Width() != 8 {
		t.Error("post-release generation wrong")
	}
}

func TestResourceTableGetUnknown(t *testing.T) {
	tbl := newResourceTable()
	if tbl.get("missing") != nil {
		t.Error("get(missing) != nil")
	}
	if !tbl.complete() {
		t.Error("empty table should be complete")
	}
}

func TestCascadeTargetNames(t *testing.T) {
	if got := cascadeTargetName(3); got != "cascade_3" {
		t.Errorf("cascadeTargetName(3) = %q", got)
	}
	if got := cascadeTemporalName(0); got != "cascade_0_temporal" {
		t.Errorf("cascadeTemporalName(0) = %q", got)
	}
	if got := cascadeScratchName(7); got != "cascade_7_scratch" {
		t.Errorf("cascadeScratchName(7) = %q", got)
	}
}
