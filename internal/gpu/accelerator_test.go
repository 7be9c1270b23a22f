//go:build !nogpu

package gpu

import (
	"encoding/binary"
	"math"
	"testing"
	"unsafe"

	vibegi "github.com/Liam-Griffiths/liams-vibe-gi"
)

// The uniform structs are serialized byte-for-byte into GPU buffers, so their
// sizes must match the WGSL struct layouts exactly.
func TestUniformSizes(t *testing.T) {
	tests := []struct {
		name string
		size uintptr
		want uintptr
	}{
		{"cascadeParams", unsafe.Sizeof(cascadeParams{}), 96},
		{"blurParams", unsafe.Sizeof(blurParams{}), 32},
		{"ssaoParams", unsafe.Sizeof(ssaoParams{}), 160},
	}
	for _, tt := range tests {
		if tt.size != tt.want {
			t.Errorf("sizeof(%s) = %d, want %d", tt.name, tt.size, tt.want)
		}
	}
}

func TestCascadeParamsFieldOffsets(t *testing.T) {
	var p cascadeParams
	base := uintptr(unsafe.Pointer(&p))
	offsets := []struct {
		name string
		got  uintptr
		want uintptr
	}{
		{"MinDist", uintptr(unsafe.Pointer(&p.MinDist)) - base, 32},
		{"LightPos", uintptr(unsafe.Pointer(&p.LightPos)) - base, 48},
		{"LightRadius", uintptr(unsafe.Pointer(&p.LightRadius)) - base, 60},
		{"LightColor", uintptr(unsafe.Pointer(&p.LightColor)) - base, 64},
		{"MaxHistoryWeight", uintptr(unsafe.Pointer(&p.MaxHistoryWeight)) - base, 76},
		{"Frame", uintptr(unsafe.Pointer(&p.Frame)) - base, 80},
	}
	for _, o := range offsets {
		if o.got != o.want {
			t.Errorf("offsetof(cascadeParams.%s) = %d, want %d", o.name, o.got, o.want)
		}
	}
}

func TestStructBytes(t *testing.T) {
	p := blurParams{W: 1, H: 2, GBufW: 3, GBufH: 4, Horizontal: 1}
	b := structBytes(unsafe.Pointer(&p), unsafe.Sizeof(p))
	if len(b) != 32 {
		t.Fatalf("len = %d, want 32", len(b))
	}
	if got := binary.LittleEndian.Uint32(b[0:]); got != 1 {
		t.Errorf("W = %d, want 1", got)
	}
	if got := binary.LittleEndian.Uint32(b[16:]); got != 1 {
		t.Errorf("Horizontal = %d, want 1", got)
	}
}

func TestFloat32BytesRoundTrip(t *testing.T) {
	in := []float32{0, 1, -2.5, 3.25e7}
	b := float32Bytes(in)
	if len(b) != len(in)*4 {
		t.Fatalf("len = %d, want %d", len(b), len(in)*4)
	}
	for i, want := range in {
		got := math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
		if got != want {
			t.Errorf("[%d] = %g, want %g", i, got, want)
		}
	}
}

func TestPackVec3s(t *testing.T) {
	in := []vibegi.Vec3{{X: 1, Y: 2, Z: 3}, {X: 4, Y: 5, Z: 6}}
	out := packVec3s(in)
	want := []float32{1, 2, 3, 0, 4, 5, 6, 0}
	if len(out) != len(want) {
		t.Fatalf("len = %d, want %d", len(out), len(want))
	}
	for i := range want {
		if out[i] != want[i] {
			t.Errorf("[%d] = %g, want %g", i, out[i], want[i])
		}
	}
}

func TestOptionalData(t *testing.T) {
	if optionalData(nil) != nil {
		t.Error("optionalData(nil) != nil")
	}
	pt := &vibegi.PassTarget{Data: []float32{1, 2}, Width: 1, Height: 1}
	if got := optionalData(pt); len(got) != 2 || got[0] != 1 {
		t.Errorf("optionalData = %v, want [1 2]", got)
	}
}
