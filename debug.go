package vibegi

import (
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/mrjoshuak/go-openexr/exr"
	xdraw "golang.org/x/image/draw"
)

// DumpEXR writes a buffer to an OpenEXR file, preserving HDR content.
func DumpEXR(b *Buffer, path string) error {
	if b == nil {
		return ErrNilBuffer
	}
	w, err := exr.NewRGBAOutputFile(path, b.Width(), b.Height())
	if err != nil {
		return fmt.Errorf("vibegi: create exr: %w", err)
	}
	img := exr.NewRGBAImage(image.Rect(0, 0, b.Width(), b.Height()))
	for y := 0; y < b.Height(); y++ {
		for x := 0; x < b.Width(); x++ {
			p := b.At(x, y)
			img.SetRGBA(x, y, p.X, p.Y, p.Z, p.W)
		}
	}
	return w.WriteRGBA(img)
}

// DumpTargetsEXR writes every engine-owned render target into dir, one EXR
// file per logical target name. Missing (incomplete) targets are skipped.
func (e *Engine) DumpTargetsEXR(dir string) error {
	if e.closed {
		return ErrEngineClosed
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for _, name := range e.res.names() {
		b := e.res.get(name)
		if b == nil {
			continue
		}
		if err := DumpEXR(b, filepath.Join(dir, name+".exr")); err != nil {
			return fmt.Errorf("vibegi: dump %s: %w", name, err)
		}
	}
	return nil
}

// UpscaleToScreen resamples a coarse cascade buffer to the given screen size
// for side-by-side debug viewing. Content is clamped to [0,1] per channel;
// HDR inspection should use DumpEXR instead.
func UpscaleToScreen(b *Buffer, width, height int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), b.ToImage(), b.Bounds(), xdraw.Src, nil)
	return dst
}
