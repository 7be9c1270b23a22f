// Command gidemo renders a small Cornell-style scene with the global
// illumination engine and writes the composed frames to disk.
package main

import (
	"flag"
	"image/png"
	"log"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/chewxy/math32"

	vibegi "github.com/Liam-Griffiths/liams-vibe-gi"
	"github.com/Liam-Griffiths/liams-vibe-gi/scene"

	// Enable GPU pass execution when a Vulkan device is present.
	_ "github.com/Liam-Griffiths/liams-vibe-gi/gpu"
)

func main() {
	var (
		width    = flag.Int("width", 800, "render width")
		height   = flag.Int("height", 600, "render height")
		frames   = flag.Int("frames", 16, "frames to accumulate")
		cascades = flag.Int("cascades", vibegi.DefaultNumCascades, "cascade levels")
		orbit    = flag.Bool("orbit", false, "orbit the camera instead of holding still")
		outDir   = flag.String("out", "out", "output directory")
		dumpEXR  = flag.Bool("exr", false, "also dump all render targets as EXR")
		verbose  = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	vibegi.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	eng, err := vibegi.New(*width, *height,
		vibegi.WithNumCascades(*cascades),
		vibegi.WithEffects(vibegi.NewSSAO(), vibegi.NewSSR(), vibegi.NewTAA(), vibegi.NewFXAA()),
	)
	if err != nil {
		log.Fatalf("engine setup: %v", err)
	}
	defer eng.Close()

	sc := scene.Demo()
	cam := scene.NewCamera(float32(*width) / float32(*height))

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatalf("create output dir: %v", err)
	}

	for frame := 0; frame < *frames; frame++ {
		if *orbit {
			cam.Orbit(0.02*float32(frame), 8)
		}
		in := &vibegi.FrameInput{
			View:       cam.View(),
			Projection: cam.Projection(),
			Drawables:  sc.Drawables(),
			Light:      sc.Light,
		}
		if err := eng.RenderFrame(in); err != nil {
			log.Fatalf("frame %d: %v", frame, err)
		}
	}

	color, err := compose(eng)
	if err != nil {
		log.Fatalf("compose: %v", err)
	}
	final := color
	if err := eng.RunEffect("taa", final); err != nil {
		log.Printf("taa skipped: %v", err)
	} else if out := eng.EffectOutput("taa"); out != nil {
		final = out
	}
	if err := eng.RunEffect("fxaa", final); err != nil {
		log.Printf("fxaa skipped: %v", err)
	} else if out := eng.EffectOutput("fxaa"); out != nil {
		final = out
	}

	out := filepath.Join(*outDir, "frame.png")
	if err := savePNG(final, out); err != nil {
		log.Fatalf("save: %v", err)
	}
	log.Printf("wrote %s (%dx%d, %d frames accumulated)", out, *width, *height, *frames)

	if *dumpEXR {
		if err := eng.DumpTargetsEXR(*outDir); err != nil {
			log.Fatalf("dump targets: %v", err)
		}
		log.Printf("wrote EXR targets to %s", *outDir)
	}
}

// compose combines albedo, finest-level radiance, and emission into a
// tonemapped color buffer.
func compose(eng *vibegi.Engine) (*vibegi.Buffer, error) {
	radiance, err := eng.CascadeRadiance(0)
	if err != nil {
		return nil, err
	}
	g := eng.GBuffer()
	w, h := eng.Width(), eng.Height()
	color := vibegi.NewBuffer(w, h, vibegi.FormatRGBA32Float)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			pos := g.Position.At(x, y)
			if pos.W == 0 {
				color.Set(x, y, vibegi.V4(0.05, 0.06, 0.08, 1))
				continue
			}
			albedo := g.Albedo.At(x, y)
			emission := g.Emission.At(x, y)
			rad := radiance.At(x, y)
			r := albedo.X*rad.X + emission.X
			gc := albedo.Y*rad.Y + emission.Y
			b := albedo.Z*rad.Z + emission.Z
			color.Set(x, y, vibegi.V4(tonemap(r), tonemap(gc), tonemap(b), 1))
		}
	}
	return color, nil
}

// tonemap applies a Reinhard curve with gamma 2.2.
func tonemap(v float32) float32 {
	return math32.Pow(v/(1+v), 1/2.2)
}

func savePNG(b *vibegi.Buffer, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, b.ToImage())
}
