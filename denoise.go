package vibegi

import "github.com/chewxy/math32"

// Bilateral denoiser parameters. The kernel is separable: one horizontal and
// one vertical pass per cascade level, with edge-stopping weights from the
// G-buffer so radiance never bleeds across silhouettes or creases.
const (
	denoiseRadius    = 4
	denoiseSigma     = 2.5
	denoisePosSigma  = 0.5
	denoiseNormalPow = 16
)

// denoiseCascades runs the bilateral filter over the finest `levels` of the
// `active` computed levels. Each level filters at its own resolution.
func (e *Engine) denoiseCascades(active, levels int) {
	if levels == 0 || levels > active {
		levels = active
	}
	for i := 0; i < levels; i++ {
		src := e.res.get(cascadeTargetName(i))
		scratch := e.res.get(cascadeScratchName(i))
		if src == nil || scratch == nil {
			continue
		}
		e.bilateralPass(src, scratch, true)
		e.bilateralPass(scratch, src, false)
	}
}

// bilateralPass filters src into dst along one axis.
func (e *Engine) bilateralPass(src, dst *Buffer, horizontal bool) {
	if a := e.accelerator(); a != nil && a.CanAccelerate(AccelBlur) {
		err := a.BlurPass(passTarget(dst), BlurArgs{
			Input:      passTarget(src),
			Horizontal: horizontal,
			GBuffer:    e.gbufferTargets(),
		})
		if err == nil {
			return
		}
		Logger().Debug("blur pass on CPU", "err", err)
	}

	w, h := src.Width(), src.Height()
	var kernel [denoiseRadius*2 + 1]float32
	for i := range kernel {
		d := float32(i - denoiseRadius)
		kernel[i] = math32.Exp(-d * d / (2 * denoiseSigma * denoiseSigma))
	}

	for py := 0; py < h; py++ {
		v := (float32(py) + 0.5) / float32(h)
		for px := 0; px < w; px++ {
			u := (float32(px) + 0.5) / float32(w)
			cpos, cnormal, _, _, _ := e.gbuf.sampleUV(u, v)
			center := src.At(px, py)
			if cpos.W == 0 {
				dst.Set(px, py, center)
				continue
			}

			var sum Vec4
			var wsum float32
			for k := -denoiseRadius; k <= denoiseRadius; k++ {
				sx, sy := px, py
				if horizontal {
					sx += k
				} else {
					sy += k
				}
				if sx < 0 || sx >= w || sy < 0 || sy >= h {
					continue
				}
				su := (float32(sx) + 0.5) / float32(w)
				sv := (float32(sy) + 0.5) / float32(h)
				spos, snormal, _, _, _ := e.gbuf.sampleUV(su, sv)
				if spos.W == 0 {
					continue
				}

				weight := kernel[k+denoiseRadius]
				dp := spos.Vec3().Sub(cpos.Vec3()).LengthSq()
				weight *= math32.Exp(-dp / (2 * denoisePosSigma * denoisePosSigma))
				weight *= math32.Pow(math32.Max(0, cnormal.Dot(snormal)), denoiseNormalPow)
				if weight <= 0 {
					continue
				}
				sum = sum.Add(src.At(sx, sy).Scale(weight))
				wsum += weight
			}
			if wsum > 0 {
				dst.Set(px, py, sum.Scale(1/wsum))
			} else {
				dst.Set(px, py, center)
			}
		}
	}
}
