package vibegi

import "github.com/chewxy/math32"

// Gather configuration for the software cascade pass. Direction and step
// counts trade noise for cost; temporal accumulation absorbs most of the
// residual noise.
const (
	gatherDirections = 8
	gatherSteps      = 4
)

// hash32 is a small integer hash (PCG output permutation) used to decorrelate
// the gather pattern across pixels and frames. The software path must be
// deterministic for a given (pixel, frame), so no global RNG state.
func hash32(x, y, frame uint32) uint32 {
	h := x*374761393 + y*668265263 + frame*2246822519
	h = (h ^ (h >> 13)) * 1274126177
	return h ^ (h >> 16)
}

// hashFloat returns a deterministic jitter value in [0, 1).
func hashFloat(x, y, frame uint32) float32 {
	return float32(hash32(x, y, frame)&0xFFFFFF) / float32(1<<24)
}

// directLight evaluates the dominant light's contribution at a surface
// point. Quadratic falloff to zero at the light radius, no shadowing: the
// cascade gather is screen-space and occlusion shows up as missing samples
// rather than shadow rays.
func directLight(p, n Vec3, light Light) Vec3 {
	if light.Radius <= 0 {
		return Vec3{}
	}
	toLight := light.Position.Sub(p)
	d := toLight.Length()
	if d >= light.Radius || d == 0 {
		return Vec3{}
	}
	ndotl := n.Dot(toLight.Scale(1 / d))
	if ndotl <= 0 {
		return Vec3{}
	}
	falloff := 1 - d/light.Radius
	return light.Color.Scale(ndotl * falloff * falloff)
}

// computeCascades runs the cascade hierarchy for this frame, coarsest level
// first so each finer level can read the coarser level's current-frame
// result. After each level's pass the result is blitted into that level's
// temporal buffer for the next frame.
func (e *Engine) computeCascades(in *FrameInput, active int) {
	useHistory := e.temporalEnabled && e.frameCounter > 0

	for i := active - 1; i >= 0; i-- {
		dst := e.res.get(cascadeTargetName(i))
		if dst == nil {
			continue
		}
		// The next coarser level's target is bound whenever it exists,
		// even when ActiveCascades excluded it this frame; it then
		// contributes its most recent content.
		var coarser *Buffer
		if i+1 < e.numCascades {
			coarser = e.res.get(cascadeTargetName(i + 1))
		}
		hist := e.res.get(cascadeTemporalName(i))

		e.cascadePass(dst, e.levels[i], in, coarser, hist, useHistory && hist != nil)

		if e.temporalEnabled && hist != nil {
			if err := hist.CopyFrom(dst); err != nil {
				Logger().Warn("temporal blit failed",
					"level", i, "err", err)
			}
		}
	}
}

// cascadePass computes one cascade level: for every probe pixel it gathers
// radiance from G-buffer samples inside the level's world-space distance
// band, adds the coarser level's estimate for everything beyond the band,
// and blends against the level's history.
func (e *Engine) cascadePass(dst *Buffer, level CascadeLevel, in *FrameInput, coarser, hist *Buffer, useHistory bool) {
	if a := e.accelerator(); a != nil && a.CanAccelerate(AccelCascade) {
		err := a.CascadePass(passTarget(dst), CascadeArgs{
			Level:            level,
			GBuffer:          e.gbufferTargets(),
			Coarser:          optionalTarget(coarser),
			History:          optionalTarget(hist),
			UseHistory:       useHistory,
			Frame:            e.frameCounter,
			Light:            in.Light,
			MaxHistoryWeight: e.maxHistoryWeight,
			Focal:            in.Projection[5],
		})
		if err == nil {
			return
		}
		Logger().Debug("cascade pass on CPU", "level", level.Index, "err", err)
	}

	w, h := dst.Width(), dst.Height()
	// Projection scale converting a world-space radius at depth z to a
	// vertical NDC extent: proj[5] is the focal term of the projection.
	focal := in.Projection[5]
	historyW := clamp32(float32(e.frameCounter)/float32(e.frameCounter+1), 0, e.maxHistoryWeight)
	frame := uint32(e.frameCounter)

	for py := 0; py < h; py++ {
		v := (float32(py) + 0.5) / float32(h)
		for px := 0; px < w; px++ {
			u := (float32(px) + 0.5) / float32(w)

			pos, normal, _, _, depth := e.gbuf.sampleUV(u, v)
			if pos.W == 0 {
				dst.Set(px, py, Vec4{})
				continue
			}
			p := pos.Vec3()

			var rad Vec3
			jitter := hashFloat(uint32(px), uint32(py), frame)
			taps := 0
			for k := 0; k < gatherDirections; k++ {
				angle := 2 * math32.Pi * (float32(k) + jitter) / gatherDirections
				dx, dy := math32.Sincos(angle)
				for s := 0; s < gatherSteps; s++ {
					worldR := level.MinDist +
						(level.MaxDist-level.MinDist)*(float32(s)+0.5)/gatherSteps
					// World radius to screen offset at this depth.
					ndcR := worldR * focal * 0.5 / max(depth, 1e-3)
					su := u + dx*ndcR*float32(e.height)/float32(e.width)
					sv := v + dy*ndcR
					if su < 0 || su > 1 || sv < 0 || sv > 1 {
						continue
					}
					spos, snormal, salbedo, semission, _ := e.gbuf.sampleUV(su, sv)
					if spos.W == 0 {
						continue
					}
					sp := spos.Vec3()
					delta := sp.Sub(p)
					dist := delta.Length()
					if dist < level.MinDist || dist >= level.MaxDist {
						continue
					}
					toS := delta.Scale(1 / dist)
					cosR := normal.Dot(toS)
					cosS := snormal.Dot(toS.Neg())
					if cosR <= 0 || cosS <= 0 {
						continue
					}
					emitted := semission.Add(
						salbedo.Vec3().MulV(directLight(sp, snormal, in.Light)))
					rad = rad.Add(emitted.Scale(cosR * cosS / (1 + dist*dist)))
					taps++
				}
			}
			if taps > 0 {
				rad = rad.Scale(math32.Pi / float32(gatherDirections*gatherSteps))
			}

			// Merge: the coarser level carries all radiance from beyond
			// this band, so bands telescope into a full estimate.
			if coarser != nil {
				rad = rad.Add(coarser.SampleUV(u, v).Vec3())
			}

			out := Vec4{rad.X, rad.Y, rad.Z, 1}
			if useHistory {
				out = out.Lerp(hist.SampleUV(u, v), historyW)
				out.W = 1
			}
			dst.Set(px, py, out)
		}
	}
}
