package vibegi

// ResetTemporalAccumulation discards all accumulated history: the frame
// counter returns to zero and every per-cascade temporal buffer is cleared.
// The next frame renders as if it were the first.
func (e *Engine) ResetTemporalAccumulation() {
	e.frameCounter = 0
	e.clearTemporalBuffers()
	Logger().Debug("temporal accumulation reset")
}

// SetTemporalAccumulation enables or disables temporal accumulation.
// Disabling resets immediately so re-enabling never blends stale history
// from before the toggle.
func (e *Engine) SetTemporalAccumulation(enabled bool) {
	e.temporalEnabled = enabled
	if !enabled {
		e.ResetTemporalAccumulation()
	}
}

// TemporalAccumulation reports whether temporal accumulation is enabled.
func (e *Engine) TemporalAccumulation() bool { return e.temporalEnabled }

func (e *Engine) clearTemporalBuffers() {
	for i := 0; i < e.numCascades; i++ {
		if b := e.res.get(cascadeTemporalName(i)); b != nil {
			b.Clear(Vec4{})
		}
	}
}

// checkLightMotion resets history when the dominant light has moved far
// enough that accumulated radiance is no longer valid. Small jitters stay
// below the threshold and keep the accumulation converging.
func (e *Engine) checkLightMotion(light Light) {
	if e.haveLightPos {
		if light.Position.Sub(e.lastLightPos).Length() > e.lightResetDist {
			Logger().Debug("light moved, resetting temporal history",
				"distance", light.Position.Sub(e.lastLightPos).Length())
			e.ResetTemporalAccumulation()
		}
	}
	e.lastLightPos = light.Position
	e.haveLightPos = true
}
