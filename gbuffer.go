package vibegi

import "github.com/chewxy/math32"

// GBuffer groups the geometry pass attachments. All attachments share the
// screen resolution. The W channel of Position is a coverage flag: 1 where
// geometry was rasterized, 0 for background. Depth stores linear view-space
// depth in X. Velocity stores the NDC-space screen delta against the
// previous frame's camera in XY.
type GBuffer struct {
	Position *Buffer
	Normal   *Buffer
	Albedo   *Buffer
	Depth    *Buffer
	Velocity *Buffer
	Emission *Buffer

	// zbuf is the depth-test buffer, one clip-space depth per pixel.
	// It is transient rasterizer state, not a readable attachment.
	zbuf []float32

	width, height int
}

// allocGBuffer registers the G-buffer attachments in the resource table.
func allocGBuffer(t *resourceTable, w, h int) *GBuffer {
	g := &GBuffer{
		Position: t.alloc(targetGBufferPosition, w, h, FormatRGBA32Float),
		Normal:   t.alloc(targetGBufferNormal, w, h, FormatRGBA16Float),
		Albedo:   t.alloc(targetGBufferAlbedo, w, h, FormatRGBA8Unorm),
		Depth:    t.alloc(targetGBufferDepth, w, h, FormatR16Float),
		Velocity: t.alloc(targetGBufferVelocity, w, h, FormatRG16Float),
		Emission: t.alloc(targetGBufferEmission, w, h, FormatRGBA16Float),
		width:    w,
		height:   h,
	}
	if w > 0 && h > 0 {
		g.zbuf = make([]float32, w*h)
	}
	return g
}

// complete reports whether every attachment allocated successfully.
func (g *GBuffer) complete() bool {
	return g.Position != nil && g.Normal != nil && g.Albedo != nil &&
		g.Depth != nil && g.Velocity != nil && g.Emission != nil
}

// clear resets all attachments and the depth test buffer.
func (g *GBuffer) clear() {
	g.Position.Clear(Vec4{})
	g.Normal.Clear(Vec4{})
	g.Albedo.Clear(Vec4{})
	g.Depth.Clear(Vec4{})
	g.Velocity.Clear(Vec4{})
	g.Emission.Clear(Vec4{})
	for i := range g.zbuf {
		g.zbuf[i] = math32.Inf(1)
	}
}

// sampleUV reads the attachments at normalized coordinates with
// nearest-neighbor addressing. Geometry attributes must not be blended
// across silhouettes, so bilinear filtering is wrong here.
func (g *GBuffer) sampleUV(u, v float32) (pos Vec4, normal Vec3, albedo Vec4, emission Vec3, depth float32) {
	pos = g.Position.SampleNearestUV(u, v)
	normal = g.Normal.SampleNearestUV(u, v).Vec3()
	albedo = g.Albedo.SampleNearestUV(u, v)
	emission = g.Emission.SampleNearestUV(u, v).Vec3()
	depth = g.Depth.SampleNearestUV(u, v).X
	return
}

// gbufferVertex is a rasterizer-internal vertex after transformation.
type gbufferVertex struct {
	clip     Vec4 // current clip-space position
	prevClip Vec4 // previous-frame clip-space position
	world    Vec3
	normal   Vec3
	viewZ    float32
}

// renderGBuffer rasterizes the frame's drawables into the G-buffer.
// Velocity is derived from the camera delta only: the same world-space
// position is reprojected through the previous frame's view-projection.
func (e *Engine) renderGBuffer(in *FrameInput) {
	g := e.gbuf
	g.clear()

	viewProj := in.Projection.Mul(in.View)
	prevViewProj := viewProj
	if e.havePrev {
		prevViewProj = e.prevProj.Mul(e.prevView)
	}

	for di := range in.Drawables {
		d := &in.Drawables[di]
		if d.Mesh == nil {
			continue
		}
		normalMat := d.Model.Inverse().Transpose()
		for ti := 0; ti < d.Mesh.TriangleCount(); ti++ {
			a, b, c := d.Mesh.Triangle(ti)
			v0 := e.transformVertex(a, d.Model, normalMat, in.View, viewProj, prevViewProj)
			v1 := e.transformVertex(b, d.Model, normalMat, in.View, viewProj, prevViewProj)
			v2 := e.transformVertex(c, d.Model, normalMat, in.View, viewProj, prevViewProj)
			g.rasterize(v0, v1, v2, d.Mesh.Albedo, d.Mesh.Emission)
		}
	}
}

func (e *Engine) transformVertex(v Vertex, model, normalMat, view, viewProj, prevViewProj Mat4) gbufferVertex {
	world := model.MulPoint(v.Position)
	viewPos := view.MulPoint(world)
	return gbufferVertex{
		clip:     viewProj.MulVec4(Vec4{world.X, world.Y, world.Z, 1}),
		prevClip: prevViewProj.MulVec4(Vec4{world.X, world.Y, world.Z, 1}),
		world:    world,
		normal:   normalMat.MulDir(v.Normal).Normalize(),
		viewZ:    -viewPos.Z,
	}
}

// ndc converts a clip-space position to NDC, returning ok=false for vertices
// behind the camera. Triangles touching the near plane are dropped whole
// rather than clipped; the reference scenes keep geometry in front of the
// camera, and a missing sliver costs far less than a wrong one.
func ndc(c Vec4) (Vec3, bool) {
	if c.W <= 1e-6 {
		return Vec3{}, false
	}
	inv := 1 / c.W
	return Vec3{c.X * inv, c.Y * inv, c.Z * inv}, true
}

// rasterize scan-converts one triangle with a depth test, interpolating all
// G-buffer attributes with perspective correction.
func (g *GBuffer) rasterize(v0, v1, v2 gbufferVertex, albedo, emission Vec3) {
	n0, ok0 := ndc(v0.clip)
	n1, ok1 := ndc(v1.clip)
	n2, ok2 := ndc(v2.clip)
	if !ok0 || !ok1 || !ok2 {
		return
	}

	w := float32(g.width)
	h := float32(g.height)
	// NDC to pixel centers. Y flips: NDC +Y is up, pixel +Y is down.
	sx0, sy0 := (n0.X*0.5+0.5)*w, (0.5-n0.Y*0.5)*h
	sx1, sy1 := (n1.X*0.5+0.5)*w, (0.5-n1.Y*0.5)*h
	sx2, sy2 := (n2.X*0.5+0.5)*w, (0.5-n2.Y*0.5)*h

	area := (sx1-sx0)*(sy2-sy0) - (sy1-sy0)*(sx2-sx0)
	if area == 0 {
		return
	}

	minX := clampInt(int(math32.Floor(min(sx0, sx1, sx2))), 0, g.width-1)
	maxX := clampInt(int(math32.Ceil(max(sx0, sx1, sx2))), 0, g.width-1)
	minY := clampInt(int(math32.Floor(min(sy0, sy1, sy2))), 0, g.height-1)
	maxY := clampInt(int(math32.Ceil(max(sy0, sy1, sy2))), 0, g.height-1)

	invW0 := 1 / v0.clip.W
	invW1 := 1 / v1.clip.W
	invW2 := 1 / v2.clip.W
	invArea := 1 / area

	for py := minY; py <= maxY; py++ {
		for px := minX; px <= maxX; px++ {
			cx := float32(px) + 0.5
			cy := float32(py) + 0.5
			b0 := ((sx1-cx)*(sy2-cy) - (sy1-cy)*(sx2-cx)) * invArea
			b1 := ((sx2-cx)*(sy0-cy) - (sy2-cy)*(sx0-cx)) * invArea
			b2 := 1 - b0 - b1
			// Accept both windings so interiors of closed boxes shade.
			if b0 < 0 || b1 < 0 || b2 < 0 {
				if b0 > 0 || b1 > 0 || b2 > 0 {
					continue
				}
			}

			z := b0*n0.Z + b1*n1.Z + b2*n2.Z
			zi := py*g.width + px
			if z >= g.zbuf[zi] {
				continue
			}
			g.zbuf[zi] = z

			// Perspective-correct interpolation weights.
			pw0 := b0 * invW0
			pw1 := b1 * invW1
			pw2 := b2 * invW2
			sum := pw0 + pw1 + pw2
			if sum == 0 {
				continue
			}
			pw0 /= sum
			pw1 /= sum
			pw2 /= sum

			world := v0.world.Scale(pw0).Add(v1.world.Scale(pw1)).Add(v2.world.Scale(pw2))
			normal := v0.normal.Scale(pw0).Add(v1.normal.Scale(pw1)).Add(v2.normal.Scale(pw2)).Normalize()
			viewZ := pw0*v0.viewZ + pw1*v1.viewZ + pw2*v2.viewZ

			curNDC := Vec3{
				pw0*n0.X + pw1*n1.X + pw2*n2.X,
				pw0*n0.Y + pw1*n1.Y + pw2*n2.Y,
				0,
			}
			prevClip := v0.prevClip.Scale(pw0).Add(v1.prevClip.Scale(pw1)).Add(v2.prevClip.Scale(pw2))
			velX, velY := float32(0), float32(0)
			if prevNDC, ok := ndc(prevClip); ok {
				velX = curNDC.X - prevNDC.X
				velY = curNDC.Y - prevNDC.Y
			}

			g.Position.Set(px, py, Vec4{world.X, world.Y, world.Z, 1})
			g.Normal.Set(px, py, Vec4{normal.X, normal.Y, normal.Z, 0})
			g.Albedo.Set(px, py, Vec4{albedo.X, albedo.Y, albedo.Z, 1})
			g.Depth.Set(px, py, Vec4{X: viewZ})
			g.Velocity.Set(px, py, Vec4{X: velX, Y: velY})
			g.Emission.Set(px, py, Vec4{emission.X, emission.Y, emission.Z, 0})
		}
	}
}
