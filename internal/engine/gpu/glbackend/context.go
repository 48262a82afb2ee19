package glbackend

import (
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/skylight/internal/engine/gpu"
	"github.com/Faultbox/skylight/internal/engine/mesh"
)

// D3D-style depth bias counts 24-bit depth steps; GL polygon offset units
// are implementation-scaled, so the value is divided down.
const depthBiasScale = 250

// framebuffer returns the FBO for a color and depth view pair, creating it
// on first use.
func (b *Backend) framebuffer(key fboKey) (uint32, bool) {
	if fbo, ok := b.fbos[key]; ok {
		return fbo, true
	}

	var fbo uint32
	gl.GenFramebuffers(1, &fbo)
	gl.BindFramebuffer(gl.FRAMEBUFFER, fbo)
	if t := b.viewTexture(key.color); t != nil {
		gl.FramebufferTexture(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, t.id, 0)
		gl.DrawBuffer(gl.COLOR_ATTACHMENT0)
	} else {
		gl.DrawBuffer(gl.NONE)
		gl.ReadBuffer(gl.NONE)
	}
	if t := b.viewTexture(key.depth); t != nil {
		gl.FramebufferTexture(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, t.id, 0)
	}

	if status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER); status != gl.FRAMEBUFFER_COMPLETE {
		b.log.Error("framebuffer incomplete", zap.Uint32("status", status))
		gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
		gl.DeleteFramebuffers(1, &fbo)
		return 0, false
	}
	b.fbos[key] = fbo
	return fbo, true
}

func (b *Backend) viewTexture(v gpu.View) *texture {
	if v == 0 {
		return nil
	}
	vw, ok := b.views[v]
	if !ok {
		return nil
	}
	return b.textures[vw.tex]
}

// withTarget runs fn with key bound, then restores the current targets.
func (b *Backend) withTarget(key fboKey, fn func()) {
	fbo, ok := b.framebuffer(key)
	if !ok {
		return
	}
	gl.BindFramebuffer(gl.FRAMEBUFFER, fbo)
	fn()
	b.bindCurrent()
}

func (b *Backend) bindCurrent() {
	if b.current == (fboKey{}) {
		gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
		return
	}
	fbo, _ := b.framebuffer(b.current)
	gl.BindFramebuffer(gl.FRAMEBUFFER, fbo)
}

func (b *Backend) ClearRenderTarget(v gpu.View, c gpu.Color) {
	b.withTarget(fboKey{color: v}, func() {
		gl.ClearColor(c[0], c[1], c[2], c[3])
		gl.Clear(gl.COLOR_BUFFER_BIT)
	})
}

func (b *Backend) ClearDepth(v gpu.View, depth float32) {
	b.withTarget(fboKey{depth: v}, func() {
		// Depth clears honor the write mask.
		gl.DepthMask(true)
		gl.ClearDepth(float64(depth))
		gl.Clear(gl.DEPTH_BUFFER_BIT)
	})
}

func (b *Backend) SetRenderTargets(color, depth gpu.View) {
	b.current = fboKey{color: color, depth: depth}
	b.bindCurrent()
}

func (b *Backend) SetViewport(vp gpu.Viewport) {
	gl.Viewport(int32(vp.X), int32(vp.Y), int32(vp.Width), int32(vp.Height))
}

func (b *Backend) SetRasterState(rs gpu.RasterState) {
	switch rs.Cull {
	case gpu.CullNone:
		gl.Disable(gl.CULL_FACE)
	case gpu.CullFront:
		gl.Enable(gl.CULL_FACE)
		gl.CullFace(gl.FRONT)
	default:
		gl.Enable(gl.CULL_FACE)
		gl.CullFace(gl.BACK)
	}

	if rs.DepthBias == 0 && rs.SlopeScaledBias == 0 {
		gl.Disable(gl.POLYGON_OFFSET_FILL)
		return
	}
	gl.Enable(gl.POLYGON_OFFSET_FILL)
	gl.PolygonOffset(rs.SlopeScaledBias, float32(rs.DepthBias)/depthBiasScale)
}

func (b *Backend) SetDepthState(ds gpu.DepthState) {
	if ds.Test {
		gl.Enable(gl.DEPTH_TEST)
	} else {
		gl.Disable(gl.DEPTH_TEST)
	}
	gl.DepthMask(ds.Write)
	gl.DepthFunc(compareOf(ds.Func))
}

// SetVertexBuffer binds buf with the mesh vertex layout: position, normal,
// uv and tangent at attribute locations 0 to 3.
func (b *Backend) SetVertexBuffer(buf gpu.Buffer, stride int) {
	res, ok := b.buffers[buf]
	if !ok {
		return
	}
	gl.BindVertexArray(b.meshVAO)
	gl.BindBuffer(gl.ARRAY_BUFFER, res.id)

	var v mesh.Vertex
	s := int32(stride)
	attribs := []struct {
		size   int32
		offset uintptr
	}{
		{3, unsafe.Offsetof(v.Position)},
		{3, unsafe.Offsetof(v.Normal)},
		{2, unsafe.Offsetof(v.UV)},
		{3, unsafe.Offsetof(v.Tangent)},
	}
	for i, a := range attribs {
		gl.EnableVertexAttribArray(uint32(i))
		gl.VertexAttribPointerWithOffset(uint32(i), a.size, gl.FLOAT, false, s, a.offset)
	}
}

func (b *Backend) SetIndexBuffer(buf gpu.Buffer) {
	res, ok := b.buffers[buf]
	if !ok {
		return
	}
	gl.BindVertexArray(b.meshVAO)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, res.id)
}

func (b *Backend) DrawIndexed(indexCount int) {
	if !b.prepareDraw() {
		return
	}
	gl.BindVertexArray(b.meshVAO)
	gl.DrawElementsWithOffset(gl.TRIANGLES, int32(indexCount), gl.UNSIGNED_INT, 0)
}

// Draw issues vertices with no attributes; the vertex shader builds them
// from gl_VertexID.
func (b *Backend) Draw(vertexCount int) {
	if !b.prepareDraw() {
		return
	}
	gl.BindVertexArray(b.emptyVAO)
	gl.DrawArrays(gl.TRIANGLES, 0, int32(vertexCount))
}

// CopyTextureSlice copies slice 0 of src into dstSlice of dst through the
// read framebuffer.
func (b *Backend) CopyTextureSlice(dst gpu.Texture, dstSlice int, src gpu.Texture) {
	d, ok1 := b.textures[dst]
	s, ok2 := b.textures[src]
	if !ok1 || !ok2 {
		return
	}
	w, h := int32(s.desc.Width), int32(s.desc.Height)

	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, b.readFBO)
	if s.target == gl.TEXTURE_2D {
		gl.FramebufferTexture2D(gl.READ_FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, s.id, 0)
	} else {
		gl.FramebufferTextureLayer(gl.READ_FRAMEBUFFER, gl.COLOR_ATTACHMENT0, s.id, 0, 0)
	}
	gl.ReadBuffer(gl.COLOR_ATTACHMENT0)

	gl.BindTexture(d.target, d.id)
	switch d.target {
	case gl.TEXTURE_CUBE_MAP:
		gl.CopyTexSubImage2D(gl.TEXTURE_CUBE_MAP_POSITIVE_X+uint32(dstSlice), 0, 0, 0, 0, 0, w, h)
	case gl.TEXTURE_2D_ARRAY:
		gl.CopyTexSubImage3D(d.target, 0, 0, 0, int32(dstSlice), 0, 0, w, h)
	default:
		gl.CopyTexSubImage2D(d.target, 0, 0, 0, 0, 0, w, h)
	}
	gl.BindTexture(d.target, 0)

	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, 0)
	b.bindCurrent()
}

func (b *Backend) UnbindShaderResources() {
	for i := range b.boundUnits {
		gl.ActiveTexture(gl.TEXTURE0 + uint32(i))
		gl.BindTexture(gl.TEXTURE_2D, 0)
		gl.BindTexture(gl.TEXTURE_2D_ARRAY, 0)
		gl.BindTexture(gl.TEXTURE_CUBE_MAP, 0)
		gl.BindSampler(uint32(i), 0)
	}
	gl.ActiveTexture(gl.TEXTURE0)
	b.boundUnits = 0
}

func (b *Backend) ClearPixelShader() {
	b.ps = nil
}
