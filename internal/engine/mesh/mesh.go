// Package mesh holds immutable GPU geometry.
package mesh

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/multierr"

	"github.com/Faultbox/skylight/internal/engine/gpu"
	"github.com/Faultbox/skylight/pkg/math"
)

// Vertex is the interleaved vertex layout shared by every shader.
type Vertex struct {
	Position mgl32.Vec3
	Normal   mgl32.Vec3
	UV       mgl32.Vec2
	Tangent  mgl32.Vec3
}

// VertexStride is the size of Vertex in bytes.
const VertexStride = int(unsafe.Sizeof(Vertex{}))

// Mesh is a vertex buffer and an index buffer of 32-bit indices.
type Mesh struct {
	name         string
	vertexBuffer gpu.Buffer
	indexBuffer  gpu.Buffer
	vertexCount  int
	indexCount   int
	bounds       math.AABB
}

// New computes tangents for vertices and uploads both buffers. vertices is
// modified in place.
func New(dev gpu.Device, name string, vertices []Vertex, indices []uint32) (*Mesh, error) {
	if len(vertices) == 0 || len(indices) == 0 || len(indices)%3 != 0 {
		return nil, fmt.Errorf("mesh %s: %w: %d vertices, %d indices", name, gpu.ErrInvalidDesc, len(vertices), len(indices))
	}
	for _, i := range indices {
		if int(i) >= len(vertices) {
			return nil, fmt.Errorf("mesh %s: %w: index %d out of range", name, gpu.ErrInvalidDesc, i)
		}
	}

	CalculateTangents(vertices, indices)

	vbData := gpu.Bytes(vertices)
	vb, err := dev.CreateBuffer(gpu.BufferDesc{Kind: gpu.VertexBuffer, Size: len(vbData)}, vbData)
	if err != nil {
		return nil, fmt.Errorf("creating vertex buffer for %s: %w", name, err)
	}

	ibData := gpu.Bytes(indices)
	ib, err := dev.CreateBuffer(gpu.BufferDesc{Kind: gpu.IndexBuffer, Size: len(ibData)}, ibData)
	if err != nil {
		return nil, multierr.Append(
			fmt.Errorf("creating index buffer for %s: %w", name, err),
			dev.ReleaseBuffer(vb),
		)
	}

	bounds := math.EmptyAABB()
	for _, v := range vertices {
		bounds = bounds.Extend(v.Position)
	}

	return &Mesh{
		name:         name,
		vertexBuffer: vb,
		indexBuffer:  ib,
		vertexCount:  len(vertices),
		indexCount:   len(indices),
		bounds:       bounds,
	}, nil
}

func (m *Mesh) Name() string             { return m.name }
func (m *Mesh) VertexBuffer() gpu.Buffer { return m.vertexBuffer }
func (m *Mesh) IndexBuffer() gpu.Buffer  { return m.indexBuffer }
func (m *Mesh) VertexCount() int         { return m.vertexCount }
func (m *Mesh) IndexCount() int          { return m.indexCount }
func (m *Mesh) Bounds() math.AABB        { return m.bounds }

// Draw binds both buffers and issues one indexed draw.
func (m *Mesh) Draw(ctx gpu.Context) {
	ctx.SetVertexBuffer(m.vertexBuffer, VertexStride)
	ctx.SetIndexBuffer(m.indexBuffer)
	ctx.DrawIndexed(m.indexCount)
}

// Release frees both buffers.
func (m *Mesh) Release(dev gpu.Device) error {
	err := multierr.Combine(dev.ReleaseBuffer(m.vertexBuffer), dev.ReleaseBuffer(m.indexBuffer))
	m.vertexBuffer, m.indexBuffer = 0, 0
	return err
}

// CalculateTangents fills Tangent for every vertex from triangle positions
// and UVs, orthogonalized against the vertex normal.
func CalculateTangents(vertices []Vertex, indices []uint32) {
	for i := range vertices {
		vertices[i].Tangent = mgl32.Vec3{}
	}

	for t := 0; t+2 < len(indices); t += 3 {
		i0, i1, i2 := indices[t], indices[t+1], indices[t+2]
		v0, v1, v2 := vertices[i0], vertices[i1], vertices[i2]

		e1 := v1.Position.Sub(v0.Position)
		e2 := v2.Position.Sub(v0.Position)
		du1, dv1 := v1.UV.X()-v0.UV.X(), v1.UV.Y()-v0.UV.Y()
		du2, dv2 := v2.UV.X()-v0.UV.X(), v2.UV.Y()-v0.UV.Y()

		det := du1*dv2 - du2*dv1
		if det == 0 {
			continue
		}
		tangent := e1.Mul(dv2).Sub(e2.Mul(dv1)).Mul(1 / det)

		vertices[i0].Tangent = vertices[i0].Tangent.Add(tangent)
		vertices[i1].Tangent = vertices[i1].Tangent.Add(tangent)
		vertices[i2].Tangent = vertices[i2].Tangent.Add(tangent)
	}

	for i := range vertices {
		n := vertices[i].Normal
		t := vertices[i].Tangent
		// Gram-Schmidt
		t = t.Sub(n.Mul(n.Dot(t)))
		if t.Len() == 0 {
			continue
		}
		vertices[i].Tangent = t.Normalize()
	}
}
