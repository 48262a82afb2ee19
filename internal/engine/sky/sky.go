// Package sky draws a cube-mapped background behind all opaque geometry.
package sky

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/skylight/internal/engine/camera"
	"github.com/Faultbox/skylight/internal/engine/gpu"
	"github.com/Faultbox/skylight/internal/engine/mesh"
	"github.com/Faultbox/skylight/internal/logger"
)

// ErrFaceMismatch is returned when the six faces are not equally sized
// squares of one format.
var ErrFaceMismatch = errors.New("sky faces differ in size or format")

// Shader variable names.
const (
	VarView       = "view"
	VarProjection = "projection"
	VarTexture    = "SkyTexture"
	VarSampler    = "SkySampler"
)

// FaceNames lists the face image names in cube slice order: +X, -X, +Y, -Y,
// +Z, -Z.
var FaceNames = [6]string{"right", "left", "up", "down", "front", "back"}

// AssembleCubeMap copies six face textures into the slices of a new cube
// texture and returns it with a cube shader view. The faces are not
// released.
func AssembleCubeMap(dev gpu.Device, ctx gpu.Context, faces [6]gpu.Texture) (gpu.Texture, gpu.View, error) {
	first, ok := dev.TextureDesc(faces[0])
	if !ok {
		return 0, 0, fmt.Errorf("%w: face %s is not a texture", ErrFaceMismatch, FaceNames[0])
	}
	if first.Width != first.Height {
		return 0, 0, fmt.Errorf("%w: face %s is %dx%d", ErrFaceMismatch, FaceNames[0], first.Width, first.Height)
	}
	for i, f := range faces[1:] {
		d, ok := dev.TextureDesc(f)
		if !ok || d.Width != first.Width || d.Height != first.Height || d.Format != first.Format {
			return 0, 0, fmt.Errorf("%w: face %s does not match %dx%d %s",
				ErrFaceMismatch, FaceNames[i+1], first.Width, first.Height, first.Format)
		}
	}

	cube, err := dev.CreateTexture(gpu.TextureDesc{
		Width:     first.Width,
		Height:    first.Height,
		ArraySize: 6,
		Format:    first.Format,
		Bind:      gpu.BindShaderResource,
		Cube:      true,
	}, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("creating cube texture: %w", err)
	}

	for i, f := range faces {
		ctx.CopyTextureSlice(cube, i, f)
	}

	view, err := dev.CreateView(cube, gpu.ViewShaderResource)
	if err != nil {
		return 0, 0, multierr.Append(fmt.Errorf("creating cube view: %w", err), dev.ReleaseTexture(cube))
	}
	return cube, view, nil
}

// Sky owns the cube map and draws it with a shared cube mesh and shaders.
type Sky struct {
	mesh    *mesh.Mesh
	cube    gpu.Texture
	view    gpu.View
	sampler gpu.Sampler
	vs, ps  gpu.Shader
}

// New assembles the cube map from faces.
func New(dev gpu.Device, ctx gpu.Context, cubeMesh *mesh.Mesh, faces [6]gpu.Texture, sampler gpu.Sampler, vs, ps gpu.Shader) (*Sky, error) {
	cube, view, err := AssembleCubeMap(dev, ctx, faces)
	if err != nil {
		return nil, err
	}
	desc, _ := dev.TextureDesc(cube)
	logger.Named("sky").Info("cube map assembled",
		zap.Int("size", desc.Width),
		zap.Stringer("format", desc.Format))

	return &Sky{
		mesh:    cubeMesh,
		cube:    cube,
		view:    view,
		sampler: sampler,
		vs:      vs,
		ps:      ps,
	}, nil
}

// CubeMap returns the cube texture and its shader view.
func (s *Sky) CubeMap() (gpu.Texture, gpu.View) { return s.cube, s.view }

// RasterState culls front faces so the cube is seen from inside.
func RasterState() gpu.RasterState { return gpu.RasterState{Cull: gpu.CullFront} }

// DepthState lets the sky pass at the far plane.
func DepthState() gpu.DepthState {
	return gpu.DepthState{Test: true, Write: true, Func: gpu.CompareLessEqual}
}

// Draw renders the sky with the camera's view and projection and restores
// the default raster and depth state.
func (s *Sky) Draw(ctx gpu.Context, cam *camera.Camera) {
	ctx.SetRasterState(RasterState())
	ctx.SetDepthState(DepthState())

	s.vs.Bind()
	s.ps.Bind()

	s.vs.SetMatrix4x4(VarView, cam.View())
	s.vs.SetMatrix4x4(VarProjection, cam.Projection())
	s.vs.CopyAllBufferData()

	s.ps.SetShaderResourceView(VarTexture, s.view)
	s.ps.SetSampler(VarSampler, s.sampler)
	s.ps.CopyAllBufferData()

	s.mesh.Draw(ctx)

	ctx.SetRasterState(gpu.DefaultRasterState())
	ctx.SetDepthState(gpu.DefaultDepthState())
}

// Release frees the cube map. The mesh, sampler and shaders are shared and
// left alone.
func (s *Sky) Release(dev gpu.Device) error {
	if s.cube == 0 {
		return nil
	}
	err := multierr.Combine(dev.ReleaseView(s.view), dev.ReleaseTexture(s.cube))
	s.cube, s.view = 0, 0
	return err
}
