package game

import (
	"fmt"
	"image"
	"image/color"
	"path"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/skylight/internal/assets"
	"github.com/Faultbox/skylight/internal/config"
	"github.com/Faultbox/skylight/internal/engine/arena"
	"github.com/Faultbox/skylight/internal/engine/camera"
	"github.com/Faultbox/skylight/internal/engine/gpu"
	"github.com/Faultbox/skylight/internal/engine/lighting"
	"github.com/Faultbox/skylight/internal/engine/material"
	"github.com/Faultbox/skylight/internal/engine/mesh"
	"github.com/Faultbox/skylight/internal/engine/postprocess"
	"github.com/Faultbox/skylight/internal/engine/scene"
	"github.com/Faultbox/skylight/internal/engine/shaders"
	"github.com/Faultbox/skylight/internal/engine/sky"
	"github.com/Faultbox/skylight/internal/engine/texture"
	"github.com/Faultbox/skylight/internal/logger"
)

// Material texture slot names in the object shader.
const (
	SlotDiffuse        = "DiffuseTexture"
	SlotDiffuseSampler = "DiffuseSampler"
)

// Names of the demo scene's entities.
const (
	EntityFloor   = "floor"
	EntityCube    = "cube"
	EntitySphere  = "sphere"
	EntitySpinner = "spinner"
	EntityPulsing = "pulsing"
)

const proceduralSize = 64

// CameraPositions are the starting points of the demo cameras.
var CameraPositions = []mgl32.Vec3{
	{0, 0, -1},
	{1, 0, -1},
	{-1, 0, -1},
}

// Pipeline holds the shared shaders the renderer needs besides the scene.
type Pipeline struct {
	ShadowVS gpu.Shader
	Post     *postprocess.Chain
}

// Demo is the built scene plus what the renderer is created with.
type Demo struct {
	Scene    *scene.Scene
	Pipeline Pipeline
}

type shaderSet struct {
	objectVS, objectPS gpu.Shader
	shadowVS           gpu.Shader
	skyVS, skyPS       gpu.Shader
	fullscreenVS       gpu.Shader
	blurPS, ditherPS   gpu.Shader
}

// BuildScene creates every resource of the demo scene: shaders, procedural
// meshes, textured materials, animated entities, lights, cameras and the sky.
// On failure everything created so far is released.
func BuildScene(dev gpu.Device, ctx gpu.Context, am *assets.Manager, cfg *config.Config, aspect float32) (*Demo, error) {
	s := scene.New()
	d, err := buildScene(dev, ctx, s, am, cfg, aspect)
	if err != nil {
		return nil, multierr.Append(err, s.Close(dev))
	}
	return d, nil
}

func buildScene(dev gpu.Device, ctx gpu.Context, s *scene.Scene, am *assets.Manager, cfg *config.Config, aspect float32) (*Demo, error) {
	sh, err := createShaders(dev, s)
	if err != nil {
		return nil, err
	}

	linear, err := dev.CreateSampler(gpu.SamplerDesc{Filter: gpu.FilterAnisotropic, Address: gpu.AddressWrap, MaxAnisotropy: 16})
	if err != nil {
		return nil, fmt.Errorf("creating material sampler: %w", err)
	}
	s.OwnSampler(linear)
	clamp, err := dev.CreateSampler(gpu.SamplerDesc{Filter: gpu.FilterLinear, Address: gpu.AddressClamp})
	if err != nil {
		return nil, fmt.Errorf("creating clamp sampler: %w", err)
	}
	s.OwnSampler(clamp)

	cubeV, cubeI := mesh.Cube(1)
	cubeMesh, err := mesh.New(dev, "cube", cubeV, cubeI)
	if err != nil {
		return nil, err
	}
	cube := s.AddMesh(cubeMesh)
	sphereV, sphereI := mesh.Sphere(0.5, 32, 16)
	sphereMesh, err := mesh.New(dev, "sphere", sphereV, sphereI)
	if err != nil {
		return nil, err
	}
	sphere := s.AddMesh(sphereMesh)
	planeV, planeI := mesh.Plane(20, 10)
	planeMesh, err := mesh.New(dev, "plane", planeV, planeI)
	if err != nil {
		return nil, err
	}
	plane := s.AddMesh(planeMesh)

	images := materialImages(am, cfg.Assets.Textures)
	mats := make([]*material.Material, len(images))
	for i, img := range images {
		tex, view, err := texture.Upload(dev, img)
		if err != nil {
			return nil, fmt.Errorf("material %d: %w", i, err)
		}
		s.OwnTexture(tex, view)

		m := material.New(fmt.Sprintf("material%d", i), sh.objectVS, sh.objectPS)
		m.AddTextureSRV(SlotDiffuse, view)
		m.AddSampler(SlotDiffuseSampler, linear)
		mats[i] = m
	}
	mats[0].SetRoughness(0.9)
	mats[1].SetTint(mgl32.Vec4{1, 0.85, 0.7, 1})
	mats[1].SetRoughness(0.3)
	mats[2].SetTint(mgl32.Vec4{0.7, 0.9, 1, 1})
	mats[2].SetUVScale(mgl32.Vec2{2, 2})
	mats[2].SetRoughness(0.05)

	floorMat := s.AddMaterial(mats[0])
	warm := s.AddMaterial(mats[1])
	cool := s.AddMaterial(mats[2])

	placements := []struct {
		name  string
		mesh  arena.Handle[mesh.Mesh]
		mat   arena.Handle[material.Material]
		pos   mgl32.Vec3
		scale float32
	}{
		{EntityFloor, plane, floorMat, mgl32.Vec3{0, -1, 4}, 1},
		{EntityCube, cube, warm, mgl32.Vec3{0, 0, 2}, 1},
		{EntitySphere, sphere, cool, mgl32.Vec3{-2, 0, 3}, 1},
		{EntitySpinner, cube, cool, mgl32.Vec3{2, 0, 3}, 0.5},
		{EntityPulsing, sphere, warm, mgl32.Vec3{0, 1.5, 5}, 1},
	}
	for _, p := range placements {
		e, err := s.AddEntity(p.name, p.mesh, p.mat)
		if err != nil {
			return nil, err
		}
		e.Transform().SetPosition(p.pos)
		e.Transform().SetScale(mgl32.Vec3{p.scale, p.scale, p.scale})
	}

	addLights(s.Lights())
	addCameras(s.Cameras(), &cfg.Camera, aspect)

	sk, err := buildSky(dev, ctx, am, cfg.Assets.SkyDir, cubeMesh, clamp, sh)
	if sk != nil {
		s.SetSky(sk)
	}
	if err != nil {
		return nil, err
	}

	post := postprocess.NewChain(dev, sh.fullscreenVS, clamp, sh.blurPS, sh.ditherPS)
	post.SetBlurRadius(cfg.Render.BlurRadius)
	post.SetPixelSize(cfg.Render.PixelSize)

	logger.Named("game").Info("demo scene built",
		zap.Int("entities", len(s.Entities())),
		zap.Int("lights", s.Lights().Len()),
		zap.Int("cameras", s.Cameras().Len()))
	return &Demo{Scene: s, Pipeline: Pipeline{ShadowVS: sh.shadowVS, Post: post}}, nil
}

func createShaders(dev gpu.Device, s *scene.Scene) (shaderSet, error) {
	var sh shaderSet
	sources := []struct {
		dst   *gpu.Shader
		stage gpu.Stage
		name  string
		code  string
	}{
		{&sh.objectVS, gpu.StageVertex, "object.vert", shaders.ObjectVertexShader},
		{&sh.objectPS, gpu.StagePixel, "object.frag", shaders.ObjectFragmentShader},
		{&sh.shadowVS, gpu.StageVertex, "shadow.vert", shaders.ShadowVertexShader},
		{&sh.skyVS, gpu.StageVertex, "sky.vert", shaders.SkyVertexShader},
		{&sh.skyPS, gpu.StagePixel, "sky.frag", shaders.SkyFragmentShader},
		{&sh.fullscreenVS, gpu.StageVertex, "fullscreen.vert", shaders.FullscreenVertexShader},
		{&sh.blurPS, gpu.StagePixel, "blur.frag", shaders.BlurFragmentShader},
		{&sh.ditherPS, gpu.StagePixel, "dither.frag", shaders.DitherFragmentShader},
	}
	for _, src := range sources {
		shader, err := dev.CreateShader(src.stage, gpu.ShaderSource{Name: src.name, Code: src.code})
		if err != nil {
			return sh, fmt.Errorf("creating shader %s: %w", src.name, err)
		}
		s.Own(shader)
		*src.dst = shader
	}
	return sh, nil
}

// materialImages loads the configured material textures, falling back to
// procedural checkerboards for missing entries. It always returns three.
func materialImages(am *assets.Manager, names []string) []image.Image {
	fallback := []image.Image{
		texture.Checker(proceduralSize, 8, color.RGBA{110, 120, 100, 255}, color.RGBA{80, 90, 70, 255}),
		texture.Checker(proceduralSize, 4, color.RGBA{230, 230, 230, 255}, color.RGBA{180, 60, 40, 255}),
		texture.Checker(proceduralSize, 2, color.RGBA{240, 240, 250, 255}, color.RGBA{60, 90, 160, 255}),
	}
	images := make([]image.Image, len(fallback))
	for i := range images {
		images[i] = fallback[i]
		if am == nil || i >= len(names) || names[i] == "" {
			continue
		}
		img, err := am.LoadImage(names[i])
		if err != nil {
			logger.Named("game").Warn("using procedural texture", zap.String("name", names[i]), zap.Error(err))
			continue
		}
		images[i] = img
	}
	return images
}

// buildSky loads the sky faces from dir, or a procedural gradient if any
// face is missing, and assembles the sky box. The face textures are released
// once copied into the cube map.
func buildSky(dev gpu.Device, ctx gpu.Context, am *assets.Manager, dir string, cubeMesh *mesh.Mesh, smp gpu.Sampler, sh shaderSet) (_ *sky.Sky, err error) {
	images, loadErr := skyImages(am, dir)
	if loadErr != nil {
		logger.Named("game").Warn("using procedural sky", zap.Error(loadErr))
		images = assets.GradientSky(proceduralSize,
			color.RGBA{40, 90, 180, 255}, color.RGBA{170, 200, 230, 255}, color.RGBA{70, 65, 60, 255})
	}

	var faces [6]gpu.Texture
	defer func() {
		for _, f := range faces {
			if f != 0 {
				err = multierr.Append(err, dev.ReleaseTexture(f))
			}
		}
	}()
	for i, img := range images {
		faces[i], err = dev.CreateTexture(gpu.TextureDesc{
			Width:  img.Rect.Dx(),
			Height: img.Rect.Dy(),
			Format: gpu.FormatRGBA8,
			Bind:   gpu.BindShaderResource,
		}, [][]byte{img.Pix})
		if err != nil {
			return nil, fmt.Errorf("creating sky face %s: %w", sky.FaceNames[i], err)
		}
	}
	return sky.New(dev, ctx, cubeMesh, faces, smp, sh.skyVS, sh.skyPS)
}

func skyImages(am *assets.Manager, dir string) ([6]*image.RGBA, error) {
	if am == nil || dir == "" {
		return [6]*image.RGBA{}, fmt.Errorf("%w: no sky directory", assets.ErrNotFound)
	}
	return am.SkyFaces(path.Clean(dir))
}

func addLights(l *lighting.List) {
	l.Add(lighting.Directional{
		Direction: lighting.SunDirection(30, 45),
		Color:     mgl32.Vec3{1, 0.95, 0.85},
		Intensity: 1,
	})
	l.Add(lighting.Point{
		Position:  mgl32.Vec3{-1.5, 1, 2},
		Color:     mgl32.Vec3{1, 0.4, 0.2},
		Intensity: 2,
		Range:     6,
	})
	l.Add(lighting.Spot{
		Position:   mgl32.Vec3{2, 3, 1},
		Direction:  mgl32.Vec3{0, -1, 0.5},
		Color:      mgl32.Vec3{0.3, 0.6, 1},
		Intensity:  3,
		Range:      10,
		InnerAngle: math32.Pi / 12,
		OuterAngle: math32.Pi / 8,
	})
}

func addCameras(l *camera.List, cfg *config.CameraConfig, aspect float32) {
	fov := mgl32.DegToRad(cfg.FOVDegrees)
	for _, pos := range CameraPositions {
		c := camera.New(pos, cfg.MoveSpeed, cfg.LookSpeed, fov, aspect)
		c.SetSpeedModifiers(cfg.FastMultiplier, cfg.SlowMultiplier)
		l.Add(c)
	}
}
