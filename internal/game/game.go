// Package game builds the demo scene and runs the main loop.
package game

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/skylight/internal/assets"
	"github.com/Faultbox/skylight/internal/config"
	"github.com/Faultbox/skylight/internal/engine/camera"
	"github.com/Faultbox/skylight/internal/engine/debug"
	"github.com/Faultbox/skylight/internal/engine/gpu"
	"github.com/Faultbox/skylight/internal/engine/gpu/glbackend"
	"github.com/Faultbox/skylight/internal/engine/input"
	"github.com/Faultbox/skylight/internal/engine/renderer"
	"github.com/Faultbox/skylight/internal/engine/scene"
	"github.com/Faultbox/skylight/internal/engine/shadow"
	"github.com/Faultbox/skylight/internal/engine/window"
	"github.com/Faultbox/skylight/internal/logger"
)

// Title is the window title.
const Title = "Skylight"

// Backend is the GPU the game draws with.
type Backend interface {
	gpu.Device
	gpu.Context
	gpu.Presenter
}

// Game is the main demo instance.
type Game struct {
	cfg     *config.Config
	running bool

	window  *window.Window
	gl      *glbackend.Backend
	dev     Backend
	assets  *assets.Manager
	input   *input.Input
	scene   *scene.Scene
	render  *renderer.Renderer
	counter *frameCounter
	shots   *debug.ScreenshotCapture

	log *zap.Logger
}

// New opens the window, creates the OpenGL backend and builds the scene.
func New(cfg *config.Config) (*Game, error) {
	log := logger.Named("game")
	log.Info("initializing game",
		zap.Int("width", cfg.Graphics.Width),
		zap.Int("height", cfg.Graphics.Height),
		zap.Bool("fullscreen", cfg.Graphics.Fullscreen),
	)

	// Create window (this also creates OpenGL context)
	win, err := window.New(window.Config{
		Title:      Title,
		Width:      cfg.Graphics.Width,
		Height:     cfg.Graphics.Height,
		Fullscreen: cfg.Graphics.Fullscreen,
		VSync:      cfg.Graphics.VSync,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	// The backend needs the context current, so it comes after the window.
	w, h := win.DrawableSize()
	gl, err := glbackend.New(w, h, win.Swap)
	if err != nil {
		win.Close()
		return nil, fmt.Errorf("failed to create backend: %w", err)
	}

	am := assets.NewManager()
	if cfg.Assets.Root != "" {
		if err := am.AddRoot(cfg.Assets.Root); err != nil {
			log.Warn("asset root unavailable, using procedural assets", zap.Error(err))
		}
	}

	g, err := newGame(cfg, gl, am)
	if err != nil {
		gl.Close()
		win.Close()
		return nil, err
	}
	g.window = win
	g.gl = gl
	g.input = input.New()

	log.Info("game initialized successfully")
	return g, nil
}

// newGame builds the scene and renderer on dev.
func newGame(cfg *config.Config, dev Backend, am *assets.Manager) (*Game, error) {
	w, h := dev.Size()
	demo, err := BuildScene(dev, dev, am, cfg, aspectOf(w, h))
	if err != nil {
		return nil, fmt.Errorf("building scene: %w", err)
	}

	shadowMap, err := shadow.NewMap(dev, cfg.Render.ShadowResolution)
	if err != nil {
		return nil, multierr.Append(fmt.Errorf("creating shadow map: %w", err), demo.Scene.Close(dev))
	}

	r, err := renderer.New(renderer.Config{
		Device:       dev,
		Context:      dev,
		Presenter:    dev,
		ShadowMap:    shadowMap,
		ShadowShader: demo.Pipeline.ShadowVS,
		Post:         demo.Pipeline.Post,
		Options:      optionsFrom(cfg),
	})
	if err != nil {
		err = fmt.Errorf("creating renderer: %w", err)
		err = multierr.Append(err, demo.Pipeline.Post.Release())
		err = multierr.Append(err, shadowMap.Release(dev))
		return nil, multierr.Append(err, demo.Scene.Close(dev))
	}

	return &Game{
		cfg:     cfg,
		dev:     dev,
		assets:  am,
		scene:   demo.Scene,
		render:  r,
		counter: newFrameCounter(time.Second),
		shots:   debug.NewScreenshotCapture(cfg.Assets.ScreenshotsDir, "skylight"),
		log:     logger.Named("game"),
	}, nil
}

func optionsFrom(cfg *config.Config) renderer.Options {
	return renderer.Options{
		ClearColor:      gpu.Color(cfg.Render.ClearColor),
		VSync:           cfg.Graphics.VSync,
		Shadows:         cfg.Render.ShadowsEnabled,
		ShadowDistance:  cfg.Render.ShadowDistance,
		ShadowExtent:    cfg.Render.ShadowExtent,
		ShadowFitBounds: cfg.Render.ShadowFitBounds,
		PostProcess:     cfg.Render.PostProcessEnabled,
	}
}

func aspectOf(w, h int) float32 {
	if h <= 0 {
		return 1
	}
	return float32(w) / float32(h)
}

// Scene returns the demo scene.
func (g *Game) Scene() *scene.Scene { return g.scene }

// Renderer returns the frame renderer.
func (g *Game) Renderer() *renderer.Renderer { return g.render }

// Run starts the main loop and returns when the window is closed or Esc is
// pressed.
func (g *Game) Run() error {
	if g.window == nil || g.input == nil {
		return errors.New("game has no window")
	}
	g.running = true

	start := time.Now()
	lastTime := start
	var minFrame time.Duration
	if g.cfg.Graphics.FPSLimit > 0 {
		minFrame = time.Second / time.Duration(g.cfg.Graphics.FPSLimit)
	}

	g.log.Info("starting game loop")

	for g.running {
		now := time.Now()
		dt := float32(now.Sub(lastTime).Seconds())
		lastTime = now

		if g.input.Update() {
			g.running = false
			break
		}

		for _, event := range g.input.Events() {
			if event.Type == input.EventWindowResize {
				// Events carry window points; the back buffer is in pixels.
				w, h := g.window.DrawableSize()
				_ = g.Resize(w, h)
			}
		}
		for _, a := range g.input.Actions() {
			g.HandleAction(a)
		}
		if !g.running {
			break
		}

		g.Step(float32(now.Sub(start).Seconds()), dt, g.input.CameraInput())
		if fps, ok := g.counter.tick(time.Now()); ok {
			g.window.SetTitle(fmt.Sprintf("%s - %d FPS", Title, fps))
			if g.counter.dueMeshReport() {
				logMeshes(g.log, g.scene)
			}
		}

		if minFrame > 0 {
			if spent := time.Since(now); spent < minFrame {
				time.Sleep(minFrame - spent)
			}
		}
	}

	return nil
}

// Step advances the animation and the active camera, then renders a frame.
// Render errors are logged; the next frame tries again.
func (g *Game) Step(totalTime, deltaTime float32, in camera.Input) renderer.Stats {
	Animate(g.scene, totalTime, deltaTime)
	if cam := g.scene.Cameras().Active(); cam != nil {
		cam.Update(deltaTime, in)
	}

	stats, err := g.render.Render(g.scene.Frame(totalTime, deltaTime))
	if err != nil {
		g.log.Warn("frame rendered with errors", zap.Error(err))
	}
	g.counter.count(stats)
	return stats
}

// Resize resizes the renderer to a drawable of w by h pixels. Camera
// projections follow only when the resize succeeded and the surface is not
// empty; on failure the previous size stays in effect.
func (g *Game) Resize(w, h int) error {
	if err := g.render.Resize(w, h); err != nil {
		g.log.Warn("resize failed, keeping previous size",
			zap.Int("width", w), zap.Int("height", h), zap.Error(err))
		return err
	}
	if w > 0 && h > 0 {
		g.scene.Cameras().UpdateProjections(aspectOf(w, h))
	}
	g.log.Debug("resized", zap.Int("width", w), zap.Int("height", h))
	return nil
}

// HandleAction applies one key command.
func (g *Game) HandleAction(a input.Action) {
	opts := g.render.Options()
	switch a {
	case input.ActionNextCamera:
		g.scene.Cameras().Next()
	case input.ActionPrevCamera:
		g.scene.Cameras().Prev()
	case input.ActionTogglePost:
		g.render.SetPostProcess(!opts.PostProcess)
	case input.ActionToggleShadows:
		g.render.SetShadows(!opts.Shadows)
	case input.ActionToggleVSync:
		g.render.SetVSync(!opts.VSync)
	case input.ActionScreenshot:
		g.screenshot()
		return
	case input.ActionQuit:
		g.running = false
	default:
		return
	}
	opts = g.render.Options()
	g.log.Info("action",
		zap.Stringer("action", a),
		zap.Int("camera", g.scene.Cameras().ActiveIndex()),
		zap.Bool("post", opts.PostProcess),
		zap.Bool("shadows", opts.Shadows),
		zap.Bool("vsync", opts.VSync),
	)
}

// screenshot saves the last presented frame if the backend can read it.
func (g *Game) screenshot() {
	c, ok := g.dev.(gpu.Capturer)
	if !ok {
		g.log.Warn("backend cannot capture screenshots")
		return
	}
	path, err := g.shots.Capture(c)
	if err != nil {
		g.log.Warn("screenshot failed", zap.Error(err))
		return
	}
	g.log.Info("screenshot saved", zap.String("path", path))
}

// Close releases the renderer, the scene, the backend and the window.
func (g *Game) Close() error {
	g.log.Info("closing game")

	err := g.render.Release()
	err = multierr.Append(err, g.scene.Close(g.dev))
	if g.assets != nil {
		g.assets.Close()
	}
	if g.gl != nil {
		g.gl.Close()
	}
	if g.window != nil {
		g.window.Close()
	}
	return err
}
