// Package config handles demo configuration loading and management.
package config

// Config holds all demo settings.
type Config struct {
	Graphics GraphicsConfig `yaml:"graphics"`
	Render   RenderConfig   `yaml:"render"`
	Camera   CameraConfig   `yaml:"camera"`
	Assets   AssetsConfig   `yaml:"assets"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// GraphicsConfig holds display settings.
type GraphicsConfig struct {
	Width      int  `yaml:"width"`
	Height     int  `yaml:"height"`
	Fullscreen bool `yaml:"fullscreen"`
	VSync      bool `yaml:"vsync"`
	FPSLimit   int  `yaml:"fps_limit"`
}

// RenderConfig holds render pipeline settings.
type RenderConfig struct {
	ClearColor         [4]float32 `yaml:"clear_color"`
	ShadowsEnabled     bool       `yaml:"shadows_enabled"`
	ShadowResolution   int        `yaml:"shadow_resolution"`
	ShadowDistance     float32    `yaml:"shadow_distance"` // light eye distance from the origin
	ShadowExtent       float32    `yaml:"shadow_extent"`   // orthographic width/height
	ShadowFitBounds    bool       `yaml:"shadow_fit_bounds"`
	PostProcessEnabled bool       `yaml:"post_process_enabled"`
	BlurRadius         int        `yaml:"blur_radius"`
	PixelSize          int        `yaml:"pixel_size"`
}

// CameraConfig holds free-look camera settings.
type CameraConfig struct {
	FOVDegrees     float32 `yaml:"fov_degrees"`
	MoveSpeed      float32 `yaml:"move_speed"`
	LookSpeed      float32 `yaml:"look_speed"`
	FastMultiplier float32 `yaml:"fast_multiplier"`
	SlowMultiplier float32 `yaml:"slow_multiplier"`
}

// AssetsConfig holds texture, sky and screenshot locations.
type AssetsConfig struct {
	Root           string   `yaml:"root"`
	SkyDir         string   `yaml:"sky_dir"`  // relative to Root, holds right/left/up/down/front/back images
	Textures       []string `yaml:"textures"` // relative to Root, one per demo material
	ScreenshotsDir string   `yaml:"screenshots_dir"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Graphics: GraphicsConfig{
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			VSync:      true,
			FPSLimit:   0,
		},
		Render: RenderConfig{
			ClearColor:         [4]float32{0.4, 0.6, 0.75, 1},
			ShadowsEnabled:     true,
			ShadowResolution:   1024,
			ShadowDistance:     20,
			ShadowExtent:       20,
			ShadowFitBounds:    false,
			PostProcessEnabled: false,
			BlurRadius:         0,
			PixelSize:          1,
		},
		Camera: CameraConfig{
			FOVDegrees:     90,
			MoveSpeed:      5,
			LookSpeed:      0.125,
			FastMultiplier: 5,
			SlowMultiplier: 0.1,
		},
		Assets: AssetsConfig{
			Root:           "assets",
			SkyDir:         "sky",
			ScreenshotsDir: "screenshots",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
