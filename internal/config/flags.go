package config

import "flag"

// Overrides holds the command-line settings that take precedence over the
// config file. Zero values leave the file or default untouched.
type Overrides struct {
	ConfigPath string
	Debug      bool
	Windowed   bool
	Fullscreen bool
	Width      int
	Height     int
	NoVSync    bool
	NoShadows  bool
	NoPost     bool
}

// cli is bound to the process command line.
var cli = register(flag.CommandLine)

// register binds a fresh Overrides to fs.
func register(fs *flag.FlagSet) *Overrides {
	o := &Overrides{}
	fs.StringVar(&o.ConfigPath, "config", "", "Path to config file")
	fs.BoolVar(&o.Debug, "debug", false, "Enable debug logging")
	fs.BoolVar(&o.Windowed, "windowed", false, "Run in a window")
	fs.BoolVar(&o.Fullscreen, "fullscreen", false, "Run fullscreen")
	fs.IntVar(&o.Width, "width", 0, "Window width in pixels")
	fs.IntVar(&o.Height, "height", 0, "Window height in pixels")
	fs.BoolVar(&o.NoVSync, "novsync", false, "Disable vertical sync")
	fs.BoolVar(&o.NoShadows, "noshadows", false, "Disable the shadow pass")
	fs.BoolVar(&o.NoPost, "nopost", false, "Disable post-processing")
	return o
}

// ParseOverrides parses args into a new Overrides without touching the
// process flag set.
func ParseOverrides(args []string) (*Overrides, error) {
	fs := flag.NewFlagSet("skylight", flag.ContinueOnError)
	o := register(fs)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return o, nil
}

// ParseFlags parses the process command line. Call it early in main.
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the path given with -config, or "".
func ConfigPath() string {
	return cli.ConfigPath
}

// Apply writes the set overrides into cfg. -fullscreen wins over -windowed.
func (o *Overrides) Apply(cfg *Config) {
	if o.Debug {
		cfg.Logging.Level = "debug"
	}
	switch {
	case o.Fullscreen:
		cfg.Graphics.Fullscreen = true
	case o.Windowed:
		cfg.Graphics.Fullscreen = false
	}
	if o.Width > 0 {
		cfg.Graphics.Width = o.Width
	}
	if o.Height > 0 {
		cfg.Graphics.Height = o.Height
	}
	cfg.Graphics.VSync = cfg.Graphics.VSync && !o.NoVSync
	cfg.Render.ShadowsEnabled = cfg.Render.ShadowsEnabled && !o.NoShadows
	cfg.Render.PostProcessEnabled = cfg.Render.PostProcessEnabled && !o.NoPost
}

func applyFlags(cfg *Config) {
	cli.Apply(cfg)
}
