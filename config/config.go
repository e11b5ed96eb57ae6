// Package config loads the garden program settings from TOML or YAML files.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/phanxgames/garden"
)

// Format is a config file encoding.
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// FormatOf picks the encoding from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("config: unsupported file extension %q", filepath.Ext(path))
	}
}

// HexColor is a 0xRRGGBB color written as a string ("0x000011" or "#000011").
type HexColor uint32

// Color converts h to an opaque garden.Color.
func (h HexColor) Color() garden.Color {
	return garden.ColorFromHex(uint32(h))
}

// MarshalText implements encoding.TextMarshaler.
func (h HexColor) MarshalText() ([]byte, error) {
	return []byte(fmt.Sprintf("0x%06X", uint32(h))), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (h *HexColor) UnmarshalText(text []byte) error {
	s := strings.TrimSpace(string(text))
	if rest, ok := strings.CutPrefix(s, "#"); ok {
		s = "0x" + rest
	}
	v, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return fmt.Errorf("config: bad color %q: %w", string(text), err)
	}
	if v > 0xFFFFFF {
		return fmt.Errorf("config: color %q out of range", string(text))
	}
	*h = HexColor(v)
	return nil
}

// UnmarshalYAML accepts both quoted and bare colors.
func (h *HexColor) UnmarshalYAML(node *yaml.Node) error {
	return h.UnmarshalText([]byte(node.Value))
}

// MarshalYAML writes the color in hex.
func (h HexColor) MarshalYAML() (any, error) {
	b, _ := h.MarshalText()
	return string(b), nil
}

// Vec is an [x, y, z] triple.
type Vec [3]float32

// Vec3 converts v.
func (v Vec) Vec3() garden.Vec3 {
	return garden.Vec3{X: v[0], Y: v[1], Z: v[2]}
}

// Window holds window settings.
type Window struct {
	Title        string `toml:"title" yaml:"title"`
	Width        int    `toml:"width" yaml:"width"`
	Height       int    `toml:"height" yaml:"height"`
	Resizable    bool   `toml:"resizable" yaml:"resizable"`
	ShowFPS      bool   `toml:"show_fps" yaml:"show_fps"`
	DisableVsync bool   `toml:"disable_vsync" yaml:"disable_vsync"`
}

// Camera holds the perspective camera settings.
type Camera struct {
	FOV      float32 `toml:"fov" yaml:"fov"`
	Near     float32 `toml:"near" yaml:"near"`
	Far      float32 `toml:"far" yaml:"far"`
	Position Vec     `toml:"position" yaml:"position"`
}

// Controls holds the orbit controller settings. Angles are in degrees.
type Controls struct {
	Damping         bool    `toml:"damping" yaml:"damping"`
	DampingFactor   float32 `toml:"damping_factor" yaml:"damping_factor"`
	MinDistance     float32 `toml:"min_distance" yaml:"min_distance"`
	MaxDistance     float32 `toml:"max_distance" yaml:"max_distance"`
	MaxPolarAngle   float32 `toml:"max_polar_angle" yaml:"max_polar_angle"`
	Target          Vec     `toml:"target" yaml:"target"`
	AutoRotate      bool    `toml:"auto_rotate" yaml:"auto_rotate"`
	AutoRotateSpeed float32 `toml:"auto_rotate_speed" yaml:"auto_rotate_speed"`
}

// Bloom holds the glow and tone settings. Disabled bloom keeps its stage in
// the pipeline with zero strength so a reload can turn it back on.
type Bloom struct {
	Enabled   bool    `toml:"enabled" yaml:"enabled"`
	Strength  float64 `toml:"strength" yaml:"strength"`
	Radius    float64 `toml:"radius" yaml:"radius"`
	Threshold float64 `toml:"threshold" yaml:"threshold"`

	Exposure   float64 `toml:"exposure" yaml:"exposure"`
	Brightness float64 `toml:"brightness" yaml:"brightness"`
	Saturation float64 `toml:"saturation" yaml:"saturation"`
}

// Post holds the optional custom post-process shader.
type Post struct {
	// Shader is a Kage source file run after the tone stage. It receives
	// the elapsed time in seconds as the Time uniform. Empty disables it.
	Shader string `toml:"shader" yaml:"shader"`
}

// Scene holds the scene composition settings.
type Scene struct {
	ClearColor HexColor `toml:"clear_color" yaml:"clear_color"`
	Ambient    HexColor `toml:"ambient" yaml:"ambient"`
	Points     int      `toml:"points" yaml:"points"`
	CubeSize   float32  `toml:"cube_size" yaml:"cube_size"`
	PointSize  float32  `toml:"point_size" yaml:"point_size"`
	PointColor HexColor `toml:"point_color" yaml:"point_color"`
	Seed       uint64   `toml:"seed" yaml:"seed"`
	// Spin is the cloud's rotation about Y in radians per second.
	Spin          float32  `toml:"spin" yaml:"spin"`
	Grid          bool     `toml:"grid" yaml:"grid"`
	GridSize      float32  `toml:"grid_size" yaml:"grid_size"`
	GridDivisions int      `toml:"grid_divisions" yaml:"grid_divisions"`
	GridColor     HexColor `toml:"grid_color" yaml:"grid_color"`
}

// Config is the whole settings file.
type Config struct {
	Window   Window   `toml:"window" yaml:"window"`
	Camera   Camera   `toml:"camera" yaml:"camera"`
	Controls Controls `toml:"controls" yaml:"controls"`
	Bloom    Bloom    `toml:"bloom" yaml:"bloom"`
	Post     Post     `toml:"post" yaml:"post"`
	Scene    Scene    `toml:"scene" yaml:"scene"`
	Debug    bool     `toml:"debug" yaml:"debug"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Window: Window{
			Title:     "garden",
			Width:     800,
			Height:    600,
			Resizable: true,
			ShowFPS:   true,
		},
		Camera: Camera{
			FOV:      60,
			Near:     1,
			Far:      100000,
			Position: Vec{0, 20, 40},
		},
		Controls: Controls{
			Damping:         true,
			DampingFactor:   0.25,
			MinDistance:     100,
			MaxDistance:     5000,
			MaxPolarAngle:   90,
			Target:          Vec{0, 5, 0},
			AutoRotateSpeed: 2,
		},
		Bloom: Bloom{
			Enabled:    true,
			Strength:   1,
			Radius:     0,
			Threshold:  0,
			Exposure:   1,
			Brightness: 0,
			Saturation: 1,
		},
		Scene: Scene{
			ClearColor:    0x000011,
			Ambient:       0xCCCCCC,
			Points:        100000,
			CubeSize:      1000,
			PointSize:     1,
			PointColor:    0xAAAAAA,
			Seed:          1,
			GridSize:      1000,
			GridDivisions: 20,
			GridColor:     0x222244,
		},
	}
}

// Load reads path over the defaults. The encoding follows the extension.
func Load(path string) (*Config, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	cfg, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes data over the defaults and validates the result. Unknown
// keys are rejected.
func Parse(data []byte, format Format) (*Config, error) {
	cfg := Default()
	switch format {
	case FormatTOML:
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(cfg); err != nil {
			return nil, err
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		// An empty document leaves the defaults.
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Encode writes cfg in the given format.
func Encode(cfg *Config, format Format) ([]byte, error) {
	switch format {
	case FormatTOML:
		return toml.Marshal(cfg)
	case FormatYAML:
		return yaml.Marshal(cfg)
	default:
		return nil, fmt.Errorf("config: unknown format %q", format)
	}
}

// Validate reports every invalid setting.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}
	check(c.Window.Width > 0 && c.Window.Height > 0, "window size must be positive, got %dx%d", c.Window.Width, c.Window.Height)
	check(c.Camera.FOV > 0 && c.Camera.FOV < 180, "camera.fov must be in (0, 180), got %v", c.Camera.FOV)
	check(c.Camera.Near > 0, "camera.near must be positive, got %v", c.Camera.Near)
	check(c.Camera.Far > c.Camera.Near, "camera.far (%v) must exceed camera.near (%v)", c.Camera.Far, c.Camera.Near)
	check(c.Controls.DampingFactor > 0 && c.Controls.DampingFactor <= 1, "controls.damping_factor must be in (0, 1], got %v", c.Controls.DampingFactor)
	check(c.Controls.MinDistance >= 0 && c.Controls.MinDistance <= c.Controls.MaxDistance, "controls distance range [%v, %v] is invalid", c.Controls.MinDistance, c.Controls.MaxDistance)
	check(c.Controls.MaxPolarAngle > 0 && c.Controls.MaxPolarAngle <= 180, "controls.max_polar_angle must be in (0, 180], got %v", c.Controls.MaxPolarAngle)
	check(c.Bloom.Exposure > 0, "bloom.exposure must be positive, got %v", c.Bloom.Exposure)
	check(c.Bloom.Brightness >= -1 && c.Bloom.Brightness <= 1, "bloom.brightness must be in [-1, 1], got %v", c.Bloom.Brightness)
	check(c.Bloom.Saturation >= 0, "bloom.saturation must not be negative, got %v", c.Bloom.Saturation)
	check(c.Bloom.Strength >= 0, "bloom.strength must not be negative, got %v", c.Bloom.Strength)
	check(c.Bloom.Radius >= 0 && c.Bloom.Radius <= 1, "bloom.radius must be in [0, 1], got %v", c.Bloom.Radius)
	check(c.Bloom.Threshold >= 0 && c.Bloom.Threshold <= 1, "bloom.threshold must be in [0, 1], got %v", c.Bloom.Threshold)
	check(c.Scene.Points >= 0, "scene.points must not be negative, got %d", c.Scene.Points)
	check(c.Scene.PointSize > 0, "scene.point_size must be positive, got %v", c.Scene.PointSize)
	check(c.Scene.GridDivisions >= 1 && c.Scene.GridDivisions <= garden.MaxGridDivisions,
		"scene.grid_divisions must be in [1, %d], got %d", garden.MaxGridDivisions, c.Scene.GridDivisions)
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("config: invalid settings: %w", errors.Join(errs...))
}

// RunConfig returns the window settings for garden.Run.
func (c *Config) RunConfig() garden.RunConfig {
	return garden.RunConfig{
		Title:        c.Window.Title,
		Width:        c.Window.Width,
		Height:       c.Window.Height,
		ShowFPS:      c.Window.ShowFPS,
		Resizable:    c.Window.Resizable,
		DisableVsync: c.Window.DisableVsync,
	}
}

// NewCamera builds the camera. The aspect is fixed up by the first resize.
func (c *Config) NewCamera() *garden.Camera {
	aspect := float32(c.Window.Width) / float32(c.Window.Height)
	cam := garden.NewCamera(c.Camera.FOV, aspect, c.Camera.Near, c.Camera.Far)
	cam.Position = c.Camera.Position.Vec3()
	return cam
}

// ApplyControls copies the controller settings onto o.
func (c *Config) ApplyControls(o *garden.OrbitControls) {
	o.EnableDamping = c.Controls.Damping
	o.DampingFactor = c.Controls.DampingFactor
	o.MinDistance = c.Controls.MinDistance
	o.MaxDistance = c.Controls.MaxDistance
	o.MaxPolarAngle = c.Controls.MaxPolarAngle * math.Pi / 180
	o.Target = c.Controls.Target.Vec3()
	o.AutoRotate = c.Controls.AutoRotate
	o.AutoRotateSpeed = c.Controls.AutoRotateSpeed
}

// ApplyBloom copies the bloom settings onto b and the tone settings onto
// tone. Either may be nil. Disabled bloom gets zero strength, which makes
// the stage a plain copy.
func (c *Config) ApplyBloom(b *garden.BloomPass, tone *garden.ColorMatrixFilter) {
	if b != nil {
		b.Strength = c.Bloom.Strength
		if !c.Bloom.Enabled {
			b.Strength = 0
		}
		b.Radius = c.Bloom.Radius
		b.Threshold = c.Bloom.Threshold
	}
	if tone != nil {
		tone.SetTone(c.Bloom.Exposure, c.Bloom.Brightness, c.Bloom.Saturation)
	}
}

// LoadShader compiles the configured post shader. It returns nil and no
// error when none is set. A relative path is resolved against dir.
func (c *Config) LoadShader(dir string) (*garden.CustomShaderFilter, error) {
	if c.Post.Shader == "" {
		return nil, nil
	}
	path := c.Post.Shader
	if !filepath.IsAbs(path) && dir != "" {
		path = filepath.Join(dir, path)
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: post shader: %w", err)
	}
	f, err := garden.CompileShaderFilter(src)
	if err != nil {
		return nil, fmt.Errorf("config: post shader %s: %w", path, err)
	}
	return f, nil
}
