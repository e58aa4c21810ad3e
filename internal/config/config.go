// Package config loads the settings of the interactive paint application.
//
// Settings live in a YAML file. Every field is optional; missing fields
// keep the values from Default.
//
//	width: 1000
//	height: 500
//	layers: 5
//	brush_width: 50
//	wheel_size: 150
//	filter: nearest
//	log_level: warn
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/gogpu/paint/surface"
)

// ErrInvalid reports a setting outside its allowed range.
var ErrInvalid = errors.New("config: invalid")

// App holds the application settings.
type App struct {
	Width      int     `yaml:"width"`
	Height     int     `yaml:"height"`
	Layers     int     `yaml:"layers"`
	BrushWidth float64 `yaml:"brush_width"`
	WheelSize  int     `yaml:"wheel_size"`
	Filter     string  `yaml:"filter"`
	LogLevel   string  `yaml:"log_level"`
}

// Default returns the built-in settings.
func Default() App {
	return App{
		Width:      1000,
		Height:     500,
		Layers:     5,
		BrushWidth: 50,
		WheelSize:  150,
		Filter:     "nearest",
		LogLevel:   "warn",
	}
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (App, error) {
	app := Default()
	if err := yaml.Unmarshal(data, &app); err != nil {
		return App{}, fmt.Errorf("config: parse: %w", err)
	}
	if err := app.Validate(); err != nil {
		return App{}, err
	}
	return app, nil
}

// Load reads path and parses it. A missing file yields the defaults and
// an error matching os.ErrNotExist, so callers can choose to continue.
func Load(path string) (App, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Default(), fmt.Errorf("config: load: %w", err)
	}
	return Parse(data)
}

// Validate checks every setting.
func (a App) Validate() error {
	switch {
	case a.Width <= 0 || a.Height <= 0:
		return fmt.Errorf("%w: canvas size %dx%d", ErrInvalid, a.Width, a.Height)
	case a.Layers <= 0:
		return fmt.Errorf("%w: layers %d", ErrInvalid, a.Layers)
	case a.BrushWidth <= 0:
		return fmt.Errorf("%w: brush width %g", ErrInvalid, a.BrushWidth)
	case a.WheelSize <= 10:
		return fmt.Errorf("%w: wheel size %d", ErrInvalid, a.WheelSize)
	}
	if _, err := a.SurfaceFilter(); err != nil {
		return err
	}
	if _, err := a.Level(); err != nil {
		return err
	}
	return nil
}

// SurfaceFilter maps the filter name to a surface filter.
func (a App) SurfaceFilter() (surface.Filter, error) {
	switch strings.ToLower(a.Filter) {
	case "", "nearest":
		return surface.FilterNearest, nil
	case "bilinear":
		return surface.FilterBilinear, nil
	default:
		return surface.FilterNearest, fmt.Errorf("%w: filter %q", ErrInvalid, a.Filter)
	}
}

// Level maps the log level name to a slog level.
func (a App) Level() (slog.Level, error) {
	var l slog.Level
	if a.LogLevel == "" {
		return slog.LevelWarn, nil
	}
	if err := l.UnmarshalText([]byte(a.LogLevel)); err != nil {
		return slog.LevelWarn, fmt.Errorf("%w: log level %q", ErrInvalid, a.LogLevel)
	}
	return l, nil
}

// Save writes a as YAML to path.
func (a App) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("config: save: %w", err)
	}
	enc := yaml.NewEncoder(f)
	enc.SetIndent(2)
	if err := enc.Encode(a); err != nil {
		_ = f.Close()
		return fmt.Errorf("config: save: %w", err)
	}
	if err := enc.Close(); err != nil {
		_ = f.Close()
		return fmt.Errorf("config: save: %w", err)
	}
	return f.Close()
}
