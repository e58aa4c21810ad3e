// Command paint is an interactive layered paint program.
//
// Left mouse paints on the selected layer with the main color. Clicking
// the color wheel picks the main color and clicking a thumbnail selects
// its layer. Ctrl+wheel zooms, [ and ] change the brush width, X swaps
// the palette, D resets it, N adds a layer and Delete clears the
// selected one.
package main

import (
	"errors"
	"flag"
	"log"
	"log/slog"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/sqweek/dialog"

	"github.com/gogpu/paint"
	"github.com/gogpu/paint/internal/config"
)

func main() {
	var (
		configPath = flag.String("config", "paint.yml", "settings file (YAML)")
		width      = flag.Int("width", 0, "canvas width, overrides the settings file")
		height     = flag.Int("height", 0, "canvas height, overrides the settings file")
		layers     = flag.Int("layers", 0, "initial layer count, overrides the settings file")
		logLevel   = flag.String("log", "", "log level (debug, info, warn, error), overrides the settings file")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		fatal(err)
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "width":
			cfg.Width = *width
		case "height":
			cfg.Height = *height
		case "layers":
			cfg.Layers = *layers
		case "log":
			cfg.LogLevel = *logLevel
		}
	})
	if err := cfg.Validate(); err != nil {
		fatal(err)
	}

	level, _ := cfg.Level()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	paint.SetLogger(logger)

	g, err := NewGame(cfg)
	if err != nil {
		fatal(err)
	}
	defer g.Close()

	w, h := g.Layout(0, 0)
	ebiten.SetWindowSize(w, h)
	ebiten.SetWindowTitle("paint")
	ebiten.SetWindowResizable(true)

	if err := ebiten.RunGame(g); err != nil {
		log.Fatal(err)
	}
}

// fatal reports an initialization error in a dialog and exits.
func fatal(err error) {
	log.Print(err)
	dialog.Message("%v", err).Title("paint").Error()
	os.Exit(1)
}
