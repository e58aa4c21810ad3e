// Command paintdemo replays a drawing script onto a layer stack and saves
// the composite as a PNG.
package main

import (
	_ "embed"
	"flag"
	"fmt"
	"image"
	"image/png"
	"log"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gogpu/paint"
	"github.com/gogpu/paint/internal/script"
)

//go:embed demo.yml
var defaultScript []byte

func main() {
	var (
		scriptPath = flag.String("script", "", "drawing script (YAML); built-in demo when empty")
		output     = flag.String("output", "paint.png", "output file")
		previews   = flag.String("previews", "", "directory for per-layer preview PNGs")
		verbose    = flag.Bool("v", false, "log stack events")
	)
	flag.Parse()

	if *verbose {
		paint.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	s, err := loadScript(*scriptPath)
	if err != nil {
		log.Fatalf("Failed to load script: %v", err)
	}

	stack, err := s.NewStack()
	if err != nil {
		log.Fatalf("Failed to create layers: %v", err)
	}
	defer stack.Close()

	if err := s.Run(stack); err != nil {
		log.Fatalf("Failed to run script: %v", err)
	}

	if err := render(stack, s.Cell, *output); err != nil {
		log.Fatalf("Failed to save: %v", err)
	}
	log.Printf("Composite saved to %s (%dx%d, %d layers)\n", *output, s.Width, s.Height, stack.Len())

	if *previews != "" {
		if err := savePreviews(stack, *previews); err != nil {
			log.Fatalf("Failed to save previews: %v", err)
		}
		log.Printf("Previews saved to %s\n", *previews)
	}
}

func loadScript(path string) (*script.Script, error) {
	if path == "" {
		return script.Parse(defaultScript)
	}
	return script.Load(path)
}

func render(stack *paint.LayerStack, cell float64, path string) error {
	dst, err := paint.NewContext(stack.Width(), stack.Height())
	if err != nil {
		return err
	}
	defer dst.Close()

	if err := stack.Render(dst, cell); err != nil {
		return err
	}
	return savePNG(path, dst.Surface())
}

func savePreviews(stack *paint.LayerStack, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	p, err := paint.NewPreview(paint.PreviewWidth, paint.PreviewHeight)
	if err != nil {
		return err
	}
	defer p.Close()

	for l := range stack.Layers() {
		if err := p.Refresh(l); err != nil {
			return err
		}
		name := filepath.Join(dir, fmt.Sprintf("layer-%d.png", l.ID()))
		if err := savePNG(name, p.Surface()); err != nil {
			return err
		}
	}
	return nil
}

func savePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
