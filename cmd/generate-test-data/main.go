package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/MeKo-Tech/pogo-lens/internal/testutil"
	"github.com/MeKo-Tech/pogo-lens/internal/utils"
	"gopkg.in/yaml.v3"
)

// snippet is one synthetic screen capture plus the tokens a recognizer would report.
type snippet struct {
	Name  string
	Lines []string
	Size  testutil.ImageSize
}

var snippets = []snippet{
	{Name: "hello", Lines: []string{"Hello World"}, Size: testutil.SmallSize},
	{Name: "menu", Lines: []string{"File  Edit  View", "Open recent", "Quit"}, Size: testutil.MediumSize},
	{Name: "dialog", Lines: []string{"Save changes?", "Yes   No   Cancel"}, Size: testutil.MediumSize},
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	var (
		outDir  = flag.String("out", "testdata/lens", "Output directory, relative to the project root")
		scale   = flag.Float64("scale", 2, "Capture upscale the token boxes are reported at")
		pair    = flag.String("pair", "en-de", "Language pair written into the mock config")
		verbose = flag.Bool("v", false, "Verbose output")
		help    = flag.Bool("h", false, "Show help")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Generate screen snippets and mock recognizer tokens for pogo-lens.\n\n")
		fmt.Fprintf(os.Stderr, "OPTIONS:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEXAMPLES:\n")
		fmt.Fprintf(os.Stderr, "  %s                      # Generate all snippets\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  lens --config testdata/lens/menu.yaml run --source testdata/lens/menu.png\n")
	}

	flag.Parse()

	if *help {
		flag.Usage()
		return
	}

	root, err := testutil.GetProjectRoot()
	if err != nil {
		slog.Error("Failed to find project root", "error", err)
		os.Exit(1)
	}
	dir := *outDir
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(root, dir)
	}
	if err := testutil.EnsureDir(dir); err != nil {
		slog.Error("Failed to create output directory", "path", dir, "error", err)
		os.Exit(1)
	}

	for _, s := range snippets {
		if err := writeSnippet(dir, s, *scale, *pair); err != nil {
			slog.Error("Failed to generate snippet", "name", s.Name, "error", err)
			os.Exit(1)
		}
		if *verbose {
			slog.Info("Generated snippet", "name", s.Name, "lines", len(s.Lines))
		}
	}

	slog.Info("Test data generation completed successfully!", "dir", dir, "snippets", len(snippets))
}

// writeSnippet writes <name>.png, <name>.tokens.json and a <name>.yaml config that
// runs the lens on the pair with the mock engines.
func writeSnippet(dir string, s snippet, scale float64, pair string) error {
	cfg := testutil.DefaultTextImageConfig()
	cfg.Lines = s.Lines
	cfg.Size = s.Size

	ti, err := testutil.GenerateTextImage(cfg)
	if err != nil {
		return err
	}
	if err := utils.SaveImage(ti.Image, filepath.Join(dir, s.Name+".png")); err != nil {
		return err
	}

	tokensPath := filepath.Join(dir, s.Name+".tokens.json")
	data, err := json.MarshalIndent(ti.Scaled(scale), "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(tokensPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write tokens: %w", err)
	}

	conf := map[string]any{
		"recognizer":  map[string]any{"engine": "mock", "mock_tokens": tokensPath},
		"translation": map[string]any{"engine": "mock"},
		"language":    map[string]any{"pair": pair},
		"capture":     map[string]any{"scale": scale},
	}
	out, err := yaml.Marshal(conf)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, s.Name+".yaml"), out, 0o600)
}
