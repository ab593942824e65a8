package support

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"

	"github.com/MeKo-Tech/pogo-lens/internal/testutil"
	"github.com/MeKo-Tech/pogo-lens/internal/utils"
	"github.com/cucumber/godog"
)

// snippetScale matches the default capture upscale, so token boxes line up with
// what the pipeline expects from the recognizer.
const snippetScale = 2

// aScreenSnippetWithTheLines renders the lines into a PNG and writes the tokens a
// recognizer would report for it.
func (testCtx *TestContext) aScreenSnippetWithTheLines(table *godog.Table) error {
	cfg := testutil.DefaultTextImageConfig()
	cfg.Lines = cfg.Lines[:0]
	for _, row := range table.Rows {
		if len(row.Cells) > 0 {
			cfg.Lines = append(cfg.Lines, row.Cells[0].Value)
		}
	}

	ti, err := testutil.GenerateTextImage(cfg)
	if err != nil {
		return err
	}
	testCtx.ImagePath = testCtx.TempPath("snippet.png")
	if err := utils.SaveImage(ti.Image, testCtx.ImagePath); err != nil {
		return err
	}

	data, err := json.Marshal(ti.Scaled(snippetScale))
	if err != nil {
		return err
	}
	testCtx.TokensPath = testCtx.TempPath("tokens.json")
	return os.WriteFile(testCtx.TokensPath, data, 0o600)
}

// aLensConfigUsingMockEngines writes a config that recognizes with the snippet tokens
// and translates by upper-casing.
func (testCtx *TestContext) aLensConfigUsingMockEngines(pair string) error {
	return testCtx.writeConfig(pair, "translation:\n  engine: mock\n")
}

// aLensConfigUsingTheStub writes a config that translates through the LibreTranslate stub.
func (testCtx *TestContext) aLensConfigUsingTheStub(pair string) error {
	if testCtx.Libre == nil {
		return fmt.Errorf("no LibreTranslate stub is running")
	}
	return testCtx.writeConfig(pair, fmt.Sprintf("translation:\n  engine: libre\n  url: %s\n", testCtx.Libre.URL))
}

func (testCtx *TestContext) writeConfig(pair, translation string) error {
	if testCtx.TokensPath == "" {
		return fmt.Errorf("a screen snippet must be created first")
	}
	var b strings.Builder
	fmt.Fprintf(&b, "recognizer:\n  engine: mock\n  mock_tokens: %s\n", testCtx.TokensPath)
	b.WriteString(translation)
	fmt.Fprintf(&b, "language:\n  pair: %s\n", pair)
	b.WriteString("log_level: warn\n")

	testCtx.ConfigPath = testCtx.TempPath("lens.yaml")
	return os.WriteFile(testCtx.ConfigPath, []byte(b.String()), 0o600)
}

// aLibreTranslateStubTranslating starts a fake LibreTranslate answering from the
// table; unknown sentences come back unchanged.
func (testCtx *TestContext) aLibreTranslateStubTranslating(table *godog.Table) error {
	answers := make(map[string]string)
	for i, row := range table.Rows {
		if i == 0 || len(row.Cells) < 2 {
			continue
		}
		answers[row.Cells[0].Value] = row.Cells[1].Value
	}

	var mu sync.Mutex
	testCtx.Libre = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/translate" || r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		var req struct {
			Q string `json:"q"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error":"bad request"}`, http.StatusBadRequest)
			return
		}
		mu.Lock()
		testCtx.LibreCalls++
		mu.Unlock()

		out, ok := answers[req.Q]
		if !ok {
			out = req.Q
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"translatedText": out})
	}))
	return nil
}

// theLibreTranslateStubIsDown points {libre_url} at an address nobody listens on.
func (testCtx *TestContext) theLibreTranslateStubIsDown() error {
	if testCtx.Libre == nil {
		testCtx.Libre = httptest.NewServer(http.NotFoundHandler())
	}
	testCtx.Libre.Close()
	return nil
}

func (testCtx *TestContext) theStubShouldHaveBeenCalled(n int) error {
	if testCtx.LibreCalls != n {
		return fmt.Errorf("LibreTranslate stub called %d times, want %d", testCtx.LibreCalls, n)
	}
	return nil
}

// RegisterFixtureSteps registers snippet, config and translation backend steps.
func (testCtx *TestContext) RegisterFixtureSteps(sc *godog.ScenarioContext) {
	sc.Step(`^a screen snippet with the lines:$`, testCtx.aScreenSnippetWithTheLines)
	sc.Step(`^a lens config using the mock engines for "([^"]*)"$`, testCtx.aLensConfigUsingMockEngines)
	sc.Step(`^a lens config using the LibreTranslate stub for "([^"]*)"$`, testCtx.aLensConfigUsingTheStub)
	sc.Step(`^a LibreTranslate stub translating:$`, testCtx.aLibreTranslateStubTranslating)
	sc.Step(`^the LibreTranslate stub is down$`, testCtx.theLibreTranslateStubIsDown)
	sc.Step(`^the LibreTranslate stub should have been called (\d+) times?$`, testCtx.theStubShouldHaveBeenCalled)
}
