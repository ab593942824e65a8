package batch

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/MeKo-Tech/pogo-lens/internal/pipeline"
	"github.com/MeKo-Tech/pogo-lens/internal/recognizer"
	"github.com/MeKo-Tech/pogo-lens/internal/testutil"
	"github.com/MeKo-Tech/pogo-lens/internal/translate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestPipeline answers every image with the words of ti, upper-cased by the mock
// translator.
func newTestPipeline(t *testing.T, ti *testutil.TextImage) *pipeline.Pipeline {
	t.Helper()
	p, err := pipeline.NewBuilder().
		WithRecognizer(recognizer.NewMock(ti.Scaled(2))).
		WithCache(translate.NewCache(translate.NewMockTranslator(nil))).
		WithLanguage("eng", "en", "de", " ").
		WithSkipUnchanged(false, 0).
		Build()
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })
	return p
}

func writeSnippets(t *testing.T, dir string, names ...string) *testutil.TextImage {
	t.Helper()
	cfg := testutil.DefaultTextImageConfig()
	cfg.Lines = []string{"Hello World"}
	var ti *testutil.TextImage
	for _, name := range names {
		_, ti = testutil.WriteTextImage(t, dir, name, cfg)
	}
	return ti
}

func TestProcess_Directory(t *testing.T) {
	dir := t.TempDir()
	ti := writeSnippets(t, dir, "a.png", "b.png")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o600))
	overlays := filepath.Join(dir, "overlays")

	res, err := Process(context.Background(), newTestPipeline(t, ti), []string{dir}, Config{Scale: 2, OverlayDir: overlays})
	require.NoError(t, err)
	require.Len(t, res.Items, 2)
	assert.Equal(t, 0, res.Failed())
	assert.Equal(t, 2, res.Blocks())

	for i, name := range []string{"a.png", "b.png"} {
		it := res.Items[i]
		assert.Equal(t, filepath.Join(dir, name), it.Path)
		require.NoError(t, it.Err)
		require.Len(t, it.Result.Blocks, 1)
		assert.Equal(t, "HELLO WORLD", it.Result.Blocks[0].Translated)
		assert.True(t, testutil.FileExists(OverlayPath(overlays, it.Path)))
	}
}

func TestProcess_BrokenFileDoesNotStopBatch(t *testing.T) {
	dir := t.TempDir()
	ti := writeSnippets(t, dir, "good.png")
	broken := filepath.Join(dir, "broken.png")
	require.NoError(t, os.WriteFile(broken, []byte("not a png"), 0o600))

	res, err := Process(context.Background(), newTestPipeline(t, ti), []string{broken, filepath.Join(dir, "good.png")}, Config{Scale: 2})
	require.NoError(t, err)
	require.Len(t, res.Items, 2)
	assert.Equal(t, 1, res.Failed())
	require.Error(t, res.Items[0].Err)
	assert.Nil(t, res.Items[0].Result)
	require.NoError(t, res.Items[1].Err)
}

func TestProcess_Errors(t *testing.T) {
	dir := t.TempDir()
	ti := writeSnippets(t, dir, "a.png")
	p := newTestPipeline(t, ti)

	_, err := Process(context.Background(), nil, []string{dir}, Config{Scale: 2})
	require.Error(t, err)

	_, err = Process(context.Background(), p, []string{filepath.Join(dir, "missing")}, Config{Scale: 2})
	require.Error(t, err)

	empty := t.TempDir()
	_, err = Process(context.Background(), p, []string{empty}, Config{Scale: 2})
	require.ErrorContains(t, err, "no image files found")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Process(ctx, p, []string{dir}, Config{Scale: 2})
	require.ErrorIs(t, err, context.Canceled)
}

func TestResult_Format(t *testing.T) {
	dir := t.TempDir()
	ti := writeSnippets(t, dir, "a.png")
	broken := filepath.Join(dir, "z.png")
	require.NoError(t, os.WriteFile(broken, []byte("nope"), 0o600))

	res, err := Process(context.Background(), newTestPipeline(t, ti), []string{dir}, Config{Scale: 2})
	require.NoError(t, err)
	require.Len(t, res.Items, 2)

	text, err := res.Format(FormatText)
	require.NoError(t, err)
	assert.Contains(t, text, "# "+filepath.Join(dir, "a.png")+"\nHello World => HELLO WORLD\n")
	assert.Contains(t, text, "# "+broken+"\nerror: ")

	js, err := res.Format(FormatJSON)
	require.NoError(t, err)
	var doc struct {
		Files []struct {
			File   string                `json:"file"`
			Error  string                `json:"error"`
			Result *pipeline.CycleResult `json:"result"`
		} `json:"files"`
		Failed int `json:"failed"`
	}
	require.NoError(t, json.Unmarshal([]byte(js), &doc))
	require.Len(t, doc.Files, 2)
	assert.Equal(t, 1, doc.Failed)
	require.NotNil(t, doc.Files[0].Result)
	assert.Equal(t, "HELLO WORLD", doc.Files[0].Result.Blocks[0].Translated)
	assert.Nil(t, doc.Files[1].Result)
	assert.NotEmpty(t, doc.Files[1].Error)

	out, err := res.Format(FormatCSV)
	require.NoError(t, err)
	rows, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"file", "x", "y", "w", "h", "original", "translated", "error"}, rows[0])
	assert.Equal(t, []string{filepath.Join(dir, "a.png"), "20", "20", "154", "26", "Hello World", "HELLO WORLD", ""}, rows[1])
	assert.Equal(t, broken, rows[2][0])
	assert.NotEmpty(t, rows[2][7])

	_, err = res.Format("xml")
	require.Error(t, err)
}
