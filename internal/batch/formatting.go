package batch

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/MeKo-Tech/pogo-lens/internal/pipeline"
)

// Output formats understood by Format.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatCSV  = "csv"
)

type fileResult struct {
	File   string                `json:"file"`
	Error  string                `json:"error,omitempty"`
	Result *pipeline.CycleResult `json:"result,omitempty"`
}

// Format renders the batch in the given format.
func (r *Result) Format(format string) (string, error) {
	switch format {
	case FormatJSON:
		return r.formatJSON()
	case FormatCSV:
		return r.formatCSV()
	case FormatText, "":
		return r.formatText()
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}

func (r *Result) formatJSON() (string, error) {
	out := struct {
		Files      []fileResult `json:"files"`
		Failed     int          `json:"failed"`
		DurationMs int64        `json:"duration_ms"`
	}{
		Files:      make([]fileResult, 0, len(r.Items)),
		Failed:     r.Failed(),
		DurationMs: r.Duration.Milliseconds(),
	}
	for _, it := range r.Items {
		fr := fileResult{File: it.Path, Result: it.Result}
		if it.Err != nil {
			fr.Error = it.Err.Error()
		}
		out.Files = append(out.Files, fr)
	}
	b, err := json.MarshalIndent(out, "", "  ")
	return string(b), err
}

// formatCSV writes one row per block. Files without blocks get a row with only the
// file name, failed files carry the error in the last column.
func (r *Result) formatCSV() (string, error) {
	var sb strings.Builder
	w := csv.NewWriter(&sb)
	if err := w.Write([]string{"file", "x", "y", "w", "h", "original", "translated", "error"}); err != nil {
		return "", err
	}
	for _, it := range r.Items {
		switch {
		case it.Err != nil:
			_ = w.Write([]string{it.Path, "", "", "", "", "", "", it.Err.Error()})
		case len(it.Result.Blocks) == 0:
			_ = w.Write([]string{it.Path, "", "", "", "", "", "", ""})
		default:
			for _, b := range it.Result.Blocks {
				_ = w.Write([]string{
					it.Path,
					strconv.Itoa(b.Box.X),
					strconv.Itoa(b.Box.Y),
					strconv.Itoa(b.Box.W),
					strconv.Itoa(b.Box.H),
					b.Original,
					b.Translated,
					"",
				})
			}
		}
	}
	w.Flush()
	return sb.String(), w.Error()
}

func (r *Result) formatText() (string, error) {
	var sb strings.Builder
	for i, it := range r.Items {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "# %s\n", it.Path)
		if it.Err != nil {
			fmt.Fprintf(&sb, "error: %v\n", it.Err)
			continue
		}
		text, err := pipeline.ToPlainText(it.Result)
		if err != nil {
			return "", err
		}
		if text != "" {
			sb.WriteString(text)
			sb.WriteString("\n")
		}
	}
	return sb.String(), nil
}
