package extract

import (
	"context"
	"os"
	"os/exec"
	"strings"
	"time"
)

// Extractor turns a file path into plain text. Extraction never fails:
// unsupported formats, unreadable files, and converter errors all yield the
// empty string, which downstream treats as "nothing to index".
type Extractor struct {
	// Converter is the notebook conversion command; stdout is captured as
	// the extracted text. Defaults to jupyter nbconvert.
	Converter []string
	// ConvertTimeout bounds the conversion subprocess. Zero means no bound.
	ConvertTimeout time.Duration
}

// NewExtractor returns an Extractor with the default notebook converter and
// the given subprocess timeout.
func NewExtractor(convertTimeout time.Duration) *Extractor {
	return &Extractor{
		Converter:      []string{"jupyter", "nbconvert", "--to", "markdown", "--stdout"},
		ConvertTimeout: convertTimeout,
	}
}

// Content extracts the plain text of the file at path according to its
// format.
func (e *Extractor) Content(ctx context.Context, path string) string {
	switch Classify(path) {
	case FormatNotebook:
		return e.convert(ctx, path)
	case FormatText, FormatTeX:
		return readLossy(path)
	default:
		return ""
	}
}

// convert renders a notebook to markdown via the external converter and
// captures its stdout. Any failure degrades to empty text.
func (e *Extractor) convert(ctx context.Context, path string) string {
	if len(e.Converter) == 0 {
		return ""
	}
	if e.ConvertTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.ConvertTimeout)
		defer cancel()
	}
	cmd := exec.CommandContext(ctx, e.Converter[0], append(e.Converter[1:], path)...)
	out, err := cmd.Output()
	if err != nil {
		return ""
	}
	return string(out)
}

// readLossy reads the file as UTF-8, dropping invalid byte sequences rather
// than failing.
func readLossy(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.ToValidUTF8(string(data), "")
}
