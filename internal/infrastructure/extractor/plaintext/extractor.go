package plaintext

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/kirillkom/scadenze/internal/core/domain"
)

var textExtensions = map[string]struct{}{
	".txt": {},
	".md":  {},
	".csv": {},
}

// Extractor accepts UTF-8 text uploads, typically OCR output saved by a scanner app.
type Extractor struct {
	maxBytes int64
}

func NewExtractor(maxBytes int64) *Extractor {
	return &Extractor{maxBytes: maxBytes}
}

func (e *Extractor) Supports(mimeType, filename string) bool {
	if mediaType, _, err := mime.ParseMediaType(mimeType); err == nil && strings.HasPrefix(mediaType, "text/") {
		return true
	}
	_, ok := textExtensions[strings.ToLower(filepath.Ext(filename))]
	return ok
}

func (e *Extractor) Extract(_ context.Context, filename string, body io.Reader) (string, error) {
	if e.maxBytes > 0 {
		body = io.LimitReader(body, e.maxBytes)
	}
	raw, err := io.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("read source document: %w", err)
	}

	if !utf8.Valid(raw) {
		return "", domain.WrapError(domain.ErrUnsupportedContent, "extract text", fmt.Errorf("%s is not valid UTF-8", filename))
	}
	return strings.TrimSpace(string(raw)), nil
}
