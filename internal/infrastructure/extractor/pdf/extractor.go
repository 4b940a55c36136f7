package pdf

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/kirillkom/scadenze/internal/core/domain"
)

const mimePDF = "application/pdf"

// Extractor reads the embedded text layer of a PDF. Scanned PDFs without one yield
// an empty string and must go through OCR instead.
type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

func (e *Extractor) Supports(mimeType, filename string) bool {
	if mediaType, _, err := mime.ParseMediaType(mimeType); err == nil && mediaType == mimePDF {
		return true
	}
	return strings.EqualFold(filepath.Ext(filename), ".pdf")
}

func (e *Extractor) Extract(ctx context.Context, filename string, body io.Reader) (string, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("read pdf: %w", err)
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", domain.WrapError(domain.ErrUnsupportedContent, "open pdf", fmt.Errorf("%s: %w", filename, err))
	}

	var text strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			slog.Warn("pdf_page_skipped", "filename", filename, "page", i, "error", err)
			continue
		}
		text.WriteString(content)
		text.WriteString("\n")
	}
	return strings.TrimSpace(text.String()), nil
}
