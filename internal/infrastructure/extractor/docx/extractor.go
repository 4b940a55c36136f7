package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"

	"github.com/kirillkom/scadenze/internal/core/domain"
)

const mimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// Extractor pulls paragraph text out of word/document.xml.
type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

func (e *Extractor) Supports(mimeType, filename string) bool {
	if mediaType, _, err := mime.ParseMediaType(mimeType); err == nil && mediaType == mimeDOCX {
		return true
	}
	return strings.EqualFold(filepath.Ext(filename), ".docx")
}

func (e *Extractor) Extract(_ context.Context, filename string, body io.Reader) (string, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("read docx: %w", err)
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", domain.WrapError(domain.ErrUnsupportedContent, "open docx", fmt.Errorf("%s: %w", filename, err))
	}

	for _, f := range zr.File {
		if strings.ReplaceAll(f.Name, "\\", "/") != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", fmt.Errorf("open document.xml: %w", err)
		}
		defer rc.Close()
		return paragraphText(rc)
	}
	return "", domain.WrapError(domain.ErrUnsupportedContent, "open docx", errors.New("word/document.xml not found"))
}

func paragraphText(r io.Reader) (string, error) {
	decoder := xml.NewDecoder(r)
	var buf strings.Builder
	for {
		tok, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", domain.WrapError(domain.ErrUnsupportedContent, "parse document.xml", err)
		}
		switch t := tok.(type) {
		case xml.CharData:
			buf.Write(t)
		case xml.EndElement:
			if (t.Name.Local == "p" || t.Name.Local == "br") && buf.Len() > 0 {
				buf.WriteString("\n")
			}
		}
	}
	return strings.TrimSpace(buf.String()), nil
}
