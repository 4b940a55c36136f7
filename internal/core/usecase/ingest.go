package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/kirillkom/scadenze/internal/core/domain"
	"github.com/kirillkom/scadenze/internal/core/ports"
)

// IngestDocumentUseCase turns an uploaded file into a vault record. Only formats with
// an embedded text layer are handled here; images go through external OCR first.
type IngestDocumentUseCase struct {
	vault      ports.DocumentVault
	storage    ports.ObjectStorage
	extractors []ports.TextExtractor
}

func NewIngestDocumentUseCase(
	vault ports.DocumentVault,
	storage ports.ObjectStorage,
	extractors ...ports.TextExtractor,
) *IngestDocumentUseCase {
	return &IngestDocumentUseCase{
		vault:      vault,
		storage:    storage,
		extractors: extractors,
	}
}

func (uc *IngestDocumentUseCase) Upload(
	ctx context.Context,
	filename, mimeType string,
	body io.Reader,
) (*domain.Document, error) {
	extractor := uc.extractorFor(mimeType, filename)
	if extractor == nil {
		return nil, domain.WrapError(
			domain.ErrUnsupportedContent,
			"upload document",
			fmt.Errorf("%s (%s): submit OCR text instead", filename, mimeType),
		)
	}

	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}

	if uc.storage != nil {
		storageKey := fmt.Sprintf("uploads/%s_%s", uuid.NewString(), sanitizeFilename(filename))
		if err := uc.storage.Save(ctx, storageKey, bytes.NewReader(raw)); err != nil {
			return nil, fmt.Errorf("save to object storage: %w", err)
		}
	}

	text, err := extractor.Extract(ctx, filename, bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("extract text: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "extract text", errors.New("empty extracted text"))
	}

	docType := strings.TrimSpace(mimeType)
	if docType == "" {
		docType = "Document"
	}
	return uc.vault.Create(ctx, domain.DocumentInput{
		Name:    filename,
		Type:    docType,
		OCRText: text,
	})
}

func (uc *IngestDocumentUseCase) extractorFor(mimeType, filename string) ports.TextExtractor {
	for _, extractor := range uc.extractors {
		if extractor.Supports(mimeType, filename) {
			return extractor
		}
	}
	return nil
}

func sanitizeFilename(name string) string {
	base := filepath.Base(name)
	base = strings.ReplaceAll(base, " ", "_")
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "" || base == "." {
		return "document.bin"
	}
	return base
}
