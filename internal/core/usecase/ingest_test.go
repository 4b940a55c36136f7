package usecase

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/kirillkom/scadenze/internal/core/domain"
)

func TestIngestUploadSuccess(t *testing.T) {
	repo := &repoFake{}
	queue := &queueFake{}
	storage := &storageFake{}
	extractor := &extractorFake{suffix: ".txt"}
	uc := NewIngestDocumentUseCase(newTestVault(repo, queue), storage, extractor)

	doc, err := uc.Upload(context.Background(), "ricevuta 1.txt", "text/plain", bytes.NewBufferString("Questura di Roma"))
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if doc.OCRText != "Questura di Roma" {
		t.Fatalf("expected extracted text, got %q", doc.OCRText)
	}
	if doc.Type != "text/plain" {
		t.Fatalf("expected mime type as document type, got %q", doc.Type)
	}
	if !strings.HasPrefix(storage.savedKey, "uploads/") || !strings.HasSuffix(storage.savedKey, "_ricevuta_1.txt") {
		t.Fatalf("expected sanitized key, got %s", storage.savedKey)
	}
	if storage.savedBody != "Questura di Roma" {
		t.Fatalf("expected saved body, got %s", storage.savedBody)
	}
	if len(queue.published) != 1 || queue.published[0] != doc.ID {
		t.Fatalf("expected analysis enqueued, got %v", queue.published)
	}
}

func TestIngestUploadUnsupported(t *testing.T) {
	uc := NewIngestDocumentUseCase(newTestVault(&repoFake{}, nil), nil, &extractorFake{suffix: ".txt"})

	_, err := uc.Upload(context.Background(), "scan.jpg", "image/jpeg", bytes.NewBufferString("\xff\xd8"))
	if !errors.Is(err, domain.ErrUnsupportedContent) {
		t.Fatalf("expected ErrUnsupportedContent, got %v", err)
	}
}

func TestIngestUploadEmptyText(t *testing.T) {
	repo := &repoFake{}
	uc := NewIngestDocumentUseCase(newTestVault(repo, nil), nil, &extractorFake{suffix: ".txt"})

	_, err := uc.Upload(context.Background(), "empty.txt", "text/plain", bytes.NewBufferString("  \n "))
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if len(repo.docs) != 0 {
		t.Fatalf("expected nothing stored, got %d docs", len(repo.docs))
	}
}

func TestIngestUploadStorageError(t *testing.T) {
	uc := NewIngestDocumentUseCase(
		newTestVault(&repoFake{}, nil),
		&storageFake{err: errors.New("disk full")},
		&extractorFake{suffix: ".txt"},
	)

	_, err := uc.Upload(context.Background(), "a.txt", "text/plain", bytes.NewBufferString("x"))
	if err == nil || !strings.Contains(err.Error(), "save to object storage") {
		t.Fatalf("expected storage error, got %v", err)
	}
}

func TestSanitizeFilename(t *testing.T) {
	cases := map[string]string{
		"../../etc/passwd":   "passwd",
		"permesso è ok.pdf":  "permesso___ok.pdf",
		"":                   "document.bin",
		"Contratto-2025.txt": "Contratto-2025.txt",
	}
	for in, want := range cases {
		if got := sanitizeFilename(in); got != want {
			t.Fatalf("sanitizeFilename(%q) = %q, want %q", in, got, want)
		}
	}
}
