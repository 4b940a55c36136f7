package ports

import (
	"context"
	"io"
	"time"

	"github.com/kirillkom/scadenze/internal/core/domain"
)

// DocumentVault is the inbound contract of the document record store.
type DocumentVault interface {
	Create(ctx context.Context, input domain.DocumentInput) (*domain.Document, error)
	Get(ctx context.Context, id string) (*domain.Document, error)
	List(ctx context.Context) ([]domain.Document, error)
	Delete(ctx context.Context, id string) error
	Reanalyze(ctx context.Context, id string) error
}

// DocumentIngestor is the inbound contract for file uploads.
type DocumentIngestor interface {
	Upload(ctx context.Context, filename, mimeType string, body io.Reader) (*domain.Document, error)
}

// DocumentProcessor attaches external analysis to a stored document.
type DocumentProcessor interface {
	ProcessByID(ctx context.Context, documentID string) error
}

// InsightsService exposes the derived views over the vault.
type InsightsService interface {
	Now() time.Time
	Deadlines(ctx context.Context, asOf time.Time, windowDays int) ([]domain.Deadline, error)
	Categories(ctx context.Context) ([]domain.CategoryGroup, error)
	Answer(ctx context.Context, faqID string, asOf time.Time) (domain.FAQAnswer, error)
	FAQ(topic string) []domain.FAQItem
}
