package ports

import (
	"context"
	"io"

	"github.com/kirillkom/scadenze/internal/core/domain"
)

// DocumentRepository persists vault documents. List is newest-first; Delete of a missing id is a no-op.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	List(ctx context.Context) ([]domain.Document, error)
	Update(ctx context.Context, doc *domain.Document) error
	Delete(ctx context.Context, id string) error
}

// KeyValueStore is the durable medium behind the snapshot repository.
type KeyValueStore interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte) error
}

// ObjectStorage stores source uploads and blobs.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// MessageQueue publishes/consumes "document saved" events that trigger analysis.
type MessageQueue interface {
	PublishDocumentSaved(ctx context.Context, documentID string) error
	SubscribeDocumentSaved(ctx context.Context, handler func(context.Context, string) error) error
}

// TextExtractor turns an upload into raw text.
type TextExtractor interface {
	Supports(mimeType, filename string) bool
	Extract(ctx context.Context, filename string, body io.Reader) (string, error)
}

// DocumentAnalyzer is the external AI gateway producing analysis, timelines and street tips.
type DocumentAnalyzer interface {
	Analyze(ctx context.Context, text string) (domain.Analysis, error)
	ExtractTimeline(ctx context.Context, text string) ([]domain.TimelineStep, error)
	StreetTips(ctx context.Context, text string) (string, error)
}
