package httpadapter

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/kirillkom/scadenze/internal/config"
	"github.com/kirillkom/scadenze/internal/core/domain"
)

var fixedNow = time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)

type vaultFake struct {
	docs         []domain.Document
	err          error
	created      []domain.DocumentInput
	deleted      []string
	reanalyzed   []string
	reanalyzeErr error
}

func (f *vaultFake) Create(_ context.Context, input domain.DocumentInput) (*domain.Document, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.created = append(f.created, input)
	return &domain.Document{
		ID:        "doc-1",
		Name:      input.Name,
		Type:      input.Type,
		OCRText:   input.OCRText,
		Timeline:  []domain.TimelineStep{},
		CreatedAt: fixedNow,
		UpdatedAt: fixedNow,
	}, nil
}

func (f *vaultFake) Get(_ context.Context, id string) (*domain.Document, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, doc := range f.docs {
		if doc.ID == id {
			found := doc
			return &found, nil
		}
	}
	return nil, domain.WrapError(domain.ErrDocumentNotFound, "get document", errors.New("id="+id))
}

func (f *vaultFake) List(context.Context) ([]domain.Document, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.docs, nil
}

func (f *vaultFake) Delete(_ context.Context, id string) error {
	if f.err != nil {
		return f.err
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *vaultFake) Reanalyze(_ context.Context, id string) error {
	if f.reanalyzeErr != nil {
		return f.reanalyzeErr
	}
	f.reanalyzed = append(f.reanalyzed, id)
	return nil
}

type ingestFake struct {
	err      error
	filename string
	mimeType string
	body     string
}

func (f *ingestFake) Upload(_ context.Context, filename, mimeType string, body io.Reader) (*domain.Document, error) {
	if f.err != nil {
		return nil, f.err
	}
	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}
	f.filename, f.mimeType, f.body = filename, mimeType, string(raw)
	return &domain.Document{ID: "doc-up", Name: filename, OCRText: string(raw), CreatedAt: fixedNow, UpdatedAt: fixedNow}, nil
}

type insightsFake struct {
	err        error
	deadlines  []domain.Deadline
	groups     []domain.CategoryGroup
	asOf       time.Time
	windowDays int
	topic      string
}

func (f *insightsFake) Now() time.Time { return fixedNow }

func (f *insightsFake) Deadlines(_ context.Context, asOf time.Time, windowDays int) ([]domain.Deadline, error) {
	f.asOf, f.windowDays = asOf, windowDays
	return f.deadlines, f.err
}

func (f *insightsFake) Categories(context.Context) ([]domain.CategoryGroup, error) {
	return f.groups, f.err
}

func (f *insightsFake) Answer(_ context.Context, faqID string, asOf time.Time) (domain.FAQAnswer, error) {
	if f.err != nil {
		return domain.FAQAnswer{}, f.err
	}
	if faqID != "what-docs" {
		return domain.FAQAnswer{}, domain.WrapError(domain.ErrInvalidInput, "answer faq", errors.New("unknown question id"))
	}
	f.asOf = asOf
	return domain.FAQAnswer{
		FAQItem: domain.FAQItem{ID: faqID, Question: "What documents do I have stored?", Topic: domain.TopicDocuments},
		Answer:  "You have 1 document stored.",
	}, nil
}

func (f *insightsFake) FAQ(topic string) []domain.FAQItem {
	f.topic = topic
	return []domain.FAQItem{{ID: "what-docs", Topic: domain.TopicDocuments}}
}

func newTestRouter(vault *vaultFake, ingest *ingestFake, insights *insightsFake) *Router {
	if vault == nil {
		vault = &vaultFake{}
	}
	if ingest == nil {
		ingest = &ingestFake{}
	}
	if insights == nil {
		insights = &insightsFake{}
	}
	return NewRouter(config.Config{DeadlineWindowDays: 60, MaxUploadBytes: 1 << 20}, vault, ingest, insights)
}
