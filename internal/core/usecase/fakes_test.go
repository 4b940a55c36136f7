package usecase

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"

	"github.com/kirillkom/scadenze/internal/core/domain"
)

type repoFake struct {
	mu        sync.Mutex
	docs      []domain.Document
	createErr error
	listErr   error
	updateErr error
	updated   []domain.Document
}

func (f *repoFake) Create(_ context.Context, doc *domain.Document) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.docs = append([]domain.Document{*doc}, f.docs...)
	return nil
}

func (f *repoFake) GetByID(_ context.Context, id string) (*domain.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, doc := range f.docs {
		if doc.ID == id {
			copyDoc := doc
			return &copyDoc, nil
		}
	}
	return nil, domain.WrapError(domain.ErrDocumentNotFound, "get document", io.EOF)
}

func (f *repoFake) List(context.Context) ([]domain.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]domain.Document, len(f.docs))
	copy(out, f.docs)
	return out, nil
}

func (f *repoFake) Update(_ context.Context, doc *domain.Document) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	for i := range f.docs {
		if f.docs[i].ID == doc.ID {
			f.docs[i] = *doc
			f.updated = append(f.updated, *doc)
			return nil
		}
	}
	return domain.WrapError(domain.ErrDocumentNotFound, "update document", io.EOF)
}

func (f *repoFake) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.docs[:0]
	for _, doc := range f.docs {
		if doc.ID != id {
			out = append(out, doc)
		}
	}
	f.docs = out
	return nil
}

type queueFake struct {
	published []string
	err       error
}

func (f *queueFake) PublishDocumentSaved(_ context.Context, documentID string) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, documentID)
	return nil
}

func (f *queueFake) SubscribeDocumentSaved(context.Context, func(context.Context, string) error) error {
	return nil
}

type storageFake struct {
	savedKey  string
	savedBody string
	err       error
}

func (f *storageFake) Save(_ context.Context, key string, data io.Reader) error {
	if f.err != nil {
		return f.err
	}
	body, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	f.savedKey = key
	f.savedBody = string(body)
	return nil
}

func (f *storageFake) Open(context.Context, string) (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader([]byte(f.savedBody))), nil
}

type extractorFake struct {
	suffix string
	text   string
	err    error
	got    string
}

func (f *extractorFake) Supports(_ string, filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), f.suffix)
}

func (f *extractorFake) Extract(_ context.Context, _ string, body io.Reader) (string, error) {
	raw, _ := io.ReadAll(body)
	f.got = string(raw)
	if f.err != nil {
		return "", f.err
	}
	if f.text != "" {
		return f.text, nil
	}
	return string(raw), nil
}

type analyzerFake struct {
	analysis    domain.Analysis
	analyzeErr  error
	timeline    []domain.TimelineStep
	timelineErr error
	tips        string
	tipsErr     error
}

func (f *analyzerFake) Analyze(context.Context, string) (domain.Analysis, error) {
	return f.analysis, f.analyzeErr
}

func (f *analyzerFake) ExtractTimeline(context.Context, string) ([]domain.TimelineStep, error) {
	return f.timeline, f.timelineErr
}

func (f *analyzerFake) StreetTips(context.Context, string) (string, error) {
	return f.tips, f.tipsErr
}
