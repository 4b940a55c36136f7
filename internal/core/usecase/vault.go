package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/scadenze/internal/core/domain"
	"github.com/kirillkom/scadenze/internal/core/ports"
)

// Vault is the document record store: it owns identity and timestamps and
// delegates persistence to the repository.
type Vault struct {
	repo  ports.DocumentRepository
	queue ports.MessageQueue
	now   func() time.Time
	newID func() string
}

func NewVault(repo ports.DocumentRepository, queue ports.MessageQueue) *Vault {
	return &Vault{
		repo:  repo,
		queue: queue,
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
}

func (v *Vault) Create(ctx context.Context, input domain.DocumentInput) (*domain.Document, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "create document", errors.New("name is required"))
	}

	now := v.now()
	doc := &domain.Document{
		ID:        v.newID(),
		Name:      name,
		Type:      strings.TrimSpace(input.Type),
		OCRText:   input.OCRText,
		Timeline:  sanitizeTimeline(input.Timeline),
		Tips:      input.Tips,
		Analysis:  input.Analysis,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if doc.Type == "" {
		doc.Type = "Document"
	}

	if err := v.repo.Create(ctx, doc); err != nil {
		return nil, fmt.Errorf("create document record: %w", err)
	}

	if doc.Analysis == nil {
		v.enqueueAnalysis(ctx, doc.ID)
	}
	return doc, nil
}

func (v *Vault) Get(ctx context.Context, id string) (*domain.Document, error) {
	return v.repo.GetByID(ctx, id)
}

func (v *Vault) List(ctx context.Context) ([]domain.Document, error) {
	return v.repo.List(ctx)
}

// Delete removes a document; unknown ids are not an error.
func (v *Vault) Delete(ctx context.Context, id string) error {
	if err := v.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete document record: %w", err)
	}
	return nil
}

// Reanalyze queues an existing document for another analysis pass.
func (v *Vault) Reanalyze(ctx context.Context, id string) error {
	if _, err := v.repo.GetByID(ctx, id); err != nil {
		return err
	}
	if v.queue == nil {
		return domain.WrapError(domain.ErrAnalysisUnavailable, "reanalyze document", errors.New("no analysis queue configured"))
	}
	if err := v.queue.PublishDocumentSaved(ctx, id); err != nil {
		return fmt.Errorf("publish analysis event: %w", err)
	}
	return nil
}

// enqueueAnalysis is best effort: a document without analysis is a valid state.
func (v *Vault) enqueueAnalysis(ctx context.Context, id string) {
	if v.queue == nil {
		return
	}
	if err := v.queue.PublishDocumentSaved(ctx, id); err != nil {
		slog.Warn("analysis_enqueue_failed", "document_id", id, "error", err)
	}
}

func sanitizeTimeline(steps []domain.TimelineStep) []domain.TimelineStep {
	out := make([]domain.TimelineStep, 0, len(steps))
	for _, step := range steps {
		step.Status = domain.ParseStepStatus(string(step.Status))
		out = append(out, step)
	}
	return out
}
