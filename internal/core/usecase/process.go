package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kirillkom/scadenze/internal/core/domain"
	"github.com/kirillkom/scadenze/internal/core/ports"
)

// ProcessDocumentUseCase attaches the external analyzer's output to a stored document.
type ProcessDocumentUseCase struct {
	repo     ports.DocumentRepository
	analyzer ports.DocumentAnalyzer
}

func NewProcessDocumentUseCase(repo ports.DocumentRepository, analyzer ports.DocumentAnalyzer) *ProcessDocumentUseCase {
	return &ProcessDocumentUseCase{
		repo:     repo,
		analyzer: analyzer,
	}
}

// ProcessByID runs analysis, timeline extraction and street tips. Timeline and tips are
// optional: their failures are logged and the rest is still saved. The analysis error,
// if any, is returned after the partial result has been persisted.
func (uc *ProcessDocumentUseCase) ProcessByID(ctx context.Context, documentID string) error {
	doc, err := uc.repo.GetByID(ctx, documentID)
	if err != nil {
		if domain.IsKind(err, domain.ErrDocumentNotFound) {
			slog.Info("process_skipped_deleted_document", "document_id", documentID)
			return nil
		}
		return fmt.Errorf("fetch document by id: %w", err)
	}

	text := strings.TrimSpace(doc.OCRText)
	if text == "" {
		return domain.WrapError(domain.ErrInvalidInput, "process document", errors.New("empty ocr text"))
	}

	analyzeErr := uc.applyAnalysis(ctx, doc, text)
	uc.applyTimeline(ctx, doc, text)
	uc.applyTips(ctx, doc, text)

	if err := uc.repo.Update(ctx, doc); err != nil {
		if domain.IsKind(err, domain.ErrDocumentNotFound) {
			slog.Info("process_discarded_deleted_document", "document_id", documentID)
			return nil
		}
		return fmt.Errorf("save analysis: %w", err)
	}
	return analyzeErr
}

func (uc *ProcessDocumentUseCase) applyAnalysis(ctx context.Context, doc *domain.Document, text string) error {
	analysis, err := uc.analyzer.Analyze(ctx, text)
	if err != nil {
		return fmt.Errorf("analyze document: %w", err)
	}
	if analysis.KeyDates == nil {
		analysis.KeyDates = []domain.KeyDate{}
	}
	if analysis.ActionItems == nil {
		analysis.ActionItems = []string{}
	}
	doc.Analysis = &analysis
	if category := strings.TrimSpace(analysis.Category); category != "" {
		doc.Type = category
	}
	return nil
}

func (uc *ProcessDocumentUseCase) applyTimeline(ctx context.Context, doc *domain.Document, text string) {
	steps, err := uc.analyzer.ExtractTimeline(ctx, text)
	if err != nil {
		slog.Warn("timeline_extraction_failed", "document_id", doc.ID, "error", err)
		return
	}
	if len(steps) > 0 {
		doc.Timeline = sanitizeTimeline(steps)
	}
}

func (uc *ProcessDocumentUseCase) applyTips(ctx context.Context, doc *domain.Document, text string) {
	tips, err := uc.analyzer.StreetTips(ctx, text)
	if err != nil {
		slog.Warn("street_tips_failed", "document_id", doc.ID, "error", err)
		return
	}
	if strings.TrimSpace(tips) != "" {
		doc.Tips = tips
	}
}
