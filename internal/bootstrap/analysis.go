package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/kirillkom/scadenze/internal/core/usecase"
)

const documentTimeout = 5 * time.Minute

// AnalysisObserver is implemented by worker metrics.
type AnalysisObserver interface {
	StartDocument()
	FinishDocument(service string, duration time.Duration, err error)
	ObserveQueueLag(service string, lag time.Duration)
	ObserveAnalysisResult(service, category string, keyDates, usableDates int)
}

// ServeAnalysis consumes "document saved" events and runs the analyzer on each document
// until ctx is done. observer may be nil.
func (a *App) ServeAnalysis(ctx context.Context, service string, observer AnalysisObserver) error {
	if a.Queue == nil {
		return errors.New("analysis queue is not configured")
	}

	slog.Info("analysis_worker_started", "queue_backend", a.Config.QueueBackend, "subject", a.Config.NATSSubject)
	return a.Queue.SubscribeDocumentSaved(ctx, func(handlerCtx context.Context, documentID string) error {
		processCtx, cancel := context.WithTimeout(handlerCtx, documentTimeout)
		defer cancel()

		if observer != nil {
			// updatedAt is the creation commit only until the first analysis lands.
			if doc, err := a.Repo.GetByID(processCtx, documentID); err == nil && doc.Analysis == nil {
				observer.ObserveQueueLag(service, time.Since(doc.UpdatedAt))
			}
			observer.StartDocument()
		}

		start := time.Now()
		err := a.Process.ProcessByID(processCtx, documentID)
		if observer != nil {
			observer.FinishDocument(service, time.Since(start), err)
		}
		if err != nil {
			return err
		}
		if observer != nil {
			a.observeResult(processCtx, service, documentID, observer)
		}
		slog.Info("document_analyzed", "document_id", documentID, "duration_ms", time.Since(start).Milliseconds())
		return nil
	})
}

func (a *App) observeResult(ctx context.Context, service, documentID string, observer AnalysisObserver) {
	doc, err := a.Repo.GetByID(ctx, documentID)
	if err != nil || doc.Analysis == nil {
		return
	}
	usable := 0
	for _, kd := range doc.Analysis.KeyDates {
		if _, ok := kd.Normalize(); ok {
			usable++
		}
	}
	observer.ObserveAnalysisResult(service, string(usecase.Classify(*doc)), len(doc.Analysis.KeyDates), usable)
}
