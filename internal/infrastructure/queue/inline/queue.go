package inline

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/kirillkom/scadenze/internal/core/domain"
)

var ErrQueueFull = errors.New("inline queue is full")

// Queue is an in-process stand-in for the broker: events are buffered on a channel
// and handed to a fixed pool of workers in the same binary.
type Queue struct {
	events  chan string
	workers int

	closeOnce sync.Once
	done      chan struct{}
}

func New(buffer, workers int) *Queue {
	if buffer <= 0 {
		buffer = 64
	}
	if workers <= 0 {
		workers = 1
	}
	return &Queue{
		events:  make(chan string, buffer),
		workers: workers,
		done:    make(chan struct{}),
	}
}

// PublishDocumentSaved never blocks; a full buffer is reported as a temporary failure.
func (q *Queue) PublishDocumentSaved(_ context.Context, documentID string) error {
	select {
	case <-q.done:
		return domain.WrapError(domain.ErrTemporary, "inline publish", errors.New("queue closed"))
	default:
	}
	select {
	case q.events <- documentID:
		return nil
	default:
		return domain.WrapError(domain.ErrTemporary, "inline publish", ErrQueueFull)
	}
}

// SubscribeDocumentSaved runs the worker pool until ctx is done, then processes what is
// already buffered before returning.
func (q *Queue) SubscribeDocumentSaved(ctx context.Context, handler func(context.Context, string) error) error {
	var wg sync.WaitGroup
	for i := 0; i < q.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case id := <-q.events:
					q.handle(ctx, handler, id)
				}
			}
		}()
	}

	<-ctx.Done()
	q.closeOnce.Do(func() { close(q.done) })
	wg.Wait()

	drainCtx := context.WithoutCancel(ctx)
	for {
		select {
		case id := <-q.events:
			q.handle(drainCtx, handler, id)
		default:
			return nil
		}
	}
}

func (q *Queue) handle(ctx context.Context, handler func(context.Context, string) error, documentID string) {
	if err := handler(ctx, documentID); err != nil {
		slog.Error("document_handler_failed", "document_id", documentID, "error", err)
	}
}
