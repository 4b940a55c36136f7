package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/kirillkom/scadenze/internal/core/domain"
	"github.com/kirillkom/scadenze/internal/core/ports"
)

// Insights evaluates the pure reducers against the current vault contents.
type Insights struct {
	repo       ports.DocumentRepository
	location   *time.Location
	windowDays int
	now        func() time.Time
}

func NewInsights(repo ports.DocumentRepository, location *time.Location, windowDays int) *Insights {
	if location == nil {
		location = time.UTC
	}
	if windowDays <= 0 {
		windowDays = domain.DefaultWindowDays
	}
	return &Insights{
		repo:       repo,
		location:   location,
		windowDays: windowDays,
		now:        time.Now,
	}
}

// Now is the current instant in the vault's timezone; it decides which calendar day is "today".
func (i *Insights) Now() time.Time {
	return i.now().In(i.location)
}

func (i *Insights) Deadlines(ctx context.Context, asOf time.Time, windowDays int) ([]domain.Deadline, error) {
	docs, err := i.documents(ctx)
	if err != nil {
		return nil, err
	}
	if windowDays <= 0 {
		windowDays = i.windowDays
	}
	return UpcomingDeadlines(docs, asOf, windowDays), nil
}

func (i *Insights) Categories(ctx context.Context) ([]domain.CategoryGroup, error) {
	docs, err := i.documents(ctx)
	if err != nil {
		return nil, err
	}
	return GroupByCategory(docs), nil
}

func (i *Insights) Answer(ctx context.Context, faqID string, asOf time.Time) (domain.FAQAnswer, error) {
	docs, err := i.documents(ctx)
	if err != nil {
		return domain.FAQAnswer{}, err
	}
	answer, ok := AnswerFAQ(faqID, docs, asOf)
	if !ok {
		return domain.FAQAnswer{}, domain.WrapError(domain.ErrInvalidInput, "answer faq", fmt.Errorf("unknown question id %q", faqID))
	}
	return answer, nil
}

func (i *Insights) FAQ(topic string) []domain.FAQItem {
	return FAQItems(domain.FAQTopic(topic))
}

func (i *Insights) documents(ctx context.Context) ([]domain.Document, error) {
	docs, err := i.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return docs, nil
}
