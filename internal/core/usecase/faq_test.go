package usecase

import (
	"testing"

	"github.com/kirillkom/scadenze/internal/core/domain"
)

func TestFAQItemsFilterByTopic(t *testing.T) {
	all := FAQItems("")
	if len(all) != 9 {
		t.Fatalf("expected 9 catalogue entries, got %d", len(all))
	}
	if all[0].ID != "what-docs" || all[len(all)-1].ID != "how-to-use" {
		t.Fatalf("unexpected catalogue order %+v", all)
	}

	deadlines := FAQItems(domain.TopicDeadlines)
	if len(deadlines) != 2 {
		t.Fatalf("expected 2 deadline questions, got %+v", deadlines)
	}
	for _, item := range deadlines {
		if item.Topic != domain.TopicDeadlines {
			t.Fatalf("unexpected topic %s", item.Topic)
		}
	}
	if got := FAQItems("unknown"); len(got) != 0 {
		t.Fatalf("expected no items for unknown topic, got %+v", got)
	}
}

func TestAnswerFAQ(t *testing.T) {
	answer, ok := AnswerFAQ("what-docs", nil, asOf)
	if !ok {
		t.Fatalf("expected what-docs to exist")
	}
	if answer.Answer != NoDocumentsMessage || answer.Question == "" {
		t.Fatalf("unexpected answer %+v", answer)
	}

	if _, ok := AnswerFAQ("nope", nil, asOf); ok {
		t.Fatalf("expected unknown id to be rejected")
	}
}
