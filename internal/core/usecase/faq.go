package usecase

import (
	"time"

	"github.com/kirillkom/scadenze/internal/core/domain"
)

type faqEntry struct {
	item   domain.FAQItem
	answer func(docs []domain.Document, asOf time.Time) string
}

var faqCatalogue = []faqEntry{
	{
		item: domain.FAQItem{ID: "what-docs", Question: "What documents do I have stored?", Topic: domain.TopicDocuments},
		answer: func(docs []domain.Document, _ time.Time) string {
			return WhatDocuments(docs)
		},
	},
	{
		item:   domain.FAQItem{ID: "upcoming-deadlines", Question: "What are my upcoming deadlines?", Topic: domain.TopicDeadlines},
		answer: UpcomingDeadlinesAnswer,
	},
	{
		item: domain.FAQItem{ID: "pending-actions", Question: "What actions do I need to take?", Topic: domain.TopicProcess},
		answer: func(docs []domain.Document, _ time.Time) string {
			return PendingActions(docs)
		},
	},
	{
		item: domain.FAQItem{ID: "doc-summaries", Question: "Can you summarize my documents?", Topic: domain.TopicDocuments},
		answer: func(docs []domain.Document, _ time.Time) string {
			return Summaries(docs)
		},
	},
	{
		item: domain.FAQItem{ID: "urgent-items", Question: "Do I have any urgent items?", Topic: domain.TopicDeadlines},
		answer: func(docs []domain.Document, _ time.Time) string {
			return UrgentItems(docs)
		},
	},
	{
		item: domain.FAQItem{ID: "by-category", Question: "Which areas do my documents cover?", Topic: domain.TopicDocuments},
		answer: func(docs []domain.Document, _ time.Time) string {
			return CategorySummary(docs)
		},
	},
	{
		item: domain.FAQItem{ID: "permesso-status", Question: "What is the status of my Permesso di Soggiorno?", Topic: domain.TopicProcess},
		answer: func(docs []domain.Document, _ time.Time) string {
			return PermessoStatus(docs)
		},
	},
	{
		item: domain.FAQItem{ID: "visa-info", Question: "What visa/permit type do I have?", Topic: domain.TopicDocuments},
		answer: func(docs []domain.Document, _ time.Time) string {
			return PermitTypes(docs)
		},
	},
	{
		item: domain.FAQItem{ID: "how-to-use", Question: "How do I use this app?", Topic: domain.TopicGeneral},
		answer: func([]domain.Document, time.Time) string {
			return HowToUseMessage
		},
	},
}

// FAQItems lists the catalogue, optionally restricted to one topic.
func FAQItems(topic domain.FAQTopic) []domain.FAQItem {
	out := make([]domain.FAQItem, 0, len(faqCatalogue))
	for _, entry := range faqCatalogue {
		if topic != "" && entry.item.Topic != topic {
			continue
		}
		out = append(out, entry.item)
	}
	return out
}

// AnswerFAQ runs the reducer behind a catalogue entry.
func AnswerFAQ(id string, docs []domain.Document, asOf time.Time) (domain.FAQAnswer, bool) {
	for _, entry := range faqCatalogue {
		if entry.item.ID == id {
			return domain.FAQAnswer{FAQItem: entry.item, Answer: entry.answer(docs, asOf)}, true
		}
	}
	return domain.FAQAnswer{}, false
}
