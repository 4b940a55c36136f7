package usecase

import (
	"fmt"
	"strings"
	"time"

	"github.com/kirillkom/scadenze/internal/core/domain"
)

const (
	maxDeadlineLines = 10
	maxActionLines   = 8
	truncationMarker = "...and more"
)

const (
	NoDocumentsMessage     = "You haven't saved any documents yet. Upload and save documents to track your Italian bureaucracy paperwork."
	NoDeadlinesMessage     = "No deadlines found in your documents. Upload documents with dates to track your upcoming deadlines."
	NoActionsMessage       = "No pending actions found. Your documents either have no action items or all tasks are completed."
	NoUrgentItemsMessage   = "✓ No urgent items detected. You're on track with your documentation."
	NoDocumentsToSummarize = "No documents to summarize. Upload your Italian bureaucracy documents to get AI-powered summaries."
	NoSummariesMessage     = "Your documents don't have summaries yet. Analysis may still be running, or the document predates it. Try re-analyzing it."
	NoPermessoMessage      = "No Permesso di Soggiorno documents found. Upload your residence permit documents to track their status."
	NoPermitInfoMessage    = "No visa or permit information found. Upload your visa or permit documents to identify your status."
	HowToUseMessage        = "Scadenze helps you navigate Italian bureaucracy:\n\n1. Upload documents - scan or upload your Italian documents\n2. Text extraction - we read the text of your documents\n3. Timelines - see deadlines and the steps still open\n4. Vault - keep your documents for quick access\n5. Quick answers - ask about deadlines, actions and urgent items\n\nAnswers are built from the documents in your vault."
)

// WhatDocuments lists every document with its effective category.
func WhatDocuments(docs []domain.Document) string {
	if len(docs) == 0 {
		return NoDocumentsMessage
	}
	lines := make([]string, 0, len(docs))
	for _, doc := range docs {
		lines = append(lines, bullet(fmt.Sprintf("%s (%s)", doc.Name, doc.EffectiveCategory())))
	}
	return fmt.Sprintf("You have %d %s saved:\n\n%s", len(docs), plural(len(docs), "document"), strings.Join(lines, "\n"))
}

// UpcomingDeadlinesAnswer lists windowed key dates followed by the open timeline steps.
// Step dates are free text, so the two lists are concatenated, not merged chronologically.
func UpcomingDeadlinesAnswer(docs []domain.Document, asOf time.Time) string {
	var lines []string
	for _, dl := range UpcomingDeadlines(docs, asOf, domain.DefaultWindowDays) {
		lines = append(lines, bullet(fmt.Sprintf("%s (%s)", dl.Label, dl.ISODate)))
	}
	for _, doc := range docs {
		for _, step := range doc.Timeline {
			if !step.Status.Open() {
				continue
			}
			lines = append(lines, bullet(fmt.Sprintf("%s: %s", step.Stage, step.EstimatedDate)))
		}
	}
	if len(lines) == 0 {
		return NoDeadlinesMessage
	}
	return fmt.Sprintf("Found %d %s across your documents:\n\n%s",
		len(lines), plural(len(lines), "date"), capLines(lines, maxDeadlineLines))
}

// PendingActions unions analysis action items with open timeline steps, de-duplicated
// by exact text in first-seen order.
func PendingActions(docs []domain.Document) string {
	var lines []string
	for _, doc := range docs {
		if doc.Analysis != nil {
			for _, item := range doc.Analysis.ActionItems {
				lines = append(lines, bullet(item))
			}
		}
		for _, step := range doc.Timeline {
			if !step.Status.Open() {
				continue
			}
			line := step.Stage
			if step.Tip != "" {
				line += " - " + step.Tip
			}
			lines = append(lines, bullet(line))
		}
	}
	lines = uniqueInOrder(lines)
	if len(lines) == 0 {
		return NoActionsMessage
	}
	return fmt.Sprintf("You have %d %s to complete:\n\n%s",
		len(lines), plural(len(lines), "action"), capLines(lines, maxActionLines))
}

// UrgentItems lists every step flagged urgent, uncapped.
func UrgentItems(docs []domain.Document) string {
	var lines []string
	for _, doc := range docs {
		for _, step := range doc.Timeline {
			if step.Status != domain.StepUrgent {
				continue
			}
			lines = append(lines, bullet(fmt.Sprintf("%s - %s (%s)", step.Stage, step.EstimatedDate, doc.Name)))
		}
	}
	if len(lines) == 0 {
		return NoUrgentItemsMessage
	}
	return fmt.Sprintf("⚠️ You have %d urgent %s:\n\n%s", len(lines), plural(len(lines), "item"), strings.Join(lines, "\n"))
}

// Summaries concatenates name and summary of every analyzed document.
func Summaries(docs []domain.Document) string {
	if len(docs) == 0 {
		return NoDocumentsToSummarize
	}
	var parts []string
	for _, doc := range docs {
		summary := doc.Summary()
		if summary == "" {
			continue
		}
		parts = append(parts, fmt.Sprintf("**%s**\n%s", doc.Name, summary))
	}
	if len(parts) == 0 {
		return NoSummariesMessage
	}
	return strings.Join(parts, "\n\n")
}

// CategorySummary counts documents per category bucket.
func CategorySummary(docs []domain.Document) string {
	if len(docs) == 0 {
		return NoDocumentsMessage
	}
	groups := GroupByCategory(docs)
	lines := make([]string, 0, len(groups))
	for _, group := range groups {
		names := make([]string, 0, len(group.Documents))
		for _, doc := range group.Documents {
			names = append(names, doc.Name)
		}
		lines = append(lines, bullet(fmt.Sprintf("%s: %d (%s)", group.Label, len(group.Documents), strings.Join(names, ", "))))
	}
	return fmt.Sprintf("Your documents cover %d %s:\n\n%s", len(groups), plural(len(groups), "area"), strings.Join(lines, "\n"))
}

// PermessoStatus reports on the newest residence-permit document and its open steps.
func PermessoStatus(docs []domain.Document) string {
	var related []domain.Document
	for _, doc := range docs {
		if isPermessoDocument(doc) {
			related = append(related, doc)
		}
	}
	if len(related) == 0 {
		return NoPermessoMessage
	}

	latest := related[0]
	var b strings.Builder
	fmt.Fprintf(&b, "Found %d related %s.\n\n", len(related), plural(len(related), "document"))
	fmt.Fprintf(&b, "Latest: **%s**\n", latest.Name)
	if summary := latest.Summary(); summary != "" {
		b.WriteString(summary + "\n")
	}
	var open []string
	for _, step := range latest.Timeline {
		if step.Status != domain.StepDone {
			open = append(open, step.Stage)
		}
	}
	if len(open) > 0 {
		b.WriteString("\nPending steps: " + strings.Join(open, ", "))
	}
	return b.String()
}

// PermitTypes lists the distinct effective categories across the vault.
func PermitTypes(docs []domain.Document) string {
	var categories []string
	for _, doc := range docs {
		if category := doc.EffectiveCategory(); category != "" {
			categories = append(categories, category)
		}
	}
	categories = uniqueInOrder(categories)
	if len(categories) == 0 {
		return NoPermitInfoMessage
	}
	lines := make([]string, 0, len(categories))
	for _, category := range categories {
		lines = append(lines, bullet(category))
	}
	return "Based on your documents, you have:\n\n" + strings.Join(lines, "\n")
}

func isPermessoDocument(doc domain.Document) bool {
	category := ""
	if doc.Analysis != nil {
		category = strings.ToLower(doc.Analysis.Category)
	}
	return strings.Contains(strings.ToLower(doc.Name), "permesso") ||
		strings.Contains(category, "permesso") ||
		strings.Contains(category, "residence") ||
		strings.Contains(strings.ToLower(doc.Type), "permit")
}

func bullet(s string) string {
	return "• " + s
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

func capLines(lines []string, limit int) string {
	if len(lines) <= limit {
		return strings.Join(lines, "\n")
	}
	return strings.Join(lines[:limit], "\n") + "\n\n" + truncationMarker
}

func uniqueInOrder(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}
