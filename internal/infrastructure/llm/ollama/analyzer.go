package ollama

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/kirillkom/scadenze/internal/core/domain"
)

const (
	fallbackCategory = "Document"
	fallbackSummary  = "Unable to analyze document content."
)

// Analyzer implements the document analysis gateway on top of a local Ollama model.
type Analyzer struct {
	client *Client
}

func NewAnalyzer(client *Client) *Analyzer {
	return &Analyzer{client: client}
}

// Analyze asks the model for category, summary, key dates and action items. A reply that
// carries no JSON object degrades to a placeholder analysis instead of failing.
func (a *Analyzer) Analyze(ctx context.Context, text string) (domain.Analysis, error) {
	raw, err := a.client.generateJSON(ctx, "analyze", buildAnalysisPrompt(text))
	if err != nil {
		return domain.Analysis{}, err
	}

	object, ok := extractJSONObject(raw)
	if !ok {
		slog.Warn("analysis_unparseable", "bytes", len(raw))
		return fallbackAnalysis(), nil
	}
	var analysis domain.Analysis
	if err := json.Unmarshal([]byte(object), &analysis); err != nil {
		slog.Warn("analysis_unparseable", "bytes", len(raw), "error", err)
		return fallbackAnalysis(), nil
	}
	return analysis, nil
}

// ExtractTimeline returns the model's procedure steps; an unparseable reply yields no steps.
func (a *Analyzer) ExtractTimeline(ctx context.Context, text string) ([]domain.TimelineStep, error) {
	raw, err := a.client.generateJSON(ctx, "timeline", buildTimelinePrompt(text))
	if err != nil {
		return nil, err
	}

	object, ok := extractJSONObject(raw)
	if !ok {
		return []domain.TimelineStep{}, nil
	}
	var payload struct {
		Steps []domain.TimelineStep `json:"steps"`
	}
	if err := json.Unmarshal([]byte(object), &payload); err != nil {
		slog.Warn("timeline_unparseable", "bytes", len(raw), "error", err)
		return []domain.TimelineStep{}, nil
	}
	steps := make([]domain.TimelineStep, 0, len(payload.Steps))
	for _, step := range payload.Steps {
		if strings.TrimSpace(step.Stage) == "" {
			continue
		}
		steps = append(steps, step)
	}
	return steps, nil
}

func (a *Analyzer) StreetTips(ctx context.Context, text string) (string, error) {
	tips, err := a.client.generateText(ctx, "tips", buildTipsPrompt(text))
	if err != nil {
		return "", fmt.Errorf("street tips: %w", err)
	}
	return tips, nil
}

func fallbackAnalysis() domain.Analysis {
	return domain.Analysis{
		Category:    fallbackCategory,
		Summary:     fallbackSummary,
		KeyDates:    []domain.KeyDate{},
		ActionItems: []string{},
	}
}

var fencedBlock = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")

// extractJSONObject pulls the outermost {...} out of a model reply, looking inside a
// markdown code fence first.
func extractJSONObject(raw string) (string, bool) {
	if m := fencedBlock.FindStringSubmatch(raw); m != nil {
		raw = m[1]
	}
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return raw[start : end+1], true
}
