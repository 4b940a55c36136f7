package domain

import (
	"encoding/json"
	"strings"
	"time"
)

type StepStatus string

const (
	StepDone    StepStatus = "done"
	StepPending StepStatus = "pending"
	StepUrgent  StepStatus = "urgent"
)

// ParseStepStatus coerces untrusted status strings; anything outside the closed set becomes pending.
func ParseStepStatus(raw string) StepStatus {
	switch StepStatus(strings.ToLower(strings.TrimSpace(raw))) {
	case StepDone:
		return StepDone
	case StepUrgent:
		return StepUrgent
	default:
		return StepPending
	}
}

// Open reports whether the step still needs attention.
func (s StepStatus) Open() bool {
	return s == StepPending || s == StepUrgent
}

type TimelineStep struct {
	Stage         string     `json:"stage"`
	EstimatedDate string     `json:"estimatedDate"`
	Status        StepStatus `json:"status"`
	Tip           string     `json:"tip,omitempty"`
}

func (s *TimelineStep) UnmarshalJSON(data []byte) error {
	fields, ok := decodeObject(data)
	if !ok {
		*s = TimelineStep{Status: StepPending}
		return nil
	}
	*s = TimelineStep{
		Stage:         looseString(fields["stage"]),
		EstimatedDate: looseString(fields["estimatedDate"]),
		Status:        ParseStepStatus(looseString(fields["status"])),
		Tip:           looseString(fields["tip"]),
	}
	return nil
}

// Analysis is produced by the external analyzer and attached to at most one document.
type Analysis struct {
	Category    string    `json:"category"`
	Summary     string    `json:"summary"`
	KeyDates    []KeyDate `json:"keyDates"`
	ActionItems []string  `json:"actionItems"`
}

// UnmarshalJSON tolerates missing and wrong-typed fields instead of failing the whole record.
func (a *Analysis) UnmarshalJSON(data []byte) error {
	fields, ok := decodeObject(data)
	if !ok {
		*a = Analysis{}
		return nil
	}
	out := Analysis{
		Category:    looseString(fields["category"]),
		Summary:     looseString(fields["summary"]),
		KeyDates:    []KeyDate{},
		ActionItems: looseStrings(fields["actionItems"]),
	}
	var rawDates []json.RawMessage
	if err := json.Unmarshal(fields["keyDates"], &rawDates); err == nil {
		for _, raw := range rawDates {
			var kd KeyDate
			_ = kd.UnmarshalJSON(raw)
			out.KeyDates = append(out.KeyDates, kd)
		}
	}
	*a = out
	return nil
}

type Document struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Type      string         `json:"type"`
	OCRText   string         `json:"ocrText"`
	Timeline  []TimelineStep `json:"timeline"`
	Tips      string         `json:"tips"`
	Analysis  *Analysis      `json:"analysis,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// EffectiveCategory is the analyzer's label when present, otherwise the declared type.
func (d Document) EffectiveCategory() string {
	if d.Analysis != nil && d.Analysis.Category != "" {
		return d.Analysis.Category
	}
	return d.Type
}

// Summary returns the analysis summary or an empty string when the analysis has not arrived yet.
func (d Document) Summary() string {
	if d.Analysis == nil {
		return ""
	}
	return d.Analysis.Summary
}

// DocumentInput carries the caller-provided fields of a new document.
type DocumentInput struct {
	Name     string         `json:"name"`
	Type     string         `json:"type"`
	OCRText  string         `json:"ocrText"`
	Timeline []TimelineStep `json:"timeline"`
	Tips     string         `json:"tips"`
	Analysis *Analysis      `json:"analysis,omitempty"`
}

func decodeObject(data []byte) (map[string]json.RawMessage, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil || fields == nil {
		return nil, false
	}
	return fields, true
}

func looseString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

func looseStrings(raw json.RawMessage) []string {
	out := []string{}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return out
	}
	for _, item := range items {
		var s string
		if err := json.Unmarshal(item, &s); err != nil {
			continue
		}
		out = append(out, s)
	}
	return out
}
