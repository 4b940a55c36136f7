package domain

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"
	"time"
)

const isoDateLayout = "2006-01-02"

type DateKind string

const (
	DateDeadline    DateKind = "deadline"
	DateAppointment DateKind = "appointment"
	DateExpiry      DateKind = "expiry"
)

// ParseDateKind coerces untrusted kinds; unknown values become deadline.
func ParseDateKind(raw string) DateKind {
	switch DateKind(strings.ToLower(strings.TrimSpace(raw))) {
	case DateAppointment:
		return DateAppointment
	case DateExpiry:
		return DateExpiry
	default:
		return DateDeadline
	}
}

type KeyDateVariant string

const (
	KeyDateStructured KeyDateVariant = "structured"
	KeyDateLegacy     KeyDateVariant = "legacy"
	// KeyDateInvalid marks entries whose JSON shape was neither a string nor an object.
	KeyDateInvalid KeyDateVariant = "invalid"
)

// KeyDate is either a structured {label, date, type} object or a legacy free-text string.
type KeyDate struct {
	Variant KeyDateVariant
	Label   string
	Date    string
	Kind    DateKind
	Text    string
}

func StructuredKeyDate(label, date string, kind DateKind) KeyDate {
	return KeyDate{Variant: KeyDateStructured, Label: label, Date: date, Kind: kind}
}

func LegacyKeyDate(text string) KeyDate {
	return KeyDate{Variant: KeyDateLegacy, Text: text}
}

// String renders the key date the way it is shown to users when no date could be parsed.
func (k KeyDate) String() string {
	switch k.Variant {
	case KeyDateLegacy:
		return k.Text
	case KeyDateStructured:
		if k.Date == "" {
			return k.Label
		}
		return k.Label + " (" + k.Date + ")"
	default:
		return ""
	}
}

type structuredKeyDateJSON struct {
	Label string `json:"label"`
	Date  string `json:"date"`
	Type  string `json:"type"`
}

func (k KeyDate) MarshalJSON() ([]byte, error) {
	switch k.Variant {
	case KeyDateLegacy:
		return json.Marshal(k.Text)
	case KeyDateStructured:
		return json.Marshal(structuredKeyDateJSON{Label: k.Label, Date: k.Date, Type: string(k.Kind)})
	default:
		return []byte("null"), nil
	}
}

func (k *KeyDate) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*k = KeyDate{Variant: KeyDateInvalid}
		return nil
	}
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		*k = LegacyKeyDate(text)
		return nil
	}
	fields, ok := decodeObject(data)
	if !ok {
		*k = KeyDate{Variant: KeyDateInvalid}
		return nil
	}
	kind := looseString(fields["type"])
	if kind == "" {
		kind = looseString(fields["kind"])
	}
	*k = StructuredKeyDate(looseString(fields["label"]), looseString(fields["date"]), ParseDateKind(kind))
	return nil
}

// NormalizedDate is the canonical shape both key date variants reduce to.
type NormalizedDate struct {
	Label string
	Date  time.Time
	Kind  DateKind
}

// ISODate formats the date as YYYY-MM-DD.
func (n NormalizedDate) ISODate() string {
	return n.Date.Format(isoDateLayout)
}

var embeddedISODate = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)

// Normalize reduces a key date to its canonical triple. The second result is false when
// the entry carries no valid calendar date; it never panics on malformed input.
func (k KeyDate) Normalize() (NormalizedDate, bool) {
	switch k.Variant {
	case KeyDateStructured:
		date, ok := ParseISODate(k.Date)
		if !ok {
			return NormalizedDate{}, false
		}
		return NormalizedDate{Label: k.Label, Date: date, Kind: ParseDateKind(string(k.Kind))}, true
	case KeyDateLegacy:
		match := embeddedISODate.FindString(k.Text)
		if match == "" {
			return NormalizedDate{}, false
		}
		date, ok := ParseISODate(match)
		if !ok {
			return NormalizedDate{}, false
		}
		return NormalizedDate{Label: k.Text, Date: date, Kind: DateDeadline}, true
	default:
		return NormalizedDate{}, false
	}
}

// ParseISODate accepts exactly YYYY-MM-DD naming a real calendar day and returns UTC midnight.
func ParseISODate(raw string) (time.Time, bool) {
	if len(raw) != len(isoDateLayout) {
		return time.Time{}, false
	}
	date, err := time.Parse(isoDateLayout, raw)
	if err != nil {
		return time.Time{}, false
	}
	return date, true
}
