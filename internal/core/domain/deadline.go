package domain

import "time"

// DefaultWindowDays is the forward horizon of the deadline axis.
const DefaultWindowDays = 60

type Urgency string

const (
	UrgencyCritical Urgency = "critical"
	UrgencySoon     Urgency = "soon"
	UrgencyNormal   Urgency = "normal"
)

// UrgencyFor bands a day distance: under a week is critical, under thirty days soon.
func UrgencyFor(daysUntil int) Urgency {
	switch {
	case daysUntil < 7:
		return UrgencyCritical
	case daysUntil < 30:
		return UrgencySoon
	default:
		return UrgencyNormal
	}
}

type Deadline struct {
	Label        string    `json:"label"`
	Date         time.Time `json:"-"`
	ISODate      string    `json:"date"`
	Kind         DateKind  `json:"kind"`
	DocumentID   string    `json:"documentId"`
	DocumentName string    `json:"documentName"`
	DaysUntil    int       `json:"daysUntil"`
	Urgency      Urgency   `json:"urgency"`
	// Position is DaysUntil / window, in [0,1].
	Position float64 `json:"position"`
}
