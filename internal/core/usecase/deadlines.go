package usecase

import (
	"cmp"
	"slices"
	"time"

	"github.com/kirillkom/scadenze/internal/core/domain"
)

// UpcomingDeadlines collects every normalized key date falling within
// [asOf, asOf+windowDays] calendar days, sorted by distance. Equal distances keep
// document order, then key date order. A non-positive window uses the default.
func UpcomingDeadlines(docs []domain.Document, asOf time.Time, windowDays int) []domain.Deadline {
	if windowDays <= 0 {
		windowDays = domain.DefaultWindowDays
	}

	out := []domain.Deadline{}
	for _, doc := range docs {
		if doc.Analysis == nil {
			continue
		}
		for _, kd := range doc.Analysis.KeyDates {
			date, ok := kd.Normalize()
			if !ok {
				continue
			}
			days := DaysBetween(asOf, date.Date)
			if days < 0 || days > windowDays {
				continue
			}
			out = append(out, domain.Deadline{
				Label:        date.Label,
				Date:         date.Date,
				ISODate:      date.ISODate(),
				Kind:         date.Kind,
				DocumentID:   doc.ID,
				DocumentName: doc.Name,
				DaysUntil:    days,
				Urgency:      domain.UrgencyFor(days),
				Position:     float64(days) / float64(windowDays),
			})
		}
	}

	slices.SortStableFunc(out, func(a, b domain.Deadline) int {
		return cmp.Compare(a.DaysUntil, b.DaysUntil)
	})
	return out
}

// DaysBetween counts whole calendar days from one date to another, each read in
// its own location. Time of day is ignored.
func DaysBetween(from, to time.Time) int {
	return int((calendarDay(to).Unix() - calendarDay(from).Unix()) / secondsPerDay)
}

const secondsPerDay = 24 * 60 * 60

func calendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
