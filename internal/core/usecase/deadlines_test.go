package usecase

import (
	"testing"
	"time"

	"github.com/kirillkom/scadenze/internal/core/domain"
)

var asOf = time.Date(2025, 1, 15, 18, 45, 0, 0, time.UTC)

func docWithDates(id string, dates ...domain.KeyDate) domain.Document {
	return domain.Document{ID: id, Name: "doc " + id, Analysis: &domain.Analysis{KeyDates: dates}}
}

func TestUpcomingDeadlinesScenario(t *testing.T) {
	docs := []domain.Document{
		docWithDates("p", domain.StructuredKeyDate("Rinnovo", "2025-02-01", domain.DateExpiry)),
	}

	got := UpcomingDeadlines(docs, asOf, 60)
	if len(got) != 1 {
		t.Fatalf("expected 1 deadline, got %d", len(got))
	}
	if got[0].DaysUntil != 17 {
		t.Fatalf("expected daysUntil 17, got %d", got[0].DaysUntil)
	}
	if got[0].Urgency != domain.UrgencySoon {
		t.Fatalf("expected urgency soon, got %s", got[0].Urgency)
	}
	if got[0].Kind != domain.DateExpiry || got[0].ISODate != "2025-02-01" || got[0].DocumentID != "p" {
		t.Fatalf("unexpected deadline %+v", got[0])
	}
}

func TestUpcomingDeadlinesWindowEdges(t *testing.T) {
	docs := []domain.Document{
		docWithDates("a",
			domain.StructuredKeyDate("yesterday", "2025-01-14", domain.DateDeadline),
			domain.StructuredKeyDate("today", "2025-01-15", domain.DateDeadline),
			domain.StructuredKeyDate("last day", "2025-03-16", domain.DateDeadline),
			domain.StructuredKeyDate("too far", "2025-03-17", domain.DateDeadline),
		),
	}

	got := UpcomingDeadlines(docs, asOf, 60)
	if len(got) != 2 {
		t.Fatalf("expected 2 deadlines inside window, got %+v", got)
	}
	if got[0].Label != "today" || got[0].DaysUntil != 0 || got[0].Urgency != domain.UrgencyCritical {
		t.Fatalf("unexpected first deadline %+v", got[0])
	}
	if got[1].Label != "last day" || got[1].DaysUntil != 60 || got[1].Position != 1 {
		t.Fatalf("unexpected last deadline %+v", got[1])
	}
}

func TestUpcomingDeadlinesStableOrder(t *testing.T) {
	docs := []domain.Document{
		docWithDates("first",
			domain.StructuredKeyDate("b-late", "2025-02-20", domain.DateDeadline),
			domain.StructuredKeyDate("a-same", "2025-01-20", domain.DateDeadline),
		),
		docWithDates("second",
			domain.StructuredKeyDate("c-same", "2025-01-20", domain.DateAppointment),
			domain.LegacyKeyDate("Scadenza 2025-01-16 ore 10"),
		),
	}

	got := UpcomingDeadlines(docs, asOf, 0)
	want := []string{"Scadenza 2025-01-16 ore 10", "a-same", "c-same", "b-late"}
	if len(got) != len(want) {
		t.Fatalf("expected %d deadlines, got %+v", len(want), got)
	}
	for i, label := range want {
		if got[i].Label != label {
			t.Fatalf("position %d: expected %q, got %q", i, label, got[i].Label)
		}
	}
}

func TestUpcomingDeadlinesSkipsUnparseable(t *testing.T) {
	docs := []domain.Document{
		{ID: "no-analysis", Name: "raw"},
		docWithDates("bad",
			domain.StructuredKeyDate("month 13", "2025-13-01", domain.DateDeadline),
			domain.StructuredKeyDate("feb 30", "2025-02-30", domain.DateDeadline),
			domain.StructuredKeyDate("short", "2025-2-1", domain.DateDeadline),
			domain.LegacyKeyDate("entro fine mese"),
			domain.KeyDate{Variant: domain.KeyDateInvalid},
		),
	}

	if got := UpcomingDeadlines(docs, asOf, 60); len(got) != 0 {
		t.Fatalf("expected no deadlines, got %+v", got)
	}
}

func TestDaysBetweenUsesLocalCalendarDay(t *testing.T) {
	rome, err := time.LoadLocation("Europe/Rome")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	// 23:30 UTC on the 14th is already the 15th in Rome.
	from := time.Date(2025, 1, 14, 23, 30, 0, 0, time.UTC).In(rome)
	to := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	if got := DaysBetween(from, to); got != 17 {
		t.Fatalf("DaysBetween() = %d, want 17", got)
	}
}

func TestDaysBetweenFarFuture(t *testing.T) {
	to := time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)
	if got := DaysBetween(asOf, to); got != 2912793 {
		t.Fatalf("DaysBetween() = %d, want 2912793", got)
	}
	if got := DaysBetween(to, asOf); got != -2912793 {
		t.Fatalf("DaysBetween() reversed = %d, want -2912793", got)
	}
}

func TestUpcomingDeadlinesHugeWindowKeepsOrder(t *testing.T) {
	docs := []domain.Document{
		docWithDates("far",
			domain.StructuredKeyDate("end of time", "9999-12-31", domain.DateExpiry),
			domain.StructuredKeyDate("three centuries", "2325-01-15", domain.DateExpiry),
		),
	}

	got := UpcomingDeadlines(docs, asOf, 5_000_000)
	if len(got) != 2 {
		t.Fatalf("expected 2 deadlines, got %+v", got)
	}
	if got[0].ISODate != "2325-01-15" || got[0].DaysUntil != 109572 {
		t.Fatalf("unexpected first deadline %+v", got[0])
	}
	if got[1].ISODate != "9999-12-31" || got[1].DaysUntil != 2912793 {
		t.Fatalf("unexpected second deadline %+v", got[1])
	}
}

func TestUrgencyBands(t *testing.T) {
	cases := map[int]domain.Urgency{
		0:  domain.UrgencyCritical,
		6:  domain.UrgencyCritical,
		7:  domain.UrgencySoon,
		29: domain.UrgencySoon,
		30: domain.UrgencyNormal,
		60: domain.UrgencyNormal,
	}
	for days, want := range cases {
		if got := domain.UrgencyFor(days); got != want {
			t.Fatalf("UrgencyFor(%d) = %s, want %s", days, got, want)
		}
	}
}
