package xlsx

import (
	"bytes"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/kirillkom/scadenze/internal/core/domain"
)

func TestWriteProducesBothSheets(t *testing.T) {
	asOf := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	report := Report{
		AsOf:       asOf,
		WindowDays: 60,
		Deadlines: []domain.Deadline{{
			Label:        "Rinnovo",
			ISODate:      "2025-02-01",
			Kind:         domain.DateExpiry,
			DocumentName: "Permesso",
			DaysUntil:    17,
			Urgency:      domain.UrgencySoon,
		}},
		Documents: []domain.Document{{
			Name:      "Permesso",
			Type:      "Residence Permit",
			CreatedAt: asOf,
			Analysis:  &domain.Analysis{Summary: "Renewal"},
		}},
	}

	var buf bytes.Buffer
	if err := Write(&buf, report); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(deadlinesSheet)
	if err != nil {
		t.Fatalf("GetRows(deadlines) error = %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("expected title, blank, header and one row, got %v", rows)
	}
	got := rows[3]
	if got[0] != "2025-02-01" || got[1] != "17" || got[2] != "soon" || got[4] != "Rinnovo" {
		t.Fatalf("unexpected deadline row %v", got)
	}

	docs, err := f.GetRows(documentsSheet)
	if err != nil {
		t.Fatalf("GetRows(documents) error = %v", err)
	}
	if len(docs) != 2 || docs[1][1] != "Residence Permit" || docs[1][3] != "Renewal" {
		t.Fatalf("unexpected document rows %v", docs)
	}
}
