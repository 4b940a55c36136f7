package xlsx

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/kirillkom/scadenze/internal/core/domain"
)

const (
	deadlinesSheet = "Deadlines"
	documentsSheet = "Documents"
)

// Report is the content of one spreadsheet export.
type Report struct {
	AsOf       time.Time
	WindowDays int
	Deadlines  []domain.Deadline
	Documents  []domain.Document
}

var urgencyFill = map[domain.Urgency]string{
	domain.UrgencyCritical: "#F8D7DA",
	domain.UrgencySoon:     "#FFF3CD",
	domain.UrgencyNormal:   "#D1E7DD",
}

// Write renders the deadline axis and the document list as an .xlsx workbook.
func Write(w io.Writer, report Report) error {
	f := excelize.NewFile()
	defer func() {
		_ = f.Close()
	}()

	if err := f.SetSheetName("Sheet1", deadlinesSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(documentsSheet); err != nil {
		return fmt.Errorf("create documents sheet: %w", err)
	}

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	if err := writeDeadlines(f, header, report); err != nil {
		return err
	}
	if err := writeDocuments(f, header, report.Documents); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeDeadlines(f *excelize.File, header int, report Report) error {
	title := fmt.Sprintf("Deadlines from %s, next %d days", report.AsOf.Format("2006-01-02"), report.WindowDays)
	if err := f.SetCellValue(deadlinesSheet, "A1", title); err != nil {
		return fmt.Errorf("write title: %w", err)
	}
	if err := setRow(f, deadlinesSheet, 3, []any{"Date", "Days left", "Urgency", "Kind", "Label", "Document"}); err != nil {
		return err
	}
	if err := f.SetCellStyle(deadlinesSheet, "A3", "F3", header); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	fills := make(map[domain.Urgency]int, len(urgencyFill))
	for urgency, color := range urgencyFill {
		style, err := f.NewStyle(&excelize.Style{Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{color}}})
		if err != nil {
			return fmt.Errorf("create urgency style: %w", err)
		}
		fills[urgency] = style
	}

	for i, dl := range report.Deadlines {
		row := i + 4
		if err := setRow(f, deadlinesSheet, row, []any{
			dl.ISODate, dl.DaysUntil, string(dl.Urgency), string(dl.Kind), dl.Label, dl.DocumentName,
		}); err != nil {
			return err
		}
		cell, _ := excelize.CoordinatesToCellName(3, row)
		if err := f.SetCellStyle(deadlinesSheet, cell, cell, fills[dl.Urgency]); err != nil {
			return fmt.Errorf("style urgency: %w", err)
		}
	}
	return f.SetColWidth(deadlinesSheet, "E", "F", 40)
}

func writeDocuments(f *excelize.File, header int, docs []domain.Document) error {
	if err := setRow(f, documentsSheet, 1, []any{"Name", "Category", "Created", "Summary"}); err != nil {
		return err
	}
	if err := f.SetCellStyle(documentsSheet, "A1", "D1", header); err != nil {
		return fmt.Errorf("style header: %w", err)
	}
	for i, doc := range docs {
		if err := setRow(f, documentsSheet, i+2, []any{
			doc.Name, doc.EffectiveCategory(), doc.CreatedAt.Format("2006-01-02"), doc.Summary(),
		}); err != nil {
			return err
		}
	}
	return f.SetColWidth(documentsSheet, "D", "D", 80)
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("cell name: %w", err)
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	return nil
}
