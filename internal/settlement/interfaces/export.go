package interfaces

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	"expense-tracker/internal/settlement/application"
)

// BuildEventStatementPDF renders an event's settlement figures and
// payment list as a PDF.
func BuildEventStatementPDF(details *application.EventDetails) ([]byte, error) {
	if details == nil {
		return nil, fmt.Errorf("export: nil details")
	}
	e := details.Event

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, fmt.Sprintf("Event Statement: %s", e.Name))
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 10)
	lines := []string{
		fmt.Sprintf("Date: %s", e.Date.Format("2006-01-02")),
		fmt.Sprintf("Status: %s", e.Status),
		fmt.Sprintf("Total cost: %s", e.TotalCost.StringFixed(2)),
		fmt.Sprintf("Consumers: %d", e.ConsumersCount),
		fmt.Sprintf("Per person: %s", details.PerPerson.StringFixed(2)),
		fmt.Sprintf("Total collected: %s", details.TotalCollected.StringFixed(2)),
		fmt.Sprintf("Surplus / deficit: %s", details.Surplus.StringFixed(2)),
	}
	for _, line := range lines {
		pdf.Cell(0, 6, line)
		pdf.Ln(6)
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(20, 7, "ID", "1", 0, "", false, 0, "")
	pdf.CellFormat(35, 7, "Amount", "1", 0, "", false, 0, "")
	pdf.CellFormat(40, 7, "Method", "1", 0, "", false, 0, "")
	pdf.CellFormat(80, 7, "Notes", "1", 1, "", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	for _, p := range details.Payments {
		pdf.CellFormat(20, 6, fmt.Sprintf("%d", p.ID), "1", 0, "", false, 0, "")
		pdf.CellFormat(35, 6, p.Amount.StringFixed(2), "1", 0, "", false, 0, "")
		pdf.CellFormat(40, 6, p.Method, "1", 0, "", false, 0, "")
		pdf.CellFormat(80, 6, p.Notes, "1", 1, "", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("export: render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// BuildEventStatementXLSX renders the same statement as a workbook.
func BuildEventStatementXLSX(details *application.EventDetails) ([]byte, error) {
	if details == nil {
		return nil, fmt.Errorf("export: nil details")
	}
	e := details.Event

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	sheet := f.GetSheetName(0)

	summary := [][]any{
		{"Event", e.Name},
		{"Date", e.Date.Format("2006-01-02")},
		{"Status", e.Status},
		{"Total cost", e.TotalCost.StringFixed(2)},
		{"Consumers", e.ConsumersCount},
		{"Per person", details.PerPerson.StringFixed(2)},
		{"Total collected", details.TotalCollected.StringFixed(2)},
		{"Surplus / deficit", details.Surplus.StringFixed(2)},
	}
	row := 1
	for _, pair := range summary {
		cell, _ := excelize.CoordinatesToCellName(1, row)
		_ = f.SetSheetRow(sheet, cell, &pair)
		row++
	}

	row++
	header := []any{"ID", "Amount", "Method", "Notes"}
	cell, _ := excelize.CoordinatesToCellName(1, row)
	_ = f.SetSheetRow(sheet, cell, &header)
	for _, p := range details.Payments {
		row++
		values := []any{p.ID, p.Amount.StringFixed(2), p.Method, p.Notes}
		cell, _ := excelize.CoordinatesToCellName(1, row)
		_ = f.SetSheetRow(sheet, cell, &values)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("export: render xlsx: %w", err)
	}
	return buf.Bytes(), nil
}
