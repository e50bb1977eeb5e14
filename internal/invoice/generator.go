package invoice

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/nurpe/ringo-orders/internal/model"
)

// Generator renders an order invoice from the persisted price snapshot.
// Every figure on the page is printed from the snapshot strings as stored;
// nothing is recalculated here.
type Generator struct {
	fontName string
}

func NewGenerator() *Generator {
	return &Generator{fontName: "Helvetica"}
}

func (g *Generator) Generate(doc model.InvoiceDocument) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pdf.SetFont(g.fontName, "B", 16)
	pdf.CellFormat(0, 10, "INVOICE", "", 1, "C", false, 0, "")

	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, fmt.Sprintf("Order %s", doc.Order.Number), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Period: %s - %s", formatDate(doc.Order.StartDT), formatEndDate(doc.Order.EndDT)), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	if doc.Client != nil {
		addClientBlock(pdf, g.fontName, *doc.Client)
		pdf.Ln(2)
	}
	if doc.Order.Address != "" {
		pdf.SetFont(g.fontName, "", 10)
		pdf.MultiCell(0, 5, fmt.Sprintf("Work site: %s", doc.Order.Address), "", "L", false)
		pdf.Ln(2)
	}

	headers := []string{"Description", "Qty", "Unit price", "Discount", "Tax", "Line total"}
	colWidths := []float64{70, 18, 25, 22, 20, 25}
	drawTableRow(pdf, g.fontName, headers, colWidths, true)

	for _, pos := range doc.Snapshot.Positions {
		name := pos.Name
		if pos.Notes != "" {
			name = fmt.Sprintf("%s (%s)", pos.Name, pos.Notes)
		}
		row := []string{
			name,
			pos.Quantity,
			pos.UnitPrice,
			pos.Discount,
			pos.TaxAmount,
			pos.LineTotal,
		}
		drawTableRow(pdf, g.fontName, row, colWidths, false)
	}

	pdf.Ln(4)
	summary := doc.Snapshot.Summary
	addSummaryLine(pdf, g.fontName, "Subtotal", summary.Subtotal, false)
	addSummaryLine(pdf, g.fontName, "Tax", summary.TaxTotal, false)
	addSummaryLine(pdf, g.fontName, "Discounts", summary.DiscountTotal, false)
	if summary.LatePenalty != "" && summary.LatePenalty != "0.00" {
		addSummaryLine(pdf, g.fontName, "Incl. late penalty", summary.LatePenalty, false)
	}
	addSummaryLine(pdf, g.fontName, "Total", summary.Total, true)
	addSummaryLine(pdf, g.fontName, "Prepaid", summary.Prepayment, false)
	addSummaryLine(pdf, g.fontName, "Balance due", summary.Balance, true)

	pdf.Ln(6)
	pdf.SetFont(g.fontName, "I", 8)
	pdf.CellFormat(0, 5, fmt.Sprintf("Priced at %s", doc.Snapshot.GeneratedAt.Format("2006-01-02 15:04 MST")), "", 1, "L", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func addClientBlock(pdf *gofpdf.Fpdf, fontName string, client model.Client) {
	pdf.SetFont(fontName, "B", 11)
	pdf.CellFormat(0, 6, "Billed to", "", 1, "L", false, 0, "")
	pdf.SetFont(fontName, "", 10)
	lines := []string{
		client.Name,
		fmt.Sprintf("Phone: %s", safeValue(client.Phone)),
		fmt.Sprintf("Email: %s", safeValue(client.Email)),
	}
	for _, line := range lines {
		pdf.MultiCell(0, 5, line, "", "L", false)
	}
}

func addSummaryLine(pdf *gofpdf.Fpdf, fontName, label, value string, bold bool) {
	style := ""
	if bold {
		style = "B"
	}
	pdf.SetFont(fontName, style, 11)
	pdf.CellFormat(0, 6, fmt.Sprintf("%s: %s", label, value), "", 1, "R", false, 0, "")
}

func drawTableRow(pdf *gofpdf.Fpdf, fontName string, cols []string, widths []float64, header bool) {
	style := ""
	if header {
		style = "B"
	}
	pdf.SetFont(fontName, style, 9)
	for i, col := range cols {
		align := "L"
		if i > 0 {
			align = "R"
		}
		pdf.CellFormat(widths[i], 8, col, "1", 0, align, false, 0, "")
	}
	pdf.Ln(-1)
}

func safeValue(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("02.01.2006 15:04")
}

func formatEndDate(t *time.Time) string {
	if t == nil {
		return "open"
	}
	return formatDate(*t)
}
