package export

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/nurpe/ringo-orders/internal/model"
)

// Generator builds the orders period workbook. Amounts come from the
// persisted order totals, never from a fresh pricing run.
type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

func (g *Generator) Generate(export model.OrdersExport) ([]byte, error) {
	file := excelize.NewFile()

	summarySheet := "Summary"
	file.SetSheetName("Sheet1", summarySheet)
	if err := g.writeSummary(file, summarySheet, export); err != nil {
		return nil, err
	}

	ordersSheet := "Orders"
	file.NewSheet(ordersSheet)
	if err := g.writeOrders(file, ordersSheet, export); err != nil {
		return nil, err
	}

	file.SetActiveSheet(0)
	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *Generator) writeSummary(file *excelize.File, sheet string, export model.OrdersExport) error {
	total := decimal.Zero
	prepaid := decimal.Zero
	completed := 0
	for _, row := range export.Rows {
		total = total.Add(row.TotalAmount)
		prepaid = prepaid.Add(row.Prepayment)
		if row.Status == model.OrderStatusCompleted {
			completed++
		}
	}

	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	set("A1", "Period start")
	set("B1", formatDate(export.PeriodStart))
	set("A2", "Period end")
	set("B2", formatDate(export.PeriodEnd))
	set("A3", "Orders")
	set("B3", len(export.Rows))
	set("A4", "Completed")
	set("B4", completed)
	set("A5", "Total amount")
	set("B5", total.StringFixed(2))
	set("A6", "Prepaid")
	set("B6", prepaid.StringFixed(2))

	_ = file.SetColWidth(sheet, "A", "A", 20)
	_ = file.SetColWidth(sheet, "B", "B", 20)
	return nil
}

func (g *Generator) writeOrders(file *excelize.File, sheet string, export model.OrdersExport) error {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	headers := []string{
		"Number",
		"Client",
		"Status",
		"Start",
		"End",
		"Prepayment",
		"Total",
	}
	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		set(cell, header)
	}

	for i, row := range export.Rows {
		values := []interface{}{
			row.Number,
			row.ClientName,
			string(row.Status),
			formatDateTime(row.StartDT),
			formatEnd(row.EndDT),
			row.Prepayment.StringFixed(2),
			row.TotalAmount.StringFixed(2),
		}
		for j, value := range values {
			cell, err := excelize.CoordinatesToCellName(j+1, i+2)
			if err != nil {
				return err
			}
			set(cell, value)
		}
	}

	_ = file.SetColWidth(sheet, "A", "B", 24)
	_ = file.SetColWidth(sheet, "C", "E", 18)
	_ = file.SetColWidth(sheet, "F", "G", 14)
	return nil
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("02.01.2006")
}

func formatDateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("02.01.2006 15:04")
}

func formatEnd(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatDateTime(*t)
}
