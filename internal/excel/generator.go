package excel

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/yowbhergie2/fleet-management-system-sub000/internal/model"
)

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// Generate renders a contract ledger statement with one row per mutation.
func (g *Generator) Generate(contract model.Contract, rows []model.ContractTransaction) ([]byte, error) {
	file := excelize.NewFile()

	sheet := "Statement"
	file.SetSheetName("Sheet1", sheet)

	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	set("A1", "Contract Number")
	set("B1", contract.ContractNumber)
	set("A2", "Supplier")
	set("B2", contract.SupplierID.String())
	set("A3", "Status")
	set("B3", string(contract.Status))
	set("A4", "Total Amount")
	set("B4", formatAmount(contract.TotalAmount))
	set("A5", "Remaining Balance")
	set("B5", formatAmount(contract.RemainingBalance))
	set("A6", "Exhausted At")
	set("B6", formatDatePtr(contract.ExhaustedAt))

	tableRow := 8
	headers := []string{"Date", "Type", "Amount", "Balance Before", "Balance After", "Requisition", "Remarks"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, tableRow)
		set(cell, header)
	}

	for i, row := range rows {
		r := tableRow + 1 + i
		set(fmt.Sprintf("A%d", r), formatDateTime(row.CreatedAt))
		set(fmt.Sprintf("B%d", r), string(row.Type))
		set(fmt.Sprintf("C%d", r), formatAmount(row.Amount))
		set(fmt.Sprintf("D%d", r), formatAmount(row.BalanceBefore))
		set(fmt.Sprintf("E%d", r), formatAmount(row.BalanceAfter))
		if row.RequisitionID != nil {
			set(fmt.Sprintf("F%d", r), row.RequisitionID.String())
		}
		set(fmt.Sprintf("G%d", r), row.Remarks)
	}

	_ = file.SetColWidth(sheet, "A", "A", 20)
	_ = file.SetColWidth(sheet, "B", "B", 14)
	_ = file.SetColWidth(sheet, "C", "E", 16)
	_ = file.SetColWidth(sheet, "F", "F", 38)
	_ = file.SetColWidth(sheet, "G", "G", 40)

	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func formatAmount(value decimal.Decimal) string {
	return value.StringFixed(2)
}

func formatDateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02 15:04:05")
}

func formatDatePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02 15:04:05")
}
