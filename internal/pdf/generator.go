package pdf

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"

	"github.com/yowbhergie2/fleet-management-system-sub000/internal/model"
)

type Generator struct {
	fontName string
}

func NewGenerator() (*Generator, error) {
	return &Generator{fontName: "Helvetica"}, nil
}

// Generate renders the Requisition and Issue Slip for a finalized snapshot.
func (g *Generator) Generate(slip model.RequisitionSlip) ([]byte, error) {
	req := slip.Requisition
	if req.RISNumber == nil {
		return nil, fmt.Errorf("slip requires an issued RIS number")
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(18, 18, 18)
	pdf.AddPage()

	pdf.SetFont(g.fontName, "B", 14)
	pdf.CellFormat(0, 10, "Requisition and Issue Slip", "", 1, "C", false, 0, "")

	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, fmt.Sprintf("RIS No. %s", *req.RISNumber), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Reference No. %d", req.RefNumber), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 8, "Request", "", 1, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 11)
	labelRow(pdf, g.fontName, "Purpose", safeValue(req.Purpose))
	labelRow(pdf, g.fontName, "Destination", safeValue(req.Destination))
	labelRow(pdf, g.fontName, "Vehicle", req.VehicleID.String())
	labelRow(pdf, g.fontName, "Driver", req.DriverID.String())
	pdf.Ln(2)

	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 8, "Issuance", "", 1, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 10)

	headers := []string{"Requested (L)", "Validated (L)", "Price at Issuance", "Valid Until"}
	widths := []float64{42, 42, 45, 45}
	drawTableRow(pdf, g.fontName, headers, widths, true)
	drawTableRow(pdf, g.fontName, []string{
		formatAmount(req.RequestedLiters, 3),
		formatAmount(req.ValidatedLiters, 3),
		formatAmount(req.PriceAtIssuance, 4),
		formatDatePtr(req.ValidUntil),
	}, widths, false)
	pdf.Ln(2)

	if slip.Contract != nil {
		pdf.SetFont(g.fontName, "B", 12)
		pdf.CellFormat(0, 8, "Contract", "", 1, "L", false, 0, "")
		pdf.SetFont(g.fontName, "", 11)
		labelRow(pdf, g.fontName, "Contract No.", slip.Contract.ContractNumber)
		labelRow(pdf, g.fontName, "Supplier", slip.Contract.SupplierID.String())
		labelRow(pdf, g.fontName, "Remaining Balance", formatAmount(slip.Contract.RemainingBalance, 2))
		pdf.Ln(2)
	}

	if req.VerifiedAt != nil {
		pdf.SetFont(g.fontName, "B", 12)
		pdf.CellFormat(0, 8, "Purchase", "", 1, "L", false, 0, "")
		pdf.SetFont(g.fontName, "", 11)
		labelRow(pdf, g.fontName, "Actual Liters", formatAmount(req.ActualLiters, 3))
		labelRow(pdf, g.fontName, "Price at Purchase", formatAmount(req.PriceAtPurchase, 4))
		labelRow(pdf, g.fontName, "Total Amount", formatAmount(req.TotalAmount, 2))
		if req.InvoiceNumber != nil {
			labelRow(pdf, g.fontName, "Invoice No.", *req.InvoiceNumber)
		}
		labelRow(pdf, g.fontName, "Invoice Date", formatDatePtr(req.InvoiceDate))
		pdf.Ln(2)
	}

	pdf.Ln(4)
	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 8, "Signatures", "", 1, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 11)
	signatureBlock(pdf, g.fontName, "Requested by", formatDate(req.CreatedAt))
	signatureBlock(pdf, g.fontName, "Validated by", formatDatePtr(req.ValidatedAt))
	signatureBlock(pdf, g.fontName, "Issued by", formatDatePtr(req.IssuedAt))
	signatureBlock(pdf, g.fontName, "Verified by", formatDatePtr(req.VerifiedAt))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func labelRow(pdf *gofpdf.Fpdf, fontName, label, value string) {
	pdf.SetFont(fontName, "B", 10)
	pdf.CellFormat(45, 6, label, "", 0, "L", false, 0, "")
	pdf.SetFont(fontName, "", 10)
	pdf.MultiCell(0, 6, value, "", "L", false)
}

func drawTableRow(pdf *gofpdf.Fpdf, fontName string, cols []string, widths []float64, header bool) {
	style := ""
	if header {
		style = "B"
	}
	pdf.SetFont(fontName, style, 10)
	for i, col := range cols {
		align := "R"
		if header {
			align = "C"
		}
		pdf.CellFormat(widths[i], 8, col, "1", 0, align, false, 0, "")
	}
	pdf.Ln(-1)
}

func signatureBlock(pdf *gofpdf.Fpdf, fontName, label, date string) {
	pdf.SetFont(fontName, "", 11)
	pdf.CellFormat(0, 6, fmt.Sprintf("%s: ______________________ Date: %s", label, date), "", 1, "L", false, 0, "")
}

func safeValue(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}

func formatAmount(value decimal.Decimal, precision int32) string {
	return value.StringFixed(precision)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02")
}

func formatDatePtr(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return formatDate(*t)
}
