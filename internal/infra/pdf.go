package infra

// pdf.go — receipt rendering with go-pdf/fpdf. Produces A7-size thermal
// receipt-style PDFs: store header, sale number and timestamp, item table
// (snapshot name, qty, line total), tax/discount lines, bold grand total,
// tender breakdown with change, void watermark line for voided sales.
//
// The output file is saved to storagePath/receipt_{number}.pdf.

import (
	"fmt"
	"os"
	"path/filepath"

	"tallypos/internal/model"

	"github.com/go-pdf/fpdf"
)

// GenerateReceiptPDF renders a receipt for a sale and returns the absolute
// path of the written file. storagePath is created if it does not exist.
// Item names and totals come from the sale's own snapshot columns, so the
// receipt stays correct even after the catalog changes.
func GenerateReceiptPDF(sale *model.SaleTransaction, storeName, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	fileName := fmt.Sprintf("receipt_%s.pdf", sale.Number)
	filePath := filepath.Join(storagePath, fileName)

	// A7 ≈ 74mm × 105mm, close to 80mm thermal receipt paper.
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: 74, Ht: 105},
	})
	pdf.SetMargins(4, 4, 4)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 8 // total margins = 8mm

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(contentW, 7, storeName, "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(contentW, 5, "Sales Receipt", "", 1, "C", false, 0, "")
	pdf.Ln(2)

	// ── Sale info ─────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 8)
	pdf.CellFormat(contentW, 5, sale.Number, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 7)
	pdf.CellFormat(contentW, 4, sale.CreatedAt.Format("02 Jan 2006  15:04"), "", 1, "L", false, 0, "")
	if sale.Status == model.SaleStatusVoided {
		pdf.SetFont("Helvetica", "B", 8)
		pdf.CellFormat(contentW, 5, "*** VOIDED ***", "", 1, "C", false, 0, "")
	}
	pdf.Ln(2)

	pdf.Line(4, pdf.GetY(), pageW-4, pdf.GetY())
	pdf.Ln(2)

	// ── Items ─────────────────────────────────────────────────────────────────
	col1 := contentW * 0.52 // product name
	col2 := contentW * 0.16 // qty
	col3 := contentW * 0.32 // line total

	pdf.SetFont("Helvetica", "B", 7)
	pdf.CellFormat(col1, 5, "Item", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 5, "Qty", "B", 0, "C", false, 0, "")
	pdf.CellFormat(col3, 5, "Total", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	for _, item := range sale.Items {
		name := item.Name
		// Truncate on runes: a byte slice could split a multi-byte character,
		// and the core fonts only cover cp1252 anyway.
		if r := []rune(name); len(r) > 22 {
			name = string(r[:19]) + "..."
		}
		pdf.CellFormat(col1, 5, name, "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 5, fmt.Sprintf("x%d", item.Quantity), "", 0, "C", false, 0, "")
		pdf.CellFormat(col3, 5, "$"+item.LineTotal.StringFixed(2), "", 1, "R", false, 0, "")
	}

	pdf.Ln(2)
	pdf.Line(4, pdf.GetY(), pageW-4, pdf.GetY())
	pdf.Ln(2)

	// ── Totals ────────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "", 7)
	pdf.CellFormat(col1+col2, 4, "Subtotal:", "", 0, "L", false, 0, "")
	pdf.CellFormat(col3, 4, "$"+sale.Subtotal.StringFixed(2), "", 1, "R", false, 0, "")
	if !sale.DiscountTotal.IsZero() {
		pdf.CellFormat(col1+col2, 4, "Discount:", "", 0, "L", false, 0, "")
		pdf.CellFormat(col3, 4, "-$"+sale.DiscountTotal.StringFixed(2), "", 1, "R", false, 0, "")
	}
	pdf.CellFormat(col1+col2, 4, "Tax:", "", 0, "L", false, 0, "")
	pdf.CellFormat(col3, 4, "$"+sale.TaxTotal.StringFixed(2), "", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(col1+col2, 6, "TOTAL:", "", 0, "L", false, 0, "")
	pdf.CellFormat(col3, 6, "$"+sale.GrandTotal.StringFixed(2), "", 1, "R", false, 0, "")

	// ── Tenders ───────────────────────────────────────────────────────────────
	pdf.Ln(2)
	pdf.SetFont("Helvetica", "", 7)
	for _, p := range sale.Payments {
		label := "Paid (" + p.Method + "):"
		pdf.CellFormat(col1+col2, 4, label, "", 0, "L", false, 0, "")
		pdf.CellFormat(col3, 4, "$"+p.Amount.StringFixed(2), "", 1, "R", false, 0, "")
		if p.ChangeGiven != nil && !p.ChangeGiven.IsZero() {
			pdf.CellFormat(col1+col2, 4, "Change:", "", 0, "L", false, 0, "")
			pdf.CellFormat(col3, 4, "$"+p.ChangeGiven.StringFixed(2), "", 1, "R", false, 0, "")
		}
	}

	// ── Footer ────────────────────────────────────────────────────────────────
	pdf.Ln(3)
	pdf.SetFont("Helvetica", "I", 7)
	pdf.CellFormat(contentW, 4, "Thank you for shopping with us", "", 1, "C", false, 0, "")

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}

	return filePath, nil
}
