package infra

// receipt_pdf.go: receipt generation using go-pdf/fpdf.
// Produces an 80mm thermal-style receipt with:
//   - Organization header
//   - Transaction number, terminal and timestamp
//   - Item table (snapshot name, quantity, line total)
//   - Subtotal / tax / discount / total
//   - Payment breakdown with change given
//
// The output file is saved to storagePath/receipt_{transaction_number}.pdf.

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/agastya71/mysl-pos-project-sub006/internal/model"

	"github.com/go-pdf/fpdf"
)

const receiptWidthMM = 80

// GenerateReceiptPDF renders a receipt for a completed (or voided) transaction.
// txn must have Items and Payments loaded. Returns the path of the written file.
func GenerateReceiptPDF(txn *model.Transaction, orgName, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0o755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	fileName := fmt.Sprintf("receipt_%s.pdf", txn.TransactionNumber)
	filePath := filepath.Join(storagePath, fileName)

	// Height grows with the number of lines so long sales do not spill onto a second page.
	height := 110.0 + 5.0*float64(len(txn.Items)) + 4.0*float64(len(txn.Payments))
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: receiptWidthMM, Ht: height},
	})
	pdf.SetMargins(4, 4, 4)
	pdf.SetAutoPageBreak(false, 4)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 8

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(contentW, 7, tr(orgName), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(contentW, 5, "Sales Receipt", "", 1, "C", false, 0, "")
	if txn.Status == model.TransactionVoided {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(contentW, 6, "*** VOIDED ***", "", 1, "C", false, 0, "")
	}
	pdf.Ln(2)

	// ── Transaction info ─────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 8)
	pdf.CellFormat(contentW, 5, "Transaction "+txn.TransactionNumber, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 7)
	pdf.CellFormat(contentW, 4, txn.TransactionDate.Format("01/02/2006  15:04"), "", 1, "L", false, 0, "")
	if txn.Cashier != nil {
		pdf.CellFormat(contentW, 4, tr("Cashier: "+txn.Cashier.FullName), "", 1, "L", false, 0, "")
	}
	pdf.Ln(2)
	pdf.Line(4, pdf.GetY(), pageW-4, pdf.GetY())
	pdf.Ln(2)

	// ── Items ────────────────────────────────────────────────────────────────
	col1 := contentW * 0.56
	col2 := contentW * 0.14
	col3 := contentW * 0.30

	pdf.SetFont("Helvetica", "B", 7)
	pdf.CellFormat(col1, 5, "Item", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 5, "Qty", "B", 0, "C", false, 0, "")
	pdf.CellFormat(col3, 5, "Total", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	for _, item := range txn.Items {
		pdf.CellFormat(col1, 5, tr(truncate(item.ProductName, 26)), "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 5, fmt.Sprintf("x%d", item.Quantity), "", 0, "C", false, 0, "")
		pdf.CellFormat(col3, 5, "$"+item.LineTotal.StringFixed(2), "", 1, "R", false, 0, "")
	}

	pdf.Ln(2)
	pdf.Line(4, pdf.GetY(), pageW-4, pdf.GetY())
	pdf.Ln(2)

	// ── Totals ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "", 7)
	totalLine := func(label, value string) {
		pdf.CellFormat(col1+col2, 4, label, "", 0, "L", false, 0, "")
		pdf.CellFormat(col3, 4, value, "", 1, "R", false, 0, "")
	}
	totalLine("Subtotal:", "$"+txn.Subtotal.StringFixed(2))
	totalLine("Tax:", "$"+txn.TaxAmount.StringFixed(2))
	if !txn.DiscountAmount.IsZero() {
		totalLine("Discount:", "-$"+txn.DiscountAmount.StringFixed(2))
	}
	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(col1+col2, 6, "TOTAL:", "", 0, "L", false, 0, "")
	pdf.CellFormat(col3, 6, "$"+txn.TotalAmount.StringFixed(2), "", 1, "R", false, 0, "")

	// ── Payments ─────────────────────────────────────────────────────────────
	pdf.Ln(2)
	pdf.SetFont("Helvetica", "", 7)
	for _, p := range txn.Payments {
		d := p.Details.Data()
		label := paymentLabel(p.PaymentMethod)
		if d.CardLast4 != "" {
			label += " ****" + d.CardLast4
		}
		totalLine(label+":", "$"+p.Amount.StringFixed(2))
		if d.ChangeGiven != nil && d.ChangeGiven.IsPositive() {
			totalLine("Change:", "$"+d.ChangeGiven.StringFixed(2))
		}
		if d.BalanceAfter != nil && p.PaymentMethod == model.PaymentGiftCard {
			totalLine("Gift card balance:", "$"+d.BalanceAfter.StringFixed(2))
		}
	}

	// ── Footer ───────────────────────────────────────────────────────────────
	pdf.Ln(3)
	pdf.SetFont("Helvetica", "I", 7)
	pdf.CellFormat(contentW, 4, "Thank you for supporting our mission!", "", 1, "C", false, 0, "")

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}
	return filePath, nil
}

func paymentLabel(m model.PaymentMethod) string {
	words := strings.Split(string(m), "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "..."
}
