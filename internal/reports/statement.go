package reports

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf/v2"
	"github.com/nimasrn/debt-ledger/internal/model"
	"github.com/shopspring/decimal"
)

func money(d decimal.Decimal) string {
	return "Rs. " + d.StringFixed(2)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

// StatementPDF renders the ledger of one debtor.
func StatementPDF(detail *model.DebtorDetail, generatedAt time.Time) ([]byte, error) {
	d := detail.Debtor

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(190, 10, "Debtor Statement", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(190, 6, fmt.Sprintf("Generated: %s", generatedAt.Format("02-Jan-2006 03:04 PM")), "", 1, "C", false, 0, "")
	pdf.Ln(5)

	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(190, 8, "Debtor Information", "1", 1, "L", true, 0, "")

	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(95, 7, fmt.Sprintf("Debtor ID: %s", d.DebtorID), "LB", 0, "L", false, 0, "")
	pdf.CellFormat(95, 7, fmt.Sprintf("Name: %s", d.Name), "RB", 1, "L", false, 0, "")
	pdf.CellFormat(95, 7, fmt.Sprintf("Mobile: %s", d.Mobile), "LB", 0, "L", false, 0, "")
	pdf.CellFormat(95, 7, fmt.Sprintf("Address: %s", d.Address), "RB", 1, "L", false, 0, "")
	pdf.CellFormat(95, 7, fmt.Sprintf("Debt date: %s", d.DebtDate.Format(dateLayout)), "LB", 0, "L", false, 0, "")
	pdf.CellFormat(95, 7, fmt.Sprintf("Status: %s", d.Status), "RB", 1, "L", false, 0, "")
	pdf.Ln(5)

	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(190, 8, "Transactions", "1", 1, "L", true, 0, "")

	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(200, 200, 200)
	pdf.CellFormat(25, 7, "Txn ID", "1", 0, "C", true, 0, "")
	pdf.CellFormat(25, 7, "Date", "1", 0, "C", true, 0, "")
	pdf.CellFormat(30, 7, "Debit", "1", 0, "C", true, 0, "")
	pdf.CellFormat(30, 7, "Credit", "1", 0, "C", true, 0, "")
	pdf.CellFormat(30, 7, "Balance", "1", 0, "C", true, 0, "")
	pdf.CellFormat(50, 7, "Description", "1", 1, "C", true, 0, "")

	totalDebit, totalCredit := decimal.Zero, decimal.Zero
	pdf.SetFont("Arial", "", 9)
	for _, t := range detail.Transactions {
		totalDebit = totalDebit.Add(t.DebitAmount)
		totalCredit = totalCredit.Add(t.CreditAmount)

		pdf.CellFormat(25, 6, t.TranID, "1", 0, "C", false, 0, "")
		pdf.CellFormat(25, 6, t.TranDate.Format("02-Jan-2006"), "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 6, money(t.DebitAmount), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 6, money(t.CreditAmount), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 6, money(t.CurrentDebt), "1", 0, "R", false, 0, "")
		pdf.CellFormat(50, 6, truncate(t.Description, 30), "1", 1, "L", false, 0, "")
	}
	pdf.Ln(5)

	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(63, 8, "Total debit: "+money(totalDebit), "1", 0, "C", false, 0, "")
	pdf.CellFormat(63, 8, "Total credit: "+money(totalCredit), "1", 0, "C", false, 0, "")
	pdf.CellFormat(64, 8, "Entries: "+fmt.Sprint(len(detail.Transactions)), "1", 1, "C", false, 0, "")

	if d.CurrentDebt.IsPositive() {
		pdf.SetFillColor(255, 200, 200)
	} else {
		pdf.SetFillColor(200, 255, 200)
	}
	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(190, 10, "Outstanding: "+money(d.CurrentDebt), "1", 1, "C", true, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
