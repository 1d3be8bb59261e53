package reports

import (
	"fmt"

	"github.com/nimasrn/debt-ledger/internal/model"
	"github.com/xuri/excelize/v2"
)

const (
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ContentTypePDF  = "application/pdf"
)

const dateLayout = "2006-01-02"

type sheet struct {
	name    string
	headers []string
	widths  []float64
	rows    [][]any
}

func render(s sheet) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", s.name); err != nil {
		return nil, err
	}

	bold, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})
	if err != nil {
		return nil, err
	}

	if err := f.SetSheetRow(s.name, "A1", &s.headers); err != nil {
		return nil, err
	}
	last, err := excelize.CoordinatesToCellName(len(s.headers), 1)
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(s.name, "A1", last, bold); err != nil {
		return nil, err
	}

	for i, row := range s.rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(s.name, cell, &row); err != nil {
			return nil, err
		}
	}

	for i, w := range s.widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetColWidth(s.name, col, col, w); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func SummaryWorkbook(s *model.Summary) ([]byte, error) {
	return render(sheet{
		name:    "Summary",
		headers: []string{"Metric", "Value"},
		widths:  []float64{24, 18},
		rows: [][]any{
			{"Total debtors", s.TotalDebtors},
			{"Active debtors", s.ActiveDebtors},
			{"Recovered debtors", s.RecoveredDebtors},
			{"Deleted debtors", s.DeletedDebtors},
			{"Total debit", s.TotalDebit.InexactFloat64()},
			{"Total credit", s.TotalCredit.InexactFloat64()},
			{"Current debt", s.CurrentDebt.InexactFloat64()},
		},
	})
}

func DebtorsWorkbook(debtors []*model.Debtor) ([]byte, error) {
	rows := make([][]any, 0, len(debtors))
	for _, d := range debtors {
		rows = append(rows, []any{
			d.DebtorID,
			d.Name,
			d.Address,
			d.Mobile,
			d.InitialDebt.InexactFloat64(),
			d.CurrentDebt.InexactFloat64(),
			d.DebtDate.Format(dateLayout),
			d.DebtPurpose,
			string(d.PaymentMethod),
			d.VoucherChequeNo,
			string(d.Status),
		})
	}
	return render(sheet{
		name: "Debtors",
		headers: []string{
			"Debtor ID", "Name", "Address", "Mobile", "Initial Debt", "Current Debt",
			"Debt Date", "Purpose", "Payment Method", "Voucher/Cheque No", "Status",
		},
		widths: []float64{12, 24, 24, 14, 14, 14, 12, 24, 16, 18, 12},
		rows:   rows,
	})
}

func TransactionsWorkbook(txns []*model.Transaction) ([]byte, error) {
	rows := make([][]any, 0, len(txns))
	for _, t := range txns {
		rows = append(rows, []any{
			t.TranID,
			t.DebtorRef,
			t.TranDate.Format("2006-01-02 15:04"),
			string(t.Type),
			t.DebitAmount.InexactFloat64(),
			t.CreditAmount.InexactFloat64(),
			t.CurrentDebt.InexactFloat64(),
			string(t.Medium),
			t.Description,
		})
	}
	return render(sheet{
		name:    "Transactions",
		headers: []string{"Transaction ID", "Debtor ID", "Date", "Type", "Debit", "Credit", "Balance", "Medium", "Description"},
		widths:  []float64{14, 12, 18, 10, 12, 12, 12, 16, 40},
		rows:    rows,
	})
}

func UsersWorkbook(users []*model.UserOverview) ([]byte, error) {
	rows := make([][]any, 0, len(users))
	for _, u := range users {
		mobile := ""
		if u.Mobile != nil {
			mobile = *u.Mobile
		}
		rows = append(rows, []any{u.ID, u.Username, u.Email, mobile, string(u.Role), u.DebtorCount, u.CreatedAt.Format(dateLayout)})
	}
	return render(sheet{
		name:    "Users",
		headers: []string{"ID", "Username", "Email", "Mobile", "Role", "Debtors", "Joined"},
		widths:  []float64{8, 20, 28, 14, 10, 10, 12},
		rows:    rows,
	})
}
