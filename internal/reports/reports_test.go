package reports

import (
	"bytes"
	"testing"
	"time"

	"github.com/nimasrn/debt-ledger/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func openWorkbook(t *testing.T, data []byte) *excelize.File {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func sampleDebtor() *model.Debtor {
	return &model.Debtor{
		DebtorID:      "D00001",
		Name:          "Sita Sharma",
		Address:       "Pokhara",
		Mobile:        "9800000001",
		InitialDebt:   decimal.NewFromInt(1000),
		CurrentDebt:   decimal.NewFromInt(600),
		DebtDate:      time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		DebtPurpose:   "groceries",
		PaymentMethod: model.MediumCash,
		Status:        model.DebtorActive,
	}
}

func sampleTransactions() []*model.Transaction {
	at := time.Date(2024, 5, 2, 9, 30, 0, 0, time.UTC)
	return []*model.Transaction{
		{TranID: "Txn00001", DebtorRef: "D00001", Type: model.TranDebit, DebitAmount: decimal.NewFromInt(1000), CurrentDebt: decimal.NewFromInt(1000), TranDate: at, Description: "Opening balance: groceries"},
		{TranID: "Txn00002", DebtorRef: "D00001", Type: model.TranCredit, CreditAmount: decimal.NewFromInt(400), CurrentDebt: decimal.NewFromInt(600), TranDate: at.Add(time.Hour), Medium: model.MediumEsewa},
	}
}

func TestSummaryWorkbook(t *testing.T) {
	data, err := SummaryWorkbook(&model.Summary{
		TotalDebtors:  2,
		ActiveDebtors: 1,
		TotalDebit:    decimal.NewFromInt(1200),
		TotalCredit:   decimal.NewFromInt(600),
		CurrentDebt:   decimal.NewFromInt(600),
	})
	require.NoError(t, err)

	f := openWorkbook(t, data)
	rows, err := f.GetRows("Summary")
	require.NoError(t, err)
	require.Len(t, rows, 8)
	assert.Equal(t, []string{"Metric", "Value"}, rows[0])
	assert.Equal(t, []string{"Current debt", "600"}, rows[7])
}

func TestDebtorsWorkbook(t *testing.T) {
	data, err := DebtorsWorkbook([]*model.Debtor{sampleDebtor()})
	require.NoError(t, err)

	f := openWorkbook(t, data)
	rows, err := f.GetRows("Debtors")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Debtor ID", rows[0][0])
	assert.Equal(t, "D00001", rows[1][0])
	assert.Equal(t, "600", rows[1][5])
	assert.Equal(t, "2024-05-01", rows[1][6])
}

func TestTransactionsWorkbook(t *testing.T) {
	data, err := TransactionsWorkbook(sampleTransactions())
	require.NoError(t, err)

	f := openWorkbook(t, data)
	rows, err := f.GetRows("Transactions")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Txn00002", rows[2][0])
	assert.Equal(t, "credit", rows[2][3])
}

func TestUsersWorkbook(t *testing.T) {
	mobile := "9811111111"
	data, err := UsersWorkbook([]*model.UserOverview{
		{User: &model.User{ID: 1, Username: "hari", Email: "hari@example.com", Mobile: &mobile, Role: model.RoleUser}, DebtorCount: 3},
		{User: &model.User{ID: 2, Username: "root", Role: model.RoleAdmin}},
	})
	require.NoError(t, err)

	f := openWorkbook(t, data)
	rows, err := f.GetRows("Users")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "9811111111", rows[1][3])
	assert.Equal(t, "3", rows[1][5])
}

func TestStatementPDF(t *testing.T) {
	data, err := StatementPDF(&model.DebtorDetail{Debtor: sampleDebtor(), Transactions: sampleTransactions()}, time.Now())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
}
