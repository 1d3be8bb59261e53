package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/nimasrn/debt-ledger/internal/model"
	"github.com/nimasrn/debt-ledger/internal/reports"
	"github.com/nimasrn/debt-ledger/internal/services"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleDetail() *model.DebtorDetail {
	return &model.DebtorDetail{
		Debtor: &model.Debtor{
			DebtorID:    "D00001",
			Name:        "Ram",
			Mobile:      "9800000001",
			InitialDebt: decimal.NewFromInt(1000),
			CurrentDebt: decimal.NewFromInt(600),
			Status:      model.DebtorActive,
			DebtDate:    time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
		},
		Transactions: []*model.Transaction{
			{TranID: "Txn00001", Type: model.TranDebit, Amount: decimal.NewFromInt(1000), CurrentDebt: decimal.NewFromInt(1000)},
			{TranID: "Txn00002", Type: model.TranCredit, Amount: decimal.NewFromInt(400), CurrentDebt: decimal.NewFromInt(600)},
		},
	}
}

func TestReportHandler_Dashboard(t *testing.T) {
	svc := new(MockReportService)
	h := NewReportHandler(svc)
	svc.On("Summary", mock.Anything, alice).Return(&model.Summary{
		TotalDebtors: 3, ActiveDebtors: 2, RecoveredDebtors: 1,
		TotalDebit: decimal.NewFromInt(1500), TotalCredit: decimal.NewFromInt(500), CurrentDebt: decimal.NewFromInt(1000),
	}, nil)

	ctx := asUser(setupTestContext("GET", "/api/v1/dashboard", nil), alice)
	h.Dashboard(ctx)

	assert.Equal(t, 200, ctx.Response.StatusCode())
	var resp model.Summary
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &resp))
	assert.Equal(t, int64(3), resp.TotalDebtors)
	assert.True(t, resp.CurrentDebt.Equal(decimal.NewFromInt(1000)))
}

func TestReportHandler_Workbooks(t *testing.T) {
	svc := new(MockReportService)
	h := NewReportHandler(svc)
	svc.On("Summary", mock.Anything, alice).Return(&model.Summary{}, nil)
	svc.On("Debtors", mock.Anything, alice).Return([]*model.Debtor{sampleDetail().Debtor}, nil)
	svc.On("Statement", mock.Anything, alice, "D00001").Return(sampleDetail(), nil)

	ctx := asUser(setupTestContext("GET", "/api/v1/reports/summary.xlsx", nil), alice)
	h.SummaryXLSX(ctx)
	assert.Equal(t, 200, ctx.Response.StatusCode())
	assert.Equal(t, reports.ContentTypeXLSX, string(ctx.Response.Header.ContentType()))
	assert.Contains(t, string(ctx.Response.Header.Peek("Content-Disposition")), "summary.xlsx")

	ctx = asUser(setupTestContext("GET", "/api/v1/reports/debtors.xlsx", nil), alice)
	h.DebtorsXLSX(ctx)
	assert.Equal(t, 200, ctx.Response.StatusCode())
	f, err := excelize.OpenReader(bytes.NewReader(ctx.Response.Body()))
	require.NoError(t, err)
	rows, err := f.GetRows(f.GetSheetName(0))
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	ctx = asUser(setupTestContext("GET", "/api/v1/debtors/D00001/transactions.xlsx", nil), alice)
	ctx.SetUserValue("debtor_id", "D00001")
	h.DebtorTransactionsXLSX(ctx)
	assert.Equal(t, 200, ctx.Response.StatusCode())
	assert.Contains(t, string(ctx.Response.Header.Peek("Content-Disposition")), "D00001_transactions.xlsx")

	ctx = asUser(setupTestContext("GET", "/api/v1/debtors/D00001/statement.pdf", nil), alice)
	ctx.SetUserValue("debtor_id", "D00001")
	h.StatementPDF(ctx)
	assert.Equal(t, 200, ctx.Response.StatusCode())
	assert.Equal(t, reports.ContentTypePDF, string(ctx.Response.Header.ContentType()))
	assert.True(t, bytes.HasPrefix(ctx.Response.Body(), []byte("%PDF")))
}

func TestReportHandler_StatementNotFound(t *testing.T) {
	svc := new(MockReportService)
	h := NewReportHandler(svc)
	svc.On("Statement", mock.Anything, alice, "D00009").Return(nil, services.ErrNotFound)

	ctx := asUser(setupTestContext("GET", "/api/v1/debtors/D00009/statement.pdf", nil), alice)
	ctx.SetUserValue("debtor_id", "D00009")
	h.StatementPDF(ctx)

	assert.Equal(t, 404, ctx.Response.StatusCode())
}

func TestAdminHandler(t *testing.T) {
	t.Run("users", func(t *testing.T) {
		svc := new(MockReportService)
		h := NewAdminHandler(svc, new(MockPurger))
		svc.On("Users", mock.Anything, root).Return([]*model.UserOverview{
			{User: &model.User{ID: 1, Username: "alice"}, DebtorCount: 4},
		}, nil)

		ctx := asUser(setupTestContext("GET", "/api/v1/admin/users", nil), root)
		h.Users(ctx)

		assert.Equal(t, 200, ctx.Response.StatusCode())
		assert.Contains(t, string(ctx.Response.Body()), `"debtor_count":4`)
	})

	t.Run("forbidden from service", func(t *testing.T) {
		svc := new(MockReportService)
		h := NewAdminHandler(svc, new(MockPurger))
		svc.On("Users", mock.Anything, alice).Return(nil, services.ErrForbidden)

		ctx := asUser(setupTestContext("GET", "/api/v1/admin/users", nil), alice)
		h.Users(ctx)

		assert.Equal(t, 403, ctx.Response.StatusCode())
	})

	t.Run("transactions workbook", func(t *testing.T) {
		svc := new(MockReportService)
		h := NewAdminHandler(svc, new(MockPurger))
		svc.On("Transactions", mock.Anything, root).Return(sampleDetail().Transactions, nil)

		ctx := asUser(setupTestContext("GET", "/api/v1/admin/reports/transactions.xlsx", nil), root)
		h.TransactionsXLSX(ctx)

		assert.Equal(t, 200, ctx.Response.StatusCode())
		assert.Contains(t, string(ctx.Response.Header.Peek("Content-Disposition")), "all_transactions.xlsx")
	})

	t.Run("purge", func(t *testing.T) {
		purger := new(MockPurger)
		h := NewAdminHandler(new(MockReportService), purger)
		now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
		h.now = func() time.Time { return now }
		purger.On("PurgeExpired", mock.Anything, now).Return([]string{"D00004", "D00007"}, nil)

		ctx := asUser(setupTestContext("POST", "/api/v1/admin/purge", nil), root)
		h.Purge(ctx)

		assert.Equal(t, 200, ctx.Response.StatusCode())
		var resp purgeResponse
		require.NoError(t, json.Unmarshal(ctx.Response.Body(), &resp))
		assert.Equal(t, 2, resp.Count)
		assert.Equal(t, []string{"D00004", "D00007"}, resp.Purged)
	})

	t.Run("purge nothing", func(t *testing.T) {
		purger := new(MockPurger)
		h := NewAdminHandler(new(MockReportService), purger)
		purger.On("PurgeExpired", mock.Anything, mock.Anything).Return(nil, nil)

		ctx := asUser(setupTestContext("POST", "/api/v1/admin/purge", nil), root)
		h.Purge(ctx)

		assert.Equal(t, 200, ctx.Response.StatusCode())
		assert.Contains(t, string(ctx.Response.Body()), `"purged":[]`)
	})
}

func TestHealthHandler(t *testing.T) {
	ok := PingFunc(func(context.Context) error { return nil })
	down := PingFunc(func(context.Context) error { return errors.New("connection refused") })

	h := NewHealthHandler(map[string]Pinger{"db": ok, "redis": ok})
	ctx := setupTestContext("GET", "/health", nil)
	h.GetHealth(ctx)
	assert.Equal(t, 200, ctx.Response.StatusCode())
	assert.Contains(t, string(ctx.Response.Body()), `"status":"healthy"`)

	h = NewHealthHandler(map[string]Pinger{"db": ok, "redis": down})
	ctx = setupTestContext("GET", "/health", nil)
	h.GetHealth(ctx)
	assert.Equal(t, 503, ctx.Response.StatusCode())
	var resp healthResponse
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &resp))
	assert.Equal(t, "unhealthy", resp.Status)
	assert.Equal(t, "connection refused", resp.Checks["redis"])
	assert.Equal(t, "ok", resp.Checks["db"])
}
