package handlers

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/nimasrn/debt-ledger/internal/model"
	"github.com/nimasrn/debt-ledger/internal/services"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestDebtorHandler_Create(t *testing.T) {
	body := []byte(`{"name":"Ram","address":"Kathmandu","mobile":"9800000001","initial_debt":"1000",
		"debt_date":"2024-01-10","debt_purpose":"loan","payment_method":"cash"}`)

	t.Run("created", func(t *testing.T) {
		svc := new(MockDebtorService)
		h := NewDebtorHandler(svc)

		svc.On("Create", mock.Anything, alice, mock.MatchedBy(func(in model.DebtorInput) bool {
			return in.Mobile == "9800000001" && in.InitialDebt.Equal(decimal.NewFromInt(1000)) &&
				in.DebtDate.Equal(time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC))
		})).Return(&model.Debtor{DebtorID: "D00001", Name: "Ram", Status: model.DebtorActive}, nil)

		ctx := asUser(setupTestContext("POST", "/api/v1/debtors", body), alice)
		h.Create(ctx)

		assert.Equal(t, 201, ctx.Response.StatusCode())
		var resp map[string]any
		require.NoError(t, json.Unmarshal(ctx.Response.Body(), &resp))
		assert.Equal(t, "D00001", resp["debtor_id"])
		assert.Equal(t, "active", resp["debtor_status"])
		svc.AssertExpectations(t)
	})

	t.Run("invalid json", func(t *testing.T) {
		svc := new(MockDebtorService)
		h := NewDebtorHandler(svc)

		ctx := asUser(setupTestContext("POST", "/api/v1/debtors", []byte("{")), alice)
		h.Create(ctx)

		assert.Equal(t, 400, ctx.Response.StatusCode())
		svc.AssertNotCalled(t, "Create")
	})

	t.Run("validation error carries fields", func(t *testing.T) {
		svc := new(MockDebtorService)
		h := NewDebtorHandler(svc)

		verr := model.NewValidationError("mobile", "mobile number already exists")
		svc.On("Create", mock.Anything, alice, mock.Anything).Return(nil, verr)

		ctx := asUser(setupTestContext("POST", "/api/v1/debtors", body), alice)
		h.Create(ctx)

		assert.Equal(t, 422, ctx.Response.StatusCode())
		var resp errorResponse
		require.NoError(t, json.Unmarshal(ctx.Response.Body(), &resp))
		assert.Equal(t, "mobile number already exists", resp.Fields["mobile"])
	})

	t.Run("limit reached", func(t *testing.T) {
		svc := new(MockDebtorService)
		h := NewDebtorHandler(svc)

		svc.On("Create", mock.Anything, alice, mock.Anything).Return(nil, services.ErrDebtorLimitExceeded)

		ctx := asUser(setupTestContext("POST", "/api/v1/debtors", body), alice)
		h.Create(ctx)

		assert.Equal(t, 409, ctx.Response.StatusCode())
	})

	t.Run("storage failure is hidden", func(t *testing.T) {
		svc := new(MockDebtorService)
		h := NewDebtorHandler(svc)

		svc.On("Create", mock.Anything, alice, mock.Anything).Return(nil, errors.New("connection reset"))

		ctx := asUser(setupTestContext("POST", "/api/v1/debtors", body), alice)
		h.Create(ctx)

		assert.Equal(t, 500, ctx.Response.StatusCode())
		assert.NotContains(t, string(ctx.Response.Body()), "connection reset")
	})
}

func TestDebtorHandler_List(t *testing.T) {
	t.Run("passes filter", func(t *testing.T) {
		svc := new(MockDebtorService)
		h := NewDebtorHandler(svc)

		svc.On("List", mock.Anything, alice, model.DebtorFilter{Status: model.DebtorActive, Search: "ram", Limit: 10}).
			Return([]*model.Debtor{{DebtorID: "D00001"}, {DebtorID: "D00002"}}, nil)

		ctx := asUser(setupTestContext("GET", "/api/v1/debtors?status=active&q=ram&limit=10", nil), alice)
		h.List(ctx)

		assert.Equal(t, 200, ctx.Response.StatusCode())
		var resp struct {
			Items []model.Debtor `json:"items"`
			Total int            `json:"total"`
		}
		require.NoError(t, json.Unmarshal(ctx.Response.Body(), &resp))
		assert.Equal(t, 2, resp.Total)
		assert.Equal(t, "D00002", resp.Items[1].DebtorID)
		svc.AssertExpectations(t)
	})

	t.Run("unknown status", func(t *testing.T) {
		svc := new(MockDebtorService)
		h := NewDebtorHandler(svc)

		ctx := asUser(setupTestContext("GET", "/api/v1/debtors?status=closed", nil), alice)
		h.List(ctx)

		assert.Equal(t, 422, ctx.Response.StatusCode())
		svc.AssertNotCalled(t, "List")
	})

	t.Run("bad limit", func(t *testing.T) {
		svc := new(MockDebtorService)
		h := NewDebtorHandler(svc)

		ctx := asUser(setupTestContext("GET", "/api/v1/debtors?limit=abc", nil), alice)
		h.List(ctx)

		assert.Equal(t, 400, ctx.Response.StatusCode())
	})
}

func TestDebtorHandler_Get(t *testing.T) {
	svc := new(MockDebtorService)
	h := NewDebtorHandler(svc)

	svc.On("Get", mock.Anything, alice, "D00001").Return(&model.DebtorDetail{
		Debtor:       &model.Debtor{DebtorID: "D00001", CurrentDebt: decimal.NewFromInt(600)},
		Transactions: []*model.Transaction{{TranID: "Txn00001"}, {TranID: "Txn00002"}},
	}, nil)
	svc.On("Get", mock.Anything, alice, "D00002").Return(nil, services.ErrNotFound)

	ctx := asUser(setupTestContext("GET", "/api/v1/debtors/D00001", nil), alice)
	ctx.SetUserValue("debtor_id", "D00001")
	h.Get(ctx)

	assert.Equal(t, 200, ctx.Response.StatusCode())
	var resp struct {
		DebtorID     string              `json:"debtor_id"`
		CurrentDebt  decimal.Decimal     `json:"current_debt"`
		Transactions []model.Transaction `json:"transactions"`
	}
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &resp))
	assert.Equal(t, "D00001", resp.DebtorID)
	assert.True(t, resp.CurrentDebt.Equal(decimal.NewFromInt(600)))
	assert.Len(t, resp.Transactions, 2)

	ctx = asUser(setupTestContext("GET", "/api/v1/debtors/D00002", nil), alice)
	ctx.SetUserValue("debtor_id", "D00002")
	h.Get(ctx)
	assert.Equal(t, 404, ctx.Response.StatusCode())
}

func TestDebtorHandler_Lifecycle(t *testing.T) {
	t.Run("soft delete pending debt", func(t *testing.T) {
		svc := new(MockDebtorService)
		h := NewDebtorHandler(svc)
		svc.On("SoftDelete", mock.Anything, alice, "D00001").Return(services.ErrDebtToDeletePending)

		ctx := asUser(setupTestContext("POST", "/api/v1/debtors/D00001/delete", nil), alice)
		ctx.SetUserValue("debtor_id", "D00001")
		h.SoftDelete(ctx)

		assert.Equal(t, 409, ctx.Response.StatusCode())
	})

	t.Run("restore", func(t *testing.T) {
		svc := new(MockDebtorService)
		h := NewDebtorHandler(svc)
		svc.On("Restore", mock.Anything, alice, "D00001").Return(nil)

		ctx := asUser(setupTestContext("POST", "/api/v1/debtors/D00001/restore", nil), alice)
		ctx.SetUserValue("debtor_id", "D00001")
		h.Restore(ctx)

		assert.Equal(t, 204, ctx.Response.StatusCode())
		svc.AssertExpectations(t)
	})

	t.Run("destroy requires confirmation", func(t *testing.T) {
		svc := new(MockDebtorService)
		h := NewDebtorHandler(svc)
		svc.On("HardDelete", mock.Anything, alice, "D00001", false).Return(services.ErrConfirmationRequired)

		ctx := asUser(setupTestContext("POST", "/api/v1/debtors/D00001/destroy", nil), alice)
		ctx.SetUserValue("debtor_id", "D00001")
		h.Destroy(ctx)

		assert.Equal(t, 400, ctx.Response.StatusCode())
	})

	t.Run("destroy confirmed", func(t *testing.T) {
		svc := new(MockDebtorService)
		h := NewDebtorHandler(svc)
		svc.On("HardDelete", mock.Anything, alice, "D00001", true).Return(nil)

		ctx := asUser(setupTestContext("POST", "/api/v1/debtors/D00001/destroy", []byte(`{"confirm":true}`)), alice)
		ctx.SetUserValue("debtor_id", "D00001")
		h.Destroy(ctx)

		assert.Equal(t, 204, ctx.Response.StatusCode())
		svc.AssertExpectations(t)
	})

	t.Run("recycle bin", func(t *testing.T) {
		svc := new(MockDebtorService)
		h := NewDebtorHandler(svc)
		svc.On("RecycleBin", mock.Anything, alice).Return([]*model.Debtor{{DebtorID: "D00003", IsDeleted: true}}, nil)

		ctx := asUser(setupTestContext("GET", "/api/v1/recycle-bin", nil), alice)
		h.RecycleBin(ctx)

		assert.Equal(t, 200, ctx.Response.StatusCode())
		assert.Contains(t, string(ctx.Response.Body()), `"D00003"`)
	})
}
