package handlers

import (
	"context"

	"github.com/fasthttp/router"
	"github.com/nimasrn/debt-ledger/internal/model"
	xhttp "github.com/nimasrn/debt-ledger/pkg/http"
)

type LedgerService interface {
	Post(ctx context.Context, actor model.Identity, req model.PostingRequest) (*model.Transaction, error)
	Transaction(ctx context.Context, actor model.Identity, tranID string) (*model.Transaction, error)
	History(ctx context.Context, actor model.Identity, debtorID string) ([]*model.Transaction, error)
}

type TransactionHandler struct {
	ledger LedgerService
}

func NewTransactionHandler(ledger LedgerService) *TransactionHandler {
	return &TransactionHandler{ledger: ledger}
}

func RegisterTransactionRoutes(e *router.Group, h *TransactionHandler, g *Guard) {
	e.POST("/debtors/{debtor_id}/transactions", g.Authenticated(h.Post))
	e.GET("/debtors/{debtor_id}/transactions", g.Authenticated(h.History))
	e.GET("/transactions/{tran_id}", g.Authenticated(h.Get))
}

func (h *TransactionHandler) Post(ctx *xhttp.RequestCtx) {
	var req model.PostingRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid json")
		return
	}
	req.DebtorID = pathParam(ctx, "debtor_id")

	txn, err := h.ledger.Post(ctx, identity(ctx), req)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusCreated, txn)
}

func (h *TransactionHandler) History(ctx *xhttp.RequestCtx) {
	items, err := h.ledger.History(ctx, identity(ctx), pathParam(ctx, "debtor_id"))
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, listResponse[*model.Transaction]{Items: items, Total: len(items)})
}

func (h *TransactionHandler) Get(ctx *xhttp.RequestCtx) {
	txn, err := h.ledger.Transaction(ctx, identity(ctx), pathParam(ctx, "tran_id"))
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, txn)
}
