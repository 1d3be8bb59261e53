package handlers

import (
	"context"
	"strconv"

	"github.com/fasthttp/router"
	"github.com/nimasrn/debt-ledger/internal/model"
	xhttp "github.com/nimasrn/debt-ledger/pkg/http"
)

type DebtorService interface {
	Create(ctx context.Context, actor model.Identity, in model.DebtorInput) (*model.Debtor, error)
	Get(ctx context.Context, actor model.Identity, debtorID string) (*model.DebtorDetail, error)
	List(ctx context.Context, actor model.Identity, filter model.DebtorFilter) ([]*model.Debtor, error)
	RecycleBin(ctx context.Context, actor model.Identity) ([]*model.Debtor, error)
	Edit(ctx context.Context, actor model.Identity, debtorID string, in model.DebtorInput) (*model.Debtor, error)
	SoftDelete(ctx context.Context, actor model.Identity, debtorID string) error
	Restore(ctx context.Context, actor model.Identity, debtorID string) error
	HardDelete(ctx context.Context, actor model.Identity, debtorID string, confirmed bool) error
}

type DebtorHandler struct {
	debtors DebtorService
}

type listResponse[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
}

type destroyRequest struct {
	Confirm bool `json:"confirm"`
}

func NewDebtorHandler(debtors DebtorService) *DebtorHandler {
	return &DebtorHandler{debtors: debtors}
}

func RegisterDebtorRoutes(e *router.Group, h *DebtorHandler, g *Guard) {
	e.GET("/debtors", g.Authenticated(h.List))
	e.POST("/debtors", g.Authenticated(h.Create))
	e.GET("/debtors/{debtor_id}", g.Authenticated(h.Get))
	e.PUT("/debtors/{debtor_id}", g.Authenticated(h.Edit))
	e.POST("/debtors/{debtor_id}/delete", g.Authenticated(h.SoftDelete))
	e.POST("/debtors/{debtor_id}/restore", g.Authenticated(h.Restore))
	e.POST("/debtors/{debtor_id}/destroy", g.Authenticated(h.Destroy))
	e.GET("/recycle-bin", g.Authenticated(h.RecycleBin))
}

func (h *DebtorHandler) List(ctx *xhttp.RequestCtx) {
	filter := model.DebtorFilter{
		Status: model.DebtorStatus(query(ctx, "status")),
		Search: query(ctx, "q"),
	}
	switch filter.Status {
	case "", model.DebtorActive, model.DebtorRecovered:
	default:
		writeServiceError(ctx, model.NewValidationError("status", "must be active or recovered"))
		return
	}
	if v := query(ctx, "limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(ctx, xhttp.StatusBadRequest, "invalid limit")
			return
		}
		filter.Limit = n
	}
	if v := query(ctx, "offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(ctx, xhttp.StatusBadRequest, "invalid offset")
			return
		}
		filter.Offset = n
	}

	items, err := h.debtors.List(ctx, identity(ctx), filter)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, listResponse[*model.Debtor]{Items: items, Total: len(items)})
}

func (h *DebtorHandler) Create(ctx *xhttp.RequestCtx) {
	var req model.DebtorInput
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid json")
		return
	}
	debtor, err := h.debtors.Create(ctx, identity(ctx), req)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusCreated, debtor)
}

func (h *DebtorHandler) Get(ctx *xhttp.RequestCtx) {
	detail, err := h.debtors.Get(ctx, identity(ctx), pathParam(ctx, "debtor_id"))
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, detail)
}

func (h *DebtorHandler) Edit(ctx *xhttp.RequestCtx) {
	var req model.DebtorInput
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid json")
		return
	}
	debtor, err := h.debtors.Edit(ctx, identity(ctx), pathParam(ctx, "debtor_id"), req)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, debtor)
}

func (h *DebtorHandler) SoftDelete(ctx *xhttp.RequestCtx) {
	if err := h.debtors.SoftDelete(ctx, identity(ctx), pathParam(ctx, "debtor_id")); err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.SetStatusCode(xhttp.StatusNoContent)
}

func (h *DebtorHandler) Restore(ctx *xhttp.RequestCtx) {
	if err := h.debtors.Restore(ctx, identity(ctx), pathParam(ctx, "debtor_id")); err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.SetStatusCode(xhttp.StatusNoContent)
}

func (h *DebtorHandler) Destroy(ctx *xhttp.RequestCtx) {
	var req destroyRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid json")
		return
	}
	if err := h.debtors.HardDelete(ctx, identity(ctx), pathParam(ctx, "debtor_id"), req.Confirm); err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.SetStatusCode(xhttp.StatusNoContent)
}

func (h *DebtorHandler) RecycleBin(ctx *xhttp.RequestCtx) {
	items, err := h.debtors.RecycleBin(ctx, identity(ctx))
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, listResponse[*model.Debtor]{Items: items, Total: len(items)})
}
