package handlers

import (
	"context"
	"time"

	"github.com/fasthttp/router"
	"github.com/nimasrn/debt-ledger/internal/reports"
	xhttp "github.com/nimasrn/debt-ledger/pkg/http"
)

type Purger interface {
	PurgeExpired(ctx context.Context, now time.Time) ([]string, error)
}

type AdminHandler struct {
	reports ReportService
	purger  Purger
	now     func() time.Time
}

type purgeResponse struct {
	Purged []string `json:"purged"`
	Count  int      `json:"count"`
}

func NewAdminHandler(reports ReportService, purger Purger) *AdminHandler {
	return &AdminHandler{reports: reports, purger: purger, now: time.Now}
}

func RegisterAdminRoutes(e *router.Group, h *AdminHandler, g *Guard) {
	e.GET("/admin/users", g.Admin(h.Users))
	e.GET("/admin/reports/users.xlsx", g.Admin(h.UsersXLSX))
	e.GET("/admin/reports/debtors.xlsx", g.Admin(h.DebtorsXLSX))
	e.GET("/admin/reports/transactions.xlsx", g.Admin(h.TransactionsXLSX))
	e.POST("/admin/purge", g.Admin(h.Purge))
}

func (h *AdminHandler) Users(ctx *xhttp.RequestCtx) {
	users, err := h.reports.Users(ctx, identity(ctx))
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, users)
}

func (h *AdminHandler) UsersXLSX(ctx *xhttp.RequestCtx) {
	users, err := h.reports.Users(ctx, identity(ctx))
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	data, err := reports.UsersWorkbook(users)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeFile(ctx, reports.ContentTypeXLSX, "users.xlsx", data)
}

func (h *AdminHandler) DebtorsXLSX(ctx *xhttp.RequestCtx) {
	debtors, err := h.reports.Debtors(ctx, identity(ctx))
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	data, err := reports.DebtorsWorkbook(debtors)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeFile(ctx, reports.ContentTypeXLSX, "all_debtors.xlsx", data)
}

func (h *AdminHandler) TransactionsXLSX(ctx *xhttp.RequestCtx) {
	txns, err := h.reports.Transactions(ctx, identity(ctx))
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	data, err := reports.TransactionsWorkbook(txns)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeFile(ctx, reports.ContentTypeXLSX, "all_transactions.xlsx", data)
}

func (h *AdminHandler) Purge(ctx *xhttp.RequestCtx) {
	purged, err := h.purger.PurgeExpired(ctx, h.now())
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	if purged == nil {
		purged = []string{}
	}
	writeJSON(ctx, xhttp.StatusOK, purgeResponse{Purged: purged, Count: len(purged)})
}
