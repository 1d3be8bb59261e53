package handlers

import (
	"context"
	"time"

	"github.com/fasthttp/router"
	"github.com/nimasrn/debt-ledger/internal/model"
	"github.com/nimasrn/debt-ledger/internal/reports"
	xhttp "github.com/nimasrn/debt-ledger/pkg/http"
)

type ReportService interface {
	Summary(ctx context.Context, actor model.Identity) (*model.Summary, error)
	Debtors(ctx context.Context, actor model.Identity) ([]*model.Debtor, error)
	Statement(ctx context.Context, actor model.Identity, debtorID string) (*model.DebtorDetail, error)
	Transactions(ctx context.Context, actor model.Identity) ([]*model.Transaction, error)
	Users(ctx context.Context, actor model.Identity) ([]*model.UserOverview, error)
}

type ReportHandler struct {
	reports ReportService
	now     func() time.Time
}

func NewReportHandler(reports ReportService) *ReportHandler {
	return &ReportHandler{reports: reports, now: time.Now}
}

func RegisterReportRoutes(e *router.Group, h *ReportHandler, g *Guard) {
	e.GET("/dashboard", g.Authenticated(h.Dashboard))
	e.GET("/reports/summary.xlsx", g.Authenticated(h.SummaryXLSX))
	e.GET("/reports/debtors.xlsx", g.Authenticated(h.DebtorsXLSX))
	e.GET("/debtors/{debtor_id}/transactions.xlsx", g.Authenticated(h.DebtorTransactionsXLSX))
	e.GET("/debtors/{debtor_id}/statement.pdf", g.Authenticated(h.StatementPDF))
}

func (h *ReportHandler) Dashboard(ctx *xhttp.RequestCtx) {
	summary, err := h.reports.Summary(ctx, identity(ctx))
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, summary)
}

func (h *ReportHandler) SummaryXLSX(ctx *xhttp.RequestCtx) {
	summary, err := h.reports.Summary(ctx, identity(ctx))
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	h.sendWorkbook(ctx, "summary.xlsx", func() ([]byte, error) {
		return reports.SummaryWorkbook(summary)
	})
}

func (h *ReportHandler) DebtorsXLSX(ctx *xhttp.RequestCtx) {
	debtors, err := h.reports.Debtors(ctx, identity(ctx))
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	h.sendWorkbook(ctx, "debtors.xlsx", func() ([]byte, error) {
		return reports.DebtorsWorkbook(debtors)
	})
}

func (h *ReportHandler) DebtorTransactionsXLSX(ctx *xhttp.RequestCtx) {
	detail, err := h.reports.Statement(ctx, identity(ctx), pathParam(ctx, "debtor_id"))
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	h.sendWorkbook(ctx, detail.DebtorID+"_transactions.xlsx", func() ([]byte, error) {
		return reports.TransactionsWorkbook(detail.Transactions)
	})
}

func (h *ReportHandler) StatementPDF(ctx *xhttp.RequestCtx) {
	detail, err := h.reports.Statement(ctx, identity(ctx), pathParam(ctx, "debtor_id"))
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	data, err := reports.StatementPDF(detail, h.now())
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeFile(ctx, reports.ContentTypePDF, detail.DebtorID+"_statement.pdf", data)
}

func (h *ReportHandler) sendWorkbook(ctx *xhttp.RequestCtx, filename string, build func() ([]byte, error)) {
	data, err := build()
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeFile(ctx, reports.ContentTypeXLSX, filename, data)
}
