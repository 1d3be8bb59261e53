package handlers

import (
	"context"
	"path"

	"github.com/fasthttp/router"
	"github.com/nimasrn/debt-ledger/internal/model"
	"github.com/nimasrn/debt-ledger/internal/services"
	"github.com/nimasrn/debt-ledger/internal/storage"
	xhttp "github.com/nimasrn/debt-ledger/pkg/http"
)

type Uploader interface {
	Upload(ctx context.Context, actor model.Identity, kind storage.Kind, filename string, data []byte) (string, error)
}

type VoucherFiles interface {
	Uploader
	Open(ctx context.Context, ref string) (*storage.Object, error)
}

type VoucherHandler struct {
	files   VoucherFiles
	debtors DebtorService
	ledger  LedgerService
}

func NewVoucherHandler(files VoucherFiles, debtors DebtorService, ledger LedgerService) *VoucherHandler {
	return &VoucherHandler{files: files, debtors: debtors, ledger: ledger}
}

func RegisterVoucherRoutes(e *router.Group, h *VoucherHandler, g *Guard) {
	e.POST("/vouchers", g.Authenticated(h.Upload))
	e.GET("/debtors/{debtor_id}/voucher", g.Authenticated(h.DebtorVoucher))
	e.GET("/transactions/{tran_id}/voucher", g.Authenticated(h.TransactionVoucher))
}

// Upload stores a voucher and returns the reference that debtor and
// transaction payloads carry. The optional "kind" form field defaults to a
// debt voucher.
func (h *VoucherHandler) Upload(ctx *xhttp.RequestCtx) {
	kind := storage.KindDebtVoucher
	if v := ctx.FormValue("kind"); len(v) > 0 {
		kind = storage.Kind(v)
	}
	if kind == storage.KindProfilePic {
		writeServiceError(ctx, model.NewValidationError("kind", "use /me/profile-pic for profile pictures"))
		return
	}

	name, data, err := readUpload(ctx, "file")
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	ref, err := h.files.Upload(ctx, identity(ctx), kind, name, data)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusCreated, map[string]string{"ref": ref})
}

// DebtorVoucher streams the debt voucher of a debtor visible to the caller.
func (h *VoucherHandler) DebtorVoucher(ctx *xhttp.RequestCtx) {
	detail, err := h.debtors.Get(ctx, identity(ctx), pathParam(ctx, "debtor_id"))
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	h.send(ctx, detail.DebtVoucher)
}

// TransactionVoucher streams the voucher of a ledger row visible to the
// caller.
func (h *VoucherHandler) TransactionVoucher(ctx *xhttp.RequestCtx) {
	txn, err := h.ledger.Transaction(ctx, identity(ctx), pathParam(ctx, "tran_id"))
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	h.send(ctx, txn.Voucher)
}

func (h *VoucherHandler) send(ctx *xhttp.RequestCtx, ref string) {
	if ref == "" {
		writeServiceError(ctx, services.ErrNotFound)
		return
	}
	obj, err := h.files.Open(ctx, ref)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeFile(ctx, obj.ContentType, path.Base(ref), obj.Data)
}
