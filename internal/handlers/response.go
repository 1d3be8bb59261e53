package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/nimasrn/debt-ledger/internal/model"
	"github.com/nimasrn/debt-ledger/internal/services"
	"github.com/nimasrn/debt-ledger/internal/storage"
	xhttp "github.com/nimasrn/debt-ledger/pkg/http"
	"github.com/nimasrn/debt-ledger/pkg/logger"
)

type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

type overpaymentResponse struct {
	Error     string `json:"error"`
	Requested string `json:"requested"`
	Available string `json:"available"`
}

func readJSON(ctx *xhttp.RequestCtx, dst any) error {
	body := ctx.PostBody()
	if len(body) == 0 {
		return nil
	}
	return json.Unmarshal(body, dst)
}

func writeJSON(ctx *xhttp.RequestCtx, status int, v any) {
	b, _ := json.Marshal(v)
	ctx.Response.Header.Set("Content-Type", "application/json; charset=utf-8")
	ctx.Response.SetStatusCode(status)
	ctx.Response.SetBodyRaw(b)
}

func writeError(ctx *xhttp.RequestCtx, status int, msg string) {
	writeJSON(ctx, status, errorResponse{Error: msg})
}

// writeFile sends a generated document as an attachment.
func writeFile(ctx *xhttp.RequestCtx, contentType, filename string, data []byte) {
	ctx.Response.Header.Set("Content-Type", contentType)
	ctx.Response.Header.Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	ctx.Response.SetStatusCode(xhttp.StatusOK)
	ctx.Response.SetBodyRaw(data)
}

// writeServiceError maps domain errors to HTTP statuses. Anything
// unrecognised is logged and reported as a 500 without details.
func writeServiceError(ctx *xhttp.RequestCtx, err error) {
	var verr *model.ValidationError
	var over *services.OverpaymentError

	switch {
	case errors.As(err, &verr):
		writeJSON(ctx, xhttp.StatusUnprocessable, errorResponse{Error: "validation failed", Fields: verr.Fields})
	case errors.As(err, &over):
		writeJSON(ctx, xhttp.StatusConflict, overpaymentResponse{
			Error:     services.ErrOverpaymentRejected.Error(),
			Requested: over.Requested.StringFixed(2),
			Available: over.Available.StringFixed(2),
		})
	case errors.Is(err, services.ErrNotFound):
		writeError(ctx, xhttp.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrInvalidAmount),
		errors.Is(err, services.ErrConfirmationRequired):
		writeError(ctx, xhttp.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrOverpaymentRejected),
		errors.Is(err, services.ErrDebtorLimitExceeded),
		errors.Is(err, services.ErrDebtToDeletePending),
		errors.Is(err, services.ErrCannotDeletePending):
		writeError(ctx, xhttp.StatusConflict, err.Error())
	case errors.Is(err, services.ErrInvalidCredentials):
		writeError(ctx, xhttp.StatusUnauthorized, err.Error())
	case errors.Is(err, services.ErrForbidden):
		writeError(ctx, xhttp.StatusForbidden, err.Error())
	default:
		logger.Error("request failed", "error", err, "path", string(ctx.Path()), "request_id", ctx.UserValue(xhttp.RequestIDKey))
		writeError(ctx, xhttp.StatusInternalServerError, xhttp.StatusText(xhttp.StatusInternalServerError))
	}
}

func query(ctx *xhttp.RequestCtx, key string) string {
	return string(ctx.QueryArgs().Peek(key))
}

func pathParam(ctx *xhttp.RequestCtx, name string) string {
	v, _ := ctx.UserValue(name).(string)
	return v
}

// readUpload pulls the named multipart file. At most one byte past the
// upload limit is read so oversized files still fail validation.
func readUpload(ctx *xhttp.RequestCtx, field string) (string, []byte, error) {
	fh, err := ctx.FormFile(field)
	if err != nil {
		return "", nil, model.NewValidationError(field, "file is required")
	}
	f, err := fh.Open()
	if err != nil {
		return "", nil, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, storage.MaxUploadSize+1))
	if err != nil {
		return "", nil, fmt.Errorf("read upload: %w", err)
	}
	return fh.Filename, data, nil
}
