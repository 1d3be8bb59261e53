package handlers

import (
	"context"

	"github.com/fasthttp/router"
	"github.com/nimasrn/debt-ledger/internal/model"
	"github.com/nimasrn/debt-ledger/internal/services"
	xhttp "github.com/nimasrn/debt-ledger/pkg/http"
)

type AuthService interface {
	Register(ctx context.Context, in model.RegisterInput) (*model.User, error)
	Login(ctx context.Context, in model.LoginInput) (*services.Session, error)
	ChangePassword(ctx context.Context, actor model.Identity, in model.ChangePasswordInput) error
	Me(ctx context.Context, actor model.Identity) (*model.User, error)
}

type ProfileUploader interface {
	SetProfilePic(ctx context.Context, actor model.Identity, filename string, data []byte) (string, error)
}

type AuthHandler struct {
	auth    AuthService
	uploads ProfileUploader
}

func NewAuthHandler(auth AuthService, uploads ProfileUploader) *AuthHandler {
	return &AuthHandler{auth: auth, uploads: uploads}
}

func RegisterAuthRoutes(e *router.Group, h *AuthHandler, g *Guard) {
	e.POST("/auth/register", h.Register)
	e.POST("/auth/login", h.Login)
	e.POST("/auth/password", g.Authenticated(h.ChangePassword))
	e.GET("/me", g.Authenticated(h.Me))
	e.POST("/me/profile-pic", g.Authenticated(h.ProfilePic))
}

func (h *AuthHandler) Register(ctx *xhttp.RequestCtx) {
	var req model.RegisterInput
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid json")
		return
	}
	user, err := h.auth.Register(ctx, req)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusCreated, user)
}

func (h *AuthHandler) Login(ctx *xhttp.RequestCtx) {
	var req model.LoginInput
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid json")
		return
	}
	session, err := h.auth.Login(ctx, req)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, session)
}

func (h *AuthHandler) ChangePassword(ctx *xhttp.RequestCtx) {
	var req model.ChangePasswordInput
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid json")
		return
	}
	if err := h.auth.ChangePassword(ctx, identity(ctx), req); err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.SetStatusCode(xhttp.StatusNoContent)
}

func (h *AuthHandler) Me(ctx *xhttp.RequestCtx) {
	user, err := h.auth.Me(ctx, identity(ctx))
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, user)
}

func (h *AuthHandler) ProfilePic(ctx *xhttp.RequestCtx) {
	name, data, err := readUpload(ctx, "file")
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	ref, err := h.uploads.SetProfilePic(ctx, identity(ctx), name, data)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, map[string]string{"profile_pic": ref})
}
