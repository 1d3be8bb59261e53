package handlers

import (
	"strings"

	"github.com/nimasrn/debt-ledger/internal/auth"
	"github.com/nimasrn/debt-ledger/internal/model"
	xhttp "github.com/nimasrn/debt-ledger/pkg/http"
)

const identityKey = "identity"

type TokenValidator interface {
	ValidateToken(token string) (*auth.Claims, error)
}

// Guard authenticates bearer tokens and puts the caller's identity on the
// request.
type Guard struct {
	tokens TokenValidator
}

func NewGuard(tokens TokenValidator) *Guard {
	return &Guard{tokens: tokens}
}

func (g *Guard) Authenticated(next xhttp.RequestHandler) xhttp.RequestHandler {
	return func(ctx *xhttp.RequestCtx) {
		header := string(ctx.Request.Header.Peek("Authorization"))
		if header == "" {
			writeError(ctx, xhttp.StatusUnauthorized, "authorization header is required")
			return
		}
		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			writeError(ctx, xhttp.StatusUnauthorized, "invalid authorization header format")
			return
		}

		claims, err := g.tokens.ValidateToken(strings.TrimSpace(token))
		if err != nil {
			writeError(ctx, xhttp.StatusUnauthorized, "invalid or expired token")
			return
		}
		ctx.SetUserValue(identityKey, claims.Identity())
		next(ctx)
	}
}

// Admin is Authenticated plus a role check.
func (g *Guard) Admin(next xhttp.RequestHandler) xhttp.RequestHandler {
	return g.Authenticated(func(ctx *xhttp.RequestCtx) {
		if !identity(ctx).IsAdmin() {
			writeError(ctx, xhttp.StatusForbidden, "admin role required")
			return
		}
		next(ctx)
	})
}

func identity(ctx *xhttp.RequestCtx) model.Identity {
	id, _ := ctx.UserValue(identityKey).(model.Identity)
	return id
}
