package xhttp

import (
	"github.com/fasthttp/router"
)

type Router = router.Router
type Group = router.Group

func NewRouter() *Router {
	return router.New()
}

// CreateDefaultRouter answers unknown routes and wrong methods with JSON
// errors instead of fasthttp's plain text defaults.
func CreateDefaultRouter() *Router {
	r := NewRouter()
	r.RedirectTrailingSlash = true
	r.SaveMatchedRoutePath = true
	r.HandleOPTIONS = false
	r.HandleMethodNotAllowed = true
	r.NotFound = jsonErrorHandler(StatusNotFound)
	r.MethodNotAllowed = jsonErrorHandler(StatusMethodNotAllowed)
	return r
}

func jsonErrorHandler(code int) RequestHandler {
	return func(ctx *RequestCtx) {
		ctx.SetContentType("application/json")
		ctx.SetStatusCode(code)
		ctx.SetBodyString(`{"error":"` + StatusText(code) + `"}`)
	}
}
