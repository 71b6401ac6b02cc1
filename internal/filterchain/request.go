package filterchain

import (
	"context"
	"net/http"
)

type contextKey struct{}

// BindRequest attaches the registry to the request's context so handlers can
// reach application-scoped attributes. Returns a shallow copy of r.
func BindRequest(r *http.Request, c *Context) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), contextKey{}, c))
}

// FromRequest returns the registry bound to the request, or nil.
func FromRequest(r *http.Request) *Context {
	c, _ := r.Context().Value(contextKey{}).(*Context)
	return c
}
