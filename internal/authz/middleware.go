package authz

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/meridian-crm/meridian-crm/internal/platform/httpx"
)

type guardContextKey struct{}

// ContextWithGuard stores a request-scoped guard in the context.
func ContextWithGuard(ctx context.Context, g *Guard) context.Context {
	return context.WithValue(ctx, guardContextKey{}, g)
}

// GuardFromContext extracts the guard placed by the middleware, or nil for
// anonymous requests.
func GuardFromContext(ctx context.Context) *Guard {
	g, _ := ctx.Value(guardContextKey{}).(*Guard)
	return g
}

// Middleware wires authorization helpers for HTTP handlers.
type Middleware struct {
	Service  *Service
	Provider PrincipalProvider
	Logger   *slog.Logger
}

// Attach resolves the principal and stores a Guard in the request context.
// Anonymous requests pass through without one.
func (m Middleware) Attach(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, err := m.Provider.Current(r.Context())
		if err != nil {
			if m.Logger != nil {
				m.Logger.Error("authz: resolve principal", slog.Any("error", err))
			}
			httpx.RespondError(w, httpx.ErrUnauthorized)
			return
		}
		if principal == nil {
			next.ServeHTTP(w, r)
			return
		}
		ctx := ContextWithGuard(r.Context(), m.Service.For(*principal))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Require ensures the current principal holds the named permission.
func (m Middleware) Require(code string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			guard := GuardFromContext(r.Context())
			if guard == nil {
				httpx.RespondError(w, httpx.ErrUnauthorized)
				return
			}
			if guard.Cannot(r.Context(), code) {
				httpx.RespondError(w, httpx.ErrForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRole ensures the current principal holds one of the given roles.
func (m Middleware) RequireRole(roles ...Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			guard := GuardFromContext(r.Context())
			if guard == nil {
				httpx.RespondError(w, httpx.ErrUnauthorized)
				return
			}
			if !guard.HasRole(roles...) {
				httpx.RespondError(w, httpx.ErrForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
