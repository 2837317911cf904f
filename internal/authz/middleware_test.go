package authz

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	principal *Principal
	err       error
}

func (p *stubProvider) Current(ctx context.Context) (*Principal, error) {
	return p.principal, p.err
}

func newMiddleware(t *testing.T, store *stubStore, provider PrincipalProvider) Middleware {
	t.Helper()
	svc := newTestService(t, store, &stubDirectory{})
	return Middleware{Service: svc, Provider: provider, Logger: testLogger()}
}

func TestAttachAnonymousPassesThrough(t *testing.T) {
	mw := newMiddleware(t, &stubStore{}, &stubProvider{})

	var sawGuard bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawGuard = GuardFromContext(r.Context()) != nil
	})

	res := httptest.NewRecorder()
	mw.Attach(next).ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, res.Code)
	require.False(t, sawGuard)
}

func TestAttachStoresGuard(t *testing.T) {
	p := Principal{ID: 1, Role: RoleAdmin}
	mw := newMiddleware(t, &stubStore{}, &stubProvider{principal: &p})

	var got *Guard
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = GuardFromContext(r.Context())
	})

	res := httptest.NewRecorder()
	mw.Attach(next).ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NotNil(t, got)
	require.Equal(t, RoleAdmin, got.Role())
}

func TestAttachProviderFailure(t *testing.T) {
	mw := newMiddleware(t, &stubStore{}, &stubProvider{err: errors.New("session store down")})

	res := httptest.NewRecorder()
	mw.Attach(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	})).ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusUnauthorized, res.Code)
}

func TestRequirePermission(t *testing.T) {
	store := &stubStore{
		perms:  catalogPerms(),
		grants: []RoleGrant{{Role: RoleCreateur, Code: PermCampaignsView, Granted: true}},
	}
	p := Principal{ID: 7, Role: RoleCreateur}
	mw := newMiddleware(t, store, &stubProvider{principal: &p})

	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	res := httptest.NewRecorder()
	mw.Attach(mw.Require(PermCampaignsView)(ok)).ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusNoContent, res.Code)

	res = httptest.NewRecorder()
	mw.Attach(mw.Require(PermSettingsPermissions)(ok)).ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusForbidden, res.Code)

	// No guard at all reads as unauthenticated.
	res = httptest.NewRecorder()
	mw.Require(PermCampaignsView)(ok).ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusUnauthorized, res.Code)
}

func TestRequireRole(t *testing.T) {
	p := Principal{ID: 7, Role: RoleManagerReps}
	mw := newMiddleware(t, &stubStore{}, &stubProvider{principal: &p})

	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	res := httptest.NewRecorder()
	mw.Attach(mw.RequireRole(RoleManagerReps, RoleRep)(ok)).ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusNoContent, res.Code)

	res = httptest.NewRecorder()
	mw.Attach(mw.RequireRole(RoleAdmin)(ok)).ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusForbidden, res.Code)
}
