package auth

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/meridian-crm/meridian-crm/internal/authz"
	"github.com/meridian-crm/meridian-crm/internal/shared"
	"github.com/meridian-crm/meridian-crm/internal/users"
	_ "github.com/meridian-crm/meridian-crm/testing"
)

type stubUsers struct {
	accounts map[int64]*users.User
	err      error
}

func (s *stubUsers) GetUser(ctx context.Context, id int64) (*users.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	u, ok := s.accounts[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return u, nil
}

func sessionContext(userID int64, impersonateID int64) context.Context {
	sess := &shared.Session{ID: "test-session"}
	if userID > 0 {
		sess.SetUser(strconv.FormatInt(userID, 10))
	}
	if impersonateID > 0 {
		sess.SetImpersonated(strconv.FormatInt(impersonateID, 10))
	}
	return shared.ContextWithSession(context.Background(), sess)
}

func TestCurrentAnonymousWithoutSession(t *testing.T) {
	provider := &SessionPrincipalProvider{Users: &stubUsers{}}

	p, err := provider.Current(context.Background())
	require.NoError(t, err)
	require.Nil(t, p)
}

func TestCurrentResolvesPrincipal(t *testing.T) {
	loader := &stubUsers{accounts: map[int64]*users.User{
		1: {ID: 1, Role: authz.RoleRep, RepID: "R-5", Country: "BE", IsActive: true},
	}}
	provider := &SessionPrincipalProvider{Users: loader}

	p, err := provider.Current(sessionContext(1, 0))
	require.NoError(t, err)
	require.NotNil(t, p)
	require.Equal(t, authz.RoleRep, p.Role)
	require.Equal(t, "R-5", p.RepID)
}

func TestCurrentInactiveUserIsAnonymous(t *testing.T) {
	loader := &stubUsers{accounts: map[int64]*users.User{
		1: {ID: 1, Role: authz.RoleAdmin, IsActive: false},
	}}
	provider := &SessionPrincipalProvider{Users: loader}

	p, err := provider.Current(sessionContext(1, 0))
	require.NoError(t, err)
	require.Nil(t, p)
}

func TestCurrentLoadFailure(t *testing.T) {
	provider := &SessionPrincipalProvider{Users: &stubUsers{err: errors.New("db down")}}

	_, err := provider.Current(sessionContext(1, 0))
	require.Error(t, err)
}

func TestImpersonationSubstitutesTarget(t *testing.T) {
	loader := &stubUsers{accounts: map[int64]*users.User{
		1: {ID: 1, Role: authz.RoleAdmin, IsActive: true},
		2: {ID: 2, Role: authz.RoleRep, RepID: "R-9", Country: "LU", IsActive: true},
	}}
	provider := &SessionPrincipalProvider{Users: loader}

	p, err := provider.Current(sessionContext(1, 2))
	require.NoError(t, err)
	require.Equal(t, int64(2), p.ID)
	require.Equal(t, authz.RoleRep, p.Role)
	require.Equal(t, "LU", p.Country)
}

func TestImpersonationDeniedFallsBackToActor(t *testing.T) {
	loader := &stubUsers{accounts: map[int64]*users.User{
		1: {ID: 1, Role: authz.RoleCreateur, IsActive: true},
		2: {ID: 2, Role: authz.RoleAdmin, IsActive: true},
	}}
	provider := &SessionPrincipalProvider{Users: loader}

	// A createur cannot manage an admin, so the impersonation is ignored.
	p, err := provider.Current(sessionContext(1, 2))
	require.NoError(t, err)
	require.Equal(t, int64(1), p.ID)
	require.Equal(t, authz.RoleCreateur, p.Role)
}

func TestImpersonationStaleTargetFallsBack(t *testing.T) {
	loader := &stubUsers{accounts: map[int64]*users.User{
		1: {ID: 1, Role: authz.RoleAdmin, IsActive: true},
	}}
	provider := &SessionPrincipalProvider{Users: loader}

	p, err := provider.Current(sessionContext(1, 99))
	require.NoError(t, err)
	require.Equal(t, int64(1), p.ID)
}

func TestImpersonationInactiveTargetFallsBack(t *testing.T) {
	loader := &stubUsers{accounts: map[int64]*users.User{
		1: {ID: 1, Role: authz.RoleAdmin, IsActive: true},
		2: {ID: 2, Role: authz.RoleRep, IsActive: false},
	}}
	provider := &SessionPrincipalProvider{Users: loader}

	p, err := provider.Current(sessionContext(1, 2))
	require.NoError(t, err)
	require.Equal(t, int64(1), p.ID)
}
