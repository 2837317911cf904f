package auth

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/meridian-crm/meridian-crm/internal/authz"
	"github.com/meridian-crm/meridian-crm/internal/shared"
	"github.com/meridian-crm/meridian-crm/internal/users"
)

// UserLoader loads full user accounts for principal resolution.
type UserLoader interface {
	GetUser(ctx context.Context, id int64) (*users.User, error)
}

// SessionPrincipalProvider resolves the acting principal from the session
// stored in the request context. When an administrator has started an
// impersonation, the impersonated identity is substituted transparently.
type SessionPrincipalProvider struct {
	Users  UserLoader
	Logger *slog.Logger
}

// Current implements authz.PrincipalProvider.
func (p *SessionPrincipalProvider) Current(ctx context.Context) (*authz.Principal, error) {
	sess := shared.SessionFromContext(ctx)
	if sess == nil || sess.User() == "" {
		return nil, nil
	}
	userID, err := strconv.ParseInt(sess.User(), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("auth: parse session user id: %w", err)
	}
	user, err := p.Users.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("auth: load session user: %w", err)
	}
	if !user.IsActive {
		return nil, nil
	}

	if impersonated := sess.Impersonated(); impersonated != "" {
		target, ok := p.resolveImpersonation(ctx, user, impersonated)
		if ok {
			return target, nil
		}
	}

	principal := user.Principal()
	return &principal, nil
}

// resolveImpersonation substitutes the impersonated identity when the real
// user may still impersonate it. A stale or no longer permitted target
// falls back to the real identity rather than failing the request.
func (p *SessionPrincipalProvider) resolveImpersonation(ctx context.Context, actor *users.User, raw string) (*authz.Principal, bool) {
	targetID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, false
	}
	target, err := p.Users.GetUser(ctx, targetID)
	if err != nil {
		if p.Logger != nil {
			p.Logger.Warn("auth: load impersonated user", slog.Int64("target_id", targetID), slog.Any("error", err))
		}
		return nil, false
	}
	if !target.IsActive || !actor.Role.CanManage(target.Role) {
		return nil, false
	}
	principal := target.Principal()
	return &principal, true
}

var _ authz.PrincipalProvider = (*SessionPrincipalProvider)(nil)
