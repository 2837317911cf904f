package auth

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/meridian-crm/meridian-crm/internal/authz"
	"github.com/meridian-crm/meridian-crm/internal/platform/httpx"
	"github.com/meridian-crm/meridian-crm/internal/shared"
)

// Handler serves login, logout and impersonation endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	users    UserLoader
	sessions *shared.SessionManager
	csrf     *shared.CSRFManager
	audit    *shared.AuditLogger
}

// NewHandler builds a Handler instance. audit may be nil.
func NewHandler(logger *slog.Logger, service *Service, users UserLoader, sessions *shared.SessionManager, csrf *shared.CSRFManager, audit *shared.AuditLogger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, users: users, sessions: sessions, csrf: csrf, audit: audit}
}

// MountRoutes registers the auth routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/login", h.login)
	r.Post("/logout", h.logout)
	r.Post("/impersonate/{userID}", h.startImpersonation)
	r.Post("/impersonate/stop", h.stopImpersonation)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "request body must be valid JSON")
		return
	}

	account, err := h.service.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, shared.ErrInvalidCredentials) {
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "invalid credentials")
			return
		}
		h.logger.Error("authenticate", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}

	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	sess.SetUser(strconv.FormatInt(account.ID, 10))
	sess.ClearImpersonated()

	expiresAt := time.Now().Add(h.sessions.TTL())
	if err := h.service.RegisterSession(r.Context(), sess.ID, account.ID, expiresAt, clientIP(r), r.UserAgent()); err != nil {
		h.logger.Warn("register session", slog.Any("error", err))
	}
	token, _ := h.csrf.EnsureToken(r.Context(), sess)
	httpx.JSON(w, http.StatusOK, map[string]string{"csrf_token": token})
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess != nil {
		if err := h.service.RemoveSession(r.Context(), sess.ID); err != nil {
			h.logger.Warn("remove session", slog.Any("error", err))
		}
		h.sessions.Destroy(sess)
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// startImpersonation lets an administrator act as a less privileged user.
func (h *Handler) startImpersonation(w http.ResponseWriter, r *http.Request) {
	guard := authz.GuardFromContext(r.Context())
	if guard == nil {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	if guard.Cannot(r.Context(), authz.PermUsersImpersonate) {
		httpx.RespondError(w, httpx.ErrForbidden)
		return
	}

	targetID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Parameter", "userID must be an integer")
		return
	}
	target, err := h.users.GetUser(r.Context(), targetID)
	if err != nil {
		httpx.RespondError(w, httpx.ErrNotFound)
		return
	}
	if !target.IsActive || !guard.CanManageRole(target.Role) {
		httpx.Problem(w, http.StatusForbidden, "Forbidden", shared.ErrImpersonationDenied.Error())
		return
	}

	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	sess.SetImpersonated(strconv.FormatInt(targetID, 10))
	h.recordAudit(r, guard.Principal().ID, "auth.impersonate.start", "users", strconv.FormatInt(targetID, 10), nil)
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) stopImpersonation(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	target := sess.Impersonated()
	sess.ClearImpersonated()
	if guard := authz.GuardFromContext(r.Context()); guard != nil && target != "" {
		h.recordAudit(r, guard.Principal().ID, "auth.impersonate.stop", "users", target, nil)
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// recordAudit best-effort writes the trail entry; a failed insert never
// fails the request.
func (h *Handler) recordAudit(r *http.Request, actorID int64, action, entity, entityID string, meta map[string]any) {
	if h.audit == nil {
		return
	}
	entry := shared.AuditLog{ActorID: actorID, Action: action, Entity: entity, EntityID: entityID, Meta: meta, At: time.Now()}
	if err := h.audit.Record(r.Context(), entry); err != nil {
		h.logger.Warn("audit record", slog.String("action", action), slog.Any("error", err))
	}
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return fwd
	}
	return r.RemoteAddr
}
