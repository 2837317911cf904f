package users

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/meridian-crm/meridian-crm/internal/authz"
	"github.com/meridian-crm/meridian-crm/internal/platform/httpx"
)

// Handler serves the account listing for the administration screens.
type Handler struct {
	logger *slog.Logger
	repo   *Repository
	mw     authz.Middleware
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, repo *Repository, mw authz.Middleware) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, repo: repo, mw: mw}
}

// MountRoutes registers user routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.mw.Require(authz.PermUsersView))
		r.Get("/", h.list)
	})
}

type userView struct {
	ID         int64      `json:"id"`
	Email      string     `json:"email"`
	Name       string     `json:"name"`
	Role       authz.Role `json:"role"`
	RepID      string     `json:"rep_id,omitempty"`
	Country    string     `json:"country,omitempty"`
	IsActive   bool       `json:"is_active"`
	Manageable bool       `json:"manageable"`
}

// list returns every account. The manageable flag tells the admin screen
// which rows the caller may edit or impersonate.
func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	guard := authz.GuardFromContext(r.Context())

	accounts, err := h.repo.ListUsers(r.Context())
	if err != nil {
		h.logger.Error("list users", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}

	views := make([]userView, 0, len(accounts))
	for _, u := range accounts {
		views = append(views, userView{
			ID:         u.ID,
			Email:      u.Email,
			Name:       u.Name,
			Role:       u.Role,
			RepID:      u.RepID,
			Country:    u.Country,
			IsActive:   u.IsActive,
			Manageable: guard.CanManageRole(u.Role),
		})
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"users": views})
}
