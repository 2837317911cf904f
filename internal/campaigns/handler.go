package campaigns

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/meridian-crm/meridian-crm/internal/authz"
	"github.com/meridian-crm/meridian-crm/internal/platform/httpx"
)

// Handler serves scoped campaign reads.
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

// MountRoutes registers campaign routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.mw.Require(authz.PermCampaignsView))
		r.Get("/", h.list)
		r.Get("/{campaignID}/assignees", h.listAssignees)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	guard := authz.GuardFromContext(r.Context())
	scope := guard.AccessibleCampaignIDs(r.Context())

	limit, offset := pagination(r)
	campaigns, err := h.repo.List(r.Context(), scope, limit, offset)
	if err != nil {
		h.logger.Error("list campaigns", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"campaigns": campaigns})
}

func (h *Handler) listAssignees(w http.ResponseWriter, r *http.Request) {
	campaignID, err := strconv.ParseInt(chi.URLParam(r, "campaignID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Parameter", "campaignID must be an integer")
		return
	}

	guard := authz.GuardFromContext(r.Context())
	if !guard.CanViewCampaign(r.Context(), campaignID) {
		httpx.RespondError(w, httpx.ErrForbidden)
		return
	}

	assignees, err := h.repo.ListAssignees(r.Context(), campaignID)
	if err != nil {
		h.logger.Error("list assignees", slog.Int64("campaign_id", campaignID), slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"assignees": assignees})
}

func pagination(r *http.Request) (limit, offset int) {
	limit = 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 && v <= 200 {
			limit = v
		}
	}
	if raw := r.URL.Query().Get("offset"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v >= 0 {
			offset = v
		}
	}
	return limit, offset
}
