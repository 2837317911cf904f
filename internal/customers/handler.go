package customers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/meridian-crm/meridian-crm/internal/authz"
	"github.com/meridian-crm/meridian-crm/internal/platform/httpx"
)

// Handler serves scoped customer reads.
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

// MountRoutes registers customer routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.mw.Require(authz.PermCustomersView))
		r.Get("/", h.list)
		r.Get("/countries", h.countries)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	guard := authz.GuardFromContext(r.Context())
	scope := guard.AccessibleCustomerNumbers(r.Context())

	limit, offset := pagination(r)
	customers, err := h.repo.List(r.Context(), scope, limit, offset)
	if err != nil {
		h.logger.Error("list customers", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"customers": customers})
}

// countries reports the countries the principal works in, for the country
// selector. Two or more countries mean no automatic preselection.
func (h *Handler) countries(w http.ResponseWriter, r *http.Request) {
	guard := authz.GuardFromContext(r.Context())
	countries := guard.AccessibleCountries(r.Context())

	var preselected string
	if len(countries) == 1 {
		preselected = countries[0]
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"countries":   countries,
		"preselected": preselected,
	})
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
