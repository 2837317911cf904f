package orders

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/meridian-crm/meridian-crm/internal/authz"
	"github.com/meridian-crm/meridian-crm/internal/platform/httpx"
)

// PDFRenderer converts an HTML document into a PDF export.
type PDFRenderer interface {
	RenderHTML(ctx context.Context, html string) ([]byte, error)
}

// Handler serves scoped order reads.
type Handler struct {
	logger *slog.Logger
	repo   *Repository
	mw     authz.Middleware
	pdf    PDFRenderer
}

// NewHandler builds a Handler instance. pdf may be nil, which disables the
// export endpoint.
func NewHandler(logger *slog.Logger, repo *Repository, mw authz.Middleware, pdf PDFRenderer) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, repo: repo, mw: mw, pdf: pdf}
}

// MountRoutes registers order routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.mw.Require(authz.PermOrdersView))
		r.Get("/", h.list)
		r.Get("/{orderID}", h.get)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.mw.Require(authz.PermOrdersExport))
		r.Get("/export.pdf", h.exportPDF)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	guard := authz.GuardFromContext(r.Context())
	filter := guard.OrderScopeFilter(r.Context(), "o", "cu", 1)

	limit, offset := pagination(r)
	orders, err := h.repo.List(r.Context(), filter, limit, offset)
	if err != nil {
		h.logger.Error("list orders", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"orders": orders})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	orderID, err := strconv.ParseInt(chi.URLParam(r, "orderID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Parameter", "orderID must be an integer")
		return
	}

	guard := authz.GuardFromContext(r.Context())
	if !guard.CanViewOrder(r.Context(), orderID) {
		httpx.RespondError(w, httpx.ErrForbidden)
		return
	}

	filter := authz.Filter{Predicate: "o.id = $1", Args: []any{orderID}}
	found, err := h.repo.List(r.Context(), filter, 1, 0)
	if err != nil {
		h.logger.Error("get order", slog.Int64("order_id", orderID), slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	if len(found) == 0 {
		httpx.RespondError(w, httpx.ErrNotFound)
		return
	}
	httpx.JSON(w, http.StatusOK, found[0])
}

// exportPDF renders the caller's visible orders as a PDF document. The
// same scope filter as the JSON listing applies, so the export can never
// leak rows the screen would not show.
func (h *Handler) exportPDF(w http.ResponseWriter, r *http.Request) {
	if h.pdf == nil {
		httpx.Problem(w, http.StatusServiceUnavailable, "Export Unavailable", "PDF rendering is not configured")
		return
	}

	guard := authz.GuardFromContext(r.Context())
	filter := guard.OrderScopeFilter(r.Context(), "o", "cu", 1)

	orders, err := h.repo.List(r.Context(), filter, exportLimit, 0)
	if err != nil {
		h.logger.Error("export orders", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}

	pdf, err := h.pdf.RenderHTML(r.Context(), exportHTML(orders))
	if err != nil {
		h.logger.Error("render orders pdf", slog.Any("error", err))
		httpx.Problem(w, http.StatusBadGateway, "Export Failed", "")
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=orders.pdf")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
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
