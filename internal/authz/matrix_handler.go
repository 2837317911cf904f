package authz

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/meridian-crm/meridian-crm/internal/platform/httpx"
	"github.com/meridian-crm/meridian-crm/internal/shared"
)

// MatrixHandler serves the administrative permission-matrix API.
type MatrixHandler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
	mw       Middleware
	audit    *shared.AuditLogger
}

// NewMatrixHandler builds a MatrixHandler instance. audit may be nil.
func NewMatrixHandler(logger *slog.Logger, service *Service, mw Middleware, audit *shared.AuditLogger) *MatrixHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &MatrixHandler{
		logger:   logger,
		service:  service,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		mw:       mw,
		audit:    audit,
	}
}

// MountRoutes registers the settings routes.
func (h *MatrixHandler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.mw.Require(PermSettingsPermissions))
		r.Get("/permissions", h.showMatrix)
		r.Post("/permissions", h.saveMatrix)
		r.Post("/permissions/cache/clear", h.clearCache)
	})
}

type saveMatrixRequest struct {
	Grants map[string]map[string]bool `json:"grants" validate:"required,min=1"`
}

func (h *MatrixHandler) showMatrix(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.service.PermissionMatrix(r.Context()))
}

func (h *MatrixHandler) saveMatrix(w http.ResponseWriter, r *http.Request) {
	guard := GuardFromContext(r.Context())
	if guard == nil {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}

	var req saveMatrixRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "request body must be valid JSON")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	requested := make(Matrix, len(req.Grants))
	for role, cells := range req.Grants {
		for code, granted := range cells {
			requested.Set(Role(role), code, granted)
		}
	}

	result, err := h.service.SavePermissionMatrix(r.Context(), guard.Principal(), requested)
	if err != nil {
		h.logger.Error("save permission matrix", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	if h.audit != nil && len(result.Allowed) > 0 {
		entry := shared.AuditLog{
			ActorID:  guard.Principal().ID,
			Action:   "authz.matrix.save",
			Entity:   "role_permissions",
			EntityID: "matrix",
			Meta:     map[string]any{"applied": len(result.Allowed), "denied": len(result.Denied)},
			At:       time.Now(),
		}
		if err := h.audit.Record(r.Context(), entry); err != nil {
			h.logger.Warn("audit record", slog.Any("error", err))
		}
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *MatrixHandler) clearCache(w http.ResponseWriter, r *http.Request) {
	h.service.ClearCache(r.Context())
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
