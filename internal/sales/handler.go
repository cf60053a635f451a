package sales

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/odyssey-bff/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-bff/internal/shared"
)

// Handler manages sales order endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers sales order routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.listSalesOrders)
	r.Get("/{name}", h.showSalesOrder)
}

func (h *Handler) listSalesOrders(w http.ResponseWriter, r *http.Request) {
	page, err := shared.ParsePage(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	q := r.URL.Query()
	result, err := h.service.List(r.Context(), ListFilter{
		Customer: strings.TrimSpace(q.Get("customer")),
		Status:   strings.TrimSpace(q.Get("status")),
		Limit:    page.Limit,
		Start:    page.Start,
	})
	if err != nil {
		h.logger.Error("list sales orders", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) showSalesOrder(w http.ResponseWriter, r *http.Request) {
	so, err := h.service.Get(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		h.logger.Error("get sales order", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": so})
}
