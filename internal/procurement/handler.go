package procurement

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/odyssey-bff/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-bff/internal/shared"
)

// Handler serves purchase order endpoints.
type Handler struct {
	service *Service
	logger  *slog.Logger
}

// NewHandler builds the purchase order handler.
func NewHandler(service *Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{service: service, logger: logger}
}

// MountRoutes registers purchase order routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{name}", h.show)
	r.Put("/{name}", h.update)
	r.Delete("/{name}", h.delete)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	page, err := shared.ParsePage(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	q := r.URL.Query()
	result, err := h.service.List(r.Context(), ListFilter{
		Supplier: strings.TrimSpace(q.Get("supplier")),
		Status:   strings.TrimSpace(q.Get("status")),
		Limit:    page.Limit,
		Start:    page.Start,
	})
	if err != nil {
		h.fail(w, "list purchase orders", err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	po, err := h.service.Get(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		h.fail(w, "get purchase order", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": po})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var input CreateInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.RespondError(w, err)
		return
	}
	po, err := h.service.Create(r.Context(), input)
	if err != nil {
		h.fail(w, "create purchase order", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"data": po})
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var input UpdateInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.RespondError(w, err)
		return
	}
	po, err := h.service.Update(r.Context(), chi.URLParam(r, "name"), input)
	if err != nil {
		h.fail(w, "update purchase order", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": po})
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "name")); err != nil {
		h.fail(w, "delete purchase order", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	h.logger.Error(op, slog.Any("error", err))
	httpx.RespondError(w, err)
}
