package items

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/odyssey-bff/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-bff/internal/shared"
)

type Handler struct {
	logger  *slog.Logger
	service *Service
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{name}", h.Show)
	r.Put("/{name}", h.Update)
	r.Delete("/{name}", h.Delete)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page, err := shared.ParsePage(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	q := r.URL.Query()
	filters := ListFilters{
		Search:    strings.TrimSpace(q.Get("search")),
		ItemGroup: strings.TrimSpace(q.Get("item_group")),
		Limit:     page.Limit,
		Start:     page.Start,
	}
	if raw := strings.TrimSpace(q.Get("disabled")); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			httpx.RespondError(w, fmt.Errorf("%w: disabled must be a boolean", httpx.ErrInvalidArgument))
			return
		}
		filters.Disabled = &v
	}

	rows, total, err := h.service.List(r.Context(), filters)
	if err != nil {
		h.logger.Error("list items", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, shared.ListResult[Item]{Data: rows, Total: total})
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	item, err := h.service.Get(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		h.logger.Error("get item", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": item})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var form ItemForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.RespondError(w, err)
		return
	}
	item, err := h.service.Create(r.Context(), form)
	if err != nil {
		h.logger.Error("create item", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"data": item})
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var patch ItemPatch
	if err := httpx.DecodeJSON(r, &patch); err != nil {
		httpx.RespondError(w, err)
		return
	}
	item, err := h.service.Update(r.Context(), chi.URLParam(r, "name"), patch)
	if err != nil {
		h.logger.Error("update item", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": item})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "name")); err != nil {
		h.logger.Error("delete item", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
