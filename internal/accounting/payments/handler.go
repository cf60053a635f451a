package payments

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-bff/internal/accounting"
	"github.com/odyssey-erp/odyssey-bff/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-bff/internal/shared"
)

// Handler serves payment endpoints.
type Handler struct {
	service *Service
	logger  *slog.Logger
}

// NewHandler builds the payment handler.
func NewHandler(service *Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{service: service, logger: logger}
}

// MountRoutes registers payment routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/outstanding", h.outstanding)
	r.Post("/allocate", h.allocate)
	r.Get("/{name}", h.show)
}

func (h *Handler) outstanding(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	partyType, err := accounting.ParsePartyType(q.Get("party_type"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	paid := decimal.Zero
	if raw := strings.TrimSpace(q.Get("paid_amount")); raw != "" {
		paid, err = decimal.NewFromString(raw)
		if err != nil {
			httpx.RespondError(w, fmt.Errorf("%w: paid_amount must be a number", httpx.ErrInvalidArgument))
			return
		}
	}
	out, err := h.service.Outstanding(r.Context(), partyType, q.Get("party"), paid)
	if err != nil {
		h.fail(w, "list outstanding invoices", err)
		return
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) allocate(w http.ResponseWriter, r *http.Request) {
	var input AllocateInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.RespondError(w, err)
		return
	}
	result, err := h.service.Allocate(input)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	key, err := shared.ParseIdempotencyKey(r.Header.Get(shared.IdempotencyHeader))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var input CreateInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.RespondError(w, err)
		return
	}
	payment, err := h.service.Create(r.Context(), input, key)
	if err != nil {
		h.fail(w, "create payment", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"payment": payment})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	page, err := shared.ParsePage(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	q := r.URL.Query()
	rows, err := h.service.List(r.Context(), ListFilter{
		PartyType: strings.TrimSpace(q.Get("party_type")),
		Party:     strings.TrimSpace(q.Get("party")),
		Limit:     page.Limit,
		Start:     page.Start,
	})
	if err != nil {
		h.fail(w, "list payments", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": rows})
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	payment, err := h.service.Get(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		h.fail(w, "get payment", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"payment": payment})
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	h.logger.Error(op, slog.Any("error", err))
	httpx.RespondError(w, err)
}
