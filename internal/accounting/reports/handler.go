package reports

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"

	"github.com/odyssey-erp/odyssey-bff/internal/accounting"
	"github.com/odyssey-erp/odyssey-bff/internal/accounting/aging"
	"github.com/odyssey-erp/odyssey-bff/internal/platform/httpx"
)

// PDFRenderer converts an HTML document into a PDF.
type PDFRenderer interface {
	RenderHTML(ctx context.Context, filename string, html []byte) ([]byte, error)
}

// Handler serves accounting report endpoints.
type Handler struct {
	service   *Service
	pdf       PDFRenderer
	logger    *slog.Logger
	rateLimit func(http.Handler) http.Handler
	now       func() time.Time
}

// NewHandler builds the report handler. pdf may be nil, in which case the
// PDF export answers 502.
func NewHandler(service *Service, pdf PDFRenderer, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		service:   service,
		pdf:       pdf,
		logger:    logger,
		rateLimit: httprate.LimitByIP(10, time.Minute),
		now:       time.Now,
	}
}

// MountRoutes registers report routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/aging", h.handleAging)
	r.Get("/gl", h.handleGeneralLedger)
	r.Get("/trial-balance", h.handleTrialBalance)
	r.Group(func(r chi.Router) {
		r.Use(h.rateLimit)
		r.Get("/aging.csv", h.handleAgingCSV)
		r.Get("/aging.pdf", h.handleAgingPDF)
	})
}

func (h *Handler) handleAging(w http.ResponseWriter, r *http.Request) {
	report, err := h.aging(r)
	if err != nil {
		h.fail(w, "aging report", err)
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

func (h *Handler) handleAgingCSV(w http.ResponseWriter, r *http.Request) {
	report, err := h.aging(r)
	if err != nil {
		h.fail(w, "aging csv", err)
		return
	}
	filename := fmt.Sprintf("aging-%s-%s.csv", strings.ToLower(report.PartyType), report.ReportDate)
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)
	w.WriteHeader(http.StatusOK)
	if err := WriteAgingCSV(w, report); err != nil {
		h.logger.Error("stream aging csv", slog.Any("error", err))
	}
}

func (h *Handler) handleAgingPDF(w http.ResponseWriter, r *http.Request) {
	report, err := h.aging(r)
	if err != nil {
		h.fail(w, "aging pdf", err)
		return
	}
	if h.pdf == nil {
		httpx.RespondError(w, fmt.Errorf("%w: pdf renderer not configured", httpx.ErrUpstream))
		return
	}
	html, err := RenderAgingHTML(report)
	if err != nil {
		h.fail(w, "aging pdf", err)
		return
	}
	filename := fmt.Sprintf("aging-%s-%s.pdf", strings.ToLower(report.PartyType), report.ReportDate)
	pdf, err := h.pdf.RenderHTML(r.Context(), filename, html)
	if err != nil {
		h.fail(w, "aging pdf", fmt.Errorf("%w: %v", httpx.ErrUpstream, err))
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "inline; filename="+filename)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}

func (h *Handler) aging(r *http.Request) (AgingReport, error) {
	q := r.URL.Query()
	partyType, err := accounting.ParsePartyType(q.Get("party_type"))
	if err != nil {
		return AgingReport{}, err
	}
	reportDate, err := aging.ParseReportDate(q.Get("report_date"), h.now())
	if err != nil {
		return AgingReport{}, err
	}
	return h.service.Aging(r.Context(), AgingRequest{
		PartyType:  partyType,
		ReportDate: reportDate,
		Company:    strings.TrimSpace(q.Get("company")),
	})
}

func (h *Handler) handleGeneralLedger(w http.ResponseWriter, r *http.Request) {
	filter, err := h.glFilter(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	report, err := h.service.GeneralLedger(r.Context(), filter)
	if err != nil {
		h.fail(w, "general ledger", err)
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

func (h *Handler) handleTrialBalance(w http.ResponseWriter, r *http.Request) {
	filter, err := h.glFilter(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	tb, err := h.service.TrialBalance(r.Context(), filter)
	if err != nil {
		h.fail(w, "trial balance", err)
		return
	}
	httpx.JSON(w, http.StatusOK, tb)
}

func (h *Handler) glFilter(r *http.Request) (GLFilter, error) {
	q := r.URL.Query()
	from, to, err := ResolveGLRange(q.Get("from_date"), q.Get("to_date"), h.now())
	if err != nil {
		return GLFilter{}, err
	}
	return GLFilter{
		FromDate:  from,
		ToDate:    to,
		Company:   strings.TrimSpace(q.Get("company")),
		Account:   strings.TrimSpace(q.Get("account")),
		PartyType: strings.TrimSpace(q.Get("party_type")),
		Party:     strings.TrimSpace(q.Get("party")),
		VoucherNo: strings.TrimSpace(q.Get("voucher_no")),
	}, nil
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	h.logger.Error(op, slog.Any("error", err))
	httpx.RespondError(w, err)
}
