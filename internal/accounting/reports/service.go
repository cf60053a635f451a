// Package reports builds accounting reports from ERP ledger documents.
package reports

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/odyssey-erp/odyssey-bff/internal/accounting"
	"github.com/odyssey-erp/odyssey-bff/internal/accounting/aging"
	"github.com/odyssey-erp/odyssey-bff/internal/frappe"
	"github.com/odyssey-erp/odyssey-bff/internal/platform/httpx"
)

const (
	defaultListLimit    = 5000
	defaultBuildTimeout = 2 * time.Minute
)

// Store is the subset of the ERP client used by reports.
type Store interface {
	GetList(ctx context.Context, doctype string, opts frappe.ListOptions, dest any) error
}

// Config tunes the report service.
type Config struct {
	ListLimit int
	// BuildTimeout bounds a shared report build, which outlives any single
	// caller's context.
	BuildTimeout time.Duration
	Logger       *slog.Logger
}

// Service builds aging, general ledger and trial balance reports.
type Service struct {
	store     Store
	cache     *Cache
	listLimit int
	timeout   time.Duration
	logger    *slog.Logger
	group     singleflight.Group
	clock     func() time.Time
}

// NewService wires the report service.
func NewService(store Store, cache *Cache, cfg Config) *Service {
	limit := cfg.ListLimit
	if limit <= 0 {
		limit = defaultListLimit
	}
	timeout := cfg.BuildTimeout
	if timeout <= 0 {
		timeout = defaultBuildTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:     store,
		cache:     cache,
		listLimit: limit,
		timeout:   timeout,
		logger:    logger,
		clock:     time.Now,
	}
}

// Cache exposes the report cache for invalidation.
func (s *Service) Cache() *Cache {
	return s.cache
}

// AgingRequest scopes an aging report.
type AgingRequest struct {
	PartyType  accounting.PartyType
	ReportDate time.Time
	Company    string
}

// AgingReport is the aging response body.
type AgingReport struct {
	PartyType  string        `json:"party_type"`
	ReportDate string        `json:"report_date"`
	Data       []aging.Entry `json:"data"`
}

type invoiceRow struct {
	Name              string          `json:"name"`
	PostingDate       string          `json:"posting_date"`
	Customer          string          `json:"customer"`
	CustomerName      string          `json:"customer_name"`
	Supplier          string          `json:"supplier"`
	SupplierName      string          `json:"supplier_name"`
	OutstandingAmount decimal.Decimal `json:"outstanding_amount"`
	Currency          string          `json:"currency"`
}

// Aging returns per-party outstanding balances bucketed by age. Results are
// cached per party type, company and date; concurrent identical requests
// share one upstream fetch.
func (s *Service) Aging(ctx context.Context, req AgingRequest) (AgingReport, error) {
	if req.PartyType == "" {
		return AgingReport{}, fmt.Errorf("%w: party_type is required", httpx.ErrInvalidArgument)
	}
	if req.ReportDate.IsZero() {
		req.ReportDate, _ = aging.ParseReportDate("", s.clock())
	}
	key, err := s.cache.BuildKey(ctx, keyAging(string(req.PartyType), req.Company, req.ReportDate))
	if err != nil {
		return AgingReport{}, err
	}
	var report AgingReport
	err = s.cache.FetchJSON(ctx, key, &report, func(ctx context.Context) (any, error) {
		return s.sharedBuild(ctx, key, func(ctx context.Context) (any, error) {
			return s.buildAging(ctx, req)
		})
	})
	if err != nil {
		return AgingReport{}, err
	}
	return report, nil
}

// sharedBuild runs fn once per key for all concurrent callers. The build
// ignores the starting caller's cancellation and is bounded by s.timeout.
func (s *Service) sharedBuild(ctx context.Context, key string, fn func(context.Context) (any, error)) (any, error) {
	ch := s.group.DoChan(key, func() (any, error) {
		bctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
		defer cancel()
		return fn(bctx)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		return res.Val, res.Err
	}
}

func (s *Service) buildAging(ctx context.Context, req AgingRequest) (AgingReport, error) {
	pt := req.PartyType
	filters := []frappe.Filter{
		frappe.Eq("docstatus", 1),
		frappe.Where("outstanding_amount", ">", 0),
	}
	if req.Company != "" {
		filters = append(filters, frappe.Eq("company", req.Company))
	}
	rows, err := listAll[invoiceRow](ctx, s.store, pt.InvoiceDoctype(), frappe.ListOptions{
		Fields:  []string{"name", "posting_date", pt.PartyField(), pt.PartyNameField(), "outstanding_amount", "currency"},
		Filters: filters,
		OrderBy: "posting_date asc, name asc",
		Limit:   s.listLimit,
	})
	if err != nil {
		return AgingReport{}, fmt.Errorf("reports: list %s: %w", pt.InvoiceDoctype(), err)
	}

	invoices, err := toInvoices(pt, rows)
	if err != nil {
		return AgingReport{}, err
	}
	return AgingReport{
		PartyType:  string(pt),
		ReportDate: req.ReportDate.Format(aging.DateLayout),
		Data:       aging.Aggregate(string(pt), invoices, req.ReportDate),
	}, nil
}

// toInvoices validates raw invoice rows. Rows without a party or without a
// positive balance are dropped; unparseable dates fail the whole report.
func toInvoices(pt accounting.PartyType, rows []invoiceRow) ([]aging.Invoice, error) {
	out := make([]aging.Invoice, 0, len(rows))
	for _, row := range rows {
		party, partyName := row.Customer, row.CustomerName
		if pt == accounting.PartySupplier {
			party, partyName = row.Supplier, row.SupplierName
		}
		if party == "" || !row.OutstandingAmount.IsPositive() {
			continue
		}
		posted, err := time.Parse(aging.DateLayout, row.PostingDate)
		if err != nil {
			return nil, fmt.Errorf("reports: %s %s has malformed posting_date %q: %w", pt.InvoiceDoctype(), row.Name, row.PostingDate, err)
		}
		if partyName == "" {
			partyName = party
		}
		out = append(out, aging.Invoice{
			Name:              row.Name,
			PostingDate:       posted,
			Party:             party,
			PartyName:         partyName,
			OutstandingAmount: row.OutstandingAmount,
			Currency:          row.Currency,
		})
	}
	return out, nil
}

// GLFilter scopes a general ledger query.
type GLFilter struct {
	FromDate  time.Time
	ToDate    time.Time
	Company   string
	Account   string
	PartyType string
	Party     string
	VoucherNo string
}

// GLEntry is one ledger line with its running balance.
type GLEntry struct {
	Name        string          `json:"name"`
	PostingDate string          `json:"posting_date"`
	Account     string          `json:"account"`
	PartyType   string          `json:"party_type,omitempty"`
	Party       string          `json:"party,omitempty"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Balance     decimal.Decimal `json:"balance"`
	VoucherType string          `json:"voucher_type"`
	VoucherNo   string          `json:"voucher_no"`
	Against     string          `json:"against,omitempty"`
	Remarks     string          `json:"remarks,omitempty"`
}

// GLTotals summarises the listed entries.
type GLTotals struct {
	Debit   decimal.Decimal `json:"debit"`
	Credit  decimal.Decimal `json:"credit"`
	Balance decimal.Decimal `json:"balance"`
}

// GLReport is the general ledger response body.
type GLReport struct {
	FromDate string    `json:"from_date"`
	ToDate   string    `json:"to_date"`
	Entries  []GLEntry `json:"entries"`
	Totals   GLTotals  `json:"totals"`
}

var glFields = []string{
	"name", "posting_date", "account", "party_type", "party",
	"debit", "credit", "voucher_type", "voucher_no", "against", "remarks",
}

// ResolveGLRange applies the default range (first of the month through today)
// and rejects inverted ranges.
func ResolveGLRange(fromRaw, toRaw string, now time.Time) (time.Time, time.Time, error) {
	to, err := aging.ParseReportDate(toRaw, now)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: to_date %q is not a valid date", httpx.ErrInvalidArgument, toRaw)
	}
	from := time.Date(to.Year(), to.Month(), 1, 0, 0, 0, 0, time.UTC)
	if strings.TrimSpace(fromRaw) != "" {
		from, err = time.Parse(aging.DateLayout, strings.TrimSpace(fromRaw))
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: from_date %q is not a valid date", httpx.ErrInvalidArgument, fromRaw)
		}
	}
	if from.After(to) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: from_date must not be after to_date", httpx.ErrInvalidArgument)
	}
	return from, to, nil
}

// GeneralLedger lists non-cancelled ledger entries in the range with a
// running balance.
func (s *Service) GeneralLedger(ctx context.Context, filter GLFilter) (GLReport, error) {
	if filter.FromDate.After(filter.ToDate) {
		return GLReport{}, fmt.Errorf("%w: from_date must not be after to_date", httpx.ErrInvalidArgument)
	}
	filters := s.glFilters(filter)
	filters = append(filters,
		frappe.Where("posting_date", ">=", filter.FromDate.Format(aging.DateLayout)),
		frappe.Where("posting_date", "<=", filter.ToDate.Format(aging.DateLayout)),
	)
	entries, err := s.listGL(ctx, filters)
	if err != nil {
		return GLReport{}, err
	}

	report := GLReport{
		FromDate: filter.FromDate.Format(aging.DateLayout),
		ToDate:   filter.ToDate.Format(aging.DateLayout),
		Entries:  entries,
		Totals:   GLTotals{Debit: decimal.Zero, Credit: decimal.Zero, Balance: decimal.Zero},
	}
	running := decimal.Zero
	for i := range report.Entries {
		e := &report.Entries[i]
		running = running.Add(e.Debit).Sub(e.Credit)
		e.Balance = running
		report.Totals.Debit = report.Totals.Debit.Add(e.Debit)
		report.Totals.Credit = report.Totals.Credit.Add(e.Credit)
	}
	report.Totals.Balance = running
	return report, nil
}

// TrialBalance aggregates ledger rows per account: everything before the
// range forms the opening balance, rows inside it the period movement.
func (s *Service) TrialBalance(ctx context.Context, filter GLFilter) (TrialBalance, error) {
	if filter.FromDate.After(filter.ToDate) {
		return TrialBalance{}, fmt.Errorf("%w: from_date must not be after to_date", httpx.ErrInvalidArgument)
	}
	base := s.glFilters(filter)

	var opening, period []GLEntry
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		filters := append(append([]frappe.Filter(nil), base...),
			frappe.Where("posting_date", "<", filter.FromDate.Format(aging.DateLayout)))
		rows, err := s.listGL(gctx, filters)
		opening = rows
		return err
	})
	g.Go(func() error {
		filters := append(append([]frappe.Filter(nil), base...),
			frappe.Where("posting_date", ">=", filter.FromDate.Format(aging.DateLayout)),
			frappe.Where("posting_date", "<=", filter.ToDate.Format(aging.DateLayout)))
		rows, err := s.listGL(gctx, filters)
		period = rows
		return err
	})
	if err := g.Wait(); err != nil {
		return TrialBalance{}, err
	}

	tb := BuildTrialBalance(accumulateBalances(opening, period))
	tb.FromDate = filter.FromDate.Format(aging.DateLayout)
	tb.ToDate = filter.ToDate.Format(aging.DateLayout)
	return tb, nil
}

func (s *Service) glFilters(filter GLFilter) []frappe.Filter {
	filters := []frappe.Filter{frappe.Eq("is_cancelled", 0)}
	if filter.Company != "" {
		filters = append(filters, frappe.Eq("company", filter.Company))
	}
	if filter.Account != "" {
		filters = append(filters, frappe.Eq("account", filter.Account))
	}
	if filter.PartyType != "" {
		filters = append(filters, frappe.Eq("party_type", filter.PartyType))
	}
	if filter.Party != "" {
		filters = append(filters, frappe.Eq("party", filter.Party))
	}
	if filter.VoucherNo != "" {
		filters = append(filters, frappe.Eq("voucher_no", filter.VoucherNo))
	}
	return filters
}

func (s *Service) listGL(ctx context.Context, filters []frappe.Filter) ([]GLEntry, error) {
	rows, err := listAll[GLEntry](ctx, s.store, "GL Entry", frappe.ListOptions{
		Fields:  glFields,
		Filters: filters,
		OrderBy: "posting_date asc, creation asc, name asc",
		Limit:   s.listLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("reports: list GL Entry: %w", err)
	}
	return rows, nil
}

// listAll reads every matching document in pages of opts.Limit, advancing
// limit_start until the ERP returns a short page.
func listAll[T any](ctx context.Context, store Store, doctype string, opts frappe.ListOptions) ([]T, error) {
	out := []T{}
	for {
		var page []T
		if err := store.GetList(ctx, doctype, opts, &page); err != nil {
			return nil, err
		}
		out = append(out, page...)
		if opts.Limit <= 0 || len(page) < opts.Limit {
			return out, nil
		}
		opts.Start += len(page)
	}
}
