package payments

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-bff/internal/accounting"
	"github.com/odyssey-erp/odyssey-bff/internal/accounting/aging"
	"github.com/odyssey-erp/odyssey-bff/internal/accounting/allocation"
	"github.com/odyssey-erp/odyssey-bff/internal/frappe"
	"github.com/odyssey-erp/odyssey-bff/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-bff/internal/platform/validate"
	"github.com/odyssey-erp/odyssey-bff/internal/status"
)

const idempotencyModule = "payments"

// Store is the subset of the ERP client used for payments.
type Store interface {
	GetList(ctx context.Context, doctype string, opts frappe.ListOptions, dest any) error
	GetDoc(ctx context.Context, doctype, name string, dest any) error
	Insert(ctx context.Context, doctype string, doc any, dest any) error
}

// IdempotencyPort claims request keys.
type IdempotencyPort interface {
	CheckAndInsert(ctx context.Context, key, module string) error
	Delete(ctx context.Context, key, module string) error
}

// CacheBumper invalidates cached reports.
type CacheBumper interface {
	Bump(ctx context.Context) error
}

// WarmupEnqueuer schedules a rebuild of cached aging reports.
type WarmupEnqueuer interface {
	EnqueueAgingWarmup(ctx context.Context, company string) error
}

// Options carries optional collaborators.
type Options struct {
	Idempotency    IdempotencyPort
	Cache          CacheBumper
	Warmup         WarmupEnqueuer
	DefaultCompany string
	ListLimit      int
	Logger         *slog.Logger
}

// Service orchestrates payment preparation and creation.
type Service struct {
	store          Store
	idempotency    IdempotencyPort
	cache          CacheBumper
	warmup         WarmupEnqueuer
	validator      *validate.Validator
	defaultCompany string
	listLimit      int
	logger         *slog.Logger
	now            func() time.Time
}

// NewService constructs the payment service.
func NewService(store Store, opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	limit := opts.ListLimit
	if limit <= 0 {
		limit = 5000
	}
	return &Service{
		store:          store,
		idempotency:    opts.Idempotency,
		cache:          opts.Cache,
		warmup:         opts.Warmup,
		validator:      validate.New(),
		defaultCompany: opts.DefaultCompany,
		listLimit:      limit,
		logger:         logger,
		now:            time.Now,
	}
}

type outstandingRow struct {
	Name              string          `json:"name"`
	DueDate           string          `json:"due_date"`
	OutstandingAmount decimal.Decimal `json:"outstanding_amount"`
}

// Outstanding loads the party's submitted invoices with a balance, oldest due
// first, and allocates paid across them.
func (s *Service) Outstanding(ctx context.Context, partyType accounting.PartyType, party string, paid decimal.Decimal) (Outstanding, error) {
	party = strings.TrimSpace(party)
	if party == "" {
		return Outstanding{}, fmt.Errorf("%w: party is required", httpx.ErrInvalidArgument)
	}
	doctype := partyType.InvoiceDoctype()
	var rows []outstandingRow
	err := s.store.GetList(ctx, doctype, frappe.ListOptions{
		Fields: []string{"name", "due_date", "outstanding_amount"},
		Filters: []frappe.Filter{
			frappe.Eq(partyType.PartyField(), party),
			frappe.Eq("docstatus", 1),
			frappe.Where("outstanding_amount", ">", 0),
		},
		OrderBy: "due_date asc, posting_date asc",
		Limit:   s.listLimit,
	}, &rows)
	if err != nil {
		return Outstanding{}, fmt.Errorf("payments: list %s: %w", doctype, err)
	}

	refs := make([]allocation.Reference, 0, len(rows))
	for _, row := range rows {
		refs = append(refs, allocation.Reference{
			ReferenceDoctype:  doctype,
			ReferenceName:     row.Name,
			DueDate:           row.DueDate,
			OutstandingAmount: row.OutstandingAmount,
			AllocatedAmount:   decimal.Zero,
		})
	}
	draft := allocation.NewDraft(paid, refs)
	result := draft.References()
	return Outstanding{
		PartyType:   string(partyType),
		Party:       party,
		PaidAmount:  paid,
		References:  result,
		Allocated:   allocation.Allocated(result),
		Unallocated: draft.Unallocated(),
	}, nil
}

// Allocate recomputes allocations for the submitted references and then
// applies overrides verbatim.
func (s *Service) Allocate(input AllocateInput) (AllocateResult, error) {
	draft := allocation.NewDraft(input.PaidAmount, input.References)
	for name, amount := range input.Overrides {
		if !draft.Override(name, amount) {
			return AllocateResult{}, fmt.Errorf("%w: override for unknown reference %q", httpx.ErrInvalidArgument, name)
		}
	}
	refs := draft.References()
	if refs == nil {
		refs = []allocation.Reference{}
	}
	return AllocateResult{
		PaidAmount:  draft.PaidAmount(),
		References:  refs,
		Allocated:   allocation.Allocated(refs),
		Unallocated: draft.Unallocated(),
	}, nil
}

// Create inserts a draft Payment Entry. A non-empty idempotency key is
// claimed first and released again when the insert fails.
func (s *Service) Create(ctx context.Context, input CreateInput, idempotencyKey string) (Payment, error) {
	if err := s.validator.Struct(input); err != nil {
		return Payment{}, err
	}
	partyType, err := accounting.ParsePartyType(input.PartyType)
	if err != nil {
		return Payment{}, err
	}

	if idempotencyKey != "" {
		if s.idempotency == nil {
			return Payment{}, errors.New("payments: idempotency store not configured")
		}
		if err := s.idempotency.CheckAndInsert(ctx, idempotencyKey, idempotencyModule); err != nil {
			return Payment{}, err
		}
	}

	doc := s.buildEntry(partyType, input)
	var created Payment
	if err := s.store.Insert(ctx, Doctype, doc, &created); err != nil {
		if idempotencyKey != "" {
			if derr := s.idempotency.Delete(ctx, idempotencyKey, idempotencyModule); derr != nil {
				s.logger.Warn("release idempotency key", slog.String("key", idempotencyKey), slog.Any("error", derr))
			}
		}
		return Payment{}, fmt.Errorf("payments: insert: %w", err)
	}
	created.StatusLabel = docStatusLabel(created.DocStatus)

	s.logger.Info("payment entry created",
		slog.String("name", created.Name),
		slog.String("party_type", doc.PartyType),
		slog.String("party", doc.Party),
		slog.String("paid_amount", doc.PaidAmount.String()))

	if s.cache != nil {
		if err := s.cache.Bump(ctx); err != nil {
			s.logger.Warn("bump report cache", slog.Any("error", err))
		}
	}
	if s.warmup != nil {
		if err := s.warmup.EnqueueAgingWarmup(ctx, doc.Company); err != nil {
			s.logger.Warn("enqueue aging warmup", slog.Any("error", err))
		}
	}
	return created, nil
}

func (s *Service) buildEntry(partyType accounting.PartyType, input CreateInput) entryDoc {
	postingDate := input.PostingDate
	if postingDate == "" {
		postingDate = s.now().Format(aging.DateLayout)
	}
	company := strings.TrimSpace(input.Company)
	if company == "" {
		company = s.defaultCompany
	}
	refs := make([]entryReference, 0, len(input.References))
	for _, ref := range input.References {
		if !ref.AllocatedAmount.IsPositive() {
			continue
		}
		doctype := ref.ReferenceDoctype
		if doctype == "" {
			doctype = partyType.InvoiceDoctype()
		}
		refs = append(refs, entryReference{
			ReferenceDoctype: doctype,
			ReferenceName:    ref.ReferenceName,
			AllocatedAmount:  ref.AllocatedAmount,
		})
	}
	return entryDoc{
		PaymentType:        partyType.PaymentType(),
		PartyType:          string(partyType),
		Party:              strings.TrimSpace(input.Party),
		PostingDate:        postingDate,
		Company:            company,
		ModeOfPayment:      input.ModeOfPayment,
		PaidAmount:         input.PaidAmount,
		ReceivedAmount:     input.PaidAmount,
		SourceExchangeRate: decimal.NewFromInt(1),
		TargetExchangeRate: decimal.NewFromInt(1),
		ReferenceNo:        input.ReferenceNo,
		ReferenceDate:      input.ReferenceDate,
		References:         refs,
	}
}

var listFields = []string{
	"name", "payment_type", "party_type", "party", "party_name", "posting_date",
	"company", "mode_of_payment", "paid_amount", "reference_no", "docstatus",
}

// List returns Payment Entries, newest first.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Payment, error) {
	var filters []frappe.Filter
	if filter.PartyType != "" {
		pt, err := accounting.ParsePartyType(filter.PartyType)
		if err != nil {
			return nil, err
		}
		filters = append(filters, frappe.Eq("party_type", string(pt)))
	}
	if filter.Party != "" {
		filters = append(filters, frappe.Eq("party", filter.Party))
	}
	var rows []Payment
	err := s.store.GetList(ctx, Doctype, frappe.ListOptions{
		Fields:  listFields,
		Filters: filters,
		OrderBy: "posting_date desc, creation desc",
		Limit:   filter.Limit,
		Start:   filter.Start,
	}, &rows)
	if err != nil {
		return nil, fmt.Errorf("payments: list: %w", err)
	}
	if rows == nil {
		rows = []Payment{}
	}
	for i := range rows {
		rows[i].StatusLabel = docStatusLabel(rows[i].DocStatus)
	}
	return rows, nil
}

// Get loads one Payment Entry with its references.
func (s *Service) Get(ctx context.Context, name string) (Payment, error) {
	var p Payment
	if err := s.store.GetDoc(ctx, Doctype, name, &p); err != nil {
		return Payment{}, fmt.Errorf("payments: get %s: %w", name, err)
	}
	p.StatusLabel = docStatusLabel(p.DocStatus)
	return p, nil
}

func docStatusLabel(docstatus int) string {
	switch status.DocStatus(docstatus) {
	case status.DocStatusDraft:
		return status.LabelDraft
	case status.DocStatusSubmitted:
		return status.LabelSubmitted
	case status.DocStatusCancelled:
		return status.LabelCancelled
	}
	return status.LabelUnknown
}
