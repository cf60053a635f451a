package procurement

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/odyssey-erp/odyssey-bff/internal/frappe"
	"github.com/odyssey-erp/odyssey-bff/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-bff/internal/platform/validate"
	"github.com/odyssey-erp/odyssey-bff/internal/shared"
	"github.com/odyssey-erp/odyssey-bff/internal/status"
)

// Store is the subset of the ERP client used for purchase orders.
type Store interface {
	GetList(ctx context.Context, doctype string, opts frappe.ListOptions, dest any) error
	GetCount(ctx context.Context, doctype string, filters []frappe.Filter) (int, error)
	GetDoc(ctx context.Context, doctype, name string, dest any) error
	Insert(ctx context.Context, doctype string, doc any, dest any) error
	Update(ctx context.Context, doctype, name string, patch any, dest any) error
	Delete(ctx context.Context, doctype, name string) error
}

// Service orchestrates purchase order flows.
type Service struct {
	store     Store
	validator *validate.Validator
	logger    *slog.Logger
}

// NewService constructs the procurement service.
func NewService(store Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, validator: validate.New(), logger: logger}
}

var listFields = []string{
	"name", "supplier", "supplier_name", "transaction_date", "schedule_date", "company",
	"currency", "grand_total", "docstatus", "status", "per_received", "per_billed",
}

// List returns one page of purchase orders and the total matching count.
func (s *Service) List(ctx context.Context, filter ListFilter) (shared.ListResult[PurchaseOrder], error) {
	var filters []frappe.Filter
	if filter.Supplier != "" {
		filters = append(filters, frappe.Eq("supplier", filter.Supplier))
	}
	if filter.Status != "" {
		filters = append(filters, frappe.Eq("status", filter.Status))
	}

	var (
		rows  []PurchaseOrder
		total int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.store.GetList(gctx, Doctype, frappe.ListOptions{
			Fields:  listFields,
			Filters: filters,
			OrderBy: "transaction_date desc, creation desc",
			Limit:   filter.Limit,
			Start:   filter.Start,
		}, &rows)
	})
	g.Go(func() error {
		n, err := s.store.GetCount(gctx, Doctype, filters)
		total = n
		return err
	})
	if err := g.Wait(); err != nil {
		return shared.ListResult[PurchaseOrder]{}, fmt.Errorf("procurement: list: %w", err)
	}
	if rows == nil {
		rows = []PurchaseOrder{}
	}
	for i := range rows {
		label(&rows[i])
	}
	return shared.ListResult[PurchaseOrder]{Data: rows, Total: total}, nil
}

// Get loads a purchase order with its items.
func (s *Service) Get(ctx context.Context, name string) (PurchaseOrder, error) {
	var po PurchaseOrder
	if err := s.store.GetDoc(ctx, Doctype, name, &po); err != nil {
		return PurchaseOrder{}, fmt.Errorf("procurement: get %s: %w", name, err)
	}
	label(&po)
	return po, nil
}

// Create inserts a draft purchase order.
func (s *Service) Create(ctx context.Context, input CreateInput) (PurchaseOrder, error) {
	if err := s.validator.Struct(input); err != nil {
		return PurchaseOrder{}, err
	}
	for i := range input.Items {
		if input.Items[i].ScheduleDate == "" {
			input.Items[i].ScheduleDate = input.ScheduleDate
		}
	}
	var po PurchaseOrder
	if err := s.store.Insert(ctx, Doctype, input, &po); err != nil {
		return PurchaseOrder{}, fmt.Errorf("procurement: create: %w", err)
	}
	label(&po)
	s.logger.Info("purchase order created", slog.String("name", po.Name), slog.String("supplier", po.Supplier))
	return po, nil
}

// Update patches a purchase order. Only drafts can be edited.
func (s *Service) Update(ctx context.Context, name string, input UpdateInput) (PurchaseOrder, error) {
	if err := s.validator.Struct(input); err != nil {
		return PurchaseOrder{}, err
	}
	current, err := s.Get(ctx, name)
	if err != nil {
		return PurchaseOrder{}, err
	}
	if status.DocStatus(current.DocStatus) != status.DocStatusDraft {
		return PurchaseOrder{}, fmt.Errorf("%w: purchase order %s is %s", httpx.ErrValidation, name, current.StatusLabel)
	}
	var po PurchaseOrder
	if err := s.store.Update(ctx, Doctype, name, input, &po); err != nil {
		return PurchaseOrder{}, fmt.Errorf("procurement: update %s: %w", name, err)
	}
	label(&po)
	return po, nil
}

// Delete removes a purchase order.
func (s *Service) Delete(ctx context.Context, name string) error {
	if err := s.store.Delete(ctx, Doctype, name); err != nil {
		return fmt.Errorf("procurement: delete %s: %w", name, err)
	}
	s.logger.Info("purchase order deleted", slog.String("name", name))
	return nil
}

func label(po *PurchaseOrder) {
	po.StatusLabel = status.PurchaseOrder.Label(status.DocStatus(po.DocStatus), po.PerReceived, po.PerBilled)
}
