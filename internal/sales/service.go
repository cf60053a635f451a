package sales

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/odyssey-erp/odyssey-bff/internal/frappe"
	"github.com/odyssey-erp/odyssey-bff/internal/shared"
	"github.com/odyssey-erp/odyssey-bff/internal/status"
)

// Store is the subset of the ERP client used for sales orders.
type Store interface {
	GetList(ctx context.Context, doctype string, opts frappe.ListOptions, dest any) error
	GetCount(ctx context.Context, doctype string, filters []frappe.Filter) (int, error)
	GetDoc(ctx context.Context, doctype, name string, dest any) error
}

// Service reads sales orders.
type Service struct {
	store Store
}

// NewService builds Service instance.
func NewService(store Store) *Service {
	return &Service{store: store}
}

var listFields = []string{
	"name", "customer", "customer_name", "transaction_date", "delivery_date", "company",
	"currency", "grand_total", "docstatus", "status", "per_delivered", "per_billed",
}

// List returns one page of sales orders and the total matching count.
func (s *Service) List(ctx context.Context, filter ListFilter) (shared.ListResult[SalesOrder], error) {
	var filters []frappe.Filter
	if filter.Customer != "" {
		filters = append(filters, frappe.Eq("customer", filter.Customer))
	}
	if filter.Status != "" {
		filters = append(filters, frappe.Eq("status", filter.Status))
	}

	var (
		rows  []SalesOrder
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
		return shared.ListResult[SalesOrder]{}, fmt.Errorf("sales: list orders: %w", err)
	}
	if rows == nil {
		rows = []SalesOrder{}
	}
	for i := range rows {
		label(&rows[i])
	}
	return shared.ListResult[SalesOrder]{Data: rows, Total: total}, nil
}

// Get loads a sales order with its items.
func (s *Service) Get(ctx context.Context, name string) (SalesOrder, error) {
	var so SalesOrder
	if err := s.store.GetDoc(ctx, Doctype, name, &so); err != nil {
		return SalesOrder{}, fmt.Errorf("sales: get order %s: %w", name, err)
	}
	label(&so)
	return so, nil
}

func label(so *SalesOrder) {
	so.StatusLabel = status.SalesOrder.Label(status.DocStatus(so.DocStatus), so.PerDelivered, so.PerBilled)
}
