package items

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/odyssey-erp/odyssey-bff/internal/frappe"
)

type Repository interface {
	List(ctx context.Context, filters ListFilters) ([]Item, int, error)
	Get(ctx context.Context, name string) (Item, error)
	Create(ctx context.Context, doc itemDoc) (Item, error)
	Update(ctx context.Context, name string, doc itemDoc) (Item, error)
	Delete(ctx context.Context, name string) error
}

// Store is the subset of the ERP client backing the repository.
type Store interface {
	GetList(ctx context.Context, doctype string, opts frappe.ListOptions, dest any) error
	GetCount(ctx context.Context, doctype string, filters []frappe.Filter) (int, error)
	GetDoc(ctx context.Context, doctype, name string, dest any) error
	Insert(ctx context.Context, doctype string, doc any, dest any) error
	Update(ctx context.Context, doctype, name string, patch any, dest any) error
	Delete(ctx context.Context, doctype, name string) error
}

type frappeRepository struct {
	store Store
}

func NewRepository(store Store) Repository {
	return &frappeRepository{store: store}
}

var listFields = []string{
	"name", "item_code", "item_name", "item_group", "stock_uom", "is_stock_item",
	"disabled", "standard_rate", "valuation_rate", "modified",
}

func (r *frappeRepository) List(ctx context.Context, filters ListFilters) ([]Item, int, error) {
	var conds []frappe.Filter
	if filters.Search != "" {
		conds = append(conds, frappe.Where("item_name", "like", "%"+filters.Search+"%"))
	}
	if filters.ItemGroup != "" {
		conds = append(conds, frappe.Eq("item_group", filters.ItemGroup))
	}
	if filters.Disabled != nil {
		v := 0
		if *filters.Disabled {
			v = 1
		}
		conds = append(conds, frappe.Eq("disabled", v))
	}

	var (
		rows  []Item
		total int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return r.store.GetList(gctx, Doctype, frappe.ListOptions{
			Fields:  listFields,
			Filters: conds,
			OrderBy: "item_name asc",
			Limit:   filters.Limit,
			Start:   filters.Start,
		}, &rows)
	})
	g.Go(func() error {
		n, err := r.store.GetCount(gctx, Doctype, conds)
		total = n
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, 0, fmt.Errorf("items: list: %w", err)
	}
	if rows == nil {
		rows = []Item{}
	}
	return rows, total, nil
}

func (r *frappeRepository) Get(ctx context.Context, name string) (Item, error) {
	var item Item
	if err := r.store.GetDoc(ctx, Doctype, name, &item); err != nil {
		return Item{}, fmt.Errorf("items: get %s: %w", name, err)
	}
	return item, nil
}

func (r *frappeRepository) Create(ctx context.Context, doc itemDoc) (Item, error) {
	var item Item
	payload := struct {
		Name string `json:"name"`
		itemDoc
	}{Name: doc.ItemCode, itemDoc: doc}
	if err := r.store.Insert(ctx, Doctype, payload, &item); err != nil {
		return Item{}, fmt.Errorf("items: create: %w", err)
	}
	return item, nil
}

func (r *frappeRepository) Update(ctx context.Context, name string, doc itemDoc) (Item, error) {
	var item Item
	if err := r.store.Update(ctx, Doctype, name, doc, &item); err != nil {
		return Item{}, fmt.Errorf("items: update %s: %w", name, err)
	}
	return item, nil
}

func (r *frappeRepository) Delete(ctx context.Context, name string) error {
	if err := r.store.Delete(ctx, Doctype, name); err != nil {
		return fmt.Errorf("items: delete %s: %w", name, err)
	}
	return nil
}
