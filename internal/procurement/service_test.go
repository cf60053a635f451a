package procurement

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-bff/internal/frappe/frappetest"
	"github.com/odyssey-erp/odyssey-bff/internal/platform/httpx"
)

func seedOrders(store *frappetest.Store) {
	store.Seed(Doctype,
		map[string]any{"name": "PO-1", "supplier": "S1", "docstatus": 0},
		map[string]any{"name": "PO-2", "supplier": "S1", "docstatus": 1, "per_received": 100, "per_billed": 40},
		map[string]any{"name": "PO-3", "supplier": "S2", "docstatus": 1, "per_received": 100, "per_billed": 100},
		map[string]any{"name": "PO-4", "supplier": "S1", "docstatus": 2},
		map[string]any{"name": "PO-5", "supplier": "S1", "docstatus": 1},
	)
}

func TestListReturnsPageTotalAndLabels(t *testing.T) {
	store := frappetest.New()
	seedOrders(store)
	svc := NewService(store, nil)

	res, err := svc.List(context.Background(), ListFilter{Supplier: "S1", Limit: 3})
	require.NoError(t, err)
	require.Equal(t, 4, res.Total)
	require.Len(t, res.Data, 3)
	require.Equal(t, "Draft", res.Data[0].StatusLabel)
	require.Equal(t, "To Bill", res.Data[1].StatusLabel)
	require.Equal(t, "Cancelled", res.Data[2].StatusLabel)

	res, err = svc.List(context.Background(), ListFilter{Supplier: "S1", Limit: 3, Start: 3})
	require.NoError(t, err)
	require.Len(t, res.Data, 1)
	require.Equal(t, "To Receive and Bill", res.Data[0].StatusLabel)
}

func TestListEmpty(t *testing.T) {
	res, err := NewService(frappetest.New(), nil).List(context.Background(), ListFilter{Limit: 20})
	require.NoError(t, err)
	require.NotNil(t, res.Data)
	require.Zero(t, res.Total)
}

func TestListPropagatesUpstreamError(t *testing.T) {
	store := frappetest.New()
	store.Err = httpx.ErrForbidden
	_, err := NewService(store, nil).List(context.Background(), ListFilter{})
	require.ErrorIs(t, err, httpx.ErrForbidden)
}

func TestGetCompletedOrder(t *testing.T) {
	store := frappetest.New()
	seedOrders(store)
	po, err := NewService(store, nil).Get(context.Background(), "PO-3")
	require.NoError(t, err)
	require.Equal(t, "Completed", po.StatusLabel)
}

func validCreate() CreateInput {
	return CreateInput{
		Supplier:     "S1",
		ScheduleDate: "2024-04-15",
		Company:      "Odyssey",
		Items: []OrderItem{
			{ItemCode: "ITEM-1", Qty: decimal.NewFromInt(5), Rate: decimal.RequireFromString("12.5")},
		},
	}
}

func TestCreateDraftOrder(t *testing.T) {
	store := frappetest.New()
	svc := NewService(store, nil)

	po, err := svc.Create(context.Background(), validCreate())
	require.NoError(t, err)
	require.Equal(t, "Draft", po.StatusLabel)
	require.Len(t, po.Items, 1)
	require.Equal(t, "2024-04-15", po.Items[0].ScheduleDate)

	docs := store.Docs(Doctype)
	require.Len(t, docs, 1)
	require.Equal(t, "S1", docs[0]["supplier"])
}

func TestCreateValidation(t *testing.T) {
	svc := NewService(frappetest.New(), nil)
	input := validCreate()
	input.Supplier = ""
	input.Items = []OrderItem{{ItemCode: "", Qty: decimal.Zero}}

	_, err := svc.Create(context.Background(), input)
	require.ErrorIs(t, err, httpx.ErrValidation)
	require.Contains(t, err.Error(), "supplier is required")
	require.Contains(t, err.Error(), "items[0].item_code is required")
	require.Contains(t, err.Error(), "items[0].qty must be greater than 0")

	input = validCreate()
	input.Items = nil
	_, err = svc.Create(context.Background(), input)
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestUpdateOnlyDrafts(t *testing.T) {
	store := frappetest.New()
	seedOrders(store)
	svc := NewService(store, nil)
	date := "2024-05-01"

	po, err := svc.Update(context.Background(), "PO-1", UpdateInput{ScheduleDate: &date})
	require.NoError(t, err)
	require.Equal(t, "2024-05-01", po.ScheduleDate)

	_, err = svc.Update(context.Background(), "PO-2", UpdateInput{ScheduleDate: &date})
	require.ErrorIs(t, err, httpx.ErrValidation)

	_, err = svc.Update(context.Background(), "PO-404", UpdateInput{ScheduleDate: &date})
	require.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestDelete(t *testing.T) {
	store := frappetest.New()
	seedOrders(store)
	svc := NewService(store, nil)

	require.NoError(t, svc.Delete(context.Background(), "PO-1"))
	require.Len(t, store.Docs(Doctype), 4)
	require.ErrorIs(t, svc.Delete(context.Background(), "PO-1"), httpx.ErrNotFound)
}
