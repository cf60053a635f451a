package items

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-bff/internal/frappe/frappetest"
	"github.com/odyssey-erp/odyssey-bff/internal/platform/httpx"
)

func seedItems(store *frappetest.Store) {
	store.Seed(Doctype,
		map[string]any{"name": "ITEM-1", "item_code": "ITEM-1", "item_name": "Steel Bolt", "item_group": "Hardware", "stock_uom": "Nos", "disabled": 0, "standard_rate": 1.5},
		map[string]any{"name": "ITEM-2", "item_code": "ITEM-2", "item_name": "Copper Wire", "item_group": "Electrical", "stock_uom": "Meter", "disabled": 0},
		map[string]any{"name": "ITEM-3", "item_code": "ITEM-3", "item_name": "Old Bolt", "item_group": "Hardware", "stock_uom": "Nos", "disabled": 1},
	)
}

func newService(store *frappetest.Store) *Service {
	return NewService(NewRepository(store))
}

func TestListFilters(t *testing.T) {
	store := frappetest.New()
	seedItems(store)
	svc := newService(store)
	enabled := false

	rows, total, err := svc.List(context.Background(), ListFilters{Search: "bolt", Limit: 20})
	require.NoError(t, err)
	require.Equal(t, 2, total)
	require.Len(t, rows, 2)

	rows, total, err = svc.List(context.Background(), ListFilters{ItemGroup: "Hardware", Disabled: &enabled, Limit: 20})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Equal(t, "ITEM-1", rows[0].Name)
	require.Equal(t, "1.5", rows[0].StandardRate.String())
}

func TestCreateUsesItemCodeAsName(t *testing.T) {
	store := frappetest.New()
	svc := newService(store)

	item, err := svc.Create(context.Background(), ItemForm{ItemCode: " BOLT-10 ", ItemName: "Bolt 10mm", ItemGroup: "Hardware", StockUOM: "Nos"})
	require.NoError(t, err)
	require.Equal(t, "BOLT-10", item.Name)
	require.Equal(t, 1, item.IsStockItem)

	_, err = svc.Create(context.Background(), ItemForm{ItemCode: "BOLT-10", ItemName: "Dup", ItemGroup: "Hardware", StockUOM: "Nos"})
	require.ErrorIs(t, err, httpx.ErrDuplicate)
}

func TestCreateValidation(t *testing.T) {
	_, err := newService(frappetest.New()).Create(context.Background(), ItemForm{ItemCode: "X"})
	require.ErrorIs(t, err, httpx.ErrValidation)
	require.Contains(t, err.Error(), "item_name is required")
	require.Contains(t, err.Error(), "stock_uom is required")
}

func TestUpdateDisablesItem(t *testing.T) {
	store := frappetest.New()
	seedItems(store)
	disabled := true

	item, err := newService(store).Update(context.Background(), "ITEM-2", ItemPatch{Disabled: &disabled})
	require.NoError(t, err)
	require.Equal(t, 1, item.Disabled)
	require.Equal(t, "Copper Wire", item.ItemName)
}

func TestDeleteMissing(t *testing.T) {
	err := newService(frappetest.New()).Delete(context.Background(), "NOPE")
	require.ErrorIs(t, err, httpx.ErrNotFound)
	require.ErrorIs(t, newService(frappetest.New()).Delete(context.Background(), " "), httpx.ErrInvalidArgument)
}

func TestHandlerRoutes(t *testing.T) {
	store := frappetest.New()
	seedItems(store)
	r := chi.NewRouter()
	NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), newService(store)).MountRoutes(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/?disabled=true", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Data []struct {
			Name string `json:"name"`
		} `json:"data"`
		Total int `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, 1, body.Total)
	require.Equal(t, "ITEM-3", body.Data[0].Name)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/?disabled=maybe", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"item_code":"NEW-1","item_name":"New","item_group":"Hardware","stock_uom":"Nos","standard_rate":4}`)))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/NEW-1", strings.NewReader(`{"item_name":"Renamed"}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"item_name":"Renamed"`)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/NEW-1", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/NEW-1", nil))
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/NEW-1", strings.NewReader(`{"item_name":""}`)))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
