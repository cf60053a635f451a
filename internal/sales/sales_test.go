package sales

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-bff/internal/frappe/frappetest"
	"github.com/odyssey-erp/odyssey-bff/internal/platform/httpx"
)

func seedOrders(store *frappetest.Store) {
	store.Seed(Doctype,
		map[string]any{"name": "SO-1", "customer": "C1", "docstatus": 1, "per_delivered": 100, "per_billed": 100},
		map[string]any{"name": "SO-2", "customer": "C1", "docstatus": 1, "per_delivered": 30, "per_billed": 100},
		map[string]any{"name": "SO-3", "customer": "C2", "docstatus": 1, "per_delivered": 100, "per_billed": 0},
		map[string]any{"name": "SO-4", "customer": "C1", "docstatus": 7},
		map[string]any{"name": "SO-5", "customer": "C1", "docstatus": 1,
			"items": []map[string]any{{"item_code": "ITEM-1", "qty": 3, "rate": 2, "amount": 6}}},
	)
}

func TestListDerivesLabels(t *testing.T) {
	store := frappetest.New()
	seedOrders(store)
	svc := NewService(store)

	res, err := svc.List(context.Background(), ListFilter{Limit: 20})
	require.NoError(t, err)
	require.Equal(t, 5, res.Total)
	labels := make([]string, 0, len(res.Data))
	for _, so := range res.Data {
		labels = append(labels, so.StatusLabel)
	}
	require.Equal(t, []string{"Completed", "To Deliver", "To Bill", "Unknown", "To Deliver and Bill"}, labels)
}

func TestListByCustomer(t *testing.T) {
	store := frappetest.New()
	seedOrders(store)

	res, err := NewService(store).List(context.Background(), ListFilter{Customer: "C2", Limit: 20})
	require.NoError(t, err)
	require.Equal(t, 1, res.Total)
	require.Equal(t, "SO-3", res.Data[0].Name)
}

func TestGetIncludesItems(t *testing.T) {
	store := frappetest.New()
	seedOrders(store)

	so, err := NewService(store).Get(context.Background(), "SO-5")
	require.NoError(t, err)
	require.Len(t, so.Items, 1)
	require.Equal(t, "ITEM-1", so.Items[0].ItemCode)

	_, err = NewService(store).Get(context.Background(), "SO-404")
	require.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestHandlers(t *testing.T) {
	store := frappetest.New()
	seedOrders(store)
	r := chi.NewRouter()
	NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), NewService(store)).MountRoutes(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/?customer=C1&limit=2&start=1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Data []struct {
			Name string `json:"name"`
		} `json:"data"`
		Total int `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, 4, body.Total)
	require.Len(t, body.Data, 2)
	require.Equal(t, "SO-2", body.Data[0].Name)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/SO-1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"status_label":"Completed"`)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/SO-9", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}
