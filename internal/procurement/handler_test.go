package procurement

import (
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
)

func newRouter(store *frappetest.Store) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := chi.NewRouter()
	NewHandler(NewService(store, logger), logger).MountRoutes(r)
	return r
}

func TestHandleList(t *testing.T) {
	store := frappetest.New()
	seedOrders(store)
	router := newRouter(store)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/?supplier=S1&limit=2", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Data []struct {
			Name        string `json:"name"`
			StatusLabel string `json:"status_label"`
		} `json:"data"`
		Total int `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, 4, body.Total)
	require.Len(t, body.Data, 2)
	require.Equal(t, "PO-1", body.Data[0].Name)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/?limit=abc", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleCRUD(t *testing.T) {
	store := frappetest.New()
	router := newRouter(store)

	payload := `{"supplier":"S1","schedule_date":"2024-04-15","items":[{"item_code":"ITEM-1","qty":2,"rate":10}]}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(payload)))
	require.Equal(t, http.StatusCreated, rec.Code)
	var created struct {
		Data struct {
			Name string `json:"name"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	name := created.Data.Name
	require.NotEmpty(t, name)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/"+name, strings.NewReader(`{"supplier":"S2"}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"supplier":"S2"`)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/"+name, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"status_label":"Draft"`)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/"+name, nil))
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/"+name, nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleCreateRejectsBadPayload(t *testing.T) {
	router := newRouter(frappetest.New())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{`)))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"supplier":"S1"}`)))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "schedule_date is required")
}
