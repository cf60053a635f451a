package frappe

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-bff/internal/platform/httpx"
)

type recordedCall struct {
	method  string
	doctype string
	status  int
}

type fakeRecorder struct {
	calls []recordedCall
}

func (f *fakeRecorder) ObserveUpstream(method, doctype string, status int, _ time.Duration) {
	f.calls = append(f.calls, recordedCall{method: method, doctype: doctype, status: status})
}

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client, err := NewClient(Config{BaseURL: srv.URL + "/", APIKey: "key", APISecret: "secret"}, opts...)
	require.NoError(t, err)
	return client
}

func TestNewClientRejectsInvalidBaseURL(t *testing.T) {
	_, err := NewClient(Config{})
	require.Error(t, err)
	_, err = NewClient(Config{BaseURL: "not a url"})
	require.Error(t, err)
}

func TestGetListEncodesQueryAndDecodesEnvelope(t *testing.T) {
	recorder := &fakeRecorder{}
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/resource/Sales Invoice", r.URL.Path)
		require.Equal(t, "token key:secret", r.Header.Get("Authorization"))
		q := r.URL.Query()
		require.Equal(t, `["name","outstanding_amount"]`, q.Get("fields"))
		require.Equal(t, `[["docstatus","=",1],["outstanding_amount",">",0]]`, q.Get("filters"))
		require.Equal(t, "posting_date asc", q.Get("order_by"))
		require.Equal(t, "5000", q.Get("limit_page_length"))
		require.Equal(t, "", q.Get("limit_start"))
		_, _ = io.WriteString(w, `{"data":[{"name":"SINV-0001","outstanding_amount":120.5}]}`)
	}, WithRecorder(recorder))

	var rows []struct {
		Name              string          `json:"name"`
		OutstandingAmount decimal.Decimal `json:"outstanding_amount"`
	}
	err := client.GetList(context.Background(), "Sales Invoice", ListOptions{
		Fields:  []string{"name", "outstanding_amount"},
		Filters: []Filter{Eq("docstatus", 1), Where("outstanding_amount", ">", 0)},
		OrderBy: "posting_date asc",
		Limit:   5000,
	}, &rows)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "SINV-0001", rows[0].Name)
	require.True(t, rows[0].OutstandingAmount.Equal(decimal.RequireFromString("120.5")))
	require.Equal(t, []recordedCall{{method: http.MethodGet, doctype: "Sales Invoice", status: 200}}, recorder.calls)
}

func TestGetCountUsesMethodEndpoint(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/method/frappe.client.get_count", r.URL.Path)
		require.Equal(t, "Item", r.URL.Query().Get("doctype"))
		_, _ = io.WriteString(w, `{"message":42}`)
	})
	count, err := client.GetCount(context.Background(), "Item", []Filter{Eq("disabled", 0)})
	require.NoError(t, err)
	require.Equal(t, 42, count)
}

func TestInsertSendsJSONBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, float64(80), body["paid_amount"])
		_, _ = io.WriteString(w, `{"data":{"name":"ACC-PAY-0001","docstatus":0}}`)
	})
	var out struct {
		Name      string `json:"name"`
		DocStatus int    `json:"docstatus"`
	}
	err := client.Insert(context.Background(), "Payment Entry", map[string]any{
		"paid_amount": decimal.NewFromInt(80),
	}, &out)
	require.NoError(t, err)
	require.Equal(t, "ACC-PAY-0001", out.Name)
}

func TestGetDocEscapesName(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/resource/Item/Bolt%2F10mm", r.URL.EscapedPath())
		_, _ = io.WriteString(w, `{"data":{"name":"Bolt/10mm"}}`)
	})
	var out map[string]any
	require.NoError(t, client.GetDoc(context.Background(), "Item", "Bolt/10mm", &out))
	require.Equal(t, "Bolt/10mm", out["name"])
}

func TestUpstreamErrorsMapToSentinels(t *testing.T) {
	cases := []struct {
		name    string
		status  int
		body    string
		want    error
		message string
	}{
		{
			name:    "not found via exc_type",
			status:  http.StatusNotFound,
			body:    `{"exc_type":"DoesNotExistError","_server_messages":"[\"{\\\"message\\\": \\\"Item <b>X</b> not found\\\"}\"]"}`,
			want:    httpx.ErrNotFound,
			message: "Item X not found",
		},
		{
			name:    "permission from exception string",
			status:  http.StatusForbidden,
			body:    `{"exception":"frappe.exceptions.PermissionError: Not permitted"}`,
			want:    httpx.ErrForbidden,
			message: "Not permitted",
		},
		{
			name:    "duplicate",
			status:  http.StatusConflict,
			body:    `{"exc_type":"DuplicateEntryError","message":"Item ABC already exists"}`,
			want:    httpx.ErrDuplicate,
			message: "Item ABC already exists",
		},
		{
			name:    "validation",
			status:  http.StatusExpectationFailed,
			body:    `{"exc_type":"MandatoryError","exception":"frappe.exceptions.MandatoryError: supplier"}`,
			want:    httpx.ErrValidation,
			message: "supplier",
		},
		{
			name:    "server error with html body",
			status:  http.StatusInternalServerError,
			body:    `<html>oops</html>`,
			want:    httpx.ErrUpstream,
			message: "Internal Server Error",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = io.WriteString(w, tc.body)
			})
			err := client.GetDoc(context.Background(), "Item", "X", &map[string]any{})
			require.ErrorIs(t, err, tc.want)
			var ferr *Error
			require.ErrorAs(t, err, &ferr)
			require.Equal(t, tc.message, ferr.Message)
			require.Equal(t, tc.status, ferr.Status)
		})
	}
}

func TestTransportFailureIsUpstream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	base := srv.URL
	srv.Close()

	client, err := NewClient(Config{BaseURL: base, Timeout: time.Second})
	require.NoError(t, err)
	err = client.Ping(context.Background())
	require.ErrorIs(t, err, httpx.ErrUpstream)
}

func TestMalformedPayloadIsNotClassified(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"data":"not a list"}`)
	})
	var rows []map[string]any
	err := client.GetList(context.Background(), "Item", ListOptions{}, &rows)
	require.Error(t, err)
	require.NotErrorIs(t, err, httpx.ErrUpstream)
	require.NotErrorIs(t, err, httpx.ErrNotFound)
}

func TestPing(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/method/ping", r.URL.Path)
		_, _ = io.WriteString(w, `{"message":"pong"}`)
	})
	require.NoError(t, client.Ping(context.Background()))
}

func TestUseNumericDecimalsEncodesNumbers(t *testing.T) {
	prev := decimal.MarshalJSONWithoutQuotes
	t.Cleanup(func() { decimal.MarshalJSONWithoutQuotes = prev })

	decimal.MarshalJSONWithoutQuotes = false
	raw, err := json.Marshal(decimal.RequireFromString("80.5"))
	require.NoError(t, err)
	require.JSONEq(t, `"80.5"`, string(raw))

	UseNumericDecimals()
	raw, err = json.Marshal(decimal.RequireFromString("80.5"))
	require.NoError(t, err)
	require.JSONEq(t, `80.5`, string(raw))
}
