// Package frappe talks to the Frappe/ERPNext REST API.
package frappe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// UseNumericDecimals makes decimal.Decimal encode as a JSON number, the form
// Frappe float fields and API consumers expect. The switch is process-wide in
// shopspring/decimal, so binaries call it once at startup before serving.
func UseNumericDecimals() {
	decimal.MarshalJSONWithoutQuotes = true
}

const maxErrorBody = 64 << 10

// Config describes how to reach a Frappe site.
type Config struct {
	BaseURL   string
	APIKey    string
	APISecret string
	Timeout   time.Duration
}

// Recorder observes every upstream call.
type Recorder interface {
	ObserveUpstream(method, doctype string, status int, elapsed time.Duration)
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithRecorder attaches an upstream call recorder.
func WithRecorder(r Recorder) Option {
	return func(c *Client) {
		c.recorder = r
	}
}

// Client is a thin wrapper over the generic document endpoints.
type Client struct {
	baseURL    string
	apiKey     string
	apiSecret  string
	httpClient *http.Client
	recorder   Recorder
}

// NewClient constructs a client for the given site.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, errors.New("frappe: base url required")
	}
	if u, err := url.Parse(base); err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("frappe: invalid base url %q", cfg.BaseURL)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	c := &Client{
		baseURL:    base,
		apiKey:     cfg.APIKey,
		apiSecret:  cfg.APISecret,
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// GetList fetches documents of a doctype into dest (a pointer to a slice).
func (c *Client) GetList(ctx context.Context, doctype string, opts ListOptions, dest any) error {
	query, err := opts.values()
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodGet, doctype, resourcePath(doctype, ""), query, nil, "data", dest)
}

// GetCount returns the number of documents matching filters.
func (c *Client) GetCount(ctx context.Context, doctype string, filters []Filter) (int, error) {
	query := url.Values{"doctype": {doctype}}
	if len(filters) > 0 {
		raw, err := json.Marshal(filters)
		if err != nil {
			return 0, fmt.Errorf("frappe: encode filters: %w", err)
		}
		query.Set("filters", string(raw))
	}
	var count int
	if err := c.do(ctx, http.MethodGet, doctype, "/api/method/frappe.client.get_count", query, nil, "message", &count); err != nil {
		return 0, err
	}
	return count, nil
}

// GetDoc fetches a single document by name.
func (c *Client) GetDoc(ctx context.Context, doctype, name string, dest any) error {
	if name == "" {
		return NewError(http.StatusNotFound, "DoesNotExistError", doctype+" name required")
	}
	return c.do(ctx, http.MethodGet, doctype, resourcePath(doctype, name), nil, nil, "data", dest)
}

// Insert creates a document and decodes the stored version into dest.
func (c *Client) Insert(ctx context.Context, doctype string, doc any, dest any) error {
	return c.do(ctx, http.MethodPost, doctype, resourcePath(doctype, ""), nil, doc, "data", dest)
}

// Update patches an existing document.
func (c *Client) Update(ctx context.Context, doctype, name string, patch any, dest any) error {
	if name == "" {
		return NewError(http.StatusNotFound, "DoesNotExistError", doctype+" name required")
	}
	return c.do(ctx, http.MethodPut, doctype, resourcePath(doctype, name), nil, patch, "data", dest)
}

// Delete removes a document.
func (c *Client) Delete(ctx context.Context, doctype, name string) error {
	if name == "" {
		return NewError(http.StatusNotFound, "DoesNotExistError", doctype+" name required")
	}
	return c.do(ctx, http.MethodDelete, doctype, resourcePath(doctype, name), nil, nil, "", nil)
}

// Ping checks the site is reachable.
func (c *Client) Ping(ctx context.Context) error {
	var pong string
	if err := c.do(ctx, http.MethodGet, "", "/api/method/ping", nil, nil, "message", &pong); err != nil {
		return err
	}
	if pong != "pong" {
		return NewError(http.StatusBadGateway, "", "unexpected ping response "+strconv.Quote(pong))
	}
	return nil
}

func resourcePath(doctype, name string) string {
	p := "/api/resource/" + url.PathEscape(doctype)
	if name != "" {
		p += "/" + url.PathEscape(name)
	}
	return p
}

func (c *Client) do(ctx context.Context, method, doctype, path string, query url.Values, body any, envelope string, dest any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("frappe: encode %s: %w", doctype, err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("frappe: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "token "+c.apiKey+":"+c.apiSecret)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.observe(method, doctype, 0, start)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return NewError(0, "", err.Error())
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	c.observe(method, doctype, resp.StatusCode, start)

	if resp.StatusCode >= http.StatusBadRequest {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return parseError(resp.StatusCode, payload)
	}
	if dest == nil || envelope == "" {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	var wrapper map[string]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&wrapper); err != nil {
		return fmt.Errorf("frappe: decode %s response: %w", doctype, err)
	}
	raw, ok := wrapper[envelope]
	if !ok {
		return fmt.Errorf("frappe: %s response missing %q", doctype, envelope)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("frappe: decode %s %s: %w", doctype, envelope, err)
	}
	return nil
}

func (c *Client) observe(method, doctype string, status int, start time.Time) {
	if c.recorder == nil {
		return
	}
	c.recorder.ObserveUpstream(method, doctype, status, time.Since(start))
}
