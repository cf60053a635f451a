package report

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/odyssey-erp/odyssey-bff/internal/platform/httpx"
)

const defaultTimeout = 30 * time.Second

// ErrNotConfigured is returned when no Gotenberg URL was provided.
var ErrNotConfigured = errors.New("report: gotenberg not configured")

// Client wraps interactions with the Gotenberg API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option customises the client.
type Option func(*Client)

// WithTimeout overrides the HTTP timeout used for render calls.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithHTTPClient swaps the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// NewClient constructs a new client.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Ping checks if the remote Gotenberg service is available.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.baseURL == "" {
		return ErrNotConfigured
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("report: ping: %v: %w", err, httpx.ErrUpstream)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("report: gotenberg returned status %d: %w", resp.StatusCode, httpx.ErrUpstream)
	}
	return nil
}

// RenderHTML converts an HTML document into a PDF using the Chromium route.
// Gotenberg requires the main file to be named index.html; filename only
// labels the output.
func (c *Client) RenderHTML(ctx context.Context, filename string, html []byte) ([]byte, error) {
	if c == nil || c.baseURL == "" {
		return nil, ErrNotConfigured
	}
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("files", "index.html")
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(html); err != nil {
		return nil, err
	}
	if filename != "" {
		if err := writer.WriteField("outputFilename", strings.TrimSuffix(filename, ".pdf")); err != nil {
			return nil, err
		}
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/forms/chromium/convert/html", body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("report: render %s: %v: %w", filename, err, httpx.ErrUpstream)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("report: render %s failed with status %d: %w", filename, resp.StatusCode, httpx.ErrUpstream)
	}
	return io.ReadAll(resp.Body)
}
