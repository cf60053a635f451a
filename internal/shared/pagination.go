package shared

import (
	"net/http"

	"github.com/odyssey-erp/odyssey-bff/internal/platform/httpx"
)

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 500
)

// Page is the limit/start window of a list request.
type Page struct {
	Limit int
	Start int
}

// ParsePage reads limit and start query parameters. A zero or missing limit
// falls back to DefaultPageLimit; larger limits are clamped.
func ParsePage(r *http.Request) (Page, error) {
	limit, err := httpx.QueryInt(r, "limit", DefaultPageLimit)
	if err != nil {
		return Page{}, err
	}
	start, err := httpx.QueryInt(r, "start", 0)
	if err != nil {
		return Page{}, err
	}
	if limit == 0 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	return Page{Limit: limit, Start: start}, nil
}

// ListResult is the envelope returned by paginated list endpoints.
type ListResult[T any] struct {
	Data  []T `json:"data"`
	Total int `json:"total"`
}
