package frappe

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
)

// Filter is a single [field, operator, value] condition.
type Filter struct {
	Field    string
	Operator string
	Value    any
}

// MarshalJSON encodes the filter in Frappe's list form.
func (f Filter) MarshalJSON() ([]byte, error) {
	op := f.Operator
	if op == "" {
		op = "="
	}
	return json.Marshal([]any{f.Field, op, f.Value})
}

// Eq builds an equality filter.
func Eq(field string, value any) Filter {
	return Filter{Field: field, Operator: "=", Value: value}
}

// Where builds a filter with an explicit operator.
func Where(field, operator string, value any) Filter {
	return Filter{Field: field, Operator: operator, Value: value}
}

// ListOptions scopes a list request.
type ListOptions struct {
	Fields  []string
	Filters []Filter
	OrderBy string
	Limit   int
	Start   int
}

func (o ListOptions) values() (url.Values, error) {
	q := url.Values{}
	if len(o.Fields) > 0 {
		raw, err := json.Marshal(o.Fields)
		if err != nil {
			return nil, fmt.Errorf("frappe: encode fields: %w", err)
		}
		q.Set("fields", string(raw))
	}
	if len(o.Filters) > 0 {
		raw, err := json.Marshal(o.Filters)
		if err != nil {
			return nil, fmt.Errorf("frappe: encode filters: %w", err)
		}
		q.Set("filters", string(raw))
	}
	if o.OrderBy != "" {
		q.Set("order_by", o.OrderBy)
	}
	if o.Limit > 0 {
		q.Set("limit_page_length", strconv.Itoa(o.Limit))
	}
	if o.Start > 0 {
		q.Set("limit_start", strconv.Itoa(o.Start))
	}
	return q, nil
}
