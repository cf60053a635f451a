// Package frappetest provides an in-memory Frappe document store for tests.
package frappetest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/odyssey-erp/odyssey-bff/internal/frappe"
)

// Call records a single store invocation.
type Call struct {
	Op      string
	Doctype string
	Name    string
	Options frappe.ListOptions
}

// Store keeps documents per doctype in insertion order.
type Store struct {
	mu    sync.Mutex
	docs  map[string][]map[string]any
	seq   int
	calls []Call

	// Err, when set, is returned by every operation.
	Err error
}

// New builds an empty store.
func New() *Store {
	return &Store{docs: make(map[string][]map[string]any)}
}

// Seed appends documents, which may be structs or maps.
func (s *Store) Seed(doctype string, docs ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, doc := range docs {
		m := toMap(doc)
		if _, ok := m["name"]; !ok {
			m["name"] = s.nextName(doctype)
		}
		s.docs[doctype] = append(s.docs[doctype], m)
	}
}

// Docs returns a copy of the stored documents.
func (s *Store) Docs(doctype string) []map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]map[string]any, 0, len(s.docs[doctype]))
	for _, d := range s.docs[doctype] {
		out = append(out, copyMap(d))
	}
	return out
}

// Calls returns the recorded invocations.
func (s *Store) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

// GetList filters and pages stored documents. Field projection and ordering are ignored.
func (s *Store) GetList(_ context.Context, doctype string, opts frappe.ListOptions, dest any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, Call{Op: "list", Doctype: doctype, Options: opts})
	if s.Err != nil {
		return s.Err
	}
	matched := s.filter(doctype, opts.Filters)
	if opts.Start > 0 {
		if opts.Start >= len(matched) {
			matched = nil
		} else {
			matched = matched[opts.Start:]
		}
	}
	if opts.Limit > 0 && len(matched) > opts.Limit {
		matched = matched[:opts.Limit]
	}
	return roundTrip(matched, dest)
}

// GetCount counts matching documents.
func (s *Store) GetCount(_ context.Context, doctype string, filters []frappe.Filter) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, Call{Op: "count", Doctype: doctype, Options: frappe.ListOptions{Filters: filters}})
	if s.Err != nil {
		return 0, s.Err
	}
	return len(s.filter(doctype, filters)), nil
}

// GetDoc fetches a document by name.
func (s *Store) GetDoc(_ context.Context, doctype, name string, dest any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, Call{Op: "get", Doctype: doctype, Name: name})
	if s.Err != nil {
		return s.Err
	}
	idx := s.index(doctype, name)
	if idx < 0 {
		return notFound(doctype, name)
	}
	return roundTrip(s.docs[doctype][idx], dest)
}

// Insert stores a new draft document.
func (s *Store) Insert(_ context.Context, doctype string, doc any, dest any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, Call{Op: "insert", Doctype: doctype})
	if s.Err != nil {
		return s.Err
	}
	m := toMap(doc)
	name, _ := m["name"].(string)
	if name == "" {
		name = s.nextName(doctype)
		m["name"] = name
	}
	if s.index(doctype, name) >= 0 {
		return frappe.NewError(http.StatusConflict, "DuplicateEntryError", fmt.Sprintf("%s %s already exists", doctype, name))
	}
	if _, ok := m["docstatus"]; !ok {
		m["docstatus"] = 0
	}
	s.docs[doctype] = append(s.docs[doctype], m)
	if dest == nil {
		return nil
	}
	return roundTrip(m, dest)
}

// Update merges patch into an existing document.
func (s *Store) Update(_ context.Context, doctype, name string, patch any, dest any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, Call{Op: "update", Doctype: doctype, Name: name})
	if s.Err != nil {
		return s.Err
	}
	idx := s.index(doctype, name)
	if idx < 0 {
		return notFound(doctype, name)
	}
	for k, v := range toMap(patch) {
		s.docs[doctype][idx][k] = v
	}
	if dest == nil {
		return nil
	}
	return roundTrip(s.docs[doctype][idx], dest)
}

// Delete removes a document.
func (s *Store) Delete(_ context.Context, doctype, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, Call{Op: "delete", Doctype: doctype, Name: name})
	if s.Err != nil {
		return s.Err
	}
	idx := s.index(doctype, name)
	if idx < 0 {
		return notFound(doctype, name)
	}
	s.docs[doctype] = append(s.docs[doctype][:idx], s.docs[doctype][idx+1:]...)
	return nil
}

func (s *Store) nextName(doctype string) string {
	s.seq++
	prefix := strings.ToUpper(strings.ReplaceAll(doctype, " ", "-"))
	return fmt.Sprintf("%s-%05d", prefix, s.seq)
}

func (s *Store) index(doctype, name string) int {
	for i, d := range s.docs[doctype] {
		if d["name"] == name {
			return i
		}
	}
	return -1
}

func (s *Store) filter(doctype string, filters []frappe.Filter) []map[string]any {
	out := make([]map[string]any, 0, len(s.docs[doctype]))
	for _, d := range s.docs[doctype] {
		ok := true
		for _, f := range filters {
			if !match(d[f.Field], f) {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, d)
		}
	}
	return out
}

func match(actual any, f frappe.Filter) bool {
	want := normalize(f.Value)
	switch strings.ToLower(f.Operator) {
	case "", "=":
		return compare(actual, want) == 0
	case "!=":
		return compare(actual, want) != 0
	case ">":
		return compare(actual, want) > 0
	case ">=":
		return compare(actual, want) >= 0
	case "<":
		return compare(actual, want) < 0
	case "<=":
		return compare(actual, want) <= 0
	case "like":
		pattern := strings.ToLower(strings.Trim(fmt.Sprint(want), "%"))
		return strings.Contains(strings.ToLower(fmt.Sprint(actual)), pattern)
	case "in":
		list, _ := want.([]any)
		for _, v := range list {
			if compare(actual, v) == 0 {
				return true
			}
		}
		return false
	case "between":
		list, _ := want.([]any)
		if len(list) != 2 {
			return false
		}
		return compare(actual, list[0]) >= 0 && compare(actual, list[1]) <= 0
	}
	return false
}

func compare(a, b any) int {
	af, aok := number(a)
	bf, bok := number(b)
	if aok && bok {
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		}
		return 0
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	case nil:
		return 0, true
	}
	return 0, false
}

func normalize(v any) any {
	raw, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return v
	}
	return out
}

func toMap(doc any) map[string]any {
	raw, err := json.Marshal(doc)
	if err != nil {
		panic(fmt.Sprintf("frappetest: marshal document: %v", err))
	}
	m := map[string]any{}
	if err := json.Unmarshal(raw, &m); err != nil {
		panic(fmt.Sprintf("frappetest: document must be an object: %v", err))
	}
	return m
}

func copyMap(src map[string]any) map[string]any {
	dst := make(map[string]any, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func roundTrip(src, dest any) error {
	raw, err := json.Marshal(src)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dest)
}

func notFound(doctype, name string) error {
	return frappe.NewError(http.StatusNotFound, "DoesNotExistError", fmt.Sprintf("%s %s not found", doctype, name))
}
