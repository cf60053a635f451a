package frappe

import (
	"encoding/json"
	"net/http"
	"regexp"
	"strings"

	"github.com/odyssey-erp/odyssey-bff/internal/platform/httpx"
)

// Error is a failure reported by (or while reaching) the Frappe site.
type Error struct {
	Status  int
	ExcType string
	Message string
	kind    error
}

// NewError classifies an upstream failure.
func NewError(status int, excType, message string) *Error {
	return &Error{
		Status:  status,
		ExcType: excType,
		Message: message,
		kind:    classify(status, excType),
	}
}

func (e *Error) Error() string {
	if e.Message == "" {
		return "frappe: " + e.kind.Error()
	}
	return "frappe: " + e.Message
}

// Unwrap exposes the httpx sentinel matching the failure.
func (e *Error) Unwrap() error {
	return e.kind
}

func classify(status int, excType string) error {
	switch excType {
	case "DoesNotExistError":
		return httpx.ErrNotFound
	case "PermissionError":
		return httpx.ErrForbidden
	case "AuthenticationError", "SessionExpired", "CSRFTokenError":
		return httpx.ErrUnauthorized
	case "DuplicateEntryError", "UniqueValidationError", "NameError":
		return httpx.ErrDuplicate
	case "ValidationError", "MandatoryError", "LinkValidationError", "InvalidStatusError",
		"CannotChangeConstantError", "TimestampMismatchError", "UpdateAfterSubmitError",
		"LinkExistsError", "DataError":
		return httpx.ErrValidation
	}
	switch status {
	case http.StatusNotFound:
		return httpx.ErrNotFound
	case http.StatusUnauthorized:
		return httpx.ErrUnauthorized
	case http.StatusForbidden:
		return httpx.ErrForbidden
	case http.StatusConflict:
		return httpx.ErrDuplicate
	case http.StatusBadRequest, http.StatusExpectationFailed, http.StatusUnprocessableEntity:
		return httpx.ErrValidation
	}
	return httpx.ErrUpstream
}

type errorPayload struct {
	ExcType        string `json:"exc_type"`
	Exception      string `json:"exception"`
	Message        any    `json:"message"`
	ServerMessages string `json:"_server_messages"`
}

var htmlTag = regexp.MustCompile(`<[^>]*>`)

func parseError(status int, body []byte) *Error {
	var payload errorPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return NewError(status, "", http.StatusText(status))
	}
	msg := serverMessages(payload.ServerMessages)
	if msg == "" {
		msg = exceptionMessage(payload.Exception)
	}
	if msg == "" {
		if s, ok := payload.Message.(string); ok {
			msg = s
		}
	}
	if msg == "" {
		msg = http.StatusText(status)
	}
	excType := payload.ExcType
	if excType == "" {
		excType = exceptionType(payload.Exception)
	}
	return NewError(status, excType, cleanMessage(msg))
}

// serverMessages decodes Frappe's doubly encoded message list.
func serverMessages(raw string) string {
	if raw == "" {
		return ""
	}
	var encoded []string
	if err := json.Unmarshal([]byte(raw), &encoded); err != nil {
		return ""
	}
	parts := make([]string, 0, len(encoded))
	for _, item := range encoded {
		var m struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal([]byte(item), &m); err == nil && m.Message != "" {
			parts = append(parts, m.Message)
			continue
		}
		if item != "" {
			parts = append(parts, item)
		}
	}
	return strings.Join(parts, "; ")
}

// exceptionMessage turns "frappe.exceptions.X: detail" into "detail".
func exceptionMessage(exc string) string {
	if exc == "" {
		return ""
	}
	if idx := strings.Index(exc, ": "); idx >= 0 {
		return exc[idx+2:]
	}
	return exc
}

func exceptionType(exc string) string {
	head := exc
	if idx := strings.Index(exc, ":"); idx >= 0 {
		head = exc[:idx]
	}
	if idx := strings.LastIndex(head, "."); idx >= 0 {
		return head[idx+1:]
	}
	return ""
}

func cleanMessage(msg string) string {
	return strings.TrimSpace(htmlTag.ReplaceAllString(msg, ""))
}
