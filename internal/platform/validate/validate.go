// Package validate wraps go-playground/validator for request payloads.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-bff/internal/platform/httpx"
)

// Validator checks struct tags and reports field errors keyed by JSON name.
type Validator struct {
	v *validator.Validate
}

// New builds a Validator that names fields after their json tags and
// understands decimal.Decimal values.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	return &Validator{v: v}
}

// FieldErrors maps field names to messages.
type FieldErrors map[string]string

// Struct validates s and returns an httpx.ErrValidation wrapped error on failure.
func (val *Validator) Struct(s any) error {
	err := val.v.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", httpx.ErrValidation, err)
	}
	fields := make(FieldErrors, len(verrs))
	for _, fe := range verrs {
		fields[namespace(fe)] = message(fe)
	}
	return &Error{Fields: fields}
}

// Error is returned when one or more fields fail validation.
type Error struct {
	Fields FieldErrors
}

func (e *Error) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+" "+e.Fields[k])
	}
	return httpx.ErrValidation.Error() + ": " + strings.Join(parts, "; ")
}

// Unwrap ties the error to httpx.ErrValidation.
func (e *Error) Unwrap() error {
	return httpx.ErrValidation
}

func namespace(fe validator.FieldError) string {
	ns := fe.Namespace()
	if idx := strings.Index(ns, "."); idx >= 0 {
		return ns[idx+1:]
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be at least " + fe.Param()
	case "min":
		if fe.Kind() == reflect.String {
			return "must be at least " + fe.Param() + " characters"
		}
		return "must have at least " + fe.Param() + " entries"
	case "oneof":
		return "must be one of " + fe.Param()
	case "datetime":
		return "must be a date in " + fe.Param() + " format"
	case "uuid4", "uuid":
		return "must be a UUID"
	}
	return "failed " + fe.Tag() + " validation"
}
