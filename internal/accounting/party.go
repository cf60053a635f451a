// Package accounting holds definitions shared by the accounting endpoints.
package accounting

import (
	"fmt"
	"strings"

	"github.com/odyssey-erp/odyssey-bff/internal/platform/httpx"
)

// PartyType is the ERP party a ledger balance belongs to.
type PartyType string

const (
	PartyCustomer PartyType = "Customer"
	PartySupplier PartyType = "Supplier"
)

// PartyTypes lists the supported party types.
var PartyTypes = []PartyType{PartyCustomer, PartySupplier}

// ParsePartyType validates a party_type parameter.
func ParsePartyType(raw string) (PartyType, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("%w: party_type is required", httpx.ErrInvalidArgument)
	}
	for _, pt := range PartyTypes {
		if strings.EqualFold(raw, string(pt)) {
			return pt, nil
		}
	}
	return "", fmt.Errorf("%w: unsupported party_type %q", httpx.ErrInvalidArgument, raw)
}

// InvoiceDoctype is the invoice doctype carrying outstanding balances.
func (p PartyType) InvoiceDoctype() string {
	if p == PartySupplier {
		return "Purchase Invoice"
	}
	return "Sales Invoice"
}

// PartyField is the invoice field holding the party identifier.
func (p PartyType) PartyField() string {
	if p == PartySupplier {
		return "supplier"
	}
	return "customer"
}

// PartyNameField is the invoice field holding the party display name.
func (p PartyType) PartyNameField() string {
	return p.PartyField() + "_name"
}

// PaymentType is the Payment Entry payment_type used to settle the party.
func (p PartyType) PaymentType() string {
	if p == PartySupplier {
		return "Pay"
	}
	return "Receive"
}
