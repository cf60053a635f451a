// Package payments prepares and records Payment Entries against outstanding invoices.
package payments

import (
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-bff/internal/accounting/allocation"
)

// Doctype is the ERP document created by this package.
const Doctype = "Payment Entry"

// Outstanding lists a party's open invoices allocated against a paid amount.
type Outstanding struct {
	PartyType   string                 `json:"party_type"`
	Party       string                 `json:"party"`
	PaidAmount  decimal.Decimal        `json:"paid_amount"`
	References  []allocation.Reference `json:"references"`
	Allocated   decimal.Decimal        `json:"allocated"`
	Unallocated decimal.Decimal        `json:"unallocated"`
}

// AllocateInput recomputes allocations and then applies manual overrides
// keyed by reference name.
type AllocateInput struct {
	PaidAmount decimal.Decimal            `json:"paid_amount"`
	References []allocation.Reference     `json:"references"`
	Overrides  map[string]decimal.Decimal `json:"overrides,omitempty"`
}

// AllocateResult is the recomputed allocation.
type AllocateResult struct {
	PaidAmount  decimal.Decimal        `json:"paid_amount"`
	References  []allocation.Reference `json:"references"`
	Allocated   decimal.Decimal        `json:"allocated"`
	Unallocated decimal.Decimal        `json:"unallocated"`
}

// CreateInput describes a draft payment.
type CreateInput struct {
	PartyType     string                 `json:"party_type" validate:"required,oneof=Customer Supplier"`
	Party         string                 `json:"party" validate:"required"`
	PostingDate   string                 `json:"posting_date" validate:"omitempty,datetime=2006-01-02"`
	ModeOfPayment string                 `json:"mode_of_payment" validate:"required"`
	PaidAmount    decimal.Decimal        `json:"paid_amount" validate:"gt=0"`
	References    []allocation.Reference `json:"references" validate:"dive"`
	Company       string                 `json:"company"`
	ReferenceNo   string                 `json:"reference_no"`
	ReferenceDate string                 `json:"reference_date" validate:"omitempty,datetime=2006-01-02"`
}

// entryReference is one row of the Payment Entry references table.
type entryReference struct {
	ReferenceDoctype string          `json:"reference_doctype"`
	ReferenceName    string          `json:"reference_name"`
	AllocatedAmount  decimal.Decimal `json:"allocated_amount"`
}

// entryDoc is the Payment Entry document inserted upstream.
type entryDoc struct {
	PaymentType        string           `json:"payment_type"`
	PartyType          string           `json:"party_type"`
	Party              string           `json:"party"`
	PostingDate        string           `json:"posting_date"`
	Company            string           `json:"company,omitempty"`
	ModeOfPayment      string           `json:"mode_of_payment"`
	PaidAmount         decimal.Decimal  `json:"paid_amount"`
	ReceivedAmount     decimal.Decimal  `json:"received_amount"`
	SourceExchangeRate decimal.Decimal  `json:"source_exchange_rate"`
	TargetExchangeRate decimal.Decimal  `json:"target_exchange_rate"`
	ReferenceNo        string           `json:"reference_no,omitempty"`
	ReferenceDate      string           `json:"reference_date,omitempty"`
	References         []entryReference `json:"references"`
}

// Payment is a Payment Entry as returned to the UI.
type Payment struct {
	Name          string           `json:"name"`
	PaymentType   string           `json:"payment_type"`
	PartyType     string           `json:"party_type"`
	Party         string           `json:"party"`
	PartyName     string           `json:"party_name,omitempty"`
	PostingDate   string           `json:"posting_date"`
	Company       string           `json:"company,omitempty"`
	ModeOfPayment string           `json:"mode_of_payment,omitempty"`
	PaidAmount    decimal.Decimal  `json:"paid_amount"`
	ReferenceNo   string           `json:"reference_no,omitempty"`
	DocStatus     int              `json:"docstatus"`
	StatusLabel   string           `json:"status_label"`
	References    []entryReference `json:"references,omitempty"`
}

// ListFilter scopes a payment listing.
type ListFilter struct {
	PartyType string
	Party     string
	Limit     int
	Start     int
}
