// Package procurement exposes ERP purchase orders.
package procurement

import (
	"github.com/shopspring/decimal"
)

// Doctype is the ERP purchase order doctype.
const Doctype = "Purchase Order"

// OrderItem is one purchase order line.
type OrderItem struct {
	ItemCode     string          `json:"item_code" validate:"required"`
	ItemName     string          `json:"item_name,omitempty"`
	Qty          decimal.Decimal `json:"qty" validate:"gt=0"`
	Rate         decimal.Decimal `json:"rate" validate:"gte=0"`
	Amount       decimal.Decimal `json:"amount,omitempty"`
	UOM          string          `json:"uom,omitempty"`
	ScheduleDate string          `json:"schedule_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Warehouse    string          `json:"warehouse,omitempty"`
}

// PurchaseOrder is a purchase order with its derived status label.
type PurchaseOrder struct {
	Name            string          `json:"name"`
	Supplier        string          `json:"supplier"`
	SupplierName    string          `json:"supplier_name,omitempty"`
	TransactionDate string          `json:"transaction_date,omitempty"`
	ScheduleDate    string          `json:"schedule_date,omitempty"`
	Company         string          `json:"company,omitempty"`
	Currency        string          `json:"currency,omitempty"`
	GrandTotal      decimal.Decimal `json:"grand_total"`
	DocStatus       int             `json:"docstatus"`
	Status          string          `json:"status,omitempty"`
	PerReceived     float64         `json:"per_received"`
	PerBilled       float64         `json:"per_billed"`
	StatusLabel     string          `json:"status_label"`
	Items           []OrderItem     `json:"items,omitempty"`
}

// CreateInput describes a new draft purchase order.
type CreateInput struct {
	Supplier        string      `json:"supplier" validate:"required"`
	TransactionDate string      `json:"transaction_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	ScheduleDate    string      `json:"schedule_date" validate:"required,datetime=2006-01-02"`
	Company         string      `json:"company,omitempty"`
	Currency        string      `json:"currency,omitempty"`
	Items           []OrderItem `json:"items" validate:"required,min=1,dive"`
}

// UpdateInput patches a draft purchase order. Nil fields are left unchanged.
type UpdateInput struct {
	Supplier     *string     `json:"supplier,omitempty" validate:"omitnil,min=1"`
	ScheduleDate *string     `json:"schedule_date,omitempty" validate:"omitnil,datetime=2006-01-02"`
	Company      *string     `json:"company,omitempty"`
	Items        []OrderItem `json:"items,omitempty" validate:"omitempty,min=1,dive"`
}

// ListFilter scopes a purchase order listing.
type ListFilter struct {
	Supplier string
	Status   string
	Limit    int
	Start    int
}
