// Package sales exposes ERP sales orders.
package sales

import (
	"github.com/shopspring/decimal"
)

// Doctype is the ERP sales order doctype.
const Doctype = "Sales Order"

// OrderItem is one sales order line.
type OrderItem struct {
	ItemCode     string          `json:"item_code"`
	ItemName     string          `json:"item_name,omitempty"`
	Qty          decimal.Decimal `json:"qty"`
	Rate         decimal.Decimal `json:"rate"`
	Amount       decimal.Decimal `json:"amount"`
	DeliveryDate string          `json:"delivery_date,omitempty"`
	DeliveredQty decimal.Decimal `json:"delivered_qty"`
}

// SalesOrder is a sales order with its derived status label.
type SalesOrder struct {
	Name            string          `json:"name"`
	Customer        string          `json:"customer"`
	CustomerName    string          `json:"customer_name,omitempty"`
	TransactionDate string          `json:"transaction_date,omitempty"`
	DeliveryDate    string          `json:"delivery_date,omitempty"`
	Company         string          `json:"company,omitempty"`
	Currency        string          `json:"currency,omitempty"`
	GrandTotal      decimal.Decimal `json:"grand_total"`
	DocStatus       int             `json:"docstatus"`
	Status          string          `json:"status,omitempty"`
	PerDelivered    float64         `json:"per_delivered"`
	PerBilled       float64         `json:"per_billed"`
	StatusLabel     string          `json:"status_label"`
	Items           []OrderItem     `json:"items,omitempty"`
}

// ListFilter scopes a sales order listing.
type ListFilter struct {
	Customer string
	Status   string
	Limit    int
	Start    int
}
