// Package items manages ERP item master data.
package items

import "github.com/shopspring/decimal"

const Doctype = "Item"

type Item struct {
	Name          string          `json:"name"`
	ItemCode      string          `json:"item_code"`
	ItemName      string          `json:"item_name"`
	ItemGroup     string          `json:"item_group"`
	StockUOM      string          `json:"stock_uom"`
	Description   string          `json:"description,omitempty"`
	IsStockItem   int             `json:"is_stock_item"`
	Disabled      int             `json:"disabled"`
	StandardRate  decimal.Decimal `json:"standard_rate"`
	ValuationRate decimal.Decimal `json:"valuation_rate"`
	Modified      string          `json:"modified,omitempty"`
}

type ListFilters struct {
	Search    string
	ItemGroup string
	Disabled  *bool
	Limit     int
	Start     int
}
