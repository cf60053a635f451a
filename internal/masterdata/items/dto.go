package items

import "github.com/shopspring/decimal"

type ItemForm struct {
	ItemCode     string           `json:"item_code" validate:"required"`
	ItemName     string           `json:"item_name" validate:"required"`
	ItemGroup    string           `json:"item_group" validate:"required"`
	StockUOM     string           `json:"stock_uom" validate:"required"`
	Description  string           `json:"description,omitempty"`
	IsStockItem  *bool            `json:"is_stock_item,omitempty"`
	StandardRate *decimal.Decimal `json:"standard_rate,omitempty" validate:"omitempty,gte=0"`
}

type ItemPatch struct {
	ItemName     *string          `json:"item_name,omitempty" validate:"omitnil,min=1"`
	ItemGroup    *string          `json:"item_group,omitempty" validate:"omitnil,min=1"`
	StockUOM     *string          `json:"stock_uom,omitempty" validate:"omitnil,min=1"`
	Description  *string          `json:"description,omitempty"`
	Disabled     *bool            `json:"disabled,omitempty"`
	StandardRate *decimal.Decimal `json:"standard_rate,omitempty" validate:"omitempty,gte=0"`
}

// itemDoc is the ERP payload; the ERP stores checkboxes as 0/1.
type itemDoc struct {
	ItemCode     string           `json:"item_code,omitempty"`
	ItemName     *string          `json:"item_name,omitempty"`
	ItemGroup    *string          `json:"item_group,omitempty"`
	StockUOM     *string          `json:"stock_uom,omitempty"`
	Description  *string          `json:"description,omitempty"`
	IsStockItem  *int             `json:"is_stock_item,omitempty"`
	Disabled     *int             `json:"disabled,omitempty"`
	StandardRate *decimal.Decimal `json:"standard_rate,omitempty"`
}

func (f ItemForm) doc() itemDoc {
	stock := 1
	if f.IsStockItem != nil && !*f.IsStockItem {
		stock = 0
	}
	d := itemDoc{
		ItemCode:     f.ItemCode,
		ItemName:     &f.ItemName,
		ItemGroup:    &f.ItemGroup,
		StockUOM:     &f.StockUOM,
		IsStockItem:  &stock,
		StandardRate: f.StandardRate,
	}
	if f.Description != "" {
		d.Description = &f.Description
	}
	return d
}

func (p ItemPatch) doc() itemDoc {
	d := itemDoc{
		ItemName:     p.ItemName,
		ItemGroup:    p.ItemGroup,
		StockUOM:     p.StockUOM,
		Description:  p.Description,
		StandardRate: p.StandardRate,
	}
	if p.Disabled != nil {
		v := 0
		if *p.Disabled {
			v = 1
		}
		d.Disabled = &v
	}
	return d
}
