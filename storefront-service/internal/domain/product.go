package domain

import "github.com/shopspring/decimal"

// Product is the catalog record as served by the store API.
type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	CategoryID  *int64          `json:"category_id"`
	Description string          `json:"description"`
	Image       string          `json:"image"`
	IsSale      bool            `json:"is_sale"`
	SalePrice   decimal.Decimal `json:"sale_price"`
}

func (p Product) UnitPrice() decimal.Decimal {
	if p.IsSale {
		return p.SalePrice
	}
	return p.Price
}
