package domain

import "github.com/shopspring/decimal"

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

// UnitPrice is what a buyer pays for one unit right now.
func (p Product) UnitPrice() decimal.Decimal {
	if p.IsSale {
		return p.SalePrice
	}
	return p.Price
}

type ProductRevenue struct {
	ProductID    int64   `json:"product_id"`
	ProductName  string  `json:"product_name"`
	TotalRevenue float64 `json:"total_revenue"`
}

type BestSeller struct {
	ProductID     int64   `json:"product_id"`
	ProductName   string  `json:"product_name"`
	TotalQuantity int     `json:"total_quantity"`
	TotalRevenue  float64 `json:"total_revenue"`
}
