package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Takamichi23/Nike-microservice/store-service/internal/domain"
)

// RevenueByProduct sums price*quantity over all order lines, per product,
// highest revenue first.
func (r *Repository) RevenueByProduct(ctx context.Context) ([]domain.ProductRevenue, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT p.id, p.name, COALESCE(SUM(ol.price * ol.quantity), 0) AS total_revenue
		FROM order_lines ol
		JOIN products p ON p.id = ol.product_id
		GROUP BY p.id, p.name
		ORDER BY total_revenue DESC, p.id`)
	if err != nil {
		return nil, fmt.Errorf("query revenue: %w", err)
	}
	defer rows.Close()

	revenue := make([]domain.ProductRevenue, 0)
	for rows.Next() {
		var pr domain.ProductRevenue
		if err := rows.Scan(&pr.ProductID, &pr.ProductName, &pr.TotalRevenue); err != nil {
			return nil, fmt.Errorf("scan revenue row: %w", err)
		}
		revenue = append(revenue, pr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return revenue, nil
}

// HighestSelling returns the product with the largest total quantity sold.
func (r *Repository) HighestSelling(ctx context.Context) (*domain.BestSeller, error) {
	var best domain.BestSeller
	err := r.db.QueryRowContext(ctx, `
		SELECT p.id, p.name, SUM(ol.quantity) AS total_quantity, SUM(ol.price * ol.quantity) AS total_revenue
		FROM order_lines ol
		JOIN products p ON p.id = ol.product_id
		GROUP BY p.id, p.name
		ORDER BY total_quantity DESC, p.id
		LIMIT 1`).Scan(&best.ProductID, &best.ProductName, &best.TotalQuantity, &best.TotalRevenue)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoSales
	}
	if err != nil {
		return nil, fmt.Errorf("query highest selling: %w", err)
	}
	return &best, nil
}
