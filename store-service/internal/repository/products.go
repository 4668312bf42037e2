package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Takamichi23/Nike-microservice/store-service/internal/domain"
)

const productColumns = `id, name, price, category_id, description, image, is_sale, sale_price`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*domain.Product, error) {
	p := &domain.Product{}
	var category sql.NullInt64
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Price,
		&category,
		&p.Description,
		&p.Image,
		&p.IsSale,
		&p.SalePrice,
	)
	if err != nil {
		return nil, err
	}
	if category.Valid {
		id := category.Int64
		p.CategoryID = &id
	}
	return p, nil
}

func (r *Repository) queryProducts(ctx context.Context, query string, args ...any) ([]*domain.Product, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	products := make([]*domain.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return products, nil
}

func (r *Repository) GetAllProducts(ctx context.Context) ([]*domain.Product, error) {
	return r.queryProducts(ctx, `SELECT `+productColumns+` FROM products ORDER BY id`)
}

// GetProductsByIDs returns the products that still exist among ids; unknown
// ids are skipped without error.
func (r *Repository) GetProductsByIDs(ctx context.Context, ids []int64) ([]*domain.Product, error) {
	if len(ids) == 0 {
		return []*domain.Product{}, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}

	query := `SELECT ` + productColumns + ` FROM products WHERE id IN (` +
		strings.Join(placeholders, ", ") + `) ORDER BY id`
	return r.queryProducts(ctx, query, args...)
}

func (r *Repository) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query product by id: %w", err)
	}
	return p, nil
}
