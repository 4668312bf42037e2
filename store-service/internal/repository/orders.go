package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/Takamichi23/Nike-microservice/store-service/internal/domain"
)

const orderColumns = `id, user_id, full_name, email, shipping_address, amount_paid, date_ordered, shipped, date_shipped`

func scanOrder(row rowScanner) (*domain.Order, error) {
	var (
		order       domain.Order
		userID      sql.NullInt64
		dateShipped sql.NullTime
	)
	err := row.Scan(
		&order.ID,
		&userID,
		&order.FullName,
		&order.Email,
		&order.ShippingAddress,
		&order.AmountPaid,
		&order.DateOrdered,
		&order.Shipped,
		&dateShipped,
	)
	if err != nil {
		return nil, err
	}
	if userID.Valid {
		id := userID.Int64
		order.UserID = &id
	}
	if dateShipped.Valid {
		t := dateShipped.Time
		order.DateShipped = &t
	}
	return &order, nil
}

// CreateOrder stores the order, its lines and an order.created event in one
// transaction and returns the new order id.
func (r *Repository) CreateOrder(ctx context.Context, order *NewOrder) (int64, error) {
	var orderID int64
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		insertErr := tx.QueryRowContext(ctx,
			`INSERT INTO orders (user_id, full_name, email, shipping_address, amount_paid, date_ordered, shipped)
			 VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
			nullableInt64(order.UserID),
			order.FullName,
			order.Email,
			order.ShippingAddress,
			order.AmountPaid,
			time.Now().UTC(),
			false,
		).Scan(&orderID)
		if insertErr != nil {
			return fmt.Errorf("insert order: %w", insertErr)
		}

		for _, line := range order.Lines {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO order_lines (order_id, product_id, user_id, quantity, price)
				 VALUES ($1, $2, $3, $4, $5)`,
				orderID,
				line.ProductID,
				nullableInt64(order.UserID),
				line.Quantity,
				line.Price,
			)
			if err != nil {
				return fmt.Errorf("insert order line for product %d: %w", line.ProductID, err)
			}
		}

		return insertOutboxEvent(ctx, tx, orderID, EventOrderCreated, map[string]interface{}{
			"order_id":    orderID,
			"user_id":     order.UserID,
			"amount_paid": order.AmountPaid,
			"items":       order.Lines,
		})
	})
	if err != nil {
		return 0, err
	}
	return orderID, nil
}

func (r *Repository) GetOrderByID(ctx context.Context, id int64) (*domain.Order, error) {
	order, err := scanOrder(r.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query order by id: %w", err)
	}

	lines, err := r.getOrderLines(ctx, id)
	if err != nil {
		return nil, err
	}
	order.Lines = lines
	return order, nil
}

func (r *Repository) getOrderLines(ctx context.Context, orderID int64) ([]domain.OrderLine, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, order_id, product_id, user_id, quantity, price
		 FROM order_lines WHERE order_id = $1 ORDER BY id`, orderID)
	if err != nil {
		return nil, fmt.Errorf("query order lines: %w", err)
	}
	defer rows.Close()

	lines := make([]domain.OrderLine, 0)
	for rows.Next() {
		var (
			line   domain.OrderLine
			userID sql.NullInt64
		)
		if err := rows.Scan(&line.ID, &line.OrderID, &line.ProductID, &userID, &line.Quantity, &line.Price); err != nil {
			return nil, fmt.Errorf("scan order line: %w", err)
		}
		if userID.Valid {
			id := userID.Int64
			line.UserID = &id
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return lines, nil
}

// ListOrders returns every order without its lines, oldest first.
func (r *Repository) ListOrders(ctx context.Context) ([]*domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	orders := make([]*domain.Order, 0)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order row: %w", err)
		}
		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return orders, nil
}

// UpdateOrder applies shipping status and per-line overrides. Overrides for
// products that are not part of the order are ignored.
func (r *Repository) UpdateOrder(ctx context.Context, id int64, update domain.OrderUpdate) (*domain.Order, error) {
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		order, err := scanOrder(tx.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
		if errors.Is(err, sql.ErrNoRows) {
			return ErrOrderNotFound
		}
		if err != nil {
			return fmt.Errorf("query order by id: %w", err)
		}

		order.ApplyStatus(update, time.Now().UTC())

		var dateShipped interface{}
		if order.DateShipped != nil {
			dateShipped = order.DateShipped.UTC()
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE orders SET shipped = $1, date_shipped = $2 WHERE id = $3`,
			order.Shipped, dateShipped, id); err != nil {
			return fmt.Errorf("update order status: %w", err)
		}

		for _, o := range update.Lines {
			if o.Quantity != nil {
				if _, err := tx.ExecContext(ctx,
					`UPDATE order_lines SET quantity = $1 WHERE order_id = $2 AND product_id = $3`,
					*o.Quantity, id, o.ProductID); err != nil {
					return fmt.Errorf("update line quantity for product %d: %w", o.ProductID, err)
				}
			}
			if o.Price != nil {
				if _, err := tx.ExecContext(ctx,
					`UPDATE order_lines SET price = $1 WHERE order_id = $2 AND product_id = $3`,
					*o.Price, id, o.ProductID); err != nil {
					return fmt.Errorf("update line price for product %d: %w", o.ProductID, err)
				}
			}
		}

		return insertOutboxEvent(ctx, tx, id, EventOrderUpdated, map[string]interface{}{
			"order_id":     id,
			"shipped":      order.Shipped,
			"date_shipped": order.DateShipped,
		})
	})
	if err != nil {
		return nil, err
	}
	return r.GetOrderByID(ctx, id)
}

// DeleteOrder removes the order and the lines it owns.
func (r *Repository) DeleteOrder(ctx context.Context, id int64) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM order_lines WHERE order_id = $1`, id); err != nil {
			return fmt.Errorf("delete order lines: %w", err)
		}

		result, err := tx.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("delete order: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("delete order: %w", err)
		}
		if affected == 0 {
			return ErrOrderNotFound
		}

		return insertOutboxEvent(ctx, tx, id, EventOrderDeleted, map[string]interface{}{
			"order_id": id,
		})
	})
}

func insertOutboxEvent(ctx context.Context, tx *sql.Tx, orderID int64, eventType string, payload interface{}) error {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", eventType, err)
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO outbox_events (aggregate_id, event_type, payload, created_at) VALUES ($1, $2, $3, $4)`,
		strconv.FormatInt(orderID, 10), eventType, string(payloadJSON), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("insert outbox event: %w", err)
	}
	return nil
}

func nullableInt64(v *int64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
