package supabase

import (
	"fmt"

	"maid-cafe-backend/internal/models"
)

const orderColumns = "id, user_id, menu_id, state, created_at, updated_at"

func scanOrder(row interface{ Scan(...interface{}) error }) (*models.Order, error) {
	var o models.Order
	err := row.Scan(&o.ID, &o.UserID, &o.MenuID, &o.State, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (d *DatabaseClient) CreateOrder(id, userID, menuID string) (*models.Order, error) {
	order, err := scanOrder(d.db.QueryRow(`
		INSERT INTO orders (id, user_id, menu_id, state)
		VALUES (COALESCE(NULLIF($1, ''), nextval('orders_id_seq')::text), $2, $3, $4)
		RETURNING `+orderColumns,
		id, userID, menuID, models.OrderStatePending))
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	return order, nil
}

func (d *DatabaseClient) GetOrder(id string) (*models.Order, error) {
	order, err := scanOrder(d.db.QueryRow(`
		SELECT `+orderColumns+`
		FROM orders
		WHERE id = $1
	`, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return order, nil
}

func (d *DatabaseClient) ListOrders() ([]models.Order, error) {
	return d.queryOrders(`
		SELECT ` + orderColumns + `
		FROM orders
		ORDER BY created_at DESC
	`)
}

func (d *DatabaseClient) ListOrdersByUser(userID string) ([]models.Order, error) {
	return d.queryOrders(`
		SELECT `+orderColumns+`
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
}

func (d *DatabaseClient) queryOrders(query string, args ...interface{}) ([]models.Order, error) {
	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, *order)
	}

	return orders, rows.Err()
}

// UpdateOrderState writes the new state and refreshes updated_at. The
// no-change short-circuit happens in the handler so an unchanged state
// never touches the timestamp.
func (d *DatabaseClient) UpdateOrderState(id, state string) error {
	_, err := d.db.Exec(`
		UPDATE orders
		SET state = $1, updated_at = NOW()
		WHERE id = $2
	`, state, id)
	if err != nil {
		return fmt.Errorf("failed to update order state: %w", err)
	}
	return nil
}
