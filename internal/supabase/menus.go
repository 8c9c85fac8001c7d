package supabase

import (
	"database/sql"
	"fmt"

	"maid-cafe-backend/internal/models"
)

const menuColumns = "id, name, description, stock, image_key, created_at, updated_at"

func scanMenu(row interface{ Scan(...interface{}) error }) (*models.Menu, error) {
	var m models.Menu
	err := row.Scan(&m.ID, &m.Name, &m.Description, &m.Stock, &m.ImageKey, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// CreateMenu inserts the record without an image key; the key is set by
// a follow-up SetMenuImageKey once the blob upload succeeds (see the
// creation saga in the menus handler).
func (d *DatabaseClient) CreateMenu(id, name string, description sql.NullString, stock int) (*models.Menu, error) {
	menu, err := scanMenu(d.db.QueryRow(`
		INSERT INTO menus (id, name, description, stock)
		VALUES (COALESCE(NULLIF($1, ''), nextval('menus_id_seq')::text), $2, $3, $4)
		RETURNING `+menuColumns,
		id, name, description, stock))
	if err != nil {
		return nil, fmt.Errorf("failed to create menu: %w", err)
	}
	return menu, nil
}

func (d *DatabaseClient) SetMenuImageKey(id, imageKey string) error {
	_, err := d.db.Exec(`
		UPDATE menus
		SET image_key = $1, updated_at = NOW()
		WHERE id = $2
	`, imageKey, id)
	if err != nil {
		return fmt.Errorf("failed to set menu image key: %w", err)
	}
	return nil
}

func (d *DatabaseClient) GetMenu(id string) (*models.Menu, error) {
	menu, err := scanMenu(d.db.QueryRow(`
		SELECT `+menuColumns+`
		FROM menus
		WHERE id = $1
	`, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get menu: %w", err)
	}
	return menu, nil
}

func (d *DatabaseClient) ListMenus(availableOnly bool) ([]models.Menu, error) {
	query := `
		SELECT ` + menuColumns + `
		FROM menus
	`
	if availableOnly {
		query += ` WHERE stock > 0`
	}
	// length-first keeps serial text ids in numeric order.
	query += ` ORDER BY length(id), id`

	rows, err := d.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list menus: %w", err)
	}
	defer rows.Close()

	var menus []models.Menu
	for rows.Next() {
		menu, err := scanMenu(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan menu: %w", err)
		}
		menus = append(menus, *menu)
	}

	return menus, rows.Err()
}

func (d *DatabaseClient) UpdateMenu(m *models.Menu) error {
	_, err := d.db.Exec(`
		UPDATE menus
		SET name = $1, description = $2, stock = $3, image_key = $4, updated_at = NOW()
		WHERE id = $5
	`, m.Name, m.Description, m.Stock, m.ImageKey, m.ID)
	if err != nil {
		return fmt.Errorf("failed to update menu: %w", err)
	}
	return nil
}

// DeleteMenu removes the record; orders referencing it go with it via
// ON DELETE CASCADE.
func (d *DatabaseClient) DeleteMenu(id string) error {
	_, err := d.db.Exec(`DELETE FROM menus WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete menu: %w", err)
	}
	return nil
}
