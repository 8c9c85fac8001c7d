package supabase

import (
	"fmt"

	"maid-cafe-backend/internal/models"
)

const maidColumns = "id, name, image_key, is_active, is_instax_available, created_at, updated_at"

func scanMaid(row interface{ Scan(...interface{}) error }) (*models.Maid, error) {
	var m models.Maid
	err := row.Scan(&m.ID, &m.Name, &m.ImageKey, &m.IsActive, &m.IsInstaxAvailable, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// CreateMaid inserts a maid. An empty id draws the next value from the
// maids sequence (serial deployments); otherwise the caller-supplied id
// is stored as-is.
func (d *DatabaseClient) CreateMaid(id, name string, isInstaxAvailable bool) (*models.Maid, error) {
	maid, err := scanMaid(d.db.QueryRow(`
		INSERT INTO maids (id, name, is_instax_available)
		VALUES (COALESCE(NULLIF($1, ''), nextval('maids_id_seq')::text), $2, $3)
		RETURNING `+maidColumns,
		id, name, isInstaxAvailable))
	if err != nil {
		return nil, fmt.Errorf("failed to create maid: %w", err)
	}
	return maid, nil
}

func (d *DatabaseClient) GetMaid(id string) (*models.Maid, error) {
	maid, err := scanMaid(d.db.QueryRow(`
		SELECT `+maidColumns+`
		FROM maids
		WHERE id = $1
	`, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get maid: %w", err)
	}
	return maid, nil
}

func (d *DatabaseClient) MaidExists(id string) (bool, error) {
	var count int
	err := d.db.QueryRow(`SELECT COUNT(*) FROM maids WHERE id = $1`, id).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check maid existence: %w", err)
	}
	return count > 0, nil
}

// ListMaids returns one page ordered by id. isActive nil means no
// visibility filter. Ids are TEXT, so ordering by length first keeps
// serial ids numeric ("2" before "10"); uuids all share one length and
// fall through to the plain comparison.
func (d *DatabaseClient) ListMaids(page, perPage int, isActive *bool) ([]models.Maid, error) {
	query := `
		SELECT ` + maidColumns + `
		FROM maids
	`
	args := []interface{}{perPage, (page - 1) * perPage}
	if isActive != nil {
		query += ` WHERE is_active = $3`
		args = append(args, *isActive)
	}
	query += ` ORDER BY length(id), id LIMIT $1 OFFSET $2`

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list maids: %w", err)
	}
	defer rows.Close()

	var maids []models.Maid
	for rows.Next() {
		maid, err := scanMaid(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan maid: %w", err)
		}
		maids = append(maids, *maid)
	}

	return maids, rows.Err()
}

// UpdateMaid writes name, image_key and is_instax_available and
// refreshes updated_at. Callers only reach this after resolving an
// actual change.
func (d *DatabaseClient) UpdateMaid(m *models.Maid) error {
	_, err := d.db.Exec(`
		UPDATE maids
		SET name = $1, image_key = $2, is_instax_available = $3, updated_at = NOW()
		WHERE id = $4
	`, m.Name, m.ImageKey, m.IsInstaxAvailable, m.ID)
	if err != nil {
		return fmt.Errorf("failed to update maid: %w", err)
	}
	return nil
}

func (d *DatabaseClient) SetMaidActive(id string, isActive bool) error {
	_, err := d.db.Exec(`
		UPDATE maids
		SET is_active = $1, updated_at = NOW()
		WHERE id = $2
	`, isActive, id)
	if err != nil {
		return fmt.Errorf("failed to set maid active flag: %w", err)
	}
	return nil
}

// DeleteMaid removes the record. users.maid_id/instax_maid_id are
// nulled by the schema's ON DELETE SET NULL, not here.
func (d *DatabaseClient) DeleteMaid(id string) error {
	_, err := d.db.Exec(`DELETE FROM maids WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete maid: %w", err)
	}
	return nil
}
