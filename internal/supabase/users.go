package supabase

import (
	"database/sql"
	"fmt"

	"maid-cafe-backend/internal/models"
)

const userColumns = "id, name, status, maid_id, instax_maid_id, seat_id, is_valid, created_at, updated_at"

func scanUser(row interface{ Scan(...interface{}) error }) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Name, &u.Status, &u.MaidID, &u.InstaxMaidID, &u.SeatID, &u.IsValid, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// UpsertUser is the check-in write. A fresh id inserts a row with an
// empty name; an existing id is re-registered in place: maid/seat/status
// overwritten, instax_maid_id cleared, is_valid reset to true, name
// preserved.
func (d *DatabaseClient) UpsertUser(id string, seatID sql.NullInt64, maidID string, status sql.NullString) (*models.User, error) {
	user, err := scanUser(d.db.QueryRow(`
		INSERT INTO users (id, name, status, maid_id, instax_maid_id, seat_id, is_valid)
		VALUES ($1, '', $2, $3, NULL, $4, TRUE)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			maid_id = EXCLUDED.maid_id,
			instax_maid_id = NULL,
			seat_id = EXCLUDED.seat_id,
			is_valid = TRUE,
			updated_at = NOW()
		RETURNING `+userColumns,
		id, status, maidID, seatID))
	if err != nil {
		return nil, fmt.Errorf("failed to upsert user: %w", err)
	}
	return user, nil
}

func (d *DatabaseClient) GetUser(id string) (*models.User, error) {
	user, err := scanUser(d.db.QueryRow(`
		SELECT `+userColumns+`
		FROM users
		WHERE id = $1
	`, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (d *DatabaseClient) ListUsers() ([]models.User, error) {
	rows, err := d.db.Query(`
		SELECT ` + userColumns + `
		FROM users
		ORDER BY updated_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, *user)
	}

	return users, rows.Err()
}

// GetUserBySeat resolves the current occupant of a seat: the valid row
// with that seat_id touched most recently. seat_id is not unique, so
// updated_at is the tiebreak.
func (d *DatabaseClient) GetUserBySeat(seatID int64) (*models.User, error) {
	user, err := scanUser(d.db.QueryRow(`
		SELECT `+userColumns+`
		FROM users
		WHERE seat_id = $1 AND is_valid = TRUE
		ORDER BY updated_at DESC
		LIMIT 1
	`, seatID))
	if err != nil {
		return nil, fmt.Errorf("failed to get user by seat: %w", err)
	}
	return user, nil
}

func (d *DatabaseClient) ListUsersByMaid(maidID string) ([]models.User, error) {
	rows, err := d.db.Query(`
		SELECT `+userColumns+`
		FROM users
		WHERE maid_id = $1 AND is_valid = TRUE
		ORDER BY updated_at DESC
	`, maidID)
	if err != nil {
		return nil, fmt.Errorf("failed to list users by maid: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, *user)
	}

	return users, rows.Err()
}

// UpdateUser writes the full mutable field set and refreshes
// updated_at. Callers only reach this after resolving an actual change.
func (d *DatabaseClient) UpdateUser(u *models.User) error {
	_, err := d.db.Exec(`
		UPDATE users
		SET name = $1, status = $2, maid_id = $3, instax_maid_id = $4, seat_id = $5, is_valid = $6, updated_at = NOW()
		WHERE id = $7
	`, u.Name, u.Status, u.MaidID, u.InstaxMaidID, u.SeatID, u.IsValid, u.ID)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}
