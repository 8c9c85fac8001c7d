package supabase

import (
	"fmt"

	"github.com/lib/pq"
	"maid-cafe-backend/internal/models"
)

const instaxColumns = "id, user_id, maid_id, image_key, created_at"

func scanInstax(row interface{ Scan(...interface{}) error }) (*models.Instax, error) {
	var i models.Instax
	err := row.Scan(&i.ID, &i.UserID, &i.MaidID, &i.ImageKey, &i.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &i, nil
}

func (d *DatabaseClient) CreateInstax(id, userID, maidID, imageKey string) (*models.Instax, error) {
	instax, err := scanInstax(d.db.QueryRow(`
		INSERT INTO instax (id, user_id, maid_id, image_key)
		VALUES (COALESCE(NULLIF($1, ''), nextval('instax_id_seq')::text), $2, $3, $4)
		RETURNING `+instaxColumns,
		id, userID, maidID, imageKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create instax: %w", err)
	}
	return instax, nil
}

func (d *DatabaseClient) GetInstax(id string) (*models.Instax, error) {
	instax, err := scanInstax(d.db.QueryRow(`
		SELECT `+instaxColumns+`
		FROM instax
		WHERE id = $1
	`, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get instax: %w", err)
	}
	return instax, nil
}

func (d *DatabaseClient) GetLatestInstaxByUser(userID string) (*models.Instax, error) {
	instax, err := scanInstax(d.db.QueryRow(`
		SELECT `+instaxColumns+`
		FROM instax
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`, userID))
	if err != nil {
		return nil, fmt.Errorf("failed to get latest instax: %w", err)
	}
	return instax, nil
}

// LatestInstaxIDsForUsers resolves, in one query, the most recent instax
// id per user for the assigned-users listing.
func (d *DatabaseClient) LatestInstaxIDsForUsers(userIDs []string) (map[string]string, error) {
	rows, err := d.db.Query(`
		SELECT DISTINCT ON (user_id) user_id, id
		FROM instax
		WHERE user_id = ANY($1)
		ORDER BY user_id, created_at DESC
	`, pq.Array(userIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve latest instax ids: %w", err)
	}
	defer rows.Close()

	latest := make(map[string]string)
	for rows.Next() {
		var userID, instaxID string
		if err := rows.Scan(&userID, &instaxID); err != nil {
			return nil, fmt.Errorf("failed to scan instax id: %w", err)
		}
		latest[userID] = instaxID
	}

	return latest, rows.Err()
}

func (d *DatabaseClient) SetInstaxImageKey(id, imageKey string) error {
	_, err := d.db.Exec(`
		UPDATE instax
		SET image_key = $1
		WHERE id = $2
	`, imageKey, id)
	if err != nil {
		return fmt.Errorf("failed to set instax image key: %w", err)
	}
	return nil
}

const historyColumns = "id, instax_id, image_key, archived_at"

func scanInstaxHistory(row interface{ Scan(...interface{}) error }) (*models.InstaxHistory, error) {
	var h models.InstaxHistory
	err := row.Scan(&h.ID, &h.InstaxID, &h.ImageKey, &h.ArchivedAt)
	if err != nil {
		return nil, err
	}
	return &h, nil
}

func (d *DatabaseClient) CreateInstaxHistory(id, instaxID, imageKey string) (*models.InstaxHistory, error) {
	history, err := scanInstaxHistory(d.db.QueryRow(`
		INSERT INTO instax_history (id, instax_id, image_key)
		VALUES (COALESCE(NULLIF($1, ''), nextval('instax_history_id_seq')::text), $2, $3)
		RETURNING `+historyColumns,
		id, instaxID, imageKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create instax history: %w", err)
	}
	return history, nil
}

func (d *DatabaseClient) GetInstaxHistory(id string) (*models.InstaxHistory, error) {
	history, err := scanInstaxHistory(d.db.QueryRow(`
		SELECT `+historyColumns+`
		FROM instax_history
		WHERE id = $1
	`, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get instax history: %w", err)
	}
	return history, nil
}

// ListInstaxHistoryByUser joins history to its instax record to filter
// by the photographed user, newest first.
func (d *DatabaseClient) ListInstaxHistoryByUser(userID string) ([]models.InstaxHistory, error) {
	rows, err := d.db.Query(`
		SELECT h.id, h.instax_id, h.image_key, h.archived_at
		FROM instax_history h
		JOIN instax i ON i.id = h.instax_id
		WHERE i.user_id = $1
		ORDER BY h.archived_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list instax history: %w", err)
	}
	defer rows.Close()

	var histories []models.InstaxHistory
	for rows.Next() {
		history, err := scanInstaxHistory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan instax history: %w", err)
		}
		histories = append(histories, *history)
	}

	return histories, rows.Err()
}

func (d *DatabaseClient) DeleteInstaxHistory(id string) error {
	_, err := d.db.Exec(`DELETE FROM instax_history WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete instax history: %w", err)
	}
	return nil
}
