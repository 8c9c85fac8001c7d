// Package mappers turns stored rows into API records: blank optional
// text becomes null, blob keys become public URLs, and engagement state
// is derived for assigned-user listings. Everything here is pure.
package mappers

import (
	"database/sql"
	"strings"

	"maid-cafe-backend/internal/models"
)

// Engagement states derived from a user's free-text status.
const (
	EngagementServing = "serving"
	EngagementLeaving = "leaving"
)

// URLBuilder maps a stored blob key to the URL exposed by the API.
type URLBuilder interface {
	PublicURL(key string) string
}

// EngagementState is "leaving" iff the trimmed status equals "leaving"
// case-insensitively; any other status, or none, is "serving".
func EngagementState(status sql.NullString) string {
	if status.Valid && strings.EqualFold(strings.TrimSpace(status.String), EngagementLeaving) {
		return EngagementLeaving
	}
	return EngagementServing
}

func nullableString(s sql.NullString) *string {
	if !s.Valid || strings.TrimSpace(s.String) == "" {
		return nil
	}
	v := s.String
	return &v
}

func nullableInt64(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	v := n.Int64
	return &v
}

func imageURL(key sql.NullString, urls URLBuilder) *string {
	if !key.Valid || key.String == "" {
		return nil
	}
	u := urls.PublicURL(key.String)
	return &u
}

func MaidRecord(m *models.Maid, urls URLBuilder) models.MaidRecord {
	return models.MaidRecord{
		ID:                m.ID,
		Name:              m.Name,
		ImageURL:          imageURL(m.ImageKey, urls),
		IsActive:          m.IsActive,
		IsInstaxAvailable: m.IsInstaxAvailable,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}

func UserRecord(u *models.User) models.UserRecord {
	return models.UserRecord{
		ID:           u.ID,
		Name:         u.Name,
		Status:       nullableString(u.Status),
		MaidID:       nullableString(u.MaidID),
		InstaxMaidID: nullableString(u.InstaxMaidID),
		SeatID:       nullableInt64(u.SeatID),
		IsValid:      u.IsValid,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

// AssignedUserRecord enriches a user row with its derived engagement
// state and, when present, the most recent instax id for display.
func AssignedUserRecord(u *models.User, latestInstaxID string) models.AssignedUserRecord {
	record := models.AssignedUserRecord{
		UserRecord:      UserRecord(u),
		EngagementState: EngagementState(u.Status),
	}
	if latestInstaxID != "" {
		record.LatestInstaxID = &latestInstaxID
	}
	return record
}

func MenuRecord(m *models.Menu, urls URLBuilder) models.MenuRecord {
	return models.MenuRecord{
		ID:          m.ID,
		Name:        m.Name,
		Description: nullableString(m.Description),
		Stock:       m.Stock,
		ImageURL:    imageURL(m.ImageKey, urls),
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func OrderRecord(o *models.Order) models.OrderRecord {
	return models.OrderRecord{
		ID:        o.ID,
		UserID:    o.UserID,
		MenuID:    o.MenuID,
		State:     o.State,
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
}

func InstaxRecord(i *models.Instax, urls URLBuilder) models.InstaxRecord {
	return models.InstaxRecord{
		ID:        i.ID,
		UserID:    i.UserID,
		MaidID:    i.MaidID,
		ImageURL:  imageURL(i.ImageKey, urls),
		CreatedAt: i.CreatedAt,
	}
}

func InstaxHistoryRecord(h *models.InstaxHistory, urls URLBuilder) models.InstaxHistoryRecord {
	return models.InstaxHistoryRecord{
		ID:         h.ID,
		InstaxID:   h.InstaxID,
		ImageURL:   urls.PublicURL(h.ImageKey),
		ArchivedAt: h.ArchivedAt,
	}
}
