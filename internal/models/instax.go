package models

import (
	"database/sql"
	"time"
)

type Instax struct {
	ID        string
	UserID    string
	MaidID    string
	ImageKey  sql.NullString
	CreatedAt time.Time
}

// InstaxHistory holds the previous image key of an Instax record. Rows are
// created whenever an Instax image is replaced; the old blob is archived,
// not deleted.
type InstaxHistory struct {
	ID         string
	InstaxID   string
	ImageKey   string
	ArchivedAt time.Time
}
