package models

import (
	"database/sql"
	"time"
)

type Menu struct {
	ID          string
	Name        string
	Description sql.NullString
	Stock       int
	ImageKey    sql.NullString
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
