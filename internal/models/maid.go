package models

import (
	"database/sql"
	"time"
)

type Maid struct {
	ID                string
	Name              string
	ImageKey          sql.NullString
	IsActive          bool
	IsInstaxAvailable bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
