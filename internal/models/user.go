package models

import (
	"database/sql"
	"time"
)

type User struct {
	ID           string
	Name         string
	Status       sql.NullString
	MaidID       sql.NullString
	InstaxMaidID sql.NullString
	SeatID       sql.NullInt64
	IsValid      bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
