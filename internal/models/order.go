package models

import "time"

// Order states. Any member may be written in any order; only membership
// is validated (see DESIGN.md on forward-only transitions).
const (
	OrderStatePending   = "pending"
	OrderStatePreparing = "preparing"
	OrderStateServed    = "served"
)

func IsValidOrderState(state string) bool {
	switch state {
	case OrderStatePending, OrderStatePreparing, OrderStateServed:
		return true
	}
	return false
}

type Order struct {
	ID        string
	UserID    string
	MenuID    string
	State     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
