package models

type CreateMaidRequest struct {
	// ID is required when the deployment uses the uuid identifier strategy
	// and ignored (server-assigned) under the serial strategy.
	ID                string `json:"id,omitempty"`
	Name              string `json:"name,omitempty"`
	IsInstaxAvailable *bool  `json:"is_instax_available,omitempty"`
}

type UpdateMaidRequest struct {
	Name              *string `json:"name,omitempty"`
	IsInstaxAvailable *bool   `json:"is_instax_available,omitempty"`
}

type ToggleMaidActiveRequest struct {
	IsActive *bool `json:"is_active"`
}

type CreateUserRequest struct {
	ID     string  `json:"id"`
	SeatID *int64  `json:"seat_id"`
	MaidID string  `json:"maid_id"`
	Status *string `json:"status,omitempty"`
}

type UpdateUserRequest struct {
	Name         *string `json:"name,omitempty"`
	MaidID       *string `json:"maid_id,omitempty"`
	InstaxMaidID *string `json:"instax_maid_id,omitempty"`
	SeatID       *int64  `json:"seat_id,omitempty"`
	Status       *string `json:"status,omitempty"`
	IsValid      *bool   `json:"is_valid,omitempty"`
}

type UpdateMenuRequest struct {
	Name        *string `json:"name,omitempty"`
	Stock       *int    `json:"stock,omitempty"`
	Description *string `json:"description,omitempty"`
}

type CreateOrderRequest struct {
	UserID string `json:"user_id"`
	MenuID string `json:"menu_id"`
}

type UpdateOrderRequest struct {
	State string `json:"state"`
}
