package models

import "time"

// APIResponse is the envelope every endpoint returns.
type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

func OK(message string, data interface{}) APIResponse {
	return APIResponse{Success: true, Message: message, Data: data}
}

func Fail(message string, details interface{}) APIResponse {
	return APIResponse{Success: false, Message: message, Details: details}
}

type MaidRecord struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	ImageURL          *string   `json:"image_url"`
	IsActive          bool      `json:"is_active"`
	IsInstaxAvailable bool      `json:"is_instax_available"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

type MaidListData struct {
	Maids   []MaidRecord `json:"maids"`
	Page    int          `json:"page"`
	PerPage int          `json:"per_page"`
}

type UserRecord struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Status       *string   `json:"status"`
	MaidID       *string   `json:"maid_id"`
	InstaxMaidID *string   `json:"instax_maid_id"`
	SeatID       *int64    `json:"seat_id"`
	IsValid      bool      `json:"is_valid"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// AssignedUserRecord is a UserRecord enriched for the per-maid listing.
type AssignedUserRecord struct {
	UserRecord
	EngagementState string  `json:"engagement_state"`
	LatestInstaxID  *string `json:"latest_instax_id"`
}

type MenuRecord struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	Stock       int       `json:"stock"`
	ImageURL    *string   `json:"image_url"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type OrderRecord struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	MenuID    string    `json:"menu_id"`
	State     string    `json:"state"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type InstaxRecord struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	MaidID    string    `json:"maid_id"`
	ImageURL  *string   `json:"image_url"`
	CreatedAt time.Time `json:"created_at"`
}

type InstaxHistoryRecord struct {
	ID         string    `json:"id"`
	InstaxID   string    `json:"instax_id"`
	ImageURL   string    `json:"image_url"`
	ArchivedAt time.Time `json:"archived_at"`
}

type HealthResponse struct {
	Status string `json:"status"`
}
