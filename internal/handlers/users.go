package handlers

import (
	"database/sql"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"maid-cafe-backend/internal/identifier"
	"maid-cafe-backend/internal/mappers"
	"maid-cafe-backend/internal/models"
	"maid-cafe-backend/internal/validation"
)

type UsersHandler struct {
	db        UserStore
	validator *validation.Validator
	ids       identifier.Strategy
}

func NewUsersHandler(db UserStore, validator *validation.Validator, ids identifier.Strategy) *UsersHandler {
	return &UsersHandler{db: db, validator: validator, ids: ids}
}

// CreateUser godoc
// @Summary     Check a user in
// @Description Idempotent upsert by id. A fresh id inserts a row with an empty name; an existing id is re-registered at the new seat and maid with is_valid reset to true and its name preserved.
// @Tags        users
// @Accept      json
// @Produce     json
// @Param       request body models.CreateUserRequest true "Check-in"
// @Success     200 {object} models.APIResponse
// @Failure     400 {object} models.APIResponse
// @Router      /users [post]
func (h *UsersHandler) CreateUser(c *gin.Context) {
	var req models.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.Fail("invalid request body", err.Error()))
		return
	}

	if err := h.ids.Validate(req.ID); err != nil {
		c.JSON(http.StatusBadRequest, models.Fail("invalid user id", err.Error()))
		return
	}
	if req.MaidID == "" {
		c.JSON(http.StatusBadRequest, models.Fail("maid_id is required", nil))
		return
	}
	if err := h.ids.Validate(req.MaidID); err != nil {
		c.JSON(http.StatusBadRequest, models.Fail("invalid maid_id", err.Error()))
		return
	}
	if req.SeatID == nil {
		c.JSON(http.StatusBadRequest, models.Fail("seat_id is required", nil))
		return
	}

	if failReference(c, h.validator.RequireMaid("maid_id", req.MaidID)) {
		return
	}

	status := sql.NullString{}
	if req.Status != nil && strings.TrimSpace(*req.Status) != "" {
		status = sql.NullString{String: *req.Status, Valid: true}
	}

	user, err := h.db.UpsertUser(req.ID, sql.NullInt64{Int64: *req.SeatID, Valid: true}, req.MaidID, status)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.Fail("failed to register user", err.Error()))
		return
	}

	c.JSON(http.StatusOK, models.OK("user registered", mappers.UserRecord(user)))
}

// UpdateUser godoc
// @Summary     Update a user
// @Description Partial update. Maid references are validated to exist before anything is written; a request resolving to no change leaves updated_at untouched.
// @Tags        users
// @Accept      json
// @Produce     json
// @Param       user_id path string true "User ID"
// @Param       request body models.UpdateUserRequest true "Fields to change"
// @Success     200 {object} models.APIResponse
// @Failure     400 {object} models.APIResponse
// @Failure     404 {object} models.APIResponse
// @Router      /users/{user_id} [patch]
func (h *UsersHandler) UpdateUser(c *gin.Context) {
	id := c.Param("user_id")
	if err := h.ids.Validate(id); err != nil {
		c.JSON(http.StatusBadRequest, models.Fail("invalid user id", err.Error()))
		return
	}

	var req models.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.Fail("invalid request body", err.Error()))
		return
	}
	if req.Name == nil && req.MaidID == nil && req.InstaxMaidID == nil && req.SeatID == nil && req.Status == nil && req.IsValid == nil {
		c.JSON(http.StatusBadRequest, models.Fail("at least one field is required", nil))
		return
	}

	// Validate incoming maid references before loading or mutating
	// anything.
	if req.MaidID != nil && *req.MaidID != "" {
		if failReference(c, h.validator.RequireMaid("maid_id", *req.MaidID)) {
			return
		}
	}
	if req.InstaxMaidID != nil && *req.InstaxMaidID != "" {
		if failReference(c, h.validator.RequireMaid("instax_maid_id", *req.InstaxMaidID)) {
			return
		}
	}

	user, err := h.db.GetUser(id)
	if err != nil {
		if isNotFound(err) {
			c.JSON(http.StatusNotFound, models.Fail("user not found", nil))
			return
		}
		c.JSON(http.StatusInternalServerError, models.Fail("failed to get user", err.Error()))
		return
	}

	changed := false
	if req.Name != nil && *req.Name != user.Name {
		user.Name = *req.Name
		changed = true
	}
	if req.Status != nil {
		next := sql.NullString{}
		if strings.TrimSpace(*req.Status) != "" {
			next = sql.NullString{String: *req.Status, Valid: true}
		}
		if next != user.Status {
			user.Status = next
			changed = true
		}
	}
	if req.MaidID != nil {
		next := sql.NullString{}
		if *req.MaidID != "" {
			next = sql.NullString{String: *req.MaidID, Valid: true}
		}
		if next != user.MaidID {
			user.MaidID = next
			changed = true
		}
	}
	if req.InstaxMaidID != nil {
		next := sql.NullString{}
		if *req.InstaxMaidID != "" {
			next = sql.NullString{String: *req.InstaxMaidID, Valid: true}
		}
		if next != user.InstaxMaidID {
			user.InstaxMaidID = next
			changed = true
		}
	}
	if req.SeatID != nil {
		next := sql.NullInt64{Int64: *req.SeatID, Valid: true}
		if next != user.SeatID {
			user.SeatID = next
			changed = true
		}
	}
	if req.IsValid != nil && *req.IsValid != user.IsValid {
		user.IsValid = *req.IsValid
		changed = true
	}

	if !changed {
		c.JSON(http.StatusOK, models.OK("No changes applied", mappers.UserRecord(user)))
		return
	}

	if err := h.db.UpdateUser(user); err != nil {
		c.JSON(http.StatusInternalServerError, models.Fail("failed to update user", err.Error()))
		return
	}

	c.JSON(http.StatusOK, models.OK("user updated", mappers.UserRecord(user)))
}

// GetUser godoc
// @Summary     Get a user
// @Tags        users
// @Produce     json
// @Param       user_id path string true "User ID"
// @Success     200 {object} models.APIResponse
// @Failure     404 {object} models.APIResponse
// @Router      /users/{user_id} [get]
func (h *UsersHandler) GetUser(c *gin.Context) {
	id := c.Param("user_id")
	if err := h.ids.Validate(id); err != nil {
		c.JSON(http.StatusBadRequest, models.Fail("invalid user id", err.Error()))
		return
	}

	user, err := h.db.GetUser(id)
	if err != nil {
		if isNotFound(err) {
			c.JSON(http.StatusNotFound, models.Fail("user not found", nil))
			return
		}
		c.JSON(http.StatusInternalServerError, models.Fail("failed to get user", err.Error()))
		return
	}

	c.JSON(http.StatusOK, models.OK("user retrieved", mappers.UserRecord(user)))
}

// ListUsers godoc
// @Summary     List users
// @Tags        users
// @Produce     json
// @Success     200 {object} models.APIResponse
// @Router      /users [get]
func (h *UsersHandler) ListUsers(c *gin.Context) {
	users, err := h.db.ListUsers()
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.Fail("failed to list users", err.Error()))
		return
	}

	records := make([]models.UserRecord, len(users))
	for i := range users {
		records[i] = mappers.UserRecord(&users[i])
	}

	c.JSON(http.StatusOK, models.OK("users retrieved", records))
}

// GetUserBySeat godoc
// @Summary     Get the current occupant of a seat
// @Description Seat occupancy is the valid user row for the seat with the most recent updated_at.
// @Tags        users
// @Produce     json
// @Param       seat_id path int true "Seat number"
// @Success     200 {object} models.APIResponse
// @Failure     400 {object} models.APIResponse
// @Failure     404 {object} models.APIResponse
// @Router      /seats/{seat_id}/user [get]
func (h *UsersHandler) GetUserBySeat(c *gin.Context) {
	seatID, err := strconv.ParseInt(c.Param("seat_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.Fail("seat_id must be an integer", nil))
		return
	}

	user, err := h.db.GetUserBySeat(seatID)
	if err != nil {
		if isNotFound(err) {
			c.JSON(http.StatusNotFound, models.Fail("no active user at this seat", nil))
			return
		}
		c.JSON(http.StatusInternalServerError, models.Fail("failed to get user by seat", err.Error()))
		return
	}

	c.JSON(http.StatusOK, models.OK("user retrieved", mappers.UserRecord(user)))
}
