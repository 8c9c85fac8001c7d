package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"maid-cafe-backend/internal/identifier"
	"maid-cafe-backend/internal/mappers"
	"maid-cafe-backend/internal/models"
	"maid-cafe-backend/internal/saga"
	"maid-cafe-backend/internal/validation"
)

type InstaxHandler struct {
	db        InstaxStore
	users     UserStore
	store     ObjectStore
	validator *validation.Validator
	ids       identifier.Strategy
}

func NewInstaxHandler(db InstaxStore, users UserStore, store ObjectStore, validator *validation.Validator, ids identifier.Strategy) *InstaxHandler {
	return &InstaxHandler{db: db, users: users, store: store, validator: validator, ids: ids}
}

// CreateInstax godoc
// @Summary     Capture an instax for a user
// @Tags        instax
// @Accept      multipart/form-data
// @Produce     json
// @Param       user_id formData string true "User ID"
// @Param       maid_id formData string true "Maid ID"
// @Param       image formData file true "Photo"
// @Success     201 {object} models.APIResponse
// @Failure     400 {object} models.APIResponse
// @Failure     404 {object} models.APIResponse
// @Router      /instax [post]
func (h *InstaxHandler) CreateInstax(c *gin.Context) {
	filename, contentType, data, err := readImageFile(c, "image")
	if err != nil {
		c.JSON(http.StatusBadRequest, models.Fail("image file is required", err.Error()))
		return
	}

	userID := formValue(c, "user_id")
	if userID == nil {
		c.JSON(http.StatusBadRequest, models.Fail("user_id is required", nil))
		return
	}
	if err := h.ids.Validate(*userID); err != nil {
		c.JSON(http.StatusBadRequest, models.Fail("invalid user_id", err.Error()))
		return
	}

	h.createForUser(c, *userID, filename, contentType, data)
}

// CreateInstaxBySeat godoc
// @Summary     Capture an instax for the occupant of a seat
// @Description Resolves the seat's current occupant, then proceeds as the direct capture does.
// @Tags        instax
// @Accept      multipart/form-data
// @Produce     json
// @Param       seat_id path int true "Seat number"
// @Param       maid_id formData string true "Maid ID"
// @Param       image formData file true "Photo"
// @Success     201 {object} models.APIResponse
// @Failure     400 {object} models.APIResponse
// @Failure     404 {object} models.APIResponse
// @Router      /seats/{seat_id}/instax [post]
func (h *InstaxHandler) CreateInstaxBySeat(c *gin.Context) {
	seatID, err := strconv.ParseInt(c.Param("seat_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.Fail("seat_id must be an integer", nil))
		return
	}

	filename, contentType, data, err := readImageFile(c, "image")
	if err != nil {
		c.JSON(http.StatusBadRequest, models.Fail("image file is required", err.Error()))
		return
	}

	user, err := h.users.GetUserBySeat(seatID)
	if err != nil {
		if isNotFound(err) {
			c.JSON(http.StatusNotFound, models.Fail("no active user at this seat", nil))
			return
		}
		c.JSON(http.StatusInternalServerError, models.Fail("failed to get user by seat", err.Error()))
		return
	}

	h.createForUser(c, user.ID, filename, contentType, data)
}

func (h *InstaxHandler) createForUser(c *gin.Context, userID, filename, contentType string, data []byte) {
	maidID := formValue(c, "maid_id")
	if maidID == nil {
		c.JSON(http.StatusBadRequest, models.Fail("maid_id is required", nil))
		return
	}
	if err := h.ids.Validate(*maidID); err != nil {
		c.JSON(http.StatusBadRequest, models.Fail("invalid maid_id", err.Error()))
		return
	}
	if failReference(c, h.validator.RequireMaid("maid_id", *maidID)) {
		return
	}

	if _, err := h.users.GetUser(userID); err != nil {
		if isNotFound(err) {
			c.JSON(http.StatusNotFound, models.Fail("user not found", nil))
			return
		}
		c.JSON(http.StatusInternalServerError, models.Fail("failed to get user", err.Error()))
		return
	}

	key := h.store.BuildKey("instax/"+userID, filename)
	if err := h.store.Upload(key, data, contentType); err != nil {
		c.JSON(http.StatusInternalServerError, models.Fail("failed to upload image", err.Error()))
		return
	}

	id := h.ids.Generate()
	instax, err := h.db.CreateInstax(id, userID, *maidID, key)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.Fail("failed to create instax", err.Error()))
		return
	}

	c.JSON(http.StatusCreated, models.OK("instax created", mappers.InstaxRecord(instax, h.store)))
}

// UpdateInstax godoc
// @Summary     Replace an instax image
// @Description Uploads the new blob, archives the previous image key into instax history, then repoints the record. The three steps run as a saga; the prior blob itself is never deleted.
// @Tags        instax
// @Accept      multipart/form-data
// @Produce     json
// @Param       instax_id path string true "Instax ID"
// @Param       image formData file true "Replacement photo"
// @Success     200 {object} models.APIResponse
// @Failure     400 {object} models.APIResponse
// @Failure     404 {object} models.APIResponse
// @Router      /instax/{instax_id} [patch]
func (h *InstaxHandler) UpdateInstax(c *gin.Context) {
	id := c.Param("instax_id")
	if err := h.ids.Validate(id); err != nil {
		c.JSON(http.StatusBadRequest, models.Fail("invalid instax id", err.Error()))
		return
	}

	filename, contentType, data, err := readImageFile(c, "image")
	if err != nil {
		c.JSON(http.StatusBadRequest, models.Fail("image file is required", err.Error()))
		return
	}

	instax, err := h.db.GetInstax(id)
	if err != nil {
		if isNotFound(err) {
			c.JSON(http.StatusNotFound, models.Fail("instax not found", nil))
			return
		}
		c.JSON(http.StatusInternalServerError, models.Fail("failed to get instax", err.Error()))
		return
	}

	newKey := h.store.BuildKey("instax/"+instax.UserID, filename)

	steps := []saga.Step{
		{
			Name:       "upload-image",
			Run:        func() error { return h.store.Upload(newKey, data, contentType) },
			Compensate: func() error { return h.store.Delete(newKey) },
		},
	}
	if instax.ImageKey.Valid && instax.ImageKey.String != "" {
		oldKey := instax.ImageKey.String
		var history *models.InstaxHistory
		steps = append(steps, saga.Step{
			Name: "archive-previous-key",
			Run: func() error {
				var err error
				history, err = h.db.CreateInstaxHistory(h.ids.Generate(), instax.ID, oldKey)
				return err
			},
			Compensate: func() error { return h.db.DeleteInstaxHistory(history.ID) },
		})
	}
	steps = append(steps, saga.Step{
		Name: "set-image-key",
		Run:  func() error { return h.db.SetInstaxImageKey(instax.ID, newKey) },
	})

	if err := saga.Execute(steps, logCompensation("instax-update")); err != nil {
		c.JSON(http.StatusInternalServerError, models.Fail("failed to update instax", err.Error()))
		return
	}

	instax.ImageKey.String = newKey
	instax.ImageKey.Valid = true
	c.JSON(http.StatusOK, models.OK("instax updated", mappers.InstaxRecord(instax, h.store)))
}

// GetInstax godoc
// @Summary     Get an instax
// @Tags        instax
// @Produce     json
// @Param       instax_id path string true "Instax ID"
// @Success     200 {object} models.APIResponse
// @Failure     404 {object} models.APIResponse
// @Router      /instax/{instax_id} [get]
func (h *InstaxHandler) GetInstax(c *gin.Context) {
	id := c.Param("instax_id")
	if err := h.ids.Validate(id); err != nil {
		c.JSON(http.StatusBadRequest, models.Fail("invalid instax id", err.Error()))
		return
	}

	instax, err := h.db.GetInstax(id)
	if err != nil {
		if isNotFound(err) {
			c.JSON(http.StatusNotFound, models.Fail("instax not found", nil))
			return
		}
		c.JSON(http.StatusInternalServerError, models.Fail("failed to get instax", err.Error()))
		return
	}

	c.JSON(http.StatusOK, models.OK("instax retrieved", mappers.InstaxRecord(instax, h.store)))
}

// GetLatestInstaxByUser godoc
// @Summary     Get a user's most recent instax
// @Tags        instax
// @Produce     json
// @Param       user_id path string true "User ID"
// @Success     200 {object} models.APIResponse
// @Failure     404 {object} models.APIResponse
// @Router      /users/{user_id}/instax [get]
func (h *InstaxHandler) GetLatestInstaxByUser(c *gin.Context) {
	userID := c.Param("user_id")
	if err := h.ids.Validate(userID); err != nil {
		c.JSON(http.StatusBadRequest, models.Fail("invalid user id", err.Error()))
		return
	}

	instax, err := h.db.GetLatestInstaxByUser(userID)
	if err != nil {
		if isNotFound(err) {
			c.JSON(http.StatusNotFound, models.Fail("no instax for this user", nil))
			return
		}
		c.JSON(http.StatusInternalServerError, models.Fail("failed to get instax", err.Error()))
		return
	}

	c.JSON(http.StatusOK, models.OK("instax retrieved", mappers.InstaxRecord(instax, h.store)))
}

// ListHistoryByUser godoc
// @Summary     List a user's archived instax images, newest first
// @Tags        instax
// @Produce     json
// @Param       user_id path string true "User ID"
// @Success     200 {object} models.APIResponse
// @Router      /users/{user_id}/instax/history [get]
func (h *InstaxHandler) ListHistoryByUser(c *gin.Context) {
	userID := c.Param("user_id")
	if err := h.ids.Validate(userID); err != nil {
		c.JSON(http.StatusBadRequest, models.Fail("invalid user id", err.Error()))
		return
	}

	histories, err := h.db.ListInstaxHistoryByUser(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.Fail("failed to list instax history", err.Error()))
		return
	}

	records := make([]models.InstaxHistoryRecord, len(histories))
	for i := range histories {
		records[i] = mappers.InstaxHistoryRecord(&histories[i], h.store)
	}

	c.JSON(http.StatusOK, models.OK("instax history retrieved", records))
}

// DeleteHistory godoc
// @Summary     Delete an archived instax image
// @Description Deletes the history row, then best-effort deletes the archived blob.
// @Tags        instax
// @Produce     json
// @Param       history_id path string true "History ID"
// @Success     200 {object} models.APIResponse
// @Failure     404 {object} models.APIResponse
// @Router      /instax-history/{history_id} [delete]
func (h *InstaxHandler) DeleteHistory(c *gin.Context) {
	id := c.Param("history_id")
	if err := h.ids.Validate(id); err != nil {
		c.JSON(http.StatusBadRequest, models.Fail("invalid history id", err.Error()))
		return
	}

	history, err := h.db.GetInstaxHistory(id)
	if err != nil {
		if isNotFound(err) {
			c.JSON(http.StatusNotFound, models.Fail("instax history not found", nil))
			return
		}
		c.JSON(http.StatusInternalServerError, models.Fail("failed to get instax history", err.Error()))
		return
	}

	if err := h.db.DeleteInstaxHistory(id); err != nil {
		c.JSON(http.StatusInternalServerError, models.Fail("failed to delete instax history", err.Error()))
		return
	}

	if err := h.store.Delete(history.ImageKey); err != nil {
		logrus.WithError(err).Warnf("failed to delete archived instax image %s", history.ImageKey)
	}

	c.JSON(http.StatusOK, models.OK("instax history deleted", nil))
}
