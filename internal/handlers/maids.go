package handlers

import (
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"maid-cafe-backend/internal/identifier"
	"maid-cafe-backend/internal/mappers"
	"maid-cafe-backend/internal/models"
)

type MaidsHandler struct {
	db    MaidStore
	store ObjectStore
	ids   identifier.Strategy
	// listActiveDefault is applied when GET /maids omits is_active:
	// nil lists everything, non-nil filters on the flag. Configurable
	// because deployments have shipped both behaviors.
	listActiveDefault *bool
}

func NewMaidsHandler(db MaidStore, store ObjectStore, ids identifier.Strategy, listDefault string) *MaidsHandler {
	h := &MaidsHandler{
		db:    db,
		store: store,
		ids:   ids,
	}
	if listDefault == "active" {
		active := true
		h.listActiveDefault = &active
	}
	return h
}

// ListMaids godoc
// @Summary     List maids
// @Description Returns a page of maids ordered by id, optionally filtered by visibility
// @Tags        maids
// @Produce     json
// @Param       page query int false "Page number (default 1)"
// @Param       per_page query int false "Page size, max 100 (default 20)"
// @Param       is_active query bool false "Filter by visibility flag"
// @Success     200 {object} models.APIResponse
// @Failure     400 {object} models.APIResponse
// @Router      /maids [get]
func (h *MaidsHandler) ListMaids(c *gin.Context) {
	page, perPage, err := parsePagination(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.Fail(err.Error(), nil))
		return
	}

	isActive := h.listActiveDefault
	if raw, ok := c.GetQuery("is_active"); ok {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.Fail("is_active must be a boolean", nil))
			return
		}
		isActive = &parsed
	}

	maids, err := h.db.ListMaids(page, perPage, isActive)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.Fail("failed to list maids", err.Error()))
		return
	}

	records := make([]models.MaidRecord, len(maids))
	for i := range maids {
		records[i] = mappers.MaidRecord(&maids[i], h.store)
	}

	c.JSON(http.StatusOK, models.OK("maids retrieved", models.MaidListData{
		Maids:   records,
		Page:    page,
		PerPage: perPage,
	}))
}

// GetMaid godoc
// @Summary     Get a maid
// @Tags        maids
// @Produce     json
// @Param       maid_id path string true "Maid ID"
// @Success     200 {object} models.APIResponse
// @Failure     400 {object} models.APIResponse
// @Failure     404 {object} models.APIResponse
// @Router      /maids/{maid_id} [get]
func (h *MaidsHandler) GetMaid(c *gin.Context) {
	id := c.Param("maid_id")
	if err := h.ids.Validate(id); err != nil {
		c.JSON(http.StatusBadRequest, models.Fail("invalid maid id", err.Error()))
		return
	}

	maid, err := h.db.GetMaid(id)
	if err != nil {
		if isNotFound(err) {
			c.JSON(http.StatusNotFound, models.Fail("maid not found", nil))
			return
		}
		c.JSON(http.StatusInternalServerError, models.Fail("failed to get maid", err.Error()))
		return
	}

	c.JSON(http.StatusOK, models.OK("maid retrieved", mappers.MaidRecord(maid, h.store)))
}

// CreateMaid godoc
// @Summary     Create a maid
// @Description Under the uuid strategy the caller reserves the id up front; under the serial strategy the id is server-assigned and name is required.
// @Tags        maids
// @Accept      json
// @Produce     json
// @Param       request body models.CreateMaidRequest true "Maid"
// @Success     201 {object} models.APIResponse
// @Failure     400 {object} models.APIResponse
// @Failure     409 {object} models.APIResponse
// @Router      /maids [post]
func (h *MaidsHandler) CreateMaid(c *gin.Context) {
	var req models.CreateMaidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.Fail("invalid request body", err.Error()))
		return
	}

	id := ""
	if h.ids.ClientSuppliesID() {
		if req.ID == "" {
			c.JSON(http.StatusBadRequest, models.Fail("id is required", nil))
			return
		}
		if err := h.ids.Validate(req.ID); err != nil {
			c.JSON(http.StatusBadRequest, models.Fail("invalid maid id", err.Error()))
			return
		}
		exists, err := h.db.MaidExists(req.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, models.Fail("failed to check maid id", err.Error()))
			return
		}
		if exists {
			c.JSON(http.StatusConflict, models.Fail("maid id already exists", nil))
			return
		}
		id = req.ID
	} else if req.Name == "" {
		c.JSON(http.StatusBadRequest, models.Fail("name is required", nil))
		return
	}

	isInstaxAvailable := false
	if req.IsInstaxAvailable != nil {
		isInstaxAvailable = *req.IsInstaxAvailable
	}

	maid, err := h.db.CreateMaid(id, req.Name, isInstaxAvailable)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.Fail("failed to create maid", err.Error()))
		return
	}

	c.JSON(http.StatusCreated, models.OK("maid created", mappers.MaidRecord(maid, h.store)))
}

// maidPatch is the normalized optional-field set an update resolves to,
// whether the request arrived as JSON or multipart.
type maidPatch struct {
	Name              *string
	IsInstaxAvailable *bool
	Image             *multipart.FileHeader
}

func (h *MaidsHandler) resolveMaidPatch(c *gin.Context) (*maidPatch, error) {
	if isJSONRequest(c) {
		var req models.UpdateMaidRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			return nil, err
		}
		return &maidPatch{Name: req.Name, IsInstaxAvailable: req.IsInstaxAvailable}, nil
	}

	image, err := optionalFileHeader(c, "image")
	if err != nil {
		return nil, err
	}
	patch := &maidPatch{
		Name:  formValue(c, "name"),
		Image: image,
	}
	if raw := formValue(c, "is_instax_available"); raw != nil {
		parsed, err := strconv.ParseBool(*raw)
		if err != nil {
			return nil, err
		}
		patch.IsInstaxAvailable = &parsed
	}
	return patch, nil
}

// UpdateMaid godoc
// @Summary     Update a maid
// @Description Partial update. JSON bodies carry name and/or the instax flag; multipart bodies may additionally replace the image, in which case the previous blob is deleted after the new one is stored.
// @Tags        maids
// @Accept      json
// @Accept      multipart/form-data
// @Produce     json
// @Param       maid_id path string true "Maid ID"
// @Success     200 {object} models.APIResponse
// @Failure     400 {object} models.APIResponse
// @Failure     404 {object} models.APIResponse
// @Router      /maids/{maid_id} [patch]
func (h *MaidsHandler) UpdateMaid(c *gin.Context) {
	id := c.Param("maid_id")
	if err := h.ids.Validate(id); err != nil {
		c.JSON(http.StatusBadRequest, models.Fail("invalid maid id", err.Error()))
		return
	}

	patch, err := h.resolveMaidPatch(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.Fail("invalid request body", err.Error()))
		return
	}
	if patch.Name == nil && patch.IsInstaxAvailable == nil && patch.Image == nil {
		c.JSON(http.StatusBadRequest, models.Fail("at least one field is required", nil))
		return
	}

	maid, err := h.db.GetMaid(id)
	if err != nil {
		if isNotFound(err) {
			c.JSON(http.StatusNotFound, models.Fail("maid not found", nil))
			return
		}
		c.JSON(http.StatusInternalServerError, models.Fail("failed to get maid", err.Error()))
		return
	}

	changed := false
	if patch.Name != nil && *patch.Name != maid.Name {
		maid.Name = *patch.Name
		changed = true
	}
	if patch.IsInstaxAvailable != nil && *patch.IsInstaxAvailable != maid.IsInstaxAvailable {
		maid.IsInstaxAvailable = *patch.IsInstaxAvailable
		changed = true
	}

	oldImageKey := ""
	if patch.Image != nil {
		data, err := readFileHeader(patch.Image)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.Fail("failed to read image", err.Error()))
			return
		}
		newKey := h.store.BuildKey("maids", patch.Image.Filename)
		if err := h.store.Upload(newKey, data, patch.Image.Header.Get("Content-Type")); err != nil {
			c.JSON(http.StatusInternalServerError, models.Fail("failed to upload image", err.Error()))
			return
		}
		if maid.ImageKey.Valid {
			oldImageKey = maid.ImageKey.String
		}
		maid.ImageKey.String = newKey
		maid.ImageKey.Valid = true
		changed = true
	}

	if !changed {
		c.JSON(http.StatusOK, models.OK("No changes applied", mappers.MaidRecord(maid, h.store)))
		return
	}

	if err := h.db.UpdateMaid(maid); err != nil {
		c.JSON(http.StatusInternalServerError, models.Fail("failed to update maid", err.Error()))
		return
	}

	// The old blob goes away only after the record points at the new one.
	if oldImageKey != "" {
		if err := h.store.Delete(oldImageKey); err != nil {
			logrus.WithError(err).Warnf("failed to delete replaced maid image %s", oldImageKey)
		}
	}

	c.JSON(http.StatusOK, models.OK("maid updated", mappers.MaidRecord(maid, h.store)))
}

// ToggleActive godoc
// @Summary     Toggle a maid's visibility flag
// @Tags        maids
// @Accept      json
// @Produce     json
// @Param       maid_id path string true "Maid ID"
// @Param       request body models.ToggleMaidActiveRequest true "Visibility"
// @Success     200 {object} models.APIResponse
// @Failure     400 {object} models.APIResponse
// @Failure     404 {object} models.APIResponse
// @Router      /maids/{maid_id}/active [post]
func (h *MaidsHandler) ToggleActive(c *gin.Context) {
	id := c.Param("maid_id")
	if err := h.ids.Validate(id); err != nil {
		c.JSON(http.StatusBadRequest, models.Fail("invalid maid id", err.Error()))
		return
	}

	var req models.ToggleMaidActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.IsActive == nil {
		c.JSON(http.StatusBadRequest, models.Fail("is_active is required", nil))
		return
	}

	maid, err := h.db.GetMaid(id)
	if err != nil {
		if isNotFound(err) {
			c.JSON(http.StatusNotFound, models.Fail("maid not found", nil))
			return
		}
		c.JSON(http.StatusInternalServerError, models.Fail("failed to get maid", err.Error()))
		return
	}

	if err := h.db.SetMaidActive(id, *req.IsActive); err != nil {
		c.JSON(http.StatusInternalServerError, models.Fail("failed to toggle maid", err.Error()))
		return
	}

	maid.IsActive = *req.IsActive
	c.JSON(http.StatusOK, models.OK("maid visibility updated", mappers.MaidRecord(maid, h.store)))
}

// DeleteMaid godoc
// @Summary     Delete a maid
// @Description Deletes the record; user references are nulled by the schema and the image blob is deleted best-effort.
// @Tags        maids
// @Produce     json
// @Param       maid_id path string true "Maid ID"
// @Success     200 {object} models.APIResponse
// @Failure     400 {object} models.APIResponse
// @Failure     404 {object} models.APIResponse
// @Router      /maids/{maid_id} [delete]
func (h *MaidsHandler) DeleteMaid(c *gin.Context) {
	id := c.Param("maid_id")
	if err := h.ids.Validate(id); err != nil {
		c.JSON(http.StatusBadRequest, models.Fail("invalid maid id", err.Error()))
		return
	}

	maid, err := h.db.GetMaid(id)
	if err != nil {
		if isNotFound(err) {
			c.JSON(http.StatusNotFound, models.Fail("maid not found", nil))
			return
		}
		c.JSON(http.StatusInternalServerError, models.Fail("failed to get maid", err.Error()))
		return
	}

	if err := h.db.DeleteMaid(id); err != nil {
		c.JSON(http.StatusInternalServerError, models.Fail("failed to delete maid", err.Error()))
		return
	}

	// Best-effort: a failed blob delete does not roll back the record
	// delete.
	if maid.ImageKey.Valid && maid.ImageKey.String != "" {
		if err := h.store.Delete(maid.ImageKey.String); err != nil {
			logrus.WithError(err).Warnf("failed to delete maid image %s", maid.ImageKey.String)
		}
	}

	c.JSON(http.StatusOK, models.OK("maid deleted", nil))
}

// ListAssignedUsers godoc
// @Summary     List users assigned to a maid
// @Description Returns the maid's valid users with derived engagement state and each user's most recent instax id. status filters to serving, leaving, or both.
// @Tags        maids
// @Produce     json
// @Param       maid_id path string true "Maid ID"
// @Param       status query string false "serving | leaving | both (default both)"
// @Success     200 {object} models.APIResponse
// @Failure     400 {object} models.APIResponse
// @Failure     404 {object} models.APIResponse
// @Router      /maids/{maid_id}/users [get]
func (h *MaidsHandler) ListAssignedUsers(c *gin.Context) {
	id := c.Param("maid_id")
	if err := h.ids.Validate(id); err != nil {
		c.JSON(http.StatusBadRequest, models.Fail("invalid maid id", err.Error()))
		return
	}

	statusFilter := c.DefaultQuery("status", "both")
	if statusFilter != "both" && statusFilter != mappers.EngagementServing && statusFilter != mappers.EngagementLeaving {
		c.JSON(http.StatusBadRequest, models.Fail("status must be serving, leaving or both", nil))
		return
	}

	exists, err := h.db.MaidExists(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.Fail("failed to check maid", err.Error()))
		return
	}
	if !exists {
		c.JSON(http.StatusNotFound, models.Fail("maid not found", nil))
		return
	}

	users, err := h.db.ListUsersByMaid(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.Fail("failed to list users", err.Error()))
		return
	}

	userIDs := make([]string, len(users))
	for i := range users {
		userIDs[i] = users[i].ID
	}
	latest := map[string]string{}
	if len(userIDs) > 0 {
		latest, err = h.db.LatestInstaxIDsForUsers(userIDs)
		if err != nil {
			c.JSON(http.StatusInternalServerError, models.Fail("failed to resolve instax ids", err.Error()))
			return
		}
	}

	records := make([]models.AssignedUserRecord, 0, len(users))
	for i := range users {
		record := mappers.AssignedUserRecord(&users[i], latest[users[i].ID])
		if statusFilter != "both" && record.EngagementState != statusFilter {
			continue
		}
		records = append(records, record)
	}

	c.JSON(http.StatusOK, models.OK("assigned users retrieved", records))
}
