package handlers

import (
	"database/sql"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"maid-cafe-backend/internal/identifier"
	"maid-cafe-backend/internal/mappers"
	"maid-cafe-backend/internal/models"
	"maid-cafe-backend/internal/saga"
)

type MenusHandler struct {
	db    MenuStore
	store ObjectStore
	ids   identifier.Strategy
}

func NewMenusHandler(db MenuStore, store ObjectStore, ids identifier.Strategy) *MenusHandler {
	return &MenusHandler{db: db, store: store, ids: ids}
}

func logCompensation(entity string) func(saga.CompensationError) {
	return func(ce saga.CompensationError) {
		logrus.WithError(ce.Err).Warnf("%s saga: compensation %s failed", entity, ce.Step)
	}
}

// CreateMenu godoc
// @Summary     Create a menu item
// @Description Multipart only: name, non-negative stock and an image file are required. The record insert, blob upload and key write run as a saga; any failure unwinds the earlier steps.
// @Tags        menus
// @Accept      multipart/form-data
// @Produce     json
// @Param       name formData string true "Menu name"
// @Param       stock formData int true "Initial stock"
// @Param       description formData string false "Description"
// @Param       image formData file true "Menu image"
// @Success     201 {object} models.APIResponse
// @Failure     400 {object} models.APIResponse
// @Failure     500 {object} models.APIResponse
// @Router      /menus [post]
func (h *MenusHandler) CreateMenu(c *gin.Context) {
	filename, contentType, data, err := readImageFile(c, "image")
	if err != nil {
		c.JSON(http.StatusBadRequest, models.Fail("image file is required", err.Error()))
		return
	}

	name := formValue(c, "name")
	if name == nil || *name == "" {
		c.JSON(http.StatusBadRequest, models.Fail("name is required", nil))
		return
	}

	stockRaw := formValue(c, "stock")
	if stockRaw == nil {
		c.JSON(http.StatusBadRequest, models.Fail("stock is required", nil))
		return
	}
	stock, err := strconv.Atoi(*stockRaw)
	if err != nil || stock < 0 {
		c.JSON(http.StatusBadRequest, models.Fail("stock must be a non-negative integer", nil))
		return
	}

	description := sql.NullString{}
	if d := formValue(c, "description"); d != nil && strings.TrimSpace(*d) != "" {
		description = sql.NullString{String: *d, Valid: true}
	}

	id := h.ids.Generate()
	key := h.store.BuildKey("menus", filename)

	var menu *models.Menu
	err = saga.Execute([]saga.Step{
		{
			Name: "insert-record",
			Run: func() error {
				var err error
				menu, err = h.db.CreateMenu(id, *name, description, stock)
				return err
			},
			Compensate: func() error { return h.db.DeleteMenu(menu.ID) },
		},
		{
			Name:       "upload-image",
			Run:        func() error { return h.store.Upload(key, data, contentType) },
			Compensate: func() error { return h.store.Delete(key) },
		},
		{
			Name: "set-image-key",
			Run:  func() error { return h.db.SetMenuImageKey(menu.ID, key) },
		},
	}, logCompensation("menu-create"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.Fail("failed to create menu", err.Error()))
		return
	}

	menu.ImageKey = sql.NullString{String: key, Valid: true}
	c.JSON(http.StatusCreated, models.OK("menu created", mappers.MenuRecord(menu, h.store)))
}

type menuPatch struct {
	Name        *string
	Stock       *int
	Description *string
	Image       *multipart.FileHeader
}

func (p *menuPatch) empty() bool {
	return p.Name == nil && p.Stock == nil && p.Description == nil && p.Image == nil
}

func (h *MenusHandler) resolveMenuPatch(c *gin.Context) (*menuPatch, error) {
	if isJSONRequest(c) {
		var req models.UpdateMenuRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			return nil, err
		}
		return &menuPatch{Name: req.Name, Stock: req.Stock, Description: req.Description}, nil
	}

	image, err := optionalFileHeader(c, "image")
	if err != nil {
		return nil, err
	}
	patch := &menuPatch{
		Name:        formValue(c, "name"),
		Description: formValue(c, "description"),
		Image:       image,
	}
	if raw := formValue(c, "stock"); raw != nil {
		stock, err := strconv.Atoi(*raw)
		if err != nil {
			return nil, err
		}
		patch.Stock = &stock
	}
	return patch, nil
}

// UpdateMenu godoc
// @Summary     Update a menu item
// @Description Partial update via JSON or multipart: name, stock, description (empty string clears it) and image are all optional. A request resolving to no change is a no-op.
// @Tags        menus
// @Accept      json
// @Accept      multipart/form-data
// @Produce     json
// @Param       menu_id path string true "Menu ID"
// @Success     200 {object} models.APIResponse
// @Failure     400 {object} models.APIResponse
// @Failure     404 {object} models.APIResponse
// @Router      /menus/{menu_id} [patch]
func (h *MenusHandler) UpdateMenu(c *gin.Context) {
	id := c.Param("menu_id")
	if err := h.ids.Validate(id); err != nil {
		c.JSON(http.StatusBadRequest, models.Fail("invalid menu id", err.Error()))
		return
	}

	patch, err := h.resolveMenuPatch(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.Fail("invalid request body", err.Error()))
		return
	}
	if patch.empty() {
		c.JSON(http.StatusBadRequest, models.Fail("at least one field is required", nil))
		return
	}
	if patch.Stock != nil && *patch.Stock < 0 {
		c.JSON(http.StatusBadRequest, models.Fail("stock must be a non-negative integer", nil))
		return
	}

	menu, err := h.db.GetMenu(id)
	if err != nil {
		if isNotFound(err) {
			c.JSON(http.StatusNotFound, models.Fail("menu not found", nil))
			return
		}
		c.JSON(http.StatusInternalServerError, models.Fail("failed to get menu", err.Error()))
		return
	}

	changed := false
	if patch.Name != nil && *patch.Name != menu.Name {
		menu.Name = *patch.Name
		changed = true
	}
	if patch.Stock != nil && *patch.Stock != menu.Stock {
		menu.Stock = *patch.Stock
		changed = true
	}
	if patch.Description != nil {
		// Blank descriptions normalize to null.
		next := sql.NullString{}
		if strings.TrimSpace(*patch.Description) != "" {
			next = sql.NullString{String: *patch.Description, Valid: true}
		}
		if next != menu.Description {
			menu.Description = next
			changed = true
		}
	}

	oldImageKey := ""
	if patch.Image != nil {
		data, err := readFileHeader(patch.Image)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.Fail("failed to read image", err.Error()))
			return
		}
		newKey := h.store.BuildKey("menus", patch.Image.Filename)
		if err := h.store.Upload(newKey, data, patch.Image.Header.Get("Content-Type")); err != nil {
			c.JSON(http.StatusInternalServerError, models.Fail("failed to upload image", err.Error()))
			return
		}
		if menu.ImageKey.Valid {
			oldImageKey = menu.ImageKey.String
		}
		menu.ImageKey = sql.NullString{String: newKey, Valid: true}
		changed = true
	}

	if !changed {
		c.JSON(http.StatusOK, models.OK("No changes applied", mappers.MenuRecord(menu, h.store)))
		return
	}

	if err := h.db.UpdateMenu(menu); err != nil {
		c.JSON(http.StatusInternalServerError, models.Fail("failed to update menu", err.Error()))
		return
	}

	if oldImageKey != "" {
		if err := h.store.Delete(oldImageKey); err != nil {
			logrus.WithError(err).Warnf("failed to delete replaced menu image %s", oldImageKey)
		}
	}

	c.JSON(http.StatusOK, models.OK("menu updated", mappers.MenuRecord(menu, h.store)))
}

// GetMenu godoc
// @Summary     Get a menu item
// @Tags        menus
// @Produce     json
// @Param       menu_id path string true "Menu ID"
// @Success     200 {object} models.APIResponse
// @Failure     404 {object} models.APIResponse
// @Router      /menus/{menu_id} [get]
func (h *MenusHandler) GetMenu(c *gin.Context) {
	id := c.Param("menu_id")
	if err := h.ids.Validate(id); err != nil {
		c.JSON(http.StatusBadRequest, models.Fail("invalid menu id", err.Error()))
		return
	}

	menu, err := h.db.GetMenu(id)
	if err != nil {
		if isNotFound(err) {
			c.JSON(http.StatusNotFound, models.Fail("menu not found", nil))
			return
		}
		c.JSON(http.StatusInternalServerError, models.Fail("failed to get menu", err.Error()))
		return
	}

	c.JSON(http.StatusOK, models.OK("menu retrieved", mappers.MenuRecord(menu, h.store)))
}

// ListMenus godoc
// @Summary     List menu items
// @Tags        menus
// @Produce     json
// @Param       available_only query bool false "Only items with stock > 0"
// @Success     200 {object} models.APIResponse
// @Router      /menus [get]
func (h *MenusHandler) ListMenus(c *gin.Context) {
	availableOnly := false
	if raw, ok := c.GetQuery("available_only"); ok {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.Fail("available_only must be a boolean", nil))
			return
		}
		availableOnly = parsed
	}

	menus, err := h.db.ListMenus(availableOnly)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.Fail("failed to list menus", err.Error()))
		return
	}

	records := make([]models.MenuRecord, len(menus))
	for i := range menus {
		records[i] = mappers.MenuRecord(&menus[i], h.store)
	}

	c.JSON(http.StatusOK, models.OK("menus retrieved", records))
}

// DeleteMenu godoc
// @Summary     Delete a menu item
// @Description Deletes the record (orders cascade in storage), then best-effort deletes the image blob.
// @Tags        menus
// @Produce     json
// @Param       menu_id path string true "Menu ID"
// @Success     200 {object} models.APIResponse
// @Failure     404 {object} models.APIResponse
// @Router      /menus/{menu_id} [delete]
func (h *MenusHandler) DeleteMenu(c *gin.Context) {
	id := c.Param("menu_id")
	if err := h.ids.Validate(id); err != nil {
		c.JSON(http.StatusBadRequest, models.Fail("invalid menu id", err.Error()))
		return
	}

	menu, err := h.db.GetMenu(id)
	if err != nil {
		if isNotFound(err) {
			c.JSON(http.StatusNotFound, models.Fail("menu not found", nil))
			return
		}
		c.JSON(http.StatusInternalServerError, models.Fail("failed to get menu", err.Error()))
		return
	}

	if err := h.db.DeleteMenu(id); err != nil {
		c.JSON(http.StatusInternalServerError, models.Fail("failed to delete menu", err.Error()))
		return
	}

	if menu.ImageKey.Valid && menu.ImageKey.String != "" {
		if err := h.store.Delete(menu.ImageKey.String); err != nil {
			logrus.WithError(err).Warnf("failed to delete menu image %s", menu.ImageKey.String)
		}
	}

	c.JSON(http.StatusOK, models.OK("menu deleted", nil))
}
