package handlers_test

import (
	"database/sql"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"maid-cafe-backend/internal/handlers"
	"maid-cafe-backend/internal/identifier"
	"maid-cafe-backend/internal/models"
)

func menusRouter(store *fakeStore, objects *fakeObjects) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := handlers.NewMenusHandler(store, objects, identifier.UUIDStrategy{})

	router := gin.New()
	router.POST("/menus", h.CreateMenu)
	router.GET("/menus", h.ListMenus)
	router.GET("/menus/:menu_id", h.GetMenu)
	router.PATCH("/menus/:menu_id", h.UpdateMenu)
	router.DELETE("/menus/:menu_id", h.DeleteMenu)
	return router
}

func TestCreateMenu(t *testing.T) {
	store := newFakeStore()
	objects := newFakeObjects()
	router := menusRouter(store, objects)

	body, contentType := multipartBody(t, map[string]string{
		"name":        "Omurice",
		"stock":       "12",
		"description": "Ketchup heart on top",
	}, "image", "omurice.jpg", []byte("jpeg-bytes"))
	req, _ := http.NewRequest("POST", "/menus", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	data := dataMap(t, decode(t, w))
	assert.Equal(t, "Omurice", data["name"])
	assert.Equal(t, float64(12), data["stock"])
	assert.True(t, strings.HasPrefix(data["image_url"].(string), "https://cdn.example/menus/"))

	require.Len(t, store.menus, 1)
	for _, m := range store.menus {
		assert.True(t, m.ImageKey.Valid)
		assert.Contains(t, objects.uploads, m.ImageKey.String)
	}
}

func TestCreateMenu_MissingImage(t *testing.T) {
	store := newFakeStore()
	router := menusRouter(store, newFakeObjects())

	body, contentType := multipartBody(t, map[string]string{"name": "Omurice", "stock": "12"}, "", "", nil)
	req, _ := http.NewRequest("POST", "/menus", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, store.menus)
}

func TestCreateMenu_NegativeStock(t *testing.T) {
	store := newFakeStore()
	router := menusRouter(store, newFakeObjects())

	body, contentType := multipartBody(t, map[string]string{"name": "Omurice", "stock": "-1"}, "image", "omurice.jpg", []byte("jpeg-bytes"))
	req, _ := http.NewRequest("POST", "/menus", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, store.menus)
}

func TestCreateMenu_UploadFailureRollsBackRecord(t *testing.T) {
	store := newFakeStore()
	objects := newFakeObjects()
	objects.uploadErr = errors.New("storage down")
	router := menusRouter(store, objects)

	body, contentType := multipartBody(t, map[string]string{"name": "Omurice", "stock": "12"}, "image", "omurice.jpg", []byte("jpeg-bytes"))
	req, _ := http.NewRequest("POST", "/menus", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Empty(t, store.menus)
	assert.Empty(t, objects.uploads)
}

func TestCreateMenu_KeyWriteFailureRollsBackAll(t *testing.T) {
	store := newFakeStore()
	store.failSetMenuKey = errors.New("write failed")
	objects := newFakeObjects()
	router := menusRouter(store, objects)

	body, contentType := multipartBody(t, map[string]string{"name": "Omurice", "stock": "12"}, "image", "omurice.jpg", []byte("jpeg-bytes"))
	req, _ := http.NewRequest("POST", "/menus", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Empty(t, store.menus)
	assert.Empty(t, objects.uploads)
	assert.Len(t, objects.deleted, 1)
}

func TestUpdateMenu_StockOnlyKeepsImage(t *testing.T) {
	store := newFakeStore()
	id := uuid.NewString()
	store.seedMenu(models.Menu{
		ID:       id,
		Name:     "Omurice",
		Stock:    12,
		ImageKey: sql.NullString{String: "menus/omurice.jpg", Valid: true},
	})
	router := menusRouter(store, newFakeObjects())

	stock := 3
	req, _ := http.NewRequest("PATCH", "/menus/"+id, jsonBody(t, models.UpdateMenuRequest{Stock: &stock}))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 3, store.menus[id].Stock)
	assert.Equal(t, "menus/omurice.jpg", store.menus[id].ImageKey.String)
	assert.Equal(t, 1, store.menuUpdates)
}

func TestUpdateMenu_NoChange(t *testing.T) {
	store := newFakeStore()
	id := uuid.NewString()
	store.seedMenu(models.Menu{ID: id, Name: "Omurice", Stock: 12, UpdatedAt: fakeEpoch})
	router := menusRouter(store, newFakeObjects())

	stock := 12
	req, _ := http.NewRequest("PATCH", "/menus/"+id, jsonBody(t, models.UpdateMenuRequest{Stock: &stock}))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "No changes applied", decode(t, w).Message)
	assert.Zero(t, store.menuUpdates)
	assert.Equal(t, fakeEpoch, store.menus[id].UpdatedAt)
}

func TestUpdateMenu_BlankDescriptionClears(t *testing.T) {
	store := newFakeStore()
	id := uuid.NewString()
	store.seedMenu(models.Menu{
		ID:          id,
		Name:        "Omurice",
		Description: sql.NullString{String: "Ketchup heart on top", Valid: true},
	})
	router := menusRouter(store, newFakeObjects())

	description := "   "
	req, _ := http.NewRequest("PATCH", "/menus/"+id, jsonBody(t, models.UpdateMenuRequest{Description: &description}))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.False(t, store.menus[id].Description.Valid)
}

func TestListMenus_AvailableOnly(t *testing.T) {
	store := newFakeStore()
	inStock := uuid.NewString()
	store.seedMenu(models.Menu{ID: inStock, Name: "Omurice", Stock: 3})
	store.seedMenu(models.Menu{ID: uuid.NewString(), Name: "Parfait", Stock: 0})
	router := menusRouter(store, newFakeObjects())

	req, _ := http.NewRequest("GET", "/menus?available_only=true", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	records := decode(t, w).Data.([]interface{})
	require.Len(t, records, 1)
	assert.Equal(t, inStock, records[0].(map[string]interface{})["id"])
}

func TestDeleteMenu_RemovesBlob(t *testing.T) {
	store := newFakeStore()
	objects := newFakeObjects()
	id := uuid.NewString()
	store.seedMenu(models.Menu{
		ID:       id,
		Name:     "Omurice",
		ImageKey: sql.NullString{String: "menus/omurice.jpg", Valid: true},
	})
	router := menusRouter(store, objects)

	req, _ := http.NewRequest("DELETE", "/menus/"+id, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, store.menus, id)
	assert.Contains(t, objects.deleted, "menus/omurice.jpg")
}

func TestGetMenu_NotFound(t *testing.T) {
	router := menusRouter(newFakeStore(), newFakeObjects())

	req, _ := http.NewRequest("GET", "/menus/"+uuid.NewString(), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
