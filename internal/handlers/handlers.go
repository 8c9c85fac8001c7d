package handlers

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"maid-cafe-backend/internal/models"
	"maid-cafe-backend/internal/validation"
)

// Store interfaces are satisfied by *supabase.DatabaseClient; handlers
// depend on them so tests can substitute fakes.

type MaidStore interface {
	CreateMaid(id, name string, isInstaxAvailable bool) (*models.Maid, error)
	GetMaid(id string) (*models.Maid, error)
	MaidExists(id string) (bool, error)
	ListMaids(page, perPage int, isActive *bool) ([]models.Maid, error)
	UpdateMaid(m *models.Maid) error
	SetMaidActive(id string, isActive bool) error
	DeleteMaid(id string) error
	ListUsersByMaid(maidID string) ([]models.User, error)
	LatestInstaxIDsForUsers(userIDs []string) (map[string]string, error)
}

type MenuStore interface {
	CreateMenu(id, name string, description sql.NullString, stock int) (*models.Menu, error)
	SetMenuImageKey(id, imageKey string) error
	GetMenu(id string) (*models.Menu, error)
	ListMenus(availableOnly bool) ([]models.Menu, error)
	UpdateMenu(m *models.Menu) error
	DeleteMenu(id string) error
}

type UserStore interface {
	UpsertUser(id string, seatID sql.NullInt64, maidID string, status sql.NullString) (*models.User, error)
	GetUser(id string) (*models.User, error)
	ListUsers() ([]models.User, error)
	GetUserBySeat(seatID int64) (*models.User, error)
	UpdateUser(u *models.User) error
}

type OrderStore interface {
	CreateOrder(id, userID, menuID string) (*models.Order, error)
	GetOrder(id string) (*models.Order, error)
	ListOrders() ([]models.Order, error)
	ListOrdersByUser(userID string) ([]models.Order, error)
	UpdateOrderState(id, state string) error
}

type InstaxStore interface {
	CreateInstax(id, userID, maidID, imageKey string) (*models.Instax, error)
	GetInstax(id string) (*models.Instax, error)
	GetLatestInstaxByUser(userID string) (*models.Instax, error)
	SetInstaxImageKey(id, imageKey string) error
	CreateInstaxHistory(id, instaxID, imageKey string) (*models.InstaxHistory, error)
	GetInstaxHistory(id string) (*models.InstaxHistory, error)
	ListInstaxHistoryByUser(userID string) ([]models.InstaxHistory, error)
	DeleteInstaxHistory(id string) error
}

// ObjectStore is the blob-storage contract, satisfied by
// *supabase.StorageClient.
type ObjectStore interface {
	BuildKey(prefix, filename string) string
	Upload(key string, data []byte, contentType string) error
	Delete(key string) error
	PublicURL(key string) string
}

const maxUploadSize = 32 << 20

func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// failReference writes the response for a failed maid-reference check
// and reports whether the request is finished. A nil error passes.
func failReference(c *gin.Context, err error) bool {
	if err == nil {
		return false
	}
	var refErr *validation.ReferenceError
	if errors.As(err, &refErr) {
		c.JSON(http.StatusBadRequest, models.Fail(refErr.Error(), gin.H{"field": refErr.Field}))
		return true
	}
	c.JSON(http.StatusInternalServerError, models.Fail("failed to validate reference", err.Error()))
	return true
}

func isJSONRequest(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), "application/json")
}

// parsePagination validates page / per_page query parameters. per_page
// is capped at 100.
func parsePagination(c *gin.Context) (page, perPage int, err error) {
	page, err = strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		return 0, 0, fmt.Errorf("page must be a positive integer")
	}
	perPage, err = strconv.Atoi(c.DefaultQuery("per_page", "20"))
	if err != nil || perPage < 1 || perPage > 100 {
		return 0, 0, fmt.Errorf("per_page must be between 1 and 100")
	}
	return page, perPage, nil
}

// readImageFile pulls the named file out of a multipart form and reads
// it fully into memory.
func readImageFile(c *gin.Context, field string) (filename, contentType string, data []byte, err error) {
	if err := c.Request.ParseMultipartForm(maxUploadSize); err != nil {
		return "", "", nil, fmt.Errorf("failed to parse multipart form: %w", err)
	}

	header, err := fileHeader(c.Request.MultipartForm, field)
	if err != nil {
		return "", "", nil, err
	}

	f, err := header.Open()
	if err != nil {
		return "", "", nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer f.Close()

	data, err = io.ReadAll(f)
	if err != nil {
		return "", "", nil, fmt.Errorf("failed to read uploaded file: %w", err)
	}

	return header.Filename, header.Header.Get("Content-Type"), data, nil
}

func fileHeader(form *multipart.Form, field string) (*multipart.FileHeader, error) {
	if form == nil || len(form.File[field]) == 0 {
		return nil, fmt.Errorf("file field %q is required", field)
	}
	return form.File[field][0], nil
}

// optionalFileHeader is readImageFile's counterpart for update paths
// where the image is one optional field among several.
func optionalFileHeader(c *gin.Context, field string) (*multipart.FileHeader, error) {
	if err := c.Request.ParseMultipartForm(maxUploadSize); err != nil {
		return nil, fmt.Errorf("failed to parse multipart form: %w", err)
	}
	form := c.Request.MultipartForm
	if form == nil || len(form.File[field]) == 0 {
		return nil, nil
	}
	return form.File[field][0], nil
}

func readFileHeader(header *multipart.FileHeader) ([]byte, error) {
	f, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read uploaded file: %w", err)
	}
	return data, nil
}

func formValue(c *gin.Context, field string) *string {
	form := c.Request.MultipartForm
	if form == nil {
		return nil
	}
	if values, ok := form.Value[field]; ok && len(values) > 0 {
		return &values[0]
	}
	return nil
}
