package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"maid-cafe-backend/internal/handlers"
	"maid-cafe-backend/internal/identifier"
	"maid-cafe-backend/internal/models"
)

func ordersRouter(store *fakeStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := handlers.NewOrdersHandler(store, store, store, identifier.UUIDStrategy{})

	router := gin.New()
	router.POST("/orders", h.CreateOrder)
	router.GET("/orders", h.ListOrders)
	router.GET("/orders/:order_id", h.GetOrder)
	router.PATCH("/orders/:order_id", h.UpdateOrder)
	router.GET("/users/:user_id/orders", h.ListOrdersByUser)
	return router
}

func TestCreateOrder_StartsPending(t *testing.T) {
	store := newFakeStore()
	userID := uuid.NewString()
	menuID := uuid.NewString()
	store.seedUser(models.User{ID: userID, IsValid: true})
	store.seedMenu(models.Menu{ID: menuID, Name: "Omurice", Stock: 3})
	router := ordersRouter(store)

	req, _ := http.NewRequest("POST", "/orders", jsonBody(t, models.CreateOrderRequest{UserID: userID, MenuID: menuID}))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "pending", dataMap(t, decode(t, w))["state"])
	require.Len(t, store.orders, 1)
}

func TestCreateOrder_UnknownUser(t *testing.T) {
	store := newFakeStore()
	menuID := uuid.NewString()
	store.seedMenu(models.Menu{ID: menuID, Name: "Omurice"})
	router := ordersRouter(store)

	req, _ := http.NewRequest("POST", "/orders", jsonBody(t, models.CreateOrderRequest{UserID: uuid.NewString(), MenuID: menuID}))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Empty(t, store.orders)
}

func TestCreateOrder_UnknownMenu(t *testing.T) {
	store := newFakeStore()
	userID := uuid.NewString()
	store.seedUser(models.User{ID: userID, IsValid: true})
	router := ordersRouter(store)

	req, _ := http.NewRequest("POST", "/orders", jsonBody(t, models.CreateOrderRequest{UserID: userID, MenuID: uuid.NewString()}))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Empty(t, store.orders)
}

func TestUpdateOrder_InvalidState(t *testing.T) {
	store := newFakeStore()
	id := uuid.NewString()
	store.seedOrder(models.Order{ID: id, State: models.OrderStatePending})
	router := ordersRouter(store)

	req, _ := http.NewRequest("PATCH", "/orders/"+id, jsonBody(t, models.UpdateOrderRequest{State: "cancelled"}))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, models.OrderStatePending, store.orders[id].State)
}

func TestUpdateOrder_Transition(t *testing.T) {
	store := newFakeStore()
	id := uuid.NewString()
	store.seedOrder(models.Order{ID: id, State: models.OrderStatePending})
	router := ordersRouter(store)

	req, _ := http.NewRequest("PATCH", "/orders/"+id, jsonBody(t, models.UpdateOrderRequest{State: models.OrderStatePreparing}))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.OrderStatePreparing, store.orders[id].State)
	assert.Equal(t, 1, store.orderUpdates)
}

func TestUpdateOrder_SameStateIsIdempotent(t *testing.T) {
	store := newFakeStore()
	id := uuid.NewString()
	store.seedOrder(models.Order{ID: id, State: models.OrderStateServed, UpdatedAt: fakeEpoch})
	router := ordersRouter(store)

	req, _ := http.NewRequest("PATCH", "/orders/"+id, jsonBody(t, models.UpdateOrderRequest{State: models.OrderStateServed}))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "No changes applied", decode(t, w).Message)
	assert.Zero(t, store.orderUpdates)
	assert.Equal(t, fakeEpoch, store.orders[id].UpdatedAt)
}

func TestListOrdersByUser(t *testing.T) {
	store := newFakeStore()
	userID := uuid.NewString()
	otherID := uuid.NewString()
	store.seedOrder(models.Order{ID: uuid.NewString(), UserID: userID, State: models.OrderStatePending})
	store.seedOrder(models.Order{ID: uuid.NewString(), UserID: userID, State: models.OrderStateServed})
	store.seedOrder(models.Order{ID: uuid.NewString(), UserID: otherID, State: models.OrderStatePending})
	router := ordersRouter(store)

	req, _ := http.NewRequest("GET", "/users/"+userID+"/orders", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	records := decode(t, w).Data.([]interface{})
	assert.Len(t, records, 2)
	for _, r := range records {
		assert.Equal(t, userID, r.(map[string]interface{})["user_id"])
	}
}

func TestGetOrder_NotFound(t *testing.T) {
	router := ordersRouter(newFakeStore())

	req, _ := http.NewRequest("GET", "/orders/"+uuid.NewString(), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
