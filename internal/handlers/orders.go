package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"maid-cafe-backend/internal/identifier"
	"maid-cafe-backend/internal/mappers"
	"maid-cafe-backend/internal/models"
)

type OrdersHandler struct {
	db    OrderStore
	users UserStore
	menus MenuStore
	ids   identifier.Strategy
}

func NewOrdersHandler(db OrderStore, users UserStore, menus MenuStore, ids identifier.Strategy) *OrdersHandler {
	return &OrdersHandler{db: db, users: users, menus: menus, ids: ids}
}

// CreateOrder godoc
// @Summary     Create an order
// @Description Creates an order in the pending state for an existing user and menu item.
// @Tags        orders
// @Accept      json
// @Produce     json
// @Param       request body models.CreateOrderRequest true "Order"
// @Success     201 {object} models.APIResponse
// @Failure     400 {object} models.APIResponse
// @Failure     404 {object} models.APIResponse
// @Router      /orders [post]
func (h *OrdersHandler) CreateOrder(c *gin.Context) {
	var req models.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.Fail("invalid request body", err.Error()))
		return
	}
	if err := h.ids.Validate(req.UserID); err != nil {
		c.JSON(http.StatusBadRequest, models.Fail("invalid user_id", err.Error()))
		return
	}
	if err := h.ids.Validate(req.MenuID); err != nil {
		c.JSON(http.StatusBadRequest, models.Fail("invalid menu_id", err.Error()))
		return
	}

	if _, err := h.users.GetUser(req.UserID); err != nil {
		if isNotFound(err) {
			c.JSON(http.StatusNotFound, models.Fail("user not found", nil))
			return
		}
		c.JSON(http.StatusInternalServerError, models.Fail("failed to get user", err.Error()))
		return
	}
	if _, err := h.menus.GetMenu(req.MenuID); err != nil {
		if isNotFound(err) {
			c.JSON(http.StatusNotFound, models.Fail("menu not found", nil))
			return
		}
		c.JSON(http.StatusInternalServerError, models.Fail("failed to get menu", err.Error()))
		return
	}

	id := h.ids.Generate()
	order, err := h.db.CreateOrder(id, req.UserID, req.MenuID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.Fail("failed to create order", err.Error()))
		return
	}

	c.JSON(http.StatusCreated, models.OK("order created", mappers.OrderRecord(order)))
}

// UpdateOrder godoc
// @Summary     Update an order's state
// @Description Writes the new state and refreshes updated_at. Submitting the current state short-circuits without touching the record.
// @Tags        orders
// @Accept      json
// @Produce     json
// @Param       order_id path string true "Order ID"
// @Param       request body models.UpdateOrderRequest true "New state"
// @Success     200 {object} models.APIResponse
// @Failure     400 {object} models.APIResponse
// @Failure     404 {object} models.APIResponse
// @Router      /orders/{order_id} [patch]
func (h *OrdersHandler) UpdateOrder(c *gin.Context) {
	id := c.Param("order_id")
	if err := h.ids.Validate(id); err != nil {
		c.JSON(http.StatusBadRequest, models.Fail("invalid order id", err.Error()))
		return
	}

	var req models.UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.Fail("invalid request body", err.Error()))
		return
	}
	if !models.IsValidOrderState(req.State) {
		c.JSON(http.StatusBadRequest, models.Fail("state must be pending, preparing or served", nil))
		return
	}

	order, err := h.db.GetOrder(id)
	if err != nil {
		if isNotFound(err) {
			c.JSON(http.StatusNotFound, models.Fail("order not found", nil))
			return
		}
		c.JSON(http.StatusInternalServerError, models.Fail("failed to get order", err.Error()))
		return
	}

	if order.State == req.State {
		c.JSON(http.StatusOK, models.OK("No changes applied", mappers.OrderRecord(order)))
		return
	}

	if err := h.db.UpdateOrderState(id, req.State); err != nil {
		c.JSON(http.StatusInternalServerError, models.Fail("failed to update order", err.Error()))
		return
	}

	order.State = req.State
	c.JSON(http.StatusOK, models.OK("order updated", mappers.OrderRecord(order)))
}

// GetOrder godoc
// @Summary     Get an order
// @Tags        orders
// @Produce     json
// @Param       order_id path string true "Order ID"
// @Success     200 {object} models.APIResponse
// @Failure     404 {object} models.APIResponse
// @Router      /orders/{order_id} [get]
func (h *OrdersHandler) GetOrder(c *gin.Context) {
	id := c.Param("order_id")
	if err := h.ids.Validate(id); err != nil {
		c.JSON(http.StatusBadRequest, models.Fail("invalid order id", err.Error()))
		return
	}

	order, err := h.db.GetOrder(id)
	if err != nil {
		if isNotFound(err) {
			c.JSON(http.StatusNotFound, models.Fail("order not found", nil))
			return
		}
		c.JSON(http.StatusInternalServerError, models.Fail("failed to get order", err.Error()))
		return
	}

	c.JSON(http.StatusOK, models.OK("order retrieved", mappers.OrderRecord(order)))
}

// ListOrders godoc
// @Summary     List orders, newest first
// @Tags        orders
// @Produce     json
// @Success     200 {object} models.APIResponse
// @Router      /orders [get]
func (h *OrdersHandler) ListOrders(c *gin.Context) {
	orders, err := h.db.ListOrders()
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.Fail("failed to list orders", err.Error()))
		return
	}
	c.JSON(http.StatusOK, models.OK("orders retrieved", orderRecords(orders)))
}

// ListOrdersByUser godoc
// @Summary     List a user's orders, newest first
// @Tags        orders
// @Produce     json
// @Param       user_id path string true "User ID"
// @Success     200 {object} models.APIResponse
// @Router      /users/{user_id}/orders [get]
func (h *OrdersHandler) ListOrdersByUser(c *gin.Context) {
	userID := c.Param("user_id")
	if err := h.ids.Validate(userID); err != nil {
		c.JSON(http.StatusBadRequest, models.Fail("invalid user id", err.Error()))
		return
	}

	orders, err := h.db.ListOrdersByUser(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.Fail("failed to list orders", err.Error()))
		return
	}
	c.JSON(http.StatusOK, models.OK("orders retrieved", orderRecords(orders)))
}

func orderRecords(orders []models.Order) []models.OrderRecord {
	records := make([]models.OrderRecord, len(orders))
	for i := range orders {
		records[i] = mappers.OrderRecord(&orders[i])
	}
	return records
}
