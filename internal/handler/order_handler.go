package handler

import (
	"net/http"

	"backend/internal/auth"
	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/pagination"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"

	"backend/pkg/apperror"
)

type OrderHandler struct {
	orderService service.OrderService
}

func NewOrderHandler(orderService service.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

func (h *OrderHandler) RegisterRoutes(router *gin.RouterGroup, authn gin.HandlerFunc, gate *middleware.PermissionGate) {
	orders := router.Group("/orders", authn)
	{
		orders.GET("", gate.Require(auth.PermOrdersView), h.ListOrders)
		orders.GET("/:id", gate.Require(auth.PermOrdersView), h.GetOrder)
		orders.POST("", gate.Require(auth.PermOrdersCreate), h.CreateOrder)
		orders.PUT("/:id", gate.Require(auth.PermOrdersEdit), h.UpdateOrder)
		orders.PATCH("/:id/status", gate.Require(auth.PermOrdersEdit), h.UpdateOrderStatus)
		orders.DELETE("/:id", gate.Require(auth.PermOrdersDelete), h.DeleteOrder)
	}
}

// ListOrders handles GET /orders with pagination and an optional status filter
// @Summary      List orders
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Param        page    query     int     false  "Page number"
// @Param        limit   query     int     false  "Page size"
// @Param        status  query     string  false  "Status label filter (pending, confirmed, closed, cancelled)"
// @Success      200     {object}  response.Response
// @Router       /orders [get]
func (h *OrderHandler) ListOrders(c *gin.Context) {
	params := pagination.Parse(c)
	filter := service.OrderFilter{
		Page:   params.Page,
		Limit:  params.Limit,
		Status: c.Query("status"),
	}

	orders, total, err := h.orderService.ListOrders(c.Request.Context(), filter)
	if err != nil {
		response.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{
		"orders": orders,
		"meta":   params.Meta(total),
	}))
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	order, err := h.orderService.GetOrder(c.Request.Context(), id)
	if err != nil {
		response.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, order))
}

// CreateOrder handles POST /orders
// @Summary      Create an order
// @Description  Creates a pending order, pricing every line against the current catalog
// @Tags         orders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateOrderRequest  true  "Create Order Payload"
// @Success      201      {object}  response.Response
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /orders [post]
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req service.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, apperror.BadRequest("Invalid request payload: "+err.Error()))
		return
	}

	order, err := h.orderService.CreateOrder(c.Request.Context(), middleware.CurrentUserID(c), req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, order))
}

func (h *OrderHandler) UpdateOrder(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	var req service.UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, apperror.BadRequest("Invalid request payload: "+err.Error()))
		return
	}

	order, err := h.orderService.UpdateOrder(c.Request.Context(), middleware.CurrentUserID(c), id, req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, order))
}

// UpdateOrderStatus handles PATCH /orders/:id/status
// @Summary      Transition an order
// @Description  Moves the order along its lifecycle; illegal transitions return 409
// @Tags         orders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      int                          true  "Order ID"
// @Param        payload  body      service.UpdateStatusRequest  true  "Target status label"
// @Success      200      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /orders/{id}/status [patch]
func (h *OrderHandler) UpdateOrderStatus(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	var req service.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, apperror.BadRequest("Invalid request payload: "+err.Error()))
		return
	}

	order, err := h.orderService.UpdateOrderStatus(c.Request.Context(), middleware.CurrentUserID(c), id, req.Status)
	if err != nil {
		response.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, order))
}

func (h *OrderHandler) DeleteOrder(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	if err := h.orderService.DeleteOrder(c.Request.Context(), middleware.CurrentUserID(c), id); err != nil {
		response.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Order deleted."}))
}
