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

type CustomerHandler struct {
	customerService service.CustomerService
}

func NewCustomerHandler(customerService service.CustomerService) *CustomerHandler {
	return &CustomerHandler{customerService: customerService}
}

func (h *CustomerHandler) RegisterRoutes(router *gin.RouterGroup, authn gin.HandlerFunc, gate *middleware.PermissionGate) {
	customers := router.Group("/customers", authn)
	{
		customers.GET("", gate.Require(auth.PermCustomersView), h.ListCustomers)
		customers.GET("/:id", gate.Require(auth.PermCustomersView), h.GetCustomer)
		customers.POST("", gate.Require(auth.PermCustomersCreate), h.CreateCustomer)
		customers.PUT("/:id", gate.Require(auth.PermCustomersEdit), h.UpdateCustomer)
		customers.DELETE("/:id", gate.Require(auth.PermCustomersDelete), h.DeleteCustomer)
	}
}

func (h *CustomerHandler) ListCustomers(c *gin.Context) {
	params := pagination.Parse(c)
	filter := service.CustomerFilter{
		Page:   params.Page,
		Limit:  params.Limit,
		Search: c.Query("search"),
	}

	customers, total, err := h.customerService.ListCustomers(c.Request.Context(), filter)
	if err != nil {
		response.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{
		"customers": customers,
		"meta":      params.Meta(total),
	}))
}

func (h *CustomerHandler) GetCustomer(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	customer, err := h.customerService.GetCustomer(c.Request.Context(), id)
	if err != nil {
		response.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, customer))
}

func (h *CustomerHandler) CreateCustomer(c *gin.Context) {
	var req service.CustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, apperror.BadRequest("Invalid request payload: "+err.Error()))
		return
	}

	customer, err := h.customerService.CreateCustomer(c.Request.Context(), req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, customer))
}

func (h *CustomerHandler) UpdateCustomer(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	var req service.CustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, apperror.BadRequest("Invalid request payload: "+err.Error()))
		return
	}

	customer, err := h.customerService.UpdateCustomer(c.Request.Context(), id, req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, customer))
}

func (h *CustomerHandler) DeleteCustomer(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	if err := h.customerService.DeleteCustomer(c.Request.Context(), id); err != nil {
		response.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Customer deleted."}))
}
