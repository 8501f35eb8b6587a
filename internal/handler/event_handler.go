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

type EventHandler struct {
	eventService service.EventService
}

func NewEventHandler(eventService service.EventService) *EventHandler {
	return &EventHandler{eventService: eventService}
}

func (h *EventHandler) RegisterRoutes(router *gin.RouterGroup, authn gin.HandlerFunc, gate *middleware.PermissionGate) {
	events := router.Group("/events", authn)
	{
		events.GET("", gate.Require(auth.PermEventsView), h.ListEvents)
		events.GET("/:id", gate.Require(auth.PermEventsView), h.GetEvent)
		events.POST("", gate.Require(auth.PermEventsCreate), h.CreateEvent)
		events.PUT("/:id", gate.Require(auth.PermEventsEdit), h.UpdateEvent)
		events.PATCH("/:id/status", gate.Require(auth.PermEventsEdit), h.UpdateEventStatus)
		events.DELETE("/:id", gate.Require(auth.PermEventsDelete), h.DeleteEvent)
	}
}

func (h *EventHandler) ListEvents(c *gin.Context) {
	params := pagination.Parse(c)
	filter := service.EventFilter{
		Page:   params.Page,
		Limit:  params.Limit,
		Status: c.Query("status"),
	}

	events, total, err := h.eventService.ListEvents(c.Request.Context(), filter)
	if err != nil {
		response.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{
		"events": events,
		"meta":   params.Meta(total),
	}))
}

func (h *EventHandler) GetEvent(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	event, err := h.eventService.GetEvent(c.Request.Context(), id)
	if err != nil {
		response.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, event))
}

func (h *EventHandler) CreateEvent(c *gin.Context) {
	var req service.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, apperror.BadRequest("Invalid request payload: "+err.Error()))
		return
	}

	event, err := h.eventService.CreateEvent(c.Request.Context(), middleware.CurrentUserID(c), req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, event))
}

func (h *EventHandler) UpdateEvent(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	var req service.UpdateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, apperror.BadRequest("Invalid request payload: "+err.Error()))
		return
	}

	event, err := h.eventService.UpdateEvent(c.Request.Context(), middleware.CurrentUserID(c), id, req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, event))
}

func (h *EventHandler) UpdateEventStatus(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	var req service.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, apperror.BadRequest("Invalid request payload: "+err.Error()))
		return
	}

	event, err := h.eventService.UpdateEventStatus(c.Request.Context(), middleware.CurrentUserID(c), id, req.Status)
	if err != nil {
		response.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, event))
}

func (h *EventHandler) DeleteEvent(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	if err := h.eventService.DeleteEvent(c.Request.Context(), middleware.CurrentUserID(c), id); err != nil {
		response.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Event deleted."}))
}
