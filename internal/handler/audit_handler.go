package handler

import (
	"net/http"

	"backend/internal/auth"
	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/pagination"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type AuditHandler struct {
	auditService service.AuditService
}

func NewAuditHandler(auditService service.AuditService) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

func (h *AuditHandler) RegisterRoutes(router *gin.RouterGroup, authn gin.HandlerFunc, gate *middleware.PermissionGate) {
	router.GET("/audit-logs", authn, gate.Require(auth.PermAuditView), h.ListAuditLogs)
}

// ListAuditLogs handles GET /audit-logs with pagination and an optional
// action filter (e.g. ?action=ORDER_STATUS_CHANGE).
func (h *AuditHandler) ListAuditLogs(c *gin.Context) {
	params := pagination.Parse(c)

	logs, total, err := h.auditService.GetAuditLogs(c.Request.Context(), params.Page, params.Limit, c.Query("action"))
	if err != nil {
		response.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{
		"logs": logs,
		"meta": params.Meta(total),
	}))
}
