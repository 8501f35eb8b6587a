package handler

import (
	"net/http"
	"strconv"

	"backend/internal/auth"
	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/pagination"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"

	"backend/pkg/apperror"
)

type PermissionHandler struct {
	permService service.PermissionService
}

func NewPermissionHandler(permService service.PermissionService) *PermissionHandler {
	return &PermissionHandler{permService: permService}
}

func (h *PermissionHandler) RegisterRoutes(router *gin.RouterGroup, authn gin.HandlerFunc, gate *middleware.PermissionGate) {
	perms := router.Group("/permissions", authn)
	{
		perms.GET("", gate.Require(auth.PermPermissionsView), h.ListPermissions)
		perms.GET("/:id", gate.Require(auth.PermPermissionsView), h.GetPermission)
		perms.POST("", gate.Require(auth.PermPermissionsCreate), h.CreatePermission)
		perms.PUT("/:id", gate.Require(auth.PermPermissionsEdit), h.UpdatePermission)
		perms.DELETE("/:id", gate.Require(auth.PermPermissionsDelete), h.DeletePermission)
	}

	// Direct user grants live under /users/:id/permissions.
	grants := router.Group("/users/:id/permissions", authn)
	{
		grants.GET("", gate.Require(auth.PermPermissionsView), h.ListUserGrants)
		grants.POST("", gate.Require(auth.PermPermissionsEdit), h.GrantToUser)
		grants.DELETE("/:permissionId", gate.Require(auth.PermPermissionsEdit), h.RevokeFromUser)
	}
}

func (h *PermissionHandler) ListPermissions(c *gin.Context) {
	params := pagination.Parse(c)
	filter := service.PermissionFilter{
		Page:   params.Page,
		Limit:  params.Limit,
		Search: c.Query("search"),
	}

	perms, total, err := h.permService.ListPermissions(c.Request.Context(), filter)
	if err != nil {
		response.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{
		"permissions": perms,
		"meta":        params.Meta(total),
	}))
}

func (h *PermissionHandler) GetPermission(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	perm, err := h.permService.GetPermission(c.Request.Context(), id)
	if err != nil {
		response.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, perm))
}

func (h *PermissionHandler) CreatePermission(c *gin.Context) {
	var req service.CreatePermissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, apperror.BadRequest("Invalid request payload: "+err.Error()))
		return
	}

	perm, err := h.permService.CreatePermission(c.Request.Context(), middleware.CurrentUserID(c), req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, perm))
}

func (h *PermissionHandler) UpdatePermission(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	var req service.UpdatePermissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, apperror.BadRequest("Invalid request payload: "+err.Error()))
		return
	}

	perm, err := h.permService.UpdatePermission(c.Request.Context(), middleware.CurrentUserID(c), id, req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, perm))
}

func (h *PermissionHandler) DeletePermission(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	if err := h.permService.DeletePermission(c.Request.Context(), middleware.CurrentUserID(c), id); err != nil {
		response.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Permission deleted."}))
}

func (h *PermissionHandler) ListUserGrants(c *gin.Context) {
	perms, err := h.permService.ListUserGrants(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, perms))
}

func (h *PermissionHandler) GrantToUser(c *gin.Context) {
	var req struct {
		PermissionID uint `json:"permission_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, apperror.BadRequest("Invalid request payload: "+err.Error()))
		return
	}

	err := h.permService.GrantToUser(c.Request.Context(), middleware.CurrentUserID(c), c.Param("id"), req.PermissionID)
	if err != nil {
		response.Fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, gin.H{"message": "Permission granted."}))
}

func (h *PermissionHandler) RevokeFromUser(c *gin.Context) {
	permID, ok := uintParam(c, "permissionId")
	if !ok {
		return
	}

	err := h.permService.RevokeFromUser(c.Request.Context(), middleware.CurrentUserID(c), c.Param("id"), permID)
	if err != nil {
		response.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Permission revoked."}))
}

// uintParam parses a numeric path parameter, writing the error response
// itself so callers can simply return on !ok.
func uintParam(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		response.Fail(c, apperror.BadRequest("Invalid "+name+" parameter."))
		return 0, false
	}
	return uint(id), true
}
