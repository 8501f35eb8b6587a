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

type GroupHandler struct {
	groupService service.GroupService
}

func NewGroupHandler(groupService service.GroupService) *GroupHandler {
	return &GroupHandler{groupService: groupService}
}

func (h *GroupHandler) RegisterRoutes(router *gin.RouterGroup, authn gin.HandlerFunc, gate *middleware.PermissionGate) {
	groups := router.Group("/groups", authn)
	{
		groups.GET("", gate.Require(auth.PermGroupsView), h.ListGroups)
		groups.GET("/:id", gate.Require(auth.PermGroupsView), h.GetGroup)
		groups.POST("", gate.Require(auth.PermGroupsCreate), h.CreateGroup)
		groups.PUT("/:id", gate.Require(auth.PermGroupsEdit), h.UpdateGroup)
		groups.DELETE("/:id", gate.Require(auth.PermGroupsDelete), h.DeleteGroup)

		groups.GET("/:id/permissions", gate.Require(auth.PermGroupsView), h.ListGroupPermissions)
		groups.POST("/:id/permissions", gate.Require(auth.PermGroupsEdit), h.AddGroupPermission)
		groups.DELETE("/:id/permissions/:permissionId", gate.Require(auth.PermGroupsEdit), h.RemoveGroupPermission)

		groups.GET("/:id/members", gate.Require(auth.PermGroupsView), h.ListMembers)
		groups.POST("/:id/members", gate.Require(auth.PermGroupsEdit), h.AddMember)
		groups.DELETE("/:id/members/:userId", gate.Require(auth.PermGroupsEdit), h.RemoveMember)
	}
}

func (h *GroupHandler) ListGroups(c *gin.Context) {
	params := pagination.Parse(c)
	filter := service.GroupFilter{
		Page:   params.Page,
		Limit:  params.Limit,
		Search: c.Query("search"),
	}

	groups, total, err := h.groupService.ListGroups(c.Request.Context(), filter)
	if err != nil {
		response.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{
		"groups": groups,
		"meta":   params.Meta(total),
	}))
}

func (h *GroupHandler) GetGroup(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	includePerms := c.DefaultQuery("include_permissions", "true") != "false"
	group, err := h.groupService.GetGroup(c.Request.Context(), id, includePerms)
	if err != nil {
		response.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, group))
}

func (h *GroupHandler) CreateGroup(c *gin.Context) {
	var req service.CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, apperror.BadRequest("Invalid request payload: "+err.Error()))
		return
	}

	group, err := h.groupService.CreateGroup(c.Request.Context(), middleware.CurrentUserID(c), req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, group))
}

func (h *GroupHandler) UpdateGroup(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	var req service.UpdateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, apperror.BadRequest("Invalid request payload: "+err.Error()))
		return
	}

	group, err := h.groupService.UpdateGroup(c.Request.Context(), middleware.CurrentUserID(c), id, req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, group))
}

func (h *GroupHandler) DeleteGroup(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	if err := h.groupService.DeleteGroup(c.Request.Context(), middleware.CurrentUserID(c), id); err != nil {
		response.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Group deleted."}))
}

func (h *GroupHandler) ListGroupPermissions(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	perms, err := h.groupService.ListGroupPermissions(c.Request.Context(), id)
	if err != nil {
		response.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, perms))
}

func (h *GroupHandler) AddGroupPermission(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		PermissionID uint `json:"permission_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, apperror.BadRequest("Invalid request payload: "+err.Error()))
		return
	}

	err := h.groupService.AddGroupPermission(c.Request.Context(), middleware.CurrentUserID(c), id, req.PermissionID)
	if err != nil {
		response.Fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, gin.H{"message": "Permission added to the group."}))
}

func (h *GroupHandler) RemoveGroupPermission(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	permID, ok := uintParam(c, "permissionId")
	if !ok {
		return
	}

	err := h.groupService.RemoveGroupPermission(c.Request.Context(), middleware.CurrentUserID(c), id, permID)
	if err != nil {
		response.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Permission removed from the group."}))
}

func (h *GroupHandler) ListMembers(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	members, err := h.groupService.ListMembers(c.Request.Context(), id)
	if err != nil {
		response.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, members))
}

func (h *GroupHandler) AddMember(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		UserID string `json:"user_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, apperror.BadRequest("Invalid request payload: "+err.Error()))
		return
	}

	err := h.groupService.AddMember(c.Request.Context(), middleware.CurrentUserID(c), id, req.UserID)
	if err != nil {
		response.Fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, gin.H{"message": "User added to the group."}))
}

func (h *GroupHandler) RemoveMember(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	err := h.groupService.RemoveMember(c.Request.Context(), middleware.CurrentUserID(c), id, c.Param("userId"))
	if err != nil {
		response.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "User removed from the group."}))
}
