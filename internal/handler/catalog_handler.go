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

// CatalogHandler exposes the three product catalogs: cakes, trays and
// rentable articles.
type CatalogHandler struct {
	catalogService service.CatalogService
}

func NewCatalogHandler(catalogService service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

func (h *CatalogHandler) RegisterRoutes(router *gin.RouterGroup, authn gin.HandlerFunc, gate *middleware.PermissionGate) {
	cakes := router.Group("/cakes", authn)
	{
		cakes.GET("", gate.Require(auth.PermCakesView), h.ListCakes)
		cakes.GET("/:id", gate.Require(auth.PermCakesView), h.GetCake)
		cakes.POST("", gate.Require(auth.PermCakesCreate), h.CreateCake)
		cakes.PUT("/:id", gate.Require(auth.PermCakesEdit), h.UpdateCake)
		cakes.DELETE("/:id", gate.Require(auth.PermCakesDelete), h.DeleteCake)
	}

	trays := router.Group("/trays", authn)
	{
		trays.GET("", gate.Require(auth.PermTraysView), h.ListTrays)
		trays.GET("/:id", gate.Require(auth.PermTraysView), h.GetTray)
		trays.POST("", gate.Require(auth.PermTraysCreate), h.CreateTray)
		trays.PUT("/:id", gate.Require(auth.PermTraysEdit), h.UpdateTray)
		trays.DELETE("/:id", gate.Require(auth.PermTraysDelete), h.DeleteTray)
	}

	articles := router.Group("/articles", authn)
	{
		articles.GET("", gate.Require(auth.PermArticlesView), h.ListArticles)
		articles.GET("/:id", gate.Require(auth.PermArticlesView), h.GetArticle)
		articles.POST("", gate.Require(auth.PermArticlesCreate), h.CreateArticle)
		articles.PUT("/:id", gate.Require(auth.PermArticlesEdit), h.UpdateArticle)
		articles.DELETE("/:id", gate.Require(auth.PermArticlesDelete), h.DeleteArticle)
	}
}

func catalogFilter(c *gin.Context) (service.CatalogFilter, pagination.Params) {
	params := pagination.Parse(c)
	return service.CatalogFilter{
		Page:   params.Page,
		Limit:  params.Limit,
		Search: c.Query("search"),
	}, params
}

// --- Cakes ---

func (h *CatalogHandler) ListCakes(c *gin.Context) {
	filter, params := catalogFilter(c)
	cakes, total, err := h.catalogService.ListCakes(c.Request.Context(), filter)
	if err != nil {
		response.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{
		"cakes": cakes, "meta": params.Meta(total),
	}))
}

func (h *CatalogHandler) GetCake(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	cake, err := h.catalogService.GetCake(c.Request.Context(), id)
	if err != nil {
		response.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, cake))
}

func (h *CatalogHandler) CreateCake(c *gin.Context) {
	var req service.CakeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, apperror.BadRequest("Invalid request payload: "+err.Error()))
		return
	}
	cake, err := h.catalogService.CreateCake(c.Request.Context(), req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, cake))
}

func (h *CatalogHandler) UpdateCake(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var req service.CakeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, apperror.BadRequest("Invalid request payload: "+err.Error()))
		return
	}
	cake, err := h.catalogService.UpdateCake(c.Request.Context(), id, req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, cake))
}

func (h *CatalogHandler) DeleteCake(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	if err := h.catalogService.DeleteCake(c.Request.Context(), id); err != nil {
		response.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Cake deleted."}))
}

// --- Trays ---

func (h *CatalogHandler) ListTrays(c *gin.Context) {
	filter, params := catalogFilter(c)
	trays, total, err := h.catalogService.ListTrays(c.Request.Context(), filter)
	if err != nil {
		response.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{
		"trays": trays, "meta": params.Meta(total),
	}))
}

func (h *CatalogHandler) GetTray(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	tray, err := h.catalogService.GetTray(c.Request.Context(), id)
	if err != nil {
		response.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, tray))
}

func (h *CatalogHandler) CreateTray(c *gin.Context) {
	var req service.TrayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, apperror.BadRequest("Invalid request payload: "+err.Error()))
		return
	}
	tray, err := h.catalogService.CreateTray(c.Request.Context(), req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, tray))
}

func (h *CatalogHandler) UpdateTray(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var req service.TrayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, apperror.BadRequest("Invalid request payload: "+err.Error()))
		return
	}
	tray, err := h.catalogService.UpdateTray(c.Request.Context(), id, req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, tray))
}

func (h *CatalogHandler) DeleteTray(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	if err := h.catalogService.DeleteTray(c.Request.Context(), id); err != nil {
		response.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Tray deleted."}))
}

// --- Rental articles ---

func (h *CatalogHandler) ListArticles(c *gin.Context) {
	filter, params := catalogFilter(c)
	articles, total, err := h.catalogService.ListArticles(c.Request.Context(), filter)
	if err != nil {
		response.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{
		"articles": articles, "meta": params.Meta(total),
	}))
}

func (h *CatalogHandler) GetArticle(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	article, err := h.catalogService.GetArticle(c.Request.Context(), id)
	if err != nil {
		response.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, article))
}

func (h *CatalogHandler) CreateArticle(c *gin.Context) {
	var req service.ArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, apperror.BadRequest("Invalid request payload: "+err.Error()))
		return
	}
	article, err := h.catalogService.CreateArticle(c.Request.Context(), req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, article))
}

func (h *CatalogHandler) UpdateArticle(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var req service.ArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, apperror.BadRequest("Invalid request payload: "+err.Error()))
		return
	}
	article, err := h.catalogService.UpdateArticle(c.Request.Context(), id, req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, article))
}

func (h *CatalogHandler) DeleteArticle(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	if err := h.catalogService.DeleteArticle(c.Request.Context(), id); err != nil {
		response.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Rental article deleted."}))
}
