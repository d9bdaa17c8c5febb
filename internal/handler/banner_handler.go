package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/loadhive/service-shipment/internal/application"
	"github.com/loadhive/service-shipment/pkg/auth"
	"github.com/loadhive/service-shipment/pkg/middleware"
	"github.com/loadhive/service-shipment/pkg/response"
)

// BannerHandler handles HTTP requests for promotional banners.
type BannerHandler struct {
	service *application.BannerService
}

// NewBannerHandler creates a new BannerHandler.
func NewBannerHandler(service *application.BannerService) *BannerHandler {
	return &BannerHandler{service: service}
}

// RegisterRoutes registers all banner routes on the given router group.
func (h *BannerHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)
	manageMW := middleware.RequireRole(auth.RoleAdmin, auth.RoleMarketing)

	banners := r.Group("/api/v1/banners")
	banners.Use(authMW)
	{
		banners.GET("", h.ListActiveBanners)
		banners.GET("/all", manageMW, h.ListBanners)
		banners.POST("", manageMW, h.CreateBanner)
		banners.PUT("/:id", manageMW, h.UpdateBanner)
		banners.DELETE("/:id", manageMW, h.DeleteBanner)
	}
}

// ListActiveBanners handles GET /api/v1/banners.
func (h *BannerHandler) ListActiveBanners(c *gin.Context) {
	result, err := h.service.ListActiveBanners(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// ListBanners handles GET /api/v1/banners/all, including inactive banners.
func (h *BannerHandler) ListBanners(c *gin.Context) {
	result, err := h.service.ListBanners(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// CreateBanner handles POST /api/v1/banners.
func (h *BannerHandler) CreateBanner(c *gin.Context) {
	var req application.BannerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.CreateBanner(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// UpdateBanner handles PUT /api/v1/banners/:id.
func (h *BannerHandler) UpdateBanner(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid banner ID")
		return
	}

	var req application.BannerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.UpdateBanner(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// DeleteBanner handles DELETE /api/v1/banners/:id.
func (h *BannerHandler) DeleteBanner(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid banner ID")
		return
	}

	if err := h.service.DeleteBanner(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"deleted": true})
}
