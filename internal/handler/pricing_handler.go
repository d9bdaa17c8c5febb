package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/loadhive/service-shipment/internal/application"
	"github.com/loadhive/service-shipment/pkg/auth"
	"github.com/loadhive/service-shipment/pkg/middleware"
	"github.com/loadhive/service-shipment/pkg/response"
)

// PricingHandler handles HTTP requests for rate-table, extra-service and
// vehicle-product configuration.
type PricingHandler struct {
	service *application.PricingConfigService
}

// NewPricingHandler creates a new PricingHandler.
func NewPricingHandler(service *application.PricingConfigService) *PricingHandler {
	return &PricingHandler{service: service}
}

// RegisterRoutes registers all pricing-configuration routes on the given
// router group. Reads are open to any authenticated user; writes are
// admin only.
func (h *PricingHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)
	adminMW := middleware.RequireRole(auth.RoleAdmin)

	rates := r.Group("/api/v1/rates")
	rates.Use(authMW)
	{
		rates.GET("", h.ListRegionRates)
		rates.GET("/:id", h.GetRegionRate)
		rates.POST("", adminMW, h.CreateRegionRate)
		rates.PUT("/:id", adminMW, h.UpdateRegionRate)
		rates.DELETE("/:id", adminMW, h.DeleteRegionRate)
	}

	extras := r.Group("/api/v1/extra-services")
	extras.Use(authMW)
	{
		extras.GET("", h.ListExtraServices)
		extras.POST("", adminMW, h.CreateExtraService)
		extras.PUT("/:id", adminMW, h.UpdateExtraService)
		extras.DELETE("/:id", adminMW, h.DeleteExtraService)
	}

	vehicles := r.Group("/api/v1/vehicle-products")
	vehicles.Use(authMW)
	{
		vehicles.GET("", h.ListVehicleProducts)
		vehicles.POST("", adminMW, h.CreateVehicleProduct)
	}
}

// --- Region rates ---

// ListRegionRates handles GET /api/v1/rates.
func (h *PricingHandler) ListRegionRates(c *gin.Context) {
	result, err := h.service.ListRegionRates(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// GetRegionRate handles GET /api/v1/rates/:id.
func (h *PricingHandler) GetRegionRate(c *gin.Context) {
	result, err := h.service.GetRegionRate(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// CreateRegionRate handles POST /api/v1/rates.
func (h *PricingHandler) CreateRegionRate(c *gin.Context) {
	var req application.RegionRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.CreateRegionRate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// UpdateRegionRate handles PUT /api/v1/rates/:id.
func (h *PricingHandler) UpdateRegionRate(c *gin.Context) {
	var req application.RegionRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.UpdateRegionRate(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// DeleteRegionRate handles DELETE /api/v1/rates/:id.
func (h *PricingHandler) DeleteRegionRate(c *gin.Context) {
	if err := h.service.DeleteRegionRate(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"deleted": true})
}

// --- Extra services ---

// ListExtraServices handles GET /api/v1/extra-services.
func (h *PricingHandler) ListExtraServices(c *gin.Context) {
	result, err := h.service.ListExtraServices(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// CreateExtraService handles POST /api/v1/extra-services.
func (h *PricingHandler) CreateExtraService(c *gin.Context) {
	var req application.ExtraServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.CreateExtraService(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// UpdateExtraService handles PUT /api/v1/extra-services/:id.
func (h *PricingHandler) UpdateExtraService(c *gin.Context) {
	var req application.ExtraServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.UpdateExtraService(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// DeleteExtraService handles DELETE /api/v1/extra-services/:id.
func (h *PricingHandler) DeleteExtraService(c *gin.Context) {
	if err := h.service.DeleteExtraService(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"deleted": true})
}

// --- Vehicle products ---

// ListVehicleProducts handles GET /api/v1/vehicle-products.
func (h *PricingHandler) ListVehicleProducts(c *gin.Context) {
	result, err := h.service.ListVehicleProducts(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// CreateVehicleProduct handles POST /api/v1/vehicle-products.
func (h *PricingHandler) CreateVehicleProduct(c *gin.Context) {
	var req application.VehicleProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.CreateVehicleProduct(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}
