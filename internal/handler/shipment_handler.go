package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/loadhive/service-shipment/internal/application"
	"github.com/loadhive/service-shipment/pkg/auth"
	"github.com/loadhive/service-shipment/pkg/middleware"
	"github.com/loadhive/service-shipment/pkg/response"
)

// ShipmentHandler handles HTTP requests for shipment operations.
type ShipmentHandler struct {
	service *application.ShipmentService
}

// NewShipmentHandler creates a new ShipmentHandler.
func NewShipmentHandler(service *application.ShipmentService) *ShipmentHandler {
	return &ShipmentHandler{service: service}
}

// RegisterRoutes registers all shipment routes on the given router group.
func (h *ShipmentHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)

	quotes := r.Group("/api/v1/quotes")
	quotes.Use(authMW)
	{
		quotes.POST("", h.EstimateQuote)
	}

	shipments := r.Group("/api/v1/shipments")
	shipments.Use(authMW)
	{
		shipments.POST("", h.CreateShipment)
		shipments.GET("", h.ListShipments)
		shipments.GET("/:id", h.GetShipment)
		shipments.POST("/:id/cancel", h.CancelShipment)
	}

	admin := r.Group("/api/v1/admin/shipments")
	admin.Use(authMW, middleware.RequireRole(auth.RoleAdmin))
	{
		admin.GET("", h.ListAllShipments)
		admin.GET("/stats", h.GetStats)
	}
}

// EstimateQuote handles POST /api/v1/quotes. It prices the form inputs
// without creating a shipment.
func (h *ShipmentHandler) EstimateQuote(c *gin.Context) {
	var req application.QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.EstimateQuote(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// CreateShipment handles POST /api/v1/shipments.
func (h *ShipmentHandler) CreateShipment(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req application.CreateShipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.CreateShipment(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// ListShipments handles GET /api/v1/shipments. Callers see the
// shipments they created.
func (h *ShipmentHandler) ListShipments(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	page, limit := parsePagination(c)

	result, err := h.service.GetCreatorShipments(c.Request.Context(), userID, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, result.Items, result.Total, result.Page, result.Limit)
}

// GetShipment handles GET /api/v1/shipments/:id.
func (h *ShipmentHandler) GetShipment(c *gin.Context) {
	shipmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid shipment ID")
		return
	}

	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	role, _ := middleware.GetUserRole(c)

	result, err := h.service.GetShipment(c.Request.Context(), shipmentID, userID, role == auth.RoleAdmin)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// CancelShipment handles POST /api/v1/shipments/:id/cancel.
func (h *ShipmentHandler) CancelShipment(c *gin.Context) {
	shipmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid shipment ID")
		return
	}

	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	role, _ := middleware.GetUserRole(c)

	var body struct {
		Reason string `json:"reason"`
	}
	_ = c.ShouldBindJSON(&body)

	result, err := h.service.CancelShipment(c.Request.Context(), shipmentID, userID, role == auth.RoleAdmin, body.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// ListAllShipments handles GET /api/v1/admin/shipments.
func (h *ShipmentHandler) ListAllShipments(c *gin.Context) {
	page, limit := parsePagination(c)

	items, total, err := h.service.ListAllShipments(c.Request.Context(), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, items, total, page, limit)
}

// GetStats handles GET /api/v1/admin/shipments/stats.
func (h *ShipmentHandler) GetStats(c *gin.Context) {
	result, err := h.service.GetShipmentStats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// parsePagination extracts page and limit query parameters with defaults.
func parsePagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	return page, limit
}
