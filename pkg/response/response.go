package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/loadhive/service-shipment/pkg/domain"
)

// Envelope is the standard response body shape.
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

// PaginatedEnvelope wraps a page of items with paging metadata.
type PaginatedEnvelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
	Total   int64       `json:"total"`
	Page    int         `json:"page"`
	Limit   int         `json:"limit"`
}

// Success writes a 200 response with the given payload.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: data})
}

// Created writes a 201 response with the given payload.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Envelope{Success: true, Data: data})
}

// Paginated writes a 200 response with items and paging metadata.
func Paginated(c *gin.Context, items interface{}, total int64, page, limit int) {
	c.JSON(http.StatusOK, PaginatedEnvelope{
		Success: true,
		Data:    items,
		Total:   total,
		Page:    page,
		Limit:   limit,
	})
}

// BadRequest writes a 400 response with the given message.
func BadRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, Envelope{Success: false, Message: msg})
}

// Error maps a domain error to the appropriate HTTP status. Unrecognized
// errors become 500 without exposing their details.
func Error(c *gin.Context, err error) {
	switch domain.KindOf(err) {
	case domain.KindNotFound:
		c.JSON(http.StatusNotFound, Envelope{Success: false, Message: err.Error()})
	case domain.KindValidation:
		c.JSON(http.StatusBadRequest, Envelope{Success: false, Message: err.Error()})
	case domain.KindForbidden:
		c.JSON(http.StatusForbidden, Envelope{Success: false, Message: err.Error()})
	case domain.KindConflict:
		c.JSON(http.StatusConflict, Envelope{Success: false, Message: err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, Envelope{Success: false, Message: "internal server error"})
	}
}
