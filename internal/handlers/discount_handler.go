package handlers

import (
	"net/http"
	"time"

	apierrors "github.com/Carter-75/SnowRemovel/internal/errors"
	"github.com/Carter-75/SnowRemovel/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// DiscountHandler serves the discount countdown clients poll.
type DiscountHandler struct {
	clock services.DiscountClock
	now   func() time.Time
}

// NewDiscountHandler creates a new DiscountHandler instance.
func NewDiscountHandler(clock services.DiscountClock) *DiscountHandler {
	return &DiscountHandler{
		clock: clock,
		now:   time.Now,
	}
}

// DiscountRequest represents the query parameters for the discount endpoint.
type DiscountRequest struct {
	Timestamp int64 `form:"timestamp" binding:"required,gt=0"`
}

// Status handles GET /api/v1/discount endpoint.
func (h *DiscountHandler) Status(c *gin.Context) {
	var req DiscountRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			apierrors.ValidationError(c, validationErrors)
			return
		}
		apierrors.BadRequest(c, "Invalid query parameters", nil)
		return
	}

	c.JSON(http.StatusOK, h.clock.Status(time.UnixMilli(req.Timestamp), h.now()))
}
