package handlers

import (
	"net/http"
	"time"

	apierrors "github.com/Carter-75/SnowRemovel/internal/errors"
	"github.com/Carter-75/SnowRemovel/internal/logger"
	"github.com/Carter-75/SnowRemovel/internal/middleware"
	"github.com/Carter-75/SnowRemovel/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// CheckoutHandler handles checkout pricing requests.
type CheckoutHandler struct {
	service services.CheckoutService
}

// NewCheckoutHandler creates a new CheckoutHandler instance.
func NewCheckoutHandler(service services.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{
		service: service,
	}
}

// CheckoutRequest represents the body of the checkout quote endpoint.
// EstimateTimestamp is the estimate's timestamp in epoch milliseconds.
type CheckoutRequest struct {
	Name              string `json:"name" binding:"required,notblank,max=120"`
	Email             string `json:"email" binding:"omitempty,email"`
	Address           string `json:"address" binding:"required,notblank,max=200"`
	Timeframe         string `json:"timeframe" binding:"max=120"`
	UrgentService     bool   `json:"urgentService"`
	EstimateTimestamp int64  `json:"estimateTimestamp" binding:"gte=0"`
}

// CheckoutQuoteResponse is the amount to charge and the payment metadata.
type CheckoutQuoteResponse struct {
	Estimate        EstimateBody      `json:"estimate"`
	DiscountPercent float64           `json:"discountPercent"`
	DiscountAmount  float64           `json:"discountAmount"`
	Total           float64           `json:"total"`
	AmountCents     int64             `json:"amountCents"`
	Currency        string            `json:"currency"`
	Description     string            `json:"description"`
	Metadata        map[string]string `json:"metadata"`
}

// Quote handles POST /api/v1/checkout/quote endpoint.
func (h *CheckoutHandler) Quote(c *gin.Context) {
	log := middleware.GetLogger(c)

	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			apierrors.ValidationError(c, validationErrors)
			return
		}
		apierrors.BadRequest(c, "Invalid request body", nil)
		return
	}

	if log != nil {
		log.Info("Processing checkout quote request", map[string]interface{}{
			"address":            logger.RedactAddress(req.Address),
			"urgent":             req.UrgentService,
			"estimate_timestamp": req.EstimateTimestamp,
		})
	}

	serviceReq := services.CheckoutRequest{
		Name:          req.Name,
		Email:         req.Email,
		Address:       req.Address,
		Timeframe:     req.Timeframe,
		UrgentService: req.UrgentService,
	}
	if req.EstimateTimestamp > 0 {
		serviceReq.EstimateTimestamp = time.UnixMilli(req.EstimateTimestamp)
	}

	quote, err := h.service.Quote(c.Request.Context(), serviceReq)
	if err != nil {
		respondEstimateError(c, err)
		return
	}

	c.JSON(http.StatusOK, CheckoutQuoteResponse{
		Estimate:        newEstimateBody(quote.Estimate),
		DiscountPercent: quote.DiscountPercent,
		DiscountAmount:  quote.DiscountAmount,
		Total:           quote.Total,
		AmountCents:     quote.AmountCents,
		Currency:        quote.Currency,
		Description:     quote.Description,
		Metadata:        quote.Metadata,
	})
}
