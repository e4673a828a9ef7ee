package handlers

import (
	"errors"
	"net/http"

	apierrors "github.com/Carter-75/SnowRemovel/internal/errors"
	"github.com/Carter-75/SnowRemovel/internal/logger"
	"github.com/Carter-75/SnowRemovel/internal/middleware"
	"github.com/Carter-75/SnowRemovel/internal/models"
	"github.com/Carter-75/SnowRemovel/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// EstimateHandler handles estimate requests.
type EstimateHandler struct {
	service services.EstimateService
}

// NewEstimateHandler creates a new EstimateHandler instance.
func NewEstimateHandler(service services.EstimateService) *EstimateHandler {
	return &EstimateHandler{
		service: service,
	}
}

// EstimateRequest represents the body of the estimate endpoint.
type EstimateRequest struct {
	Address       string `json:"address" binding:"required,notblank,max=200"`
	UrgentService bool   `json:"urgentService"`
}

// EstimateBody is the priced estimate as sent to clients.
type EstimateBody struct {
	JobType          models.JobType `json:"jobType"`
	SqFt             float64        `json:"sqft"`
	Rate             float64        `json:"rate"`
	BasePrice        float64        `json:"basePrice"`
	UpchargeAmount   float64        `json:"upchargeAmount"`
	Price            float64        `json:"price"`
	DriveMiles       float64        `json:"driveMiles"`
	DriveMinutes     float64        `json:"driveMinutes"`
	RoundTripMiles   float64        `json:"roundTripMiles"`
	RoundTripMinutes float64        `json:"roundTripMinutes"`
	DriveFee         float64        `json:"driveFee"`
	UpchargeApplied  bool           `json:"upchargeApplied"`
}

// EstimateResponse is an estimate plus its discount countdown.
// Timestamp is the discount anchor in milliseconds since the epoch.
type EstimateResponse struct {
	EstimateBody
	Timestamp           int64   `json:"timestamp"`
	DiscountPercent     float64 `json:"discountPercent"`
	DiscountSecondsLeft int64   `json:"discountSecondsLeft"`
	DiscountExpired     bool    `json:"discountExpired"`
}

// Create handles POST /api/v1/estimate endpoint.
func (h *EstimateHandler) Create(c *gin.Context) {
	log := middleware.GetLogger(c)

	var req EstimateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			apierrors.ValidationError(c, validationErrors)
			return
		}
		apierrors.BadRequest(c, "Invalid request body", nil)
		return
	}

	if log != nil {
		log.Info("Processing estimate request", map[string]interface{}{
			"address": logger.RedactAddress(req.Address),
			"urgent":  req.UrgentService,
		})
	}

	result, err := h.service.Estimate(c.Request.Context(), req.Address, req.UrgentService)
	if err != nil {
		respondEstimateError(c, err)
		return
	}

	c.JSON(http.StatusOK, EstimateResponse{
		EstimateBody:        newEstimateBody(result.Estimate),
		Timestamp:           result.Anchor.UnixMilli(),
		DiscountPercent:     result.Discount.Percent,
		DiscountSecondsLeft: result.Discount.SecondsLeft,
		DiscountExpired:     result.Discount.Expired,
	})
}

func newEstimateBody(e models.Estimate) EstimateBody {
	return EstimateBody{
		JobType:          e.JobType,
		SqFt:             e.AreaSqFt,
		Rate:             e.DynamicRate,
		BasePrice:        e.BasePrice,
		UpchargeAmount:   e.UpchargeAmount,
		Price:            e.Price,
		DriveMiles:       e.DriveMiles,
		DriveMinutes:     e.DriveMinutes,
		RoundTripMiles:   e.RoundTripMiles,
		RoundTripMinutes: e.RoundTripMinutes,
		DriveFee:         e.DriveFee,
		UpchargeApplied:  e.UpchargeApplied,
	}
}

// respondEstimateError maps estimation errors to API responses.
// Upstream outages are checked first since they also satisfy
// ErrEstimateNotFound.
func respondEstimateError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidAddress):
		apierrors.BadRequest(c, err.Error(), nil)
	case errors.Is(err, services.ErrUpstreamUnavailable):
		apierrors.ServiceUnavailable(c, "Address lookup is temporarily unavailable, please try again shortly", err)
	case errors.Is(err, services.ErrAddressNotFound):
		apierrors.NotFound(c, "We could not find that address. Please check it and try again")
	case errors.Is(err, services.ErrParcelNotFound):
		apierrors.NotFound(c, "We could not find a property boundary at that address")
	case errors.Is(err, services.ErrEstimateNotFound):
		apierrors.NotFound(c, "Unable to compute an estimate for that address")
	default:
		apierrors.InternalServerError(c, "Failed to compute estimate", err)
	}
}
