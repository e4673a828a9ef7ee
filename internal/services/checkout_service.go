package services

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/Carter-75/SnowRemovel/internal/logger"
	"github.com/Carter-75/SnowRemovel/internal/models"
	"github.com/Carter-75/SnowRemovel/internal/repository"
)

// Where a checkout quote's discount anchor came from.
const (
	AnchorSourceStored  = "stored"
	AnchorSourceRequest = "request"
	AnchorSourceNone    = "none"
)

// CheckoutCurrency is the currency of every checkout amount.
const CheckoutCurrency = "usd"

// CheckoutRequest is a customer's request to pay for an estimate.
// EstimateTimestamp is the anchor the client was shown, or zero.
type CheckoutRequest struct {
	Name              string
	Email             string
	Address           string
	Timeframe         string
	UrgentService     bool
	EstimateTimestamp time.Time
}

// CheckoutQuote is the final amount for a checkout along with the
// metadata a payment session carries.
type CheckoutQuote struct {
	Estimate        models.Estimate
	AnchorSource    string
	DiscountPercent float64
	DiscountAmount  float64
	Total           float64
	AmountCents     int64
	Currency        string
	Description     string
	Metadata        map[string]string
}

// CheckoutService defines the interface for checkout pricing.
type CheckoutService interface {
	// Quote recomputes the estimate server-side and applies the discount
	// for the address's anchor.
	// Errors are those of PricingService.Estimate.
	Quote(ctx context.Context, req CheckoutRequest) (*CheckoutQuote, error)
}

// checkoutService is the concrete implementation of CheckoutService.
type checkoutService struct {
	pricing PricingService
	anchors repository.AnchorStore
	clock   DiscountClock
	log     *logger.Logger
	now     func() time.Time
}

// NewCheckoutService creates a new instance of CheckoutService.
func NewCheckoutService(pricing PricingService, anchors repository.AnchorStore, clock DiscountClock, log *logger.Logger) CheckoutService {
	return &checkoutService{
		pricing: pricing,
		anchors: anchors,
		clock:   clock,
		log:     log,
		now:     time.Now,
	}
}

func (s *checkoutService) Quote(ctx context.Context, req CheckoutRequest) (*CheckoutQuote, error) {
	estimate, err := s.pricing.Estimate(ctx, req.Address, req.UrgentService)
	if err != nil {
		return nil, err
	}

	now := s.now()
	anchor, source := s.resolveAnchor(ctx, req, now)

	var percent float64
	if source != AnchorSourceNone {
		percent = s.clock.Percent(anchor, now)
	}

	// The charge is rounded once, from the unrounded discount. The
	// rounded amounts are for display and metadata only.
	discount := estimate.Price * percent / 100
	grossTotal := estimate.Price - discount + estimate.DriveFee

	amountCents := int64(math.Round(grossTotal * 100))
	if amountCents < 1 {
		amountCents = 1
	}

	discountAmount := round(discount, moneyPlaces)
	total := round(grossTotal, moneyPlaces)

	quote := &CheckoutQuote{
		Estimate:        *estimate,
		AnchorSource:    source,
		DiscountPercent: percent,
		DiscountAmount:  discountAmount,
		Total:           total,
		AmountCents:     amountCents,
		Currency:        CheckoutCurrency,
		Description:     "Snow removal for " + req.Address,
		Metadata: map[string]string{
			"name":            req.Name,
			"address":         req.Address,
			"timeframe":       req.Timeframe,
			"discountPercent": fixed2(percent),
			"discountAmount":  fixed2(discountAmount),
			"basePrice":       fixed2(estimate.BasePrice),
			"urgencyFee":      fixed2(estimate.UpchargeAmount),
			"driveFee":        fixed2(estimate.DriveFee),
			"urgentService":   strconv.FormatBool(estimate.UpchargeApplied),
			"grossTotal":      fixed2(total),
		},
	}

	s.log.Info("Checkout quote computed", map[string]interface{}{
		"address":          logger.RedactAddress(req.Address),
		"anchor_source":    source,
		"discount_percent": percent,
		"amount_cents":     amountCents,
	})

	return quote, nil
}

// resolveAnchor prefers the stored anchor for the address. The client's
// timestamp is used only when nothing is stored and is never allowed to
// lie in the future.
func (s *checkoutService) resolveAnchor(ctx context.Context, req CheckoutRequest, now time.Time) (time.Time, string) {
	anchor, found, err := s.anchors.Lookup(ctx, repository.AnchorKey(req.Address))
	if err != nil {
		s.log.Warn("Discount anchor lookup failed, using request timestamp", map[string]interface{}{
			"address": logger.RedactAddress(req.Address),
			"error":   err.Error(),
		})
	}
	if err == nil && found {
		return anchor, AnchorSourceStored
	}

	if req.EstimateTimestamp.IsZero() {
		return time.Time{}, AnchorSourceNone
	}
	if req.EstimateTimestamp.After(now) {
		return now, AnchorSourceRequest
	}
	return req.EstimateTimestamp, AnchorSourceRequest
}

func fixed2(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
