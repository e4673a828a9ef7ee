package services

import (
	"context"
	"time"

	"github.com/Carter-75/SnowRemovel/internal/logger"
	"github.com/Carter-75/SnowRemovel/internal/models"
	"github.com/Carter-75/SnowRemovel/internal/repository"
)

// AnchoredEstimate is an estimate together with the discount clock that
// started when the address was first quoted.
type AnchoredEstimate struct {
	Estimate models.Estimate
	Anchor   time.Time
	Discount DiscountStatus
}

// EstimateService defines the interface for customer-facing estimates.
type EstimateService interface {
	// Estimate prices address and anchors its discount clock. Repeat
	// requests for the same address keep the first anchor.
	// Errors are those of PricingService.Estimate.
	Estimate(ctx context.Context, address string, urgent bool) (*AnchoredEstimate, error)
}

// estimateService is the concrete implementation of EstimateService.
type estimateService struct {
	pricing PricingService
	anchors repository.AnchorStore
	clock   DiscountClock
	log     *logger.Logger
	now     func() time.Time
}

// NewEstimateService creates a new instance of EstimateService.
func NewEstimateService(pricing PricingService, anchors repository.AnchorStore, clock DiscountClock, log *logger.Logger) EstimateService {
	return &estimateService{
		pricing: pricing,
		anchors: anchors,
		clock:   clock,
		log:     log,
		now:     time.Now,
	}
}

func (s *estimateService) Estimate(ctx context.Context, address string, urgent bool) (*AnchoredEstimate, error) {
	estimate, err := s.pricing.Estimate(ctx, address, urgent)
	if err != nil {
		return nil, err
	}

	// Anchors are persisted with millisecond precision.
	issuedAt := estimate.Timestamp.Truncate(time.Millisecond)

	anchor, created, err := s.anchors.Anchor(ctx, repository.AnchorKey(address), issuedAt)
	if err != nil {
		s.log.Warn("Discount anchor store unavailable, anchoring at estimate time", map[string]interface{}{
			"address": logger.RedactAddress(address),
			"error":   err.Error(),
		})
		anchor = issuedAt
	} else if !created {
		s.log.Debug("Reusing discount anchor", map[string]interface{}{
			"address": logger.RedactAddress(address),
			"anchor":  anchor.UnixMilli(),
		})
	}

	return &AnchoredEstimate{
		Estimate: *estimate,
		Anchor:   anchor,
		Discount: s.clock.Status(anchor, s.now()),
	}, nil
}
