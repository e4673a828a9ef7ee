package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/Carter-75/SnowRemovel/internal/config"
	"github.com/Carter-75/SnowRemovel/internal/logger"
	"github.com/Carter-75/SnowRemovel/internal/models"
	"golang.org/x/sync/singleflight"
)

// Output precision, in decimal places.
const (
	moneyPlaces   = 2
	ratePlaces    = 4
	areaPlaces    = 1
	minutesPlaces = 1
	milesPlaces   = 2
)

// Geocoder resolves free-text addresses. found is false when the service
// had no match; err is reserved for transport failures.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (coord models.Coordinate, found bool, err error)
}

// PricingConfig holds the constants of the price and travel-fee formulas.
type PricingConfig struct {
	BaseRatePerSqFt        float64
	RatePer1000SqFt        float64
	ShortJobMaxSqFt        float64
	AreaSqrtFactor         float64
	UrgencyUpchargePercent float64
	OriginAddress          string
	PerMileRate            float64
	HourlyRate             float64
	FreeMinutes            float64
}

// NewPricingConfig copies the pricing and travel sections of cfg.
func NewPricingConfig(cfg *config.Config) PricingConfig {
	return PricingConfig{
		BaseRatePerSqFt:        cfg.Pricing.BaseRatePerSqFt,
		RatePer1000SqFt:        cfg.Pricing.RatePer1000SqFt,
		ShortJobMaxSqFt:        cfg.Pricing.ShortJobMaxSqFt,
		AreaSqrtFactor:         cfg.Pricing.AreaSqrtFactor,
		UrgencyUpchargePercent: cfg.Pricing.UrgencyUpchargePercent,
		OriginAddress:          cfg.Travel.OriginAddress,
		PerMileRate:            cfg.Travel.PerMileRate,
		HourlyRate:             cfg.Travel.HourlyRate,
		FreeMinutes:            cfg.Travel.FreeMinutes,
	}
}

// TravelLeg is the one-way trip to a job: straight-line miles for the
// mileage charge and the provider's duration for the time charge.
type TravelLeg struct {
	Miles           float64
	DurationSeconds float64
}

// PriceEstimate applies the pricing formulas to a parcel area. travel is
// nil when no route was available, in which case the travel fields are
// zero. Values are rounded only here, once.
func PriceEstimate(cfg PricingConfig, areaSqMeters float64, urgent bool, travel *TravelLeg, at time.Time) models.Estimate {
	rawSqFt := models.MetersToSquareFeet(areaSqMeters)
	effectiveSqFt := math.Sqrt(rawSqFt) * cfg.AreaSqrtFactor

	rate := cfg.BaseRatePerSqFt + math.Log10(effectiveSqFt/1000+1)*cfg.RatePer1000SqFt
	basePrice := effectiveSqFt * rate

	var upcharge float64
	if urgent {
		upcharge = basePrice * cfg.UrgencyUpchargePercent
	}

	jobType := models.JobTypeLong
	if effectiveSqFt <= cfg.ShortJobMaxSqFt {
		jobType = models.JobTypeShort
	}

	var miles, minutes, fee float64
	if travel != nil {
		miles = travel.Miles
		minutes = travel.DurationSeconds / 60
		if minutes > cfg.FreeMinutes {
			mileageFee := miles * cfg.PerMileRate
			timeFee := (minutes * 2 / 60) * cfg.HourlyRate
			fee = math.Max(mileageFee, timeFee)
		}
	}

	return models.Estimate{
		Timestamp:        at,
		JobType:          jobType,
		AreaSqFt:         round(effectiveSqFt, areaPlaces),
		DynamicRate:      round(rate, ratePlaces),
		BasePrice:        round(basePrice, moneyPlaces),
		UpchargeAmount:   round(upcharge, moneyPlaces),
		Price:            round(basePrice+upcharge, moneyPlaces),
		UpchargeApplied:  urgent,
		DriveMiles:       round(miles, milesPlaces),
		DriveMinutes:     round(minutes, minutesPlaces),
		RoundTripMiles:   round(miles*2, milesPlaces),
		RoundTripMinutes: round(minutes*2, minutesPlaces),
		DriveFee:         round(fee, moneyPlaces),
	}
}

// round rounds half away from zero to the given number of decimals.
func round(x float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(x*scale) / scale
}

// PricingService defines the interface for the estimation engine.
type PricingService interface {
	// Estimate prices snow removal at address.
	// Returns ErrInvalidAddress for empty or oversized input.
	// Returns an error satisfying errors.Is(err, ErrEstimateNotFound) when
	// no estimate is possible; routing failures never produce an error.
	Estimate(ctx context.Context, address string, urgent bool) (*models.Estimate, error)
}

// pricingService is the concrete implementation of PricingService.
type pricingService struct {
	cfg      PricingConfig
	geocoder Geocoder
	parcels  ParcelService
	routing  RoutingService
	log      *logger.Logger
	now      func() time.Time

	originMu     sync.Mutex
	origin       *models.Coordinate
	originLookup singleflight.Group
}

// NewPricingService creates the estimation engine.
func NewPricingService(cfg PricingConfig, geocoder Geocoder, parcels ParcelService, routing RoutingService, log *logger.Logger) PricingService {
	return &pricingService{
		cfg:      cfg,
		geocoder: geocoder,
		parcels:  parcels,
		routing:  routing,
		log:      log,
		now:      time.Now,
	}
}

// Estimate runs geocode, parcel lookup and routing in sequence, each step
// depending on the previous one.
func (s *pricingService) Estimate(ctx context.Context, address string, urgent bool) (*models.Estimate, error) {
	address = strings.TrimSpace(address)
	if address == "" || len(address) > MaxAddressLength {
		return nil, fmt.Errorf("%w: must be 1 to %d characters", ErrInvalidAddress, MaxAddressLength)
	}

	redacted := logger.RedactAddress(address)

	destination, found, err := s.geocoder.Geocode(ctx, address)
	if err != nil {
		s.log.Error("Geocoding failed", err, map[string]interface{}{
			"address": redacted,
		})
		return nil, fmt.Errorf("%w: %w", ErrUpstreamUnavailable, err)
	}
	if !found {
		s.log.Info("Address not found", map[string]interface{}{
			"address": redacted,
		})
		return nil, ErrAddressNotFound
	}

	areaSqMeters, err := s.parcels.LookupAreaSqMeters(ctx, destination)
	if err != nil {
		return nil, err
	}

	var travel *TravelLeg
	routeStatus := "Origin not resolved"
	if origin, ok := s.originCoordinate(ctx); ok {
		summary, status, ok := s.routing.DriveSummary(ctx, origin, destination)
		routeStatus = status
		if ok {
			travel = &TravelLeg{
				Miles:           models.HaversineMiles(origin, destination),
				DurationSeconds: summary.DurationSeconds,
			}
		}
	}

	estimate := PriceEstimate(s.cfg, areaSqMeters, urgent, travel, s.now())
	estimate.RouteStatus = routeStatus

	s.log.Info("Estimate computed", map[string]interface{}{
		"address":      redacted,
		"sqft":         estimate.AreaSqFt,
		"price":        estimate.Price,
		"drive_fee":    estimate.DriveFee,
		"job_type":     estimate.JobType,
		"route_status": routeStatus,
	})

	return &estimate, nil
}

// errOriginNotFound is returned inside the origin lookup when the
// geocoder has no match for the configured origin.
var errOriginNotFound = errors.New("origin address not found")

// originCoordinate geocodes the service origin once and reuses it.
// Concurrent callers share one in-flight lookup, which is detached from
// any single request's cancellation; each caller still stops waiting when
// its own ctx ends. Failures are not cached so a later request can retry.
func (s *pricingService) originCoordinate(ctx context.Context) (models.Coordinate, bool) {
	s.originMu.Lock()
	cached := s.origin
	s.originMu.Unlock()
	if cached != nil {
		return *cached, true
	}

	lookupCtx := context.WithoutCancel(ctx)
	results := s.originLookup.DoChan("origin", func() (interface{}, error) {
		coord, found, err := s.geocoder.Geocode(lookupCtx, s.cfg.OriginAddress)
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, errOriginNotFound
		}

		s.originMu.Lock()
		s.origin = &coord
		s.originMu.Unlock()
		return coord, nil
	})

	var err error
	select {
	case res := <-results:
		if res.Err == nil {
			return res.Val.(models.Coordinate), true
		}
		err = res.Err
	case <-ctx.Done():
		err = ctx.Err()
	}

	s.log.Warn("Service origin could not be geocoded, travel fee waived", map[string]interface{}{
		"origin": s.cfg.OriginAddress,
		"error":  err.Error(),
	})
	return models.Coordinate{}, false
}
