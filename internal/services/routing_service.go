package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/Carter-75/SnowRemovel/internal/logger"
	"github.com/Carter-75/SnowRemovel/internal/models"
)

// RouteStatusOK is the status recorded when the first provider succeeds.
const RouteStatusOK = "OK"

// RouteProvider is one routing tier.
type RouteProvider interface {
	Name() string
	Route(ctx context.Context, origin, destination models.Coordinate) (models.DriveSummary, error)
}

// RoutingService defines the interface for drive-time lookups.
type RoutingService interface {
	// DriveSummary tries each provider in order and returns the first
	// usable summary. ok is false when every provider failed; status
	// always describes the outcome and is never an error.
	DriveSummary(ctx context.Context, origin, destination models.Coordinate) (summary models.DriveSummary, status string, ok bool)
}

// routingService is the concrete implementation of RoutingService.
type routingService struct {
	providers []RouteProvider
	log       *logger.Logger
}

// NewRoutingService creates a RoutingService over providers, tried in order.
func NewRoutingService(log *logger.Logger, providers ...RouteProvider) RoutingService {
	return &routingService{
		providers: providers,
		log:       log,
	}
}

func (s *routingService) DriveSummary(ctx context.Context, origin, destination models.Coordinate) (models.DriveSummary, string, bool) {
	var failures []string

	for _, p := range s.providers {
		summary, err := p.Route(ctx, origin, destination)
		if err == nil && !summary.Usable() {
			err = fmt.Errorf("%s returned no usable summary", p.Name())
		}
		if err != nil {
			s.log.Debug("Route provider failed", map[string]interface{}{
				"provider": p.Name(),
				"status":   err.Error(),
			})
			failures = append(failures, err.Error())
			continue
		}

		status := RouteStatusOK
		if len(failures) > 0 {
			status = fmt.Sprintf("OK via %s (%s)", p.Name(), strings.Join(failures, "; "))
		}
		return summary, status, true
	}

	if len(failures) == 0 {
		return models.DriveSummary{}, "No route providers configured", false
	}

	status := strings.Join(failures, "; ")
	s.log.Warn("All route providers failed, travel fee waived", map[string]interface{}{
		"status": status,
	})
	return models.DriveSummary{}, status, false
}
