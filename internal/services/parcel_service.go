package services

import (
	"context"
	"fmt"

	"github.com/Carter-75/SnowRemovel/internal/logger"
	"github.com/Carter-75/SnowRemovel/internal/models"
)

// ParcelSource returns candidate parcels near a point. Both the ArcGIS
// feature service client and the PostGIS repository implement it.
type ParcelSource interface {
	FeaturesNear(ctx context.Context, coord models.Coordinate) ([]models.ParcelFeature, error)
}

// ParcelService defines the interface for parcel area lookups.
type ParcelService interface {
	// LookupAreaSqMeters returns the area of the parcel at coord.
	// Returns ErrParcelNotFound if no candidate has a positive area.
	// Returns ErrUpstreamUnavailable if the source failed.
	LookupAreaSqMeters(ctx context.Context, coord models.Coordinate) (float64, error)
}

// parcelService is the concrete implementation of ParcelService.
type parcelService struct {
	source ParcelSource
	log    *logger.Logger
}

// NewParcelService creates a new instance of ParcelService.
func NewParcelService(source ParcelSource, log *logger.Logger) ParcelService {
	return &parcelService{
		source: source,
		log:    log,
	}
}

// LookupAreaSqMeters queries the source and picks the smallest positive
// area among the returned features. A point near a shared boundary can
// hit several lots; the smallest one is taken as the match.
func (s *parcelService) LookupAreaSqMeters(ctx context.Context, coord models.Coordinate) (float64, error) {
	features, err := s.source.FeaturesNear(ctx, coord)
	if err != nil {
		s.log.Error("Failed to query parcel source", err, map[string]interface{}{
			"lat": coord.Latitude,
			"lng": coord.Longitude,
		})
		return 0, fmt.Errorf("%w: %w", ErrUpstreamUnavailable, err)
	}

	area, ok := SmallestPositiveArea(features)
	if !ok {
		s.log.Debug("No parcel with positive area at point", map[string]interface{}{
			"lat":        coord.Latitude,
			"lng":        coord.Longitude,
			"candidates": len(features),
		})
		return 0, ErrParcelNotFound
	}

	s.log.Debug("Parcel area resolved", map[string]interface{}{
		"candidates": len(features),
		"area_sq_m":  area,
		"area_sq_ft": models.MetersToSquareFeet(area),
	})

	return area, nil
}

// SmallestPositiveArea returns the minimum positive feature area.
// Features without geometry or with degenerate rings are skipped.
func SmallestPositiveArea(features []models.ParcelFeature) (float64, bool) {
	var best float64
	found := false
	for _, f := range features {
		area := f.Area()
		if area <= 0 {
			continue
		}
		if !found || area < best {
			best = area
			found = true
		}
	}
	return best, found
}
