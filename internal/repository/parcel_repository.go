package repository

import (
	"context"
	"fmt"

	"github.com/Carter-75/SnowRemovel/internal/database"
	"github.com/Carter-75/SnowRemovel/internal/models"
)

// Maximum number of candidate parcels returned for one point.
const maxNearbyResults = 20

// ParcelRepository reads parcel geometry from a PostGIS table.
type ParcelRepository interface {
	// FeaturesNear returns every parcel within the configured buffer of
	// coord, closest first, with geometry projected to Web Mercator.
	// Returns an empty slice if no parcels are found (not an error).
	FeaturesNear(ctx context.Context, coord models.Coordinate) ([]models.ParcelFeature, error)
}

// parcelRepository is the concrete implementation of ParcelRepository.
type parcelRepository struct {
	db           *database.Database
	bufferMeters float64
}

// NewParcelRepository creates a new instance of ParcelRepository.
func NewParcelRepository(db *database.Database, bufferMeters float64) ParcelRepository {
	return &parcelRepository{
		db:           db,
		bufferMeters: bufferMeters,
	}
}

// FeaturesNear uses ST_DWithin on geography so the buffer is in meters,
// then transforms each geometry to EPSG:3857 for planar area.
//
// Note: PostGIS functions expect (longitude, latitude) order, not (lat, lng).
func (r *parcelRepository) FeaturesNear(ctx context.Context, coord models.Coordinate) ([]models.ParcelFeature, error) {
	query := `
		SELECT
			ST_AsGeoJSON(ST_Transform(geom, 3857)) AS geometry
		FROM parcels
		WHERE ST_DWithin(
			geom::geography,
			ST_SetSRID(ST_MakePoint($1, $2), 4326)::geography,
			$3
		)
		ORDER BY ST_Distance(
			geom::geography,
			ST_SetSRID(ST_MakePoint($1, $2), 4326)::geography
		)
		LIMIT $4
	`

	rows, err := r.db.Pool.Query(ctx, query, coord.Longitude, coord.Latitude, r.bufferMeters, maxNearbyResults)
	if err != nil {
		return nil, fmt.Errorf("failed to query nearby parcels (lat=%f, lng=%f, buffer=%.1f): %w",
			coord.Latitude, coord.Longitude, r.bufferMeters, err)
	}
	defer rows.Close()

	features := []models.ParcelFeature{}
	for rows.Next() {
		var geomJSON []byte
		if err := rows.Scan(&geomJSON); err != nil {
			return nil, fmt.Errorf("failed to scan parcel row: %w", err)
		}

		feature := models.ParcelFeature{}
		if geomJSON != nil {
			var polygon models.Polygon
			if err := polygon.Scan(geomJSON); err != nil {
				return nil, fmt.Errorf("failed to parse parcel geometry: %w", err)
			}
			polygon.SRID = models.SRIDWebMercator
			feature.Geometry = &polygon
		}
		features = append(features, feature)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating parcel rows: %w", err)
	}

	return features, nil
}
