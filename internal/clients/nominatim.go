// Package clients holds thin adapters over the third-party HTTP APIs the
// estimator depends on: geocoding, parcel geometry and driving routes.
package clients

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/Carter-75/SnowRemovel/internal/models"
	"github.com/Carter-75/SnowRemovel/internal/upstream"
)

// Nominatim geocodes free-text addresses against an OSM Nominatim server.
type Nominatim struct {
	client  *upstream.Client
	baseURL string
}

// NewNominatim creates a geocoder for the server at baseURL.
func NewNominatim(client *upstream.Client, baseURL string) *Nominatim {
	return &Nominatim{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

type nominatimResult struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// Geocode returns the best match for address. The boolean is false when
// the server had no usable match; err is reserved for transport and
// protocol failures.
func (n *Nominatim) Geocode(ctx context.Context, address string) (models.Coordinate, bool, error) {
	query := url.Values{}
	query.Set("format", "json")
	query.Set("limit", "1")
	query.Set("q", address)

	var results []nominatimResult
	if err := n.client.GetJSON(ctx, n.baseURL+"/search?"+query.Encode(), nil, &results); err != nil {
		return models.Coordinate{}, false, fmt.Errorf("geocode request failed: %w", err)
	}

	if len(results) == 0 {
		return models.Coordinate{}, false, nil
	}

	lat, latErr := strconv.ParseFloat(strings.TrimSpace(results[0].Lat), 64)
	lon, lonErr := strconv.ParseFloat(strings.TrimSpace(results[0].Lon), 64)
	if latErr != nil || lonErr != nil {
		return models.Coordinate{}, false, nil
	}

	coord := models.Coordinate{Latitude: lat, Longitude: lon}
	if coord.Validate() != nil {
		return models.Coordinate{}, false, nil
	}

	return coord, true, nil
}
