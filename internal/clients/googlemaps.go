package clients

import (
	"context"
	"fmt"
	"strings"

	"github.com/Carter-75/SnowRemovel/internal/models"
	"github.com/Carter-75/SnowRemovel/internal/upstream"
	"googlemaps.github.io/maps"
)

// GoogleMaps routes with the Google Directions API. It sits between ORS
// and OSRM and is skipped when no key is configured.
type GoogleMaps struct {
	client *maps.Client
}

// NewGoogleMaps creates a Directions provider. An empty apiKey yields a
// provider that always reports the missing key. baseURL overrides the
// API host and is empty in production.
func NewGoogleMaps(client *upstream.Client, apiKey, baseURL string) (*GoogleMaps, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return &GoogleMaps{}, nil
	}

	opts := []maps.ClientOption{
		maps.WithAPIKey(apiKey),
		maps.WithHTTPClient(client.HTTPClient()),
	}
	if baseURL != "" {
		opts = append(opts, maps.WithBaseURL(strings.TrimRight(baseURL, "/")))
	}

	mc, err := maps.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &GoogleMaps{client: mc}, nil
}

// Name identifies the provider in logs.
func (g *GoogleMaps) Name() string { return "Google" }

// Route returns the first leg of the first driving route.
func (g *GoogleMaps) Route(ctx context.Context, origin, destination models.Coordinate) (models.DriveSummary, error) {
	if g.client == nil {
		return models.DriveSummary{}, missingKey(g.Name(), "GOOGLE_MAPS_API_KEY")
	}

	routes, _, err := g.client.Directions(ctx, &maps.DirectionsRequest{
		Origin:      origin.LatLng(),
		Destination: destination.LatLng(),
		Mode:        maps.TravelModeDriving,
	})
	if err != nil {
		return models.DriveSummary{}, &RouteError{Provider: g.Name(), Status: "Google " + err.Error(), Err: err}
	}

	if len(routes) == 0 || len(routes[0].Legs) == 0 {
		return models.DriveSummary{}, &RouteError{Provider: g.Name(), Status: "Google missing route"}
	}

	leg := routes[0].Legs[0]
	summary := models.DriveSummary{
		DistanceMeters:  float64(leg.Distance.Meters),
		DurationSeconds: leg.Duration.Seconds(),
	}
	if !summary.Usable() {
		return models.DriveSummary{}, &RouteError{Provider: g.Name(), Status: "Google missing route"}
	}
	return summary, nil
}
