package clients

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/Carter-75/SnowRemovel/internal/models"
	"github.com/Carter-75/SnowRemovel/internal/upstream"
)

// ORS routes with OpenRouteService's driving-car profile. It is the
// preferred provider but needs an API key.
type ORS struct {
	client  *upstream.Client
	baseURL string
	apiKey  string
}

// NewORS creates an OpenRouteService provider.
func NewORS(client *upstream.Client, baseURL, apiKey string) *ORS {
	return &ORS{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  strings.TrimSpace(apiKey),
	}
}

// Name identifies the provider in logs.
func (o *ORS) Name() string { return "ORS" }

type orsResponse struct {
	Features []struct {
		Properties struct {
			Summary *struct {
				Distance float64 `json:"distance"`
				Duration float64 `json:"duration"`
			} `json:"summary"`
		} `json:"properties"`
	} `json:"features"`
}

// Route returns the driving summary from origin to destination.
func (o *ORS) Route(ctx context.Context, origin, destination models.Coordinate) (models.DriveSummary, error) {
	if o.apiKey == "" {
		return models.DriveSummary{}, missingKey(o.Name(), "ORS_API_KEY")
	}

	query := url.Values{}
	query.Set("start", origin.LonLat())
	query.Set("end", destination.LonLat())

	headers := http.Header{}
	headers.Set("Authorization", o.apiKey)

	var resp orsResponse
	if err := o.client.GetJSON(ctx, o.baseURL+"/v2/directions/driving-car?"+query.Encode(), headers, &resp); err != nil {
		return models.DriveSummary{}, requestFailure(o.Name(), err)
	}

	if len(resp.Features) > 0 && resp.Features[0].Properties.Summary != nil {
		s := resp.Features[0].Properties.Summary
		summary := models.DriveSummary{DistanceMeters: s.Distance, DurationSeconds: s.Duration}
		if summary.Usable() {
			return summary, nil
		}
	}

	return models.DriveSummary{}, &RouteError{Provider: o.Name(), Status: "ORS missing summary"}
}
