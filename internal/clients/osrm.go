package clients

import (
	"context"
	"net/url"
	"strings"

	"github.com/Carter-75/SnowRemovel/internal/models"
	"github.com/Carter-75/SnowRemovel/internal/upstream"
)

// OSRM routes against a public OSRM server. It needs no key and is the
// last provider tried.
type OSRM struct {
	client  *upstream.Client
	baseURL string
}

// NewOSRM creates an OSRM provider.
func NewOSRM(client *upstream.Client, baseURL string) *OSRM {
	return &OSRM{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// Name identifies the provider in logs.
func (o *OSRM) Name() string { return "OSRM" }

type osrmResponse struct {
	Code   string `json:"code"`
	Routes []struct {
		Distance float64 `json:"distance"`
		Duration float64 `json:"duration"`
	} `json:"routes"`
}

// Route returns the driving summary of the first route OSRM offers.
func (o *OSRM) Route(ctx context.Context, origin, destination models.Coordinate) (models.DriveSummary, error) {
	query := url.Values{}
	query.Set("overview", "false")
	query.Set("alternatives", "false")

	// The coordinate pair is a path segment; its separators must stay literal.
	endpoint := o.baseURL + "/route/v1/driving/" + origin.LonLat() + ";" + destination.LonLat() + "?" + query.Encode()

	var resp osrmResponse
	if err := o.client.GetJSON(ctx, endpoint, nil, &resp); err != nil {
		return models.DriveSummary{}, requestFailure(o.Name(), err)
	}

	if len(resp.Routes) > 0 {
		summary := models.DriveSummary{
			DistanceMeters:  resp.Routes[0].Distance,
			DurationSeconds: resp.Routes[0].Duration,
		}
		if summary.Usable() {
			return summary, nil
		}
	}

	code := resp.Code
	if code == "" {
		code = "unknown"
	}
	return models.DriveSummary{}, &RouteError{Provider: o.Name(), Status: "OSRM response code " + code}
}
