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

// ArcGIS queries a parcel FeatureServer layer for polygons near a point.
type ArcGIS struct {
	client       *upstream.Client
	layerURL     string
	bufferMeters float64
}

// NewArcGIS creates a parcel source for the layer at layerURL
// (".../FeatureServer/0").
func NewArcGIS(client *upstream.Client, layerURL string, bufferMeters float64) *ArcGIS {
	return &ArcGIS{
		client:       client,
		layerURL:     strings.TrimRight(layerURL, "/"),
		bufferMeters: bufferMeters,
	}
}

type arcgisResponse struct {
	Features []struct {
		Geometry *struct {
			Rings []models.Ring `json:"rings"`
		} `json:"geometry"`
	} `json:"features"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// FeaturesNear returns every parcel intersecting a buffer around coord,
// with geometry in Web Mercator meters. An empty slice means no parcel.
func (a *ArcGIS) FeaturesNear(ctx context.Context, coord models.Coordinate) ([]models.ParcelFeature, error) {
	query := url.Values{}
	query.Set("geometry", coord.LonLat())
	query.Set("geometryType", "esriGeometryPoint")
	query.Set("inSR", "4326")
	query.Set("spatialRel", "esriSpatialRelIntersects")
	query.Set("outFields", "*")
	query.Set("returnGeometry", "true")
	query.Set("outSR", strconv.Itoa(models.SRIDWebMercator))
	query.Set("distance", strconv.FormatFloat(a.bufferMeters, 'f', -1, 64))
	query.Set("units", "esriSRUnit_Meter")
	query.Set("f", "json")

	var resp arcgisResponse
	if err := a.client.GetJSON(ctx, a.layerURL+"/query?"+query.Encode(), nil, &resp); err != nil {
		return nil, fmt.Errorf("parcel query failed: %w", err)
	}

	// FeatureServer reports query errors with a 200 status.
	if resp.Error != nil {
		return nil, fmt.Errorf("parcel query failed: %d %s", resp.Error.Code, resp.Error.Message)
	}

	features := make([]models.ParcelFeature, 0, len(resp.Features))
	for _, f := range resp.Features {
		feature := models.ParcelFeature{}
		if f.Geometry != nil && len(f.Geometry.Rings) > 0 {
			feature.Geometry = &models.Polygon{
				Rings: f.Geometry.Rings,
				SRID:  models.SRIDWebMercator,
			}
		}
		features = append(features, feature)
	}

	return features, nil
}
