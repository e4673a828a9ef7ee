// Package app assembles the estimation engine from configuration. Both the
// API server and the snowquote CLI build their engine here.
package app

import (
	"context"
	"fmt"

	"github.com/Carter-75/SnowRemovel/internal/clients"
	"github.com/Carter-75/SnowRemovel/internal/config"
	"github.com/Carter-75/SnowRemovel/internal/database"
	"github.com/Carter-75/SnowRemovel/internal/logger"
	"github.com/Carter-75/SnowRemovel/internal/repository"
	"github.com/Carter-75/SnowRemovel/internal/services"
	"github.com/Carter-75/SnowRemovel/internal/upstream"
	"golang.org/x/time/rate"
)

// Engine is the wired estimation engine and the resources it owns.
type Engine struct {
	Pricing services.PricingService
	Routing services.RoutingService
	Clock   services.DiscountClock

	// ParcelDB is the PostGIS pool when PARCEL_SOURCE=postgis, else nil.
	ParcelDB *database.Database

	// ProviderNames lists the route providers in the order they are tried.
	ProviderNames []string
}

// NewEngine builds the engine described by cfg.
func NewEngine(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Engine, error) {
	httpClient := upstream.New(UpstreamConfig(cfg), log)

	geocoderCfg := UpstreamConfig(cfg)
	if cfg.Geocoder.RequestsPerSecond > 0 {
		geocoderCfg.Limiter = rate.NewLimiter(rate.Limit(cfg.Geocoder.RequestsPerSecond), 1)
	}
	geocoder := clients.NewNominatim(upstream.New(geocoderCfg, log), cfg.Geocoder.BaseURL)

	engine := &Engine{
		Clock: services.NewDiscountClock(services.NewDiscountConfig(cfg)),
	}

	var source services.ParcelSource
	switch cfg.Parcel.Source {
	case config.ParcelSourcePostGIS:
		db, err := database.NewPostgresPool(ctx, cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to connect parcel database: %w", err)
		}
		engine.ParcelDB = db
		source = repository.NewParcelRepository(db, cfg.Parcel.BufferMeters)
		log.Info("Using PostGIS parcel source", map[string]interface{}{
			"host":     cfg.Database.Host,
			"database": cfg.Database.Name,
		})
	default:
		source = clients.NewArcGIS(httpClient, cfg.Parcel.LayerURL, cfg.Parcel.BufferMeters)
		log.Info("Using ArcGIS parcel source", map[string]interface{}{
			"layer_url": cfg.Parcel.LayerURL,
		})
	}

	providers, err := RouteProviders(cfg, httpClient)
	if err != nil {
		engine.Close()
		return nil, err
	}
	for _, p := range providers {
		engine.ProviderNames = append(engine.ProviderNames, p.Name())
	}

	engine.Routing = services.NewRoutingService(log, providers...)
	engine.Pricing = services.NewPricingService(
		services.NewPricingConfig(cfg),
		geocoder,
		services.NewParcelService(source, log),
		engine.Routing,
		log,
	)

	return engine, nil
}

// RouteProviders returns the routing tiers in order: ORS, Google, OSRM.
// Unkeyed tiers stay in the list and report their missing key.
func RouteProviders(cfg *config.Config, httpClient *upstream.Client) ([]services.RouteProvider, error) {
	google, err := clients.NewGoogleMaps(httpClient, cfg.Routing.GoogleMapsAPIKey, "")
	if err != nil {
		return nil, err
	}

	return []services.RouteProvider{
		clients.NewORS(httpClient, cfg.Routing.ORSBaseURL, cfg.Routing.ORSAPIKey),
		google,
		clients.NewOSRM(httpClient, cfg.Routing.OSRMBaseURL),
	}, nil
}

// UpstreamConfig maps the upstream section of cfg to the client policy.
func UpstreamConfig(cfg *config.Config) upstream.Config {
	return upstream.Config{
		UserAgent:         cfg.Upstream.UserAgent,
		Timeout:           cfg.Upstream.Timeout,
		MaxAttempts:       cfg.Upstream.MaxAttempts,
		InitialDelay:      cfg.Upstream.InitialDelay,
		MaxDelay:          cfg.Upstream.MaxDelay,
		BackoffMultiplier: cfg.Upstream.BackoffMultiplier,
	}
}

// Close releases the parcel database pool, if any.
func (e *Engine) Close() {
	if e.ParcelDB != nil {
		e.ParcelDB.Close()
	}
}
