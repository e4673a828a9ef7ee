package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Parcel source identifiers.
const (
	ParcelSourceArcGIS  = "arcgis"
	ParcelSourcePostGIS = "postgis"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	CORS      CORSConfig
	Pricing   PricingConfig
	Travel    TravelConfig
	Parcel    ParcelConfig
	Geocoder  GeocoderConfig
	Routing   RoutingConfig
	Upstream  UpstreamConfig
	Discount  DiscountConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	Database  DatabaseConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string
	Env  string
}

// CORSConfig holds CORS configuration.
type CORSConfig struct {
	Origins []string
}

// PricingConfig holds the area-based pricing constants.
type PricingConfig struct {
	BaseRatePerSqFt        float64
	RatePer1000SqFt        float64
	ShortJobMaxSqFt        float64
	AreaSqrtFactor         float64
	UrgencyUpchargePercent float64
}

// TravelConfig holds the travel fee constants.
type TravelConfig struct {
	OriginAddress string
	PerMileRate   float64
	HourlyRate    float64
	FreeMinutes   float64
}

// ParcelConfig selects and configures the parcel geometry source.
type ParcelConfig struct {
	Source       string
	LayerURL     string
	BufferMeters float64
}

// GeocoderConfig configures the free-text geocoder.
type GeocoderConfig struct {
	BaseURL           string
	RequestsPerSecond float64
}

// RoutingConfig configures the ordered route providers.
type RoutingConfig struct {
	ORSAPIKey        string
	ORSBaseURL       string
	OSRMBaseURL      string
	GoogleMapsAPIKey string
}

// UpstreamConfig is the shared outbound HTTP policy.
type UpstreamConfig struct {
	UserAgent         string
	Timeout           time.Duration
	MaxAttempts       int
	InitialDelay      time.Duration
	MaxDelay          time.Duration
	BackoffMultiplier float64
}

// DiscountConfig holds the promotional discount clock constants.
type DiscountConfig struct {
	WindowSeconds     float64
	FirstPhaseSeconds float64
	MaxPercent        float64
	MinPercent        float64
	AnchorRetention   time.Duration
}

// RedisConfig holds Redis connection settings. An empty Addr selects
// in-process stores.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// RateLimitConfig holds per-client request limits.
type RateLimitConfig struct {
	EstimateLimit int
	CheckoutLimit int
	Window        time.Duration
}

// DatabaseConfig holds PostgreSQL connection configuration.
type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	PoolMin  int
	PoolMax  int
}

// Load reads configuration from environment variables.
// It uses viper to read values and provides sensible defaults for development.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	// Bind environment variables
	v.AutomaticEnv()

	cfg := &Config{
		Server: ServerConfig{
			Port: v.GetString("PORT"),
			Env:  v.GetString("ENV"),
		},
		CORS: CORSConfig{
			Origins: parseOrigins(v.GetString("CORS_ORIGINS")),
		},
		Pricing: PricingConfig{
			BaseRatePerSqFt:        v.GetFloat64("SNOW_BASE_RATE_PER_SQFT"),
			RatePer1000SqFt:        v.GetFloat64("SNOW_RATE_PER_1000_SQFT"),
			ShortJobMaxSqFt:        v.GetFloat64("SNOW_SHORT_JOB_MAX_SQFT"),
			AreaSqrtFactor:         v.GetFloat64("SNOW_SERVICE_AREA_SQRT_FACTOR"),
			UrgencyUpchargePercent: v.GetFloat64("URGENCY_UPCHARGE_PERCENT"),
		},
		Travel: TravelConfig{
			OriginAddress: v.GetString("DRIVE_ORIGIN_ADDRESS"),
			PerMileRate:   v.GetFloat64("DRIVE_PER_MILE_RATE"),
			HourlyRate:    v.GetFloat64("DRIVE_HOURLY_RATE"),
			FreeMinutes:   v.GetFloat64("DRIVE_FREE_MINUTES"),
		},
		Parcel: ParcelConfig{
			Source:       strings.ToLower(strings.TrimSpace(v.GetString("PARCEL_SOURCE"))),
			LayerURL:     strings.TrimSpace(v.GetString("PARCEL_LAYER_URL")),
			BufferMeters: v.GetFloat64("PARCEL_BUFFER_METERS"),
		},
		Geocoder: GeocoderConfig{
			BaseURL:           v.GetString("GEOCODER_URL"),
			RequestsPerSecond: v.GetFloat64("GEOCODER_REQUESTS_PER_SECOND"),
		},
		Routing: RoutingConfig{
			ORSAPIKey:        v.GetString("ORS_API_KEY"),
			ORSBaseURL:       v.GetString("ORS_URL"),
			OSRMBaseURL:      v.GetString("OSRM_URL"),
			GoogleMapsAPIKey: v.GetString("GOOGLE_MAPS_API_KEY"),
		},
		Upstream: UpstreamConfig{
			UserAgent:         v.GetString("HTTP_USER_AGENT"),
			Timeout:           v.GetDuration("HTTP_TIMEOUT"),
			MaxAttempts:       v.GetInt("RETRY_MAX_ATTEMPTS"),
			InitialDelay:      v.GetDuration("RETRY_INITIAL_DELAY"),
			MaxDelay:          v.GetDuration("RETRY_MAX_DELAY"),
			BackoffMultiplier: v.GetFloat64("RETRY_BACKOFF_MULTIPLIER"),
		},
		Discount: DiscountConfig{
			WindowSeconds:     v.GetFloat64("DISCOUNT_WINDOW_SECONDS"),
			FirstPhaseSeconds: v.GetFloat64("DISCOUNT_FIRST_PHASE_SECONDS"),
			MaxPercent:        v.GetFloat64("DISCOUNT_MAX_PERCENT"),
			MinPercent:        v.GetFloat64("DISCOUNT_MIN_PERCENT"),
			AnchorRetention:   v.GetDuration("DISCOUNT_ANCHOR_RETENTION"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		RateLimit: RateLimitConfig{
			EstimateLimit: v.GetInt("ESTIMATE_RATE_LIMIT"),
			CheckoutLimit: v.GetInt("CHECKOUT_RATE_LIMIT"),
			Window:        v.GetDuration("RATE_LIMIT_WINDOW"),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			Name:     v.GetString("DB_NAME"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			PoolMin:  v.GetInt("DB_POOL_MIN"),
			PoolMax:  v.GetInt("DB_POOL_MAX"),
		},
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")

	v.SetDefault("SNOW_BASE_RATE_PER_SQFT", 0.06)
	v.SetDefault("SNOW_RATE_PER_1000_SQFT", 0.02)
	v.SetDefault("SNOW_SHORT_JOB_MAX_SQFT", 450)
	v.SetDefault("SNOW_SERVICE_AREA_SQRT_FACTOR", 5)
	v.SetDefault("URGENCY_UPCHARGE_PERCENT", 0.10)

	v.SetDefault("DRIVE_ORIGIN_ADDRESS", "401 Gillette St, La Crosse, WI 54603")
	v.SetDefault("DRIVE_PER_MILE_RATE", 1.5)
	v.SetDefault("DRIVE_HOURLY_RATE", 15)
	v.SetDefault("DRIVE_FREE_MINUTES", 15)

	v.SetDefault("PARCEL_SOURCE", ParcelSourceArcGIS)
	v.SetDefault("PARCEL_LAYER_URL",
		"https://services3.arcgis.com/n6uYoouQZW75n5WI/arcgis/rest/services/Wisconsin_Statewide_Parcels/FeatureServer/0")
	v.SetDefault("PARCEL_BUFFER_METERS", 10)

	v.SetDefault("GEOCODER_URL", "https://nominatim.openstreetmap.org")
	v.SetDefault("GEOCODER_REQUESTS_PER_SECOND", 1)

	v.SetDefault("ORS_URL", "https://api.openrouteservice.org")
	v.SetDefault("OSRM_URL", "https://router.project-osrm.org")

	v.SetDefault("HTTP_USER_AGENT", "SnowRemovel/1.0 (+https://github.com/Carter-75/SnowRemovel)")
	v.SetDefault("HTTP_TIMEOUT", 10*time.Second)
	v.SetDefault("RETRY_MAX_ATTEMPTS", 3)
	v.SetDefault("RETRY_INITIAL_DELAY", time.Second)
	v.SetDefault("RETRY_MAX_DELAY", 10*time.Second)
	v.SetDefault("RETRY_BACKOFF_MULTIPLIER", 2)

	v.SetDefault("DISCOUNT_WINDOW_SECONDS", 600)
	v.SetDefault("DISCOUNT_FIRST_PHASE_SECONDS", 300)
	v.SetDefault("DISCOUNT_MAX_PERCENT", 15)
	v.SetDefault("DISCOUNT_MIN_PERCENT", 10)
	v.SetDefault("DISCOUNT_ANCHOR_RETENTION", 3*365*24*time.Hour)

	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ESTIMATE_RATE_LIMIT", 30)
	v.SetDefault("CHECKOUT_RATE_LIMIT", 10)
	v.SetDefault("RATE_LIMIT_WINDOW", time.Minute)

	v.SetDefault("DB_HOST", "host.docker.internal")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_NAME", "parcels")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_POOL_MIN", 2)
	v.SetDefault("DB_POOL_MAX", 10)
}

// Validate checks that required configuration is present and valid.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	if len(c.CORS.Origins) == 0 {
		return fmt.Errorf("CORS_ORIGINS is required")
	}

	if err := c.validatePricing(); err != nil {
		return err
	}
	if err := c.validateParcel(); err != nil {
		return err
	}

	if c.Geocoder.BaseURL == "" {
		return fmt.Errorf("GEOCODER_URL is required")
	}
	if c.Geocoder.RequestsPerSecond < 0 {
		return fmt.Errorf("GEOCODER_REQUESTS_PER_SECOND must be non-negative")
	}
	if c.Routing.OSRMBaseURL == "" {
		return fmt.Errorf("OSRM_URL is required")
	}

	if c.Upstream.MaxAttempts < 1 {
		return fmt.Errorf("RETRY_MAX_ATTEMPTS must be at least 1")
	}
	if c.Upstream.BackoffMultiplier < 1 {
		return fmt.Errorf("RETRY_BACKOFF_MULTIPLIER must be at least 1")
	}
	if c.Upstream.InitialDelay < 0 || c.Upstream.MaxDelay < c.Upstream.InitialDelay {
		return fmt.Errorf("RETRY_MAX_DELAY must be greater than or equal to RETRY_INITIAL_DELAY")
	}

	if err := c.validateDiscount(); err != nil {
		return err
	}

	if c.RateLimit.EstimateLimit < 1 || c.RateLimit.CheckoutLimit < 1 {
		return fmt.Errorf("ESTIMATE_RATE_LIMIT and CHECKOUT_RATE_LIMIT must be at least 1")
	}
	if c.RateLimit.Window <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be positive")
	}

	return nil
}

func (c *Config) validatePricing() error {
	if c.Pricing.BaseRatePerSqFt <= 0 {
		return fmt.Errorf("SNOW_BASE_RATE_PER_SQFT must be positive")
	}
	if c.Pricing.RatePer1000SqFt < 0 {
		return fmt.Errorf("SNOW_RATE_PER_1000_SQFT must be non-negative")
	}
	if c.Pricing.ShortJobMaxSqFt < 0 {
		return fmt.Errorf("SNOW_SHORT_JOB_MAX_SQFT must be non-negative")
	}
	if c.Pricing.AreaSqrtFactor <= 0 {
		return fmt.Errorf("SNOW_SERVICE_AREA_SQRT_FACTOR must be positive")
	}
	if c.Pricing.UrgencyUpchargePercent < 0 {
		return fmt.Errorf("URGENCY_UPCHARGE_PERCENT must be non-negative")
	}
	if c.Travel.OriginAddress == "" {
		return fmt.Errorf("DRIVE_ORIGIN_ADDRESS is required")
	}
	if c.Travel.PerMileRate < 0 || c.Travel.HourlyRate < 0 || c.Travel.FreeMinutes < 0 {
		return fmt.Errorf("DRIVE_PER_MILE_RATE, DRIVE_HOURLY_RATE and DRIVE_FREE_MINUTES must be non-negative")
	}
	return nil
}

func (c *Config) validateParcel() error {
	if c.Parcel.BufferMeters < 0 {
		return fmt.Errorf("PARCEL_BUFFER_METERS must be non-negative")
	}

	switch c.Parcel.Source {
	case ParcelSourceArcGIS:
		if c.Parcel.LayerURL == "" {
			return fmt.Errorf("PARCEL_LAYER_URL is required when PARCEL_SOURCE=%s", ParcelSourceArcGIS)
		}
	case ParcelSourcePostGIS:
		return c.validateDatabase()
	default:
		return fmt.Errorf("PARCEL_SOURCE must be one of %s, %s; got %q",
			ParcelSourceArcGIS, ParcelSourcePostGIS, c.Parcel.Source)
	}
	return nil
}

func (c *Config) validateDatabase() error {
	if c.Database.Host == "" {
		return fmt.Errorf("DB_HOST is required")
	}
	if c.Database.Port == "" {
		return fmt.Errorf("DB_PORT is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("DB_NAME is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("DB_USER is required")
	}
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.Database.PoolMin < 0 {
		return fmt.Errorf("DB_POOL_MIN must be non-negative")
	}
	if c.Database.PoolMax < 1 {
		return fmt.Errorf("DB_POOL_MAX must be at least 1")
	}
	if c.Database.PoolMin > c.Database.PoolMax {
		return fmt.Errorf("DB_POOL_MIN must be less than or equal to DB_POOL_MAX")
	}
	return nil
}

func (c *Config) validateDiscount() error {
	d := c.Discount
	if d.WindowSeconds <= 0 {
		return fmt.Errorf("DISCOUNT_WINDOW_SECONDS must be positive")
	}
	if d.FirstPhaseSeconds <= 0 || d.FirstPhaseSeconds >= d.WindowSeconds {
		return fmt.Errorf("DISCOUNT_FIRST_PHASE_SECONDS must be between 0 and DISCOUNT_WINDOW_SECONDS")
	}
	if d.MinPercent < 0 || d.MinPercent > d.MaxPercent {
		return fmt.Errorf("DISCOUNT_MIN_PERCENT must be between 0 and DISCOUNT_MAX_PERCENT")
	}
	if d.MaxPercent > 100 {
		return fmt.Errorf("DISCOUNT_MAX_PERCENT must not exceed 100")
	}
	if d.AnchorRetention < time.Duration(d.WindowSeconds)*time.Second {
		return fmt.Errorf("DISCOUNT_ANCHOR_RETENTION must cover the discount window")
	}
	return nil
}

// UsesRedis reports whether Redis-backed stores are configured.
func (c *Config) UsesRedis() bool {
	return c.Redis.Addr != ""
}

// parseOrigins splits a comma-separated string of origins into a slice.
func parseOrigins(origins string) []string {
	if origins == "" {
		return []string{}
	}

	parts := strings.Split(origins, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
