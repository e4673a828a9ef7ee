package models

import "time"

// JobType classifies a job by its effective service area.
type JobType string

const (
	JobTypeShort JobType = "Short job"
	JobTypeLong  JobType = "Long job"
)

// ParcelFeature is one candidate returned by a parcel source.
// Geometry is nil when the source returned a feature without rings.
type ParcelFeature struct {
	Geometry *Polygon
}

// Area returns the feature's planar area, or 0 without geometry.
func (f ParcelFeature) Area() float64 {
	if f.Geometry == nil {
		return 0
	}
	return f.Geometry.Area()
}

// DriveSummary is a one-way route as reported by a routing provider.
type DriveSummary struct {
	DistanceMeters  float64 `json:"distanceMeters"`
	DurationSeconds float64 `json:"durationSeconds"`
}

// Usable reports whether both distance and duration are positive.
func (d DriveSummary) Usable() bool {
	return d.DistanceMeters > 0 && d.DurationSeconds > 0
}

// Estimate is a priced snow-removal estimate. All numeric fields are
// rounded once, when the estimate is built.
type Estimate struct {
	Timestamp        time.Time `json:"timestamp"`
	JobType          JobType   `json:"jobType"`
	RouteStatus      string    `json:"-"`
	AreaSqFt         float64   `json:"sqft"`
	DynamicRate      float64   `json:"rate"`
	BasePrice        float64   `json:"basePrice"`
	UpchargeAmount   float64   `json:"upchargeAmount"`
	Price            float64   `json:"price"`
	DriveMiles       float64   `json:"driveMiles"`
	DriveMinutes     float64   `json:"driveMinutes"`
	RoundTripMiles   float64   `json:"roundTripMiles"`
	RoundTripMinutes float64   `json:"roundTripMinutes"`
	DriveFee         float64   `json:"driveFee"`
	UpchargeApplied  bool      `json:"upchargeApplied"`
}
