package services

import (
	"context"
	"time"

	"github.com/Carter-75/SnowRemovel/internal/models"
	"github.com/stretchr/testify/mock"
)

// MockGeocoder is a mock implementation of Geocoder for testing
type MockGeocoder struct {
	mock.Mock
}

func (m *MockGeocoder) Geocode(ctx context.Context, address string) (models.Coordinate, bool, error) {
	args := m.Called(ctx, address)
	return args.Get(0).(models.Coordinate), args.Bool(1), args.Error(2)
}

// MockParcelSource is a mock implementation of ParcelSource for testing
type MockParcelSource struct {
	mock.Mock
}

func (m *MockParcelSource) FeaturesNear(ctx context.Context, coord models.Coordinate) ([]models.ParcelFeature, error) {
	args := m.Called(ctx, coord)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ParcelFeature), args.Error(1)
}

// MockParcelService is a mock implementation of ParcelService for testing
type MockParcelService struct {
	mock.Mock
}

func (m *MockParcelService) LookupAreaSqMeters(ctx context.Context, coord models.Coordinate) (float64, error) {
	args := m.Called(ctx, coord)
	return args.Get(0).(float64), args.Error(1)
}

// MockRoutingService is a mock implementation of RoutingService for testing
type MockRoutingService struct {
	mock.Mock
}

func (m *MockRoutingService) DriveSummary(ctx context.Context, origin, destination models.Coordinate) (models.DriveSummary, string, bool) {
	args := m.Called(ctx, origin, destination)
	return args.Get(0).(models.DriveSummary), args.String(1), args.Bool(2)
}

// MockRouteProvider is a mock implementation of RouteProvider for testing
type MockRouteProvider struct {
	mock.Mock
	name string
}

func newMockRouteProvider(name string) *MockRouteProvider {
	return &MockRouteProvider{name: name}
}

func (m *MockRouteProvider) Name() string {
	return m.name
}

func (m *MockRouteProvider) Route(ctx context.Context, origin, destination models.Coordinate) (models.DriveSummary, error) {
	args := m.Called(ctx, origin, destination)
	return args.Get(0).(models.DriveSummary), args.Error(1)
}

// MockPricingService is a mock implementation of PricingService for testing
type MockPricingService struct {
	mock.Mock
}

func (m *MockPricingService) Estimate(ctx context.Context, address string, urgent bool) (*models.Estimate, error) {
	args := m.Called(ctx, address, urgent)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Estimate), args.Error(1)
}

// MockAnchorStore is a mock implementation of repository.AnchorStore for testing
type MockAnchorStore struct {
	mock.Mock
}

func (m *MockAnchorStore) Anchor(ctx context.Context, key string, now time.Time) (time.Time, bool, error) {
	args := m.Called(ctx, key, now)
	return args.Get(0).(time.Time), args.Bool(1), args.Error(2)
}

func (m *MockAnchorStore) Lookup(ctx context.Context, key string) (time.Time, bool, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(time.Time), args.Bool(1), args.Error(2)
}
