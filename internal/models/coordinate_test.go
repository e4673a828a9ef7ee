package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHaversineMiles(t *testing.T) {
	t.Run("same point is zero", func(t *testing.T) {
		p := Coordinate{Latitude: 43.8138, Longitude: -91.2519}
		assert.Equal(t, 0.0, HaversineMiles(p, p))
	})

	t.Run("one degree of longitude at the equator", func(t *testing.T) {
		d := HaversineMiles(Coordinate{}, Coordinate{Longitude: 1})
		assert.InDelta(t, 69.09, d, 0.01)
	})

	t.Run("symmetric", func(t *testing.T) {
		a := Coordinate{Latitude: 43.8138, Longitude: -91.2519}
		b := Coordinate{Latitude: 44.0, Longitude: -91.0}
		assert.InDelta(t, HaversineMiles(a, b), HaversineMiles(b, a), 1e-12)
	})
}

func TestCoordinateValidate(t *testing.T) {
	tests := []struct {
		name    string
		coord   Coordinate
		wantErr string
	}{
		{name: "valid", coord: Coordinate{Latitude: 43.8, Longitude: -91.2}},
		{name: "boundary", coord: Coordinate{Latitude: -90, Longitude: 180}},
		{name: "latitude too high", coord: Coordinate{Latitude: 91}, wantErr: "latitude must be between"},
		{name: "longitude too low", coord: Coordinate{Longitude: -181}, wantErr: "longitude must be between"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.coord.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestCoordinateFormatting(t *testing.T) {
	c := Coordinate{Latitude: 43.8, Longitude: -91.25}

	assert.Equal(t, "-91.25,43.8", c.LonLat())
	assert.Equal(t, "43.8,-91.25", c.LatLng())
}
