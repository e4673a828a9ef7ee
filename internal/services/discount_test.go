package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func defaultDiscountConfig() DiscountConfig {
	return DiscountConfig{
		WindowSeconds:     600,
		FirstPhaseSeconds: 300,
		MaxPercent:        15,
		MinPercent:        10,
	}
}

func TestDiscountClock_PercentAt(t *testing.T) {
	clock := NewDiscountClock(defaultDiscountConfig())

	tests := []struct {
		elapsed int64
		want    float64
	}{
		{elapsed: -30, want: 15},
		{elapsed: 0, want: 15},
		{elapsed: 150, want: 12.5},
		{elapsed: 300, want: 10},
		{elapsed: 450, want: 5},
		{elapsed: 599, want: 10.0 / 300},
		{elapsed: 600, want: 0},
		{elapsed: 3600, want: 0},
	}

	for _, tt := range tests {
		assert.InDelta(t, tt.want, clock.PercentAt(tt.elapsed), 1e-9, "elapsed %d", tt.elapsed)
	}
}

func TestDiscountClock_Monotonic(t *testing.T) {
	clock := NewDiscountClock(defaultDiscountConfig())

	prev := clock.PercentAt(0)
	for e := int64(1); e <= 700; e++ {
		p := clock.PercentAt(e)
		assert.LessOrEqual(t, p, prev, "percent rose at %ds", e)
		assert.GreaterOrEqual(t, p, 0.0)
		prev = p
	}
}

func TestDiscountClock_PercentFloorsElapsed(t *testing.T) {
	clock := NewDiscountClock(defaultDiscountConfig())
	anchor := time.Date(2026, 1, 10, 8, 0, 0, 0, time.UTC)

	got := clock.Percent(anchor, anchor.Add(299*time.Second+900*time.Millisecond))

	assert.InDelta(t, 15-(299.0/300)*5, got, 1e-9)
}

func TestDiscountClock_Status(t *testing.T) {
	clock := NewDiscountClock(defaultDiscountConfig())
	anchor := time.Date(2026, 1, 10, 8, 0, 0, 0, time.UTC)

	t.Run("running", func(t *testing.T) {
		status := clock.Status(anchor, anchor.Add(2*time.Minute))
		assert.InDelta(t, 13.0, status.Percent, 1e-9)
		assert.Equal(t, int64(480), status.SecondsLeft)
		assert.Equal(t, int64(120), status.ElapsedSeconds)
		assert.False(t, status.Expired)
	})

	t.Run("expired", func(t *testing.T) {
		status := clock.Status(anchor, anchor.Add(11*time.Minute))
		assert.Zero(t, status.Percent)
		assert.Zero(t, status.SecondsLeft)
		assert.True(t, status.Expired)
	})

	t.Run("anchor in the future", func(t *testing.T) {
		status := clock.Status(anchor, anchor.Add(-time.Minute))
		assert.Equal(t, 15.0, status.Percent)
		assert.Equal(t, int64(600), status.SecondsLeft)
		assert.Zero(t, status.ElapsedSeconds)
	})
}

func TestDiscountClock_CustomCurve(t *testing.T) {
	clock := NewDiscountClock(DiscountConfig{
		WindowSeconds:     100,
		FirstPhaseSeconds: 50,
		MaxPercent:        20,
		MinPercent:        4,
	})

	assert.InDelta(t, 20.0, clock.PercentAt(0), 1e-9)
	assert.InDelta(t, 12.0, clock.PercentAt(25), 1e-9)
	assert.InDelta(t, 4.0, clock.PercentAt(50), 1e-9)
	assert.InDelta(t, 2.0, clock.PercentAt(75), 1e-9)
	assert.Zero(t, clock.PercentAt(100))
}
