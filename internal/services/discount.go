package services

import (
	"math"
	"time"

	"github.com/Carter-75/SnowRemovel/internal/config"
)

// DiscountConfig holds the shape of the discount curve, in seconds and
// percent.
type DiscountConfig struct {
	WindowSeconds     float64
	FirstPhaseSeconds float64
	MaxPercent        float64
	MinPercent        float64
}

// NewDiscountConfig copies the discount section of cfg.
func NewDiscountConfig(cfg *config.Config) DiscountConfig {
	return DiscountConfig{
		WindowSeconds:     cfg.Discount.WindowSeconds,
		FirstPhaseSeconds: cfg.Discount.FirstPhaseSeconds,
		MaxPercent:        cfg.Discount.MaxPercent,
		MinPercent:        cfg.Discount.MinPercent,
	}
}

// DiscountStatus is the discount in effect at a point in time.
type DiscountStatus struct {
	Percent        float64 `json:"percent"`
	SecondsLeft    int64   `json:"secondsLeft"`
	Expired        bool    `json:"expired"`
	ElapsedSeconds int64   `json:"-"`
}

// DiscountClock computes the promotional discount for a quote anchored at
// a given time. It has no state; the same anchor and now always give the
// same percent.
type DiscountClock struct {
	cfg DiscountConfig
}

// NewDiscountClock creates a DiscountClock.
func NewDiscountClock(cfg DiscountConfig) DiscountClock {
	return DiscountClock{cfg: cfg}
}

// Config returns the curve the clock was built with.
func (c DiscountClock) Config() DiscountConfig {
	return c.cfg
}

// Percent returns the discount percent for a quote anchored at anchor.
func (c DiscountClock) Percent(anchor, now time.Time) float64 {
	return c.PercentAt(elapsedSeconds(anchor, now))
}

// PercentAt returns the discount percent after elapsed whole seconds.
// Negative elapsed values are treated as zero.
func (c DiscountClock) PercentAt(elapsed int64) float64 {
	if elapsed < 0 {
		elapsed = 0
	}
	e := float64(elapsed)
	cfg := c.cfg

	switch {
	case e <= cfg.FirstPhaseSeconds:
		return cfg.MaxPercent - (e/cfg.FirstPhaseSeconds)*(cfg.MaxPercent-cfg.MinPercent)
	case e < cfg.WindowSeconds:
		phase := (e - cfg.FirstPhaseSeconds) / (cfg.WindowSeconds - cfg.FirstPhaseSeconds)
		return math.Max(0, cfg.MinPercent-phase*cfg.MinPercent)
	default:
		return 0
	}
}

// Status returns the percent together with the countdown shown to clients.
func (c DiscountClock) Status(anchor, now time.Time) DiscountStatus {
	elapsed := elapsedSeconds(anchor, now)

	secondsLeft := int64(c.cfg.WindowSeconds) - elapsed
	if secondsLeft < 0 {
		secondsLeft = 0
	}

	percent := c.PercentAt(elapsed)
	return DiscountStatus{
		Percent:        percent,
		SecondsLeft:    secondsLeft,
		Expired:        percent <= 0,
		ElapsedSeconds: elapsed,
	}
}

// elapsedSeconds floors now-anchor to whole seconds, clamped at zero for
// anchors in the future.
func elapsedSeconds(anchor, now time.Time) int64 {
	elapsed := int64(math.Floor(now.Sub(anchor).Seconds()))
	if elapsed < 0 {
		return 0
	}
	return elapsed
}
