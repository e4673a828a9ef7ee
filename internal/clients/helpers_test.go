package clients

import (
	"time"

	"github.com/Carter-75/SnowRemovel/internal/upstream"
)

func newTestUpstream() *upstream.Client {
	return upstream.New(upstream.Config{
		UserAgent:         "SnowRemovelTest/1.0",
		Timeout:           2 * time.Second,
		MaxAttempts:       2,
		InitialDelay:      time.Millisecond,
		MaxDelay:          2 * time.Millisecond,
		BackoffMultiplier: 2,
	}, nil)
}
