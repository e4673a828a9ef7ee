package services

import (
	"errors"
	"fmt"
)

// ErrEstimateNotFound is the umbrella for every case in which no estimate
// can be produced for an address.
var ErrEstimateNotFound = errors.New("estimate not available")

// Service-level errors. Each wraps ErrEstimateNotFound.
var (
	ErrAddressNotFound     = fmt.Errorf("address not found: %w", ErrEstimateNotFound)
	ErrParcelNotFound      = fmt.Errorf("parcel not found: %w", ErrEstimateNotFound)
	ErrUpstreamUnavailable = fmt.Errorf("upstream unavailable: %w", ErrEstimateNotFound)
)

// ErrInvalidAddress rejects empty or oversized address input.
var ErrInvalidAddress = errors.New("invalid address")

// MaxAddressLength bounds the accepted address text.
const MaxAddressLength = 200
