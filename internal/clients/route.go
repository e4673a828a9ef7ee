package clients

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/Carter-75/SnowRemovel/internal/upstream"
)

// RouteError is a failed routing attempt. Status is the diagnostic string
// recorded on the estimate, e.g. "ORS 401 Unauthorized: invalid key".
type RouteError struct {
	Provider string
	Status   string
	Err      error
}

func (e *RouteError) Error() string {
	return e.Status
}

func (e *RouteError) Unwrap() error {
	return e.Err
}

func missingKey(provider, envKey string) *RouteError {
	return &RouteError{Provider: provider, Status: "Missing " + envKey}
}

// requestFailure renders an upstream error in the provider's status format.
func requestFailure(provider string, err error) *RouteError {
	var statusErr *upstream.StatusError
	if errors.As(err, &statusErr) {
		status := fmt.Sprintf("%s %d %s", provider, statusErr.StatusCode, http.StatusText(statusErr.StatusCode))
		if body := strings.TrimSpace(statusErr.Body); body != "" {
			status += ": " + body
		}
		return &RouteError{Provider: provider, Status: status, Err: err}
	}
	return &RouteError{Provider: provider, Status: provider + " request failed: " + err.Error(), Err: err}
}
