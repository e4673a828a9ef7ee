package errors

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/Carter-75/SnowRemovel/internal/logger"
	"github.com/Carter-75/SnowRemovel/internal/middleware"
	"github.com/gin-gonic/gin"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testRequestID = "9f1c2a7e-3b44-4c1d-8e2f-5a6b7c8d9e0f"

func init() {
	gin.SetMode(gin.TestMode)
}

// newEstimateContext is a POST /api/v1/estimate context carrying the
// request ID and logger the middleware would set.
func newEstimateContext() (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/estimate", nil)
	c.Set(middleware.LoggerKey, logger.Nop())
	c.Set(middleware.RequestIDKey, testRequestID)
	return c, w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var response ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	return response
}

func TestNotFound(t *testing.T) {
	tests := []struct {
		name    string
		message string
	}{
		{name: "address does not geocode", message: "We could not find that address. Please check it and try again"},
		{name: "no parcel at address", message: "We could not find a property boundary at that address"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := newEstimateContext()

			NotFound(c, tt.message)

			assert.Equal(t, http.StatusNotFound, w.Code)
			response := decode(t, w)
			assert.Equal(t, ErrNotFound, response.Error.Code)
			assert.Equal(t, tt.message, response.Error.Message)
			assert.Equal(t, testRequestID, response.Error.RequestID)
			assert.Nil(t, response.Error.Details)
		})
	}
}

func TestBadRequest_InvalidAddress(t *testing.T) {
	c, w := newEstimateContext()

	BadRequest(c, "invalid address: must be 1 to 200 characters", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	response := decode(t, w)
	assert.Equal(t, ErrBadRequest, response.Error.Code)
	assert.Nil(t, response.Error.Details)
}

func TestServiceUnavailable(t *testing.T) {
	c, w := newEstimateContext()

	ServiceUnavailable(c, "Address lookup is temporarily unavailable, please try again shortly",
		errors.New("nominatim: dial tcp: connection refused"))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	response := decode(t, w)
	assert.Equal(t, ErrUnavailable, response.Error.Code)
	assert.Equal(t, testRequestID, response.Error.RequestID)
	assert.NotContains(t, w.Body.String(), "connection refused")
}

func TestInternalServerError_HidesCause(t *testing.T) {
	c, w := newEstimateContext()

	InternalServerError(c, "Failed to compute estimate", errors.New("pricing: NaN area"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	response := decode(t, w)
	assert.Equal(t, ErrInternalServer, response.Error.Code)
	assert.NotContains(t, w.Body.String(), "NaN")
}

func TestValidationError_BlankAddress(t *testing.T) {
	c, w := newEstimateContext()

	validate := validator.New()
	require.NoError(t, validate.RegisterValidation("notblank", validators.NotBlank))

	type estimateRequest struct {
		Address string `validate:"required,notblank,max=200"`
		Email   string `validate:"omitempty,email"`
	}
	err := validate.Struct(estimateRequest{Address: "   ", Email: "not-an-email"})

	var validationErrors validator.ValidationErrors
	require.ErrorAs(t, err, &validationErrors)

	ValidationError(c, validationErrors)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	response := decode(t, w)
	assert.Equal(t, ErrValidation, response.Error.Code)
	assert.Equal(t, testRequestID, response.Error.RequestID)
	assert.Equal(t, map[string]interface{}{
		"Address": "Must not be blank",
		"Email":   "Must be a valid email address",
	}, response.Error.Details)
}

// blockingCounter reports every request as over its limit.
type blockingCounter struct{}

func (blockingCounter) Increment(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	return 100, 30 * time.Second, nil
}

func TestRateLimitedResponseUsesEnvelope(t *testing.T) {
	router := gin.New()
	router.Use(middleware.RequestID())
	router.POST("/api/v1/checkout/quote",
		middleware.RateLimit("checkout", blockingCounter{}, 10, time.Minute, logger.Nop()),
		func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/checkout/quote", nil))

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	response := decode(t, w)
	assert.Equal(t, ErrRateLimited, response.Error.Code)
	assert.Equal(t, w.Header().Get(middleware.RequestIDHeader), response.Error.RequestID)
	assert.Equal(t, 30.0, response.Error.Details["retry_after_seconds"])
}

func TestFormatValidationError(t *testing.T) {
	tests := []struct {
		tag      string
		param    string
		expected string
	}{
		{tag: "required", expected: "This field is required"},
		{tag: "notblank", expected: "Must not be blank"},
		{tag: "email", expected: "Must be a valid email address"},
		{tag: "max", param: "200", expected: "Must be at most 200 characters"},
		{tag: "gt", param: "0", expected: "Must be greater than 0"},
		{tag: "gte", param: "0", expected: "Must be greater than or equal to 0"},
		{tag: "uuid", expected: "Validation failed for tag: uuid"},
	}

	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			assert.Equal(t, tt.expected, formatValidationError(&fieldError{tag: tt.tag, param: tt.param}))
		})
	}
}

// fieldError is a minimal validator.FieldError.
type fieldError struct {
	tag   string
	param string
}

func (f *fieldError) Tag() string                    { return f.tag }
func (f *fieldError) ActualTag() string              { return f.tag }
func (f *fieldError) Namespace() string              { return "" }
func (f *fieldError) StructNamespace() string        { return "" }
func (f *fieldError) Field() string                  { return "Address" }
func (f *fieldError) StructField() string            { return "Address" }
func (f *fieldError) Value() interface{}             { return nil }
func (f *fieldError) Param() string                  { return f.param }
func (f *fieldError) Kind() reflect.Kind             { return reflect.String }
func (f *fieldError) Type() reflect.Type             { return nil }
func (f *fieldError) Translate(ut.Translator) string { return "" }
func (f *fieldError) Error() string                  { return "" }
