package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/Carter-75/SnowRemovel/internal/models"
	"github.com/Carter-75/SnowRemovel/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAddress = "1725 State St, La Crosse, WI 54601"

type stubPricingService struct {
	estimate *models.Estimate
	err      error

	gotAddress string
	gotUrgent  bool
}

func (s *stubPricingService) Estimate(ctx context.Context, address string, urgent bool) (*models.Estimate, error) {
	s.gotAddress = address
	s.gotUrgent = urgent
	return s.estimate, s.err
}

func sampleEstimate() *models.Estimate {
	return &models.Estimate{
		Timestamp:       time.Date(2026, 1, 10, 8, 0, 0, 0, time.UTC),
		JobType:         models.JobTypeLong,
		AreaSqFt:        500,
		DynamicRate:     0.0635,
		BasePrice:       31.76,
		UpchargeAmount:  3.18,
		Price:           34.94,
		DriveMiles:      1.12,
		DriveMinutes:    10,
		DriveFee:        5,
		UpchargeApplied: true,
		RouteStatus:     "OK via OSRM (Missing ORS_API_KEY)",
	}
}

// run executes the root command with args and returns its output.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	estimateUrgent, estimateJSON, discountStep = false, false, 60

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}

func TestEstimateCmd_Table(t *testing.T) {
	stub := &stubPricingService{estimate: sampleEstimate()}
	SetPricingService(stub)
	defer SetPricingService(nil)

	out, err := run(t, "estimate", testAddress, "--urgent")

	require.NoError(t, err)
	assert.Equal(t, testAddress, stub.gotAddress)
	assert.True(t, stub.gotUrgent)
	assert.Contains(t, out, "Long job")
	assert.Contains(t, out, "$0.0635 / sq ft")
	assert.Contains(t, out, "Urgency fee:   $3.18")
	assert.Contains(t, out, "Price:         $34.94")
	assert.Contains(t, out, "Route status:  OK via OSRM (Missing ORS_API_KEY)")
	assert.Contains(t, out, "Total:         $39.94")
}

func TestEstimateCmd_JSON(t *testing.T) {
	SetPricingService(&stubPricingService{estimate: sampleEstimate()})
	defer SetPricingService(nil)

	out, err := run(t, "estimate", testAddress, "--json")
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, 34.94, decoded["price"])
	assert.Equal(t, 500.0, decoded["sqft"])
	assert.Equal(t, "OK via OSRM (Missing ORS_API_KEY)", decoded["routeStatus"])
}

func TestEstimateCmd_NotFound(t *testing.T) {
	SetPricingService(&stubPricingService{err: services.ErrAddressNotFound})
	defer SetPricingService(nil)

	_, err := run(t, "estimate", "nowhere")

	require.Error(t, err)
	assert.ErrorIs(t, err, services.ErrEstimateNotFound)
	assert.Contains(t, err.Error(), `no estimate for "nowhere"`)
}

func TestEstimateCmd_RequiresAddress(t *testing.T) {
	SetPricingService(&stubPricingService{estimate: sampleEstimate()})
	defer SetPricingService(nil)

	_, err := run(t, "estimate")

	assert.Error(t, err)
}

func TestEstimateCmd_NotConfigured(t *testing.T) {
	SetPricingService(nil)

	_, err := run(t, "estimate", testAddress)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "pricing service not configured")
}

func TestDiscountCmd(t *testing.T) {
	SetDiscountClock(services.NewDiscountClock(services.DiscountConfig{
		WindowSeconds:     600,
		FirstPhaseSeconds: 300,
		MaxPercent:        15,
		MinPercent:        10,
	}))
	defer SetDiscountClock(services.DiscountClock{})

	out, err := run(t, "discount", "--step", "150")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 6)
	assert.Contains(t, lines[0], "PERCENT")
	assert.Contains(t, lines[1], "15.00%")
	assert.Contains(t, lines[2], "12.50%")
	assert.Contains(t, lines[3], "10.00%")
	assert.Contains(t, lines[4], "5.00%")
	assert.Contains(t, lines[5], "0.00%")
}

func TestDiscountCmd_InvalidStep(t *testing.T) {
	_, err := run(t, "discount", "--step", "0")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "--step must be at least 1")
}
