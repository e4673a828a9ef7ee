package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Carter-75/SnowRemovel/internal/models"
	"github.com/Carter-75/SnowRemovel/internal/services"
	"github.com/spf13/cobra"
)

var (
	estimateUrgent bool
	estimateJSON   bool
)

var estimateCmd = &cobra.Command{
	Use:   "estimate [address]",
	Short: "Price snow removal at an address",
	Long: `Geocodes the address, looks up its parcel, routes from the service
origin and prints the resulting estimate.`,
	Args: cobra.ExactArgs(1),
	RunE: runEstimate,
}

func init() {
	estimateCmd.Flags().BoolVar(&estimateUrgent, "urgent", false, "apply the urgent service upcharge")
	estimateCmd.Flags().BoolVar(&estimateJSON, "json", false, "output the estimate as JSON")
	rootCmd.AddCommand(estimateCmd)
}

// estimateOutput is the JSON form of an estimate, with the route status
// operators need for diagnosing travel fees.
type estimateOutput struct {
	models.Estimate
	RouteStatus string `json:"routeStatus"`
}

func runEstimate(cmd *cobra.Command, args []string) error {
	if pricingService == nil {
		return errors.New("pricing service not configured")
	}

	estimate, err := pricingService.Estimate(cmd.Context(), args[0], estimateUrgent)
	if err != nil {
		if errors.Is(err, services.ErrEstimateNotFound) {
			return fmt.Errorf("no estimate for %q: %w", args[0], err)
		}
		return fmt.Errorf("estimate failed: %w", err)
	}

	if estimateJSON {
		data, err := json.MarshalIndent(estimateOutput{Estimate: *estimate, RouteStatus: estimate.RouteStatus}, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal estimate: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	printEstimate(cmd, estimate)
	return nil
}

func printEstimate(cmd *cobra.Command, e *models.Estimate) {
	cmd.Printf("Job type:      %s\n", e.JobType)
	cmd.Printf("Area:          %.1f sq ft\n", e.AreaSqFt)
	cmd.Printf("Rate:          $%.4f / sq ft\n", e.DynamicRate)
	cmd.Printf("Base price:    $%.2f\n", e.BasePrice)
	if e.UpchargeApplied {
		cmd.Printf("Urgency fee:   $%.2f\n", e.UpchargeAmount)
	}
	cmd.Printf("Price:         $%.2f\n", e.Price)
	cmd.Printf("Drive:         %.2f mi, %.1f min one way\n", e.DriveMiles, e.DriveMinutes)
	cmd.Printf("Drive fee:     $%.2f\n", e.DriveFee)
	cmd.Printf("Route status:  %s\n", e.RouteStatus)
	cmd.Printf("Total:         $%.2f\n", e.Price+e.DriveFee)
}
