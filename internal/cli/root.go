// Package cli implements the snowquote operator tool.
package cli

import (
	"context"
	"os"

	"github.com/Carter-75/SnowRemovel/internal/services"
	"github.com/spf13/cobra"
)

var (
	pricingService services.PricingService
	discountClock  services.DiscountClock
)

var rootCmd = &cobra.Command{
	Use:   "snowquote",
	Short: "Price snow removal jobs from the command line",
	Long: `snowquote runs the estimation engine against the live geocoder,
parcel source and route providers configured in the environment.`,
	SilenceUsage: true,
}

// SetPricingService injects the engine used by the estimate command.
func SetPricingService(s services.PricingService) {
	pricingService = s
}

// SetDiscountClock injects the clock used by the discount command.
func SetDiscountClock(c services.DiscountClock) {
	discountClock = c
}

// Execute runs the root command. Results go to stdout; logs and errors
// go to stderr.
func Execute(ctx context.Context) error {
	rootCmd.SetOut(os.Stdout)
	return rootCmd.ExecuteContext(ctx)
}
