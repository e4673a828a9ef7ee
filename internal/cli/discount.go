package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var discountStep int

var discountCmd = &cobra.Command{
	Use:   "discount",
	Short: "Print the discount curve over the offer window",
	Args:  cobra.NoArgs,
	RunE:  runDiscount,
}

func init() {
	discountCmd.Flags().IntVar(&discountStep, "step", 60, "seconds between rows")
	rootCmd.AddCommand(discountCmd)
}

func runDiscount(cmd *cobra.Command, _ []string) error {
	if discountStep < 1 {
		return fmt.Errorf("--step must be at least 1, got %d", discountStep)
	}

	window := int64(discountClock.Config().WindowSeconds)
	if window <= 0 {
		return errors.New("discount clock not configured")
	}

	cmd.Printf("%8s  %8s  %12s\n", "ELAPSED", "PERCENT", "SECONDS LEFT")
	for e := int64(0); e <= window; e += int64(discountStep) {
		cmd.Printf("%7ds  %7.2f%%  %12d\n", e, discountClock.PercentAt(e), window-e)
	}
	return nil
}
