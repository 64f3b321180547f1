package commands

import (
	"context"
	"fmt"

	"github.com/costlens/costlens/pkg/pricing"
	"github.com/spf13/cobra"
)

var (
	pricingRegion string
	pricingOut    string
)

var PricingCmd = &cobra.Command{
	Use:   "pricing",
	Short: "Pricing table maintenance",
	Run:   nil,
}

var pricingDriftCmd = &cobra.Command{
	Use:   "drift",
	Short: "Compare embedded rates against the live AWS Pricing API",
	Long: `Query the AWS Pricing API for the instance classes in the embedded
table and report the drift. Maintainer tooling; requires AWS credentials.
Analysis itself never talks to AWS.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		logger := newLogger()

		refresher, err := pricing.NewRefresher(ctx, logger, pricingRegion)
		if err != nil {
			return err
		}
		drifts, err := refresher.CheckDrift(ctx)
		if err != nil {
			return err
		}

		for _, d := range drifts {
			fmt.Printf("%-24s embedded %.4f  live %.4f\n", d.Key, d.Embedded, d.Live)
		}
		if pricingOut != "" {
			if err := pricing.WriteReport(pricingOut, drifts); err != nil {
				return err
			}
			fmt.Printf("report written to %s\n", pricingOut)
		}
		return nil
	},
}

func init() {
	pricingDriftCmd.Flags().StringVar(&pricingRegion, "region", "us-east-1", "AWS region to price against")
	pricingDriftCmd.Flags().StringVar(&pricingOut, "out", "", "Write the drift report JSON to this path")
	PricingCmd.AddCommand(pricingDriftCmd)

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the embedded pricing table version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(pricing.Version)
		},
	}
	PricingCmd.AddCommand(versionCmd)
}
