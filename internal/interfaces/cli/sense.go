package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tradeinlabs/phoneworth/internal/domain/catalog"
	"github.com/tradeinlabs/phoneworth/internal/domain/depreciation"
	"github.com/tradeinlabs/phoneworth/internal/domain/valuation"
)

// senseResult is the single current-value estimate.
type senseResult struct {
	Meta  valuation.Meta   `json:"meta"`
	Value valuation.Sample `json:"value"`
}

func (r senseResult) TableHeaders() []string {
	return []string{"MODEL", "AGE_MONTHS", "CONDITION", "PRICE", "LOW", "HIGH"}
}

func (r senseResult) TableRows() [][]string {
	return [][]string{{
		r.Meta.ModelKey,
		fmt.Sprintf("%.1f", r.Meta.TodayAge),
		r.Meta.Condition,
		fmt.Sprintf("%.2f", r.Value.PriceUSD),
		fmt.Sprintf("%.2f", r.Value.PriceLowUSD),
		fmt.Sprintf("%.2f", r.Value.PriceHighUSD),
	}}
}

func newSenseCmd(opts *RootOptions) *cobra.Command {
	flags := &valuationFlags{}

	cmd := &cobra.Command{
		Use:   "sense",
		Short: "Estimate what a phone is worth today",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine := valuation.NewEngine(depreciation.NewRegistry())
			launch := catalog.NewLaunchIndex()

			req, _, err := flags.resolve(launch)
			if err != nil {
				return err
			}

			result, err := engine.EvaluatePoint(req)
			if err != nil {
				return err
			}
			return printResult(cmd, opts, senseResult{Meta: result.Meta, Value: result.Today()})
		},
	}

	flags.register(cmd, depreciation.ConditionGood)
	return cmd
}
