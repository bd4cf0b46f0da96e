package cli

import (
	"fmt"
	"math"
	"time"

	"github.com/spf13/cobra"

	"github.com/tradeinlabs/phoneworth/internal/domain/catalog"
	"github.com/tradeinlabs/phoneworth/internal/domain/depreciation"
	"github.com/tradeinlabs/phoneworth/internal/domain/valuation"
)

// valuationFlags carries the subject-identification flags shared by predict
// and sense.  The subject is either a device key from the launch registry or
// a raw model/release/launch triple.
type valuationFlags struct {
	device    string
	model     string
	release   string
	launch    float64
	storage   int
	condition string
	band      float64
}

func (f *valuationFlags) register(cmd *cobra.Command, defaultCondition depreciation.Condition) {
	fl := cmd.Flags()
	fl.StringVar(&f.device, "device", "", "device key, e.g. iphone_14_pro")
	fl.StringVar(&f.model, "model", "", "model family key, e.g. pixel (alternative to --device)")
	fl.StringVar(&f.release, "release", "", "release date YYYY-MM-DD (with --model)")
	fl.Float64Var(&f.launch, "launch", 0, "launch price in USD (with --model)")
	fl.IntVar(&f.storage, "storage", 0, "storage in GB (required)")
	fl.StringVar(&f.condition, "condition", string(defaultCondition), "condition (Excellent, Very Good, Good)")
	fl.Float64Var(&f.band, "band", valuation.DefaultBand, "confidence band width")
	_ = cmd.MarkFlagRequired("storage")
}

// resolve turns the flags into a valuation request, looking up release date
// and launch price in the launch registry for device-keyed subjects.
func (f *valuationFlags) resolve(launch *catalog.LaunchIndex) (valuation.Request, bool, error) {
	req := valuation.Request{
		StorageGB: f.storage,
		Condition: depreciation.Condition(f.condition),
		Band:      f.band,
	}

	if f.device != "" {
		device, err := launch.GetDevice(f.device)
		if err != nil {
			return req, false, err
		}
		release, err := time.Parse("2006-01-02", device.Release)
		if err != nil {
			return req, false, fmt.Errorf("device %s has an invalid release date: %w", f.device, err)
		}
		price, err := launch.ResolveLaunch(f.device, f.storage)
		if err != nil {
			return req, false, err
		}
		req.ModelKey = device.FamilyKey
		req.Release = release
		req.LaunchPrice = price
		return req, true, nil
	}

	if f.model == "" {
		return req, false, fmt.Errorf("either --device or --model is required")
	}
	release, err := time.Parse("2006-01-02", f.release)
	if err != nil {
		return req, false, fmt.Errorf("invalid or missing --release (want YYYY-MM-DD): %w", err)
	}
	if f.launch <= 0 {
		return req, false, fmt.Errorf("--launch must be a positive price")
	}
	req.ModelKey = depreciation.Family(f.model)
	req.Release = release
	req.LaunchPrice = f.launch
	return req, false, nil
}

// seriesResult wraps a valuation series for table output.
type seriesResult struct {
	valuation.Result
}

func (r seriesResult) TableHeaders() []string {
	return []string{"AGE_MONTHS", "RATIO", "PRICE", "LOW", "HIGH"}
}

func (r seriesResult) TableRows() [][]string {
	rows := make([][]string, 0, len(r.Series))
	for _, s := range r.Series {
		rows = append(rows, []string{
			fmt.Sprintf("%.1f", s.AgeMonths),
			fmt.Sprintf("%.4f", s.Ratio),
			fmt.Sprintf("%.2f", s.PriceUSD),
			fmt.Sprintf("%.2f", s.PriceLowUSD),
			fmt.Sprintf("%.2f", s.PriceHighUSD),
		})
	}
	return rows
}

func newPredictCmd(opts *RootOptions) *cobra.Command {
	flags := &valuationFlags{}
	var horizon, backfill int

	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Print a month-by-month resale price series for a phone",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine := valuation.NewEngine(depreciation.NewRegistry())
			launch := catalog.NewLaunchIndex()

			req, deviceKeyed, err := flags.resolve(launch)
			if err != nil {
				return err
			}

			req.HorizonMonths = horizon
			req.BackfillMonths = backfill
			if backfill < 0 {
				// Device-keyed runs default to the full history since
				// release; raw runs to the standard window.
				req.BackfillMonths = valuation.DefaultBackfillMonths
				if deviceKeyed {
					age := depreciation.MonthsBetween(req.Release, engine.Now())
					req.BackfillMonths = int(math.Ceil(math.Max(0, age)))
				}
			}

			result, err := engine.Evaluate(req)
			if err != nil {
				return err
			}
			return printResult(cmd, opts, seriesResult{Result: *result})
		},
	}

	flags.register(cmd, depreciation.ConditionExcellent)
	cmd.Flags().IntVar(&horizon, "horizon", valuation.DefaultHorizonMonths, "months to project forward")
	cmd.Flags().IntVar(&backfill, "backfill", -1, "months to backfill (-1 for the default window)")
	return cmd
}
