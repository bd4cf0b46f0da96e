// Package valuation turns a depreciation model into concrete price estimates:
// either a single "as of today" point or a month-by-month series spanning a
// backfill/horizon window around today, each with a symmetric confidence band.
package valuation

import (
	"math"
	"time"

	"github.com/tradeinlabs/phoneworth/internal/domain/depreciation"
	"github.com/tradeinlabs/phoneworth/pkg/errors"
)

// Defaults applied by the HTTP layer; exposed here so the CLI shares them.
const (
	DefaultHorizonMonths  = 24
	DefaultBackfillMonths = 6
	DefaultBand           = 0.1

	// maxBand bounds the confidence band width; anything wider produces a
	// meaningless "between zero and double" estimate.
	maxBand = 0.9
)

// Request carries the inputs for a series or point evaluation.
type Request struct {
	ModelKey       depreciation.Family
	Release        time.Time
	LaunchPrice    float64
	StorageGB      int
	Condition      depreciation.Condition
	HorizonMonths  int
	BackfillMonths int
	Band           float64
}

// Sample is one point of a valuation series.
type Sample struct {
	AgeMonths    float64 `json:"ageMonths"`
	Ratio        float64 `json:"ratio"`
	PriceUSD     float64 `json:"priceUSD"`
	PriceLowUSD  float64 `json:"priceLowUSD"`
	PriceHighUSD float64 `json:"priceHighUSD"`
}

// Meta echoes the resolved evaluation parameters back to the caller.
type Meta struct {
	ModelKey    string  `json:"modelKey"`
	ModelName   string  `json:"modelName"`
	Samples     int     `json:"samples"`
	Release     string  `json:"release"`
	TodayAge    float64 `json:"todayAge"`
	StorageGb   int     `json:"storageGb"`
	Condition   string  `json:"condition"`
	LaunchPrice float64 `json:"launchPrice"`
	Horizon     int     `json:"horizon"`
	Backfill    int     `json:"backfill"`
	Band        float64 `json:"band"`
}

// Result is a valuation series with its metadata.
type Result struct {
	Meta   Meta     `json:"meta"`
	Series []Sample `json:"series"`
}

// Today returns the sample closest to today's age, which for point
// evaluations is the only sample.
func (r *Result) Today() Sample {
	if len(r.Series) == 0 {
		return Sample{}
	}
	best := r.Series[0]
	for _, s := range r.Series[1:] {
		if math.Abs(s.AgeMonths-r.Meta.TodayAge) < math.Abs(best.AgeMonths-r.Meta.TodayAge) {
			best = s
		}
	}
	return best
}

// Engine evaluates valuation series against a model registry.  The clock is
// injectable so tests can pin "today".
type Engine struct {
	registry *depreciation.Registry
	now      func() time.Time
}

// Option customizes an Engine.
type Option func(*Engine)

// WithClock overrides the engine's notion of now.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine constructs an Engine over the given registry.
func NewEngine(registry *depreciation.Registry, opts ...Option) *Engine {
	e := &Engine{registry: registry, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Now exposes the engine's clock so collaborators age phones consistently
// with the valuations they receive.
func (e *Engine) Now() time.Time { return e.now() }

// Registry exposes the model registry the engine evaluates against.
func (e *Engine) Registry() *depreciation.Registry { return e.registry }

// Evaluate computes a valuation series for the request.  Invalid numeric
// inputs are defensively clamped rather than rejected: band to [0, 0.9],
// horizon and backfill to non-negative.  A missing release date or
// non-positive launch price has no sane default and is rejected; an unknown
// model key is a configuration error.
func (e *Engine) Evaluate(req Request) (*Result, error) {
	model, err := e.registry.Get(req.ModelKey)
	if err != nil {
		return nil, err
	}
	if req.Release.IsZero() {
		return nil, errors.Validation("release date is required")
	}
	if req.LaunchPrice <= 0 {
		return nil, errors.Validation("launch price must be positive")
	}

	horizon := maxInt(0, req.HorizonMonths)
	backfill := maxInt(0, req.BackfillMonths)
	band := math.Max(0, math.Min(maxBand, req.Band))

	now := e.now()
	todayAge := math.Max(0, depreciation.MonthsBetween(req.Release, now))

	startAge := math.Max(0, todayAge-float64(backfill))
	endAge := todayAge + float64(horizon)

	var series []Sample
	// Small epsilon on the upper bound tolerates floating-point step
	// accumulation so the final sample is never dropped.
	for age := startAge; age <= endAge+1e-9; age++ {
		ratio := model.ComputeRatio(age, req.StorageGB, req.Condition, req.Release, now)
		price := math.Max(0, ratio*req.LaunchPrice)
		series = append(series, Sample{
			AgeMonths:    round2(age),
			Ratio:        round4(ratio),
			PriceUSD:     round2(price),
			PriceLowUSD:  round2((1 - band) * price),
			PriceHighUSD: round2((1 + band) * price),
		})
	}

	return &Result{
		Meta: Meta{
			ModelKey:    string(req.ModelKey),
			ModelName:   model.Name(),
			Samples:     model.Samples(),
			Release:     req.Release.Format("2006-01-02"),
			TodayAge:    round2(todayAge),
			StorageGb:   req.StorageGB,
			Condition:   string(req.Condition),
			LaunchPrice: req.LaunchPrice,
			Horizon:     horizon,
			Backfill:    backfill,
			Band:        band,
		},
		Series: series,
	}, nil
}

// EvaluatePoint is the degenerate series (horizon 0, backfill 0): a single
// sample representing today's estimate.  Used by "sense current value"
// queries.
func (e *Engine) EvaluatePoint(req Request) (*Result, error) {
	req.HorizonMonths = 0
	req.BackfillMonths = 0
	return e.Evaluate(req)
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round4(v float64) float64 { return math.Round(v*10000) / 10000 }

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
