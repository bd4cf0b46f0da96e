package valuation

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradeinlabs/phoneworth/internal/domain/depreciation"
)

var testNow = time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)

func testEngine() *Engine {
	return NewEngine(depreciation.NewRegistry(), WithClock(func() time.Time { return testNow }))
}

func TestEvaluate_SeriesWindow(t *testing.T) {
	release := testNow.AddDate(0, 0, -609) // ~20.01 months at 30.44 days/month
	res, err := testEngine().Evaluate(Request{
		ModelKey:       depreciation.FamilyIphoneBase,
		Release:        release,
		LaunchPrice:    799,
		StorageGB:      128,
		Condition:      depreciation.ConditionGood,
		HorizonMonths:  24,
		BackfillMonths: 6,
		Band:           0.1,
	})
	require.NoError(t, err)

	todayAge := depreciation.MonthsBetween(release, testNow)
	assert.InDelta(t, todayAge, res.Meta.TodayAge, 0.01)

	// Window is [todayAge-6, todayAge+24] inclusive at 1-month steps.
	require.Len(t, res.Series, 31)
	assert.InDelta(t, todayAge-6, res.Series[0].AgeMonths, 0.01)
	assert.InDelta(t, todayAge+24, res.Series[len(res.Series)-1].AgeMonths, 0.01)

	for _, s := range res.Series {
		assert.GreaterOrEqual(t, s.PriceUSD, 0.0)
		assert.InDelta(t, 0.9*s.PriceUSD, s.PriceLowUSD, 0.011)
		assert.InDelta(t, 1.1*s.PriceUSD, s.PriceHighUSD, 0.011)
	}
}

func TestEvaluate_BackfillClampedAtReleaseDay(t *testing.T) {
	// Device released one month ago: backfill cannot reach below age 0.
	release := testNow.AddDate(0, 0, -30)
	res, err := testEngine().Evaluate(Request{
		ModelKey:       depreciation.FamilyIphonePro,
		Release:        release,
		LaunchPrice:    999,
		StorageGB:      256,
		Condition:      depreciation.ConditionExcellent,
		HorizonMonths:  0,
		BackfillMonths: 12,
		Band:           0.1,
	})
	require.NoError(t, err)
	assert.Equal(t, 0.0, res.Series[0].AgeMonths)
}

func TestEvaluatePoint_MatchesDegenerateSeries(t *testing.T) {
	req := Request{
		ModelKey:    depreciation.FamilyIphoneProMax,
		Release:     time.Date(2023, 9, 22, 0, 0, 0, 0, time.UTC),
		LaunchPrice: 1199,
		StorageGB:   256,
		Condition:   depreciation.ConditionGood,
		Band:        0.1,
	}

	e := testEngine()
	point, err := e.EvaluatePoint(req)
	require.NoError(t, err)
	require.Len(t, point.Series, 1)
	assert.Equal(t, point.Meta.TodayAge, point.Series[0].AgeMonths)

	req.HorizonMonths = 0
	req.BackfillMonths = 0
	series, err := e.Evaluate(req)
	require.NoError(t, err)
	assert.Equal(t, series.Series, point.Series)
	assert.Equal(t, series.Meta, point.Meta)
}

func TestEvaluatePoint_Pixel8KnownValues(t *testing.T) {
	release := time.Date(2023, 10, 12, 0, 0, 0, 0, time.UTC)
	res, err := testEngine().EvaluatePoint(Request{
		ModelKey:    depreciation.FamilyPixel,
		Release:     release,
		LaunchPrice: 699,
		StorageGB:   128,
		Condition:   depreciation.ConditionGood,
		Band:        0.1,
	})
	require.NoError(t, err)
	require.Len(t, res.Series, 1)

	age := math.Max(0, depreciation.MonthsBetween(release, testNow))
	wantRatio := 0.7102739207997484 - 0.010343*age - 0.014967 - 0.035270
	wantPrice := math.Round(wantRatio*699*100) / 100

	got := res.Series[0]
	assert.InDelta(t, wantRatio, got.Ratio, 1e-4)
	assert.InDelta(t, wantPrice, got.PriceUSD, 0.01)
	assert.InDelta(t, math.Round(0.9*wantRatio*699*100)/100, got.PriceLowUSD, 0.011)
	assert.InDelta(t, math.Round(1.1*wantRatio*699*100)/100, got.PriceHighUSD, 0.011)
	assert.Equal(t, "Google Pixel", res.Meta.ModelName)
	assert.Equal(t, "2023-10-12", res.Meta.Release)
}

func TestEvaluate_ClampsBandAndWindow(t *testing.T) {
	res, err := testEngine().Evaluate(Request{
		ModelKey:       depreciation.FamilySamsungUltra,
		Release:        time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
		LaunchPrice:    1299,
		StorageGB:      256,
		Condition:      depreciation.ConditionGood,
		HorizonMonths:  -5,
		BackfillMonths: -3,
		Band:           4.2,
	})
	require.NoError(t, err)
	assert.Equal(t, 0.9, res.Meta.Band)
	assert.Equal(t, 0, res.Meta.Horizon)
	assert.Equal(t, 0, res.Meta.Backfill)
	assert.Len(t, res.Series, 1)
}

func TestEvaluate_FutureReleaseHasZeroAge(t *testing.T) {
	res, err := testEngine().EvaluatePoint(Request{
		ModelKey:    depreciation.FamilyIphoneBase,
		Release:     testNow.AddDate(1, 0, 0),
		LaunchPrice: 799,
		StorageGB:   128,
		Condition:   depreciation.ConditionGood,
		Band:        0.1,
	})
	require.NoError(t, err)
	assert.Equal(t, 0.0, res.Meta.TodayAge)
}

func TestEvaluate_Errors(t *testing.T) {
	e := testEngine()

	_, err := e.Evaluate(Request{ModelKey: depreciation.Family("foldable"), Release: testNow, LaunchPrice: 500})
	assert.Error(t, err)

	_, err = e.Evaluate(Request{ModelKey: depreciation.FamilyPixel, LaunchPrice: 500})
	assert.Error(t, err)

	_, err = e.Evaluate(Request{ModelKey: depreciation.FamilyPixel, Release: testNow, LaunchPrice: 0})
	assert.Error(t, err)
}

func TestResult_Today(t *testing.T) {
	release := testNow.AddDate(0, -20, 0)
	res, err := testEngine().Evaluate(Request{
		ModelKey:       depreciation.FamilyIphoneBase,
		Release:        release,
		LaunchPrice:    799,
		StorageGB:      128,
		Condition:      depreciation.ConditionGood,
		HorizonMonths:  6,
		BackfillMonths: 6,
		Band:           0.1,
	})
	require.NoError(t, err)
	assert.InDelta(t, res.Meta.TodayAge, res.Today().AgeMonths, 0.51)
}
