// Package depreciation implements the per-family depreciation models that map
// (age, storage, condition) to a dimensionless value ratio: the fraction of
// launch price a used device is worth today.
//
// Two fitted model shapes exist because different product lines were fit with
// different regression techniques.  Both are normalized behind the RatioModel
// interface so downstream code is family-agnostic.
package depreciation

import (
	"math"
	"time"
)

// Condition is a resale condition grade as used by the fitted models.
type Condition string

const (
	ConditionExcellent Condition = "Excellent"
	ConditionVeryGood  Condition = "Very Good"
	ConditionGood      Condition = "Good"
)

// avgDaysPerMonth approximates one month as 30.44 days, matching the fit.
const avgDaysPerMonth = 30.44

// RatioModel computes a dimensionless current-value-to-launch-value ratio for
// a device of the model's family.  Implementations clamp their output to a
// family-specific valid range; ratios are never negative or implausibly high.
type RatioModel interface {
	// Name returns the human-readable family name (e.g., "iPhone Pro").
	Name() string

	// Samples returns the number of observations the model was fit on.
	Samples() int

	// ComputeRatio returns the value ratio at the given age.  Unknown
	// conditions contribute a zero adjustment.  release may be the zero
	// time when unknown; implementations that need a calendar date then
	// project from now instead.
	ComputeRatio(ageMonths float64, storageGB int, condition Condition, release, now time.Time) float64
}

// clamp bounds v to [lo, hi].
func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// ExponentialModel models age depreciation as exponential decay in ratio
// space from an intercept down toward a long-run floor, with small additive
// bumps for storage tier and condition.
//
//	ratio(age) = floor + (intercept - floor) * exp(-ln2/halfLife * max(0, age))
//
// Output is clamped to [0, 1.2].
type ExponentialModel struct {
	FamilyName     string
	SampleCount    int
	Intercept      float64 // approximate ratio near launch (age ~0)
	FloorRatio     float64 // long-run floor ratio as age → ∞
	HalfLifeMonths float64 // decay rate in months
	StorageAdj     map[int]float64
	ConditionAdj   map[Condition]float64
}

func (m *ExponentialModel) Name() string { return m.FamilyName }

func (m *ExponentialModel) Samples() int { return m.SampleCount }

// AgeRatio returns the age component alone, before storage and condition
// adjustments.  Negative ages are treated as zero: no value appreciation is
// modeled before release.
func (m *ExponentialModel) AgeRatio(ageMonths float64) float64 {
	age := math.Max(0, ageMonths)
	k := math.Ln2 / m.HalfLifeMonths
	return m.FloorRatio + (m.Intercept-m.FloorRatio)*math.Exp(-k*age)
}

func (m *ExponentialModel) ComputeRatio(ageMonths float64, storageGB int, condition Condition, _, _ time.Time) float64 {
	ratio := m.AgeRatio(ageMonths) + m.StorageAdj[storageGB] + m.ConditionAdj[condition]
	return clamp(ratio, 0, 1.2)
}

// LinearModel is a linear regression over age, storage, and a continuous
// calendar-year term, plus categorical condition (and, for some families,
// categorical storage) adjustments.
//
// The calendar date for the year term is projected as release +
// ageMonths*30.44 days; when no release date is supplied the projection is
// anchored at now instead.  A continuous year value (year + (month-1)/12)
// smooths out the discontinuous jump the raw fit would otherwise exhibit at
// each New Year boundary.
//
// Output is clamped to [0, 1.5].
type LinearModel struct {
	FamilyName  string
	SampleCount int
	Intercept   float64
	AgeCoef     float64 // per month of age at sale
	StorageCoef float64 // per GB of storage
	YearCoef    float64 // per continuous year of sale
	MonthCoef   float64 // fitted but folded into the continuous-year term
	StorageAdj  map[int]float64
	ConditionAdj map[Condition]float64
}

func (m *LinearModel) Name() string { return m.FamilyName }

func (m *LinearModel) Samples() int { return m.SampleCount }

func (m *LinearModel) ComputeRatio(ageMonths float64, storageGB int, condition Condition, release, now time.Time) float64 {
	base := release
	if base.IsZero() {
		base = now
	}
	pred := base.Add(time.Duration(ageMonths * avgDaysPerMonth * 24 * float64(time.Hour)))
	continuousYear := float64(pred.Year()) + float64(int(pred.Month())-1)/12.0

	ratio := m.Intercept +
		ageMonths*m.AgeCoef +
		float64(storageGB)*m.StorageCoef +
		continuousYear*m.YearCoef +
		m.StorageAdj[storageGB] +
		m.ConditionAdj[condition]

	return clamp(ratio, 0, 1.5)
}

// MonthsBetween returns the approximate number of months between from and to,
// counting one month as 30.44 days.  Negative when to precedes from.
func MonthsBetween(from, to time.Time) float64 {
	days := to.Sub(from).Hours() / 24
	return days / avgDaysPerMonth
}
