package depreciation

import (
	"time"

	"github.com/tradeinlabs/phoneworth/pkg/errors"
)

// Family identifies a product line segment sharing one fitted model.
type Family string

const (
	FamilyIphoneBase   Family = "iphone_base"
	FamilyIphonePro    Family = "iphone_pro"
	FamilyIphoneProMax Family = "iphone_pro_max"
	FamilySamsungBase  Family = "samsung_base"
	FamilySamsungPlus  Family = "samsung_plus"
	FamilySamsungUltra Family = "samsung_ultra"
	FamilyPixel        Family = "pixel"
)

// ModelInfo is the listing view of a registered model.
type ModelInfo struct {
	Key     Family `json:"key"`
	Name    string `json:"name"`
	Samples int    `json:"samples"`
}

// Registry holds the pre-fit depreciation models, one per family.  Models are
// static configuration: loaded once at process start, never mutated.
type Registry struct {
	order  []Family
	models map[Family]RatioModel
}

// NewRegistry constructs the registry with the production model fits.
// Coefficients are pre-fit constants; no training happens in this service.
func NewRegistry() *Registry {
	models := map[Family]RatioModel{
		FamilyIphoneBase: &ExponentialModel{
			FamilyName:     "iPhone Base",
			SampleCount:    475,
			Intercept:      0.78,
			FloorRatio:     0.30,
			HalfLifeMonths: 20,
			StorageAdj: map[int]float64{
				64:   -0.02,
				128:  0.0,
				256:  0.02,
				512:  0.04,
				1024: 0.06,
			},
			ConditionAdj: map[Condition]float64{
				ConditionExcellent: 0.035,
				ConditionVeryGood:  -0.005,
				ConditionGood:      -0.03,
			},
		},
		FamilyIphonePro: &ExponentialModel{
			FamilyName:     "iPhone Pro",
			SampleCount:    485,
			Intercept:      0.80,
			FloorRatio:     0.32,
			HalfLifeMonths: 20,
			StorageAdj: map[int]float64{
				128:  0.0,
				256:  0.02,
				512:  0.04,
				1024: 0.06,
			},
			ConditionAdj: map[Condition]float64{
				ConditionExcellent: 0.04,
				ConditionVeryGood:  -0.003,
				ConditionGood:      -0.03,
			},
		},
		FamilyIphoneProMax: &ExponentialModel{
			FamilyName:     "iPhone Pro Max",
			SampleCount:    532,
			Intercept:      0.82,
			FloorRatio:     0.33,
			HalfLifeMonths: 20,
			StorageAdj: map[int]float64{
				128:  0.0,
				256:  0.02,
				512:  0.04,
				1024: 0.06,
			},
			ConditionAdj: map[Condition]float64{
				ConditionExcellent: 0.04,
				ConditionVeryGood:  -0.002,
				ConditionGood:      -0.03,
			},
		},
		FamilySamsungUltra: &LinearModel{
			FamilyName:  "Samsung S Ultra",
			SampleCount: 409,
			Intercept:   -79.44986065016309,
			AgeCoef:     -0.010182,
			StorageCoef: -0.000023,
			YearCoef:    0.039584,
			MonthCoef:   -0.000677,
			ConditionAdj: map[Condition]float64{
				ConditionExcellent: 0.023901,
				ConditionGood:      -0.022320,
				ConditionVeryGood:  -0.001580,
			},
		},
		FamilySamsungPlus: &LinearModel{
			FamilyName:  "Samsung S Plus",
			SampleCount: 124,
			Intercept:   0.6366065601433437,
			AgeCoef:     -0.010459,
			StorageCoef: 0.000035,
			YearCoef:    0.000000,
			MonthCoef:   0.001773,
			ConditionAdj: map[Condition]float64{
				ConditionExcellent: 0.015390,
				ConditionGood:      -0.035805,
				ConditionVeryGood:  -0.011387,
				// Listings with an unreported grade landed in their own
				// bucket during the fit.
				Condition("nan"): 0.031802,
			},
		},
		FamilySamsungBase: &LinearModel{
			FamilyName:  "Samsung S Base",
			SampleCount: 323,
			Intercept:   -235.01548684014813,
			AgeCoef:     -0.010452,
			StorageCoef: 0.000335,
			YearCoef:    0.116357,
			MonthCoef:   0.000851,
			ConditionAdj: map[Condition]float64{
				ConditionExcellent: 0.024076,
				ConditionGood:      -0.023809,
				ConditionVeryGood:  -0.000267,
			},
		},
		// The Pixel fit is linear in age with categorical storage and
		// condition bumps; the calendar-year term is absent (YearCoef 0).
		FamilyPixel: &LinearModel{
			FamilyName:  "Google Pixel",
			SampleCount: 0,
			Intercept:   0.7102739207997484,
			AgeCoef:     -0.010343,
			StorageAdj: map[int]float64{
				128: -0.014967,
				256: 0.014967,
				512: 0.0,
			},
			ConditionAdj: map[Condition]float64{
				ConditionExcellent: 0.041479,
				ConditionVeryGood:  -0.006208,
				ConditionGood:      -0.035270,
			},
		},
	}

	return &Registry{
		order: []Family{
			FamilyIphoneBase, FamilyIphonePro, FamilyIphoneProMax,
			FamilySamsungBase, FamilySamsungPlus, FamilySamsungUltra,
			FamilyPixel,
		},
		models: models,
	}
}

// Get returns the model for the given family key.  An unknown key is a
// configuration error: the caller asked for a family this deployment was
// never fit for.
func (r *Registry) Get(key Family) (RatioModel, error) {
	m, ok := r.models[key]
	if !ok {
		return nil, errors.New(errors.CodeModelNotFound, "unknown model family").WithDetail("key=" + string(key))
	}
	return m, nil
}

// Has reports whether a model exists for the given family key.
func (r *Registry) Has(key Family) bool {
	_, ok := r.models[key]
	return ok
}

// List returns the registered models in stable registration order.
func (r *Registry) List() []ModelInfo {
	out := make([]ModelInfo, 0, len(r.order))
	for _, key := range r.order {
		m := r.models[key]
		out = append(out, ModelInfo{Key: key, Name: m.Name(), Samples: m.Samples()})
	}
	return out
}

// ComputeRatio resolves the family model and evaluates it.
func (r *Registry) ComputeRatio(key Family, ageMonths float64, storageGB int, condition Condition, release, now time.Time) (float64, error) {
	m, err := r.Get(key)
	if err != nil {
		return 0, err
	}
	return m.ComputeRatio(ageMonths, storageGB, condition, release, now), nil
}
