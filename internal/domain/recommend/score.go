package recommend

import (
	"sort"
	"strings"

	"github.com/tradeinlabs/phoneworth/internal/domain/catalog"
)

const baseScore = 100

// reasonBuilder accumulates (priority, text) pairs so the final reason order
// is explicit rather than an artifact of rule evaluation order.  Lead
// reasons surface before trailing ones, with the latest lead outranking
// earlier leads.
type reasonBuilder struct {
	entries []reasonEntry
	leads   int
	trails  int
}

type reasonEntry struct {
	priority int
	text     string
}

func (b *reasonBuilder) lead(text string) {
	b.leads++
	b.entries = append(b.entries, reasonEntry{priority: -b.leads, text: text})
}

func (b *reasonBuilder) trail(text string) {
	b.trails++
	b.entries = append(b.entries, reasonEntry{priority: b.trails, text: text})
}

func (b *reasonBuilder) build() []string {
	sort.SliceStable(b.entries, func(i, j int) bool {
		return b.entries[i].priority < b.entries[j].priority
	})
	out := make([]string, len(b.entries))
	for i, e := range b.entries {
		out[i] = e.text
	}
	return out
}

// Score computes the additive match score for one phone.  A zero score means
// the phone is disqualified outright.  The large ecosystem/brand/budget
// penalties are deliberately additive rather than hard filters: a phone
// with enough boosts elsewhere can in principle climb back above zero.
func Score(p catalog.Phone, survey Survey) (int, []string) {
	if p.PriceUSD <= 0 {
		return 0, nil
	}

	score := baseScore
	var reasons reasonBuilder
	model := strings.ToLower(p.ModelName)
	isProModel := strings.Contains(model, "pro") || strings.Contains(model, "ultra")

	// Longevity: a buyer planning to keep the phone longer needs a newer
	// device.  Disqualifying, not a penalty.
	minYear := 2022
	switch {
	case survey.Longevity.Contains("1_year"):
		minYear = 2018
	case survey.Longevity.Contains("2_3_years"):
		minYear = 2020
	case survey.Longevity.Contains("4_plus_years"):
		minYear = 2022
	}
	if p.ReleaseYear < minYear {
		return 0, nil
	}

	// Ecosystem.
	if survey.Ecosystem.Contains("apple_watch") {
		if strings.Contains(p.OS, "ios") {
			score += 50
			reasons.trail("Perfect for Apple Watch")
		} else {
			score -= 1000
		}
	}
	if survey.Ecosystem.Contains("galaxy_watch") {
		switch {
		case p.Brand == "samsung":
			score += 50
			reasons.trail("Best for Galaxy Watch")
		case strings.Contains(p.OS, "android"):
			score += 20
		default:
			score -= 1000
		}
	}
	if survey.Ecosystem.Contains("mac_ipad") && strings.Contains(p.OS, "ios") {
		score += 30
		reasons.trail("Syncs with Mac/iPad")
	}
	if survey.Ecosystem.Contains("windows") && strings.Contains(p.OS, "android") {
		score += 15
	}

	// Usage.
	if survey.Usage.Contains("pro_photo") {
		if p.HasTelephoto {
			score += 30
			reasons.trail("Has Telephoto lens")
		} else {
			score -= 20
		}
	}
	if survey.Usage.Contains("heavy_gaming") {
		// Recent Pro/Ultra hardware stands in for a benchmark score.
		if p.ReleaseYear >= 2023 && isProModel {
			score += 30
			reasons.trail("High performance for gaming")
		} else if p.ReleaseYear < 2022 {
			score -= 20
		}
	}
	if survey.Usage.Contains("media") && p.ScreenSizeIn >= 6.7 {
		score += 20
		reasons.trail("Large screen for media")
	}

	// Screen size preference.
	if len(survey.ScreenSize) > 0 {
		fits := false
		if survey.ScreenSize.Contains("compact") && p.ScreenSizeIn < 6.1 {
			fits = true
		}
		if survey.ScreenSize.Contains("standard") && p.ScreenSizeIn >= 6.1 && p.ScreenSizeIn <= 6.6 {
			fits = true
		}
		if survey.ScreenSize.Contains("large") && p.ScreenSizeIn > 6.6 {
			fits = true
		}
		if fits {
			score += 20
		} else {
			score -= 10
		}
	}

	// Storage.
	if len(survey.Storage) > 0 {
		minStorage := 256
		switch {
		case survey.Storage.Contains("64"):
			minStorage = 64
		case survey.Storage.Contains("128"):
			minStorage = 128
		case survey.Storage.Contains("256_plus"):
			minStorage = 256
		}
		hasStorage := false
		for _, gb := range p.StorageGB {
			if gb >= minStorage {
				hasStorage = true
				break
			}
		}
		if hasStorage {
			score += 10
		} else {
			score -= 50
		}
	}

	// Budget.  Tier boundaries are inclusive on the upper edge, so a $250
	// phone fits the "budget" tier and a $250.01 phone fits "mid".
	if len(survey.Budget) > 0 {
		fits := false
		for _, b := range survey.Budget {
			switch b {
			case "budget":
				fits = fits || p.PriceUSD <= 250
			case "mid":
				fits = fits || (p.PriceUSD > 250 && p.PriceUSD <= 500)
			case "premium":
				fits = fits || (p.PriceUSD > 500 && p.PriceUSD <= 800)
			case "flagship":
				fits = fits || p.PriceUSD > 800
			}
		}
		if fits {
			score += 40
			reasons.trail("Fits your budget")
		} else {
			score -= 100
		}
	}

	// Brand preference.
	if survey.Brand != "" {
		if p.Brand == strings.ToLower(survey.Brand) {
			score += 100
			reasons.lead("Preferred brand: " + p.Brand)
		} else {
			score -= 200
		}
	}

	// Differentiators.
	if p.PriceUSD < 300 && p.ReleaseYear >= 2021 {
		score += 5
		reasons.lead("Incredible value for money")
	}
	if isProModel {
		score += 5
		reasons.lead("Flagship performance")
	}
	if p.HasTelephoto {
		reasons.trail("Great zoom capability")
	}

	return score, reasons.build()
}
