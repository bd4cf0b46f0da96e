package recommend

import (
	"sort"

	"github.com/tradeinlabs/phoneworth/internal/domain/catalog"
)

// Tier sizes of the recommendation response.
const (
	topPickCount     = 5
	alternativeCount = 5
	runnerUpCount    = 5
)

// Card is the client-facing view of a recommended phone.
type Card struct {
	Title       string           `json:"title"`
	Image       string           `json:"image,omitempty"`
	Link        string           `json:"link,omitempty"`
	Specs       catalog.RawSpecs `json:"specs"`
	Brand       string           `json:"brand"`
	OS          string           `json:"os"`
	ReleaseYear int              `json:"release_year"`
	BasePrice   float64          `json:"base_price"`
	PriceLow    float64          `json:"price_low"`
	PriceHigh   float64          `json:"price_high"`
}

// Match is one scored recommendation.
type Match struct {
	Phone   Card     `json:"phone"`
	Score   int      `json:"score"`
	Reasons []string `json:"reasons"`
}

// Result is the full recommendation response: a brand-diverse top tier plus
// two overflow tiers, best first within each.
type Result struct {
	TopPicks     []Match `json:"top_picks"`
	Alternatives []Match `json:"alternatives"`
	RunnerUps    []Match `json:"runner_ups"`
	TotalMatches int     `json:"total_matches"`
}

func toCard(p catalog.Phone) Card {
	return Card{
		Title:       p.Title,
		Image:       p.Image,
		Link:        p.Link,
		Specs:       p.Specs,
		Brand:       p.Brand,
		OS:          p.OS,
		ReleaseYear: p.ReleaseYear,
		BasePrice:   p.PriceUSD,
		PriceLow:    p.PriceLowUSD,
		PriceHigh:   p.PriceHighUSD,
	}
}

// Rank scores every phone against the survey and assembles the tiered
// response.  Disqualified phones (score ≤ 0) never appear.  The top tier is
// brand-diverse: unless the buyer asked for a specific brand, the runner-up
// from a different brand than the best match is promoted into the top five.
func Rank(phones []catalog.Phone, survey Survey) Result {
	var valid []Match
	for _, p := range phones {
		score, reasons := Score(p, survey)
		if score <= 0 {
			continue
		}
		valid = append(valid, Match{Phone: toCard(p), Score: score, Reasons: reasons})
	}

	// Stable sort keeps catalog order among equal scores deterministic.
	sort.SliceStable(valid, func(i, j int) bool { return valid[i].Score > valid[j].Score })

	picked := make([]bool, len(valid))
	var topPicks []Match

	if len(valid) > 0 {
		topPicks = append(topPicks, valid[0])
		picked[0] = true
	}

	if survey.Brand == "" && len(valid) > 0 {
		leadBrand := valid[0].Phone.Brand
		for i, m := range valid {
			if !picked[i] && m.Phone.Brand != leadBrand {
				topPicks = append(topPicks, m)
				picked[i] = true
				break
			}
		}
	}

	for i, m := range valid {
		if len(topPicks) >= topPickCount {
			break
		}
		if !picked[i] {
			topPicks = append(topPicks, m)
			picked[i] = true
		}
	}

	// Promoting the alternative-brand pick may have put it out of score
	// order; restore best-first within the tier.
	sort.SliceStable(topPicks, func(i, j int) bool { return topPicks[i].Score > topPicks[j].Score })

	var rest []Match
	for i, m := range valid {
		if !picked[i] {
			rest = append(rest, m)
		}
	}

	alternatives := takeUpTo(rest, alternativeCount)
	runnerUps := takeUpTo(rest[len(alternatives):], runnerUpCount)

	return Result{
		TopPicks:     topPicks,
		Alternatives: alternatives,
		RunnerUps:    runnerUps,
		TotalMatches: len(valid),
	}
}

func takeUpTo(matches []Match, n int) []Match {
	if len(matches) > n {
		return matches[:n]
	}
	return matches
}
