package recommend

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradeinlabs/phoneworth/internal/domain/catalog"
)

func phone(title, brand, os string, year int, price float64) catalog.Phone {
	return catalog.Phone{
		Title:       title,
		ModelName:   title,
		Brand:       brand,
		OS:          os,
		ReleaseYear: year,
		PriceUSD:    price,
		PriceLowUSD: 0.9 * price, PriceHighUSD: 1.1 * price,
		StorageGB:    []int{128, 256},
		ScreenSizeIn: 6.2,
	}
}

func TestStringList_UnmarshalScalarOrArray(t *testing.T) {
	var s Survey
	require.NoError(t, json.Unmarshal([]byte(`{"longevity":"2_3_years","budget":["mid","premium"]}`), &s))
	assert.Equal(t, StringList{"2_3_years"}, s.Longevity)
	assert.Equal(t, StringList{"mid", "premium"}, s.Budget)
}

func TestScore_NonPositivePriceDisqualifies(t *testing.T) {
	p := phone("Pixel 8", "google", "android", 2023, 0)
	score, reasons := Score(p, Survey{})
	assert.Equal(t, 0, score)
	assert.Empty(t, reasons)
}

func TestScore_LongevityYearFloor(t *testing.T) {
	old := phone("iPhone 11", "apple", "ios", 2019, 200)

	// Default floor is 2022.
	score, _ := Score(old, Survey{})
	assert.Equal(t, 0, score)

	// A short-keep buyer tolerates 2018+.
	score, _ = Score(old, Survey{Longevity: StringList{"1_year"}})
	assert.Greater(t, score, 0)

	score, _ = Score(phone("Pixel 5", "google", "android", 2020, 150), Survey{Longevity: StringList{"2_3_years"}})
	assert.Greater(t, score, 0)

	score, _ = Score(phone("Pixel 5", "google", "android", 2020, 150), Survey{Longevity: StringList{"4_plus_years"}})
	assert.Equal(t, 0, score)
}

func TestScore_AppleWatchRequiresIOS(t *testing.T) {
	survey := Survey{Ecosystem: StringList{"apple_watch"}}

	ios := phone("iPhone 14", "apple", "ios", 2022, 500)
	score, reasons := Score(ios, survey)
	assert.Equal(t, baseScore+50, score)
	assert.Contains(t, reasons, "Perfect for Apple Watch")

	android := phone("Pixel 8", "google", "android", 2023, 400)
	score, _ = Score(android, survey)
	assert.Equal(t, baseScore-1000, score)
}

func TestScore_GalaxyWatchTiers(t *testing.T) {
	survey := Survey{Ecosystem: StringList{"galaxy_watch"}}

	samsung := phone("Galaxy S24", "samsung", "android", 2024, 600)
	score, reasons := Score(samsung, survey)
	assert.Equal(t, baseScore+50, score)
	assert.Contains(t, reasons, "Best for Galaxy Watch")

	pixel := phone("Pixel 8", "google", "android", 2023, 600)
	score, _ = Score(pixel, survey)
	assert.Equal(t, baseScore+20, score)

	iphone := phone("iPhone 15", "apple", "ios", 2023, 600)
	score, _ = Score(iphone, survey)
	assert.Less(t, score, 0)
}

func TestScore_UsageRules(t *testing.T) {
	tele := phone("Galaxy S24 Ultra", "samsung", "android", 2024, 900)
	tele.HasTelephoto = true
	score, reasons := Score(tele, Survey{Usage: StringList{"pro_photo"}})
	// +30 telephoto, +5 ultra differentiator.
	assert.Equal(t, baseScore+35, score)
	assert.Contains(t, reasons, "Has Telephoto lens")
	assert.Contains(t, reasons, "Great zoom capability")

	noTele := phone("iPhone 14", "apple", "ios", 2022, 500)
	score, _ = Score(noTele, Survey{Usage: StringList{"pro_photo"}})
	assert.Equal(t, baseScore-20, score)

	gaming := phone("iPhone 15 Pro", "apple", "ios", 2023, 700)
	score, reasons = Score(gaming, Survey{Usage: StringList{"heavy_gaming"}})
	assert.Equal(t, baseScore+35, score)
	assert.Contains(t, reasons, "High performance for gaming")

	media := phone("Galaxy S23 Ultra", "samsung", "android", 2023, 700)
	media.ScreenSizeIn = 6.8
	score, reasons = Score(media, Survey{Usage: StringList{"media"}})
	assert.Equal(t, baseScore+25, score)
	assert.Contains(t, reasons, "Large screen for media")
}

func TestScore_ScreenSizeFit(t *testing.T) {
	compact := phone("iPhone 13 mini", "apple", "ios", 2021, 299)
	compact.ScreenSizeIn = 5.4

	score, _ := Score(compact, Survey{ScreenSize: StringList{"compact"}, Longevity: StringList{"1_year"}})
	assert.Equal(t, baseScore+20+5, score) // fit + value bump

	score, _ = Score(compact, Survey{ScreenSize: StringList{"large"}, Longevity: StringList{"1_year"}})
	assert.Equal(t, baseScore-10+5, score)
}

func TestScore_StorageFloor(t *testing.T) {
	small := phone("iPhone 14", "apple", "ios", 2022, 450)
	small.StorageGB = []int{64, 128}

	score, _ := Score(small, Survey{Storage: StringList{"128"}})
	assert.Equal(t, baseScore+10, score)

	score, _ = Score(small, Survey{Storage: StringList{"256_plus"}})
	assert.Equal(t, baseScore-50, score)
}

func TestScore_BudgetBoundaries(t *testing.T) {
	survey := Survey{Budget: StringList{"budget"}}

	// $250 sits inside the "budget" tier, not "mid".
	edge := phone("Pixel 7", "google", "android", 2022, 250)
	score, reasons := Score(edge, survey)
	assert.Equal(t, baseScore+40+5, score) // budget fit + value bump
	assert.Contains(t, reasons, "Fits your budget")

	// $251 crosses into "mid"; Pro title adds the flagship bump, and the
	// sub-$300 price adds the value bump.
	over := phone("Pixel 8 Pro", "google", "android", 2023, 251)
	score, _ = Score(over, Survey{Budget: StringList{"mid"}})
	assert.Equal(t, baseScore+40+5+5, score)

	miss := phone("iPhone 15 Pro", "apple", "ios", 2023, 999)
	score, _ = Score(miss, Survey{Budget: StringList{"budget"}})
	assert.Equal(t, baseScore-100+5, score)
}

func TestScore_BrandPreference(t *testing.T) {
	pixel := phone("Pixel 8", "google", "android", 2023, 400)

	score, reasons := Score(pixel, Survey{Brand: "Google"})
	assert.Equal(t, baseScore+100, score)
	require.NotEmpty(t, reasons)
	assert.Equal(t, "Preferred brand: google", reasons[0])

	score, _ = Score(pixel, Survey{Brand: "apple"})
	assert.Equal(t, baseScore-200, score)
}

func TestScore_ReasonOrdering(t *testing.T) {
	p := phone("Galaxy S24 Ultra", "samsung", "android", 2024, 850)
	p.HasTelephoto = true

	_, reasons := Score(p, Survey{
		Brand:     "samsung",
		Ecosystem: StringList{"galaxy_watch"},
		Usage:     StringList{"pro_photo"},
		Budget:    StringList{"flagship"},
	})

	// Lead reasons come first, latest lead outranking earlier ones, then
	// trailing reasons in rule order.
	assert.Equal(t, []string{
		"Flagship performance",
		"Preferred brand: samsung",
		"Best for Galaxy Watch",
		"Has Telephoto lens",
		"Fits your budget",
		"Great zoom capability",
	}, reasons)
}

func TestRank_FiltersSortsAndCounts(t *testing.T) {
	phones := []catalog.Phone{
		phone("Pixel 8", "google", "android", 2023, 400),
		phone("iPhone 15 Pro", "apple", "ios", 2023, 800),
		phone("Ancient Phone", "nokia", "android", 2015, 50), // year-filtered
		phone("Galaxy S24", "samsung", "android", 2024, 600),
	}

	res := Rank(phones, Survey{})
	assert.Equal(t, 3, res.TotalMatches)
	require.NotEmpty(t, res.TopPicks)
	for i := 1; i < len(res.TopPicks); i++ {
		assert.GreaterOrEqual(t, res.TopPicks[i-1].Score, res.TopPicks[i].Score)
	}
}

func TestRank_BrandDiversityPromotion(t *testing.T) {
	// Six high-scoring Pixels and one slightly weaker Samsung: without the
	// diversity rule the top five would be all Google.
	var phones []catalog.Phone
	for _, title := range []string{"Pixel 9 Pro", "Pixel 9", "Pixel 8 Pro", "Pixel 8", "Pixel 8a", "Pixel 7a"} {
		p := phone(title, "google", "android", 2024, 500)
		p.HasTelephoto = true
		phones = append(phones, p)
	}
	phones = append(phones, phone("Galaxy S24", "samsung", "android", 2024, 500))

	res := Rank(phones, Survey{})
	require.Len(t, res.TopPicks, 5)

	brands := map[string]bool{}
	for _, m := range res.TopPicks {
		brands[m.Phone.Brand] = true
	}
	assert.True(t, brands["samsung"], "expected a non-google phone in the top picks")
}

func TestRank_NoDiversityWhenBrandRequested(t *testing.T) {
	phones := []catalog.Phone{
		phone("Pixel 9", "google", "android", 2024, 500),
		phone("Pixel 8", "google", "android", 2023, 400),
		phone("Galaxy S24", "samsung", "android", 2024, 500),
	}

	res := Rank(phones, Survey{Brand: "google"})
	require.NotEmpty(t, res.TopPicks)
	// The Samsung scores 100-200 = -100 and is filtered entirely.
	assert.Equal(t, 2, res.TotalMatches)
	for _, m := range res.TopPicks {
		assert.Equal(t, "google", m.Phone.Brand)
	}
}

func TestRank_TierOverflow(t *testing.T) {
	var phones []catalog.Phone
	for i := 0; i < 18; i++ {
		phones = append(phones, phone("Pixel 8", "google", "android", 2023, 400+float64(i)))
	}

	res := Rank(phones, Survey{})
	assert.Len(t, res.TopPicks, 5)
	assert.Len(t, res.Alternatives, 5)
	assert.Len(t, res.RunnerUps, 5)
	assert.Equal(t, 18, res.TotalMatches)

	// No phone appears in two tiers.
	seen := map[float64]int{}
	for _, m := range res.TopPicks {
		seen[m.Phone.BasePrice]++
	}
	for _, m := range res.Alternatives {
		seen[m.Phone.BasePrice]++
	}
	for _, m := range res.RunnerUps {
		seen[m.Phone.BasePrice]++
	}
	for price, count := range seen {
		assert.Equal(t, 1, count, "price %v appeared %d times", price, count)
	}
}

func TestRank_EmptyCatalog(t *testing.T) {
	res := Rank(nil, Survey{})
	assert.Zero(t, res.TotalMatches)
	assert.Empty(t, res.TopPicks)
}
