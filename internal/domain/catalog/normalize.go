package catalog

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/tradeinlabs/phoneworth/internal/domain/depreciation"
	"github.com/tradeinlabs/phoneworth/internal/domain/valuation"
	"github.com/tradeinlabs/phoneworth/internal/infrastructure/monitoring/logging"
)

// msrpSentinelUSD stands in for a missing scraped MSRP.  It is deliberately
// absurd: sentinel-priced phones fail every budget tier and fall to the
// bottom of any ranking.
const msrpSentinelUSD = 9999

// RawCamera is one rear camera module as scraped.
type RawCamera struct {
	Type    string `json:"type"`
	Details string `json:"details"`
}

// RawPlatform carries the scraped OS name.
type RawPlatform struct {
	OS string `json:"os"`
}

// RawDisplay carries the scraped display size.
type RawDisplay struct {
	SizeIn float64 `json:"size_in"`
}

// RawSpecs is the free-form spec block of a scraped phone record.  Every
// field is optional; the normalizer tolerates all of them missing.
type RawSpecs struct {
	Manufacturer     string      `json:"manufacturer"`
	ModelName        string      `json:"model_name"`
	Platform         RawPlatform `json:"platform"`
	Display          RawDisplay  `json:"display"`
	StorageOptionsGB []int       `json:"storage_options_gb"`
	RearCameraSetup  []RawCamera `json:"rear_camera_setup"`
	MSRPUSD          float64     `json:"msrp_usd"`
	ReleaseDate      string      `json:"release_date"`
}

// RawPhone is one scraped listing before normalization.
type RawPhone struct {
	Title string   `json:"title"`
	Image string   `json:"image"`
	Link  string   `json:"link"`
	Specs RawSpecs `json:"specs"`
}

// Phone is a normalized, priced catalog record.
type Phone struct {
	Title string   `json:"title"`
	Image string   `json:"image,omitempty"`
	Link  string   `json:"link,omitempty"`
	Specs RawSpecs `json:"specs"`

	Brand        string  `json:"brand"`
	OS           string  `json:"os"`
	ModelName    string  `json:"modelName"`
	ReleaseYear  int     `json:"releaseYear"`
	ScreenSizeIn float64 `json:"screenSizeIn"`
	StorageGB    []int   `json:"storageGb"`
	HasTelephoto bool    `json:"hasTelephoto"`

	LaunchPriceUSD float64 `json:"launchPriceUSD"`
	PriceUSD       float64 `json:"priceUSD"`
	PriceLowUSD    float64 `json:"priceLowUSD"`
	PriceHighUSD   float64 `json:"priceHighUSD"`

	Family  depreciation.Family `json:"family"`
	Tracked bool                `json:"tracked"`
}

var yearRe = regexp.MustCompile(`(\d{4})`)

// releaseDateLayouts covers the date shapes seen in scraped spec blocks.
var releaseDateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
	"2006, January 02",
	"2006, January 2",
}

// parseReleaseDate extracts a release year and, when possible, a full date
// from a free-text release field.  A year can survive even when the full
// date is unparseable.
func parseReleaseDate(s string) (year int, date time.Time) {
	if s == "" {
		return 0, time.Time{}
	}
	if m := yearRe.FindStringSubmatch(s); m != nil {
		year, _ = strconv.Atoi(m[1])
	}
	for _, layout := range releaseDateLayouts {
		if d, err := time.Parse(layout, strings.TrimSpace(s)); err == nil {
			return year, d
		}
	}
	return year, time.Time{}
}

func hasTelephoto(cameras []RawCamera) bool {
	for _, c := range cameras {
		if c.Type == "telephoto" || strings.Contains(strings.ToLower(c.Details), "telephoto") {
			return true
		}
	}
	return false
}

// baseStorage returns the smallest scraped storage option, defaulting to
// 128GB when none were scraped.
func baseStorage(options []int) int {
	if len(options) == 0 {
		return 128
	}
	min := options[0]
	for _, gb := range options[1:] {
		if gb < min {
			min = gb
		}
	}
	return min
}

// Normalizer converts scraped phone records into priced catalog records by
// running each through the matching depreciation model, or a generic decay
// heuristic when no model covers it.
type Normalizer struct {
	engine *valuation.Engine
	launch *LaunchIndex
	logger logging.Logger
}

// NewNormalizer constructs a Normalizer.
func NewNormalizer(engine *valuation.Engine, launch *LaunchIndex, logger logging.Logger) *Normalizer {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Normalizer{engine: engine, launch: launch, logger: logger.Named("normalizer")}
}

// Normalize prices every raw record.  Failures are isolated per record: a
// phone the model cannot price keeps its launch price and stays untracked
// rather than poisoning the batch.
func (n *Normalizer) Normalize(raws []RawPhone) []Phone {
	out := make([]Phone, 0, len(raws))
	for _, raw := range raws {
		out = append(out, n.normalizeOne(raw))
	}
	return out
}

func (n *Normalizer) normalizeOne(raw RawPhone) Phone {
	year, releaseDate := parseReleaseDate(raw.Specs.ReleaseDate)

	launchPrice := raw.Specs.MSRPUSD
	if launchPrice == 0 {
		launchPrice = msrpSentinelUSD
	}

	storage := baseStorage(raw.Specs.StorageOptionsGB)
	family := Classify(raw.Title)

	modelName := raw.Specs.ModelName
	if modelName == "" {
		modelName = raw.Title
	}

	p := Phone{
		Title:        raw.Title,
		Image:        raw.Image,
		Link:         raw.Link,
		Specs:        raw.Specs,
		Brand:        strings.ToLower(raw.Specs.Manufacturer),
		OS:           strings.ToLower(raw.Specs.Platform.OS),
		ModelName:    modelName,
		ReleaseYear:  year,
		ScreenSizeIn: raw.Specs.Display.SizeIn,
		StorageGB:    raw.Specs.StorageOptionsGB,
		HasTelephoto: hasTelephoto(raw.Specs.RearCameraSetup),
		Family:       family,
	}

	if family != FamilyUnmodeled && !releaseDate.IsZero() {
		launchPrice = n.correctLaunchPrice(raw.Title, family, launchPrice, storage)
		p.LaunchPriceUSD = launchPrice

		res, err := n.engine.EvaluatePoint(valuation.Request{
			ModelKey:    family,
			Release:     releaseDate,
			LaunchPrice: launchPrice,
			StorageGB:   storage,
			Condition:   depreciation.ConditionGood,
			Band:        valuation.DefaultBand,
		})
		if err != nil {
			n.logger.Warn("pricing failed, keeping launch price",
				logging.String("title", raw.Title),
				logging.String("family", string(family)),
				logging.Err(err))
			p.PriceUSD, p.PriceLowUSD, p.PriceHighUSD = launchPrice, launchPrice, launchPrice
			return p
		}

		today := res.Today()
		p.PriceUSD = today.PriceUSD
		p.PriceLowUSD = today.PriceLowUSD
		p.PriceHighUSD = today.PriceHighUSD
		p.Tracked = true
		return p
	}

	// Generic decay for phones outside the fitted families (or with an
	// unparseable release date): 20% of value lost per calendar year.
	p.LaunchPriceUSD = launchPrice
	p.PriceUSD, p.PriceLowUSD, p.PriceHighUSD = launchPrice, launchPrice, launchPrice
	if ageYears := n.engine.Now().Year() - year; ageYears > 0 {
		p.PriceUSD = launchPrice * math.Pow(0.8, float64(ageYears))
		p.PriceLowUSD = 0.9 * p.PriceUSD
		p.PriceHighUSD = 1.1 * p.PriceUSD
	}
	return p
}

// correctLaunchPrice re-resolves untrustworthy scraped MSRPs against the
// launch-price registry.  Pixel feeds carry placeholder MSRPs (tiny values),
// and iPhone feeds tend to carry the current street price instead of the
// launch price, so iPhones are always re-resolved when a registry entry
// matches.
func (n *Normalizer) correctLaunchPrice(title string, family depreciation.Family, scraped float64, storageGB int) float64 {
	switch family {
	case depreciation.FamilyPixel:
		if scraped >= 100 {
			return scraped
		}
	case depreciation.FamilyIphoneBase, depreciation.FamilyIphonePro, depreciation.FamilyIphoneProMax:
		// always re-resolve
	default:
		return scraped
	}

	key := DeviceKey(title, family)
	if key == "" {
		return scraped
	}
	resolved, err := n.launch.ResolveLaunch(key, storageGB)
	if err != nil {
		n.logger.Debug("no launch registry entry",
			logging.String("title", title),
			logging.String("key", key))
		return scraped
	}
	return resolved
}
