// Package recommend scores a normalized phone catalog against a buyer survey
// and selects a brand-diverse shortlist.
package recommend

import "encoding/json"

// StringList accepts either a JSON array of strings or a bare string, since
// survey clients have historically sent both shapes for single selections.
type StringList []string

func (l *StringList) UnmarshalJSON(data []byte) error {
	var many []string
	if err := json.Unmarshal(data, &many); err == nil {
		*l = many
		return nil
	}
	var one string
	if err := json.Unmarshal(data, &one); err != nil {
		return err
	}
	*l = StringList{one}
	return nil
}

// Contains reports whether the list holds v.
func (l StringList) Contains(v string) bool {
	for _, s := range l {
		if s == v {
			return true
		}
	}
	return false
}

// Survey is a buyer questionnaire.  Every field is optional; an absent field
// imposes no constraint on matching.
type Survey struct {
	// Budget tiers: budget (≤$250), mid ($250–500), premium ($500–800),
	// flagship (>$800).
	Budget StringList `json:"budget"`
	// Ecosystem tags: apple_watch, galaxy_watch, mac_ipad, windows.
	Ecosystem StringList `json:"ecosystem"`
	// Usage tags: pro_photo, heavy_gaming, media.
	Usage StringList `json:"usage"`
	// Screen size tags: compact (<6.1"), standard (6.1–6.6"), large (>6.6").
	ScreenSize StringList `json:"screenSize"`
	// Storage tags: 64, 128, 256_plus.
	Storage StringList `json:"storage"`
	// Longevity tags: 1_year, 2_3_years, 4_plus_years.
	Longevity StringList `json:"longevity"`
	// Preferred brand, matched against the normalized manufacturer.
	Brand string `json:"brand"`
}
