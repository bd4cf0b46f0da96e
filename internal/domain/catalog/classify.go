package catalog

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/tradeinlabs/phoneworth/internal/domain/depreciation"
)

// FamilyUnmodeled marks phones no fitted model covers.  They still flow
// through the catalog (listing, recommendations) but are priced by the
// heuristic fallback instead of a model.
const FamilyUnmodeled depreciation.Family = "unmodeled"

var (
	iphoneGenRe = regexp.MustCompile(`iphone\s*(\d+)`)
	pixelGenRe  = regexp.MustCompile(`pixel\s+(\d+)`)
)

// Classify maps a listing title onto a model family.  Titles that name no
// covered product line, and Galaxy FE variants (whose pricing behaves like
// neither the base nor the plus tier), come back as FamilyUnmodeled.
func Classify(title string) depreciation.Family {
	t := strings.ToLower(title)

	switch {
	case strings.Contains(t, "iphone"):
		if strings.Contains(t, "pro max") {
			return depreciation.FamilyIphoneProMax
		}
		if strings.Contains(t, "pro") {
			return depreciation.FamilyIphonePro
		}
		return depreciation.FamilyIphoneBase

	case strings.Contains(t, "galaxy s"):
		if strings.Contains(t, "fe") {
			return FamilyUnmodeled
		}
		if strings.Contains(t, "ultra") {
			return depreciation.FamilySamsungUltra
		}
		if strings.Contains(t, "plus") || strings.Contains(t, "+") {
			return depreciation.FamilySamsungPlus
		}
		return depreciation.FamilySamsungBase

	case strings.Contains(t, "pixel"):
		return depreciation.FamilyPixel
	}
	return FamilyUnmodeled
}

// DeviceKey derives the launch-price registry key for a listing title, or ""
// when no registry entry can correspond to it.  Only iPhone and Pixel titles
// participate: those are the brands whose scraped MSRPs need correcting.
func DeviceKey(title string, family depreciation.Family) string {
	t := strings.ToLower(title)

	switch family {
	case depreciation.FamilyIphoneBase, depreciation.FamilyIphonePro, depreciation.FamilyIphoneProMax:
		m := iphoneGenRe.FindStringSubmatch(t)
		if m == nil {
			return ""
		}
		key := "iphone_" + m[1]
		if family == depreciation.FamilyIphonePro {
			key += "_pro"
		}
		if family == depreciation.FamilyIphoneProMax {
			key += "_pro_max"
		}
		return key

	case depreciation.FamilyPixel:
		m := pixelGenRe.FindStringSubmatch(t)
		if m == nil {
			return ""
		}
		return fmt.Sprintf("pixel_%s", m[1])
	}
	return ""
}
