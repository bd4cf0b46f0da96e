// Package catalog converts raw scraped phone records into normalized,
// priced records ready for scoring, and carries the static launch-price
// registry used to correct untrustworthy scraped MSRPs.
package catalog

import (
	"math"

	"github.com/tradeinlabs/phoneworth/internal/domain/depreciation"
	"github.com/tradeinlabs/phoneworth/pkg/errors"
)

// StorageTier is one storage option of a device with its launch MSRP in USD.
// Tiers are kept as an ordered slice so nearest-storage ties resolve toward
// the first declared tier.
type StorageTier struct {
	GB       int
	PriceUSD float64
}

// Device is one entry of the static launch-price registry: a device+tier
// combination with its official per-storage launch MSRPs.
type Device struct {
	Key       string
	Name      string
	Release   string // YYYY-MM-DD
	Announced string // YYYY-MM-DD, empty when not recorded
	Tiers     []StorageTier
	FamilyKey depreciation.Family
}

// Storages returns the device's storage options in declaration order.
func (d Device) Storages() []int {
	out := make([]int, 0, len(d.Tiers))
	for _, t := range d.Tiers {
		out = append(out, t.GB)
	}
	return out
}

// LaunchByStorage returns the storage→price map view of the tiers.
func (d Device) LaunchByStorage() map[int]float64 {
	out := make(map[int]float64, len(d.Tiers))
	for _, t := range d.Tiers {
		out[t.GB] = t.PriceUSD
	}
	return out
}

// LaunchIndex is the static launch-price registry across all families.
// It is immutable after construction.
type LaunchIndex struct {
	order   []string
	devices map[string]Device
}

// NewLaunchIndex constructs the registry with the production device tables.
// Launch MSRPs are approximate US list prices at launch, rounded to whole
// dollars; entries for unreleased generations are provisional.
func NewLaunchIndex() *LaunchIndex {
	all := []Device{
		// iPhone base, generations 12 through 17.
		{Key: "iphone_12", Name: "iPhone 12", Release: "2020-10-23", Announced: "2020-10-13",
			Tiers: []StorageTier{{64, 799}, {128, 849}, {256, 949}}, FamilyKey: depreciation.FamilyIphoneBase},
		{Key: "iphone_13", Name: "iPhone 13", Release: "2021-09-24", Announced: "2021-09-14",
			Tiers: []StorageTier{{128, 799}, {256, 899}, {512, 1099}}, FamilyKey: depreciation.FamilyIphoneBase},
		{Key: "iphone_14", Name: "iPhone 14", Release: "2022-09-16", Announced: "2022-09-07",
			Tiers: []StorageTier{{128, 799}, {256, 899}, {512, 1099}}, FamilyKey: depreciation.FamilyIphoneBase},
		{Key: "iphone_15", Name: "iPhone 15", Release: "2023-09-22", Announced: "2023-09-12",
			Tiers: []StorageTier{{128, 799}, {256, 899}, {512, 1099}}, FamilyKey: depreciation.FamilyIphoneBase},
		{Key: "iphone_16", Name: "iPhone 16", Release: "2024-09-20", Announced: "2024-09-09",
			Tiers: []StorageTier{{128, 799}, {256, 899}, {512, 1099}}, FamilyKey: depreciation.FamilyIphoneBase},
		{Key: "iphone_17", Name: "iPhone 17", Release: "2025-09-19", Announced: "2025-09-09",
			Tiers: []StorageTier{{256, 799}, {512, 999}}, FamilyKey: depreciation.FamilyIphoneBase},

		// iPhone Pro.
		{Key: "iphone_12_pro", Name: "iPhone 12 Pro", Release: "2020-10-23", Announced: "2020-10-13",
			Tiers: []StorageTier{{128, 999}, {256, 1099}, {512, 1299}}, FamilyKey: depreciation.FamilyIphonePro},
		{Key: "iphone_13_pro", Name: "iPhone 13 Pro", Release: "2021-09-24", Announced: "2021-09-14",
			Tiers: []StorageTier{{128, 999}, {256, 1099}, {512, 1299}, {1024, 1499}}, FamilyKey: depreciation.FamilyIphonePro},
		{Key: "iphone_14_pro", Name: "iPhone 14 Pro", Release: "2022-09-16", Announced: "2022-09-07",
			Tiers: []StorageTier{{128, 999}, {256, 1099}, {512, 1299}, {1024, 1499}}, FamilyKey: depreciation.FamilyIphonePro},
		{Key: "iphone_15_pro", Name: "iPhone 15 Pro", Release: "2023-09-22", Announced: "2023-09-12",
			Tiers: []StorageTier{{128, 999}, {256, 1099}, {512, 1299}, {1024, 1499}}, FamilyKey: depreciation.FamilyIphonePro},
		// 128GB tier dropped with the 16 Pro.
		{Key: "iphone_16_pro", Name: "iPhone 16 Pro", Release: "2024-09-20", Announced: "2024-09-09",
			Tiers: []StorageTier{{256, 1099}, {512, 1299}, {1024, 1499}}, FamilyKey: depreciation.FamilyIphonePro},
		{Key: "iphone_17_pro", Name: "iPhone 17 Pro", Release: "2025-09-19", Announced: "2025-09-09",
			Tiers: []StorageTier{{256, 1199}, {512, 1399}, {1024, 1599}}, FamilyKey: depreciation.FamilyIphonePro},

		// iPhone Pro Max.
		{Key: "iphone_12_pro_max", Name: "iPhone 12 Pro Max", Release: "2020-11-13", Announced: "2020-10-13",
			Tiers: []StorageTier{{128, 1099}, {256, 1199}, {512, 1399}}, FamilyKey: depreciation.FamilyIphoneProMax},
		{Key: "iphone_13_pro_max", Name: "iPhone 13 Pro Max", Release: "2021-09-24", Announced: "2021-09-14",
			Tiers: []StorageTier{{128, 1099}, {256, 1199}, {512, 1399}, {1024, 1599}}, FamilyKey: depreciation.FamilyIphoneProMax},
		{Key: "iphone_14_pro_max", Name: "iPhone 14 Pro Max", Release: "2022-09-16", Announced: "2022-09-07",
			Tiers: []StorageTier{{128, 1099}, {256, 1199}, {512, 1399}, {1024, 1599}}, FamilyKey: depreciation.FamilyIphoneProMax},
		{Key: "iphone_15_pro_max", Name: "iPhone 15 Pro Max", Release: "2023-09-22", Announced: "2023-09-12",
			Tiers: []StorageTier{{256, 1199}, {512, 1399}, {1024, 1599}}, FamilyKey: depreciation.FamilyIphoneProMax},
		{Key: "iphone_16_pro_max", Name: "iPhone 16 Pro Max", Release: "2024-09-20", Announced: "2024-09-09",
			Tiers: []StorageTier{{256, 1199}, {512, 1399}, {1024, 1599}}, FamilyKey: depreciation.FamilyIphoneProMax},
		{Key: "iphone_17_pro_max", Name: "iPhone 17 Pro Max", Release: "2025-09-19", Announced: "2025-09-09",
			Tiers: []StorageTier{{256, 1299}, {512, 1499}, {1024, 1699}}, FamilyKey: depreciation.FamilyIphoneProMax},

		// Samsung Galaxy S base.
		{Key: "galaxy_s22", Name: "Samsung Galaxy S22", Release: "2022-02-25", Announced: "2022-02-09",
			Tiers: []StorageTier{{128, 799}, {256, 849}}, FamilyKey: depreciation.FamilySamsungBase},
		{Key: "galaxy_s23", Name: "Samsung Galaxy S23", Release: "2023-02-17", Announced: "2023-02-01",
			Tiers: []StorageTier{{128, 799}, {256, 859}}, FamilyKey: depreciation.FamilySamsungBase},
		{Key: "galaxy_s24", Name: "Samsung Galaxy S24", Release: "2024-01-31", Announced: "2024-01-17",
			Tiers: []StorageTier{{128, 799}, {256, 859}}, FamilyKey: depreciation.FamilySamsungBase},
		{Key: "galaxy_s25", Name: "Samsung Galaxy S25", Release: "2025-02-07", Announced: "2025-01-22",
			Tiers: []StorageTier{{128, 799}, {256, 859}}, FamilyKey: depreciation.FamilySamsungBase},

		// Samsung Galaxy S Plus.
		{Key: "galaxy_s22_plus", Name: "Samsung Galaxy S22+", Release: "2022-02-25", Announced: "2022-02-09",
			Tiers: []StorageTier{{128, 999}, {256, 1049}}, FamilyKey: depreciation.FamilySamsungPlus},
		{Key: "galaxy_s23_plus", Name: "Samsung Galaxy S23+", Release: "2023-02-17", Announced: "2023-02-01",
			Tiers: []StorageTier{{256, 999}, {512, 1199}}, FamilyKey: depreciation.FamilySamsungPlus},
		{Key: "galaxy_s24_plus", Name: "Samsung Galaxy S24+", Release: "2024-01-31", Announced: "2024-01-17",
			Tiers: []StorageTier{{256, 999}, {512, 1119}}, FamilyKey: depreciation.FamilySamsungPlus},
		{Key: "galaxy_s25_plus", Name: "Samsung Galaxy S25+", Release: "2025-02-07", Announced: "2025-01-22",
			Tiers: []StorageTier{{256, 999}, {512, 1119}}, FamilyKey: depreciation.FamilySamsungPlus},

		// Samsung Galaxy S Ultra.
		{Key: "galaxy_s22_ultra", Name: "Samsung Galaxy S22 Ultra", Release: "2022-02-25", Announced: "2022-02-09",
			Tiers: []StorageTier{{128, 1199}, {256, 1299}, {512, 1399}, {1024, 1599}}, FamilyKey: depreciation.FamilySamsungUltra},
		{Key: "galaxy_s23_ultra", Name: "Samsung Galaxy S23 Ultra", Release: "2023-02-17", Announced: "2023-02-01",
			Tiers: []StorageTier{{256, 1199}, {512, 1299}, {1024, 1619}}, FamilyKey: depreciation.FamilySamsungUltra},
		{Key: "galaxy_s24_ultra", Name: "Samsung Galaxy S24 Ultra", Release: "2024-01-31", Announced: "2024-01-17",
			Tiers: []StorageTier{{256, 1299}, {512, 1419}, {1024, 1659}}, FamilyKey: depreciation.FamilySamsungUltra},
		{Key: "galaxy_s25_ultra", Name: "Samsung Galaxy S25 Ultra", Release: "2025-02-07", Announced: "2025-01-22",
			Tiers: []StorageTier{{256, 1299}, {512, 1419}, {1024, 1659}}, FamilyKey: depreciation.FamilySamsungUltra},

		// Google Pixel.
		{Key: "pixel_6", Name: "Pixel 6", Release: "2021-10-28",
			Tiers: []StorageTier{{128, 599}, {256, 699}}, FamilyKey: depreciation.FamilyPixel},
		{Key: "pixel_7", Name: "Pixel 7", Release: "2022-10-13",
			Tiers: []StorageTier{{128, 599}, {256, 699}}, FamilyKey: depreciation.FamilyPixel},
		{Key: "pixel_8", Name: "Pixel 8", Release: "2023-10-12",
			Tiers: []StorageTier{{128, 699}, {256, 759}}, FamilyKey: depreciation.FamilyPixel},
		{Key: "pixel_9", Name: "Pixel 9", Release: "2024-08-13",
			Tiers: []StorageTier{{128, 799}, {256, 899}}, FamilyKey: depreciation.FamilyPixel},
		{Key: "pixel_10", Name: "Pixel 10", Release: "2025-10-10",
			Tiers: []StorageTier{{128, 799}, {256, 899}}, FamilyKey: depreciation.FamilyPixel},
	}

	idx := &LaunchIndex{devices: make(map[string]Device, len(all))}
	for _, d := range all {
		idx.order = append(idx.order, d.Key)
		idx.devices[d.Key] = d
	}
	return idx
}

// GetDevice returns the device entry for key.  A missing entry is a
// configuration error at call sites that expect the key to exist.
func (x *LaunchIndex) GetDevice(key string) (Device, error) {
	d, ok := x.devices[key]
	if !ok {
		return Device{}, errors.New(errors.CodeDeviceNotFound, "unknown device").WithDetail("key=" + key)
	}
	return d, nil
}

// ListDevices returns devices of the given family in declaration order.
// An empty family lists every device.
func (x *LaunchIndex) ListDevices(family depreciation.Family) []Device {
	var out []Device
	for _, key := range x.order {
		d := x.devices[key]
		if family == "" || d.FamilyKey == family {
			out = append(out, d)
		}
	}
	return out
}

// ResolveLaunch returns the launch MSRP for the device+storage combination.
// An exact storage match wins; otherwise the numerically closest tier is
// used, with ties broken toward the first declared tier.
func (x *LaunchIndex) ResolveLaunch(key string, storageGB int) (float64, error) {
	d, err := x.GetDevice(key)
	if err != nil {
		return 0, err
	}
	if len(d.Tiers) == 0 {
		return 0, errors.New(errors.CodeConfiguration, "device has no storage tiers").WithDetail("key=" + key)
	}

	best := d.Tiers[0]
	for _, t := range d.Tiers {
		if t.GB == storageGB {
			return t.PriceUSD, nil
		}
		if math.Abs(float64(t.GB-storageGB)) < math.Abs(float64(best.GB-storageGB)) {
			best = t
		}
	}
	return best.PriceUSD, nil
}
