package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tradeinlabs/phoneworth/internal/domain/catalog"
	"github.com/tradeinlabs/phoneworth/internal/domain/depreciation"
)

// deviceList wraps launch registry entries for table output.
type deviceList struct {
	Devices []catalog.Device `json:"devices"`
}

func (l deviceList) TableHeaders() []string {
	return []string{"KEY", "NAME", "RELEASE", "FAMILY", "STORAGES"}
}

func (l deviceList) TableRows() [][]string {
	rows := make([][]string, 0, len(l.Devices))
	for _, d := range l.Devices {
		storages := make([]string, 0, len(d.Tiers))
		for _, s := range d.Storages() {
			storages = append(storages, fmt.Sprintf("%d", s))
		}
		rows = append(rows, []string{
			d.Key, d.Name, d.Release, string(d.FamilyKey), strings.Join(storages, ","),
		})
	}
	return rows
}

func newDevicesCmd(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "devices [family]",
		Short: "List devices in the launch price registry, optionally by family",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var family depreciation.Family
			if len(args) == 1 {
				family = depreciation.Family(args[0])
			}

			devices := catalog.NewLaunchIndex().ListDevices(family)
			if len(devices) == 0 {
				return fmt.Errorf("no devices found for family %q", family)
			}
			return printResult(cmd, opts, deviceList{Devices: devices})
		},
	}
}
