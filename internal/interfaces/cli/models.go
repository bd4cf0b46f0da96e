package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/tradeinlabs/phoneworth/internal/domain/depreciation"
)

// modelList wraps registry listings for table output.
type modelList struct {
	Models []depreciation.ModelInfo `json:"models"`
}

func (l modelList) TableHeaders() []string {
	return []string{"KEY", "NAME", "SAMPLES"}
}

func (l modelList) TableRows() [][]string {
	rows := make([][]string, 0, len(l.Models))
	for _, m := range l.Models {
		rows = append(rows, []string{string(m.Key), m.Name, strconv.Itoa(m.Samples)})
	}
	return rows
}

func newModelsCmd(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List the fitted depreciation model families",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			registry := depreciation.NewRegistry()
			return printResult(cmd, opts, modelList{Models: registry.List()})
		},
	}
}
