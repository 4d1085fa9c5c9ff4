package cmd

import (
	"github.com/spf13/cobra"

	"github.com/kilianp07/plantsched/internal/dataset"
	"github.com/kilianp07/plantsched/pkg/export"
)

var compareOpts struct {
	input  string
	format string
	model  string
}

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Run baseline and risk-aware strategies and report the KPI delta",
	RunE:  runCompare,
}

func init() {
	f := compareCmd.Flags()
	f.StringVar(&compareOpts.input, "input", "", "scheduling input JSON")
	f.StringVar(&compareOpts.format, "format", "json", "output format: json or csv")
	f.StringVar(&compareOpts.model, "model", "", "risk model used to score machine_features")
	_ = compareCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(compareCmd)
}

func runCompare(cmd *cobra.Command, _ []string) error {
	format, err := export.ParseFormat(compareOpts.format)
	if err != nil {
		return err
	}
	in, err := dataset.LoadInput(compareOpts.input)
	if err != nil {
		return err
	}
	svc, err := newService()
	if err != nil {
		return err
	}
	defer svc.Close()
	defer svc.Monitor.Recover()
	if compareOpts.model != "" {
		if err := svc.LoadModel(compareOpts.model); err != nil {
			return err
		}
	}

	cmp, err := svc.Compare(cmd.Context(), in)
	if werr := export.Write(cmd.OutOrStdout(), format, cmp); werr != nil {
		return werr
	}
	return err
}
