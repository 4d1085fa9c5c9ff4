package cmd

import (
	"github.com/spf13/cobra"

	"github.com/kilianp07/plantsched/core/model"
	"github.com/kilianp07/plantsched/internal/dataset"
	"github.com/kilianp07/plantsched/pkg/export"
)

var scheduleOpts struct {
	input  string
	mode   string
	format string
	model  string
}

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Build a schedule with one strategy",
	RunE:  runSchedule,
}

func init() {
	f := scheduleCmd.Flags()
	f.StringVar(&scheduleOpts.input, "input", "", "scheduling input JSON")
	f.StringVar(&scheduleOpts.mode, "mode", string(model.ModeRiskAware), "baseline or risk-aware")
	f.StringVar(&scheduleOpts.format, "format", "json", "output format: json or csv")
	f.StringVar(&scheduleOpts.model, "model", "", "risk model used to score machine_features")
	_ = scheduleCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(scheduleCmd)
}

func runSchedule(cmd *cobra.Command, _ []string) error {
	mode, err := model.ParseMode(scheduleOpts.mode)
	if err != nil {
		return err
	}
	format, err := export.ParseFormat(scheduleOpts.format)
	if err != nil {
		return err
	}
	in, err := dataset.LoadInput(scheduleOpts.input)
	if err != nil {
		return err
	}
	svc, err := newService()
	if err != nil {
		return err
	}
	defer svc.Close()
	defer svc.Monitor.Recover()
	if scheduleOpts.model != "" {
		if err := svc.LoadModel(scheduleOpts.model); err != nil {
			return err
		}
	}

	res, err := svc.Schedule(cmd.Context(), in, mode)
	if werr := export.Write(cmd.OutOrStdout(), format, res); werr != nil {
		return werr
	}
	return err
}
