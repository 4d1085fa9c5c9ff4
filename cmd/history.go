package cmd

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/plantsched/core/model"
	"github.com/kilianp07/plantsched/infra/kpi"
)

var historyOpts struct {
	db    string
	mode  string
	since time.Duration
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List KPIs of past runs recorded by the sqlite metrics sink",
	RunE:  runHistory,
}

func init() {
	f := historyCmd.Flags()
	f.StringVar(&historyOpts.db, "db", "plantsched.db", "KPI history database")
	f.StringVar(&historyOpts.mode, "mode", string(model.ModeRiskAware), "baseline or risk-aware")
	f.DurationVar(&historyOpts.since, "since", 7*24*time.Hour, "look-back window")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, _ []string) error {
	mode, err := model.ParseMode(historyOpts.mode)
	if err != nil {
		return err
	}
	store, err := kpi.NewSQLiteStore(historyOpts.db)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	now := time.Now()
	recs, err := store.Query(mode, now.Add(-historyOpts.since), now)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tRUN\tITEMS\tMAKESPAN\tLATENESS\tON_TIME\tCHANGEOVERS\tRISK")
	for _, r := range recs {
		k := r.KPIs
		fmt.Fprintf(tw, "%s\t%s\t%d\t%.0f\t%.0f\t%.3f\t%d\t%.3f\n",
			r.Time.Format(time.RFC3339), r.RunID, r.Items, k.Makespan, k.TotalLateness, k.OnTimeRate, k.Changeovers, k.RiskCost)
	}
	return tw.Flush()
}
