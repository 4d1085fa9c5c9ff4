package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kilianp07/plantsched/core/risk"
	"github.com/kilianp07/plantsched/internal/dataset"
)

var trainOpts struct {
	data      string
	out       string
	normalize bool
}

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Fit the machine failure risk model",
	RunE:  runTrain,
}

func init() {
	f := trainCmd.Flags()
	f.StringVar(&trainOpts.data, "data", "", "training set JSON")
	f.StringVar(&trainOpts.out, "out", "model.json", "model output file")
	f.BoolVar(&trainOpts.normalize, "normalize", false, "min-max normalise features before training")
	_ = trainCmd.MarkFlagRequired("data")
	rootCmd.AddCommand(trainCmd)
}

func runTrain(cmd *cobra.Command, _ []string) error {
	data, err := dataset.LoadTraining(trainOpts.data)
	if err != nil {
		return err
	}
	svc, err := newService()
	if err != nil {
		return err
	}
	defer svc.Close()
	defer svc.Monitor.Recover()

	mf, trainErr := svc.Train(cmd.Context(), data, trainOpts.normalize)
	if len(mf.Model.Weights) == 0 {
		return trainErr
	}
	fh, err := os.Create(trainOpts.out)
	if err != nil {
		return err
	}
	if err := risk.WriteModel(fh, mf); err != nil {
		_ = fh.Close()
		return err
	}
	if err := fh.Close(); err != nil {
		return err
	}
	m := mf.Model
	fmt.Fprintf(cmd.OutOrStdout(), "accuracy=%.4f precision=%.4f recall=%.4f f1=%.4f -> %s\n",
		m.Accuracy, m.Precision, m.Recall, m.F1, trainOpts.out)
	return trainErr
}
