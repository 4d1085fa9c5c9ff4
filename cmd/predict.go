package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kilianp07/plantsched/pkg/export"
)

var predictOpts struct {
	model    string
	features string
}

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Score one feature vector with a trained model",
	RunE:  runPredict,
}

func init() {
	f := predictCmd.Flags()
	f.StringVar(&predictOpts.model, "model", "model.json", "trained model file")
	f.StringVar(&predictOpts.features, "features", "", "comma separated feature values")
	_ = predictCmd.MarkFlagRequired("features")
	rootCmd.AddCommand(predictCmd)
}

func parseFeatures(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	out := make([]float64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("feature %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}

func runPredict(cmd *cobra.Command, _ []string) error {
	features, err := parseFeatures(predictOpts.features)
	if err != nil {
		return err
	}
	svc, err := newService()
	if err != nil {
		return err
	}
	defer svc.Close()
	defer svc.Monitor.Recover()
	if err := svc.LoadModel(predictOpts.model); err != nil {
		return err
	}
	p, err := svc.Predict(features)
	if err != nil {
		return err
	}
	return export.WriteJSON(cmd.OutOrStdout(), p)
}
