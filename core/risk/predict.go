package risk

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/floats"
)

const (
	decisionThreshold = 0.5
	// maxExplained caps the number of features listed in an explanation.
	maxExplained = 5
)

// Contribution is the signed effect w_i*x_i of one feature on the logit.
type Contribution struct {
	Feature string  `json:"feature"`
	Value   float64 `json:"value"`
}

// Prediction is the model output for one feature vector.
type Prediction struct {
	Probability   float64        `json:"probability"`
	Label         int            `json:"label"`
	Contributions []Contribution `json:"contributions"`
	Explanation   string         `json:"explanation"`
}

// Predict scores a feature vector. The vector must have exactly one value per
// model weight; anything else yields a *DimensionMismatchError.
func Predict(features []float64, model TrainedModel) (Prediction, error) {
	if err := model.Validate(); err != nil {
		return Prediction{}, err
	}
	if len(features) != len(model.Weights) {
		return Prediction{}, &DimensionMismatchError{Expected: len(model.Weights), Got: len(features)}
	}
	p := Sigmoid(floats.Dot(model.Weights, features) + model.Bias)
	label := 0
	if p >= decisionThreshold {
		label = 1
	}
	contribs := topContributions(features, model)
	return Prediction{
		Probability:   p,
		Label:         label,
		Contributions: contribs,
		Explanation:   explain(contribs),
	}, nil
}

func topContributions(features []float64, model TrainedModel) []Contribution {
	all := make([]Contribution, len(features))
	for i, x := range features {
		all[i] = Contribution{Feature: model.FeatureNames[i], Value: model.Weights[i] * x}
	}
	sort.SliceStable(all, func(a, b int) bool {
		return math.Abs(all[a].Value) > math.Abs(all[b].Value)
	})
	if len(all) > maxExplained {
		all = all[:maxExplained]
	}
	return all
}

func explain(contribs []Contribution) string {
	parts := make([]string, len(contribs))
	for i, c := range contribs {
		parts[i] = fmt.Sprintf("%s: %+.4f", c.Feature, c.Value)
	}
	return strings.Join(parts, ", ")
}
