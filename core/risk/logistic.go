package risk

import (
	"context"
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/floats"
)

// sigmoidClamp bounds the logit before exponentiation.
const sigmoidClamp = 500.0

// TrainingData is the labelled, pre-normalised training matrix.
type TrainingData struct {
	Features     [][]float64 `json:"features"`
	Labels       []int       `json:"labels"`
	FeatureNames []string    `json:"feature_names"`
}

// Options controls gradient descent.
type Options struct {
	LearningRate float64
	Iterations   int
	// Timeout bounds the whole training run. Zero means no deadline.
	Timeout time.Duration
}

// DefaultOptions returns the hyper-parameters used by the platform.
func DefaultOptions() Options {
	return Options{LearningRate: 0.1, Iterations: 1000}
}

// TrainedModel holds the fitted logistic regression and its training-set scores.
type TrainedModel struct {
	Weights      []float64 `json:"weights"`
	Bias         float64   `json:"bias"`
	Accuracy     float64   `json:"accuracy"`
	Precision    float64   `json:"precision"`
	Recall       float64   `json:"recall"`
	F1           float64   `json:"f1"`
	FeatureNames []string  `json:"feature_names"`
}

// Validate checks the weights/feature names invariant.
func (m TrainedModel) Validate() error {
	if len(m.Weights) == 0 {
		return fmt.Errorf("%w: no weights", ErrInvalidModel)
	}
	if len(m.Weights) != len(m.FeatureNames) {
		return fmt.Errorf("%w: %d weights for %d feature names", ErrInvalidModel, len(m.Weights), len(m.FeatureNames))
	}
	return nil
}

// Sigmoid returns 1/(1+e^-z) with z clamped to [-500, 500].
func Sigmoid(z float64) float64 {
	if z > sigmoidClamp {
		z = sigmoidClamp
	} else if z < -sigmoidClamp {
		z = -sigmoidClamp
	}
	return 1 / (1 + math.Exp(-z))
}

// TrainLogisticRegression fits a model without cancellation support.
func TrainLogisticRegression(features [][]float64, labels []int, learningRate float64, iterations int, featureNames []string) (TrainedModel, error) {
	data := TrainingData{Features: features, Labels: labels, FeatureNames: featureNames}
	return Train(context.Background(), data, Options{LearningRate: learningRate, Iterations: iterations})
}

// Train runs exactly opts.Iterations full-batch gradient descent steps on the
// cross-entropy loss. Samples are accumulated in input order on every step so
// identical inputs always produce identical weights. The context is checked
// between iterations.
func Train(ctx context.Context, data TrainingData, opts Options) (TrainedModel, error) {
	width, err := validateTrainingData(data)
	if err != nil {
		return TrainedModel{}, err
	}
	if opts.Iterations <= 0 {
		return TrainedModel{}, fmt.Errorf("%w: iterations must be positive", ErrInvalidOptions)
	}
	if opts.LearningRate <= 0 || math.IsNaN(opts.LearningRate) || math.IsInf(opts.LearningRate, 0) {
		return TrainedModel{}, fmt.Errorf("%w: learning rate must be a positive number", ErrInvalidOptions)
	}
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	m := float64(len(data.Features))
	weights := make([]float64, width)
	grad := make([]float64, width)
	var bias float64

	for it := 0; it < opts.Iterations; it++ {
		if err := ctx.Err(); err != nil {
			return TrainedModel{}, fmt.Errorf("training stopped after %d of %d iterations: %w", it, opts.Iterations, err)
		}
		for i := range grad {
			grad[i] = 0
		}
		var gradBias float64
		for i, x := range data.Features {
			diff := Sigmoid(floats.Dot(weights, x)+bias) - float64(data.Labels[i])
			floats.AddScaled(grad, diff, x)
			gradBias += diff
		}
		floats.AddScaled(weights, -opts.LearningRate/m, grad)
		bias -= opts.LearningRate * gradBias / m
	}

	model := TrainedModel{
		Weights:      weights,
		Bias:         bias,
		FeatureNames: featureNames(data.FeatureNames, width),
	}
	model.Accuracy, model.Precision, model.Recall, model.F1 = evaluate(model, data)
	return model, nil
}

func validateTrainingData(data TrainingData) (int, error) {
	if len(data.Features) == 0 {
		return 0, fmt.Errorf("%w: no samples", ErrTrainingData)
	}
	if len(data.Features) != len(data.Labels) {
		return 0, fmt.Errorf("%w: %d samples but %d labels", ErrTrainingData, len(data.Features), len(data.Labels))
	}
	width := len(data.Features[0])
	if width == 0 {
		return 0, fmt.Errorf("%w: samples have no features", ErrTrainingData)
	}
	for i, row := range data.Features {
		if len(row) != width {
			return 0, fmt.Errorf("%w: row %d has %d features, expected %d", ErrTrainingData, i, len(row), width)
		}
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return 0, fmt.Errorf("%w: row %d feature %d is not finite", ErrTrainingData, i, j)
			}
		}
	}
	for i, l := range data.Labels {
		if l != 0 && l != 1 {
			return 0, fmt.Errorf("%w: label %d is %d, expected 0 or 1", ErrTrainingData, i, l)
		}
	}
	if len(data.FeatureNames) != 0 && len(data.FeatureNames) != width {
		return 0, fmt.Errorf("%w: %d feature names for %d features", ErrTrainingData, len(data.FeatureNames), width)
	}
	return width, nil
}

func featureNames(names []string, width int) []string {
	out := make([]string, width)
	for i := range out {
		if i < len(names) && names[i] != "" {
			out[i] = names[i]
		} else {
			out[i] = fmt.Sprintf("feature_%d", i)
		}
	}
	return out
}

// evaluate scores the model on the data it was fitted on. There is no
// held-out split, so these numbers are optimistic.
func evaluate(model TrainedModel, data TrainingData) (accuracy, precision, recall, f1 float64) {
	var tp, tn, fp, fn float64
	for i, x := range data.Features {
		pred := 0
		if Sigmoid(floats.Dot(model.Weights, x)+model.Bias) >= decisionThreshold {
			pred = 1
		}
		switch {
		case pred == 1 && data.Labels[i] == 1:
			tp++
		case pred == 0 && data.Labels[i] == 0:
			tn++
		case pred == 1:
			fp++
		default:
			fn++
		}
	}
	accuracy = (tp + tn) / float64(len(data.Features))
	if tp+fp > 0 {
		precision = tp / (tp + fp)
	}
	if tp+fn > 0 {
		recall = tp / (tp + fn)
	}
	if precision+recall > 0 {
		f1 = 2 * precision * recall / (precision + recall)
	}
	return accuracy, precision, recall, f1
}
