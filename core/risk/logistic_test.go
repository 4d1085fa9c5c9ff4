package risk

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func andGate() ([][]float64, []int) {
	return [][]float64{{0, 0}, {0, 1}, {1, 0}, {1, 1}}, []int{0, 0, 0, 1}
}

func TestTrainAndGateOrdersProbabilities(t *testing.T) {
	features, labels := andGate()
	model, err := TrainLogisticRegression(features, labels, 0.1, 1000, []string{"temp", "vibration"})
	require.NoError(t, err)

	high, err := Predict([]float64{1, 1}, model)
	require.NoError(t, err)
	low, err := Predict([]float64{0, 0}, model)
	require.NoError(t, err)
	if high.Probability <= low.Probability {
		t.Fatalf("expected P(1,1)=%.4f > P(0,0)=%.4f", high.Probability, low.Probability)
	}
	assert.Equal(t, []string{"temp", "vibration"}, model.FeatureNames)
	for _, v := range []float64{model.Accuracy, model.Precision, model.Recall, model.F1} {
		assert.True(t, v >= 0 && v <= 1, "metric out of range: %v", v)
	}
}

func TestTrainIsDeterministic(t *testing.T) {
	features, labels := andGate()
	a, err := TrainLogisticRegression(features, labels, 0.1, 500, nil)
	require.NoError(t, err)
	b, err := TrainLogisticRegression(features, labels, 0.1, 500, nil)
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Equal(t, []string{"feature_0", "feature_1"}, a.FeatureNames)
}

func TestTrainSeparableDataScoresPerfectly(t *testing.T) {
	features := [][]float64{{0}, {0.1}, {0.9}, {1}}
	labels := []int{0, 0, 1, 1}
	model, err := TrainLogisticRegression(features, labels, 1, 5000, []string{"wear"})
	require.NoError(t, err)
	assert.Equal(t, 1.0, model.Accuracy)
	assert.Equal(t, 1.0, model.Precision)
	assert.Equal(t, 1.0, model.Recall)
	assert.Equal(t, 1.0, model.F1)
	assert.Greater(t, model.Weights[0], 0.0)
}

func TestTrainNoPositivesZeroesRatios(t *testing.T) {
	model, err := TrainLogisticRegression([][]float64{{0.2}, {0.8}}, []int{0, 0}, 0.5, 200, nil)
	require.NoError(t, err)
	assert.Equal(t, 1.0, model.Accuracy)
	assert.Zero(t, model.Precision)
	assert.Zero(t, model.Recall)
	assert.Zero(t, model.F1)
}

func TestTrainRejectsBadData(t *testing.T) {
	cases := map[string]TrainingData{
		"empty":          {},
		"label count":    {Features: [][]float64{{1}, {0}}, Labels: []int{1}},
		"ragged":         {Features: [][]float64{{1, 2}, {0}}, Labels: []int{1, 0}},
		"zero width":     {Features: [][]float64{{}, {}}, Labels: []int{1, 0}},
		"label value":    {Features: [][]float64{{1}, {0}}, Labels: []int{2, 0}},
		"names length":   {Features: [][]float64{{1}, {0}}, Labels: []int{1, 0}, FeatureNames: []string{"a", "b"}},
		"non finite row": {Features: [][]float64{{math.NaN()}, {0}}, Labels: []int{1, 0}},
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Train(context.Background(), data, DefaultOptions())
			assert.ErrorIs(t, err, ErrTrainingData)
		})
	}
}

func TestTrainRejectsBadOptions(t *testing.T) {
	features, labels := andGate()
	data := TrainingData{Features: features, Labels: labels}
	_, err := Train(context.Background(), data, Options{LearningRate: 0.1})
	assert.ErrorIs(t, err, ErrInvalidOptions)
	_, err = Train(context.Background(), data, Options{Iterations: 10})
	assert.ErrorIs(t, err, ErrInvalidOptions)
}

func TestTrainHonoursCancellation(t *testing.T) {
	features, labels := andGate()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Train(ctx, TrainingData{Features: features, Labels: labels}, DefaultOptions())
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestSigmoidClamps(t *testing.T) {
	assert.Equal(t, 0.5, Sigmoid(0))
	assert.Equal(t, Sigmoid(500), Sigmoid(1e9))
	assert.Equal(t, Sigmoid(-500), Sigmoid(-1e308))
	assert.False(t, math.IsNaN(Sigmoid(-1e308)))
	assert.Greater(t, Sigmoid(-1e308), 0.0)
}
