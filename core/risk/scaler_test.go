package risk

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMinMaxScaler(t *testing.T) {
	rows := [][]float64{{10, 5, 1}, {20, 5, 3}, {15, 5, 2}}
	s, err := FitMinMax(rows)
	require.NoError(t, err)
	assert.Equal(t, []float64{10, 5, 1}, s.Min)
	assert.Equal(t, []float64{20, 5, 3}, s.Max)

	out, err := s.Transform(rows)
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{0, 0, 0}, {1, 0, 1}, {0.5, 0, 0.5}}, out)

	_, err = s.TransformRow([]float64{1})
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestFitMinMaxErrors(t *testing.T) {
	_, err := FitMinMax(nil)
	assert.ErrorIs(t, err, ErrTrainingData)
	_, err = FitMinMax([][]float64{{1, 2}, {3}})
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestScoreMachines(t *testing.T) {
	model := TrainedModel{Weights: []float64{4}, Bias: -2, FeatureNames: []string{"vibration"}}
	risks, err := ScoreMachines(model, map[string][]float64{"A": {0}, "B": {1}})
	require.NoError(t, err)
	assert.Equal(t, Sigmoid(-2), risks["A"])
	assert.Equal(t, Sigmoid(2), risks["B"])

	_, err = ScoreMachines(model, map[string][]float64{"A": {0, 1}})
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestScoreMachinesScaled(t *testing.T) {
	model := TrainedModel{Weights: []float64{4}, Bias: -2, FeatureNames: []string{"temp"}}
	scaler := &MinMaxScaler{Min: []float64{20}, Max: []float64{80}}
	risks, err := ScoreMachinesScaled(model, scaler, map[string][]float64{"A": {20}, "B": {80}})
	require.NoError(t, err)
	assert.Equal(t, Sigmoid(-2), risks["A"])
	assert.Equal(t, Sigmoid(2), risks["B"])
}

func TestModelFileRoundTrip(t *testing.T) {
	f := ModelFile{
		Model:  TrainedModel{Weights: []float64{0.5, -1}, Bias: 0.1, Accuracy: 0.75, FeatureNames: []string{"a", "b"}},
		Scaler: &MinMaxScaler{Min: []float64{0, 0}, Max: []float64{1, 10}},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteModel(&buf, f))
	got, err := ReadModel(&buf)
	require.NoError(t, err)
	assert.Equal(t, f, got)

	bad := ModelFile{Model: f.Model, Scaler: &MinMaxScaler{Min: []float64{0}, Max: []float64{1}}}
	buf.Reset()
	require.NoError(t, WriteModel(&buf, bad))
	_, err = ReadModel(&buf)
	assert.ErrorIs(t, err, ErrInvalidModel)
}
