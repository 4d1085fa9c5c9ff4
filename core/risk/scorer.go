package risk

import (
	"fmt"
	"maps"
	"slices"
)

// ScoreMachines predicts a failure probability per machine from its current
// sensor vector. The result feeds the schedulers' machine risk map.
func ScoreMachines(model TrainedModel, features map[string][]float64) (map[string]float64, error) {
	risks := make(map[string]float64, len(features))
	for _, id := range slices.Sorted(maps.Keys(features)) {
		p, err := Predict(features[id], model)
		if err != nil {
			return nil, fmt.Errorf("machine %s: %w", id, err)
		}
		risks[id] = p.Probability
	}
	return risks, nil
}

// ScoreMachinesScaled applies scaler to each vector before scoring. A nil
// scaler scores the raw vectors.
func ScoreMachinesScaled(model TrainedModel, scaler *MinMaxScaler, features map[string][]float64) (map[string]float64, error) {
	if scaler == nil {
		return ScoreMachines(model, features)
	}
	scaled := make(map[string][]float64, len(features))
	for id, row := range features {
		s, err := scaler.TransformRow(row)
		if err != nil {
			return nil, fmt.Errorf("machine %s: %w", id, err)
		}
		scaled[id] = s
	}
	return ScoreMachines(model, scaled)
}
