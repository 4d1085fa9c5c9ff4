package risk

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// MinMaxScaler maps every feature column into [0,1] using the bounds seen
// at fit time. Values outside those bounds are not clamped.
type MinMaxScaler struct {
	Min []float64 `json:"min"`
	Max []float64 `json:"max"`
}

// FitMinMax learns per-column bounds from rows.
func FitMinMax(rows [][]float64) (*MinMaxScaler, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("%w: nothing to fit", ErrTrainingData)
	}
	width := len(rows[0])
	col := make([]float64, len(rows))
	s := &MinMaxScaler{Min: make([]float64, width), Max: make([]float64, width)}
	for j := 0; j < width; j++ {
		for i, row := range rows {
			if len(row) != width {
				return nil, &DimensionMismatchError{Expected: width, Got: len(row)}
			}
			col[i] = row[j]
		}
		s.Min[j] = floats.Min(col)
		s.Max[j] = floats.Max(col)
	}
	return s, nil
}

// TransformRow scales a single vector. Constant columns map to 0.
func (s *MinMaxScaler) TransformRow(row []float64) ([]float64, error) {
	if len(row) != len(s.Min) {
		return nil, &DimensionMismatchError{Expected: len(s.Min), Got: len(row)}
	}
	out := make([]float64, len(row))
	for j, v := range row {
		span := s.Max[j] - s.Min[j]
		if span == 0 {
			continue
		}
		out[j] = (v - s.Min[j]) / span
	}
	return out, nil
}

// Transform scales every row.
func (s *MinMaxScaler) Transform(rows [][]float64) ([][]float64, error) {
	out := make([][]float64, len(rows))
	for i, r := range rows {
		t, err := s.TransformRow(r)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		out[i] = t
	}
	return out, nil
}
