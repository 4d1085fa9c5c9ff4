package risk

import (
	"errors"
	"fmt"
)

var (
	// ErrTrainingData is returned when the training matrix is empty, ragged
	// or does not line up with the labels.
	ErrTrainingData = errors.New("invalid training data")
	// ErrInvalidOptions is returned for unusable hyper-parameters.
	ErrInvalidOptions = errors.New("invalid training options")
	// ErrInvalidModel is returned when a model breaks the weights/names invariant.
	ErrInvalidModel = errors.New("invalid model")
	// ErrDimensionMismatch matches every *DimensionMismatchError.
	ErrDimensionMismatch = errors.New("dimension mismatch")
)

// DimensionMismatchError reports a feature vector whose length differs from
// what the model or scaler expects.
type DimensionMismatchError struct {
	Expected int
	Got      int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d features, got %d", e.Expected, e.Got)
}

// Is allows errors.Is(err, ErrDimensionMismatch).
func (e *DimensionMismatchError) Is(target error) bool {
	return target == ErrDimensionMismatch
}
