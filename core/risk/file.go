package risk

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// ModelFile is the on-disk form of a trained model and the scaler its
// features were normalised with.
type ModelFile struct {
	Model  TrainedModel  `json:"model"`
	Scaler *MinMaxScaler `json:"scaler,omitempty"`
}

// WriteModel encodes f as indented JSON.
func WriteModel(w io.Writer, f ModelFile) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(f)
}

// ReadModel decodes and validates a ModelFile.
func ReadModel(r io.Reader) (ModelFile, error) {
	var f ModelFile
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return ModelFile{}, fmt.Errorf("decode model: %w", err)
	}
	if err := f.Model.Validate(); err != nil {
		return ModelFile{}, err
	}
	if f.Scaler != nil && (len(f.Scaler.Min) != len(f.Model.Weights) || len(f.Scaler.Max) != len(f.Model.Weights)) {
		return ModelFile{}, fmt.Errorf("%w: scaler width does not match model", ErrInvalidModel)
	}
	return f, nil
}

// LoadModelFile reads a ModelFile from path.
func LoadModelFile(path string) (ModelFile, error) {
	fh, err := os.Open(path)
	if err != nil {
		return ModelFile{}, err
	}
	defer func() { _ = fh.Close() }()
	return ReadModel(fh)
}
