// Package dataset reads scheduling inputs and risk training sets from JSON
// files.
package dataset

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"time"

	"github.com/kilianp07/plantsched/core/model"
	"github.com/kilianp07/plantsched/core/risk"
)

// ErrInvalidInput marks malformed scheduling input.
var ErrInvalidInput = errors.New("invalid scheduling input")

// Input is the scheduling snapshot handed to both strategies.
type Input struct {
	// PlanningStart fixes the instant machines become free. Zero means now.
	PlanningStart   time.Time            `json:"planning_start"`
	Jobs            []model.Job          `json:"jobs"`
	Machines        []model.Machine      `json:"machines"`
	MachineRisks    map[string]float64   `json:"machine_risks"`
	RiskWindows     model.RiskWindows    `json:"risk_windows"`
	MachineFeatures map[string][]float64 `json:"machine_features"`
}

// DecodeInput reads and validates an Input.
func DecodeInput(r io.Reader) (Input, error) {
	var in Input
	if err := json.NewDecoder(r).Decode(&in); err != nil {
		return Input{}, fmt.Errorf("decode input: %w", err)
	}
	if err := in.Validate(); err != nil {
		return Input{}, err
	}
	return in, nil
}

// LoadInput reads an Input from path.
func LoadInput(path string) (Input, error) {
	fh, err := os.Open(path)
	if err != nil {
		return Input{}, err
	}
	defer func() { _ = fh.Close() }()
	return DecodeInput(fh)
}

// Validate normalises machine statuses and rejects duplicate IDs and risks
// outside [0,1].
func (in *Input) Validate() error {
	seen := make(map[string]struct{}, len(in.Jobs))
	for _, j := range in.Jobs {
		if j.ID == "" {
			return fmt.Errorf("%w: job without id", ErrInvalidInput)
		}
		if _, dup := seen[j.ID]; dup {
			return fmt.Errorf("%w: duplicate job id %s", ErrInvalidInput, j.ID)
		}
		seen[j.ID] = struct{}{}
	}
	machines := make(map[string]struct{}, len(in.Machines))
	for i, m := range in.Machines {
		if m.ID == "" {
			return fmt.Errorf("%w: machine without id", ErrInvalidInput)
		}
		if _, dup := machines[m.ID]; dup {
			return fmt.Errorf("%w: duplicate machine id %s", ErrInvalidInput, m.ID)
		}
		machines[m.ID] = struct{}{}
		st, err := model.ParseMachineStatus(string(m.Status))
		if err != nil {
			return fmt.Errorf("%w: machine %s: %v", ErrInvalidInput, m.ID, err)
		}
		in.Machines[i].Status = st
	}
	for id, r := range in.MachineRisks {
		if r < 0 || r > 1 {
			return fmt.Errorf("%w: machine %s risk %.3f outside [0,1]", ErrInvalidInput, id, r)
		}
	}
	for id, ws := range in.RiskWindows {
		for _, w := range ws {
			if !w.End.After(w.Start) {
				return fmt.Errorf("%w: machine %s risk window ends before it starts", ErrInvalidInput, id)
			}
		}
	}
	return nil
}

// Risks merges explicit machine risks with model scores of the machine
// feature vectors. Explicit entries win. Without a model the explicit map is
// returned as is.
func (in Input) Risks(mf *risk.ModelFile) (map[string]float64, error) {
	if mf == nil || len(in.MachineFeatures) == 0 {
		return in.MachineRisks, nil
	}
	scored, err := risk.ScoreMachinesScaled(mf.Model, mf.Scaler, in.MachineFeatures)
	if err != nil {
		return nil, err
	}
	maps.Copy(scored, in.MachineRisks)
	return scored, nil
}

// DecodeTraining reads a training set.
func DecodeTraining(r io.Reader) (risk.TrainingData, error) {
	var data risk.TrainingData
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return risk.TrainingData{}, fmt.Errorf("decode training data: %w", err)
	}
	return data, nil
}

// LoadTraining reads a training set from path.
func LoadTraining(path string) (risk.TrainingData, error) {
	fh, err := os.Open(path)
	if err != nil {
		return risk.TrainingData{}, err
	}
	defer func() { _ = fh.Close() }()
	return DecodeTraining(fh)
}
