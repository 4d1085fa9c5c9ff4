package model

import (
	"fmt"
	"strings"
	"time"
)

// AnyMachineType is the wildcard accepted in Job.RequiredMachineType.
const AnyMachineType = "any"

// Job represents a production order waiting to be placed on a machine.
type Job struct {
	ID                  string    `json:"id"`
	ProductSize         string    `json:"product_size"`
	Quantity            int       `json:"quantity"`
	DueDate             time.Time `json:"due_date"`
	Priority            int       `json:"priority"`            // higher is more important
	ProcessingTimeMin   int       `json:"processing_time_min"` // minutes of machine time
	RequiredMachineType string    `json:"required_machine_type"`
	MoldID              string    `json:"mold_id,omitempty"`
	SetupGroup          string    `json:"setup_group,omitempty"`
	IsUrgent            bool      `json:"is_urgent"`
	CreatedAt           time.Time `json:"created_at"`
}

// ProcessingTime returns the processing time as a duration.
func (j Job) ProcessingTime() time.Duration {
	return time.Duration(j.ProcessingTimeMin) * time.Minute
}

// Accepts reports whether the job can run on a machine of the given type.
func (j Job) Accepts(machineType string) bool {
	return j.RequiredMachineType == AnyMachineType || j.RequiredMachineType == machineType
}

// Validate checks that the job carries enough information to be scheduled.
func (j Job) Validate() error {
	if j.ID == "" {
		return fmt.Errorf("job id is required")
	}
	if j.ProcessingTimeMin <= 0 {
		return fmt.Errorf("job %s: processing time must be positive", j.ID)
	}
	return nil
}

// MachineStatus is the operating state reported for a machine.
type MachineStatus string

const (
	StatusOperational MachineStatus = "operational"
	StatusWarning     MachineStatus = "warning"
	StatusMaintenance MachineStatus = "maintenance"
	StatusOffline     MachineStatus = "offline"
)

// ParseMachineStatus converts a string to a MachineStatus.
func ParseMachineStatus(s string) (MachineStatus, error) {
	switch st := MachineStatus(strings.ToLower(strings.TrimSpace(s))); st {
	case StatusOperational, StatusWarning, StatusMaintenance, StatusOffline:
		return st, nil
	default:
		return "", fmt.Errorf("unknown machine status %q", s)
	}
}

// Machine is a production resource jobs are assigned to.
type Machine struct {
	ID         string        `json:"id"`
	Name       string        `json:"name"`
	Type       string        `json:"type"`
	Status     MachineStatus `json:"status"`
	SetupGroup string        `json:"setup_group,omitempty"`
}

// Assignable returns true when the machine may receive jobs.
func (m Machine) Assignable() bool {
	return m.Status == StatusOperational
}

// OperationalMachines returns the assignable subset, preserving order.
func OperationalMachines(machines []Machine) []Machine {
	out := make([]Machine, 0, len(machines))
	for _, m := range machines {
		if m.Assignable() {
			out = append(out, m)
		}
	}
	return out
}

// RiskWindow flags a period of elevated failure risk on a machine.
type RiskWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Risk  float64   `json:"risk"`
}

// Overlaps reports whether [start, end) intersects the window.
func (w RiskWindow) Overlaps(start, end time.Time) bool {
	return start.Before(w.End) && end.After(w.Start)
}

// RiskWindows groups risk windows by machine ID.
type RiskWindows map[string][]RiskWindow
