// Package models defines data structures and domain types.
package models

import "strings"

// MachineStatus is the operating status reported for a machine.
type MachineStatus string

const (
	// StatusRunning marks a machine that is producing.
	StatusRunning MachineStatus = "Running"
	// StatusIdle marks a machine that is powered but idle.
	StatusIdle MachineStatus = "Idle"
)

// IsRunning reports whether the status is Running. The ETL writes upper-case
// values, so the comparison ignores case.
func (s MachineStatus) IsRunning() bool {
	return strings.EqualFold(string(s), string(StatusRunning))
}

// IsIdle reports whether the status is Idle.
func (s MachineStatus) IsIdle() bool {
	return strings.EqualFold(string(s), string(StatusIdle))
}

// Machine is a production machine as listed by the API.
type Machine struct {
	ID     int           `json:"id"`
	Name   string        `json:"name"`
	Status MachineStatus `json:"status"`
	Line   string        `json:"line,omitempty"`
}

// DisplayName returns the machine name, or a placeholder built from the ID.
func (m Machine) DisplayName() string {
	if m.Name != "" {
		return m.Name
	}
	return MachineLabel(m.ID)
}
