package models

import (
	"fmt"
	"strings"
)

// LogTypeError is the log type counted by the error chart.
const LogTypeError = "ERROR"

// LogEntry is a single machine event.
type LogEntry struct {
	ID          int64     `json:"id"`
	Timestamp   Timestamp `json:"timestamp"`
	Message     string    `json:"message"`
	Type        string    `json:"type"`
	Code        string    `json:"code,omitempty"`
	MachineID   int       `json:"machineId,omitempty"`
	MachineName string    `json:"machineName,omitempty"`
}

// IsError reports whether the entry type is ERROR, ignoring case.
func (l LogEntry) IsError() bool {
	return strings.EqualFold(strings.TrimSpace(l.Type), LogTypeError)
}

// MachineErrorCount is the number of ERROR entries for one machine.
type MachineErrorCount struct {
	MachineID   int
	MachineName string
	Count       int
}

// MachineLabel returns the fallback label for a machine without a name.
// Zero means the ID is unknown.
func MachineLabel(id int) string {
	if id == 0 {
		return "Machine ?"
	}
	return fmt.Sprintf("Machine %d", id)
}

// CountErrorsByMachine groups ERROR entries by machine ID and name.
// Groups keep the order in which their first entry appears.
func CountErrorsByMachine(logs []LogEntry) []MachineErrorCount {
	type groupKey struct {
		id   int
		name string
	}

	index := make(map[groupKey]int)
	var counts []MachineErrorCount

	for _, l := range logs {
		if !l.IsError() {
			continue
		}

		name := l.MachineName
		if name == "" {
			name = MachineLabel(l.MachineID)
		}

		k := groupKey{id: l.MachineID, name: name}
		if i, ok := index[k]; ok {
			counts[i].Count++
			continue
		}

		index[k] = len(counts)
		counts = append(counts, MachineErrorCount{
			MachineID:   l.MachineID,
			MachineName: name,
			Count:       1,
		})
	}

	return counts
}

// TotalErrors sums the counts.
func TotalErrors(counts []MachineErrorCount) int {
	total := 0
	for _, c := range counts {
		total += c.Count
	}
	return total
}
