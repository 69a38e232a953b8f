package models

// KpiRecord holds one machine's KPI aggregates over the reporting window.
type KpiRecord struct {
	MachineID       int     `json:"machineId,omitempty"`
	Name            string  `json:"name,omitempty"`
	Line            string  `json:"line,omitempty"`
	TotalThroughput float64 `json:"totalThroughput"`
	ErrorCount      int64   `json:"errorCount"`
}

// KpiTotals is the client-side aggregate shown on the KPI cards.
type KpiTotals struct {
	Throughput float64
	Errors     int64
	Machines   int
}

// SumKpis adds up throughput and error counts across all records.
func SumKpis(records []KpiRecord) KpiTotals {
	totals := KpiTotals{Machines: len(records)}
	for _, r := range records {
		totals.Throughput += r.TotalThroughput
		totals.Errors += r.ErrorCount
	}
	return totals
}
