package styles

import (
	"testing"

	"github.com/j-veylop/factory-dashboard-tui/internal/models"
)

func TestGetStatusStyle(t *testing.T) {
	tests := []struct {
		status models.MachineStatus
		want   string
	}{
		{"Running", "running"},
		{"running", "running"},
		{"Idle", "idle"},
		{"IDLE", "idle"},
		{"Fault", "fault"},
		{"", "fault"},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			got := GetStatusStyle(tt.status)
			var want = StatusFaultStyle
			switch tt.want {
			case "running":
				want = StatusRunningStyle
			case "idle":
				want = StatusIdleStyle
			}
			if got.GetForeground() != want.GetForeground() {
				t.Errorf("GetStatusStyle(%q) foreground = %v, want %v", tt.status, got.GetForeground(), want.GetForeground())
			}
		})
	}
}
