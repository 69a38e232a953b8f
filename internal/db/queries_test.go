package db

import (
	"context"
	"testing"
	"time"

	"github.com/j-veylop/factory-dashboard-tui/internal/models"
)

func TestInsertAndGetRecentRequests(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()
	ctx := context.Background()

	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	recs := []models.RequestRecord{
		{Timestamp: base, RequestID: "a", Method: "GET", Path: "/machines", StatusCode: 200, DurationMs: 12},
		{Timestamp: base.Add(time.Minute), Method: "GET", Path: "/sp/kpis", StatusCode: 500, DurationMs: 30},
		{Timestamp: base.Add(2 * time.Minute), RequestID: "c", Method: "POST", Path: "/login", Error: "refused"},
	}
	for i := range recs {
		if err := db.InsertRequest(ctx, &recs[i]); err != nil {
			t.Fatalf("InsertRequest() failed: %v", err)
		}
		if recs[i].ID == 0 {
			t.Error("expected ID to be set")
		}
	}

	got, err := db.GetRecentRequests(ctx, 2)
	if err != nil {
		t.Fatalf("GetRecentRequests() failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d records, want 2", len(got))
	}
	if got[0].Path != "/login" || got[0].Error != "refused" || got[0].RequestID != "c" {
		t.Errorf("newest record = %+v", got[0])
	}
	if got[1].Path != "/sp/kpis" || got[1].RequestID != "" {
		t.Errorf("second record = %+v", got[1])
	}
	if !got[0].Timestamp.Equal(base.Add(2 * time.Minute)) {
		t.Errorf("timestamp = %v, want %v", got[0].Timestamp, base.Add(2*time.Minute))
	}
}

func TestRecordRequest(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	db.RecordRequest(models.RequestRecord{Method: "GET", Path: "/machines", StatusCode: 200})

	got, err := db.GetRecentRequests(context.Background(), 10)
	if err != nil {
		t.Fatalf("GetRecentRequests() failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d records, want 1", len(got))
	}
	if got[0].Timestamp.IsZero() {
		t.Error("zero timestamp should default to now")
	}
}

func TestGetRequestStats(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()
	ctx := context.Background()

	stats, err := db.GetRequestStats(ctx)
	if err != nil {
		t.Fatalf("GetRequestStats() on empty log failed: %v", err)
	}
	if stats.Total != 0 || stats.Failed != 0 {
		t.Errorf("empty stats = %+v", stats)
	}

	for _, rec := range []models.RequestRecord{
		{Method: "GET", Path: "/a", StatusCode: 200, DurationMs: 10},
		{Method: "GET", Path: "/b", StatusCode: 404, DurationMs: 20},
		{Method: "GET", Path: "/c", Error: "timeout", DurationMs: 30},
	} {
		if err := db.InsertRequest(ctx, &rec); err != nil {
			t.Fatalf("InsertRequest() failed: %v", err)
		}
	}

	stats, err = db.GetRequestStats(ctx)
	if err != nil {
		t.Fatalf("GetRequestStats() failed: %v", err)
	}
	if stats.Total != 3 {
		t.Errorf("Total = %d, want 3", stats.Total)
	}
	if stats.Failed != 2 {
		t.Errorf("Failed = %d, want 2", stats.Failed)
	}
	if stats.AvgDurationMs != 20 {
		t.Errorf("AvgDurationMs = %v, want 20", stats.AvgDurationMs)
	}
}

func TestPruneRequests(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	for i := range 5 {
		rec := models.RequestRecord{Timestamp: base.Add(time.Duration(i) * time.Minute), Method: "GET", Path: "/machines"}
		if err := db.InsertRequest(ctx, &rec); err != nil {
			t.Fatalf("InsertRequest() failed: %v", err)
		}
	}

	removed, err := db.PruneRequests(ctx, 2)
	if err != nil {
		t.Fatalf("PruneRequests() failed: %v", err)
	}
	if removed != 3 {
		t.Errorf("removed = %d, want 3", removed)
	}

	got, _ := db.GetRecentRequests(ctx, 10)
	if len(got) != 2 {
		t.Errorf("kept %d rows, want 2", len(got))
	}
}

func TestReportDownloads(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()
	ctx := context.Background()

	at := time.Date(2025, 3, 1, 12, 30, 0, 0, time.UTC)
	first := models.ReportDownload{DownloadedAt: at, Username: "alice", FileName: "a.xlsx", Path: "/tmp/a.xlsx", Bytes: 2048}
	second := models.ReportDownload{DownloadedAt: at.Add(time.Hour), FileName: "b.xlsx", Path: "/tmp/b.xlsx"}

	if err := db.InsertReportDownload(ctx, &first); err != nil {
		t.Fatalf("InsertReportDownload() failed: %v", err)
	}
	if err := db.InsertReportDownload(ctx, &second); err != nil {
		t.Fatalf("InsertReportDownload() failed: %v", err)
	}

	got, err := db.GetRecentReportDownloads(ctx, 10)
	if err != nil {
		t.Fatalf("GetRecentReportDownloads() failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d downloads, want 2", len(got))
	}
	if got[0].FileName != "b.xlsx" || got[0].Username != "" {
		t.Errorf("newest download = %+v", got[0])
	}
	if got[1].Username != "alice" || got[1].Bytes != 2048 || !got[1].DownloadedAt.Equal(at) {
		t.Errorf("oldest download = %+v", got[1])
	}
}

func TestParseTimeString(t *testing.T) {
	want := time.Date(2025, 3, 1, 12, 30, 0, 0, time.UTC)
	for _, s := range []string{"2025-03-01 12:30:00", "2025-03-01T12:30:00Z", "2025-03-01T12:30:00+00:00"} {
		got, ok := parseTimeString(s)
		if !ok || !got.Equal(want) {
			t.Errorf("parseTimeString(%q) = %v, %v", s, got, ok)
		}
	}
	if _, ok := parseTimeString("garbage"); ok {
		t.Error("garbage should not parse")
	}
}

func TestNullString(t *testing.T) {
	tests := []struct {
		input string
		valid bool
	}{
		{"", false},
		{"hello", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := nullString(tt.input)

			if result.Valid != tt.valid {
				t.Errorf("nullString(%q).Valid = %v, want %v", tt.input, result.Valid, tt.valid)
			}

			if result.Valid && result.String != tt.input {
				t.Errorf("nullString(%q).String = %q, want %q", tt.input, result.String, tt.input)
			}
		})
	}
}
