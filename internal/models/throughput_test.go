package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestBucket_Next(t *testing.T) {
	if BucketHour.Next() != BucketDay {
		t.Error("hour should toggle to day")
	}
	if BucketDay.Next() != BucketHour {
		t.Error("day should toggle to hour")
	}
	if Bucket("").OrDefault() != BucketHour {
		t.Error("empty bucket should default to hour")
	}
}

func TestThroughputSeries_Decode(t *testing.T) {
	body := `{"points":[
		{"ts":"2025-03-01T10:00:00Z","throughput":12},
		{"ts":"2025-03-01T11:00:00","throughput":"7"}
	]}`

	var series ThroughputSeries
	if err := json.Unmarshal([]byte(body), &series); err == nil {
		t.Fatal("string throughput should not decode into a number")
	}

	body = `{"points":[
		{"ts":"2025-03-01T10:00:00Z","throughput":12},
		{"ts":"2025-03-01T11:00:00","throughput":7.5}
	]}`
	if err := json.Unmarshal([]byte(body), &series); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if len(series.Points) != 2 {
		t.Fatalf("got %d points, want 2", len(series.Points))
	}
	want := time.Date(2025, 3, 1, 11, 0, 0, 0, time.UTC)
	if !series.Points[1].TS.Equal(want) {
		t.Errorf("second ts = %v, want %v", series.Points[1].TS.Time, want)
	}

	values := series.Values()
	if values[0] != 12 || values[1] != 7.5 {
		t.Errorf("Values() = %v", values)
	}
	if labels := series.Labels(); len(labels) != 2 || labels[0] == "" {
		t.Errorf("Labels() = %v", labels)
	}
}

func TestThroughputSeries_Nil(t *testing.T) {
	var s *ThroughputSeries
	if !s.IsEmpty() {
		t.Error("nil series should be empty")
	}
	if s.Values() != nil || s.Labels() != nil {
		t.Error("nil series should have no values or labels")
	}
}
