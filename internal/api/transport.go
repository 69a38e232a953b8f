package api

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/j-veylop/factory-dashboard-tui/internal/models"
)

// RequestIDHeader carries a per-request UUID for correlating with server logs.
const RequestIDHeader = "X-Request-ID"

// Recorder receives one record per request sent by the client.
type Recorder interface {
	RecordRequest(rec models.RequestRecord)
}

// RecorderFunc adapts a function to Recorder.
type RecorderFunc func(rec models.RequestRecord)

// RecordRequest calls f.
func (f RecorderFunc) RecordRequest(rec models.RequestRecord) {
	f(rec)
}

// recordingTransport tags requests with an ID and reports their outcome.
type recordingTransport struct {
	next     http.RoundTripper
	recorder Recorder
	now      func() time.Time
}

func newRecordingTransport(next http.RoundTripper, recorder Recorder) *recordingTransport {
	if next == nil {
		next = http.DefaultTransport
	}
	return &recordingTransport{next: next, recorder: recorder, now: time.Now}
}

// RoundTrip implements http.RoundTripper.
func (t *recordingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	id := req.Header.Get(RequestIDHeader)
	if id == "" {
		id = uuid.NewString()
		req = req.Clone(req.Context())
		req.Header.Set(RequestIDHeader, id)
	}

	start := t.now()
	resp, err := t.next.RoundTrip(req)

	if t.recorder != nil {
		rec := models.RequestRecord{
			Timestamp:  start,
			RequestID:  id,
			Method:     req.Method,
			Path:       req.URL.Path,
			DurationMs: t.now().Sub(start).Milliseconds(),
		}
		if err != nil {
			rec.Error = err.Error()
		} else {
			rec.StatusCode = resp.StatusCode
		}
		t.recorder.RecordRequest(rec)
	}

	return resp, err
}
