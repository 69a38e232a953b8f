package models

import "time"

// RequestRecord is one API request as stored in the local request log.
type RequestRecord struct {
	Timestamp  time.Time
	RequestID  string
	Method     string
	Path       string
	Error      string
	StatusCode int
	DurationMs int64
	ID         int64
}

// Failed reports whether the request errored or returned a non-2xx status.
func (r RequestRecord) Failed() bool {
	return r.Error != "" || r.StatusCode < 200 || r.StatusCode > 299
}

// ReportDownload is one saved KPI report.
type ReportDownload struct {
	DownloadedAt time.Time
	Username     string
	FileName     string
	Path         string
	Bytes        int64
	ID           int64
}
