package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/j-veylop/factory-dashboard-tui/internal/logger"
	"github.com/j-veylop/factory-dashboard-tui/internal/models"
)

// RequestStats summarises the request log.
type RequestStats struct {
	Total         int64
	Failed        int64
	AvgDurationMs float64
}

// InsertRequest logs an API request to the database.
func (db *DB) InsertRequest(ctx context.Context, rec *models.RequestRecord) error {
	query := `
		INSERT INTO api_requests (
			timestamp, request_id, method, path, status_code, duration_ms, error
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	timestamp := rec.Timestamp
	if timestamp.IsZero() {
		timestamp = time.Now()
	}

	result, err := db.ExecContext(ctx, query,
		timestamp.UTC().Format(sqliteTimeLayout),
		nullString(rec.RequestID),
		rec.Method,
		rec.Path,
		rec.StatusCode,
		rec.DurationMs,
		nullString(rec.Error),
	)
	if err != nil {
		return fmt.Errorf("failed to insert API request: %w", err)
	}

	if id, err := result.LastInsertId(); err == nil {
		rec.ID = id
	}

	return nil
}

// RecordRequest stores rec, logging rather than returning failures.
func (db *DB) RecordRequest(rec models.RequestRecord) {
	if err := db.InsertRequest(context.Background(), &rec); err != nil {
		logger.Warn("failed to record API request", "path", rec.Path, "error", err)
	}
}

// GetRecentRequests returns the most recent API requests, newest first.
func (db *DB) GetRecentRequests(ctx context.Context, limit int) ([]models.RequestRecord, error) {
	query := `
		SELECT id, timestamp, request_id, method, path, status_code, duration_ms, error
		FROM api_requests
		ORDER BY timestamp DESC, id DESC
		LIMIT ?
	`

	rows, err := db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent API requests: %w", err)
	}
	defer closeRows(rows)

	var records []models.RequestRecord
	for rows.Next() {
		var rec models.RequestRecord
		var ts string
		var reqID, errStr sql.NullString

		err := rows.Scan(
			&rec.ID,
			&ts,
			&reqID,
			&rec.Method,
			&rec.Path,
			&rec.StatusCode,
			&rec.DurationMs,
			&errStr,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan API request: %w", err)
		}

		rec.Timestamp, _ = parseTimeString(ts)
		rec.RequestID = reqID.String
		rec.Error = errStr.String
		records = append(records, rec)
	}

	return records, rows.Err()
}

// GetRequestStats returns totals over the whole request log.
func (db *DB) GetRequestStats(ctx context.Context) (*RequestStats, error) {
	query := `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN error IS NOT NULL OR status_code < 200 OR status_code >= 300 THEN 1 ELSE 0 END), 0),
			COALESCE(AVG(duration_ms), 0)
		FROM api_requests
	`

	var stats RequestStats
	if err := db.QueryRowContext(ctx, query).Scan(&stats.Total, &stats.Failed, &stats.AvgDurationMs); err != nil {
		return nil, fmt.Errorf("failed to query request stats: %w", err)
	}
	return &stats, nil
}

// PruneRequests keeps only the newest keep rows of the request log.
func (db *DB) PruneRequests(ctx context.Context, keep int) (int64, error) {
	query := `
		DELETE FROM api_requests
		WHERE id NOT IN (
			SELECT id FROM api_requests ORDER BY timestamp DESC, id DESC LIMIT ?
		)
	`

	result, err := db.ExecContext(ctx, query, keep)
	if err != nil {
		return 0, fmt.Errorf("failed to prune API requests: %w", err)
	}
	return result.RowsAffected()
}

// InsertReportDownload records a saved report.
func (db *DB) InsertReportDownload(ctx context.Context, dl *models.ReportDownload) error {
	query := `
		INSERT INTO report_downloads (downloaded_at, username, file_name, path, bytes)
		VALUES (?, ?, ?, ?, ?)
	`

	downloadedAt := dl.DownloadedAt
	if downloadedAt.IsZero() {
		downloadedAt = time.Now()
	}

	result, err := db.ExecContext(ctx, query,
		downloadedAt.UTC().Format(sqliteTimeLayout),
		nullString(dl.Username),
		dl.FileName,
		dl.Path,
		dl.Bytes,
	)
	if err != nil {
		return fmt.Errorf("failed to insert report download: %w", err)
	}

	if id, err := result.LastInsertId(); err == nil {
		dl.ID = id
	}

	return nil
}

// GetRecentReportDownloads returns saved reports, newest first.
func (db *DB) GetRecentReportDownloads(ctx context.Context, limit int) ([]models.ReportDownload, error) {
	query := `
		SELECT id, downloaded_at, username, file_name, path, bytes
		FROM report_downloads
		ORDER BY downloaded_at DESC, id DESC
		LIMIT ?
	`

	rows, err := db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query report downloads: %w", err)
	}
	defer closeRows(rows)

	var downloads []models.ReportDownload
	for rows.Next() {
		var dl models.ReportDownload
		var ts string
		var username sql.NullString

		if err := rows.Scan(&dl.ID, &ts, &username, &dl.FileName, &dl.Path, &dl.Bytes); err != nil {
			return nil, fmt.Errorf("failed to scan report download: %w", err)
		}

		dl.DownloadedAt, _ = parseTimeString(ts)
		dl.Username = username.String
		downloads = append(downloads, dl)
	}

	return downloads, rows.Err()
}

// parseTimeString attempts to parse a time string using known formats.
func parseTimeString(s string) (time.Time, bool) {
	for _, format := range timeFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// nullString returns a sql.NullString from a string.
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func closeRows(rows *sql.Rows) {
	if err := rows.Close(); err != nil {
		logger.Error("failed to close rows", "error", err)
	}
}
