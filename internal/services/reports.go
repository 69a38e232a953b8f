package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/j-veylop/factory-dashboard-tui/internal/api"
	"github.com/j-veylop/factory-dashboard-tui/internal/logger"
	"github.com/j-veylop/factory-dashboard-tui/internal/models"
)

// DownloadReport fetches the latest KPI report into the reports directory.
// Without a stored token it returns api.ErrAuthRequired and sends nothing.
func (m *Manager) DownloadReport(ctx context.Context) (*models.ReportDownload, error) {
	return m.DownloadReportTo(ctx, m.cfg.ReportsDir)
}

// DownloadReportTo fetches the latest KPI report into dir.
func (m *Manager) DownloadReportTo(ctx context.Context, dir string) (*models.ReportDownload, error) {
	report, err := m.client.DownloadLatestReport(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := report.Body.Close(); err != nil {
			logger.Error("failed to close report body", "error", err)
		}
	}()

	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create reports directory: %w", err)
	}

	now := m.now()
	name := report.FileName
	if name == "" {
		name = api.DefaultReportFileName(now)
	}

	path, written, err := saveReport(dir, name, report.Body)
	if err != nil {
		return nil, &api.Error{Op: "download report", Message: api.MsgReport, Err: err}
	}

	dl := &models.ReportDownload{
		DownloadedAt: now,
		FileName:     filepath.Base(path),
		Path:         path,
		Bytes:        written,
	}
	if user := m.store.User(); user != nil {
		dl.Username = user.Username
	}

	if m.database != nil {
		if err := m.database.InsertReportDownload(ctx, dl); err != nil {
			logger.Warn("failed to record report download", "path", path, "error", err)
			m.broadcast(ErrorEvent{Service: "audit", Error: err})
		}
	}

	logger.Info("report saved", "path", path, "bytes", written)

	if m.notify != nil {
		body := fmt.Sprintf("%s (%s)", dl.FileName, humanize.Bytes(uint64(written)))
		if err := m.notify("KPI report downloaded", body, ""); err != nil {
			logger.Debug("desktop notification failed", "error", err)
		}
	}

	m.broadcast(ReportSavedEvent{Download: *dl})
	return dl, nil
}

// saveReport streams body to a temp file in dir, then renames it to a free
// variant of name. The temp file is removed on any failure.
func saveReport(dir, name string, body io.Reader) (string, int64, error) {
	tmp, err := os.CreateTemp(dir, ".kpi_report-*.part")
	if err != nil {
		return "", 0, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	cleanup := func() {
		if err := os.Remove(tmpPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			logger.Error("failed to remove temp file", "path", tmpPath, "error", err)
		}
	}

	written, err := io.Copy(tmp, body)
	if err != nil {
		_ = tmp.Close()
		cleanup()
		return "", 0, fmt.Errorf("write report: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return "", 0, fmt.Errorf("close temp file: %w", err)
	}

	dest := availablePath(dir, name)
	if err := os.Rename(tmpPath, dest); err != nil {
		cleanup()
		return "", 0, fmt.Errorf("rename report: %w", err)
	}

	return dest, written, nil
}

// availablePath returns dir/name, or dir/base (n).ext for the first n not taken.
func availablePath(dir, name string) string {
	path := filepath.Join(dir, name)
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return path
	}

	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	for n := 1; ; n++ {
		candidate := filepath.Join(dir, fmt.Sprintf("%s (%d)%s", base, n, ext))
		if _, err := os.Stat(candidate); errors.Is(err, os.ErrNotExist) {
			return candidate
		}
	}
}
