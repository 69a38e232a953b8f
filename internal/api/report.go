package api

import (
	"context"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
	"time"
)

// ReportFileLayout is the timestamp layout of generated report file names.
const ReportFileLayout = "20060102_150405"

// Report is a downloaded report body. The caller must close Body.
type Report struct {
	Body          io.ReadCloser
	FileName      string
	ContentType   string
	ContentLength int64
}

// DefaultReportFileName names a report downloaded at t when the server sends no name.
func DefaultReportFileName(t time.Time) string {
	return "kpi_report_" + t.Format(ReportFileLayout) + ".xlsx"
}

// DownloadLatestReport requests the latest KPI workbook with the stored bearer
// token. Without a token it returns ErrAuthRequired and sends nothing.
func (c *Client) DownloadLatestReport(ctx context.Context) (*Report, error) {
	token := ""
	if c.tokens != nil {
		token = c.tokens.Token()
	}
	if token == "" {
		return nil, ErrAuthRequired
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/reports/latest", nil)
	if err != nil {
		return nil, &Error{Op: "download report", Message: MsgReport, Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &Error{Op: "download report", Message: MsgReport, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		closeBody(resp)
		return nil, &Error{Op: "download report", Message: MsgReport, StatusCode: resp.StatusCode}
	}

	return &Report{
		Body:          resp.Body,
		FileName:      attachmentName(resp.Header.Get("Content-Disposition")),
		ContentType:   resp.Header.Get("Content-Type"),
		ContentLength: resp.ContentLength,
	}, nil
}

// attachmentName returns the base file name from a Content-Disposition header, or "".
func attachmentName(header string) string {
	if header == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(header)
	if err != nil {
		return ""
	}
	name := strings.TrimSpace(params["filename"])
	if name == "" {
		return ""
	}
	name = filepath.Base(filepath.Clean("/" + strings.ReplaceAll(name, "\\", "/")))
	if name == "/" || name == "." || name == ".." {
		return ""
	}
	return name
}
