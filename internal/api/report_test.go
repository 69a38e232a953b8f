package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDownloadLatestReport_NoToken(t *testing.T) {
	sent := false
	c := New(Options{
		BaseURL: "http://factory.test",
		HTTPClient: &http.Client{Transport: &MockRoundTripper{RoundTripFunc: func(req *http.Request) (*http.Response, error) {
			sent = true
			return jsonResponse(200, ""), nil
		}}},
		Tokens: staticTokens(""),
	})

	_, err := c.DownloadLatestReport(context.Background())
	assert.ErrorIs(t, err, ErrAuthRequired)
	assert.False(t, sent, "no request may be sent without a token")

	// A nil token source behaves the same.
	c.tokens = nil
	_, err = c.DownloadLatestReport(context.Background())
	assert.ErrorIs(t, err, ErrAuthRequired)
	assert.False(t, sent)
}

func TestDownloadLatestReport(t *testing.T) {
	c := New(Options{
		BaseURL: "http://factory.test",
		HTTPClient: &http.Client{Transport: &MockRoundTripper{RoundTripFunc: func(req *http.Request) (*http.Response, error) {
			assert.Equal(t, "/reports/latest", req.URL.Path)
			assert.Equal(t, "Bearer abc", req.Header.Get("Authorization"))
			return &http.Response{
				StatusCode: 200,
				Header: http.Header{
					"Content-Type":        []string{"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"},
					"Content-Disposition": []string{`attachment; filename="kpi_report_20250301_101500.xlsx"`},
				},
				ContentLength: 4,
				Body:          io.NopCloser(strings.NewReader("XLSX")),
			}, nil
		}}},
		Tokens: staticTokens("abc"),
	})

	report, err := c.DownloadLatestReport(context.Background())
	require.NoError(t, err)
	defer report.Body.Close()

	assert.Equal(t, "kpi_report_20250301_101500.xlsx", report.FileName)
	assert.Equal(t, int64(4), report.ContentLength)
	data, err := io.ReadAll(report.Body)
	require.NoError(t, err)
	assert.Equal(t, "XLSX", string(data))
}

func TestDownloadLatestReport_Unauthorized(t *testing.T) {
	c := New(Options{
		BaseURL: "http://factory.test",
		HTTPClient: &http.Client{Transport: &MockRoundTripper{RoundTripFunc: func(req *http.Request) (*http.Response, error) {
			return jsonResponse(401, `{"error":"expired"}`), nil
		}}},
		Tokens: staticTokens("stale"),
	})

	_, err := c.DownloadLatestReport(context.Background())
	require.Error(t, err)
	assert.Equal(t, MsgReport, err.Error())

	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 401, apiErr.StatusCode)
	assert.Equal(t, "Failed to download report (HTTP 401)", apiErr.Detail())
}

func TestAttachmentName(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{`attachment; filename="report.xlsx"`, "report.xlsx"},
		{`attachment; filename=report.xlsx`, "report.xlsx"},
		{`attachment; filename="../../etc/passwd"`, "passwd"},
		{`attachment; filename="..\\..\\evil.xlsx"`, "evil.xlsx"},
		{`attachment; filename*=UTF-8''r%C3%A9sum%C3%A9.xlsx`, "résumé.xlsx"},
		{`attachment`, ""},
		{`attachment; filename=".."`, ""},
		{``, ""},
		{`;;;`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			assert.Equal(t, tt.want, attachmentName(tt.header))
		})
	}
}

func TestDefaultReportFileName(t *testing.T) {
	ts := time.Date(2025, 3, 1, 10, 15, 0, 0, time.UTC)
	assert.Equal(t, "kpi_report_20250301_101500.xlsx", DefaultReportFileName(ts))
}
