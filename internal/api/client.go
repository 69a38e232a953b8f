// Package api provides the HTTP client for the factory API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/j-veylop/factory-dashboard-tui/internal/logger"
	"github.com/j-veylop/factory-dashboard-tui/internal/models"
	"github.com/j-veylop/factory-dashboard-tui/internal/session"
)

// DefaultLatestLogsTop is the page size used when LatestLogsQuery.Top is unset.
const DefaultLatestLogsTop = 50

// TokenSource supplies the bearer token for authenticated calls.
type TokenSource interface {
	Token() string
}

// Options configures a Client.
type Options struct {
	BaseURL    string
	HTTPClient *http.Client
	Tokens     TokenSource
	Recorder   Recorder
}

// Client talks to the factory API. It is safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
}

// LatestLogsQuery filters GetLatestLogs.
type LatestLogsQuery struct {
	Top       int
	MachineID int
}

// KpiQuery bounds GetKpis. Zero times are omitted so the server applies its default window.
type KpiQuery struct {
	From time.Time
	To   time.Time
}

// ThroughputQuery filters GetThroughput.
type ThroughputQuery struct {
	From      time.Time
	To        time.Time
	Bucket    models.Bucket
	MachineID *int // nil for all machines
}

// LoginResult is the body returned by a successful login.
type LoginResult struct {
	Token string        `json:"token"`
	User  *session.User `json:"user"`
}

// New creates a client from opts.
func New(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if opts.Recorder != nil {
		wrapped := *httpClient
		wrapped.Transport = newRecordingTransport(httpClient.Transport, opts.Recorder)
		httpClient = &wrapped
	}

	return &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		http:    httpClient,
		tokens:  opts.Tokens,
	}
}

// BaseURL returns the API root the client was configured with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ListMachines returns every machine.
func (c *Client) ListMachines(ctx context.Context) ([]models.Machine, error) {
	var machines []models.Machine
	if err := c.getJSON(ctx, "list machines", MsgMachines, "/machines", nil, &machines); err != nil {
		return nil, err
	}
	return machines, nil
}

// GetLogs returns the events of one machine, newest first.
func (c *Client) GetLogs(ctx context.Context, machineID int) ([]models.LogEntry, error) {
	var logs []models.LogEntry
	path := "/logs/" + strconv.Itoa(machineID)
	if err := c.getJSON(ctx, "get logs", MsgLogs, path, nil, &logs); err != nil {
		return nil, err
	}
	return logs, nil
}

// GetLatestLogs returns the most recent events across machines.
func (c *Client) GetLatestLogs(ctx context.Context, q LatestLogsQuery) ([]models.LogEntry, error) {
	top := q.Top
	if top <= 0 {
		top = DefaultLatestLogsTop
	}

	params := url.Values{}
	params.Set("top", strconv.Itoa(top))
	if q.MachineID != 0 {
		params.Set("machineId", strconv.Itoa(q.MachineID))
	}

	var logs []models.LogEntry
	if err := c.getJSON(ctx, "get latest logs", MsgLatestLogs, "/sp/latest-logs", params, &logs); err != nil {
		return nil, err
	}
	return logs, nil
}

// GetKpis returns per-machine KPI aggregates.
func (c *Client) GetKpis(ctx context.Context, q KpiQuery) ([]models.KpiRecord, error) {
	params := url.Values{}
	setTime(params, "from", q.From)
	setTime(params, "to", q.To)

	var kpis []models.KpiRecord
	if err := c.getJSON(ctx, "get kpis", MsgKpis, "/sp/kpis", params, &kpis); err != nil {
		return nil, err
	}
	return kpis, nil
}

// GetThroughput returns the bucketed throughput series.
func (c *Client) GetThroughput(ctx context.Context, q ThroughputQuery) (*models.ThroughputSeries, error) {
	params := url.Values{}
	setTime(params, "from", q.From)
	setTime(params, "to", q.To)
	params.Set("bucket", q.Bucket.OrDefault().String())
	if q.MachineID != nil {
		params.Set("machineId", strconv.Itoa(*q.MachineID))
	}

	var series models.ThroughputSeries
	if err := c.getJSON(ctx, "get throughput", MsgThroughput, "/metrics/throughput", params, &series); err != nil {
		return nil, err
	}
	return &series, nil
}

// Login exchanges credentials for a token. Rejected credentials yield *AuthError.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	payload, err := json.Marshal(map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return nil, &Error{Op: "login", Message: MsgLogin, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/login", bytes.NewReader(payload))
	if err != nil {
		return nil, &Error{Op: "login", Message: MsgLogin, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &Error{Op: "login", Message: MsgLogin, Err: err}
	}
	defer closeBody(resp)

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, &AuthError{StatusCode: resp.StatusCode, Reason: readReason(resp.Body)}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, &Error{Op: "login", Message: MsgLogin, StatusCode: resp.StatusCode}
	}

	var result LoginResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &Error{Op: "login", Message: MsgLogin, Err: fmt.Errorf("decode response: %w", err)}
	}
	if result.Token == "" {
		return nil, &Error{Op: "login", Message: MsgLogin, Err: fmt.Errorf("response carries no token")}
	}
	return &result, nil
}

// getJSON issues a GET and decodes a JSON body into out.
func (c *Client) getJSON(ctx context.Context, op, msg, path string, params url.Values, out any) error {
	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return &Error{Op: op, Message: msg, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return &Error{Op: op, Message: msg, Err: err}
	}
	defer closeBody(resp)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &Error{Op: op, Message: msg, StatusCode: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &Error{Op: op, Message: msg, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func setTime(params url.Values, key string, t time.Time) {
	if !t.IsZero() {
		params.Set(key, t.UTC().Format(time.RFC3339))
	}
}

// readReason extracts a short rejection reason from an error body.
func readReason(body io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(body, 4096))
	if err != nil || len(data) == 0 {
		return ""
	}

	var parsed struct {
		Error       string `json:"error"`
		Message     string `json:"message"`
		Description string `json:"description"`
	}
	if json.Unmarshal(data, &parsed) == nil {
		for _, s := range []string{parsed.Error, parsed.Message, parsed.Description} {
			if s != "" {
				return s
			}
		}
		return ""
	}

	text := strings.TrimSpace(string(data))
	if strings.HasPrefix(text, "<") {
		return ""
	}
	return text
}

func closeBody(resp *http.Response) {
	if err := resp.Body.Close(); err != nil {
		logger.Error("failed to close response body", "error", err)
	}
}
