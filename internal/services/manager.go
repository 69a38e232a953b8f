// Package services provides service orchestration for the TUI.
package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gen2brain/beeep"

	"github.com/j-veylop/factory-dashboard-tui/internal/api"
	"github.com/j-veylop/factory-dashboard-tui/internal/config"
	"github.com/j-veylop/factory-dashboard-tui/internal/db"
	"github.com/j-veylop/factory-dashboard-tui/internal/logger"
	"github.com/j-veylop/factory-dashboard-tui/internal/models"
	"github.com/j-veylop/factory-dashboard-tui/internal/session"
)

// requestLogRetention is how many request log rows survive startup pruning.
const requestLogRetention = 5000

type (
	// SessionChangedEvent is emitted when the user logs in or out.
	SessionChangedEvent struct {
		User     *session.User
		LoggedIn bool
	}

	// ReportSavedEvent is emitted after a report has been written to disk.
	ReportSavedEvent struct {
		Download models.ReportDownload
	}

	// ErrorEvent is emitted when a side effect of a successful operation
	// fails, such as the audit write after a report download.
	ErrorEvent struct {
		Service string
		Error   error
	}
)

// ServiceEvent is the interface implemented by all service events.
type ServiceEvent interface {
	isServiceEvent()
}

func (SessionChangedEvent) isServiceEvent() {}
func (ReportSavedEvent) isServiceEvent()    {}
func (ErrorEvent) isServiceEvent()          {}

// Notifier raises a desktop notification.
type Notifier func(title, message string, icon any) error

// Manager owns the session, API client and audit database for one run.
type Manager struct {
	mu          sync.RWMutex
	cfg         *config.Config
	store       *session.Store
	client      *api.Client
	database    *db.DB
	notify      Notifier
	now         func() time.Time
	sessionCh   chan session.Change
	stopChan    chan struct{}
	subscribers []chan ServiceEvent
	closeOnce   sync.Once
}

// NewManager creates a new service manager.
func NewManager(cfg *config.Config) (*Manager, error) {
	database, err := db.New(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if removed, err := database.PruneRequests(context.Background(), requestLogRetention); err != nil {
		logger.Warn("failed to prune request log", "error", err)
	} else if removed > 0 {
		logger.Debug("pruned request log", "rows", removed)
	}

	store := session.NewStore(cfg.SessionPath)
	client := api.New(api.Options{
		BaseURL:    cfg.APIBaseURL,
		HTTPClient: &http.Client{Timeout: cfg.HTTPTimeout},
		Tokens:     store,
		Recorder:   database,
	})

	return newManager(cfg, store, client, database), nil
}

func newManager(cfg *config.Config, store *session.Store, client *api.Client, database *db.DB) *Manager {
	m := &Manager{
		cfg:       cfg,
		store:     store,
		client:    client,
		database:  database,
		notify:    beeep.Notify,
		now:       time.Now,
		sessionCh: store.Subscribe(),
		stopChan:  make(chan struct{}),
	}
	if !cfg.Notify {
		m.notify = nil
	}

	go m.routeEvents()

	return m
}

// routeEvents converts session changes into service events.
func (m *Manager) routeEvents() {
	for {
		select {
		case change, ok := <-m.sessionCh:
			if !ok {
				return
			}
			event := SessionChangedEvent{LoggedIn: change.LoggedIn()}
			if change.Session != nil {
				event.User = change.Session.User
			}
			m.broadcast(event)

		case <-m.stopChan:
			return
		}
	}
}

// broadcast sends an event to all subscribers.
func (m *Manager) broadcast(event ServiceEvent) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, sub := range m.subscribers {
		select {
		case sub <- event:
		default:
			// Subscriber channel full, skip
		}
	}
}

// Subscribe creates a channel for receiving service events. The channel is
// closed by Unsubscribe or Close.
func (m *Manager) Subscribe() chan ServiceEvent {
	ch := make(chan ServiceEvent, 50)

	m.mu.Lock()
	m.subscribers = append(m.subscribers, ch)
	m.mu.Unlock()

	return ch
}

// Unsubscribe removes a subscriber channel.
func (m *Manager) Unsubscribe(ch chan ServiceEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, sub := range m.subscribers {
		if sub == ch {
			m.subscribers = append(m.subscribers[:i], m.subscribers[i+1:]...)
			close(ch)
			break
		}
	}
}

// Config returns the configuration the manager was built with.
func (m *Manager) Config() *config.Config {
	return m.cfg
}

// Database returns the database instance for direct access.
func (m *Manager) Database() *db.DB {
	return m.database
}

// Client returns the API client.
func (m *Manager) Client() *api.Client {
	return m.client
}

// Session returns the session store.
func (m *Manager) Session() *session.Store {
	return m.store
}

// ListMachines fetches all machines.
func (m *Manager) ListMachines(ctx context.Context) ([]models.Machine, error) {
	return m.client.ListMachines(ctx)
}

// GetLogs fetches one machine's events.
func (m *Manager) GetLogs(ctx context.Context, machineID int) ([]models.LogEntry, error) {
	return m.client.GetLogs(ctx, machineID)
}

// GetRecentErrors counts ERROR entries in the configured latest-logs sample.
func (m *Manager) GetRecentErrors(ctx context.Context) ([]models.MachineErrorCount, error) {
	logs, err := m.client.GetLatestLogs(ctx, api.LatestLogsQuery{Top: m.cfg.TopErrorLogs})
	if err != nil {
		return nil, err
	}
	return models.CountErrorsByMachine(logs), nil
}

// GetKpiTotals fetches the KPI records for the server's default window and sums them.
func (m *Manager) GetKpiTotals(ctx context.Context) (models.KpiTotals, error) {
	kpis, err := m.client.GetKpis(ctx, api.KpiQuery{})
	if err != nil {
		return models.KpiTotals{}, err
	}
	return models.SumKpis(kpis), nil
}

// GetThroughput fetches the throughput series for one bucket. A nil machineID
// covers all machines.
func (m *Manager) GetThroughput(ctx context.Context, bucket models.Bucket, machineID *int) (*models.ThroughputSeries, error) {
	return m.client.GetThroughput(ctx, api.ThroughputQuery{Bucket: bucket, MachineID: machineID})
}

// Login authenticates and persists the session. Subscribers see a SessionChangedEvent.
func (m *Manager) Login(ctx context.Context, username, password string) (*session.User, error) {
	res, err := m.client.Login(ctx, username, password)
	if err != nil {
		return nil, err
	}

	user := res.User
	if user == nil {
		user = &session.User{Username: username}
	}
	if err := m.store.Save(res.Token, user); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	logger.Info("signed in", "user", user.Username, "role", user.Role)
	return user, nil
}

// Logout clears the persisted session.
func (m *Manager) Logout() error {
	if err := m.store.Clear(); err != nil {
		return err
	}
	logger.Info("signed out")
	return nil
}

// CurrentUser returns the signed-in user or nil.
func (m *Manager) CurrentUser() *session.User {
	return m.store.User()
}

// LoggedIn reports whether a token is stored.
func (m *Manager) LoggedIn() bool {
	return m.store.Token() != ""
}

// RecentRequests returns the newest request log rows.
func (m *Manager) RecentRequests(ctx context.Context, limit int) ([]models.RequestRecord, error) {
	if m.database == nil {
		return nil, errors.New("database not initialized")
	}
	return m.database.GetRecentRequests(ctx, limit)
}

// RequestStats returns totals over the request log.
func (m *Manager) RequestStats(ctx context.Context) (*db.RequestStats, error) {
	if m.database == nil {
		return nil, errors.New("database not initialized")
	}
	return m.database.GetRequestStats(ctx)
}

// RecentDownloads returns the newest saved reports.
func (m *Manager) RecentDownloads(ctx context.Context, limit int) ([]models.ReportDownload, error) {
	if m.database == nil {
		return nil, errors.New("database not initialized")
	}
	return m.database.GetRecentReportDownloads(ctx, limit)
}

// Close closes the manager and all its services.
func (m *Manager) Close() error {
	var err error
	m.closeOnce.Do(func() {
		close(m.stopChan)
		m.store.Unsubscribe(m.sessionCh)

		m.mu.Lock()
		for _, sub := range m.subscribers {
			close(sub)
		}
		m.subscribers = nil
		m.mu.Unlock()

		m.store.Close()

		if m.database != nil {
			err = m.database.Close()
		}
	})
	return err
}
