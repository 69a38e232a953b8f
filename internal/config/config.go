// Package config contains everything related to configuration
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	APIBaseURL   string
	SessionPath  string
	DatabasePath string
	ReportsDir   string
	LogPath      string
	LogLevel     string
	HTTPTimeout  time.Duration
	TopErrorLogs int
	Notify       bool
}

// Default values
const (
	DefaultAPIBaseURL   = "http://127.0.0.1:5000"
	defaultLogLevel     = "info"
	defaultTopErrorLogs = 200
	appDirName          = "factory-dashboard"
)

// Load reads configuration from .env files and environment variables.
func Load() (*Config, error) {
	// Try loading .env from multiple locations
	for _, path := range getEnvPaths() {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			break
		}
	}

	cfg := &Config{
		APIBaseURL:   getEnvString("FACTORY_API_BASE", getEnvString("VITE_API_BASE", DefaultAPIBaseURL)),
		SessionPath:  getEnvString("SESSION_PATH", getDefaultPath("session.json")),
		DatabasePath: getEnvString("DATABASE_PATH", getDefaultPath("dashboard.db")),
		ReportsDir:   getEnvString("REPORTS_DIR", getDefaultReportsDir()),
		LogPath:      getEnvString("LOG_PATH", getDefaultPath("dashboard.log")),
		LogLevel:     strings.ToLower(getEnvString("LOG_LEVEL", defaultLogLevel)),
		HTTPTimeout:  getEnvDuration("HTTP_TIMEOUT", 0),
		TopErrorLogs: getEnvInt("KPI_TOP_ERRORS", defaultTopErrorLogs),
		Notify:       getEnvBool("DESKTOP_NOTIFY", true),
	}

	cfg.APIBaseURL = strings.TrimRight(cfg.APIBaseURL, "/")
	if err := validateBaseURL(cfg.APIBaseURL); err != nil {
		return nil, err
	}

	if cfg.TopErrorLogs <= 0 {
		cfg.TopErrorLogs = defaultTopErrorLogs
	}

	for _, dir := range []string{
		filepath.Dir(cfg.SessionPath),
		filepath.Dir(cfg.DatabasePath),
		filepath.Dir(cfg.LogPath),
	} {
		if err := ensureDir(dir); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

func validateBaseURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid FACTORY_API_BASE %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid FACTORY_API_BASE %q: scheme must be http or https", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid FACTORY_API_BASE %q: missing host", raw)
	}
	return nil
}

// getEnvPaths returns a list of paths to check for .env files.
func getEnvPaths() []string {
	var paths []string

	// Current directory
	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, ".env"))
	}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", appDirName, ".env"))
	}

	// Parent directories (useful for development)
	if cwd, err := os.Getwd(); err == nil {
		parent := filepath.Dir(cwd)
		paths = append(paths, filepath.Join(parent, ".env"))
		grandparent := filepath.Dir(parent)
		paths = append(paths, filepath.Join(grandparent, ".env"))
	}

	return paths
}

// getDefaultPath returns name inside the application config directory.
func getDefaultPath(name string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return name
	}
	return filepath.Join(home, ".config", appDirName, name)
}

// getDefaultReportsDir prefers ~/Downloads and falls back to ./reports.
func getDefaultReportsDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		downloads := filepath.Join(home, "Downloads")
		if info, err := os.Stat(downloads); err == nil && info.IsDir() {
			return downloads
		}
	}
	return "reports"
}

// getEnvString retrieves a string environment variable or returns the default.
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an integer environment variable or returns the default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

// getEnvBool retrieves a boolean environment variable or returns the default.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// getEnvDuration retrieves a duration environment variable or returns the default.
// Accepts values like "30s", "1m", "500ms".
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		// Try parsing as seconds if no unit specified
		if secs, err := strconv.Atoi(value); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultValue
}

// ensureDir creates a directory and all parent directories if they don't exist.
func ensureDir(path string) error {
	if path == "" || path == "." {
		return nil
	}
	return os.MkdirAll(path, 0o750)
}
