// Package main is the entry point for the Factory Dashboard TUI.
// It initializes configuration, services, and runs the Bubble Tea program.
package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/j-veylop/factory-dashboard-tui/internal/app"
	"github.com/j-veylop/factory-dashboard-tui/internal/config"
	"github.com/j-veylop/factory-dashboard-tui/internal/logger"
	"github.com/j-veylop/factory-dashboard-tui/internal/services"
	"github.com/j-veylop/factory-dashboard-tui/internal/ui/tabs/account"
	"github.com/j-veylop/factory-dashboard-tui/internal/ui/tabs/dashboard"
	"github.com/j-veylop/factory-dashboard-tui/internal/ui/tabs/info"
	"github.com/j-veylop/factory-dashboard-tui/internal/ui/tabs/machines"
)

var rootCmd = &cobra.Command{
	Use:   "fdt",
	Short: "Factory dashboard for machine KPIs, logs and reports",
	Long: `Factory Dashboard TUI shows machine KPIs, recent errors, throughput and
per-machine logs from the factory API, and downloads the KPI report.

Keyboard Shortcuts:
  1-4             Switch between tabs (Dashboard, Machines, Account, Info)
  Tab/Shift+Tab   Navigate between tabs
  j/k, Up/Down    Navigate lists
  Enter           Select/confirm
  r               Refresh data
  ?               Toggle help
  q, Ctrl+C       Quit

Configuration:
  .env files are read from the current directory, its parents and
  ~/.config/factory-dashboard/.env. Environment variables win.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI()
	},
}

func init() {
	rootCmd.AddCommand(loginCmd, logoutCmd, whoamiCmd, reportCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// setup loads configuration, redirects logging and starts the service
// manager. The returned cleanup must be called once the command is done.
func setup() (*services.Manager, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	var logCloser io.Closer
	if cfg.LogPath != "" {
		logCloser, err = logger.Init(cfg.LogPath, cfg.LogLevel)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: logging to stderr: %v\n", err)
		}
	}

	mgr, err := services.NewManager(cfg)
	if err != nil {
		if logCloser != nil {
			_ = logCloser.Close()
		}
		return nil, nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	cleanup := func() {
		if closeErr := mgr.Close(); closeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: error closing services: %v\n", closeErr)
		}
		if logCloser != nil {
			_ = logCloser.Close()
		}
	}
	return mgr, cleanup, nil
}

// runTUI contains the interactive application logic.
func runTUI() error {
	// 1. Load configuration and start the service manager
	mgr, cleanup, err := setup()
	if err != nil {
		return err
	}
	defer cleanup()

	// 2. Create the root Bubble Tea model
	model := app.NewModel(mgr)
	defer model.Close()

	// 3. Initialize tabs with shared state and the service manager
	state := model.GetState()
	tabs := []app.Tab{
		dashboard.New(state, mgr), // Tab 0: KPIs, errors, throughput
		machines.New(state, mgr),  // Tab 1: machine list and logs
		account.New(state, mgr),   // Tab 2: login and report download
		info.New(state, mgr),      // Tab 3: configuration and audit log
	}
	model.SetTabs(tabs)

	// 4. Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	// 5. Create and configure the Bubble Tea program
	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	go func() {
		if _, ok := <-sigChan; ok {
			p.Send(tea.Quit())
		}
	}()

	// 6. Run the TUI program until the user quits
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
