package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/j-veylop/factory-dashboard-tui/internal/api"
	"github.com/j-veylop/factory-dashboard-tui/internal/app"
	"github.com/j-veylop/factory-dashboard-tui/internal/models"
	"github.com/j-veylop/factory-dashboard-tui/internal/version"
)

var (
	loginUsername string
	loginPassword string
	reportOutDir  string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and store the session token",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		password := loginPassword
		if password == "" {
			var err error
			if password, err = readPassword(cmd.InOrStdin(), cmd.ErrOrStderr()); err != nil {
				return err
			}
		}
		if strings.TrimSpace(loginUsername) == "" || password == "" {
			return errors.New("username and password are required")
		}

		mgr, cleanup, err := setup()
		if err != nil {
			return err
		}
		defer cleanup()

		ctx, stop := signalContext(cmd.Context())
		defer stop()

		user, err := mgr.Login(ctx, strings.TrimSpace(loginUsername), password)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), app.UserLabel(user))
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Clear the stored session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, cleanup, err := setup()
		if err != nil {
			return err
		}
		defer cleanup()

		if err := mgr.Logout(); err != nil {
			return fmt.Errorf("failed to clear session: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, cleanup, err := setup()
		if err != nil {
			return err
		}
		defer cleanup()

		fmt.Fprintln(cmd.OutOrStdout(), app.UserLabel(mgr.CurrentUser()))
		return nil
	},
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Download the latest KPI report",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, cleanup, err := setup()
		if err != nil {
			return err
		}
		defer cleanup()

		if !mgr.LoggedIn() {
			return errors.New(api.MsgLoginRequired)
		}

		ctx, stop := signalContext(cmd.Context())
		defer stop()

		download := mgr.DownloadReport
		if reportOutDir != "" {
			download = func(ctx context.Context) (*models.ReportDownload, error) {
				return mgr.DownloadReportTo(ctx, reportOutDir)
			}
		}

		dl, err := download(ctx)
		if errors.Is(err, api.ErrAuthRequired) {
			return errors.New(api.MsgLoginRequired)
		}
		if err != nil {
			var apiErr *api.Error
			if errors.As(err, &apiErr) {
				return errors.New(apiErr.Detail())
			}
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Saved %s (%s)\n", dl.Path, humanize.Bytes(uint64(dl.Bytes)))
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version.Info())
	},
}

func init() {
	loginCmd.Flags().StringVarP(&loginUsername, "username", "u", "", "account username")
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "account password (read from stdin when omitted)")
	_ = loginCmd.MarkFlagRequired("username")

	reportCmd.Flags().StringVarP(&reportOutDir, "out", "o", "", "directory to save the report in (default REPORTS_DIR)")
}

// readPassword reads one line from in after printing a prompt to out.
func readPassword(in io.Reader, out io.Writer) (string, error) {
	fmt.Fprint(out, "Password: ")
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// signalContext cancels on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
