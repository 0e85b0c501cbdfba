package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/andrewpark3412/gift-tracking/internal/daemon"
	"github.com/andrewpark3412/gift-tracking/internal/profile"
	"github.com/andrewpark3412/gift-tracking/internal/status"
	"github.com/andrewpark3412/gift-tracking/internal/statusview"
	"github.com/spf13/cobra"
)

var dismissNotice bool

type statusReport struct {
	Profile string               `json:"profile"`
	Local   status.Snapshot      `json:"local"`
	Daemon  *daemon.DaemonHealth `json:"daemon,omitempty"`
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show connectivity and queued writes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCore(cmd.Context(), func(ctx context.Context, c *core) error {
			c.holdReplay = true
			if dismissNotice {
				if err := c.surface.DismissNotice(ctx); err != nil {
					return fmt.Errorf("dismiss notice: %w", err)
				}
			}

			report := statusReport{Profile: c.profile, Local: c.surface.Refresh(ctx)}
			report.Daemon = queryDaemon(ctx, c.profile)

			if jsonFlag {
				return printJSON(report)
			}
			printStatus(report)
			return nil
		})
	},
}

// queryDaemon asks a running giftd for its health. Returns nil when none is
// listening.
func queryDaemon(ctx context.Context, name string) *daemon.DaemonHealth {
	socketPath := profile.SocketPath(name)
	if _, err := os.Stat(socketPath); err != nil {
		return nil
	}
	client, err := daemon.Dial(socketPath)
	if err != nil {
		return nil
	}
	defer func() { _ = client.Close() }()

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	h, err := client.Check(ctx)
	if err != nil {
		return nil
	}
	return &h
}

func printStatus(r statusReport) {
	conn := "offline"
	if r.Local.Online {
		conn = "online"
	}
	if text, _ := statusview.Banner(r.Local); text != "" {
		fmt.Println(text)
	}
	fmt.Printf("Profile:   %s\n", r.Profile)
	fmt.Printf("Network:   %s\n", conn)
	fmt.Printf("Queued:    %d\n", r.Local.Pending)
	if !r.Local.LastSync.IsZero() {
		fmt.Printf("Last sync: %s (%d failed)\n", r.Local.LastSync.Local().Format(time.DateTime), r.Local.LastFailed)
	}
	if r.Daemon == nil {
		fmt.Println("Daemon:    not running")
		return
	}
	state := "replaying"
	if r.Daemon.Drained {
		state = "idle"
	}
	daemonConn := "offline"
	if r.Daemon.Online {
		daemonConn = "online"
	}
	fmt.Printf("Daemon:    running, %s, %s\n", daemonConn, state)
}

func init() {
	statusCmd.Flags().BoolVar(&dismissNotice, "dismiss-notice", false, "stop showing the back-online notice")
	rootCmd.AddCommand(statusCmd)
}
