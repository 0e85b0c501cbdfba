package main

import (
	"context"

	"github.com/andrewpark3412/gift-tracking/internal/statusview"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Live view of connectivity and queued writes",
	Long: "Runs the connectivity prober and replay driver in the foreground and\n" +
		"shows the status bar and queue until you quit.",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCore(cmd.Context(), func(ctx context.Context, c *core) error {
			c.holdReplay = true

			c.surface.Start(ctx)
			defer c.surface.Stop()
			c.driver.Start(ctx)
			defer c.driver.Stop()
			if !c.pinned {
				c.prober.Start(ctx)
				defer c.prober.Stop()
			}

			view := statusview.NewApp(c.profile, c.surface, c.queue, c.driver, c.bus)
			go func() {
				<-ctx.Done()
				view.Stop()
			}()
			return view.Run()
		})
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
