package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var queueCmd = &cobra.Command{
	Use:   "queue",
	Short: "Show writes waiting to sync",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCore(cmd.Context(), func(ctx context.Context, c *core) error {
			c.holdReplay = true
			c.queue.Reload(ctx)
			ops := c.queue.Pending()
			if jsonFlag {
				return printJSON(ops)
			}
			if len(ops) == 0 {
				fmt.Println("Nothing queued.")
				return nil
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "QUEUED\tKIND\tTARGET\tID")
			for _, op := range ops {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
					op.Timestamp.Local().Format("2006-01-02 15:04:05"), op.Kind, op.Target(), op.ID)
			}
			return w.Flush()
		})
	},
}

var queueClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Discard every queued write",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCore(cmd.Context(), func(ctx context.Context, c *core) error {
			c.holdReplay = true
			n := c.queue.Reload(ctx)
			c.queue.Clear(ctx)
			if jsonFlag {
				return printJSON(map[string]int{"discarded": n})
			}
			fmt.Printf("Discarded %d queued write(s).\n", n)
			return nil
		})
	},
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Replay queued writes now",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCore(cmd.Context(), func(ctx context.Context, c *core) error {
			c.holdReplay = true
			pending := c.queue.Reload(ctx)
			if !c.monitor.IsOnline() {
				if jsonFlag {
					return printJSON(map[string]any{"online": false, "pending": pending})
				}
				fmt.Printf("Offline: %d write(s) waiting.\n", pending)
				return nil
			}
			res := c.driver.Drain(ctx)
			if jsonFlag {
				return printJSON(res)
			}
			switch {
			case res.Skipped:
				fmt.Println("Another process is syncing; try again shortly.")
			case res.Attempted == 0:
				fmt.Println("Nothing to sync.")
			default:
				fmt.Printf("Synced %d of %d write(s), %d still queued.\n", res.Succeeded, res.Attempted, res.Remaining)
			}
			return nil
		})
	},
}

func init() {
	queueCmd.AddCommand(queueClearCmd)
	rootCmd.AddCommand(queueCmd, syncCmd)
}
