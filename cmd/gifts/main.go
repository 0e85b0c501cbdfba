package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	profileFlag string
	configFlag  string
	offlineFlag bool
	jsonFlag    bool
)

var rootCmd = &cobra.Command{
	Use:   "gifts",
	Short: "Household gift tracker",
	Long: "Track gift lists, people and gifts for a household.\n" +
		"Writes made while the remote store is unreachable are queued locally\n" +
		"and replayed when connectivity returns.",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&profileFlag, "profile", "", "profile name (overrides config default)")
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "config file (default ~/.gifttracker/config.toml)")
	rootCmd.PersistentFlags().BoolVar(&offlineFlag, "offline", false, "queue writes without contacting the remote store")
	rootCmd.PersistentFlags().BoolVar(&jsonFlag, "json", false, "output in JSON format")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
