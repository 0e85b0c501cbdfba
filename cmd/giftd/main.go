package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/andrewpark3412/gift-tracking/internal/config"
	"github.com/andrewpark3412/gift-tracking/internal/daemon"
	"github.com/andrewpark3412/gift-tracking/internal/profile"
	"go.uber.org/fx"
)

func main() {
	profileFlag := flag.String("profile", "", "profile name (overrides config default)")
	configFlag := flag.String("config", "", "config file (default ~/.gifttracker/config.toml)")
	offlineFlag := flag.Bool("offline", false, "stay offline and only queue writes")
	flag.Parse()

	name := profile.Resolve(*profileFlag)
	if err := profile.ValidateName(name); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	path := *configFlag
	if path == "" {
		path = profile.ConfigPath()
	}
	cfg, err := config.LoadOrDefault(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	app := fx.New(
		daemon.Daemon(daemon.Params{Profile: name, Config: cfg, Offline: *offlineFlag}),
	)

	app.Run()
}
