package main

import (
	"context"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nextgo-dev/nextgo/internal/config"
	"github.com/nextgo-dev/nextgo/internal/dev"
)

func devCmd() *cobra.Command {
	var (
		port     int
		host     string
		noReload bool
	)

	cmd := &cobra.Command{
		Use:   "dev",
		Short: "Start the development server",
		Long: `Start the development server with hot reload.

The server preprocesses markup literal blocks, builds the app, runs it
behind a reverse proxy, and rebuilds on file change. Connected browsers
refresh automatically.

Examples:
  nextgo dev
  nextgo dev --port=8080
  nextgo dev --host=0.0.0.0`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDev(port, host, noReload)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to run on (default from nextgo.json)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind to (default from nextgo.json)")
	cmd.Flags().BoolVar(&noReload, "no-reload", false, "Disable hot reload")

	return cmd
}

func runDev(port int, host string, noReload bool) error {
	if _, err := exec.LookPath("go"); err != nil {
		errorMsg("Go is not installed or not in PATH")
		info("Install Go from https://go.dev/dl/")
		return err
	}

	cfg, err := config.LoadFromWorkingDir()
	if err != nil {
		return err
	}

	if port > 0 {
		cfg.Dev.Port = port
	}
	if host != "" {
		cfg.Dev.Host = host
	}
	cfg.Dev.HotReload = !noReload

	server := dev.NewServer(dev.ServerOptions{
		Config: cfg,
		OnBuildComplete: func(result dev.BuildResult) {
			if result.Success {
				success("Built in %s", result.Duration.Round(time.Millisecond))
			}
		},
		OnReload: func(clients int) {
			success("Reloaded %d browsers", clients)
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		info("Shutting down...")
		cancel()
		server.Stop()
	}()

	info("Serving %s at %s", cfg.Name, cfg.DevURL())
	return server.Start(ctx)
}
