package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/shopfront/routegate/internal/config"
	"github.com/shopfront/routegate/internal/gateway"
)

var (
	serveConfig  string
	serveListen  string
	serveBackend string
	serveVerbose bool
)

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveConfig, "config", "", "Path to gateway YAML config")
	serveCmd.Flags().StringVar(&serveListen, "listen", "", "Listen address (overrides config)")
	serveCmd.Flags().StringVar(&serveBackend, "backend", "", "Backend origin URL (overrides config)")
	serveCmd.Flags().BoolVar(&serveVerbose, "verbose", false, "Log every proxied request")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the access gateway",
	Long:  "Runs the gateway in front of the storefront backend.\nSupports hot-reload of the configuration file.",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	level := slog.LevelInfo
	if serveVerbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	cfg, err := config.Load(serveConfig)
	if err != nil {
		return err
	}
	if serveListen != "" {
		cfg.Listen = serveListen
	}
	if serveBackend != "" {
		cfg.Backend = serveBackend
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	srv, err := gateway.New(cfg, log)
	if err != nil {
		return err
	}
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if serveConfig != "" {
		reloader, err := config.NewReloader(serveConfig, log, func(next *config.File) {
			if err := srv.Reload(next); err != nil {
				log.Error("reload rejected", "error", err)
			}
		})
		if err != nil {
			log.Warn("hot-reload disabled", "error", err)
		} else {
			go func() { _ = reloader.Run(ctx) }()
		}
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Info("shutting down")
		cancel()
	}()

	return srv.Run(ctx)
}
