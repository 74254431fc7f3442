// Command server runs the deck service: the HTTP API, the command
// consumer pipeline and the change-data event emitter over the configured
// storage backend.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/phrazzld/deck-service/internal/config"
	"github.com/phrazzld/deck-service/internal/platform/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.Setup(cfg.Server.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	ctx := context.Background()
	app, err := newApplication(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to build application: %w", err)
	}

	log.Info("application initialized",
		"driver", cfg.Database.Driver,
		"workers", cfg.Events.Workers,
		"cascade_disable", cfg.Lifecycle.CascadeDisable)

	return app.startHTTPServer(ctx, app.setupRouter())
}
