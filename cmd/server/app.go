package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/phrazzld/deck-service/internal/commands"
	"github.com/phrazzld/deck-service/internal/config"
	"github.com/phrazzld/deck-service/internal/events"
	"github.com/phrazzld/deck-service/internal/platform/postgres"
	"github.com/phrazzld/deck-service/internal/service"
	"github.com/phrazzld/deck-service/internal/store"
	"github.com/phrazzld/deck-service/internal/store/memstore"
)

// application holds the wired dependency graph of the deck service.
type application struct {
	config *config.Config
	logger *slog.Logger

	db *sql.DB // nil when running on the memory store

	users   store.UserStore
	decks   store.DeckStore
	cards   store.CardStore
	presets store.PresetStore

	userService *service.UserService
	deckService *service.DeckService
	cardService *service.CardService

	emitter  *events.InMemoryEmitter
	consumer *commands.Consumer
}

// newApplication builds the application from configuration: storage per the
// configured driver, the lifecycle services, the event emitter and the
// command consumer pipeline.
func newApplication(ctx context.Context, cfg *config.Config, log *slog.Logger) (*application, error) {
	app := &application{config: cfg, logger: log}

	var tx store.Transactor
	switch cfg.Database.Driver {
	case "postgres":
		db, err := postgres.Open(ctx, cfg.Database.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		if err := runMigrations(db, log); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		app.db = db
		app.users = postgres.NewUserStore(db)
		app.decks = postgres.NewDeckStore(db)
		app.cards = postgres.NewCardStore(db)
		app.presets = postgres.NewPresetStore(db)
		tx = store.NewSQLTransactor(db)

	case "memory":
		mem := memstore.New()
		app.users = mem.Users()
		app.decks = mem.Decks()
		app.cards = mem.Cards()
		app.presets = mem.Presets()
		tx = mem

	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}

	app.emitter = events.NewInMemoryEmitter(log)

	app.userService = service.NewUserService(app.users, log)
	app.deckService = service.NewDeckService(
		app.decks, app.cards, app.users, app.presets, tx, app.emitter, log,
		service.WithCascadeDisable(cfg.Lifecycle.CascadeDisable),
	)
	app.cardService = service.NewCardService(
		app.cards, app.decks, app.presets, tx, app.emitter, log,
	)

	dispatcher := commands.NewDispatcher(app.deckService, app.cardService, log)
	userConsumer := commands.NewUserEventConsumer(app.userService, log)

	// One inbound pipeline for both the command topic and the users
	// change-data topic: decode once, route by envelope type.
	route := func(ctx context.Context, raw []byte) error {
		var envelope events.Event
		if err := json.Unmarshal(raw, &envelope); err != nil {
			log.Error("discarding malformed envelope", "error", err)
			return nil
		}
		switch envelope.Name {
		case commands.NameUserCreated, commands.NameUserRenamed, commands.NameUserDisabled:
			return userConsumer.HandleEvent(ctx, envelope)
		default:
			return dispatcher.HandleEvent(ctx, envelope)
		}
	}

	app.consumer = commands.NewConsumer(route, commands.ConsumerConfig{
		WorkerCount: cfg.Events.Workers,
		QueueSize:   cfg.Events.QueueSize,
	}, log)

	return app, nil
}

// cleanup releases resources held by the application.
func (app *application) cleanup() {
	app.consumer.Stop()
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("failed to close database", "error", err)
		}
	}
}
