package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/phrazzld/deck-service/internal/api"
	apimiddleware "github.com/phrazzld/deck-service/internal/api/middleware"
)

// setupRouter configures the application router with all routes and
// middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apimiddleware.Trace)

	deckHandler := api.NewDeckHandler(app.deckService, app.decks)
	cardHandler := api.NewCardHandler(app.cardService, app.cards)

	r.Route("/decks", func(r chi.Router) {
		r.Post("/", deckHandler.CreateDeck)
		r.Get("/", deckHandler.ListDecks)
		r.Get("/{deck-id}", deckHandler.GetDeck)
		r.Put("/{deck-id}", deckHandler.RenameDeck)
		r.Delete("/{deck-id}", deckHandler.DisableDeck)
		r.Put("/{deck-id}/scheduler-presets/{preset-id}", deckHandler.ChangePreset)
	})

	r.Route("/cards", func(r chi.Router) {
		r.Post("/", cardHandler.CreateCard)
		r.Get("/", cardHandler.ListCards)
		r.Get("/{card-id}", cardHandler.GetCard)
		r.Put("/{card-id}", cardHandler.OverrideCard)
		r.Delete("/{card-id}", cardHandler.DisableCard)
		r.Put("/{card-id}/scheduler-presets/{preset-id}", cardHandler.ReplacePreset)
		r.Post("/{card-id}/scheduler/activity/review", cardHandler.ReviewCard)
		r.Post("/{card-id}/scheduler/activity/reset", cardHandler.ResetScheduler)
		r.Post("/{card-id}/scheduler/activity/graduate", cardHandler.GraduateCard)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}
