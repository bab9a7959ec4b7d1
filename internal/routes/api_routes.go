package routes

import (
	"github.com/go-chi/chi/v5"

	"infinite-experiment/werewolf/internal/api"
	"infinite-experiment/werewolf/internal/middleware"
)

// RegisterAPIRoutes registers all API v1 routes and handlers
func RegisterAPIRoutes(r chi.Router, deps *api.Dependencies, handlers *api.Handlers, limiter *middleware.RateLimiter, jwtSecret string) {

	r.Route("/api/v1", func(v1 chi.Router) {
		v1.Use(middleware.AuthMiddleware(deps.Repo.Keys, jwtSecret)) // global: all routes must be authenticated
		v1.Use(limiter.Middleware)

		// Reactions come from any member, not only moderators
		v1.Post("/reactions", handlers.ReactionHandler())

		// Moderator-only group
		v1.Group(func(mod chi.Router) {
			mod.Use(middleware.IsModeratorMiddleware())

			mod.Post("/games", handlers.CreateGameHandler())
			mod.Route("/games/current", func(game chi.Router) {
				game.Get("/", handlers.GameInfoHandler())
				game.Delete("/", handlers.RemoveGameHandler())
				game.Get("/players", handlers.PlayerStatusHandler())
				game.Post("/start", handlers.StartGameHandler())
				game.Post("/assign-characters", handlers.AssignCharactersHandler())
				game.Put("/phase", handlers.SetPhaseHandler())
				game.Put("/status", handlers.SetStatusHandler())
				game.Post("/complete", handlers.CompleteGameHandler())
				game.Post("/deaths", handlers.DeathHandler())
			})

			mod.Post("/scenarios", handlers.CreateScenarioHandler())
			mod.Get("/scenarios", handlers.ListScenariosHandler())
			mod.Route("/scenarios/{name}", func(sc chi.Router) {
				sc.Delete("/", handlers.PurgeScenarioHandler())
				sc.Get("/characters", handlers.ListScenarioCharactersHandler())
				sc.Post("/characters", handlers.AddScenarioCharactersHandler())
				sc.Delete("/characters", handlers.RemoveScenarioCharactersHandler())
			})
		})
	})
}
