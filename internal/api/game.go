package api

import (
	"net/http"

	"infinite-experiment/werewolf/internal/models/dtos"
	"infinite-experiment/werewolf/internal/services"
)

// CreateGameHandler handles POST /api/v1/games
func (h *Handlers) CreateGameHandler() http.HandlerFunc {
	return h.command("game-create", func(r *http.Request, cc services.CommandContext) (services.Outcome, error) {
		var req dtos.CreateGameRequest
		if err := bind(r, &req); err != nil {
			return services.Outcome{}, err
		}
		return h.deps.Services.Games.Create(r.Context(), cc, req)
	})
}

// RemoveGameHandler handles DELETE /api/v1/games/current
func (h *Handlers) RemoveGameHandler() http.HandlerFunc {
	return h.command("game-remove", func(r *http.Request, cc services.CommandContext) (services.Outcome, error) {
		return h.deps.Services.Games.Remove(r.Context(), cc)
	})
}

// StartGameHandler handles POST /api/v1/games/current/start
func (h *Handlers) StartGameHandler() http.HandlerFunc {
	return h.command("game-start", func(r *http.Request, cc services.CommandContext) (services.Outcome, error) {
		var req dtos.StartGameRequest
		if err := bind(r, &req); err != nil {
			return services.Outcome{}, err
		}
		return h.deps.Services.Games.Start(r.Context(), cc, req.Scenario)
	})
}

// AssignCharactersHandler handles POST /api/v1/games/current/assign-characters
func (h *Handlers) AssignCharactersHandler() http.HandlerFunc {
	return h.command("game-assign-characters", func(r *http.Request, cc services.CommandContext) (services.Outcome, error) {
		var req dtos.StartGameRequest
		if err := bind(r, &req); err != nil {
			return services.Outcome{}, err
		}
		return h.deps.Services.Games.AssignCharacters(r.Context(), cc, req.Scenario)
	})
}

// SetPhaseHandler handles PUT /api/v1/games/current/phase
func (h *Handlers) SetPhaseHandler() http.HandlerFunc {
	return h.command("game-phase", func(r *http.Request, cc services.CommandContext) (services.Outcome, error) {
		var req dtos.PhaseRequest
		if err := bind(r, &req); err != nil {
			return services.Outcome{}, err
		}
		return h.deps.Services.Games.SetPhase(r.Context(), cc, req.Phase)
	})
}

// CompleteGameHandler handles POST /api/v1/games/current/complete
func (h *Handlers) CompleteGameHandler() http.HandlerFunc {
	return h.command("game-complete", func(r *http.Request, cc services.CommandContext) (services.Outcome, error) {
		return h.deps.Services.Games.Complete(r.Context(), cc)
	})
}

// SetStatusHandler handles PUT /api/v1/games/current/status
func (h *Handlers) SetStatusHandler() http.HandlerFunc {
	return h.command("game-status-set", func(r *http.Request, cc services.CommandContext) (services.Outcome, error) {
		var req dtos.StatusRequest
		if err := bind(r, &req); err != nil {
			return services.Outcome{}, err
		}
		return h.deps.Services.Games.SetStatus(r.Context(), cc, req.Status)
	})
}

// GameInfoHandler handles GET /api/v1/games/current
func (h *Handlers) GameInfoHandler() http.HandlerFunc {
	return h.command("game-info", func(r *http.Request, cc services.CommandContext) (services.Outcome, error) {
		return h.deps.Services.Games.Info(r.Context(), cc)
	})
}

// PlayerStatusHandler handles GET /api/v1/games/current/players
func (h *Handlers) PlayerStatusHandler() http.HandlerFunc {
	return h.command("game-player-status", func(r *http.Request, cc services.CommandContext) (services.Outcome, error) {
		return h.deps.Services.Games.PlayerStatus(r.Context(), cc)
	})
}

// DeathHandler handles POST /api/v1/games/current/deaths
func (h *Handlers) DeathHandler() http.HandlerFunc {
	return h.command("event-death", func(r *http.Request, cc services.CommandContext) (services.Outcome, error) {
		var req dtos.DeathRequest
		if err := bind(r, &req); err != nil {
			return services.Outcome{}, err
		}
		return h.deps.Services.Events.Death(r.Context(), cc, req.Target)
	})
}
