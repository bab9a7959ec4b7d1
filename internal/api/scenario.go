package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"infinite-experiment/werewolf/internal/models/dtos"
	"infinite-experiment/werewolf/internal/services"
)

// CreateScenarioHandler handles POST /api/v1/scenarios
func (h *Handlers) CreateScenarioHandler() http.HandlerFunc {
	return h.command("scenario-create", func(r *http.Request, cc services.CommandContext) (services.Outcome, error) {
		var req dtos.CreateScenarioRequest
		if err := bind(r, &req); err != nil {
			return services.Outcome{}, err
		}
		return h.deps.Services.Scenarios.Create(r.Context(), cc, req)
	})
}

// ListScenariosHandler handles GET /api/v1/scenarios
func (h *Handlers) ListScenariosHandler() http.HandlerFunc {
	return h.command("scenario-list-available", func(r *http.Request, cc services.CommandContext) (services.Outcome, error) {
		return h.deps.Services.Scenarios.ListAvailable(r.Context(), cc)
	})
}

// ListScenarioCharactersHandler handles GET /api/v1/scenarios/{name}/characters
func (h *Handlers) ListScenarioCharactersHandler() http.HandlerFunc {
	return h.command("scenario-character-list", func(r *http.Request, cc services.CommandContext) (services.Outcome, error) {
		return h.deps.Services.Scenarios.ListCharacters(r.Context(), cc, chi.URLParam(r, "name"))
	})
}

// AddScenarioCharactersHandler handles POST /api/v1/scenarios/{name}/characters
func (h *Handlers) AddScenarioCharactersHandler() http.HandlerFunc {
	return h.command("scenario-character-add", func(r *http.Request, cc services.CommandContext) (services.Outcome, error) {
		var req dtos.ScenarioCharactersRequest
		if err := bind(r, &req); err != nil {
			return services.Outcome{}, err
		}
		return h.deps.Services.Scenarios.AddCharacters(r.Context(), cc, chi.URLParam(r, "name"), req.Characters)
	})
}

// RemoveScenarioCharactersHandler handles DELETE /api/v1/scenarios/{name}/characters
func (h *Handlers) RemoveScenarioCharactersHandler() http.HandlerFunc {
	return h.command("scenario-character-remove", func(r *http.Request, cc services.CommandContext) (services.Outcome, error) {
		var req dtos.ScenarioCharactersRequest
		if err := bind(r, &req); err != nil {
			return services.Outcome{}, err
		}
		return h.deps.Services.Scenarios.RemoveCharacters(r.Context(), cc, chi.URLParam(r, "name"), req.Characters)
	})
}

// PurgeScenarioHandler handles DELETE /api/v1/scenarios/{name}
func (h *Handlers) PurgeScenarioHandler() http.HandlerFunc {
	return h.command("scenario-purge", func(r *http.Request, cc services.CommandContext) (services.Outcome, error) {
		return h.deps.Services.Scenarios.Purge(r.Context(), cc, chi.URLParam(r, "name"))
	})
}
