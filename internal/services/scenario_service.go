package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"infinite-experiment/werewolf/internal/common"
	"infinite-experiment/werewolf/internal/config"
	"infinite-experiment/werewolf/internal/constants"
	"infinite-experiment/werewolf/internal/db/repositories"
	"infinite-experiment/werewolf/internal/logging"
	"infinite-experiment/werewolf/internal/models/dtos"
	models "infinite-experiment/werewolf/internal/models/gorm"
)

// ScenarioService manages scenarios and the characters they hold.
//
// Inside a game category scenarios are only reachable from the moderator channel of a
// recruiting game, which sees its local scenarios and the global ones. Outside any game
// the workshop channel sees global scenarios only.
type ScenarioService struct {
	store   *repositories.Store
	catalog *CatalogService
	cfg     config.GameConfig
}

func NewScenarioService(store *repositories.Store, catalog *CatalogService, cfg config.GameConfig) *ScenarioService {
	return &ScenarioService{store: store, catalog: catalog, cfg: cfg}
}

// access returns the game whose local scenarios are visible from cc, nil for global only.
func (s *ScenarioService) access(ctx context.Context, cc CommandContext) (*models.Game, *Outcome, error) {
	if cc.CategoryID != "" {
		game, err := s.store.Games.GetByCategory(ctx, cc.CategoryID)
		if err != nil && !errors.Is(err, repositories.ErrNotFound) {
			return nil, nil, err
		}
		if err == nil && game.Status != constants.StatusRemoved {
			if game.Status != constants.StatusRecruiting {
				out := rejected(ReasonWrongStatus, constants.MsgWrongStatus, game.Name, constants.StatusRecruiting)
				return nil, &out, nil
			}
			if !strings.EqualFold(cc.ChannelName, s.cfg.ModeratorChannel) {
				out := rejected(ReasonWrongChannel, constants.MsgWrongChannel, s.cfg.ModeratorChannel)
				return nil, &out, nil
			}
			return game, nil, nil
		}
	}

	if strings.EqualFold(cc.ChannelName, s.cfg.WorkshopChannel) {
		return nil, nil, nil
	}
	out := rejected(ReasonWrongChannel, constants.MsgNotAllowedChannel)
	return nil, &out, nil
}

// lookup resolves a scenario by name under the access rules of cc.
func (s *ScenarioService) lookup(ctx context.Context, cc CommandContext, rawName string) (*models.Scenario, string, *Outcome, error) {
	game, out, err := s.access(ctx, cc)
	if err != nil || out != nil {
		return nil, "", out, err
	}

	name := normalizeScenarioName(rawName, s.cfg.DefaultScenario)
	scenario, err := s.store.Scenarios.FindAvailable(ctx, name, gameIDOf(game))
	if errors.Is(err, repositories.ErrNotFound) {
		out := rejected(ReasonNotFound, constants.MsgNoScenario)
		return nil, name, &out, nil
	}
	if err != nil {
		return nil, name, nil, err
	}
	return scenario, name, nil, nil
}

func (s *ScenarioService) Create(ctx context.Context, cc CommandContext, req dtos.CreateScenarioRequest) (Outcome, error) {
	name := normalizeScenarioName(req.Name, s.cfg.DefaultScenario)
	rawScope := strings.ToLower(strings.TrimSpace(req.Scope))
	if rawScope == "" {
		rawScope = string(constants.ScopeLocal)
	}
	scope, err := constants.ParseScope(rawScope)
	if err != nil {
		return rejected(ReasonInvalidInput, "%s", err.Error()), nil
	}

	var gameID *int64
	if scope == constants.ScopeLocal {
		game, out, err := s.access(ctx, cc)
		if err != nil {
			return Outcome{}, err
		}
		if out != nil || game == nil {
			return rejected(ReasonWrongChannel, constants.MsgLocalScope), nil
		}
		gameID = &game.ID
	}

	taken, err := s.store.Scenarios.ExistsInScope(ctx, name, scope, gameID)
	if err != nil {
		return Outcome{}, err
	}
	if taken {
		return rejected(ReasonConflict, constants.MsgScenarioTaken), nil
	}

	scenario := &models.Scenario{GameID: gameID, Name: name, Scope: scope}
	if err := s.store.Scenarios.Create(ctx, scenario); err != nil {
		return Outcome{}, err
	}

	logging.Info("scenario created", "scenario_id", scenario.ID, "name", name, "scope", scope, "actor_id", cc.ActorID)
	return accepted(derefID(gameID), constants.MsgScenarioCreated, scope, name, scenario.ID), nil
}

func (s *ScenarioService) ListAvailable(ctx context.Context, cc CommandContext) (Outcome, error) {
	game, out, err := s.access(ctx, cc)
	if err != nil || out != nil {
		return deref(out), err
	}

	rows, err := s.store.Scenarios.ListAvailable(ctx, gameIDOf(game))
	if err != nil {
		return Outcome{}, err
	}

	summaries := make([]dtos.ScenarioSummary, 0, len(rows))
	cells := make([][]string, 0, len(rows))
	for _, r := range rows {
		summaries = append(summaries, dtos.ScenarioSummary{
			ScenarioID:     r.ID,
			Name:           r.Name,
			Scope:          string(r.Scope),
			CharacterCount: r.Characters,
			WeightingSum:   r.Weighting,
		})
		cells = append(cells, []string{
			strconv.FormatInt(r.ID, 10), r.Name, string(r.Scope), strconv.Itoa(r.Characters), strconv.Itoa(r.Weighting),
		})
	}

	result := accepted(derefID(gameIDOf(game)), "%s",
		common.RenderTable([]string{"ID", "Name", "Scope", "Characters", "Weighting"}, cells))
	result.Data = summaries
	return result, nil
}

// AddCharacters adds every character of the "werewolf|2,seer" list to the scenario.
// Malformed entries, unknown names and entries over a character's max duplicates are
// reported and skipped.
func (s *ScenarioService) AddCharacters(ctx context.Context, cc CommandContext, scenarioName, characters string) (Outcome, error) {
	scenario, name, out, err := s.lookup(ctx, cc, scenarioName)
	if err != nil || out != nil {
		return deref(out), err
	}

	names, notes := ParseCharacterList(characters)

	entries, err := s.store.Scenarios.ListCharacters(ctx, scenario.ID)
	if err != nil {
		return Outcome{}, err
	}
	counts := make(map[int64]int)
	for _, e := range entries {
		counts[e.CharacterID]++
	}

	for _, charName := range names {
		character, err := s.catalog.CharacterByName(ctx, charName)
		if err != nil {
			return Outcome{}, err
		}
		if character == nil {
			notes = append(notes, fmt.Sprintf(constants.MsgUnknownCharacter, charName))
			continue
		}
		if character.MaxDuplicates > 0 && counts[character.ID] >= character.MaxDuplicates {
			notes = append(notes, fmt.Sprintf(constants.MsgMaxDuplicates, charName, character.MaxDuplicates))
			continue
		}

		entry := &models.ScenarioCharacter{
			ScenarioID:  scenario.ID,
			CharacterID: character.ID,
			Weighting:   character.Weighting,
		}
		if err := s.store.Scenarios.AddCharacter(ctx, entry); err != nil {
			return Outcome{}, err
		}
		counts[character.ID]++
	}

	return s.characterReport(ctx, scenario, notes, fmt.Sprintf("Updated Scenario %q", name))
}

// RemoveCharacters removes one scenario entry per listed name.
func (s *ScenarioService) RemoveCharacters(ctx context.Context, cc CommandContext, scenarioName, characters string) (Outcome, error) {
	scenario, name, out, err := s.lookup(ctx, cc, scenarioName)
	if err != nil || out != nil {
		return deref(out), err
	}

	names, notes := ParseCharacterList(characters)

	entries, err := s.store.Scenarios.ListCharacters(ctx, scenario.ID)
	if err != nil {
		return Outcome{}, err
	}

	taken := make(map[int64]bool)
	var ids []int64
	for _, charName := range names {
		found := false
		for _, e := range entries {
			if e.Character.Name == charName && !taken[e.ID] {
				taken[e.ID] = true
				ids = append(ids, e.ID)
				found = true
				break
			}
		}
		if !found {
			notes = append(notes, fmt.Sprintf(constants.MsgCharacterNotFound, charName, name))
		}
	}

	if err := s.store.Scenarios.RemoveCharacters(ctx, ids); err != nil {
		return Outcome{}, err
	}

	return s.characterReport(ctx, scenario, notes, fmt.Sprintf("Updated Scenario %q", name))
}

func (s *ScenarioService) ListCharacters(ctx context.Context, cc CommandContext, scenarioName string) (Outcome, error) {
	scenario, name, out, err := s.lookup(ctx, cc, scenarioName)
	if err != nil || out != nil {
		return deref(out), err
	}
	return s.characterReport(ctx, scenario, nil, fmt.Sprintf("Scenario %q", name))
}

// Purge deletes the scenario together with its characters.
func (s *ScenarioService) Purge(ctx context.Context, cc CommandContext, scenarioName string) (Outcome, error) {
	scenario, name, out, err := s.lookup(ctx, cc, scenarioName)
	if err != nil || out != nil {
		return deref(out), err
	}

	if err := s.store.Scenarios.Purge(ctx, scenario.ID); err != nil {
		return Outcome{}, err
	}

	logging.Info("scenario purged", "scenario_id", scenario.ID, "name", name, "actor_id", cc.ActorID)
	return accepted(derefID(scenario.GameID), constants.MsgScenarioPurged, name), nil
}

// characterReport renders quantity and weighting per character plus a total row.
func (s *ScenarioService) characterReport(ctx context.Context, scenario *models.Scenario, notes []string, title string) (Outcome, error) {
	entries, err := s.store.Scenarios.ListCharacters(ctx, scenario.ID)
	if err != nil {
		return Outcome{}, err
	}

	byName := make(map[string]*dtos.ScenarioCharacterCount)
	for _, e := range entries {
		c, ok := byName[e.Character.Name]
		if !ok {
			c = &dtos.ScenarioCharacterCount{Name: e.Character.Name}
			byName[e.Character.Name] = c
		}
		c.Quantity++
		c.Weighting += e.Weighting
	}

	counts := make([]dtos.ScenarioCharacterCount, 0, len(byName))
	for _, c := range byName {
		counts = append(counts, *c)
	}
	sort.Slice(counts, func(i, j int) bool { return counts[i].Name < counts[j].Name })

	rows := make([][]string, 0, len(counts)+1)
	totalQty, totalWeight := 0, 0
	for _, c := range counts {
		rows = append(rows, []string{c.Name, strconv.Itoa(c.Quantity), strconv.Itoa(c.Weighting)})
		totalQty += c.Quantity
		totalWeight += c.Weighting
	}
	rows = append(rows, []string{"TOTAL", strconv.Itoa(totalQty), strconv.Itoa(totalWeight)})

	var b strings.Builder
	for _, n := range notes {
		b.WriteString(n)
		b.WriteString("\n")
	}
	b.WriteString(title)
	b.WriteString("\n")
	b.WriteString(common.RenderTable([]string{"Character", "Quantity", "Weighting"}, rows))

	result := accepted(derefID(scenario.GameID), "%s", b.String())
	result.Data = counts
	return result, nil
}

// ParseCharacterList expands "werewolf|2,seer" into [werewolf werewolf seer].
// Entries that cannot be parsed, or repeat a name more than MaxCharacterRepeat
// times, come back as notes.
func ParseCharacterList(raw string) ([]string, []string) {
	var names, notes []string
	for _, item := range strings.Split(strings.ToLower(raw), ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}

		parts := strings.Split(item, "|")
		switch len(parts) {
		case 1:
			names = append(names, item)
			continue
		case 2:
			name := strings.TrimSpace(parts[0])
			n, err := strconv.Atoi(strings.TrimSpace(parts[1]))
			if err == nil && n >= 0 && n <= constants.MaxCharacterRepeat && name != "" {
				for i := 0; i < n; i++ {
					names = append(names, name)
				}
				continue
			}
		}
		notes = append(notes, fmt.Sprintf(constants.MsgInvalidCharacterArg, item))
	}
	return names, notes
}

func gameIDOf(game *models.Game) *int64 {
	if game == nil {
		return nil
	}
	return &game.ID
}

func derefID(id *int64) int64 {
	if id == nil {
		return 0
	}
	return *id
}
