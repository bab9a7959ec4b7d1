package repositories

import (
	"context"
	"fmt"

	"infinite-experiment/werewolf/internal/constants"
	models "infinite-experiment/werewolf/internal/models/gorm"

	"gorm.io/gorm"
)

// ScenarioRepository manages scenarios and the characters they hold
type ScenarioRepository struct {
	db *gorm.DB
}

func NewScenarioRepository(db *gorm.DB) *ScenarioRepository {
	return &ScenarioRepository{db: db}
}

func (r *ScenarioRepository) Create(ctx context.Context, scenario *models.Scenario) error {
	if err := r.db.WithContext(ctx).Create(scenario).Error; err != nil {
		return fmt.Errorf("failed to create scenario: %w", err)
	}
	return nil
}

// ExistsInScope reports whether name is taken within the scope: among the game's local
// scenarios for local scope, among global scenarios otherwise.
func (r *ScenarioRepository) ExistsInScope(ctx context.Context, name string, scope constants.ScenarioScope, gameID *int64) (bool, error) {
	q := r.db.WithContext(ctx).Model(&models.Scenario{}).Where("scenario_name = ? AND scope = ?", name, scope)
	if scope == constants.ScopeLocal && gameID != nil {
		q = q.Where("game_id = ?", *gameID)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check scenario name: %w", err)
	}
	return count > 0, nil
}

// FindAvailable returns the scenario called name visible to gameID: the game's own local
// scenario wins over a global one. A nil gameID only sees global scenarios.
func (r *ScenarioRepository) FindAvailable(ctx context.Context, name string, gameID *int64) (*models.Scenario, error) {
	var scenarios []models.Scenario
	q := r.db.WithContext(ctx).Where("scenario_name = ?", name)
	if gameID != nil {
		q = q.Where("game_id = ? OR game_id IS NULL", *gameID)
	} else {
		q = q.Where("game_id IS NULL")
	}
	if err := q.Order("scenario_id ASC").Find(&scenarios).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch scenario: %w", err)
	}
	if len(scenarios) == 0 {
		return nil, ErrNotFound
	}
	for i := range scenarios {
		if scenarios[i].GameID != nil {
			return &scenarios[i], nil
		}
	}
	return &scenarios[0], nil
}

// ListAvailable summarises every scenario visible to gameID.
func (r *ScenarioRepository) ListAvailable(ctx context.Context, gameID *int64) ([]models.ScenarioSummary, error) {
	var rows []models.ScenarioSummary
	q := r.db.WithContext(ctx).
		Table("scenarios").
		Select("scenarios.scenario_id, scenarios.scenario_name, scenarios.scope, " +
			"COUNT(scenario_characters.scenario_character_id) AS characters, " +
			"COALESCE(SUM(scenario_characters.weighting), 0) AS weighting").
		Joins("LEFT JOIN scenario_characters ON scenario_characters.scenario_id = scenarios.scenario_id")
	if gameID != nil {
		q = q.Where("scenarios.game_id = ? OR scenarios.game_id IS NULL", *gameID)
	} else {
		q = q.Where("scenarios.game_id IS NULL")
	}
	err := q.Group("scenarios.scenario_id, scenarios.scenario_name, scenarios.scope").
		Order("scenarios.scenario_id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list scenarios: %w", err)
	}
	return rows, nil
}

func (r *ScenarioRepository) AddCharacter(ctx context.Context, sc *models.ScenarioCharacter) error {
	if err := r.db.WithContext(ctx).Omit("Character").Create(sc).Error; err != nil {
		return fmt.Errorf("failed to add scenario character: %w", err)
	}
	return nil
}

// ListCharacters returns the scenario's entries with their characters, in insertion order.
func (r *ScenarioRepository) ListCharacters(ctx context.Context, scenarioID int64) ([]models.ScenarioCharacter, error) {
	var entries []models.ScenarioCharacter
	err := r.db.WithContext(ctx).
		Preload("Character").
		Where("scenario_id = ?", scenarioID).
		Order("scenario_character_id ASC").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch scenario characters: %w", err)
	}
	return entries, nil
}

func (r *ScenarioRepository) CountCharacters(ctx context.Context, scenarioID int64) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.ScenarioCharacter{}).
		Where("scenario_id = ?", scenarioID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count scenario characters: %w", err)
	}
	return int(count), nil
}

func (r *ScenarioRepository) RemoveCharacters(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).
		Where("scenario_character_id IN ?", ids).
		Delete(&models.ScenarioCharacter{}).Error
	if err != nil {
		return fmt.Errorf("failed to remove scenario characters: %w", err)
	}
	return nil
}

// Purge deletes the scenario and all of its entries.
func (r *ScenarioRepository) Purge(ctx context.Context, scenarioID int64) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("scenario_id = ?", scenarioID).Delete(&models.ScenarioCharacter{}).Error; err != nil {
		return fmt.Errorf("failed to purge scenario characters: %w", err)
	}
	if err := db.Where("scenario_id = ?", scenarioID).Delete(&models.Scenario{}).Error; err != nil {
		return fmt.Errorf("failed to purge scenario: %w", err)
	}
	return nil
}
