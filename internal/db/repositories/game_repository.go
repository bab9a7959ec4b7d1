package repositories

import (
	"context"
	"fmt"
	"time"

	"infinite-experiment/werewolf/internal/constants"
	models "infinite-experiment/werewolf/internal/models/gorm"

	"gorm.io/gorm"
)

// GameRepository manages game rows with GORM
type GameRepository struct {
	db *gorm.DB
}

func NewGameRepository(db *gorm.DB) *GameRepository {
	return &GameRepository{db: db}
}

func (r *GameRepository) Create(ctx context.Context, game *models.Game) error {
	if err := r.db.WithContext(ctx).Create(game).Error; err != nil {
		return fmt.Errorf("failed to create game: %w", err)
	}
	return nil
}

func (r *GameRepository) GetByID(ctx context.Context, id int64) (*models.Game, error) {
	var game models.Game
	err := r.db.WithContext(ctx).Where("game_id = ?", id).First(&game).Error
	if err != nil {
		if notFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch game: %w", err)
	}
	return &game, nil
}

// GetByCategory finds the game owning a chat category.
func (r *GameRepository) GetByCategory(ctx context.Context, categoryID string) (*models.Game, error) {
	var game models.Game
	err := r.db.WithContext(ctx).
		Where("discord_category_id = ?", categoryID).
		Order("game_id DESC").
		First(&game).Error
	if err != nil {
		if notFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch game by category: %w", err)
	}
	return &game, nil
}

// GetRecruitingByAnnouncement finds the recruiting game whose announcement carries messageID.
func (r *GameRepository) GetRecruitingByAnnouncement(ctx context.Context, messageID string) (*models.Game, error) {
	var game models.Game
	err := r.db.WithContext(ctx).
		Where("discord_announce_message_id = ? AND status = ?", messageID, constants.StatusRecruiting).
		First(&game).Error
	if err != nil {
		if notFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch game by announcement: %w", err)
	}
	return &game, nil
}

// NameInUse reports whether a non-removed game in the guild already uses name.
func (r *GameRepository) NameInUse(ctx context.Context, guildID, name string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Game{}).
		Where("guild_id = ? AND game_name = ? AND status <> ?", guildID, name, constants.StatusRemoved).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check game name: %w", err)
	}
	return count > 0, nil
}

func (r *GameRepository) UpdateStatus(ctx context.Context, id int64, status constants.GameStatus) error {
	return r.updates(ctx, id, map[string]interface{}{"status": status})
}

func (r *GameRepository) UpdatePhase(ctx context.Context, id int64, phase constants.Phase) error {
	return r.updates(ctx, id, map[string]interface{}{"phase": phase})
}

// MarkActive stamps the player count together with the active status.
func (r *GameRepository) MarkActive(ctx context.Context, id int64, players int) error {
	return r.updates(ctx, id, map[string]interface{}{
		"status":            constants.StatusActive,
		"number_of_players": players,
	})
}

// MarkEnded sets a terminal-ish status and stamps the end date.
func (r *GameRepository) MarkEnded(ctx context.Context, id int64, status constants.GameStatus, end time.Time) error {
	return r.updates(ctx, id, map[string]interface{}{
		"status":   status,
		"end_date": end,
	})
}

func (r *GameRepository) updates(ctx context.Context, id int64, values map[string]interface{}) error {
	err := r.db.WithContext(ctx).
		Model(&models.Game{}).
		Where("game_id = ?", id).
		Updates(values).Error
	if err != nil {
		return fmt.Errorf("failed to update game: %w", err)
	}
	return nil
}
