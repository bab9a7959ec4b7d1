package repositories

import (
	"context"
	"fmt"

	"infinite-experiment/werewolf/internal/constants"
	models "infinite-experiment/werewolf/internal/models/gorm"

	"gorm.io/gorm"
)

// PlayerRepository manages the roster of each game
type PlayerRepository struct {
	db *gorm.DB
}

func NewPlayerRepository(db *gorm.DB) *PlayerRepository {
	return &PlayerRepository{db: db}
}

func (r *PlayerRepository) Create(ctx context.Context, player *models.GamePlayer) error {
	if player.Vitals == "" {
		player.Vitals = constants.VitalsAlive
	}
	if err := r.db.WithContext(ctx).Create(player).Error; err != nil {
		return fmt.Errorf("failed to create game player: %w", err)
	}
	return nil
}

// ListByGame returns players in database order (by id).
func (r *PlayerRepository) ListByGame(ctx context.Context, gameID int64) ([]models.GamePlayer, error) {
	var players []models.GamePlayer
	err := r.db.WithContext(ctx).
		Where("game_id = ?", gameID).
		Order("game_player_id ASC").
		Find(&players).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch game players: %w", err)
	}
	return players, nil
}

func (r *PlayerRepository) CountByGame(ctx context.Context, gameID int64) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.GamePlayer{}).
		Where("game_id = ?", gameID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count game players: %w", err)
	}
	return int(count), nil
}

func (r *PlayerRepository) GetByUser(ctx context.Context, gameID int64, discordUserID string) (*models.GamePlayer, error) {
	var player models.GamePlayer
	err := r.db.WithContext(ctx).
		Where("game_id = ? AND discord_user_id = ?", gameID, discordUserID).
		First(&player).Error
	if err != nil {
		if notFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch game player: %w", err)
	}
	return &player, nil
}

// Assign records the character and table position drawn for a player.
func (r *PlayerRepository) Assign(ctx context.Context, playerID int64, character *models.Character, position int) error {
	err := r.db.WithContext(ctx).
		Model(&models.GamePlayer{}).
		Where("game_player_id = ?", playerID).
		Updates(map[string]interface{}{
			"character_id":          character.ID,
			"starting_character_id": character.ID,
			"position":              position,
			"current_affiliation":   character.StartingAffiliation,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to assign character: %w", err)
	}
	return nil
}

// MarkDeceased flips vitals to deceased. Nothing in this package ever writes alive
// back over deceased, so the update is filtered to living players.
func (r *PlayerRepository) MarkDeceased(ctx context.Context, playerID int64) error {
	err := r.db.WithContext(ctx).
		Model(&models.GamePlayer{}).
		Where("game_player_id = ? AND vitals = ?", playerID, constants.VitalsAlive).
		Update("vitals", constants.VitalsDeceased).Error
	if err != nil {
		return fmt.Errorf("failed to mark player deceased: %w", err)
	}
	return nil
}

func (r *PlayerRepository) DeleteByUser(ctx context.Context, gameID int64, discordUserID string) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("game_id = ? AND discord_user_id = ?", gameID, discordUserID).
		Delete(&models.GamePlayer{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to delete game player: %w", res.Error)
	}
	return res.RowsAffected, nil
}
