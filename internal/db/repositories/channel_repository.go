package repositories

import (
	"context"
	"fmt"

	models "infinite-experiment/werewolf/internal/models/gorm"

	"gorm.io/gorm"
)

// ChannelRepository covers channel templates and the channels instantiated per game
type ChannelRepository struct {
	db *gorm.DB
}

func NewChannelRepository(db *gorm.DB) *ChannelRepository {
	return &ChannelRepository{db: db}
}

// ListTemplates returns the channel catalog in display order.
func (r *ChannelRepository) ListTemplates(ctx context.Context) ([]models.Channel, error) {
	var channels []models.Channel
	err := r.db.WithContext(ctx).Order("channel_order ASC, channel_id ASC").Find(&channels).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch channel templates: %w", err)
	}
	return channels, nil
}

func (r *ChannelRepository) CreateGameChannel(ctx context.Context, ch *models.GameChannel) error {
	if err := r.db.WithContext(ctx).Create(ch).Error; err != nil {
		return fmt.Errorf("failed to create game channel: %w", err)
	}
	return nil
}

func (r *ChannelRepository) ListGameChannels(ctx context.Context, gameID int64) ([]models.GameChannel, error) {
	var channels []models.GameChannel
	err := r.db.WithContext(ctx).
		Where("game_id = ?", gameID).
		Order("game_channel_id ASC").
		Find(&channels).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch game channels: %w", err)
	}
	return channels, nil
}

// FindGameChannelByName returns the game's channel created from the template with that name.
func (r *ChannelRepository) FindGameChannelByName(ctx context.Context, gameID int64, name string) (*models.GameChannel, error) {
	var ch models.GameChannel
	err := r.db.WithContext(ctx).
		Where("game_id = ? AND name = ?", gameID, name).
		First(&ch).Error
	if err != nil {
		if notFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch game channel: %w", err)
	}
	return &ch, nil
}

func (r *ChannelRepository) DeleteGameChannels(ctx context.Context, gameID int64) error {
	err := r.db.WithContext(ctx).Where("game_id = ?", gameID).Delete(&models.GameChannel{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete game channels: %w", err)
	}
	return nil
}
