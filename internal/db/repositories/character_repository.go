package repositories

import (
	"context"
	"fmt"

	models "infinite-experiment/werewolf/internal/models/gorm"

	"gorm.io/gorm"
)

type CharacterRepository struct {
	db *gorm.DB
}

func NewCharacterRepository(db *gorm.DB) *CharacterRepository {
	return &CharacterRepository{db: db}
}

func (r *CharacterRepository) List(ctx context.Context) ([]models.Character, error) {
	var characters []models.Character
	if err := r.db.WithContext(ctx).Order("character_id ASC").Find(&characters).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch characters: %w", err)
	}
	return characters, nil
}

func (r *CharacterRepository) GetByID(ctx context.Context, id int64) (*models.Character, error) {
	var character models.Character
	err := r.db.WithContext(ctx).Where("character_id = ?", id).First(&character).Error
	if err != nil {
		if notFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch character: %w", err)
	}
	return &character, nil
}
