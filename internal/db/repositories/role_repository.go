package repositories

import (
	"context"
	"fmt"

	models "infinite-experiment/werewolf/internal/models/gorm"

	"gorm.io/gorm"
)

// RoleRepository covers role templates and the platform roles created per game
type RoleRepository struct {
	db *gorm.DB
}

func NewRoleRepository(db *gorm.DB) *RoleRepository {
	return &RoleRepository{db: db}
}

func (r *RoleRepository) ListTemplates(ctx context.Context) ([]models.Role, error) {
	var roles []models.Role
	if err := r.db.WithContext(ctx).Order("role_id ASC").Find(&roles).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch role templates: %w", err)
	}
	return roles, nil
}

func (r *RoleRepository) CreateGameRole(ctx context.Context, role *models.GameRole) error {
	if err := r.db.WithContext(ctx).Omit("Role").Create(role).Error; err != nil {
		return fmt.Errorf("failed to create game role: %w", err)
	}
	return nil
}

func (r *RoleRepository) ListGameRoles(ctx context.Context, gameID int64) ([]models.GameRole, error) {
	var roles []models.GameRole
	err := r.db.WithContext(ctx).
		Preload("Role").
		Where("game_id = ?", gameID).
		Order("game_role_id ASC").
		Find(&roles).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch game roles: %w", err)
	}
	return roles, nil
}

// GetGameRoleByDefault returns the game role created from the template tagged defaultValue.
func (r *RoleRepository) GetGameRoleByDefault(ctx context.Context, gameID int64, defaultValue string) (*models.GameRole, error) {
	var role models.GameRole
	err := r.db.WithContext(ctx).
		Joins("JOIN roles ON roles.role_id = game_roles.role_id").
		Where("game_roles.game_id = ? AND roles.default_value = ?", gameID, defaultValue).
		First(&role).Error
	if err != nil {
		if notFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch %s game role: %w", defaultValue, err)
	}
	return &role, nil
}

func (r *RoleRepository) DeleteGameRoles(ctx context.Context, gameID int64) error {
	err := r.db.WithContext(ctx).Where("game_id = ?", gameID).Delete(&models.GameRole{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete game roles: %w", err)
	}
	return nil
}
