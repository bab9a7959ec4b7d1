package repositories

import (
	"context"
	"fmt"

	models "infinite-experiment/werewolf/internal/models/gorm"

	"gorm.io/gorm"
)

// PermissionRepository loads the static permission rules joined to one game's players and roles
type PermissionRepository struct {
	db *gorm.DB
}

func NewPermissionRepository(db *gorm.DB) *PermissionRepository {
	return &PermissionRepository{db: db}
}

// ListPlayerPermissions returns every character permission held by a player of the game
// through their current character, in rule id order.
func (r *PermissionRepository) ListPlayerPermissions(ctx context.Context, gameID int64) ([]models.PlayerPermissionRow, error) {
	var rows []models.PlayerPermissionRow
	err := r.db.WithContext(ctx).
		Table("character_permissions").
		Select("character_permissions.character_permission_id, " +
			"game_players.game_player_id, game_players.discord_user_id, game_players.vitals, " +
			"character_permissions.channel_id, character_permissions.permission_name, " +
			"character_permissions.permission_value, character_permissions.game_status, " +
			"character_permissions.game_phase, character_permissions.vitals_required").
		Joins("JOIN game_players ON game_players.character_id = character_permissions.character_id").
		Where("game_players.game_id = ?", gameID).
		Order("character_permissions.character_permission_id ASC, game_players.game_player_id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch character permissions: %w", err)
	}
	return rows, nil
}

// ListRolePermissions returns every role permission whose role was created for the game.
func (r *PermissionRepository) ListRolePermissions(ctx context.Context, gameID int64) ([]models.GameRolePermissionRow, error) {
	var rows []models.GameRolePermissionRow
	err := r.db.WithContext(ctx).
		Table("role_permissions").
		Select("role_permissions.role_permission_id, game_roles.discord_role_id, " +
			"role_permissions.channel_id, role_permissions.permission_name, " +
			"role_permissions.permission_value, role_permissions.game_status, " +
			"role_permissions.game_phase").
		Joins("JOIN game_roles ON game_roles.role_id = role_permissions.role_id").
		Where("game_roles.game_id = ?", gameID).
		Order("role_permissions.role_permission_id ASC, game_roles.game_role_id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch role permissions: %w", err)
	}
	return rows, nil
}

func (r *PermissionRepository) CreateRolePermission(ctx context.Context, rule *models.RolePermission) error {
	if err := r.db.WithContext(ctx).Create(rule).Error; err != nil {
		return fmt.Errorf("failed to create role permission: %w", err)
	}
	return nil
}

func (r *PermissionRepository) CreateCharacterPermission(ctx context.Context, rule *models.CharacterPermission) error {
	if err := r.db.WithContext(ctx).Create(rule).Error; err != nil {
		return fmt.Errorf("failed to create character permission: %w", err)
	}
	return nil
}

func (r *PermissionRepository) DeleteCharacterPermission(ctx context.Context, id int64) error {
	err := r.db.WithContext(ctx).
		Where("character_permission_id = ?", id).
		Delete(&models.CharacterPermission{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete character permission: %w", err)
	}
	return nil
}
