package gorm

import (
	"time"

	"infinite-experiment/werewolf/internal/constants"
)

// RolePermission grants a permission to every holder of a role template.
// Nil channel, status or phase means the rule applies to all of them.
type RolePermission struct {
	ID              int64                 `gorm:"column:role_permission_id;primaryKey;autoIncrement"`
	RoleID          int64                 `gorm:"column:role_id;index"`
	ChannelID       *int64                `gorm:"column:channel_id"`
	PermissionName  string                `gorm:"column:permission_name"`
	PermissionValue bool                  `gorm:"column:permission_value"`
	GameStatus      *constants.GameStatus `gorm:"column:game_status;type:text"`
	GamePhase       *constants.Phase      `gorm:"column:game_phase;type:text"`
	CreatedAt       time.Time             `gorm:"column:created_datetime;autoCreateTime"`
	UpdatedAt       time.Time             `gorm:"column:modified_datetime;autoUpdateTime"`
}

func (RolePermission) TableName() string {
	return "role_permissions"
}

// CharacterPermission grants a permission to whichever player currently holds a character.
// VitalsRequired additionally gates the rule on the player's vitals.
type CharacterPermission struct {
	ID              int64                 `gorm:"column:character_permission_id;primaryKey;autoIncrement"`
	CharacterID     int64                 `gorm:"column:character_id;index"`
	ChannelID       *int64                `gorm:"column:channel_id"`
	PermissionName  string                `gorm:"column:permission_name"`
	PermissionValue bool                  `gorm:"column:permission_value"`
	GameStatus      *constants.GameStatus `gorm:"column:game_status;type:text"`
	GamePhase       *constants.Phase      `gorm:"column:game_phase;type:text"`
	VitalsRequired  *constants.Vitals     `gorm:"column:vitals_required;type:text"`
	CreatedAt       time.Time             `gorm:"column:created_datetime;autoCreateTime"`
	UpdatedAt       time.Time             `gorm:"column:modified_datetime;autoUpdateTime"`
}

func (CharacterPermission) TableName() string {
	return "character_permissions"
}

// PlayerPermissionRow is a character permission joined through the player holding it.
type PlayerPermissionRow struct {
	RuleID          int64                 `gorm:"column:character_permission_id"`
	GamePlayerID    int64                 `gorm:"column:game_player_id"`
	DiscordUserID   string                `gorm:"column:discord_user_id"`
	Vitals          constants.Vitals      `gorm:"column:vitals"`
	ChannelID       *int64                `gorm:"column:channel_id"`
	PermissionName  string                `gorm:"column:permission_name"`
	PermissionValue bool                  `gorm:"column:permission_value"`
	GameStatus      *constants.GameStatus `gorm:"column:game_status"`
	GamePhase       *constants.Phase      `gorm:"column:game_phase"`
	VitalsRequired  *constants.Vitals     `gorm:"column:vitals_required"`
}

// GameRolePermissionRow is a role permission joined through the game role created for it.
type GameRolePermissionRow struct {
	RuleID          int64                 `gorm:"column:role_permission_id"`
	DiscordRoleID   string                `gorm:"column:discord_role_id"`
	ChannelID       *int64                `gorm:"column:channel_id"`
	PermissionName  string                `gorm:"column:permission_name"`
	PermissionValue bool                  `gorm:"column:permission_value"`
	GameStatus      *constants.GameStatus `gorm:"column:game_status"`
	GamePhase       *constants.Phase      `gorm:"column:game_phase"`
}
