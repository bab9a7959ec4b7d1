package gorm

import (
	"time"

	"infinite-experiment/werewolf/internal/constants"
)

type GamePlayer struct {
	ID                  int64            `gorm:"column:game_player_id;primaryKey;autoIncrement"`
	GameID              int64            `gorm:"column:game_id;index"`
	CharacterID         *int64           `gorm:"column:character_id"`
	StartingCharacterID *int64           `gorm:"column:starting_character_id"`
	DiscordUserID       string           `gorm:"column:discord_user_id;index"`
	CurrentAffiliation  *string          `gorm:"column:current_affiliation"`
	Position            *int             `gorm:"column:position"`
	Vitals              constants.Vitals `gorm:"column:vitals;type:text;default:alive"`
	RoundsSurvived      int              `gorm:"column:rounds_survived;default:0"`
	Result              *string          `gorm:"column:result"`
	CreatedAt           time.Time        `gorm:"column:created_datetime;autoCreateTime"`
	UpdatedAt           time.Time        `gorm:"column:modified_datetime;autoUpdateTime"`
}

func (GamePlayer) TableName() string {
	return "game_players"
}
