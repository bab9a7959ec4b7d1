package gorm

import (
	"time"

	"infinite-experiment/werewolf/internal/constants"
)

type Game struct {
	ID                int64                `gorm:"column:game_id;primaryKey;autoIncrement"`
	GuildID           string               `gorm:"column:guild_id;index;uniqueIndex:idx_games_guild_live_name,where:status <> 'removed'"`
	CategoryID        string               `gorm:"column:discord_category_id;index"`
	AnnounceChannelID string               `gorm:"column:discord_announce_channel_id"`
	AnnounceMessageID string               `gorm:"column:discord_announce_message_id;index"`
	Name              string               `gorm:"column:game_name;uniqueIndex:idx_games_guild_live_name"`
	StartDate         *time.Time           `gorm:"column:start_date"`
	EndDate           *time.Time           `gorm:"column:end_date"`
	NumberOfPlayers   *int                 `gorm:"column:number_of_players"`
	Status            constants.GameStatus `gorm:"column:status;type:text"`
	Phase             *constants.Phase     `gorm:"column:phase;type:text"`
	GameLength        *int                 `gorm:"column:game_length"`
	CreatedAt         time.Time            `gorm:"column:created_datetime;autoCreateTime"`
	UpdatedAt         time.Time            `gorm:"column:modified_datetime;autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (Game) TableName() string {
	return "games"
}

// PhaseOrEmpty returns the phase or "" while the game has none yet.
func (g *Game) PhaseOrEmpty() string {
	if g.Phase == nil {
		return ""
	}
	return g.Phase.String()
}

// GameChannel binds a game to a channel template and the platform channel created for it.
type GameChannel struct {
	ID               int64     `gorm:"column:game_channel_id;primaryKey;autoIncrement"`
	GameID           int64     `gorm:"column:game_id;index"`
	ChannelID        int64     `gorm:"column:channel_id"`
	DiscordChannelID string    `gorm:"column:discord_channel_id"`
	Name             string    `gorm:"column:name"`
	CreatedAt        time.Time `gorm:"column:created_datetime;autoCreateTime"`
	UpdatedAt        time.Time `gorm:"column:modified_datetime;autoUpdateTime"`
}

func (GameChannel) TableName() string {
	return "game_channels"
}

// GameRole binds a game to a role template and the platform role created for it.
type GameRole struct {
	ID            int64     `gorm:"column:game_role_id;primaryKey;autoIncrement"`
	GameID        int64     `gorm:"column:game_id;index"`
	RoleID        int64     `gorm:"column:role_id"`
	DiscordRoleID string    `gorm:"column:discord_role_id"`
	Name          string    `gorm:"column:game_role_name"`
	CreatedAt     time.Time `gorm:"column:created_datetime;autoCreateTime"`
	UpdatedAt     time.Time `gorm:"column:modified_datetime;autoUpdateTime"`

	Role Role `gorm:"foreignKey:RoleID;references:ID"`
}

func (GameRole) TableName() string {
	return "game_roles"
}
