package gorm

import (
	"time"

	"infinite-experiment/werewolf/internal/constants"
)

// Scenario is a named multiset of characters. Local scenarios carry the game they belong to.
type Scenario struct {
	ID        int64                   `gorm:"column:scenario_id;primaryKey;autoIncrement"`
	GameID    *int64                  `gorm:"column:game_id;index"`
	Name      string                  `gorm:"column:scenario_name;index"`
	Scope     constants.ScenarioScope `gorm:"column:scope;type:text"`
	CreatedAt time.Time               `gorm:"column:created_datetime;autoCreateTime"`
	UpdatedAt time.Time               `gorm:"column:modified_datetime;autoUpdateTime"`
}

func (Scenario) TableName() string {
	return "scenarios"
}

type ScenarioCharacter struct {
	ID          int64     `gorm:"column:scenario_character_id;primaryKey;autoIncrement"`
	ScenarioID  int64     `gorm:"column:scenario_id;index"`
	CharacterID int64     `gorm:"column:character_id"`
	Weighting   int       `gorm:"column:weighting"`
	CreatedAt   time.Time `gorm:"column:created_datetime;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:modified_datetime;autoUpdateTime"`

	Character Character `gorm:"foreignKey:CharacterID;references:ID"`
}

func (ScenarioCharacter) TableName() string {
	return "scenario_characters"
}

// ScenarioSummary is one row of the available scenario listing.
type ScenarioSummary struct {
	ID         int64                   `gorm:"column:scenario_id"`
	Name       string                  `gorm:"column:scenario_name"`
	Scope      constants.ScenarioScope `gorm:"column:scope"`
	Characters int                     `gorm:"column:characters"`
	Weighting  int                     `gorm:"column:weighting"`
}
