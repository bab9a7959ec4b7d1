package gorm

import "time"

// Channel is a channel template every game instantiates.
type Channel struct {
	ID        int64     `gorm:"column:channel_id;primaryKey" json:"id"`
	Name      string    `gorm:"column:channel_name" json:"name"`
	Order     int       `gorm:"column:channel_order" json:"order"`
	Topic     string    `gorm:"column:channel_topic" json:"topic"`
	Kind      string    `gorm:"column:channel_type" json:"kind"`
	CreatedAt time.Time `gorm:"column:created_datetime;autoCreateTime" json:"-"`
	UpdatedAt time.Time `gorm:"column:modified_datetime;autoUpdateTime" json:"-"`
}

func (Channel) TableName() string {
	return "channels"
}

// Role is a role template. DefaultValue tags the well known roles (everyone, alive, deceased).
type Role struct {
	ID           int64     `gorm:"column:role_id;primaryKey" json:"id"`
	Name         string    `gorm:"column:role_name" json:"name"`
	Description  string    `gorm:"column:role_description" json:"description"`
	DefaultValue string    `gorm:"column:default_value" json:"default_value"`
	CreatedAt    time.Time `gorm:"column:created_datetime;autoCreateTime" json:"-"`
	UpdatedAt    time.Time `gorm:"column:modified_datetime;autoUpdateTime" json:"-"`
}

func (Role) TableName() string {
	return "roles"
}

type Character struct {
	ID                  int64     `gorm:"column:character_id;primaryKey" json:"id"`
	DisplayName         string    `gorm:"column:character_display_name" json:"display_name"`
	Name                string    `gorm:"column:character_name;index" json:"name"`
	Weighting           int       `gorm:"column:weighting" json:"weighting"`
	MaxDuplicates       int       `gorm:"column:max_duplicates" json:"max_duplicates"`
	Difficulty          int       `gorm:"column:difficulty" json:"difficulty"`
	StartingAffiliation string    `gorm:"column:starting_affiliation" json:"starting_affiliation"`
	SeenAffiliation     string    `gorm:"column:seen_affiliation" json:"seen_affiliation"`
	ShortDescription    string    `gorm:"column:char_short_description" json:"short_description"`
	CardDescription     string    `gorm:"column:char_card_description" json:"card_description"`
	FullDescription     string    `gorm:"column:char_full_description" json:"full_description"`
	CreatedAt           time.Time `gorm:"column:created_datetime;autoCreateTime" json:"-"`
	UpdatedAt           time.Time `gorm:"column:modified_datetime;autoUpdateTime" json:"-"`
}

func (Character) TableName() string {
	return "characters"
}
