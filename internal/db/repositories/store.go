package repositories

import "gorm.io/gorm"

// Store bundles the gorm repositories the game services share.
type Store struct {
	Games       *GameRepository
	Channels    *ChannelRepository
	Roles       *RoleRepository
	Characters  *CharacterRepository
	Scenarios   *ScenarioRepository
	Players     *PlayerRepository
	Permissions *PermissionRepository
}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		Games:       NewGameRepository(db),
		Channels:    NewChannelRepository(db),
		Roles:       NewRoleRepository(db),
		Characters:  NewCharacterRepository(db),
		Scenarios:   NewScenarioRepository(db),
		Players:     NewPlayerRepository(db),
		Permissions: NewPermissionRepository(db),
	}
}
