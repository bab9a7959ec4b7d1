package services

import (
	"context"
	"time"

	"infinite-experiment/werewolf/internal/common"
	"infinite-experiment/werewolf/internal/constants"
	"infinite-experiment/werewolf/internal/db/repositories"
	models "infinite-experiment/werewolf/internal/models/gorm"
)

// CatalogService serves the global templates (channels, roles, characters) through the cache.
// The catalog only changes through migrations, so a TTL is the only invalidation.
type CatalogService struct {
	store *repositories.Store
	cache common.CacheInterface
	ttl   time.Duration
}

func NewCatalogService(store *repositories.Store, cache common.CacheInterface, ttl time.Duration) *CatalogService {
	return &CatalogService{store: store, cache: cache, ttl: ttl}
}

func (s *CatalogService) ChannelTemplates(ctx context.Context) ([]models.Channel, error) {
	return common.GetOrSet(ctx, s.cache, string(constants.CachePrefixChannelTemplates), s.ttl,
		func() ([]models.Channel, error) {
			return s.store.Channels.ListTemplates(ctx)
		})
}

func (s *CatalogService) RoleTemplates(ctx context.Context) ([]models.Role, error) {
	return common.GetOrSet(ctx, s.cache, string(constants.CachePrefixRoleTemplates), s.ttl,
		func() ([]models.Role, error) {
			return s.store.Roles.ListTemplates(ctx)
		})
}

func (s *CatalogService) Characters(ctx context.Context) ([]models.Character, error) {
	return common.GetOrSet(ctx, s.cache, string(constants.CachePrefixCharacters), s.ttl,
		func() ([]models.Character, error) {
			return s.store.Characters.List(ctx)
		})
}

// CharacterByName looks a character up by its internal name; nil when unknown.
func (s *CatalogService) CharacterByName(ctx context.Context, name string) (*models.Character, error) {
	characters, err := s.Characters(ctx)
	if err != nil {
		return nil, err
	}
	for i := range characters {
		if characters[i].Name == name {
			return &characters[i], nil
		}
	}
	return nil, nil
}
