package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"infinite-experiment/werewolf/internal/common"
	"infinite-experiment/werewolf/internal/config"
	"infinite-experiment/werewolf/internal/constants"
	"infinite-experiment/werewolf/internal/db/repositories"
	"infinite-experiment/werewolf/internal/logging"
	models "infinite-experiment/werewolf/internal/models/gorm"
	"infinite-experiment/werewolf/internal/providers"
)

var (
	mentionPattern = regexp.MustCompile(`^<@!?(\d+)>$`)
	userIDPattern  = regexp.MustCompile(`^\d{5,}$`)
)

// EventService applies in-game events to players.
type EventService struct {
	gameGuard
	platform    providers.ChatPlatform
	permissions *PermissionService
}

func NewEventService(platform providers.ChatPlatform, store *repositories.Store, permissions *PermissionService, locker common.GameLocker, cfg config.GameConfig) *EventService {
	return &EventService{
		gameGuard:   gameGuard{store: store, locker: locker, cfg: cfg},
		platform:    platform,
		permissions: permissions,
	}
}

// Death marks a living player deceased and swaps their alive role for the deceased role.
// Channel access follows on the next reconciliation unless ReconcileOnDeath is set.
func (s *EventService) Death(ctx context.Context, cc CommandContext, target string) (Outcome, error) {
	target = strings.TrimSpace(target)

	return s.locked(ctx, cc, constants.StatusActive, func(ctx context.Context, game *models.Game) (Outcome, error) {
		userID, err := s.resolveMember(ctx, game.GuildID, target)
		if err != nil {
			return Outcome{}, err
		}
		if userID == "" {
			return rejected(ReasonNotFound, constants.MsgNoMember, target), nil
		}

		player, err := s.store.Players.GetByUser(ctx, game.ID, userID)
		if errors.Is(err, repositories.ErrNotFound) {
			return rejected(ReasonNotFound, constants.MsgNotInGame, target), nil
		}
		if err != nil {
			return Outcome{}, err
		}
		if player.Vitals == constants.VitalsDeceased {
			return rejected(ReasonConflict, constants.MsgAlreadyDeceased, target), nil
		}

		if err := s.store.Players.MarkDeceased(ctx, player.ID); err != nil {
			return Outcome{}, err
		}

		deceased, err := s.store.Roles.GetGameRoleByDefault(ctx, game.ID, constants.RoleDefaultDeceased)
		if err != nil {
			return Outcome{}, fmt.Errorf("game %d has no deceased role: %w", game.ID, err)
		}
		alive, err := s.store.Roles.GetGameRoleByDefault(ctx, game.ID, constants.RoleDefaultAlive)
		if err != nil {
			return Outcome{}, fmt.Errorf("game %d has no alive role: %w", game.ID, err)
		}
		if err := s.platform.AddMemberRole(ctx, game.GuildID, userID, deceased.DiscordRoleID); err != nil {
			return Outcome{}, fmt.Errorf("failed to grant deceased role: %w", err)
		}
		if err := s.platform.RemoveMemberRole(ctx, game.GuildID, userID, alive.DiscordRoleID); err != nil {
			return Outcome{}, fmt.Errorf("failed to revoke alive role: %w", err)
		}

		if s.cfg.ReconcileOnDeath {
			phase := constants.PhaseDay
			if game.Phase != nil {
				phase = *game.Phase
			}
			if err := s.permissions.Reconcile(ctx, game.ID, phase, constants.StatusActive); err != nil {
				return Outcome{}, err
			}
		}

		logging.WithGame(game.ID, game.GuildID, cc.ActorID).Infow("player died", "user_id", userID)
		return accepted(game.ID, constants.MsgPlayerDied, common.Mention(userID)), nil
	})
}

// resolveMember accepts a mention, a raw user id or a name#0000 tag.
func (s *EventService) resolveMember(ctx context.Context, guildID, target string) (string, error) {
	if m := mentionPattern.FindStringSubmatch(target); m != nil {
		return m[1], nil
	}
	if userIDPattern.MatchString(target) {
		return target, nil
	}
	if target == "" {
		return "", nil
	}
	userID, err := s.platform.FindMemberByTag(ctx, guildID, target)
	if err != nil {
		return "", fmt.Errorf("failed to search member %s: %w", target, err)
	}
	return userID, nil
}
