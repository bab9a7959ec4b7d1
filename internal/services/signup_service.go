package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"infinite-experiment/werewolf/internal/common"
	"infinite-experiment/werewolf/internal/config"
	"infinite-experiment/werewolf/internal/constants"
	"infinite-experiment/werewolf/internal/db/repositories"
	"infinite-experiment/werewolf/internal/logging"
	"infinite-experiment/werewolf/internal/models/dtos"
	models "infinite-experiment/werewolf/internal/models/gorm"
	"infinite-experiment/werewolf/internal/providers"
)

// SignupService turns reactions on a recruitment announcement into roster changes.
type SignupService struct {
	platform providers.ChatPlatform
	store    *repositories.Store
	locker   common.GameLocker
	cfg      config.GameConfig
}

func NewSignupService(platform providers.ChatPlatform, store *repositories.Store, locker common.GameLocker, cfg config.GameConfig) *SignupService {
	return &SignupService{platform: platform, store: store, locker: locker, cfg: cfg}
}

// HandleReaction joins or leaves the player for the recruiting game the reaction belongs to.
// Reactions that do not concern a recruiting game are ignored.
func (s *SignupService) HandleReaction(ctx context.Context, event *dtos.ReactionEvent) (Outcome, error) {
	if event.Bot || event.Emoji != s.cfg.ReactionEmoji {
		return rejected(ReasonIgnored, "reaction ignored"), nil
	}

	game, err := s.store.Games.GetRecruitingByAnnouncement(ctx, event.MessageID)
	if errors.Is(err, repositories.ErrNotFound) {
		return rejected(ReasonIgnored, "no recruiting game for this message"), nil
	}
	if err != nil {
		return Outcome{}, err
	}
	if event.GuildID != "" && event.GuildID != game.GuildID {
		return rejected(ReasonIgnored, "reaction from another guild"), nil
	}

	unlock, err := s.locker.Lock(ctx, strconv.FormatInt(game.ID, 10))
	if err != nil {
		return Outcome{}, err
	}
	defer unlock()

	// the game may have started while we waited for the lock
	game, err = s.store.Games.GetByID(ctx, game.ID)
	if err != nil {
		return Outcome{}, err
	}
	if game.Status != constants.StatusRecruiting {
		return rejected(ReasonWrongStatus, constants.MsgWrongStatus, game.Name, constants.StatusRecruiting), nil
	}

	alive, err := s.store.Roles.GetGameRoleByDefault(ctx, game.ID, constants.RoleDefaultAlive)
	if err != nil {
		return Outcome{}, fmt.Errorf("game %d has no alive role: %w", game.ID, err)
	}

	if event.Added {
		return s.join(ctx, game, alive, event.UserID)
	}
	return s.leave(ctx, game, alive, event.UserID)
}

func (s *SignupService) join(ctx context.Context, game *models.Game, alive *models.GameRole, userID string) (Outcome, error) {
	_, err := s.store.Players.GetByUser(ctx, game.ID, userID)
	if err == nil {
		return rejected(ReasonIgnored, "already signed up"), nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return Outcome{}, err
	}

	if err := s.store.Players.Create(ctx, &models.GamePlayer{GameID: game.ID, DiscordUserID: userID}); err != nil {
		return Outcome{}, err
	}
	if err := s.platform.AddMemberRole(ctx, game.GuildID, userID, alive.DiscordRoleID); err != nil {
		return Outcome{}, fmt.Errorf("failed to grant alive role: %w", err)
	}

	logging.WithGame(game.ID, game.GuildID, userID).Infow("player joined")
	return accepted(game.ID, "%s joined %s", common.Mention(userID), game.Name), nil
}

func (s *SignupService) leave(ctx context.Context, game *models.Game, alive *models.GameRole, userID string) (Outcome, error) {
	removed, err := s.store.Players.DeleteByUser(ctx, game.ID, userID)
	if err != nil {
		return Outcome{}, err
	}
	if removed == 0 {
		return rejected(ReasonIgnored, "not signed up"), nil
	}
	if err := s.platform.RemoveMemberRole(ctx, game.GuildID, userID, alive.DiscordRoleID); err != nil {
		return Outcome{}, fmt.Errorf("failed to revoke alive role: %w", err)
	}

	logging.WithGame(game.ID, game.GuildID, userID).Infow("player left")
	return accepted(game.ID, "%s left %s", common.Mention(userID), game.Name), nil
}
