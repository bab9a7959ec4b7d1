package services

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"infinite-experiment/werewolf/internal/common"
	"infinite-experiment/werewolf/internal/config"
	"infinite-experiment/werewolf/internal/constants"
	"infinite-experiment/werewolf/internal/db/repositories"
	models "infinite-experiment/werewolf/internal/models/gorm"
)

// anyStatus accepts a game in any stage except removed.
const anyStatus constants.GameStatus = ""

// gameGuard resolves the game a command is about and serializes work on it.
type gameGuard struct {
	store  *repositories.Store
	locker common.GameLocker
	cfg    config.GameConfig
}

// resolve finds the game owning the invoking category and checks its status and the
// invoking channel. A non-nil Outcome is a rejection.
func (g *gameGuard) resolve(ctx context.Context, cc CommandContext, required constants.GameStatus) (*models.Game, *Outcome, error) {
	if cc.CategoryID == "" {
		out := rejected(ReasonNoGame, constants.MsgNoGame)
		return nil, &out, nil
	}

	game, err := g.store.Games.GetByCategory(ctx, cc.CategoryID)
	if errors.Is(err, repositories.ErrNotFound) {
		out := rejected(ReasonNoGame, constants.MsgNoGame)
		return nil, &out, nil
	}
	if err != nil {
		return nil, nil, err
	}

	if out := g.check(game, cc, required); out != nil {
		return nil, out, nil
	}
	return game, nil, nil
}

func (g *gameGuard) check(game *models.Game, cc CommandContext, required constants.GameStatus) *Outcome {
	if game.Status == constants.StatusRemoved {
		out := rejected(ReasonNoGame, constants.MsgNoGame)
		return &out
	}
	if required != anyStatus && game.Status != required {
		out := rejected(ReasonWrongStatus, constants.MsgWrongStatus, game.Name, required)
		return &out
	}
	if !strings.EqualFold(cc.ChannelName, g.cfg.ModeratorChannel) {
		out := rejected(ReasonWrongChannel, constants.MsgWrongChannel, g.cfg.ModeratorChannel)
		return &out
	}
	return nil
}

// locked resolves the game, takes its lock, re-reads it so the checks see committed
// state, and runs fn while holding the lock.
func (g *gameGuard) locked(ctx context.Context, cc CommandContext, required constants.GameStatus,
	fn func(ctx context.Context, game *models.Game) (Outcome, error)) (Outcome, error) {
	game, out, err := g.resolve(ctx, cc, required)
	if err != nil || out != nil {
		return deref(out), err
	}

	unlock, err := g.locker.Lock(ctx, strconv.FormatInt(game.ID, 10))
	if err != nil {
		return Outcome{}, err
	}
	defer unlock()

	game, err = g.store.Games.GetByID(ctx, game.ID)
	if err != nil {
		return Outcome{}, err
	}
	if out := g.check(game, cc, required); out != nil {
		return *out, nil
	}

	return fn(ctx, game)
}

func deref(out *Outcome) Outcome {
	if out == nil {
		return Outcome{}
	}
	return *out
}
