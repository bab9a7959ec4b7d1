package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"infinite-experiment/werewolf/internal/constants"
	"infinite-experiment/werewolf/internal/db/repositories"
	"infinite-experiment/werewolf/internal/models/dtos"
)

func TestSignupService_JoinAndLeave(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	game := createGame(t, env, "wolf")
	alive := gameRole(t, env, game.ID, constants.RoleDefaultAlive)

	out, err := env.signups.HandleReaction(ctx, reaction(game, "1001", true))
	require.NoError(t, err)
	require.False(t, out.Rejected, out.Message)
	assert.Equal(t, "<@1001> joined WOLF", out.Message)
	assert.True(t, env.platform.memberRoles["1001"][alive.DiscordRoleID])

	player, err := env.store.Players.GetByUser(ctx, game.ID, "1001")
	require.NoError(t, err)
	assert.Equal(t, constants.VitalsAlive, player.Vitals)
	assert.Nil(t, player.CharacterID)

	t.Run("second join is ignored", func(t *testing.T) {
		out, err := env.signups.HandleReaction(ctx, reaction(game, "1001", true))
		require.NoError(t, err)
		assert.Equal(t, ReasonIgnored, out.Reason)
		n, err := env.store.Players.CountByGame(ctx, game.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})

	t.Run("leave", func(t *testing.T) {
		out, err := env.signups.HandleReaction(ctx, reaction(game, "1001", false))
		require.NoError(t, err)
		require.False(t, out.Rejected, out.Message)
		assert.False(t, env.platform.memberRoles["1001"][alive.DiscordRoleID])

		n, err := env.store.Players.CountByGame(ctx, game.ID)
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("leave without joining is ignored", func(t *testing.T) {
		out, err := env.signups.HandleReaction(ctx, reaction(game, "2002", false))
		require.NoError(t, err)
		assert.Equal(t, ReasonIgnored, out.Reason)
	})
}

func TestSignupService_IgnoredReactions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	game := createGame(t, env, "wolf")

	tests := []struct {
		name   string
		mutate func(e *dtos.ReactionEvent)
	}{
		{name: "bot", mutate: func(e *dtos.ReactionEvent) { e.Bot = true }},
		{name: "other emoji", mutate: func(e *dtos.ReactionEvent) { e.Emoji = "🧄" }},
		{name: "other message", mutate: func(e *dtos.ReactionEvent) { e.MessageID = "some-other-message" }},
		{name: "other guild", mutate: func(e *dtos.ReactionEvent) { e.GuildID = "other-guild" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event := reaction(game, "1001", true)
			tt.mutate(event)

			out, err := env.signups.HandleReaction(ctx, event)
			require.NoError(t, err)
			assert.True(t, out.Rejected)
			assert.Equal(t, ReasonIgnored, out.Reason)
		})
	}

	n, err := env.store.Players.CountByGame(ctx, game.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSignupService_ClosedAfterStart(t *testing.T) {
	env := newTestEnv(t)
	game := startedGame(t, env)

	out, err := env.signups.HandleReaction(context.Background(), reaction(game, "4004", true))
	require.NoError(t, err)
	assert.Equal(t, ReasonIgnored, out.Reason)

	_, err = env.store.Players.GetByUser(context.Background(), game.ID, "4004")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}
