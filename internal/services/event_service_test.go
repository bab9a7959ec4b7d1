package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"infinite-experiment/werewolf/internal/constants"
	models "infinite-experiment/werewolf/internal/models/gorm"
	"infinite-experiment/werewolf/internal/providers"
)

func TestEventService_Death(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	game := startedGame(t, env)
	alive := gameRole(t, env, game.ID, constants.RoleDefaultAlive)
	deceased := gameRole(t, env, game.ID, constants.RoleDefaultDeceased)
	cc := moderatorContext(game.CategoryID)

	out, err := env.events.Death(ctx, cc, "<@!1002>")
	require.NoError(t, err)
	require.False(t, out.Rejected, out.Message)
	assert.Equal(t, "<@1002> has died", out.Message)

	player, err := env.store.Players.GetByUser(ctx, game.ID, "1002")
	require.NoError(t, err)
	assert.Equal(t, constants.VitalsDeceased, player.Vitals)
	assert.True(t, env.platform.memberRoles["1002"][deceased.DiscordRoleID])
	assert.False(t, env.platform.memberRoles["1002"][alive.DiscordRoleID])

	t.Run("death is final", func(t *testing.T) {
		out, err := env.events.Death(ctx, cc, "<@1002>")
		require.NoError(t, err)
		assert.True(t, out.Rejected)
		assert.Equal(t, ReasonConflict, out.Reason)
	})

	t.Run("non-player", func(t *testing.T) {
		out, err := env.events.Death(ctx, cc, "<@5555555>")
		require.NoError(t, err)
		assert.Equal(t, ReasonNotFound, out.Reason)
		assert.Equal(t, `"<@5555555>" is not a part of this game`, out.Message)
	})

	t.Run("unknown tag", func(t *testing.T) {
		out, err := env.events.Death(ctx, cc, "ghost#0001")
		require.NoError(t, err)
		assert.Equal(t, ReasonNotFound, out.Reason)
		assert.Equal(t, `There is no member called "ghost#0001"`, out.Message)
	})

	t.Run("tag resolves through the platform", func(t *testing.T) {
		env.platform.members["alice#1234"] = "1003"
		out, err := env.events.Death(ctx, cc, "alice#1234")
		require.NoError(t, err)
		require.False(t, out.Rejected, out.Message)

		player, err := env.store.Players.GetByUser(ctx, game.ID, "1003")
		require.NoError(t, err)
		assert.Equal(t, constants.VitalsDeceased, player.Vitals)
	})
}

func TestEventService_DeathRequiresActiveGame(t *testing.T) {
	env := newTestEnv(t)
	game := createGame(t, env, "wolf")
	joinPlayers(t, env, game, "1001")

	out, err := env.events.Death(context.Background(), moderatorContext(game.CategoryID), "<@1001>")
	require.NoError(t, err)
	assert.Equal(t, ReasonWrongStatus, out.Reason)

	player, err := env.store.Players.GetByUser(context.Background(), game.ID, "1001")
	require.NoError(t, err)
	assert.Equal(t, constants.VitalsAlive, player.Vitals)
}

func TestEventService_DeathLeavesChannelsUntilNextReconcile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	addCharacterRule(t, env, models.CharacterPermission{
		CharacterID: charVillager, ChannelID: ptr(chanTownSquare), VitalsRequired: ptr(constants.VitalsAlive),
		PermissionName: "send_messages", PermissionValue: true,
	})
	game := startedGame(t, env)
	town := gameChannel(t, env, game.ID, "town-square").DiscordChannelID

	villagers := villagerIDs(t, env, game.ID)
	require.Len(t, villagers, 2)
	victim := providers.MemberTarget(villagers[0])
	require.Contains(t, env.platform.channelOverwrites(town), victim)

	out, err := env.events.Death(ctx, moderatorContext(game.CategoryID), "<@"+villagers[0]+">")
	require.NoError(t, err)
	require.False(t, out.Rejected, out.Message)
	assert.Contains(t, env.platform.channelOverwrites(town), victim)

	out, err = env.games.SetPhase(ctx, moderatorContext(game.CategoryID), "night")
	require.NoError(t, err)
	require.False(t, out.Rejected, out.Message)
	assert.NotContains(t, env.platform.channelOverwrites(town), victim)
	assert.Contains(t, env.platform.channelOverwrites(town), providers.MemberTarget(villagers[1]))
}

func TestEventService_ReconcileOnDeath(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.events.cfg.ReconcileOnDeath = true
	addCharacterRule(t, env, models.CharacterPermission{
		CharacterID: charVillager, ChannelID: ptr(chanTownSquare), VitalsRequired: ptr(constants.VitalsAlive),
		PermissionName: "send_messages", PermissionValue: true,
	})
	game := startedGame(t, env)
	town := gameChannel(t, env, game.ID, "town-square").DiscordChannelID
	villagers := villagerIDs(t, env, game.ID)

	out, err := env.events.Death(ctx, moderatorContext(game.CategoryID), "<@"+villagers[0]+">")
	require.NoError(t, err)
	require.False(t, out.Rejected, out.Message)

	assert.NotContains(t, env.platform.channelOverwrites(town), providers.MemberTarget(villagers[0]))
}

func villagerIDs(t *testing.T, env *testEnv, gameID int64) []string {
	t.Helper()
	players, err := env.store.Players.ListByGame(context.Background(), gameID)
	require.NoError(t, err)
	var ids []string
	for _, p := range players {
		if p.CharacterID != nil && *p.CharacterID == charVillager {
			ids = append(ids, p.DiscordUserID)
		}
	}
	return ids
}

func TestResolveMember(t *testing.T) {
	env := newTestEnv(t)
	env.platform.members["bob#0420"] = "777777"
	ctx := context.Background()

	for target, want := range map[string]string{
		"<@123456>":  "123456",
		"<@!123456>": "123456",
		"98765432":   "98765432",
		"bob#0420":   "777777",
		"nobody":     "",
		"":           "",
	} {
		got, err := env.events.resolveMember(ctx, testGuild, target)
		require.NoError(t, err)
		assert.Equal(t, want, got, target)
	}
}
