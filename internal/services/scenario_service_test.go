package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"infinite-experiment/werewolf/internal/constants"
	"infinite-experiment/werewolf/internal/models/dtos"
)

func workshopContext() CommandContext {
	return CommandContext{GuildID: testGuild, ActorID: "mod-1", ChannelID: "workshop", ChannelName: "testing"}
}

func TestParseCharacterList(t *testing.T) {
	names, notes := ParseCharacterList("Werewolf|2, seer,,bad|x,a|b|c, villager|0")

	assert.Equal(t, []string{"werewolf", "werewolf", "seer"}, names)
	assert.Equal(t, []string{
		`invalid argument "bad|x" and has been ignored`,
		`invalid argument "a|b|c" and has been ignored`,
	}, notes)
}

func TestParseCharacterList_RepeatCap(t *testing.T) {
	names, notes := ParseCharacterList("seer|50, werewolf|51, villager|999999999999")

	assert.Len(t, names, constants.MaxCharacterRepeat)
	assert.Equal(t, []string{
		`invalid argument "werewolf|51" and has been ignored`,
		`invalid argument "villager|999999999999" and has been ignored`,
	}, notes)
}

func TestScenarioService_Create(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	game := createGame(t, env, "wolf")

	t.Run("global from workshop", func(t *testing.T) {
		out, err := env.scenarios.Create(ctx, workshopContext(), dtos.CreateScenarioRequest{Name: "Big Game", Scope: "global"})
		require.NoError(t, err)
		require.False(t, out.Rejected, out.Message)
		assert.Contains(t, out.Message, `created global scenario "big-game"`)
	})

	t.Run("global name taken", func(t *testing.T) {
		out, err := env.scenarios.Create(ctx, workshopContext(), dtos.CreateScenarioRequest{Name: "big-game", Scope: "global"})
		require.NoError(t, err)
		assert.Equal(t, ReasonConflict, out.Reason)
	})

	t.Run("local needs a game", func(t *testing.T) {
		out, err := env.scenarios.Create(ctx, workshopContext(), dtos.CreateScenarioRequest{Name: "mine"})
		require.NoError(t, err)
		assert.Equal(t, ReasonWrongChannel, out.Reason)
		assert.Equal(t, "local scope must be created in side a moderator channel of a game", out.Message)
	})

	t.Run("local inside game", func(t *testing.T) {
		out, err := env.scenarios.Create(ctx, moderatorContext(game.CategoryID), dtos.CreateScenarioRequest{Name: "big-game"})
		require.NoError(t, err)
		require.False(t, out.Rejected, out.Message)
		assert.Equal(t, game.ID, out.GameID)

		again, err := env.scenarios.Create(ctx, moderatorContext(game.CategoryID), dtos.CreateScenarioRequest{Name: "big-game", Scope: "local"})
		require.NoError(t, err)
		assert.Equal(t, ReasonConflict, again.Reason)
	})

	t.Run("invalid scope", func(t *testing.T) {
		out, err := env.scenarios.Create(ctx, workshopContext(), dtos.CreateScenarioRequest{Name: "x", Scope: "galaxy"})
		require.NoError(t, err)
		assert.Equal(t, ReasonInvalidInput, out.Reason)
	})
}

func TestScenarioService_Access(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	createScenario(t, env, "basic", charVillager)

	t.Run("random channel outside a game", func(t *testing.T) {
		cc := workshopContext()
		cc.ChannelName = "general"
		out, err := env.scenarios.ListAvailable(ctx, cc)
		require.NoError(t, err)
		assert.Equal(t, ReasonWrongChannel, out.Reason)
		assert.Equal(t, "not allowed on this channel", out.Message)
	})

	t.Run("non-moderator channel inside a game", func(t *testing.T) {
		game := createGame(t, env, "moon")
		cc := moderatorContext(game.CategoryID)
		cc.ChannelName = "town-square"
		out, err := env.scenarios.ListCharacters(ctx, cc, "basic")
		require.NoError(t, err)
		assert.Equal(t, ReasonWrongChannel, out.Reason)
	})

	t.Run("game no longer recruiting", func(t *testing.T) {
		game := startedGame(t, env)
		out, err := env.scenarios.ListCharacters(ctx, moderatorContext(game.CategoryID), "basic")
		require.NoError(t, err)
		assert.Equal(t, ReasonWrongStatus, out.Reason)
	})
}

func TestScenarioService_AddAndRemoveCharacters(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	cc := workshopContext()
	_, err := env.scenarios.Create(ctx, cc, dtos.CreateScenarioRequest{Name: "primary", Scope: "global"})
	require.NoError(t, err)

	out, err := env.scenarios.AddCharacters(ctx, cc, "", "werewolf|2,seer|2,dragon,bad|x")
	require.NoError(t, err)
	require.False(t, out.Rejected, out.Message)

	assert.Contains(t, out.Message, `invalid argument "bad|x" and has been ignored`)
	assert.Contains(t, out.Message, "no character named dragon, this has not been included")
	assert.Contains(t, out.Message, "seer can appear at most 1 times in a scenario, this has not been included")
	assert.Contains(t, out.Message, `Updated Scenario "primary"`)
	assert.Contains(t, out.Message, "TOTAL")
	assert.Equal(t, []dtos.ScenarioCharacterCount{
		{Name: "seer", Quantity: 1, Weighting: 7},
		{Name: "werewolf", Quantity: 2, Weighting: -12},
	}, out.Data)

	t.Run("max duplicates counts existing entries", func(t *testing.T) {
		out, err := env.scenarios.AddCharacters(ctx, cc, "primary", "werewolf|2")
		require.NoError(t, err)
		assert.Contains(t, out.Message, "werewolf can appear at most 3 times")
		assert.Equal(t, []dtos.ScenarioCharacterCount{
			{Name: "seer", Quantity: 1, Weighting: 7},
			{Name: "werewolf", Quantity: 3, Weighting: -18},
		}, out.Data)
	})

	t.Run("oversized repeat is ignored", func(t *testing.T) {
		out, err := env.scenarios.AddCharacters(ctx, cc, "primary", "villager|100000000")
		require.NoError(t, err)
		assert.Contains(t, out.Message, `invalid argument "villager|100000000" and has been ignored`)
		assert.Equal(t, []dtos.ScenarioCharacterCount{
			{Name: "seer", Quantity: 1, Weighting: 7},
			{Name: "werewolf", Quantity: 3, Weighting: -18},
		}, out.Data)
	})

	t.Run("remove", func(t *testing.T) {
		out, err := env.scenarios.RemoveCharacters(ctx, cc, "primary", "werewolf|2,villager")
		require.NoError(t, err)
		assert.Contains(t, out.Message, `character "villager" was not found in scenario "primary" and has not been removed`)
		assert.Equal(t, []dtos.ScenarioCharacterCount{
			{Name: "seer", Quantity: 1, Weighting: 7},
			{Name: "werewolf", Quantity: 1, Weighting: -6},
		}, out.Data)
	})

	t.Run("list", func(t *testing.T) {
		out, err := env.scenarios.ListCharacters(ctx, cc, "primary")
		require.NoError(t, err)
		assert.Contains(t, out.Message, `Scenario "primary"`)
		counts, ok := out.Data.([]dtos.ScenarioCharacterCount)
		require.True(t, ok)
		assert.Len(t, counts, 2)
	})

	t.Run("purge", func(t *testing.T) {
		out, err := env.scenarios.Purge(ctx, cc, "primary")
		require.NoError(t, err)
		assert.Equal(t, `Purged scenario "primary" and its characters`, out.Message)

		out, err = env.scenarios.ListCharacters(ctx, cc, "primary")
		require.NoError(t, err)
		assert.Equal(t, ReasonNotFound, out.Reason)
	})
}

func TestScenarioService_LocalScenarioShadowsGlobal(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	game := createGame(t, env, "wolf")
	gameCC := moderatorContext(game.CategoryID)

	createScenario(t, env, "primary", charSeer)
	_, err := env.scenarios.Create(ctx, gameCC, dtos.CreateScenarioRequest{Name: "primary"})
	require.NoError(t, err)
	_, err = env.scenarios.AddCharacters(ctx, gameCC, "primary", "werewolf")
	require.NoError(t, err)

	inGame, err := env.scenarios.ListCharacters(ctx, gameCC, "primary")
	require.NoError(t, err)
	assert.Equal(t, []dtos.ScenarioCharacterCount{{Name: "werewolf", Quantity: 1, Weighting: -6}}, inGame.Data)

	inWorkshop, err := env.scenarios.ListCharacters(ctx, workshopContext(), "primary")
	require.NoError(t, err)
	assert.Equal(t, []dtos.ScenarioCharacterCount{{Name: "seer", Quantity: 1, Weighting: 1}}, inWorkshop.Data)

	t.Run("listing", func(t *testing.T) {
		out, err := env.scenarios.ListAvailable(ctx, gameCC)
		require.NoError(t, err)
		summaries, ok := out.Data.([]dtos.ScenarioSummary)
		require.True(t, ok)
		require.Len(t, summaries, 2)

		out, err = env.scenarios.ListAvailable(ctx, workshopContext())
		require.NoError(t, err)
		summaries, ok = out.Data.([]dtos.ScenarioSummary)
		require.True(t, ok)
		require.Len(t, summaries, 1)
		assert.Equal(t, "global", summaries[0].Scope)
		assert.Equal(t, 1, summaries[0].CharacterCount)
	})
}
