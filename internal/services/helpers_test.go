package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"infinite-experiment/werewolf/internal/common"
	"infinite-experiment/werewolf/internal/config"
	"infinite-experiment/werewolf/internal/constants"
	"infinite-experiment/werewolf/internal/db"
	"infinite-experiment/werewolf/internal/db/repositories"
	"infinite-experiment/werewolf/internal/logging"
	"infinite-experiment/werewolf/internal/metrics"
	"infinite-experiment/werewolf/internal/models/dtos"
	models "infinite-experiment/werewolf/internal/models/gorm"
	"infinite-experiment/werewolf/internal/providers"
)

const (
	testGuild = "9000"
)

// fakePlatform keeps channel overwrites and member roles in memory.
type fakePlatform struct {
	mu sync.Mutex

	next         int
	overwrites   map[string]map[providers.OverwriteTarget]providers.PermissionSet
	guildChans   map[string]string
	members      map[string]string
	memberRoles  map[string]map[string]bool
	messages     map[string][]string
	reactions    int
	roles        map[string]string
	deletedChans []string
	deletedRoles []string

	setCalls   int
	clearCalls int
	failSet    error
	onSet      func(channelID string, target providers.OverwriteTarget)
}

var _ providers.ChatPlatform = (*fakePlatform)(nil)

func newFakePlatform() *fakePlatform {
	return &fakePlatform{
		overwrites:  make(map[string]map[providers.OverwriteTarget]providers.PermissionSet),
		guildChans:  map[string]string{"game-announcements": "announce-1"},
		members:     make(map[string]string),
		memberRoles: make(map[string]map[string]bool),
		messages:    make(map[string][]string),
		roles:       make(map[string]string),
	}
}

func (f *fakePlatform) newID(prefix string) string {
	f.next++
	return fmt.Sprintf("%s-%d", prefix, f.next)
}

func (f *fakePlatform) DefaultRole(guildID string) providers.OverwriteTarget {
	return providers.RoleTarget(guildID)
}

func (f *fakePlatform) CreateCategory(_ context.Context, _ string, _ string, overwrites map[providers.OverwriteTarget]providers.PermissionSet) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.newID("category")
	f.overwrites[id] = make(map[providers.OverwriteTarget]providers.PermissionSet)
	for target, perms := range overwrites {
		f.overwrites[id][target] = copyPerms(perms)
	}
	return id, nil
}

func (f *fakePlatform) CreateChannel(_ context.Context, _ string, spec providers.ChannelSpec) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.newID("channel")
	f.overwrites[id] = make(map[providers.OverwriteTarget]providers.PermissionSet)
	return id, nil
}

func (f *fakePlatform) DeleteChannel(_ context.Context, channelID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.overwrites, channelID)
	f.deletedChans = append(f.deletedChans, channelID)
	return nil
}

func (f *fakePlatform) FindChannelByName(_ context.Context, _ string, name string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.guildChans[name], nil
}

func (f *fakePlatform) CreateRole(_ context.Context, _ string, name string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.newID("role")
	f.roles[id] = name
	return id, nil
}

func (f *fakePlatform) DeleteRole(_ context.Context, _ string, roleID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.roles, roleID)
	f.deletedRoles = append(f.deletedRoles, roleID)
	return nil
}

func (f *fakePlatform) AddMemberRole(_ context.Context, _ string, userID, roleID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.memberRoles[userID] == nil {
		f.memberRoles[userID] = make(map[string]bool)
	}
	f.memberRoles[userID][roleID] = true
	return nil
}

func (f *fakePlatform) RemoveMemberRole(_ context.Context, _ string, userID, roleID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.memberRoles[userID], roleID)
	return nil
}

func (f *fakePlatform) FindMemberByTag(_ context.Context, _ string, tag string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.members[tag], nil
}

func (f *fakePlatform) SetChannelOverwrite(_ context.Context, channelID string, target providers.OverwriteTarget, perms providers.PermissionSet) error {
	f.mu.Lock()
	hook := f.onSet
	if f.failSet != nil {
		f.mu.Unlock()
		return f.failSet
	}
	if f.overwrites[channelID] == nil {
		f.overwrites[channelID] = make(map[providers.OverwriteTarget]providers.PermissionSet)
	}
	f.overwrites[channelID][target] = copyPerms(perms)
	f.setCalls++
	f.mu.Unlock()

	if hook != nil {
		hook(channelID, target)
	}
	return nil
}

func (f *fakePlatform) ClearChannelOverwrite(_ context.Context, channelID string, target providers.OverwriteTarget) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.overwrites[channelID], target)
	f.clearCalls++
	return nil
}

func (f *fakePlatform) ListChannelOverwriteTargets(_ context.Context, channelID string) ([]providers.OverwriteTarget, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	targets := make([]providers.OverwriteTarget, 0, len(f.overwrites[channelID]))
	for target := range f.overwrites[channelID] {
		targets = append(targets, target)
	}
	sort.Slice(targets, func(i, j int) bool { return targets[i].String() < targets[j].String() })
	return targets, nil
}

func (f *fakePlatform) SendMessage(_ context.Context, channelID, text string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages[channelID] = append(f.messages[channelID], text)
	return f.newID("message"), nil
}

func (f *fakePlatform) AddReaction(_ context.Context, _, _, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reactions++
	return nil
}

// channelOverwrites returns a copy of the overwrites currently on a channel.
func (f *fakePlatform) channelOverwrites(channelID string) map[providers.OverwriteTarget]providers.PermissionSet {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[providers.OverwriteTarget]providers.PermissionSet, len(f.overwrites[channelID]))
	for target, perms := range f.overwrites[channelID] {
		out[target] = copyPerms(perms)
	}
	return out
}

func copyPerms(perms providers.PermissionSet) providers.PermissionSet {
	out := make(providers.PermissionSet, len(perms))
	for k, v := range perms {
		out[k] = v
	}
	return out
}

// testEnv wires every service against an in-memory SQLite database and the fake platform.
type testEnv struct {
	db          *gorm.DB
	store       *repositories.Store
	platform    *fakePlatform
	metrics     *metrics.MetricsRegistry
	cfg         config.GameConfig
	catalog     *CatalogService
	permissions *PermissionService
	games       *GameService
	signups     *SignupService
	events      *EventService
	scenarios   *ScenarioService
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := db.InitSQLiteORM(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return gdb
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logging.SetLogger(zap.NewNop().Sugar())

	gdb := setupTestDB(t)
	store := repositories.NewStore(gdb)
	platform := newFakePlatform()
	metricsReg := metrics.NewMetricsRegistry(prometheus.NewRegistry())
	cfg := config.DefaultGameConfig()
	locker := common.NewLocalGameLocker()

	catalog := NewCatalogService(store, common.NewCacheService(time.Minute, time.Minute), time.Minute)
	permissions := NewPermissionService(platform, store, metricsReg)
	shuffler := NewShuffler(rand.New(rand.NewPCG(1, 2)))

	env := &testEnv{
		db:          gdb,
		store:       store,
		platform:    platform,
		metrics:     metricsReg,
		cfg:         cfg,
		catalog:     catalog,
		permissions: permissions,
		games:       NewGameService(platform, store, catalog, permissions, locker, shuffler, cfg),
		signups:     NewSignupService(platform, store, locker, cfg),
		events:      NewEventService(platform, store, permissions, locker, cfg),
		scenarios:   NewScenarioService(store, catalog, cfg),
	}
	env.games.now = func() time.Time { return time.Date(2024, 5, 10, 15, 0, 0, 0, time.UTC) }
	seedCatalog(t, env)
	return env
}

// Catalog ids used across the tests.
const (
	chanTownSquare int64 = 1
	chanWerewolves int64 = 2
	chanPlayer     int64 = 3

	roleEveryone  int64 = 1
	roleAlive     int64 = 2
	roleDeceased  int64 = 3
	roleModerator int64 = 4

	charVillager int64 = 1
	charWerewolf int64 = 2
	charSeer     int64 = 3
)

func seedCatalog(t *testing.T, env *testEnv) {
	t.Helper()
	channels := []models.Channel{
		{ID: chanTownSquare, Name: "town-square", Order: 1, Topic: "everyone talks here", Kind: constants.ChannelKindText},
		{ID: chanWerewolves, Name: "werewolves", Order: 2, Topic: "the pack", Kind: constants.ChannelKindText},
		{ID: chanPlayer, Name: "player", Order: 3, Topic: "player status", Kind: constants.ChannelKindText},
	}
	roles := []models.Role{
		{ID: roleEveryone, Name: "everyone", DefaultValue: constants.RoleDefaultEveryone},
		{ID: roleAlive, Name: "alive", DefaultValue: constants.RoleDefaultAlive},
		{ID: roleDeceased, Name: "deceased", DefaultValue: constants.RoleDefaultDeceased},
		{ID: roleModerator, Name: "moderator"},
	}
	characters := []models.Character{
		{ID: charVillager, Name: "villager", DisplayName: "Villager", Weighting: 1, MaxDuplicates: 10, StartingAffiliation: "village"},
		{ID: charWerewolf, Name: "werewolf", DisplayName: "Werewolf", Weighting: -6, MaxDuplicates: 3, StartingAffiliation: "werewolf"},
		{ID: charSeer, Name: "seer", DisplayName: "Seer", Weighting: 7, MaxDuplicates: 1, StartingAffiliation: "village"},
	}
	require.NoError(t, env.db.Create(&channels).Error)
	require.NoError(t, env.db.Create(&roles).Error)
	require.NoError(t, env.db.Create(&characters).Error)
}

func addCharacterRule(t *testing.T, env *testEnv, rule models.CharacterPermission) int64 {
	t.Helper()
	require.NoError(t, env.store.Permissions.CreateCharacterPermission(context.Background(), &rule))
	return rule.ID
}

func addRoleRule(t *testing.T, env *testEnv, rule models.RolePermission) int64 {
	t.Helper()
	require.NoError(t, env.store.Permissions.CreateRolePermission(context.Background(), &rule))
	return rule.ID
}

func moderatorContext(categoryID string) CommandContext {
	return CommandContext{
		GuildID:     testGuild,
		ActorID:     "mod-1",
		CategoryID:  categoryID,
		ChannelID:   "moderator-channel",
		ChannelName: "moderator",
	}
}

// createGame runs game-create and returns the persisted game.
func createGame(t *testing.T, env *testEnv, name string) *models.Game {
	t.Helper()
	ctx := context.Background()
	out, err := env.games.Create(ctx, CommandContext{GuildID: testGuild, ActorID: "mod-1"}, dtosCreate(name))
	require.NoError(t, err)
	require.False(t, out.Rejected, out.Message)

	game, err := env.store.Games.GetByID(ctx, out.GameID)
	require.NoError(t, err)
	return game
}

// joinPlayers signs users up through the reaction flow.
func joinPlayers(t *testing.T, env *testEnv, game *models.Game, userIDs ...string) {
	t.Helper()
	for _, userID := range userIDs {
		out, err := env.signups.HandleReaction(context.Background(), reaction(game, userID, true))
		require.NoError(t, err)
		require.False(t, out.Rejected, out.Message)
	}
}

// createScenario creates a global scenario holding the given characters.
func createScenario(t *testing.T, env *testEnv, name string, characterIDs ...int64) *models.Scenario {
	t.Helper()
	ctx := context.Background()
	scenario := &models.Scenario{Name: name, Scope: constants.ScopeGlobal}
	require.NoError(t, env.store.Scenarios.Create(ctx, scenario))
	for _, id := range characterIDs {
		require.NoError(t, env.store.Scenarios.AddCharacter(ctx, &models.ScenarioCharacter{ScenarioID: scenario.ID, CharacterID: id, Weighting: 1}))
	}
	return scenario
}

func gameChannel(t *testing.T, env *testEnv, gameID int64, name string) *models.GameChannel {
	t.Helper()
	ch, err := env.store.Channels.FindGameChannelByName(context.Background(), gameID, name)
	require.NoError(t, err)
	return ch
}

func gameRole(t *testing.T, env *testEnv, gameID int64, defaultValue string) *models.GameRole {
	t.Helper()
	role, err := env.store.Roles.GetGameRoleByDefault(context.Background(), gameID, defaultValue)
	require.NoError(t, err)
	return role
}

func dtosCreate(name string) dtos.CreateGameRequest {
	return dtos.CreateGameRequest{Name: name}
}

func reaction(game *models.Game, userID string, added bool) *dtos.ReactionEvent {
	return &dtos.ReactionEvent{
		GuildID:   game.GuildID,
		ChannelID: game.AnnounceChannelID,
		MessageID: game.AnnounceMessageID,
		UserID:    userID,
		Emoji:     "🐺",
		Added:     added,
	}
}

var errPlatformDown = errors.New("platform down")
