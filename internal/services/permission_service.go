package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"infinite-experiment/werewolf/internal/constants"
	"infinite-experiment/werewolf/internal/db/repositories"
	"infinite-experiment/werewolf/internal/logging"
	"infinite-experiment/werewolf/internal/metrics"
	models "infinite-experiment/werewolf/internal/models/gorm"
	"infinite-experiment/werewolf/internal/providers"
)

// PermissionService recomputes and applies the full overwrite set of every channel of a game.
// It must not run concurrently for the same game; GameService holds the game lock around it.
type PermissionService struct {
	platform providers.ChatPlatform
	store    *repositories.Store
	metrics  *metrics.MetricsRegistry
}

func NewPermissionService(platform providers.ChatPlatform, store *repositories.Store, metricsReg *metrics.MetricsRegistry) *PermissionService {
	return &PermissionService{
		platform: platform,
		store:    store,
		metrics:  metricsReg,
	}
}

// ChannelPlan is the overwrite set one game channel must end up with, excluding the
// forced default-role deny.
type ChannelPlan struct {
	Channel    models.GameChannel
	Targets    []providers.OverwriteTarget
	Overwrites map[providers.OverwriteTarget]providers.PermissionSet
}

// set records one rule write. Names are canonicalised first so aliases of the same
// platform permission overwrite each other instead of racing at apply time.
func (p *ChannelPlan) set(target providers.OverwriteTarget, name string, value bool) {
	name = providers.CanonicalPermission(name)
	perms, ok := p.Overwrites[target]
	if !ok {
		perms = providers.PermissionSet{}
		p.Overwrites[target] = perms
		p.Targets = append(p.Targets, target)
	}
	perms[name] = value
}

// matchOptional is the wildcard predicate every rule column goes through: a nil rule
// value matches anything, a set one only its exact value.
func matchOptional[T comparable](rule *T, actual T) bool {
	return rule == nil || *rule == actual
}

// FilterPlayerRules keeps the character rules whose phase, status and required vitals all match.
func FilterPlayerRules(rows []models.PlayerPermissionRow, phase constants.Phase, status constants.GameStatus) []models.PlayerPermissionRow {
	kept := make([]models.PlayerPermissionRow, 0, len(rows))
	for _, row := range rows {
		if matchOptional(row.GamePhase, phase) &&
			matchOptional(row.GameStatus, status) &&
			matchOptional(row.VitalsRequired, row.Vitals) {
			kept = append(kept, row)
		}
	}
	return kept
}

// FilterRoleRules keeps the role rules whose phase and status match.
func FilterRoleRules(rows []models.GameRolePermissionRow, phase constants.Phase, status constants.GameStatus) []models.GameRolePermissionRow {
	kept := make([]models.GameRolePermissionRow, 0, len(rows))
	for _, row := range rows {
		if matchOptional(row.GamePhase, phase) && matchOptional(row.GameStatus, status) {
			kept = append(kept, row)
		}
	}
	return kept
}

// BuildChannelPlan merges the already filtered rules that apply to one channel.
// Character rules are applied before role rules and, within each, in the order given;
// the last write for a (target, permission) pair wins.
func BuildChannelPlan(channel models.GameChannel, playerRules []models.PlayerPermissionRow, roleRules []models.GameRolePermissionRow) ChannelPlan {
	plan := ChannelPlan{
		Channel:    channel,
		Overwrites: make(map[providers.OverwriteTarget]providers.PermissionSet),
	}

	for _, rule := range playerRules {
		if matchOptional(rule.ChannelID, channel.ChannelID) {
			plan.set(providers.MemberTarget(rule.DiscordUserID), rule.PermissionName, rule.PermissionValue)
		}
	}
	for _, rule := range roleRules {
		if matchOptional(rule.ChannelID, channel.ChannelID) {
			plan.set(providers.RoleTarget(rule.DiscordRoleID), rule.PermissionName, rule.PermissionValue)
		}
	}

	return plan
}

// Plan loads and filters every rule of the game once, then builds one plan per game channel.
func (s *PermissionService) Plan(ctx context.Context, gameID int64, phase constants.Phase, status constants.GameStatus) ([]ChannelPlan, error) {
	playerRows, err := s.store.Permissions.ListPlayerPermissions(ctx, gameID)
	if err != nil {
		return nil, err
	}
	roleRows, err := s.store.Permissions.ListRolePermissions(ctx, gameID)
	if err != nil {
		return nil, err
	}

	playerRules := FilterPlayerRules(playerRows, phase, status)
	roleRules := FilterRoleRules(roleRows, phase, status)

	channels, err := s.store.Channels.ListGameChannels(ctx, gameID)
	if err != nil {
		return nil, err
	}

	plans := make([]ChannelPlan, 0, len(channels))
	for _, ch := range channels {
		plans = append(plans, BuildChannelPlan(ch, playerRules, roleRules))
	}
	return plans, nil
}

// Reconcile applies the overwrite set computed for (phase, status) to every channel of the
// game, clears every target that no longer has a rule and then persists the phase. status is
// only used for rule matching; callers persist it themselves.
//
// A failing platform call aborts the run and leaves channels already processed as they are.
func (s *PermissionService) Reconcile(ctx context.Context, gameID int64, phase constants.Phase, status constants.GameStatus) (err error) {
	start := time.Now()
	defer func() {
		s.observe(start, err)
	}()

	game, err := s.store.Games.GetByID(ctx, gameID)
	if err != nil {
		return fmt.Errorf("failed to load game %d for reconciliation: %w", gameID, err)
	}

	plans, err := s.Plan(ctx, gameID, phase, status)
	if err != nil {
		return err
	}

	defaultTarget := s.platform.DefaultRole(game.GuildID)
	for i := range plans {
		if err := s.applyChannel(ctx, defaultTarget, &plans[i]); err != nil {
			return err
		}
	}

	if err := s.store.Games.UpdatePhase(ctx, gameID, phase); err != nil {
		return err
	}

	logging.WithGame(gameID, game.GuildID, "").Infow("reconciled channel permissions",
		"phase", phase,
		"status", status,
		"channels", len(plans),
	)
	return nil
}

func (s *PermissionService) applyChannel(ctx context.Context, defaultTarget providers.OverwriteTarget, plan *ChannelPlan) error {
	channelID := plan.Channel.DiscordChannelID

	current, err := s.platform.ListChannelOverwriteTargets(ctx, channelID)
	if err != nil {
		return fmt.Errorf("failed to list overwrites of channel %s: %w", plan.Channel.Name, err)
	}
	stale := make(map[providers.OverwriteTarget]struct{}, len(current))
	for _, target := range current {
		stale[target] = struct{}{}
	}

	// the default role never sees a game channel, whatever the rules say
	defaultPerms := providers.PermissionSet{}
	for name, value := range plan.Overwrites[defaultTarget] {
		defaultPerms[name] = value
	}
	defaultPerms[constants.PermissionReadMessages] = false

	if err := s.setOverwrite(ctx, channelID, defaultTarget, defaultPerms); err != nil {
		return fmt.Errorf("failed to hide channel %s from the default role: %w", plan.Channel.Name, err)
	}
	delete(stale, defaultTarget)

	for _, target := range plan.Targets {
		if target == defaultTarget {
			continue
		}
		if err := s.setOverwrite(ctx, channelID, target, plan.Overwrites[target]); err != nil {
			return fmt.Errorf("failed to set overwrite for %s on channel %s: %w", target, plan.Channel.Name, err)
		}
		delete(stale, target)
	}

	leftovers := make([]providers.OverwriteTarget, 0, len(stale))
	for target := range stale {
		leftovers = append(leftovers, target)
	}
	sort.Slice(leftovers, func(i, j int) bool { return leftovers[i].String() < leftovers[j].String() })

	for _, target := range leftovers {
		if err := s.platform.ClearChannelOverwrite(ctx, channelID, target); err != nil {
			return fmt.Errorf("failed to clear overwrite for %s on channel %s: %w", target, plan.Channel.Name, err)
		}
		if s.metrics != nil {
			s.metrics.OverwritesClearedTotal.Inc()
		}
	}
	return nil
}

func (s *PermissionService) setOverwrite(ctx context.Context, channelID string, target providers.OverwriteTarget, perms providers.PermissionSet) error {
	if err := s.platform.SetChannelOverwrite(ctx, channelID, target, perms); err != nil {
		return err
	}
	if s.metrics != nil {
		s.metrics.OverwritesSetTotal.Inc()
	}
	return nil
}

func (s *PermissionService) observe(start time.Time, err error) {
	if s.metrics == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	s.metrics.ReconcileRunsTotal.WithLabelValues(result).Inc()
	s.metrics.ReconcileDuration.Observe(time.Since(start).Seconds())
}
