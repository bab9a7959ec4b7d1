package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"infinite-experiment/werewolf/internal/common"
	"infinite-experiment/werewolf/internal/config"
	"infinite-experiment/werewolf/internal/constants"
	"infinite-experiment/werewolf/internal/db/repositories"
	"infinite-experiment/werewolf/internal/logging"
	"infinite-experiment/werewolf/internal/models/dtos"
	models "infinite-experiment/werewolf/internal/models/gorm"
	"infinite-experiment/werewolf/internal/providers"
)

const dateLayout = "2006-01-02"

// GameService sequences provisioning, the status machine and character assignment.
type GameService struct {
	gameGuard
	platform    providers.ChatPlatform
	catalog     *CatalogService
	permissions *PermissionService
	shuffler    *Shuffler
	now         func() time.Time
}

func NewGameService(
	platform providers.ChatPlatform,
	store *repositories.Store,
	catalog *CatalogService,
	permissions *PermissionService,
	locker common.GameLocker,
	shuffler *Shuffler,
	cfg config.GameConfig,
) *GameService {
	return &GameService{
		gameGuard:   gameGuard{store: store, locker: locker, cfg: cfg},
		platform:    platform,
		catalog:     catalog,
		permissions: permissions,
		shuffler:    shuffler,
		now:         time.Now,
	}
}

// cleanupTimeout bounds the platform calls that undo a failed create.
const cleanupTimeout = 30 * time.Second

// ============================================================================
// Create / Remove
// ============================================================================

// Create provisions a new game: category, roles, channels and the signup announcement,
// then opens it for recruiting.
func (s *GameService) Create(ctx context.Context, cc CommandContext, req dtos.CreateGameRequest) (Outcome, error) {
	name := strings.ToUpper(strings.TrimSpace(req.Name))
	if name == "" {
		name = strings.ToUpper(s.cfg.DefaultGameName)
	}

	today := truncateDay(s.now())
	startDate := today.AddDate(0, 0, 1)
	if raw := strings.TrimSpace(req.StartDate); raw != "" {
		parsed, ok := parseStartDate(raw)
		if !ok {
			return rejected(ReasonInvalidInput, constants.MsgBadDate, raw), nil
		}
		startDate = parsed
	}
	if startDate.Before(today) {
		return rejected(ReasonInvalidInput, constants.MsgDateInPast, startDate.Format(dateLayout)), nil
	}
	if startDate.After(today.AddDate(0, 0, s.cfg.MaxStartDaysAhead)) {
		return rejected(ReasonInvalidInput, constants.MsgDateTooFar, s.cfg.MaxStartDaysAhead, startDate.Format(dateLayout)), nil
	}

	// creates in one guild run one at a time so two cannot both pass the name check
	unlockGuild, err := s.locker.Lock(ctx, guildLockKey(cc.GuildID))
	if err != nil {
		return Outcome{}, err
	}
	defer unlockGuild()

	inUse, err := s.store.Games.NameInUse(ctx, cc.GuildID, name)
	if err != nil {
		return Outcome{}, err
	}
	if inUse {
		return rejected(ReasonConflict, constants.MsgGameExists, name), nil
	}

	announceChannelID, err := s.platform.FindChannelByName(ctx, cc.GuildID, s.cfg.AnnouncementChannel)
	if err != nil {
		return Outcome{}, fmt.Errorf("failed to look up announcement channel: %w", err)
	}
	if announceChannelID == "" {
		return rejected(ReasonNotFound, constants.MsgNoAnnouncement, s.cfg.AnnouncementChannel), nil
	}

	logging.Info("creating game", "guild_id", cc.GuildID, "actor_id", cc.ActorID, "name", name)

	hidden := map[providers.OverwriteTarget]providers.PermissionSet{
		s.platform.DefaultRole(cc.GuildID): {constants.PermissionReadMessages: false},
	}
	categoryID, err := s.platform.CreateCategory(ctx, cc.GuildID, name, hidden)
	if err != nil {
		return Outcome{}, fmt.Errorf("failed to create category %s: %w", name, err)
	}

	dateText := startDate.Format(dateLayout)
	text := fmt.Sprintf(constants.MsgAnnouncement, name, dateText, s.cfg.ReactionEmoji, dateText)
	messageID, err := s.platform.SendMessage(ctx, announceChannelID, text)
	if err != nil {
		s.dropCategory(cc.GuildID, categoryID)
		return Outcome{}, fmt.Errorf("failed to post announcement: %w", err)
	}
	if err := s.platform.AddReaction(ctx, announceChannelID, messageID, s.cfg.ReactionEmoji); err != nil {
		s.dropCategory(cc.GuildID, categoryID)
		return Outcome{}, fmt.Errorf("failed to react to announcement: %w", err)
	}

	game := &models.Game{
		GuildID:           cc.GuildID,
		CategoryID:        categoryID,
		AnnounceChannelID: announceChannelID,
		AnnounceMessageID: messageID,
		Name:              name,
		StartDate:         &startDate,
		Status:            constants.StatusCreating,
	}
	if err := s.store.Games.Create(ctx, game); err != nil {
		s.dropCategory(cc.GuildID, categoryID)
		return Outcome{}, err
	}

	unlock, err := s.locker.Lock(ctx, strconv.FormatInt(game.ID, 10))
	if err != nil {
		s.abandon(game, err)
		return Outcome{}, err
	}
	defer unlock()

	if err := s.provision(ctx, game); err != nil {
		s.abandon(game, err)
		return Outcome{}, err
	}

	logging.WithGame(game.ID, cc.GuildID, cc.ActorID).Infow("game created", "name", name)
	return accepted(game.ID, constants.MsgGameCreated, name), nil
}

func guildLockKey(guildID string) string {
	return "guild:" + guildID
}

// provision creates the roles and channels of a freshly inserted game and opens it for recruiting.
func (s *GameService) provision(ctx context.Context, game *models.Game) error {
	if err := s.provisionRoles(ctx, game); err != nil {
		return err
	}
	if err := s.provisionChannels(ctx, game); err != nil {
		return err
	}
	if err := s.store.Games.UpdateStatus(ctx, game.ID, constants.StatusRecruiting); err != nil {
		return err
	}
	return s.permissions.Reconcile(ctx, game.ID, constants.PhaseDay, constants.StatusRecruiting)
}

// abandon undoes a half-provisioned game and marks it removed so its name is free again.
// Cleanup uses a fresh context; the request context may already be done.
func (s *GameService) abandon(game *models.Game, cause error) {
	ctx, cancel := context.WithTimeout(context.Background(), cleanupTimeout)
	defer cancel()

	log := logging.WithGame(game.ID, game.GuildID, "")
	if err := s.teardown(ctx, game); err != nil {
		log.Warnw("failed to clean up after failed game creation", "error", err)
	}
	if err := s.store.Games.UpdateStatus(ctx, game.ID, constants.StatusRemoved); err != nil {
		log.Errorw("failed to mark abandoned game removed", "error", err)
		return
	}
	log.Warnw("game creation failed, game marked removed", "name", game.Name, "error", cause)
}

// dropCategory deletes a category created before the game row existed.
func (s *GameService) dropCategory(guildID, categoryID string) {
	ctx, cancel := context.WithTimeout(context.Background(), cleanupTimeout)
	defer cancel()

	if err := ignoreMissing(s.platform.DeleteChannel(ctx, categoryID)); err != nil {
		logging.Warn("failed to delete category of failed game", "guild_id", guildID, "category_id", categoryID, "error", err)
	}
}

// provisionRoles creates one platform role per template. The everyone template maps to
// the platform's built-in default role and is never created.
func (s *GameService) provisionRoles(ctx context.Context, game *models.Game) error {
	templates, err := s.catalog.RoleTemplates(ctx)
	if err != nil {
		return err
	}

	for _, tmpl := range templates {
		if tmpl.DefaultValue == constants.RoleDefaultEveryone {
			continue
		}
		roleName := fmt.Sprintf("%s-%s", game.Name, tmpl.Name)
		roleID, err := s.platform.CreateRole(ctx, game.GuildID, roleName)
		if err != nil {
			return fmt.Errorf("failed to create role %s: %w", roleName, err)
		}
		gameRole := &models.GameRole{
			GameID:        game.ID,
			RoleID:        tmpl.ID,
			DiscordRoleID: roleID,
			Name:          roleName,
		}
		if err := s.store.Roles.CreateGameRole(ctx, gameRole); err != nil {
			return err
		}
	}
	return nil
}

func (s *GameService) provisionChannels(ctx context.Context, game *models.Game) error {
	templates, err := s.catalog.ChannelTemplates(ctx)
	if err != nil {
		return err
	}

	for _, tmpl := range templates {
		channelID, err := s.platform.CreateChannel(ctx, game.GuildID, providers.ChannelSpec{
			Name:       tmpl.Name,
			Kind:       tmpl.Kind,
			Topic:      tmpl.Topic,
			Order:      tmpl.Order,
			CategoryID: game.CategoryID,
		})
		if err != nil {
			return fmt.Errorf("failed to create channel %s: %w", tmpl.Name, err)
		}
		gameChannel := &models.GameChannel{
			GameID:           game.ID,
			ChannelID:        tmpl.ID,
			DiscordChannelID: channelID,
			Name:             tmpl.Name,
		}
		if err := s.store.Channels.CreateGameChannel(ctx, gameChannel); err != nil {
			return err
		}
	}
	return nil
}

// Remove deletes every platform resource of the game and marks it removed.
func (s *GameService) Remove(ctx context.Context, cc CommandContext) (Outcome, error) {
	return s.locked(ctx, cc, anyStatus, func(ctx context.Context, game *models.Game) (Outcome, error) {
		if err := s.teardown(ctx, game); err != nil {
			return Outcome{}, err
		}
		if err := s.store.Games.UpdateStatus(ctx, game.ID, constants.StatusRemoved); err != nil {
			return Outcome{}, err
		}

		logging.WithGame(game.ID, game.GuildID, cc.ActorID).Infow("game removed")
		return accepted(game.ID, constants.MsgGameRemoved, game.Name), nil
	})
}

// teardown deletes the category, channels and roles of a game, on the platform and in the store.
func (s *GameService) teardown(ctx context.Context, game *models.Game) error {
	channels, err := s.store.Channels.ListGameChannels(ctx, game.ID)
	if err != nil {
		return err
	}
	for _, ch := range channels {
		if err := ignoreMissing(s.platform.DeleteChannel(ctx, ch.DiscordChannelID)); err != nil {
			return fmt.Errorf("failed to delete channel %s: %w", ch.Name, err)
		}
	}
	if err := ignoreMissing(s.platform.DeleteChannel(ctx, game.CategoryID)); err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}

	roles, err := s.store.Roles.ListGameRoles(ctx, game.ID)
	if err != nil {
		return err
	}
	for _, role := range roles {
		if err := ignoreMissing(s.platform.DeleteRole(ctx, game.GuildID, role.DiscordRoleID)); err != nil {
			return fmt.Errorf("failed to delete role %s: %w", role.Name, err)
		}
	}

	if err := s.store.Channels.DeleteGameChannels(ctx, game.ID); err != nil {
		return err
	}
	return s.store.Roles.DeleteGameRoles(ctx, game.ID)
}

// ============================================================================
// Start / character assignment
// ============================================================================

// Start draws characters for a recruiting game and activates it.
func (s *GameService) Start(ctx context.Context, cc CommandContext, scenarioName string) (Outcome, error) {
	return s.locked(ctx, cc, constants.StatusRecruiting, func(ctx context.Context, game *models.Game) (Outcome, error) {
		players, entries, out, err := s.loadAssignment(ctx, game, scenarioName)
		if err != nil || out != nil {
			return deref(out), err
		}

		if err := s.store.Games.UpdateStatus(ctx, game.ID, constants.StatusInitializing); err != nil {
			return Outcome{}, err
		}
		if _, err := s.assign(ctx, players, entries); err != nil {
			return Outcome{}, err
		}
		if err := s.permissions.Reconcile(ctx, game.ID, constants.PhaseDay, constants.StatusActive); err != nil {
			return Outcome{}, err
		}

		table, _, err := s.playerStatusTable(ctx, game.ID)
		if err != nil {
			return Outcome{}, err
		}
		playerChannel, err := s.store.Channels.FindGameChannelByName(ctx, game.ID, s.cfg.PlayerChannel)
		switch {
		case errors.Is(err, repositories.ErrNotFound):
			logging.Warn("game has no player channel, skipping status post", "game_id", game.ID)
		case err != nil:
			return Outcome{}, err
		default:
			if _, err := s.platform.SendMessage(ctx, playerChannel.DiscordChannelID, table); err != nil {
				return Outcome{}, fmt.Errorf("failed to post player status: %w", err)
			}
		}

		if err := s.store.Games.MarkActive(ctx, game.ID, len(players)); err != nil {
			return Outcome{}, err
		}

		logging.WithGame(game.ID, game.GuildID, cc.ActorID).Infow("game started", "players", len(players))
		return accepted(game.ID, constants.MsgGameStarted, game.Name, len(players)), nil
	})
}

// AssignCharacters redraws characters for a game stuck in initializing.
func (s *GameService) AssignCharacters(ctx context.Context, cc CommandContext, scenarioName string) (Outcome, error) {
	return s.locked(ctx, cc, constants.StatusInitializing, func(ctx context.Context, game *models.Game) (Outcome, error) {
		players, entries, out, err := s.loadAssignment(ctx, game, scenarioName)
		if err != nil || out != nil {
			return deref(out), err
		}

		drawn, err := s.assign(ctx, players, entries)
		if err != nil {
			return Outcome{}, err
		}
		if err := s.permissions.Reconcile(ctx, game.ID, constants.PhaseDay, constants.StatusInitializing); err != nil {
			return Outcome{}, err
		}

		rows := make([][]string, 0, len(players))
		for i, p := range players {
			rows = append(rows, []string{common.Mention(p.DiscordUserID), drawn[i].DisplayName})
		}
		table := common.RenderTable([]string{"User", "Role Assigned"}, rows)
		return accepted(game.ID, "you have %d players and %d characters\n%s", len(players), len(entries), table), nil
	})
}

// loadAssignment fetches the roster and the scenario entries, rejecting when their
// counts differ or the game has no players.
func (s *GameService) loadAssignment(ctx context.Context, game *models.Game, scenarioName string) ([]models.GamePlayer, []models.ScenarioCharacter, *Outcome, error) {
	name := normalizeScenarioName(scenarioName, s.cfg.DefaultScenario)
	scenario, err := s.store.Scenarios.FindAvailable(ctx, name, &game.ID)
	if errors.Is(err, repositories.ErrNotFound) {
		out := rejected(ReasonNotFound, constants.MsgNoScenario)
		return nil, nil, &out, nil
	}
	if err != nil {
		return nil, nil, nil, err
	}

	entries, err := s.store.Scenarios.ListCharacters(ctx, scenario.ID)
	if err != nil {
		return nil, nil, nil, err
	}
	players, err := s.store.Players.ListByGame(ctx, game.ID)
	if err != nil {
		return nil, nil, nil, err
	}

	if len(players) != len(entries) || len(players) == 0 {
		out := rejected(ReasonCountMismatch, constants.MsgCountMismatch, len(players), len(entries))
		return nil, nil, &out, nil
	}
	return players, entries, nil, nil
}

// assign draws the scenario's characters in random order, zips them with the players in
// roster order and gives every player a random table position.
func (s *GameService) assign(ctx context.Context, players []models.GamePlayer, entries []models.ScenarioCharacter) ([]models.Character, error) {
	drawn := make([]models.Character, len(entries))
	for i, e := range entries {
		drawn[i] = e.Character
	}
	s.shuffler.Shuffle(len(drawn), func(i, j int) { drawn[i], drawn[j] = drawn[j], drawn[i] })
	positions := s.shuffler.Positions(len(players))

	for i, p := range players {
		if err := s.store.Players.Assign(ctx, p.ID, &drawn[i], positions[i]); err != nil {
			return nil, err
		}
	}
	return drawn, nil
}

// ============================================================================
// Phase / status
// ============================================================================

func (s *GameService) SetPhase(ctx context.Context, cc CommandContext, rawPhase string) (Outcome, error) {
	phase, err := constants.ParsePhase(strings.ToLower(strings.TrimSpace(rawPhase)))
	if err != nil {
		return rejected(ReasonInvalidInput, constants.MsgInvalidPhase), nil
	}

	return s.locked(ctx, cc, constants.StatusActive, func(ctx context.Context, game *models.Game) (Outcome, error) {
		if err := s.permissions.Reconcile(ctx, game.ID, phase, constants.StatusActive); err != nil {
			return Outcome{}, err
		}
		logging.WithGame(game.ID, game.GuildID, cc.ActorID).Infow("phase changed", "phase", phase)
		return accepted(game.ID, constants.MsgPhaseChanged, game.Name, phase), nil
	})
}

func (s *GameService) Complete(ctx context.Context, cc CommandContext) (Outcome, error) {
	return s.locked(ctx, cc, constants.StatusActive, func(ctx context.Context, game *models.Game) (Outcome, error) {
		if err := s.permissions.Reconcile(ctx, game.ID, constants.PhaseDay, constants.StatusCompleted); err != nil {
			return Outcome{}, err
		}
		if err := s.store.Games.MarkEnded(ctx, game.ID, constants.StatusCompleted, truncateDay(s.now())); err != nil {
			return Outcome{}, err
		}
		logging.WithGame(game.ID, game.GuildID, cc.ActorID).Infow("game completed")
		return accepted(game.ID, constants.MsgGameCompleted, game.Name), nil
	})
}

// SetStatus is the moderator override that moves a game to a later stage.
// It never moves backwards and never removes; game-remove does that.
func (s *GameService) SetStatus(ctx context.Context, cc CommandContext, rawStatus string) (Outcome, error) {
	raw := strings.ToLower(strings.TrimSpace(rawStatus))
	target, err := constants.ParseGameStatus(raw)
	if err != nil {
		return rejected(ReasonInvalidInput, constants.MsgInvalidStatus, raw), nil
	}

	return s.locked(ctx, cc, anyStatus, func(ctx context.Context, game *models.Game) (Outcome, error) {
		if target == constants.StatusRemoved || !game.Status.Precedes(target) {
			return rejected(ReasonWrongStatus, constants.MsgStatusNotForward, game.Status), nil
		}

		if err := s.permissions.Reconcile(ctx, game.ID, constants.PhaseDay, target); err != nil {
			return Outcome{}, err
		}
		if target == constants.StatusCompleted {
			err = s.store.Games.MarkEnded(ctx, game.ID, target, truncateDay(s.now()))
		} else {
			err = s.store.Games.UpdateStatus(ctx, game.ID, target)
		}
		if err != nil {
			return Outcome{}, err
		}

		logging.WithGame(game.ID, game.GuildID, cc.ActorID).Infow("status overridden", "from", game.Status, "to", target)
		return accepted(game.ID, constants.MsgStatusChanged, target), nil
	})
}

// ============================================================================
// Reports
// ============================================================================

func (s *GameService) Info(ctx context.Context, cc CommandContext) (Outcome, error) {
	game, out, err := s.resolve(ctx, cc, anyStatus)
	if err != nil || out != nil {
		return deref(out), err
	}

	players, err := s.store.Players.CountByGame(ctx, game.ID)
	if err != nil {
		return Outcome{}, err
	}

	info := dtos.GameInfo{
		GameID:          game.ID,
		Name:            game.Name,
		Status:          game.Status.String(),
		Phase:           game.PhaseOrEmpty(),
		EndDate:         game.EndDate,
		NumberOfPlayers: players,
	}
	startText := ""
	if game.StartDate != nil {
		info.StartDate = *game.StartDate
		startText = game.StartDate.Format(dateLayout)
	}

	table := common.RenderTable(
		[]string{"ID", "Name", "Status", "Phase", "Start Date", "Players"},
		[][]string{{strconv.FormatInt(game.ID, 10), game.Name, info.Status, info.Phase, startText, strconv.Itoa(players)}},
	)
	result := accepted(game.ID, "%s", table)
	result.Data = info
	return result, nil
}

func (s *GameService) PlayerStatus(ctx context.Context, cc CommandContext) (Outcome, error) {
	game, out, err := s.resolve(ctx, cc, anyStatus)
	if err != nil || out != nil {
		return deref(out), err
	}

	table, statuses, err := s.playerStatusTable(ctx, game.ID)
	if err != nil {
		return Outcome{}, err
	}
	result := accepted(game.ID, "%s", table)
	result.Data = statuses
	return result, nil
}

// playerStatusTable lists players by table position; unassigned players come last.
func (s *GameService) playerStatusTable(ctx context.Context, gameID int64) (string, []dtos.PlayerStatus, error) {
	players, err := s.store.Players.ListByGame(ctx, gameID)
	if err != nil {
		return "", nil, err
	}

	sort.SliceStable(players, func(i, j int) bool {
		pi, pj := players[i].Position, players[j].Position
		if pi == nil || pj == nil {
			return pi != nil && pj == nil
		}
		return *pi < *pj
	})

	statuses := make([]dtos.PlayerStatus, 0, len(players))
	rows := make([][]string, 0, len(players))
	for _, p := range players {
		position := ""
		status := dtos.PlayerStatus{DiscordUserID: p.DiscordUserID, Vitals: p.Vitals.String()}
		if p.Position != nil {
			status.Position = *p.Position
			position = strconv.Itoa(*p.Position)
		}
		statuses = append(statuses, status)
		rows = append(rows, []string{position, common.Mention(p.DiscordUserID), p.Vitals.String()})
	}

	return common.RenderTable([]string{"Virtual Position", "User", "Status"}, rows), statuses, nil
}

// ============================================================================
// Helpers
// ============================================================================

// parseStartDate accepts YYYY-MM-DD and YY-MM-DD.
func parseStartDate(raw string) (time.Time, bool) {
	for _, layout := range []string{dateLayout, "06-01-02"} {
		if t, err := time.ParseInLocation(layout, raw, time.UTC); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func normalizeScenarioName(raw, fallback string) string {
	name := strings.ToLower(strings.TrimSpace(raw))
	if name == "" {
		name = fallback
	}
	return strings.ReplaceAll(name, " ", "-")
}

// ignoreMissing treats resources already deleted on the platform as success.
func ignoreMissing(err error) error {
	var perr *providers.ProviderError
	if errors.As(err, &perr) && perr.Code == constants.ErrCodeResourceNotFound {
		return nil
	}
	return err
}
