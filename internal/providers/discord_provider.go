package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"golang.org/x/time/rate"

	"infinite-experiment/werewolf/internal/constants"
)

const discordDefaultHost = "https://discord.com"

// DiscordProvider implements ChatPlatform over a REST-only discordgo session.
type DiscordProvider struct {
	Session *discordgo.Session
	Token   string
	Limiter *rate.Limiter
}

// NewDiscordProvider creates a Discord REST client. Outbound calls are throttled
// below Discord's global limit of 50 requests per second. baseURL, when it names a
// host other than discord.com, receives every request instead (proxies, tests).
func NewDiscordProvider(baseURL, token string) (*DiscordProvider, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}

	transport := http.DefaultTransport
	if baseURL != "" && strings.TrimRight(baseURL, "/") != discordDefaultHost {
		target, err := url.Parse(baseURL)
		if err != nil || target.Host == "" {
			return nil, fmt.Errorf("invalid discord base url %q", baseURL)
		}
		transport = &hostRewrite{target: target, next: http.DefaultTransport}
	}
	session.Client = &http.Client{Timeout: 10 * time.Second, Transport: transport}

	return &DiscordProvider{
		Session: session,
		Token:   token,
		Limiter: rate.NewLimiter(rate.Limit(40), 10),
	}, nil
}

// hostRewrite sends discordgo's requests, which always target discord.com, to another host.
type hostRewrite struct {
	target *url.URL
	next   http.RoundTripper
}

func (h *hostRewrite) RoundTrip(r *http.Request) (*http.Response, error) {
	r = r.Clone(r.Context())
	r.URL.Scheme = h.target.Scheme
	r.URL.Host = h.target.Host
	r.Host = h.target.Host
	return h.next.RoundTrip(r)
}

// DefaultRole is @everyone, whose role id equals the guild id.
func (p *DiscordProvider) DefaultRole(guildID string) OverwriteTarget {
	return RoleTarget(guildID)
}

// Ping checks that the token is accepted by fetching the bot's own user.
func (p *DiscordProvider) Ping(ctx context.Context) error {
	opt, err := p.begin(ctx)
	if err != nil {
		return err
	}
	_, err = p.Session.User("@me", opt)
	return mapDiscordError("GET users/@me", err)
}

// ============================================================================
// Channels
// ============================================================================

func (p *DiscordProvider) CreateCategory(ctx context.Context, guildID, name string, overwrites map[OverwriteTarget]PermissionSet) (string, error) {
	ows := make([]*discordgo.PermissionOverwrite, 0, len(overwrites))
	for target, perms := range overwrites {
		ow, err := toDiscordOverwrite(target, perms)
		if err != nil {
			return "", err
		}
		ows = append(ows, ow)
	}

	opt, err := p.begin(ctx)
	if err != nil {
		return "", err
	}
	created, err := p.Session.GuildChannelCreateComplex(guildID, discordgo.GuildChannelCreateData{
		Name:                 name,
		Type:                 discordgo.ChannelTypeGuildCategory,
		PermissionOverwrites: ows,
	}, opt)
	if err != nil {
		return "", mapDiscordError("create category "+name, err)
	}
	return created.ID, nil
}

func (p *DiscordProvider) CreateChannel(ctx context.Context, guildID string, spec ChannelSpec) (string, error) {
	kind := discordgo.ChannelTypeGuildText
	if spec.Kind == constants.ChannelKindVoice {
		kind = discordgo.ChannelTypeGuildVoice
	}

	opt, err := p.begin(ctx)
	if err != nil {
		return "", err
	}
	created, err := p.Session.GuildChannelCreateComplex(guildID, discordgo.GuildChannelCreateData{
		Name:     spec.Name,
		Type:     kind,
		Topic:    spec.Topic,
		Position: spec.Order,
		ParentID: spec.CategoryID,
	}, opt)
	if err != nil {
		return "", mapDiscordError("create channel "+spec.Name, err)
	}
	return created.ID, nil
}

func (p *DiscordProvider) DeleteChannel(ctx context.Context, channelID string) error {
	opt, err := p.begin(ctx)
	if err != nil {
		return err
	}
	_, err = p.Session.ChannelDelete(channelID, opt)
	return mapDiscordError("delete channel "+channelID, err)
}

// FindChannelByName returns "" when the guild has no channel of that name.
func (p *DiscordProvider) FindChannelByName(ctx context.Context, guildID, name string) (string, error) {
	opt, err := p.begin(ctx)
	if err != nil {
		return "", err
	}
	channels, err := p.Session.GuildChannels(guildID, opt)
	if err != nil {
		return "", mapDiscordError("list channels of guild "+guildID, err)
	}
	for _, ch := range channels {
		if ch.Type != discordgo.ChannelTypeGuildCategory && ch.Name == name {
			return ch.ID, nil
		}
	}
	return "", nil
}

// ============================================================================
// Roles and members
// ============================================================================

func (p *DiscordProvider) CreateRole(ctx context.Context, guildID, name string) (string, error) {
	opt, err := p.begin(ctx)
	if err != nil {
		return "", err
	}
	role, err := p.Session.GuildRoleCreate(guildID, &discordgo.RoleParams{Name: name}, opt)
	if err != nil {
		return "", mapDiscordError("create role "+name, err)
	}
	return role.ID, nil
}

func (p *DiscordProvider) DeleteRole(ctx context.Context, guildID, roleID string) error {
	opt, err := p.begin(ctx)
	if err != nil {
		return err
	}
	return mapDiscordError("delete role "+roleID, p.Session.GuildRoleDelete(guildID, roleID, opt))
}

func (p *DiscordProvider) AddMemberRole(ctx context.Context, guildID, userID, roleID string) error {
	opt, err := p.begin(ctx)
	if err != nil {
		return err
	}
	return mapDiscordError("add role "+roleID, p.Session.GuildMemberRoleAdd(guildID, userID, roleID, opt))
}

func (p *DiscordProvider) RemoveMemberRole(ctx context.Context, guildID, userID, roleID string) error {
	opt, err := p.begin(ctx)
	if err != nil {
		return err
	}
	return mapDiscordError("remove role "+roleID, p.Session.GuildMemberRoleRemove(guildID, userID, roleID, opt))
}

// FindMemberByTag resolves "name#1234" (or a bare name) to a user id, "" if nobody matches.
func (p *DiscordProvider) FindMemberByTag(ctx context.Context, guildID, tag string) (string, error) {
	name, discriminator, _ := strings.Cut(tag, "#")
	if name == "" {
		return "", nil
	}

	opt, err := p.begin(ctx)
	if err != nil {
		return "", err
	}
	members, err := p.Session.GuildMembersSearch(guildID, name, 25, opt)
	if err != nil {
		return "", mapDiscordError("search members of guild "+guildID, err)
	}
	for _, m := range members {
		if m.User == nil || !strings.EqualFold(m.User.Username, name) {
			continue
		}
		if discriminator == "" || discriminator == m.User.Discriminator {
			return m.User.ID, nil
		}
	}
	return "", nil
}

// ============================================================================
// Permission overwrites
// ============================================================================

// SetChannelOverwrite replaces the whole overwrite for target.
func (p *DiscordProvider) SetChannelOverwrite(ctx context.Context, channelID string, target OverwriteTarget, perms PermissionSet) error {
	ow, err := toDiscordOverwrite(target, perms)
	if err != nil {
		return err
	}
	opt, err := p.begin(ctx)
	if err != nil {
		return err
	}
	err = p.Session.ChannelPermissionSet(channelID, ow.ID, ow.Type, ow.Allow, ow.Deny, opt)
	return mapDiscordError(fmt.Sprintf("set overwrite %s on channel %s", target, channelID), err)
}

func (p *DiscordProvider) ClearChannelOverwrite(ctx context.Context, channelID string, target OverwriteTarget) error {
	opt, err := p.begin(ctx)
	if err != nil {
		return err
	}
	err = p.Session.ChannelPermissionDelete(channelID, target.ID, opt)
	return mapDiscordError(fmt.Sprintf("clear overwrite %s on channel %s", target, channelID), err)
}

func (p *DiscordProvider) ListChannelOverwriteTargets(ctx context.Context, channelID string) ([]OverwriteTarget, error) {
	opt, err := p.begin(ctx)
	if err != nil {
		return nil, err
	}
	ch, err := p.Session.Channel(channelID, opt)
	if err != nil {
		return nil, mapDiscordError("get channel "+channelID, err)
	}

	targets := make([]OverwriteTarget, 0, len(ch.PermissionOverwrites))
	for _, ow := range ch.PermissionOverwrites {
		kind := TargetRole
		if ow.Type == discordgo.PermissionOverwriteTypeMember {
			kind = TargetMember
		}
		targets = append(targets, OverwriteTarget{Kind: kind, ID: ow.ID})
	}
	return targets, nil
}

func toDiscordOverwrite(target OverwriteTarget, perms PermissionSet) (*discordgo.PermissionOverwrite, error) {
	allow, deny, err := PermissionBits(perms)
	if err != nil {
		return nil, err
	}
	kind := discordgo.PermissionOverwriteTypeRole
	if target.Kind == TargetMember {
		kind = discordgo.PermissionOverwriteTypeMember
	}
	return &discordgo.PermissionOverwrite{ID: target.ID, Type: kind, Allow: allow, Deny: deny}, nil
}

// ============================================================================
// Messages
// ============================================================================

func (p *DiscordProvider) SendMessage(ctx context.Context, channelID, text string) (string, error) {
	opt, err := p.begin(ctx)
	if err != nil {
		return "", err
	}
	msg, err := p.Session.ChannelMessageSend(channelID, text, opt)
	if err != nil {
		return "", mapDiscordError("send message to channel "+channelID, err)
	}
	return msg.ID, nil
}

func (p *DiscordProvider) AddReaction(ctx context.Context, channelID, messageID, emoji string) error {
	opt, err := p.begin(ctx)
	if err != nil {
		return err
	}
	err = p.Session.MessageReactionAdd(channelID, messageID, emoji, opt)
	return mapDiscordError("react to message "+messageID, err)
}

// ============================================================================
// Request helpers
// ============================================================================

// begin checks the token and waits for the outbound limiter, then returns the
// request option binding the call to ctx.
func (p *DiscordProvider) begin(ctx context.Context) (discordgo.RequestOption, error) {
	if p.Token == "" {
		return nil, &ProviderError{
			Code:    constants.ErrCodeInvalidAPIKey,
			Message: "DISCORD_TOKEN environment variable is not set",
		}
	}

	if p.Limiter != nil {
		if err := p.Limiter.Wait(ctx); err != nil {
			return nil, &ProviderError{
				Code:    constants.ErrCodeRateLimited,
				Message: constants.GetErrorMessage(constants.ErrCodeRateLimited),
				Err:     err,
			}
		}
	}
	return discordgo.WithContext(ctx), nil
}

// mapDiscordError turns a discordgo failure into a ProviderError; nil stays nil.
func mapDiscordError(action string, err error) error {
	if err == nil {
		return nil
	}

	var rateErr *discordgo.RateLimitError
	if errors.As(err, &rateErr) {
		return &ProviderError{
			Code:       constants.ErrCodeRateLimited,
			Message:    constants.GetErrorMessage(constants.ErrCodeRateLimited),
			StatusCode: http.StatusTooManyRequests,
			Err:        err,
		}
	}

	var restErr *discordgo.RESTError
	if !errors.As(err, &restErr) || restErr.Response == nil {
		return &ProviderError{
			Code:    constants.ErrCodeNetworkError,
			Message: constants.GetErrorMessage(constants.ErrCodeNetworkError),
			Err:     err,
		}
	}

	statusCode := restErr.Response.StatusCode
	e := &ProviderError{Details: string(restErr.ResponseBody), StatusCode: statusCode, Err: err}
	switch statusCode {
	case http.StatusUnauthorized:
		e.Code = constants.ErrCodeInvalidAPIKey
		e.Message = fmt.Sprintf("Authentication failed for %s", action)
	case http.StatusForbidden:
		e.Code = constants.ErrCodeMissingPermissions
		e.Message = fmt.Sprintf("Missing permissions for %s", action)
	case http.StatusNotFound:
		e.Code = constants.ErrCodeResourceNotFound
		e.Message = fmt.Sprintf("Resource not found: %s", action)
	case http.StatusTooManyRequests:
		e.Code = constants.ErrCodeRateLimited
		e.Message = constants.GetErrorMessage(constants.ErrCodeRateLimited)
	case http.StatusBadRequest:
		e.Code = constants.ErrCodeInvalidDataFormat
		e.Message = fmt.Sprintf("Bad request to %s", action)
	default:
		e.Code = constants.ErrCodeNetworkError
		e.Message = fmt.Sprintf("HTTP %d from %s", statusCode, action)
	}
	return e
}
