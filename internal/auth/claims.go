package auth

import (
	"github.com/golang-jwt/jwt/v5"

	"infinite-experiment/werewolf/internal/constants"
)

// UserClaims is what every authenticated request carries, whichever way the
// gateway authenticated.
type UserClaims interface {
	UserID() string
	GuildID() string
	Source() constants.RequestSource
	IsModerator() bool
}

// GatewayClaims is the payload of a gateway-signed bearer token.
type GatewayClaims struct {
	GuildIDValue string `json:"guild_id"`
	UserIDValue  string `json:"user_id"`
	Moderator    bool   `json:"moderator"`
	jwt.RegisteredClaims
}

func (c *GatewayClaims) UserID() string                  { return c.UserIDValue }
func (c *GatewayClaims) GuildID() string                 { return c.GuildIDValue }
func (c *GatewayClaims) Source() constants.RequestSource { return constants.RequestSourceGateway }
func (c *GatewayClaims) IsModerator() bool               { return c.Moderator }

// APIKeyClaims are built from headers when the gateway authenticates with an API key.
type APIKeyClaims struct {
	DiscordUserID   string
	DiscordGuildID  string
	ModeratorMember bool
}

func (c *APIKeyClaims) UserID() string                  { return c.DiscordUserID }
func (c *APIKeyClaims) GuildID() string                 { return c.DiscordGuildID }
func (c *APIKeyClaims) Source() constants.RequestSource { return constants.RequestSourceAPI }
func (c *APIKeyClaims) IsModerator() bool               { return c.ModeratorMember }
