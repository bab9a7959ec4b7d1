package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"infinite-experiment/werewolf/internal/constants"
)

var ErrInvalidToken = errors.New("invalid gateway token")

// MakeClaimsFromAPI reads the acting member from the headers the gateway sets next to its API key.
func MakeClaimsFromAPI(r *http.Request) *APIKeyClaims {
	moderator, _ := strconv.ParseBool(r.Header.Get(constants.HeaderModerator))
	return &APIKeyClaims{
		DiscordUserID:   r.Header.Get(constants.HeaderUserID),
		DiscordGuildID:  r.Header.Get(constants.HeaderGuildID),
		ModeratorMember: moderator,
	}
}

// ParseGatewayToken validates an HS256 token signed with secret.
func ParseGatewayToken(secret, token string) (*GatewayClaims, error) {
	if secret == "" {
		return nil, fmt.Errorf("%w: no signing secret configured", ErrInvalidToken)
	}

	claims := &GatewayClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid || claims.UserIDValue == "" || claims.GuildIDValue == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// IssueGatewayToken signs a token for the given member, valid for ttl.
func IssueGatewayToken(secret, guildID, userID string, moderator bool, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &GatewayClaims{
		GuildIDValue: guildID,
		UserIDValue:  userID,
		Moderator:    moderator,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
