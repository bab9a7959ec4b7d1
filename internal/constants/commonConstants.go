package constants

type (
	RequestSource string
	APIStatus     string
	CachePrefix   string
)

const (
	RequestSourceAPI     RequestSource = "API"
	RequestSourceGateway RequestSource = "GATEWAY"

	APIStatusOk       APIStatus = "ok"
	APIStatusError    APIStatus = "error"
	APIStatusRejected APIStatus = "rejected"

	CachePrefixChannelTemplates CachePrefix = "CATALOG_CHANNELS"
	CachePrefixRoleTemplates    CachePrefix = "CATALOG_ROLES"
	CachePrefixCharacters       CachePrefix = "CATALOG_CHARACTERS"
	CachePrefixGameLock         CachePrefix = "LOCK_GAME_"
)

// Stream and consumer group used for reaction events coming from the gateway.
const (
	ReactionStream        = "werewolf:reactions"
	ReactionConsumerGroup = "werewolf-signup"
)

// Permission names every overwrite understands. Rules may carry any name the
// platform provider knows how to translate.
const (
	PermissionReadMessages = "read_messages"
	PermissionViewChannel  = "view_channel"
)

// MaxCharacterRepeat bounds the "name|N" count a single character list entry may ask for.
const MaxCharacterRepeat = 50

// Headers the chat gateway sets on every command request.
const (
	HeaderAPIKey      = "X-API-Key"
	HeaderRequestID   = "X-Request-ID"
	HeaderGuildID     = "X-Guild-Id"
	HeaderUserID      = "X-Discord-Id"
	HeaderModerator   = "X-Moderator"
	HeaderChannelID   = "X-Channel-Id"
	HeaderChannelName = "X-Channel-Name"
	HeaderCategoryID  = "X-Category-Id"
)
