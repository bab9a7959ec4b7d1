package providers

import (
	"context"
	"fmt"
)

// TargetKind distinguishes role overwrites from member overwrites
type TargetKind string

const (
	TargetRole   TargetKind = "role"
	TargetMember TargetKind = "member"
)

// OverwriteTarget is a role or member a channel permission overwrite is attached to.
type OverwriteTarget struct {
	Kind TargetKind
	ID   string
}

func (t OverwriteTarget) String() string {
	return fmt.Sprintf("%s:%s", t.Kind, t.ID)
}

func RoleTarget(id string) OverwriteTarget   { return OverwriteTarget{Kind: TargetRole, ID: id} }
func MemberTarget(id string) OverwriteTarget { return OverwriteTarget{Kind: TargetMember, ID: id} }

// PermissionSet maps permission names (read_messages, send_messages, ...) to allow/deny.
// Names absent from the set are left neutral.
type PermissionSet map[string]bool

// ChannelSpec describes a channel to create inside a game category.
type ChannelSpec struct {
	Name       string
	Kind       string
	Topic      string
	Order      int
	CategoryID string
}

// ChatPlatform is every capability the game services need from the chat server
type ChatPlatform interface {
	// DefaultRole is the built-in role every member holds (Discord's @everyone).
	DefaultRole(guildID string) OverwriteTarget

	CreateCategory(ctx context.Context, guildID, name string, overwrites map[OverwriteTarget]PermissionSet) (string, error)
	CreateChannel(ctx context.Context, guildID string, spec ChannelSpec) (string, error)
	DeleteChannel(ctx context.Context, channelID string) error
	FindChannelByName(ctx context.Context, guildID, name string) (string, error)

	CreateRole(ctx context.Context, guildID, name string) (string, error)
	DeleteRole(ctx context.Context, guildID, roleID string) error
	AddMemberRole(ctx context.Context, guildID, userID, roleID string) error
	RemoveMemberRole(ctx context.Context, guildID, userID, roleID string) error
	FindMemberByTag(ctx context.Context, guildID, tag string) (string, error)

	SetChannelOverwrite(ctx context.Context, channelID string, target OverwriteTarget, perms PermissionSet) error
	ClearChannelOverwrite(ctx context.Context, channelID string, target OverwriteTarget) error
	ListChannelOverwriteTargets(ctx context.Context, channelID string) ([]OverwriteTarget, error)

	SendMessage(ctx context.Context, channelID, text string) (string, error)
	AddReaction(ctx context.Context, channelID, messageID, emoji string) error
}

// Pinger is implemented by platforms that can report whether they are reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ProviderError is returned for every failed chat platform call
type ProviderError struct {
	Code       string
	Message    string
	Details    string
	StatusCode int
	Err        error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}
