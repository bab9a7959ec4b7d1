package providers

import (
	"sort"
	"strings"

	"github.com/bwmarrin/discordgo"

	"infinite-experiment/werewolf/internal/constants"
)

// permissionAliases folds the current Discord names onto the names rules are written with.
var permissionAliases = map[string]string{
	constants.PermissionViewChannel: constants.PermissionReadMessages,
	"use_external_emojis":           "external_emojis",
	"manage_permissions":            "manage_roles",
	"manage_server":                 "manage_guild",
	"use_slash_commands":            "use_application_commands",
}

// discordPermissionBits maps canonical rule permission names to Discord bit flags.
var discordPermissionBits = map[string]int64{
	"create_instant_invite":    discordgo.PermissionCreateInstantInvite,
	"kick_members":             discordgo.PermissionKickMembers,
	"ban_members":              discordgo.PermissionBanMembers,
	"administrator":            discordgo.PermissionAdministrator,
	"manage_channels":          discordgo.PermissionManageChannels,
	"manage_guild":             discordgo.PermissionManageServer,
	"add_reactions":            discordgo.PermissionAddReactions,
	"view_audit_log":           discordgo.PermissionViewAuditLogs,
	"priority_speaker":         discordgo.PermissionVoicePrioritySpeaker,
	"stream":                   discordgo.PermissionVoiceStreamVideo,
	"read_messages":            discordgo.PermissionViewChannel,
	"send_messages":            discordgo.PermissionSendMessages,
	"send_tts_messages":        discordgo.PermissionSendTTSMessages,
	"manage_messages":          discordgo.PermissionManageMessages,
	"embed_links":              discordgo.PermissionEmbedLinks,
	"attach_files":             discordgo.PermissionAttachFiles,
	"read_message_history":     discordgo.PermissionReadMessageHistory,
	"mention_everyone":         discordgo.PermissionMentionEveryone,
	"external_emojis":          discordgo.PermissionUseExternalEmojis,
	"view_guild_insights":      discordgo.PermissionViewGuildInsights,
	"connect":                  discordgo.PermissionVoiceConnect,
	"speak":                    discordgo.PermissionVoiceSpeak,
	"mute_members":             discordgo.PermissionVoiceMuteMembers,
	"deafen_members":           discordgo.PermissionVoiceDeafenMembers,
	"move_members":             discordgo.PermissionVoiceMoveMembers,
	"use_voice_activation":     discordgo.PermissionVoiceUseVAD,
	"change_nickname":          discordgo.PermissionChangeNickname,
	"manage_nicknames":         discordgo.PermissionManageNicknames,
	"manage_roles":             discordgo.PermissionManageRoles,
	"manage_webhooks":          discordgo.PermissionManageWebhooks,
	"manage_emojis":            discordgo.PermissionManageEmojis,
	"use_application_commands": discordgo.PermissionUseSlashCommands,
	"request_to_speak":         discordgo.PermissionVoiceRequestToSpeak,
	"manage_events":            discordgo.PermissionManageEvents,
	"manage_threads":           discordgo.PermissionManageThreads,
	"create_public_threads":    discordgo.PermissionCreatePublicThreads,
	"create_private_threads":   discordgo.PermissionCreatePrivateThreads,
	"send_messages_in_threads": discordgo.PermissionSendMessagesInThreads,
}

// CanonicalPermission lowercases a permission name and resolves aliases, so
// view_channel and read_messages end up as the same key.
func CanonicalPermission(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if canonical, ok := permissionAliases[name]; ok {
		return canonical
	}
	return name
}

// PermissionBits converts a permission set into Discord allow/deny bitfields.
// Two names resolving to the same permission with different values are rejected.
func PermissionBits(perms PermissionSet) (allow int64, deny int64, err error) {
	names := make([]string, 0, len(perms))
	for name := range perms {
		names = append(names, name)
	}
	sort.Strings(names)

	seen := make(map[string]string, len(names))
	for _, name := range names {
		canonical := CanonicalPermission(name)
		bit, ok := discordPermissionBits[canonical]
		if !ok {
			return 0, 0, &ProviderError{
				Code:    constants.ErrCodeUnknownPermission,
				Message: "unknown permission " + name,
			}
		}
		if prev, dup := seen[canonical]; dup && perms[prev] != perms[name] {
			return 0, 0, &ProviderError{
				Code:    constants.ErrCodeInvalidDataFormat,
				Message: "conflicting values for " + prev + " and " + name,
			}
		}
		seen[canonical] = name

		if perms[name] {
			allow |= bit
		} else {
			deny |= bit
		}
	}
	return allow, deny, nil
}
