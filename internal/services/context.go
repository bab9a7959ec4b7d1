package services

// CommandContext identifies who invoked a command and where.
// It is built per request and passed explicitly to every operation.
type CommandContext struct {
	GuildID     string
	ActorID     string
	CategoryID  string
	ChannelID   string
	ChannelName string
}
