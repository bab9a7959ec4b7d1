package dtos

// CreateGameRequest is the body of game-create. Both fields are optional.
type CreateGameRequest struct {
	Name      string `json:"name"`
	StartDate string `json:"start_date"`
}

type PhaseRequest struct {
	Phase string `json:"phase"`
}

type StatusRequest struct {
	Status string `json:"status"`
}

// DeathRequest names the dying player as a mention, a user id or a name#0000 tag.
type DeathRequest struct {
	Target string `json:"target"`
}

type CreateScenarioRequest struct {
	Name  string `json:"name"`
	Scope string `json:"scope"`
}

// ScenarioCharactersRequest carries the "werewolf|2,seer" character list syntax.
type ScenarioCharactersRequest struct {
	Characters string `json:"characters"`
}

// ReactionEvent is a reaction added to or removed from a message, as seen by the gateway.
type ReactionEvent struct {
	GuildID   string `json:"guild_id"`
	ChannelID string `json:"channel_id"`
	MessageID string `json:"message_id"`
	UserID    string `json:"user_id"`
	Emoji     string `json:"emoji"`
	Bot       bool   `json:"bot"`
	Added     bool   `json:"added"`
}

// StartGameRequest names the scenario to draw characters from; empty means the default.
type StartGameRequest struct {
	Scenario string `json:"scenario"`
}
