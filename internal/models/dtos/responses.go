package dtos

import "time"

type APIResponse struct {
	Status       string `json:"status"`
	Message      string `json:"message"`
	ResponseTime string `json:"response_time"`
	Data         any    `json:"data,omitempty"`
}

// CommandReply is what the gateway posts back into the invoking channel.
type CommandReply struct {
	Reply  string `json:"reply"`
	Reason string `json:"reason,omitempty"`
	GameID int64  `json:"game_id,omitempty"`
}

type GameInfo struct {
	GameID          int64      `json:"game_id"`
	Name            string     `json:"name"`
	Status          string     `json:"status"`
	Phase           string     `json:"phase,omitempty"`
	StartDate       time.Time  `json:"start_date"`
	EndDate         *time.Time `json:"end_date,omitempty"`
	NumberOfPlayers int        `json:"number_of_players"`
}

type PlayerStatus struct {
	Position      int    `json:"position"`
	DiscordUserID string `json:"discord_user_id"`
	Vitals        string `json:"vitals"`
}

type ScenarioSummary struct {
	ScenarioID     int64  `json:"scenario_id"`
	Name           string `json:"name"`
	Scope          string `json:"scope"`
	CharacterCount int    `json:"character_count"`
	WeightingSum   int    `json:"weighting_sum"`
}

type ScenarioCharacterCount struct {
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	Weighting int    `json:"weighting"`
}
