package services

import "fmt"

// RejectReason names why a command was refused without touching any state.
type RejectReason string

const (
	ReasonNoGame        RejectReason = "no_game"
	ReasonWrongStatus   RejectReason = "wrong_status"
	ReasonWrongChannel  RejectReason = "wrong_channel"
	ReasonInvalidInput  RejectReason = "invalid_input"
	ReasonNotFound      RejectReason = "not_found"
	ReasonConflict      RejectReason = "conflict"
	ReasonCountMismatch RejectReason = "count_mismatch"
	ReasonIgnored       RejectReason = "ignored"
)

// Outcome is the result of a command that did not fail outright.
// A rejected outcome guarantees nothing was mutated.
type Outcome struct {
	Rejected bool
	Reason   RejectReason
	Message  string
	GameID   int64
	Data     any
}

func accepted(gameID int64, format string, args ...any) Outcome {
	return Outcome{GameID: gameID, Message: fmt.Sprintf(format, args...)}
}

func rejected(reason RejectReason, format string, args ...any) Outcome {
	return Outcome{Rejected: true, Reason: reason, Message: fmt.Sprintf(format, args...)}
}
