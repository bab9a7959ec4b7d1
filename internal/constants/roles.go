package constants

import (
	"database/sql/driver"
	"fmt"
)

// GameStatus mirrors the lifecycle stage stored in games.status
type GameStatus string

const (
	StatusCreating     GameStatus = "creating"
	StatusRecruiting   GameStatus = "recruiting"
	StatusInitializing GameStatus = "initializing"
	StatusActive       GameStatus = "active"
	StatusCompleted    GameStatus = "completed"
	StatusRemoved      GameStatus = "removed"
)

var statusRank = map[GameStatus]int{
	StatusCreating:     0,
	StatusRecruiting:   1,
	StatusInitializing: 2,
	StatusActive:       3,
	StatusCompleted:    4,
	StatusRemoved:      5,
}

func (s GameStatus) String() string { return string(s) }

// Valid reports whether s is one of the known statuses.
func (s GameStatus) Valid() bool {
	_, ok := statusRank[s]
	return ok
}

// Precedes reports whether s comes strictly before other in the lifecycle.
func (s GameStatus) Precedes(other GameStatus) bool {
	return statusRank[s] < statusRank[other]
}

// ParseGameStatus converts user input to a GameStatus.
func ParseGameStatus(raw string) (GameStatus, error) {
	s := GameStatus(raw)
	if !s.Valid() {
		return "", fmt.Errorf("%s is not a valid status", raw)
	}
	return s, nil
}

func (s *GameStatus) Scan(src interface{}) error {
	if src == nil {
		*s = ""
		return nil
	}
	switch v := src.(type) {
	case string:
		*s = GameStatus(v)
	case []byte:
		*s = GameStatus(v)
	default:
		return fmt.Errorf("GameStatus: cannot scan type %T", src)
	}
	return nil
}

func (s GameStatus) Value() (driver.Value, error) { return string(s), nil }

// Phase is the day/night cycle of an active game
type Phase string

const (
	PhaseDay   Phase = "day"
	PhaseNight Phase = "night"
)

func (p Phase) String() string { return string(p) }

func ParsePhase(raw string) (Phase, error) {
	switch Phase(raw) {
	case PhaseDay, PhaseNight:
		return Phase(raw), nil
	}
	return "", fmt.Errorf("%s is not a valid phase", raw)
}

func (p *Phase) Scan(src interface{}) error {
	if src == nil {
		*p = ""
		return nil
	}
	switch v := src.(type) {
	case string:
		*p = Phase(v)
	case []byte:
		*p = Phase(v)
	default:
		return fmt.Errorf("Phase: cannot scan type %T", src)
	}
	return nil
}

func (p Phase) Value() (driver.Value, error) { return string(p), nil }

// Vitals is a player's alive/deceased state. It only ever moves alive -> deceased.
type Vitals string

const (
	VitalsAlive    Vitals = "alive"
	VitalsDeceased Vitals = "deceased"
)

func (v Vitals) String() string { return string(v) }

func (v *Vitals) Scan(src interface{}) error {
	if src == nil {
		*v = ""
		return nil
	}
	switch val := src.(type) {
	case string:
		*v = Vitals(val)
	case []byte:
		*v = Vitals(val)
	default:
		return fmt.Errorf("Vitals: cannot scan type %T", src)
	}
	return nil
}

func (v Vitals) Value() (driver.Value, error) { return string(v), nil }

// Role template default_value tags with special meaning.
const (
	RoleDefaultEveryone = "everyone"
	RoleDefaultAlive    = "alive"
	RoleDefaultDeceased = "deceased"
)

// ScenarioScope is where a scenario may be used.
type ScenarioScope string

const (
	ScopeLocal  ScenarioScope = "local"
	ScopeGlobal ScenarioScope = "global"
)

func ParseScope(raw string) (ScenarioScope, error) {
	switch ScenarioScope(raw) {
	case ScopeLocal, ScopeGlobal:
		return ScenarioScope(raw), nil
	}
	return "", fmt.Errorf("scope provided must be either \"local\" or \"global\"")
}

// Channel template kinds.
const (
	ChannelKindText  = "text"
	ChannelKindVoice = "voice"
)
