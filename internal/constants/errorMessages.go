package constants

// User-visible replies. Formatting verbs are filled by the services.
const (
	MsgWrongStatus         = "%s is not in the %s stage, this will have no affect"
	MsgNoGame              = "there is no game in this category"
	MsgWrongChannel        = "this command must be used in the %s channel of a game"
	MsgBadDate             = "ensure starting date is in the format of \"YYYY-MM-DD\" you provided: %s"
	MsgDateInPast          = "date you provided was not in the future, you provided %s"
	MsgDateTooFar          = "games can be at most %d days in the future, you provided %s"
	MsgGameExists          = "%s game already exists"
	MsgNoAnnouncement      = "you need to create a \"%s\" channel"
	MsgCountMismatch       = "players (%d) and characters (%d) must be equal"
	MsgInvalidPhase        = "not a valid phase"
	MsgInvalidStatus       = "%s is not a valid status"
	MsgStatusNotForward    = "status can only move forward from %s, use game-remove to remove a game"
	MsgNoMember            = "There is no member called \"%s\""
	MsgNotInGame           = "\"%s\" is not a part of this game"
	MsgAlreadyDeceased     = "\"%s\" is already deceased"
	MsgNoScenario          = "there is no scenario matching that id available to this game"
	MsgScenarioTaken       = "that scenario name is already taken, choose another"
	MsgLocalScope          = "local scope must be created in side a moderator channel of a game"
	MsgNotAllowedChannel   = "not allowed on this channel"
	MsgInvalidCharacterArg = "invalid argument \"%s\" and has been ignored"
	MsgUnknownCharacter    = "no character named %s, this has not been included"
	MsgMaxDuplicates       = "%s can appear at most %d times in a scenario, this has not been included"
	MsgCharacterNotFound   = "character \"%s\" was not found in scenario \"%s\" and has not been removed"
)

const (
	MsgGameCreated     = "created game %s"
	MsgGameRemoved     = "removed game %s"
	MsgGameStarted     = "game %s started with %d players"
	MsgGameCompleted   = "game %s completed"
	MsgPhaseChanged    = "game %s is now in the %s phase"
	MsgStatusChanged   = "changed status to %s"
	MsgPlayerDied      = "%s has died"
	MsgScenarioCreated = "created %s scenario \"%s\" (id %d)"
	MsgScenarioPurged  = "Purged scenario \"%s\" and its characters"
)

// MsgAnnouncement is posted in the announcement channel when a game opens for signups.
const MsgAnnouncement = "New game called %s will be starting on %s. If you would like to register for this game, " +
	"react to this post with a %s Registrations will close at 5pm on %s. " +
	"Roles will be assigned and more instructions will follow."
