package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"infinite-experiment/werewolf/internal/auth"
	"infinite-experiment/werewolf/internal/common"
	"infinite-experiment/werewolf/internal/constants"
	"infinite-experiment/werewolf/internal/logging"
	"infinite-experiment/werewolf/internal/models/dtos"
	"infinite-experiment/werewolf/internal/services"
)

type Handlers struct {
	deps *Dependencies
}

// NewHandlers creates a new handlers instance with injected dependencies
func NewHandlers(deps *Dependencies) *Handlers {
	return &Handlers{
		deps: deps,
	}
}

// commandContext describes the member and channel a command came from. Guild and user
// come from the authenticated claims, the channel from the gateway headers.
func commandContext(r *http.Request) (services.CommandContext, bool) {
	claims := auth.GetUserClaims(r.Context())
	if claims == nil {
		return services.CommandContext{}, false
	}
	return services.CommandContext{
		GuildID:     claims.GuildID(),
		ActorID:     claims.UserID(),
		CategoryID:  r.Header.Get(constants.HeaderCategoryID),
		ChannelID:   r.Header.Get(constants.HeaderChannelID),
		ChannelName: r.Header.Get(constants.HeaderChannelName),
	}, true
}

// decodeBody reads an optional JSON body into dst. An empty body leaves dst untouched.
func decodeBody(r *http.Request, dst any) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(dst)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// command adapts a service call to an HTTP handler: rejections become 422 with the
// user-facing message, errors a logged 500.
func (h *Handlers) command(name string, run func(r *http.Request, cc services.CommandContext) (services.Outcome, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		cc, ok := commandContext(r)
		if !ok {
			common.RespondError(w, start, nil, "Unauthorized", http.StatusUnauthorized)
			return
		}

		out, err := run(r, cc)
		h.respond(w, r, start, name, cc, out, err)
	}
}

func (h *Handlers) respond(w http.ResponseWriter, r *http.Request, start time.Time, name string, cc services.CommandContext, out services.Outcome, err error) {
	switch {
	case errors.Is(err, errBadRequest):
		h.countCommand(name, "rejected")
		common.RespondError(w, start, nil, "Request body is not valid JSON", http.StatusBadRequest)

	case err != nil:
		h.countCommand(name, "error")
		logging.WithRequest(auth.GetRequestID(r.Context()), cc.GuildID, cc.ActorID, name).
			Errorw("command failed", "error", err)
		common.RespondError(w, start, nil, "Something went wrong, the moderators have been notified")

	case out.Rejected:
		h.countCommand(name, "rejected")
		common.RespondRejected(w, start, out.Message, dtos.CommandReply{Reply: out.Message, Reason: string(out.Reason), GameID: out.GameID})

	default:
		h.countCommand(name, "ok")
		reply := dtos.CommandReply{Reply: out.Message, GameID: out.GameID}
		if out.Data != nil {
			common.RespondSuccess(w, start, out.Message, map[string]any{"reply": reply, "result": out.Data})
			return
		}
		common.RespondSuccess(w, start, out.Message, reply)
	}
}

func (h *Handlers) countCommand(name, outcome string) {
	if h.deps.Metrics != nil {
		h.deps.Metrics.CommandsTotal.WithLabelValues(name, outcome).Inc()
	}
}

var errBadRequest = errors.New("malformed request body")

// bind decodes the body into dst, mapping decode failures to errBadRequest.
func bind(r *http.Request, dst any) error {
	if err := decodeBody(r, dst); err != nil {
		return errBadRequest
	}
	return nil
}
