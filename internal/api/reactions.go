package api

import (
	"net/http"
	"time"

	"infinite-experiment/werewolf/internal/auth"
	"infinite-experiment/werewolf/internal/common"
	"infinite-experiment/werewolf/internal/logging"
	"infinite-experiment/werewolf/internal/models/dtos"
)

// ReactionHandler handles POST /api/v1/reactions.
//
// With Redis enabled the event is queued for the reaction worker and acknowledged with
// 202; otherwise it is applied before responding.
func (h *Handlers) ReactionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		var event dtos.ReactionEvent
		if err := decodeBody(r, &event); err != nil || event.MessageID == "" || event.UserID == "" {
			common.RespondError(w, start, nil, "Reaction needs message_id and user_id", http.StatusBadRequest)
			return
		}
		if claims := auth.GetUserClaims(r.Context()); claims != nil && event.GuildID == "" {
			event.GuildID = claims.GuildID()
		}

		if h.deps.Queue != nil {
			if err := h.deps.Queue.Enqueue(r.Context(), &event); err != nil {
				logging.Error("failed to queue reaction", "error", err, "message_id", event.MessageID)
				common.RespondError(w, start, nil, "Could not queue reaction")
				return
			}
			common.RespondSuccess(w, start, "queued", nil, http.StatusAccepted)
			return
		}

		out, err := h.deps.Services.Signups.HandleReaction(r.Context(), &event)
		h.countReaction(out.Rejected, string(out.Reason), err)
		if err != nil {
			logging.Error("failed to apply reaction", "error", err, "message_id", event.MessageID)
			common.RespondError(w, start, nil, "Could not apply reaction")
			return
		}
		common.RespondSuccess(w, start, out.Message, dtos.CommandReply{Reply: out.Message, Reason: string(out.Reason), GameID: out.GameID})
	}
}

func (h *Handlers) countReaction(rejected bool, reason string, err error) {
	if h.deps.Metrics == nil {
		return
	}
	result := "applied"
	switch {
	case err != nil:
		result = "error"
	case rejected:
		result = reason
	}
	h.deps.Metrics.ReactionsProcessed.WithLabelValues(result).Inc()
}
