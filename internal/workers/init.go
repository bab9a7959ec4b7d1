package workers

import (
	"infinite-experiment/werewolf/internal/api"
	"infinite-experiment/werewolf/internal/constants"
)

type WorkersContainer struct {
	Reactions *ReactionWorker
}

// InitWorkers builds the background workers the dependencies call for. Without a
// reaction queue, reactions are applied inline by the HTTP handler and no worker runs.
func InitWorkers(deps *api.Dependencies) *WorkersContainer {
	c := &WorkersContainer{}
	if deps.Queue != nil {
		c.Reactions = NewReactionWorker(constants.ReactionConsumerGroup, deps.Queue, deps.Services.Signups, deps.Metrics)
	}
	return c
}
