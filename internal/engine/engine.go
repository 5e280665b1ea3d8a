// Package engine bundles the external collaborator surface the orchestrator
// consumes: a session opener, the activity runners and a cleanup hook for
// stray automation processes.
package engine

import (
	"context"

	"github.com/dmitrijs2005/pointsfarmer/internal/activity"
	"github.com/dmitrijs2005/pointsfarmer/internal/session"
)

// Runners groups the activity runners an engine provides.
type Runners struct {
	Login          activity.LoginRunner
	DailySet       activity.Runner
	PunchCards     activity.Runner
	MorePromotions activity.Runner
	Searches       activity.SearchRunner
}

// BestEffort returns the three independent desktop activities in their
// fixed execution order.
func (r Runners) BestEffort() []activity.Runner {
	return []activity.Runner{r.DailySet, r.PunchCards, r.MorePromotions}
}

// Engine is one automation backend.
type Engine interface {
	session.Opener

	// Runners returns the activity runners bound to this engine.
	Runners() Runners

	// Cleanup terminates stray automation processes left behind by crashed
	// sessions. Called once at process exit.
	Cleanup(ctx context.Context) error
}
