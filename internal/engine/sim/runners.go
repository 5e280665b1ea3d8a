package sim

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/pointsfarmer/internal/activity"
	"github.com/dmitrijs2005/pointsfarmer/internal/session"
)

func simState(e *Engine, s session.Session) (*accountState, error) {
	ss, ok := s.(*simSession)
	if !ok {
		return nil, fmt.Errorf("sim runner got foreign session %T", s)
	}
	return e.state(ss.username), nil
}

type loginRunner struct {
	engine *Engine
}

func (r *loginRunner) Login(_ context.Context, s session.Session) (activity.LoginOutcome, error) {
	r.engine.mu.Lock()
	defer r.engine.mu.Unlock()

	st, err := simState(r.engine, s)
	if err != nil {
		return activity.LoginOutcome{}, err
	}

	switch {
	case st.locked:
		return activity.LoginOutcome{Status: activity.LoginLocked}, nil
	case st.needsVerify:
		return activity.LoginOutcome{Status: activity.LoginNeedsVerification}, nil
	default:
		return activity.LoginOutcome{Status: activity.LoginSuccess, Balance: st.balance}, nil
	}
}

// taskRunner simulates one best-effort activity crediting a fixed number of
// points on its first completion.
type taskRunner struct {
	engine *Engine
	name   string
	points int64
	done   map[string]bool
}

func (r *taskRunner) Name() string { return r.name }

func (r *taskRunner) Run(_ context.Context, s session.Session) activity.Result {
	r.engine.mu.Lock()
	defer r.engine.mu.Unlock()

	ss, ok := s.(*simSession)
	if !ok {
		return activity.Failed(fmt.Errorf("sim runner got foreign session %T", s))
	}

	if r.done == nil {
		r.done = make(map[string]bool)
	}

	st := r.engine.state(ss.username)
	if !r.done[ss.username] {
		st.balance += r.points
		r.done[ss.username] = true
	}

	return activity.Ok(st.balance)
}

type searchRunner struct {
	engine *Engine
}

func (r *searchRunner) Search(_ context.Context, s session.Session, count int) (int64, error) {
	r.engine.mu.Lock()
	defer r.engine.mu.Unlock()

	ss, ok := s.(*simSession)
	if !ok {
		return 0, fmt.Errorf("sim runner got foreign session %T", s)
	}

	st := r.engine.state(ss.username)
	st.balance += int64(count) * pointsPerSearch

	switch ss.profile {
	case session.ProfileMobile:
		st.mobileSearches = 0
	default:
		st.desktopSearches = 0
	}

	return st.balance, nil
}
