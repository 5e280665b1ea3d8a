package remote

import (
	"context"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/pointsfarmer/internal/activity"
	"github.com/dmitrijs2005/pointsfarmer/internal/session"
)

func sessionID(s session.Session) (string, error) {
	rs, ok := s.(*remoteSession)
	if !ok {
		return "", fmt.Errorf("remote runner got foreign session %T", s)
	}
	return rs.id, nil
}

type loginRunner struct {
	engine *Engine
}

func (r *loginRunner) Login(ctx context.Context, s session.Session) (activity.LoginOutcome, error) {
	id, err := sessionID(s)
	if err != nil {
		return activity.LoginOutcome{}, err
	}

	var resp struct {
		Status  string `json:"status"`
		Balance int64  `json:"balance"`
	}
	if err := r.engine.do(ctx, http.MethodPost, "/sessions/"+id+"/login", nil, &resp); err != nil {
		return activity.LoginOutcome{}, err
	}

	switch resp.Status {
	case "success":
		return activity.LoginOutcome{Status: activity.LoginSuccess, Balance: resp.Balance}, nil
	case "locked":
		return activity.LoginOutcome{Status: activity.LoginLocked}, nil
	case "needs_verification":
		return activity.LoginOutcome{Status: activity.LoginNeedsVerification}, nil
	default:
		return activity.LoginOutcome{}, fmt.Errorf("unknown login status %q", resp.Status)
	}
}

type taskRunner struct {
	engine *Engine
	name   string
}

func (r *taskRunner) Name() string { return r.name }

func (r *taskRunner) Run(ctx context.Context, s session.Session) activity.Result {
	id, err := sessionID(s)
	if err != nil {
		return activity.Failed(err)
	}

	var resp struct {
		Balance int64 `json:"balance"`
	}
	if err := r.engine.do(ctx, http.MethodPost, "/sessions/"+id+"/activities/"+r.name, nil, &resp); err != nil {
		return activity.Failed(err)
	}

	return activity.Ok(resp.Balance)
}

type searchRunner struct {
	engine *Engine
}

func (r *searchRunner) Search(ctx context.Context, s session.Session, count int) (int64, error) {
	id, err := sessionID(s)
	if err != nil {
		return 0, err
	}

	req := struct {
		Count int `json:"count"`
	}{Count: count}

	var resp struct {
		Balance int64 `json:"balance"`
	}
	if err := r.engine.do(ctx, http.MethodPost, "/sessions/"+id+"/searches", req, &resp); err != nil {
		return 0, err
	}

	return resp.Balance, nil
}
