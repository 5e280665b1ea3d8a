package sim

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/pointsfarmer/internal/activity"
	"github.com/dmitrijs2005/pointsfarmer/internal/session"
)

func TestEngine_Deterministic(t *testing.T) {
	a := New(42)
	b := New(42)

	ctx := context.Background()
	sa, err := a.Open(ctx, session.ProfileDesktop, "a@b.c", "pw", session.Options{})
	require.NoError(t, err)
	sb, err := b.Open(ctx, session.ProfileDesktop, "a@b.c", "pw", session.Options{})
	require.NoError(t, err)

	oa, err := a.Runners().Login.Login(ctx, sa)
	require.NoError(t, err)
	ob, err := b.Runners().Login.Login(ctx, sb)
	require.NoError(t, err)
	assert.Equal(t, oa.Balance, ob.Balance)
}

func TestEngine_LoginStates(t *testing.T) {
	e := New(1)
	ctx := context.Background()

	e.MarkLocked("locked@b.c")
	s, err := e.Open(ctx, session.ProfileDesktop, "locked@b.c", "pw", session.Options{})
	require.NoError(t, err)

	out, err := e.Runners().Login.Login(ctx, s)
	require.NoError(t, err)
	assert.Equal(t, activity.LoginLocked, out.Status)

	e.MarkNeedsVerification("verify@b.c")
	s2, err := e.Open(ctx, session.ProfileDesktop, "verify@b.c", "pw", session.Options{})
	require.NoError(t, err)

	out, err = e.Runners().Login.Login(ctx, s2)
	require.NoError(t, err)
	assert.Equal(t, activity.LoginNeedsVerification, out.Status)
}

func TestEngine_SearchesDrainCounters(t *testing.T) {
	e := New(7)
	ctx := context.Background()

	s, err := e.Open(ctx, session.ProfileDesktop, "a@b.c", "pw", session.Options{})
	require.NoError(t, err)

	out, err := e.Runners().Login.Login(ctx, s)
	require.NoError(t, err)

	desktop, _, err := s.RemainingSearches(ctx)
	require.NoError(t, err)

	balance, err := e.Runners().Searches.Search(ctx, s, desktop)
	require.NoError(t, err)
	assert.Equal(t, out.Balance+int64(desktop)*pointsPerSearch, balance)

	desktop, _, err = s.RemainingSearches(ctx)
	require.NoError(t, err)
	assert.Zero(t, desktop)
}

func TestEngine_TaskCreditsOnce(t *testing.T) {
	e := New(7)
	ctx := context.Background()

	s, err := e.Open(ctx, session.ProfileDesktop, "a@b.c", "pw", session.Options{})
	require.NoError(t, err)

	runners := e.Runners()
	first := runners.DailySet.Run(ctx, s)
	require.True(t, first.Succeeded())

	second := runners.DailySet.Run(ctx, s)
	require.True(t, second.Succeeded())
	assert.Equal(t, first.Balance, second.Balance)
}

func TestEngine_CountsOpenedSessions(t *testing.T) {
	e := New(7)
	ctx := context.Background()

	_, err := e.Open(ctx, session.ProfileDesktop, "a@b.c", "pw", session.Options{})
	require.NoError(t, err)
	_, err = e.Open(ctx, session.ProfileMobile, "a@b.c", "pw", session.Options{})
	require.NoError(t, err)

	assert.Equal(t, 1, e.OpenedSessions[session.ProfileDesktop])
	assert.Equal(t, 1, e.OpenedSessions[session.ProfileMobile])
}
