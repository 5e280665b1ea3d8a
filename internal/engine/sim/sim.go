// Package sim provides a deterministic in-process automation engine. It
// simulates account balances and search counters from a seed, which makes
// it usable both as a dry-run engine and as the pipeline test double.
package sim

import (
	"context"
	"math/rand"
	"sync"

	"github.com/dmitrijs2005/pointsfarmer/internal/activity"
	"github.com/dmitrijs2005/pointsfarmer/internal/engine"
	"github.com/dmitrijs2005/pointsfarmer/internal/session"
)

const pointsPerSearch = 3

type accountState struct {
	balance         int64
	desktopSearches int
	mobileSearches  int
	goalPoints      int64
	goalTitle       string
	locked          bool
	needsVerify     bool
}

// Engine simulates the automation backend. Accounts keep their state across
// sessions within one Engine instance, so the mobile leg continues from
// where the desktop leg ended.
type Engine struct {
	mu       sync.Mutex
	rnd      *rand.Rand
	accounts map[string]*accountState

	// OpenedSessions counts session opens per profile, which lets tests
	// assert that the mobile leg is skipped.
	OpenedSessions map[session.Profile]int

	runnersOnce sync.Once
	runners     engine.Runners
}

func New(seed int64) *Engine {
	return &Engine{
		rnd:            rand.New(rand.NewSource(seed)),
		accounts:       make(map[string]*accountState),
		OpenedSessions: make(map[session.Profile]int),
	}
}

// MarkLocked makes username's next login report a locked account.
func (e *Engine) MarkLocked(username string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state(username).locked = true
}

// MarkNeedsVerification makes username's next login require verification.
func (e *Engine) MarkNeedsVerification(username string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state(username).needsVerify = true
}

// state returns the account state, creating it on first use. Callers hold
// e.mu.
func (e *Engine) state(username string) *accountState {
	st, ok := e.accounts[username]
	if !ok {
		st = &accountState{
			balance:         int64(e.rnd.Intn(500)) * 10,
			desktopSearches: e.rnd.Intn(30),
			mobileSearches:  e.rnd.Intn(20),
		}
		if e.rnd.Intn(2) == 0 {
			st.goalPoints = 1000
			st.goalTitle = "Gift card"
		}
		e.accounts[username] = st
	}
	return st
}

func (e *Engine) Open(_ context.Context, profile session.Profile, username, _ string, _ session.Options) (session.Session, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.state(username)
	e.OpenedSessions[profile]++

	return &simSession{engine: e, profile: profile, username: username}, nil
}

func (e *Engine) Runners() engine.Runners {
	e.runnersOnce.Do(func() {
		e.runners = engine.Runners{
			Login:          &loginRunner{engine: e},
			DailySet:       &taskRunner{engine: e, name: activity.NameDailySet, points: 60},
			PunchCards:     &taskRunner{engine: e, name: activity.NamePunchCards, points: 20},
			MorePromotions: &taskRunner{engine: e, name: activity.NameMorePromotions, points: 40},
			Searches:       &searchRunner{engine: e},
		}
	})
	return e.runners
}

func (e *Engine) Cleanup(context.Context) error { return nil }

type simSession struct {
	engine   *Engine
	profile  session.Profile
	username string
	closed   bool
}

func (s *simSession) Profile() session.Profile { return s.profile }

func (s *simSession) RemainingSearches(context.Context) (int, int, error) {
	s.engine.mu.Lock()
	defer s.engine.mu.Unlock()
	st := s.engine.state(s.username)
	return st.desktopSearches, st.mobileSearches, nil
}

func (s *simSession) Goal(context.Context) (int64, string, error) {
	s.engine.mu.Lock()
	defer s.engine.mu.Unlock()
	st := s.engine.state(s.username)
	return st.goalPoints, st.goalTitle, nil
}

func (s *simSession) Close() error {
	s.closed = true
	return nil
}
