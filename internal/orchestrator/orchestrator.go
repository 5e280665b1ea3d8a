// Package orchestrator contains the core of the farmer: the per-account
// session state machine and the batch driver that runs it over every
// account while isolating failures.
package orchestrator

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/dmitrijs2005/pointsfarmer/internal/accounts"
	"github.com/dmitrijs2005/pointsfarmer/internal/activity"
	"github.com/dmitrijs2005/pointsfarmer/internal/engine"
	"github.com/dmitrijs2005/pointsfarmer/internal/logging"
	"github.com/dmitrijs2005/pointsfarmer/internal/notify"
	"github.com/dmitrijs2005/pointsfarmer/internal/session"
)

// sessionState is the per-account, per-run state. It is owned by Process
// for the duration of one account and discarded afterwards; nothing carries
// over to the next account.
type sessionState struct {
	startingPoints   int64
	currentPoints    int64
	remainingDesktop int
	remainingMobile  int
	goalPoints       int64
	goalTitle        string
}

// Orchestrator drives one account through the full activity sequence:
// desktop login, best-effort activities, desktop searches with pacing
// pauses, then a mobile leg only when mobile searches remain.
type Orchestrator struct {
	engine   engine.Engine
	notifier notify.Notifier
	logger   logging.Logger
	policy   activity.Policy
	opts     session.Options
	pauseMin time.Duration
	pauseMax time.Duration

	// seams for tests
	sleep func(time.Duration)
	rnd   *rand.Rand
}

func New(eng engine.Engine, notifier notify.Notifier, logger logging.Logger, opts session.Options, pauseMin, pauseMax time.Duration) *Orchestrator {
	return &Orchestrator{
		engine:   eng,
		notifier: notifier,
		logger:   logger,
		policy:   activity.DefaultPolicy(),
		opts:     opts,
		pauseMin: pauseMin,
		pauseMax: pauseMax,
		sleep:    time.Sleep,
		rnd:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Process produces the account's final point balance, or 0 when the account
// is blocked (locked, needs verification). Every outcome that is not an
// error sends exactly one notification; errors are notified by the batch
// driver.
func (o *Orchestrator) Process(ctx context.Context, acct accounts.Account) (int64, error) {
	log := o.logger.With("account", acct.Key())
	log.Info(ctx, "processing account")

	opts := o.opts
	if acct.Proxy != "" {
		opts.Proxy = acct.Proxy
	}

	st := &sessionState{}
	runners := o.engine.Runners()

	blocked, err := o.desktopLeg(ctx, log, acct, opts, runners, st)
	if err != nil {
		return 0, err
	}
	if blocked {
		return 0, nil
	}

	if st.remainingMobile > 0 {
		if err := o.mobileLeg(ctx, log, acct, opts, runners, st); err != nil {
			return 0, err
		}
	} else {
		log.Info(ctx, "no mobile searches remaining, skipping mobile session")
	}

	return o.finalize(ctx, log, acct, st), nil
}

// desktopLeg opens the desktop session and runs everything up to and
// including the goal read. blocked reports a Locked/NeedsVerification
// short-circuit; in that case the notification has already been sent.
func (o *Orchestrator) desktopLeg(ctx context.Context, log logging.Logger, acct accounts.Account, opts session.Options, runners engine.Runners, st *sessionState) (blocked bool, err error) {
	s, err := o.engine.Open(ctx, session.ProfileDesktop, acct.Username, acct.Password, opts)
	if err != nil {
		return false, fmt.Errorf("%s: open desktop: %w", activity.NameSession, err)
	}
	defer o.closeSession(ctx, log, s)

	outcome, err := runners.Login.Login(ctx, s)
	if err != nil {
		return false, fmt.Errorf("%s: %w", activity.NameLogin, err)
	}

	switch outcome.Status {
	case activity.LoginLocked:
		log.Warn(ctx, "account is locked")
		o.notifyBestEffort(ctx, log, "🚫 Account is Locked", acct.Username)
		return true, nil
	case activity.LoginNeedsVerification:
		log.Warn(ctx, "account needs verification")
		o.notifyBestEffort(ctx, log, "❗️ Account needs to be verified", acct.Username)
		return true, nil
	}

	st.startingPoints = outcome.Balance
	st.currentPoints = outcome.Balance
	log.Info(ctx, "logged in", "points", formatPoints(st.currentPoints))

	// fixed order, independent of each other: one failing must not block
	// the others
	for _, r := range runners.BestEffort() {
		res := r.Run(ctx, s)
		if !res.Succeeded() {
			if o.policy.Classify(r.Name()) == activity.AccountFatal {
				return false, fmt.Errorf("%s: %w", r.Name(), res.Err)
			}
			log.Warn(ctx, "activity failed, continuing", "activity", r.Name(), "error", res.Err)
			continue
		}
		st.currentPoints = res.Balance
		log.Info(ctx, "activity completed", "activity", r.Name(), "points", formatPoints(st.currentPoints))
	}

	st.remainingDesktop, st.remainingMobile, err = s.RemainingSearches(ctx)
	if err != nil {
		return false, fmt.Errorf("%s: remaining counters: %w", activity.NameSearches, err)
	}
	log.Info(ctx, "remaining searches", "desktop", st.remainingDesktop, "mobile", st.remainingMobile)

	o.pause(ctx, log)

	if st.remainingDesktop > 0 {
		balance, err := runners.Searches.Search(ctx, s, st.remainingDesktop)
		if err != nil {
			return false, fmt.Errorf("%s: desktop: %w", activity.NameSearches, err)
		}
		st.currentPoints = balance
	}

	o.pause(ctx, log)

	goalPoints, goalTitle, err := s.Goal(ctx)
	if err != nil {
		// the goal only feeds the notification line; losing it is not
		// worth failing the account
		log.Warn(ctx, "goal read failed", "error", err)
	} else {
		st.goalPoints, st.goalTitle = goalPoints, goalTitle
	}

	return false, nil
}

// mobileLeg opens the second session, re-authenticates and burns down the
// mobile search counter. Only called when that counter is nonzero; session
// setup has real cost and must not be paid needlessly.
func (o *Orchestrator) mobileLeg(ctx context.Context, log logging.Logger, acct accounts.Account, opts session.Options, runners engine.Runners, st *sessionState) error {
	s, err := o.engine.Open(ctx, session.ProfileMobile, acct.Username, acct.Password, opts)
	if err != nil {
		return fmt.Errorf("%s: open mobile: %w", activity.NameSession, err)
	}
	defer o.closeSession(ctx, log, s)

	outcome, err := runners.Login.Login(ctx, s)
	if err != nil {
		return fmt.Errorf("%s: mobile: %w", activity.NameLogin, err)
	}
	if outcome.Status != activity.LoginSuccess {
		return fmt.Errorf("%s: mobile login blocked: %s", activity.NameLogin, outcome.Status)
	}

	balance, err := runners.Searches.Search(ctx, s, st.remainingMobile)
	if err != nil {
		return fmt.Errorf("%s: mobile: %w", activity.NameSearches, err)
	}
	st.currentPoints = balance

	return nil
}

// finalize computes the day's earnings and sends the summary notification.
func (o *Orchestrator) finalize(ctx context.Context, log logging.Logger, acct accounts.Account, st *sessionState) int64 {
	earned := st.currentPoints - st.startingPoints

	log.Info(ctx, "points earned today", "earned", formatPoints(earned))
	log.Info(ctx, "total points", "total", formatPoints(st.currentPoints))

	lines := []string{
		fmt.Sprintf("👤 Account: %s", acct.Username),
		fmt.Sprintf("⭐️ Points earned today: %s", formatPoints(earned)),
		fmt.Sprintf("💰 Total points: %s", formatPoints(st.currentPoints)),
	}

	if st.goalPoints > 0 {
		pct := st.currentPoints * 100 / st.goalPoints
		log.Info(ctx, "goal progress", "percent", pct, "goal", st.goalTitle)
		lines = append(lines, fmt.Sprintf("🎯 Goal reached: %d%% (%s)", pct, st.goalTitle))
	}

	o.notifyBestEffort(ctx, log, "Daily Points Update", strings.Join(lines, "\n"))

	return st.currentPoints
}

// pause blocks for a fresh random interval in [pauseMin, pauseMax]. Each
// call re-rolls; the pre- and post-search pauses never reuse a value.
func (o *Orchestrator) pause(ctx context.Context, log logging.Logger) {
	d := o.pauseMin
	if window := o.pauseMax - o.pauseMin; window > 0 {
		d += time.Duration(o.rnd.Int63n(int64(window)))
	}
	log.Debug(ctx, "pacing pause", "duration", d)
	o.sleep(d)
}

func (o *Orchestrator) closeSession(ctx context.Context, log logging.Logger, s session.Session) {
	if err := s.Close(); err != nil {
		log.Warn(ctx, "session close failed", "profile", s.Profile(), "error", err)
	}
}

func (o *Orchestrator) notifyBestEffort(ctx context.Context, log logging.Logger, title, body string) {
	if err := o.notifier.Send(ctx, title, body); err != nil {
		log.Warn(ctx, "notification delivery failed", "title", title, "error", err)
	}
}
