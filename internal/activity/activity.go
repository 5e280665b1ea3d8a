// Package activity defines the contracts between the orchestrator and the
// reward activity runners, together with the tagged result types the
// orchestrator consumes.
package activity

import (
	"context"

	"github.com/dmitrijs2005/pointsfarmer/internal/session"
)

// LoginStatus tags the outcome of a login attempt.
type LoginStatus int

const (
	LoginSuccess LoginStatus = iota
	LoginLocked
	LoginNeedsVerification
)

func (s LoginStatus) String() string {
	switch s {
	case LoginSuccess:
		return "success"
	case LoginLocked:
		return "locked"
	case LoginNeedsVerification:
		return "needs_verification"
	default:
		return "unknown"
	}
}

// LoginOutcome is the discriminated result of the login runner: either a
// successful login with the current balance, or a blocking account state.
type LoginOutcome struct {
	Status  LoginStatus
	Balance int64
}

// Result is the outcome of one best-effort activity: a new balance, or the
// reason it failed. Failed results are classified by the severity policy.
type Result struct {
	Balance int64
	Err     error
}

func Ok(balance int64) Result { return Result{Balance: balance} }
func Failed(err error) Result { return Result{Err: err} }

func (r Result) Succeeded() bool { return r.Err == nil }

// LoginRunner authenticates a session and reports the account balance or a
// blocking state. A returned error means the login flow itself broke, which
// is account-fatal.
type LoginRunner interface {
	Login(ctx context.Context, s session.Session) (LoginOutcome, error)
}

// Runner performs one best-effort activity (daily set, punch cards,
// promotions) against a session.
type Runner interface {
	Name() string
	Run(ctx context.Context, s session.Session) Result
}

// SearchRunner performs up to count searches and returns the updated
// balance.
type SearchRunner interface {
	Search(ctx context.Context, s session.Session, count int) (int64, error)
}

// Severity classifies what a runner failure means for the account.
type Severity int

const (
	// BestEffort failures are logged and skipped; the account continues.
	BestEffort Severity = iota
	// AccountFatal failures abort the account (never the batch).
	AccountFatal
)

// Canonical activity names, used as policy keys and in logs.
const (
	NameLogin          = "login"
	NameSession        = "session"
	NameDailySet       = "daily_set"
	NamePunchCards     = "punch_cards"
	NameMorePromotions = "more_promotions"
	NameSearches       = "searches"
)

// Policy maps an activity name to the severity of its failure.
type Policy map[string]Severity

// DefaultPolicy encodes the containment contract: sub-activities are
// best-effort, anything touching login or the session itself is fatal for
// the account.
func DefaultPolicy() Policy {
	return Policy{
		NameLogin:          AccountFatal,
		NameSession:        AccountFatal,
		NameSearches:       AccountFatal,
		NameDailySet:       BestEffort,
		NamePunchCards:     BestEffort,
		NameMorePromotions: BestEffort,
	}
}

// Classify returns the severity for name, defaulting to BestEffort for
// unknown activities.
func (p Policy) Classify(name string) Severity {
	if s, ok := p[name]; ok {
		return s
	}
	return BestEffort
}
