// Package session defines the handle surface for one authenticated browser
// session. The mechanics of driving the browser live behind an engine; the
// orchestrator only opens, queries and closes sessions through these
// interfaces.
package session

import "context"

// Profile selects the device profile a session is bound to.
type Profile string

const (
	ProfileDesktop Profile = "desktop"
	ProfileMobile  Profile = "mobile"
)

// Options carries the per-run configuration forwarded to every session.
type Options struct {
	Lang     string
	Geo      string
	Proxy    string
	Headless bool
}

// Session is one authenticated interactive context. The remaining-search
// counters and the goal target are read through the session because they are
// only visible to a logged-in context.
//
// Close must be safe to call more than once; the orchestrator pairs every
// successful open with a deferred close.
type Session interface {
	// Profile reports the device profile this session was opened with.
	Profile() Profile

	// RemainingSearches returns the outstanding desktop and mobile search
	// counts for the account.
	RemainingSearches(ctx context.Context) (desktop, mobile int, err error)

	// Goal returns the configured goal target in points and its label.
	// A zero target means no goal is configured.
	Goal(ctx context.Context) (points int64, title string, err error)

	// Close releases the underlying browser resources.
	Close() error
}

// Opener creates sessions. Implementations live in the engine packages.
type Opener interface {
	Open(ctx context.Context, profile Profile, username, password string, opts Options) (Session, error)
}
