// Package remote implements the automation engine as an HTTP client for a
// browser-driver sidecar. The sidecar owns the browsers and the DOM logic;
// this client only opens sessions, triggers activities and reads counters.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/dmitrijs2005/pointsfarmer/internal/activity"
	"github.com/dmitrijs2005/pointsfarmer/internal/engine"
	"github.com/dmitrijs2005/pointsfarmer/internal/session"
)

// openRetryBase is a seam so tests do not sit through real backoff.
var openRetryBase = 3 * time.Second

// Engine talks to the automation sidecar at baseURL.
type Engine struct {
	baseURL string
	client  *http.Client
}

func New(baseURL string) *Engine {
	return &Engine{
		baseURL: baseURL,
		// session opens spawn a browser on the sidecar; generous timeout
		client: &http.Client{Timeout: 2 * time.Minute},
	}
}

type openRequest struct {
	Profile  string `json:"profile"`
	Username string `json:"username"`
	Password string `json:"password"`
	Lang     string `json:"lang,omitempty"`
	Geo      string `json:"geo,omitempty"`
	Proxy    string `json:"proxy,omitempty"`
	Headless bool   `json:"headless"`
}

type openResponse struct {
	ID string `json:"id"`
}

// Open creates a browser session on the sidecar. Browser startup is flaky
// enough that failed opens are retried with backoff before giving up.
func (e *Engine) Open(ctx context.Context, profile session.Profile, username, password string, opts session.Options) (session.Session, error) {
	body := openRequest{
		Profile:  string(profile),
		Username: username,
		Password: password,
		Lang:     opts.Lang,
		Geo:      opts.Geo,
		Proxy:    opts.Proxy,
		Headless: opts.Headless,
	}

	var resp openResponse
	backoff := retry.WithMaxRetries(2, retry.NewFibonacci(openRetryBase))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := e.do(ctx, http.MethodPost, "/sessions", body, &resp); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("open %s session: %w", profile, err)
	}

	return &remoteSession{engine: e, id: resp.ID, profile: profile}, nil
}

func (e *Engine) Runners() engine.Runners {
	return engine.Runners{
		Login:          &loginRunner{engine: e},
		DailySet:       &taskRunner{engine: e, name: activity.NameDailySet},
		PunchCards:     &taskRunner{engine: e, name: activity.NamePunchCards},
		MorePromotions: &taskRunner{engine: e, name: activity.NameMorePromotions},
		Searches:       &searchRunner{engine: e},
	}
}

// Cleanup asks the sidecar to terminate browser processes orphaned by
// crashed sessions.
func (e *Engine) Cleanup(ctx context.Context) error {
	return e.do(ctx, http.MethodPost, "/cleanup", nil, nil)
}

// do sends one JSON request and decodes the JSON response into out (when
// out is non-nil). Non-2xx statuses are returned as errors carrying the
// response body.
func (e *Engine) do(ctx context.Context, method, path string, in, out any) error {
	var reqBody io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, e.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s %s: %s: %s", method, path, resp.Status, bytes.TrimSpace(msg))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}

	return nil
}

type remoteSession struct {
	engine  *Engine
	id      string
	profile session.Profile
	closed  bool
}

func (s *remoteSession) Profile() session.Profile { return s.profile }

func (s *remoteSession) RemainingSearches(ctx context.Context) (int, int, error) {
	var resp struct {
		Desktop int `json:"desktop"`
		Mobile  int `json:"mobile"`
	}
	if err := s.engine.do(ctx, http.MethodGet, "/sessions/"+s.id+"/searches", nil, &resp); err != nil {
		return 0, 0, err
	}
	return resp.Desktop, resp.Mobile, nil
}

func (s *remoteSession) Goal(ctx context.Context) (int64, string, error) {
	var resp struct {
		Points int64  `json:"points"`
		Title  string `json:"title"`
	}
	if err := s.engine.do(ctx, http.MethodGet, "/sessions/"+s.id+"/goal", nil, &resp); err != nil {
		return 0, "", err
	}
	return resp.Points, resp.Title, nil
}

func (s *remoteSession) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return s.engine.do(ctx, http.MethodDelete, "/sessions/"+s.id, nil, nil)
}
