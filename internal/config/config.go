// Package config handles configuration for the farmer, including defaults,
// JSON overlay, and command-line flags.
package config

import "time"

// Engine selects which automation engine implementation the app wires in.
const (
	EngineSim    = "sim"
	EngineRemote = "remote"
)

// Config holds runtime settings for one batch invocation.
//
// Fields:
//   - AccountsFile: path to the account store (.json, .yaml/.yml or .enc).
//   - StateDir: directory receiving the activity log, ledger snapshot and
//     run record CSV.
//   - Headless: run browser sessions without a visible window.
//   - Lang / Geo / Proxy: per-run overrides forwarded to every session.
//   - VerboseNotifs: mirror warning-level log events to the notifier.
//   - NotifyURL: webhook endpoint for notifications; empty disables them.
//   - Engine / EngineEndpoint: automation engine selection ("sim" or
//     "remote") and the sidecar address for the remote engine.
//   - LedgerDSN: when set, the points ledger lives in PostgreSQL instead of
//     the JSON snapshot file.
//   - PauseMin / PauseMax: bounds of the randomized pacing pause around the
//     desktop search leg.
//   - S3*: optional S3-compatible backup target for the ledger and the run
//     record; disabled while S3Bucket is empty.
type Config struct {
	AccountsFile   string
	StateDir       string
	Headless       bool
	Lang           string
	Geo            string
	Proxy          string
	VerboseNotifs  bool
	NotifyURL      string
	Engine         string
	EngineEndpoint string
	LedgerDSN      string
	PauseMin       time.Duration
	PauseMax       time.Duration
	S3RootUser     string
	S3RootPassword string
	S3Bucket       string
	S3Region       string
	S3BaseEndpoint string
	S3Prefix       string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.AccountsFile = "accounts.json"
	c.StateDir = "logs"
	c.Headless = true
	c.Engine = EngineSim
	c.EngineEndpoint = "http://127.0.0.1:8917"
	c.PauseMin = 11 * time.Second
	c.PauseMax = 15 * time.Second
	c.S3Region = "us-east-1"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
