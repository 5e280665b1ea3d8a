package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/pointsfarmer/internal/flagx"
	"github.com/dmitrijs2005/pointsfarmer/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. It relies on
// timex.Duration so pacing bounds can be written either as strings like
// "11s" or as integer nanoseconds.
type JsonConfig struct {
	AccountsFile   string         `json:"accounts_file"`
	StateDir       string         `json:"state_dir"`
	Headless       bool           `json:"headless"`
	Lang           string         `json:"lang"`
	Geo            string         `json:"geo"`
	Proxy          string         `json:"proxy"`
	VerboseNotifs  bool           `json:"verbose_notifications"`
	NotifyURL      string         `json:"notify_url"`
	Engine         string         `json:"engine"`
	EngineEndpoint string         `json:"engine_endpoint"`
	LedgerDSN      string         `json:"ledger_dsn"`
	PauseMin       timex.Duration `json:"pause_min"`
	PauseMax       timex.Duration `json:"pause_max"`
	S3RootUser     string         `json:"s3_root_user"`
	S3RootPassword string         `json:"s3_root_password"`
	S3Bucket       string         `json:"s3_bucket"`
	S3Region       string         `json:"s3_region"`
	S3BaseEndpoint string         `json:"s3_base_endpoint"`
	S3Prefix       string         `json:"s3_prefix"`
}

// parseJson overlays Config with values loaded from a JSON file.
//
// Lookup order for the JSON file path:
//  1. Command-line flags (-c or -config) via flagx.JsonConfigFlags().
//  2. If empty, no JSON is loaded and the function returns.
//
// The DTO is pre-populated from the current Config, so keys omitted from the
// file keep their defaults. Read or unmarshal errors panic; a broken config
// file is a catastrophic startup failure.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	jc := JsonConfig{
		AccountsFile:   cfg.AccountsFile,
		StateDir:       cfg.StateDir,
		Headless:       cfg.Headless,
		Lang:           cfg.Lang,
		Geo:            cfg.Geo,
		Proxy:          cfg.Proxy,
		VerboseNotifs:  cfg.VerboseNotifs,
		NotifyURL:      cfg.NotifyURL,
		Engine:         cfg.Engine,
		EngineEndpoint: cfg.EngineEndpoint,
		LedgerDSN:      cfg.LedgerDSN,
		PauseMin:       timex.Duration{Duration: cfg.PauseMin},
		PauseMax:       timex.Duration{Duration: cfg.PauseMax},
		S3RootUser:     cfg.S3RootUser,
		S3RootPassword: cfg.S3RootPassword,
		S3Bucket:       cfg.S3Bucket,
		S3Region:       cfg.S3Region,
		S3BaseEndpoint: cfg.S3BaseEndpoint,
		S3Prefix:       cfg.S3Prefix,
	}

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	cfg.AccountsFile = jc.AccountsFile
	cfg.StateDir = jc.StateDir
	cfg.Headless = jc.Headless
	cfg.Lang = jc.Lang
	cfg.Geo = jc.Geo
	cfg.Proxy = jc.Proxy
	cfg.VerboseNotifs = jc.VerboseNotifs
	cfg.NotifyURL = jc.NotifyURL
	cfg.Engine = jc.Engine
	cfg.EngineEndpoint = jc.EngineEndpoint
	cfg.LedgerDSN = jc.LedgerDSN
	cfg.PauseMin = jc.PauseMin.Duration
	cfg.PauseMax = jc.PauseMax.Duration
	cfg.S3RootUser = jc.S3RootUser
	cfg.S3RootPassword = jc.S3RootPassword
	cfg.S3Bucket = jc.S3Bucket
	cfg.S3Region = jc.S3Region
	cfg.S3BaseEndpoint = jc.S3BaseEndpoint
	cfg.S3Prefix = jc.S3Prefix
}
