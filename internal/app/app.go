// Package app wires the farmer together: logging, account store, engine,
// ledger, notifier, batch driver and signal handling.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/pointsfarmer/internal/accounts"
	"github.com/dmitrijs2005/pointsfarmer/internal/backup"
	"github.com/dmitrijs2005/pointsfarmer/internal/config"
	"github.com/dmitrijs2005/pointsfarmer/internal/engine"
	"github.com/dmitrijs2005/pointsfarmer/internal/engine/remote"
	"github.com/dmitrijs2005/pointsfarmer/internal/engine/sim"
	"github.com/dmitrijs2005/pointsfarmer/internal/filex"
	"github.com/dmitrijs2005/pointsfarmer/internal/ledger"
	"github.com/dmitrijs2005/pointsfarmer/internal/logging"
	"github.com/dmitrijs2005/pointsfarmer/internal/notify"
	"github.com/dmitrijs2005/pointsfarmer/internal/orchestrator"
	"github.com/dmitrijs2005/pointsfarmer/internal/runlog"
	"github.com/dmitrijs2005/pointsfarmer/internal/session"
)

const (
	ledgerFileName  = "previous_points_data.json"
	runLogFileName  = "points_data.csv"
	activityLogName = "activity.log"
)

type App struct {
	config   *config.Config
	logger   logging.Logger
	accounts []accounts.Account
	engine   engine.Engine
	batch    *orchestrator.Batch
	uploader *backup.Uploader

	stateDir    string
	logFile     *os.File
	closeLedger func() error
}

// NewApp builds the full object graph. Any error here is a catastrophic
// startup failure; the process should exit nonzero.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	stateDir, err := filex.EnsureDir(cfg.StateDir)
	if err != nil {
		return nil, fmt.Errorf("state dir: %w", err)
	}

	logFile, err := os.OpenFile(filepath.Join(stateDir, activityLogName), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open activity log: %w", err)
	}

	notifier := buildNotifier(cfg)

	handlers := []slog.Handler{
		slog.NewJSONHandler(logFile, &slog.HandlerOptions{Level: slog.LevelDebug}),
		logging.NewConsoleHandler(os.Stdout, slog.LevelInfo),
	}
	if cfg.VerboseNotifs {
		handlers = append(handlers, newNotifyHandler(notifier))
	}

	runID := uuid.New().String()
	logger := logging.NewSlogLogger(slog.New(logging.NewFanoutHandler(handlers...))).With("run", runID)

	accts, err := accounts.Load(cfg.AccountsFile)
	if err != nil {
		_ = logFile.Close()
		return nil, fmt.Errorf("account store: %w", err)
	}

	eng, err := buildEngine(cfg)
	if err != nil {
		_ = logFile.Close()
		return nil, err
	}

	store, closeLedger, err := buildLedger(ctx, cfg, stateDir)
	if err != nil {
		_ = logFile.Close()
		return nil, err
	}

	opts := session.Options{
		Lang:     cfg.Lang,
		Geo:      cfg.Geo,
		Proxy:    cfg.Proxy,
		Headless: cfg.Headless,
	}

	orch := orchestrator.New(eng, notifier, logger, opts, cfg.PauseMin, cfg.PauseMax)
	batch := orchestrator.NewBatch(orch, store, runlog.NewWriter(filepath.Join(stateDir, runLogFileName)), notifier, logger)

	app := &App{
		config:      cfg,
		logger:      logger,
		accounts:    accts,
		engine:      eng,
		batch:       batch,
		stateDir:    stateDir,
		logFile:     logFile,
		closeLedger: closeLedger,
	}

	if cfg.S3Bucket != "" {
		uploader, err := backup.New(ctx, backup.Settings{
			RootUser:     cfg.S3RootUser,
			RootPassword: cfg.S3RootPassword,
			Bucket:       cfg.S3Bucket,
			Region:       cfg.S3Region,
			BaseEndpoint: cfg.S3BaseEndpoint,
			Prefix:       cfg.S3Prefix,
		})
		if err != nil {
			_ = logFile.Close()
			return nil, fmt.Errorf("backup: %w", err)
		}
		app.uploader = uploader
	}

	return app, nil
}

func buildNotifier(cfg *config.Config) notify.Notifier {
	if cfg.NotifyURL == "" {
		return notify.Noop{}
	}
	return notify.NewWebhook(cfg.NotifyURL)
}

func buildEngine(cfg *config.Config) (engine.Engine, error) {
	switch cfg.Engine {
	case config.EngineSim:
		return sim.New(time.Now().UnixNano()), nil
	case config.EngineRemote:
		return remote.New(cfg.EngineEndpoint), nil
	default:
		return nil, fmt.Errorf("unknown engine %q", cfg.Engine)
	}
}

func buildLedger(ctx context.Context, cfg *config.Config, stateDir string) (ledger.Store, func() error, error) {
	if cfg.LedgerDSN != "" {
		store, err := ledger.NewPostgresStore(ctx, cfg.LedgerDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("ledger db: %w", err)
		}
		return store, store.Close, nil
	}
	return ledger.NewFileStore(filepath.Join(stateDir, ledgerFileName)), nil, nil
}

// Run executes one batch. The returned error only reflects the final
// persistence step; per-account problems never surface here.
func (app *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	app.initSignalHandler(cancel)

	defer app.teardown(ctx)

	app.logger.Info(ctx, "starting batch", "accounts", len(app.accounts), "engine", app.config.Engine)

	accounts.Shuffle(app.accounts)

	summary, err := app.batch.Run(ctx, app.accounts)
	if err != nil {
		// loud, but not an exit-code matter: only startup failures change
		// the exit code
		app.logger.Error(ctx, "batch finished with persistence error", "error", err)
	}

	app.logger.Info(ctx, "batch finished",
		"processed", summary.Processed,
		"blocked", summary.Blocked,
		"failed", summary.Failed,
		"points", summary.TotalPoints,
		"difference", summary.Difference,
	)

	app.backupState(ctx)
}

func (app *App) backupState(ctx context.Context) {
	if app.uploader == nil {
		return
	}
	for _, name := range []string{ledgerFileName, runLogFileName} {
		path := filepath.Join(app.stateDir, name)
		if err := app.uploader.UploadFile(ctx, path); err != nil {
			app.logger.Warn(ctx, "backup upload failed", "file", name, "error", err)
		}
	}
}

func (app *App) teardown(ctx context.Context) {
	if err := app.engine.Cleanup(ctx); err != nil {
		app.logger.Warn(ctx, "engine cleanup failed", "error", err)
	}
	if app.closeLedger != nil {
		if err := app.closeLedger(); err != nil {
			app.logger.Warn(ctx, "ledger close failed", "error", err)
		}
	}
	_ = app.logFile.Close()
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}
