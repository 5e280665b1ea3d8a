package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/pointsfarmer/internal/accounts"
	"github.com/dmitrijs2005/pointsfarmer/internal/ledger"
	"github.com/dmitrijs2005/pointsfarmer/internal/logging"
	"github.com/dmitrijs2005/pointsfarmer/internal/notify"
	"github.com/dmitrijs2005/pointsfarmer/internal/runlog"
)

// Processor produces one account's final balance. Satisfied by
// *Orchestrator; an interface so batch tests can fake it.
type Processor interface {
	Process(ctx context.Context, acct accounts.Account) (int64, error)
}

// Summary aggregates one batch invocation.
type Summary struct {
	Processed   int
	Failed      int
	Blocked     int
	TotalPoints int64
	Difference  int64
}

// Batch iterates the account list, isolates per-account failures, appends
// the day's Run Record and persists the updated ledger.
type Batch struct {
	processor Processor
	ledger    ledger.Store
	runlog    *runlog.Writer
	notifier  notify.Notifier
	logger    logging.Logger

	// now is a seam so tests control the Run Record date
	now func() time.Time
}

func NewBatch(p Processor, store ledger.Store, log *runlog.Writer, notifier notify.Notifier, logger logging.Logger) *Batch {
	return &Batch{
		processor: p,
		ledger:    store,
		runlog:    log,
		notifier:  notifier,
		logger:    logger,
		now:       time.Now,
	}
}

// Run processes every account in order. One account's failure never
// prevents the next from being processed: the error is logged, notified
// best-effort, and the account keeps its previous ledger value so the next
// day's delta is not poisoned.
//
// A ledger snapshot that cannot be loaded aborts the batch before any
// session is opened; a snapshot that cannot be saved is surfaced loudly
// after the accounts have run.
func (b *Batch) Run(ctx context.Context, accts []accounts.Account) (Summary, error) {
	snapshot, err := b.ledger.Load(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("load ledger: %w", err)
	}

	start := b.now()
	var sum Summary

	for _, acct := range accts {
		balance, err := b.processOne(ctx, acct)
		if err != nil {
			sum.Failed++
			b.logger.Error(ctx, "account processing failed", "account", acct.Key(), "error", err)
			b.notifyBestEffort(ctx, "⚠️ Error occurred, please check the log", fmt.Sprintf("%T: %v", err, err))
			continue
		}

		if balance == 0 {
			// blocked account (locked / needs verification); it keeps its
			// previous ledger value
			sum.Blocked++
			continue
		}

		diff := ledger.Diff(snapshot, acct.Key(), balance)
		snapshot[acct.Key()] = balance
		sum.Processed++
		sum.TotalPoints += balance
		sum.Difference += diff
		b.logger.Info(ctx, "account appended to the points data", "account", acct.Key(), "balance", balance, "difference", diff)
	}

	record := runlog.Record{Date: start, EarnedPoints: sum.TotalPoints, PointsDifference: sum.Difference}
	if err := b.runlog.Append(record); err != nil {
		b.logger.Error(ctx, "run record append failed", "error", err)
	}

	if err := b.ledger.Save(ctx, snapshot); err != nil {
		b.logger.Error(ctx, "ledger save failed, next-day deltas are at risk", "error", err)
		b.notifyBestEffort(ctx, "⚠️ Failed to save points ledger", err.Error())
		return sum, fmt.Errorf("save ledger: %w", err)
	}
	b.logger.Info(ctx, "points data saved for the next day")

	return sum, nil
}

// processOne guards the processor: a panicking collaborator is converted
// into an account-level failure instead of taking down the batch.
func (b *Batch) processOne(ctx context.Context, acct accounts.Account) (balance int64, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic while processing account: %v", p)
		}
	}()

	return b.processor.Process(ctx, acct)
}

func (b *Batch) notifyBestEffort(ctx context.Context, title, body string) {
	if err := b.notifier.Send(ctx, title, body); err != nil {
		b.logger.Warn(ctx, "notification delivery failed", "title", title, "error", err)
	}
}
