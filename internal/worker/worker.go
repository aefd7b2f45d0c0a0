package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"golang.org/x/sync/errgroup"

	"github.com/veritabl/scorer/internal/domain"
	"github.com/veritabl/scorer/internal/service"
)

var tracer = otel.Tracer("worker")

// PassportSource is the flagged-passport index the worker drains.
type PassportSource interface {
	ListFlagged(ctx context.Context, limit int) ([]uint64, error)
	Get(ctx context.Context, id uint64) (domain.Passport, error)
}

// StampSource provides a passport's current stamps.
type StampSource interface {
	List(ctx context.Context, passportID uint64) ([]domain.Stamp, error)
}

// ScoreStore is the claim/resolve side of the score lifecycle. The token
// returned by Claim must be handed back on resolve; a mismatch means the
// claim was taken over as stale and the result must be discarded.
type ScoreStore interface {
	Claim(ctx context.Context, passportID uint64) (uint64, bool, error)
	Finalize(ctx context.Context, passportID uint64, claim uint64, result domain.CalculationResult) error
	Fail(ctx context.Context, passportID uint64, claim uint64, reason string) error
}

// Worker drains passports flagged for recalculation: claim, compute, resolve.
// It runs a pass on every tick and on every wakeup, and keeps scanning until
// the flagged set is empty, so a trigger landing mid-pass is picked up by the
// same run.
type Worker struct {
	passports   PassportSource
	stamps      StampSource
	scores      ScoreStore
	calculator  service.Calculator
	wake        <-chan struct{}
	interval    time.Duration
	batchSize   int
	concurrency int
}

func New(
	passports PassportSource,
	stamps StampSource,
	scores ScoreStore,
	calculator service.Calculator,
	wake <-chan struct{},
	interval time.Duration,
	batchSize int,
	concurrency int,
) *Worker {
	if interval <= 0 {
		interval = time.Minute
	}
	if batchSize <= 0 {
		batchSize = 100
	}
	if concurrency <= 0 {
		concurrency = 4
	}
	return &Worker{
		passports:   passports,
		stamps:      stamps,
		scores:      scores,
		calculator:  calculator,
		wake:        wake,
		interval:    interval,
		batchSize:   batchSize,
		concurrency: concurrency,
	}
}

func (w *Worker) Run(ctx context.Context) error {
	w.drain(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.drain(ctx)
		case <-w.wake:
			w.drain(ctx)
		}
	}
}

// drain keeps scanning for flagged passports until a scan comes back empty.
func (w *Worker) drain(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}

		ids, err := w.passports.ListFlagged(ctx, w.batchSize)
		if err != nil {
			slog.Error("listing flagged passports failed", "error", err)
			return
		}
		if len(ids) == 0 {
			return
		}

		processed := w.processBatch(ctx, ids)
		if processed == 0 {
			// Everything left is in flight elsewhere; wait for the next
			// tick instead of spinning on the same ids.
			return
		}
	}
}

func (w *Worker) processBatch(ctx context.Context, ids []uint64) int {
	results := make(chan bool, len(ids))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(w.concurrency)
	for _, id := range ids {
		id := id
		group.Go(func() error {
			claimed := w.process(groupCtx, id)
			results <- claimed
			return nil
		})
	}
	_ = group.Wait()
	close(results)

	processed := 0
	for claimed := range results {
		if claimed {
			processed++
		}
	}
	return processed
}

// process runs one recalculation cycle for a passport. Returns whether the
// claim succeeded; claim failure means the passport was resolved by another
// worker or is still in flight.
func (w *Worker) process(ctx context.Context, passportID uint64) bool {
	ctx, span := tracer.Start(ctx, "Worker.Process")
	defer span.End()

	claim, claimed, err := w.scores.Claim(ctx, passportID)
	if err != nil {
		span.RecordError(errors.Wrap(err, "claim failed"))
		slog.Error("claiming passport failed", "passport", passportID, "error", err)
		return false
	}
	if !claimed {
		return false
	}

	passport, err := w.passports.Get(ctx, passportID)
	if err != nil {
		w.fail(ctx, passportID, claim, err)
		return true
	}

	stamps, err := w.stamps.List(ctx, passportID)
	if err != nil {
		w.fail(ctx, passportID, claim, err)
		return true
	}

	result, err := w.calculator.Calculate(ctx, passport, stamps)
	if err != nil {
		w.fail(ctx, passportID, claim, err)
		return true
	}

	if err := w.scores.Finalize(ctx, passportID, claim, result); err != nil {
		span.RecordError(errors.Wrap(err, "finalize failed"))
		slog.Error("finalizing score failed", "passport", passportID, "error", err)
		return true
	}

	slog.Info("score resolved", "passport", passport.ID, "address", passport.Address, "score", result.Score.String())
	return true
}

// fail records the failure on the score row. The triggering client has long
// since been answered; the ERROR status is how the outcome surfaces.
func (w *Worker) fail(ctx context.Context, passportID uint64, claim uint64, cause error) {
	if err := w.scores.Fail(ctx, passportID, claim, cause.Error()); err != nil {
		slog.Error("recording score failure failed", "passport", passportID, "error", err, "cause", cause)
		return
	}
	slog.Warn("score calculation failed", "passport", passportID, "error", cause)
}
