package poller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/amishk599/jobsweep/internal/coordinator"
	"github.com/amishk599/jobsweep/internal/model"
)

// ErrNoSourceSucceeded is returned when every enabled source failed.
var ErrNoSourceSucceeded = errors.New("no source succeeded")

// Runner is the part of the coordinator a poll cycle needs.
type Runner interface {
	Run(ctx context.Context, f model.JobFilter) coordinator.Result
}

// Poller owns the daemon cycle:
// run pipeline → store candidates → notify new → prune old.
type Poller struct {
	runner    Runner
	filter    model.JobFilter
	store     model.CandidateStore
	notifier  model.Notifier
	retention time.Duration // zero disables pruning
	logger    *slog.Logger
}

// New creates a poller wired with all its dependencies.
func New(
	runner Runner,
	filter model.JobFilter,
	store model.CandidateStore,
	notifier model.Notifier,
	retention time.Duration,
	logger *slog.Logger,
) *Poller {
	return &Poller{
		runner:    runner,
		filter:    filter,
		store:     store,
		notifier:  notifier,
		retention: retention,
		logger:    logger,
	}
}

// Poll runs one cycle. Only candidates the store has not seen before are
// sent to the notifier. A notification failure is logged, not returned:
// the candidates are already stored.
func (p *Poller) Poll(ctx context.Context) error {
	res := p.runner.Run(ctx, p.filter)
	r := res.Report
	if len(r.Sources) > 0 && len(r.SourceErrors) == len(r.Sources) {
		return ErrNoSourceSucceeded
	}

	fresh, err := p.store.SaveCandidates(ctx, res.Jobs)
	if err != nil {
		return fmt.Errorf("run %s: saving candidates: %w", res.RunID, err)
	}

	if len(fresh) > 0 {
		if err := p.notifier.Notify(fresh); err != nil {
			p.logger.Error("notification failed", "run_id", res.RunID, "error", err)
		}
	}

	if p.retention > 0 {
		if err := p.store.Cleanup(p.retention); err != nil {
			p.logger.Warn("candidate cleanup failed", "error", err)
		}
	}

	p.logger.Info("polled sources",
		"run_id", res.RunID,
		"fetched", r.Fetched,
		"returned", len(res.Jobs),
		"new", len(fresh),
	)
	return nil
}
