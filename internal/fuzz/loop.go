// Package fuzz drives the generate, solve, compare and triage loop.
//
// Every trial allocates a fresh instance, fills it from the producer and hands
// it to the comparator. The instance is deleted when the solvers agree and kept
// on disk otherwise, and the first trial that does not end in agreement stops
// the loop.
package fuzz

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/limaJavier/satfuzz/internal/compare"
	"github.com/limaJavier/satfuzz/internal/producer"
	"github.com/limaJavier/satfuzz/internal/runner"
	"go.uber.org/zap"
)

// Reporter is told about every step of the loop. It also observes the
// comparator so raw solver output reaches the operator.
type Reporter interface {
	compare.Observer
	TrialStarted(trial int, instance string)
	// InstanceWritten follows TrialStarted once the producer filled the instance.
	InstanceWritten(instance string)
	// TrialFinished receives a nil comparison when the trial failed before
	// the solvers finished.
	TrialFinished(outcome Outcome, comparison *compare.Comparison)
	Finished(summary Summary)
}

type Loop struct {
	producer   producer.Producer
	comparator *compare.Comparator
	allocate   Allocator
	reporter   Reporter
	max        int
	logger     *zap.Logger
}

type LoopOption func(*Loop)

func WithReporter(reporter Reporter) LoopOption {
	return func(loop *Loop) { loop.reporter = reporter }
}

func WithLogger(logger *zap.Logger) LoopOption {
	return func(loop *Loop) { loop.logger = logger }
}

func NewLoop(producer producer.Producer, comparator *compare.Comparator, allocate Allocator, max int, options ...LoopOption) *Loop {
	loop := &Loop{
		producer:   producer,
		comparator: comparator,
		allocate:   allocate,
		reporter:   nopReporter{},
		max:        max,
		logger:     zap.NewNop(),
	}
	for _, option := range options {
		option(loop)
	}
	return loop
}

// Run executes at most max trials and stops at the first one that is not an
// agreement.
func (loop *Loop) Run(ctx context.Context) Summary {
	summary := Summary{State: Running, Max: loop.max}

	for trial := 1; trial <= loop.max; trial++ {
		outcome, comparison := loop.runTrial(ctx, trial)
		summary.Trials = trial
		summary.Last = &outcome

		loop.logger.Info("Trial finished",
			zap.Int("trial", trial),
			zap.Stringer("outcome", outcome.Kind),
			zap.Stringers("verdicts", outcome.Verdicts),
			zap.String("retained", outcome.Retained),
			zap.Error(outcome.Err))
		loop.reporter.TrialFinished(outcome, comparison)

		if state := outcome.Kind.State(); state != Continue {
			summary.State = state
			break
		}
	}

	if summary.State == Running {
		summary.State = Completed
	}
	loop.reporter.Finished(summary)
	return summary
}

func (loop *Loop) runTrial(ctx context.Context, trial int) (outcome Outcome, comparison *compare.Comparison) {
	outcome = Outcome{Trial: trial}
	var instance *Instance

	defer func() {
		if r := recover(); r != nil {
			outcome.Kind = HarnessFailure
			outcome.Err = fmt.Errorf("trial %d panicked: %v", trial, r)
		}
		loop.settle(instance, &outcome)
	}()

	instance, err := loop.allocate()
	if err != nil {
		outcome.Kind, outcome.Err = HarnessFailure, err
		return outcome, nil
	}
	outcome.Instance = instance.Path()
	loop.reporter.TrialStarted(trial, instance.Path())

	err = instance.Fill(func(w io.Writer) error {
		return loop.producer.Produce(ctx, w)
	})
	if err != nil {
		outcome.Kind, outcome.Err = ProducerFailure, err
		return outcome, nil
	}
	loop.reporter.InstanceWritten(instance.Path())

	comparison, err = loop.comparator.Compare(ctx, instance.Path())
	if err != nil {
		outcome.Kind, outcome.Err = failureKind(err), err
		return outcome, nil
	}
	outcome.Verdicts = comparison.Verdicts

	switch {
	case comparison.InvalidModel != nil:
		outcome.Kind, outcome.Err = InvalidModel, comparison.InvalidModel
	case !comparison.Agree:
		outcome.Kind = Disagreement
	default:
		outcome.Kind = Agreement
	}
	return outcome, comparison
}

// settle applies the retention policy of the outcome to the instance.
func (loop *Loop) settle(instance *Instance, outcome *Outcome) {
	if instance == nil {
		return
	}
	if outcome.Kind.Retain() {
		outcome.Retained = instance.Retain()
		return
	}
	if err := instance.Release(); err != nil {
		loop.logger.Warn("Failed to remove instance", zap.String("instance", instance.Path()), zap.Error(err))
	}
}

func failureKind(err error) OutcomeKind {
	if errors.Is(err, runner.ErrTimeout) || errors.Is(err, runner.ErrNotInvocable) {
		return SolverFailure
	}
	return HarnessFailure
}

type nopReporter struct{}

func (nopReporter) SolverStarted(runner.Solver, []string)      {}
func (nopReporter) SolverFinished(*runner.Result)              {}
func (nopReporter) TrialStarted(int, string)                   {}
func (nopReporter) InstanceWritten(string)                     {}
func (nopReporter) TrialFinished(Outcome, *compare.Comparison) {}
func (nopReporter) Finished(Summary)                           {}
