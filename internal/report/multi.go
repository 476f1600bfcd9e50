package report

import (
	"github.com/limaJavier/satfuzz/internal/compare"
	"github.com/limaJavier/satfuzz/internal/fuzz"
	"github.com/limaJavier/satfuzz/internal/runner"
)

// Multi forwards every event to each reporter in order.
type Multi []fuzz.Reporter

func (reporters Multi) SolverStarted(solver runner.Solver, command []string) {
	for _, reporter := range reporters {
		reporter.SolverStarted(solver, command)
	}
}

func (reporters Multi) SolverFinished(result *runner.Result) {
	for _, reporter := range reporters {
		reporter.SolverFinished(result)
	}
}

func (reporters Multi) TrialStarted(trial int, instance string) {
	for _, reporter := range reporters {
		reporter.TrialStarted(trial, instance)
	}
}

func (reporters Multi) InstanceWritten(instance string) {
	for _, reporter := range reporters {
		reporter.InstanceWritten(instance)
	}
}

func (reporters Multi) TrialFinished(outcome fuzz.Outcome, comparison *compare.Comparison) {
	for _, reporter := range reporters {
		reporter.TrialFinished(outcome, comparison)
	}
}

func (reporters Multi) Finished(summary fuzz.Summary) {
	for _, reporter := range reporters {
		reporter.Finished(summary)
	}
}
