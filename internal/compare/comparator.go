// Package compare runs one or two solvers on the same instance and decides
// whether their verdicts agree.
package compare

import (
	"context"
	"fmt"
	"os"

	"github.com/limaJavier/satfuzz/internal/runner"
	"github.com/limaJavier/satfuzz/pkg/sat"
	"github.com/limaJavier/satfuzz/pkg/status"
	"go.uber.org/zap"
)

// Observer receives every solver's output whether or not the solvers agree.
type Observer interface {
	SolverStarted(solver runner.Solver, command []string)
	SolverFinished(result *runner.Result)
}

// Referee gives an independent verdict on an instance the solvers disagree on.
type Referee interface {
	Decide(ctx context.Context, instance string) (status.Verdict, error)
}

type RefereeDecision struct {
	Verdict status.Verdict
	Err     error
}

type Comparison struct {
	Results  []*runner.Result
	Verdicts []status.Verdict
	// Agree is always true when a single solver is configured.
	Agree bool
	// InvalidModel is set when a solver claimed SAT with an assignment that
	// does not satisfy the instance. Only checked with model verification on.
	InvalidModel error
	// Referee is nil unless the solvers disagreed and a referee is configured.
	Referee *RefereeDecision
}

type Comparator struct {
	runner       *runner.Runner
	primary      runner.Solver
	secondary    *runner.Solver
	verifyModels bool
	referee      Referee
	observer     Observer
	logger       *zap.Logger
}

type Option func(*Comparator)

func WithSecondary(solver runner.Solver) Option {
	return func(comparator *Comparator) { comparator.secondary = &solver }
}

func WithModelVerification() Option {
	return func(comparator *Comparator) { comparator.verifyModels = true }
}

func WithReferee(referee Referee) Option {
	return func(comparator *Comparator) { comparator.referee = referee }
}

func WithObserver(observer Observer) Option {
	return func(comparator *Comparator) { comparator.observer = observer }
}

func WithLogger(logger *zap.Logger) Option {
	return func(comparator *Comparator) { comparator.logger = logger }
}

func New(runner *runner.Runner, primary runner.Solver, options ...Option) *Comparator {
	comparator := &Comparator{
		runner:   runner,
		primary:  primary,
		observer: nopObserver{},
		logger:   zap.NewNop(),
	}
	for _, option := range options {
		option(comparator)
	}
	return comparator
}

func (comparator *Comparator) Solvers() []runner.Solver {
	if comparator.secondary == nil {
		return []runner.Solver{comparator.primary}
	}
	return []runner.Solver{comparator.primary, *comparator.secondary}
}

// Compare runs the primary solver and then, if configured, the secondary one.
// Any solver failure (timeout, missing executable) aborts the comparison.
func (comparator *Comparator) Compare(ctx context.Context, instance string) (*Comparison, error) {
	comparison := &Comparison{}

	for _, solver := range comparator.Solvers() {
		comparator.observer.SolverStarted(solver, solver.Command(instance))

		result, err := comparator.runner.Run(ctx, solver, instance)
		if err != nil {
			return nil, fmt.Errorf("solver %v: %w", solver.Label(), err)
		}
		comparator.observer.SolverFinished(result)

		comparison.Results = append(comparison.Results, result)
		comparison.Verdicts = append(comparison.Verdicts, result.Verdict)
	}

	comparison.Agree = len(comparison.Verdicts) == 1 || comparison.Verdicts[0] == comparison.Verdicts[1]

	if comparator.verifyModels {
		invalid, err := comparator.verify(instance, comparison.Results)
		if err != nil {
			return nil, err
		}
		comparison.InvalidModel = invalid
	}

	if !comparison.Agree && comparator.referee != nil {
		refereeCtx, cancel := context.WithTimeout(ctx, comparator.runner.Timeout())
		defer cancel()

		verdict, err := comparator.referee.Decide(refereeCtx, instance)
		comparison.Referee = &RefereeDecision{Verdict: verdict, Err: err}
		comparator.logger.Info("Referee decided", zap.String("instance", instance), zap.Stringer("verdict", verdict), zap.Error(err))
	}

	return comparison, nil
}

// verify checks the "v" line assignment of every SAT result against the
// instance. Results without "v" lines are skipped.
func (comparator *Comparator) verify(instance string, results []*runner.Result) (invalid error, err error) {
	var parsed *sat.SAT

	for _, result := range results {
		if result.Verdict != status.Sat {
			continue
		}

		solution, found, err := sat.ParseSolution(result.Stdout)
		if !found {
			comparator.logger.Debug("No model to verify", zap.String("solver", result.Solver.Label()))
			continue
		} else if err != nil {
			return fmt.Errorf("%v printed a malformed model: %w", result.Solver.Label(), err), nil
		}

		if parsed == nil {
			instanceSAT, err := readInstance(instance)
			if err != nil {
				return nil, err
			}
			parsed = &instanceSAT
		}

		if err := sat.Verify(*parsed, solution); err != nil {
			return fmt.Errorf("%v reported an invalid model: %w", result.Solver.Label(), err), nil
		}
	}

	return nil, nil
}

func readInstance(path string) (sat.SAT, error) {
	file, err := os.Open(path)
	if err != nil {
		return sat.SAT{}, fmt.Errorf("cannot open instance for model verification: %w", err)
	}
	defer file.Close()

	instance, err := sat.ParseDIMACS(file)
	if err != nil {
		return sat.SAT{}, fmt.Errorf("cannot parse instance for model verification: %w", err)
	}
	return instance, nil
}

type nopObserver struct{}

func (nopObserver) SolverStarted(runner.Solver, []string) {}
func (nopObserver) SolverFinished(*runner.Result)         {}
