// Package referee solves instances in-process with gophersat so a disagreement
// between two external solvers can be attributed to one of them.
package referee

import (
	"context"
	"fmt"
	"os"

	"github.com/crillab/gophersat/solver"
	"github.com/limaJavier/satfuzz/pkg/sat"
	"github.com/limaJavier/satfuzz/pkg/status"
	"go.uber.org/zap"
)

type Gophersat struct {
	logger *zap.Logger
}

func NewGophersat(logger *zap.Logger) *Gophersat {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gophersat{logger: logger}
}

type decision struct {
	verdict status.Verdict
	err     error
}

// Decide solves the instance stored at path. gophersat cannot be interrupted:
// when ctx ends first the search keeps running in the background and its result
// is discarded.
func (referee *Gophersat) Decide(ctx context.Context, path string) (status.Verdict, error) {
	decided := make(chan decision, 1)
	go func() {
		verdict, err := referee.solve(path)
		decided <- decision{verdict: verdict, err: err}
	}()

	select {
	case <-ctx.Done():
		referee.logger.Warn("Referee gave up", zap.String("instance", path), zap.Error(ctx.Err()))
		return status.Indeterminate, fmt.Errorf("referee: %w", ctx.Err())
	case result := <-decided:
		return result.verdict, result.err
	}
}

func (referee *Gophersat) solve(path string) (verdict status.Verdict, err error) {
	defer func() {
		if r := recover(); r != nil {
			verdict, err = status.Indeterminate, fmt.Errorf("referee panicked on %v: %v", path, r)
		}
	}()

	file, err := os.Open(path)
	if err != nil {
		return status.Indeterminate, fmt.Errorf("cannot open instance: %w", err)
	}
	defer file.Close()

	problem, err := solver.ParseCNF(file)
	if err != nil {
		return status.Indeterminate, fmt.Errorf("referee cannot parse instance: %w", err)
	}

	s := solver.New(problem)
	switch s.Solve() {
	case solver.Sat:
		if err := referee.check(path, s.Model()); err != nil {
			return status.Indeterminate, err
		}
		return status.Sat, nil
	case solver.Unsat:
		return status.Unsat, nil
	default:
		return status.Indeterminate, nil
	}
}

// check verifies gophersat's own model before trusting its verdict.
func (referee *Gophersat) check(path string, model []bool) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("cannot open instance: %w", err)
	}
	defer file.Close()

	instance, err := sat.ParseDIMACS(file)
	if err != nil {
		return fmt.Errorf("cannot parse instance: %w", err)
	}

	solution := make(sat.SATSolution, 0, len(model))
	for i, value := range model {
		literal := int64(i + 1)
		if !value {
			literal = -literal
		}
		solution = append(solution, literal)
	}

	if err := sat.Verify(instance, solution); err != nil {
		return fmt.Errorf("referee produced an invalid model: %w", err)
	}
	return nil
}
