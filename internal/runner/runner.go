// Package runner executes solver binaries against instance files and derives
// their verdicts.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/limaJavier/satfuzz/pkg/status"
	"go.uber.org/zap"
)

var (
	ErrTimeout      = errors.New("solver timed out")
	ErrNotInvocable = errors.New("solver could not be invoked")
)

// Grace period for output pipes once the solver process is gone
const waitDelay = 2 * time.Second

type Solver struct {
	Name string
	Path string
	Args []string
}

// Label returns Name, or the executable's base name when Name is empty.
func (solver Solver) Label() string {
	if solver.Name != "" {
		return solver.Name
	}
	return filepath.Base(solver.Path)
}

// Command returns the full command line; the instance is always the last argument.
func (solver Solver) Command(instance string) []string {
	command := make([]string, 0, len(solver.Args)+2)
	command = append(command, solver.Path)
	command = append(command, solver.Args...)
	return append(command, instance)
}

// Result is the outcome of one solver invocation that ran to completion.
type Result struct {
	Solver   Solver
	Command  []string
	Stdout   string
	Stderr   string
	ExitCode int
	Elapsed  time.Duration
	Verdict  status.Verdict
}

type Runner struct {
	timeout time.Duration
	logger  *zap.Logger
}

func New(timeout time.Duration, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		timeout: timeout,
		logger:  logger,
	}
}

func (runner *Runner) Timeout() time.Duration {
	return runner.timeout
}

// Run executes solver on instance and waits at most the runner's timeout.
// A non-zero exit code is not an error: solvers conventionally exit with 10
// for SAT and 20 for UNSAT. The verdict is read from standard output only.
func (runner *Runner) Run(ctx context.Context, solver Solver, instance string) (*Result, error) {
	if runner.timeout <= 0 {
		return nil, fmt.Errorf("invalid solver timeout %v", runner.timeout)
	}

	ctx, cancel := context.WithTimeout(ctx, runner.timeout)
	defer cancel()

	command := solver.Command(instance)
	cmd := exec.CommandContext(ctx, command[0], command[1:]...)
	setupProcessGroup(cmd)
	cmd.Cancel = func() error { return killProcessGroup(cmd) }
	cmd.WaitDelay = waitDelay

	var stdOut bytes.Buffer
	cmd.Stdout = &stdOut
	var stdErr bytes.Buffer
	cmd.Stderr = &stdErr

	runner.logger.Debug("Running solver",
		zap.String("solver", solver.Label()),
		zap.String("command", strings.Join(command, " ")),
		zap.Duration("timeout", runner.timeout))

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)

	if ctxErr := ctx.Err(); ctxErr != nil {
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			runner.logger.Warn("Solver timed out", zap.String("solver", solver.Label()), zap.Duration("elapsed", elapsed))
			return nil, fmt.Errorf("%w: %s did not finish within %v", ErrTimeout, solver.Label(), runner.timeout)
		}
		return nil, fmt.Errorf("running %s: %w", solver.Label(), ctxErr)
	}

	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) && !errors.Is(err, exec.ErrWaitDelay) {
		return nil, fmt.Errorf("%w: %s: %v", ErrNotInvocable, solver.Path, err)
	}

	result := &Result{
		Solver:   solver,
		Command:  command,
		Stdout:   stdOut.String(),
		Stderr:   stdErr.String(),
		ExitCode: cmd.ProcessState.ExitCode(),
		Elapsed:  elapsed,
		Verdict:  status.Extract(stdOut.String()),
	}

	runner.logger.Debug("Solver finished",
		zap.String("solver", solver.Label()),
		zap.Int("exitCode", result.ExitCode),
		zap.Duration("elapsed", elapsed),
		zap.Stringer("verdict", result.Verdict))

	return result, nil
}
