// Package report prints what the trial loop does for the operator: every
// solver's raw output, the derived verdicts, the retained instance and a final
// summary.
package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/limaJavier/satfuzz/internal/compare"
	"github.com/limaJavier/satfuzz/internal/fuzz"
	"github.com/limaJavier/satfuzz/internal/runner"
	"github.com/samber/lo"
)

type Console struct {
	out io.Writer
}

func NewConsole(out io.Writer) *Console {
	return &Console{out: out}
}

func (console *Console) TrialStarted(trial int, _ string) {
	fmt.Fprintf(console.out, "\n--- Iteration %d ---\n", trial)
}

func (console *Console) InstanceWritten(instance string) {
	fmt.Fprintf(console.out, "Instance written to %s\n", instance)
}

func (console *Console) SolverStarted(solver runner.Solver, command []string) {
	fmt.Fprintf(console.out, "Running %s: %s\n", solver.Label(), strings.Join(command, " "))
}

func (console *Console) SolverFinished(result *runner.Result) {
	label := result.Solver.Label()
	fmt.Fprintf(console.out, "%s output:\n%s\n", label, strings.TrimRight(result.Stdout, "\n"))
	if result.Stderr != "" {
		fmt.Fprintf(console.out, "%s errors:\n%s\n", label, strings.TrimRight(result.Stderr, "\n"))
	}
	fmt.Fprintf(console.out, "%s verdict: %v (exit code %d, %v)\n", label, result.Verdict, result.ExitCode, result.Elapsed.Round(time.Millisecond))
}

func (console *Console) TrialFinished(outcome fuzz.Outcome, comparison *compare.Comparison) {
	if comparison != nil && len(comparison.Results) > 1 {
		fmt.Fprintf(console.out, "\nComparison: %s\n", strings.Join(lo.Map(comparison.Results, func(result *runner.Result, _ int) string {
			return fmt.Sprintf("%s = %v", result.Solver.Label(), result.Verdict)
		}), ", "))
	}

	switch outcome.Kind {
	case fuzz.Agreement:
		if len(outcome.Verdicts) > 1 {
			fmt.Fprintln(console.out, "Both solvers agree. Deleting the instance.")
		} else {
			fmt.Fprintln(console.out, "Only one solver used. Deleting the instance.")
		}
	case fuzz.Disagreement:
		fmt.Fprintln(console.out, "Disagreement: solvers returned different results!")
		if comparison != nil && comparison.Referee != nil {
			console.referee(comparison.Referee)
		}
	case fuzz.InvalidModel:
		fmt.Fprintf(console.out, "Invalid model: %v\n", outcome.Err)
	default:
		fmt.Fprintf(console.out, "Error occurred (%v): %v\n", outcome.Kind, outcome.Err)
	}

	if outcome.Retained != "" {
		fmt.Fprintf(console.out, "Instance kept at: %s\n", outcome.Retained)
	}
}

func (console *Console) referee(decision *compare.RefereeDecision) {
	if decision.Err != nil {
		fmt.Fprintf(console.out, "Referee could not decide: %v\n", decision.Err)
		return
	}
	fmt.Fprintf(console.out, "Referee (gophersat) verdict: %v\n", decision.Verdict)
}

func (console *Console) Finished(summary fuzz.Summary) {
	if summary.Completed() {
		fmt.Fprintf(console.out, "\nCompleted %d iteration(s) with no disagreements.\n", summary.Trials)
		return
	}
	fmt.Fprintf(console.out, "\nStopped after %d iteration(s) due to disagreement or error.\n", summary.Trials)
}
