package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/limaJavier/satfuzz/internal/compare"
	"github.com/limaJavier/satfuzz/internal/fuzz"
	"github.com/limaJavier/satfuzz/internal/runner"
	"github.com/limaJavier/satfuzz/pkg/status"
	"github.com/samber/lo"
)

var csvHeader = []string{"Run", "Trial", "Outcome", "Verdicts", "Elapsed(ms)", "Retained", "Error"}

// CSV logs one record per trial.
type CSV struct {
	writer *csv.Writer
	runID  string
	err    error
}

// NewCSV writes the header row only when header is set, so several runs can
// append to one file.
func NewCSV(out io.Writer, runID string, header bool) *CSV {
	recorder := &CSV{writer: csv.NewWriter(out), runID: runID}
	if header {
		recorder.write(csvHeader)
	}
	return recorder
}

// Err returns the first write error, if any.
func (recorder *CSV) Err() error {
	return recorder.err
}

func (recorder *CSV) TrialFinished(outcome fuzz.Outcome, comparison *compare.Comparison) {
	elapsed := ""
	if comparison != nil {
		elapsed = strings.Join(lo.Map(comparison.Results, func(result *runner.Result, _ int) string {
			return fmt.Sprintf("%d", result.Elapsed.Milliseconds())
		}), "/")
	}
	errorText := ""
	if outcome.Err != nil {
		errorText = outcome.Err.Error()
	}

	recorder.write([]string{
		recorder.runID,
		fmt.Sprintf("%d", outcome.Trial),
		outcome.Kind.String(),
		strings.Join(lo.Map(outcome.Verdicts, func(verdict status.Verdict, _ int) string { return verdict.String() }), "/"),
		elapsed,
		outcome.Retained,
		errorText,
	})
}

func (recorder *CSV) write(record []string) {
	if recorder.err != nil {
		return
	}
	if err := recorder.writer.Write(record); err != nil {
		recorder.err = fmt.Errorf("cannot write CSV record: %w", err)
		return
	}
	recorder.writer.Flush()
	recorder.err = recorder.writer.Error()
}

func (recorder *CSV) SolverStarted(runner.Solver, []string) {}
func (recorder *CSV) SolverFinished(*runner.Result)         {}
func (recorder *CSV) TrialStarted(int, string)              {}
func (recorder *CSV) InstanceWritten(string)                {}
func (recorder *CSV) Finished(fuzz.Summary)                 {}
