package fuzz

import "github.com/limaJavier/satfuzz/pkg/status"

type OutcomeKind int

const (
	Agreement OutcomeKind = iota
	Disagreement
	InvalidModel
	ProducerFailure
	SolverFailure
	HarnessFailure
)

func (kind OutcomeKind) String() string {
	switch kind {
	case Agreement:
		return "agreement"
	case Disagreement:
		return "disagreement"
	case InvalidModel:
		return "invalid-model"
	case ProducerFailure:
		return "producer-failure"
	case SolverFailure:
		return "solver-failure"
	default:
		return "harness-failure"
	}
}

// Retain reports whether an instance must survive a trial ending with kind.
// Only agreement releases the instance.
func (kind OutcomeKind) Retain() bool {
	return kind != Agreement
}

// State is the loop state reached after a trial with this outcome.
func (kind OutcomeKind) State() State {
	switch kind {
	case Agreement:
		return Continue
	case Disagreement, InvalidModel:
		return StoppedDisagreement
	default:
		return StoppedError
	}
}

// Outcome describes one finished trial. Instance is empty when the failure
// happened before an instance could be allocated; Retained is empty when the
// instance was deleted.
type Outcome struct {
	Trial    int
	Kind     OutcomeKind
	Instance string
	Verdicts []status.Verdict
	Retained string
	Err      error
}

func (outcome Outcome) Agreed() bool {
	return outcome.Kind == Agreement
}

type State int

const (
	Running State = iota
	Continue
	StoppedDisagreement
	StoppedError
	Completed
)

func (state State) String() string {
	switch state {
	case Running:
		return "RUNNING"
	case Continue:
		return "CONTINUE"
	case StoppedDisagreement:
		return "STOPPED_DISAGREEMENT"
	case StoppedError:
		return "STOPPED_ERROR"
	default:
		return "COMPLETED"
	}
}

// Summary is the terminal report of a loop run.
type Summary struct {
	State  State
	Trials int
	Max    int
	// Last is the outcome of the final trial, nil when no trial ran.
	Last *Outcome
}

func (summary Summary) Completed() bool {
	return summary.State == Completed
}
