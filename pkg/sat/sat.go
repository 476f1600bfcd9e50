// Package sat models CNF instances in the DIMACS format together with the
// assignments solvers report for them.
package sat

import (
	"fmt"
	"strings"
)

// SATSolution is a list of signed literals, one per assigned variable.
type SATSolution []int64

type SAT struct {
	Variables uint64
	Clauses   [][]int64
}

func (s SAT) ToDIMACS() string {
	var builder strings.Builder
	fmt.Fprintf(&builder, "p cnf %d %d\n", s.Variables, len(s.Clauses))
	for _, clause := range s.Clauses {
		for _, literal := range clause {
			fmt.Fprintf(&builder, "%d ", literal)
		}
		builder.WriteString("0\n")
	}
	return builder.String()
}

// Verify checks that solution is a consistent assignment satisfying every clause of s.
func Verify(s SAT, solution SATSolution) error {
	// Make sure there are no duplicates nor contradictions
	literals := make(map[int64]bool, len(solution))
	for _, literal := range solution {
		if literal == 0 || uint64(abs(literal)) > s.Variables {
			return fmt.Errorf("literal %d is out of range for %d variables", literal, s.Variables)
		} else if literals[-literal] {
			return fmt.Errorf("variable %d is assigned both values", abs(literal))
		} else if literals[literal] {
			return fmt.Errorf("literal %d is assigned twice", literal)
		}
		literals[literal] = true
	}

	// Check that all clauses are satisfied
	for i, clause := range s.Clauses {
		satisfied := false
		for _, literal := range clause {
			if literals[literal] {
				satisfied = true
				break
			}
		}
		if !satisfied {
			return fmt.Errorf("clause %d %v is not satisfied", i+1, clause)
		}
	}

	return nil
}

func abs(literal int64) int64 {
	if literal < 0 {
		return -literal
	}
	return literal
}
