// Package status derives a solver's verdict from the text it printed.
//
// Solvers following the SAT competition output format report their result on a
// single "solution line" starting with the token "s", for instance
//
//	s SATISFIABLE
//	s UNSATISFIABLE
//
// Extract is a pure function over that text so it can be audited and tested
// without running any process.
package status

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/samber/lo"
)

type Verdict int

const (
	Indeterminate Verdict = iota
	Sat
	Unsat
)

func (verdict Verdict) String() string {
	switch verdict {
	case Sat:
		return "SAT"
	case Unsat:
		return "UNSAT"
	default:
		return "INDETERMINATE"
	}
}

// Extract returns the verdict stated by the first status line of output that
// names SAT or UNSAT. Lines without the "s" token are ignored, even when they
// mention SAT or UNSAT. Output without such a line is Indeterminate.
func Extract(output string) Verdict {
	line, ok := lo.Find(strings.Split(output, "\n"), func(line string) bool {
		_, ok := lineVerdict(line)
		return ok
	})
	if !ok {
		return Indeterminate
	}
	verdict, _ := lineVerdict(line)
	return verdict
}

func lineVerdict(line string) (Verdict, bool) {
	remainder, ok := statusRemainder(normalize(line))
	if !ok {
		return Indeterminate, false
	}

	// "UNSAT" contains "SAT" so the order of these checks matters
	if strings.Contains(remainder, "UNSAT") {
		return Unsat, true
	} else if strings.Contains(remainder, "SAT") {
		return Sat, true
	}
	return Indeterminate, false
}

// normalize trims and upper-cases the line and drops a leading "[...]" log prefix.
func normalize(line string) string {
	line = strings.ToUpper(strings.TrimSpace(line))
	if strings.HasPrefix(line, "[") {
		if end := strings.Index(line, "]"); end >= 0 {
			line = strings.TrimSpace(line[end+1:])
		}
	}
	return line
}

func statusRemainder(line string) (string, bool) {
	if len(line) < 2 || line[0] != 'S' {
		return "", false
	}
	next, _ := utf8.DecodeRuneInString(line[1:])
	if !unicode.IsSpace(next) {
		return "", false
	}
	return strings.TrimSpace(line[1:]), true
}
