package sat

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

const maxLineLength = 4 * 1024 * 1024

// ParseDIMACS reads a CNF instance. Clauses may span several lines and are
// terminated by a 0; a "%" line ends the input as some generators emit it.
func ParseDIMACS(reader io.Reader) (SAT, error) {
	var sat SAT
	headerSeen := false
	clause := make([]int64, 0)

	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineLength)

	for lineNumber := 1; scanner.Scan(); lineNumber++ {
		line := strings.TrimSpace(scanner.Text())
		// Skip comments and blank lines
		if line == "" || strings.HasPrefix(line, "c") {
			continue
		}
		if strings.HasPrefix(line, "%") {
			break
		}
		// Problem line
		if strings.HasPrefix(line, "p") {
			parts := strings.Fields(line)
			if len(parts) != 4 || parts[1] != "cnf" {
				return SAT{}, fmt.Errorf("invalid problem line %d: %s", lineNumber, line)
			}
			vars, err := strconv.ParseUint(parts[2], 10, 64)
			if err != nil {
				return SAT{}, fmt.Errorf("invalid variable count: %w", err)
			}
			clauses, err := strconv.ParseUint(parts[3], 10, 64)
			if err != nil {
				return SAT{}, fmt.Errorf("invalid clause count: %w", err)
			}
			sat.Variables = vars
			sat.Clauses = make([][]int64, 0, clauses)
			headerSeen = true
			continue
		}
		if !headerSeen {
			return SAT{}, fmt.Errorf("clause before problem line at line %d", lineNumber)
		}

		// Clause line
		for _, literalStr := range strings.Fields(line) {
			literal, err := strconv.ParseInt(literalStr, 10, 64)
			if err != nil {
				return SAT{}, fmt.Errorf("invalid literal '%s' at line %d: %w", literalStr, lineNumber, err)
			}
			if literal == 0 {
				sat.Clauses = append(sat.Clauses, clause)
				clause = make([]int64, 0)
				continue
			}
			if uint64(abs(literal)) > sat.Variables {
				return SAT{}, fmt.Errorf("literal %d at line %d exceeds the %d declared variables", literal, lineNumber, sat.Variables)
			}
			clause = append(clause, literal)
		}
	}

	if err := scanner.Err(); err != nil {
		return SAT{}, fmt.Errorf("error reading instance: %w", err)
	} else if !headerSeen {
		return SAT{}, fmt.Errorf("missing problem line")
	} else if len(clause) > 0 {
		return SAT{}, fmt.Errorf("unterminated clause %v", clause)
	}

	return sat, nil
}

// ParseSolution collects the literals of every "v" line in solverOutput up to the
// terminating 0. The boolean reports whether any "v" line was present.
func ParseSolution(solverOutput string) (SATSolution, bool, error) {
	valueLines := lo.FilterMap(strings.Split(solverOutput, "\n"), func(line string, _ int) (string, bool) {
		line = strings.TrimSpace(line)
		if len(line) < 1 || (line[0] != 'v' && line[0] != 'V') {
			return "", false
		}
		if len(line) > 1 && line[1] != ' ' && line[1] != '\t' {
			return "", false
		}
		return line[1:], true
	})
	if len(valueLines) == 0 {
		return nil, false, nil
	}

	values := lo.FlatMap(valueLines, func(line string, _ int) []string { return strings.Fields(line) })

	solution := make(SATSolution, 0, len(values))
	for _, valueStr := range values {
		value, err := strconv.ParseInt(valueStr, 10, 64)
		if err != nil {
			return nil, true, fmt.Errorf("invalid literal in solver output: %w", err)
		}
		if value == 0 {
			break
		}
		solution = append(solution, value)
	}
	return solution, true, nil
}
