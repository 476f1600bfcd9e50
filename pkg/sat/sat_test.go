package sat

import (
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDIMACSRoundTrip(t *testing.T) {
	//** Arrange
	instance := SAT{
		Variables: 3,
		Clauses:   [][]int64{{1, -2}, {2, 3}, {-1, -3}},
	}

	//** Act
	dimacs := instance.ToDIMACS()
	parsed, err := ParseDIMACS(strings.NewReader(dimacs))

	//** Assert
	require.NoError(t, err)
	assert.Equal(t, "p cnf 3 3\n1 -2 0\n2 3 0\n-1 -3 0\n", dimacs)
	assert.Equal(t, instance, parsed)
}

func TestParseDIMACS(t *testing.T) {
	t.Run("Comments and multi-line clauses", func(t *testing.T) {
		input := "c generated\nc seed 42\np cnf 4 2\n1 -2\n 3 0 -4\n0\n%\n0\n"

		parsed, err := ParseDIMACS(strings.NewReader(input))

		require.NoError(t, err)
		assert.Equal(t, uint64(4), parsed.Variables)
		assert.Equal(t, [][]int64{{1, -2, 3}, {-4}}, parsed.Clauses)
	})

	t.Run("Empty clause", func(t *testing.T) {
		parsed, err := ParseDIMACS(strings.NewReader("p cnf 1 2\n1 0\n0\n"))

		require.NoError(t, err)
		assert.Equal(t, [][]int64{{1}, {}}, parsed.Clauses)
	})

	errorCases := map[string]string{
		"Missing header":         "1 2 0\n",
		"Empty input":            "",
		"Bad header":             "p dnf 2 1\n1 0\n",
		"Literal out of range":   "p cnf 2 1\n1 3 0\n",
		"Invalid literal":        "p cnf 2 1\n1 x 0\n",
		"Unterminated clause":    "p cnf 2 1\n1 2\n",
		"Invalid variable count": "p cnf two 1\n1 0\n",
	}
	for name, input := range errorCases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseDIMACS(strings.NewReader(input))
			assert.Error(t, err)
		})
	}
}

func TestParseSolution(t *testing.T) {
	t.Run("Multiple value lines", func(t *testing.T) {
		output := "c comment\ns SATISFIABLE\nv 1 -2 3\nv -4 5 0\n"

		solution, found, err := ParseSolution(output)

		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, SATSolution{1, -2, 3, -4, 5}, solution)
	})

	t.Run("No value lines", func(t *testing.T) {
		solution, found, err := ParseSolution("s SATISFIABLE\nvalue 1\n")

		require.NoError(t, err)
		assert.False(t, found)
		assert.Nil(t, solution)
	})

	t.Run("Empty assignment", func(t *testing.T) {
		solution, found, err := ParseSolution("s SATISFIABLE\nv 0\n")

		require.NoError(t, err)
		assert.True(t, found)
		assert.Empty(t, solution)
	})

	t.Run("Invalid literal", func(t *testing.T) {
		_, found, err := ParseSolution("v 1 two 0\n")

		assert.True(t, found)
		assert.Error(t, err)
	})
}

func TestVerify(t *testing.T) {
	instance := SAT{
		Variables: 3,
		Clauses:   [][]int64{{1, -2}, {2, 3}, {-1, -3}},
	}

	assert.NoError(t, Verify(instance, SATSolution{1, 2, -3}))
	assert.NoError(t, Verify(instance, SATSolution{-1, -2, 3}))

	assert.ErrorContains(t, Verify(instance, SATSolution{1, -2, -3}), "clause 2")
	assert.ErrorContains(t, Verify(instance, SATSolution{1, -1, 2, -3}), "both values")
	assert.ErrorContains(t, Verify(instance, SATSolution{1, 1, 2, -3}), "twice")
	assert.ErrorContains(t, Verify(instance, SATSolution{1, 2, -4}), "out of range")
}

func TestGenerateSATInstance(t *testing.T) {
	t.Run("Shape", func(t *testing.T) {
		random := rand.New(rand.NewPCG(7, 7))

		for range 10 {
			literals := uint64(random.IntN(100) + 1)
			clauses := random.IntN(200) + 1

			instance := GenerateSATInstance(random, literals, clauses)

			assert.Equal(t, literals, instance.Variables)
			assert.Len(t, instance.Clauses, clauses)
			for _, clause := range instance.Clauses {
				assert.NotEmpty(t, clause)
				for _, literal := range clause {
					assert.NotZero(t, literal)
					assert.LessOrEqual(t, uint64(abs(literal)), literals)
				}
			}
		}
	})

	t.Run("Seeded sources are reproducible", func(t *testing.T) {
		first := GenerateSATInstance(rand.New(rand.NewPCG(1, 2)), 20, 40)
		second := GenerateSATInstance(rand.New(rand.NewPCG(1, 2)), 20, 40)

		assert.Equal(t, first, second)
	})
}
