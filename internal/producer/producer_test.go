package producer

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/limaJavier/satfuzz/internal/testutil"
	"github.com/limaJavier/satfuzz/pkg/sat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommand(t *testing.T) {
	t.Run("Captures standard output verbatim", func(t *testing.T) {
		//** Arrange
		dir := t.TempDir()
		producer := Command{
			Path: testutil.WriteScript(t, dir, "cnfuzz", `echo "c seed $1"; echo 'p cnf 2 1'; echo '1 -2 0'; echo 'ignored' >&2`),
			Args: []string{"42"},
		}
		var out bytes.Buffer

		//** Act
		err := producer.Produce(context.Background(), &out)

		//** Assert
		require.NoError(t, err)
		assert.Equal(t, "c seed 42\np cnf 2 1\n1 -2 0\n", out.String())
	})

	t.Run("Non-zero exit", func(t *testing.T) {
		dir := t.TempDir()
		producer := Command{Path: testutil.WriteScript(t, dir, "broken", "echo 'p cnf 1 1'\necho 'boom' >&2\nexit 3")}

		err := producer.Produce(context.Background(), &bytes.Buffer{})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "boom")
	})

	t.Run("Empty output", func(t *testing.T) {
		dir := t.TempDir()
		producer := Command{Path: testutil.WriteScript(t, dir, "silent", "exit 0")}

		err := producer.Produce(context.Background(), &bytes.Buffer{})

		assert.ErrorIs(t, err, ErrEmptyInstance)
	})

	t.Run("Missing executable", func(t *testing.T) {
		producer := Command{Path: filepath.Join(t.TempDir(), "cnfuzz")}

		err := producer.Produce(context.Background(), &bytes.Buffer{})

		assert.Error(t, err)
	})
}

func TestRandom(t *testing.T) {
	t.Run("Produces parseable instances", func(t *testing.T) {
		producer := NewRandom(30, 90, 1)

		for range 5 {
			var out bytes.Buffer
			require.NoError(t, producer.Produce(context.Background(), &out))

			instance, err := sat.ParseDIMACS(strings.NewReader(out.String()))
			require.NoError(t, err)
			assert.Equal(t, uint64(30), instance.Variables)
			assert.Len(t, instance.Clauses, 90)
		}
	})

	t.Run("Same seed, same sequence", func(t *testing.T) {
		first, second := NewRandom(10, 20, 99), NewRandom(10, 20, 99)

		for range 3 {
			var a, b bytes.Buffer
			require.NoError(t, first.Produce(context.Background(), &a))
			require.NoError(t, second.Produce(context.Background(), &b))
			assert.Equal(t, a.String(), b.String())
		}
	})

	t.Run("Invalid size", func(t *testing.T) {
		err := NewRandom(0, 10, 1).Produce(context.Background(), &bytes.Buffer{})

		assert.Error(t, err)
	})
}
