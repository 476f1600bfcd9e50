// Package producer generates problem instances for the trial loop.
package producer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"os/exec"
	"strings"

	"github.com/limaJavier/satfuzz/pkg/sat"
)

var ErrEmptyInstance = errors.New("producer wrote an empty instance")

// A Producer writes one instance to w.
type Producer interface {
	Produce(ctx context.Context, w io.Writer) error
}

// Command runs an external generator (e.g. cnfuzz) and captures its standard
// output verbatim as the instance.
type Command struct {
	Path string
	Args []string
}

func (producer Command) String() string {
	return strings.Join(append([]string{producer.Path}, producer.Args...), " ")
}

// Produce fails when the generator cannot start, exits non-zero or prints nothing.
func (producer Command) Produce(ctx context.Context, w io.Writer) error {
	cmd := exec.CommandContext(ctx, producer.Path, producer.Args...)

	counter := &countingWriter{writer: w}
	cmd.Stdout = counter
	var stdErr bytes.Buffer
	cmd.Stderr = &stdErr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("an error occurred during %v execution: %w : %v", producer.Path, err, strings.TrimSpace(stdErr.String()))
	} else if counter.written == 0 {
		return fmt.Errorf("%w: %v", ErrEmptyInstance, producer.Path)
	}
	return nil
}

type countingWriter struct {
	writer  io.Writer
	written int64
}

func (counter *countingWriter) Write(p []byte) (int, error) {
	n, err := counter.writer.Write(p)
	counter.written += int64(n)
	return n, err
}

// Random generates instances in-process from a seeded source.
type Random struct {
	Variables uint64
	Clauses   int
	random    *rand.Rand
}

func NewRandom(variables uint64, clauses int, seed uint64) *Random {
	return &Random{
		Variables: variables,
		Clauses:   clauses,
		random:    rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

func (producer *Random) String() string {
	return fmt.Sprintf("builtin (%d vars, %d clauses)", producer.Variables, producer.Clauses)
}

func (producer *Random) Produce(_ context.Context, w io.Writer) error {
	if producer.Variables == 0 || producer.Clauses <= 0 {
		return fmt.Errorf("invalid random instance size: %d vars, %d clauses", producer.Variables, producer.Clauses)
	}
	instance := sat.GenerateSATInstance(producer.random, producer.Variables, producer.Clauses)
	_, err := io.WriteString(w, instance.ToDIMACS())
	return err
}
