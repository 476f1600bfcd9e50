package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadYAML(t *testing.T) {
	//** Arrange
	path := writeFile(t, "satfuzz.yaml", `
fuzzer:
  path: /opt/cnfuzz
  args: "-s 42"
solver:
  path: /opt/edusat
  args: ["-verbose", "0"]
solver2:
  path: /opt/kissat
  args: -q --relaxed
max: 100
timeout: 1m30s
instance_dir: /var/tmp/fuzz
verify_models: true
referee: true
csv: trials.csv
log_level: debug
`)

	//** Act
	config, err := Load(path)

	//** Assert
	require.NoError(t, err)
	assert.Equal(t, "/opt/cnfuzz", config.Fuzzer.Path)
	assert.Equal(t, []string{"-s", "42"}, config.Fuzzer.Args)
	assert.Equal(t, Solver{Path: "/opt/edusat", Args: []string{"-verbose", "0"}}, config.Solver)
	assert.Equal(t, Solver{Path: "/opt/kissat", Args: []string{"-q", "--relaxed"}}, config.Solver2)
	assert.Equal(t, 100, config.Max)
	assert.Equal(t, 90*time.Second, config.Timeout)
	assert.Equal(t, "/var/tmp/fuzz", config.InstanceDir)
	assert.True(t, config.VerifyModels)
	assert.True(t, config.Referee)
	assert.Equal(t, "trials.csv", config.CSV)
	assert.Equal(t, "debug", config.LogLevel)
	assert.True(t, config.HasSecondary())
	assert.NoError(t, config.Validate())
}

func TestLoadJSON(t *testing.T) {
	path := writeFile(t, "satfuzz.json", `{
		"fuzzer": {"path": "builtin", "variables": 20, "clauses": 85, "seed": 7},
		"solver": {"path": "/opt/edusat"},
		"max": 10,
		"timeout": 2.5
	}`)

	config, err := Load(path)

	require.NoError(t, err)
	assert.True(t, config.Fuzzer.Builtin())
	assert.Equal(t, uint64(20), config.Fuzzer.Variables)
	assert.Equal(t, 85, config.Fuzzer.Clauses)
	assert.Equal(t, uint64(7), config.Fuzzer.Seed)
	assert.Equal(t, 10, config.Max)
	assert.Equal(t, 2500*time.Millisecond, config.Timeout)
	assert.False(t, config.HasSecondary())
	assert.NoError(t, config.Validate())
}

func TestLoadKeepsDefaults(t *testing.T) {
	path := writeFile(t, "satfuzz.yml", "solver:\n  path: /opt/edusat\n")

	config, err := Load(path)

	require.NoError(t, err)
	defaults := Default()
	assert.Equal(t, defaults.Fuzzer.Path, config.Fuzzer.Path)
	assert.Equal(t, defaults.Max, config.Max)
	assert.Equal(t, defaults.Timeout, config.Timeout)
	assert.Equal(t, defaults.LogLevel, config.LogLevel)
}

func TestLoadErrors(t *testing.T) {
	cases := map[string]string{
		"unknown.yaml":  "solver:\n  path: x\nfrobnicate: true\n",
		"broken.yaml":   "solver: [\n",
		"broken.json":   "{",
		"duration.yaml": "timeout: soon\n",
	}

	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeFile(t, name, content))
			assert.Error(t, err)
		})
	}

	t.Run("Missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		config := Default()
		config.Solver.Path = "/opt/edusat"
		return config
	}
	require.NoError(t, valid().Validate())

	mutations := map[string]func(*Config){
		"No solver":           func(c *Config) { c.Solver.Path = "" },
		"No fuzzer":           func(c *Config) { c.Fuzzer.Path = "" },
		"Zero max":            func(c *Config) { c.Max = 0 },
		"Zero timeout":        func(c *Config) { c.Timeout = 0 },
		"Negative timeout":    func(c *Config) { c.Timeout = -time.Second },
		"Empty builtin":       func(c *Config) { c.Fuzzer.Path = BuiltinFuzzer; c.Fuzzer.Clauses = 0 },
		"Orphan solver2 args": func(c *Config) { c.Solver2.Args = []string{"-q"} },
	}

	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			config := valid()
			mutate(&config)

			assert.ErrorIs(t, config.Validate(), ErrInvalid)
		})
	}
}

func TestSplitArgs(t *testing.T) {
	assert.Nil(t, SplitArgs(""))
	assert.Nil(t, SplitArgs("   "))
	assert.Equal(t, []string{"-q", "--relaxed"}, SplitArgs("  -q\t--relaxed "))
}

func TestParseDuration(t *testing.T) {
	cases := map[string]time.Duration{
		"30":    30 * time.Second,
		"1.5":   1500 * time.Millisecond,
		"1m30s": 90 * time.Second,
		"250ms": 250 * time.Millisecond,
	}

	for input, expected := range cases {
		t.Run(input, func(t *testing.T) {
			duration, err := ParseDuration(input)

			require.NoError(t, err)
			assert.Equal(t, expected, duration)
		})
	}

	t.Run("Invalid", func(t *testing.T) {
		_, err := ParseDuration("soon")

		assert.Error(t, err)
	})
}
