// Package config holds the harness settings read from a YAML or JSON file.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// BuiltinFuzzer selects the in-process random instance generator.
const BuiltinFuzzer = "builtin"

var ErrInvalid = errors.New("invalid configuration")

type Solver struct {
	Path string   `mapstructure:"path"`
	Args []string `mapstructure:"args"`
}

type Fuzzer struct {
	Path string   `mapstructure:"path"`
	Args []string `mapstructure:"args"`

	// Used by the builtin generator only
	Variables uint64 `mapstructure:"variables"`
	Clauses   int    `mapstructure:"clauses"`
	Seed      uint64 `mapstructure:"seed"`
}

func (fuzzer Fuzzer) Builtin() bool {
	return fuzzer.Path == BuiltinFuzzer
}

type Config struct {
	Fuzzer  Fuzzer        `mapstructure:"fuzzer"`
	Solver  Solver        `mapstructure:"solver"`
	Solver2 Solver        `mapstructure:"solver2"`
	Max     int           `mapstructure:"max"`
	Timeout time.Duration `mapstructure:"timeout"`

	// InstanceDir is where instances are created; the OS temp dir when empty.
	InstanceDir  string `mapstructure:"instance_dir"`
	VerifyModels bool   `mapstructure:"verify_models"`
	Referee      bool   `mapstructure:"referee"`
	CSV          string `mapstructure:"csv"`
	LogLevel     string `mapstructure:"log_level"`
}

func Default() Config {
	return Config{
		Fuzzer: Fuzzer{
			Path:      "libs/cnffuzzdd2013/cnfuzz",
			Variables: 50,
			Clauses:   200,
			Seed:      uint64(time.Now().UnixNano()),
		},
		Max:      1,
		Timeout:  30 * time.Second,
		LogLevel: "warn",
	}
}

// HasSecondary reports whether a second solver is configured.
func (config Config) HasSecondary() bool {
	return config.Solver2.Path != ""
}

func (config Config) Validate() error {
	switch {
	case config.Solver.Path == "":
		return fmt.Errorf("%w: a primary solver path must be specified", ErrInvalid)
	case config.Fuzzer.Path == "":
		return fmt.Errorf("%w: a fuzzer must be specified", ErrInvalid)
	case config.Max < 1:
		return fmt.Errorf("%w: max must be at least 1: %v", ErrInvalid, config.Max)
	case config.Timeout <= 0:
		return fmt.Errorf("%w: timeout must be positive: %v", ErrInvalid, config.Timeout)
	case config.Fuzzer.Builtin() && (config.Fuzzer.Variables == 0 || config.Fuzzer.Clauses <= 0):
		return fmt.Errorf("%w: builtin fuzzer needs positive variables and clauses: %v, %v", ErrInvalid, config.Fuzzer.Variables, config.Fuzzer.Clauses)
	case !config.HasSecondary() && len(config.Solver2.Args) > 0:
		return fmt.Errorf("%w: solver2 arguments given without solver2", ErrInvalid)
	}
	return nil
}

// Load reads path and decodes it on top of Default. Files ending in .json are
// read as JSON, anything else as YAML.
func Load(path string) (Config, error) {
	bytes, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("cannot read config file: %w", err)
	}

	var raw map[string]any
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = json.Unmarshal(bytes, &raw)
	} else {
		err = yaml.Unmarshal(bytes, &raw)
	}
	if err != nil {
		return Config{}, fmt.Errorf("cannot parse config file %v: %w", path, err)
	}

	config := Default()
	if err := Decode(raw, &config); err != nil {
		return Config{}, fmt.Errorf("cannot decode config file %v: %w", path, err)
	}
	return config, nil
}

// Decode copies the values present in raw onto config.
func Decode(raw map[string]any, config *Config) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			durationHook,
			argsHook,
		),
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		Result:           config,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(raw)
}

// durationHook accepts Go durations ("1m30s") as well as plain seconds (30, 2.5, "30").
func durationHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if to != reflect.TypeOf(time.Duration(0)) {
		return data, nil
	}

	switch value := data.(type) {
	case string:
		return ParseDuration(value)
	case int:
		return secondsToDuration(float64(value)), nil
	case int64:
		return secondsToDuration(float64(value)), nil
	case uint64:
		return secondsToDuration(float64(value)), nil
	case float64:
		return secondsToDuration(value), nil
	}
	return data, nil
}

// ParseDuration accepts a Go duration ("1m30s") or a number of seconds ("30", "2.5").
func ParseDuration(value string) (time.Duration, error) {
	if duration, err := time.ParseDuration(value); err == nil {
		return duration, nil
	}
	seconds, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", value)
	}
	return secondsToDuration(seconds), nil
}

// argsHook splits a single argument string on whitespace.
func argsHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to != reflect.TypeOf([]string(nil)) {
		return data, nil
	}
	return SplitArgs(data.(string)), nil
}

// SplitArgs splits a command-line fragment on whitespace.
func SplitArgs(args string) []string {
	fields := strings.Fields(args)
	if len(fields) == 0 {
		return nil
	}
	return fields
}

func secondsToDuration(seconds float64) time.Duration {
	return time.Duration(seconds * float64(time.Second))
}
