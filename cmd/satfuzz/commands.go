package main

import (
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/limaJavier/satfuzz/internal/compare"
	"github.com/limaJavier/satfuzz/internal/config"
	"github.com/limaJavier/satfuzz/internal/fuzz"
	"github.com/limaJavier/satfuzz/internal/logging"
	"github.com/limaJavier/satfuzz/internal/producer"
	"github.com/limaJavier/satfuzz/internal/referee"
	"github.com/limaJavier/satfuzz/internal/report"
	"github.com/limaJavier/satfuzz/internal/runner"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type flags struct {
	configPath   string
	solverPath   string
	solverArgs   string
	solver2Path  string
	solver2Args  string
	fuzzerPath   string
	fuzzArgs     string
	max          int
	timeout      string
	instanceDir  string
	verifyModels bool
	referee      bool
	csv          string
	seed         uint64
	variables    uint64
	clauses      int
	logLevel     string
}

func newRootCommand() *cobra.Command {
	options := &flags{}

	root := &cobra.Command{
		Use:   "satfuzz",
		Short: "Differential fuzzing of SAT solvers",
		Long: `satfuzz generates random CNF instances, runs one or two SAT solvers on each
of them and stops at the first instance the solvers disagree on. That instance
is kept on disk as the reproducing case; agreed-upon instances are deleted.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runFuzz(cmd, options)
		},
	}

	persistent := root.PersistentFlags()
	persistent.StringVar(&options.configPath, "config", "", "Path to a YAML or JSON configuration file")
	persistent.StringVar(&options.solverPath, "solver_path", "", "Path to the primary SAT solver executable")
	persistent.StringVar(&options.solverArgs, "solver-args", "", "Additional command line arguments for the primary solver")
	persistent.StringVar(&options.solver2Path, "solver2", "", "Path to a second SAT solver for comparison")
	persistent.StringVar(&options.solver2Args, "solver2-args", "", "Additional command line arguments for the second solver")
	persistent.StringVar(&options.timeout, "timeout", "30", `Timeout for each solver run, in seconds ("30", "2.5") or as a duration ("1m30s")`)
	persistent.BoolVar(&options.verifyModels, "verify-models", false, "Check the assignment printed with every SAT answer")
	persistent.BoolVar(&options.referee, "referee", false, "Solve disagreeing instances with the built-in gophersat solver")
	persistent.StringVar(&options.logLevel, "log-level", "warn", "Diagnostic log level: debug, info, warn or error")

	local := root.Flags()
	local.StringVar(&options.fuzzerPath, "fuzzer", "libs/cnffuzzdd2013/cnfuzz", `Path to the instance generator executable, or "builtin"`)
	local.StringVar(&options.fuzzArgs, "fuzz-args", "", "Arguments to pass to the fuzzer")
	local.IntVar(&options.max, "max", 1, "Maximum number of fuzz/solve iterations")
	local.StringVar(&options.instanceDir, "instance-dir", "", "Directory for instance files (default: the system temp dir)")
	local.StringVar(&options.csv, "csv", "", "Append one CSV record per iteration to this file")
	local.Uint64Var(&options.seed, "seed", 0, "Seed of the builtin fuzzer (default: time based)")
	local.Uint64Var(&options.variables, "vars", 50, "Variables per instance of the builtin fuzzer")
	local.IntVar(&options.clauses, "clauses", 200, "Clauses per instance of the builtin fuzzer")

	run := &cobra.Command{
		Use:   "run",
		Short: "Run the fuzzing loop (default command)",
		Args:  cobra.NoArgs,
		RunE:  root.RunE,
	}
	run.Flags().AddFlagSet(local)

	check := &cobra.Command{
		Use:   "check INSTANCE",
		Short: "Re-run the configured solvers on an existing instance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, options, args[0])
		},
	}

	root.AddCommand(run, check)
	return root
}

// loadConfig layers defaults, the configuration file and explicitly set flags.
func loadConfig(cmd *cobra.Command, options *flags) (config.Config, error) {
	cfg := config.Default()
	if options.configPath != "" {
		loaded, err := config.Load(options.configPath)
		if err != nil {
			return config.Config{}, fmt.Errorf("%w: %v", config.ErrInvalid, err)
		}
		cfg = loaded
	}

	changed := cmd.Flags().Changed
	if changed("solver_path") {
		cfg.Solver.Path = options.solverPath
	}
	if changed("solver-args") {
		cfg.Solver.Args = config.SplitArgs(options.solverArgs)
	}
	if changed("solver2") {
		cfg.Solver2.Path = options.solver2Path
	}
	if changed("solver2-args") {
		cfg.Solver2.Args = config.SplitArgs(options.solver2Args)
	}
	if changed("fuzzer") {
		cfg.Fuzzer.Path = options.fuzzerPath
	}
	if changed("fuzz-args") {
		cfg.Fuzzer.Args = config.SplitArgs(options.fuzzArgs)
	}
	if changed("seed") {
		cfg.Fuzzer.Seed = options.seed
	}
	if changed("vars") {
		cfg.Fuzzer.Variables = options.variables
	}
	if changed("clauses") {
		cfg.Fuzzer.Clauses = options.clauses
	}
	if changed("max") {
		cfg.Max = options.max
	}
	if changed("timeout") {
		timeout, err := config.ParseDuration(options.timeout)
		if err != nil {
			return config.Config{}, fmt.Errorf("%w: --timeout: %v", config.ErrInvalid, err)
		}
		cfg.Timeout = timeout
	}
	if changed("instance-dir") {
		cfg.InstanceDir = options.instanceDir
	}
	if changed("verify-models") {
		cfg.VerifyModels = options.verifyModels
	}
	if changed("referee") {
		cfg.Referee = options.referee
	}
	if changed("csv") {
		cfg.CSV = options.csv
	}
	if changed("log-level") {
		cfg.LogLevel = options.logLevel
	}

	return cfg, cfg.Validate()
}

func newComparator(cfg config.Config, logger *zap.Logger, observer compare.Observer) *compare.Comparator {
	options := []compare.Option{
		compare.WithObserver(observer),
		compare.WithLogger(logger),
	}
	if cfg.HasSecondary() {
		options = append(options, compare.WithSecondary(runner.Solver{Name: "Solver 2", Path: cfg.Solver2.Path, Args: cfg.Solver2.Args}))
	}
	if cfg.VerifyModels {
		options = append(options, compare.WithModelVerification())
	}
	if cfg.Referee {
		options = append(options, compare.WithReferee(referee.NewGophersat(logger)))
	}

	primary := runner.Solver{Name: "Solver 1", Path: cfg.Solver.Path, Args: cfg.Solver.Args}
	return compare.New(runner.New(cfg.Timeout, logger), primary, options...)
}

func newProducer(cfg config.Config) producer.Producer {
	if cfg.Fuzzer.Builtin() {
		return producer.NewRandom(cfg.Fuzzer.Variables, cfg.Fuzzer.Clauses, cfg.Fuzzer.Seed)
	}
	return producer.Command{Path: cfg.Fuzzer.Path, Args: cfg.Fuzzer.Args}
}

func runFuzz(cmd *cobra.Command, options *flags) error {
	cfg, err := loadConfig(cmd, options)
	if err != nil {
		return err
	}

	runID := uuid.NewString()
	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("%w: %v", config.ErrInvalid, err)
	}
	defer logger.Sync()
	logger = logger.With(zap.String("run", runID))

	out := cmd.OutOrStdout()
	reporters := report.Multi{report.NewConsole(out)}

	var csvRecorder *report.CSV
	if cfg.CSV != "" {
		file, err := os.OpenFile(cfg.CSV, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("cannot open CSV file: %w", err)
		}
		defer file.Close()
		info, err := file.Stat()
		if err != nil {
			return fmt.Errorf("cannot inspect CSV file: %w", err)
		}
		csvRecorder = report.NewCSV(file, runID, info.Size() == 0)
		reporters = append(reporters, csvRecorder)
	}

	instanceProducer := newProducer(cfg)
	logger.Info("Starting",
		zap.Any("fuzzer", instanceProducer),
		zap.Int("max", cfg.Max),
		zap.Duration("timeout", cfg.Timeout),
		zap.Bool("secondary", cfg.HasSecondary()),
		zap.Uint64("seed", cfg.Fuzzer.Seed))
	if cfg.Fuzzer.Builtin() {
		fmt.Fprintf(out, "Fuzzer: %v, seed %d (reproduce with --seed %d)\n", instanceProducer, cfg.Fuzzer.Seed, cfg.Fuzzer.Seed)
	}

	loop := fuzz.NewLoop(
		instanceProducer,
		newComparator(cfg, logger, reporters),
		fuzz.TempAllocator(cfg.InstanceDir, "satfuzz-*.cnf"),
		cfg.Max,
		fuzz.WithReporter(reporters),
		fuzz.WithLogger(logger),
	)
	summary := loop.Run(cmd.Context())

	if csvRecorder != nil && csvRecorder.Err() != nil {
		logger.Warn("CSV log is incomplete", zap.Error(csvRecorder.Err()))
	}
	if !summary.Completed() {
		return errStopped
	}
	return nil
}

// runCheck runs the solvers on instance without ever deleting it.
func runCheck(cmd *cobra.Command, options *flags, instance string) error {
	cfg, err := loadConfig(cmd, options)
	if err != nil {
		return err
	}
	if _, err := os.Stat(instance); err != nil {
		return fmt.Errorf("%w: %v", config.ErrInvalid, err)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("%w: %v", config.ErrInvalid, err)
	}
	defer logger.Sync()

	out := cmd.OutOrStdout()
	console := report.NewConsole(out)
	cfg.Referee = true
	comparator := newComparator(cfg, logger, console)

	comparison, err := comparator.Compare(cmd.Context(), instance)
	if err != nil {
		fmt.Fprintf(out, "Error occurred: %v\n", err)
		return errStopped
	}

	printVerdicts(out, comparison)
	if comparison.Referee == nil {
		verdict, err := referee.NewGophersat(logger).Decide(cmd.Context(), instance)
		comparison.Referee = &compare.RefereeDecision{Verdict: verdict, Err: err}
	}
	if comparison.Referee.Err != nil {
		fmt.Fprintf(out, "Referee could not decide: %v\n", comparison.Referee.Err)
	} else {
		fmt.Fprintf(out, "Referee (gophersat) verdict: %v\n", comparison.Referee.Verdict)
	}

	if !comparison.Agree || comparison.InvalidModel != nil {
		if comparison.InvalidModel != nil {
			fmt.Fprintf(out, "Invalid model: %v\n", comparison.InvalidModel)
		}
		return errStopped
	}
	return nil
}

func printVerdicts(out io.Writer, comparison *compare.Comparison) {
	fmt.Fprintln(out)
	for _, result := range comparison.Results {
		fmt.Fprintf(out, "%s = %v\n", result.Solver.Label(), result.Verdict)
	}
}
