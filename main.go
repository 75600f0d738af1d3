package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

const (
	ErrorStatusCode = 1
	UsageStatusCode = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet("jackc", flag.ContinueOnError)
	flags.SetOutput(stderr)

	source := flags.String("d", "", ".jack file to compile, directory containing .jack files, or a glob pattern")
	configPath := flags.String("config", "", "YAML config file (default "+DefaultConfigFile+" when present)")
	envFile := flags.String("env", DefaultEnvFile, "file with "+EnvPrefix+"* variables")
	outDir := flags.String("o", "", "directory for .vm files (default: next to each source)")
	jobs := flags.Int("j", 0, "number of units compiled in parallel")
	precedence := flags.String("precedence", "", "operator grouping: flat or standard")
	logLevel := flags.String("log-level", "", "trace, debug, info, warn or error")
	logFormat := flags.String("log-format", "", "console or json")
	reportPath := flags.String("report", "", "write a JSON build report to this file")
	watch := flags.Bool("watch", false, "recompile units when they change")
	check := flags.Bool("check", false, "compile without writing .vm files")

	if err := flags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return UsageStatusCode
	}

	config := DefaultConfig()
	if *configPath != "" {
		if err := config.LoadConfigFile(*configPath, true); err != nil {
			fmt.Fprintln(stderr, err)
			return ErrorStatusCode
		}
	} else if err := config.LoadConfigFile(DefaultConfigFile, false); err != nil {
		fmt.Fprintln(stderr, err)
		return ErrorStatusCode
	}
	if err := config.LoadEnv(*envFile); err != nil {
		fmt.Fprintln(stderr, err)
		return ErrorStatusCode
	}

	flags.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "d":
			config.Source = *source
		case "o":
			config.OutDir = *outDir
		case "j":
			config.Jobs = *jobs
		case "precedence":
			config.Precedence = Precedence(*precedence)
		case "log-level":
			config.LogLevel = *logLevel
		case "log-format":
			config.LogFormat = *logFormat
		case "report":
			config.Report = *reportPath
		case "watch":
			config.Watch = *watch
		case "check":
			config.Check = *check
		}
	})
	if *source == "" && flags.NArg() > 0 {
		config.Source = flags.Arg(0)
	}

	if err := config.Validate(); err != nil {
		fmt.Fprintln(stderr, err)
		flags.Usage()
		return UsageStatusCode
	}

	logger, err := newLogger(stderr, config)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return ErrorStatusCode
	}

	set, err := NewSourceSet(config.Source, config.Include, config.Exclude)
	if err != nil {
		logger.Err(err).Msg("invalid source")
		return ErrorStatusCode
	}
	files, err := set.Collect()
	if err != nil {
		logger.Err(err).Msg("could not collect source files")
		return ErrorStatusCode
	}
	if len(files) == 0 && !config.Watch {
		logger.Error().Str("source", config.Source).Msg("no source files found")
		return ErrorStatusCode
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	builder := NewBuilder(config, set.BaseDir(), logger)

	var buildLock sync.Mutex
	build := func(files []string) *BuildReport {
		buildLock.Lock()
		defer buildLock.Unlock()

		report := builder.Build(ctx, files)
		report.PrintSummary(stdout)
		if config.Report != "" {
			if err := report.WriteJSON(config.Report); err != nil {
				logger.Err(err).Msg("could not save build report")
			}
		}
		return report
	}

	report := build(files)

	if config.Watch {
		err := watchSources(ctx, set, WatchDebounceDuration, logger, func(files []string) {
			build(files)
		})
		if err != nil {
			logger.Err(err).Msg("watch stopped")
			return ErrorStatusCode
		}
		return 0
	}

	if !report.OK() {
		return ErrorStatusCode
	}
	return 0
}
