package main

import (
	"context"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// UnitResult is the outcome of compiling one source file.
type UnitResult struct {
	Path       string        `json:"path"`
	ClassName  string        `json:"class,omitempty"`
	OutputPath string        `json:"output,omitempty"`
	Commands   int           `json:"commands"`
	Duration   time.Duration `json:"duration_ns"`
	Error      string        `json:"error,omitempty"`

	Err error `json:"-"`
}

func (r UnitResult) Failed() bool {
	return r.Err != nil
}

// Builder compiles source units independently of each other. Every unit gets its own
// tokenizer, symbol table and writer, so units can be compiled in parallel.
type Builder struct {
	Loader     SourceLoader
	Sink       OutputSink // nil to only check the sources
	Jobs       int
	Precedence Precedence
	Logger     zerolog.Logger
}

// NewBuilder creates a builder for config. root is the directory the output layout below
// config.OutDir is mirrored from.
func NewBuilder(config Config, root string, logger zerolog.Logger) *Builder {
	builder := &Builder{
		Loader:     FileSourceLoader{},
		Jobs:       config.Jobs,
		Precedence: config.Precedence,
		Logger:     logger,
	}
	if !config.Check {
		builder.Sink = FileOutputSink{OutDir: config.OutDir, Root: root}
	}
	return builder
}

// CompileUnit loads, compiles and stores one unit. Nothing is stored when compilation fails.
func (b *Builder) CompileUnit(path string) (result UnitResult) {
	start := time.Now()
	result.Path = path
	logger := b.Logger.With().Str("unit", path).Logger()

	defer func() {
		result.Duration = time.Since(start)
		if result.Err != nil {
			result.Error = result.Err.Error()
			logger.Err(result.Err).Msg("failed to compile")
			return
		}
		logger.Info().Str("class", result.ClassName).Int("commands", result.Commands).
			Dur("duration", result.Duration).Msg("compiled")
	}()

	logger.Debug().Msg("compiling")

	source, err := b.Loader.Load(path)
	if err != nil {
		result.Err = err
		return
	}

	className, commands, err := CompileCode(source, WithLogger(logger), WithPrecedence(b.Precedence))
	result.ClassName = className
	if err != nil {
		result.Err = fmt.Errorf("%s: %w", path, err)
		return
	}
	result.Commands = len(commands)

	if expected := getClassName(path); className != expected {
		logger.Warn().Str("class", className).Str("expected", expected).Msg("class name does not match file name")
	}

	if b.Sink == nil {
		return
	}
	result.OutputPath, result.Err = b.Sink.Store(path, commands)
	return
}

// Build compiles files with at most Jobs units in flight. A failing unit never stops its
// siblings; cancelling ctx stops units that have not started yet.
func (b *Builder) Build(ctx context.Context, files []string) *BuildReport {
	report := NewBuildReport(ulid.Make())
	logger := b.Logger.With().Stringer("run", report.RunID).Logger()
	logger.Info().Int("units", len(files)).Int("jobs", b.Jobs).Msg("build started")

	unitBuilder := *b
	unitBuilder.Logger = logger

	results := make([]UnitResult, len(files))
	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(max(b.Jobs, 1))

	conflicts := b.outputConflicts(files)
	for i, file := range files {
		if err, ok := conflicts[i]; ok {
			logger.Err(err).Str("unit", file).Msg("failed to compile")
			results[i] = UnitResult{Path: file, Err: err, Error: err.Error()}
			continue
		}
		i, file := i, file
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i] = UnitResult{Path: file, Err: err, Error: err.Error()}
				return nil
			}
			results[i] = unitBuilder.CompileUnit(file)
			return nil
		})
	}
	group.Wait()

	report.Finish(results)
	logger.Info().Int("succeeded", report.Succeeded).Int("failed", report.Failed).
		Dur("duration", report.Duration).Msg("build finished")
	return report
}

// outputConflicts fails every unit whose output path is shared with another unit of the build,
// since storing them would silently overwrite each other.
func (b *Builder) outputConflicts(files []string) map[int]error {
	locator, ok := b.Sink.(OutputLocator)
	if !ok {
		return nil
	}
	owners := map[string][]int{}
	for i, file := range files {
		output := locator.OutputPath(file)
		owners[output] = append(owners[output], i)
	}

	conflicts := map[int]error{}
	for output, units := range owners {
		if len(units) < 2 {
			continue
		}
		for _, i := range units {
			conflicts[i] = fmt.Errorf("%s: %w: %s", files[i], ErrOutputConflict, output)
		}
	}
	return conflicts
}
