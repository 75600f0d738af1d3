package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"runtime"
	"strconv"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

const (
	DefaultConfigFile = "jackc.yaml"
	DefaultEnvFile    = ".env"
	EnvPrefix         = "JACKC_"

	ConsoleLogFormat = "console"
	JSONLogFormat    = "json"
)

// Config holds the settings of one jackc invocation. Later sources override earlier ones:
// defaults, the YAML config file, the .env file, the process environment, command-line flags.
type Config struct {
	Source     string     `yaml:"source"`
	Include    []string   `yaml:"include"`
	Exclude    []string   `yaml:"exclude"`
	OutDir     string     `yaml:"out_dir"`
	Jobs       int        `yaml:"jobs"`
	Precedence Precedence `yaml:"precedence"`
	LogLevel   string     `yaml:"log_level"`
	LogFormat  string     `yaml:"log_format"`
	Report     string     `yaml:"report"`
	Watch      bool       `yaml:"watch"`
	Check      bool       `yaml:"check"`
}

func DefaultConfig() Config {
	return Config{
		Include:    []string{"**/*.jack"},
		Jobs:       runtime.NumCPU(),
		Precedence: PrecedenceFlat,
		LogLevel:   zerolog.LevelInfoValue,
		LogFormat:  ConsoleLogFormat,
	}
}

// LoadConfigFile merges the YAML file at path into c. A missing file is only an error if required is set.
func (c *Config) LoadConfigFile(path string, required bool) error {
	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !required {
			return nil
		}
		return fmt.Errorf("could not read config file %q: %w", path, err)
	}
	if err := yaml.Unmarshal(content, c); err != nil {
		return fmt.Errorf("invalid config file %q: %w", path, err)
	}
	return nil
}

// LoadEnv merges JACKC_* variables from envFile and the process environment into c.
// Variables already set in the process environment take precedence over the file.
func (c *Config) LoadEnv(envFile string) error {
	fileEnv := map[string]string{}
	if envFile != "" {
		env, err := godotenv.Read(envFile)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("could not read env file %q: %w", envFile, err)
		}
		if env != nil {
			fileEnv = env
		}
	}

	return c.applyEnv(func(key string) (string, bool) {
		if value, ok := os.LookupEnv(key); ok {
			return value, true
		}
		value, ok := fileEnv[key]
		return value, ok
	})
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	settings := map[string]*string{
		"SOURCE":     &c.Source,
		"OUT_DIR":    &c.OutDir,
		"LOG_LEVEL":  &c.LogLevel,
		"LOG_FORMAT": &c.LogFormat,
		"REPORT":     &c.Report,
	}
	for key, target := range settings {
		if value, ok := lookup(EnvPrefix + key); ok {
			*target = value
		}
	}

	if value, ok := lookup(EnvPrefix + "PRECEDENCE"); ok {
		c.Precedence = Precedence(value)
	}
	if value, ok := lookup(EnvPrefix + "JOBS"); ok {
		jobs, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid %sJOBS %q: %w", EnvPrefix, value, err)
		}
		c.Jobs = jobs
	}
	for key, target := range map[string]*bool{"WATCH": &c.Watch, "CHECK": &c.Check} {
		if value, ok := lookup(EnvPrefix + key); ok {
			enabled, err := strconv.ParseBool(value)
			if err != nil {
				return fmt.Errorf("invalid %s%s %q: %w", EnvPrefix, key, value, err)
			}
			*target = enabled
		}
	}
	return nil
}

func (c Config) Validate() error {
	if c.Source == "" {
		return errors.New("no source file, directory or pattern given")
	}
	if c.Jobs < 1 {
		return fmt.Errorf("jobs must be at least 1, got %d", c.Jobs)
	}
	switch c.Precedence {
	case PrecedenceFlat, PrecedenceStandard:
	default:
		return fmt.Errorf("unknown precedence %q, expected %q or %q", c.Precedence, PrecedenceFlat, PrecedenceStandard)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	switch c.LogFormat {
	case ConsoleLogFormat, JSONLogFormat:
	default:
		return fmt.Errorf("unknown log format %q", c.LogFormat)
	}
	if c.Check && c.OutDir != "" {
		return errors.New("an output directory cannot be used in check mode")
	}
	return nil
}
