package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfigFile(t *testing.T) {

	t.Run("values from the file override the defaults", func(t *testing.T) {
		path := writeFile(t, filepath.Join(t.TempDir(), "jackc.yaml"), `
source: projects/11
exclude:
  - "**/Old*.jack"
out_dir: build
jobs: 3
precedence: standard
log_level: debug
`)
		config := DefaultConfig()
		require.NoError(t, config.LoadConfigFile(path, true))

		assert.Equal(t, "projects/11", config.Source)
		assert.Equal(t, []string{"**/*.jack"}, config.Include)
		assert.Equal(t, []string{"**/Old*.jack"}, config.Exclude)
		assert.Equal(t, "build", config.OutDir)
		assert.Equal(t, 3, config.Jobs)
		assert.Equal(t, PrecedenceStandard, config.Precedence)
		assert.Equal(t, "debug", config.LogLevel)
		assert.Equal(t, ConsoleLogFormat, config.LogFormat)
	})

	t.Run("missing optional file", func(t *testing.T) {
		config := DefaultConfig()
		require.NoError(t, config.LoadConfigFile(filepath.Join(t.TempDir(), "absent.yaml"), false))
		assert.Equal(t, DefaultConfig(), config)
	})

	t.Run("missing required file", func(t *testing.T) {
		config := DefaultConfig()
		assert.Error(t, config.LoadConfigFile(filepath.Join(t.TempDir(), "absent.yaml"), true))
	})

	t.Run("malformed file", func(t *testing.T) {
		path := writeFile(t, filepath.Join(t.TempDir(), "jackc.yaml"), "jobs: [1, 2\n")
		config := DefaultConfig()
		err := config.LoadConfigFile(path, false)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid config file")
	})
}

func TestLoadEnv(t *testing.T) {

	t.Run("process environment wins over the env file", func(t *testing.T) {
		envFile := writeFile(t, filepath.Join(t.TempDir(), ".env"), `
JACKC_SOURCE=from/file
JACKC_OUT_DIR=out
JACKC_JOBS=2
JACKC_CHECK=true
`)
		t.Setenv("JACKC_SOURCE", "from/env")
		t.Setenv("JACKC_PRECEDENCE", "standard")

		config := DefaultConfig()
		require.NoError(t, config.LoadEnv(envFile))

		assert.Equal(t, "from/env", config.Source)
		assert.Equal(t, "out", config.OutDir)
		assert.Equal(t, 2, config.Jobs)
		assert.True(t, config.Check)
		assert.Equal(t, PrecedenceStandard, config.Precedence)
	})

	t.Run("missing env file", func(t *testing.T) {
		config := DefaultConfig()
		require.NoError(t, config.LoadEnv(filepath.Join(t.TempDir(), ".env")))
		assert.Equal(t, DefaultConfig(), config)
	})

	t.Run("malformed numbers and booleans", func(t *testing.T) {
		t.Setenv("JACKC_JOBS", "many")
		config := DefaultConfig()
		assert.ErrorContains(t, config.LoadEnv(""), "JACKC_JOBS")

		t.Setenv("JACKC_JOBS", "1")
		t.Setenv("JACKC_WATCH", "sometimes")
		assert.ErrorContains(t, config.LoadEnv(""), "JACKC_WATCH")
	})
}

func TestConfigValidate(t *testing.T) {
	valid := DefaultConfig()
	valid.Source = "Main.jack"
	require.NoError(t, valid.Validate())

	testCases := []struct {
		name   string
		modify func(*Config)
	}{
		{"no source", func(c *Config) { c.Source = "" }},
		{"no jobs", func(c *Config) { c.Jobs = 0 }},
		{"unknown precedence", func(c *Config) { c.Precedence = "pemdas" }},
		{"unknown log level", func(c *Config) { c.LogLevel = "loud" }},
		{"unknown log format", func(c *Config) { c.LogFormat = "xml" }},
		{"output directory in check mode", func(c *Config) { c.Check = true; c.OutDir = "build" }},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			config := valid
			testCase.modify(&config)
			assert.Error(t, config.Validate())
		})
	}
}
