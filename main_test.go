package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	mainSource = `
		class Main {
			function void main() {
				var Square s;
				let s = Square.new(3);
				do s.draw();
				return;
			}
		}`
	squareSource = `
		class Square {
			field int size;
			constructor Square new(int n) { let size = n; return this; }
			method void draw() { do Screen.drawRectangle(0, 0, size, size); return; }
		}`
)

func project(t *testing.T, units map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, source := range units {
		writeFile(t, filepath.Join(dir, name), source)
	}
	return dir
}

func TestRun(t *testing.T) {

	t.Run("compiles a directory", func(t *testing.T) {
		dir := project(t, map[string]string{"Main.jack": mainSource, "Square.jack": squareSource})
		var stdout, stderr bytes.Buffer

		status := run([]string{"-d", dir, "-log-level", "error"}, &stdout, &stderr)

		require.Equal(t, 0, status, stderr.String())
		assert.FileExists(t, filepath.Join(dir, "Main.vm"))
		assert.FileExists(t, filepath.Join(dir, "Square.vm"))
		assert.Contains(t, stdout.String(), "2 compiled, 0 failed")
		assert.Empty(t, stderr.String())

		content, err := os.ReadFile(filepath.Join(dir, "Main.vm"))
		require.NoError(t, err)
		assert.Contains(t, string(content), "call Square.new 1\n")
		assert.Contains(t, string(content), "call Square.draw 1\n")
	})

	t.Run("source as positional argument with an output directory", func(t *testing.T) {
		dir := project(t, map[string]string{"Square.jack": squareSource})
		outDir := filepath.Join(t.TempDir(), "out")
		var stdout, stderr bytes.Buffer

		status := run([]string{"-o", outDir, "-j", "1", filepath.Join(dir, "Square.jack")}, &stdout, &stderr)

		require.Equal(t, 0, status, stderr.String())
		assert.FileExists(t, filepath.Join(outDir, "Square.vm"))
		assert.NoFileExists(t, filepath.Join(dir, "Square.vm"))
	})

	t.Run("check mode writes no output", func(t *testing.T) {
		dir := project(t, map[string]string{"Main.jack": mainSource})
		var stdout, stderr bytes.Buffer

		status := run([]string{"-check", "-log-level", "error", dir}, &stdout, &stderr)

		assert.Equal(t, 0, status)
		assert.NoFileExists(t, filepath.Join(dir, "Main.vm"))
	})

	t.Run("failing unit fails the build and is reported", func(t *testing.T) {
		dir := project(t, map[string]string{
			"Main.jack":   mainSource,
			"Broken.jack": "class Broken { function void f() { let x = 1; return; } }",
		})
		reportPath := filepath.Join(t.TempDir(), "report.json")
		var stdout, stderr bytes.Buffer

		status := run([]string{"-d", dir, "-report", reportPath, "-log-format", "json"}, &stdout, &stderr)

		assert.Equal(t, ErrorStatusCode, status)
		assert.Contains(t, stdout.String(), "FAIL")
		assert.Contains(t, stdout.String(), "1 compiled, 1 failed")
		assert.Contains(t, stderr.String(), `"level":"error"`)
		assert.FileExists(t, filepath.Join(dir, "Main.vm"))
		assert.NoFileExists(t, filepath.Join(dir, "Broken.vm"))

		content, err := os.ReadFile(reportPath)
		require.NoError(t, err)
		var report struct {
			Run       string `json:"run"`
			Succeeded int    `json:"succeeded"`
			Failed    int    `json:"failed"`
			Units     []struct {
				Path  string `json:"path"`
				Error string `json:"error"`
			} `json:"units"`
		}
		require.NoError(t, json.Unmarshal(content, &report))
		assert.Len(t, report.Run, 26)
		assert.Equal(t, 1, report.Succeeded)
		assert.Equal(t, 1, report.Failed)
		require.Len(t, report.Units, 2)
		assert.Equal(t, filepath.Join(dir, "Broken.jack"), report.Units[0].Path)
		assert.Contains(t, report.Units[0].Error, `unresolved symbol "x"`)
		assert.Empty(t, report.Units[1].Error)
	})

	t.Run("directory without sources", func(t *testing.T) {
		var stdout, stderr bytes.Buffer
		status := run([]string{"-log-format", "json", t.TempDir()}, &stdout, &stderr)
		assert.Equal(t, ErrorStatusCode, status)
		assert.Contains(t, stderr.String(), "no source files found")
	})

	t.Run("usage errors", func(t *testing.T) {
		for _, args := range [][]string{
			{},
			{"-unknown"},
			{"-precedence", "pemdas", "Main.jack"},
			{"-j", "0", "Main.jack"},
		} {
			var stdout, stderr bytes.Buffer
			assert.Equal(t, UsageStatusCode, run(args, &stdout, &stderr), args)
			assert.Contains(t, stderr.String(), "Usage", args)
		}
	})

	t.Run("config file", func(t *testing.T) {
		dir := project(t, map[string]string{"Main.jack": mainSource, "old/Legacy.jack": "class Legacy { oops }"})
		configPath := writeFile(t, filepath.Join(t.TempDir(), "jackc.yaml"),
			"source: "+dir+"\nexclude:\n  - \"old/**\"\nlog_level: error\n")
		var stdout, stderr bytes.Buffer

		status := run([]string{"-config", configPath}, &stdout, &stderr)

		assert.Equal(t, 0, status, stdout.String())
		assert.Contains(t, stdout.String(), "1 compiled, 0 failed")
	})
}
