package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const OutputExtension = ".vm"

// OutputSink receives the complete VM code of a unit that compiled successfully.
type OutputSink interface {
	Store(sourcePath string, commands []string) (location string, err error)
}

// OutputLocator is implemented by sinks that know where a unit will be stored before it is compiled.
type OutputLocator interface {
	OutputPath(sourcePath string) string
}

// FileOutputSink writes <Class>.vm next to the source, or into OutDir when set. Below OutDir the
// directories of the sources relative to Root are recreated, so units with the same file name in
// different directories keep separate outputs.
type FileOutputSink struct {
	OutDir string
	Root   string
}

func getOutputPath(filePath string) string {
	return removeExtension(filePath) + OutputExtension
}

func (s FileOutputSink) OutputPath(sourcePath string) string {
	if s.OutDir == "" {
		return getOutputPath(sourcePath)
	}
	name := getClassName(sourcePath) + OutputExtension
	if s.Root == "" {
		return filepath.Join(s.OutDir, name)
	}
	rel, err := filepath.Rel(s.Root, filepath.Dir(sourcePath))
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return filepath.Join(s.OutDir, name)
	}
	return filepath.Join(s.OutDir, rel, name)
}

// Store writes to a temporary file first so that a failed write never leaves a truncated output.
func (s FileOutputSink) Store(sourcePath string, commands []string) (string, error) {
	outputPath := s.OutputPath(sourcePath)
	if s.OutDir != "" {
		if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
			return "", fmt.Errorf("could not create output directory %q: %w", filepath.Dir(outputPath), err)
		}
	}

	var buf bytes.Buffer
	if _, err := writeCommands(&buf, commands); err != nil {
		return "", err
	}

	output, err := os.CreateTemp(filepath.Dir(outputPath), ".jackc-*")
	if err != nil {
		return "", fmt.Errorf("could not open output file %q for writing: %w", outputPath, err)
	}
	tempPath := output.Name()

	if _, err := output.Write(buf.Bytes()); err != nil {
		output.Close()
		os.Remove(tempPath)
		return "", fmt.Errorf("could not write %q: %w", outputPath, err)
	}
	if err := output.Close(); err != nil {
		os.Remove(tempPath)
		return "", fmt.Errorf("could not write %q: %w", outputPath, err)
	}
	if err := os.Chmod(tempPath, 0o644); err != nil {
		os.Remove(tempPath)
		return "", err
	}
	if err := os.Rename(tempPath, outputPath); err != nil {
		os.Remove(tempPath)
		return "", fmt.Errorf("could not save %q: %w", outputPath, err)
	}
	return outputPath, nil
}

// MemorySink keeps the compiled units in memory. It is safe for concurrent use.
type MemorySink struct {
	lock  sync.Mutex
	units map[string][]string
}

func NewMemorySink() *MemorySink {
	return &MemorySink{units: make(map[string][]string)}
}

func (s *MemorySink) Store(sourcePath string, commands []string) (string, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.units[sourcePath] = commands
	return sourcePath, nil
}

func (s *MemorySink) Unit(sourcePath string) ([]string, bool) {
	s.lock.Lock()
	defer s.lock.Unlock()
	commands, ok := s.units[sourcePath]
	return commands, ok
}

func (s *MemorySink) Len() int {
	s.lock.Lock()
	defer s.lock.Unlock()
	return len(s.units)
}
