package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/maruel/natural"
)

const SourceExtension = ".jack"

// SourceLoader hands the compiler the complete text of a unit.
type SourceLoader interface {
	Load(path string) (string, error)
}

type FileSourceLoader struct{}

func (FileSourceLoader) Load(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("could not open file %q for reading: %w", path, err)
	}
	return string(content), nil
}

func removeExtension(filePath string) string {
	extension := filepath.Ext(filePath)
	return filePath[:len(filePath)-len(extension)]
}

func getClassName(filePath string) string {
	return removeExtension(filepath.Base(filePath))
}

// SourceSet describes the units to compile: a single file, or the files below a directory
// matching one of the Include patterns and none of the Exclude patterns. Patterns use
// doublestar syntax and are matched against slash-separated paths relative to the root.
type SourceSet struct {
	Root    string
	Include []string
	Exclude []string

	single bool
}

// NewSourceSet resolves fileOrDir, which may itself be a glob pattern such as src/**/*.jack.
func NewSourceSet(fileOrDir string, include, exclude []string) (SourceSet, error) {
	set := SourceSet{Root: fileOrDir, Include: include, Exclude: exclude}

	if base, pattern := doublestar.SplitPattern(filepath.ToSlash(fileOrDir)); pattern != "" && hasMeta(pattern) {
		if !doublestar.ValidatePattern(pattern) {
			return SourceSet{}, fmt.Errorf("invalid pattern %q", fileOrDir)
		}
		set.Root = filepath.FromSlash(base)
		set.Include = []string{pattern}
	}

	fileOrDirStat, err := os.Stat(set.Root)
	if err != nil {
		return SourceSet{}, fmt.Errorf("cannot stat file/dir %q: %w", set.Root, err)
	}
	set.single = !fileOrDirStat.IsDir()

	for _, pattern := range append(append([]string{}, set.Include...), set.Exclude...) {
		if !doublestar.ValidatePattern(pattern) {
			return SourceSet{}, fmt.Errorf("invalid pattern %q", pattern)
		}
	}
	return set, nil
}

func hasMeta(pattern string) bool {
	for _, c := range pattern {
		switch c {
		case '*', '?', '[', '{':
			return true
		}
	}
	return false
}

// Matches reports whether path belongs to the set.
func (s SourceSet) Matches(path string) bool {
	if filepath.Ext(path) != SourceExtension {
		return false
	}
	if s.single {
		return filepath.Clean(path) == filepath.Clean(s.Root)
	}

	rel, err := filepath.Rel(s.Root, path)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)

	for _, pattern := range s.Exclude {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return false
		}
	}
	for _, pattern := range s.Include {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

// Collect lists the files of the set in natural order.
func (s SourceSet) Collect() (files []string, err error) {
	if s.single {
		if filepath.Ext(s.Root) != SourceExtension {
			return nil, fmt.Errorf("%q is not a %s file", s.Root, SourceExtension)
		}
		return []string{s.Root}, nil
	}

	seen := map[string]bool{}
	fsys := os.DirFS(s.Root)
	for _, pattern := range s.Include {
		matches, err := doublestar.Glob(fsys, pattern)
		if err != nil {
			return nil, fmt.Errorf("could not expand pattern %q in %q: %w", pattern, s.Root, err)
		}
		for _, match := range matches {
			path := filepath.Join(s.Root, filepath.FromSlash(match))
			if seen[path] || !s.Matches(path) {
				continue
			}
			if info, err := fs.Stat(fsys, match); err != nil || info.IsDir() {
				continue
			}
			seen[path] = true
			files = append(files, path)
		}
	}

	sort.Slice(files, func(i, j int) bool {
		return natural.Less(files[i], files[j])
	})
	return files, nil
}

// BaseDir is the directory the units of the set are located relative to.
func (s SourceSet) BaseDir() string {
	if s.single {
		return filepath.Dir(s.Root)
	}
	return s.Root
}

// Dirs lists the directories holding the set, for watching.
func (s SourceSet) Dirs() ([]string, error) {
	if s.single {
		return []string{filepath.Dir(s.Root)}, nil
	}
	var dirs []string
	err := filepath.WalkDir(s.Root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			dirs = append(dirs, path)
		}
		return nil
	})
	return dirs, err
}
