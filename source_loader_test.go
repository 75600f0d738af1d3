package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sourceTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	for _, name := range []string{
		"Square.jack",
		"A10.jack",
		"Main.jack",
		"A2.jack",
		"notes.txt",
		"sub/Game.jack",
		"skip/Old.jack",
	} {
		writeFile(t, filepath.Join(root, filepath.FromSlash(name)), "class X { }")
	}
	require.NoError(t, os.Mkdir(filepath.Join(root, "Empty.jack"), 0o755))
	return root
}

func TestSourceSet(t *testing.T) {

	t.Run("directory is collected recursively in natural order", func(t *testing.T) {
		root := sourceTree(t)
		set, err := NewSourceSet(root, []string{"**/*.jack"}, []string{"skip/**"})
		require.NoError(t, err)

		files, err := set.Collect()
		require.NoError(t, err)

		assert.Equal(t, []string{
			filepath.Join(root, "A2.jack"),
			filepath.Join(root, "A10.jack"),
			filepath.Join(root, "Main.jack"),
			filepath.Join(root, "Square.jack"),
			filepath.Join(root, "sub", "Game.jack"),
		}, files)
	})

	t.Run("include patterns restrict the set", func(t *testing.T) {
		root := sourceTree(t)
		set, err := NewSourceSet(root, []string{"*.jack"}, nil)
		require.NoError(t, err)

		files, err := set.Collect()
		require.NoError(t, err)
		assert.Len(t, files, 4)
		assert.NotContains(t, files, filepath.Join(root, "sub", "Game.jack"))
	})

	t.Run("glob source", func(t *testing.T) {
		root := sourceTree(t)
		set, err := NewSourceSet(filepath.Join(root, "sub", "*.jack"), []string{"**/*.jack"}, nil)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(root, "sub"), set.Root)

		files, err := set.Collect()
		require.NoError(t, err)
		assert.Equal(t, []string{filepath.Join(root, "sub", "Game.jack")}, files)
	})

	t.Run("single file", func(t *testing.T) {
		root := sourceTree(t)
		path := filepath.Join(root, "Main.jack")
		set, err := NewSourceSet(path, nil, nil)
		require.NoError(t, err)

		files, err := set.Collect()
		require.NoError(t, err)
		assert.Equal(t, []string{path}, files)
		assert.True(t, set.Matches(path))
		assert.False(t, set.Matches(filepath.Join(root, "A2.jack")))

		dirs, err := set.Dirs()
		require.NoError(t, err)
		assert.Equal(t, []string{root}, dirs)
		assert.Equal(t, root, set.BaseDir())
	})

	t.Run("single file without the source extension", func(t *testing.T) {
		root := sourceTree(t)
		set, err := NewSourceSet(filepath.Join(root, "notes.txt"), nil, nil)
		require.NoError(t, err)

		_, err = set.Collect()
		assert.Error(t, err)
	})

	t.Run("missing source", func(t *testing.T) {
		_, err := NewSourceSet(filepath.Join(t.TempDir(), "nothing"), nil, nil)
		assert.Error(t, err)
	})

	t.Run("invalid pattern", func(t *testing.T) {
		_, err := NewSourceSet(t.TempDir(), []string{"[a-"}, nil)
		assert.Error(t, err)
	})

	t.Run("matches applies excludes before includes", func(t *testing.T) {
		root := sourceTree(t)
		set, err := NewSourceSet(root, []string{"**/*.jack"}, []string{"skip/**"})
		require.NoError(t, err)

		assert.True(t, set.Matches(filepath.Join(root, "sub", "Game.jack")))
		assert.False(t, set.Matches(filepath.Join(root, "skip", "Old.jack")))
		assert.False(t, set.Matches(filepath.Join(root, "notes.txt")))
	})

	t.Run("dirs lists every directory below the root", func(t *testing.T) {
		root := sourceTree(t)
		set, err := NewSourceSet(root, []string{"**/*.jack"}, nil)
		require.NoError(t, err)

		dirs, err := set.Dirs()
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{
			root,
			filepath.Join(root, "Empty.jack"),
			filepath.Join(root, "skip"),
			filepath.Join(root, "sub"),
		}, dirs)
	})
}

func TestFileSourceLoader(t *testing.T) {
	path := writeFile(t, filepath.Join(t.TempDir(), "Main.jack"), "class Main { }")

	source, err := FileSourceLoader{}.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "class Main { }", source)

	_, err = FileSourceLoader{}.Load(path + ".missing")
	assert.Error(t, err)
}

func TestClassNameFromPath(t *testing.T) {
	assert.Equal(t, "Main", getClassName(filepath.Join("projects", "11", "Main.jack")))
	assert.Equal(t, filepath.Join("projects", "Main"), removeExtension(filepath.Join("projects", "Main.jack")))
}
