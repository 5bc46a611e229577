package scanner

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func relPaths(files []File) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.RelPath
	}
	return out
}

func TestScanCollectsPineFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.pine", "plot(close)")
	writeFile(t, root, "sub/b.pine", "plot(open)")
	writeFile(t, root, "readme.md", "# notes")

	s := New(nil, nil, 0, 0)
	files, err := s.Scan(root)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a.pine", "sub/b.pine"}, relPaths(files))
}

func TestScanExcludePatterns(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "keep.pine", "plot(close)")
	writeFile(t, root, "vendor/dep.pine", "plot(close)")
	writeFile(t, root, "old.bak.pine", "plot(close)")

	s := New(nil, []string{"**/vendor/**", "**/*.bak.pine"}, 0, 0)
	files, err := s.Scan(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"keep.pine"}, relPaths(files))
}

func TestScanIncludePatterns(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "strategies/s.pine", "plot(close)")
	writeFile(t, root, "indicators/i.pine", "plot(close)")

	s := New([]string{"strategies/**/*.pine"}, nil, 0, 0)
	files, err := s.Scan(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"strategies/s.pine"}, relPaths(files))
}

func TestScanSizeLimit(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "small.pine", "plot(close)")
	writeFile(t, root, "big.pine", strings.Repeat("x", 100))

	s := New(nil, nil, 50, 0)
	files, err := s.Scan(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"small.pine"}, relPaths(files))
}

func TestScanFileCountLimit(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"a.pine", "b.pine", "c.pine"} {
		writeFile(t, root, name, "plot(close)")
	}

	s := New(nil, nil, 0, 2)
	files, err := s.Scan(root)
	require.NoError(t, err)
	assert.Len(t, files, 2)
}

func TestScanSingleFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "only.txt", "plot(close)")

	// Explicit file paths bypass the include patterns.
	s := New(nil, nil, 0, 0)
	files, err := s.Scan(filepath.Join(root, "only.txt"))
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "only.txt", files[0].RelPath)
}

func TestScanMissingRoot(t *testing.T) {
	s := New(nil, nil, 0, 0)
	_, err := s.Scan(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestRead(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.pine", "plot(close)")

	s := New(nil, nil, 5, 0)
	files := []File{{Path: filepath.Join(root, "a.pine"), RelPath: "a.pine"}}
	_, err := s.Read(files[0])
	assert.Error(t, err, "size cap enforced on read")

	s = New(nil, nil, 0, 0)
	content, err := s.Read(files[0])
	require.NoError(t, err)
	assert.Equal(t, "plot(close)", content)
}
