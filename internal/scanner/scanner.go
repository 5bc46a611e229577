// Package scanner collects Pine Script files for directory reviews.
// Include and exclude globs use doublestar `**` patterns matched against
// paths relative to the scan root.
package scanner

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	pserrors "github.com/iamrichardD/mcp-server-pinescript/internal/errors"
)

// File is one collected script.
type File struct {
	Path    string // absolute path
	RelPath string // path relative to the scan root, slash-separated
	Size    int64
}

// Scanner walks a directory tree applying the configured patterns and
// limits.
type Scanner struct {
	include      []string
	exclude      []string
	maxFileSize  int64
	maxFileCount int
}

// New builds a scanner. Empty include means "**/*.pine".
func New(include, exclude []string, maxFileSize int64, maxFileCount int) *Scanner {
	if len(include) == 0 {
		include = []string{"**/*.pine"}
	}
	return &Scanner{
		include:      include,
		exclude:      exclude,
		maxFileSize:  maxFileSize,
		maxFileCount: maxFileCount,
	}
}

// Scan walks root and returns matching files in deterministic walk
// order. Oversized files are skipped silently; the file count limit
// stops collection once reached.
func (s *Scanner) Scan(root string) ([]File, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, pserrors.NewFileError("scan", root, err)
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, pserrors.NewFileError("scan", root, err)
	}

	// A single file path reviews that file regardless of patterns.
	if !info.IsDir() {
		return []File{{
			Path:    absRoot,
			RelPath: filepath.Base(absRoot),
			Size:    info.Size(),
		}}, nil
	}

	var out []File
	walkErr := filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable subtrees are skipped, not fatal.
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		rel, err := filepath.Rel(absRoot, path)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if rel == "." {
			return nil
		}

		if d.IsDir() {
			if s.excluded(rel + "/") {
				return fs.SkipDir
			}
			return nil
		}

		if s.maxFileCount > 0 && len(out) >= s.maxFileCount {
			return fs.SkipAll
		}
		if !s.included(rel) || s.excluded(rel) {
			return nil
		}

		fi, err := d.Info()
		if err != nil {
			return nil
		}
		if s.maxFileSize > 0 && fi.Size() > s.maxFileSize {
			return nil
		}

		out = append(out, File{Path: path, RelPath: rel, Size: fi.Size()})
		return nil
	})
	if walkErr != nil {
		return nil, pserrors.NewFileError("scan", root, walkErr)
	}
	return out, nil
}

func (s *Scanner) included(rel string) bool {
	for _, pattern := range s.include {
		if ok, err := doublestar.Match(pattern, rel); err == nil && ok {
			return true
		}
	}
	return false
}

// excluded matches files directly and directories by any pattern that
// covers their subtree.
func (s *Scanner) excluded(rel string) bool {
	isDir := strings.HasSuffix(rel, "/")
	name := strings.TrimSuffix(rel, "/")
	for _, pattern := range s.exclude {
		if ok, err := doublestar.Match(pattern, name); err == nil && ok {
			return true
		}
		if isDir {
			// "**/vendor/**" should prune the vendor directory itself.
			if ok, err := doublestar.Match(pattern, name+"/x"); err == nil && ok {
				return true
			}
		}
	}
	return false
}

// Read loads one collected file, enforcing the size cap again in case the
// file grew between scan and read.
func (s *Scanner) Read(f File) (string, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return "", pserrors.NewFileError("read", f.Path, err)
	}
	if s.maxFileSize > 0 && int64(len(data)) > s.maxFileSize {
		return "", pserrors.NewFileError("read", f.Path,
			fmt.Errorf("file is %d bytes, limit is %d", len(data), s.maxFileSize))
	}
	return string(data), nil
}
