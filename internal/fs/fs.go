package fs

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// PathResolver turns host file paths into the keys sent to the review
// service.
type PathResolver struct {
	root string
}

// NewPathResolver creates a PathResolver. An empty root keeps absolute paths.
func NewPathResolver(root string) (*PathResolver, error) {
	if root == "" {
		return &PathResolver{}, nil
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("invalid root directory '%s': %w", root, err)
	}
	return &PathResolver{root: abs}, nil
}

// Key returns the service key for path: the absolute path, or the
// slash-separated path relative to the root when path lies under it.
func (r *PathResolver) Key(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	if r.root == "" {
		return abs
	}
	rel, err := filepath.Rel(r.root, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return abs
	}
	return filepath.ToSlash(rel)
}

// HasExtension reports whether name ends in one of exts. Each entry is
// matched as a plain suffix, so ".h" matches "util.h" and not "util.hpp".
func HasExtension(name string, exts []string) bool {
	for _, ext := range exts {
		if ext != "" && strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

// ReadLines reads a text file into lines without their terminators.
func ReadLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		lines = append(lines, strings.TrimSuffix(scanner.Text(), "\r"))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return lines, nil
}
