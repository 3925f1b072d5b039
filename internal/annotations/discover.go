package annotations

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultPatterns are the file name globs treated as annotation files.
var DefaultPatterns = []string{"*.txt", "*.notes"}

// Discover walks root and returns the files whose base name matches any of
// patterns, sorted by path. Hidden directories are skipped.
func Discover(root string, patterns []string) ([]string, error) {
	if len(patterns) == 0 {
		patterns = DefaultPatterns
	}
	for _, pattern := range patterns {
		if _, err := filepath.Match(pattern, ""); err != nil {
			return nil, fmt.Errorf("annotation pattern %q: %w", pattern, err)
		}
	}

	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if matchesAny(d.Name(), patterns) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("discover annotations in %s: %w", root, err)
	}
	sort.Strings(files)
	return files, nil
}

// Collect expands a mix of file and directory arguments into an ordered,
// de-duplicated file list. Directories are expanded with Discover; files are
// taken as given regardless of pattern.
func Collect(paths []string, patterns []string) ([]string, error) {
	seen := make(map[string]struct{})
	var out []string
	add := func(path string) {
		key := filepath.Clean(path)
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		out = append(out, path)
	}
	for _, path := range paths {
		path = strings.TrimSpace(path)
		if path == "" {
			continue
		}
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("stat annotation path: %w", err)
		}
		if !info.IsDir() {
			add(path)
			continue
		}
		found, err := Discover(path, patterns)
		if err != nil {
			return nil, err
		}
		for _, file := range found {
			add(file)
		}
	}
	return out, nil
}

func matchesAny(name string, patterns []string) bool {
	for _, pattern := range patterns {
		if ok, _ := filepath.Match(pattern, name); ok {
			return true
		}
	}
	return false
}
