// Package discovery expands command line arguments into the header files to
// mock.
package discovery

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"
)

// compiledPattern holds both the pattern string and compiled glob
type compiledPattern struct {
	pattern string
	glob    glob.Glob
}

// Options selects headers inside directory arguments.
type Options struct {
	HeaderPatterns []string // e.g. **/*.h
	IgnorePatterns []string // e.g. build/**
	ExcludeDirs    []string // never descended into, e.g. the mock output directory
}

// Discovery finds headers with glob patterns and ignore rules.
type Discovery struct {
	headerPatterns []compiledPattern
	ignorePatterns []compiledPattern
	excludeDirs    []string
}

// New compiles the configured patterns.
func New(opts Options) (*Discovery, error) {
	d := &Discovery{}

	var err error
	if d.headerPatterns, err = compileAll(opts.HeaderPatterns); err != nil {
		return nil, fmt.Errorf("header_patterns: %w", err)
	}
	if d.ignorePatterns, err = compileAll(opts.IgnorePatterns); err != nil {
		return nil, fmt.Errorf("ignore_patterns: %w", err)
	}

	for _, dir := range opts.ExcludeDirs {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return nil, err
		}
		d.excludeDirs = append(d.excludeDirs, abs)
	}

	return d, nil
}

func compileAll(patterns []string) ([]compiledPattern, error) {
	out := make([]compiledPattern, 0, len(patterns))
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
		}
		out = append(out, compiledPattern{pattern: pattern, glob: g})
	}
	return out, nil
}

// Target is a header to mock. Folder is the slash-separated directory of
// the header relative to the directory argument it was found in; it is
// empty for file arguments and headers at the top of a directory argument.
type Target struct {
	Path   string
	Folder string
}

// Expand resolves args into targets sorted by path. Files are taken as
// given; directories are walked and filtered. A header reachable through
// several arguments is returned once, for the first argument naming it.
func (d *Discovery) Expand(args []string) ([]Target, error) {
	seen := map[string]bool{}
	var out []Target
	add := func(t Target) {
		if !seen[t.Path] {
			seen[t.Path] = true
			out = append(out, t)
		}
	}

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("failed to access %s: %w", arg, err)
		}
		if !info.IsDir() {
			add(Target{Path: filepath.Clean(arg)})
			continue
		}
		found, err := d.Walk(arg)
		if err != nil {
			return nil, err
		}
		for _, path := range found {
			add(Target{Path: path, Folder: folderOf(arg, path)})
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

// Resolve maps a changed file back to the target it belongs to, using the
// same rules as Expand.
func (d *Discovery) Resolve(args []string, path string) (Target, bool) {
	path = filepath.Clean(path)
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			continue
		}
		if !info.IsDir() {
			if sameFile(arg, path) {
				return Target{Path: path}, true
			}
			continue
		}
		if d.Match(arg, path) {
			return Target{Path: path, Folder: folderOf(arg, path)}, true
		}
	}
	return Target{}, false
}

func folderOf(root, path string) string {
	rel, err := filepath.Rel(root, filepath.Dir(path))
	if err != nil || rel == "." {
		return ""
	}
	return filepath.ToSlash(rel)
}

func sameFile(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	return errA == nil && errB == nil && absA == absB
}

// Walk returns the headers below root that match the header patterns and
// no ignore pattern.
func (d *Discovery) Walk(root string) ([]string, error) {
	files := []string{}

	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if entry.IsDir() {
			if path != root && d.excluded(path) {
				return filepath.SkipDir
			}
			return nil
		}

		if d.Match(root, path) {
			files = append(files, path)
		}
		return nil
	})

	return files, err
}

// Match reports whether path, found below root, is a header to mock.
func (d *Discovery) Match(root, path string) bool {
	relPath, err := filepath.Rel(root, path)
	if err != nil || relPath == ".." || strings.HasPrefix(relPath, "../") {
		return false
	}

	// Normalize path separators for glob matching
	relPath = filepath.ToSlash(relPath)

	if d.shouldIgnore(relPath) {
		return false
	}
	if d.excluded(filepath.Dir(path)) {
		return false
	}
	return matchesAnyPattern(relPath, d.headerPatterns)
}

func (d *Discovery) excluded(dir string) bool {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return false
	}
	for _, ex := range d.excludeDirs {
		if abs == ex || strings.HasPrefix(abs, ex+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// shouldIgnore checks if a path matches any ignore pattern.
func (d *Discovery) shouldIgnore(relPath string) bool {
	if matchesAnyPattern(relPath, d.ignorePatterns) {
		return true
	}

	// Also check every parent directory, so "build" matches "build/**"
	for dir := relPath; strings.Contains(dir, "/"); {
		dir = dir[:strings.LastIndex(dir, "/")]
		if matchesAnyPattern(dir+"/**", d.ignorePatterns) {
			return true
		}
	}
	return false
}

// matchesAnyPattern checks if a path matches any of the given patterns.
func matchesAnyPattern(path string, patterns []compiledPattern) bool {
	for _, cp := range patterns {
		if cp.glob.Match(path) {
			return true
		}
	}

	// Special handling: if path is in root (no slash), also try matching against
	// patterns with **/ prefix removed. This makes "**/*.h" match both "foo.h"
	// and "drivers/foo.h".
	if !strings.Contains(path, "/") {
		for _, cp := range patterns {
			if strings.HasPrefix(cp.pattern, "**/") {
				simplified := strings.TrimPrefix(cp.pattern, "**/")
				if simplifiedGlob, err := glob.Compile(simplified, '/'); err == nil {
					if simplifiedGlob.Match(path) {
						return true
					}
				}
			}
		}
	}

	return false
}
