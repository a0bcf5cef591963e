// Package writer puts generated files on disk. Files are staged next to
// their target and renamed into place, and an unchanged file is never
// rewritten so build tools see no spurious timestamps.
package writer

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/akedrou/textdiff"
	"github.com/google/uuid"
)

// Options configures a Writer.
type Options struct {
	// DryRun computes results and diffs without touching the disk.
	DryRun bool
}

// Result describes one WriteFile call.
type Result struct {
	Path    string // absolute or root-joined path of the target
	Changed bool   // content differs from what was on disk
	Created bool   // target did not exist
	Diff    string // unified diff, only filled in dry-run mode
}

// Writer writes files below a root directory.
type Writer struct {
	root   string
	dryRun bool
}

// New creates a writer rooted at root. The directory is created on the
// first write.
func New(root string, opts Options) *Writer {
	return &Writer{
		root:   root,
		dryRun: opts.DryRun,
	}
}

// Root returns the directory files are written below.
func (w *Writer) Root() string {
	return w.root
}

// DryRun reports whether the writer leaves the disk untouched.
func (w *Writer) DryRun() bool {
	return w.dryRun
}

func (w *Writer) path(rel string) string {
	return filepath.Join(w.root, filepath.FromSlash(rel))
}

// ReadExisting returns the current content of rel, or "" if it does not exist.
func (w *Writer) ReadExisting(rel string) (string, error) {
	data, err := os.ReadFile(w.path(rel))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read %s: %w", rel, err)
	}
	return string(data), nil
}

// File is one generated file, relative to the writer root.
type File struct {
	Path    string
	Content string
}

// WriteFile replaces rel with content unless it already holds exactly that
// content.
func (w *Writer) WriteFile(rel, content string) (Result, error) {
	results, err := w.WriteFiles([]File{{Path: rel, Content: content}})
	if err != nil {
		return Result{Path: w.path(rel)}, err
	}
	return results[0], nil
}

// WriteFiles writes a set of files that belong together. Every changed file
// is staged before any target is replaced; if staging fails no target is
// touched and all staged files are removed.
func (w *Writer) WriteFiles(files []File) ([]Result, error) {
	results := make([]Result, len(files))
	for i, f := range files {
		res, err := w.compare(f.Path, f.Content)
		if err != nil {
			return nil, err
		}
		results[i] = res
	}
	if w.dryRun {
		return results, nil
	}

	type staged struct{ temp, final string }
	var pending []staged
	discard := func(list []staged) {
		for _, s := range list {
			os.Remove(s.temp)
		}
	}

	for i, f := range files {
		if !results[i].Changed {
			continue
		}
		temp, err := stage(results[i].Path, f.Content)
		if err != nil {
			discard(pending)
			return nil, err
		}
		pending = append(pending, staged{temp: temp, final: results[i].Path})
	}

	for i, s := range pending {
		if err := os.Rename(s.temp, s.final); err != nil {
			discard(pending[i:])
			return nil, fmt.Errorf("failed to rename temp file: %w", err)
		}
	}
	return results, nil
}

// compare reports whether rel needs writing and, in dry-run mode, the diff.
func (w *Writer) compare(rel, content string) (Result, error) {
	res := Result{Path: w.path(rel)}

	existing, err := os.ReadFile(res.Path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		res.Created = true
		res.Changed = true
	case err != nil:
		return res, fmt.Errorf("failed to read %s: %w", rel, err)
	default:
		res.Changed = string(existing) != content
	}

	if res.Changed && w.dryRun {
		res.Diff = textdiff.Unified(rel+" (current)", rel+" (generated)", string(existing), content)
	}
	return res, nil
}

// stage writes content next to finalPath so the rename never crosses
// filesystems, and returns the temp file path.
func stage(finalPath, content string) (string, error) {
	dir := filepath.Dir(finalPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	tempPath := filepath.Join(dir, fmt.Sprintf("%s.%s.new", filepath.Base(finalPath), uuid.New().String()))
	if err := os.WriteFile(tempPath, []byte(content), 0644); err != nil {
		os.Remove(tempPath)
		return "", fmt.Errorf("failed to write temp file: %w", err)
	}
	return tempPath, nil
}
