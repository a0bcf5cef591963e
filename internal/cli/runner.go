package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mvp-joe/cmockgen/internal/config"
	"github.com/mvp-joe/cmockgen/internal/discovery"
	"github.com/mvp-joe/cmockgen/internal/generator"
	"github.com/mvp-joe/cmockgen/internal/header"
	"github.com/mvp-joe/cmockgen/internal/unityhelper"
	"github.com/mvp-joe/cmockgen/internal/writer"
)

// ErrGenerationFailed is returned when at least one header could not be
// processed.
var ErrGenerationFailed = errors.New("generation failed")

// runOptions selects what a runner produces.
type runOptions struct {
	Skeleton bool
	DryRun   bool
	FailFast bool
}

// runStats counts the outcome of one run.
type runStats struct {
	Headers   int
	Failed    int
	Written   int
	Unchanged int
}

// runner turns headers into mock or skeleton files. It is built once per
// command and reused for every regeneration in watch mode.
type runner struct {
	cfg      *config.Config
	con      *console
	progress *progressReporter
	opts     runOptions

	parser *header.Parser
	gen    *generator.Generator
	out    *writer.Writer
}

func newRunner(cfg *config.Config, con *console, progress *progressReporter, opts runOptions) (*runner, error) {
	parser, err := header.NewParser(cfg.HeaderOptions(con.Logger()))
	if err != nil {
		return nil, fmt.Errorf("failed to create header parser: %w", err)
	}

	sources, err := unityhelper.LoadFiles(cfg.UnityHelperPath)
	if err != nil {
		return nil, err
	}
	helper, err := unityhelper.New(cfg.HelperOptions(), sources...)
	if err != nil {
		return nil, fmt.Errorf("failed to load unity helpers: %w", err)
	}

	gen, err := generator.New(cfg.GeneratorOptions(), helper)
	if err != nil {
		return nil, err
	}

	outDir := cfg.MockPath
	if opts.Skeleton {
		outDir = cfg.SkeletonDir()
	}

	return &runner{
		cfg:      cfg,
		con:      con,
		progress: progress,
		opts:     opts,
		parser:   parser,
		gen:      gen,
		out:      writer.New(outDir, writer.Options{DryRun: opts.DryRun}),
	}, nil
}

// newDiscovery builds the header finder for this runner. Mock output is never
// treated as input.
func (r *runner) newDiscovery() (*discovery.Discovery, error) {
	opts := discovery.Options{
		HeaderPatterns: r.cfg.HeaderPatterns,
		IgnorePatterns: r.cfg.IgnorePatterns,
	}
	if !r.opts.Skeleton {
		opts.ExcludeDirs = []string{r.cfg.MockPath}
	}
	return discovery.New(opts)
}

// Run processes targets in order. A failing header is reported and
// skipped unless FailFast is set; the returned error wraps
// ErrGenerationFailed when anything failed.
func (r *runner) Run(ctx context.Context, targets []discovery.Target) (runStats, error) {
	stats := runStats{}
	description := "Generating mocks"
	if r.opts.Skeleton {
		description = "Generating skeletons"
	}

	r.progress.Start(len(targets), description)
	defer r.progress.Finish()

	for _, t := range targets {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		stats.Headers++
		if err := r.process(t, &stats); err != nil {
			stats.Failed++
			r.progress.Clear()
			r.con.Errorf("%s: %v", t.Path, err)
			if r.opts.FailFast {
				break
			}
		}
		r.progress.Advance()
	}

	if stats.Failed > 0 {
		return stats, fmt.Errorf("%w: %d of %d headers failed", ErrGenerationFailed, stats.Failed, stats.Headers)
	}
	return stats, nil
}

func (r *runner) process(t discovery.Target, stats *runStats) error {
	source, err := os.ReadFile(t.Path)
	if err != nil {
		return fmt.Errorf("failed to read header: %w", err)
	}

	base := filepath.Base(t.Path)
	ext := filepath.Ext(base)
	name := strings.TrimSuffix(base, ext)

	if r.opts.Skeleton {
		r.announce("Creating skeleton for %s...", name)
	} else {
		r.announce("Creating mock for %s...", name)
	}

	mod, err := r.parser.Parse(name, string(source))
	if err != nil {
		return err
	}

	var files []generator.File
	if r.opts.Skeleton {
		existing, err := r.out.ReadExisting(r.gen.SkeletonPath(name))
		if err != nil {
			return err
		}
		file, err := r.gen.Skeleton(name, mod, existing)
		if err != nil {
			return err
		}
		files = []generator.File{file}
	} else {
		files, err = r.gen.Mock(name, ext, t.Folder, mod)
		if err != nil {
			return err
		}
	}

	return r.write(files, stats)
}

// write replaces all files of one header together so a failure never leaves
// a new header beside an old source.
func (r *runner) write(files []generator.File, stats *runStats) error {
	batch := make([]writer.File, len(files))
	for i, f := range files {
		batch[i] = writer.File{Path: f.Path, Content: f.Content}
	}
	results, err := r.out.WriteFiles(batch)
	if err != nil {
		return err
	}

	for _, res := range results {
		if !res.Changed {
			stats.Unchanged++
			r.con.Debugf("  unchanged %s", res.Path)
			continue
		}
		stats.Written++
		if res.Diff != "" {
			r.progress.Clear()
			fmt.Fprint(r.con.out, res.Diff)
			continue
		}
		r.con.Debugf("  wrote %s", res.Path)
	}
	return nil
}

// announce prints per-header progress text when no bar is drawn.
func (r *runner) announce(format string, args ...any) {
	if r.progress.Active() {
		r.con.Debugf(format, args...)
		return
	}
	r.con.Printf(format, args...)
}
