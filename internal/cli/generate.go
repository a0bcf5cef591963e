package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/cmockgen/internal/config"
	"github.com/mvp-joe/cmockgen/internal/discovery"
	"github.com/mvp-joe/cmockgen/internal/watcher"
)

// generateFlags are the flags shared by the mock and skeleton commands.
type generateFlags struct {
	dryRun   bool
	failFast bool
	watch    bool
	plugins  []string
	subdir   string
	output   string // --mock-path or --skeleton-path
}

func addGenerateFlags(cmd *cobra.Command, f *generateFlags) {
	cmd.Flags().BoolVar(&f.dryRun, "dry-run", false, "Print a diff of what would change without writing files")
	cmd.Flags().BoolVar(&f.failFast, "fail-fast", false, "Stop at the first header that fails")
	cmd.Flags().BoolVarP(&f.watch, "watch", "w", false, "Watch the inputs and regenerate on change")
	cmd.Flags().StringSliceVar(&f.plugins, "plugins", nil, "Plugins to load, overriding the config file")
	cmd.Flags().StringVar(&f.subdir, "subdir", "", "Subdirectory of the output path to write into")
}

// applyFlags overrides configuration values with flags the user set
// explicitly and re-validates the result.
func applyFlags(cmd *cobra.Command, cfg *config.Config, f *generateFlags, outputFlag string) error {
	flags := cmd.Flags()
	if flags.Changed("plugins") {
		cfg.Plugins = f.plugins
	}
	if flags.Changed("subdir") {
		cfg.Subdir = f.subdir
	}
	if flags.Changed(outputFlag) {
		switch outputFlag {
		case "mock-path":
			cfg.MockPath = f.output
		case "skeleton-path":
			cfg.SkeletonPath = f.output
		}
	}

	cfg.Normalize()
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// loadConfig reads the --config file, or cmockgen.yml from the working
// directory when none was given.
func loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if cfgFile != "" {
		cfg, err = config.NewFileLoader(cfgFile).Load()
	} else {
		cfg, err = config.LoadConfig()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if verboseFlag {
		cfg.Verbosity = levelVerbose
	}
	if quietFlag {
		cfg.Verbosity = levelErrors
	}
	return cfg, nil
}

// runGenerate is the body of the mock and skeleton commands.
func runGenerate(cmd *cobra.Command, args []string, f *generateFlags, outputFlag string, skeleton bool) error {
	// Set up context with cancellation for Ctrl+C
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case <-sigChan:
			fmt.Fprintln(cmd.ErrOrStderr(), "\nInterrupted! Stopping...")
			cancel()
		case <-ctx.Done():
		}
	}()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := applyFlags(cmd, cfg, f, outputFlag); err != nil {
		return err
	}

	return generate(ctx, cmd, cfg, args, runOptions{
		Skeleton: skeleton,
		DryRun:   f.dryRun,
		FailFast: f.failFast,
	}, f.watch)
}

func generate(ctx context.Context, cmd *cobra.Command, cfg *config.Config, args []string, opts runOptions, watch bool) error {
	con := newConsole(cfg.Verbosity, cmd.OutOrStdout(), cmd.ErrOrStderr())
	progress := newProgressReporter(cfg.Verbosity == levelNormal && !opts.DryRun, cmd.ErrOrStderr())

	r, err := newRunner(cfg, con, progress, opts)
	if err != nil {
		return err
	}
	d, err := r.newDiscovery()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	targets, err := d.Expand(args)
	if err != nil {
		return err
	}
	if len(targets) == 0 {
		con.Warnf("No headers found in %v", args)
	}

	stats, runErr := r.Run(ctx, targets)
	summarize(con, stats, opts)

	if !watch {
		return runErr
	}
	if runErr != nil && !errors.Is(runErr, ErrGenerationFailed) {
		return runErr
	}
	return watchAndRegenerate(ctx, con, r, d, args)
}

func summarize(con *console, stats runStats, opts runOptions) {
	if stats.Headers == 0 {
		return
	}
	verb := "written"
	if opts.DryRun {
		verb = "would change"
	}
	con.Printf("✓ Processed %d headers: %d files %s, %d unchanged, %d failed",
		stats.Headers, stats.Written, verb, stats.Unchanged, stats.Failed)
}

// watchAndRegenerate blocks until ctx is cancelled, regenerating every
// header that changes below the arguments.
func watchAndRegenerate(ctx context.Context, con *console, r *runner, d *discovery.Discovery, args []string) error {
	fw, err := watcher.NewFileWatcher(watchDirs(args), watcher.Options{
		Filter: func(path string) bool {
			_, ok := d.Resolve(args, path)
			return ok
		},
		Logger: con.Logger(),
	})
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}

	err = fw.Start(ctx, func(files []string) {
		var targets []discovery.Target
		for _, file := range files {
			if t, ok := d.Resolve(args, file); ok {
				targets = append(targets, t)
			}
		}
		if len(targets) == 0 {
			return
		}
		stats, err := r.Run(ctx, targets)
		if err != nil && ctx.Err() == nil {
			con.Errorf("%v", err)
		}
		summarize(con, stats, r.opts)
	})
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	defer fw.Stop()

	con.Printf("Watching for changes (Ctrl+C to stop)...")
	<-ctx.Done()
	con.Printf("Watch mode stopped")
	return nil
}

// watchDirs returns the directories to watch: directory arguments as
// given and the parent directory of each file argument.
func watchDirs(args []string) []string {
	seen := map[string]bool{}
	var dirs []string
	for _, arg := range args {
		dir := arg
		if info, err := os.Stat(arg); err == nil && !info.IsDir() {
			dir = filepath.Dir(arg)
		}
		dir = filepath.Clean(dir)
		if !seen[dir] {
			seen[dir] = true
			dirs = append(dirs, dir)
		}
	}
	sort.Strings(dirs)
	return dirs
}
