package cli

// Test Plan for mock and skeleton generation:
// - A header produces Mock<name>.h and Mock<name>.c in the mock path
// - Regenerating unchanged headers writes nothing
// - A failing header is reported, the others still generate, and the run fails
// - --fail-fast stops at the first failure
// - Headers found in subdirectories keep their folder below the mock path
// - Dry run prints a diff and writes nothing
// - Skeletons land in skeleton_path and only append new stubs
// - Without --config, cmockgen.yml is read from the working directory
// - Flags override configuration and are validated
// - Watch directories cover directory and file arguments
// - The console filters by verbosity
// - The version command prints build information

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/cmockgen/internal/config"
	"github.com/mvp-joe/cmockgen/internal/discovery"
)

const uartHeader = `#ifndef UART_H
#define UART_H
int uart_read(char* buf, int len);
void uart_reset(void);
#endif
`

func writeHeader(t *testing.T, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func testConfig(root string) *config.Config {
	cfg := config.Default()
	cfg.MockPath = filepath.Join(root, "mocks")
	return cfg
}

type testOutput struct {
	out    bytes.Buffer
	errOut bytes.Buffer
}

func newTestRunner(t *testing.T, cfg *config.Config, opts runOptions) (*runner, *testOutput) {
	t.Helper()
	o := &testOutput{}
	con := newConsole(cfg.Verbosity, &o.out, &o.errOut)
	r, err := newRunner(cfg, con, newProgressReporter(false, &o.errOut), opts)
	require.NoError(t, err)
	return r, o
}

func TestRun_MockWritesFiles(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	path := writeHeader(t, root, "uart.h", uartHeader)
	r, o := newTestRunner(t, testConfig(root), runOptions{})

	stats, err := r.Run(context.Background(), []discovery.Target{{Path: path}})
	require.NoError(t, err)
	assert.Equal(t, runStats{Headers: 1, Written: 2}, stats)
	assert.Contains(t, o.out.String(), "Creating mock for uart...")

	mockH, err := os.ReadFile(filepath.Join(root, "mocks", "Mockuart.h"))
	require.NoError(t, err)
	assert.Contains(t, string(mockH), `#include "uart.h"`)
	assert.Contains(t, string(mockH), "uart_read_ExpectAndReturn")

	mockC, err := os.ReadFile(filepath.Join(root, "mocks", "Mockuart.c"))
	require.NoError(t, err)
	assert.Contains(t, string(mockC), "void uart_reset(void)")

	stats, err = r.Run(context.Background(), []discovery.Target{{Path: path}})
	require.NoError(t, err)
	assert.Equal(t, runStats{Headers: 1, Unchanged: 2}, stats)
}

func TestRun_FailureIsolation(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	empty := writeHeader(t, root, "a_empty.h", "typedef int empty_t;\n")
	good := writeHeader(t, root, "uart.h", uartHeader)
	targets := []discovery.Target{{Path: empty}, {Path: good}}

	cfg := testConfig(root)
	cfg.WhenNoPrototypes = "error"

	t.Run("continues past failures", func(t *testing.T) {
		r, o := newTestRunner(t, cfg, runOptions{})
		stats, err := r.Run(context.Background(), targets)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrGenerationFailed))
		assert.Contains(t, err.Error(), "1 of 2 headers failed")
		assert.Equal(t, 1, stats.Failed)
		assert.Contains(t, o.errOut.String(), "a_empty.h")
		assert.FileExists(t, filepath.Join(root, "mocks", "Mockuart.c"))
	})

	t.Run("fail fast", func(t *testing.T) {
		cfg := *cfg
		cfg.MockPath = filepath.Join(root, "fast")
		r, _ := newTestRunner(t, &cfg, runOptions{FailFast: true})
		stats, err := r.Run(context.Background(), targets)
		require.Error(t, err)
		assert.Equal(t, 1, stats.Headers)
		assert.NoFileExists(t, filepath.Join(root, "fast", "Mockuart.c"))
	})
}

func TestRun_CancelledContext(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	path := writeHeader(t, root, "uart.h", uartHeader)
	r, _ := newTestRunner(t, testConfig(root), runOptions{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := r.Run(ctx, []discovery.Target{{Path: path}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGenerate_DirectoryKeepsFolders(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	src := filepath.Join(root, "src")
	writeHeader(t, root, "src/uart.h", uartHeader)
	writeHeader(t, root, "src/drivers/spi.h", "void spi_send(int b);\n")
	writeHeader(t, root, "src/build/gen.h", "void gen(void);\n")

	cfg := testConfig(root)
	cfg.IgnorePatterns = []string{"build/**"}

	cmd := &cobra.Command{}
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)

	err := generate(context.Background(), cmd, cfg, []string{src}, runOptions{}, false)
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(root, "mocks", "Mockuart.h"))
	assert.FileExists(t, filepath.Join(root, "mocks", "drivers", "Mockspi.h"))
	assert.FileExists(t, filepath.Join(root, "mocks", "drivers", "Mockspi.c"))
	assert.NoFileExists(t, filepath.Join(root, "mocks", "build", "Mockgen.h"))
	assert.Contains(t, out.String(), "Processed 2 headers")
}

func TestRun_DryRun(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	path := writeHeader(t, root, "uart.h", uartHeader)
	r, o := newTestRunner(t, testConfig(root), runOptions{DryRun: true})

	stats, err := r.Run(context.Background(), []discovery.Target{{Path: path}})
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Written)
	assert.Contains(t, o.out.String(), "+#define uart_reset_Expect() uart_reset_CMockExpect(__LINE__)")
	assert.NoDirExists(t, filepath.Join(root, "mocks"))
}

func TestRun_Skeleton(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	path := writeHeader(t, root, "uart.h", uartHeader)

	cfg := testConfig(root)
	cfg.SkeletonPath = filepath.Join(root, "src")
	r, o := newTestRunner(t, cfg, runOptions{Skeleton: true})

	stats, err := r.Run(context.Background(), []discovery.Target{{Path: path}})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Written)
	assert.Contains(t, o.out.String(), "Creating skeleton for uart...")

	data, err := os.ReadFile(filepath.Join(root, "src", "uart.c"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "int uart_read(char* buf, int len)")

	// An added prototype is appended below the existing stubs.
	writeHeader(t, root, "uart.h", uartHeader+"void uart_flush(void);\n")
	stats, err = r.Run(context.Background(), []discovery.Target{{Path: path}})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Written)

	updated, err := os.ReadFile(filepath.Join(root, "src", "uart.c"))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(updated, data))
	assert.Contains(t, string(updated), "void uart_flush(void)")
}

func TestLoadConfig_WorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	writeHeader(t, dir, "cmockgen.yml", "cmock:\n  mock_path: build/mocks\n  plugins: [ignore]\n")
	t.Chdir(dir)

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "build/mocks", cfg.MockPath)
	assert.Equal(t, []string{"ignore"}, cfg.Plugins)

	cfgFile = filepath.Join(dir, "missing.yml")
	t.Cleanup(func() { cfgFile = "" })
	_, err = loadConfig()
	assert.Error(t, err)
}

func TestApplyFlags(t *testing.T) {
	t.Parallel()

	newCmd := func(f *generateFlags) *cobra.Command {
		cmd := &cobra.Command{}
		addGenerateFlags(cmd, f)
		cmd.Flags().StringVar(&f.output, "mock-path", "", "")
		return cmd
	}

	t.Run("overrides set flags only", func(t *testing.T) {
		var f generateFlags
		cmd := newCmd(&f)
		require.NoError(t, cmd.Flags().Set("plugins", "Ignore,:callback"))
		require.NoError(t, cmd.Flags().Set("mock-path", "out"))

		cfg := config.Default()
		cfg.Subdir = "keep"
		require.NoError(t, applyFlags(cmd, cfg, &f, "mock-path"))
		assert.Equal(t, []string{"ignore", "callback"}, cfg.Plugins)
		assert.Equal(t, "out", cfg.MockPath)
		assert.Equal(t, "keep", cfg.Subdir)
	})

	t.Run("rejects invalid combinations", func(t *testing.T) {
		var f generateFlags
		cmd := newCmd(&f)
		require.NoError(t, cmd.Flags().Set("plugins", "array"))

		cfg := config.Default()
		cfg.WhenPtr = "compare_ptr"
		err := applyFlags(cmd, cfg, &f, "mock-path")
		require.Error(t, err)
		assert.True(t, errors.Is(err, config.ErrIncompatibleOptions))
	})
}

func TestWatchDirs(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	file := writeHeader(t, root, "inc/board.h", "void b(void);\n")
	src := filepath.Join(root, "src")
	require.NoError(t, os.MkdirAll(src, 0755))

	got := watchDirs([]string{src, file, filepath.Join(root, "inc")})
	assert.Equal(t, []string{filepath.Join(root, "inc"), src}, got)
}

func TestConsole_Levels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		level             int
		wantWarn, wantOut bool
		wantDebug         bool
	}{
		{level: levelErrors},
		{level: levelWarnings, wantWarn: true},
		{level: levelNormal, wantWarn: true, wantOut: true},
		{level: levelVerbose, wantWarn: true, wantOut: true, wantDebug: true},
	}

	for _, tt := range tests {
		var out, errOut bytes.Buffer
		c := newConsole(tt.level, &out, &errOut)
		c.Errorf("boom")
		c.Warnf("careful")
		c.Printf("normal")
		c.Debugf("detail")

		assert.Contains(t, errOut.String(), "ERROR: boom")
		assert.Equal(t, tt.wantWarn, bytes.Contains(errOut.Bytes(), []byte("WARNING: careful")), "level %d", tt.level)
		assert.Equal(t, tt.wantOut, bytes.Contains(out.Bytes(), []byte("normal")), "level %d", tt.level)
		assert.Equal(t, tt.wantDebug, bytes.Contains(out.Bytes(), []byte("detail")), "level %d", tt.level)
	}
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"version"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "cmockgen dev")
	assert.Contains(t, out.String(), "Git commit: none")
}
