package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/cmockgen/internal/generator"
	"github.com/mvp-joe/cmockgen/internal/header"
)

// Test Plan for Config System:
// - Default() returns valid configuration with the stock CMock defaults
// - Load() uses defaults when no config file exists
// - LoadConfig() reads cmockgen.yml from the working directory
// - Load() reads options under the cmock key of cmockgen.yml
// - Load() accepts the ":key: :value" spelling
// - Load() keeps the case of treat_as type names
// - Environment variables override config file values
// - An explicit config file that does not exist is an error
// - Load() returns error for malformed YAML
// - Validate() rejects bad enums, incompatible plugins and bad patterns
// - Validate() reports every violation and keeps them reachable via errors.Is
// - Conversions carry settings into header and generator options
// - Unity helper paths are included relative to mock_path

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cmockgen.yml"), []byte(content), 0644))
}

func TestDefault_ReturnsValidConfiguration(t *testing.T) {
	cfg := Default()
	require.NotNil(t, cfg)

	assert.Equal(t, "unity", cfg.Framework)
	assert.Equal(t, "mocks", cfg.MockPath)
	assert.Equal(t, "Mock", cfg.MockPrefix)
	assert.Equal(t, "compare_data", cfg.WhenPtr)
	assert.Equal(t, "warn", cfg.WhenNoPrototypes)
	assert.Equal(t, "exclude", cfg.TreatExterns)
	assert.Equal(t, "size|len", cfg.ArraySizeName)
	assert.Equal(t, 2, cfg.Verbosity)
	assert.True(t, cfg.FailOnUnexpectedCalls)
	assert.True(t, cfg.CallbackIncludeCount)
	assert.True(t, cfg.MemcmpIfUnknown)
	assert.Len(t, cfg.InlineFunctionPatterns, 4)
	assert.Equal(t, []string{"**/*.h"}, cfg.HeaderPatterns)

	assert.NoError(t, Validate(cfg))
}

func TestLoad_UsesDefaultsWhenNoConfigFile(t *testing.T) {
	cfg, err := NewLoader(t.TempDir()).Load()
	require.NoError(t, err)

	assert.Equal(t, Default().MockPath, cfg.MockPath)
	assert.Equal(t, Default().Attributes, cfg.Attributes)
	assert.Empty(t, cfg.Plugins)
}

func TestLoadConfig_UsesWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "cmock:\n  mock_path: test/mocks\n  when_no_prototypes: error\n")
	t.Chdir(dir)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "test/mocks", cfg.MockPath)
	assert.Equal(t, header.NoPrototypesFail, cfg.HeaderOptions(nil).WhenNoPrototypes)
}

func TestLoad_ReadsCmockSection(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
cmock:
  mock_path: test/mocks
  mock_suffix: _stub
  plugins: [Ignore, callback, ignore_arg]
  enforce_strict_ordering: true
  when_ptr: smart
  unity_helper_path: test/helper.h
  treat_as:
    MY_BOOL: INT8
    Handle_t: HEX32
`)

	cfg, err := NewLoader(dir).Load()
	require.NoError(t, err)

	assert.Equal(t, "test/mocks", cfg.MockPath)
	assert.Equal(t, "_stub", cfg.MockSuffix)
	assert.Equal(t, "Mock", cfg.MockPrefix)
	assert.Equal(t, []string{"ignore", "callback", "ignore_arg"}, cfg.Plugins)
	assert.True(t, cfg.EnforceStrictOrdering)
	assert.Equal(t, "smart", cfg.WhenPtr)
	assert.Equal(t, []string{"test/helper.h"}, cfg.UnityHelperPath)
	assert.Equal(t, map[string]string{"MY_BOOL": "INT8", "Handle_t": "HEX32"}, cfg.TreatAs)
}

func TestLoad_AcceptsColonSpelling(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
:cmock:
  :plugins:
    - :ignore
  :when_no_prototypes: :error
  :treat_inlines: :include
`)

	cfg, err := NewLoader(dir).Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"ignore"}, cfg.Plugins)
	assert.Equal(t, "error", cfg.WhenNoPrototypes)
	assert.Equal(t, "include", cfg.TreatInlines)
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "cmock:\n  mock_path: from_file\n  verbosity: 1\n")

	t.Setenv("CMOCKGEN_MOCK_PATH", "from_env")
	t.Setenv("CMOCKGEN_ENFORCE_STRICT_ORDERING", "true")

	cfg, err := NewLoader(dir).Load()
	require.NoError(t, err)

	assert.Equal(t, "from_env", cfg.MockPath)
	assert.True(t, cfg.EnforceStrictOrdering)
	assert.Equal(t, 1, cfg.Verbosity)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing explicit file", func(t *testing.T) {
		_, err := NewFileLoader(filepath.Join(t.TempDir(), "nope.yml")).Load()
		require.Error(t, err)
		assert.True(t, errors.Is(err, os.ErrNotExist))
	})

	t.Run("malformed yaml", func(t *testing.T) {
		dir := t.TempDir()
		writeConfig(t, dir, "cmock:\n  plugins: [ignore\n")
		_, err := NewLoader(dir).Load()
		require.Error(t, err)
	})

	t.Run("cmock is not a mapping", func(t *testing.T) {
		dir := t.TempDir()
		writeConfig(t, dir, "cmock: 3\n")
		_, err := NewLoader(dir).Load()
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrConfiguration))
	})

	t.Run("invalid values", func(t *testing.T) {
		dir := t.TempDir()
		writeConfig(t, dir, "cmock:\n  when_ptr: sometimes\n")
		_, err := NewLoader(dir).Load()
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidOption))
		assert.Contains(t, err.Error(), "invalid configuration")
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{name: "bad when_ptr", mutate: func(c *Config) { c.WhenPtr = "always" }, wantErr: ErrInvalidOption},
		{name: "bad when_no_prototypes", mutate: func(c *Config) { c.WhenNoPrototypes = "panic" }, wantErr: ErrInvalidOption},
		{name: "bad treat_externs", mutate: func(c *Config) { c.TreatExterns = "maybe" }, wantErr: ErrInvalidOption},
		{name: "verbosity out of range", mutate: func(c *Config) { c.Verbosity = 4 }, wantErr: ErrInvalidOption},
		{name: "include fmt without placeholder", mutate: func(c *Config) { c.OrigHeaderIncludeFmt = "#include <x.h>" }, wantErr: ErrInvalidOption},
		{name: "unexpected calls without ignore", mutate: func(c *Config) { c.FailOnUnexpectedCalls = false }, wantErr: ErrIncompatibleOptions},
		{name: "cexception without setjmp", mutate: func(c *Config) {
			c.Plugins = []string{"cexception"}
			c.ExcludeSetjmpH = true
		}, wantErr: ErrIncompatibleOptions},
		{name: "array with compare_ptr", mutate: func(c *Config) {
			c.Plugins = []string{"array"}
			c.WhenPtr = "compare_ptr"
		}, wantErr: ErrIncompatibleOptions},
		{name: "empty treat_as suffix", mutate: func(c *Config) { c.TreatAs = map[string]string{"MY_T": " "} }, wantErr: ErrInvalidTreatAs},
		{name: "bad strippable", mutate: func(c *Config) { c.Strippables = []string{"(unclosed"} }, wantErr: ErrInvalidPattern},
		{name: "bad array_size_name", mutate: func(c *Config) { c.ArraySizeName = "[" }, wantErr: ErrInvalidPattern},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := Validate(cfg)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr))
			assert.True(t, errors.Is(err, ErrConfiguration))
		})
	}

	t.Run("ignore enables unexpected calls", func(t *testing.T) {
		cfg := Default()
		cfg.FailOnUnexpectedCalls = false
		cfg.Plugins = []string{"ignore"}
		assert.NoError(t, Validate(cfg))
	})
}

func TestValidate_ReportsEveryViolation(t *testing.T) {
	cfg := Default()
	cfg.WhenPtr = "always"
	cfg.Verbosity = -1
	cfg.Strippables = []string{"("}

	err := Validate(cfg)
	require.Error(t, err)

	assert.Contains(t, err.Error(), "validation failed:")
	assert.Contains(t, err.Error(), "when_ptr")
	assert.Contains(t, err.Error(), "verbosity")
	assert.Contains(t, err.Error(), "strippables")
	assert.True(t, errors.Is(err, ErrInvalidOption))
	assert.True(t, errors.Is(err, ErrInvalidPattern))
}

func TestConversions(t *testing.T) {
	cfg := Default()
	cfg.Plugins = []string{"array", "ignore"}
	cfg.TreatInlines = "include"
	cfg.TreatAs = map[string]string{"MY_T": "INT"}
	cfg.CCallingConventions = []string{"__stdcall"}
	cfg.Subdir = "hal"

	h := cfg.HeaderOptions(nil)
	assert.True(t, h.IncludeInlines)
	assert.False(t, h.IncludeExterns)
	assert.Equal(t, header.NoPrototypesWarn, h.WhenNoPrototypes)
	cfg.WhenNoPrototypes = "error"
	assert.Equal(t, header.NoPrototypesFail, cfg.HeaderOptions(nil).WhenNoPrototypes)
	assert.Equal(t, []string{"__stdcall"}, h.CallingConventions)
	assert.Equal(t, "INT", h.TreatAs["MY_T"])
	assert.Equal(t, "INT", h.TreatAs["int"])

	g := cfg.GeneratorOptions()
	assert.Equal(t, generator.PtrCompareData, g.WhenPtr)
	assert.Equal(t, []string{"array", "ignore"}, g.Plugins)
	assert.Equal(t, "hal", g.Subdir)
	assert.True(t, g.IncludeInlines)
	assert.Equal(t, "INT", g.TreatAs["MY_T"])

	u := cfg.HelperOptions()
	assert.True(t, u.ArrayPlugin)
	assert.True(t, u.MemcmpIfUnknown)

	assert.Equal(t, "mocks", cfg.SkeletonDir())
	cfg.SkeletonPath = "src"
	assert.Equal(t, "src", cfg.SkeletonDir())
}

func TestGeneratorOptions_HelperIncludes(t *testing.T) {
	root := t.TempDir()
	cfg := Default()
	cfg.MockPath = filepath.Join(root, "mocks")
	cfg.IncludesCPostHeader = []string{"extra.h"}
	cfg.UnityHelperPath = []string{
		filepath.Join(root, "mocks", "helpers", "unity_helper.h"),
		filepath.Join(root, "test", "other_helper.h"),
	}

	g := cfg.GeneratorOptions()
	assert.Equal(t, []string{
		"extra.h",
		"helpers/unity_helper.h",
		filepath.ToSlash(filepath.Join(root, "test", "other_helper.h")),
	}, g.IncludesCPostHeader)
	assert.Equal(t, []string{"extra.h"}, cfg.IncludesCPostHeader)
}
