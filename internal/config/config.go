package config

import (
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/mvp-joe/cmockgen/internal/generator"
	"github.com/mvp-joe/cmockgen/internal/header"
	"github.com/mvp-joe/cmockgen/internal/unityhelper"
)

// Config represents the complete cmockgen configuration.
// It can be loaded from cmockgen.yml (under the cmock root key) with
// environment variable overrides.
type Config struct {
	Framework    string `yaml:"framework" mapstructure:"framework"`
	MockPath     string `yaml:"mock_path" mapstructure:"mock_path"`
	MockPrefix   string `yaml:"mock_prefix" mapstructure:"mock_prefix"`
	MockSuffix   string `yaml:"mock_suffix" mapstructure:"mock_suffix"`
	SkeletonPath string `yaml:"skeleton_path" mapstructure:"skeleton_path"` // empty means mock_path
	Subdir       string `yaml:"subdir" mapstructure:"subdir"`
	Weak         string `yaml:"weak" mapstructure:"weak"`

	Plugins []string `yaml:"plugins" mapstructure:"plugins"`

	Strippables            []string `yaml:"strippables" mapstructure:"strippables"`
	Attributes             []string `yaml:"attributes" mapstructure:"attributes"`
	CCallingConventions    []string `yaml:"c_calling_conventions" mapstructure:"c_calling_conventions"`
	InlineFunctionPatterns []string `yaml:"inline_function_patterns" mapstructure:"inline_function_patterns"`

	EnforceStrictOrdering bool `yaml:"enforce_strict_ordering" mapstructure:"enforce_strict_ordering"`
	FailOnUnexpectedCalls bool `yaml:"fail_on_unexpected_calls" mapstructure:"fail_on_unexpected_calls"`

	UnityHelperPath []string          `yaml:"unity_helper_path" mapstructure:"unity_helper_path"`
	TreatAs         map[string]string `yaml:"treat_as" mapstructure:"treat_as"`
	TreatAsArray    map[string]string `yaml:"treat_as_array" mapstructure:"treat_as_array"`
	TreatAsVoid     []string          `yaml:"treat_as_void" mapstructure:"treat_as_void"`
	MemcmpIfUnknown bool              `yaml:"memcmp_if_unknown" mapstructure:"memcmp_if_unknown"`

	WhenNoPrototypes string `yaml:"when_no_prototypes" mapstructure:"when_no_prototypes"` // ignore, warn, error
	WhenPtr          string `yaml:"when_ptr" mapstructure:"when_ptr"`                     // compare_ptr, compare_data, smart
	Verbosity        int    `yaml:"verbosity" mapstructure:"verbosity"`                   // 0 errors .. 3 verbose
	TreatExterns     string `yaml:"treat_externs" mapstructure:"treat_externs"`           // include, exclude
	TreatInlines     string `yaml:"treat_inlines" mapstructure:"treat_inlines"`           // include, exclude

	CallbackIncludeCount  bool `yaml:"callback_include_count" mapstructure:"callback_include_count"`
	CallbackAfterArgCheck bool `yaml:"callback_after_arg_check" mapstructure:"callback_after_arg_check"`

	Includes                []string `yaml:"includes" mapstructure:"includes"`
	IncludesHPreOrigHeader  []string `yaml:"includes_h_pre_orig_header" mapstructure:"includes_h_pre_orig_header"`
	IncludesHPostOrigHeader []string `yaml:"includes_h_post_orig_header" mapstructure:"includes_h_post_orig_header"`
	IncludesCPreHeader      []string `yaml:"includes_c_pre_header" mapstructure:"includes_c_pre_header"`
	IncludesCPostHeader     []string `yaml:"includes_c_post_header" mapstructure:"includes_c_post_header"`
	OrigHeaderIncludeFmt    string   `yaml:"orig_header_include_fmt" mapstructure:"orig_header_include_fmt"`

	ArraySizeType  []string `yaml:"array_size_type" mapstructure:"array_size_type"`
	ArraySizeName  string   `yaml:"array_size_name" mapstructure:"array_size_name"`
	ExcludeSetjmpH bool     `yaml:"exclude_setjmp_h" mapstructure:"exclude_setjmp_h"`

	HeaderPatterns []string `yaml:"header_patterns" mapstructure:"header_patterns"` // globs for directory arguments
	IgnorePatterns []string `yaml:"ignore_patterns" mapstructure:"ignore_patterns"`
}

// Default returns a configuration with the stock CMock defaults.
func Default() *Config {
	return &Config{
		Framework:  "unity",
		MockPath:   "mocks",
		MockPrefix: "Mock",
		Plugins:    []string{},
		Strippables: []string{
			`(?:__attribute__\s*\([ (]*.*?[ )]*\)+)`,
		},
		Attributes:            []string{"__ramfunc", "__irq", "__fiq", "register", "extern"},
		CCallingConventions:   []string{"__stdcall", "__cdecl", "__fastcall"},
		FailOnUnexpectedCalls: true,
		UnityHelperPath:       []string{},
		TreatAs:               map[string]string{},
		TreatAsArray:          map[string]string{},
		TreatAsVoid:           []string{},
		MemcmpIfUnknown:       true,
		WhenNoPrototypes:      string(header.NoPrototypesWarn),
		WhenPtr:               string(generator.PtrCompareData),
		Verbosity:             2,
		TreatExterns:          "exclude",
		TreatInlines:          "exclude",
		CallbackIncludeCount:  true,
		OrigHeaderIncludeFmt:  `#include "%s"`,
		ArraySizeType:         []string{},
		ArraySizeName:         "size|len",
		InlineFunctionPatterns: []string{
			`(static\s+inline|inline\s+static)\s*`,
			`(\binline\b)\s*`,
			`(?:static\s*)?(?:__inline__)?__attribute__\s*\([ (]*always_inline[ )]*\)`,
			`static __inline__`,
		},
		HeaderPatterns: []string{"**/*.h"},
		IgnorePatterns: []string{
			".git/**",
			"build/**",
			"vendor/**",
		},
	}
}

// Normalize accepts the ":value" spelling of enum options and lower-cases
// plugin names.
func (c *Config) Normalize() {
	trim := func(s string) string { return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ":")) }
	c.WhenNoPrototypes = trim(c.WhenNoPrototypes)
	c.WhenPtr = trim(c.WhenPtr)
	c.TreatExterns = trim(c.TreatExterns)
	c.TreatInlines = trim(c.TreatInlines)

	plugins := make([]string, 0, len(c.Plugins))
	for _, p := range c.Plugins {
		if p = trim(p); p != "" {
			plugins = append(plugins, p)
		}
	}
	c.Plugins = plugins
}

// HasPlugin reports whether name is among the configured plugins.
func (c *Config) HasPlugin(name string) bool {
	for _, p := range c.Plugins {
		if strings.EqualFold(p, name) {
			return true
		}
	}
	return false
}

// SkeletonDir returns the directory skeletons are written to.
func (c *Config) SkeletonDir() string {
	if c.SkeletonPath != "" {
		return c.SkeletonPath
	}
	return c.MockPath
}

// HeaderOptions converts the normalizer and parser settings.
func (c *Config) HeaderOptions(logger *log.Logger) header.Options {
	return header.Options{
		Strippables:            c.Strippables,
		Attributes:             c.Attributes,
		CallingConventions:     c.CCallingConventions,
		InlineFunctionPatterns: c.InlineFunctionPatterns,
		TreatAs:                unityhelper.MergeTreatAs(c.TreatAs),
		TreatAsArray:           c.TreatAsArray,
		TreatAsVoid:            c.TreatAsVoid,
		ArraySizeName:          c.ArraySizeName,
		ArraySizeTypes:         c.ArraySizeType,
		IncludeExterns:         c.TreatExterns == "include",
		IncludeInlines:         c.TreatInlines == "include",
		WhenNoPrototypes:       header.NoPrototypesPolicy(c.WhenNoPrototypes),
		Logger:                 logger,
	}
}

// HelperOptions converts the assertion lookup settings.
func (c *Config) HelperOptions() unityhelper.Options {
	return unityhelper.Options{
		TreatAs:         c.TreatAs,
		ArrayPlugin:     c.HasPlugin("array"),
		MemcmpIfUnknown: c.MemcmpIfUnknown,
	}
}

// GeneratorOptions converts the plugin and emission settings. Unity helper
// headers are included after the mock's own header, relative to mock_path
// when they live below it.
func (c *Config) GeneratorOptions() generator.Options {
	post := append([]string{}, c.IncludesCPostHeader...)
	for _, helper := range c.helperIncludes() {
		if !contains(post, helper) {
			post = append(post, helper)
		}
	}

	return generator.Options{
		Plugins:                 c.Plugins,
		WhenPtr:                 generator.PtrHandling(c.WhenPtr),
		EnforceStrictOrdering:   c.EnforceStrictOrdering,
		TreatAs:                 unityhelper.MergeTreatAs(c.TreatAs),
		TreatAsVoid:             c.TreatAsVoid,
		CallbackIncludeCount:    c.CallbackIncludeCount,
		CallbackAfterArgCheck:   c.CallbackAfterArgCheck,
		ExcludeSetjmpH:          c.ExcludeSetjmpH,
		FailOnUnexpectedCalls:   c.FailOnUnexpectedCalls,
		Framework:               c.Framework,
		MockPrefix:              c.MockPrefix,
		MockSuffix:              c.MockSuffix,
		Weak:                    c.Weak,
		Subdir:                  c.Subdir,
		IncludeInlines:          c.TreatInlines == "include",
		Includes:                c.Includes,
		IncludesHPreOrigHeader:  c.IncludesHPreOrigHeader,
		IncludesHPostOrigHeader: c.IncludesHPostOrigHeader,
		IncludesCPreHeader:      c.IncludesCPreHeader,
		IncludesCPostHeader:     post,
		OrigHeaderIncludeFmt:    c.OrigHeaderIncludeFmt,
	}
}

func (c *Config) helperIncludes() []string {
	out := make([]string, 0, len(c.UnityHelperPath))
	mockAbs, mockErr := filepath.Abs(c.MockPath)
	for _, p := range c.UnityHelperPath {
		if p == "" {
			continue
		}
		abs, err := filepath.Abs(p)
		if mockErr != nil || err != nil {
			out = append(out, filepath.ToSlash(p))
			continue
		}
		rel, err := filepath.Rel(mockAbs, abs)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator)) {
			out = append(out, filepath.ToSlash(p))
			continue
		}
		out = append(out, filepath.ToSlash(rel))
	}
	return out
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
