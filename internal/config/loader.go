package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// rootKey is the top-level YAML key holding the cmock options.
const rootKey = "cmock"

// configNames are searched in the root directory in order.
var configNames = []string{"cmockgen.yml", "cmockgen.yaml"}

// Loader provides configuration loading capabilities.
type Loader interface {
	// Load loads configuration from file and environment variables.
	// Priority: defaults → config file → environment variables (env wins)
	Load() (*Config, error)
}

type loader struct {
	rootDir string
	file    string
}

// NewLoader creates a loader that looks for cmockgen.yml in rootDir.
func NewLoader(rootDir string) Loader {
	return &loader{rootDir: rootDir}
}

// NewFileLoader creates a loader for an explicit config file. A missing file
// is an error.
func NewFileLoader(path string) Loader {
	return &loader{file: path}
}

// Load loads configuration with the following priority (highest to lowest):
// 1. Environment variables (CMOCKGEN_*)
// 2. Config file (cmockgen.yml or cmockgen.yaml, options under "cmock")
// 3. Default values
func (l *loader) Load() (*Config, error) {
	v := viper.New()

	// cmock.mock_path is read from CMOCKGEN_MOCK_PATH
	v.SetEnvPrefix("CMOCKGEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(strings.ToUpper(rootKey)+".", "", ".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	raw, err := l.readFile()
	if err != nil {
		return nil, err
	}
	if raw != nil {
		if err := v.MergeConfigMap(map[string]any{rootKey: raw}); err != nil {
			return nil, fmt.Errorf("failed to merge config file: %w", err)
		}
	}

	var wrapper struct {
		Cmock Config `mapstructure:"cmock"`
	}
	if err := v.Unmarshal(&wrapper); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg := &wrapper.Cmock

	// Viper folds map keys to lower case; C type names are case sensitive.
	if m, ok := stringMap(raw, "treat_as"); ok {
		cfg.TreatAs = m
	}
	if m, ok := stringMap(raw, "treat_as_array"); ok {
		cfg.TreatAsArray = m
	}

	cfg.Normalize()

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// readFile returns the options below the root key, or nil when no config
// file exists.
func (l *loader) readFile() (map[string]any, error) {
	path := l.file
	if path == "" {
		for _, name := range configNames {
			candidate := filepath.Join(l.rootDir, name)
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
		if path == "" {
			return nil, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if l.file == "" && errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	doc, _ = stripColons(doc).(map[string]any)
	section, ok := doc[rootKey]
	if !ok || section == nil {
		return map[string]any{}, nil
	}
	m, ok := section.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: %q must be a mapping", ErrConfiguration, rootKey)
	}
	return m, nil
}

// stripColons accepts CMock's ":key: :value" spelling by dropping the
// leading colon from keys and scalar strings.
func stripColons(node any) any {
	switch n := node.(type) {
	case map[string]any:
		out := make(map[string]any, len(n))
		for k, v := range n {
			out[strings.TrimPrefix(k, ":")] = stripColons(v)
		}
		return out
	case []any:
		out := make([]any, len(n))
		for i, v := range n {
			out[i] = stripColons(v)
		}
		return out
	case string:
		return strings.TrimPrefix(n, ":")
	default:
		return node
	}
}

func stringMap(raw map[string]any, key string) (map[string]string, bool) {
	m, ok := raw[key].(map[string]any)
	if !ok {
		return nil, false
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = fmt.Sprint(v)
	}
	return out, true
}

// setDefaults configures viper with default values.
func setDefaults(v *viper.Viper) {
	d := Default()
	set := func(key string, value any) { v.SetDefault(rootKey+"."+key, value) }

	set("framework", d.Framework)
	set("mock_path", d.MockPath)
	set("mock_prefix", d.MockPrefix)
	set("mock_suffix", d.MockSuffix)
	set("skeleton_path", d.SkeletonPath)
	set("subdir", d.Subdir)
	set("weak", d.Weak)
	set("plugins", d.Plugins)

	set("strippables", d.Strippables)
	set("attributes", d.Attributes)
	set("c_calling_conventions", d.CCallingConventions)
	set("inline_function_patterns", d.InlineFunctionPatterns)

	set("enforce_strict_ordering", d.EnforceStrictOrdering)
	set("fail_on_unexpected_calls", d.FailOnUnexpectedCalls)

	set("unity_helper_path", d.UnityHelperPath)
	set("treat_as", d.TreatAs)
	set("treat_as_array", d.TreatAsArray)
	set("treat_as_void", d.TreatAsVoid)
	set("memcmp_if_unknown", d.MemcmpIfUnknown)

	set("when_no_prototypes", d.WhenNoPrototypes)
	set("when_ptr", d.WhenPtr)
	set("verbosity", d.Verbosity)
	set("treat_externs", d.TreatExterns)
	set("treat_inlines", d.TreatInlines)

	set("callback_include_count", d.CallbackIncludeCount)
	set("callback_after_arg_check", d.CallbackAfterArgCheck)

	set("includes", d.Includes)
	set("includes_h_pre_orig_header", d.IncludesHPreOrigHeader)
	set("includes_h_post_orig_header", d.IncludesHPostOrigHeader)
	set("includes_c_pre_header", d.IncludesCPreHeader)
	set("includes_c_post_header", d.IncludesCPostHeader)
	set("orig_header_include_fmt", d.OrigHeaderIncludeFmt)

	set("array_size_type", d.ArraySizeType)
	set("array_size_name", d.ArraySizeName)
	set("exclude_setjmp_h", d.ExcludeSetjmpH)

	set("header_patterns", d.HeaderPatterns)
	set("ignore_patterns", d.IgnorePatterns)
}

// LoadConfig loads cmockgen.yml from the current working directory.
func LoadConfig() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return NewLoader(wd).Load()
}
