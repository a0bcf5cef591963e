package generator

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/mvp-joe/cmockgen/internal/header"
)

// ErrPluginLoad indicates a configured plugin could not be constructed.
var ErrPluginLoad = errors.New("unable to load plugin")

// PluginLoadError names the plugin that failed to load.
type PluginLoadError struct {
	Name string
	Err  error
}

func (e *PluginLoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s '%s': %v", ErrPluginLoad.Error(), e.Name, e.Err)
	}
	return fmt.Sprintf("%s '%s'", ErrPluginLoad.Error(), e.Name)
}

func (e *PluginLoadError) Unwrap() error {
	return e.Err
}

func (e *PluginLoadError) Is(target error) bool {
	return target == ErrPluginLoad
}

// Constructor builds a plugin from the generator options and shared utils.
type Constructor func(opts *Options, utils *Utils) (Plugin, error)

var (
	constructorsMu sync.Mutex
	constructors   = map[string]Constructor{
		"expect":           newExpectPlugin,
		"ignore":           newIgnorePlugin,
		"ignore_stateless": newIgnoreStatelessPlugin,
		"ignore_arg":       newIgnoreArgPlugin,
		"expect_any_args":  newExpectAnyArgsPlugin,
		"callback":         newCallbackPlugin,
		"cexception":       newCExceptionPlugin,
		"array":            newArrayPlugin,
		"return_thru_ptr":  newReturnThruPtrPlugin,
	}
)

// Register adds or replaces a plugin constructor under a lower-cased name.
func Register(name string, ctor Constructor) {
	constructorsMu.Lock()
	defer constructorsMu.Unlock()
	constructors[strings.ToLower(name)] = ctor
}

func lookupConstructor(name string) (Constructor, bool) {
	constructorsMu.Lock()
	defer constructorsMu.Unlock()
	ctor, ok := constructors[name]
	return ctor, ok
}

// Registry holds the active plugins sorted by ascending priority.
type Registry struct {
	plugins []Plugin
}

// NewRegistry loads "expect" plus the configured plugins. Names are
// lower-cased and de-duplicated in first-seen order before loading.
func NewRegistry(opts *Options, utils *Utils) (*Registry, error) {
	names := pluginNames(opts.Plugins)

	r := &Registry{}
	for _, name := range names {
		ctor, ok := lookupConstructor(name)
		if !ok {
			return nil, &PluginLoadError{Name: name, Err: errors.New("no such plugin")}
		}
		p, err := ctor(opts, utils)
		if err != nil {
			return nil, &PluginLoadError{Name: name, Err: err}
		}
		r.plugins = append(r.plugins, p)
	}

	sort.SliceStable(r.plugins, func(i, j int) bool {
		return r.plugins[i].Priority() < r.plugins[j].Priority()
	})
	return r, nil
}

func pluginNames(configured []string) []string {
	seen := map[string]bool{}
	names := []string{}
	for _, name := range append([]string{"expect"}, configured...) {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}

// Plugins returns the loaded plugins in execution order.
func (r *Registry) Plugins() []Plugin {
	return append([]Plugin(nil), r.plugins...)
}

// Run concatenates the output of every plugin implementing hook.
func (r *Registry) Run(hook Hook, fn *header.Function) string {
	var b strings.Builder
	for _, p := range r.plugins {
		if out, ok := call(p, hook, fn); ok {
			b.WriteString(out)
		}
	}
	return b.String()
}
