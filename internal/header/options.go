package header

import (
	"fmt"
	"io"
	"log"
	"regexp"
	"strings"
)

// NoPrototypesPolicy controls what happens when a module yields no prototypes.
type NoPrototypesPolicy string

const (
	NoPrototypesIgnore NoPrototypesPolicy = "ignore"
	NoPrototypesWarn   NoPrototypesPolicy = "warn"
	NoPrototypesFail   NoPrototypesPolicy = "error"
)

// Options configures the normalizer and declaration parser.
type Options struct {
	Strippables            []string          // regex fragments removed from the source
	Attributes             []string          // modifier words kept apart from the type
	CallingConventions     []string          // e.g. __stdcall
	InlineFunctionPatterns []string          // regexes matching inline keywords
	TreatAs                map[string]string // only the keys matter here
	TreatAsArray           map[string]string // array typedef -> element type
	TreatAsVoid            []string
	ArraySizeName          string   // regex matched against the argument following a pointer
	ArraySizeTypes         []string // extra types accepted as array sizes
	IncludeExterns         bool
	IncludeInlines         bool
	WhenNoPrototypes       NoPrototypesPolicy

	// Logger receives warnings. Nil discards them.
	Logger *log.Logger
}

// Parser turns raw header text into a Module. A Parser holds only
// configuration; it is safe to reuse across modules.
type Parser struct {
	opts Options

	strippables    *regexp.Regexp
	inlinePatterns []*regexp.Regexp
	inlineFolders  []*regexp.Regexp
	arraySizeName  *regexp.Regexp

	attributes      map[string]bool // including const
	attrNoConst     map[string]bool
	conventions     map[string]bool
	standards       map[string]bool
	arraySizeTypes  map[string]bool
	treatAsVoidBase []string

	log *log.Logger
}

// NewParser compiles the configured pattern sets.
func NewParser(opts Options) (*Parser, error) {
	p := &Parser{
		opts:           opts,
		attributes:     map[string]bool{"const": true},
		attrNoConst:    map[string]bool{},
		conventions:    toSet(opts.CallingConventions),
		standards:      toSet([]string{"int", "short", "char", "long", "unsigned", "signed"}),
		arraySizeTypes: toSet(append([]string{"int", "size_t"}, opts.ArraySizeTypes...)),
		log:            opts.Logger,
	}
	if p.log == nil {
		p.log = log.New(io.Discard, "", 0)
	}
	if p.opts.WhenNoPrototypes == "" {
		p.opts.WhenNoPrototypes = NoPrototypesWarn
	}

	for _, a := range opts.Attributes {
		if a == "const" {
			continue
		}
		p.attributes[a] = true
		p.attrNoConst[a] = true
	}
	for t := range opts.TreatAs {
		p.standards[t] = true
	}

	p.treatAsVoidBase = append([]string{"void"}, opts.TreatAsVoid...)

	strippables := append([]string{}, opts.Strippables...)
	if opts.IncludeExterns {
		strippables = append(strippables, "extern")
	}
	if opts.IncludeInlines {
		strippables = append(strippables, "inline")
	}
	if len(strippables) > 0 {
		re, err := compilePattern(`(^|\W+)(?:` + strings.Join(strippables, "|") + `)(\W+|$)`)
		if err != nil {
			return nil, fmt.Errorf("strippables: %w", err)
		}
		p.strippables = re
	}

	for _, pattern := range opts.InlineFunctionPatterns {
		re, err := compilePattern(pattern)
		if err != nil {
			return nil, fmt.Errorf("inline_function_patterns: %w", err)
		}
		p.inlinePatterns = append(p.inlinePatterns, re)

		folder, err := compilePattern(`\b(?:` + pattern + `) *\b`)
		if err != nil {
			return nil, fmt.Errorf("inline_function_patterns: %w", err)
		}
		p.inlineFolders = append(p.inlineFolders, folder)
	}

	sizeName := opts.ArraySizeName
	if sizeName == "" {
		sizeName = "size|len"
	}
	re, err := compilePattern(sizeName)
	if err != nil {
		return nil, fmt.Errorf("array_size_name: %w", err)
	}
	p.arraySizeName = re

	return p, nil
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[item] = true
	}
	return set
}
