// Package unityhelper maps C types to the Unity assertion macros used to
// compare them in generated mocks.
package unityhelper

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
)

const (
	memoryFallback      = "UNITY_TEST_ASSERT_EQUAL_MEMORY"
	memoryArrayFallback = "UNITY_TEST_ASSERT_EQUAL_MEMORY_ARRAY"
	pointerAssertion    = "UNITY_TEST_ASSERT_EQUAL_PTR"
)

var (
	// ErrUnsupportedComparison indicates a type with no known assertion while
	// memory comparison is disabled
	ErrUnsupportedComparison = errors.New("no assertion available for type")

	// ErrInvalidTreatAs indicates a malformed treat_as entry
	ErrInvalidTreatAs = errors.New("invalid treat_as entry")
)

// UnsupportedComparisonError names the type that could not be compared.
type UnsupportedComparisonError struct {
	Type string
}

func (e *UnsupportedComparisonError) Error() string {
	return fmt.Sprintf("%s %s and memory tests are disabled", ErrUnsupportedComparison.Error(), e.Type)
}

func (e *UnsupportedComparisonError) Unwrap() error {
	return ErrUnsupportedComparison
}

// Assertion is the macro used to compare a value and the operator applied to
// both operands: "" for none, "*" to dereference a pointer and "&" to take
// the address of a value.
type Assertion struct {
	Macro  string
	Prefix string
}

// Options configures a Helper.
type Options struct {
	// TreatAs maps C types to assertion suffixes, merged over StandardTreatAs.
	TreatAs map[string]string

	// ArrayPlugin selects the array-aware memory fallback.
	ArrayPlugin bool

	// MemcmpIfUnknown falls back to memory comparison for unknown types.
	MemcmpIfUnknown bool
}

// Helper resolves assertion macros for C types.
type Helper struct {
	types    map[string]string
	fallback string
	memcmp   bool
}

// StandardTreatAs returns the built-in type to assertion suffix table.
func StandardTreatAs() map[string]string {
	return map[string]string{
		"int":            "INT",
		"char":           "INT8",
		"short":          "INT16",
		"long":           "INT",
		"int8":           "INT8",
		"int16":          "INT16",
		"int32":          "INT",
		"int8_t":         "INT8",
		"int16_t":        "INT16",
		"int32_t":        "INT",
		"bool":           "INT",
		"bool_t":         "INT",
		"unsigned int":   "HEX32",
		"unsigned long":  "HEX32",
		"uint32":         "HEX32",
		"uint32_t":       "HEX32",
		"void*":          "HEX8_ARRAY",
		"unsigned short": "HEX16",
		"uint16":         "HEX16",
		"unsigned char":  "HEX8",
		"uint8":          "HEX8",
		"char*":          "STRING",
		"float":          "FLOAT",
		"double":         "FLOAT",
	}
}

// MergeTreatAs overlays configured entries on the standard table.
func MergeTreatAs(configured map[string]string) map[string]string {
	merged := StandardTreatAs()
	for k, v := range configured {
		merged[k] = v
	}
	return merged
}

// New builds a Helper from the treat_as table and the given helper header
// sources. Macros found in helper headers override treat_as entries.
func New(opts Options, helperSources ...[]byte) (*Helper, error) {
	h := &Helper{
		types:    map[string]string{},
		fallback: memoryFallback,
		memcmp:   opts.MemcmpIfUnknown,
	}
	if opts.ArrayPlugin {
		h.fallback = memoryArrayFallback
	}

	// Derived pointer forms first so explicit entries such as "char*" win.
	treatAs := MergeTreatAs(opts.TreatAs)
	for ctype, suffix := range treatAs {
		if strings.TrimSpace(ctype) == "" || strings.TrimSpace(suffix) == "" {
			return nil, fmt.Errorf("%w: %q: %q", ErrInvalidTreatAs, ctype, suffix)
		}
		if !strings.Contains(suffix, "*") {
			h.types[strings.ReplaceAll(ctype, " ", "_")+"*"] = "UNITY_TEST_ASSERT_EQUAL_" + suffix + "_ARRAY"
		}
	}
	for ctype, suffix := range treatAs {
		key := strings.ReplaceAll(ctype, " ", "_")
		if strings.Contains(suffix, "*") {
			h.types[key] = "UNITY_TEST_ASSERT_EQUAL_" + strings.ReplaceAll(suffix, "*", "") + "_ARRAY"
			continue
		}
		h.types[key] = "UNITY_TEST_ASSERT_EQUAL_" + suffix
	}

	for _, src := range helperSources {
		found, err := ScanMacros(src)
		if err != nil {
			return nil, err
		}
		for ctype, macro := range found {
			h.types[ctype] = macro
		}
	}

	return h, nil
}

// LoadFiles reads helper headers from disk.
func LoadFiles(paths []string) ([][]byte, error) {
	sources := make([][]byte, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read unity helper %s: %w", path, err)
		}
		sources = append(sources, data)
	}
	return sources, nil
}

var (
	constRe       = regexp.MustCompile(`\bconst\b`)
	spacesRe      = regexp.MustCompile(`\s+`)
	spaceStarRe   = regexp.MustCompile(`\s+\*`)
	funcPtrTypeRe = regexp.MustCompile(`cmock_\w+_ptr\d+`)
)

// Lookup returns the assertion for ctype. Known types compare directly;
// pointers to known types dereference; values whose pointer form is known
// pass their address. Synthesized function pointer types compare as
// pointers and anything else falls back to a memory comparison.
func (h *Helper) Lookup(ctype string) (Assertion, error) {
	lookup := constRe.ReplaceAllString(ctype, " ")
	lookup = spaceStarRe.ReplaceAllString(strings.TrimSpace(spacesRe.ReplaceAllString(lookup, " ")), "*")
	lookup = strings.ReplaceAll(lookup, " ", "_")

	if macro, ok := h.types[lookup]; ok {
		return Assertion{Macro: macro}, nil
	}

	if strings.HasSuffix(lookup, "*") {
		lookup = strings.TrimRight(lookup, "*")
		if macro, ok := h.types[lookup]; ok {
			return Assertion{Macro: macro, Prefix: "*"}, nil
		}
	} else {
		lookup += "*"
		if macro, ok := h.types[lookup]; ok {
			return Assertion{Macro: macro, Prefix: "&"}, nil
		}
	}

	if funcPtrTypeRe.MatchString(ctype) {
		return Assertion{Macro: pointerAssertion}, nil
	}

	if !h.memcmp {
		return Assertion{}, &UnsupportedComparisonError{Type: ctype}
	}

	if strings.HasSuffix(lookup, "*") {
		return Assertion{Macro: h.fallback, Prefix: "&"}, nil
	}
	return Assertion{Macro: h.fallback}, nil
}
