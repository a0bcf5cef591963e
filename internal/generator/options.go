package generator

import (
	"regexp"
	"strings"
)

// PtrHandling selects how pointer arguments are verified.
type PtrHandling string

const (
	PtrCompareData PtrHandling = "compare_data"
	PtrComparePtr  PtrHandling = "compare_ptr"
	PtrSmart       PtrHandling = "smart"
)

// Options configures plugin selection and the emitted mock text.
type Options struct {
	Plugins               []string
	WhenPtr               PtrHandling
	EnforceStrictOrdering bool

	// TreatAs is the merged type to assertion suffix table. Types listed here
	// are assigned directly instead of through memcpy.
	TreatAs     map[string]string
	TreatAsVoid []string

	CallbackIncludeCount  bool
	CallbackAfterArgCheck bool
	ExcludeSetjmpH        bool
	FailOnUnexpectedCalls bool

	Framework  string
	MockPrefix string
	MockSuffix string
	Weak       string // attribute appended to weak symbol declarations
	Subdir     string

	IncludeInlines bool

	Includes                []string
	IncludesHPreOrigHeader  []string
	IncludesHPostOrigHeader []string
	IncludesCPreHeader      []string
	IncludesCPostHeader     []string
	OrigHeaderIncludeFmt    string

	// Sanitizer turns file names into C identifiers. Nil uses SanitizeIdentifier.
	Sanitizer func(string) string
}

// hasPlugin reports whether name was configured, ignoring case.
func (o *Options) hasPlugin(name string) bool {
	for _, p := range o.Plugins {
		if strings.EqualFold(strings.TrimSpace(p), name) {
			return true
		}
	}
	return false
}

func (o *Options) sanitize(name string) string {
	if o.Sanitizer != nil {
		return o.Sanitizer(name)
	}
	return SanitizeIdentifier(name)
}

var unsafeIdentifierRe = regexp.MustCompile(`[-/\\.,\s]`)

// SanitizeIdentifier replaces path separators, dots, commas, dashes and
// whitespace with underscores.
func SanitizeIdentifier(name string) string {
	return unsafeIdentifierRe.ReplaceAllString(name, "_")
}
