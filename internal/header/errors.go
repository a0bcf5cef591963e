package header

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrParse indicates a statement that looked like a prototype could not be parsed
	ErrParse = errors.New("failed parsing declaration")

	// ErrNoPrototypes indicates a module produced no recognizable prototypes
	ErrNoPrototypes = errors.New("no function prototypes found")
)

// ParseError carries the offending declaration and every field derived from
// it before parsing gave up.
type ParseError struct {
	Declaration string
	Reason      string
	Modifier    string
	Return      Return
	Name        string
	Args        []Argument
}

func (e *ParseError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s\n", ErrParse.Error(), e.Reason)
	fmt.Fprintf(&b, "  declaration: '%s'\n", e.Declaration)
	fmt.Fprintf(&b, "  modifier: '%s'\n", e.Modifier)
	fmt.Fprintf(&b, "  return: {type => '%s', void => %t, ptr => %t, const => %t, const_ptr => %t}\n",
		e.Return.Type, e.Return.IsVoid, e.Return.IsPointer, e.Return.IsConst, e.Return.IsConstPointer)
	fmt.Fprintf(&b, "  function: '%s'\n", e.Name)
	if len(e.Args) == 0 {
		b.WriteString("  args: []")
		return b.String()
	}
	b.WriteString("  args: [")
	for _, a := range e.Args {
		fmt.Fprintf(&b, "\n    {name => '%s', type => '%s', ptr => %t, const => %t, const_ptr => %t}",
			a.Name, a.Type, a.IsPointer, a.IsConst, a.IsConstPointer)
	}
	b.WriteString("\n  ]")
	return b.String()
}

func (e *ParseError) Unwrap() error {
	return ErrParse
}

// NoPrototypesError is returned when when_no_prototypes is set to error.
type NoPrototypesError struct {
	Module string
}

func (e *NoPrototypesError) Error() string {
	return fmt.Sprintf("%s in %s", ErrNoPrototypes.Error(), e.Module)
}

func (e *NoPrototypesError) Unwrap() error {
	return ErrNoPrototypes
}
