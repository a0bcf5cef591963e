package header

import "strconv"

// Return describes a function's return value.
type Return struct {
	Type           string // e.g. "int", "const char*"
	Name           string // always "cmock_to_return"
	Str            string // "<Type> cmock_to_return", used in generated parameter lists
	IsVoid         bool
	IsPointer      bool
	IsConst        bool
	IsConstPointer bool
}

// Argument is one parameter of a parsed prototype.
type Argument struct {
	Name           string
	Type           string
	IsPointer      bool
	IsConst        bool
	IsConstPointer bool
	IsArrayData    bool // pointer followed by a size argument
	IsArraySize    bool // size argument paired with the preceding pointer
}

// Function is the structured signature of one mockable prototype.
type Function struct {
	// Name is the fully scoped, C-safe name: namespaces, class and unscoped
	// name joined with underscores.
	Name              string
	UnscopedName      string
	Return            Return
	Args              []Argument
	ArgsString        string // cleaned parameter list, "void" when empty
	ArgsCall          string // comma separated argument names
	VarArg            string // e.g. "..." when variadic, empty otherwise
	Modifier          string
	CallingConvention string
	Namespace         []string
	Class             string
	ContainsPointer   bool
}

// IsVariadic reports whether the prototype ends in an ellipsis.
func (f *Function) IsVariadic() bool {
	return f.VarArg != ""
}

// Module is the result of parsing one header.
type Module struct {
	Name      string     // module name with non-word characters removed
	Functions []Function // unique by Name, in declaration order
	Typedefs  []string   // synthesized function pointer typedefs

	// NormalizedSource is the header with inline bodies folded away. It is
	// only populated when inline functions are included.
	NormalizedSource string
}

// state holds per-module mutable parse state. A fresh value is created for
// every call to Parser.Parse so nothing leaks between modules.
type state struct {
	moduleName string
	typedefs   []string
	aliases    map[string]string // typedef shape -> alias
	voidTypes  map[string]bool
}

func newState(moduleName string, voidTypes map[string]bool) *state {
	return &state{
		moduleName: moduleName,
		aliases:    map[string]string{},
		voidTypes:  voidTypes,
	}
}

// funcPtrAlias returns the alias for the function pointer type
// "ret (decl *)(args)", synthesizing a typedef the first time a shape is
// seen. Aliases are numbered monotonically within the module.
func (s *state) funcPtrAlias(ret, decl, args string) string {
	if decl != "" {
		decl += " "
	}
	shape := ret + "(" + decl + "*%s)(" + args + ")"
	if alias, ok := s.aliases[shape]; ok {
		return alias
	}
	alias := "cmock_" + s.moduleName + "_func_ptr" + strconv.Itoa(len(s.typedefs)+1)
	s.aliases[shape] = alias
	s.typedefs = append(s.typedefs, "typedef "+ret+"("+decl+"*"+alias+")("+args+");")
	return alias
}

func (s *state) isVoid(t string) bool {
	return s.voidTypes[t]
}
