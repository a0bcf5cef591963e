package header

import (
	"regexp"
	"strconv"
	"strings"
)

var nonWordRe = regexp.MustCompile(`\W`)

// Parse extracts every mockable prototype from one header. The returned
// Module holds unique functions (first occurrence wins) and the typedefs
// synthesized for function pointer shapes.
func (p *Parser) Parse(name, source string) (*Module, error) {
	moduleName := nonWordRe.ReplaceAllString(name, "")
	st := newState(moduleName, p.collectVoidTypes(repairEncoding(source)))

	type candidate struct {
		text      string
		namespace []string
		class     string
	}

	var candidates []candidate
	decls, err := p.findDeclarations(name, p.normalize(st, source, false))
	if err != nil {
		return nil, err
	}
	for _, d := range decls {
		candidates = append(candidates, candidate{text: d})
	}
	for _, m := range scanCppFunctions(p.normalize(st, source, true)) {
		candidates = append(candidates, candidate{text: m.text, namespace: m.namespace, class: m.class})
	}

	mod := &Module{Name: moduleName}
	seen := map[string]bool{}
	for _, c := range candidates {
		fn, err := p.parseDeclaration(st, c.text, c.namespace, c.class)
		if err != nil {
			return nil, err
		}
		if seen[fn.Name] {
			continue
		}
		seen[fn.Name] = true
		mod.Functions = append(mod.Functions, *fn)
	}
	mod.Typedefs = st.typedefs

	if p.opts.IncludeInlines {
		mod.NormalizedSource = p.FoldInlineFunctions(source)
	}

	return mod, nil
}

// findDeclarations keeps the statements shaped like prototypes and applies
// the no-prototypes policy.
func (p *Parser) findDeclarations(name string, statements []string) ([]string, error) {
	var funcs []string
	for _, s := range statements {
		if declSearchRe.MatchString(s) {
			funcs = append(funcs, whitespaceRe.ReplaceAllString(strings.TrimSpace(s), " "))
		}
	}
	if len(funcs) > 0 {
		return funcs, nil
	}

	switch p.opts.WhenNoPrototypes {
	case NoPrototypesFail:
		return nil, &NoPrototypesError{Module: name}
	case NoPrototypesWarn:
		p.log.Printf("WARNING: No function prototypes found in %s", name)
	}
	return nil, nil
}

// ParseDeclaration parses a single normalized statement in a scratch module.
// It is mostly useful for tests and diagnostics.
func (p *Parser) ParseDeclaration(moduleName, declaration string) (*Function, []string, error) {
	st := newState(moduleName, toSet(p.treatAsVoidBase))
	fn, err := p.parseDeclaration(st, declaration, nil, "")
	if err != nil {
		return nil, nil, err
	}
	return fn, st.typedefs, nil
}

func (p *Parser) parseDeclaration(st *state, declaration string, namespace []string, class string) (*Function, error) {
	m := declMatchRe.FindStringSubmatch(declaration)
	if m == nil {
		return nil, &ParseError{Declaration: declaration, Reason: "does not match a prototype"}
	}

	args := strings.TrimSpace(m[2])
	parsed := p.parseTypeAndName(m[1])

	fn := &Function{
		UnscopedName:      parsed.Name,
		Namespace:         namespace,
		Class:             class,
		Modifier:          parsed.modifier,
		CallingConvention: parsed.convention,
	}

	scope := append([]string{}, namespace...)
	if class != "" {
		scope = append(scope, class)
	}
	fn.Name = strings.Join(append(scope, parsed.Name), "_")
	if parsed.Name == "" {
		fn.Name = ""
	}

	retType := parsed.Type
	if st.isVoid(strings.TrimSpace(retType)) {
		retType = "void"
	}
	fn.Return = Return{
		Type:           retType,
		Name:           "cmock_to_return",
		Str:            retType + " cmock_to_return",
		IsVoid:         retType == "void",
		IsPointer:      parsed.IsPointer,
		IsConst:        parsed.IsConst,
		IsConstPointer: parsed.IsConstPointer,
	}

	args = argDefaultRe.ReplaceAllString(args, " ")

	if strings.Contains(args, "...") {
		fn.VarArg = strings.TrimSpace(varArgRe.FindString(args))
		if strings.Contains(args, ", ...") {
			args = varArgTailRe.ReplaceAllString(args, "")
		} else {
			args = "void"
		}
	}

	fn.ArgsString = p.cleanArgs(st, args)
	fn.Args = p.parseArgs(fn.ArgsString)

	names := make([]string, len(fn.Args))
	for i, a := range fn.Args {
		names[i] = a.Name
		if a.IsPointer {
			fn.ContainsPointer = true
		}
	}
	fn.ArgsCall = strings.Join(names, ", ")

	if strings.TrimSpace(fn.Return.Type) == "" || fn.Name == "" || fn.Args == nil {
		reason := "missing return type"
		switch {
		case fn.Name == "":
			reason = "missing function name"
		case fn.Args == nil:
			reason = "missing argument list"
		}
		return nil, &ParseError{
			Declaration: declaration,
			Reason:      reason,
			Modifier:    fn.Modifier,
			Return:      fn.Return,
			Name:        fn.Name,
			Args:        fn.Args,
		}
	}

	return fn, nil
}

// typeAndName is the classification of one "type name" fragment.
type typeAndName struct {
	Argument
	modifier   string
	convention string
}

// parseTypeAndName splits "attrs type name" into its parts. For pointer
// types only a const applying to the pointer itself is moved to the
// modifier; for plain types every const is.
func (p *Parser) parseTypeAndName(text string) typeAndName {
	text = starAfterWordRe.ReplaceAllString(text, "${1} *")
	text = starBeforeWordRe.ReplaceAllString(text, "* ${1}")
	words := strings.Fields(text)

	info := typeAndName{}
	info.IsPointer, info.IsConst, info.IsConstPointer = classify(text)
	if len(words) == 0 {
		return info
	}
	info.Name = words[len(words)-1]

	attributes := p.attributes
	if strings.Contains(text, "*") {
		attributes = p.attrNoConst
	}

	var attrs, types []string
	for _, w := range words[:len(words)-1] {
		switch {
		case attributes[w]:
			attrs = append(attrs, w)
		case p.conventions[w]:
			info.convention = w
		default:
			types = append(types, w)
		}
	}

	if info.IsConstPointer {
		attrs = append(attrs, "const")
		for i := len(types) - 1; i >= 0; i-- {
			if types[i] == "const" {
				types = append(types[:i], types[i+1:]...)
				break
			}
		}
	}

	info.modifier = strings.Join(attrs, " ")
	info.Type = spaceStarRe.ReplaceAllString(strings.Join(types, " "), "*")
	return info
}

// classify reports pointer, const and const-pointer for a type fragment.
// "char*" and "const char*" with no further '*' count as strings, not
// pointers.
func classify(text string) (isPtr, isConst, isConstPtr bool) {
	last := strings.LastIndex(text, "*")
	if last < 0 {
		return false, constWordRe.MatchString(text), false
	}
	head, tail := text[:last+1], text[last+1:]
	isPtr = !stringPtrRe.MatchString(head)
	isConst = constPtrTargetRe.MatchString(head)
	isConstPtr = constAfterStarRe.MatchString(tail)
	return isPtr, isConst, isConstPtr
}

// parseArgs classifies each entry of a cleaned argument list and applies the
// array/size pairing heuristic.
func (p *Parser) parseArgs(argList string) []Argument {
	args := []Argument{}
	for _, raw := range splitTopLevel(argList) {
		raw = strings.TrimSpace(raw)
		if voidOrVarargRe.MatchString(raw) {
			break
		}

		arg := p.parseTypeAndName(raw).Argument
		if elem, ok := p.opts.TreatAsArray[arg.Type]; ok && !arg.IsPointer {
			arg.Type = elem + "*"
			if arg.IsConst {
				arg.Type = "const " + arg.Type
			}
			arg.IsPointer = true
		}
		args = append(args, arg)
	}

	for i := 0; i+1 < len(args); i++ {
		next := &args[i+1]
		if args[i].IsPointer && p.arraySizeName.MatchString(next.Name) && p.arraySizeTypes[next.Type] {
			args[i].IsArrayData = true
			next.IsArraySize = true
		}
	}
	return args
}

// splitTopLevel splits on commas that are not nested in parentheses.
func splitTopLevel(list string) []string {
	var parts []string
	depth, start := 0, 0
	for i, r := range list {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, list[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, list[start:])
}

// cleanArgs normalizes a raw parameter list: void aliases collapse to
// "void", array parameters become pointers, function pointer parameters
// are replaced by synthesized typedef aliases and anonymous parameters get
// generated names.
func (p *Parser) cleanArgs(st *state, argList string) string {
	if argList == "" || st.isVoid(strings.TrimSpace(argList)) {
		return "void"
	}

	argList = arrayBracketsRe.ReplaceAllString(argList, "*${1}")
	argList = spaceStarRe.ReplaceAllString(argList, "*")
	argList = starBeforeWordRe.ReplaceAllString(argList, "* ${1}")

	unnamed := 0
	nameOrDummy := func(name string) (string, string) {
		name = strings.TrimSpace(name)
		constPrefix := ""
		if strings.Contains(name, "const") {
			name = strings.TrimSpace(strings.ReplaceAll(name, "const", ""))
			constPrefix = "const "
		}
		if name == "" {
			unnamed++
			name = "cmock_arg" + strconv.Itoa(unnamed)
		}
		return constPrefix, name
	}

	argList = replaceAllSubmatchFunc(argFuncPtrRe, argList, func(g []string) string {
		alias := st.funcPtrAlias(strings.TrimSpace(g[1]), strings.TrimSpace(g[2]), strings.TrimSpace(g[4]))
		constPrefix, name := nameOrDummy(g[3])
		return alias + " " + constPrefix + name
	})
	argList = replaceAllSubmatchFunc(argShorthandRe, argList, func(g []string) string {
		alias := st.funcPtrAlias(strings.TrimSpace(g[1]), "", strings.TrimSpace(g[3]))
		constPrefix, name := nameOrDummy(g[2])
		return alias + " " + constPrefix + name
	})

	return p.createDummyNames(argList)
}

var dummySkipWords = map[string]bool{"struct": true, "union": true, "enum": true, "const": true, "const*": true}

// createDummyNames names parameters that only carry a type.
func (p *Parser) createDummyNames(argList string) string {
	entries := argSplitRe.Split(argList, -1)
	for i, arg := range entries {
		var parts []string
		for _, w := range strings.Fields(arg) {
			if !dummySkipWords[w] {
				parts = append(parts, w)
			}
		}
		if len(parts) < 2 || strings.HasSuffix(parts[len(parts)-1], "*") || p.standards[parts[len(parts)-1]] {
			entries[i] = arg + " cmock_arg" + strconv.Itoa(i+1)
		}
	}
	return strings.Join(entries, ", ")
}
