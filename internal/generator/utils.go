package generator

import (
	"fmt"
	"strings"

	"github.com/mvp-joe/cmockgen/internal/header"
	"github.com/mvp-joe/cmockgen/internal/unityhelper"
)

// AssertionLookup resolves the Unity assertion for a C type.
type AssertionLookup interface {
	Lookup(ctype string) (unityhelper.Assertion, error)
}

type verifyStrategy int

const (
	verifyNoArrays verifyStrategy = iota
	verifyNormalArrays
	verifySmartArrays
)

// Utils holds the code fragments shared by several plugins.
type Utils struct {
	helper   AssertionLookup
	treatAs  map[string]string
	ptr      PtrHandling
	strategy verifyStrategy

	ordered       bool
	arrays        bool
	cexception    bool
	expectAny     bool
	returnThruPtr bool
	ignoreArg     bool
	ignore        bool
}

// NewUtils captures the plugin selection from opts. A nil helper compares
// every argument with UNITY_TEST_ASSERT_EQUAL.
func NewUtils(opts *Options, helper AssertionLookup) *Utils {
	u := &Utils{
		helper:        helper,
		treatAs:       opts.TreatAs,
		ptr:           opts.WhenPtr,
		ordered:       opts.EnforceStrictOrdering,
		arrays:        opts.hasPlugin("array"),
		cexception:    opts.hasPlugin("cexception"),
		expectAny:     opts.hasPlugin("expect_any_args"),
		returnThruPtr: opts.hasPlugin("return_thru_ptr"),
		ignoreArg:     opts.hasPlugin("ignore_arg"),
		ignore:        opts.hasPlugin("ignore") || opts.hasPlugin("ignore_stateless"),
	}
	if u.treatAs == nil {
		u.treatAs = unityhelper.StandardTreatAs()
	}
	if u.ptr == "" {
		u.ptr = PtrCompareData
	}

	switch {
	case !u.arrays:
		u.strategy = verifyNoArrays
	case u.ptr == PtrSmart:
		u.strategy = verifySmartArrays
	default:
		u.strategy = verifyNormalArrays
	}
	return u
}

// ArgTypeWithConst restores the const qualifier removed while parsing.
func (u *Utils) ArgTypeWithConst(arg header.Argument) string {
	if strings.Contains(arg.Type, "*") {
		if arg.IsConstPointer {
			return arg.Type + " const"
		}
		return arg.Type
	}
	if arg.IsConst {
		return "const " + arg.Type
	}
	return arg.Type
}

// CodeAddBaseExpectation allocates and chains a new call instance.
func (u *Utils) CodeAddBaseExpectation(funcName string, globalOrdering bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "  CMOCK_MEM_INDEX_TYPE cmock_guts_index = CMock_Guts_MemNew(sizeof(CMOCK_%s_CALL_INSTANCE));\n", funcName)
	fmt.Fprintf(&b, "  CMOCK_%[1]s_CALL_INSTANCE* cmock_call_instance = (CMOCK_%[1]s_CALL_INSTANCE*)CMock_Guts_GetAddressFor(cmock_guts_index);\n", funcName)
	b.WriteString("  UNITY_TEST_ASSERT_NOT_NULL(cmock_call_instance, cmock_line, CMockStringOutOfMemory);\n")
	b.WriteString("  memset(cmock_call_instance, 0, sizeof(*cmock_call_instance));\n")
	fmt.Fprintf(&b, "  Mock.%[1]s_CallInstance = CMock_Guts_MemChain(Mock.%[1]s_CallInstance, cmock_guts_index);\n", funcName)
	if u.ignore {
		fmt.Fprintf(&b, "  Mock.%s_IgnoreBool = (char)0;\n", funcName)
	}
	b.WriteString("  cmock_call_instance->LineNumber = cmock_line;\n")
	if u.ordered && globalOrdering {
		b.WriteString("  cmock_call_instance->CallOrder = ++GlobalExpectCount;\n")
	}
	if u.cexception {
		b.WriteString("  cmock_call_instance->ExceptionToThrow = CEXCEPTION_NONE;\n")
	}
	if u.expectAny {
		b.WriteString("  cmock_call_instance->ExpectAnyArgsBool = (char)0;\n")
	}
	return b.String()
}

// CodeAddAnArgExpectation stores one expected argument. depth names the
// depth parameter for array arguments and is empty otherwise.
func (u *Utils) CodeAddAnArgExpectation(arg header.Argument, depth string) string {
	out := u.CodeAssignArgumentQuickly("cmock_call_instance->Expected_"+arg.Name, arg)
	if u.arrays && depth != "" {
		out += fmt.Sprintf("  cmock_call_instance->Expected_%s_Depth = %s;\n", arg.Name, depth)
	}
	if u.ignoreArg {
		out += fmt.Sprintf("  cmock_call_instance->IgnoreArg_%s = 0;\n", arg.Name)
	}
	if u.returnThruPtr && u.PtrOrStr(arg.Type) && !arg.IsConst {
		out += fmt.Sprintf("  cmock_call_instance->ReturnThruPtr_%s_Used = 0;\n", arg.Name)
	}
	return out
}

// CodeAssignArgumentQuickly copies src into dest. Pointers and known types
// use plain assignment; anything else is copied with memcpy behind a
// compile-time size check.
func (u *Utils) CodeAssignArgumentQuickly(dest string, src header.Argument) string {
	if _, known := u.treatAs[src.Type]; src.IsPointer || known {
		return fmt.Sprintf("  %s = %s;\n", dest, src.Name)
	}
	sizeCheck := fmt.Sprintf("sizeof(%s) == sizeof(%s) ? 1 : -1", src.Name, src.Type)
	return fmt.Sprintf("  memcpy((void*)(&%s), (void*)(&%s),\n         sizeof(%s[%s])); /* add %s to :treat_as_array if this causes an error */\n",
		dest, src.Name, src.Type, sizeCheck, src.Type)
}

// returnArgument views a return value as an assignable argument named name.
func returnArgument(ret header.Return, name string) header.Argument {
	return header.Argument{
		Name:           name,
		Type:           ret.Type,
		IsPointer:      ret.IsPointer,
		IsConst:        ret.IsConst,
		IsConstPointer: ret.IsConstPointer,
	}
}

// CodeAddArgumentLoader emits CMockExpectParameters_<fn>, which stores every
// expected argument of one call.
func (u *Utils) CodeAddArgumentLoader(fn *header.Function) string {
	if fn.ArgsString == "void" {
		return ""
	}

	argsString := fn.ArgsString
	var body strings.Builder
	if u.arrays {
		params := make([]string, 0, len(fn.Args))
		for _, arg := range fn.Args {
			if arg.IsPointer {
				params = append(params, fmt.Sprintf("%s %s, int %s_Depth", u.ArgTypeWithConst(arg), arg.Name, arg.Name))
				body.WriteString(u.CodeAddAnArgExpectation(arg, arg.Name+"_Depth"))
			} else {
				params = append(params, fmt.Sprintf("%s %s", u.ArgTypeWithConst(arg), arg.Name))
				body.WriteString(u.CodeAddAnArgExpectation(arg, ""))
			}
		}
		argsString = strings.Join(params, ", ")
	} else {
		for _, arg := range fn.Args {
			body.WriteString(u.CodeAddAnArgExpectation(arg, ""))
		}
	}

	signature := fmt.Sprintf("void CMockExpectParameters_%[1]s(CMOCK_%[1]s_CALL_INSTANCE* cmock_call_instance, %[2]s)", fn.Name, argsString)
	return signature + ";\n" + signature + "\n{\n" + body.String() + "}\n\n"
}

// CodeCallArgumentLoader calls CMockExpectParameters_<fn> from an
// expectation function. With the array plugin, plain pointers expect a depth
// of one and size arguments double as their own depth.
func (u *Utils) CodeCallArgumentLoader(fn *header.Function) string {
	if fn.ArgsString == "void" {
		return ""
	}
	args := make([]string, 0, len(fn.Args))
	for _, arg := range fn.Args {
		switch {
		case u.arrays && arg.IsPointer && !arg.IsArrayData:
			args = append(args, arg.Name+", 1")
		case u.arrays && arg.IsArraySize:
			args = append(args, arg.Name+", "+arg.Name)
		default:
			args = append(args, arg.Name)
		}
	}
	return fmt.Sprintf("  CMockExpectParameters_%s(cmock_call_instance, %s);\n", fn.Name, strings.Join(args, ", "))
}

// PtrOrStr reports whether ctype is a pointer or treated as one.
func (u *Utils) PtrOrStr(ctype string) bool {
	return strings.Contains(ctype, "*") || strings.Contains(u.treatAs[ctype], "*")
}

// usesPointerCompare reports whether arg is compared by address only.
func (u *Utils) usesPointerCompare(arg header.Argument) bool {
	return arg.IsPointer && (strings.Contains(arg.Type, "**") || u.ptr == PtrComparePtr)
}

// CheckAssertions resolves the assertion for every argument of fn so
// unsupported comparisons surface before any text is emitted.
func (u *Utils) CheckAssertions(fn *header.Function) error {
	if u.helper == nil {
		return nil
	}
	for _, arg := range fn.Args {
		if u.usesPointerCompare(arg) {
			continue
		}
		if _, err := u.helper.Lookup(arg.Type); err != nil {
			return fmt.Errorf("%s argument %s: %w", fn.Name, arg.Name, err)
		}
	}
	return nil
}

func (u *Utils) lookupAssertion(arg header.Argument) unityhelper.Assertion {
	if u.usesPointerCompare(arg) {
		return unityhelper.Assertion{Macro: "UNITY_TEST_ASSERT_EQUAL_PTR"}
	}
	if u.helper == nil {
		return unityhelper.Assertion{Macro: "UNITY_TEST_ASSERT_EQUAL"}
	}
	a, err := u.helper.Lookup(arg.Type)
	if err != nil {
		// CheckAssertions runs first; this only guards direct callers.
		return unityhelper.Assertion{Macro: "UNITY_TEST_ASSERT_EQUAL"}
	}
	return a
}

// CodeVerifyAnArgExpectation emits the check of one actual argument against
// its expectation. The comparison strategy depends on the array plugin and
// the pointer handling mode.
func (u *Utils) CodeVerifyAnArgExpectation(fn *header.Function, arg header.Argument) string {
	a := u.lookupAssertion(arg)
	pre := a.Prefix
	expected := pre + "cmock_call_instance->Expected_" + arg.Name
	actual := pre + arg.Name
	baseType := strings.TrimRight(arg.Type, "*")

	depth := "1"
	if u.strategy != verifyNoArrays && arg.IsPointer {
		depth = "cmock_call_instance->Expected_" + arg.Name + "_Depth"
	}
	depthCheck := ""
	if u.strategy == verifySmartArrays && depth != "1" {
		depthCheck = fmt.Sprintf("    else if (%s == 0)\n      { UNITY_TEST_ASSERT_EQUAL_PTR(%s, %s, cmock_line, CMockStringMismatch); }\n", depth, expected, actual)
	}
	nullGuarded := func(check string) string {
		return fmt.Sprintf("    if (%s == NULL)\n      { UNITY_TEST_ASSERT_NULL(%s, cmock_line, CMockStringExpNULL); }\n", expected, actual) +
			depthCheck +
			fmt.Sprintf("    else\n      { %s }\n", check)
	}
	memory := fmt.Sprintf("UNITY_TEST_ASSERT_EQUAL_MEMORY((void*)(%s), (void*)(%s), sizeof(%s), cmock_line, CMockStringMismatch);", expected, actual, baseType)
	memoryArray := fmt.Sprintf("UNITY_TEST_ASSERT_EQUAL_MEMORY_ARRAY((void*)(%s), (void*)(%s), sizeof(%s), %s, cmock_line, CMockStringMismatch);", expected, actual, baseType, depth)

	var b strings.Builder
	if u.ignoreArg {
		fmt.Fprintf(&b, "  if (!cmock_call_instance->IgnoreArg_%s)\n", arg.Name)
	}
	b.WriteString("  {\n")
	fmt.Fprintf(&b, "    UNITY_SET_DETAILS(CMockString_%s,CMockString_%s);\n", fn.Name, arg.Name)
	if strings.HasPrefix(a.Macro, "UNITY_TEST_ASSERT_EQUAL_MEMORY") {
		fmt.Fprintf(&b, "    /* NOTE: no assertion for %s; comparing by memory */\n", arg.Type)
	}

	switch {
	case a.Macro == "UNITY_TEST_ASSERT_EQUAL_MEMORY":
		b.WriteString("    " + memory + "\n")
	case a.Macro == "UNITY_TEST_ASSERT_EQUAL_MEMORY_ARRAY":
		switch {
		case pre == "&" && u.strategy == verifySmartArrays:
			b.WriteString("    " + memoryArray + "\n")
		case pre == "&":
			b.WriteString("    " + memory + "\n")
		case u.strategy == verifyNoArrays:
			b.WriteString(nullGuarded(memory))
		default:
			b.WriteString(nullGuarded(memoryArray))
		}
	case strings.Contains(a.Macro, "_ARRAY"):
		check := fmt.Sprintf("%s(%s, %s, %s, cmock_line, CMockStringMismatch);", a.Macro, expected, actual, depth)
		if pre == "&" {
			b.WriteString("    " + check + "\n")
		} else {
			b.WriteString(nullGuarded(check))
		}
	default:
		fmt.Fprintf(&b, "    %s(%s, %s, cmock_line, CMockStringMismatch);\n", a.Macro, expected, actual)
	}

	b.WriteString("  }\n")
	return b.String()
}
