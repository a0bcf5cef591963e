package generator

import (
	"fmt"
	"strings"

	"github.com/mvp-joe/cmockgen/internal/header"
)

// expectPlugin provides <fn>_Expect / <fn>_ExpectAndReturn and the argument
// checks every mock performs. It is always loaded.
type expectPlugin struct {
	utils     *Utils
	ordered   bool
	expectAny bool
}

func newExpectPlugin(opts *Options, utils *Utils) (Plugin, error) {
	return &expectPlugin{
		utils:     utils,
		ordered:   opts.EnforceStrictOrdering,
		expectAny: opts.hasPlugin("expect_any_args"),
	}, nil
}

func (p *expectPlugin) Name() string  { return "expect" }
func (p *expectPlugin) Priority() int { return 5 }

func (p *expectPlugin) InstanceTypedefs(fn *header.Function) string {
	var b strings.Builder
	if !fn.Return.IsVoid {
		fmt.Fprintf(&b, "  %s ReturnVal;\n", fn.Return.Type)
	}
	if p.ordered {
		b.WriteString("  int CallOrder;\n")
	}
	for _, arg := range fn.Args {
		fmt.Fprintf(&b, "  %s Expected_%s;\n", arg.Type, arg.Name)
	}
	return b.String()
}

func (p *expectPlugin) MockFunctionDeclarations(fn *header.Function) string {
	name := fn.Name
	switch {
	case len(fn.Args) == 0 && fn.Return.IsVoid:
		return fmt.Sprintf("#define %[1]s_ExpectAndReturn(cmock_retval) TEST_FAIL_MESSAGE(\"%[1]s requires _Expect (not AndReturn)\");\n", name) +
			fmt.Sprintf("#define %[1]s_Expect() %[1]s_CMockExpect(__LINE__)\n", name) +
			fmt.Sprintf("void %s_CMockExpect(UNITY_LINE_TYPE cmock_line);\n", name)
	case len(fn.Args) == 0:
		return fmt.Sprintf("#define %[1]s_Expect() TEST_FAIL_MESSAGE(\"%[1]s requires _ExpectAndReturn\");\n", name) +
			fmt.Sprintf("#define %[1]s_ExpectAndReturn(cmock_retval) %[1]s_CMockExpectAndReturn(__LINE__, cmock_retval)\n", name) +
			fmt.Sprintf("void %s_CMockExpectAndReturn(UNITY_LINE_TYPE cmock_line, %s);\n", name, fn.Return.Str)
	case fn.Return.IsVoid:
		return fmt.Sprintf("#define %[1]s_ExpectAndReturn(%[2]s, cmock_retval) TEST_FAIL_MESSAGE(\"%[1]s requires _Expect (not AndReturn)\");\n", name, fn.ArgsCall) +
			fmt.Sprintf("#define %[1]s_Expect(%[2]s) %[1]s_CMockExpect(__LINE__, %[2]s)\n", name, fn.ArgsCall) +
			fmt.Sprintf("void %s_CMockExpect(UNITY_LINE_TYPE cmock_line, %s);\n", name, fn.ArgsString)
	default:
		return fmt.Sprintf("#define %[1]s_Expect(%[2]s) TEST_FAIL_MESSAGE(\"%[1]s requires _ExpectAndReturn\");\n", name, fn.ArgsCall) +
			fmt.Sprintf("#define %[1]s_ExpectAndReturn(%[2]s, cmock_retval) %[1]s_CMockExpectAndReturn(__LINE__, %[2]s, cmock_retval)\n", name, fn.ArgsCall) +
			fmt.Sprintf("void %s_CMockExpectAndReturn(UNITY_LINE_TYPE cmock_line, %s, %s);\n", name, fn.ArgsString, fn.Return.Str)
	}
}

// MockImplementation verifies every argument. With expect_any_args loaded
// the checks are skipped for calls expected with _ExpectAnyArgs.
func (p *expectPlugin) MockImplementation(fn *header.Function) string {
	var b strings.Builder
	if !p.expectAny {
		for _, arg := range fn.Args {
			b.WriteString(p.utils.CodeVerifyAnArgExpectation(fn, arg))
		}
		return b.String()
	}

	if len(fn.Args) == 0 {
		return ""
	}
	b.WriteString("  if (!cmock_call_instance->ExpectAnyArgsBool)\n  {\n")
	for _, arg := range fn.Args {
		b.WriteString(p.utils.CodeVerifyAnArgExpectation(fn, arg))
	}
	b.WriteString("  }\n")
	return b.String()
}

func (p *expectPlugin) MockInterfaces(fn *header.Function) string {
	var b strings.Builder
	switch {
	case fn.Return.IsVoid && fn.ArgsString == "void":
		fmt.Fprintf(&b, "void %s_CMockExpect(UNITY_LINE_TYPE cmock_line)\n{\n", fn.Name)
	case fn.Return.IsVoid:
		fmt.Fprintf(&b, "void %s_CMockExpect(UNITY_LINE_TYPE cmock_line, %s)\n{\n", fn.Name, fn.ArgsString)
	case fn.ArgsString == "void":
		fmt.Fprintf(&b, "void %s_CMockExpectAndReturn(UNITY_LINE_TYPE cmock_line, %s)\n{\n", fn.Name, fn.Return.Str)
	default:
		fmt.Fprintf(&b, "void %s_CMockExpectAndReturn(UNITY_LINE_TYPE cmock_line, %s, %s)\n{\n", fn.Name, fn.ArgsString, fn.Return.Str)
	}

	b.WriteString(p.utils.CodeAddBaseExpectation(fn.Name, true))
	b.WriteString(p.utils.CodeCallArgumentLoader(fn))
	if !fn.Return.IsVoid {
		b.WriteString(p.utils.CodeAssignArgumentQuickly("cmock_call_instance->ReturnVal", returnArgument(fn.Return, fn.Return.Name)))
	}
	b.WriteString("}\n\n")
	return b.String()
}

func (p *expectPlugin) MockVerify(fn *header.Function) string {
	return "  if (CMOCK_GUTS_NONE != call_instance)\n" +
		"  {\n" +
		fmt.Sprintf("    UNITY_SET_DETAIL(CMockString_%s);\n", fn.Name) +
		"    UNITY_TEST_FAIL(cmock_line, CMockStringCalledLess);\n" +
		"  }\n"
}
