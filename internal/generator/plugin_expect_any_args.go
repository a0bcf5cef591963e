package generator

import (
	"fmt"
	"strings"

	"github.com/mvp-joe/cmockgen/internal/header"
)

type expectAnyArgsPlugin struct {
	utils *Utils
}

func newExpectAnyArgsPlugin(_ *Options, utils *Utils) (Plugin, error) {
	return &expectAnyArgsPlugin{utils: utils}, nil
}

func (p *expectAnyArgsPlugin) Name() string  { return "expect_any_args" }
func (p *expectAnyArgsPlugin) Priority() int { return 3 }

func (p *expectAnyArgsPlugin) InstanceTypedefs(_ *header.Function) string {
	return "  char ExpectAnyArgsBool;\n"
}

func (p *expectAnyArgsPlugin) MockFunctionDeclarations(fn *header.Function) string {
	if len(fn.Args) == 0 {
		return ""
	}
	if fn.Return.IsVoid {
		return fmt.Sprintf("#define %[1]s_ExpectAnyArgsAndReturn(cmock_retval) TEST_FAIL_MESSAGE(\"%[1]s requires _ExpectAnyArgs (not AndReturn)\");\n", fn.Name) +
			fmt.Sprintf("#define %[1]s_ExpectAnyArgs() %[1]s_CMockExpectAnyArgs(__LINE__)\n", fn.Name) +
			fmt.Sprintf("void %s_CMockExpectAnyArgs(UNITY_LINE_TYPE cmock_line);\n", fn.Name)
	}
	return fmt.Sprintf("#define %[1]s_ExpectAnyArgs() TEST_FAIL_MESSAGE(\"%[1]s requires _ExpectAnyArgsAndReturn\");\n", fn.Name) +
		fmt.Sprintf("#define %[1]s_ExpectAnyArgsAndReturn(cmock_retval) %[1]s_CMockExpectAnyArgsAndReturn(__LINE__, cmock_retval)\n", fn.Name) +
		fmt.Sprintf("void %s_CMockExpectAnyArgsAndReturn(UNITY_LINE_TYPE cmock_line, %s);\n", fn.Name, fn.Return.Str)
}

func (p *expectAnyArgsPlugin) MockInterfaces(fn *header.Function) string {
	if len(fn.Args) == 0 {
		return ""
	}
	var b strings.Builder
	if fn.Return.IsVoid {
		fmt.Fprintf(&b, "void %s_CMockExpectAnyArgs(UNITY_LINE_TYPE cmock_line)\n{\n", fn.Name)
	} else {
		fmt.Fprintf(&b, "void %s_CMockExpectAnyArgsAndReturn(UNITY_LINE_TYPE cmock_line, %s)\n{\n", fn.Name, fn.Return.Str)
	}
	b.WriteString(p.utils.CodeAddBaseExpectation(fn.Name, true))
	if !fn.Return.IsVoid {
		b.WriteString("  cmock_call_instance->ReturnVal = cmock_to_return;\n")
	}
	b.WriteString("  cmock_call_instance->ExpectAnyArgsBool = (char)1;\n")
	b.WriteString("}\n\n")
	return b.String()
}
