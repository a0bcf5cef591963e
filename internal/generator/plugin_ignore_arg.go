package generator

import (
	"fmt"
	"strings"

	"github.com/mvp-joe/cmockgen/internal/header"
)

// ignoreArgPlugin lets a test skip the check of individual arguments on the
// most recent expectation.
type ignoreArgPlugin struct{}

func newIgnoreArgPlugin(_ *Options, _ *Utils) (Plugin, error) {
	return &ignoreArgPlugin{}, nil
}

func (p *ignoreArgPlugin) Name() string  { return "ignore_arg" }
func (p *ignoreArgPlugin) Priority() int { return 10 }

func (p *ignoreArgPlugin) InstanceTypedefs(fn *header.Function) string {
	var b strings.Builder
	for _, arg := range fn.Args {
		fmt.Fprintf(&b, "  char IgnoreArg_%s;\n", arg.Name)
	}
	return b.String()
}

func (p *ignoreArgPlugin) MockFunctionDeclarations(fn *header.Function) string {
	var b strings.Builder
	for _, arg := range fn.Args {
		fmt.Fprintf(&b, "#define %[1]s_IgnoreArg_%[2]s() %[1]s_CMockIgnoreArg_%[2]s(__LINE__)\n", fn.Name, arg.Name)
		fmt.Fprintf(&b, "void %s_CMockIgnoreArg_%s(UNITY_LINE_TYPE cmock_line);\n", fn.Name, arg.Name)
	}
	return b.String()
}

func (p *ignoreArgPlugin) MockInterfaces(fn *header.Function) string {
	var b strings.Builder
	for _, arg := range fn.Args {
		fmt.Fprintf(&b, "void %s_CMockIgnoreArg_%s(UNITY_LINE_TYPE cmock_line)\n{\n", fn.Name, arg.Name)
		fmt.Fprintf(&b, "  CMOCK_%[1]s_CALL_INSTANCE* cmock_call_instance = (CMOCK_%[1]s_CALL_INSTANCE*)CMock_Guts_GetAddressFor(CMock_Guts_MemEndOfChain(Mock.%[1]s_CallInstance));\n", fn.Name)
		b.WriteString("  UNITY_TEST_ASSERT_NOT_NULL(cmock_call_instance, cmock_line, CMockStringIgnPreExp);\n")
		fmt.Fprintf(&b, "  cmock_call_instance->IgnoreArg_%s = 1;\n", arg.Name)
		b.WriteString("}\n\n")
	}
	return b.String()
}
