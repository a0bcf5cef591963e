package generator

import (
	"fmt"
	"strings"

	"github.com/mvp-joe/cmockgen/internal/header"
)

// ignoreStatelessPlugin ignores calls without queueing return values: the
// value given to IgnoreAndReturn is returned for every call.
type ignoreStatelessPlugin struct {
	utils *Utils
}

func newIgnoreStatelessPlugin(_ *Options, utils *Utils) (Plugin, error) {
	return &ignoreStatelessPlugin{utils: utils}, nil
}

func (p *ignoreStatelessPlugin) Name() string  { return "ignore_stateless" }
func (p *ignoreStatelessPlugin) Priority() int { return 2 }

func (p *ignoreStatelessPlugin) InstanceStructure(fn *header.Function) string {
	return ignoreInstanceStructure(fn)
}

func (p *ignoreStatelessPlugin) MockFunctionDeclarations(fn *header.Function) string {
	var b strings.Builder
	if fn.Return.IsVoid {
		fmt.Fprintf(&b, "#define %[1]s_IgnoreAndReturn(cmock_retval) TEST_FAIL_MESSAGE(\"%[1]s requires _Ignore (not AndReturn)\");\n", fn.Name)
		fmt.Fprintf(&b, "#define %[1]s_Ignore() %[1]s_CMockIgnore()\n", fn.Name)
		fmt.Fprintf(&b, "void %s_CMockIgnore(void);\n", fn.Name)
	} else {
		fmt.Fprintf(&b, "#define %[1]s_Ignore() TEST_FAIL_MESSAGE(\"%[1]s requires _IgnoreAndReturn\");\n", fn.Name)
		fmt.Fprintf(&b, "#define %[1]s_IgnoreAndReturn(cmock_retval) %[1]s_CMockIgnoreAndReturn(cmock_retval)\n", fn.Name)
		fmt.Fprintf(&b, "void %s_CMockIgnoreAndReturn(%s);\n", fn.Name, fn.Return.Str)
	}
	b.WriteString(stopIgnoreDeclaration(fn))
	return b.String()
}

func (p *ignoreStatelessPlugin) MockImplementationPrecheck(fn *header.Function) string {
	return ignorePrecheck(p.utils, fn)
}

func (p *ignoreStatelessPlugin) MockInterfaces(fn *header.Function) string {
	var b strings.Builder
	if fn.Return.IsVoid {
		fmt.Fprintf(&b, "void %s_CMockIgnore(void)\n{\n", fn.Name)
	} else {
		fmt.Fprintf(&b, "void %s_CMockIgnoreAndReturn(%s)\n{\n", fn.Name, fn.Return.Str)
		fmt.Fprintf(&b, "  Mock.%s_CallInstance = CMOCK_GUTS_NONE;\n", fn.Name)
		fmt.Fprintf(&b, "  Mock.%s_FinalReturn = cmock_to_return;\n", fn.Name)
	}
	fmt.Fprintf(&b, "  Mock.%s_IgnoreBool = (char)1;\n", fn.Name)
	b.WriteString("}\n\n")

	fmt.Fprintf(&b, "void %s_CMockStopIgnore(void)\n{\n", fn.Name)
	fmt.Fprintf(&b, "  Mock.%s_IgnoreBool = (char)0;\n", fn.Name)
	b.WriteString("}\n\n")
	return b.String()
}

func (p *ignoreStatelessPlugin) MockIgnore(fn *header.Function) string {
	return fmt.Sprintf("  Mock.%s_IgnoreBool = (char)1;\n", fn.Name)
}

func (p *ignoreStatelessPlugin) MockVerify(fn *header.Function) string {
	return ignoreVerify(fn)
}
