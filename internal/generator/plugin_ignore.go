package generator

import (
	"fmt"
	"strings"

	"github.com/mvp-joe/cmockgen/internal/header"
)

// ignorePlugin provides <fn>_Ignore / <fn>_IgnoreAndReturn. Return values
// queued with IgnoreAndReturn are consumed in order; the last one repeats.
type ignorePlugin struct {
	utils *Utils
}

func newIgnorePlugin(_ *Options, utils *Utils) (Plugin, error) {
	return &ignorePlugin{utils: utils}, nil
}

func (p *ignorePlugin) Name() string  { return "ignore" }
func (p *ignorePlugin) Priority() int { return 2 }

func (p *ignorePlugin) InstanceStructure(fn *header.Function) string {
	return ignoreInstanceStructure(fn)
}

func (p *ignorePlugin) MockFunctionDeclarations(fn *header.Function) string {
	var b strings.Builder
	if fn.Return.IsVoid {
		fmt.Fprintf(&b, "\n#define %[1]s_IgnoreAndReturn(cmock_retval) TEST_FAIL_MESSAGE(\"%[1]s requires _Ignore (not AndReturn)\");\n", fn.Name)
		fmt.Fprintf(&b, "#define %[1]s_Ignore() %[1]s_CMockIgnore()\n", fn.Name)
		fmt.Fprintf(&b, "void %s_CMockIgnore(void);\n", fn.Name)
	} else {
		fmt.Fprintf(&b, "\n#define %[1]s_Ignore() TEST_FAIL_MESSAGE(\"%[1]s requires _IgnoreAndReturn\");\n", fn.Name)
		fmt.Fprintf(&b, "#define %[1]s_IgnoreAndReturn(cmock_retval) %[1]s_CMockIgnoreAndReturn(__LINE__, cmock_retval)\n", fn.Name)
		fmt.Fprintf(&b, "void %s_CMockIgnoreAndReturn(UNITY_LINE_TYPE cmock_line, %s);\n", fn.Name, fn.Return.Str)
	}
	b.WriteString(stopIgnoreDeclaration(fn))
	return b.String()
}

func (p *ignorePlugin) MockImplementationPrecheck(fn *header.Function) string {
	return ignorePrecheck(p.utils, fn)
}

func (p *ignorePlugin) MockInterfaces(fn *header.Function) string {
	var b strings.Builder
	if fn.Return.IsVoid {
		fmt.Fprintf(&b, "void %s_CMockIgnore(void)\n{\n", fn.Name)
	} else {
		fmt.Fprintf(&b, "void %s_CMockIgnoreAndReturn(UNITY_LINE_TYPE cmock_line, %s)\n{\n", fn.Name, fn.Return.Str)
		b.WriteString(p.utils.CodeAddBaseExpectation(fn.Name, false))
		b.WriteString("  cmock_call_instance->ReturnVal = cmock_to_return;\n")
	}
	fmt.Fprintf(&b, "  Mock.%s_IgnoreBool = (char)1;\n", fn.Name)
	b.WriteString("}\n\n")

	fmt.Fprintf(&b, "void %s_CMockStopIgnore(void)\n{\n", fn.Name)
	if !fn.Return.IsVoid {
		fmt.Fprintf(&b, "  if(Mock.%[1]s_IgnoreBool)\n    Mock.%[1]s_CallInstance = CMock_Guts_MemNext(Mock.%[1]s_CallInstance);\n", fn.Name)
	}
	fmt.Fprintf(&b, "  Mock.%s_IgnoreBool = (char)0;\n", fn.Name)
	b.WriteString("}\n\n")
	return b.String()
}

func (p *ignorePlugin) MockIgnore(fn *header.Function) string {
	return fmt.Sprintf("  Mock.%s_IgnoreBool = (char) 1;\n", fn.Name)
}

func (p *ignorePlugin) MockVerify(fn *header.Function) string {
	return ignoreVerify(fn)
}

// Shared by ignore and ignore_stateless.

func ignoreInstanceStructure(fn *header.Function) string {
	out := fmt.Sprintf("  char %s_IgnoreBool;\n", fn.Name)
	if !fn.Return.IsVoid {
		out += fmt.Sprintf("  %s %s_FinalReturn;\n", fn.Return.Type, fn.Name)
	}
	return out
}

func stopIgnoreDeclaration(fn *header.Function) string {
	return fmt.Sprintf("#define %[1]s_StopIgnore() %[1]s_CMockStopIgnore()\n", fn.Name) +
		fmt.Sprintf("void %s_CMockStopIgnore(void);\n", fn.Name)
}

func ignorePrecheck(utils *Utils, fn *header.Function) string {
	var b strings.Builder
	fmt.Fprintf(&b, "  if (Mock.%s_IgnoreBool)\n  {\n", fn.Name)
	b.WriteString("    UNITY_CLR_DETAILS();\n")
	if fn.Return.IsVoid {
		b.WriteString("    return;\n  }\n")
		return b.String()
	}
	fmt.Fprintf(&b, "    if (cmock_call_instance == NULL)\n      return Mock.%s_FinalReturn;\n", fn.Name)
	retval := returnArgument(fn.Return, "cmock_call_instance->ReturnVal")
	b.WriteString("  " + utils.CodeAssignArgumentQuickly("Mock."+fn.Name+"_FinalReturn", retval))
	b.WriteString("    return cmock_call_instance->ReturnVal;\n  }\n")
	return b.String()
}

func ignoreVerify(fn *header.Function) string {
	return fmt.Sprintf("  if (Mock.%s_IgnoreBool)\n    call_instance = CMOCK_GUTS_NONE;\n", fn.Name)
}
