package generator

import (
	"fmt"
	"strings"

	"github.com/mvp-joe/cmockgen/internal/header"
)

// callbackPlugin routes calls to a test-supplied function. _Stub replaces
// the expectation entirely; _AddCallback runs after the argument checks.
type callbackPlugin struct {
	includeCount  bool
	afterArgCheck bool
	resetIgnore   bool
}

func newCallbackPlugin(opts *Options, utils *Utils) (Plugin, error) {
	return &callbackPlugin{
		includeCount:  opts.CallbackIncludeCount,
		afterArgCheck: opts.CallbackAfterArgCheck,
		resetIgnore:   utils.ignore,
	}, nil
}

func (p *callbackPlugin) Name() string  { return "callback" }
func (p *callbackPlugin) Priority() int { return 6 }

func (p *callbackPlugin) InstanceStructure(fn *header.Function) string {
	return fmt.Sprintf("  char %[1]s_CallbackBool;\n  CMOCK_%[1]s_CALLBACK %[1]s_CallbackFunctionPointer;\n  int %[1]s_CallbackCalls;\n", fn.Name)
}

func (p *callbackPlugin) MockFunctionDeclarations(fn *header.Function) string {
	action := "Stub"
	if p.afterArgCheck {
		action = "AddCallback"
	}

	var params string
	switch {
	case len(fn.Args) > 0 && p.includeCount:
		params = fn.ArgsString + ", int cmock_num_calls"
	case len(fn.Args) > 0:
		params = fn.ArgsString
	case p.includeCount:
		params = "int cmock_num_calls"
	default:
		params = "void"
	}

	return fmt.Sprintf("typedef %s (* CMOCK_%s_CALLBACK)(%s);\n", fn.Return.Type, fn.Name, params) +
		fmt.Sprintf("void %[1]s_AddCallback(CMOCK_%[1]s_CALLBACK Callback);\n", fn.Name) +
		fmt.Sprintf("void %[1]s_Stub(CMOCK_%[1]s_CALLBACK Callback);\n", fn.Name) +
		fmt.Sprintf("#define %[1]s_StubWithCallback %[1]s_%[2]s\n", fn.Name, action)
}

func (p *callbackPlugin) generateCall(fn *header.Function) string {
	args := make([]string, 0, len(fn.Args)+1)
	for _, arg := range fn.Args {
		args = append(args, arg.Name)
	}
	if p.includeCount {
		args = append(args, fmt.Sprintf("Mock.%s_CallbackCalls++", fn.Name))
	}
	return fmt.Sprintf("Mock.%s_CallbackFunctionPointer(%s)", fn.Name, strings.Join(args, ", "))
}

func (p *callbackPlugin) MockImplementationPrecheck(fn *header.Function) string {
	head := fmt.Sprintf("  if (!Mock.%[1]s_CallbackBool &&\n      Mock.%[1]s_CallbackFunctionPointer != NULL)\n  {\n", fn.Name)
	if fn.Return.IsVoid {
		return head +
			fmt.Sprintf("    %s;\n", p.generateCall(fn)) +
			"    UNITY_CLR_DETAILS();\n" +
			"    return;\n" +
			"  }\n"
	}
	return head +
		fmt.Sprintf("    %s cmock_cb_ret = %s;\n", fn.Return.Type, p.generateCall(fn)) +
		"    UNITY_CLR_DETAILS();\n" +
		"    return cmock_cb_ret;\n" +
		"  }\n"
}

func (p *callbackPlugin) MockImplementation(fn *header.Function) string {
	head := fmt.Sprintf("  if (Mock.%s_CallbackFunctionPointer != NULL)\n  {\n", fn.Name)
	if fn.Return.IsVoid {
		return head + fmt.Sprintf("    %s;\n  }\n", p.generateCall(fn))
	}
	return head + fmt.Sprintf("    cmock_call_instance->ReturnVal = %s;\n  }\n", p.generateCall(fn))
}

func (p *callbackPlugin) MockInterfaces(fn *header.Function) string {
	var b strings.Builder
	for _, setter := range []struct {
		name     string
		callback string
	}{
		{"AddCallback", "(char)1"},
		{"Stub", "(char)0"},
	} {
		fmt.Fprintf(&b, "void %[1]s_%[2]s(CMOCK_%[1]s_CALLBACK Callback)\n{\n", fn.Name, setter.name)
		if p.resetIgnore {
			fmt.Fprintf(&b, "  Mock.%s_IgnoreBool = (char)0;\n", fn.Name)
		}
		fmt.Fprintf(&b, "  Mock.%s_CallbackBool = %s;\n", fn.Name, setter.callback)
		fmt.Fprintf(&b, "  Mock.%s_CallbackFunctionPointer = Callback;\n", fn.Name)
		b.WriteString("}\n\n")
	}
	return b.String()
}

func (p *callbackPlugin) MockVerify(fn *header.Function) string {
	return fmt.Sprintf("  if (Mock.%s_CallbackFunctionPointer != NULL)\n", fn.Name) +
		"  {\n" +
		"    call_instance = CMOCK_GUTS_NONE;\n" +
		"    (void)call_instance;\n" +
		"  }\n"
}
