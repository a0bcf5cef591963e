package generator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mvp-joe/cmockgen/internal/header"
)

var errArrayWithComparePtr = errors.New("the array plugin cannot be combined with when_ptr: compare_ptr")

// arrayPlugin adds _ExpectWithArray variants taking an element count for
// every pointer argument.
type arrayPlugin struct {
	utils *Utils
}

func newArrayPlugin(opts *Options, utils *Utils) (Plugin, error) {
	if opts.WhenPtr == PtrComparePtr {
		return nil, errArrayWithComparePtr
	}
	return &arrayPlugin{utils: utils}, nil
}

func (p *arrayPlugin) Name() string  { return "array" }
func (p *arrayPlugin) Priority() int { return 8 }

func (p *arrayPlugin) InstanceTypedefs(fn *header.Function) string {
	var b strings.Builder
	for _, arg := range fn.Args {
		if arg.IsPointer {
			fmt.Fprintf(&b, "  int Expected_%s_Depth;\n", arg.Name)
		}
	}
	return b.String()
}

// arrayArgLists returns the macro parameters, the forwarded macro arguments,
// the parameter declarations and the loader call arguments.
func (p *arrayPlugin) arrayArgLists(fn *header.Function) (callIn, callOut, params, loader string) {
	var in, out, decl, load []string
	for _, arg := range fn.Args {
		typ := p.utils.ArgTypeWithConst(arg)
		if arg.IsPointer {
			in = append(in, arg.Name+", "+arg.Name+"_Depth")
			out = append(out, arg.Name+", ("+arg.Name+"_Depth)")
			decl = append(decl, fmt.Sprintf("%s %s, int %s_Depth", typ, arg.Name, arg.Name))
			load = append(load, arg.Name+", "+arg.Name+"_Depth")
			continue
		}
		in = append(in, arg.Name)
		out = append(out, arg.Name)
		decl = append(decl, typ+" "+arg.Name)
		load = append(load, arg.Name)
	}
	return strings.Join(in, ", "), strings.Join(out, ", "), strings.Join(decl, ", "), strings.Join(load, ", ")
}

func (p *arrayPlugin) MockFunctionDeclarations(fn *header.Function) string {
	if !fn.ContainsPointer {
		return ""
	}
	callIn, callOut, params, _ := p.arrayArgLists(fn)
	if fn.Return.IsVoid {
		return fmt.Sprintf("#define %[1]s_ExpectWithArrayAndReturn(%[2]s, cmock_retval) TEST_FAIL_MESSAGE(\"%[1]s requires _ExpectWithArray (not AndReturn)\");\n", fn.Name, callIn) +
			fmt.Sprintf("#define %[1]s_ExpectWithArray(%[2]s) %[1]s_CMockExpectWithArray(__LINE__, %[3]s)\n", fn.Name, callIn, callOut) +
			fmt.Sprintf("void %s_CMockExpectWithArray(UNITY_LINE_TYPE cmock_line, %s);\n", fn.Name, params)
	}
	return fmt.Sprintf("#define %[1]s_ExpectWithArray(%[2]s) TEST_FAIL_MESSAGE(\"%[1]s requires _ExpectWithArrayAndReturn\");\n", fn.Name, callIn) +
		fmt.Sprintf("#define %[1]s_ExpectWithArrayAndReturn(%[2]s, cmock_retval) %[1]s_CMockExpectWithArrayAndReturn(__LINE__, %[3]s, cmock_retval)\n", fn.Name, callIn, callOut) +
		fmt.Sprintf("void %s_CMockExpectWithArrayAndReturn(UNITY_LINE_TYPE cmock_line, %s, %s);\n", fn.Name, params, fn.Return.Str)
}

func (p *arrayPlugin) MockInterfaces(fn *header.Function) string {
	if !fn.ContainsPointer {
		return ""
	}
	_, _, params, loader := p.arrayArgLists(fn)

	var b strings.Builder
	if fn.Return.IsVoid {
		fmt.Fprintf(&b, "void %s_CMockExpectWithArray(UNITY_LINE_TYPE cmock_line, %s)\n", fn.Name, params)
	} else {
		fmt.Fprintf(&b, "void %s_CMockExpectWithArrayAndReturn(UNITY_LINE_TYPE cmock_line, %s, %s)\n", fn.Name, params, fn.Return.Str)
	}
	b.WriteString("{\n")
	b.WriteString(p.utils.CodeAddBaseExpectation(fn.Name, true))
	fmt.Fprintf(&b, "  CMockExpectParameters_%s(cmock_call_instance, %s);\n", fn.Name, loader)
	if !fn.Return.IsVoid {
		b.WriteString("  cmock_call_instance->ReturnVal = cmock_to_return;\n")
	}
	b.WriteString("}\n\n")
	return b.String()
}
