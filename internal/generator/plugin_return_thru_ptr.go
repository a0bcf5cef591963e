package generator

import (
	"fmt"
	"strings"

	"github.com/mvp-joe/cmockgen/internal/header"
)

// returnThruPtrPlugin lets a test specify data copied into non-const
// pointer arguments when the mock is called.
type returnThruPtrPlugin struct {
	utils       *Utils
	treatAsVoid map[string]bool
}

func newReturnThruPtrPlugin(opts *Options, utils *Utils) (Plugin, error) {
	voids := map[string]bool{}
	for _, t := range opts.TreatAsVoid {
		voids[t] = true
	}
	return &returnThruPtrPlugin{utils: utils, treatAsVoid: voids}, nil
}

func (p *returnThruPtrPlugin) Name() string  { return "return_thru_ptr" }
func (p *returnThruPtrPlugin) Priority() int { return 9 }

func (p *returnThruPtrPlugin) applies(arg header.Argument) bool {
	return p.utils.PtrOrStr(arg.Type) && !arg.IsConst
}

// ptrToConst turns the outermost pointer into a pointer to const.
func ptrToConst(ctype string) string {
	i := strings.LastIndex(ctype, "*")
	if i < 0 {
		return ctype
	}
	return ctype[:i] + " const*" + ctype[i+1:]
}

func (p *returnThruPtrPlugin) isVoid(ctype string) bool {
	return strings.EqualFold(ctype, "void") || p.treatAsVoid[ctype]
}

func (p *returnThruPtrPlugin) InstanceTypedefs(fn *header.Function) string {
	var b strings.Builder
	for _, arg := range fn.Args {
		if !p.applies(arg) {
			continue
		}
		fmt.Fprintf(&b, "  char ReturnThruPtr_%s_Used;\n", arg.Name)
		fmt.Fprintf(&b, "  %s ReturnThruPtr_%s_Val;\n", ptrToConst(arg.Type), arg.Name)
		fmt.Fprintf(&b, "  size_t ReturnThruPtr_%s_Size;\n", arg.Name)
	}
	return b.String()
}

func (p *returnThruPtrPlugin) MockFunctionDeclarations(fn *header.Function) string {
	var b strings.Builder
	for _, arg := range fn.Args {
		if !p.applies(arg) {
			continue
		}
		sizeofType := fmt.Sprintf("sizeof(*%s)", arg.Name)
		if base := strings.TrimSuffix(arg.Type, "*"); base != arg.Type && !p.isVoid(base) {
			sizeofType = fmt.Sprintf("sizeof(%s)", base)
		}
		fmt.Fprintf(&b, "#define %[1]s_ReturnThruPtr_%[2]s(%[2]s) %[1]s_CMockReturnMemThruPtr_%[2]s(__LINE__, %[2]s, %[3]s)\n", fn.Name, arg.Name, sizeofType)
		fmt.Fprintf(&b, "#define %[1]s_ReturnArrayThruPtr_%[2]s(%[2]s, cmock_len) %[1]s_CMockReturnMemThruPtr_%[2]s(__LINE__, %[2]s, (cmock_len * sizeof(*%[2]s)))\n", fn.Name, arg.Name)
		fmt.Fprintf(&b, "#define %[1]s_ReturnMemThruPtr_%[2]s(%[2]s, cmock_size) %[1]s_CMockReturnMemThruPtr_%[2]s(__LINE__, %[2]s, (cmock_size))\n", fn.Name, arg.Name)
		fmt.Fprintf(&b, "void %s_CMockReturnMemThruPtr_%s(UNITY_LINE_TYPE cmock_line, %s %s, size_t cmock_size);\n", fn.Name, arg.Name, ptrToConst(arg.Type), arg.Name)
	}
	return b.String()
}

func (p *returnThruPtrPlugin) MockInterfaces(fn *header.Function) string {
	var b strings.Builder
	for _, arg := range fn.Args {
		if !p.applies(arg) {
			continue
		}
		fmt.Fprintf(&b, "void %s_CMockReturnMemThruPtr_%s(UNITY_LINE_TYPE cmock_line, %s %s, size_t cmock_size)\n{\n", fn.Name, arg.Name, ptrToConst(arg.Type), arg.Name)
		fmt.Fprintf(&b, "  CMOCK_%[1]s_CALL_INSTANCE* cmock_call_instance = (CMOCK_%[1]s_CALL_INSTANCE*)CMock_Guts_GetAddressFor(CMock_Guts_MemEndOfChain(Mock.%[1]s_CallInstance));\n", fn.Name)
		b.WriteString("  UNITY_TEST_ASSERT_NOT_NULL(cmock_call_instance, cmock_line, CMockStringPtrPreExp);\n")
		fmt.Fprintf(&b, "  cmock_call_instance->ReturnThruPtr_%s_Used = 1;\n", arg.Name)
		fmt.Fprintf(&b, "  cmock_call_instance->ReturnThruPtr_%[1]s_Val = %[1]s;\n", arg.Name)
		fmt.Fprintf(&b, "  cmock_call_instance->ReturnThruPtr_%s_Size = cmock_size;\n", arg.Name)
		b.WriteString("}\n\n")
	}
	return b.String()
}

func (p *returnThruPtrPlugin) MockImplementation(fn *header.Function) string {
	var b strings.Builder
	for _, arg := range fn.Args {
		if !p.applies(arg) {
			continue
		}
		fmt.Fprintf(&b, "  if (cmock_call_instance->ReturnThruPtr_%s_Used)\n  {\n", arg.Name)
		fmt.Fprintf(&b, "    UNITY_TEST_ASSERT_NOT_NULL(%s, cmock_line, CMockStringPtrIsNULL);\n", arg.Name)
		fmt.Fprintf(&b, "    memcpy((void*)%[1]s, (const void*)cmock_call_instance->ReturnThruPtr_%[1]s_Val,\n", arg.Name)
		fmt.Fprintf(&b, "      cmock_call_instance->ReturnThruPtr_%s_Size);\n", arg.Name)
		b.WriteString("  }\n")
	}
	return b.String()
}
