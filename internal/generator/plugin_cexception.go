package generator

import (
	"errors"
	"fmt"

	"github.com/mvp-joe/cmockgen/internal/header"
)

// errCExceptionWithoutSetjmp rejects cexception when setjmp.h is excluded.
var errCExceptionWithoutSetjmp = errors.New("cexception is not supported without setjmp support")

// cexceptionPlugin lets an expectation throw a CException instead of returning.
type cexceptionPlugin struct {
	utils *Utils
}

func newCExceptionPlugin(opts *Options, utils *Utils) (Plugin, error) {
	if opts.ExcludeSetjmpH {
		return nil, errCExceptionWithoutSetjmp
	}
	return &cexceptionPlugin{utils: utils}, nil
}

func (p *cexceptionPlugin) Name() string  { return "cexception" }
func (p *cexceptionPlugin) Priority() int { return 7 }

func (p *cexceptionPlugin) IncludeFiles() string {
	return "#include \"CException.h\"\n"
}

func (p *cexceptionPlugin) InstanceTypedefs(_ *header.Function) string {
	return "  CEXCEPTION_T ExceptionToThrow;\n"
}

func (p *cexceptionPlugin) MockFunctionDeclarations(fn *header.Function) string {
	if fn.ArgsString == "void" {
		return fmt.Sprintf("#define %[1]s_ExpectAndThrow(cmock_to_throw) %[1]s_CMockExpectAndThrow(__LINE__, cmock_to_throw)\n", fn.Name) +
			fmt.Sprintf("void %s_CMockExpectAndThrow(UNITY_LINE_TYPE cmock_line, CEXCEPTION_T cmock_to_throw);\n", fn.Name)
	}
	return fmt.Sprintf("#define %[1]s_ExpectAndThrow(%[2]s, cmock_to_throw) %[1]s_CMockExpectAndThrow(__LINE__, %[2]s, cmock_to_throw)\n", fn.Name, fn.ArgsCall) +
		fmt.Sprintf("void %s_CMockExpectAndThrow(UNITY_LINE_TYPE cmock_line, %s, CEXCEPTION_T cmock_to_throw);\n", fn.Name, fn.ArgsString)
}

func (p *cexceptionPlugin) MockImplementation(_ *header.Function) string {
	return "  if (cmock_call_instance->ExceptionToThrow != CEXCEPTION_NONE)\n" +
		"  {\n" +
		"    UNITY_CLR_DETAILS();\n" +
		"    Throw(cmock_call_instance->ExceptionToThrow);\n" +
		"  }\n"
}

func (p *cexceptionPlugin) MockInterfaces(fn *header.Function) string {
	argInsert := ""
	if fn.ArgsString != "void" {
		argInsert = fn.ArgsString + ", "
	}
	return fmt.Sprintf("void %s_CMockExpectAndThrow(UNITY_LINE_TYPE cmock_line, %sCEXCEPTION_T cmock_to_throw)\n{\n", fn.Name, argInsert) +
		p.utils.CodeAddBaseExpectation(fn.Name, true) +
		p.utils.CodeCallArgumentLoader(fn) +
		"  cmock_call_instance->ExceptionToThrow = cmock_to_throw;\n" +
		"}\n\n"
}
