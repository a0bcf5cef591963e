// Package generator emits CMock-compatible mock sources from parsed headers.
// The text of every mock is assembled from a fixed skeleton plus the output
// of the loaded plugins at each hook.
package generator

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/mvp-joe/cmockgen/internal/header"
)

// File is one generated output, relative to the output root.
type File struct {
	Path    string
	Content string
}

// Project describes the mock being generated for one module. It is built
// per call and discarded after emission.
type Project struct {
	ModuleName string
	ModuleExt  string
	MockName   string
	CleanName  string
	Folder     string
	Skeleton   bool
	Module     *header.Module
}

// Generator produces mock and skeleton files.
type Generator struct {
	opts     Options
	utils    *Utils
	registry *Registry

	includesHPre  []string
	includesHPost []string
	includesCPre  []string
	includesCPost []string
}

// New loads the configured plugins. helper may be nil, in which case every
// argument is compared with UNITY_TEST_ASSERT_EQUAL.
func New(opts Options, helper AssertionLookup) (*Generator, error) {
	if opts.Framework == "" {
		opts.Framework = "unity"
	}
	if opts.OrigHeaderIncludeFmt == "" {
		opts.OrigHeaderIncludeFmt = `#include "%s"`
	}

	utils := NewUtils(&opts, helper)
	registry, err := NewRegistry(&opts, utils)
	if err != nil {
		return nil, err
	}

	return &Generator{
		opts:          opts,
		utils:         utils,
		registry:      registry,
		includesHPre:  formatIncludes(append(append([]string{}, opts.Includes...), opts.IncludesHPreOrigHeader...)),
		includesHPost: formatIncludes(opts.IncludesHPostOrigHeader),
		includesCPre:  formatIncludes(opts.IncludesCPreHeader),
		includesCPost: formatIncludes(opts.IncludesCPostHeader),
	}, nil
}

// Registry exposes the loaded plugins.
func (g *Generator) Registry() *Registry {
	return g.registry
}

func formatIncludes(includes []string) []string {
	out := make([]string, 0, len(includes))
	for _, inc := range includes {
		if strings.HasPrefix(inc, "<") {
			out = append(out, inc)
		} else {
			out = append(out, `"`+inc+`"`)
		}
	}
	return out
}

func (g *Generator) mockFolder(folder string) string {
	switch {
	case folder != "" && g.opts.Subdir != "":
		return path.Join(g.opts.Subdir, folder)
	case g.opts.Subdir != "":
		return g.opts.Subdir
	default:
		return folder
	}
}

// NewProject describes the mock for moduleName. ext defaults to ".h".
func (g *Generator) NewProject(moduleName, ext, folder string, mod *header.Module) *Project {
	if ext == "" {
		ext = ".h"
	}
	mockName := g.opts.MockPrefix + moduleName + g.opts.MockSuffix
	return &Project{
		ModuleName: moduleName,
		ModuleExt:  ext,
		MockName:   mockName,
		CleanName:  g.opts.sanitize(mockName),
		Folder:     g.mockFolder(folder),
		Module:     mod,
	}
}

// Mock generates the mock header and source for mod. With inline functions
// included, the folded module header is returned as a third file.
func (g *Generator) Mock(moduleName, ext, folder string, mod *header.Module) ([]File, error) {
	for i := range mod.Functions {
		if err := g.utils.CheckAssertions(&mod.Functions[i]); err != nil {
			return nil, fmt.Errorf("module %s: %w", moduleName, err)
		}
	}

	p := g.NewProject(moduleName, ext, folder, mod)

	var files []File
	if g.opts.IncludeInlines {
		files = append(files, File{
			Path:    path.Join(p.Folder, p.ModuleName+p.ModuleExt),
			Content: mod.NormalizedSource,
		})
	}
	files = append(files,
		File{Path: path.Join(p.Folder, p.MockName+p.ModuleExt), Content: g.mockHeader(p)},
		File{Path: path.Join(p.Folder, p.MockName+".c"), Content: g.mockSource(p)},
	)
	return files, nil
}

const gccGuard = "#if defined(__GNUC__) && !defined(__ICC) && !defined(__TMS470__)\n" +
	"#if __GNUC__ > 4 || (__GNUC__ == 4 && (__GNUC_MINOR__ > 6 || (__GNUC_MINOR__ == 6 && __GNUC_PATCHLEVEL__ > 0)))\n"

func (g *Generator) mockHeader(p *Project) string {
	var b strings.Builder
	define := strings.ToUpper(p.CleanName)
	origFilename := path.Join(p.Folder, p.ModuleName+p.ModuleExt)

	b.WriteString("/* AUTOGENERATED FILE. DO NOT EDIT. */\n")
	fmt.Fprintf(&b, "#ifndef _%s_H\n", define)
	fmt.Fprintf(&b, "#define _%s_H\n\n", define)
	fmt.Fprintf(&b, "#include \"%s.h\"\n", g.opts.Framework)
	for _, inc := range g.includesHPre {
		fmt.Fprintf(&b, "#include %s\n", inc)
	}
	b.WriteString(strings.Replace(g.opts.OrigHeaderIncludeFmt, "%s", origFilename, 1) + "\n")
	for _, inc := range g.includesHPost {
		fmt.Fprintf(&b, "#include %s\n", inc)
	}
	b.WriteString(g.registry.Run(HookIncludeFiles, nil))

	b.WriteString("\n")
	b.WriteString("/* Ignore the following warnings, since we are copying code */\n")
	b.WriteString(gccGuard)
	b.WriteString("#pragma GCC diagnostic push\n")
	b.WriteString("#endif\n")
	b.WriteString("#if !defined(__clang__)\n")
	b.WriteString("#pragma GCC diagnostic ignored \"-Wpragmas\"\n")
	b.WriteString("#endif\n")
	b.WriteString("#pragma GCC diagnostic ignored \"-Wunknown-pragmas\"\n")
	b.WriteString("#pragma GCC diagnostic ignored \"-Wduplicate-decl-specifier\"\n")
	b.WriteString("#endif\n")
	b.WriteString("\n")
	b.WriteString("#ifdef __cplusplus\nextern \"C\" {\n#endif\n\n")

	fmt.Fprintf(&b, "void %s_Init(void);\n", p.CleanName)
	fmt.Fprintf(&b, "void %s_Destroy(void);\n", p.CleanName)
	fmt.Fprintf(&b, "void %s_Verify(void);\n\n", p.CleanName)

	b.WriteString("\n")
	for _, typedef := range p.Module.Typedefs {
		b.WriteString(typedef + "\n")
	}
	b.WriteString("\n\n")

	for i := range p.Module.Functions {
		fn := &p.Module.Functions[i]
		if len(fn.Namespace) > 0 {
			fmt.Fprintf(&b, "using namespace %s;\n", strings.Join(fn.Namespace, "::"))
		}
		b.WriteString(g.registry.Run(HookMockFunctionDeclarations, fn))
	}

	b.WriteString("\n")
	b.WriteString("#ifdef __cplusplus\n}\n#endif\n\n")
	b.WriteString(gccGuard)
	b.WriteString("#pragma GCC diagnostic pop\n")
	b.WriteString("#endif\n")
	b.WriteString("#endif\n")
	b.WriteString("\n")
	b.WriteString("#endif\n")
	return b.String()
}

func (g *Generator) mockSource(p *Project) string {
	var b strings.Builder
	g.writeSourceHeader(&b, p.Module.Functions, path.Join(p.Folder, p.MockName+p.ModuleExt))
	g.writeInstanceStructure(&b, p)

	if g.opts.EnforceStrictOrdering {
		b.WriteString("extern int GlobalExpectCount;\n")
		b.WriteString("extern int GlobalVerifyOrder;\n")
	}
	b.WriteString("\n")

	g.writeVerify(&b, p)

	fmt.Fprintf(&b, "void %s_Init(void)\n{\n", p.CleanName)
	fmt.Fprintf(&b, "  %s_Destroy();\n", p.CleanName)
	b.WriteString("}\n\n")

	g.writeDestroy(&b, p)

	for i := range p.Module.Functions {
		fn := &p.Module.Functions[i]
		g.writeImplementation(&b, fn)
		b.WriteString(g.utils.CodeAddArgumentLoader(fn))
		b.WriteString(g.registry.Run(HookMockInterfaces, fn))
	}
	return b.String()
}

// writeSourceHeader emits the include block and the CMockString constants
// shared by mock and skeleton sources.
func (g *Generator) writeSourceHeader(b *strings.Builder, functions []header.Function, include string) {
	if len(functions) > 0 {
		b.WriteString("/* AUTOGENERATED FILE. DO NOT EDIT. */\n")
	}
	b.WriteString("#include <string.h>\n")
	b.WriteString("#include <stdlib.h>\n")
	if !g.opts.ExcludeSetjmpH {
		b.WriteString("#include <setjmp.h>\n")
	}
	b.WriteString("#include \"cmock.h\"\n")
	for _, inc := range g.includesCPre {
		fmt.Fprintf(b, "#include %s\n", inc)
	}
	fmt.Fprintf(b, "#include \"%s\"\n", include)
	for _, inc := range g.includesCPost {
		fmt.Fprintf(b, "#include %s\n", inc)
	}
	b.WriteString("\n")

	seen := map[string]bool{}
	var strs []string
	add := func(s string) {
		if !seen[s] {
			seen[s] = true
			strs = append(strs, s)
		}
	}
	for _, fn := range functions {
		add(fn.Name)
		for _, arg := range fn.Args {
			add(arg.Name)
		}
	}
	sort.Strings(strs)
	for _, s := range strs {
		fmt.Fprintf(b, "static const char* CMockString_%[1]s = \"%[1]s\";\n", s)
	}
	b.WriteString("\n")
}

func (g *Generator) writeInstanceStructure(b *strings.Builder, p *Project) {
	functions := p.Module.Functions
	for i := range functions {
		fn := &functions[i]
		fmt.Fprintf(b, "typedef struct _CMOCK_%s_CALL_INSTANCE\n{\n", fn.Name)
		b.WriteString("  UNITY_LINE_TYPE LineNumber;\n")
		b.WriteString(g.registry.Run(HookInstanceTypedefs, fn))
		fmt.Fprintf(b, "\n} CMOCK_%s_CALL_INSTANCE;\n\n", fn.Name)
	}

	fmt.Fprintf(b, "static struct %sInstance\n{\n", p.CleanName)
	if len(functions) == 0 {
		b.WriteString("  unsigned char placeHolder;\n")
	}
	for i := range functions {
		fn := &functions[i]
		b.WriteString(g.registry.Run(HookInstanceStructure, fn))
		fmt.Fprintf(b, "  CMOCK_MEM_INDEX_TYPE %s_CallInstance;\n", fn.Name)
	}
	b.WriteString("} Mock;\n\n")
}

func (g *Generator) writeVerify(b *strings.Builder, p *Project) {
	fmt.Fprintf(b, "void %s_Verify(void)\n{\n", p.CleanName)
	var verifications strings.Builder
	for i := range p.Module.Functions {
		fn := &p.Module.Functions[i]
		check := g.registry.Run(HookMockVerify, fn)
		if check == "" {
			continue
		}
		fmt.Fprintf(&verifications, "  call_instance = Mock.%s_CallInstance;\n", fn.Name)
		verifications.WriteString(check)
	}
	if verifications.Len() > 0 {
		b.WriteString("  UNITY_LINE_TYPE cmock_line = TEST_LINE_NUM;\n")
		b.WriteString("  CMOCK_MEM_INDEX_TYPE call_instance;\n")
		b.WriteString(verifications.String())
	}
	b.WriteString("}\n\n")
}

func (g *Generator) writeDestroy(b *strings.Builder, p *Project) {
	fmt.Fprintf(b, "void %s_Destroy(void)\n{\n", p.CleanName)
	b.WriteString("  CMock_Guts_MemFreeAll();\n")
	b.WriteString("  memset(&Mock, 0, sizeof(Mock));\n")
	for i := range p.Module.Functions {
		b.WriteString(g.registry.Run(HookMockDestroy, &p.Module.Functions[i]))
	}
	if !g.opts.FailOnUnexpectedCalls {
		for i := range p.Module.Functions {
			b.WriteString(g.registry.Run(HookMockIgnore, &p.Module.Functions[i]))
		}
	}
	if g.opts.EnforceStrictOrdering {
		b.WriteString("  GlobalExpectCount = 0;\n")
		b.WriteString("  GlobalVerifyOrder = 0;\n")
	}
	b.WriteString("}\n\n")
}

// signatureParts returns "<modifier> <ret> <cc>" and the parameter list
// including any variadic tail.
func signatureParts(fn *header.Function) (modAndRet, args string) {
	modAndRet = fn.Return.Type
	if fn.Modifier != "" {
		modAndRet = fn.Modifier + " " + modAndRet
	}
	if fn.CallingConvention != "" {
		modAndRet += " " + fn.CallingConvention
	}
	args = fn.ArgsString
	if fn.VarArg != "" {
		args += ", " + fn.VarArg
	}
	return modAndRet, args
}

func (g *Generator) writeImplementation(b *strings.Builder, fn *header.Function) {
	modAndRet, args := signatureParts(fn)

	for _, ns := range fn.Namespace {
		fmt.Fprintf(b, "namespace %s {\n", ns)
	}

	classPrefix := ""
	if fn.Class != "" {
		classPrefix = fn.Class + "::"
	}

	if g.opts.Weak != "" {
		b.WriteString("#if defined (__IAR_SYSTEMS_ICC__)\n")
		fmt.Fprintf(b, "#pragma weak %s\n", fn.UnscopedName)
		b.WriteString("#else\n")
		fmt.Fprintf(b, "%s %s(%s) %s;\n", modAndRet, fn.UnscopedName, args, g.opts.Weak)
		b.WriteString("#endif\n\n")
	}

	fmt.Fprintf(b, "%s %s%s(%s)\n", modAndRet, classPrefix, fn.UnscopedName, args)
	b.WriteString("{\n")
	b.WriteString("  UNITY_LINE_TYPE cmock_line = TEST_LINE_NUM;\n")
	fmt.Fprintf(b, "  CMOCK_%s_CALL_INSTANCE* cmock_call_instance;\n", fn.Name)
	fmt.Fprintf(b, "  UNITY_SET_DETAIL(CMockString_%s);\n", fn.Name)
	fmt.Fprintf(b, "  cmock_call_instance = (CMOCK_%[1]s_CALL_INSTANCE*)CMock_Guts_GetAddressFor(Mock.%[1]s_CallInstance);\n", fn.Name)
	fmt.Fprintf(b, "  Mock.%[1]s_CallInstance = CMock_Guts_MemNext(Mock.%[1]s_CallInstance);\n", fn.Name)
	b.WriteString(g.registry.Run(HookMockImplementationPrecheck, fn))
	b.WriteString("  UNITY_TEST_ASSERT_NOT_NULL(cmock_call_instance, cmock_line, CMockStringCalledMore);\n")
	b.WriteString("  cmock_line = cmock_call_instance->LineNumber;\n")
	if g.opts.EnforceStrictOrdering {
		b.WriteString("  if (cmock_call_instance->CallOrder > ++GlobalVerifyOrder)\n")
		b.WriteString("    UNITY_TEST_FAIL(cmock_line, CMockStringCalledEarly);\n")
		b.WriteString("  if (cmock_call_instance->CallOrder < GlobalVerifyOrder)\n")
		b.WriteString("    UNITY_TEST_FAIL(cmock_line, CMockStringCalledLate);\n")
	}
	b.WriteString(g.registry.Run(HookMockImplementation, fn))
	b.WriteString("  UNITY_CLR_DETAILS();\n")
	if !fn.Return.IsVoid {
		b.WriteString("  return cmock_call_instance->ReturnVal;\n")
	}
	b.WriteString("}\n")

	for range fn.Namespace {
		b.WriteString("}\n")
	}
	b.WriteString("\n")
}
