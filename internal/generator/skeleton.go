package generator

import (
	"fmt"
	"path"
	"strings"

	"github.com/mvp-joe/cmockgen/internal/header"
)

// Skeleton returns a stub implementation file for mod. Stubs are appended
// to existing; declarations already present in it verbatim are skipped, so
// regenerating an unchanged header leaves the file untouched.
func (g *Generator) Skeleton(moduleName string, mod *header.Module, existing string) (File, error) {
	var b strings.Builder
	if existing == "" {
		g.writeSourceHeader(&b, nil, moduleName+".h")
	} else {
		b.WriteString(existing)
		if !strings.HasSuffix(existing, "\n") {
			b.WriteString("\n")
		}
	}

	for i := range mod.Functions {
		writeFunctionSkeleton(&b, &mod.Functions[i], existing)
	}

	return File{
		Path:    g.SkeletonPath(moduleName),
		Content: b.String(),
	}, nil
}

// SkeletonPath is where Skeleton places the stub file for moduleName,
// relative to the skeleton root.
func (g *Generator) SkeletonPath(moduleName string) string {
	return path.Join(g.opts.Subdir, moduleName+".c")
}

func writeFunctionSkeleton(b *strings.Builder, fn *header.Function, existing string) {
	modAndRet, args := signatureParts(fn)
	decl := fmt.Sprintf("%s %s(%s)", modAndRet, fn.Name, args)
	if strings.Contains(existing, decl) {
		return
	}

	b.WriteString(decl + "\n")
	b.WriteString("{\n")
	b.WriteString("  /*TODO: Implement Me!*/\n")
	for _, arg := range fn.Args {
		fmt.Fprintf(b, "  (void)%s;\n", arg.Name)
	}
	if !fn.Return.IsVoid {
		fmt.Fprintf(b, "  return (%s)0;\n", fn.Return.Type)
	}
	b.WriteString("}\n\n")
}
