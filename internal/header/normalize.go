package header

import (
	"strings"
)

// normalize runs the ordered rewrite pipeline over one module's source and
// returns candidate declaration statements. Synthesized typedefs are recorded
// on st. Stage order matters: later stages assume earlier ones removed the
// constructs that would otherwise look like prototypes.
func (p *Parser) normalize(st *state, source string, cpp bool) []string {
	source = repairEncoding(source)

	// Inline keywords go first so nothing else hides an inline function.
	if p.opts.IncludeInlines {
		for _, re := range p.inlinePatterns {
			source = re.ReplaceAllString(source, "")
		}
	}

	source = macroContinuationRe.ReplaceAllString(source, " ")
	source = stripComments(source)

	source = pragmaAsmRe.ReplaceAllString(source, "")
	source = gccAttributeRe.ReplaceAllString(source, "")
	source = externCRe.ReplaceAllString(source, "")
	source = preprocessorRe.ReplaceAllString(source, "")

	// Forward declarations first, otherwise they corrupt the match of a later
	// full definition.
	source = forwardStructRe.ReplaceAllString(source, "")
	source = braceBlockRe.ReplaceAllString(source, "")

	source = replaceUntilStable(problemWordsRe, source, "${1}${2}")
	if !cpp {
		source = replaceUntilStable(staticWordRe, source, "${1}${2}")
	}
	source = defaultValueRe.ReplaceAllString(source, "")
	source = typedefStmtRe.ReplaceAllString(source, "")
	source = parenWordRe.ReplaceAllString(source, ") ${1}")

	if p.strippables != nil {
		source = replaceUntilStable(p.strippables, source, "${1}${2}")
	}

	source = standaloneFuncPtrRe.ReplaceAllString(source, ";")
	source = replaceAllSubmatchFunc(returnsFuncPtrRe, source, func(g []string) string {
		alias := st.funcPtrAlias(strings.TrimSpace(g[1]), "", g[4])
		return alias + " " + strings.TrimSpace(g[2]) + "(" + g[3] + ");"
	})

	if !cpp {
		source = collapseBraces(source)
	}
	if p.opts.IncludeInlines {
		source = emptyBracesRe.ReplaceAllString(source, ";")
	}

	source = functionBodyRe.ReplaceAllString(source, ";")
	source = leadingSpaceRe.ReplaceAllString(source, "")
	source = trailingSpaceRe.ReplaceAllString(source, "")
	source = openParenRe.ReplaceAllString(source, "(")
	source = closeParenRe.ReplaceAllString(source, ")")
	source = whitespaceRe.ReplaceAllString(source, " ")

	return p.filterStatements(splitStatements(source, !cpp))
}

// collapseBraces replaces every balanced brace group with "{ }". An unmatched
// closing brace is kept as is; an unterminated group is left untouched.
func collapseBraces(source string) string {
	var b strings.Builder
	for {
		open := strings.IndexByte(source, '{')
		if open < 0 {
			break
		}
		end := matchingBrace(source, open)
		if end < 0 {
			break
		}
		b.WriteString(source[:open])
		b.WriteString("{ }")
		source = source[end+1:]
	}
	b.WriteString(source)
	return b.String()
}

// splitStatements splits on ';'. Duplicates are dropped when dedupe is set,
// keeping first-occurrence order.
func splitStatements(source string, dedupe bool) []string {
	parts := statementSepRe.Split(source, -1)
	seen := make(map[string]bool, len(parts))
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if strings.TrimSpace(part) == "" {
			continue
		}
		if dedupe {
			if seen[part] {
				continue
			}
			seen[part] = true
		}
		out = append(out, part)
	}
	return out
}

func (p *Parser) filterStatements(lines []string) []string {
	out := lines[:0]
	for _, line := range lines {
		if funcPtrArrayRe.MatchString(line) {
			continue
		}
		if !p.opts.IncludeExterns && externWordRe.MatchString(line) {
			continue
		}
		if !p.opts.IncludeInlines && inlineWordRe.MatchString(line) {
			continue
		}
		out = append(out, line)
	}
	return out
}

// repairEncoding replaces invalid UTF-8 so later patterns see valid text.
func repairEncoding(source string) string {
	return strings.ToValidUTF8(source, "�")
}

// stripComments removes comments in three passes: line comments that would
// otherwise open a block comment, block comments, then the remaining line
// comments.
func stripComments(source string) string {
	lines := strings.Split(source, "\n")
	for i, line := range lines {
		lines[i] = stripSwallowingComment(line)
	}
	source = strings.Join(lines, "\n")
	source = blockCommentRe.ReplaceAllString(source, "")
	return lineCommentRe.ReplaceAllString(source, "")
}

// stripSwallowingComment cuts a line at the first "//" not preceded by '*'
// that either contains a later "/*" or starts with "//*".
func stripSwallowingComment(line string) string {
	for i := 0; i+1 < len(line); i++ {
		if line[i] != '/' || line[i+1] != '/' {
			continue
		}
		if i > 0 && line[i-1] == '*' {
			continue
		}
		if swallowingCommentRe.MatchString(line[i:]) {
			return line[:i]
		}
	}
	return line
}

// collectVoidTypes returns the void set for one module: the configured
// aliases plus any "typedef void NAME;" found in the source.
func (p *Parser) collectVoidTypes(source string) map[string]bool {
	set := toSet(p.treatAsVoidBase)
	for _, m := range voidTypedefRe.FindAllStringSubmatch(source, -1) {
		set[m[1]] = true
	}
	return set
}
