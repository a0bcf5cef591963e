package header

import "strings"

// FoldInlineFunctions rewrites a header so its inline functions become plain
// prototypes: the inline keyword is dropped and each body is replaced by ';'.
// Macros that define inline keywords are removed and inline declarations
// without a body keep their declaration. Anything else matching an inline
// pattern, such as a static variable, is left untouched.
func (p *Parser) FoldInlineFunctions(source string) string {
	source = repairEncoding(source)
	source = stripComments(source)
	source = foldContinuationRe.ReplaceAllString(source, " ")

	for _, folder := range p.inlineFolders {
		var inspected strings.Builder
		for {
			loc := folder.FindStringIndex(source)
			if loc == nil {
				break
			}
			pre, post := source[:loc[0]], source[loc[1]:]

			if defineTailRe.MatchString(pre) {
				inspected.WriteString(defineTailRe.ReplaceAllString(pre, ""))
				source = firstLineRe.ReplaceAllString(post, "")
				continue
			}

			semi := strings.IndexByte(post, ';')
			brace := strings.IndexByte(post, '{')

			if semi >= 0 && (brace < 0 || semi < brace) && declStartRe.MatchString(post[:semi]) {
				inspected.WriteString(pre)
				source = post
				continue
			}

			if brace >= 0 && declStartRe.MatchString(post[:brace]) {
				end := matchingBrace(post, brace)
				if end < 0 {
					break
				}
				inspected.WriteString(pre)
				source = strings.TrimRight(post[:brace], " \t\r\n") + ";" + post[end+1:]
				continue
			}

			inspected.WriteString(pre)
			inspected.WriteString(source[loc[0]:loc[1]])
			source = post
		}
		source = inspected.String() + source
	}

	return source
}

// matchingBrace returns the index of the brace closing the one at open, or -1
// when the braces are unbalanced.
func matchingBrace(s string, open int) int {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
