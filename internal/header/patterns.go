package header

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/maypok86/otter"
)

// Fixed patterns used by the rewrite pipeline. User supplied pattern sets are
// compiled through compilePattern instead.
var (
	declBase = `([\w\s\*\(\),\[\]]*?\w[\w\s\*\(\),\[\]]*?)\(([\w\s\*\(\),\.\[\]+\-\/]*)\)`

	declSearchRe = regexp.MustCompile(`(?m)` + declBase + `$`)
	declMatchRe  = regexp.MustCompile(`^` + declBase + `$`)
	declStartRe  = regexp.MustCompile(`^\s*` + declBase + `\s*$`)

	voidTypedefRe = regexp.MustCompile(`typedef\s+(?:\(\s*)?void(?:\s*\))?\s+(\w+)\s*;`)

	macroContinuationRe = regexp.MustCompile(`(?s)\s*\\\s*`)
	foldContinuationRe  = regexp.MustCompile(`\s*\\(\n|\s*)`)
	blockCommentRe      = regexp.MustCompile(`(?s)/\*.*?\*/`)
	lineCommentRe       = regexp.MustCompile(`(?m)//.*$`)
	swallowingCommentRe = regexp.MustCompile(`^//(?:.+/\*|\*(?:$|[^/]))`)

	pragmaAsmRe     = regexp.MustCompile(`(?ms)^\s*#\s*pragma\s+asm\s+.*?#\s*pragma\s+endasm`)
	gccAttributeRe  = regexp.MustCompile(`__attribute(?:__)?\s*\(\(+.*\)\)+`)
	externCRe       = regexp.MustCompile(`extern\s+"C"\s*\{`)
	preprocessorRe  = regexp.MustCompile(`(?m)^\s*#.*`)
	forwardStructRe = regexp.MustCompile(`(?m)^[\w\s]*struct[^;{}()]+;`)
	braceBlockRe    = regexp.MustCompile(`(?m)^[\w\s]*(?:enum|union|struct|typedef)[\w\s]*\{[^}]+\}[\w\s*,]*;`)
	problemWordsRe  = regexp.MustCompile(`(^|\W)(?:register|auto|restrict)(\W|$)`)
	staticWordRe    = regexp.MustCompile(`(^|\W)static(\W|$)`)
	defaultValueRe  = regexp.MustCompile(`\s*=\s*["'a-zA-Z0-9_.]+\s*`)
	typedefStmtRe   = regexp.MustCompile(`(?m)^(?:[\w\s]*\W)?typedef\W[^;]*`)
	parenWordRe     = regexp.MustCompile(`\)(\w)`)

	standaloneFuncPtrRe = regexp.MustCompile(`\w+\s*\(\s*\*\s*\w+\s*\)\s*\([^)]*\)\s*;`)
	returnsFuncPtrRe    = regexp.MustCompile(`([\w\s*]+)\(*\(\s*\*([\w\s*]+)\s*\(([\w\s*,]*)\)\)\s*\(([\w\s*,]*)\)\)*`)
	emptyBracesRe       = regexp.MustCompile(`\{ \}`)
	functionBodyRe      = regexp.MustCompile(`(?s)\([^)]*\)\s*\{[^}]*\}`)

	leadingSpaceRe  = regexp.MustCompile(`(?m)^\s+`)
	trailingSpaceRe = regexp.MustCompile(`(?m)\s+$`)
	openParenRe     = regexp.MustCompile(`\s*\(\s*`)
	closeParenRe    = regexp.MustCompile(`\s*\)\s*`)
	whitespaceRe    = regexp.MustCompile(`\s+`)
	statementSepRe  = regexp.MustCompile(`\s*;\s*`)

	funcPtrArrayRe = regexp.MustCompile(`[\w\s*]+\(+\s*\*[*\s]*[\w\s]+(?:\[[\w\s]*\]\s*)+\)+\s*\((?:[\w\s*]*,?)*\s*\)`)
	externWordRe   = regexp.MustCompile(`(?:^|\s+)extern\s+`)
	inlineWordRe   = regexp.MustCompile(`(?:^|\s+)inline\s+`)
	defineTailRe   = regexp.MustCompile(`#define\s*$`)
	firstLineRe    = regexp.MustCompile(`^.*\n?`)

	// C++ scanning
	scopeTokenRe  = regexp.MustCompile(`(?:(?:\b(?:namespace|class)\s+\S+\s*)?\{)|\}`)
	scopeNameRe   = regexp.MustCompile(`^(namespace|class)\s+(\S+)`)
	upToStaticRe  = regexp.MustCompile(`^.*static`)
	staticTokenRe = regexp.MustCompile(`\bstatic\b`)

	// declaration parsing
	starAfterWordRe  = regexp.MustCompile(`(\w)\*`)
	starBeforeWordRe = regexp.MustCompile(`\*(\w)`)
	spaceStarRe      = regexp.MustCompile(`\s+\*`)
	stringPtrRe      = regexp.MustCompile(`(?:^|\s)(?:const\s+)?char(?:\s+const)?\s*\*$`)
	constPtrTargetRe = regexp.MustCompile(`(?:^|\s|\*)const(?:\s(?:\w|\s)*)?\*$`)
	constWordRe      = regexp.MustCompile(`(?:^|\s)const(?:\s|$)`)
	constAfterStarRe = regexp.MustCompile(`^\s*const(?:\s|$)`)
	voidOrVarargRe   = regexp.MustCompile(`^\s*(?:\.\.\.|void)\s*$`)
	argDefaultRe     = regexp.MustCompile(`=\s*[a-zA-Z0-9_.]+\s*`)
	varArgRe         = regexp.MustCompile(`[\w\s]*\.\.\.`)
	varArgTailRe     = regexp.MustCompile(`,[\w\s]*\.\.\.`)
	arrayBracketsRe  = regexp.MustCompile(`(\w+)(?:\s*\[[^\[\]]*\])+`)
	argFuncPtrRe     = regexp.MustCompile(`([\w\s*]+)\(+([\w\s]*)\*[*\s]*([\w\s]*)\s*\)+\s*\(((?:[\w\s*]*,?)*)\s*\)*`)
	argShorthandRe   = regexp.MustCompile(`([\w\s*]+)\s+(\w+)\s*\(((?:[\w\s*]*,?)*)\s*\)*`)
	argSplitRe       = regexp.MustCompile(`\s*,\s*`)
)

var patternCache = mustPatternCache()

func mustPatternCache() otter.Cache[string, *regexp.Regexp] {
	cache, err := otter.MustBuilder[string, *regexp.Regexp](512).Build()
	if err != nil {
		panic(fmt.Sprintf("header: building pattern cache: %v", err))
	}
	return cache
}

// compilePattern compiles a user supplied pattern. The cache is a plain
// process-wide memo keyed by expression text: Parsers built from the same
// options in one process share one compiled *regexp.Regexp per expression.
// Failed compilations are not cached.
func compilePattern(expr string) (*regexp.Regexp, error) {
	if re, ok := patternCache.Get(expr); ok {
		return re, nil
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", expr, err)
	}
	patternCache.Set(expr, re)
	return re, nil
}

// replaceAllSubmatchFunc is ReplaceAllStringFunc with access to submatches.
func replaceAllSubmatchFunc(re *regexp.Regexp, src string, repl func(groups []string) string) string {
	matches := re.FindAllStringSubmatchIndex(src, -1)
	if matches == nil {
		return src
	}

	var b strings.Builder
	last := 0
	for _, m := range matches {
		groups := make([]string, len(m)/2)
		for i := range groups {
			if m[2*i] >= 0 {
				groups[i] = src[m[2*i]:m[2*i+1]]
			}
		}
		b.WriteString(src[last:m[0]])
		b.WriteString(repl(groups))
		last = m[1]
	}
	b.WriteString(src[last:])
	return b.String()
}

// replaceUntilStable applies re repeatedly until the text stops changing.
func replaceUntilStable(re *regexp.Regexp, src, repl string) string {
	for {
		next := re.ReplaceAllString(src, repl)
		if next == src {
			return next
		}
		src = next
	}
}
