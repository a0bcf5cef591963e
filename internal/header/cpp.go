package header

import "strings"

type cppMatch struct {
	text      string
	namespace []string
	class     string
}

// scanCppFunctions walks normalized C++ statements and returns the public
// static member functions together with their enclosing namespaces and
// class. Anonymous namespaces and nested classes are not understood.
func scanCppFunctions(statements []string) []cppMatch {
	var (
		scopes  []string
		public  bool
		matches []cppMatch
	)

	for _, line := range statements {
		for _, token := range scopeTokenRe.FindAllString(line, -1) {
			if token == "}" {
				if len(scopes) > 0 {
					scopes = scopes[:len(scopes)-1]
				}
				continue
			}
			token = whitespaceRe.ReplaceAllString(strings.TrimSpace(token), " ")
			scopes = append(scopes, token)
			switch {
			case strings.HasPrefix(token, "class"):
				public = false
			case strings.HasPrefix(token, "namespace"):
				public = true
			}
		}

		if strings.Contains(line, "public:") {
			public = true
		}
		if strings.Contains(line, "private:") || strings.Contains(line, "protected:") {
			public = false
		}

		if !public || !staticTokenRe.MatchString(line) {
			continue
		}
		line = strings.TrimSpace(upToStaticRe.ReplaceAllString(line, ""))
		if !declSearchRe.MatchString(line) {
			continue
		}

		m := cppMatch{text: whitespaceRe.ReplaceAllString(line, " ")}
		var named []string
		for _, s := range scopes {
			if s != "{" {
				named = append(named, s)
			}
		}
		if n := len(named); n > 0 && strings.HasPrefix(named[n-1], "class ") {
			m.class = scopeName(named[n-1])
			named = named[:n-1]
		}
		for _, s := range named {
			m.namespace = append(m.namespace, scopeName(s))
		}
		matches = append(matches, m)
	}

	return matches
}

// scopeName extracts "Foo" from "namespace Foo {" or "class Foo {".
func scopeName(token string) string {
	m := scopeNameRe.FindStringSubmatch(token)
	if m == nil {
		return token
	}
	return strings.TrimSuffix(m[2], "{")
}
