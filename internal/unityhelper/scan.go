package unityhelper

import (
	"fmt"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	c "github.com/tree-sitter/tree-sitter-c/bindings/go"
)

const assertPrefix = "UNITY_TEST_ASSERT_EQUAL_"

// ScanMacros finds custom comparison helpers in a Unity helper header.
// A function-like macro UNITY_TEST_ASSERT_EQUAL_<T> taking four parameters
// maps type T, and UNITY_TEST_ASSERT_EQUAL_<T>_ARRAY taking five maps T*.
func ScanMacros(source []byte) (map[string]string, error) {
	parser := sitter.NewParser()
	defer parser.Close()

	if err := parser.SetLanguage(sitter.NewLanguage(c.Language())); err != nil {
		return nil, fmt.Errorf("failed to load C grammar: %w", err)
	}

	tree := parser.Parse(source, nil)
	if tree == nil {
		return nil, fmt.Errorf("failed to parse unity helper source")
	}
	defer tree.Close()

	found := map[string]string{}
	walkTree(tree.RootNode(), func(n *sitter.Node) bool {
		if n.Kind() != "preproc_function_def" {
			return true
		}
		name := nodeText(n.ChildByFieldName("name"), source)
		if !strings.HasPrefix(name, assertPrefix) {
			return false
		}
		params := countParams(n.ChildByFieldName("parameters"))
		ctype := strings.TrimPrefix(name, assertPrefix)

		switch {
		case strings.HasSuffix(ctype, "_ARRAY") && params == 5:
			found[strings.TrimSuffix(ctype, "_ARRAY")+"*"] = name
		case !strings.Contains(name, "_ARRAY") && params == 4:
			found[ctype] = name
		}
		return false
	})

	return found, nil
}

func countParams(params *sitter.Node) int {
	if params == nil {
		return 0
	}
	count := 0
	for i := 0; i < int(params.ChildCount()); i++ {
		if params.Child(uint(i)).Kind() == "identifier" {
			count++
		}
	}
	return count
}

func nodeText(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	return string(source[node.StartByte():node.EndByte()])
}

// walkTree visits nodes depth first; returning false skips the children.
func walkTree(node *sitter.Node, visitor func(*sitter.Node) bool) {
	if node == nil {
		return
	}
	if !visitor(node) {
		return
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		walkTree(node.Child(uint(i)), visitor)
	}
}
