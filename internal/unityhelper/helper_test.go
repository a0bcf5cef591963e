package unityhelper

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for Helper:
// - Standard types resolve to their direct assertion, const ignored
// - Pointers to known base types dereference, values with a known pointer form take the address
// - Synthesized function pointer types compare as pointers
// - Unknown types fall back to memory comparison (array variant with the array plugin)
// - Unknown types fail with *UnsupportedComparisonError when memory comparison is off
// - Helper header macros are discovered with the right arity and comments are ignored
// - Malformed treat_as entries are rejected

const pointHelper = `#ifndef POINT_HELPER_H
#define POINT_HELPER_H
// #define UNITY_TEST_ASSERT_EQUAL_FAKE(a, b, c, d) nope
#define UNITY_TEST_ASSERT_EQUAL_POINT(e, a, line, msg) AssertPoint(e, a, line, msg)
#define UNITY_TEST_ASSERT_EQUAL_POINT_ARRAY(e, a, n, line, msg) AssertPoints(e, a, n, line, msg)
#define UNITY_TEST_ASSERT_EQUAL_BAD(e, a) x
#define OTHER_MACRO(a, b, c, d) y
#endif
`

func TestLookup(t *testing.T) {
	t.Parallel()

	h, err := New(Options{
		TreatAs:         map[string]string{"BUF_T": "HEX8*"},
		MemcmpIfUnknown: true,
	}, []byte(`#define UNITY_TEST_ASSERT_EQUAL_VEC_ARRAY(e, a, n, line, msg) AssertVecs(e, a, n, line, msg)`))
	require.NoError(t, err)

	tests := []struct {
		ctype string
		want  Assertion
	}{
		{"int", Assertion{Macro: "UNITY_TEST_ASSERT_EQUAL_INT"}},
		{"const int", Assertion{Macro: "UNITY_TEST_ASSERT_EQUAL_INT"}},
		{"unsigned int", Assertion{Macro: "UNITY_TEST_ASSERT_EQUAL_HEX32"}},
		{"int*", Assertion{Macro: "UNITY_TEST_ASSERT_EQUAL_INT_ARRAY"}},
		{"const char*", Assertion{Macro: "UNITY_TEST_ASSERT_EQUAL_STRING"}},
		{"int**", Assertion{Macro: "UNITY_TEST_ASSERT_EQUAL_INT", Prefix: "*"}},
		{"BUF_T", Assertion{Macro: "UNITY_TEST_ASSERT_EQUAL_HEX8_ARRAY"}},
		{"VEC", Assertion{Macro: "UNITY_TEST_ASSERT_EQUAL_VEC_ARRAY", Prefix: "&"}},
		{"cmock_mod_func_ptr1", Assertion{Macro: "UNITY_TEST_ASSERT_EQUAL_PTR"}},
		{"struct foo", Assertion{Macro: "UNITY_TEST_ASSERT_EQUAL_MEMORY", Prefix: "&"}},
		{"struct foo*", Assertion{Macro: "UNITY_TEST_ASSERT_EQUAL_MEMORY"}},
	}

	for _, tt := range tests {
		t.Run(tt.ctype, func(t *testing.T) {
			got, err := h.Lookup(tt.ctype)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLookup_Fallbacks(t *testing.T) {
	t.Parallel()

	t.Run("array plugin", func(t *testing.T) {
		h, err := New(Options{ArrayPlugin: true, MemcmpIfUnknown: true})
		require.NoError(t, err)
		got, err := h.Lookup("struct foo")
		require.NoError(t, err)
		assert.Equal(t, Assertion{Macro: "UNITY_TEST_ASSERT_EQUAL_MEMORY_ARRAY", Prefix: "&"}, got)
	})

	t.Run("memory comparison disabled", func(t *testing.T) {
		h, err := New(Options{})
		require.NoError(t, err)
		_, err = h.Lookup("struct foo")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrUnsupportedComparison))

		var uerr *UnsupportedComparisonError
		require.True(t, errors.As(err, &uerr))
		assert.Equal(t, "struct foo", uerr.Type)
	})
}

func TestNew_InvalidTreatAs(t *testing.T) {
	t.Parallel()

	_, err := New(Options{TreatAs: map[string]string{"MY_T": " "}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidTreatAs))
}

func TestScanMacros(t *testing.T) {
	t.Parallel()

	found, err := ScanMacros([]byte(pointHelper))
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"POINT":  "UNITY_TEST_ASSERT_EQUAL_POINT",
		"POINT*": "UNITY_TEST_ASSERT_EQUAL_POINT_ARRAY",
	}, found)
}

func TestLoadFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "helper.h")
	require.NoError(t, os.WriteFile(path, []byte(pointHelper), 0644))

	sources, err := LoadFiles([]string{path})
	require.NoError(t, err)
	require.Len(t, sources, 1)

	h, err := New(Options{}, sources...)
	require.NoError(t, err)
	got, err := h.Lookup("POINT")
	require.NoError(t, err)
	assert.Equal(t, Assertion{Macro: "UNITY_TEST_ASSERT_EQUAL_POINT"}, got)

	_, err = LoadFiles([]string{filepath.Join(dir, "missing.h")})
	assert.Error(t, err)
}
