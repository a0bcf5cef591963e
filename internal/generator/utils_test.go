package generator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/cmockgen/internal/header"
	"github.com/mvp-joe/cmockgen/internal/unityhelper"
)

// Test Plan for Utils:
// - const is restored on the right side of pointer and value types
// - Known types and pointers are assigned directly, other values through memcpy
// - The base expectation reflects ordering, ignore, cexception and expect_any_args
// - Argument verification picks the no-array, normal-array or smart-array form
// - Double pointers and compare_ptr compare addresses
// - Memory comparisons of types without an assertion carry a note
// - A nil helper falls back to UNITY_TEST_ASSERT_EQUAL
// - The argument loader adds depth parameters with the array plugin

func newTestUtils(t *testing.T, mutate func(*Options)) *Utils {
	t.Helper()
	opts := defaultOptions()
	if mutate != nil {
		mutate(&opts)
	}
	helper, err := unityhelper.New(unityhelper.Options{
		TreatAs:         opts.TreatAs,
		ArrayPlugin:     opts.hasPlugin("array"),
		MemcmpIfUnknown: true,
	})
	require.NoError(t, err)
	return NewUtils(&opts, helper)
}

func TestArgTypeWithConst(t *testing.T) {
	t.Parallel()
	u := newTestUtils(t, nil)

	assert.Equal(t, "const int", u.ArgTypeWithConst(header.Argument{Type: "int", IsConst: true}))
	assert.Equal(t, "int", u.ArgTypeWithConst(header.Argument{Type: "int"}))
	assert.Equal(t, "int* const", u.ArgTypeWithConst(header.Argument{Type: "int*", IsConstPointer: true}))
	assert.Equal(t, "const int*", u.ArgTypeWithConst(header.Argument{Type: "const int*", IsConst: true}))
}

func TestCodeAssignArgumentQuickly(t *testing.T) {
	t.Parallel()
	u := newTestUtils(t, nil)

	assert.Equal(t, "  dst = x;\n", u.CodeAssignArgumentQuickly("dst", header.Argument{Name: "x", Type: "int"}))
	assert.Equal(t, "  dst = p;\n", u.CodeAssignArgumentQuickly("dst", header.Argument{Name: "p", Type: "POINT*", IsPointer: true}))
	assert.Equal(t,
		"  memcpy((void*)(&dst), (void*)(&p),\n         sizeof(POINT[sizeof(p) == sizeof(POINT) ? 1 : -1])); /* add POINT to :treat_as_array if this causes an error */\n",
		u.CodeAssignArgumentQuickly("dst", header.Argument{Name: "p", Type: "POINT"}))
}

func TestCodeAddBaseExpectation(t *testing.T) {
	t.Parallel()

	plain := newTestUtils(t, nil).CodeAddBaseExpectation("f", true)
	assert.Equal(t,
		"  CMOCK_MEM_INDEX_TYPE cmock_guts_index = CMock_Guts_MemNew(sizeof(CMOCK_f_CALL_INSTANCE));\n"+
			"  CMOCK_f_CALL_INSTANCE* cmock_call_instance = (CMOCK_f_CALL_INSTANCE*)CMock_Guts_GetAddressFor(cmock_guts_index);\n"+
			"  UNITY_TEST_ASSERT_NOT_NULL(cmock_call_instance, cmock_line, CMockStringOutOfMemory);\n"+
			"  memset(cmock_call_instance, 0, sizeof(*cmock_call_instance));\n"+
			"  Mock.f_CallInstance = CMock_Guts_MemChain(Mock.f_CallInstance, cmock_guts_index);\n"+
			"  cmock_call_instance->LineNumber = cmock_line;\n",
		plain)

	full := newTestUtils(t, func(o *Options) {
		o.EnforceStrictOrdering = true
		o.Plugins = []string{"ignore", "cexception", "expect_any_args"}
	})
	out := full.CodeAddBaseExpectation("f", true)
	assert.Contains(t, out, "  Mock.f_IgnoreBool = (char)0;\n")
	assert.Contains(t, out, "  cmock_call_instance->CallOrder = ++GlobalExpectCount;\n")
	assert.Contains(t, out, "  cmock_call_instance->ExceptionToThrow = CEXCEPTION_NONE;\n")
	assert.Contains(t, out, "  cmock_call_instance->ExpectAnyArgsBool = (char)0;\n")

	assert.NotContains(t, full.CodeAddBaseExpectation("f", false), "CallOrder")
}

func TestCodeVerifyAnArgExpectation(t *testing.T) {
	t.Parallel()

	fn := &header.Function{Name: "fill"}
	buf := header.Argument{Name: "buf", Type: "int*", IsPointer: true}

	tests := []struct {
		name   string
		mutate func(*Options)
		arg    header.Argument
		want   string
	}{
		{
			name: "value",
			arg:  header.Argument{Name: "n", Type: "int"},
			want: "  {\n" +
				"    UNITY_SET_DETAILS(CMockString_fill,CMockString_n);\n" +
				"    UNITY_TEST_ASSERT_EQUAL_INT(cmock_call_instance->Expected_n, n, cmock_line, CMockStringMismatch);\n" +
				"  }\n",
		},
		{
			name: "pointer without arrays",
			arg:  buf,
			want: "  {\n" +
				"    UNITY_SET_DETAILS(CMockString_fill,CMockString_buf);\n" +
				"    if (cmock_call_instance->Expected_buf == NULL)\n" +
				"      { UNITY_TEST_ASSERT_NULL(buf, cmock_line, CMockStringExpNULL); }\n" +
				"    else\n" +
				"      { UNITY_TEST_ASSERT_EQUAL_INT_ARRAY(cmock_call_instance->Expected_buf, buf, 1, cmock_line, CMockStringMismatch); }\n" +
				"  }\n",
		},
		{
			name:   "pointer with arrays",
			mutate: func(o *Options) { o.Plugins = []string{"array"} },
			arg:    buf,
			want: "  {\n" +
				"    UNITY_SET_DETAILS(CMockString_fill,CMockString_buf);\n" +
				"    if (cmock_call_instance->Expected_buf == NULL)\n" +
				"      { UNITY_TEST_ASSERT_NULL(buf, cmock_line, CMockStringExpNULL); }\n" +
				"    else\n" +
				"      { UNITY_TEST_ASSERT_EQUAL_INT_ARRAY(cmock_call_instance->Expected_buf, buf, cmock_call_instance->Expected_buf_Depth, cmock_line, CMockStringMismatch); }\n" +
				"  }\n",
		},
		{
			name: "pointer with smart arrays",
			mutate: func(o *Options) {
				o.Plugins = []string{"array"}
				o.WhenPtr = PtrSmart
			},
			arg: buf,
			want: "  {\n" +
				"    UNITY_SET_DETAILS(CMockString_fill,CMockString_buf);\n" +
				"    if (cmock_call_instance->Expected_buf == NULL)\n" +
				"      { UNITY_TEST_ASSERT_NULL(buf, cmock_line, CMockStringExpNULL); }\n" +
				"    else if (cmock_call_instance->Expected_buf_Depth == 0)\n" +
				"      { UNITY_TEST_ASSERT_EQUAL_PTR(cmock_call_instance->Expected_buf, buf, cmock_line, CMockStringMismatch); }\n" +
				"    else\n" +
				"      { UNITY_TEST_ASSERT_EQUAL_INT_ARRAY(cmock_call_instance->Expected_buf, buf, cmock_call_instance->Expected_buf_Depth, cmock_line, CMockStringMismatch); }\n" +
				"  }\n",
		},
		{
			name:   "compare_ptr",
			mutate: func(o *Options) { o.WhenPtr = PtrComparePtr },
			arg:    buf,
			want: "  {\n" +
				"    UNITY_SET_DETAILS(CMockString_fill,CMockString_buf);\n" +
				"    UNITY_TEST_ASSERT_EQUAL_PTR(cmock_call_instance->Expected_buf, buf, cmock_line, CMockStringMismatch);\n" +
				"  }\n",
		},
		{
			name:   "ignore_arg guard",
			mutate: func(o *Options) { o.Plugins = []string{"ignore_arg"} },
			arg:    header.Argument{Name: "n", Type: "int"},
			want: "  if (!cmock_call_instance->IgnoreArg_n)\n" +
				"  {\n" +
				"    UNITY_SET_DETAILS(CMockString_fill,CMockString_n);\n" +
				"    UNITY_TEST_ASSERT_EQUAL_INT(cmock_call_instance->Expected_n, n, cmock_line, CMockStringMismatch);\n" +
				"  }\n",
		},
		{
			name: "struct by value",
			arg:  header.Argument{Name: "p", Type: "POINT"},
			want: "  {\n" +
				"    UNITY_SET_DETAILS(CMockString_fill,CMockString_p);\n" +
				"    /* NOTE: no assertion for POINT; comparing by memory */\n" +
				"    UNITY_TEST_ASSERT_EQUAL_MEMORY((void*)(&cmock_call_instance->Expected_p), (void*)(&p), sizeof(POINT), cmock_line, CMockStringMismatch);\n" +
				"  }\n",
		},
		{
			name: "double pointer",
			arg:  header.Argument{Name: "pp", Type: "int**", IsPointer: true},
			want: "  {\n" +
				"    UNITY_SET_DETAILS(CMockString_fill,CMockString_pp);\n" +
				"    UNITY_TEST_ASSERT_EQUAL_PTR(cmock_call_instance->Expected_pp, pp, cmock_line, CMockStringMismatch);\n" +
				"  }\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := newTestUtils(t, tt.mutate)
			assert.Equal(t, tt.want, u.CodeVerifyAnArgExpectation(fn, tt.arg))
		})
	}
}

func TestCodeVerifyAnArgExpectation_MemoryNote(t *testing.T) {
	t.Parallel()
	fn := &header.Function{Name: "move"}

	tests := []struct {
		name     string
		mutate   func(*Options)
		arg      header.Argument
		wantNote string
	}{
		{name: "unknown struct", arg: header.Argument{Name: "p", Type: "struct point"}, wantNote: "struct point"},
		{name: "unknown struct pointer", arg: header.Argument{Name: "p", Type: "struct point*", IsPointer: true}, wantNote: "struct point*"},
		{
			name:     "unknown struct pointer with arrays",
			mutate:   func(o *Options) { o.Plugins = []string{"array"} },
			arg:      header.Argument{Name: "p", Type: "struct point*", IsPointer: true},
			wantNote: "struct point*",
		},
		{name: "int", arg: header.Argument{Name: "n", Type: "int"}},
		{name: "int pointer", arg: header.Argument{Name: "n", Type: "int*", IsPointer: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := newTestUtils(t, tt.mutate).CodeVerifyAnArgExpectation(fn, tt.arg)
			if tt.wantNote == "" {
				assert.NotContains(t, out, "NOTE:")
				return
			}
			assert.Contains(t, out, "    /* NOTE: no assertion for "+tt.wantNote+"; comparing by memory */\n")
			assert.Contains(t, out, "UNITY_TEST_ASSERT_EQUAL_MEMORY")
		})
	}
}

func TestCodeVerifyAnArgExpectation_NilHelper(t *testing.T) {
	t.Parallel()
	opts := defaultOptions()
	u := NewUtils(&opts, nil)

	out := u.CodeVerifyAnArgExpectation(&header.Function{Name: "f"}, header.Argument{Name: "x", Type: "int"})
	assert.Contains(t, out, "    UNITY_TEST_ASSERT_EQUAL(cmock_call_instance->Expected_x, x, cmock_line, CMockStringMismatch);\n")
	assert.NoError(t, u.CheckAssertions(&header.Function{Name: "f", Args: []header.Argument{{Name: "x", Type: "struct odd"}}}))
}

func TestCodeAddArgumentLoader(t *testing.T) {
	t.Parallel()

	fn := &header.Function{
		Name: "fill",
		Args: []header.Argument{
			{Name: "buf", Type: "int*", IsPointer: true, IsArrayData: true},
			{Name: "len", Type: "int", IsArraySize: true},
		},
		ArgsString: "int* buf, int len",
	}

	plain := newTestUtils(t, nil)
	assert.Equal(t,
		"void CMockExpectParameters_fill(CMOCK_fill_CALL_INSTANCE* cmock_call_instance, int* buf, int len);\n"+
			"void CMockExpectParameters_fill(CMOCK_fill_CALL_INSTANCE* cmock_call_instance, int* buf, int len)\n{\n"+
			"  cmock_call_instance->Expected_buf = buf;\n"+
			"  cmock_call_instance->Expected_len = len;\n"+
			"}\n\n",
		plain.CodeAddArgumentLoader(fn))
	assert.Equal(t, "  CMockExpectParameters_fill(cmock_call_instance, buf, len);\n", plain.CodeCallArgumentLoader(fn))

	arrays := newTestUtils(t, func(o *Options) { o.Plugins = []string{"array", "return_thru_ptr"} })
	assert.Equal(t,
		"void CMockExpectParameters_fill(CMOCK_fill_CALL_INSTANCE* cmock_call_instance, int* buf, int buf_Depth, int len);\n"+
			"void CMockExpectParameters_fill(CMOCK_fill_CALL_INSTANCE* cmock_call_instance, int* buf, int buf_Depth, int len)\n{\n"+
			"  cmock_call_instance->Expected_buf = buf;\n"+
			"  cmock_call_instance->Expected_buf_Depth = buf_Depth;\n"+
			"  cmock_call_instance->ReturnThruPtr_buf_Used = 0;\n"+
			"  cmock_call_instance->Expected_len = len;\n"+
			"}\n\n",
		arrays.CodeAddArgumentLoader(fn))
	assert.Equal(t, "  CMockExpectParameters_fill(cmock_call_instance, buf, len, len);\n", arrays.CodeCallArgumentLoader(fn))

	assert.Empty(t, plain.CodeAddArgumentLoader(&header.Function{Name: "v", ArgsString: "void"}))
	assert.Empty(t, plain.CodeCallArgumentLoader(&header.Function{Name: "v", ArgsString: "void"}))
}

func TestPtrOrStr(t *testing.T) {
	t.Parallel()
	u := newTestUtils(t, func(o *Options) {
		o.TreatAs = unityhelper.MergeTreatAs(map[string]string{"BUF_T": "HEX8*"})
	})

	assert.True(t, u.PtrOrStr("int*"))
	assert.True(t, u.PtrOrStr("BUF_T"))
	assert.False(t, u.PtrOrStr("int"))
}
