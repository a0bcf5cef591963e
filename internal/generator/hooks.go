package generator

import "github.com/mvp-joe/cmockgen/internal/header"

// Plugin contributes text to generated mocks. Besides Name and Priority a
// plugin implements any subset of the hook interfaces below; the registry
// only calls the hooks a plugin implements.
type Plugin interface {
	Name() string
	Priority() int
}

// Hook names a fixed injection point in the generated mock.
type Hook string

const (
	HookIncludeFiles               Hook = "include_files"
	HookInstanceTypedefs           Hook = "instance_typedefs"
	HookInstanceStructure          Hook = "instance_structure"
	HookMockFunctionDeclarations   Hook = "mock_function_declarations"
	HookMockImplementationPrecheck Hook = "mock_implementation_precheck"
	HookMockImplementation         Hook = "mock_implementation"
	HookMockInterfaces             Hook = "mock_interfaces"
	HookMockVerify                 Hook = "mock_verify"
	HookMockDestroy                Hook = "mock_destroy"
	HookMockIgnore                 Hook = "mock_ignore"
)

// IncludeFilesHook adds #include lines to the mock header.
type IncludeFilesHook interface {
	IncludeFiles() string
}

// InstanceTypedefsHook adds fields to the per-call instance record.
type InstanceTypedefsHook interface {
	InstanceTypedefs(fn *header.Function) string
}

// InstanceStructureHook adds fields to the module-wide Mock aggregate.
type InstanceStructureHook interface {
	InstanceStructure(fn *header.Function) string
}

// MockFunctionDeclarationsHook adds macros and prototypes to the mock header.
type MockFunctionDeclarationsHook interface {
	MockFunctionDeclarations(fn *header.Function) string
}

// MockImplementationPrecheckHook runs before the call instance is checked.
type MockImplementationPrecheckHook interface {
	MockImplementationPrecheck(fn *header.Function) string
}

// MockImplementationHook runs after the call instance is checked.
type MockImplementationHook interface {
	MockImplementation(fn *header.Function) string
}

// MockInterfacesHook emits the test-facing expectation functions.
type MockInterfacesHook interface {
	MockInterfaces(fn *header.Function) string
}

// MockVerifyHook contributes checks to <Mock>_Verify.
type MockVerifyHook interface {
	MockVerify(fn *header.Function) string
}

// MockDestroyHook contributes cleanup to <Mock>_Destroy.
type MockDestroyHook interface {
	MockDestroy(fn *header.Function) string
}

// MockIgnoreHook marks a function ignored when unexpected calls are allowed.
type MockIgnoreHook interface {
	MockIgnore(fn *header.Function) string
}

// call invokes hook on p if p implements it.
func call(p Plugin, hook Hook, fn *header.Function) (string, bool) {
	switch hook {
	case HookIncludeFiles:
		if h, ok := p.(IncludeFilesHook); ok {
			return h.IncludeFiles(), true
		}
	case HookInstanceTypedefs:
		if h, ok := p.(InstanceTypedefsHook); ok {
			return h.InstanceTypedefs(fn), true
		}
	case HookInstanceStructure:
		if h, ok := p.(InstanceStructureHook); ok {
			return h.InstanceStructure(fn), true
		}
	case HookMockFunctionDeclarations:
		if h, ok := p.(MockFunctionDeclarationsHook); ok {
			return h.MockFunctionDeclarations(fn), true
		}
	case HookMockImplementationPrecheck:
		if h, ok := p.(MockImplementationPrecheckHook); ok {
			return h.MockImplementationPrecheck(fn), true
		}
	case HookMockImplementation:
		if h, ok := p.(MockImplementationHook); ok {
			return h.MockImplementation(fn), true
		}
	case HookMockInterfaces:
		if h, ok := p.(MockInterfacesHook); ok {
			return h.MockInterfaces(fn), true
		}
	case HookMockVerify:
		if h, ok := p.(MockVerifyHook); ok {
			return h.MockVerify(fn), true
		}
	case HookMockDestroy:
		if h, ok := p.(MockDestroyHook); ok {
			return h.MockDestroy(fn), true
		}
	case HookMockIgnore:
		if h, ok := p.(MockIgnoreHook); ok {
			return h.MockIgnore(fn), true
		}
	}
	return "", false
}
