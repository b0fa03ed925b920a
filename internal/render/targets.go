package render

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
)

// Target is a requested group of generated outputs.
type Target string

const (
	TargetHeaders     Target = "webnn_headers"
	TargetCppHeaders  Target = "webnncpp_headers"
	TargetProc        Target = "webnn_proc"
	TargetCpp         Target = "webnncpp"
	TargetEmscripten  Target = "emscripten_bits"
	TargetMock        Target = "mock_webnn"
	TargetNativeUtils Target = "webnn_native_utils"
	TargetGoBindings  Target = "go_bindings"
)

// AllTargets is the fixed set of targets in emission order.
var AllTargets = []Target{
	TargetHeaders,
	TargetCppHeaders,
	TargetProc,
	TargetCpp,
	TargetEmscripten,
	TargetMock,
	TargetNativeUtils,
	TargetGoBindings,
}

// Output is one (template, output path) pair of a target.
type Output struct {
	Template string
	Path     string
}

var targetOutputs = map[Target][]Output{
	TargetHeaders: {
		{"webnn.h", "src/include/webnn/webnn.h"},
		{"webnn_proc_table.h", "src/include/webnn/webnn_proc_table.h"},
	},
	TargetCppHeaders: {
		{"webnn_cpp.h", "src/include/webnn/webnn_cpp.h"},
	},
	TargetProc: {
		{"webnn_proc.c", "src/webnn/webnn_proc.c"},
	},
	TargetCpp: {
		{"webnn_cpp.cpp", "src/webnn/webnn_cpp.cpp"},
	},
	TargetEmscripten: {
		{"webnn_struct_info.json", "src/webnn/webnn_struct_info.json"},
		{"library_webnn_enum_tables.js", "src/webnn/library_webnn_enum_tables.js"},
	},
	TargetMock: {
		{"mock_webnn.h", "src/webnn/mock_webnn.h"},
		{"mock_webnn.cpp", "src/webnn/mock_webnn.cpp"},
	},
	TargetNativeUtils: {
		{"webnn_native/ValidationUtils.h", "src/webnn_native/ValidationUtils_autogen.h"},
		{"webnn_native/ValidationUtils.cpp", "src/webnn_native/ValidationUtils_autogen.cpp"},
		{"webnn_native/webnn_structs.h", "src/webnn_native/webnn_structs_autogen.h"},
		{"webnn_native/webnn_structs.cpp", "src/webnn_native/webnn_structs_autogen.cpp"},
		{"webnn_native/ProcTable.cpp", "src/webnn_native/ProcTable.cpp"},
	},
	TargetGoBindings: {
		{BuiltinGoProcs, "src/go/webnn/procs_autogen.go"},
	},
}

// Valid reports whether t is one of AllTargets.
func (t Target) Valid() bool {
	_, ok := targetOutputs[t]
	return ok
}

// Outputs returns the target's (template, path) pairs; nil if t is unknown.
func (t Target) Outputs() []Output {
	outs := targetOutputs[t]
	if outs == nil {
		return nil
	}
	return append([]Output(nil), outs...)
}

// TargetNames returns AllTargets as strings.
func TargetNames() []string {
	names := make([]string, len(AllTargets))
	for i, t := range AllTargets {
		names[i] = string(t)
	}
	return names
}

// ParseTargets parses a comma-separated target list. Blank entries are
// ignored and duplicates collapse; an unknown or empty list is an error.
func ParseTargets(csv string) ([]Target, error) {
	var out []Target
	seen := map[Target]bool{}
	var unknown []string
	for _, field := range strings.Split(csv, ",") {
		t := Target(strings.TrimSpace(field))
		if t == "" || seen[t] {
			continue
		}
		if !t.Valid() {
			unknown = append(unknown, string(t))
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	if len(unknown) > 0 {
		err := errors.Newf("unsupported target(s): %s", strings.Join(unknown, ", "))
		return nil, errors.WithHint(err, fmt.Sprintf("available targets: %s", strings.Join(TargetNames(), ", ")))
	}
	if len(out) == 0 {
		return nil, errors.New("no targets requested")
	}
	return out, nil
}
