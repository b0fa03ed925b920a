package render

import (
	"os"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/roach88/webnngen/internal/ir"
)

func renderAll(t *testing.T, fixture string) map[string]string {
	t.Helper()
	jobs := Plan(loadFixture(t, fixture), AllTargets, Options{})
	rendered, err := NewEngine(BuiltinTemplates(), "out", zaptest.NewLogger(t)).Render(jobs)
	require.NoError(t, err)

	outputs := make(map[string]string, len(rendered))
	for _, r := range rendered {
		outputs[r.Job.Output] = string(r.Content)
	}
	return outputs
}

func TestExecuteWritesEveryOutput(t *testing.T) {
	dir := t.TempDir()
	jobs := Plan(loadFixture(t, "webnn.json"), AllTargets, Options{})
	engine := NewEngine(BuiltinTemplates(), dir, zaptest.NewLogger(t))

	res, err := engine.Execute(jobs)
	require.NoError(t, err)
	assert.Len(t, res.Written, len(jobs))
	assert.Empty(t, res.Unchanged)

	for _, path := range OutputPaths(jobs, dir) {
		info, err := os.Stat(path)
		require.NoError(t, err, path)
		assert.NotZero(t, info.Size(), path)
		assert.Equal(t, os.FileMode(0o644), info.Mode().Perm(), path)
	}

	// A second run with identical input leaves every file untouched.
	res, err = engine.Execute(jobs)
	require.NoError(t, err)
	assert.Empty(t, res.Written)
	assert.Len(t, res.Unchanged, len(jobs))
}

func TestExecuteRewritesChangedFile(t *testing.T) {
	dir := t.TempDir()
	jobs := Plan(loadFixture(t, "buffer.yaml"), []Target{TargetProc}, Options{})
	engine := NewEngine(BuiltinTemplates(), dir, nil)

	_, err := engine.Execute(jobs)
	require.NoError(t, err)

	path := OutputPaths(jobs, dir)[0]
	require.NoError(t, os.WriteFile(path, []byte("stale"), 0o644))

	res, err := engine.Execute(jobs)
	require.NoError(t, err)
	assert.Equal(t, []string{path}, res.Written)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "webnnBufferMap")
}

func TestExecuteWritesNothingWhenAJobFails(t *testing.T) {
	dir := t.TempDir()
	templates := fstest.MapFS{
		"webnn.h.tmpl": {Data: []byte("// {{len .Objects}} objects\n")},
	}
	jobs := Plan(loadFixture(t, "buffer.yaml"), []Target{TargetHeaders}, Options{})

	_, err := NewEngine(templates, dir, nil).Execute(jobs)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "webnn_proc_table.h")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRenderTemplateParseError(t *testing.T) {
	templates := fstest.MapFS{
		"webnn.h.tmpl":            {Data: []byte("{{range .Objects}}\n")},
		"webnn_proc_table.h.tmpl": {Data: []byte("ok\n")},
	}
	jobs := Plan(loadFixture(t, "buffer.yaml"), []Target{TargetHeaders}, Options{})
	_, err := NewEngine(templates, t.TempDir(), nil).Render(jobs)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing template webnn.h")
}

func TestRenderRepanicsContractViolation(t *testing.T) {
	templates := fstest.MapFS{
		"webnn_proc.c.tmpl": {Data: []byte(`{{$.Decorate "x" "int" 9}}`)},
	}
	jobs := Plan(loadFixture(t, "buffer.yaml"), []Target{TargetProc}, Options{})
	engine := NewEngine(templates, t.TempDir(), nil)

	var recovered any
	func() {
		defer func() { recovered = recover() }()
		_, _ = engine.Render(jobs)
	}()
	cv, ok := ir.AsContractViolation(recovered)
	require.True(t, ok, "panic value %T", recovered)
	assert.Equal(t, "Decorate", cv.Op)
}

func TestRenderUnknownExtensionFails(t *testing.T) {
	templates := fstest.MapFS{
		"webnn_proc.c.tmpl": {Data: []byte(`{{$.Mock.HasCallbackArguments}}`)},
	}
	jobs := Plan(loadFixture(t, "buffer.yaml"), []Target{TargetProc}, Options{})
	_, err := NewEngine(templates, t.TempDir(), nil).Render(jobs)
	assert.Error(t, err)
}

func TestStripTemplateComments(t *testing.T) {
	src := "//* dropped\nkept\n    //* indented, dropped\n// kept too\n"
	assert.Equal(t, "kept\n// kept too\n", StripTemplateComments(src))
}

func TestBuiltinTemplatesCoverEveryTarget(t *testing.T) {
	outputs := renderAll(t, "webnn.json")
	assert.Len(t, outputs, 15)
	for path, content := range outputs {
		assert.NotContains(t, content, "//*", path)
		assert.NotContains(t, content, "<no value>", path)
	}
}

func TestRenderCHeader(t *testing.T) {
	h := renderAll(t, "webnn.json")["src/include/webnn/webnn.h"]

	for _, want := range []string{
		"typedef struct WebnnGraphBuilderImpl* WebnnGraphBuilder;",
		"    WebnnPowerPreference_HighPerformance = 0x00000001,",
		"    WebnnPowerPreference_Force32 = 0x7FFFFFFF",
		"typedef void (*WebnnErrorCallback)(WebnnErrorType type, char const * message, void * userdata);",
		"typedef bool (*WebnnProcContextPopErrorScope)(WebnnContext context, WebnnErrorCallback callback, void * userdata);",
		"WEBNN_EXPORT void webnnOperandRelease(WebnnOperand operand);",
		"    int32_t const * padding;",
		"#define DAWN_POWER_PREFERENCE_HIGH_PERFORMANCE WebnnPowerPreference_HighPerformance",
		"typedef WebnnProcContextPopErrorScope DawnProcContextPopErrorScope;",
		"#define dawnGraphBuilderConv2d webnnGraphBuilderConv2d",
	} {
		assert.Contains(t, h, want)
	}

	// Extensible structures lead with the chain pointer.
	assert.Contains(t, h, "typedef struct WebnnConv2dOptions {\n    void const * nextInChain;\n    uint32_t paddingCount;")
	assert.Contains(t, h, "typedef struct WebnnOperandDescriptor {\n    WebnnOperandType type;")
}

func TestRenderCppWrapper(t *testing.T) {
	outputs := renderAll(t, "webnn.json")
	h := outputs["src/include/webnn/webnn_cpp.h"]
	cpp := outputs["src/webnn/webnn_cpp.cpp"]

	assert.Contains(t, h, "        HighPerformance = 0x00000001,")
	assert.Contains(t, h, "    using ErrorCallback = WebnnErrorCallback;")
	assert.Contains(t, h, "    class GraphBuilder : public ObjectBase<GraphBuilder, WebnnGraphBuilder> {")
	assert.Contains(t, h, "        Operand Conv2d(Operand input, Operand filter, Conv2dOptions const * options) const;")
	assert.Contains(t, h, "        InputOperandLayout inputLayout = webnn::InputOperandLayout::Nchw;")
	assert.Contains(t, h, "        Operator activation = nullptr;")
	assert.Contains(t, h, "        int32_t groups = 1;")

	assert.Contains(t, cpp, "        auto result = webnnGraphBuilderConv2d(Get(), input.Get(), filter.Get(), reinterpret_cast<WebnnConv2dOptions const*>(options));\n        return Operand::Acquire(result);")
	assert.Contains(t, cpp, "        return static_cast<ComputeGraphStatus>(result);")
	assert.Contains(t, cpp, "        webnnContextPushErrorScope(Get(), static_cast<WebnnErrorFilter>(filter));")
	assert.Contains(t, cpp, `static_assert(static_cast<uint32_t>(PowerPreference::LowPower) == WebnnPowerPreference_LowPower, "value mismatch for PowerPreference::LowPower");`)
	assert.Contains(t, cpp, "            webnnGraphRelease(handle);")
}

func TestRenderDigitLeadingEnumValue(t *testing.T) {
	outputs := renderAll(t, "buffer.yaml")
	assert.Contains(t, outputs["src/include/webnn/webnn_cpp.h"], "        e0 = 0x00000000,")
	assert.Contains(t, outputs["src/include/webnn/webnn.h"], "    WebnnPowerPreference_0 = 0x00000000,")
	assert.Contains(t, outputs["src/webnn_native/ValidationUtils_autogen.cpp"], "            case webnn::PowerPreference::e0:")
}

func TestRenderBitmask(t *testing.T) {
	outputs := renderAll(t, "buffer.yaml")
	h := outputs["src/include/webnn/webnn.h"]
	assert.Contains(t, h, "typedef WebnnFlags WebnnMapModeFlags;")
	assert.Contains(t, h, "    WebnnMapModeFlags usage;")
	assert.Contains(t, h, "typedef WebnnMapModeFlags DawnMapModeFlags;")

	assert.Contains(t, outputs["src/include/webnn/webnn_cpp.h"], "    struct IsDawnBitmask<MapMode> {")
	assert.Contains(t, outputs["src/webnn_native/ValidationUtils_autogen.cpp"],
		"        if ((value & static_cast<webnn::MapMode>(~0x00000003)) == 0) {")
}

func TestRenderProcTableAndProcs(t *testing.T) {
	outputs := renderAll(t, "webnn.json")

	table := outputs["src/include/webnn/webnn_proc_table.h"]
	assert.Contains(t, table, "    WebnnProcContextPopErrorScope contextPopErrorScope;")
	assert.Contains(t, table, "    WebnnProcOperatorRelease operatorRelease;\n} WebnnProcTable;")

	procs := outputs["src/webnn/webnn_proc.c"]
	assert.Contains(t, procs, "bool webnnContextPopErrorScope(WebnnContext context, WebnnErrorCallback callback, void * userdata) {\n    return procs.contextPopErrorScope(context, callback, userdata);\n}")
	assert.Contains(t, procs, "void webnnGraphReference(WebnnGraph graph) {\n    procs.graphReference(graph);\n}")
}

func TestRenderNativeProcMapIsSorted(t *testing.T) {
	src := renderAll(t, "webnn.json")["src/webnn_native/ProcTable.cpp"]

	var names []string
	for _, line := range strings.Split(src, "\n") {
		if _, after, ok := strings.Cut(line, `>(Native`); ok {
			name, _, _ := strings.Cut(after, ")")
			names = append(names, name)
		}
	}
	require.Len(t, names, 29)
	assert.IsNonDecreasing(t, names)

	assert.Contains(t, src, "            auto self = reinterpret_cast<ContextBase*>(cSelf);")
	assert.Contains(t, src, "            auto filter_ = static_cast<webnn::ErrorFilter>(filter);")
	assert.Contains(t, src, "            auto options_ = reinterpret_cast<Conv2dOptions const * >(options);")
	assert.Contains(t, src, "            return reinterpret_cast<WebnnOperand>(result);")
	assert.Contains(t, src, `#include "webnn_native/GraphBuilder.h"`)
}

func TestRenderNativeStructs(t *testing.T) {
	outputs := renderAll(t, "webnn.json")
	h := outputs["src/webnn_native/webnn_structs_autogen.h"]
	assert.Contains(t, h, "        webnn::InputOperandLayout inputLayout = webnn::InputOperandLayout::Nchw;")
	assert.Contains(t, h, "        OperatorBase* activation = nullptr;")
	assert.Contains(t, h, "    struct ContextOptions {\n        ChainedStruct const * nextInChain = nullptr;")

	cpp := outputs["src/webnn_native/webnn_structs_autogen.cpp"]
	assert.Contains(t, cpp, `static_assert(offsetof(Input, dimensionsCount) == offsetof(WebnnInput, dimensionsCount),`)
}

func TestRenderMock(t *testing.T) {
	outputs := renderAll(t, "webnn.json")
	h := outputs["src/webnn/mock_webnn.h"]
	cpp := outputs["src/webnn/mock_webnn.cpp"]

	assert.Contains(t, h, "    WebnnGraph GetNewGraph();")
	assert.Contains(t, h, "    virtual bool OnContextPopErrorScopeCallback(WebnnContext context, WebnnErrorCallback callback, void * userdata) = 0;")
	assert.Contains(t, h, "    virtual void GraphRelease(WebnnGraph graph) = 0;")
	assert.Contains(t, h, "    MOCK_METHOD(bool, OnContextPopErrorScopeCallback, (WebnnContext context, WebnnErrorCallback callback, void * userdata), (override));")
	assert.Contains(t, h, "        WebnnErrorCallback errorCallback = nullptr;")

	assert.Contains(t, cpp, "    object->errorCallback = callback;\n    object->userdata = userdata;")
	assert.Contains(t, cpp, "    table->graphBuilderConv2d = reinterpret_cast<WebnnProcGraphBuilderConv2d>(ForwardGraphBuilderConv2d);")
	assert.Contains(t, cpp, "    EXPECT_CALL(*this, OperandRelease(_)).Times(AnyNumber());")
}

func TestRenderEmscripten(t *testing.T) {
	outputs := renderAll(t, "webnn.json")

	tables := outputs["src/webnn/library_webnn_enum_tables.js"]
	assert.Contains(t, tables, "  $PowerPreference: [\n    undefined,\n    'high-performance',\n    'low-power',\n  ],")
	assert.Contains(t, tables, "    'out-of-memory',")

	info := outputs["src/webnn/webnn_struct_info.json"]
	assert.Contains(t, info, "            \"WebnnContextOptions\": [\n                \"nextInChain\",\n                \"powerPreference\"\n            ]")
	assert.Contains(t, info, `"WebnnArrayBufferView": [`)
}
