package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func idlFixture(name string) string {
	return filepath.Join("..", "..", "testdata", "idl", name)
}

// generateArgs builds a generate invocation writing under out.
func generateArgs(out, targets string, extra ...string) []string {
	args := []string{
		"generate",
		"--idl", idlFixture("buffer.yaml"),
		"--targets", targets,
		"--template-dir", BuiltinTemplateDir,
		"--output-dir", out,
	}
	return append(args, extra...)
}

func listFiles(t *testing.T, dir string) []string {
	t.Helper()
	var files []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			rel, _ := filepath.Rel(dir, path)
			files = append(files, filepath.ToSlash(rel))
		}
		return nil
	})
	require.NoError(t, err)
	return files
}

func TestGenerateWritesOutputs(t *testing.T) {
	out := t.TempDir()

	stdout, _, err := execute(t, generateArgs(out, "webnn_headers,webnn_proc")...)
	require.NoError(t, err)
	assert.Contains(t, stdout, "3 file(s) written, 0 unchanged")

	assert.ElementsMatch(t, []string{
		"src/include/webnn/webnn.h",
		"src/include/webnn/webnn_proc_table.h",
		"src/webnn/webnn_proc.c",
	}, listFiles(t, out))

	proc, err := os.ReadFile(filepath.Join(out, "src", "webnn", "webnn_proc.c"))
	require.NoError(t, err)
	assert.Contains(t, string(proc), "webnnBufferMap")
}

func TestGenerateSecondRunIsUnchanged(t *testing.T) {
	out := t.TempDir()

	_, _, err := execute(t, generateArgs(out, "webnn_proc")...)
	require.NoError(t, err)
	path := filepath.Join(out, "src", "webnn", "webnn_proc.c")
	before, err := os.Stat(path)
	require.NoError(t, err)

	stdout, _, err := execute(t, generateArgs(out, "webnn_proc")...)
	require.NoError(t, err)
	assert.Contains(t, stdout, "0 file(s) written, 1 unchanged")

	after, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, before.ModTime(), after.ModTime())
}

func TestGenerateJSONOutput(t *testing.T) {
	out := t.TempDir()

	stdout, _, err := execute(t, append([]string{"--format", "json"}, generateArgs(out, "webnn_proc")...)...)
	require.NoError(t, err)

	var resp struct {
		Status string         `json:"status"`
		Data   GenerateResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Len(t, resp.Data.Fingerprint, 64)
	assert.Equal(t, []string{filepath.Join(out, "src", "webnn", "webnn_proc.c")}, resp.Data.Written)
}

func TestGenerateMissingFlags(t *testing.T) {
	chdir(t, t.TempDir())
	out := t.TempDir()

	_, stderr, err := execute(t, "generate", "--idl", "webnn.json", "--output-dir", out)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, stderr, "--targets")
	assert.Contains(t, stderr, "--template-dir")
	assert.Empty(t, listFiles(t, out))
}

func TestGenerateUnsupportedTarget(t *testing.T) {
	out := t.TempDir()

	_, stderr, err := execute(t, generateArgs(out, "webnn_headers,dawn_wire")...)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, stderr, "unsupported target(s): dawn_wire")
	assert.Contains(t, stderr, "Hint: available targets")
	assert.Empty(t, listFiles(t, out))
}

func TestGenerateMissingIDL(t *testing.T) {
	out := t.TempDir()

	_, stderr, err := execute(t, "generate",
		"--idl", filepath.Join(out, "missing.json"),
		"--targets", "webnn_proc",
		"--template-dir", BuiltinTemplateDir,
		"--output-dir", out,
	)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, stderr, "E004")
	assert.Empty(t, listFiles(t, out))
}

func TestGenerateMissingTemplateDir(t *testing.T) {
	out := t.TempDir()

	_, stderr, err := execute(t, "generate",
		"--idl", idlFixture("buffer.yaml"),
		"--targets", "webnn_proc",
		"--template-dir", filepath.Join(out, "templates"),
		"--output-dir", out,
	)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, stderr, "E005")
}

func TestGenerateCustomTemplateDir(t *testing.T) {
	templates := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(templates, "webnn_proc.c.tmpl"), []byte(
		"//* ignored\n{{range .SortedMethods}}{{$.CMethod .Type.Name .Method.Name}}\n{{end -}}"), 0o644))
	out := t.TempDir()

	_, _, err := execute(t, "generate",
		"--idl", idlFixture("buffer.yaml"),
		"--targets", "webnn_proc",
		"--template-dir", templates,
		"--output-dir", out,
	)
	require.NoError(t, err)

	got, err := os.ReadFile(filepath.Join(out, "src", "webnn", "webnn_proc.c"))
	require.NoError(t, err)
	assert.Equal(t, "webnnBufferMap\nwebnnBufferReference\nwebnnBufferRelease\n", string(got))
}

func TestGenerateTemplateMissingWritesNothing(t *testing.T) {
	templates := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(templates, "webnn.h.tmpl"), []byte("header\n"), 0o644))
	out := t.TempDir()

	_, stderr, err := execute(t, "generate",
		"--idl", idlFixture("buffer.yaml"),
		"--targets", "webnn_headers",
		"--template-dir", templates,
		"--output-dir", out,
	)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, stderr, "webnn_proc_table.h")
	assert.Empty(t, listFiles(t, out))
}

func TestGenerateDepfile(t *testing.T) {
	out := t.TempDir()
	depfile := filepath.Join(out, "deps", "webnn.d")

	_, _, err := execute(t, generateArgs(out, "webnn_proc", "--depfile", depfile)...)
	require.NoError(t, err)

	data, err := os.ReadFile(depfile)
	require.NoError(t, err)
	idl, err := filepath.Abs(idlFixture("buffer.yaml"))
	require.NoError(t, err)
	want := filepath.ToSlash(filepath.Join(out, "src", "webnn", "webnn_proc.c")) + ": " + filepath.ToSlash(idl) + "\n"
	assert.Equal(t, want, string(data))
}

func TestGeneratePrintOutputs(t *testing.T) {
	out := t.TempDir()

	stdout, _, err := execute(t, generateArgs(out, "mock_webnn,webnn_headers", "--print-outputs")...)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	assert.Equal(t, []string{
		filepath.ToSlash(filepath.Join(out, "src/include/webnn/webnn.h")),
		filepath.ToSlash(filepath.Join(out, "src/include/webnn/webnn_proc_table.h")),
		filepath.ToSlash(filepath.Join(out, "src/webnn/mock_webnn.h")),
		filepath.ToSlash(filepath.Join(out, "src/webnn/mock_webnn.cpp")),
	}, lines)
	assert.Empty(t, listFiles(t, out))
}

func TestGeneratePrintDependenciesIncludesTemplates(t *testing.T) {
	templates := t.TempDir()
	out := t.TempDir()

	stdout, _, err := execute(t, "generate",
		"--idl", idlFixture("buffer.yaml"),
		"--targets", "webnn_proc",
		"--template-dir", templates,
		"--output-dir", out,
		"--print-dependencies",
	)
	require.NoError(t, err)

	idl, err := filepath.Abs(idlFixture("buffer.yaml"))
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.ToSlash(idl),
		filepath.ToSlash(filepath.Join(templates, "webnn_proc.c.tmpl")),
	}, strings.Split(strings.TrimSpace(stdout), "\n"))
}

func TestGenerateExpectedOutputs(t *testing.T) {
	out := t.TempDir()
	expected := filepath.Join(t.TempDir(), "expected.txt")

	require.NoError(t, os.WriteFile(expected, []byte("src/webnn/webnn_proc.c\n\n"), 0o644))
	_, _, err := execute(t, generateArgs(out, "webnn_proc", "--expected-outputs-file", expected)...)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(expected, []byte("src/webnn/webnn_proc.c\nsrc/webnn/extra.c\n"), 0o644))
	other := t.TempDir()
	_, stderr, err := execute(t, generateArgs(other, "webnn_proc", "--expected-outputs-file", expected)...)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, stderr, "E009")
	assert.Contains(t, stderr, "src/webnn/extra.c")
	assert.Empty(t, listFiles(t, other))
}

func TestGenerateDryRun(t *testing.T) {
	out := t.TempDir()

	stdout, _, err := execute(t, generateArgs(out, "emscripten_bits", "--dry-run")...)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Rendered 2 file(s), nothing written")
	assert.Empty(t, listFiles(t, out))
}

func TestGenerateFromConfigFile(t *testing.T) {
	dir := t.TempDir()
	idl, err := filepath.Abs(idlFixture("buffer.yaml"))
	require.NoError(t, err)
	out := filepath.Join(dir, "gen")
	config := "idl = " + tomlQuote(idl) + "\n" +
		"targets = [\"go_bindings\"]\n" +
		"template-dir = \"builtin\"\n" +
		"output-dir = " + tomlQuote(out) + "\n" +
		"go-package = \"webnnbind\"\n"
	path := filepath.Join(dir, "webnngen.toml")
	require.NoError(t, os.WriteFile(path, []byte(config), 0o644))

	_, _, err = execute(t, "--config", path, "generate")
	require.NoError(t, err)

	got, err := os.ReadFile(filepath.Join(out, "src", "go", "webnn", "procs_autogen.go"))
	require.NoError(t, err)
	assert.Contains(t, string(got), "package webnnbind")
}

// tomlQuote quotes s as a TOML basic string.
func tomlQuote(s string) string {
	return `"` + strings.ReplaceAll(filepath.ToSlash(s), `"`, `\"`) + `"`
}

// chdir changes the working directory for the duration of the test
// (equivalent of testing.T.Chdir, which requires Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}
