package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String(KeyIDL, "", "")
	fs.String(KeyTargets, "", "")
	fs.String(KeyTemplateDir, "", "")
	fs.String(KeyOutputDir, ".", "")
	fs.String(KeyDepfile, "", "")
	fs.String(KeyGoPackage, "webnn", "")
	require.NoError(t, fs.Parse(args))
	return fs
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "webnngen.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, ".", cfg.OutputDir)
	assert.Equal(t, "webnn", cfg.GoPackage)
	assert.Empty(t, cfg.Targets)
	assert.Empty(t, cfg.File)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
idl = "webnn.json"
targets = ["webnn_headers", "mock_webnn"]
template-dir = "builtin"
output-dir = "gen"
`)
	cfg, err := Load(path, newFlags(t))
	require.NoError(t, err)
	assert.Equal(t, "webnn.json", cfg.IDL)
	assert.Equal(t, []string{"webnn_headers", "mock_webnn"}, cfg.Targets)
	assert.Equal(t, "builtin", cfg.TemplateDir)
	assert.Equal(t, "gen", cfg.OutputDir)
	assert.Equal(t, path, cfg.File)
}

func TestLoadDefaultFileInWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultFile), []byte(`targets = "webnn_proc, webnncpp"`), 0o644))
	chdir(t, dir)

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"webnn_proc", "webnncpp"}, cfg.Targets)
	assert.Equal(t, DefaultFile, cfg.File)
}

func TestLoadPrecedence(t *testing.T) {
	path := writeConfig(t, `
idl = "from-file.json"
template-dir = "file-templates"
output-dir = "file-out"
go-package = "filepkg"
`)
	t.Setenv("WEBNNGEN_TEMPLATE_DIR", "env-templates")
	t.Setenv("WEBNNGEN_OUTPUT_DIR", "env-out")

	cfg, err := Load(path, newFlags(t, "--output-dir", "flag-out"))
	require.NoError(t, err)
	assert.Equal(t, "from-file.json", cfg.IDL, "file beats defaults")
	assert.Equal(t, "env-templates", cfg.TemplateDir, "env beats file")
	assert.Equal(t, "flag-out", cfg.OutputDir, "set flag beats env")
	assert.Equal(t, "filepkg", cfg.GoPackage, "file beats an unset flag's default")
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config file")
}

func TestRequire(t *testing.T) {
	cfg := &Config{IDL: "webnn.json"}
	err := cfg.Require()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--targets, --template-dir")
	assert.NotContains(t, err.Error(), "--idl")
	assert.Contains(t, errors.FlattenHints(err), "WEBNNGEN_")

	cfg.Targets = []string{"webnn_headers"}
	cfg.TemplateDir = "builtin"
	assert.NoError(t, cfg.Require())
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
