package render

import (
	"bufio"
	"bytes"
	"embed"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/roach88/webnngen/internal/ir"
)

//go:embed templates
var builtinTemplates embed.FS

// BuiltinTemplates returns the templates shipped with the binary.
func BuiltinTemplates() fs.FS {
	sub, err := fs.Sub(builtinTemplates, "templates")
	if err != nil {
		panic(err)
	}
	return sub
}

// TemplateExt is appended to a template id to find its file.
const TemplateExt = ".tmpl"

// Emitter renders a job in Go instead of through a template file.
type Emitter func(env *Env) ([]byte, error)

// Rendered is one job's output, held in memory until written.
type Rendered struct {
	Job     Job
	Path    string // output path joined with the engine's output directory
	Content []byte
}

// WriteResult reports which files changed on disk.
type WriteResult struct {
	Written   []string
	Unchanged []string
}

// Engine renders jobs and writes their outputs. It is the only writer of
// generated files.
type Engine struct {
	templates fs.FS
	outputDir string
	logger    *zap.Logger
	emitters  map[string]Emitter
	cache     map[string]*template.Template
}

// NewEngine creates an engine reading templates from templates and writing
// under outputDir.
func NewEngine(templates fs.FS, outputDir string, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		templates: templates,
		outputDir: outputDir,
		logger:    logger,
		emitters: map[string]Emitter{
			BuiltinGoProcs: EmitGoProcs,
		},
		cache: make(map[string]*template.Template),
	}
}

// Execute renders every job, then writes them. Nothing is written unless
// every job rendered.
func (e *Engine) Execute(jobs []Job) (*WriteResult, error) {
	rendered, err := e.Render(jobs)
	if err != nil {
		return nil, err
	}
	return e.Write(rendered)
}

// Render renders every job in memory, in job order.
func (e *Engine) Render(jobs []Job) ([]Rendered, error) {
	out := make([]Rendered, 0, len(jobs))
	for _, job := range jobs {
		content, err := e.renderJob(job)
		if err != nil {
			return nil, errors.Wrapf(err, "rendering %s -> %s", job.Template, job.Output)
		}
		e.logger.Debug("rendered",
			zap.String("template", job.Template),
			zap.String("output", job.Output),
			zap.Int("bytes", len(content)),
		)
		out = append(out, Rendered{
			Job:     job,
			Path:    filepath.Join(e.outputDir, filepath.FromSlash(job.Output)),
			Content: content,
		})
	}
	return out, nil
}

func (e *Engine) renderJob(job Job) ([]byte, error) {
	if emit, ok := e.emitters[job.Template]; ok {
		return emit(job.Env)
	}

	tmpl, err := e.lookup(job.Template)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, job.Env); err != nil {
		// Template execution recovers panics from called methods. A contract
		// violation must still abort the run.
		if cv, ok := ir.AsContractViolation(err); ok {
			panic(cv)
		}
		return nil, err
	}
	return buf.Bytes(), nil
}

func (e *Engine) lookup(id string) (*template.Template, error) {
	if t, ok := e.cache[id]; ok {
		return t, nil
	}
	src, err := fs.ReadFile(e.templates, id+TemplateExt)
	if err != nil {
		return nil, errors.Wrapf(err, "loading template %s", id)
	}
	t, err := template.New(id).Option("missingkey=error").Parse(StripTemplateComments(string(src)))
	if err != nil {
		return nil, errors.Wrapf(err, "parsing template %s", id)
	}
	e.cache[id] = t
	return t, nil
}

// StripTemplateComments drops every line whose first non-blank characters
// are "//*". Such lines document the template, not the generated file.
func StripTemplateComments(src string) string {
	var b strings.Builder
	sc := bufio.NewScanner(strings.NewReader(src))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Text()
		if strings.HasPrefix(strings.TrimLeft(line, " \t"), "//*") {
			continue
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}

// Write stores each rendered output, skipping files whose content is
// already identical so incremental builds see no change.
func (e *Engine) Write(rendered []Rendered) (*WriteResult, error) {
	res := &WriteResult{}
	for _, r := range rendered {
		existing, err := os.ReadFile(r.Path)
		if err == nil && bytes.Equal(existing, r.Content) {
			e.logger.Info("unchanged", zap.String("path", r.Path))
			res.Unchanged = append(res.Unchanged, r.Path)
			continue
		}
		if err := writeAtomic(r.Path, r.Content); err != nil {
			return res, err
		}
		e.logger.Info("wrote", zap.String("path", r.Path), zap.Int("bytes", len(r.Content)))
		res.Written = append(res.Written, r.Path)
	}
	return res, nil
}

// writeAtomic writes through a temp file in the target directory and
// renames it into place.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "creating %s", dir)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return errors.Wrapf(err, "creating temp file for %s", path)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrapf(err, "writing %s", path)
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrapf(err, "closing %s", path)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return errors.Wrapf(err, "chmod %s", path)
	}
	return errors.Wrapf(os.Rename(tmp.Name(), path), "renaming into %s", path)
}
