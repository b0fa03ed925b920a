package cli

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/roach88/webnngen/internal/config"
	"github.com/roach88/webnngen/internal/idl"
	"github.com/roach88/webnngen/internal/render"
)

// BuiltinTemplateDir selects the templates compiled into the binary.
const BuiltinTemplateDir = "builtin"

// addGeneratorFlags registers the flags shared by generate, check and watch.
// Their names double as config keys.
func addGeneratorFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String(config.KeyIDL, "", "IDL document (.json, .yaml or .cue)")
	f.String(config.KeyTargets, "", "comma-separated targets to generate (see 'webnngen targets')")
	f.String(config.KeyTemplateDir, "", `template directory, or "builtin" for the embedded templates`)
	f.StringP(config.KeyOutputDir, "o", ".", "directory the generated paths are relative to")
	f.String(config.KeyDepfile, "", "write a make-style depfile to this path")
	f.String(config.KeyGoPackage, render.DefaultGoPackage, "package name of the go_bindings output")
}

// session is one planned generation: merged configuration, jobs and the
// engine that renders them.
type session struct {
	cfg       *config.Config
	jobs      []render.Job
	engine    *render.Engine
	templates string // template directory, empty for the builtin set
	log       *zap.Logger
}

// openSession validates every input before anything is rendered, so a bad
// flag, target or IDL never leaves partial output behind.
func openSession(cmd *cobra.Command, opts *RootOptions, f *OutputFormatter, log *zap.Logger) (*session, error) {
	cfg, err := config.Load(opts.ConfigPath, cmd.Flags())
	if err != nil {
		return nil, f.Fail(ExitCommandError, ErrCodeConfig, err)
	}
	if err := cfg.Require(); err != nil {
		return nil, f.Fail(ExitCommandError, ErrCodeConfig, err)
	}

	targets, err := render.ParseTargets(strings.Join(cfg.Targets, ","))
	if err != nil {
		return nil, f.Fail(ExitCommandError, ErrCodeTargets, err)
	}

	templates, templateDir, err := openTemplates(cfg.TemplateDir)
	if err != nil {
		return nil, f.Fail(ExitCommandError, ErrCodeNotFound, err)
	}

	reg, err := idl.LoadFile(cfg.IDL)
	if err != nil {
		return nil, f.Fail(ExitCommandError, ErrCodeIDL, err)
	}

	jobs := render.Plan(reg, targets, render.Options{GoPackage: cfg.GoPackage})
	log.Info("planned",
		zap.String("idl", cfg.IDL),
		zap.Strings("targets", cfg.Targets),
		zap.Int("jobs", len(jobs)),
	)
	if cfg.File != "" {
		log.Debug("config", zap.String("file", cfg.File))
	}

	return &session{
		cfg:       cfg,
		jobs:      jobs,
		engine:    render.NewEngine(templates, cfg.OutputDir, log),
		templates: templateDir,
		log:       log,
	}, nil
}

func openTemplates(dir string) (fs.FS, string, error) {
	if dir == BuiltinTemplateDir {
		return render.BuiltinTemplates(), "", nil
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, "", errors.Wrapf(err, "template directory %s", dir)
	}
	if !info.IsDir() {
		return nil, "", errors.Newf("template directory %s is not a directory", dir)
	}
	return os.DirFS(dir), dir, nil
}

// dependencies lists the IDL plus, for an on-disk template directory, every
// template file the jobs read.
func (s *session) dependencies() ([]string, error) {
	deps, err := render.Dependencies(s.cfg.IDL)
	if err != nil {
		return nil, err
	}
	if s.templates == "" {
		return deps, nil
	}
	for _, j := range s.jobs {
		if j.Target == render.TargetGoBindings {
			continue
		}
		abs, err := filepath.Abs(filepath.Join(s.templates, filepath.FromSlash(j.Template)+render.TemplateExt))
		if err != nil {
			return nil, errors.Wrapf(err, "resolving template %s", j.Template)
		}
		if !slices.Contains(deps, abs) {
			deps = append(deps, abs)
		}
	}
	return deps, nil
}

func (s *session) outputs() []string {
	return render.OutputPaths(s.jobs, s.cfg.OutputDir)
}

func (s *session) writeDepfile() error {
	deps, err := s.dependencies()
	if err != nil {
		return err
	}
	if dir := filepath.Dir(s.cfg.Depfile); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, "creating %s", dir)
		}
	}
	out, err := os.Create(s.cfg.Depfile)
	if err != nil {
		return errors.Wrapf(err, "creating depfile %s", s.cfg.Depfile)
	}
	if err := render.WriteDepfile(out, s.outputs(), deps); err != nil {
		out.Close()
		return errors.Wrapf(err, "writing depfile %s", s.cfg.Depfile)
	}
	return errors.Wrapf(out.Close(), "closing depfile %s", s.cfg.Depfile)
}

func printLines(w io.Writer, lines []string) {
	for _, l := range lines {
		io.WriteString(w, filepath.ToSlash(l)+"\n")
	}
}
