package render

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/roach88/webnngen/internal/ir"
)

// DefaultGoPackage names the package of the go_bindings output.
const DefaultGoPackage = "webnn"

// Options tune planning. The zero value is usable.
type Options struct {
	GoPackage string
}

// Job is one render request: a template, the output path relative to the
// output directory, and the environment the template executes against.
type Job struct {
	Target   Target
	Template string
	Output   string
	Env      *Env
}

// Plan builds the render jobs for the requested targets. Jobs follow
// AllTargets order whatever the request order; unknown targets are skipped.
// Every job shares one BaseParams.
func Plan(reg *ir.Registry, targets []Target, opts Options) []Job {
	if opts.GoPackage == "" {
		opts.GoPackage = DefaultGoPackage
	}
	base := NewBaseParams(reg)

	var jobs []Job
	for _, t := range AllTargets {
		if !slices.Contains(targets, t) {
			continue
		}
		for _, out := range targetOutputs[t] {
			env := &Env{
				BaseParams: base,
				Template:   out.Template,
				Output:     out.Path,
				GoPackage:  opts.GoPackage,
			}
			switch t {
			case TargetMock:
				env.Mock = &MockParams{}
			case TargetNativeUtils:
				env.Frontend = &FrontendParams{Scheme: base.Primary}
			}
			jobs = append(jobs, Job{Target: t, Template: out.Template, Output: out.Path, Env: env})
		}
	}
	return jobs
}

// Summary is the canonical-JSON-ready description of a plan: every job and
// the shared method listing. Identical inputs give identical summaries.
func Summary(jobs []Job) map[string]any {
	list := make([]any, len(jobs))
	for i, j := range jobs {
		list[i] = map[string]any{
			"target":     string(j.Target),
			"template":   j.Template,
			"output":     j.Output,
			"extensions": j.Env.Extensions(),
		}
	}
	summary := map[string]any{"jobs": list}
	if len(jobs) == 0 {
		return summary
	}

	base := jobs[0].Env.BaseParams
	symbols := make([]any, len(base.SortedMethods))
	for i, e := range base.SortedMethods {
		symbols[i] = base.Primary.CMethod(e.Type.Name, e.Method.Name)
	}
	summary["methods"] = symbols
	summary["types"] = base.Registry.Keys()
	return summary
}

// Fingerprint is the domain-separated hash of the plan summary.
func Fingerprint(jobs []Job) (string, error) {
	return ir.Fingerprint(ir.DomainPlan, Summary(jobs))
}

// OutputPaths joins every job's output with dir, in job order.
func OutputPaths(jobs []Job, dir string) []string {
	paths := make([]string, len(jobs))
	for i, j := range jobs {
		paths[i] = filepath.Join(dir, filepath.FromSlash(j.Output))
	}
	return paths
}

// Dependencies returns the absolute paths generation depends on: the IDL.
func Dependencies(idlPath string) ([]string, error) {
	abs, err := filepath.Abs(idlPath)
	if err != nil {
		return nil, errors.Wrapf(err, "resolving %s", idlPath)
	}
	return []string{abs}, nil
}

// WriteDepfile writes a make-style rule "out1 out2: dep1 dep2".
func WriteDepfile(w io.Writer, outputs, deps []string) error {
	_, err := fmt.Fprintf(w, "%s: %s\n", joinEscaped(outputs), joinEscaped(deps))
	return err
}

func joinEscaped(paths []string) string {
	escaped := make([]string, len(paths))
	for i, p := range paths {
		escaped[i] = strings.ReplaceAll(filepath.ToSlash(p), " ", `\ `)
	}
	return strings.Join(escaped, " ")
}

// ReadExpectedOutputs reads one output path per line, ignoring blank lines.
func ReadExpectedOutputs(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening expected outputs %s", path)
	}
	defer f.Close()

	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			out = append(out, filepath.ToSlash(line))
		}
	}
	return out, errors.Wrapf(sc.Err(), "reading expected outputs %s", path)
}

// CheckExpectedOutputs compares the planned outputs with an expected list,
// ignoring order. The error names every missing and unexpected path.
func CheckExpectedOutputs(jobs []Job, expected []string) error {
	actual := make([]string, len(jobs))
	for i, j := range jobs {
		actual[i] = j.Output
	}
	slices.Sort(actual)
	want := slices.Clone(expected)
	slices.Sort(want)
	want = slices.Compact(want)

	var missing, extra []string
	for _, w := range want {
		if _, found := slices.BinarySearch(actual, w); !found {
			missing = append(missing, w)
		}
	}
	for _, a := range actual {
		if _, found := slices.BinarySearch(want, a); !found {
			extra = append(extra, a)
		}
	}
	if len(missing) == 0 && len(extra) == 0 {
		return nil
	}
	err := errors.Newf("expected outputs differ from planned outputs: missing %v, unexpected %v", missing, extra)
	return errors.WithHint(err, "update the expected outputs file to match the requested targets")
}
