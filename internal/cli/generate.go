package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/roach88/webnngen/internal/render"
)

// GenerateOptions holds options for the generate command.
type GenerateOptions struct {
	*RootOptions
	PrintDependencies   bool
	PrintOutputs        bool
	ExpectedOutputsFile string
	DryRun              bool
}

// NewGenerateCommand creates the generate command.
func NewGenerateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GenerateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Render the requested targets from an IDL document",
		Long: `Render every output of the requested targets.

Files whose content would not change are left untouched so build systems
see no spurious rebuilds. Nothing is written unless every output renders.`,
		Example: `  webnngen generate --idl webnn.json --targets webnn_headers,webnncpp --template-dir builtin
  webnngen generate --idl webnn.json --targets mock_webnn --template-dir templates --print-outputs`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, opts)
		},
	}

	addGeneratorFlags(cmd)
	cmd.Flags().BoolVar(&opts.PrintDependencies, "print-dependencies", false, "print the files generation reads and exit")
	cmd.Flags().BoolVar(&opts.PrintOutputs, "print-outputs", false, "print the files generation writes and exit")
	cmd.Flags().StringVar(&opts.ExpectedOutputsFile, "expected-outputs-file", "", "fail unless the planned outputs match this list")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "render everything but write nothing")

	return cmd
}

// GenerateResult is the result of a generate run.
type GenerateResult struct {
	Fingerprint string   `json:"fingerprint"`
	Written     []string `json:"written"`
	Unchanged   []string `json:"unchanged"`
	Rendered    []string `json:"rendered,omitempty"`
	Depfile     string   `json:"depfile,omitempty"`
}

// String implements fmt.Stringer for text output.
func (r GenerateResult) String() string {
	if len(r.Rendered) > 0 {
		return fmt.Sprintf("✓ Rendered %d file(s), nothing written (plan %s)", len(r.Rendered), shortFingerprint(r.Fingerprint))
	}
	return fmt.Sprintf("✓ %d file(s) written, %d unchanged (plan %s)", len(r.Written), len(r.Unchanged), shortFingerprint(r.Fingerprint))
}

func shortFingerprint(fp string) string {
	if len(fp) > 12 {
		return fp[:12]
	}
	return fp
}

func runGenerate(cmd *cobra.Command, opts *GenerateOptions) error {
	formatter := opts.formatter(cmd)
	log := opts.logger(cmd)
	defer log.Sync() //nolint:errcheck

	s, err := openSession(cmd, opts.RootOptions, formatter, log)
	if err != nil {
		return err
	}

	if opts.ExpectedOutputsFile != "" {
		expected, err := render.ReadExpectedOutputs(opts.ExpectedOutputsFile)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeNotFound, err)
		}
		if err := render.CheckExpectedOutputs(s.jobs, expected); err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeOutputsMismatch, err)
		}
	}

	if opts.PrintDependencies || opts.PrintOutputs {
		if opts.PrintDependencies {
			deps, err := s.dependencies()
			if err != nil {
				return formatter.Fail(ExitFailure, ErrCodeGeneric, err)
			}
			printLines(cmd.OutOrStdout(), deps)
		}
		if opts.PrintOutputs {
			printLines(cmd.OutOrStdout(), s.outputs())
		}
		return nil
	}

	result, code, err := s.generate(opts.DryRun)
	if err != nil {
		return formatter.Fail(ExitCommandError, code, err)
	}
	return formatter.Success(result)
}

// generate renders the session's jobs and, unless dryRun, writes them and
// the depfile. On failure it returns the error code to report.
func (s *session) generate(dryRun bool) (*GenerateResult, string, error) {
	fp, err := render.Fingerprint(s.jobs)
	if err != nil {
		return nil, ErrCodeGeneric, err
	}
	result := &GenerateResult{Fingerprint: fp}

	rendered, err := s.engine.Render(s.jobs)
	if err != nil {
		return nil, ErrCodeRender, err
	}
	if dryRun {
		for _, r := range rendered {
			result.Rendered = append(result.Rendered, r.Path)
		}
		return result, "", nil
	}

	written, err := s.engine.Write(rendered)
	if err != nil {
		return nil, ErrCodeWriteFailed, err
	}
	result.Written = written.Written
	result.Unchanged = written.Unchanged

	if s.cfg.Depfile != "" {
		if err := s.writeDepfile(); err != nil {
			return nil, ErrCodeWriteFailed, err
		}
		result.Depfile = s.cfg.Depfile
	}

	s.log.Info("generated",
		zap.String("fingerprint", fp),
		zap.Int("written", len(result.Written)),
		zap.Int("unchanged", len(result.Unchanged)),
	)
	return result, "", nil
}
