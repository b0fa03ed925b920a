package cli

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/pmezard/go-difflib/difflib"
	"github.com/spf13/cobra"

	"github.com/roach88/webnngen/internal/render"
)

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Verify generated files are up to date",
		Long: `Render the requested targets in memory and compare them with the files on
disk. Exits 1 when any file is missing or differs; --verbose prints a diff.`,
		Example: `  webnngen check --idl webnn.json --targets webnn_headers --template-dir builtin`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, rootOpts)
		},
	}
	addGeneratorFlags(cmd)
	return cmd
}

// CheckResult is the result of an up-to-date check.
type CheckResult struct {
	Fingerprint string   `json:"fingerprint"`
	Checked     int      `json:"checked"`
	Stale       []string `json:"stale,omitempty"`
}

// String implements fmt.Stringer for text output.
func (r CheckResult) String() string {
	return fmt.Sprintf("✓ %d generated file(s) up to date (plan %s)", r.Checked, shortFingerprint(r.Fingerprint))
}

func runCheck(cmd *cobra.Command, opts *RootOptions) error {
	formatter := opts.formatter(cmd)
	log := opts.logger(cmd)
	defer log.Sync() //nolint:errcheck

	s, err := openSession(cmd, opts, formatter, log)
	if err != nil {
		return err
	}
	fp, err := render.Fingerprint(s.jobs)
	if err != nil {
		return formatter.Fail(ExitFailure, ErrCodeGeneric, err)
	}
	rendered, err := s.engine.Render(s.jobs)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeRender, err)
	}

	result := CheckResult{Fingerprint: fp, Checked: len(rendered)}
	for _, r := range rendered {
		existing, err := os.ReadFile(r.Path)
		if err != nil && !os.IsNotExist(err) {
			return formatter.Fail(ExitCommandError, ErrCodeNotFound, errors.Wrapf(err, "reading %s", r.Path))
		}
		if err == nil && bytes.Equal(existing, r.Content) {
			continue
		}
		result.Stale = append(result.Stale, r.Path)
		if opts.Verbose {
			fmt.Fprint(formatter.GetErrWriter(), staleDiff(r, existing))
		}
	}

	if len(result.Stale) > 0 {
		err := errors.Newf("%d generated file(s) out of date: %s", len(result.Stale), strings.Join(result.Stale, ", "))
		err = errors.WithHint(err, "run 'webnngen generate' with the same flags")
		_ = formatter.Error(ErrCodeStale, err, result)
		return WrapExitError(ExitFailure, ErrCodeStale, err)
	}
	return formatter.Success(result)
}

func staleDiff(r render.Rendered, existing []byte) string {
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(existing)),
		B:        difflib.SplitLines(string(r.Content)),
		FromFile: r.Path + " (on disk)",
		ToFile:   r.Path + " (generated)",
		Context:  3,
	})
	if err != nil {
		return fmt.Sprintf("diff %s: %v\n", r.Path, err)
	}
	return diff
}
