package cli

import (
	"fmt"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/roach88/webnngen/internal/idl"
	"github.com/roach88/webnngen/internal/ir"
	"github.com/roach88/webnngen/internal/methods"
)

// ValidationResult summarizes a valid IDL document.
type ValidationResult struct {
	Valid      bool           `json:"valid"`
	IDL        string         `json:"idl"`
	Types      int            `json:"types"`
	Categories map[string]int `json:"categories"`
	Methods    int            `json:"methods"`
}

// String implements fmt.Stringer for text output.
func (r ValidationResult) String() string {
	return fmt.Sprintf("✓ %s is valid: %d types (%d objects, %d structures, %d enums, %d bitmasks, %d callbacks), %d C entry points",
		r.IDL, r.Types,
		r.Categories[ir.CategoryObject.String()],
		r.Categories[ir.CategoryStructure.String()],
		r.Categories[ir.CategoryEnum.String()],
		r.Categories[ir.CategoryBitmask.String()],
		r.Categories[ir.CategoryCallback.String()],
		r.Methods)
}

// LoadErrorDetails locates an IDL problem for JSON output.
type LoadErrorDetails struct {
	Field  string `json:"field"`
	Line   int    `json:"line,omitempty"`
	Column int    `json:"column,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <idl>",
		Short: "Validate an IDL document without generating anything",
		Long: `Load an IDL document, resolve every type reference and report what it
declares. Faster than generate for editing feedback.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	reg, err := idl.LoadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return formatter.Fail(ExitCommandError, ErrCodeNotFound, err)
		}
		var le *idl.LoadError
		if errors.As(err, &le) {
			details := LoadErrorDetails{Field: le.Field}
			if le.Pos.IsValid() {
				details.Line, details.Column = le.Pos.Line(), le.Pos.Column()
			}
			_ = formatter.Error(ErrCodeIDL, err, details)
			return WrapExitError(ExitFailure, ErrCodeIDL, err)
		}
		return formatter.Fail(ExitCommandError, ErrCodeIDL, err)
	}

	result := ValidationResult{
		Valid:      true,
		IDL:        path,
		Types:      reg.Len(),
		Categories: map[string]int{},
		Methods:    len(methods.SortedByName(reg)),
	}
	for _, key := range reg.Keys() {
		typ, _ := reg.Lookup(key)
		result.Categories[typ.Category().String()]++
		formatter.VerboseLog("%s: %s", typ.Category(), key)
	}

	return formatter.Success(result)
}
