package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/webnngen/internal/render"
)

// TargetInfo describes one generation target.
type TargetInfo struct {
	Name    string   `json:"name"`
	Outputs []string `json:"outputs"`
}

// TargetList is the result of the targets command.
type TargetList []TargetInfo

// String implements fmt.Stringer for text output.
func (l TargetList) String() string {
	var b strings.Builder
	for i, t := range l {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(t.Name)
		for _, out := range t.Outputs {
			fmt.Fprintf(&b, "\n  %s", out)
		}
	}
	return b.String()
}

// NewTargetsCommand creates the targets command.
func NewTargetsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "targets",
		Short: "List the supported targets and the files each one writes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var list TargetList
			for _, t := range render.AllTargets {
				info := TargetInfo{Name: string(t)}
				for _, out := range t.Outputs() {
					info.Outputs = append(info.Outputs, out.Path)
				}
				list = append(list, info)
			}
			return rootOpts.formatter(cmd).Success(list)
		},
	}
}
