package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/animpub/internal/registry"
)

// RegistryResult is the structured output of the registry command.
type RegistryResult struct {
	Dir        string               `json:"dir" yaml:"dir"`
	Entries    []registry.Entry     `json:"entries" yaml:"entries"`
	Collisions []registry.Collision `json:"collisions" yaml:"collisions"`
}

// NewRegistryCommand creates the registry command.
func NewRegistryCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "registry <dir>",
		Short: "List the composition ids registered by published scripts",
		Long: `Scan the published scripts in a directory and print the file name each
one registers with its composition id.

Two scripts sharing a composition id are reported as a collision and exit
with status 1: the runtime can only keep one of them.

Examples:
  animpub registry ./assets/animations`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRegistry(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runRegistry(opts *RootOptions, arg string, cmd *cobra.Command) error {
	out := opts.formatter(cmd)

	dir, err := filepath.Abs(arg)
	if err != nil {
		return opts.fail(cmd, "IO_FAILURE", "failed to resolve path", err)
	}

	table, err := registry.LoadDir(hostFS(), dir)
	if err != nil {
		return opts.fail(cmd, "IO_FAILURE", "failed to load registry", err)
	}
	opts.logger().Debug("registry loaded", "dir", dir, "entries", table.Len())

	res := RegistryResult{Dir: arg, Entries: table.Entries(), Collisions: table.Collisions()}
	if out.Structured() {
		if err := out.Success(res); err != nil {
			return err
		}
	} else {
		for _, e := range res.Entries {
			fmt.Fprintf(out.Writer, "%-24s %s\n", e.Name, e.ID)
		}
		for _, c := range res.Collisions {
			red.Fprintf(out.Writer, "collision: %s shared by %v\n", c.ID, c.Names)
		}
	}

	if len(res.Collisions) > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d composition id collision(s)", len(res.Collisions)))
	}
	return nil
}
