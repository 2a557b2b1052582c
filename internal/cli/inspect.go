package cli

import (
	"encoding/json"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5/util"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/roach88/animpub/internal/ir"
	"github.com/roach88/animpub/internal/publish"
)

// InspectOptions holds flags for the inspect command.
type InspectOptions struct {
	*RootOptions
	Output string // manifest file to write; .yaml/.yml selects YAML
}

// NewInspectCommand creates the inspect command.
func NewInspectCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InspectOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "inspect <file.js>",
		Short: "Print the slots of an already published script",
		Long: `Mine the customization slots of a published script without modifying it.

With --output the manifest is also written to a file that palette schema
and palette check accept.

Examples:
  animpub inspect hero.js
  animpub inspect -o hero.manifest.yaml hero.js`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write the manifest to this file")

	return cmd
}

func runInspect(opts *InspectOptions, arg string, cmd *cobra.Command) error {
	out := opts.formatter(cmd)

	path, err := filepath.Abs(arg)
	if err != nil {
		return opts.fail(cmd, string(publish.KindIOFailure), "failed to resolve path", err)
	}

	res, err := opts.newPublisher(nil).Inspect(path)
	if err != nil {
		return opts.fail(cmd, string(publish.KindOf(err)), "inspect failed", err)
	}
	res.File = arg
	res.Manifest.File = arg

	if opts.Output != "" {
		if err := writeManifest(opts.Output, res.Manifest); err != nil {
			return opts.fail(cmd, string(publish.KindIOFailure), "failed to write manifest", err)
		}
		out.VerboseLog("manifest written to %s", opts.Output)
	}

	if out.Structured() {
		return out.Success(res.Manifest)
	}
	writeSlotTable(out, res)
	return nil
}

func writeManifest(arg string, m *ir.Manifest) error {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(arg)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(m)
	default:
		data, err = json.MarshalIndent(m, "", "  ")
		data = append(data, '\n')
	}
	if err != nil {
		return err
	}
	path, err := filepath.Abs(arg)
	if err != nil {
		return err
	}
	return util.WriteFile(hostFS(), path, data, 0o644)
}
