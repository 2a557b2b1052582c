package cli

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/go-git/go-billy/v5/util"
	"github.com/spf13/cobra"

	"github.com/roach88/animpub/internal/ir"
	"github.com/roach88/animpub/internal/palette"
)

// PaletteCheckResult is the structured output of palette check.
type PaletteCheckResult struct {
	Manifest string `json:"manifest" yaml:"manifest"`
	Palette  string `json:"palette" yaml:"palette"`
	Valid    bool   `json:"valid" yaml:"valid"`
}

// NewPaletteCommand creates the palette command group.
func NewPaletteCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "palette",
		Short: "Derive and check runtime palettes for a manifest",
	}
	cmd.AddCommand(newPaletteSchemaCommand(rootOpts))
	cmd.AddCommand(newPaletteCheckCommand(rootOpts))
	return cmd
}

func newPaletteSchemaCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "schema <manifest>",
		Short: "Print the CUE schema a palette must satisfy",
		Long: `Print the CUE definition of the window.assetPalettes array a published
script reads, derived from its manifest (JSON or YAML, as written by
inspect).

Examples:
  animpub palette schema hero.manifest.json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := loadManifest(args[0])
			if err != nil {
				return opts.fail(cmd, "INVALID_MANIFEST", "failed to load manifest", err)
			}
			schema := palette.Schema(m.Slots)

			out := opts.formatter(cmd)
			if out.Structured() {
				return out.Success(map[string]string{"definition": palette.Definition, "schema": schema})
			}
			fmt.Fprint(out.Writer, schema)
			return nil
		},
	}
}

func newPaletteCheckCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check <manifest> <palette>",
		Short: "Check a JSON or YAML palette against a manifest",
		Long: `Validate a palette document against the schema derived from a manifest.
Every problem found is reported.

Examples:
  animpub palette check hero.manifest.json palettes.yaml`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPaletteCheck(opts, args[0], args[1], cmd)
		},
	}
}

func runPaletteCheck(opts *RootOptions, manifestArg, paletteArg string, cmd *cobra.Command) error {
	out := opts.formatter(cmd)

	m, err := loadManifest(manifestArg)
	if err != nil {
		return opts.fail(cmd, "INVALID_MANIFEST", "failed to load manifest", err)
	}
	data, err := readHostFile(paletteArg)
	if err != nil {
		return opts.fail(cmd, "IO_FAILURE", "failed to read palette", err)
	}

	if err := palette.Validate(m.Slots, paletteArg, data); err != nil {
		var verr *palette.ValidationError
		if errors.As(err, &verr) {
			_ = out.Error("PALETTE_INVALID", fmt.Sprintf("%s does not match %s", paletteArg, manifestArg), verr.Problems)
			if !out.Structured() {
				for _, p := range verr.Problems {
					fmt.Fprintf(out.Writer, "  %s\n", p)
				}
			}
			return WrapExitError(ExitFailure, "palette invalid", err)
		}
		return opts.fail(cmd, "INVALID_PALETTE_DOCUMENT", "failed to read palette", err)
	}

	res := PaletteCheckResult{Manifest: manifestArg, Palette: paletteArg, Valid: true}
	if out.Structured() {
		return out.Success(res)
	}
	fmt.Fprintf(out.Writer, "%s: ok\n", paletteArg)
	return nil
}

func loadManifest(arg string) (*ir.Manifest, error) {
	data, err := readHostFile(arg)
	if err != nil {
		return nil, err
	}
	return ir.DecodeManifest(data)
}

func readHostFile(arg string) ([]byte, error) {
	path, err := filepath.Abs(arg)
	if err != nil {
		return nil, err
	}
	return util.ReadFile(hostFS(), path)
}
