package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/animpub/internal/publish"
)

// PublishOptions holds flags for the publish command.
type PublishOptions struct {
	*RootOptions
	Force  bool
	Backup bool
}

// NewPublishCommand creates the publish command.
func NewPublishCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PublishOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "publish [-fc] <file.js>",
		Short: "Rewrite an exported script to read from the runtime palette",
		Long: `Rewrite an exported animation script in place so that marker colors and
slot layers are driven by window.assetPalettes, then print the
customization slots the published script exposes.

A published script is marked and refused on a second run unless --force
is given.

Examples:
  animpub publish hero.js
  animpub publish -c hero.js
  animpub publish --format json hero.js`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPublish(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVarP(&opts.Force, "force", "f", false, "publish even if the script is already published")
	cmd.Flags().BoolVarP(&opts.Backup, "copy", "c", false, "keep an untouched copy of the script next to it")

	return cmd
}

func runPublish(opts *PublishOptions, arg string, cmd *cobra.Command) error {
	out := opts.formatter(cmd)

	path, err := filepath.Abs(arg)
	if err != nil {
		return opts.fail(cmd, string(publish.KindIOFailure), "failed to resolve path", err)
	}

	st, err := opts.openLedger()
	if err != nil {
		return opts.fail(cmd, "DATABASE_ERROR", "failed to open ledger", err)
	}
	defer opts.closeLedger(st)

	var ledger publish.Ledger
	if st != nil {
		ledger = st
	}

	res, err := opts.newPublisher(ledger).Publish(cmd.Context(), path, publish.Options{
		Force:       opts.Force,
		Backup:      opts.Backup,
		Interactive: true,
	})
	if err != nil {
		code := string(publish.KindOf(err))
		if code == "" {
			code = string(publish.KindIOFailure)
		}
		exitErr := opts.fail(cmd, code, "publish failed", err)
		if !out.Structured() {
			fmt.Fprintf(out.Writer, "Usage: %s\n", cmd.UseLine())
		}
		return exitErr
	}

	res.File = arg
	res.Manifest.File = arg
	if out.Structured() {
		return out.Success(res)
	}

	out.Highlight("Published!")
	writeSlotTable(out, res)
	if res.BackupPath != "" {
		out.VerboseLog("backup: %s", res.BackupPath)
	}
	return nil
}

// writeSlotTable prints a result as text: file, id, manifest hash, slots.
func writeSlotTable(out *OutputFormatter, res *publish.Result) {
	w := out.Writer
	fmt.Fprintf(w, "file:        %s\n", res.File)
	if res.CompositionID != "" {
		fmt.Fprintf(w, "composition: %s\n", res.CompositionID)
	}
	if res.Manifest != nil {
		fmt.Fprintf(w, "manifest:    %s\n", res.Manifest.Hash)
	}
	fmt.Fprintf(w, "slots:       %d\n", len(res.Slots))
	for _, s := range res.Slots {
		fmt.Fprintf(w, "  %s\n", s)
	}
}
