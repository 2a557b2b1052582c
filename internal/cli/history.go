package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/animpub/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	ManifestHash string
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history [file.js]",
		Short: "List recorded publications",
		Long: `List the publications recorded in the ledger, oldest first.

The ledger is enabled by setting "database" in the config file or
ANIMPUB_DATABASE.

Examples:
  animpub history
  animpub history hero.js
  animpub history --manifest 3f2a...`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			file := ""
			if len(args) == 1 {
				file = args[0]
			}
			return runHistory(opts, file, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.ManifestHash, "manifest", "", "only publications with this manifest hash")

	return cmd
}

func runHistory(opts *HistoryOptions, file string, cmd *cobra.Command) error {
	out := opts.formatter(cmd)

	st, err := opts.openLedger()
	if err != nil {
		return opts.fail(cmd, "DATABASE_ERROR", "failed to open ledger", err)
	}
	if st == nil {
		return opts.fail(cmd, "LEDGER_DISABLED", "no database configured", nil)
	}
	defer opts.closeLedger(st)

	var pubs []store.Publication
	switch {
	case opts.ManifestHash != "":
		pubs, err = st.ListByManifestHash(cmd.Context(), opts.ManifestHash)
	case file != "":
		var path string
		if path, err = filepath.Abs(file); err == nil {
			pubs, err = st.ListPublications(cmd.Context(), path)
		}
	default:
		pubs, err = st.ListPublications(cmd.Context(), "")
	}
	if err != nil {
		return opts.fail(cmd, "DATABASE_ERROR", "failed to list publications", err)
	}

	if out.Structured() {
		return out.Success(pubs)
	}
	if len(pubs) == 0 {
		fmt.Fprintln(out.Writer, "no publications")
		return nil
	}
	for _, p := range pubs {
		fmt.Fprintf(out.Writer, "%4d  %s  %s  %d slots  %s\n", p.Seq, p.CompositionID, shortHash(p.ManifestHash), len(p.Slots), p.File)
	}
	return nil
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
