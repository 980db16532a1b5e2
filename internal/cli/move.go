package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/macropower/notemover/pkg/engine"
	"github.com/macropower/notemover/pkg/vault"
	"github.com/macropower/notemover/pkg/vault/paths"
)

func NewMoveCmd(rootArgs *RootArgs) *cobra.Command {
	return &cobra.Command{
		Use:   "move <note>...",
		Short: "Move notes according to the rules",
		Long: `Classify each note and move it to the destination of the first matching
rule. Notes are given as file paths or as vault-relative paths. This works
in both trigger modes.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, posArgs []string) error {
			return rootArgs.runMove(cmd, posArgs)
		},
	}
}

func (ra *RootArgs) runMove(cmd *cobra.Command, notes []string) error {
	s, err := ra.loadSettings()
	if err != nil {
		return err
	}

	v, err := ra.openVault(s)
	if err != nil {
		return err
	}
	defer closeVault(v)

	snap := s.Snapshot()
	w := cmd.OutOrStdout()

	var errs []error

	for _, note := range notes {
		p := resolveNote(v, note)

		out, err := engine.Ingest(cmd.Context(), v, snap, engine.Event{
			Reason: engine.ReasonCommand,
			Path:   p,
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", p, err))
			continue
		}

		printOutcome(w, p, out)
	}

	return errors.Join(errs...)
}

// resolveNote maps a file path inside the vault to its vault path. Anything
// else is taken as a vault path already.
func resolveNote(v *vault.Vault, note string) string {
	abs, err := filepath.Abs(note)
	if err == nil {
		_, statErr := os.Stat(abs)
		if statErr == nil {
			rel, relErr := v.Rel(abs)
			if relErr == nil {
				return rel
			}
		}
	}

	return paths.Normalize(note)
}

func printOutcome(w io.Writer, p string, out engine.Outcome) {
	if out.Matched {
		printLine(w, pathStyle.Render(p)+dimStyle.Render(" → ")+destStyle.Render(out.Destination))
		return
	}

	printLine(w, pathStyle.Render(p)+dimStyle.Render(" not moved ("+string(out.Skip)+")"))
}
