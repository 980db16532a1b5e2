package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/muesli/reflow/truncate"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/macropower/notemover/api"
	"github.com/macropower/notemover/pkg/filelock"
	"github.com/macropower/notemover/pkg/scan"
	"github.com/macropower/notemover/pkg/vault/paths"
)

type ScanArgs struct {
	*RootArgs

	LockPath string
	DryRun   bool
}

func (sa *ScanArgs) AddFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVarP(&sa.DryRun, "dry-run", "n", false, "Report the moves without making them")
	cmd.Flags().StringVar(&sa.LockPath, "lock", api.GetStatePath("scan.lock"), "Lock file preventing concurrent scans")
}

func NewScanCmd(rootArgs *RootArgs) *cobra.Command {
	args := &ScanArgs{RootArgs: rootArgs}

	cmd := &cobra.Command{
		Use:   "scan [folder]",
		Short: "Classify and move every note under a folder",
		Long: `Classify every note under folder (the vault root by default) and move the
notes that match a rule. Folders are scanned recursively; the vault config
folder is skipped.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, posArgs []string) error {
			folder := paths.Root
			if len(posArgs) == 1 {
				folder = posArgs[0]
			}

			return args.run(cmd, folder)
		},
	}

	args.AddFlags(cmd)

	return cmd
}

func (sa *ScanArgs) run(cmd *cobra.Command, folder string) error {
	s, err := sa.loadSettings()
	if err != nil {
		return err
	}

	v, err := sa.openVault(s)
	if err != nil {
		return err
	}
	defer closeVault(v)

	opts := []scan.Opt{
		scan.WithDryRun(sa.DryRun),
		scan.WithBatchSize(s.BatchSize),
		scan.WithLock(filelock.New(sa.LockPath)),
	}

	stderr := cmd.ErrOrStderr()
	if isTerminal(stderr) {
		opts = append(opts, scan.WithProgress(progressPrinter(stderr)))
	}

	res, err := scan.New(v, opts...).Scan(cmd.Context(), paths.Normalize(folder), s.Snapshot())
	if errors.Is(err, scan.ErrScanInProgress) {
		return fmt.Errorf("%w (lock: %s)", err, sa.LockPath)
	}
	if res != nil {
		printScanResult(cmd.OutOrStdout(), res)
	}
	if err != nil {
		return fmt.Errorf("scan %s: %w", folder, err)
	}

	return nil
}

// progressPrinter rewrites a single progress line on w, at most every 100ms.
func progressPrinter(w io.Writer) func(scan.Progress) {
	var last time.Time

	return func(p scan.Progress) {
		if p.Done < p.Total && time.Since(last) < 100*time.Millisecond {
			return
		}

		last = time.Now()

		counts := humanize.Comma(int64(p.Done)) + "/" + humanize.Comma(int64(p.Total))
		mustN(fmt.Fprintf(w, "\r\033[K%s %s", counts, truncatePath(w, p.Path, len(counts)+1)))

		if p.Done == p.Total {
			mustN(fmt.Fprint(w, "\r\033[K"))
		}
	}
}

// truncatePath shortens p to fit the terminal width of w after used columns.
func truncatePath(w io.Writer, p string, used int) string {
	f, ok := w.(*os.File)
	if !ok {
		return p
	}

	width, _, err := term.GetSize(int(f.Fd())) //nolint:gosec // G115: fd fits in int.
	if err != nil || width <= used+1 {
		return p
	}

	return truncate.StringWithTail(p, uint(width-used-1), "…") //nolint:gosec // G115: width is positive.
}

func printScanResult(w io.Writer, res *scan.Result) {
	title := "Scan"
	moved := "moved"
	if res.DryRun {
		title = "Dry run"
		moved = "would move"
	}

	printLine(w, titleStyle.Render(fmt.Sprintf("%s of %s", title, res.Root)))

	for _, i := range res.Intents {
		printLine(w, indentStyle.Render(pathStyle.Render(i.From)+dimStyle.Render(" → ")+destStyle.Render(i.To)))
	}

	for _, f := range res.Failures {
		printLine(w, indentStyle.Render(errStyle.Render("✗ ")+pathStyle.Render(f.Path)+dimStyle.Render(": "+f.Err.Error())))
	}

	printLine(w, indentStyle.Render(labelStyle.Render("scanned")+counterStyle.Render(humanize.Comma(int64(res.Scanned)))))
	printLine(w, indentStyle.Render(labelStyle.Render(moved)+counterStyle.Render(humanize.Comma(int64(res.Moved)))))
	printLine(w, indentStyle.Render(labelStyle.Render("skipped")+counterStyle.Render(humanize.Comma(int64(res.Skipped)))))

	slog.Debug("scan finished", slog.Duration("duration", res.Duration))
}
