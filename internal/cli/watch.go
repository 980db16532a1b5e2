package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/macropower/notemover/pkg/engine"
	"github.com/macropower/notemover/pkg/log"
	"github.com/macropower/notemover/pkg/watch"
)

type WatchArgs struct {
	*RootArgs

	Window time.Duration
}

func NewWatchCmd(rootArgs *RootArgs) *cobra.Command {
	args := &WatchArgs{RootArgs: rootArgs}

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Move notes as they are created or renamed",
		Long: `Watch the vault and classify notes when they are created, renamed or
moved. Settings are re-read for every event, so edits made with the other
commands apply immediately. In manual trigger mode events are observed but
no note is moved.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return args.run(cmd)
		},
	}

	cmd.Flags().DurationVar(&args.Window, "window", watch.DefaultWindow,
		"Time to wait for related file events to settle")

	return cmd
}

func (wa *WatchArgs) run(cmd *cobra.Command) error {
	s, err := wa.loadSettings()
	if err != nil {
		return err
	}

	v, err := wa.openVault(s)
	if err != nil {
		return err
	}
	defer closeVault(v)

	w, err := watch.New(v, watch.WithWindow(wa.Window))
	if err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}

	defer func() {
		err := w.Close()
		if err != nil {
			slog.Error("close watcher", slog.Any("err", err))
		}
	}()

	out := cmd.OutOrStdout()
	header := titleStyle.Render("watching") + " " + pathStyle.Render(v.Dir())
	if ind := s.TriggerIndicator(); ind != "" {
		header += " " + dimStyle.Render(ind)
	}

	printLine(out, header)

	err = w.Run(cmd.Context(), func(ctx context.Context, ev engine.Event) {
		// Pick up edits made while watching.
		current, err := wa.loadSettings()
		if err != nil {
			log.WithContext(ctx).Error("reload settings", slog.Any("err", err))
			return
		}

		res, err := engine.Ingest(ctx, v, current.Snapshot(), ev)
		if err != nil {
			log.WithContext(ctx).Error("handle event",
				slog.String("path", ev.Path),
				slog.Any("err", err),
			)

			return
		}

		if res.Matched {
			printOutcome(out, ev.Path, res)
		}
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}

	return nil
}
