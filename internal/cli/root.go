package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/macropower/notemover/api/v1beta1/settings"
	"github.com/macropower/notemover/pkg/log"
	"github.com/macropower/notemover/pkg/version"
)

const (
	cmdName     = "notemover"
	cmdDesc     = `Move markdown notes into folders based on their tags and titles.`
	cmdExamples = `  # Show what a scan of the whole vault would move:
  notemover scan --dry-run

  # Move matching notes under Inbox:
  notemover scan Inbox

  # Move notes as they are created, renamed or retagged:
  notemover watch

  # Add a rule moving notes tagged #meeting to Meetings:
  notemover rules add Meetings --tag '#meeting'

  # Import settings from the Obsidian plugin:
  notemover settings import .obsidian/plugins/auto-note-mover/data.json`
)

type RootArgs struct {
	LogLevel     string
	LogFormat    string
	SettingsPath string
	VaultDir     string
}

func NewRootArgs() *RootArgs {
	return &RootArgs{}
}

func (ra *RootArgs) AddFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().
		StringVar(&ra.LogLevel, "log-level", "info", fmt.Sprintf("Log level, one of: %s", log.AllLevels))
	cmd.PersistentFlags().
		StringVar(&ra.LogFormat, "log-format", "text", fmt.Sprintf("Log format, one of: %s", log.AllFormats))
	cmd.PersistentFlags().
		StringVar(&ra.SettingsPath, "settings", settings.GetPath(), "Path to the settings file")
	cmd.PersistentFlags().
		StringVar(&ra.VaultDir, "vault", ".", "Path to the vault directory")

	var err error

	err = cmd.RegisterFlagCompletionFunc("log-format",
		cobra.FixedCompletions(log.AllFormats, cobra.ShellCompDirectiveNoFileComp),
	)
	if err != nil {
		panic(err)
	}

	err = cmd.RegisterFlagCompletionFunc("log-level",
		cobra.FixedCompletions(log.AllLevels, cobra.ShellCompDirectiveNoFileComp),
	)
	if err != nil {
		panic(err)
	}

	err = cmd.MarkPersistentFlagFilename("settings", "yaml", "yml")
	if err != nil {
		panic(fmt.Errorf("mark settings flag: %w", err))
	}

	err = cmd.MarkPersistentFlagDirname("vault")
	if err != nil {
		panic(fmt.Errorf("mark vault flag: %w", err))
	}
}

func NewRootCmd() *cobra.Command {
	args := NewRootArgs()

	cmd := &cobra.Command{
		Use:               cmdName,
		Short:             cmdDesc,
		Example:           cmdExamples,
		PersistentPreRunE: setupLogging(args),
		SilenceUsage:      true,
	}

	args.AddFlags(cmd)

	cmd.AddCommand(
		NewScanCmd(args),
		NewMoveCmd(args),
		NewWatchCmd(args),
		NewRulesCmd(args),
		NewExclusionsCmd(args),
		NewTriggerCmd(args),
		NewSettingsCmd(args),
		NewFoldersCmd(args),
		NewServeMCPCmd(args),
	)

	bindEnvVars(cmd)

	return cmd
}

func setupLogging(rc *RootArgs) func(cmd *cobra.Command, _ []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		logHandler, err := log.CreateHandlerWithStrings(cmd.ErrOrStderr(), rc.LogLevel, rc.LogFormat)
		if err != nil {
			return fmt.Errorf("create log handler: %w", err)
		}

		slog.SetDefault(slog.New(logHandler))
		slog.Debug("starting", slog.String("version", version.Info()))

		return nil
	}
}
