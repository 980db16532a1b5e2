package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/aymanbagabas/go-udiff"
	"github.com/spf13/cobra"

	"github.com/macropower/notemover/api"
	"github.com/macropower/notemover/api/v1beta1/settings"
	"github.com/macropower/notemover/pkg/config"
)

var errSettingsExist = errors.New("settings file already exists")

type SettingsWriteArgs struct {
	*RootArgs

	Force  bool
	DryRun bool
}

func NewSettingsCmd(rootArgs *RootArgs) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Manage the settings file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return rootArgs.showSettings(cmd)
		},
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the effective settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return rootArgs.showSettings(cmd)
		},
	}

	initArgs := &SettingsWriteArgs{RootArgs: rootArgs}
	initCmd := &cobra.Command{
		Use:     "write-default",
		Aliases: []string{"init"},
		Short:   "Write the default settings file",
		Long: `Write the default settings file to the settings path. An existing file is
kept unless --force is given, in which case it is backed up first.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			err := settings.WriteDefault(initArgs.SettingsPath, initArgs.Force)
			if err != nil {
				return err //nolint:wrapcheck // Already wrapped.
			}

			printLine(cmd.OutOrStdout(), pathStyle.Render(initArgs.SettingsPath))

			return nil
		},
	}
	initCmd.Flags().BoolVarP(&initArgs.Force, "force", "f", false, "Back up and replace an existing settings file")

	importArgs := &SettingsWriteArgs{RootArgs: rootArgs}
	importCmd := &cobra.Command{
		Use:   "import <data.json>",
		Short: "Import settings saved by the Obsidian plugin",
		Long: `Convert a data.json file written by the Auto Note Mover plugin into a
settings file. Rules in the old per-folder format are migrated.`,
		Example: `  notemover settings import ~/Notes/.obsidian/plugins/auto-note-mover/data.json`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, posArgs []string) error {
			return importArgs.runImport(cmd, posArgs[0])
		},
	}
	importCmd.Flags().BoolVarP(&importArgs.Force, "force", "f", false, "Back up and replace an existing settings file")

	migrateArgs := &SettingsWriteArgs{RootArgs: rootArgs}
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Convert legacy rules to the current format",
		Long: `Convert rules stored in the legacy per-folder format into the current rule
list and rewrite the settings file. Loading the settings performs the same
migration; this command shows what changes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return migrateArgs.runMigrate(cmd)
		},
	}
	migrateCmd.Flags().BoolVarP(&migrateArgs.DryRun, "dry-run", "n", false, "Print the diff without writing it")

	cmd.AddCommand(show, initCmd, importCmd, migrateCmd)

	return cmd
}

func (ra *RootArgs) showSettings(cmd *cobra.Command) error {
	s, err := ra.loadSettings()
	if err != nil {
		return err
	}

	b, err := s.MarshalYAML()
	if err != nil {
		return err //nolint:wrapcheck // Already wrapped.
	}

	_, err = cmd.OutOrStdout().Write(b)
	if err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

func (sa *SettingsWriteArgs) runImport(cmd *cobra.Command, dataPath string) error {
	data, err := api.ReadFile(dataPath)
	if err != nil {
		return fmt.Errorf("read plugin data: %w", err)
	}

	s, err := settings.ImportPluginData(data)
	if err != nil {
		return err //nolint:wrapcheck // Already wrapped.
	}

	b, err := s.MarshalYAML()
	if err != nil {
		return err //nolint:wrapcheck // Already wrapped.
	}

	if !sa.Force {
		_, err := os.Stat(sa.SettingsPath)
		if err == nil {
			return fmt.Errorf("%w: %s (use --force to replace it)", errSettingsExist, sa.SettingsPath)
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("stat settings: %w", err)
		}
	}

	err = api.WriteDefaultFile(sa.SettingsPath, b, sa.Force, "settings")
	if err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	w := cmd.OutOrStdout()
	printLine(w, titleStyle.Render("imported")+" "+pathStyle.Render(sa.SettingsPath))
	printRules(w, s)

	return nil
}

func (sa *SettingsWriteArgs) runMigrate(cmd *cobra.Command) error {
	data, err := api.ReadFile(sa.SettingsPath)
	if err != nil {
		return fmt.Errorf("read settings: %w", err)
	}

	s, err := settings.Parse(data, config.WithColorErrors(isTerminal(os.Stderr)))
	if err != nil {
		return err //nolint:wrapcheck // Already wrapped.
	}

	w := cmd.OutOrStdout()

	migrated, changed := s.Migrate()
	if !changed {
		printLine(w, dimStyle.Render("nothing to migrate"))
		return nil
	}

	b, err := migrated.MarshalYAML()
	if err != nil {
		return err //nolint:wrapcheck // Already wrapped.
	}

	diff := udiff.Unified(sa.SettingsPath, sa.SettingsPath+" (migrated)", string(data), string(b))
	mustN(fmt.Fprint(w, diff))

	if sa.DryRun {
		return nil
	}

	err = migrated.Save(sa.SettingsPath)
	if err != nil {
		return err //nolint:wrapcheck // Already wrapped.
	}

	printLine(w, titleStyle.Render("migrated")+" "+pathStyle.Render(sa.SettingsPath))

	return nil
}
