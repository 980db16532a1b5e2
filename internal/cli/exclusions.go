package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/macropower/notemover/api/v1beta1/settings"
)

func NewExclusionsCmd(rootArgs *RootArgs) *cobra.Command {
	list := func(cmd *cobra.Command, _ []string) error {
		s, err := rootArgs.loadSettings()
		if err != nil {
			return err
		}

		printExclusions(cmd.OutOrStdout(), s)

		return nil
	}

	cmd := &cobra.Command{
		Use:     "exclusions",
		Aliases: []string{"excluded"},
		Short:   "List and edit the excluded folders",
		Long: `Notes inside an excluded folder are never moved. With use_regex_for_exclusions
enabled each entry is a regular expression tested against the folder path.`,
		Args: cobra.NoArgs,
		RunE: list,
	}

	add := &cobra.Command{
		Use:   "add <folder>",
		Short: "Exclude a folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, posArgs []string) error {
			folder := strings.TrimSpace(posArgs[0])
			if folder == "" {
				return fmt.Errorf("%w: folder is empty", errInvalidArgument)
			}

			s, err := rootArgs.editSettings(func(s *settings.Settings) (*settings.Settings, error) {
				return s.WithExclusions(s.Exclusions.Append(folder)), nil
			})
			if err != nil {
				return err
			}

			printExclusions(cmd.OutOrStdout(), s)

			return nil
		},
	}

	remove := &cobra.Command{
		Use:   "remove <index>",
		Short: "Remove an excluded folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, posArgs []string) error {
			i, err := parseIndex(posArgs[0])
			if err != nil {
				return err
			}

			s, err := rootArgs.editSettings(func(s *settings.Settings) (*settings.Settings, error) {
				l, err := s.Exclusions.Delete(i)
				if err != nil {
					return nil, err //nolint:wrapcheck // Already wrapped.
				}

				return s.WithExclusions(l), nil
			})
			if err != nil {
				return err
			}

			printExclusions(cmd.OutOrStdout(), s)

			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List the excluded folders",
		Args:    cobra.NoArgs,
		RunE:    list,
	}, add, remove)

	return cmd
}

func printExclusions(w io.Writer, s *settings.Settings) {
	if len(s.Exclusions) == 0 {
		printLine(w, dimStyle.Render("no excluded folders"))
		return
	}

	for i, e := range s.Exclusions {
		printLine(w, counterStyle.Render(strconv.Itoa(i))+" "+pathStyle.Render(e.Container))
	}
}
