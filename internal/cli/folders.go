package cli

import (
	"io"
	"strings"

	"github.com/sahilm/fuzzy"
	"github.com/spf13/cobra"
)

type FoldersArgs struct {
	*RootArgs

	Limit int
}

func NewFoldersCmd(rootArgs *RootArgs) *cobra.Command {
	args := &FoldersArgs{RootArgs: rootArgs}

	cmd := &cobra.Command{
		Use:   "folders [query]",
		Short: "List vault folders, optionally filtered by a fuzzy query",
		Long: `List the folders of the vault that can be used as rule destinations or
exclusions. With a query the folders are fuzzy matched and ranked.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, posArgs []string) error {
			query := ""
			if len(posArgs) == 1 {
				query = posArgs[0]
			}

			return args.run(cmd, query)
		},
	}

	cmd.Flags().IntVarP(&args.Limit, "limit", "l", 0, "Maximum number of folders to print (0 for all)")

	return cmd
}

func (fa *FoldersArgs) run(cmd *cobra.Command, query string) error {
	s, err := fa.loadSettings()
	if err != nil {
		return err
	}

	v, err := fa.openVault(s)
	if err != nil {
		return err
	}
	defer closeVault(v)

	folders, err := v.Folders()
	if err != nil {
		return err //nolint:wrapcheck // Already wrapped.
	}

	w := cmd.OutOrStdout()

	if query == "" {
		for i, f := range folders {
			if fa.Limit > 0 && i >= fa.Limit {
				break
			}

			printLine(w, pathStyle.Render(f))
		}

		return nil
	}

	matches := fuzzy.Find(query, folders)
	for i, m := range matches {
		if fa.Limit > 0 && i >= fa.Limit {
			break
		}

		printFolderMatch(w, m)
	}

	return nil
}

// printFolderMatch highlights the matched characters of m.
func printFolderMatch(w io.Writer, m fuzzy.Match) {
	matched := make(map[int]bool, len(m.MatchedIndexes))
	for _, i := range m.MatchedIndexes {
		matched[i] = true
	}

	var sb strings.Builder
	for i, r := range m.Str {
		s := string(r)
		if matched[i] {
			sb.WriteString(matchStyle.Inherit(pathStyle).Render(s))
		} else {
			sb.WriteString(pathStyle.Render(s))
		}
	}

	printLine(w, sb.String())
}
