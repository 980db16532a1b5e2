package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	xstrings "github.com/charmbracelet/x/exp/strings"

	"github.com/macropower/notemover/api/v1beta1/settings"
	"github.com/macropower/notemover/pkg/rule"
)

type RuleAddArgs struct {
	*RootArgs

	Mode  string
	Title string
	Tags  []string
}

func NewRulesCmd(rootArgs *RootArgs) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "List and edit the move rules",
		Long: `Rules are evaluated in order and the first matching rule decides where a
note is moved. Rules are addressed by their index in the list, starting at 0.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return rootArgs.listRules(cmd)
		},
	}

	addArgs := &RuleAddArgs{RootArgs: rootArgs}
	add := &cobra.Command{
		Use:   "add <destination>",
		Short: "Append a rule",
		Example: `  # Move notes tagged #meeting into Meetings.
  notemover rules add Meetings --tag '#meeting'

  # Move daily notes by their title.
  notemover rules add Journal --title '^\d{4}-\d{2}-\d{2}$'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, posArgs []string) error {
			return addArgs.run(cmd, posArgs[0])
		},
	}
	add.Flags().StringArrayVarP(&addArgs.Tags, "tag", "t", nil, "Tag to match, may be repeated (\"#\" is added unless use_regex_for_tags is set)")
	add.Flags().StringVarP(&addArgs.Mode, "mode", "m", string(rule.MatchAny),
		fmt.Sprintf("Tag match mode, one of: %s", strings.Join(rule.AllTagMatchModes, ", ")))
	add.Flags().StringVar(&addArgs.Title, "title", "", "Regular expression matched against the note title")
	must(add.RegisterFlagCompletionFunc("mode", cobra.FixedCompletions(rule.AllTagMatchModes, cobra.ShellCompDirectiveNoFileComp)))

	list := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List the rules in evaluation order",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return rootArgs.listRules(cmd)
		},
	}

	cmd.AddCommand(
		list,
		add,
		newRuleEditCmd(rootArgs, "remove <index>", "Remove a rule", rule.RuleSet.Delete),
		newRuleEditCmd(rootArgs, "up <index>", "Move a rule one position up", rule.RuleSet.MoveUp),
		newRuleEditCmd(rootArgs, "down <index>", "Move a rule one position down", rule.RuleSet.MoveDown),
	)

	return cmd
}

func newRuleEditCmd(rootArgs *RootArgs, use, short string, edit func(rule.RuleSet, int) (rule.RuleSet, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, posArgs []string) error {
			i, err := parseIndex(posArgs[0])
			if err != nil {
				return err
			}

			s, err := rootArgs.editSettings(func(s *settings.Settings) (*settings.Settings, error) {
				rules, err := edit(s.Rules, i)
				if err != nil {
					return nil, err
				}

				return s.WithRules(rules), nil
			})
			if err != nil {
				return err
			}

			printRules(cmd.OutOrStdout(), s)

			return nil
		},
	}
}

func (ra *RuleAddArgs) run(cmd *cobra.Command, destination string) error {
	mode, err := rule.ParseTagMatchMode(ra.Mode)
	if err != nil {
		return fmt.Errorf("invalid --mode: %w", err)
	}

	r := rule.New(destination, ra.Tags, mode, ra.Title)
	if !r.HasDestination() {
		return fmt.Errorf("%w: destination is empty", errInvalidArgument)
	}

	s, err := ra.editSettings(func(s *settings.Settings) (*settings.Settings, error) {
		// Literal tags match exactly, and documents report tags with "#".
		if !s.UseRegexForTags {
			r.Tags = rule.HashTags(r.Tags)
		}

		return s.WithRules(s.Rules.Append(r)), nil
	})
	if err != nil {
		return err
	}

	printRules(cmd.OutOrStdout(), s)

	return nil
}

func (ra *RootArgs) listRules(cmd *cobra.Command) error {
	s, err := ra.loadSettings()
	if err != nil {
		return err
	}

	printRules(cmd.OutOrStdout(), s)

	return nil
}

func printRules(w io.Writer, s *settings.Settings) {
	if len(s.Rules) == 0 {
		printLine(w, dimStyle.Render("no rules"))
		return
	}

	for i, r := range s.Rules {
		idx := counterStyle.Render(strconv.Itoa(i))
		printLine(w, idx+" "+destStyle.Render(r.Destination))

		if tags := rule.FilterTags(r.Tags); len(tags) > 0 {
			printLine(w, indentStyle.Render(labelStyle.Render("tags")+joinTags(tags, r.Mode())))
		}
		if r.TitlePattern != "" {
			printLine(w, indentStyle.Render(labelStyle.Render("title")+r.TitlePattern))
		}
	}
}

// joinTags renders tags as "a, b, and c" for [rule.MatchAll] and
// "a or b or c" for [rule.MatchAny].
func joinTags(tags []string, mode rule.TagMatchMode) string {
	if mode == rule.MatchAll {
		return xstrings.EnglishJoin(tags, true)
	}

	return strings.Join(tags, " or ")
}

func parseIndex(s string) (int, error) {
	i, err := strconv.Atoi(s)
	if err != nil || i < 0 {
		return 0, fmt.Errorf("%w: index must be a non-negative integer, got %q", errInvalidArgument, s)
	}

	return i, nil
}
