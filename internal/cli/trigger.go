package cli

import (
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/macropower/notemover/api/v1beta1/settings"
	"github.com/macropower/notemover/pkg/engine"
)

const toggle = "toggle"

func NewTriggerCmd(rootArgs *RootArgs) *cobra.Command {
	choices := []string{toggle}
	for _, m := range engine.AllTriggerModes {
		choices = append(choices, strings.ToLower(m))
	}

	return &cobra.Command{
		Use:   "trigger [" + strings.Join(choices, "|") + "]",
		Short: "Show or change the trigger mode",
		Long: `In automatic mode notes are moved when they are created, renamed or changed
(see the watch command). In manual mode notes are only moved by explicit
commands such as move and scan. Without an argument the current mode is
printed.`,
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: choices,
		RunE: func(cmd *cobra.Command, posArgs []string) error {
			if len(posArgs) == 0 {
				s, err := rootArgs.loadSettings()
				if err != nil {
					return err
				}

				printTrigger(cmd.OutOrStdout(), s)

				return nil
			}

			arg := posArgs[0]
			s, err := rootArgs.editSettings(func(s *settings.Settings) (*settings.Settings, error) {
				if strings.EqualFold(arg, toggle) {
					return s.ToggleTrigger(), nil
				}

				return s.SetTriggerMode(arg)
			})
			if err != nil {
				return err
			}

			printTrigger(cmd.OutOrStdout(), s)

			return nil
		},
	}
}

func printTrigger(w io.Writer, s *settings.Settings) {
	line := labelStyle.Render("trigger") + titleStyle.Render(string(s.TriggerMode))
	if ind := s.TriggerIndicator(); ind != "" {
		line += " " + dimStyle.Render(ind)
	}

	printLine(w, line)
}
