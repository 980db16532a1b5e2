package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/fang"

	"github.com/macropower/notemover/api/v1beta1/settings"
	"github.com/macropower/notemover/pkg/exclusion"
	"github.com/macropower/notemover/pkg/rule"
	"github.com/macropower/notemover/pkg/scan"
	"github.com/macropower/notemover/pkg/vault"
)

var errInvalidArgument = errors.New("invalid argument")

// errorHints maps sentinel errors to a suggested next step.
var errorHints = []struct {
	err  error
	hint string
}{
	{scan.ErrScanInProgress, "Wait for the running scan to finish, or remove a stale --lock file."},
	{vault.ErrDestinationNotFound, "Create the destination folder, or fix the rule with 'notemover rules'."},
	{vault.ErrDestinationExists, "A note with the same name is already in the destination folder."},
	{rule.ErrIndexOutOfRange, "List the rules with 'notemover rules list'; indices start at 0."},
	{exclusion.ErrIndexOutOfRange, "List the exclusions with 'notemover exclusions list'; indices start at 0."},
	{settings.ErrInvalidTriggerMode, "Use 'automatic' or 'manual'."},
}

func errorHint(err error) string {
	for _, h := range errorHints {
		if errors.Is(err, h.err) {
			return h.hint
		}
	}

	return ""
}

// ErrorHandler renders command errors with fang styles and a hint for known
// failures. Output that is not a terminal gets plain text.
func ErrorHandler(w io.Writer, styles fang.Styles, err error) {
	hint := errorHint(err)

	if !isTerminal(w) {
		mustN(fmt.Fprintln(w, err.Error()))
		if hint != "" {
			mustN(fmt.Fprintln(w, hint))
		}

		return
	}

	mustN(fmt.Fprintln(w, styles.ErrorHeader.String()))
	mustN(fmt.Fprintln(w, indentStyle.Render(err.Error())))
	mustN(fmt.Fprintln(w))

	if hint != "" {
		mustN(fmt.Fprintln(w, indentStyle.Render(dimStyle.Render(hint))))
		mustN(fmt.Fprintln(w))
	}

	if isUsageError(err) {
		mustN(fmt.Fprintln(w, lipgloss.JoinHorizontal(
			lipgloss.Left,
			styles.ErrorText.UnsetWidth().Render("Try"),
			styles.Program.Flag.Render("--help"),
			styles.ErrorText.UnsetWidth().UnsetMargins().UnsetTransform().PaddingLeft(1).Render("for usage."),
		)))
		mustN(fmt.Fprintln(w))
	}
}

// XXX: this is a hack to detect usage errors.
// See: https://github.com/spf13/cobra/pull/2266
func isUsageError(err error) bool {
	s := err.Error()
	for _, prefix := range []string{
		"flag needs an argument:",
		"unknown flag:",
		"unknown shorthand flag:",
		"unknown command",
		"invalid argument",
		"accepts ",
		"requires at least",
	} {
		if strings.HasPrefix(s, prefix) {
			return true
		}
	}

	return false
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

func mustN(_ int, err error) {
	must(err)
}
