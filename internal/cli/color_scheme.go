package cli

import (
	"image/color"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/x/exp/charmtone"
)

// ColorScheme is fang's default scheme with the notemover accents.
func ColorScheme(c lipgloss.LightDarkFunc) fang.ColorScheme {
	cs := fang.DefaultColorScheme(c)
	cs.Title = charmtone.Charple
	cs.Command = c(charmtone.Malibu, charmtone.Guppy)
	cs.Flag = c(charmtone.Guac, charmtone.Julep)
	cs.Argument = c(charmtone.Charcoal, charmtone.Ash)
	cs.ErrorHeader = [2]color.Color{charmtone.Butter, charmtone.Cherry}

	return cs
}
