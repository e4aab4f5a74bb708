package home

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/nibble/internal/ui/theme"
)

// MascotVariant selects which mascot art to display.
type MascotVariant int

const (
	MascotIdle     MascotVariant = iota
	MascotCheering               // every lesson done
)

const mascotIdle = `  \|/
 (o o)
 ( ~ )
  """`

const mascotCheering = ` \\|//
 (^ ^)
 ( o )
  """`

// RenderMascot returns the apple mascot for the given variant.
func RenderMascot(v MascotVariant) string {
	art, fg := mascotIdle, theme.Primary
	if v == MascotCheering {
		art, fg = mascotCheering, theme.Accent
	}
	return lipgloss.NewStyle().Foreground(fg).Bold(true).Render(art)
}
