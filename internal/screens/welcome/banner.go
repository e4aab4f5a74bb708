package welcome

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/nibble/internal/ui/theme"
)

const bannerArt = `
 ███╗   ██╗██╗██████╗ ██████╗ ██╗     ███████╗
 ████╗  ██║██║██╔══██╗██╔══██╗██║     ██╔════╝
 ██╔██╗ ██║██║██████╔╝██████╔╝██║     █████╗
 ██║╚██╗██║██║██╔══██╗██╔══██╗██║     ██╔══╝
 ██║ ╚████║██║██████╔╝██████╔╝███████╗███████╗
 ╚═╝  ╚═══╝╚═╝╚═════╝ ╚═════╝ ╚══════╝╚══════╝`

const bannerCompact = "N I B B L E"

// RenderBanner returns the banner, or a compact form for terminals narrower
// than 50 columns.
func RenderBanner(width int) string {
	style := lipgloss.NewStyle().
		Foreground(theme.Primary).
		Bold(true)

	if width < 50 {
		return style.Render(bannerCompact)
	}
	return style.Render(bannerArt)
}
