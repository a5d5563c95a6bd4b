package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/angristan/hue-attention/internal/models"
	"github.com/angristan/hue-attention/internal/tui/styles"
)

// RenderLightRow renders one light of the detailed light list: status,
// id, name, color swatch and brightness. A nil state renders as unknown.
func RenderLightRow(id, name string, state *models.LightState, nameWidth int) string {
	idCol := styles.StyleLightID.Render(fmt.Sprintf("%4s", id))

	if state == nil {
		return fmt.Sprintf("%s %s %s", styles.StyleTextMuted.Render("?"), idCol,
			styles.StyleLightNameDim.Render(padRight(name, nameWidth)))
	}

	on := state.On != nil && *state.On

	statusIcon := "○"
	statusStyle := styles.StyleStatusOff
	nameStyle := styles.StyleLightNameDim
	if on {
		statusIcon = "●"
		statusStyle = styles.StyleStatusOn
		nameStyle = styles.StyleLightName
	}

	// Color indicator for color lights
	swatch := " "
	if c, ok := state.Color(); ok && on {
		swatch = lipgloss.NewStyle().Foreground(lipgloss.Color(c.Hex())).Render("◆")
	}

	bar := styles.StyleTextMuted.Render("no dimming")
	if state.Bri != nil {
		pct := BrightnessPct(*state.Bri)
		bar = fmt.Sprintf("%s %3d%%", RenderBrightnessBar(pct, on), pct)
	}

	return fmt.Sprintf("%s %s %s %s %s",
		statusStyle.Render(statusIcon), idCol, nameStyle.Render(padRight(name, nameWidth)), swatch, bar)
}

func padRight(s string, width int) string {
	if w := lipgloss.Width(s); w < width {
		return s + fmt.Sprintf("%*s", width-w, "")
	}
	return s
}
