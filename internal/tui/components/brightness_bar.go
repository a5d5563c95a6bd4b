package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/angristan/hue-attention/internal/models"
	"github.com/angristan/hue-attention/internal/tui/styles"
)

// BrightnessBarWidth is the number of segments in a brightness bar
const BrightnessBarWidth = 10

// BrightnessPct converts a device brightness (0-254) to a percentage
func BrightnessPct(bri int) int {
	if bri <= 0 {
		return 0
	}
	pct := (bri*100 + models.MaxBrightness/2) / models.MaxBrightness
	if pct > 100 {
		return 100
	}
	return pct
}

// RenderBrightnessBar renders a brightness indicator bar for a percentage
func RenderBrightnessBar(brightness int, on bool) string {
	if !on {
		// All empty when off
		return styles.StyleBrightnessBarEmpty.Render(strings.Repeat("─", BrightnessBarWidth))
	}

	var b strings.Builder
	segments := (brightness * BrightnessBarWidth) / 100
	if brightness > 0 && segments == 0 {
		segments = 1
	}

	for i := 1; i <= BrightnessBarWidth; i++ {
		if i <= segments {
			color := styles.GetBrightnessColor(i, brightness)
			b.WriteString(lipgloss.NewStyle().Foreground(color).Render("█"))
		} else {
			b.WriteString(styles.StyleBrightnessBarEmpty.Render("─"))
		}
	}

	return b.String()
}
