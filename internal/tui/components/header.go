package components

import (
	"github.com/angristan/hue-attention/internal/tui/styles"
)

// RenderHeader renders a prompt title with an optional muted subtitle
func RenderHeader(title, subtitle string) string {
	header := styles.StyleHeaderGradient.Render(" " + title + " ")
	if subtitle == "" {
		return header
	}
	return header + " " + styles.StyleTextMuted.Render(subtitle)
}
