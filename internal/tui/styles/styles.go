package styles

import (
	"github.com/charmbracelet/lipgloss"
)

// Palette. Reds lead since the tool's job is a red alert.
var (
	colorAlert     = lipgloss.Color("#F56565")
	colorAlertSoft = lipgloss.Color("#FED7D7")
	colorInk       = lipgloss.Color("#1A1A2E")
	colorTrack     = lipgloss.Color("#3D3D5C")

	colorText  = lipgloss.Color("#FAFAFA")
	colorMuted = lipgloss.Color("#A0A0B0")
	colorDim   = lipgloss.Color("#6B6B80")

	colorOK   = lipgloss.Color("#68D391")
	colorWarn = lipgloss.Color("#F6E05E")
	colorFail = lipgloss.Color("#FC8181")

	colorBulbOn  = lipgloss.Color("#FBBF24")
	colorBulbOff = lipgloss.Color("#4A4A5A")

	// Dim to bright, one entry per bar segment
	barGradient = [...]lipgloss.Color{
		"#4A3A3A", "#5E4040", "#724646", "#864C4C", "#9A5252",
		"#AE5858", "#C25E5E", "#D66464", "#EA6A6A", "#FBBF24",
	}
)

// Setup prompts
var (
	StyleHeaderGradient = lipgloss.NewStyle().Bold(true).Foreground(colorText).Background(colorAlert).Padding(0, 2)
	StylePrimary        = lipgloss.NewStyle().Foreground(colorAlert).Bold(true)
	StyleSpinner        = lipgloss.NewStyle().Foreground(colorAlert)
	StyleItem           = lipgloss.NewStyle().Foreground(colorText).Padding(0, 1)
	StyleItemSelected   = lipgloss.NewStyle().Foreground(colorInk).Background(colorAlertSoft).Padding(0, 1)
	StyleInputFocused   = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(colorAlert).Padding(0, 1)
	StyleHelp           = lipgloss.NewStyle().Foreground(colorDim).MarginTop(1)
)

// Light rows
var (
	StyleLightID            = lipgloss.NewStyle().Foreground(colorAlertSoft).Bold(true)
	StyleLightName          = lipgloss.NewStyle().Foreground(colorText)
	StyleLightNameDim       = lipgloss.NewStyle().Foreground(colorMuted)
	StyleStatusOn           = lipgloss.NewStyle().Foreground(colorBulbOn).Bold(true)
	StyleStatusOff          = lipgloss.NewStyle().Foreground(colorBulbOff)
	StyleBrightnessBarEmpty = lipgloss.NewStyle().Foreground(colorTrack)
)

// Command output
var (
	StyleSuccess   = lipgloss.NewStyle().Foreground(colorOK).Bold(true)
	StyleWarning   = lipgloss.NewStyle().Foreground(colorWarn)
	StyleError     = lipgloss.NewStyle().Foreground(colorFail).Bold(true)
	StyleTextMuted = lipgloss.NewStyle().Foreground(colorMuted)
)

// GetBrightnessColor returns the color of segment (1-10) of a brightness
// bar filled to brightness percent, or the track color past the fill
func GetBrightnessColor(segment int, brightness int) lipgloss.Color {
	if segment < 1 || segment > len(barGradient) || brightness < segment*10 {
		return colorTrack
	}
	return barGradient[segment-1]
}
