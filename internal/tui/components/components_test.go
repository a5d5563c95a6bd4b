package components

import (
	"strings"
	"testing"

	"github.com/angristan/hue-attention/internal/models"
)

func TestBrightnessPct(t *testing.T) {
	tests := []struct {
		bri  int
		want int
	}{
		{0, 0},
		{-5, 0},
		{1, 0},
		{2, 1},
		{127, 50},
		{254, 100},
		{300, 100},
	}

	for _, tt := range tests {
		if got := BrightnessPct(tt.bri); got != tt.want {
			t.Errorf("BrightnessPct(%d) = %d, want %d", tt.bri, got, tt.want)
		}
	}
}

func TestRenderBrightnessBar(t *testing.T) {
	off := RenderBrightnessBar(100, false)
	if strings.Contains(off, "█") {
		t.Error("Bar of a light that is off should be empty")
	}

	full := RenderBrightnessBar(100, true)
	if strings.Count(full, "█") != BrightnessBarWidth {
		t.Errorf("Expected %d filled segments, got %q", BrightnessBarWidth, full)
	}

	dim := RenderBrightnessBar(3, true)
	if strings.Count(dim, "█") != 1 {
		t.Errorf("Expected a single segment for a dim light, got %q", dim)
	}
}

func TestRenderLightRow(t *testing.T) {
	state := &models.LightState{On: models.Bool(true), Bri: models.Int(254), Hue: models.Int(0), Sat: models.Int(254)}
	row := RenderLightRow("3", "Desk", state, 10)

	for _, want := range []string{"●", "3", "Desk", "◆", "100%"} {
		if !strings.Contains(row, want) {
			t.Errorf("Row should contain %q: %q", want, row)
		}
	}

	plug := RenderLightRow("12", "Plug", &models.LightState{On: models.Bool(false)}, 10)
	if !strings.Contains(plug, "○") || !strings.Contains(plug, "no dimming") {
		t.Errorf("Unexpected row for an on/off plug: %q", plug)
	}

	unknown := RenderLightRow("4", "Gone", nil, 10)
	if !strings.Contains(unknown, "?") {
		t.Errorf("Unexpected row for unknown state: %q", unknown)
	}
}

func TestRenderHeader(t *testing.T) {
	h := RenderHeader("hue-attention setup", "step 1 of 3")
	if !strings.Contains(h, "hue-attention setup") || !strings.Contains(h, "step 1 of 3") {
		t.Errorf("Unexpected header %q", h)
	}
}
