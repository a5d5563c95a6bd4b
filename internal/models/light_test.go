package models

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestRestoreUpdate_ExcludesUnsetAndLightID(t *testing.T) {
	state := LightState{LightID: String("3"), On: Bool(true)}

	update := state.RestoreUpdate()

	data, err := json.Marshal(update)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(data) != `{"on":true}` {
		t.Errorf("Expected payload {\"on\":true}, got %s", data)
	}
}

func TestRestoreUpdate_AllFields(t *testing.T) {
	state := LightState{LightID: String("7"), On: Bool(false), Bri: Int(10), Hue: Int(2000), Sat: Int(30)}

	data, err := json.Marshal(state.RestoreUpdate())
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	want := `{"on":false,"bri":10,"hue":2000,"sat":30}`
	if string(data) != want {
		t.Errorf("Expected %s, got %s", want, data)
	}
}

func TestRestoreUpdate_KeepsZeroValues(t *testing.T) {
	// hue=0 is red, not "unset"
	state := LightState{Hue: Int(0), Sat: Int(0)}

	update := state.RestoreUpdate()
	if update.Hue == nil || *update.Hue != 0 {
		t.Errorf("Expected hue 0 to be carried over, got %v", update.Hue)
	}
	if update.Sat == nil || *update.Sat != 0 {
		t.Errorf("Expected sat 0 to be carried over, got %v", update.Sat)
	}
}

func TestRestoreUpdate_Empty(t *testing.T) {
	state := LightState{LightID: String("1")}

	if !state.RestoreUpdate().IsEmpty() {
		t.Error("Expected empty update for state without captured fields")
	}
}

func TestRestoreUpdate_DoesNotAlias(t *testing.T) {
	state := LightState{Bri: Int(100)}
	update := state.RestoreUpdate()
	*update.Bri = 5

	if *state.Bri != 100 {
		t.Errorf("Expected captured brightness to stay 100, got %d", *state.Bri)
	}
}

func TestLightStateDecodeNulls(t *testing.T) {
	var state LightState
	if err := json.Unmarshal([]byte(`{"light_id":"3","on":true,"bri":null,"hue":null,"sat":null}`), &state); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if state.ID() != "3" {
		t.Errorf("Expected light_id 3, got %q", state.ID())
	}
	if state.Bri != nil || state.Hue != nil || state.Sat != nil {
		t.Error("Expected null fields to decode as unset")
	}
}

func TestStateUpdateMerge(t *testing.T) {
	base := StateUpdate{On: Bool(true), Bri: Int(200), Hue: Int(8000)}
	merged := base.Merge(StateUpdate{Bri: Int(50), TransitionTime: Int(3)})

	if *merged.Bri != 50 {
		t.Errorf("Expected bri 50, got %d", *merged.Bri)
	}
	if *merged.Hue != 8000 {
		t.Errorf("Expected hue 8000 to survive merge, got %d", *merged.Hue)
	}
	if merged.TransitionTime == nil || *merged.TransitionTime != 3 {
		t.Errorf("Expected transition time 3, got %v", merged.TransitionTime)
	}
	if *base.Bri != 200 {
		t.Errorf("Merge must not modify the receiver, bri is %d", *base.Bri)
	}
}

func TestStateUpdateValidate(t *testing.T) {
	tests := []struct {
		name    string
		update  StateUpdate
		wantErr bool
	}{
		{"empty", StateUpdate{}, false},
		{"max values", StateUpdate{Bri: Int(254), Hue: Int(65535), Sat: Int(254)}, false},
		{"brightness too high", StateUpdate{Bri: Int(255)}, true},
		{"negative hue", StateUpdate{Hue: Int(-1)}, true},
		{"saturation too high", StateUpdate{Sat: Int(300)}, true},
		{"negative transition", StateUpdate{TransitionTime: Int(-2)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.update.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLookupPreset(t *testing.T) {
	p, err := LookupPreset("blue")
	if err != nil {
		t.Fatalf("LookupPreset(blue) failed: %v", err)
	}
	if *p.Hue != 46920 || *p.Bri != 200 {
		t.Errorf("Unexpected blue preset: hue=%d bri=%d", *p.Hue, *p.Bri)
	}

	// Mutating the copy must not leak into the table
	*p.Hue = 1
	again, _ := LookupPreset("blue")
	if *again.Hue != 46920 {
		t.Errorf("Preset table was modified through a lookup copy")
	}

	_, err = LookupPreset("purple")
	if !errors.Is(err, ErrUnknownPreset) {
		t.Errorf("Expected ErrUnknownPreset, got %v", err)
	}
}

func TestPresetNames(t *testing.T) {
	names := PresetNames()
	want := []string{"blue", "cool", "green", "red", "warm"}

	if len(names) != len(want) {
		t.Fatalf("Expected %d presets, got %d", len(want), len(names))
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("Expected preset %d to be %s, got %s", i, want[i], names[i])
		}
	}
}

func TestLightStateColor(t *testing.T) {
	if _, ok := (LightState{Bri: Int(100)}).Color(); ok {
		t.Error("Expected no color without hue and saturation")
	}

	// Swatches ignore brightness so dim lights stay recognizable
	c, ok := LightState{Hue: Int(0), Sat: Int(254), Bri: Int(1)}.Color()
	if !ok {
		t.Fatal("Expected a color")
	}
	if c != (Color{255, 0, 0}) {
		t.Errorf("Expected full red, got %+v", c)
	}
}

func TestSortIDs(t *testing.T) {
	ids := []string{"10", "hall", "2", "1", "desk"}
	SortIDs(ids)

	want := []string{"1", "2", "10", "desk", "hall"}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("Expected %v, got %v", want, ids)
		}
	}
}
