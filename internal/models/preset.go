package models

import (
	"errors"
	"fmt"
	"sort"
)

// ErrUnknownPreset is returned when a preset name is not defined
var ErrUnknownPreset = errors.New("unknown preset")

// RedAlert is the full-brightness red used by the pulse alert
var RedAlert = StateUpdate{
	On:  Bool(true),
	Bri: Int(MaxBrightness),
	Hue: Int(0),
	Sat: Int(MaxSaturation),
}

// Presets are the named color payloads accepted by `set --preset`.
// Treat as read-only.
var Presets = map[string]StateUpdate{
	"red":   RedAlert,
	"blue":  {On: Bool(true), Bri: Int(200), Hue: Int(46920), Sat: Int(254)},
	"green": {On: Bool(true), Bri: Int(200), Hue: Int(25500), Sat: Int(254)},
	"warm":  {On: Bool(true), Bri: Int(200), Hue: Int(8000), Sat: Int(200)},
	"cool":  {On: Bool(true), Bri: Int(200), Hue: Int(38000), Sat: Int(150)},
}

// LookupPreset returns a copy of the named preset
func LookupPreset(name string) (StateUpdate, error) {
	p, ok := Presets[name]
	if !ok {
		return StateUpdate{}, fmt.Errorf("%w %q (choose from %v)", ErrUnknownPreset, name, PresetNames())
	}
	// Fresh pointers so callers can't mutate the table
	return p.Clone(), nil
}

// PresetNames returns the preset names in sorted order
func PresetNames() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clone returns a deep copy of the update
func (u StateUpdate) Clone() StateUpdate {
	var c StateUpdate
	if u.On != nil {
		c.On = Bool(*u.On)
	}
	if u.Bri != nil {
		c.Bri = Int(*u.Bri)
	}
	if u.Hue != nil {
		c.Hue = Int(*u.Hue)
	}
	if u.Sat != nil {
		c.Sat = Int(*u.Sat)
	}
	if u.TransitionTime != nil {
		c.TransitionTime = Int(*u.TransitionTime)
	}
	return c
}
