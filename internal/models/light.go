package models

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// Device-native value ranges for the v1 light state API
const (
	MaxBrightness = 254
	MaxHue        = 65535
	MaxSaturation = 254
)

// LightState is a light's state as read from the bridge or a snapshot.
// Every field is optional: the bridge omits what a light does not support,
// and a restore must only send what was actually captured.
type LightState struct {
	// Bridge identifier of the light. Metadata only, never sent to the device.
	LightID *string `json:"light_id,omitempty"`
	On      *bool   `json:"on,omitempty"`
	Bri     *int    `json:"bri,omitempty"`
	Hue     *int    `json:"hue,omitempty"`
	Sat     *int    `json:"sat,omitempty"`
}

// UnmarshalJSON accepts light_id as a string or a number
func (s *LightState) UnmarshalJSON(data []byte) error {
	type plain LightState
	var aux struct {
		plain
		LightID json.RawMessage `json:"light_id"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*s = LightState(aux.plain)
	s.LightID = nil

	if len(aux.LightID) == 0 || string(aux.LightID) == "null" {
		return nil
	}
	var id string
	if err := json.Unmarshal(aux.LightID, &id); err == nil {
		s.LightID = &id
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(aux.LightID, &n); err != nil {
		return fmt.Errorf("light_id must be a string or number: %w", err)
	}
	id = n.String()
	s.LightID = &id
	return nil
}

// ID returns the recorded light ID or an empty string
func (s LightState) ID() string {
	if s.LightID == nil {
		return ""
	}
	return *s.LightID
}

// WithID returns a copy of the state tagged with the given light ID
func (s LightState) WithID(id string) LightState {
	s.LightID = &id
	return s
}

// RestoreUpdate builds the payload that puts a light back into this state.
// Only fields that were captured are carried over; LightID is excluded.
func (s LightState) RestoreUpdate() StateUpdate {
	var u StateUpdate
	if s.On != nil {
		u.On = Bool(*s.On)
	}
	if s.Bri != nil {
		u.Bri = Int(*s.Bri)
	}
	if s.Hue != nil {
		u.Hue = Int(*s.Hue)
	}
	if s.Sat != nil {
		u.Sat = Int(*s.Sat)
	}
	return u
}

// Color returns the light's color at full brightness. ok is false for lights
// that report no hue or saturation (white-only bulbs, plugs).
func (s LightState) Color() (c Color, ok bool) {
	if s.Hue == nil || s.Sat == nil {
		return Color{}, false
	}
	return ColorFromHSB(*s.Hue, *s.Sat, MaxBrightness), true
}

// StateUpdate is a partial light state write. Nil fields are left untouched
// on the device and are omitted from the request body.
type StateUpdate struct {
	On  *bool `json:"on,omitempty"`
	Bri *int  `json:"bri,omitempty"`
	Hue *int  `json:"hue,omitempty"`
	Sat *int  `json:"sat,omitempty"`
	// Transition duration in multiples of 100ms
	TransitionTime *int `json:"transitiontime,omitempty"`
}

// IsEmpty returns true if the update would not change anything
func (u StateUpdate) IsEmpty() bool {
	return u.On == nil && u.Bri == nil && u.Hue == nil && u.Sat == nil && u.TransitionTime == nil
}

// Merge returns u with every field set in other overriding it
func (u StateUpdate) Merge(other StateUpdate) StateUpdate {
	if other.On != nil {
		u.On = other.On
	}
	if other.Bri != nil {
		u.Bri = other.Bri
	}
	if other.Hue != nil {
		u.Hue = other.Hue
	}
	if other.Sat != nil {
		u.Sat = other.Sat
	}
	if other.TransitionTime != nil {
		u.TransitionTime = other.TransitionTime
	}
	return u
}

// Validate checks that every set field is within the device range
func (u StateUpdate) Validate() error {
	if u.Bri != nil && (*u.Bri < 0 || *u.Bri > MaxBrightness) {
		return fmt.Errorf("brightness %d out of range 0-%d", *u.Bri, MaxBrightness)
	}
	if u.Hue != nil && (*u.Hue < 0 || *u.Hue > MaxHue) {
		return fmt.Errorf("hue %d out of range 0-%d", *u.Hue, MaxHue)
	}
	if u.Sat != nil && (*u.Sat < 0 || *u.Sat > MaxSaturation) {
		return fmt.Errorf("saturation %d out of range 0-%d", *u.Sat, MaxSaturation)
	}
	if u.TransitionTime != nil && *u.TransitionTime < 0 {
		return fmt.Errorf("transition time %d must not be negative", *u.TransitionTime)
	}
	return nil
}

// SortIDs sorts light IDs numerically where possible ("2" before "10"),
// falling back to lexical order for non-numeric IDs
func SortIDs(ids []string) {
	sort.Slice(ids, func(i, j int) bool {
		a, errA := strconv.Atoi(ids[i])
		b, errB := strconv.Atoi(ids[j])
		switch {
		case errA == nil && errB == nil:
			return a < b
		case errA == nil:
			return true
		case errB == nil:
			return false
		}
		return ids[i] < ids[j]
	})
}

// Bool returns a pointer to b
func Bool(b bool) *bool {
	return &b
}

// Int returns a pointer to i
func Int(i int) *int {
	return &i
}

// String returns a pointer to s
func String(s string) *string {
	return &s
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
