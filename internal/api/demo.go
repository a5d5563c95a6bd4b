package api

import (
	"context"
	"fmt"
	"sync"

	"github.com/angristan/hue-attention/internal/models"
)

// DemoUsername is the credential handed out by the demo bridge
const DemoUsername = "demo-user"

// demoResourceNotAvailable is the v1 error type for unknown resources
const demoResourceNotAvailable = 3

// DemoWrite records a state write received by the demo bridge
type DemoWrite struct {
	LightID string
	Update  models.StateUpdate
}

type demoLight struct {
	name  string
	state models.LightState
}

// DemoBridge implements BridgeClient for demo mode without a real Hue bridge.
// All state changes are maintained in memory.
type DemoBridge struct {
	lights map[string]*demoLight
	writes []DemoWrite
	mu     sync.RWMutex
}

// NewDemoBridge creates a demo bridge with sample lights
func NewDemoBridge() *DemoBridge {
	d := &DemoBridge{
		lights: make(map[string]*demoLight),
	}
	d.initializeDemoData()
	return d
}

func (d *DemoBridge) initializeDemoData() {
	d.lights["1"] = &demoLight{
		name: "Living Room Lamp",
		state: models.LightState{
			On: models.Bool(true), Bri: models.Int(200), Hue: models.Int(8418), Sat: models.Int(140),
		},
	}
	d.lights["2"] = &demoLight{
		name: "Desk Strip",
		state: models.LightState{
			On: models.Bool(false), Bri: models.Int(120), Hue: models.Int(46920), Sat: models.Int(254),
		},
	}
	// White-only bulb: no hue/sat
	d.lights["3"] = &demoLight{
		name: "Hallway",
		state: models.LightState{
			On: models.Bool(true), Bri: models.Int(254),
		},
	}
}

// Host returns the demo bridge host
func (d *DemoBridge) Host() string {
	return "demo-bridge.local"
}

func (d *DemoBridge) notFound(op, lightID string) error {
	return &CapabilityError{Op: op, Err: &apiError{
		Type:        demoResourceNotAvailable,
		Address:     "/lights/" + lightID,
		Description: fmt.Sprintf("resource, /lights/%s, not available", lightID),
	}}
}

// GetLightState returns a copy of a demo light's state
func (d *DemoBridge) GetLightState(ctx context.Context, lightID string) (models.LightState, error) {
	if err := ctx.Err(); err != nil {
		return models.LightState{}, &CapabilityError{Op: "get light " + lightID, Err: err}
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	light, ok := d.lights[lightID]
	if !ok {
		return models.LightState{}, d.notFound("get light "+lightID, lightID)
	}
	// RestoreUpdate deep-copies the set fields
	u := light.state.RestoreUpdate()
	return models.LightState{On: u.On, Bri: u.Bri, Hue: u.Hue, Sat: u.Sat}, nil
}

// ListLights returns the demo light names keyed by ID
func (d *DemoBridge) ListLights(ctx context.Context) (map[string]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, &CapabilityError{Op: "list lights", Err: err}
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	lights := make(map[string]string, len(d.lights))
	for id, light := range d.lights {
		lights[id] = light.name
	}
	return lights, nil
}

// SetLightState applies a partial update to a demo light
func (d *DemoBridge) SetLightState(ctx context.Context, lightID string, update models.StateUpdate) error {
	op := "set light " + lightID
	if err := ctx.Err(); err != nil {
		return &CapabilityError{Op: op, Err: err}
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	light, ok := d.lights[lightID]
	if !ok {
		return d.notFound(op, lightID)
	}

	update = update.Clone()
	d.writes = append(d.writes, DemoWrite{LightID: lightID, Update: update})

	if update.On != nil {
		light.state.On = models.Bool(*update.On)
	}
	if update.Bri != nil {
		light.state.Bri = models.Int(*update.Bri)
	}
	// White-only bulbs ignore color
	if light.state.Hue != nil && update.Hue != nil {
		light.state.Hue = models.Int(*update.Hue)
	}
	if light.state.Sat != nil && update.Sat != nil {
		light.state.Sat = models.Int(*update.Sat)
	}
	return nil
}

// Register always succeeds on the demo bridge
func (d *DemoBridge) Register(ctx context.Context, deviceType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", &CapabilityError{Op: "register", Err: err}
	}
	return DemoUsername, nil
}

// Writes returns every state write received so far, oldest first
func (d *DemoBridge) Writes() []DemoWrite {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]DemoWrite, len(d.writes))
	copy(out, d.writes)
	return out
}
