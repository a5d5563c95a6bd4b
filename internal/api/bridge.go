package api

import (
	"context"

	"github.com/angristan/hue-attention/internal/models"
)

// BridgeClient defines the interface for interacting with a Hue bridge.
// This abstraction allows for both real bridge connections and demo mode.
type BridgeClient interface {
	// GetLightState reads a light's current state. Fields the bridge does
	// not report are left unset.
	GetLightState(ctx context.Context, lightID string) (models.LightState, error)

	// ListLights returns light names keyed by light ID
	ListLights(ctx context.Context) (map[string]string, error)

	// SetLightState writes a partial state update to a light
	SetLightState(ctx context.Context, lightID string, update models.StateUpdate) error

	// Register asks the bridge for a new credential. Fails with
	// ErrLinkButtonNotPressed unless the link button was pressed recently.
	Register(ctx context.Context, deviceType string) (string, error)

	// Metadata
	Host() string
}

// Compile-time checks that both bridges implement BridgeClient
var (
	_ BridgeClient = (*HueBridge)(nil)
	_ BridgeClient = (*DemoBridge)(nil)
)
