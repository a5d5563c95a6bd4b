// Package alert implements the attention pulse and the capture/restore
// protocol that puts lights back the way they were.
package alert

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/angristan/hue-attention/internal/models"
	"github.com/angristan/hue-attention/internal/snapshot"
)

var (
	ErrInvalidArgument = errors.New("alert: invalid argument")
	ErrNoSavedState    = errors.New("alert: no saved state")
)

// LightClient is the part of a bridge client the alert flow needs
type LightClient interface {
	GetLightState(ctx context.Context, lightID string) (models.LightState, error)
	SetLightState(ctx context.Context, lightID string, update models.StateUpdate) error
}

// Capture reads the current state of every light and saves them as one
// snapshot at path, replacing any earlier snapshot. Nothing is written if
// any read fails.
func Capture(ctx context.Context, client LightClient, path string, ids []string) (*snapshot.Store, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: no lights to capture", ErrInvalidArgument)
	}

	store := snapshot.New()
	for _, id := range ids {
		if _, ok := store.Lights[id]; ok {
			continue
		}
		state, err := client.GetLightState(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("capture light %s: %w", id, err)
		}
		store.Put(id, state)

		log.Debug().
			Str("light", id).
			Interface("state", state).
			Msg("Captured light state")
	}

	if err := snapshot.Save(path, store); err != nil {
		return nil, err
	}

	log.Info().Int("lights", store.Len()).Str("path", path).Msg("Saved light snapshot")
	return store, nil
}

// Restore writes every light in the snapshot at path back to its saved
// state and returns how many lights were written. Lights whose saved state
// carries no fields are skipped. The first failed write aborts the restore;
// lights already written stay restored.
func Restore(ctx context.Context, client LightClient, path, defaultLightID string) (int, error) {
	store, err := snapshot.Load(path)
	if errors.Is(err, snapshot.ErrNotFound) {
		return 0, ErrNoSavedState
	}
	if err != nil {
		return 0, err
	}
	if store.Len() == 0 {
		return 0, ErrNoSavedState
	}

	restored := 0
	for _, key := range store.IDs() {
		state := store.Lights[key]

		update := state.RestoreUpdate()
		if update.IsEmpty() {
			log.Debug().Str("key", key).Msg("Nothing to restore")
			continue
		}

		target := restoreTarget(state, key, defaultLightID)
		if target == "" {
			return restored, fmt.Errorf("%w: saved state has no light id and no default light is configured", ErrInvalidArgument)
		}

		if err := client.SetLightState(ctx, target, update); err != nil {
			return restored, fmt.Errorf("restore light %s: %w", target, err)
		}
		restored++

		log.Debug().
			Str("light", target).
			Interface("update", update).
			Msg("Restored light state")
	}

	return restored, nil
}

// restoreTarget picks the light a saved state is written back to: the id
// recorded in the state, then the snapshot key, then the configured light
func restoreTarget(state models.LightState, key, defaultLightID string) string {
	if id := state.ID(); id != "" {
		return id
	}
	if key != "" {
		return key
	}
	return defaultLightID
}
