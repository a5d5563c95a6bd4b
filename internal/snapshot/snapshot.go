// Package snapshot persists the light states captured before a mutating
// command so they can be restored later.
package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/angristan/hue-attention/internal/models"
)

var (
	ErrNotFound = errors.New("snapshot not found")
	ErrCorrupt  = errors.New("snapshot file is corrupt")
)

// Store maps light IDs to their last captured state
type Store struct {
	Lights map[string]models.LightState `json:"lights"`
}

// New creates an empty store
func New() *Store {
	return &Store{Lights: make(map[string]models.LightState)}
}

// Put records a light's state under id. The record's LightID is always set
// to id so a single entry is enough to know which light to restore.
func (s *Store) Put(id string, state models.LightState) {
	if s.Lights == nil {
		s.Lights = make(map[string]models.LightState)
	}
	s.Lights[id] = state.WithID(id)
}

// Len returns the number of captured lights
func (s *Store) Len() int {
	return len(s.Lights)
}

// IDs returns the captured light IDs in bridge order
func (s *Store) IDs() []string {
	ids := make([]string, 0, len(s.Lights))
	for id := range s.Lights {
		ids = append(ids, id)
	}
	models.SortIDs(ids)
	return ids
}

// Load reads a snapshot file. Both the current mapping format and the older
// single-light format are accepted; the latter is upgraded in memory.
func Load(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, err
	}

	store, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, path, err)
	}
	return store, nil
}

// decode detects the format by probing for the top-level "lights" key
func decode(data []byte) (*Store, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, err
	}
	if probe == nil {
		return nil, errors.New("top-level value is null")
	}

	if raw, ok := probe["lights"]; ok {
		return decodeMapping(raw)
	}
	return decodeLegacy(data)
}

func decodeMapping(raw json.RawMessage) (*Store, error) {
	var lights map[string]models.LightState
	if err := json.Unmarshal(raw, &lights); err != nil {
		return nil, fmt.Errorf("lights: %w", err)
	}

	store := New()
	for id, state := range lights {
		if state.ID() == "" {
			state = state.WithID(id)
		}
		store.Lights[id] = state
	}
	return store, nil
}

// decodeLegacy wraps a bare light state as a single-entry store
func decodeLegacy(data []byte) (*Store, error) {
	var state models.LightState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("legacy state: %w", err)
	}

	store := New()
	store.Lights[state.ID()] = state
	return store, nil
}

// Save writes the store to path, replacing any previous snapshot
func Save(path string, store *Store) error {
	if store == nil {
		store = New()
	}
	lights := store.Lights
	if lights == nil {
		lights = map[string]models.LightState{}
	}

	data, err := json.MarshalIndent(Store{Lights: lights}, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	// Write to a sibling temp file and rename so readers never see a partial file
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}
