package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config stores connection details for the Hue bridge and the light to alert on
type Config struct {
	// IP address or hostname of the bridge
	BridgeIP string `json:"bridge_ip" yaml:"bridge_ip"`
	// Credential issued by the bridge during registration
	Username string `json:"username" yaml:"username"`
	// Default light to control
	LightID string `json:"light_id" yaml:"light_id"`
}

var (
	ErrNotFound   = errors.New("config not found")
	ErrCorrupt    = errors.New("config file is corrupt")
	ErrIncomplete = errors.New("config is incomplete")
)

const (
	appDirName    = "coco_attention"
	stateFileName = "last_state.json"
)

// configDir returns the configuration directory path
func configDir() (string, error) {
	// Check XDG_CONFIG_HOME first
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, appDirName), nil
	}

	// Fall back to ~/.config
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appDirName), nil
}

// DefaultPath returns the full path to the default config file
func DefaultPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// ExpandPath resolves a leading ~ to the user's home directory
func ExpandPath(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

// StatePath returns the snapshot file that belongs to a config file
func StatePath(configPath string) string {
	return filepath.Join(filepath.Dir(configPath), stateFileName)
}

// Exists reports whether a config file is present at path
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// fileConfig mirrors Config on disk; light_id may have been written as a number
type fileConfig struct {
	BridgeIP string   `json:"bridge_ip" yaml:"bridge_ip"`
	Username string   `json:"username" yaml:"username"`
	LightID  lightRef `json:"light_id" yaml:"light_id"`
}

// lightRef accepts a light ID encoded as a string or a number
type lightRef string

func (r *lightRef) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*r = lightRef(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("light_id must be a string or number: %w", err)
	}
	*r = lightRef(n.String())
	return nil
}

func (r *lightRef) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("light_id must be a scalar, line %d", value.Line)
	}
	*r = lightRef(value.Value)
	return nil
}

// Load reads the configuration from disk
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, err
	}

	var raw fileConfig
	if isYAML(path) {
		err = yaml.Unmarshal(data, &raw)
	} else {
		err = json.Unmarshal(data, &raw)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, path, err)
	}

	return &Config{
		BridgeIP: raw.BridgeIP,
		Username: raw.Username,
		LightID:  string(raw.LightID),
	}, nil
}

// Save writes the configuration to disk
func (c *Config) Save(path string) error {
	// Ensure config directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return err
	}

	// Sibling temp file plus rename, unique per call so concurrent saves
	// never share it
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0600); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

// Validate returns ErrIncomplete if any field is empty
func (c *Config) Validate() error {
	var missing []string
	if c.BridgeIP == "" {
		missing = append(missing, "bridge_ip")
	}
	if c.Username == "" {
		missing = append(missing, "username")
	}
	if c.LightID == "" {
		missing = append(missing, "light_id")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrIncomplete, strings.Join(missing, ", "))
	}
	return nil
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}
