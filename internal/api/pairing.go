package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

// DefaultPairingInterval is the delay between registration attempts
const DefaultPairingInterval = time.Second

// Registrar is the part of a bridge client needed for pairing
type Registrar interface {
	Register(ctx context.Context, deviceType string) (string, error)
}

// WaitForRegistration retries Register until the user presses the link
// button on the bridge or the timeout elapses. Network errors are retried
// too since the bridge may be briefly unreachable while the button is pressed.
func WaitForRegistration(ctx context.Context, client Registrar, deviceType string, timeout, interval time.Duration) (string, error) {
	if interval <= 0 {
		interval = DefaultPairingInterval
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	attempt := 0
	for {
		attempt++
		username, err := client.Register(ctx, deviceType)
		if err == nil {
			return username, nil
		}

		var capErr *CapabilityError
		var bridgeErr *apiError
		switch {
		case errors.Is(err, ErrLinkButtonNotPressed):
			log.Debug().Int("attempt", attempt).Msg("Waiting for link button")
		case errors.As(err, &bridgeErr):
			return "", err
		case errors.As(err, &capErr) && capErr.StatusCode == 0 && ctx.Err() == nil:
			// No response at all, retry
			log.Debug().Err(err).Int("attempt", attempt).Msg("Bridge unreachable, retrying")
		default:
			if ctx.Err() != nil {
				return "", pairingContextErr(ctx)
			}
			return "", err
		}

		select {
		case <-ctx.Done():
			return "", pairingContextErr(ctx)
		case <-ticker.C:
		}
	}
}

func pairingContextErr(ctx context.Context) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return ErrPairingTimeout
	}
	return ctx.Err()
}

// BridgeConfig is the unauthenticated part of the bridge configuration
type BridgeConfig struct {
	Name       string `json:"name"`
	BridgeID   string `json:"bridgeid"`
	ModelID    string `json:"modelid"`
	APIVersion string `json:"apiversion"`
	SWVersion  string `json:"swversion"`
}

// GetBridgeConfig retrieves the public bridge configuration. It answers
// without a username, which makes it a cheap reachability probe.
func GetBridgeConfig(ctx context.Context, host string, timeout time.Duration) (cfg *BridgeConfig, err error) {
	const op = "get bridge config"

	client := &http.Client{Timeout: timeout}

	url := fmt.Sprintf("http://%s/api/config", host)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &CapabilityError{Op: op, Err: err}
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, &CapabilityError{Op: op, Err: err}
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil && err == nil {
			err = &CapabilityError{Op: op, Err: fmt.Errorf("failed to close response body: %w", cerr)}
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, &CapabilityError{Op: op, StatusCode: resp.StatusCode, Err: errors.New("unexpected status")}
	}

	cfg = &BridgeConfig{}
	if err := json.NewDecoder(resp.Body).Decode(cfg); err != nil {
		return nil, &CapabilityError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to decode bridge config: %w", err)}
	}

	return cfg, nil
}
