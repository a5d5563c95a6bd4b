package api

import (
	"errors"
	"fmt"
)

var (
	ErrLinkButtonNotPressed = errors.New("link button not pressed")
	ErrPairingTimeout       = errors.New("pairing timeout - link button was not pressed")
	ErrUnexpectedDiscovery  = errors.New("unexpected response from Hue discovery service")
)

// CapabilityError is returned for any failed exchange with the bridge or the
// discovery service: transport errors, timeouts, non-success statuses and
// error payloads alike.
type CapabilityError struct {
	// Operation that failed, e.g. "get light 3"
	Op string
	// HTTP status code, 0 if no response was received
	StatusCode int
	Err        error
}

func (e *CapabilityError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *CapabilityError) Unwrap() error {
	return e.Err
}

// apiError is an error entry of a v1 response array
type apiError struct {
	Type        int    `json:"type"`
	Address     string `json:"address"`
	Description string `json:"description"`
}

func (e *apiError) Error() string {
	if e.Address != "" {
		return fmt.Sprintf("API error %d at %s: %s", e.Type, e.Address, e.Description)
	}
	return fmt.Sprintf("API error %d: %s", e.Type, e.Description)
}

// linkButtonErrorType is the v1 error type for an unpressed link button
const linkButtonErrorType = 101
