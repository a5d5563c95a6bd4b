package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"
)

type scriptedRegistrar struct {
	results []error
	calls   int
}

func (r *scriptedRegistrar) Register(ctx context.Context, deviceType string) (string, error) {
	i := r.calls
	r.calls++
	if i < len(r.results) {
		return "", r.results[i]
	}
	return "granted", nil
}

func TestWaitForRegistration(t *testing.T) {
	buttonErr := &CapabilityError{Op: "register", Err: ErrLinkButtonNotPressed}
	reg := &scriptedRegistrar{results: []error{buttonErr, buttonErr}}

	got, err := WaitForRegistration(context.Background(), reg, DefaultDeviceType, time.Second, time.Millisecond)
	if err != nil {
		t.Fatalf("WaitForRegistration failed: %v", err)
	}
	if got != "granted" {
		t.Errorf("Expected granted, got %q", got)
	}
	if reg.calls != 3 {
		t.Errorf("Expected 3 attempts, got %d", reg.calls)
	}
}

func TestWaitForRegistrationTimeout(t *testing.T) {
	buttonErr := &CapabilityError{Op: "register", Err: ErrLinkButtonNotPressed}
	results := make([]error, 1000)
	for i := range results {
		results[i] = buttonErr
	}
	reg := &scriptedRegistrar{results: results}

	_, err := WaitForRegistration(context.Background(), reg, DefaultDeviceType, 30*time.Millisecond, 5*time.Millisecond)
	if !errors.Is(err, ErrPairingTimeout) {
		t.Errorf("Expected ErrPairingTimeout, got %v", err)
	}
}

func TestWaitForRegistrationStopsOnBridgeError(t *testing.T) {
	bridgeErr := &CapabilityError{Op: "register", Err: &apiError{Type: 7, Description: "invalid value"}}
	reg := &scriptedRegistrar{results: []error{bridgeErr}}

	_, err := WaitForRegistration(context.Background(), reg, DefaultDeviceType, time.Second, time.Millisecond)
	if err == nil {
		t.Fatal("Expected error")
	}
	if reg.calls != 1 {
		t.Errorf("Expected a single attempt, got %d", reg.calls)
	}
}

func TestWaitForRegistrationCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	buttonErr := &CapabilityError{Op: "register", Err: ErrLinkButtonNotPressed}
	reg := &scriptedRegistrar{results: []error{buttonErr}}

	_, err := WaitForRegistration(ctx, reg, DefaultDeviceType, time.Second, time.Millisecond)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestGetBridgeConfig(t *testing.T) {
	b := newTestBridge(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/config" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		_, _ = io.WriteString(w, `{"name":"Philips hue","bridgeid":"001788FFFE123456","modelid":"BSB002","apiversion":"1.60.0"}`)
	})

	cfg, err := GetBridgeConfig(context.Background(), b.Host(), time.Second)
	if err != nil {
		t.Fatalf("GetBridgeConfig failed: %v", err)
	}
	if cfg.BridgeID != "001788FFFE123456" || cfg.ModelID != "BSB002" || cfg.APIVersion != "1.60.0" {
		t.Errorf("Unexpected config %+v", cfg)
	}
}

func TestGetBridgeConfigBadStatus(t *testing.T) {
	b := newTestBridge(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := GetBridgeConfig(context.Background(), b.Host(), time.Second)
	var capErr *CapabilityError
	if !errors.As(err, &capErr) || capErr.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("Expected CapabilityError with status 503, got %v", err)
	}
	if !strings.Contains(err.Error(), "503") {
		t.Errorf("Expected status in message, got %q", err.Error())
	}
}
