package api

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hashicorp/mdns"
)

func TestDiscoverCloud(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[
		  {"id":"001788fffe100001","internalipaddress":"192.168.1.20","port":443},
		  {"id":"001788fffe100002","internalipaddress":"192.168.1.21"},
		  {"id":"broken"}
		]`)
	}))
	defer srv.Close()

	bridges, err := DiscoverCloud(context.Background(), srv.URL, time.Second)
	if err != nil {
		t.Fatalf("DiscoverCloud failed: %v", err)
	}

	if len(bridges) != 2 {
		t.Fatalf("Expected 2 bridges, got %d: %+v", len(bridges), bridges)
	}
	if bridges[0].Host != "192.168.1.20" || bridges[0].BridgeID != "001788fffe100001" {
		t.Errorf("Unexpected first bridge %+v", bridges[0])
	}
	if bridges[1].Host != "192.168.1.21" {
		t.Errorf("Unexpected second bridge %+v", bridges[1])
	}
}

func TestDiscoverCloudEmptyList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[]`)
	}))
	defer srv.Close()

	bridges, err := DiscoverCloud(context.Background(), srv.URL, time.Second)
	if err != nil {
		t.Fatalf("DiscoverCloud failed: %v", err)
	}
	if len(bridges) != 0 {
		t.Errorf("Expected no bridges, got %+v", bridges)
	}
}

func TestDiscoverCloudRejectsNonList(t *testing.T) {
	for name, body := range map[string]string{
		"object":    `{"error":"rate limited"}`,
		"string":    `"nope"`,
		"empty":     ``,
		"truncated": `[{"id":"x"`,
	} {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.WriteString(w, body)
			}))
			defer srv.Close()

			bridges, err := DiscoverCloud(context.Background(), srv.URL, time.Second)
			if !errors.Is(err, ErrUnexpectedDiscovery) {
				t.Errorf("Expected ErrUnexpectedDiscovery, got %v", err)
			}
			var capErr *CapabilityError
			if !errors.As(err, &capErr) {
				t.Errorf("Expected CapabilityError, got %T", err)
			}
			if bridges != nil {
				t.Errorf("Expected no partial results, got %+v", bridges)
			}
		})
	}
}

func TestDiscoverCloudBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = io.WriteString(w, `[]`)
	}))
	defer srv.Close()

	_, err := DiscoverCloud(context.Background(), srv.URL, time.Second)
	var capErr *CapabilityError
	if !errors.As(err, &capErr) || capErr.StatusCode != http.StatusTooManyRequests {
		t.Errorf("Expected CapabilityError with status 429, got %v", err)
	}
}

func TestDiscoveredBridgeLabel(t *testing.T) {
	tests := []struct {
		bridge DiscoveredBridge
		want   string
	}{
		{DiscoveredBridge{Host: "10.0.0.2"}, "10.0.0.2"},
		{DiscoveredBridge{Host: "10.0.0.2", BridgeID: "abc"}, "10.0.0.2 (abc)"},
		{DiscoveredBridge{Host: "10.0.0.2", Name: "Hue"}, "10.0.0.2 (Hue)"},
		{DiscoveredBridge{Host: "10.0.0.2", Name: "Hue", BridgeID: "abc"}, "10.0.0.2 (Hue, abc)"},
	}

	for _, tt := range tests {
		if got := tt.bridge.Label(); got != tt.want {
			t.Errorf("Expected %q, got %q", tt.want, got)
		}
	}
}

func TestMergeBridges(t *testing.T) {
	seen := make(map[string]bool)
	merged := mergeBridges(nil, seen, []DiscoveredBridge{
		{Host: "10.0.0.2", BridgeID: "ABC"},
		{Host: "10.0.0.3"},
	})
	merged = mergeBridges(merged, seen, []DiscoveredBridge{
		{Host: "10.0.0.2", Name: "mdns copy without id"},
		{Host: "10.0.0.9", BridgeID: "abc", Name: "same bridge, new lease"},
		{Host: "10.0.0.3"},
		{Host: "10.0.0.4"},
	})

	if len(merged) != 3 {
		t.Fatalf("Expected 3 unique bridges, got %d: %+v", len(merged), merged)
	}
	if merged[0].BridgeID != "ABC" || merged[2].Host != "10.0.0.4" {
		t.Errorf("Expected first-seen entries in order, got %+v", merged)
	}
}

func TestBridgeFromEntry(t *testing.T) {
	entry := &mdns.ServiceEntry{
		Name:       "Hue Bridge - 0A0B0C._hue._tcp.local.",
		Host:       "001788fffe0a0b0c.local.",
		AddrV4:     net.ParseIP("192.168.1.20"),
		InfoFields: []string{"bridgeid=001788fffe0a0b0c", "modelid=BSB002", "junk"},
	}

	b, ok := bridgeFromEntry(entry)
	if !ok {
		t.Fatal("Expected a bridge")
	}
	if b.Host != "192.168.1.20" || b.BridgeID != "001788fffe0a0b0c" || b.ModelID != "BSB002" {
		t.Errorf("Unexpected bridge %+v", b)
	}

	entry.Name = ""
	if b, _ := bridgeFromEntry(entry); b.Name != "001788fffe0a0b0c.local" {
		t.Errorf("Expected host as name fallback, got %q", b.Name)
	}

	if _, ok := bridgeFromEntry(&mdns.ServiceEntry{Name: "v6 only"}); ok {
		t.Error("Entries without an IPv4 address should be skipped")
	}
}

func TestDiscoverMDNSExpiredContext(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), -time.Second)
	defer cancel()

	if _, err := DiscoverMDNS(ctx, time.Second); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected DeadlineExceeded, got %v", err)
	}
}
