package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/mdns"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// DefaultDiscoveryURL is the Philips Hue cloud discovery service
const DefaultDiscoveryURL = "https://discovery.meethue.com/"

// DiscoveredBridge represents a Hue bridge found during discovery
type DiscoveredBridge struct {
	// IP address of the bridge
	Host string
	// Unique bridge identifier
	BridgeID string
	// Model ID (e.g., "BSB002")
	ModelID string
	// Name from mDNS or cloud
	Name string
}

// Label returns a human readable description for selection lists
func (b DiscoveredBridge) Label() string {
	switch {
	case b.Name != "" && b.BridgeID != "":
		return fmt.Sprintf("%s (%s, %s)", b.Host, b.Name, b.BridgeID)
	case b.BridgeID != "":
		return fmt.Sprintf("%s (%s)", b.Host, b.BridgeID)
	case b.Name != "":
		return fmt.Sprintf("%s (%s)", b.Host, b.Name)
	}
	return b.Host
}

// hueService is the mDNS service type announced by Hue bridges
const hueService = "_hue._tcp"

// DiscoverMDNS browses the local network for Hue bridges
func DiscoverMDNS(ctx context.Context, timeout time.Duration) ([]DiscoveredBridge, error) {
	const op = "mdns discovery"

	// mdns.Query ignores ctx, so its deadline is folded into the timeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = min(timeout, time.Until(deadline))
	}
	if timeout <= 0 {
		return nil, &CapabilityError{Op: op, Err: context.DeadlineExceeded}
	}

	entries := make(chan *mdns.ServiceEntry, 16)
	collected := make(chan []DiscoveredBridge, 1)
	go func() {
		var found []DiscoveredBridge
		for entry := range entries {
			if b, ok := bridgeFromEntry(entry); ok {
				found = append(found, b)
			}
		}
		collected <- found
	}()

	params := mdns.DefaultParams(hueService)
	params.Entries = entries
	params.Timeout = timeout
	params.DisableIPv6 = true

	err := mdns.Query(params)
	close(entries)
	found := <-collected

	if err != nil {
		return nil, &CapabilityError{Op: op, Err: err}
	}

	log.Debug().Int("found", len(found)).Msg("mDNS discovery finished")
	return found, nil
}

// bridgeFromEntry reads a bridge from an mDNS answer. Bridges publish their
// id and model as TXT records ("bridgeid=...", "modelid=...").
func bridgeFromEntry(entry *mdns.ServiceEntry) (DiscoveredBridge, bool) {
	if entry == nil || entry.AddrV4 == nil {
		return DiscoveredBridge{}, false
	}

	b := DiscoveredBridge{Host: entry.AddrV4.String(), Name: entry.Name}
	for _, field := range entry.InfoFields {
		key, value, ok := strings.Cut(field, "=")
		if !ok {
			continue
		}
		switch key {
		case "bridgeid":
			b.BridgeID = value
		case "modelid":
			b.ModelID = value
		}
	}
	if b.Name == "" {
		b.Name = strings.TrimSuffix(entry.Host, ".")
	}
	return b, true
}

// nupnpResponse represents one entry of the Hue cloud discovery response
type nupnpResponse struct {
	ID                string `json:"id"`
	InternalIPAddress string `json:"internalipaddress"`
	Port              int    `json:"port"`
}

// DiscoverCloud discovers Hue bridges using the Philips Hue cloud service
// (NUPNP). Any response that is not a JSON list fails with
// ErrUnexpectedDiscovery; partial results are never returned.
func DiscoverCloud(ctx context.Context, url string, timeout time.Duration) (bridges []DiscoveredBridge, err error) {
	const op = "cloud discovery"

	client := &http.Client{Timeout: timeout}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &CapabilityError{Op: op, Err: fmt.Errorf("failed to create request: %w", err)}
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, &CapabilityError{Op: op, Err: err}
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil && err == nil {
			bridges = nil
			err = &CapabilityError{Op: op, Err: fmt.Errorf("failed to close response body: %w", cerr)}
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, &CapabilityError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("cloud discovery returned status %d", resp.StatusCode)}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &CapabilityError{Op: op, StatusCode: resp.StatusCode, Err: err}
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, &CapabilityError{Op: op, StatusCode: resp.StatusCode, Err: ErrUnexpectedDiscovery}
	}

	var results []nupnpResponse
	if err := json.Unmarshal(trimmed, &results); err != nil {
		return nil, &CapabilityError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("%w: %v", ErrUnexpectedDiscovery, err)}
	}

	result := make([]DiscoveredBridge, 0, len(results))
	for _, r := range results {
		if r.InternalIPAddress == "" {
			continue
		}
		result = append(result, DiscoveredBridge{
			Host:     r.InternalIPAddress,
			BridgeID: r.ID,
		})
	}

	return result, nil
}

// DiscoverAll asks the cloud service and mDNS at the same time and merges
// their answers, cloud entries first. It fails only when neither method found
// a bridge and at least one of them failed.
func DiscoverAll(ctx context.Context, cloudURL string, timeout time.Duration) ([]DiscoveredBridge, error) {
	var cloud, local []DiscoveredBridge
	var cloudErr, localErr error

	var g errgroup.Group
	g.Go(func() error {
		cloud, cloudErr = DiscoverCloud(ctx, cloudURL, timeout)
		return nil
	})
	g.Go(func() error {
		local, localErr = DiscoverMDNS(ctx, timeout)
		return nil
	})
	_ = g.Wait()

	if cloudErr != nil {
		log.Debug().Err(cloudErr).Msg("Cloud discovery failed")
	}
	if localErr != nil {
		log.Debug().Err(localErr).Msg("mDNS discovery failed")
	}

	seen := make(map[string]bool)
	found := mergeBridges(nil, seen, cloud)
	found = mergeBridges(found, seen, local)

	if len(found) == 0 {
		if err := errors.Join(cloudErr, localErr); err != nil {
			return nil, err
		}
	}
	return found, nil
}

// DiscoverWithFallback asks the cloud service first and falls back to mDNS
// when it fails or knows no bridge
func DiscoverWithFallback(ctx context.Context, cloudURL string, timeout time.Duration) ([]DiscoveredBridge, error) {
	bridges, err := DiscoverCloud(ctx, cloudURL, timeout)
	if err == nil && len(bridges) > 0 {
		return bridges, nil
	}
	if err != nil {
		log.Debug().Err(err).Msg("Cloud discovery failed, trying mDNS")
	}

	mdnsBridges, mdnsErr := DiscoverMDNS(ctx, timeout)
	if mdnsErr != nil {
		if err != nil {
			return nil, err
		}
		return nil, mdnsErr
	}
	return mergeBridges(nil, make(map[string]bool), mdnsBridges), nil
}

// mergeBridges appends the bridges of src not yet in seen. A bridge counts
// as seen when either its id or its host was seen before, so a cloud entry
// and an mDNS answer for the same bridge collapse into one.
func mergeBridges(dst []DiscoveredBridge, seen map[string]bool, src []DiscoveredBridge) []DiscoveredBridge {
	for _, b := range src {
		id := "id:" + strings.ToLower(b.BridgeID)
		host := "host:" + b.Host
		if seen[host] || (b.BridgeID != "" && seen[id]) {
			continue
		}
		seen[host] = true
		if b.BridgeID != "" {
			seen[id] = true
		}
		dst = append(dst, b)
	}
	return dst
}
