// Package netcheck holds the LAN reachability checks behind the diagnose
// command.
package netcheck

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	DefaultTimeout = 2 * time.Second
	BridgePort     = 80

	// A UDP "connection" sends no packet; it only selects the outbound interface
	probeAddr = "8.8.8.8:80"
)

// LocalIP returns the IPv4 address of the interface used for outbound
// traffic, or an empty string if there is no route
func LocalIP() string {
	conn, err := net.Dial("udp4", probeAddr)
	if err != nil {
		return ""
	}
	defer conn.Close()

	addr, ok := conn.LocalAddr().(*net.UDPAddr)
	if !ok || addr.IP.To4() == nil {
		return ""
	}
	return addr.IP.String()
}

// SameSubnet reports whether two IPv4 addresses share a /24 network, the
// usual layout of a home LAN
func SameSubnet(a, b string) bool {
	ipA := net.ParseIP(a).To4()
	ipB := net.ParseIP(b).To4()
	if ipA == nil || ipB == nil {
		return false
	}
	mask := net.CIDRMask(24, 32)
	return ipA.Mask(mask).Equal(ipB.Mask(mask))
}

// CheckTCP opens and closes a TCP connection to host:port
func CheckTCP(ctx context.Context, host string, port int, timeout time.Duration) error {
	dialer := net.Dialer{Timeout: timeout}
	conn, err := dialer.DialContext(ctx, "tcp", net.JoinHostPort(host, strconv.Itoa(port)))
	if err != nil {
		return err
	}
	return conn.Close()
}

// CheckHTTP requests the bridge's public config endpoint and returns the
// HTTP status. Any status counts as reachable.
func CheckHTTP(ctx context.Context, host string, timeout time.Duration) (status int, err error) {
	client := &http.Client{Timeout: timeout}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("http://%s/api/config", host), nil)
	if err != nil {
		return 0, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close response body: %w", cerr)
		}
	}()

	return resp.StatusCode, nil
}

// Target is a bridge to probe
type Target struct {
	Host     string
	BridgeID string
}

// Report is the outcome of probing one bridge
type Report struct {
	Target
	// "same", "different" or "" when the local IP is unknown
	Subnet     string
	TCPErr     error
	HTTPStatus int
	HTTPErr    error
}

// Probe runs the subnet, TCP and HTTP checks against one bridge
func Probe(ctx context.Context, localIP string, target Target, timeout time.Duration) Report {
	report := Report{Target: target}
	if target.Host == "" {
		report.TCPErr = errors.New("missing IP")
		return report
	}

	if localIP != "" {
		if SameSubnet(localIP, target.Host) {
			report.Subnet = "same"
		} else {
			report.Subnet = "different"
		}
	}

	report.TCPErr = CheckTCP(ctx, target.Host, BridgePort, timeout)
	report.HTTPStatus, report.HTTPErr = CheckHTTP(ctx, target.Host, timeout)
	return report
}

// ProbeAll probes every target concurrently. Reports keep the order of targets.
func ProbeAll(ctx context.Context, localIP string, targets []Target, timeout time.Duration) []Report {
	reports := make([]Report, len(targets))

	var g errgroup.Group
	g.SetLimit(4)
	for i, target := range targets {
		g.Go(func() error {
			reports[i] = Probe(ctx, localIP, target, timeout)
			return nil
		})
	}
	_ = g.Wait()

	return reports
}
