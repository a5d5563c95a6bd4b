package cli

import (
	"context"
	"fmt"

	"github.com/angristan/hue-attention/internal/api"
	"github.com/angristan/hue-attention/internal/netcheck"
	"github.com/angristan/hue-attention/internal/tui/styles"
)

func (a *App) cmdDiagnose(ctx context.Context, args []string) error {
	fs := a.flagSet("diagnose", "Check Hue bridge reachability.")
	timeout := fs.Duration("timeout", netcheck.DefaultTimeout, "Timeout of each TCP/HTTP check")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	localIP := netcheck.LocalIP()
	if localIP != "" {
		fmt.Fprintf(a.Stdout, "Local IP: %s\n", localIP)
	} else {
		fmt.Fprintln(a.Stdout, "Local IP: unknown")
	}

	fmt.Fprintln(a.Stdout, "Discovering Hue bridges...")
	bridges, err := api.DiscoverAll(ctx, a.DiscoveryURL, a.DiscoveryTimeout)
	if err != nil {
		return failf(err, "Discovery failed: %v", err)
	}
	if len(bridges) == 0 {
		return failf(nil, "No Hue bridges found via discovery.")
	}

	targets := make([]netcheck.Target, len(bridges))
	for i, b := range bridges {
		targets[i] = netcheck.Target{Host: b.Host, BridgeID: b.BridgeID}
	}

	for _, r := range netcheck.ProbeAll(ctx, localIP, targets, *timeout) {
		a.printReport(r)
	}

	fmt.Fprintln(a.Stdout, "If tcp is unreachable, your device cannot reach the bridge on the LAN.")
	fmt.Fprintln(a.Stdout, "Common causes: guest Wi-Fi, AP isolation, different subnet, or VPN.")
	return nil
}

func (a *App) printReport(r netcheck.Report) {
	id := r.BridgeID
	if id == "" {
		id = "unknown"
	}
	fmt.Fprintf(a.Stdout, "- Bridge %s at %s\n", id, r.Host)

	if r.Host == "" {
		fmt.Fprintln(a.Stdout, "  tcp: "+styles.StyleWarning.Render("unknown (missing IP)"))
		return
	}
	if r.Subnet != "" {
		fmt.Fprintf(a.Stdout, "  subnet: %s\n", r.Subnet)
	}

	if r.TCPErr != nil {
		fmt.Fprintln(a.Stdout, "  tcp: "+styles.StyleError.Render(fmt.Sprintf("unreachable (%v)", r.TCPErr)))
	} else {
		fmt.Fprintln(a.Stdout, "  tcp: "+styles.StyleSuccess.Render("reachable"))
	}

	if r.HTTPErr != nil {
		fmt.Fprintln(a.Stdout, "  http: "+styles.StyleError.Render(fmt.Sprintf("http error (%v)", r.HTTPErr)))
	} else {
		fmt.Fprintf(a.Stdout, "  http: http %d\n", r.HTTPStatus)
	}
}
