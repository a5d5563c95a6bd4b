package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/angristan/hue-attention/internal/api"
	"github.com/angristan/hue-attention/internal/config"
	"github.com/angristan/hue-attention/internal/tui"
	"github.com/angristan/hue-attention/internal/tui/styles"
)

const (
	linkButtonHint    = "Press the link button on your Hue bridge"
	bridgeInfoTimeout = 2 * time.Second
)

type setupOptions struct {
	bridgeIP       string
	username       string
	lightID        string
	nonInteractive bool
}

func (a *App) cmdSetup(ctx context.Context, args []string) error {
	fs := a.flagSet("setup", "Discover bridge, register, and save config interactively.")
	var opts setupOptions
	fs.StringVar(&opts.bridgeIP, "bridge-ip", "", "Bridge IP address (skips discovery)")
	fs.StringVar(&opts.username, "username", "", "Existing bridge username (skips registration)")
	fs.StringVar(&opts.lightID, "light-id", "", "Light ID to use for alerts")
	fs.BoolVar(&opts.nonInteractive, "non-interactive", false, "Fail instead of prompting")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	path, err := a.resolveConfigPath()
	if err != nil {
		return err
	}
	_, err = a.setupConfig(ctx, path, opts)
	return err
}

// setupConfig walks through bridge selection, pairing and light selection,
// then saves the result to path
func (a *App) setupConfig(ctx context.Context, path string, opts setupOptions) (*config.Config, error) {
	host, err := a.pickBridge(ctx, opts)
	if err != nil {
		return nil, err
	}

	username := opts.username
	if username == "" {
		if opts.nonInteractive {
			return nil, failf(nil, "Username is required in non-interactive mode. Run setup interactively or provide --username.")
		}
		username, err = a.pair(ctx, host)
		if err != nil {
			return nil, err
		}
	}

	lightID := opts.lightID
	if lightID == "" {
		lightID, err = a.pickLight(ctx, a.newClient(host, username), opts.nonInteractive)
		if err != nil {
			return nil, err
		}
	}

	cfg := &config.Config{BridgeIP: host, Username: username, LightID: lightID}
	if err := cfg.Save(path); err != nil {
		return nil, err
	}
	log.Info().Str("path", path).Str("bridge", host).Str("light", lightID).Msg("Config saved")

	a.printSuccess("Saved config to %s", path)
	return cfg, nil
}

func (a *App) discover(ctx context.Context) ([]api.DiscoveredBridge, error) {
	if a.demo {
		demo := a.newClient("", "")
		return []api.DiscoveredBridge{{Host: demo.Host(), Name: "Demo bridge"}}, nil
	}
	return tui.Wait(ctx, a.Prompter, "Discovering Hue bridges...", "", func(ctx context.Context) ([]api.DiscoveredBridge, error) {
		return api.DiscoverWithFallback(ctx, a.DiscoveryURL, a.DiscoveryTimeout)
	})
}

func (a *App) pickBridge(ctx context.Context, opts setupOptions) (string, error) {
	if opts.bridgeIP != "" {
		return opts.bridgeIP, nil
	}

	bridges, err := a.discover(ctx)
	if err != nil {
		if opts.nonInteractive || errors.Is(err, tui.ErrAborted) {
			return "", failf(err, "Bridge discovery failed: %v", err)
		}
		// Manual entry is still possible
		fmt.Fprintln(a.Stderr, styles.StyleWarning.Render(fmt.Sprintf("Bridge discovery failed: %v", err)))
		bridges = nil
	}

	if len(bridges) == 1 {
		log.Debug().Str("host", bridges[0].Host).Msg("Using the only discovered bridge")
		return bridges[0].Host, nil
	}
	if opts.nonInteractive {
		if len(bridges) == 0 {
			return "", failf(nil, "No Hue bridges found on the network.")
		}
		return "", failf(nil, "Multiple Hue bridges found. Pass --bridge-ip or run setup interactively.")
	}

	title := "Select a Hue bridge"
	if len(bridges) == 0 {
		title = "No Hue bridges found on the network"
	}
	labels := make([]string, len(bridges))
	for i, b := range bridges {
		labels[i] = b.Label()
	}

	choice, err := a.Prompter.ChooseOrEnter(title, labels, "Enter IP manually...", "Bridge IP")
	if err != nil {
		return "", err
	}
	if choice.Index < 0 {
		return choice.Manual, nil
	}
	return bridges[choice.Index].Host, nil
}

// pair waits for the user to press the link button and returns the new
// username
func (a *App) pair(ctx context.Context, host string) (string, error) {
	client := a.newClient(host, "")

	if !a.demo {
		a.describeBridge(ctx, host)
	}
	if !a.Prompter.Interactive {
		if err := a.Prompter.Confirm(linkButtonHint + ", then press Enter to register."); err != nil {
			return "", err
		}
	}

	label := fmt.Sprintf("Registering with %s...", host)
	username, err := tui.Wait(ctx, a.Prompter, label, linkButtonHint, func(ctx context.Context) (string, error) {
		return api.WaitForRegistration(ctx, client, api.DefaultDeviceType, a.PairingTimeout, a.PairingInterval)
	})
	switch {
	case err == nil:
		return username, nil
	case errors.Is(err, api.ErrPairingTimeout):
		return "", failf(err, "Registration failed. The link button was not pressed within %s.", a.PairingTimeout)
	case errors.Is(err, tui.ErrAborted), errors.Is(err, context.Canceled):
		return "", err
	}
	return "", failf(err, "Registration failed. %v", err)
}

// describeBridge prints what the bridge says about itself. A bridge that does
// not answer is not fatal here; registration reports the real error.
func (a *App) describeBridge(ctx context.Context, host string) {
	info, err := api.GetBridgeConfig(ctx, host, bridgeInfoTimeout)
	if err != nil {
		log.Debug().Err(err).Str("host", host).Msg("Could not read bridge config")
		return
	}
	fmt.Fprintln(a.Stderr, styles.StyleTextMuted.Render(
		fmt.Sprintf("Found %s (%s, API %s)", info.Name, info.BridgeID, info.APIVersion)))
}

func (a *App) pickLight(ctx context.Context, client api.BridgeClient, nonInteractive bool) (string, error) {
	lights, err := client.ListLights(ctx)
	if err != nil {
		return "", err
	}
	if len(lights) == 0 {
		return "", failf(nil, "No lights found on the Hue bridge.")
	}

	ids := sortedLights(lights)
	if len(ids) == 1 {
		return ids[0], nil
	}
	if nonInteractive {
		return "", failf(nil, "Multiple lights found. Pass --light-id or run setup interactively.")
	}

	options := make([]string, len(ids))
	for i, id := range ids {
		options[i] = fmt.Sprintf("%s: %s", id, lights[id])
	}
	idx, err := a.Prompter.Choose("Select a light to use for alerts", options)
	if err != nil {
		return "", err
	}
	return ids[idx], nil
}
