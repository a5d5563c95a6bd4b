package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog/log"

	"github.com/angristan/hue-attention/internal/alert"
	"github.com/angristan/hue-attention/internal/api"
	"github.com/angristan/hue-attention/internal/config"
	"github.com/angristan/hue-attention/internal/models"
	"github.com/angristan/hue-attention/internal/tui/components"
	"github.com/angristan/hue-attention/internal/tui/styles"
)

func (a *App) cmdRegister(ctx context.Context, args []string) error {
	fs := a.flagSet("register", "Register with the Hue bridge and print the new username.")
	bridgeIP := fs.String("bridge-ip", "", "Bridge IP address (required)")
	deviceType := fs.String("device-type", api.DefaultDeviceType, "Device type reported to the bridge")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if *bridgeIP == "" {
		return &usageError{msg: "--bridge-ip is required"}
	}

	username, err := a.newClient(*bridgeIP, "").Register(ctx, *deviceType)
	if err != nil {
		if errors.Is(err, api.ErrLinkButtonNotPressed) {
			return failf(err, "Registration failed. %s and run register again.", linkButtonHint)
		}
		return err
	}

	fmt.Fprintln(a.Stdout, username)
	return nil
}

func (a *App) cmdConfig(ctx context.Context, args []string) error {
	fs := a.flagSet("config", "Save bridge credentials.")
	var cfg config.Config
	fs.StringVar(&cfg.BridgeIP, "bridge-ip", "", "Bridge IP address (required)")
	fs.StringVar(&cfg.Username, "username", "", "Bridge username (required)")
	fs.StringVar(&cfg.LightID, "light-id", "", "Light ID to use for alerts (required)")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	var missing []string
	for _, name := range []string{"bridge-ip", "username", "light-id"} {
		if fs.Lookup(name).Value.String() == "" {
			missing = append(missing, "--"+name)
		}
	}
	if len(missing) > 0 {
		return &usageError{msg: fmt.Sprintf("missing required flags: %s", strings.Join(missing, ", "))}
	}

	path, err := a.resolveConfigPath()
	if err != nil {
		return err
	}
	if err := cfg.Save(path); err != nil {
		return err
	}

	a.printSuccess("Saved config to %s", path)
	return nil
}

func (a *App) cmdListLights(ctx context.Context, args []string) error {
	fs := a.flagSet("list-lights", "List light IDs and names.")
	bridgeIP := fs.String("bridge-ip", "", "Bridge IP address (defaults to config)")
	username := fs.String("username", "", "Bridge username (defaults to config)")
	details := fs.Bool("details", false, "Show on/off, color and brightness of each light")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	host, user := *bridgeIP, *username
	if (host == "" || user == "") && !a.demo {
		path, err := a.resolveConfigPath()
		if err != nil {
			return err
		}
		if !config.Exists(path) {
			return failf(config.ErrNotFound, "No config found. Run setup first.")
		}
		cfg, err := config.Load(path)
		if err != nil {
			return err
		}
		if host == "" {
			host = cfg.BridgeIP
		}
		if user == "" {
			user = cfg.Username
		}
	}

	client := a.newClient(host, user)
	lights, err := client.ListLights(ctx)
	if err != nil {
		return err
	}
	ids := sortedLights(lights)

	if !*details {
		for _, id := range ids {
			fmt.Fprintf(a.Stdout, "%s\t%s\n", id, lights[id])
		}
		return nil
	}

	nameWidth := nameColumnWidth(lights)
	for _, id := range ids {
		var state *models.LightState
		if s, err := client.GetLightState(ctx, id); err != nil {
			log.Debug().Err(err).Str("light", id).Msg("Could not read light state")
		} else {
			state = &s
		}
		fmt.Fprintln(a.Stdout, components.RenderLightRow(id, lights[id], state, nameWidth))
	}
	return nil
}

func (a *App) cmdAlert(ctx context.Context, args []string) error {
	fs := a.flagSet("alert", "Pulse the light red until interrupted, then restore it.")
	period := fs.Float64("period", alert.DefaultPeriod, "Seconds per pulse cycle")
	lowBri := fs.Int("low-bri", alert.DefaultLowBrightness, "Low brightness level during pulse")
	urgent := fs.Bool("urgent", false, "Also pulse the urgent light, alternating with the main one")
	urgentLight := fs.String("urgent-light", "3", "Light ID added by --urgent")
	lights := fs.StringArray("light", nil, "Light ID to pulse, repeatable (defaults to config)")
	nonInteractive := fs.Bool("non-interactive", false, "Fail instead of prompting when config is missing")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	path, err := a.resolveConfigPath()
	if err != nil {
		return err
	}
	cfg, err := a.ensureConfig(ctx, path, *nonInteractive)
	if err != nil {
		return err
	}

	ids := *lights
	if len(ids) == 0 {
		ids = []string{cfg.LightID}
	}
	if *urgent {
		ids = append(ids, *urgentLight)
	}
	ids = uniqueIDs(ids)

	client := a.newClient(cfg.BridgeIP, cfg.Username)
	pulser := alert.NewPulser(client, *period, *lowBri)

	fmt.Fprintln(a.Stderr, styles.StyleTextMuted.Render(
		fmt.Sprintf("Pulsing light %s. Press Ctrl+C to stop and restore.", joinIDs(ids))))

	if err := alert.Alert(ctx, client, config.StatePath(path), ids, pulser, cfg.LightID); err != nil {
		if errors.Is(err, alert.ErrInvalidArgument) {
			return &usageError{msg: err.Error()}
		}
		return err
	}

	a.printSuccess("Alert stopped and light restored.")
	return nil
}

func (a *App) cmdRestore(ctx context.Context, args []string) error {
	fs := a.flagSet("restore", "Restore the last captured state.")
	nonInteractive := fs.Bool("non-interactive", false, "Fail instead of prompting when config is missing")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	path, err := a.resolveConfigPath()
	if err != nil {
		return err
	}
	cfg, err := a.ensureConfig(ctx, path, *nonInteractive)
	if err != nil {
		return err
	}

	client := a.newClient(cfg.BridgeIP, cfg.Username)
	if _, err := alert.Restore(ctx, client, config.StatePath(path), cfg.LightID); err != nil {
		return err
	}

	a.printSuccess("Light state restored.")
	return nil
}

func (a *App) cmdSet(ctx context.Context, args []string) error {
	fs := a.flagSet("set", "Set any light state and save previous state.")
	lightID := fs.String("light-id", "", "Light ID to control (defaults to config)")
	preset := fs.String("preset", "", fmt.Sprintf("Apply a color preset (%s)", strings.Join(models.PresetNames(), ", ")))
	on := fs.Bool("on", false, "Turn the light on")
	off := fs.Bool("off", false, "Turn the light off")
	bri := fs.Int("bri", 0, fmt.Sprintf("Brightness 0-%d", models.MaxBrightness))
	hue := fs.Int("hue", 0, fmt.Sprintf("Hue 0-%d", models.MaxHue))
	sat := fs.Int("sat", 0, fmt.Sprintf("Saturation 0-%d", models.MaxSaturation))
	transition := fs.Int("transition", 0, "Transition time in multiples of 100ms")
	nonInteractive := fs.Bool("non-interactive", false, "Fail instead of prompting when config is missing")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if *on && *off {
		return &usageError{msg: "--on and --off cannot be combined"}
	}

	var update models.StateUpdate
	if *preset != "" {
		p, err := models.LookupPreset(*preset)
		if err != nil {
			return &usageError{msg: err.Error()}
		}
		update = p
	}
	switch {
	case *on:
		update.On = models.Bool(true)
	case *off:
		update.On = models.Bool(false)
	}
	if fs.Changed("bri") {
		update.Bri = models.Int(*bri)
	}
	if fs.Changed("hue") {
		update.Hue = models.Int(*hue)
	}
	if fs.Changed("sat") {
		update.Sat = models.Int(*sat)
	}
	// A transition alone changes nothing
	if update.IsEmpty() {
		return failf(alert.ErrInvalidArgument, "No state provided. Use --on/--off, --bri, --hue, or --sat.")
	}
	if fs.Changed("transition") {
		update.TransitionTime = models.Int(*transition)
	}
	if err := update.Validate(); err != nil {
		return failf(alert.ErrInvalidArgument, "Invalid state: %v.", err)
	}

	path, err := a.resolveConfigPath()
	if err != nil {
		return err
	}
	cfg, err := a.ensureConfig(ctx, path, *nonInteractive)
	if err != nil {
		return err
	}

	id := *lightID
	if id == "" {
		id = cfg.LightID
	}

	client := a.newClient(cfg.BridgeIP, cfg.Username)
	if _, err := alert.Capture(ctx, client, config.StatePath(path), []string{id}); err != nil {
		return err
	}
	if err := client.SetLightState(ctx, id, update); err != nil {
		return err
	}

	a.printSuccess("Light %s updated.", id)
	return nil
}

// nameColumnWidth returns the display width of the longest light name
func nameColumnWidth(lights map[string]string) int {
	width := 0
	for _, name := range lights {
		width = max(width, lipgloss.Width(name))
	}
	return width
}

// uniqueIDs drops repeated IDs, keeping the first occurrence
func uniqueIDs(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
