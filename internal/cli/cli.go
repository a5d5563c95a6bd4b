// Package cli maps hue-attention subcommands onto the bridge, snapshot and
// alert packages.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"

	"github.com/angristan/hue-attention/internal/alert"
	"github.com/angristan/hue-attention/internal/api"
	"github.com/angristan/hue-attention/internal/config"
	"github.com/angristan/hue-attention/internal/models"
	"github.com/angristan/hue-attention/internal/tui"
	"github.com/angristan/hue-attention/internal/tui/styles"
)

const (
	// ProgramName is used in usage and error messages
	ProgramName = "hue-attention"

	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2

	defaultDiscoveryTimeout = 5 * time.Second
	defaultPairingTimeout   = 30 * time.Second
)

// noConfigMessage is shown when a command needs a config and may not prompt
const noConfigMessage = "No config found. Run `" + ProgramName + " setup` or provide --config."

// usageError marks errors in how the program was invoked
type usageError struct {
	msg string
}

func (e *usageError) Error() string {
	return e.msg
}

// userError carries a message meant to be shown as is
type userError struct {
	msg string
	err error
}

func (e *userError) Error() string {
	return e.msg
}

func (e *userError) Unwrap() error {
	return e.err
}

func failf(err error, format string, args ...any) error {
	return &userError{msg: fmt.Sprintf(format, args...), err: err}
}

type command struct {
	name    string
	summary string
	run     func(ctx context.Context, args []string) error
}

// App holds the state of one invocation
type App struct {
	Stdout   io.Writer
	Stderr   io.Writer
	Prompter *tui.Prompter
	Getenv   func(string) string

	// ConfigureLogging is called once the global flags are parsed
	ConfigureLogging func(level string, useJSON bool)

	DiscoveryURL     string
	DiscoveryTimeout time.Duration
	PairingTimeout   time.Duration
	PairingInterval  time.Duration

	configPath string
	demo       bool
	demoBridge *api.DemoBridge

	commands []command
}

// New creates an App wired to the process streams
func New() *App {
	return &App{
		Stdout:           os.Stdout,
		Stderr:           os.Stderr,
		Prompter:         tui.NewPrompter(),
		Getenv:           os.Getenv,
		DiscoveryURL:     api.DefaultDiscoveryURL,
		DiscoveryTimeout: defaultDiscoveryTimeout,
		PairingTimeout:   defaultPairingTimeout,
		PairingInterval:  api.DefaultPairingInterval,
	}
}

func (a *App) registerCommands() {
	a.commands = []command{
		{"register", "Register with the Hue bridge", a.cmdRegister},
		{"config", "Save bridge credentials", a.cmdConfig},
		{"setup", "Discover bridge, register, and save config interactively", a.cmdSetup},
		{"diagnose", "Check Hue bridge reachability", a.cmdDiagnose},
		{"list-lights", "List light IDs and names", a.cmdListLights},
		{"alert", "Pulse the light red until interrupted, then restore it", a.cmdAlert},
		{"restore", "Restore the last captured state", a.cmdRestore},
		{"set", "Set any light state and save previous state", a.cmdSet},
	}
}

func (a *App) usage(w io.Writer, global *pflag.FlagSet) {
	fmt.Fprintf(w, "Usage: %s [global flags] <command> [flags]\n\n", ProgramName)
	fmt.Fprintln(w, "Pulse a Hue light red as an attention alert and restore it afterwards.")
	fmt.Fprintln(w, "\nCommands:")
	for _, c := range a.commands {
		fmt.Fprintf(w, "  %-12s %s\n", c.name, c.summary)
	}
	fmt.Fprintln(w, "\nGlobal flags:")
	fmt.Fprint(w, global.FlagUsages())
}

// Run executes the command line and returns the process exit code
func (a *App) Run(ctx context.Context, args []string) int {
	a.registerCommands()

	global := pflag.NewFlagSet(ProgramName, pflag.ContinueOnError)
	global.SetOutput(a.Stderr)
	global.SetInterspersed(false)
	global.StringVar(&a.configPath, "config", "", "Path to config file (default: $XDG_CONFIG_HOME/coco_attention/config.json)")
	logLevel := global.String("log-level", "warn", "Log level: debug, info, warn, error")
	logJSON := global.Bool("log-json", false, "Log as JSON")
	global.BoolVar(&a.demo, "demo", false, "Use an in-memory demo bridge (also HUE_DEMO=1)")
	global.Usage = func() { a.usage(a.Stderr, global) }

	if err := global.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return ExitOK
		}
		a.printError(err.Error())
		a.usage(a.Stderr, global)
		return ExitUsage
	}
	if a.Getenv != nil && a.Getenv("HUE_DEMO") != "" {
		a.demo = true
	}
	if a.ConfigureLogging != nil {
		a.ConfigureLogging(*logLevel, *logJSON)
	}

	rest := global.Args()
	if len(rest) == 0 {
		a.usage(a.Stderr, global)
		return ExitUsage
	}

	name := rest[0]
	if name == "help" {
		a.usage(a.Stdout, global)
		return ExitOK
	}

	var cmd *command
	for i := range a.commands {
		if a.commands[i].name == name {
			cmd = &a.commands[i]
			break
		}
	}
	if cmd == nil {
		a.printError(fmt.Sprintf("unknown command %q", name))
		a.usage(a.Stderr, global)
		return ExitUsage
	}

	log.Debug().Str("command", name).Bool("demo", a.demo).Msg("Running command")

	err := cmd.run(ctx, rest[1:])
	if err == nil {
		return ExitOK
	}

	if errors.Is(err, pflag.ErrHelp) {
		return ExitOK
	}
	var ue *usageError
	if errors.As(err, &ue) {
		a.printError(ue.msg)
		return ExitUsage
	}

	log.Debug().Err(err).Str("command", name).Msg("Command failed")
	a.printError(userMessage(err))
	return ExitError
}

func (a *App) printError(msg string) {
	fmt.Fprintln(a.Stderr, styles.StyleError.Render("Error: ")+msg)
}

func (a *App) printSuccess(format string, args ...any) {
	fmt.Fprintln(a.Stdout, styles.StyleSuccess.Render(fmt.Sprintf(format, args...)))
}

// userMessage turns an error into an actionable message
func userMessage(err error) string {
	var ue *userError
	if errors.As(err, &ue) {
		return ue.msg
	}

	switch {
	case errors.Is(err, alert.ErrNoSavedState):
		return "No saved state found. Run alert or set first."
	case errors.Is(err, config.ErrNotFound):
		return fmt.Sprintf("%v. Run `%s setup` first.", err, ProgramName)
	case errors.Is(err, config.ErrCorrupt), errors.Is(err, config.ErrIncomplete):
		return fmt.Sprintf("%v. Run `%s setup` to recreate it.", err, ProgramName)
	case errors.Is(err, tui.ErrAborted):
		return "Aborted."
	}
	return err.Error()
}

// flagSet creates the flag set of a subcommand
func (a *App) flagSet(name, summary string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(a.Stderr)
	fs.Usage = func() {
		fmt.Fprintf(a.Stderr, "Usage: %s %s [flags]\n\n%s\n\nFlags:\n", ProgramName, name, summary)
		fmt.Fprint(a.Stderr, fs.FlagUsages())
	}
	return fs
}

func parseFlags(fs *pflag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return err
		}
		return &usageError{msg: err.Error()}
	}
	if fs.NArg() > 0 {
		return &usageError{msg: fmt.Sprintf("unexpected argument %q", fs.Arg(0))}
	}
	return nil
}

func (a *App) resolveConfigPath() (string, error) {
	if a.configPath != "" {
		return config.ExpandPath(a.configPath)
	}
	return config.DefaultPath()
}

func (a *App) newClient(host, username string) api.BridgeClient {
	if a.demo {
		if a.demoBridge == nil {
			a.demoBridge = api.NewDemoBridge()
		}
		return a.demoBridge
	}
	return api.NewHueBridge(host, username)
}

// ensureConfig loads the config, running setup first if there is none and
// prompting is allowed
func (a *App) ensureConfig(ctx context.Context, path string, nonInteractive bool) (*config.Config, error) {
	if config.Exists(path) {
		cfg, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return cfg, nil
	}

	if nonInteractive {
		return nil, &userError{msg: noConfigMessage, err: config.ErrNotFound}
	}
	fmt.Fprintln(a.Stderr, styles.StyleWarning.Render("No config found; starting setup."))
	return a.setupConfig(ctx, path, setupOptions{})
}

// sortedLights returns the IDs of lights, numeric IDs first
func sortedLights(lights map[string]string) []string {
	ids := make([]string, 0, len(lights))
	for id := range lights {
		ids = append(ids, id)
	}
	models.SortIDs(ids)
	return ids
}

func joinIDs(ids []string) string {
	return strings.Join(ids, ", ")
}
