package alert

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/angristan/hue-attention/internal/api"
	"github.com/angristan/hue-attention/internal/models"
)

const (
	DefaultPeriod        = 2.0
	DefaultLowBrightness = 80

	// maxTransition is the largest transitiontime the bridge accepts
	maxTransition = math.MaxUint16

	// restoreTimeout bounds the restore that runs after an interrupt
	restoreTimeout = 30 * time.Second
)

// Timing derives the phase duration and the bridge transition time (in
// multiples of 100ms) for a pulse period given in seconds. A period is split
// in eight so each fade finishes well before the next state change.
func Timing(period float64) (time.Duration, int, error) {
	if period <= 0 || math.IsNaN(period) || math.IsInf(period, 0) {
		return 0, 0, fmt.Errorf("%w: period must be greater than 0, got %v", ErrInvalidArgument, period)
	}

	half := period / 8
	steps := math.Round(half * 10)
	if steps > maxTransition || half*float64(time.Second) >= math.MaxInt64 {
		return 0, 0, fmt.Errorf("%w: period %v is too long", ErrInvalidArgument, period)
	}
	transition := max(1, int(steps))
	return time.Duration(math.Round(half * float64(time.Second))), transition, nil
}

// PulseUpdates returns the two payloads of a pulse: red at full brightness
// and the same red dimmed to lowBri
func PulseUpdates(lowBri, transition int) (high, low models.StateUpdate) {
	high = models.RedAlert.Merge(models.StateUpdate{TransitionTime: models.Int(transition)}).Clone()
	low = high.Merge(models.StateUpdate{Bri: models.Int(lowBri)}).Clone()
	return high, low
}

// Pulser alternates lights between bright and dim red
type Pulser struct {
	Client LightClient
	// Seconds per full cycle of one light
	Period        float64
	LowBrightness int

	// wait blocks for d and reports false if ctx was cancelled first
	wait func(ctx context.Context, d time.Duration) bool
}

// NewPulser creates a pulser with the given timing
func NewPulser(client LightClient, period float64, lowBri int) *Pulser {
	return &Pulser{Client: client, Period: period, LowBrightness: lowBri}
}

func (p *Pulser) validate(ids []string) (time.Duration, int, error) {
	if len(ids) == 0 {
		return 0, 0, fmt.Errorf("%w: no lights to pulse", ErrInvalidArgument)
	}
	if p.LowBrightness < 0 || p.LowBrightness > models.MaxBrightness {
		return 0, 0, fmt.Errorf("%w: low brightness must be between 0 and %d, got %d", ErrInvalidArgument, models.MaxBrightness, p.LowBrightness)
	}
	return Timing(p.Period)
}

// Run pulses the lights in order, one full cycle each, and starts over after
// the last one. It only stops when ctx is cancelled, returning nil, or when
// a write fails. Cancellation is noticed between writes; a write in progress
// is allowed to complete.
func (p *Pulser) Run(ctx context.Context, ids []string) error {
	half, transition, err := p.validate(ids)
	if err != nil {
		return err
	}

	wait := p.wait
	if wait == nil {
		wait = sleep
	}

	high, low := PulseUpdates(p.LowBrightness, transition)
	// Writes outlive cancellation and keep the pulse cadence
	writeCtx := api.Unpaced(context.WithoutCancel(ctx))

	log.Debug().
		Strs("lights", ids).
		Dur("half_period", half).
		Int("transition", transition).
		Msg("Pulse started")

	for cycle := 1; ; cycle++ {
		for _, id := range ids {
			if err := p.Client.SetLightState(writeCtx, id, high); err != nil {
				return fmt.Errorf("pulse light %s: %w", id, err)
			}
			if !wait(ctx, half) {
				return nil
			}
			if err := p.Client.SetLightState(writeCtx, id, low); err != nil {
				return fmt.Errorf("pulse light %s: %w", id, err)
			}
			if !wait(ctx, half) {
				return nil
			}
		}
		log.Trace().Int("cycle", cycle).Msg("Pulse cycle done")
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// Alert captures the lights, pulses them until ctx is cancelled and then
// restores the captured state. If pulsing fails the snapshot is kept on disk
// so the lights can be restored later.
func Alert(ctx context.Context, client LightClient, statePath string, ids []string, pulser *Pulser, defaultLightID string) error {
	session := uuid.NewString()
	logger := log.With().Str("session", session).Logger()

	if _, _, err := pulser.validate(ids); err != nil {
		return err
	}

	if _, err := Capture(ctx, client, statePath, ids); err != nil {
		return err
	}
	logger.Info().Strs("lights", ids).Msg("Alert started")

	if err := pulser.Run(ctx, ids); err != nil {
		logger.Error().Err(err).Msg("Alert stopped, lights left as they are")
		return err
	}

	// ctx is done by now, restore on a fresh one
	restoreCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), restoreTimeout)
	defer cancel()

	n, err := Restore(restoreCtx, client, statePath, defaultLightID)
	if err != nil {
		logger.Error().Err(err).Msg("Restore after alert failed")
		return err
	}

	logger.Info().Int("restored", n).Msg("Alert stopped")
	return nil
}
