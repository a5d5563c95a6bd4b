package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/angristan/hue-attention/internal/models"
)

const (
	// DefaultTimeout bounds every request to the bridge
	DefaultTimeout = 5 * time.Second
	// DefaultWriteRate is the bridge's recommended command budget per second
	DefaultWriteRate = 10
	// DefaultDeviceType identifies this tool when registering with a bridge
	DefaultDeviceType = "coco_attention#cli"
)

type unpacedKey struct{}

// Unpaced marks ctx so SetLightState skips the write limiter. Callers that
// keep their own cadence, such as the pulse loop, use it so their timing is
// not stretched once the burst is spent.
func Unpaced(ctx context.Context) context.Context {
	return context.WithValue(ctx, unpacedKey{}, true)
}

func isUnpaced(ctx context.Context) bool {
	v, _ := ctx.Value(unpacedKey{}).(bool)
	return v
}

// HueBridge represents a connection to a Philips Hue bridge (v1 REST API)
type HueBridge struct {
	host     string
	username string
	client   *http.Client

	// Paces state writes so bursts (e.g. restoring many lights) stay within
	// what the bridge accepts. Unpaced contexts bypass it.
	writes *rate.Limiter
}

// NewHueBridge creates a new bridge client
func NewHueBridge(host, username string) *HueBridge {
	return &HueBridge{
		host:     host,
		username: username,
		client:   &http.Client{Timeout: DefaultTimeout},
		writes:   rate.NewLimiter(rate.Limit(DefaultWriteRate), DefaultWriteRate),
	}
}

// Host returns the bridge host
func (b *HueBridge) Host() string {
	return b.host
}

func (b *HueBridge) url(path string) string {
	return fmt.Sprintf("http://%s/api/%s%s", b.host, b.username, path)
}

// doRequest performs a request and returns the response body of a 2xx response
func (b *HueBridge) doRequest(ctx context.Context, op, method, url string, payload any) (data []byte, err error) {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, &CapabilityError{Op: op, Err: err}
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, &CapabilityError{Op: op, Err: err}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := b.client.Do(req)
	if err != nil {
		return nil, &CapabilityError{Op: op, Err: err}
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil && err == nil {
			err = &CapabilityError{Op: op, Err: fmt.Errorf("failed to close response body: %w", cerr)}
		}
	}()

	log.Debug().
		Str("op", op).
		Str("method", method).
		Int("status", resp.StatusCode).
		Dur("took", time.Since(start)).
		Msg("Bridge request")

	data, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, &CapabilityError{Op: op, StatusCode: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &CapabilityError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("API error (status %d): %s", resp.StatusCode, bytes.TrimSpace(data)),
		}
	}

	return data, nil
}

// v1Result is one entry of a v1 response array
type v1Result struct {
	Success json.RawMessage `json:"success,omitempty"`
	Error   *apiError       `json:"error,omitempty"`
}

// checkErrorArray reports the first error entry if data is a v1 response array.
// The bridge answers failed requests with 200 and an error array.
func checkErrorArray(op string, data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil
	}

	var results []v1Result
	if err := json.Unmarshal(trimmed, &results); err != nil {
		return &CapabilityError{Op: op, Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	for _, r := range results {
		if r.Error != nil {
			return &CapabilityError{Op: op, Err: r.Error}
		}
	}
	return nil
}

// lightResource represents the v1 API light resource
type lightResource struct {
	Name  string `json:"name"`
	State struct {
		On  *bool `json:"on"`
		Bri *int  `json:"bri"`
		Hue *int  `json:"hue"`
		Sat *int  `json:"sat"`
	} `json:"state"`
}

func (r *lightResource) toModel() models.LightState {
	return models.LightState{
		On:  r.State.On,
		Bri: r.State.Bri,
		Hue: r.State.Hue,
		Sat: r.State.Sat,
	}
}

// GetLightState retrieves a light's current state from the bridge
func (b *HueBridge) GetLightState(ctx context.Context, lightID string) (models.LightState, error) {
	op := fmt.Sprintf("get light %s", lightID)

	data, err := b.doRequest(ctx, op, http.MethodGet, b.url("/lights/"+lightID), nil)
	if err != nil {
		return models.LightState{}, err
	}
	if err := checkErrorArray(op, data); err != nil {
		return models.LightState{}, err
	}

	var raw lightResource
	if err := json.Unmarshal(data, &raw); err != nil {
		return models.LightState{}, &CapabilityError{Op: op, Err: fmt.Errorf("failed to decode light: %w", err)}
	}

	return raw.toModel(), nil
}

// ListLights retrieves all light names from the bridge
func (b *HueBridge) ListLights(ctx context.Context) (map[string]string, error) {
	const op = "list lights"

	data, err := b.doRequest(ctx, op, http.MethodGet, b.url("/lights"), nil)
	if err != nil {
		return nil, err
	}
	if err := checkErrorArray(op, data); err != nil {
		return nil, err
	}

	var raw map[string]lightResource
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &CapabilityError{Op: op, Err: fmt.Errorf("failed to decode lights: %w", err)}
	}

	lights := make(map[string]string, len(raw))
	for id, light := range raw {
		lights[id] = light.Name
	}
	return lights, nil
}

// SetLightState sends a PUT request to update light state
func (b *HueBridge) SetLightState(ctx context.Context, lightID string, update models.StateUpdate) error {
	op := fmt.Sprintf("set light %s", lightID)

	if !isUnpaced(ctx) {
		if err := b.writes.Wait(ctx); err != nil {
			return &CapabilityError{Op: op, Err: err}
		}
	}

	data, err := b.doRequest(ctx, op, http.MethodPut, b.url("/lights/"+lightID+"/state"), update)
	if err != nil {
		return err
	}
	return checkErrorArray(op, data)
}

// pairingRequest is the body sent to create a credential
type pairingRequest struct {
	DeviceType string `json:"devicetype"`
}

// pairingResponse represents a response from the pairing endpoint
type pairingResponse struct {
	Success *struct {
		Username string `json:"username"`
	} `json:"success,omitempty"`
	Error *apiError `json:"error,omitempty"`
}

// Register attempts to create a credential on the bridge. The link button
// must have been pressed shortly before.
func (b *HueBridge) Register(ctx context.Context, deviceType string) (string, error) {
	const op = "register"

	url := fmt.Sprintf("http://%s/api", b.host)
	data, err := b.doRequest(ctx, op, http.MethodPost, url, pairingRequest{DeviceType: deviceType})
	if err != nil {
		return "", err
	}

	var responses []pairingResponse
	if err := json.Unmarshal(data, &responses); err != nil {
		return "", &CapabilityError{Op: op, Err: fmt.Errorf("failed to decode pairing response: %w", err)}
	}
	if len(responses) == 0 {
		return "", &CapabilityError{Op: op, Err: errors.New("empty pairing response")}
	}

	response := responses[0]
	if response.Error != nil {
		if response.Error.Type == linkButtonErrorType {
			return "", &CapabilityError{Op: op, Err: ErrLinkButtonNotPressed}
		}
		return "", &CapabilityError{Op: op, Err: response.Error}
	}
	if response.Success == nil || response.Success.Username == "" {
		return "", &CapabilityError{Op: op, Err: fmt.Errorf("unexpected pairing response: %s", bytes.TrimSpace(data))}
	}

	return response.Success.Username, nil
}
