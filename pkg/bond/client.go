package bond

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/awilliams/bondmcp/pkg/bond/schema"
)

// listConcurrency bounds in-flight detail fetches so a low-power bridge
// isn't hammered during enumeration.
const listConcurrency = 4

// Client talks to a Bond Bridge over its Local API v2. It is safe for
// concurrent use; the only shared state is the immutable Config and the
// HTTP connection pool.
type Client struct {
	cfg       Config
	baseURL   string
	http      *http.Client
	validator *schema.Validator
}

// NewClient creates a client for the bridge described by cfg.
func NewClient(cfg Config) *Client {
	host := strings.TrimSuffix(cfg.Host, "/")
	return &Client{
		cfg:       cfg,
		baseURL:   fmt.Sprintf("http://%s/v2/", host),
		http:      &http.Client{},
		validator: schema.NewValidator(),
	}
}

// GetBridgeInfo returns the bridge's own metadata (firmware, model, uptime).
func (c *Client) GetBridgeInfo(ctx context.Context) (BridgeInfo, error) {
	var info BridgeInfo
	if err := c.getJSON(ctx, "", &info); err != nil {
		return nil, err
	}
	return info, nil
}

// ListDevices enumerates the bridge's devices, ordered by device ID. The
// detail fetches fan out concurrently; a failed fetch degrades that entry
// to an error placeholder instead of failing the whole listing.
func (c *Client) ListDevices(ctx context.Context) ([]DeviceListEntry, error) {
	var listing map[string]json.RawMessage
	if err := c.getJSON(ctx, "devices", &listing); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(listing))
	for id := range listing {
		if strings.HasPrefix(id, "_") {
			// bridge metadata keys, not devices
			continue
		}
		ids = append(ids, id)
	}
	sort.Strings(ids)

	entries := make([]DeviceListEntry, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(listConcurrency)
	for i, id := range ids {
		g.Go(func() error {
			d, err := c.GetDeviceInfo(gctx, id)
			if err != nil {
				log.Warn().Err(err).Str("device", id).Msg("Failed to fetch device detail")
				entries[i] = DeviceListEntry{ID: id, Err: err}
				return nil
			}
			entries[i] = DeviceListEntry{ID: id, Device: d}
			return nil
		})
	}
	// goroutines never return errors; degraded entries carry their own
	_ = g.Wait()

	return entries, nil
}

// GetDeviceInfo returns the bridge's detail record for a device.
func (c *Client) GetDeviceInfo(ctx context.Context, id string) (*Device, error) {
	d := Device{ID: id}
	if err := c.getJSON(ctx, "devices/"+id, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// GetDeviceState returns the current state of a device, fetched fresh on
// every call.
func (c *Client) GetDeviceState(ctx context.Context, id string) (DeviceState, error) {
	var state DeviceState
	if err := c.getJSON(ctx, "devices/"+id+"/state", &state); err != nil {
		return nil, err
	}
	return state, nil
}

// SendAction issues an action against a device. Arguments for known actions
// are validated before any network call.
func (c *Client) SendAction(ctx context.Context, id, action string, argument any) error {
	if err := c.validateAction(action, argument); err != nil {
		return err
	}
	req := ActionRequest{DeviceID: id, Action: action, Argument: argument}
	_, err := c.do(ctx, http.MethodPost, "devices/"+id+"/actions/"+action, req.body())
	return err
}

// --- Convenience actions ---

// TurnOn turns a device on.
func (c *Client) TurnOn(ctx context.Context, id string) error {
	return c.SendAction(ctx, id, ActionTurnOn, nil)
}

// TurnOff turns a device off.
func (c *Client) TurnOff(ctx context.Context, id string) error {
	return c.SendAction(ctx, id, ActionTurnOff, nil)
}

// SetSpeed sets a fan's speed (0-8), treating 0 as off.
func (c *Client) SetSpeed(ctx context.Context, id string, speed int) error {
	if err := c.validateAction(ActionSetSpeed, speed); err != nil {
		return err
	}
	if speed == 0 {
		return c.TurnOff(ctx, id)
	}
	return c.SendAction(ctx, id, ActionSetSpeed, speed)
}

// SetDirection sets a fan's direction (1 forward, -1 reverse).
func (c *Client) SetDirection(ctx context.Context, id string, direction int) error {
	return c.SendAction(ctx, id, ActionSetDirection, direction)
}

// OpenShades opens shades completely.
func (c *Client) OpenShades(ctx context.Context, id string) error {
	return c.SendAction(ctx, id, ActionOpen, nil)
}

// CloseShades closes shades completely.
func (c *Client) CloseShades(ctx context.Context, id string) error {
	return c.SendAction(ctx, id, ActionClose, nil)
}

// SetPosition moves shades to a position percentage (0-100).
func (c *Client) SetPosition(ctx context.Context, id string, position int) error {
	return c.SendAction(ctx, id, ActionSetPosition, position)
}

// SetBrightness sets a light's brightness percentage (0-100).
func (c *Client) SetBrightness(ctx context.Context, id string, brightness int) error {
	return c.SendAction(ctx, id, ActionSetBrightness, brightness)
}

// --- Request plumbing ---

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	data, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &Error{Kind: KindBridgeUnavailable, Message: "decoding bridge response", Err: err}
	}
	return nil
}

// do performs a request with the configured retry policy: transient
// failures (network errors, timeouts, 429 and 5xx responses) are retried
// with a linearly increasing delay; everything else fails immediately.
func (c *Client) do(ctx context.Context, method, path string, body any) ([]byte, error) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, &Error{Kind: KindInvalidArgument, Message: "encoding request body", Err: err}
		}
	}

	var lastErr error
	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			if err := c.wait(ctx, attempt); err != nil {
				return nil, &Error{Kind: KindBridgeUnavailable, Message: "request cancelled", Err: err}
			}
		}

		data, retry, err := c.attempt(ctx, method, path, payload)
		if err == nil {
			return data, nil
		}
		if !retry {
			return nil, err
		}
		lastErr = err
		log.Debug().Err(err).Int("attempt", attempt+1).Str("path", path).Msg("Transient bridge error")
	}

	return nil, &Error{
		Kind:    KindBridgeUnavailable,
		Message: fmt.Sprintf("bridge unreachable after %d attempts", c.cfg.MaxRetries+1),
		Err:     lastErr,
	}
}

// wait sleeps for the linear backoff delay before retry number attempt,
// honoring context cancellation.
func (c *Client) wait(ctx context.Context, attempt int) error {
	delay := time.Duration(attempt) * c.cfg.RetryDelay
	if delay <= 0 {
		return nil
	}
	t := time.NewTimer(delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (c *Client) attempt(ctx context.Context, method, path string, payload []byte) (data []byte, retry bool, err error) {
	rctx := ctx
	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		rctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	var rd io.Reader
	if payload != nil {
		rd = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(rctx, method, c.baseURL+path, rd)
	if err != nil {
		return nil, false, &Error{Kind: KindBridgeUnavailable, Message: "building request", Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		// covers connection failures and the per-request timeout
		return nil, true, &Error{Kind: KindBridgeUnavailable, Message: "bridge request failed", Err: err}
	}
	defer resp.Body.Close()

	data, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, &Error{Kind: KindBridgeUnavailable, Message: "reading bridge response", Err: err}
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return data, false, nil
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, false, &Error{Kind: KindAuth, Status: resp.StatusCode, Message: "bridge rejected token"}
	case resp.StatusCode == http.StatusNotFound:
		return nil, false, &Error{Kind: KindNotFound, Status: resp.StatusCode, Message: "resource not found: " + path}
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, true, &Error{
			Kind:    KindBridgeUnavailable,
			Status:  resp.StatusCode,
			Message: fmt.Sprintf("bridge returned %d: %s", resp.StatusCode, strings.TrimSpace(string(data))),
		}
	default:
		return nil, false, &Error{
			Kind:    KindAction,
			Status:  resp.StatusCode,
			Message: fmt.Sprintf("bridge rejected request (%d): %s", resp.StatusCode, strings.TrimSpace(string(data))),
		}
	}
}
