package mcp

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/awilliams/bondmcp/pkg/bond"
)

// fakeClient records every bridge call and returns canned data.
type fakeClient struct {
	entries []bond.DeviceListEntry
	device  *bond.Device
	state   bond.DeviceState
	bridge  bond.BridgeInfo
	err     error

	calls []string
	args  []any
}

func (f *fakeClient) record(name string, arg any) {
	f.calls = append(f.calls, name)
	f.args = append(f.args, arg)
}

func (f *fakeClient) ListDevices(ctx context.Context) ([]bond.DeviceListEntry, error) {
	f.record("ListDevices", nil)
	return f.entries, f.err
}

func (f *fakeClient) GetDeviceInfo(ctx context.Context, id string) (*bond.Device, error) {
	f.record("GetDeviceInfo", id)
	return f.device, f.err
}

func (f *fakeClient) GetDeviceState(ctx context.Context, id string) (bond.DeviceState, error) {
	f.record("GetDeviceState", id)
	return f.state, f.err
}

func (f *fakeClient) GetBridgeInfo(ctx context.Context) (bond.BridgeInfo, error) {
	f.record("GetBridgeInfo", nil)
	return f.bridge, f.err
}

func (f *fakeClient) SendAction(ctx context.Context, id, action string, argument any) error {
	f.record("SendAction:"+action, argument)
	return f.err
}

func (f *fakeClient) TurnOn(ctx context.Context, id string) error {
	f.record("TurnOn", id)
	return f.err
}

func (f *fakeClient) TurnOff(ctx context.Context, id string) error {
	f.record("TurnOff", id)
	return f.err
}

func (f *fakeClient) SetSpeed(ctx context.Context, id string, speed int) error {
	f.record("SetSpeed", speed)
	return f.err
}

func (f *fakeClient) SetDirection(ctx context.Context, id string, direction int) error {
	f.record("SetDirection", direction)
	return f.err
}

func (f *fakeClient) OpenShades(ctx context.Context, id string) error {
	f.record("OpenShades", id)
	return f.err
}

func (f *fakeClient) CloseShades(ctx context.Context, id string) error {
	f.record("CloseShades", id)
	return f.err
}

func (f *fakeClient) SetPosition(ctx context.Context, id string, position int) error {
	f.record("SetPosition", position)
	return f.err
}

func (f *fakeClient) SetBrightness(ctx context.Context, id string, brightness int) error {
	f.record("SetBrightness", brightness)
	return f.err
}

func newTestServer(fake *fakeClient) *Server {
	return NewServer(fake, bond.Config{
		Host:       "192.168.1.10",
		Token:      "test-token-12345",
		Timeout:    10 * time.Second,
		MaxRetries: 3,
		RetryDelay: time.Second,
	})
}

func callReq(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) == 0 {
		t.Fatal("result has no content")
	}
	tc, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("expected text content, got %T", res.Content[0])
	}
	return tc.Text
}

func assertErrorKind(t *testing.T, res *mcp.CallToolResult, kind bond.Kind) {
	t.Helper()
	if !res.IsError {
		t.Fatal("expected an error result")
	}
	var out ErrorOutput
	if err := json.Unmarshal([]byte(resultText(t, res)), &out); err != nil {
		t.Fatalf("error result is not structured JSON: %v", err)
	}
	if out.Error.Kind != string(kind) {
		t.Errorf("expected error kind %q, got %q (message: %s)", kind, out.Error.Kind, out.Error.Message)
	}
	if out.Error.Message == "" {
		t.Error("expected a human-readable error message")
	}
}

func TestSetFanSpeed_MissingDeviceID(t *testing.T) {
	fake := &fakeClient{}
	s := newTestServer(fake)

	res, err := s.handleSetFanSpeed(t.Context(), callReq(map[string]any{"speed": float64(3)}))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	assertErrorKind(t, res, bond.KindInvalidArgument)
	if len(fake.calls) != 0 {
		t.Errorf("expected zero bridge calls, got %v", fake.calls)
	}
}

func TestSetFanSpeed_OutOfRange(t *testing.T) {
	fake := &fakeClient{}
	s := newTestServer(fake)

	for _, speed := range []float64{-1, 9, 42} {
		res, err := s.handleSetFanSpeed(t.Context(), callReq(map[string]any{
			"device_id": "fan1",
			"speed":     speed,
		}))
		if err != nil {
			t.Fatalf("handler returned error: %v", err)
		}
		assertErrorKind(t, res, bond.KindInvalidArgument)
	}
	if len(fake.calls) != 0 {
		t.Errorf("expected zero bridge calls, got %v", fake.calls)
	}
}

func TestSetFanSpeed_OK(t *testing.T) {
	fake := &fakeClient{}
	s := newTestServer(fake)

	res, err := s.handleSetFanSpeed(t.Context(), callReq(map[string]any{
		"device_id": "fan1",
		"speed":     float64(5),
	}))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if res.IsError {
		t.Fatalf("unexpected error result: %s", resultText(t, res))
	}
	if len(fake.calls) != 1 || fake.calls[0] != "SetSpeed" || fake.args[0] != 5 {
		t.Errorf("expected one SetSpeed(5) call, got %v %v", fake.calls, fake.args)
	}
	var out SetFanSpeedOutput
	if err := json.Unmarshal([]byte(resultText(t, res)), &out); err != nil {
		t.Fatalf("output is not structured JSON: %v", err)
	}
	if out.DeviceID != "fan1" || out.Speed != 5 {
		t.Errorf("unexpected output: %+v", out)
	}
}

func TestSetFanDirection_BadValue(t *testing.T) {
	fake := &fakeClient{}
	s := newTestServer(fake)

	res, err := s.handleSetFanDirection(t.Context(), callReq(map[string]any{
		"device_id": "fan1",
		"direction": "sideways",
	}))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	assertErrorKind(t, res, bond.KindInvalidArgument)
	if len(fake.calls) != 0 {
		t.Errorf("expected zero bridge calls, got %v", fake.calls)
	}
}

func TestSetFanDirection_MapsToWireValue(t *testing.T) {
	fake := &fakeClient{}
	s := newTestServer(fake)

	res, err := s.handleSetFanDirection(t.Context(), callReq(map[string]any{
		"device_id": "fan1",
		"direction": "Reverse",
	}))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if res.IsError {
		t.Fatalf("unexpected error result: %s", resultText(t, res))
	}
	if len(fake.calls) != 1 || fake.calls[0] != "SetDirection" || fake.args[0] != bond.DirectionReverse {
		t.Errorf("expected SetDirection(-1), got %v %v", fake.calls, fake.args)
	}
}

func TestControlShades_RequiresPositionForSetPosition(t *testing.T) {
	fake := &fakeClient{}
	s := newTestServer(fake)

	res, err := s.handleControlShades(t.Context(), callReq(map[string]any{
		"device_id": "shade1",
		"action":    "set_position",
	}))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	assertErrorKind(t, res, bond.KindInvalidArgument)
	if len(fake.calls) != 0 {
		t.Errorf("expected zero bridge calls, got %v", fake.calls)
	}
}

func TestControlShades_OpenCloseSetPosition(t *testing.T) {
	fake := &fakeClient{}
	s := newTestServer(fake)

	for _, tc := range []struct {
		args map[string]any
		call string
	}{
		{map[string]any{"device_id": "s1", "action": "open"}, "OpenShades"},
		{map[string]any{"device_id": "s1", "action": "close"}, "CloseShades"},
		{map[string]any{"device_id": "s1", "action": "set_position", "position": float64(40)}, "SetPosition"},
	} {
		fake.calls = nil
		fake.args = nil
		res, err := s.handleControlShades(t.Context(), callReq(tc.args))
		if err != nil {
			t.Fatalf("handler returned error: %v", err)
		}
		if res.IsError {
			t.Fatalf("%s: unexpected error result: %s", tc.call, resultText(t, res))
		}
		if len(fake.calls) != 1 || fake.calls[0] != tc.call {
			t.Errorf("expected one %s call, got %v", tc.call, fake.calls)
		}
	}
}

func TestSetLightBrightness_AcceptsFullRange(t *testing.T) {
	fake := &fakeClient{}
	s := newTestServer(fake)

	res, err := s.handleSetLightBrightness(t.Context(), callReq(map[string]any{
		"device_id":  "light1",
		"brightness": float64(100),
	}))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if res.IsError {
		t.Fatalf("unexpected error result: %s", resultText(t, res))
	}
	if len(fake.calls) != 1 || fake.calls[0] != "SetBrightness" || fake.args[0] != 100 {
		t.Errorf("expected one SetBrightness(100) call, got %v %v", fake.calls, fake.args)
	}
}

func TestSetLightBrightness_OutOfRange(t *testing.T) {
	fake := &fakeClient{}
	s := newTestServer(fake)

	res, err := s.handleSetLightBrightness(t.Context(), callReq(map[string]any{
		"device_id":  "light1",
		"brightness": float64(101),
	}))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	assertErrorKind(t, res, bond.KindInvalidArgument)
	if len(fake.calls) != 0 {
		t.Errorf("expected zero bridge calls, got %v", fake.calls)
	}
}

func TestToggleDevicePower(t *testing.T) {
	for _, tc := range []struct {
		state bond.DeviceState
		call  string
	}{
		{bond.DeviceState{"power": float64(1)}, "TurnOff"},
		{bond.DeviceState{"power": float64(0)}, "TurnOn"},
		{bond.DeviceState{}, "TurnOn"},
	} {
		fake := &fakeClient{state: tc.state}
		s := newTestServer(fake)

		res, err := s.handleToggleDevicePower(t.Context(), callReq(map[string]any{"device_id": "dev1"}))
		if err != nil {
			t.Fatalf("handler returned error: %v", err)
		}
		if res.IsError {
			t.Fatalf("unexpected error result: %s", resultText(t, res))
		}
		if len(fake.calls) != 2 || fake.calls[0] != "GetDeviceState" || fake.calls[1] != tc.call {
			t.Errorf("state %v: expected GetDeviceState then %s, got %v", tc.state, tc.call, fake.calls)
		}
	}
}

func TestListDevices_SurfacesDegradedEntries(t *testing.T) {
	fake := &fakeClient{
		entries: []bond.DeviceListEntry{
			{ID: "dev1", Device: &bond.Device{ID: "dev1", Name: "Fan", Type: bond.DeviceTypeCeilingFan}},
			{ID: "dev2", Err: &bond.Error{Kind: bond.KindBridgeUnavailable, Message: "bridge request failed"}},
		},
	}
	s := newTestServer(fake)

	res, err := s.handleListDevices(t.Context(), callReq(nil))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if res.IsError {
		t.Fatalf("unexpected error result: %s", resultText(t, res))
	}

	var out ListDevicesOutput
	if err := json.Unmarshal([]byte(resultText(t, res)), &out); err != nil {
		t.Fatalf("output is not structured JSON: %v", err)
	}
	if out.Count != 2 || len(out.Devices) != 2 {
		t.Fatalf("expected 2 devices, got %+v", out)
	}
	if out.Devices[0].Name != "Fan" || out.Devices[0].Error != "" {
		t.Errorf("unexpected first entry: %+v", out.Devices[0])
	}
	if out.Devices[1].Error == "" {
		t.Errorf("expected error placeholder for dev2, got %+v", out.Devices[1])
	}
}

func TestBridgeErrorKindsPropagate(t *testing.T) {
	for _, kind := range []bond.Kind{
		bond.KindAuth,
		bond.KindNotFound,
		bond.KindAction,
		bond.KindBridgeUnavailable,
	} {
		fake := &fakeClient{err: &bond.Error{Kind: kind, Message: "boom"}}
		s := newTestServer(fake)

		res, err := s.handleGetDeviceState(t.Context(), callReq(map[string]any{"device_id": "dev1"}))
		if err != nil {
			t.Fatalf("handler returned error: %v", err)
		}
		assertErrorKind(t, res, kind)
	}
}

func TestSendCustomAction_PassesArgument(t *testing.T) {
	fake := &fakeClient{}
	s := newTestServer(fake)

	res, err := s.handleSendCustomAction(t.Context(), callReq(map[string]any{
		"device_id": "dev1",
		"action":    "SetTimer",
		"argument":  float64(300),
	}))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if res.IsError {
		t.Fatalf("unexpected error result: %s", resultText(t, res))
	}
	if len(fake.calls) != 1 || fake.calls[0] != "SendAction:SetTimer" || fake.args[0] != 300 {
		t.Errorf("expected SendAction SetTimer with argument 300, got %v %v", fake.calls, fake.args)
	}
}

func TestSendCustomAction_NoArgument(t *testing.T) {
	fake := &fakeClient{}
	s := newTestServer(fake)

	res, err := s.handleSendCustomAction(t.Context(), callReq(map[string]any{
		"device_id": "dev1",
		"action":    "TogglePower",
	}))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if res.IsError {
		t.Fatalf("unexpected error result: %s", resultText(t, res))
	}
	if len(fake.calls) != 1 || fake.calls[0] != "SendAction:TogglePower" || fake.args[0] != nil {
		t.Errorf("expected SendAction TogglePower without argument, got %v %v", fake.calls, fake.args)
	}
}

func TestGetBridgeInfo_IncludesServerConfig(t *testing.T) {
	fake := &fakeClient{bridge: bond.BridgeInfo{"fw_ver": "v2.10.8", "make": "Olibra"}}
	s := newTestServer(fake)

	res, err := s.handleGetBridgeInfo(t.Context(), callReq(nil))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	text := resultText(t, res)
	if !strings.Contains(text, "v2.10.8") || !strings.Contains(text, "192.168.1.10") {
		t.Errorf("expected bridge info and server config in output, got: %s", text)
	}
	if strings.Contains(text, "test-token") {
		t.Error("token must never appear in tool output")
	}
}
