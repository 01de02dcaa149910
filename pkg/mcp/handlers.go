package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/samber/lo"

	"github.com/awilliams/bondmcp/pkg/bond"
)

func (s *Server) handleListDevices(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	entries, err := s.client.ListDevices(ctx)
	if err != nil {
		return toolError(err), nil
	}

	infos := lo.Map(entries, func(e bond.DeviceListEntry, _ int) DeviceInfo {
		return entryToInfo(e)
	})

	out := ListDevicesOutput{
		Devices: infos,
		Count:   len(infos),
	}
	return mcp.NewToolResultText(formatJSON(out)), nil
}

func (s *Server) handleGetDeviceInfo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requiredString(request, "device_id")
	if err != nil {
		return toolError(err), nil
	}

	d, err := s.client.GetDeviceInfo(ctx, id)
	if err != nil {
		return toolError(err), nil
	}

	out := GetDeviceInfoOutput{Device: deviceToInfo(d)}
	return mcp.NewToolResultText(formatJSON(out)), nil
}

func (s *Server) handleGetDeviceState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requiredString(request, "device_id")
	if err != nil {
		return toolError(err), nil
	}

	state, err := s.client.GetDeviceState(ctx, id)
	if err != nil {
		return toolError(err), nil
	}

	out := GetDeviceStateOutput{
		DeviceID: id,
		State:    state,
	}
	return mcp.NewToolResultText(formatJSON(out)), nil
}

func (s *Server) handleGetBridgeInfo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	info, err := s.client.GetBridgeInfo(ctx)
	if err != nil {
		return toolError(err), nil
	}

	out := GetBridgeInfoOutput{
		Bridge: info,
		ServerConfig: ServerConfig{
			Host:           s.cfg.Host,
			TimeoutSeconds: s.cfg.Timeout.Seconds(),
			MaxRetries:     s.cfg.MaxRetries,
		},
	}
	return mcp.NewToolResultText(formatJSON(out)), nil
}

func (s *Server) handleToggleDevicePower(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requiredString(request, "device_id")
	if err != nil {
		return toolError(err), nil
	}

	state, err := s.client.GetDeviceState(ctx, id)
	if err != nil {
		return toolError(err), nil
	}

	// JSON numbers decode as float64; anything but power=1 counts as off
	powered := false
	if p, ok := state["power"].(float64); ok && p == 1 {
		powered = true
	}

	action := "turned on"
	if powered {
		action = "turned off"
		err = s.client.TurnOff(ctx, id)
	} else {
		err = s.client.TurnOn(ctx, id)
	}
	if err != nil {
		return toolError(err), nil
	}

	out := ToggleDevicePowerOutput{
		DeviceID: id,
		Action:   action,
	}
	return mcp.NewToolResultText(formatJSON(out)), nil
}

func (s *Server) handleSetFanSpeed(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requiredString(request, "device_id")
	if err != nil {
		return toolError(err), nil
	}
	speed, err := requiredInt(request, "speed")
	if err != nil {
		return toolError(err), nil
	}
	if speed < 0 || speed > 8 {
		return toolError(bond.InvalidArgumentf("fan speed must be between 0 and 8")), nil
	}

	if err := s.client.SetSpeed(ctx, id, speed); err != nil {
		return toolError(err), nil
	}

	action := "off"
	if speed > 0 {
		action = fmt.Sprintf("set to speed %d", speed)
	}
	out := SetFanSpeedOutput{
		DeviceID: id,
		Speed:    speed,
		Action:   action,
	}
	return mcp.NewToolResultText(formatJSON(out)), nil
}

func (s *Server) handleSetFanDirection(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requiredString(request, "device_id")
	if err != nil {
		return toolError(err), nil
	}
	direction, err := requiredString(request, "direction")
	if err != nil {
		return toolError(err), nil
	}

	wire, err := bond.ParseDirection(direction)
	if err != nil {
		return toolError(err), nil
	}

	if err := s.client.SetDirection(ctx, id, wire); err != nil {
		return toolError(err), nil
	}

	out := SetFanDirectionOutput{
		DeviceID:  id,
		Direction: strings.ToLower(direction),
	}
	return mcp.NewToolResultText(formatJSON(out)), nil
}

func (s *Server) handleControlShades(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requiredString(request, "device_id")
	if err != nil {
		return toolError(err), nil
	}
	action, err := requiredString(request, "action")
	if err != nil {
		return toolError(err), nil
	}
	action = strings.ToLower(action)

	out := ControlShadesOutput{DeviceID: id, Action: action}

	switch action {
	case "open":
		err = s.client.OpenShades(ctx, id)
	case "close":
		err = s.client.CloseShades(ctx, id)
	case "set_position":
		position, perr := requiredInt(request, "position")
		if perr != nil {
			return toolError(perr), nil
		}
		if position < 0 || position > 100 {
			return toolError(bond.InvalidArgumentf("position must be between 0 and 100")), nil
		}
		out.Position = &position
		err = s.client.SetPosition(ctx, id, position)
	default:
		return toolError(bond.InvalidArgumentf("action must be one of: open, close, set_position")), nil
	}
	if err != nil {
		return toolError(err), nil
	}

	return mcp.NewToolResultText(formatJSON(out)), nil
}

func (s *Server) handleSetLightBrightness(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requiredString(request, "device_id")
	if err != nil {
		return toolError(err), nil
	}
	brightness, err := requiredInt(request, "brightness")
	if err != nil {
		return toolError(err), nil
	}
	if brightness < 0 || brightness > 100 {
		return toolError(bond.InvalidArgumentf("brightness must be between 0 and 100")), nil
	}

	if err := s.client.SetBrightness(ctx, id, brightness); err != nil {
		return toolError(err), nil
	}

	out := SetLightBrightnessOutput{
		DeviceID:   id,
		Brightness: brightness,
		Action:     fmt.Sprintf("set to %d%% brightness", brightness),
	}
	return mcp.NewToolResultText(formatJSON(out)), nil
}

func (s *Server) handleSendCustomAction(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requiredString(request, "device_id")
	if err != nil {
		return toolError(err), nil
	}
	action, err := requiredString(request, "action")
	if err != nil {
		return toolError(err), nil
	}

	argument := normalizeArgument(request.GetArguments()["argument"])

	if err := s.client.SendAction(ctx, id, action, argument); err != nil {
		return toolError(err), nil
	}

	out := SendCustomActionOutput{
		DeviceID: id,
		Action:   action,
		Argument: argument,
	}
	return mcp.NewToolResultText(formatJSON(out)), nil
}

// --- helpers ---

func requiredString(request mcp.CallToolRequest, key string) (string, error) {
	args := request.GetArguments()
	v, ok := args[key]
	if !ok || v == nil {
		return "", bond.InvalidArgumentf("required parameter %q is missing", key)
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", bond.InvalidArgumentf("parameter %q must be a non-empty string", key)
	}
	return s, nil
}

func requiredInt(request mcp.CallToolRequest, key string) (int, error) {
	args := request.GetArguments()
	v, ok := args[key]
	if !ok || v == nil {
		return 0, bond.InvalidArgumentf("required parameter %q is missing", key)
	}
	switch n := v.(type) {
	case float64:
		if n != math.Trunc(n) {
			return 0, bond.InvalidArgumentf("parameter %q must be an integer", key)
		}
		return int(n), nil
	case int:
		return n, nil
	default:
		return 0, bond.InvalidArgumentf("parameter %q must be a number", key)
	}
}

// normalizeArgument turns JSON float64 values that are whole numbers into
// ints so the bridge receives the integer the action expects. Strings pass
// through untouched.
func normalizeArgument(v any) any {
	if f, ok := v.(float64); ok && f == math.Trunc(f) {
		return int(f)
	}
	return v
}

// toolError converts any error into the uniform structured error response.
// Nothing crosses the tool boundary unconverted.
func toolError(err error) *mcp.CallToolResult {
	out := ErrorOutput{
		Error: ErrorBody{
			Kind:    string(bond.KindOf(err)),
			Message: err.Error(),
		},
	}
	return mcp.NewToolResultError(formatJSON(out))
}

func formatJSON(v any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf(`{"error":"failed to marshal response: %s"}`, err)
	}
	return string(b)
}
