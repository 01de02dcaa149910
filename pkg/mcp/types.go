package mcp

import "github.com/awilliams/bondmcp/pkg/bond"

// --- List Devices Tool ---

// ListDevicesOutput is the output for the list_devices tool
type ListDevicesOutput struct {
	Devices []DeviceInfo `json:"devices" jsonschema:"description=List of paired devices"`
	Count   int          `json:"count" jsonschema:"description=Total number of devices"`
}

// DeviceInfo represents a device in tool outputs. Error is set on entries
// whose detail fetch failed during enumeration.
type DeviceInfo struct {
	ID       string   `json:"id" jsonschema:"description=Bond device identifier"`
	Name     string   `json:"name,omitempty" jsonschema:"description=User-friendly device name"`
	Type     string   `json:"type,omitempty" jsonschema:"description=Bond device type code (CF/FP/GX/LT/MS/GD)"`
	Location string   `json:"location,omitempty" jsonschema:"description=Device location"`
	Actions  []string `json:"actions,omitempty" jsonschema:"description=Actions the device supports"`
	Error    string   `json:"error,omitempty" jsonschema:"description=Why this entry could not be fetched"`
}

// --- Get Device Info Tool ---

// GetDeviceInfoOutput is the output for the get_device_info tool
type GetDeviceInfoOutput struct {
	Device DeviceInfo `json:"device" jsonschema:"description=Device information"`
}

// --- Get Device State Tool ---

// GetDeviceStateOutput is the output for the get_device_state tool
type GetDeviceStateOutput struct {
	DeviceID string         `json:"device_id" jsonschema:"description=Device identifier"`
	State    map[string]any `json:"state" jsonschema:"description=Current device state"`
}

// --- Get Bridge Info Tool ---

// GetBridgeInfoOutput is the output for the get_bridge_info tool
type GetBridgeInfoOutput struct {
	Bridge       map[string]any `json:"bridge" jsonschema:"description=Bridge metadata (firmware, model, uptime)"`
	ServerConfig ServerConfig   `json:"server_config" jsonschema:"description=Active client configuration"`
}

// ServerConfig echoes the non-secret client settings in bridge info output
type ServerConfig struct {
	Host           string  `json:"host"`
	TimeoutSeconds float64 `json:"timeout_seconds"`
	MaxRetries     int     `json:"max_retries"`
}

// --- Toggle Device Power Tool ---

// ToggleDevicePowerOutput is the output for the toggle_device_power tool
type ToggleDevicePowerOutput struct {
	DeviceID string `json:"device_id" jsonschema:"description=Device identifier"`
	Action   string `json:"action" jsonschema:"description=What happened (turned on / turned off)"`
}

// --- Set Fan Speed Tool ---

// SetFanSpeedOutput is the output for the set_fan_speed tool
type SetFanSpeedOutput struct {
	DeviceID string `json:"device_id" jsonschema:"description=Device identifier"`
	Speed    int    `json:"speed" jsonschema:"description=Requested speed level"`
	Action   string `json:"action" jsonschema:"description=What happened"`
}

// --- Set Fan Direction Tool ---

// SetFanDirectionOutput is the output for the set_fan_direction tool
type SetFanDirectionOutput struct {
	DeviceID  string `json:"device_id" jsonschema:"description=Device identifier"`
	Direction string `json:"direction" jsonschema:"description=New fan direction"`
}

// --- Control Shades Tool ---

// ControlShadesOutput is the output for the control_shades tool
type ControlShadesOutput struct {
	DeviceID string `json:"device_id" jsonschema:"description=Device identifier"`
	Action   string `json:"action" jsonschema:"description=Shade action performed"`
	Position *int   `json:"position,omitempty" jsonschema:"description=Target position when action was set_position"`
}

// --- Set Light Brightness Tool ---

// SetLightBrightnessOutput is the output for the set_light_brightness tool
type SetLightBrightnessOutput struct {
	DeviceID   string `json:"device_id" jsonschema:"description=Device identifier"`
	Brightness int    `json:"brightness" jsonschema:"description=Requested brightness"`
	Action     string `json:"action" jsonschema:"description=What happened"`
}

// --- Send Custom Action Tool ---

// SendCustomActionOutput is the output for the send_custom_action tool
type SendCustomActionOutput struct {
	DeviceID string `json:"device_id" jsonschema:"description=Device identifier"`
	Action   string `json:"action" jsonschema:"description=Bond action name"`
	Argument any    `json:"argument,omitempty" jsonschema:"description=Argument sent with the action"`
}

// --- Structured errors ---

// ErrorOutput is the uniform structured error returned by every tool
type ErrorOutput struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody carries the error kind and a human-readable message
type ErrorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// --- Helper conversions ---

// entryToInfo converts a listing entry to DeviceInfo, degrading failed
// entries to an error placeholder.
func entryToInfo(e bond.DeviceListEntry) DeviceInfo {
	if e.Err != nil {
		return DeviceInfo{ID: e.ID, Error: e.Err.Error()}
	}
	return deviceToInfo(e.Device)
}

// deviceToInfo converts a bond.Device to DeviceInfo
func deviceToInfo(d *bond.Device) DeviceInfo {
	return DeviceInfo{
		ID:       d.ID,
		Name:     d.Name,
		Type:     d.Type,
		Location: d.Location,
		Actions:  d.Actions,
	}
}
