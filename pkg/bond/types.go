package bond

import "time"

// Config holds the connection settings for a Bond Bridge. It is built once
// at startup and never mutated afterwards.
type Config struct {
	Host       string        // bridge IP address or hostname, no scheme
	Token      string        // local API token
	Timeout    time.Duration // per-request timeout
	MaxRetries int           // retries after the initial attempt
	RetryDelay time.Duration // base delay between retries (grows linearly)
}

// Bond device type codes as reported by the bridge.
const (
	DeviceTypeCeilingFan      = "CF"
	DeviceTypeFireplace       = "FP"
	DeviceTypeGeneric         = "GX"
	DeviceTypeLight           = "LT"
	DeviceTypeMotorizedShades = "MS"
	DeviceTypeGarageDoor      = "GD"
)

// Bond action names the bridge understands.
const (
	ActionTurnOn             = "TurnOn"
	ActionTurnOff            = "TurnOff"
	ActionTogglePower        = "TogglePower"
	ActionSetSpeed           = "SetSpeed"
	ActionIncreaseSpeed      = "IncreaseSpeed"
	ActionDecreaseSpeed      = "DecreaseSpeed"
	ActionSetDirection       = "SetDirection"
	ActionToggleDirection    = "ToggleDirection"
	ActionSetBrightness      = "SetBrightness"
	ActionIncreaseBrightness = "IncreaseBrightness"
	ActionDecreaseBrightness = "DecreaseBrightness"
	ActionOpen               = "Open"
	ActionClose              = "Close"
	ActionSetPosition        = "SetPosition"
	ActionHold               = "Hold"
	ActionPreset             = "Preset"
)

// Device is a direct projection of the bridge's device detail response.
// Fields keep their wire names; nothing is reinterpreted.
type Device struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Type     string   `json:"type"`
	Location string   `json:"location,omitempty"`
	Actions  []string `json:"actions,omitempty"`
}

// DeviceState is the current state of a device as a dynamic map. Which
// properties are present depends on the device type (power, speed,
// direction, brightness, position, timer).
type DeviceState map[string]any

// BridgeInfo is the bridge's own metadata (firmware, model, uptime, ...).
type BridgeInfo map[string]any

// DeviceListEntry is one row of a device listing. When the per-device
// detail fetch fails the entry degrades: Device is nil and Err records
// what went wrong, without failing the listing as a whole.
type DeviceListEntry struct {
	ID     string
	Device *Device
	Err    error
}

// ActionRequest describes a single device action invocation.
type ActionRequest struct {
	DeviceID string
	Action   string
	Argument any
}

// body returns the JSON body the bridge expects: {"argument": x} when an
// argument is present, {} otherwise.
func (r ActionRequest) body() any {
	if r.Argument == nil {
		return struct{}{}
	}
	return map[string]any{"argument": r.Argument}
}
