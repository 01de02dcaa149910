package mcp

import "github.com/mark3labs/mcp-go/mcp"

// registerTools registers all MCP tools with the server
func (s *Server) registerTools() {
	// List devices
	s.mcpServer.AddTool(
		mcp.NewTool("list_devices",
			mcp.WithDescription("List all devices paired with the Bond Bridge"),
		),
		s.handleListDevices,
	)

	// Get device info
	s.mcpServer.AddTool(
		mcp.NewTool("get_device_info",
			mcp.WithDescription("Get detailed information about a specific device, including its supported actions"),
			mcp.WithString("device_id",
				mcp.Required(),
				mcp.Description("The Bond device identifier"),
			),
		),
		s.handleGetDeviceInfo,
	)

	// Get device state
	s.mcpServer.AddTool(
		mcp.NewTool("get_device_state",
			mcp.WithDescription("Get the current state of a device (power, speed, direction, brightness, position)"),
			mcp.WithString("device_id",
				mcp.Required(),
				mcp.Description("The Bond device identifier"),
			),
		),
		s.handleGetDeviceState,
	)

	// Get bridge info
	s.mcpServer.AddTool(
		mcp.NewTool("get_bridge_info",
			mcp.WithDescription("Get Bond Bridge information and status"),
		),
		s.handleGetBridgeInfo,
	)

	// Toggle power
	s.mcpServer.AddTool(
		mcp.NewTool("toggle_device_power",
			mcp.WithDescription("Toggle power state of a device (on/off)"),
			mcp.WithString("device_id",
				mcp.Required(),
				mcp.Description("The Bond device identifier"),
			),
		),
		s.handleToggleDevicePower,
	)

	// Fan speed
	s.mcpServer.AddTool(
		mcp.NewTool("set_fan_speed",
			mcp.WithDescription("Set fan speed for a ceiling fan device"),
			mcp.WithString("device_id",
				mcp.Required(),
				mcp.Description("The Bond fan device identifier"),
			),
			mcp.WithNumber("speed",
				mcp.Required(),
				mcp.Description("Fan speed level (0-8, where 0 is off)"),
			),
		),
		s.handleSetFanSpeed,
	)

	// Fan direction
	s.mcpServer.AddTool(
		mcp.NewTool("set_fan_direction",
			mcp.WithDescription("Set fan direction for a ceiling fan device"),
			mcp.WithString("device_id",
				mcp.Required(),
				mcp.Description("The Bond fan device identifier"),
			),
			mcp.WithString("direction",
				mcp.Required(),
				mcp.Description("Fan direction (\"forward\" or \"reverse\")"),
			),
		),
		s.handleSetFanDirection,
	)

	// Shades
	s.mcpServer.AddTool(
		mcp.NewTool("control_shades",
			mcp.WithDescription("Control motorized shades"),
			mcp.WithString("device_id",
				mcp.Required(),
				mcp.Description("The Bond shade device identifier"),
			),
			mcp.WithString("action",
				mcp.Required(),
				mcp.Description("Action to perform (\"open\", \"close\", or \"set_position\")"),
			),
			mcp.WithNumber("position",
				mcp.Description("Position percentage (0-100) when action is \"set_position\""),
			),
		),
		s.handleControlShades,
	)

	// Light brightness
	s.mcpServer.AddTool(
		mcp.NewTool("set_light_brightness",
			mcp.WithDescription("Set brightness for a dimmable light device"),
			mcp.WithString("device_id",
				mcp.Required(),
				mcp.Description("The Bond light device identifier"),
			),
			mcp.WithNumber("brightness",
				mcp.Required(),
				mcp.Description("Brightness percentage (0-100, where 0 is off)"),
			),
		),
		s.handleSetLightBrightness,
	)

	// Custom action escape hatch
	s.mcpServer.AddTool(
		mcp.NewTool("send_custom_action",
			mcp.WithDescription("Send a custom Bond action to a device (e.g. \"TurnOn\", \"IncreaseSpeed\", \"Preset\")"),
			mcp.WithString("device_id",
				mcp.Required(),
				mcp.Description("The Bond device identifier"),
			),
			mcp.WithString("action",
				mcp.Required(),
				mcp.Description("Bond action name"),
			),
			mcp.WithNumber("argument",
				mcp.Description("Optional argument for the action"),
			),
		),
		s.handleSendCustomAction,
	)
}
