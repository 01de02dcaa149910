package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/server"

	"github.com/awilliams/bondmcp/pkg/bond"
)

// BondClient is the bridge surface the tool handlers need. *bond.Client
// implements it; tests substitute fakes.
type BondClient interface {
	ListDevices(ctx context.Context) ([]bond.DeviceListEntry, error)
	GetDeviceInfo(ctx context.Context, id string) (*bond.Device, error)
	GetDeviceState(ctx context.Context, id string) (bond.DeviceState, error)
	GetBridgeInfo(ctx context.Context) (bond.BridgeInfo, error)
	SendAction(ctx context.Context, id, action string, argument any) error
	TurnOn(ctx context.Context, id string) error
	TurnOff(ctx context.Context, id string) error
	SetSpeed(ctx context.Context, id string, speed int) error
	SetDirection(ctx context.Context, id string, direction int) error
	OpenShades(ctx context.Context, id string) error
	CloseShades(ctx context.Context, id string) error
	SetPosition(ctx context.Context, id string, position int) error
	SetBrightness(ctx context.Context, id string, brightness int) error
}

// Compile-time check that the real client implements BondClient
var _ BondClient = (*bond.Client)(nil)

// Server wraps the MCP server with Bond Bridge device control tools.
type Server struct {
	mcpServer *server.MCPServer
	client    BondClient
	cfg       bond.Config
}

// NewServer creates a new MCP server exposing the bridge behind client.
func NewServer(client BondClient, cfg bond.Config) *Server {
	s := &Server{
		client: client,
		cfg:    cfg,
	}

	s.mcpServer = server.NewMCPServer(
		"bond-mcp-server",
		"0.1.0",
		server.WithToolCapabilities(true),
	)

	s.registerTools()

	return s
}

// ServeStdio starts the MCP server using stdio transport
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}
