package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/awilliams/bondmcp/pkg/bond"
	"github.com/awilliams/bondmcp/pkg/config"
	bondmcp "github.com/awilliams/bondmcp/pkg/mcp"
)

func main() {
	// Logging must go to stderr — stdout is the MCP transport
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	zerolog.SetGlobalLevel(cfg.LogLevel)

	client := bond.NewClient(cfg.Bond)
	server := bondmcp.NewServer(client, cfg.Bond)

	log.Info().Str("host", cfg.Bond.Host).Msg("Starting Bond MCP server on stdio")

	if err := server.ServeStdio(); err != nil {
		log.Fatal().Err(err).Msg("MCP server failed")
	}
}
