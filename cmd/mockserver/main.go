// Command mockserver is a stdio MCP server exposing stub tools shaped like
// the real upstream ones. It exists so the stdio transport can be exercised
// without a deployed server; mcpbench spawns it via MCP_SERVER_COMMAND.
package main

import (
	"flag"
	"os"

	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
)

func main() {
	// Accept the flags the harness always passes to stdio servers.
	debug := flag.Bool("debug", false, "Enable debug mode")
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	level, err := zerolog.ParseLevel(*logLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	if *debug {
		level = zerolog.DebugLevel
	}
	// Stdout carries the protocol; logs go to stderr only.
	logger := zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()

	logger.Info().Msg("mockserver listening on stdio")
	if err := server.ServeStdio(newServer()); err != nil {
		logger.Fatal().Err(err).Msg("mockserver exited")
	}
}
