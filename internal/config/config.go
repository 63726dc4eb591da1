// Package config resolves process configuration from the environment.
// A Config is constructed once per run and read-only thereafter; it is
// passed explicitly instead of living in package state.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Defaults matching a local docker-compose deployment.
const (
	defaultTransport = "sse"
	defaultServerURL = "http://localhost:8000"
	defaultUpstream  = "http://localhost:3000"
)

// defaultModels are the models scenarios run against when MCPBENCH_MODELS
// is unset.
var defaultModels = []string{"gpt-4o", "claude-3-5-sonnet-20240620"}

// Config is the full configuration surface consumed by the harness.
type Config struct {
	// Transport selector: "stdio", "sse" or "streamable-http".
	Transport string

	// ServerURL is the MCP server base URL (HTTP transports).
	ServerURL string

	// ServerCommand and ServerArgs locate the MCP server executable (stdio).
	ServerCommand string
	ServerArgs    []string

	// UpstreamURL and UpstreamAPIKey identify the system under test behind
	// the MCP server.
	UpstreamURL    string
	UpstreamAPIKey string

	// OpenAIBaseURL and OpenAIAPIKey configure the chat-completion provider.
	OpenAIBaseURL string
	OpenAIAPIKey  string

	// Models are the models under test; JudgeModel scores final answers.
	Models     []string
	JudgeModel string
}

// Load reads configuration from the environment, with an optional
// mcpbench.yaml in the working directory for values the environment does not
// set. Environment variables win.
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	v.SetConfigName("mcpbench")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	v.SetDefault("MCP_TRANSPORT", defaultTransport)
	v.SetDefault("MCP_SERVER_URL", defaultServerURL)
	v.SetDefault("MCP_SERVER_COMMAND", "")
	v.SetDefault("MCP_SERVER_ARGS", "")
	v.SetDefault("UPSTREAM_URL", defaultUpstream)
	v.SetDefault("UPSTREAM_API_KEY", "")
	v.SetDefault("OPENAI_BASE_URL", "")
	v.SetDefault("OPENAI_API_KEY", "")
	v.SetDefault("MCPBENCH_MODELS", strings.Join(defaultModels, ","))
	v.SetDefault("MCPBENCH_JUDGE_MODEL", "gpt-4o")

	cfg := &Config{
		Transport:      v.GetString("MCP_TRANSPORT"),
		ServerURL:      strings.TrimRight(v.GetString("MCP_SERVER_URL"), "/"),
		ServerCommand:  v.GetString("MCP_SERVER_COMMAND"),
		ServerArgs:     splitList(v.GetString("MCP_SERVER_ARGS")),
		UpstreamURL:    strings.TrimRight(v.GetString("UPSTREAM_URL"), "/"),
		UpstreamAPIKey: v.GetString("UPSTREAM_API_KEY"),
		OpenAIBaseURL:  v.GetString("OPENAI_BASE_URL"),
		OpenAIAPIKey:   v.GetString("OPENAI_API_KEY"),
		Models:         splitList(v.GetString("MCPBENCH_MODELS")),
		JudgeModel:     v.GetString("MCPBENCH_JUDGE_MODEL"),
	}
	return cfg, nil
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
