package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	// Blank env vars are treated as unset, so defaults apply.
	for _, name := range []string{
		"MCP_TRANSPORT", "MCP_SERVER_URL", "MCP_SERVER_COMMAND", "MCP_SERVER_ARGS",
		"UPSTREAM_URL", "UPSTREAM_API_KEY", "OPENAI_BASE_URL", "OPENAI_API_KEY",
		"MCPBENCH_MODELS", "MCPBENCH_JUDGE_MODEL",
	} {
		t.Setenv(name, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "sse", cfg.Transport)
	assert.Equal(t, "http://localhost:8000", cfg.ServerURL)
	assert.Equal(t, "http://localhost:3000", cfg.UpstreamURL)
	assert.Equal(t, []string{"gpt-4o", "claude-3-5-sonnet-20240620"}, cfg.Models)
	assert.Equal(t, "gpt-4o", cfg.JudgeModel)
	assert.Empty(t, cfg.ServerCommand)
	assert.Empty(t, cfg.ServerArgs)
	assert.Empty(t, cfg.UpstreamAPIKey)
	assert.Empty(t, cfg.OpenAIBaseURL)
	assert.Empty(t, cfg.OpenAIAPIKey)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("MCP_TRANSPORT", "stdio")
	t.Setenv("MCP_SERVER_COMMAND", "/usr/local/bin/mockserver")
	t.Setenv("MCP_SERVER_ARGS", "--foo,bar")
	t.Setenv("MCP_SERVER_URL", "http://mcp.internal:9000/")
	t.Setenv("UPSTREAM_URL", "http://upstream.internal/")
	t.Setenv("UPSTREAM_API_KEY", "secret")
	t.Setenv("MCPBENCH_MODELS", "gpt-4o, gpt-4o-mini ,")
	t.Setenv("MCPBENCH_JUDGE_MODEL", "gpt-4o-mini")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "stdio", cfg.Transport)
	assert.Equal(t, "/usr/local/bin/mockserver", cfg.ServerCommand)
	assert.Equal(t, []string{"--foo", "bar"}, cfg.ServerArgs)
	// Trailing slashes are stripped so URL joining stays predictable.
	assert.Equal(t, "http://mcp.internal:9000", cfg.ServerURL)
	assert.Equal(t, "http://upstream.internal", cfg.UpstreamURL)
	assert.Equal(t, "secret", cfg.UpstreamAPIKey)
	assert.Equal(t, []string{"gpt-4o", "gpt-4o-mini"}, cfg.Models)
	assert.Equal(t, "gpt-4o-mini", cfg.JudgeModel)
}

func TestSplitList(t *testing.T) {
	assert.Nil(t, splitList(""))
	assert.Equal(t, []string{"a"}, splitList("a"))
	assert.Equal(t, []string{"a", "b"}, splitList(" a , b ,"))
}
