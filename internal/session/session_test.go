package session

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectUnknownTransport(t *testing.T) {
	_, err := Connect(context.Background(), Config{Transport: "websocket"})
	require.ErrorIs(t, err, ErrUnknownTransport)
	assert.Contains(t, err.Error(), "websocket")
}

func TestConfigHeaders(t *testing.T) {
	cfg := Config{UpstreamURL: "http://localhost:3000"}
	assert.Equal(t, map[string]string{
		"X-Upstream-URL": "http://localhost:3000",
	}, cfg.headers())

	cfg.UpstreamAPIKey = "secret"
	assert.Equal(t, map[string]string{
		"X-Upstream-URL":     "http://localhost:3000",
		"X-Upstream-API-Key": "secret",
	}, cfg.headers())
}

func TestConfigChildEnv(t *testing.T) {
	cfg := Config{UpstreamURL: "http://localhost:3000"}
	env := cfg.childEnv()
	assert.Contains(t, env, "UPSTREAM_URL=http://localhost:3000")
	assert.NotContains(t, env, "UPSTREAM_API_KEY=")

	cfg.UpstreamAPIKey = "secret"
	assert.Contains(t, cfg.childEnv(), "UPSTREAM_API_KEY=secret")
}

func TestInputSchemaMapPrefersRawSchema(t *testing.T) {
	tool := mcp.Tool{
		Name:           "query_logs",
		RawInputSchema: json.RawMessage(`{"type":"object","$defs":{"x":{"type":"string"}}}`),
	}
	schema, err := inputSchemaMap(tool)
	require.NoError(t, err)
	assert.Equal(t, "object", schema["type"])
	// Keys outside the typed schema struct survive.
	assert.Contains(t, schema, "$defs")
}

func TestInputSchemaMapFromTypedSchema(t *testing.T) {
	tool := mcp.Tool{Name: "get_time"}
	tool.InputSchema.Type = "object"
	tool.InputSchema.Properties = map[string]any{
		"tz": map[string]any{"type": "string"},
	}
	schema, err := inputSchemaMap(tool)
	require.NoError(t, err)
	assert.Equal(t, "object", schema["type"])
	props, ok := schema["properties"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, props, "tz")
}

// fakeSession tracks teardown for the scoped-acquisition tests.
type fakeSession struct {
	closed int
}

func (f *fakeSession) Initialize(ctx context.Context) error { return nil }
func (f *fakeSession) ListTools(ctx context.Context) ([]ToolDescriptor, error) {
	return nil, nil
}
func (f *fakeSession) CallTool(ctx context.Context, name string, args map[string]any) (*ToolResult, error) {
	return nil, assert.AnError
}
func (f *fakeSession) Close() error {
	f.closed++
	return nil
}

func withStubConnect(t *testing.T, fn func(ctx context.Context, cfg Config) (Session, error)) {
	t.Helper()
	orig := connect
	connect = fn
	t.Cleanup(func() { connect = orig })
}

func TestWithSessionClosesOnSuccess(t *testing.T) {
	fake := &fakeSession{}
	withStubConnect(t, func(ctx context.Context, cfg Config) (Session, error) {
		return fake, nil
	})

	err := WithSession(context.Background(), Config{}, func(s Session) error { return nil })
	require.NoError(t, err)
	assert.Equal(t, 1, fake.closed)
}

func TestWithSessionClosesOnCallFailure(t *testing.T) {
	fake := &fakeSession{}
	withStubConnect(t, func(ctx context.Context, cfg Config) (Session, error) {
		return fake, nil
	})

	err := WithSession(context.Background(), Config{}, func(s Session) error {
		_, err := s.CallTool(context.Background(), "query_logs", nil)
		return err
	})
	require.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, 1, fake.closed, "session must be torn down when a tool call fails")
}

func TestWithSessionPropagatesConnectError(t *testing.T) {
	withStubConnect(t, func(ctx context.Context, cfg Config) (Session, error) {
		return nil, assert.AnError
	})

	err := WithSession(context.Background(), Config{}, func(s Session) error {
		t.Fatal("fn must not run when connect fails")
		return nil
	})
	require.ErrorIs(t, err, assert.AnError)
}
