package session

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/client/transport"
	"github.com/mark3labs/mcp-go/mcp"
)

// Headers and environment variables identifying the upstream system the MCP
// server proxies to. The HTTP transports forward them as headers; stdio
// passes them to the child process environment.
const (
	upstreamURLHeader    = "X-Upstream-URL"
	upstreamAPIKeyHeader = "X-Upstream-API-Key"

	upstreamURLEnvVar    = "UPSTREAM_URL"
	upstreamAPIKeyEnvVar = "UPSTREAM_API_KEY"
)

// debugArgs are appended to the stdio server command line so that child
// process logs are useful when a scenario fails.
var debugArgs = []string{"--debug", "--log-level", "debug"}

// Config carries the transport selector and transport-specific addressing.
type Config struct {
	// Transport is one of TransportStdio, TransportSSE or
	// TransportStreamableHTTP.
	Transport string

	// ServerURL is the MCP server base URL for the HTTP transports.
	ServerURL string

	// Command and Args describe the local executable for stdio.
	Command string
	Args    []string

	// UpstreamURL and UpstreamAPIKey identify the system the MCP server
	// talks to; forwarded as headers (HTTP) or environment (stdio).
	UpstreamURL    string
	UpstreamAPIKey string
}

func (c Config) headers() map[string]string {
	h := map[string]string{upstreamURLHeader: c.UpstreamURL}
	if c.UpstreamAPIKey != "" {
		h[upstreamAPIKeyHeader] = c.UpstreamAPIKey
	}
	return h
}

func (c Config) childEnv() []string {
	env := append(os.Environ(), upstreamURLEnvVar+"="+c.UpstreamURL)
	if c.UpstreamAPIKey != "" {
		env = append(env, upstreamAPIKeyEnvVar+"="+c.UpstreamAPIKey)
	}
	return env
}

// Connect opens the channel selected by cfg.Transport, performs the
// initialize handshake, and returns a live Session. A partially acquired
// connection is closed before the error is returned, so a failed handshake
// never leaks a child process or an open stream.
func Connect(ctx context.Context, cfg Config) (Session, error) {
	var (
		c   *client.Client
		err error
		// stdio child processes are started by the constructor; the HTTP
		// transports need an explicit Start.
		needsStart bool
	)

	switch cfg.Transport {
	case TransportStdio:
		args := append(append([]string{}, cfg.Args...), debugArgs...)
		c, err = client.NewStdioMCPClient(cfg.Command, cfg.childEnv(), args...)
	case TransportSSE:
		c, err = client.NewSSEMCPClient(cfg.ServerURL+"/sse",
			transport.WithHeaders(cfg.headers()))
		needsStart = true
	case TransportStreamableHTTP, transportStreamingHTTPAlias:
		c, err = client.NewStreamableHttpClient(cfg.ServerURL+"/mcp",
			transport.WithHTTPHeaders(cfg.headers()))
		needsStart = true
	default:
		return nil, fmt.Errorf("%w: %q (want %q, %q or %q)", ErrUnknownTransport,
			cfg.Transport, TransportStdio, TransportSSE, TransportStreamableHTTP)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s transport: %w", cfg.Transport, err)
	}

	if needsStart {
		if err := c.Start(ctx); err != nil {
			c.Close()
			return nil, fmt.Errorf("start %s transport: %w", cfg.Transport, err)
		}
	}

	sess := &mcpSession{client: c}
	if err := sess.Initialize(ctx); err != nil {
		c.Close()
		return nil, err
	}
	return sess, nil
}

// mcpSession adapts an mcp-go client to the Session interface. All three
// transports converge here.
type mcpSession struct {
	client *client.Client
}

func (s *mcpSession) Initialize(ctx context.Context) error {
	req := mcp.InitializeRequest{}
	req.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	req.Params.ClientInfo = mcp.Implementation{
		Name:    "mcpbench",
		Version: "0.1.0",
	}
	if _, err := s.client.Initialize(ctx, req); err != nil {
		return fmt.Errorf("initialize handshake: %w", err)
	}
	return nil
}

func (s *mcpSession) ListTools(ctx context.Context) ([]ToolDescriptor, error) {
	res, err := s.client.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		return nil, fmt.Errorf("list tools: %w", err)
	}
	descs := make([]ToolDescriptor, 0, len(res.Tools))
	for _, t := range res.Tools {
		schema, err := inputSchemaMap(t)
		if err != nil {
			return nil, fmt.Errorf("tool %s: %w", t.Name, err)
		}
		descs = append(descs, ToolDescriptor{
			Name:        t.Name,
			Description: t.Description,
			InputSchema: schema,
		})
	}
	return descs, nil
}

func (s *mcpSession) CallTool(ctx context.Context, name string, args map[string]any) (*ToolResult, error) {
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	res, err := s.client.CallTool(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("call tool %s: %w", name, err)
	}

	result := &ToolResult{IsError: res.IsError}
	for _, c := range res.Content {
		switch c := c.(type) {
		case mcp.TextContent:
			result.Content = append(result.Content, ContentItem{Type: "text", Text: c.Text})
		case mcp.ImageContent:
			result.Content = append(result.Content, ContentItem{Type: "image"})
		case mcp.AudioContent:
			result.Content = append(result.Content, ContentItem{Type: "audio"})
		case mcp.EmbeddedResource:
			result.Content = append(result.Content, ContentItem{Type: "resource"})
		default:
			result.Content = append(result.Content, ContentItem{Type: "unknown"})
		}
	}
	return result, nil
}

func (s *mcpSession) Close() error {
	return s.client.Close()
}

// inputSchemaMap round-trips a tool's input schema through JSON to obtain a
// generic map, keeping whatever keys the server sent.
func inputSchemaMap(t mcp.Tool) (map[string]any, error) {
	raw := t.RawInputSchema
	if len(raw) == 0 {
		b, err := json.Marshal(t.InputSchema)
		if err != nil {
			return nil, fmt.Errorf("encode input schema: %w", err)
		}
		raw = b
	}
	var schema map[string]any
	if err := json.Unmarshal(raw, &schema); err != nil {
		return nil, fmt.Errorf("decode input schema: %w", err)
	}
	return schema, nil
}
