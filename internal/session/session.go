// Package session normalizes the three MCP transports behind a single
// Session interface. Callers pick a transport at construction time via
// Connect; after that there is no transport-visible branching.
package session

import (
	"context"
	"errors"
)

// Transport selector values accepted by Connect.
const (
	TransportStdio          = "stdio"
	TransportSSE            = "sse"
	TransportStreamableHTTP = "streamable-http"

	// transportStreamingHTTPAlias is accepted as a spelling of
	// TransportStreamableHTTP for callers using the older name.
	transportStreamingHTTPAlias = "streaming-http"
)

// ErrUnknownTransport is returned by Connect for a selector outside the
// recognized set. It is a configuration error: no connection is attempted
// and no fallback transport is tried.
var ErrUnknownTransport = errors.New("unknown transport")

// ToolDescriptor is a tool's self-description as exposed by the remote
// server at discovery time. Immutable for the session's lifetime.
type ToolDescriptor struct {
	Name        string
	Description string
	// InputSchema is the JSON-schema-shaped parameter description. It may
	// lack a "properties" key; the schema adapter fills that in.
	InputSchema map[string]any
}

// ContentItem is one item of a tool result. Type is "text" for text items.
type ContentItem struct {
	Type string
	Text string
}

// ToolResult is the outcome of a single tool invocation.
type ToolResult struct {
	Content []ContentItem
	// IsError marks a tool-level failure reported by the remote process.
	// It is surfaced as content and never interpreted here.
	IsError bool
}

// Session is the transport-agnostic handle to a remote MCP tool process.
type Session interface {
	// Initialize performs the protocol handshake. Connect calls it before
	// returning, so callers normally never invoke it themselves.
	Initialize(ctx context.Context) error

	// ListTools fetches the server's tool descriptors.
	ListTools(ctx context.Context) ([]ToolDescriptor, error)

	// CallTool invokes a tool by name with already-decoded arguments.
	CallTool(ctx context.Context, name string, args map[string]any) (*ToolResult, error)

	// Close tears down the transport: terminates the child process for
	// stdio, closes the connection for the HTTP transports.
	Close() error
}

// connect is a seam for tests; production code always uses Connect.
var connect = Connect

// WithSession connects, runs fn, and guarantees teardown on every exit
// path, including a failed handshake or an error from fn.
func WithSession(ctx context.Context, cfg Config, fn func(Session) error) error {
	sess, err := connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer sess.Close()
	return fn(sess)
}
