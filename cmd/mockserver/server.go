package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// datasource mirrors the shape scenarios expect from the upstream: each
// entry carries at least uid, name and type.
type datasource struct {
	UID  string `json:"uid"`
	Name string `json:"name"`
	Type string `json:"type"`
}

var stubDatasources = []datasource{
	{UID: "loki-local", Name: "Loki (local)", Type: "loki"},
	{UID: "prom-local", Name: "Prometheus (local)", Type: "prometheus"},
}

var stubLogLines = []string{
	`level=info msg="mock log line 1" container=bench-upstream-1`,
	`level=info msg="mock log line 2" container=bench-upstream-1`,
	`level=warn msg="mock log line 3" container=bench-upstream-1`,
}

func newServer() *server.MCPServer {
	s := server.NewMCPServer("mockserver", "0.1.0", server.WithToolCapabilities(false))

	s.AddTool(
		mcp.NewTool("list_datasources",
			mcp.WithDescription("List the datasources configured in the upstream system."),
		),
		listDatasources,
	)
	s.AddTool(
		mcp.NewTool("query_logs",
			mcp.WithDescription("Query log lines from a logs datasource."),
			mcp.WithString("datasourceUid", mcp.Required(), mcp.Description("UID of the datasource to query")),
			mcp.WithString("logql", mcp.Required(), mcp.Description("Log query expression")),
		),
		queryLogs,
	)
	s.AddTool(
		mcp.NewTool("get_time",
			mcp.WithDescription("Return the current server time."),
		),
		getTime,
	)
	return s
}

func listDatasources(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	b, err := json.Marshal(stubDatasources)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(b)), nil
}

func queryLogs(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid, err := req.RequireString("datasourceUid")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if _, err := req.RequireString("logql"); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	for _, ds := range stubDatasources {
		if ds.UID == uid {
			b, err := json.Marshal(stubLogLines)
			if err != nil {
				return nil, err
			}
			return mcp.NewToolResultText(string(b)), nil
		}
	}
	return mcp.NewToolResultError(fmt.Sprintf("datasource %q not found", uid)), nil
}

func getTime(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(time.Now().Format(time.RFC3339)), nil
}
