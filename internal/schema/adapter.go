// Package schema converts MCP tool descriptors into the function-calling
// tool schema consumed by chat-completion APIs.
package schema

import (
	"errors"
	"fmt"

	"github.com/openai/openai-go/v3"

	"github.com/windlant/mcpbench/internal/session"
)

// ErrMissingName is returned for a descriptor without a tool name.
var ErrMissingName = errors.New("tool descriptor missing name")

// Convert translates one descriptor into an OpenAI function tool. The
// descriptor's input schema is passed through as the function parameters
// with one normalization: "properties" is always present, defaulting to an
// empty mapping when the server omitted it. Models reject function schemas
// without a properties key.
//
// Convert is pure: it never mutates the descriptor and yields identical
// output for identical input.
func Convert(d session.ToolDescriptor) (openai.ChatCompletionToolUnionParam, error) {
	if d.Name == "" {
		return openai.ChatCompletionToolUnionParam{}, ErrMissingName
	}

	params := make(openai.FunctionParameters, len(d.InputSchema)+1)
	for k, v := range d.InputSchema {
		params[k] = v
	}
	if _, ok := params["properties"]; !ok {
		params["properties"] = map[string]any{}
	}

	return openai.ChatCompletionToolUnionParam{
		OfFunction: &openai.ChatCompletionFunctionToolParam{
			Function: openai.FunctionDefinitionParam{
				Name:        d.Name,
				Description: openai.String(d.Description),
				Parameters:  params,
			},
		},
	}, nil
}

// ConvertAll converts every descriptor, failing on the first invalid one.
func ConvertAll(descs []session.ToolDescriptor) ([]openai.ChatCompletionToolUnionParam, error) {
	tools := make([]openai.ChatCompletionToolUnionParam, 0, len(descs))
	for _, d := range descs {
		tool, err := Convert(d)
		if err != nil {
			return nil, fmt.Errorf("convert tool %q: %w", d.Name, err)
		}
		tools = append(tools, tool)
	}
	return tools, nil
}
