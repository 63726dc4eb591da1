// Package turn drives one request/validate/execute/append cycle between a
// chat model and a tool session. A turn is the unit multi-step scenarios
// compose; retries, if any, belong to the caller issuing a fresh turn.
package turn

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/rs/zerolog"

	"github.com/windlant/mcpbench/internal/session"
)

// Contract violations. Each fails the turn before any further step runs;
// none of them is retried or coerced here.
var (
	// ErrToolCallCount: the response did not contain exactly one tool call.
	ErrToolCallCount = errors.New("expected exactly one tool call")
	// ErrToolName: the call named a different tool than expected.
	ErrToolName = errors.New("unexpected tool name")
	// ErrToolArgs: the call's arguments were malformed or did not match the
	// expected values.
	ErrToolArgs = errors.New("unexpected tool arguments")
	// ErrToolResult: the tool result did not hold exactly one text item.
	ErrToolResult = errors.New("tool result must contain exactly one text item")
)

// Expectation states which tool the model must call in this turn. Args lists
// argument values that must match exactly; a nil or empty Args means the
// arguments are not checked. This "no expectation is automatically
// satisfied" policy is deliberate and part of the contract.
type Expectation struct {
	Tool string
	Args map[string]any
}

// Orchestrator runs turns for one model against one provider.
type Orchestrator struct {
	completer Completer
	model     string
	logger    zerolog.Logger
}

// Completer is the chat-completion dependency, satisfied by llm.Client.
type Completer interface {
	Complete(ctx context.Context, params openai.ChatCompletionNewParams) (*openai.ChatCompletion, error)
}

// New returns an Orchestrator issuing completions for model.
func New(completer Completer, model string, logger zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		completer: completer,
		model:     model,
		logger:    logger.With().Str("component", "turn").Str("model", model).Logger(),
	}
}

// Run executes one turn: submit the transcript and tools, require exactly
// one tool call matching expect, execute it against sess, and return the
// transcript extended with the assistant message(s) and the tool result.
//
// On success the returned transcript ends with the tool-role message whose
// tool_call_id is the originating call's ID. On failure Run returns a nil
// transcript and the input slice is left untouched; no partial execution is
// visible to the caller.
func (o *Orchestrator) Run(
	ctx context.Context,
	transcript []openai.ChatCompletionMessageParamUnion,
	tools []openai.ChatCompletionToolUnionParam,
	sess session.Session,
	expect Expectation,
) ([]openai.ChatCompletionMessageParamUnion, error) {
	resp, err := o.completer.Complete(ctx, openai.ChatCompletionNewParams{
		Model:    o.model,
		Messages: transcript,
		Tools:    tools,
	})
	if err != nil {
		return nil, err
	}

	// Work on a copy so a failed turn never leaks assistant messages into
	// the caller's transcript.
	next := make([]openai.ChatCompletionMessageParamUnion, len(transcript), len(transcript)+len(resp.Choices)+1)
	copy(next, transcript)

	var calls []openai.ChatCompletionMessageToolCallUnion
	for _, choice := range resp.Choices {
		next = append(next, choice.Message.ToParam())
		calls = append(calls, choice.Message.ToolCalls...)
	}

	if len(calls) != 1 {
		return nil, fmt.Errorf("%w, got %d", ErrToolCallCount, len(calls))
	}
	call := calls[0]

	if call.Function.Name != expect.Tool {
		return nil, fmt.Errorf("%w: got %q, want %q", ErrToolName, call.Function.Name, expect.Tool)
	}

	args, err := decodeArguments(call.Function.Arguments)
	if err != nil {
		return nil, err
	}
	if err := matchArguments(args, expect.Args); err != nil {
		return nil, err
	}

	o.logger.Debug().Str("tool", call.Function.Name).Interface("args", args).Msg("executing tool call")

	result, err := sess.CallTool(ctx, call.Function.Name, args)
	if err != nil {
		return nil, err
	}
	if len(result.Content) != 1 || result.Content[0].Type != "text" {
		return nil, fmt.Errorf("%w: got %d items", ErrToolResult, len(result.Content))
	}

	next = append(next, openai.ToolMessage(result.Content[0].Text, call.ID))
	return next, nil
}

// decodeArguments parses the model-supplied argument payload. Only a truly
// empty payload means no arguments; anything else, whitespace included, must
// decode as a JSON object.
func decodeArguments(payload string) (map[string]any, error) {
	if payload == "" {
		return map[string]any{}, nil
	}
	var args map[string]any
	if err := json.Unmarshal([]byte(payload), &args); err != nil {
		return nil, fmt.Errorf("%w: decode payload: %v", ErrToolArgs, err)
	}
	return args, nil
}

// matchArguments checks every expected key for presence and exact equality.
// Subset or fuzzy matches are not accepted.
func matchArguments(got, want map[string]any) error {
	for key, wantVal := range want {
		gotVal, ok := got[key]
		if !ok {
			return fmt.Errorf("%w: missing key %q", ErrToolArgs, key)
		}
		if !jsonEqual(gotVal, wantVal) {
			return fmt.Errorf("%w: key %q: got %v, want %v", ErrToolArgs, key, gotVal, wantVal)
		}
	}
	return nil
}

// jsonEqual compares two values by their canonical JSON encoding, so that an
// expected int matches the float64 the decoder produced for the same number.
func jsonEqual(a, b any) bool {
	ab, err := json.Marshal(a)
	if err != nil {
		return false
	}
	bb, err := json.Marshal(b)
	if err != nil {
		return false
	}
	return bytes.Equal(ab, bb)
}
