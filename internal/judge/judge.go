// Package judge scores a model's final answer against a natural-language
// rubric using a second model constrained to a boolean verdict.
package judge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"

	"github.com/windlant/mcpbench/internal/llm"
)

const systemPrompt = `You are an evaluator. You receive a user prompt, a model's final answer, and a rubric.
Decide whether the answer satisfies the rubric.
Respond with a single JSON object and nothing else: {"pass": true|false, "reason": "<one sentence>"}`

// ErrNoVerdict is returned when the judge model's reply holds no parseable
// verdict object.
var ErrNoVerdict = errors.New("no verdict in judge response")

// Sample is the pair under evaluation.
type Sample struct {
	Input  string // the original user prompt
	Output string // the model's final answer
}

// Verdict is the judge's decision.
type Verdict struct {
	Pass   bool   `json:"pass"`
	Reason string `json:"reason"`
}

// Judge wraps a completer and a model identifier.
type Judge struct {
	completer llm.Completer
	model     string
}

// New returns a Judge scoring with model.
func New(completer llm.Completer, model string) *Judge {
	return &Judge{completer: completer, model: model}
}

// Evaluate asks the judge model whether s.Output satisfies rubric.
func (j *Judge) Evaluate(ctx context.Context, s Sample, rubric string) (Verdict, error) {
	user := fmt.Sprintf("Rubric: %s\n\nPrompt:\n%s\n\nAnswer:\n%s", rubric, s.Input, s.Output)

	resp, err := j.completer.Complete(ctx, openai.ChatCompletionNewParams{
		Model: j.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(user),
		},
	})
	if err != nil {
		return Verdict{}, err
	}
	if len(resp.Choices) == 0 {
		return Verdict{}, ErrNoVerdict
	}
	return parseVerdict(resp.Choices[0].Message.Content)
}

// parseVerdict extracts the verdict object from the reply, tolerating
// surrounding prose or code fences.
func parseVerdict(text string) (Verdict, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return Verdict{}, fmt.Errorf("%w: %q", ErrNoVerdict, text)
	}
	var v Verdict
	if err := json.Unmarshal([]byte(text[start:end+1]), &v); err != nil {
		return Verdict{}, fmt.Errorf("%w: %v", ErrNoVerdict, err)
	}
	return v, nil
}
