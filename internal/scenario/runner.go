package scenario

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/openai/openai-go/v3"
	"github.com/rs/zerolog"

	"github.com/windlant/mcpbench/internal/judge"
	"github.com/windlant/mcpbench/internal/llm"
	"github.com/windlant/mcpbench/internal/schema"
	"github.com/windlant/mcpbench/internal/session"
	"github.com/windlant/mcpbench/internal/turn"
)

// ErrEmptyAnswer is returned when the model produced no final text after the
// last tool turn.
var ErrEmptyAnswer = errors.New("model returned no final answer")

// withSession is a seam for tests; production code always goes through the
// session factory.
var withSession = session.WithSession

// Report is the outcome of one scenario run against one model.
type Report struct {
	RunID       string
	Scenario    string
	Model       string
	Turns       int
	FinalAnswer string
	// Judged reports whether a rubric was evaluated; Verdict is only
	// meaningful when it is true.
	Judged  bool
	Verdict judge.Verdict
	// Transcript is the full conversation, ending with the final assistant
	// answer. Kept for debugging failed runs.
	Transcript []openai.ChatCompletionMessageParamUnion
}

// Runner executes scenarios. It holds run-wide read-only dependencies; each
// Run call opens and tears down its own session.
type Runner struct {
	completer llm.Completer
	judge     *judge.Judge
	sessCfg   session.Config
	logger    zerolog.Logger
}

// NewRunner returns a Runner connecting with sessCfg and completing with
// completer. j may be nil to skip judging (reports then carry a zero
// Verdict).
func NewRunner(completer llm.Completer, j *judge.Judge, sessCfg session.Config, logger zerolog.Logger) *Runner {
	return &Runner{
		completer: completer,
		judge:     j,
		sessCfg:   sessCfg,
		logger:    logger.With().Str("component", "scenario").Logger(),
	}
}

// Run drives sc against model: one session, the tool set fetched once, each
// step as a strictly sequential turn, a final completion, and the judged
// verdict. Any error aborts the run; the Runner never retries.
func (r *Runner) Run(ctx context.Context, model string, sc Scenario) (*Report, error) {
	report := &Report{
		RunID:    uuid.NewString(),
		Scenario: sc.Name,
		Model:    model,
	}
	logger := r.logger.With().
		Str("run_id", report.RunID).
		Str("scenario", sc.Name).
		Str("model", model).
		Logger()

	err := withSession(ctx, r.sessCfg, func(sess session.Session) error {
		descs, err := sess.ListTools(ctx)
		if err != nil {
			return err
		}
		tools, err := schema.ConvertAll(descs)
		if err != nil {
			return err
		}
		logger.Info().Int("tools", len(descs)).Msg("session ready")

		transcript := []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemOrDefault(sc.System)),
			openai.UserMessage(sc.Prompt),
		}

		orch := turn.New(r.completer, model, logger)
		for i, step := range sc.Steps {
			transcript, err = orch.Run(ctx, transcript, tools, sess, turn.Expectation{
				Tool: step.ExpectTool,
				Args: step.ExpectArgs,
			})
			if err != nil {
				return fmt.Errorf("step %d (%s): %w", i, step.ExpectTool, err)
			}
			report.Turns++
			logger.Debug().Int("step", i).Str("tool", step.ExpectTool).Msg("turn complete")
		}

		resp, err := r.completer.Complete(ctx, openai.ChatCompletionNewParams{
			Model:    model,
			Messages: transcript,
			Tools:    tools,
		})
		if err != nil {
			return err
		}
		if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
			return ErrEmptyAnswer
		}
		final := resp.Choices[0].Message
		report.FinalAnswer = final.Content
		report.Transcript = append(transcript, final.ToParam())
		return nil
	})
	if err != nil {
		return nil, err
	}

	if r.judge != nil && sc.Rubric != "" {
		verdict, err := r.judge.Evaluate(ctx, judge.Sample{
			Input:  sc.Prompt,
			Output: report.FinalAnswer,
		}, sc.Rubric)
		if err != nil {
			return nil, fmt.Errorf("judge: %w", err)
		}
		report.Judged = true
		report.Verdict = verdict
		logger.Info().Bool("pass", verdict.Pass).Str("reason", verdict.Reason).Msg("scenario judged")
	}
	return report, nil
}

func systemOrDefault(system string) string {
	if system == "" {
		return "You are a helpful assistant."
	}
	return system
}
