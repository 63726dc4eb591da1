// Command mcpbench runs tool-calling scenarios from a YAML file against every
// configured model and reports judged pass/fail per run.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/windlant/mcpbench/internal/config"
	"github.com/windlant/mcpbench/internal/judge"
	"github.com/windlant/mcpbench/internal/llm"
	"github.com/windlant/mcpbench/internal/scenario"
	"github.com/windlant/mcpbench/internal/session"
)

func main() {
	scenarioFile := flag.String("scenarios", "scenarios.yaml", "Path to the scenario definitions")
	transport := flag.String("transport", "", "Override the MCP transport (stdio, sse, streamable-http)")
	model := flag.String("model", "", "Run only this model instead of the configured list")
	verbose := flag.Bool("v", false, "Enable debug logging")
	flag.Parse()

	level := zerolog.InfoLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()

	if err := run(*scenarioFile, *transport, *model, logger); err != nil {
		logger.Fatal().Err(err).Msg("mcpbench failed")
	}
}

func run(scenarioFile, transportOverride, modelOverride string, logger zerolog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if transportOverride != "" {
		cfg.Transport = transportOverride
	}
	models := cfg.Models
	if modelOverride != "" {
		models = []string{modelOverride}
	}

	scenarios, err := scenario.LoadFile(scenarioFile)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	completer := llm.New(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey)
	j := judge.New(completer, cfg.JudgeModel)
	runner := scenario.NewRunner(completer, j, session.Config{
		Transport:      cfg.Transport,
		ServerURL:      cfg.ServerURL,
		Command:        cfg.ServerCommand,
		Args:           cfg.ServerArgs,
		UpstreamURL:    cfg.UpstreamURL,
		UpstreamAPIKey: cfg.UpstreamAPIKey,
	}, logger)

	failed := 0
	for _, sc := range scenarios {
		for _, m := range models {
			report, err := runner.Run(ctx, m, sc)
			if err != nil {
				failed++
				logger.Error().Err(err).
					Str("scenario", sc.Name).Str("model", m).
					Msg("scenario errored")
				continue
			}
			if runFailed(report) {
				failed++
			}
			fmt.Printf("%-30s %-30s turns=%d %s\n",
				report.Scenario, report.Model, report.Turns, verdictLine(report))
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d scenario run(s) failed", failed)
	}
	return nil
}

// runFailed reports whether a completed run counts against the exit status.
// Runs without a rubric are never judged, so they only fail by erroring.
func runFailed(report *scenario.Report) bool {
	return report.Judged && !report.Verdict.Pass
}

func verdictLine(report *scenario.Report) string {
	if !report.Judged {
		return "ok (no rubric)"
	}
	return fmt.Sprintf("pass=%t %s", report.Verdict.Pass, report.Verdict.Reason)
}
