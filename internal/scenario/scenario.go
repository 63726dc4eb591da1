// Package scenario composes turns into judged multi-step runs. Each run owns
// its session and transcript; runs for different models are independent.
package scenario

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Step is one orchestrated turn: the tool the model must call and, when
// non-empty, the argument values it must pass.
type Step struct {
	ExpectTool string         `yaml:"expect_tool"`
	ExpectArgs map[string]any `yaml:"expect_args"`
}

// Scenario is an ordered sequence of steps plus a final judged evaluation.
type Scenario struct {
	Name   string `yaml:"name"`
	System string `yaml:"system"`
	Prompt string `yaml:"prompt"`
	Steps  []Step `yaml:"steps"`
	// Rubric is the natural-language pass criterion for the final answer.
	Rubric string `yaml:"rubric"`
}

func (s Scenario) validate() error {
	if s.Name == "" {
		return fmt.Errorf("scenario without name")
	}
	if s.Prompt == "" {
		return fmt.Errorf("scenario %s: empty prompt", s.Name)
	}
	for i, step := range s.Steps {
		if step.ExpectTool == "" {
			return fmt.Errorf("scenario %s: step %d has no expect_tool", s.Name, i)
		}
	}
	return nil
}

// LoadFile reads scenarios from a YAML file.
func LoadFile(path string) ([]Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario file: %w", err)
	}
	return parse(data)
}

func parse(data []byte) ([]Scenario, error) {
	var doc struct {
		Scenarios []Scenario `yaml:"scenarios"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse scenario file: %w", err)
	}
	if len(doc.Scenarios) == 0 {
		return nil, fmt.Errorf("scenario file defines no scenarios")
	}
	for _, sc := range doc.Scenarios {
		if err := sc.validate(); err != nil {
			return nil, err
		}
	}
	return doc.Scenarios, nil
}
