package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario defines one generation run and its expected outputs.
type Scenario struct {
	// Name uniquely identifies this scenario.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// IDL is the document to generate from, relative to the scenario file.
	IDL string `yaml:"idl"`

	// Targets are the requested target identifiers.
	Targets []string `yaml:"targets"`

	// Assertions validate the rendered outputs.
	Assertions []Assertion `yaml:"assertions"`
}

// Assertion validates one rendered output.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Output is the output path as planned (e.g. "src/webnn/webnn_proc.c").
	Output string `yaml:"output"`

	// Text is the fragment for output_contains, output_absent and output_count.
	Text string `yaml:"text,omitempty"`

	// Texts are the fragments for output_order.
	Texts []string `yaml:"texts,omitempty"`

	// Count is the exact number of occurrences for output_count.
	Count int `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertOutputContains = "output_contains"
	AssertOutputAbsent   = "output_absent"
	AssertOutputOrder    = "output_order"
	AssertOutputCount    = "output_count"
	AssertOutputExists   = "output_exists"
)

// LoadScenario reads and parses a scenario YAML file. Unknown fields are
// rejected so typos fail loudly. The IDL path is resolved against the
// scenario's directory.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.IDL != "" && !filepath.IsAbs(scenario.IDL) {
		scenario.IDL = filepath.Join(filepath.Dir(path), scenario.IDL)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// LoadScenarios loads every *.yaml scenario in dir, in file-name order.
func LoadScenarios(dir string) ([]*Scenario, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, err
	}
	scenarios := make([]*Scenario, 0, len(paths))
	for _, p := range paths {
		s, err := LoadScenario(p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(p), err)
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.IDL == "" {
		return fmt.Errorf("idl is required")
	}
	if _, err := os.Stat(s.IDL); os.IsNotExist(err) {
		return fmt.Errorf("idl file not found: %s", s.IDL)
	}

	if len(s.Targets) == 0 {
		return fmt.Errorf("targets list is required and must be non-empty")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}
	if a.Output == "" {
		return fmt.Errorf("assertions[%d]: output is required", index)
	}

	switch a.Type {
	case AssertOutputContains, AssertOutputAbsent:
		if a.Text == "" {
			return fmt.Errorf("assertions[%d]: text is required for %s", index, a.Type)
		}
	case AssertOutputOrder:
		if len(a.Texts) < 2 {
			return fmt.Errorf("assertions[%d]: texts needs at least two entries for output_order", index)
		}
	case AssertOutputCount:
		if a.Text == "" {
			return fmt.Errorf("assertions[%d]: text is required for output_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for output_count", index)
		}
	case AssertOutputExists:
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
