// Package harness runs declarative codec scenarios. A scenario names an
// encoded schema document, a message, and an ordered list of encode steps;
// the harness encodes the message, decodes it back off the wire, and
// renders the decoded form for comparison against a golden file.
package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario is one declarative encode/decode exercise.
type Scenario struct {
	// Name identifies the scenario and names its golden file.
	Name string `yaml:"name"`

	// Description states what the scenario demonstrates.
	Description string `yaml:"description"`

	// Schema is the path to the schema document (canonical JSON or YAML).
	Schema string `yaml:"schema"`

	// Message names the message within the schema to encode.
	Message string `yaml:"message"`

	// BufferSize overrides the encode buffer length. Zero means the
	// default. Small values force bounds violations on purpose.
	BufferSize int `yaml:"buffer_size,omitempty"`

	// Encode is the ordered list of encode steps. Order matters for
	// groups and var-data, which share a forward cursor.
	Encode []EncodeStep `yaml:"encode"`

	// Expect describes the expected outcome. The zero value expects a
	// clean round trip.
	Expect ExpectClause `yaml:"expect,omitempty"`
}

// EncodeStep writes one construct. Exactly one of Field, Group or Var
// must be set.
type EncodeStep struct {
	// Field names a fixed-block field. Value carries its scalar, string
	// or enum-member value; Choices carries set choices to switch on.
	Field   string   `yaml:"field,omitempty"`
	Value   any      `yaml:"value,omitempty"`
	Choices []string `yaml:"choices,omitempty"`

	// Group names a repeating group; Rows carries one field map per
	// element.
	Group string           `yaml:"group,omitempty"`
	Rows  []map[string]any `yaml:"rows,omitempty"`

	// Var names a var-data element; Value must be a string.
	Var string `yaml:"var,omitempty"`
}

// ExpectClause describes the expected outcome of a scenario.
type ExpectClause struct {
	// Violation is the expected violation code, such as
	// "RANGE_VIOLATION". Empty expects success.
	Violation string `yaml:"violation,omitempty"`

	// Construct, when set, is the expected construct name on the
	// violation.
	Construct string `yaml:"construct,omitempty"`
}

// LoadScenario reads and parses a scenario YAML file. Unknown fields are
// rejected so typos surface as load errors rather than silent no-ops.
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

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// LoadScenarioWithBasePath reads and parses a scenario YAML file,
// resolving a relative schema path against the provided base path.
func LoadScenarioWithBasePath(path, basePath string) (*Scenario, error) {
	scenario, err := LoadScenario(path)
	if err != nil {
		return nil, err
	}

	if scenario.Schema != "" && basePath != "" && !filepath.IsAbs(scenario.Schema) {
		scenario.Schema = filepath.Join(basePath, scenario.Schema)
	}

	return scenario, nil
}

// validateScenario checks that required fields are present and that each
// encode step names exactly one construct.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Schema == "" {
		return fmt.Errorf("schema is required")
	}

	if s.Message == "" {
		return fmt.Errorf("message is required")
	}

	for i, step := range s.Encode {
		set := 0
		if step.Field != "" {
			set++
		}
		if step.Group != "" {
			set++
		}
		if step.Var != "" {
			set++
		}
		if set != 1 {
			return fmt.Errorf("encode step %d: exactly one of field, group or var must be set", i)
		}
		if step.Group != "" && step.Value != nil {
			return fmt.Errorf("encode step %d: group steps take rows, not value", i)
		}
		if step.Field == "" && len(step.Choices) > 0 {
			return fmt.Errorf("encode step %d: choices apply to field steps only", i)
		}
	}

	return nil
}
