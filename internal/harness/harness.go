package harness

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ujos/simple-binary-encoding/internal/codec"
	"github.com/ujos/simple-binary-encoding/internal/ir"
)

// defaultBufferSize is the encode buffer length when a scenario does not
// set one.
const defaultBufferSize = 1024

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates the scenario outcome matched its expect clause.
	Pass bool `json:"pass"`

	// Dump is the rendered decoded message. Empty when encoding or
	// decoding raised a violation.
	Dump string `json:"dump,omitempty"`

	// EncodedLength is the total frame length, header included.
	EncodedLength int `json:"encoded_length,omitempty"`

	// Violation is the violation code actually raised, if any.
	Violation string `json:"violation,omitempty"`

	// Errors contains mismatch descriptions. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// AddError records a mismatch and marks the result as failed.
func (r *Result) AddError(msg string) {
	r.Errors = append(r.Errors, msg)
	r.Pass = false
}

// fieldWriter is the encode surface shared by messages and group
// elements.
type fieldWriter interface {
	Field(name string) (*codec.FieldCodec, bool)
	PutInt(f *codec.FieldCodec, value int64) error
	PutUint(f *codec.FieldCodec, value uint64) error
	PutFloat(f *codec.FieldCodec, value float64) error
	PutString(f *codec.FieldCodec, s string) error
	PutEnum(f *codec.FieldCodec, name string) error
	SetChoice(f *codec.FieldCodec, choice string, on bool) error
}

// Run executes a scenario: it encodes the message step by step, decodes
// the frame back off the buffer, and judges the outcome against the
// scenario's expect clause. Run returns an error only for harness-level
// failures (unreadable schema, unknown message, malformed steps); codec
// violations land in the Result.
func Run(scenario *Scenario) (*Result, error) {
	doc, err := loadSchemaDoc(scenario.Schema)
	if err != nil {
		return nil, err
	}

	schema, err := codec.ResolveSchema(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve schema: %w", err)
	}

	mc, ok := schema.Message(scenario.Message)
	if !ok {
		return nil, fmt.Errorf("schema declares no message %q", scenario.Message)
	}

	size := scenario.BufferSize
	if size == 0 {
		size = defaultBufferSize
	}
	buf := make([]byte, size)

	result := &Result{Pass: true}

	msg, err := schema.WrapAndApplyHeader(mc, buf, 0)
	if err != nil {
		return judge(scenario, result, err)
	}

	for i := range scenario.Encode {
		step := &scenario.Encode[i]
		if err := applyStep(msg, step); err != nil {
			if _, ok := codec.AsViolation(err); ok {
				return judge(scenario, result, err)
			}
			return nil, fmt.Errorf("encode step %d: %w", i, err)
		}
	}
	result.EncodedLength = msg.Position()

	decoded, err := schema.WrapFromHeader(buf, 0)
	if err != nil {
		return judge(scenario, result, err)
	}

	dump, err := codec.Dump(decoded)
	if err != nil {
		return judge(scenario, result, err)
	}
	result.Dump = dump

	return judge(scenario, result, nil)
}

// judge applies the scenario's expect clause to the outcome.
func judge(scenario *Scenario, result *Result, err error) (*Result, error) {
	v, isViolation := codec.AsViolation(err)
	if isViolation {
		result.Violation = string(v.Code)
	}

	want := scenario.Expect
	if want.Violation == "" {
		if err != nil {
			result.AddError(fmt.Sprintf("unexpected failure: %v", err))
		}
		return result, nil
	}

	switch {
	case err == nil:
		result.AddError(fmt.Sprintf("expected violation %s, scenario succeeded", want.Violation))
	case !isViolation:
		result.AddError(fmt.Sprintf("expected violation %s, got: %v", want.Violation, err))
	case string(v.Code) != want.Violation:
		result.AddError(fmt.Sprintf("expected violation %s, got %s: %s", want.Violation, v.Code, v.Message))
	case want.Construct != "" && v.Construct != want.Construct:
		result.AddError(fmt.Sprintf("expected violation on %q, got %q", want.Construct, v.Construct))
	}
	return result, nil
}

// loadSchemaDoc reads a schema document, dispatching on extension the
// same way the CLI loader does. Canonical JSON is the interchange form;
// YAML is accepted for hand-written fixtures.
func loadSchemaDoc(path string) (*ir.Ir, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".yaml" || ext == ".yml" {
		var doc ir.Ir
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse schema YAML: %w", err)
		}
		if err := ir.Validate(&doc); err != nil {
			return nil, fmt.Errorf("invalid schema document: %w", err)
		}
		return &doc, nil
	}

	doc, err := ir.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("invalid schema document: %w", err)
	}
	return doc, nil
}

// applyStep dispatches one encode step against the message cursor.
func applyStep(msg *codec.Message, step *EncodeStep) error {
	switch {
	case step.Field != "":
		f, ok := msg.Field(step.Field)
		if !ok {
			return fmt.Errorf("message %s declares no field %q", msg.Codec().Name, step.Field)
		}
		if len(step.Choices) > 0 {
			return putChoices(msg, f, step.Choices)
		}
		return putValue(msg, f, step.Value)

	case step.Group != "":
		gc, ok := msg.Codec().Group(step.Group)
		if !ok {
			return fmt.Errorf("message %s declares no group %q", msg.Codec().Name, step.Group)
		}
		return encodeGroup(msg, gc, step.Rows)

	case step.Var != "":
		vc, ok := msg.Codec().VarDatum(step.Var)
		if !ok {
			return fmt.Errorf("message %s declares no var-data %q", msg.Codec().Name, step.Var)
		}
		s, ok := step.Value.(string)
		if !ok {
			return fmt.Errorf("var-data %q requires a string value", step.Var)
		}
		return msg.PutVarDataString(vc, s)
	}
	return fmt.Errorf("empty encode step")
}

// encodeGroup writes the group dimension header and one element per row.
func encodeGroup(msg *codec.Message, gc *codec.GroupCodec, rows []map[string]any) error {
	g, err := msg.EncodeGroup(gc, len(rows))
	if err != nil {
		return err
	}
	for _, row := range rows {
		if err := g.Next(); err != nil {
			return err
		}
		for name, value := range row {
			f, ok := g.Field(name)
			if !ok {
				return fmt.Errorf("group %s declares no field %q", gc.Name, name)
			}
			if err := putValue(g, f, value); err != nil {
				return err
			}
		}
	}
	return nil
}

// putChoices switches on the named set choices, leaving the rest clear.
func putChoices(w fieldWriter, f *codec.FieldCodec, choices []string) error {
	for _, choice := range choices {
		if err := w.SetChoice(f, choice, true); err != nil {
			return err
		}
	}
	return nil
}

// putValue writes one field value, dispatching on the field kind and the
// primitive type class. YAML hands numbers over as int, int64, uint64 or
// float64 depending on magnitude, so every numeric class accepts all
// four.
func putValue(w fieldWriter, f *codec.FieldCodec, value any) error {
	switch f.Kind {
	case codec.KindEnum:
		name, ok := value.(string)
		if !ok {
			return fmt.Errorf("field %q: enum values are member names", f.Name)
		}
		return w.PutEnum(f, name)

	case codec.KindSet:
		return fmt.Errorf("field %q: sets take choices, not value", f.Name)

	case codec.KindComposite:
		return fmt.Errorf("field %q: composite values are not supported in scenarios", f.Name)
	}

	if s, ok := value.(string); ok {
		return w.PutString(f, s)
	}

	switch {
	case f.Type.IsFloat():
		x, err := toFloat64(value)
		if err != nil {
			return fmt.Errorf("field %q: %w", f.Name, err)
		}
		return w.PutFloat(f, x)
	case f.Type.IsUnsigned():
		x, err := toUint64(value)
		if err != nil {
			return fmt.Errorf("field %q: %w", f.Name, err)
		}
		return w.PutUint(f, x)
	default:
		x, err := toInt64(value)
		if err != nil {
			return fmt.Errorf("field %q: %w", f.Name, err)
		}
		return w.PutInt(f, x)
	}
}

func toInt64(value any) (int64, error) {
	switch x := value.(type) {
	case int:
		return int64(x), nil
	case int64:
		return x, nil
	case uint64:
		return int64(x), nil
	case float64:
		return int64(x), nil
	}
	return 0, fmt.Errorf("cannot use %T as an integer", value)
}

func toUint64(value any) (uint64, error) {
	switch x := value.(type) {
	case int:
		if x < 0 {
			return 0, fmt.Errorf("negative value %d for an unsigned field", x)
		}
		return uint64(x), nil
	case int64:
		if x < 0 {
			return 0, fmt.Errorf("negative value %d for an unsigned field", x)
		}
		return uint64(x), nil
	case uint64:
		return x, nil
	case float64:
		return uint64(x), nil
	}
	return 0, fmt.Errorf("cannot use %T as an unsigned integer", value)
}

func toFloat64(value any) (float64, error) {
	switch x := value.(type) {
	case int:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case uint64:
		return float64(x), nil
	case float64:
		return x, nil
	}
	return 0, fmt.Errorf("cannot use %T as a float", value)
}
