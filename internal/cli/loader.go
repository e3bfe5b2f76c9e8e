package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ujos/simple-binary-encoding/internal/ir"
)

// Error codes for CLI responses.
const (
	ErrCodeGeneric    = "E001" // Generic/unknown error
	ErrCodeReadFailed = "E002" // File read error
	ErrCodeParse      = "E003" // IR document parse error
	ErrCodeInvalidIR  = "E004" // IR structural validation failed
	ErrCodeNotFound   = "E005" // Path not found

	ErrCodeResolve        = "E101" // Codec resolution failed
	ErrCodeUnknownMessage = "E102" // No such message in schema
	ErrCodeDecode         = "E103" // Decode/dump failed
	ErrCodeRegistry       = "E104" // Registry operation failed
)

// LoadError reports a failure to load an IR document, carrying the CLI
// error code for the response envelope.
type LoadError struct {
	Code    string
	Message string
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadIr reads a token IR document from a JSON or YAML file. JSON goes
// through the canonical unmarshal path; YAML documents are validated the
// same way after parsing. The extension selects the parser.
func LoadIr(path string) (*ir.Ir, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("IR file not found: %s", path)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeReadFailed, Message: fmt.Sprintf("error reading %s: %v", path, err)}
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var doc ir.Ir
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, &LoadError{Code: ErrCodeParse, Message: fmt.Sprintf("parse %s: %v", path, err)}
		}
		if err := ir.Validate(&doc); err != nil {
			return nil, &LoadError{Code: ErrCodeInvalidIR, Message: err.Error()}
		}
		return &doc, nil
	default:
		doc, err := ir.Unmarshal(data)
		if err != nil {
			return nil, &LoadError{Code: ErrCodeInvalidIR, Message: err.Error()}
		}
		return doc, nil
	}
}
