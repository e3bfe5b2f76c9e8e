package cli

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/ujos/simple-binary-encoding/internal/codec"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid    bool     `json:"valid"`
	SchemaID int64    `json:"schemaId,omitempty"`
	Version  int64    `json:"version,omitempty"`
	Messages []string `json:"messages,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <ir-file>",
		Short: "Validate a token IR document and resolve its codecs",
		Long: `Validate the structural integrity of a token IR document, then run
full codec resolution over every message. Resolution catches layout
problems validation alone cannot see, such as a group without a usable
dimension header.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)
	traceID := uuid.NewString()

	doc, err := LoadIr(path)
	if err != nil {
		return reportLoadError(formatter, traceID, err)
	}

	formatter.VerboseLog("loaded schema %d version %d from %s", doc.ID, doc.Version, path)

	s, err := codec.ResolveSchema(doc)
	if err != nil {
		if outErr := formatter.Error(traceID, ErrCodeResolve, err.Error(), nil); outErr != nil {
			return outErr
		}
		return NewExitError(ExitFailure, "codec resolution failed")
	}

	result := ValidationResult{Valid: true, SchemaID: s.SchemaID, Version: s.SchemaVersion}
	for _, m := range s.Messages {
		result.Messages = append(result.Messages, m.Name)
	}

	if opts.Format == "json" {
		return formatter.Success(traceID, result)
	}
	return formatter.Success(traceID, fmt.Sprintf("schema %d version %d: %d message(s) resolved",
		s.SchemaID, s.SchemaVersion, len(s.Messages)))
}

// reportLoadError emits a load failure in the configured format and maps
// it to the command-error exit code.
func reportLoadError(formatter *OutputFormatter, traceID string, err error) error {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		if outErr := formatter.Error(traceID, loadErr.Code, loadErr.Message, nil); outErr != nil {
			return outErr
		}
		return NewExitError(ExitCommandError, loadErr.Message)
	}
	if outErr := formatter.Error(traceID, ErrCodeGeneric, err.Error(), nil); outErr != nil {
		return outErr
	}
	return WrapExitError(ExitCommandError, "load failed", err)
}
