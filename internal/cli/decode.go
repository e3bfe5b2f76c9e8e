package cli

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/ujos/simple-binary-encoding/internal/codec"
)

// DecodeResult carries one decoded message for JSON output.
type DecodeResult struct {
	Message       string `json:"message"`
	TemplateID    int64  `json:"templateId"`
	EncodedLength int    `json:"encodedLength"`
	Dump          string `json:"dump"`
}

// NewDecodeCommand creates the decode command.
func NewDecodeCommand(rootOpts *RootOptions) *cobra.Command {
	var offset int

	cmd := &cobra.Command{
		Use:   "decode <ir-file> <data-file>",
		Short: "Decode an encoded message buffer against a schema",
		Long: `Read the transport header at the given offset, select the message by
template id and render a structural dump of the encoding. The dump walks
groups and var-data exactly like a decode pass, so a malformed buffer
fails the same way it would fail a consumer.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDecode(rootOpts, args[0], args[1], offset, cmd)
		},
	}

	cmd.Flags().IntVar(&offset, "offset", 0, "buffer offset of the transport header")

	return cmd
}

func runDecode(opts *RootOptions, irPath, dataPath string, offset int, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)
	traceID := uuid.NewString()

	doc, err := LoadIr(irPath)
	if err != nil {
		return reportLoadError(formatter, traceID, err)
	}

	buf, err := os.ReadFile(dataPath)
	if err != nil {
		msg := fmt.Sprintf("error reading %s: %v", dataPath, err)
		if outErr := formatter.Error(traceID, ErrCodeReadFailed, msg, nil); outErr != nil {
			return outErr
		}
		return NewExitError(ExitCommandError, msg)
	}

	s, err := codec.ResolveSchema(doc)
	if err != nil {
		if outErr := formatter.Error(traceID, ErrCodeResolve, err.Error(), nil); outErr != nil {
			return outErr
		}
		return NewExitError(ExitFailure, "codec resolution failed")
	}

	m, err := s.WrapFromHeader(buf, offset)
	if err != nil {
		return reportDecodeError(formatter, traceID, err)
	}

	formatter.VerboseLog("decoding %s at offset %d, acting version %d",
		m.Codec().Name, offset, m.ActingVersion())

	dump, err := codec.Dump(m)
	if err != nil {
		return reportDecodeError(formatter, traceID, err)
	}

	if opts.Format == "json" {
		return formatter.Success(traceID, DecodeResult{
			Message:       m.Codec().Name,
			TemplateID:    m.Codec().TemplateID,
			EncodedLength: s.Header.EncodedLength + m.EncodedLength(),
			Dump:          dump,
		})
	}
	return formatter.Success(traceID, dump)
}

// reportDecodeError maps a codec violation onto the CLI error envelope,
// keeping the violation code visible to scripts.
func reportDecodeError(formatter *OutputFormatter, traceID string, err error) error {
	code := ErrCodeDecode
	var details interface{}
	if v, ok := codec.AsViolation(err); ok {
		details = map[string]interface{}{
			"violation": string(v.Code),
			"construct": v.Construct,
			"position":  v.Position,
		}
	}
	if outErr := formatter.Error(traceID, code, err.Error(), details); outErr != nil {
		return outErr
	}
	return WrapExitError(ExitFailure, "decode failed", err)
}
