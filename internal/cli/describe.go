package cli

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/ujos/simple-binary-encoding/internal/codec"
	"github.com/ujos/simple-binary-encoding/internal/ir"
	"github.com/ujos/simple-binary-encoding/internal/literal"
)

// FieldLayout describes one resolved field for output.
type FieldLayout struct {
	Name      string `json:"name"`
	ID        int64  `json:"id"`
	Kind      string `json:"kind"`
	Type      string `json:"type,omitempty"`
	Offset    int    `json:"offset"`
	Length    int    `json:"length,omitempty"`
	ByteOrder string `json:"byteOrder,omitempty"`
	NullValue string `json:"nullValue,omitempty"`
}

// GroupLayout describes one resolved repeating group for output.
type GroupLayout struct {
	Name         string        `json:"name"`
	ID           int64         `json:"id"`
	BlockLength  int           `json:"blockLength"`
	HeaderLength int           `json:"headerLength"`
	MinCount     uint64        `json:"minCount"`
	MaxCount     uint64        `json:"maxCount"`
	Fields       []FieldLayout `json:"fields,omitempty"`
	Groups       []GroupLayout `json:"groups,omitempty"`
	VarData      []VarLayout   `json:"varData,omitempty"`
}

// VarLayout describes one resolved var-data tail for output.
type VarLayout struct {
	Name         string `json:"name"`
	ID           int64  `json:"id"`
	HeaderLength int    `json:"headerLength"`
	LengthType   string `json:"lengthType"`
	MaxLength    uint64 `json:"maxLength"`
	Charset      string `json:"characterEncoding,omitempty"`
}

// MessageLayout is the full resolved contract of one message.
type MessageLayout struct {
	Name        string        `json:"name"`
	TemplateID  int64         `json:"templateId"`
	BlockLength int           `json:"blockLength"`
	Fields      []FieldLayout `json:"fields,omitempty"`
	Groups      []GroupLayout `json:"groups,omitempty"`
	VarData     []VarLayout   `json:"varData,omitempty"`
}

// NewDescribeCommand creates the describe command.
func NewDescribeCommand(rootOpts *RootOptions) *cobra.Command {
	var messageName string

	cmd := &cobra.Command{
		Use:   "describe <ir-file>",
		Short: "Show the resolved codec layout of a schema",
		Long: `Resolve a token IR document and print the derived codec contracts:
field offsets and kinds, group dimension shapes and var-data tails.
Null sentinels are shown as the source literals the renderer would emit.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDescribe(rootOpts, args[0], messageName, cmd)
		},
	}

	cmd.Flags().StringVar(&messageName, "message", "", "describe only the named message")

	return cmd
}

func runDescribe(opts *RootOptions, path, messageName string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)
	traceID := uuid.NewString()

	doc, err := LoadIr(path)
	if err != nil {
		return reportLoadError(formatter, traceID, err)
	}

	s, err := codec.ResolveSchema(doc)
	if err != nil {
		if outErr := formatter.Error(traceID, ErrCodeResolve, err.Error(), nil); outErr != nil {
			return outErr
		}
		return NewExitError(ExitFailure, "codec resolution failed")
	}

	messages := s.Messages
	if messageName != "" {
		m, ok := s.Message(messageName)
		if !ok {
			msg := fmt.Sprintf("schema has no message %q", messageName)
			if outErr := formatter.Error(traceID, ErrCodeUnknownMessage, msg, nil); outErr != nil {
				return outErr
			}
			return NewExitError(ExitCommandError, msg)
		}
		messages = []*codec.MessageCodec{m}
	}

	layouts := make([]MessageLayout, 0, len(messages))
	for _, m := range messages {
		layouts = append(layouts, messageLayout(m))
	}

	if opts.Format == "json" {
		return formatter.Success(traceID, layouts)
	}
	var b strings.Builder
	for i, l := range layouts {
		if i > 0 {
			b.WriteByte('\n')
		}
		writeMessageText(&b, l)
	}
	return formatter.Success(traceID, strings.TrimRight(b.String(), "\n"))
}

func messageLayout(m *codec.MessageCodec) MessageLayout {
	return MessageLayout{
		Name:        m.Name,
		TemplateID:  m.TemplateID,
		BlockLength: m.BlockLength,
		Fields:      fieldLayouts(m.Fields),
		Groups:      groupLayouts(m.Groups),
		VarData:     varLayouts(m.VarData),
	}
}

func fieldLayouts(fields []codec.FieldCodec) []FieldLayout {
	out := make([]FieldLayout, 0, len(fields))
	for _, f := range fields {
		l := FieldLayout{
			Name:      f.Name,
			ID:        f.ID,
			Kind:      f.Kind.String(),
			Type:      string(f.Type),
			Offset:    f.Offset,
			ByteOrder: string(f.Order),
		}
		if f.Length > 1 {
			l.Length = f.Length
		}
		if f.Presence == ir.PresenceOptional {
			if null, err := literal.Value(f.Type, f.NullVal); err == nil {
				l.NullValue = null
			}
		}
		out = append(out, l)
	}
	return out
}

func groupLayouts(groups []codec.GroupCodec) []GroupLayout {
	out := make([]GroupLayout, 0, len(groups))
	for _, g := range groups {
		out = append(out, GroupLayout{
			Name:         g.Name,
			ID:           g.ID,
			BlockLength:  g.BlockLength,
			HeaderLength: g.HeaderLength,
			MinCount:     g.MinCount,
			MaxCount:     g.MaxCount,
			Fields:       fieldLayouts(g.Fields),
			Groups:       groupLayouts(g.Groups),
			VarData:      varLayouts(g.VarData),
		})
	}
	return out
}

func varLayouts(varData []codec.VarDataCodec) []VarLayout {
	out := make([]VarLayout, 0, len(varData))
	for _, v := range varData {
		out = append(out, VarLayout{
			Name:         v.Name,
			ID:           v.ID,
			HeaderLength: v.HeaderLength,
			LengthType:   string(v.LengthType),
			MaxLength:    v.MaxLength,
			Charset:      v.CharacterEncoding,
		})
	}
	return out
}

func writeMessageText(b *strings.Builder, l MessageLayout) {
	fmt.Fprintf(b, "message %s (template %d, block length %d)\n", l.Name, l.TemplateID, l.BlockLength)
	writeBodyText(b, "  ", l.Fields, l.Groups, l.VarData)
}

func writeBodyText(b *strings.Builder, indent string, fields []FieldLayout, groups []GroupLayout, varData []VarLayout) {
	for _, f := range fields {
		fmt.Fprintf(b, "%s%s: %s %s @%d", indent, f.Name, f.Kind, f.Type, f.Offset)
		if f.Length > 1 {
			fmt.Fprintf(b, " x%d", f.Length)
		}
		if f.NullValue != "" {
			fmt.Fprintf(b, " null=%s", f.NullValue)
		}
		b.WriteByte('\n')
	}
	for _, g := range groups {
		fmt.Fprintf(b, "%sgroup %s: block %d, header %d, count [%d, %d]\n",
			indent, g.Name, g.BlockLength, g.HeaderLength, g.MinCount, g.MaxCount)
		writeBodyText(b, indent+"  ", g.Fields, g.Groups, g.VarData)
	}
	for _, v := range varData {
		fmt.Fprintf(b, "%svarData %s: %s prefix, max %d", indent, v.Name, v.LengthType, v.MaxLength)
		if v.Charset != "" {
			fmt.Fprintf(b, " (%s)", v.Charset)
		}
		b.WriteByte('\n')
	}
}
