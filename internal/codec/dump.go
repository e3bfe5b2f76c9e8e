package codec

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ujos/simple-binary-encoding/internal/ir"
)

// Dump renders the bound message as nested key/value text. It reads
// through the same accessors as a decode pass and consumes the shared
// cursor the same way, so a dumped flyweight must be re-wrapped before
// any further use. Rendering fails exactly where a decode would.
func Dump(m *Message) (string, error) {
	var b strings.Builder
	b.WriteByte('{')
	fmt.Fprintf(&b, "%q: %q, ", "Name", m.codec.Name)
	fmt.Fprintf(&b, "%q: %d, ", "sbeTemplateId", m.codec.TemplateID)
	fmt.Fprintf(&b, "%q: %d, ", "sbeSchemaId", m.codec.SchemaID)
	fmt.Fprintf(&b, "%q: %d, ", "sbeSchemaVersion", m.codec.SchemaVersion)
	fmt.Fprintf(&b, "%q: %d", "sbeBlockLength", m.codec.BlockLength)
	if err := dumpBody(&b, &m.body, m.codec.Fields, m.codec.Groups, m.codec.VarData); err != nil {
		return "", err
	}
	b.WriteByte('}')
	return b.String(), nil
}

func dumpBody(b *strings.Builder, body *body, fields []FieldCodec, groups []GroupCodec, varData []VarDataCodec) error {
	for i := range fields {
		b.WriteString(", ")
		if err := dumpField(b, body.view, &fields[i]); err != nil {
			return err
		}
	}
	for i := range groups {
		b.WriteString(", ")
		if err := dumpGroup(b, body, &groups[i]); err != nil {
			return err
		}
	}
	for i := range varData {
		b.WriteString(", ")
		if err := dumpVarData(b, body, &varData[i]); err != nil {
			return err
		}
	}
	return nil
}

func dumpField(b *strings.Builder, v view, f *FieldCodec) error {
	fmt.Fprintf(b, "%q: ", f.Name)
	switch f.Kind {
	case KindEnum:
		name, err := v.GetEnum(f)
		if err != nil {
			return err
		}
		fmt.Fprintf(b, "%q", name)
		return nil
	case KindSet:
		return dumpSet(b, v, f)
	case KindComposite:
		nested, err := v.Composite(f)
		if err != nil {
			return err
		}
		b.WriteByte('{')
		for i := range nested.codec.Fields {
			if i > 0 {
				b.WriteString(", ")
			}
			if err := dumpField(b, nested.view, &nested.codec.Fields[i]); err != nil {
				return err
			}
		}
		b.WriteByte('}')
		return nil
	}
	if f.Type == ir.TypeChar && f.Length > 1 {
		s, err := v.GetString(f)
		if err != nil {
			return err
		}
		fmt.Fprintf(b, "\"%s\"", escapeJSON(s))
		return nil
	}
	if f.Length > 1 {
		b.WriteByte('[')
		for i := 0; i < f.Length; i++ {
			if i > 0 {
				b.WriteString(", ")
			}
			if err := dumpScalar(b, v, f, i); err != nil {
				return err
			}
		}
		b.WriteByte(']')
		return nil
	}
	return dumpScalar(b, v, f, 0)
}

func dumpScalar(b *strings.Builder, v view, f *FieldCodec, index int) error {
	switch {
	case f.Type.IsFloat():
		x, err := v.FloatAt(f, index)
		if err != nil {
			return err
		}
		b.WriteString(strconv.FormatFloat(x, 'g', -1, 64))
	case f.Type.IsSigned():
		x, err := v.IntAt(f, index)
		if err != nil {
			return err
		}
		b.WriteString(strconv.FormatInt(x, 10))
	default:
		x, err := v.UintAt(f, index)
		if err != nil {
			return err
		}
		if f.Type == ir.TypeChar {
			fmt.Fprintf(b, "\"%s\"", escapeJSON(string(rune(x))))
			return nil
		}
		b.WriteString(strconv.FormatUint(x, 10))
	}
	return nil
}

func dumpSet(b *strings.Builder, v view, f *FieldCodec) error {
	b.WriteByte('[')
	first := true
	for _, c := range f.Set.Choices {
		on, err := v.GetChoice(f, c.Name)
		if err != nil {
			return err
		}
		if !on {
			continue
		}
		if !first {
			b.WriteString(", ")
		}
		fmt.Fprintf(b, "%q", c.Name)
		first = false
	}
	b.WriteByte(']')
	return nil
}

func dumpGroup(b *strings.Builder, body *body, gc *GroupCodec) error {
	g, err := body.DecodeGroup(gc)
	if err != nil {
		return err
	}
	fmt.Fprintf(b, "%q: [", gc.Name)
	for i := 0; g.HasNext(); i++ {
		if err := g.Next(); err != nil {
			return err
		}
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteByte('{')
		inner := &strings.Builder{}
		if err := dumpBody(inner, &g.body, gc.Fields, gc.Groups, gc.VarData); err != nil {
			return err
		}
		b.WriteString(strings.TrimPrefix(inner.String(), ", "))
		b.WriteByte('}')
	}
	b.WriteByte(']')
	return nil
}

func dumpVarData(b *strings.Builder, body *body, v *VarDataCodec) error {
	if v.CharacterEncoding == "" {
		data, err := body.claimVarData(v)
		if err != nil {
			return err
		}
		fmt.Fprintf(b, "%q: \"%d bytes of raw data\"", v.Name, len(data))
		return nil
	}
	s, err := body.VarDataEscapedString(v)
	if err != nil {
		return err
	}
	fmt.Fprintf(b, "%q: \"%s\"", v.Name, s)
	return nil
}
