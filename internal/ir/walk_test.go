package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tok(sig Signal, name string, span int) Token {
	return Token{Signal: sig, Name: name, SpanCount: span, Encoding: Encoding{Type: TypeUint8}}
}

func TestCollectBodySplitsCategories(t *testing.T) {
	body := []Token{
		tok(SignalBeginField, "a", 3), tok(SignalEncoding, "a", 1), tok(SignalEndField, "a", 0),
		tok(SignalBeginField, "b", 3), tok(SignalEncoding, "b", 1), tok(SignalEndField, "b", 0),
		tok(SignalBeginGroup, "g", 4),
		tok(SignalBeginComposite, "dim", 2), tok(SignalEndComposite, "dim", 0),
		tok(SignalEndGroup, "g", 0),
		tok(SignalBeginVarData, "v", 2), tok(SignalEndVarData, "v", 0),
	}

	fields, groups, varData, err := CollectBody(body)
	require.NoError(t, err)
	require.Len(t, fields, 2)
	require.Len(t, groups, 1)
	require.Len(t, varData, 1)
	assert.Equal(t, "a", fields[0][0].Name)
	assert.Equal(t, "b", fields[1][0].Name)
	assert.Len(t, groups[0], 4)
	assert.Equal(t, SignalEndGroup, groups[0][3].Signal)
}

func TestCollectBodyRejectsLeftoverToken(t *testing.T) {
	body := []Token{
		tok(SignalBeginField, "a", 3), tok(SignalEncoding, "a", 1), tok(SignalEndField, "a", 0),
		tok(SignalValidValue, "stray", 1),
	}

	_, _, _, err := CollectBody(body)
	require.Error(t, err)
	var m *MalformedError
	require.ErrorAs(t, err, &m)
	assert.Equal(t, 3, m.Index)
	assert.Equal(t, SignalValidValue, m.Got)
}

func TestCollectRejectsSpanOverrun(t *testing.T) {
	body := []Token{
		tok(SignalBeginField, "a", 9), tok(SignalEncoding, "a", 1), tok(SignalEndField, "a", 0),
	}
	_, _, _, err := CollectBody(body)
	var m *MalformedError
	require.ErrorAs(t, err, &m)
	assert.Equal(t, 0, m.Index)
}

func TestCollectRejectsMismatchedEnd(t *testing.T) {
	body := []Token{
		tok(SignalBeginField, "a", 3), tok(SignalEncoding, "a", 1), tok(SignalEndGroup, "a", 0),
	}
	_, _, _, err := CollectBody(body)
	var m *MalformedError
	require.ErrorAs(t, err, &m)
	assert.Equal(t, 2, m.Index)
	assert.Equal(t, SignalEndGroup, m.Got)
}

func TestCollectRejectsZeroSpanCount(t *testing.T) {
	body := []Token{tok(SignalBeginField, "a", 0)}
	_, _, _, err := CollectBody(body)
	var m *MalformedError
	require.ErrorAs(t, err, &m)
}

func TestMessageBodyStripsEnvelope(t *testing.T) {
	tokens := []Token{
		tok(SignalBeginMessage, "M", 4),
		tok(SignalBeginField, "a", 2), tok(SignalEndField, "a", 0),
		tok(SignalEndMessage, "M", 0),
	}
	body, err := MessageBody(tokens)
	require.NoError(t, err)
	require.Len(t, body, 2)
	assert.Equal(t, SignalBeginField, body[0].Signal)

	_, err = MessageBody(tokens[:3])
	require.Error(t, err)
	_, err = MessageBody(tokens[1:])
	require.Error(t, err)
}

func TestCollectEmptyBody(t *testing.T) {
	fields, groups, varData, err := CollectBody(nil)
	require.NoError(t, err)
	assert.Empty(t, fields)
	assert.Empty(t, groups)
	assert.Empty(t, varData)
}
