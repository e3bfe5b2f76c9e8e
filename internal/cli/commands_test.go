package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ujos/simple-binary-encoding/internal/codec"
	"github.com/ujos/simple-binary-encoding/internal/ir"
	"github.com/ujos/simple-binary-encoding/internal/testutil"
)

func fixtureDoc() *ir.Ir {
	return testutil.Doc(12, 1, ir.LittleEndian,
		testutil.Message("Trade", 5, 12,
			testutil.Field("tradeId", 1, testutil.Scalar("tradeId", ir.TypeUint64, ir.LittleEndian, 0)),
			testutil.Field("qty", 2, testutil.Scalar("qty", ir.TypeInt32, ir.LittleEndian, 8)),
			testutil.VarData("memo", 10, testutil.VarDataComposite(ir.TypeUint16, ir.LittleEndian, "UTF-8")),
		),
	)
}

func writeFixtureIr(t *testing.T) string {
	t.Helper()
	data, err := ir.Marshal(fixtureDoc())
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "trade.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func writeFixtureBuffer(t *testing.T) string {
	t.Helper()
	s, err := codec.ResolveSchema(fixtureDoc())
	require.NoError(t, err)
	mc, ok := s.Message("Trade")
	require.True(t, ok)

	buf := make([]byte, 128)
	m, err := s.WrapAndApplyHeader(mc, buf, 0)
	require.NoError(t, err)
	tradeID, _ := mc.Field("tradeId")
	qty, _ := mc.Field("qty")
	memo, _ := mc.VarDatum("memo")
	require.NoError(t, m.PutUint(tradeID, 31337))
	require.NoError(t, m.PutInt(qty, -40))
	require.NoError(t, m.PutVarDataString(memo, "block trade"))

	path := filepath.Join(t.TempDir(), "trade.bin")
	total := s.Header.EncodedLength + m.EncodedLength()
	require.NoError(t, os.WriteFile(path, buf[:total], 0o644))
	return path
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestValidateCommandAcceptsFixture(t *testing.T) {
	path := writeFixtureIr(t)
	out, err := runCommand(t, "validate", path)
	require.NoError(t, err)
	assert.Contains(t, out, "schema 12 version 1")
}

func TestValidateCommandJSON(t *testing.T) {
	path := writeFixtureIr(t)
	out, err := runCommand(t, "--format", "json", "validate", path)
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.NotEmpty(t, resp.TraceID)
}

func TestValidateCommandMissingFile(t *testing.T) {
	out, err := runCommand(t, "--format", "json", "validate", filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeNotFound, resp.Error.Code)
}

func TestDescribeCommandText(t *testing.T) {
	path := writeFixtureIr(t)
	out, err := runCommand(t, "describe", path)
	require.NoError(t, err)
	assert.Contains(t, out, "message Trade (template 5, block length 12)")
	assert.Contains(t, out, "tradeId: scalar uint64 @0")
	assert.Contains(t, out, "varData memo: uint16 prefix, max 65534 (UTF-8)")
}

func TestDescribeCommandGolden(t *testing.T) {
	path := writeFixtureIr(t)
	out, err := runCommand(t, "describe", path)
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "describe_trade", []byte(out))
}

func TestDescribeCommandUnknownMessage(t *testing.T) {
	path := writeFixtureIr(t)
	_, err := runCommand(t, "describe", path, "--message", "Nope")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestDecodeCommandDumpsMessage(t *testing.T) {
	irPath := writeFixtureIr(t)
	dataPath := writeFixtureBuffer(t)

	out, err := runCommand(t, "decode", irPath, dataPath)
	require.NoError(t, err)
	assert.Contains(t, out, `"tradeId": 31337`)
	assert.Contains(t, out, `"qty": -40`)
	assert.Contains(t, out, `"memo": "block trade"`)
}

func TestDecodeCommandTruncatedBuffer(t *testing.T) {
	irPath := writeFixtureIr(t)
	dataPath := writeFixtureBuffer(t)

	raw, err := os.ReadFile(dataPath)
	require.NoError(t, err)
	short := filepath.Join(t.TempDir(), "short.bin")
	require.NoError(t, os.WriteFile(short, raw[:len(raw)-4], 0o644))

	out, err := runCommand(t, "--format", "json", "decode", irPath, short)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeDecode, resp.Error.Code)
}

func TestRegistryPushListPull(t *testing.T) {
	irPath := writeFixtureIr(t)
	dbPath := filepath.Join(t.TempDir(), "schemas.db")

	out, err := runCommand(t, "registry", "push", irPath, "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "stored schema 12 version 1")

	out, err = runCommand(t, "registry", "list", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "schema 12 version 1")

	pullPath := filepath.Join(t.TempDir(), "pulled.json")
	_, err = runCommand(t, "registry", "pull", "--db", dbPath, "--schema-id", "12", "-o", pullPath)
	require.NoError(t, err)

	pulled, err := os.ReadFile(pullPath)
	require.NoError(t, err)
	original, err := os.ReadFile(irPath)
	require.NoError(t, err)
	assert.Equal(t, original, pulled)
}

func TestLoadIrYAML(t *testing.T) {
	doc := fixtureDoc()
	data, err := ir.Marshal(doc)
	require.NoError(t, err)

	// Canonical JSON is valid YAML; the YAML path must land on the same
	// validated document.
	path := filepath.Join(t.TempDir(), "trade.yaml")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	got, err := LoadIr(path)
	require.NoError(t, err)
	assert.Equal(t, doc.ID, got.ID)
	require.Len(t, got.MessageTokens, 1)
	assert.Equal(t, "Trade", got.MessageTokens[0][0].Name)
}
