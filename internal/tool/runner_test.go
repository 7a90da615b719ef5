package tool

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	tsErrors "github.com/harunnryd/tsuyaku/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubLookupTool struct {
	name  string
	err   error
	input json.RawMessage
}

func (t *stubLookupTool) Name() string        { return t.name }
func (t *stubLookupTool) Description() string { return "stub" }
func (t *stubLookupTool) Parameters() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"city": map[string]interface{}{"type": "string"},
		},
	}
}
func (t *stubLookupTool) Execute(ctx context.Context, input json.RawMessage) (json.RawMessage, error) {
	t.input = input
	if t.err != nil {
		return nil, t.err
	}
	return json.Marshal(map[string]string{"status": "ok"})
}

func TestRegistry_DefinitionsSorted(t *testing.T) {
	registry := NewRegistry(&stubLookupTool{name: "zeta"}, &stubLookupTool{name: " alpha "})

	_, ok := registry.Get("alpha")
	require.True(t, ok)

	defs := registry.Definitions()
	require.Len(t, defs, 2)
	assert.Equal(t, "alpha", defs[0].Name)
	assert.Equal(t, "zeta", defs[1].Name)
	assert.Equal(t, "stub", defs[0].Description)
	assert.Equal(t, "object", defs[0].Parameters["type"])
	assert.Equal(t, []string{"alpha", "zeta"}, registry.Names())
}

func TestRegistry_RegisterEmptyNamePanics(t *testing.T) {
	assert.Panics(t, func() {
		NewRegistry(&stubLookupTool{name: "  "})
	})
}

func TestRunnerExecute_Success(t *testing.T) {
	stub := &stubLookupTool{name: "lookup"}
	runner := NewRunner(NewRegistry(stub))

	out, err := runner.Execute(context.Background(), "lookup", `{"city":"Paris"}`)
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"ok"}`, out)
	assert.JSONEq(t, `{"city":"Paris"}`, string(stub.input))
}

func TestRunnerExecute_EmptyArgumentsBecomeObject(t *testing.T) {
	stub := &stubLookupTool{name: "lookup"}
	runner := NewRunner(NewRegistry(stub))

	_, err := runner.Execute(context.Background(), "lookup", "  ")
	require.NoError(t, err)
	assert.Equal(t, "{}", string(stub.input))
}

func TestRunnerExecute_NotFound(t *testing.T) {
	runner := NewRunner(NewRegistry())

	_, err := runner.Execute(context.Background(), "missing", "{}")
	assert.ErrorIs(t, err, tsErrors.ErrNotFound)
}

func TestRunnerExecute_InvalidInput(t *testing.T) {
	runner := NewRunner(NewRegistry(&stubLookupTool{name: "lookup"}))

	_, err := runner.Execute(context.Background(), "lookup", `{"city": 7}`)
	assert.ErrorIs(t, err, tsErrors.ErrInvalidInput)
}

func TestRunnerExecute_ToolFailureKeepsCause(t *testing.T) {
	cause := errors.New("upstream down")
	runner := NewRunner(NewRegistry(&stubLookupTool{name: "lookup", err: cause}))

	_, err := runner.Execute(context.Background(), "lookup", "{}")
	assert.ErrorIs(t, err, tsErrors.ErrInternal)
	assert.ErrorIs(t, err, cause)
}

func TestNewBuiltinRegistry(t *testing.T) {
	RegisterBuiltin("test_stub", func(options BuiltinOptions) (Tool, error) {
		return &stubLookupTool{name: "test_stub"}, nil
	})
	assert.Contains(t, BuiltinNames(), "test_stub")

	registry, err := NewBuiltinRegistry(BuiltinOptions{}, "test_stub")
	require.NoError(t, err)
	assert.Equal(t, []string{"test_stub"}, registry.Names())

	_, err = NewBuiltinRegistry(BuiltinOptions{}, "nope")
	assert.Error(t, err)

	assert.Panics(t, func() {
		RegisterBuiltin("test_stub", func(options BuiltinOptions) (Tool, error) { return nil, nil })
	})
}
