package builtin

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	toolcore "github.com/harunnryd/tsuyaku/internal/tool"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)

func fixedTimeTool() *TimeTool {
	return &TimeTool{now: func() time.Time { return fixedNow }}
}

func decode(t *testing.T, raw json.RawMessage) map[string]string {
	t.Helper()
	out := map[string]string{}
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func TestTimeTool_DefaultsToUTC(t *testing.T) {
	raw, err := fixedTimeTool().Execute(context.Background(), json.RawMessage(`{}`))
	require.NoError(t, err)

	out := decode(t, raw)
	assert.Equal(t, "2026-03-14T15:09:26Z", out["time"])
	assert.Equal(t, "UTC", out["timezone"])
	assert.Equal(t, "Saturday", out["weekday"])
}

func TestTimeTool_UTCOffset(t *testing.T) {
	raw, err := fixedTimeTool().Execute(context.Background(), json.RawMessage(`{"utc_offset":"+07:00"}`))
	require.NoError(t, err)
	assert.Equal(t, "2026-03-14T22:09:26+07:00", decode(t, raw)["time"])

	raw, err = fixedTimeTool().Execute(context.Background(), json.RawMessage(`{"utc_offset":"-05:30"}`))
	require.NoError(t, err)
	assert.Equal(t, "2026-03-14T09:39:26-05:30", decode(t, raw)["time"])
}

func TestTimeTool_InvalidOffset(t *testing.T) {
	for _, offset := range []string{"7", "+7:00", "*07:00", "+24:00", "+07:60", "+0a:00"} {
		_, err := fixedTimeTool().Execute(context.Background(), json.RawMessage(`{"utc_offset":"`+offset+`"}`))
		assert.Error(t, err, offset)
	}
}

func TestTimeTool_UnknownTimezone(t *testing.T) {
	_, err := fixedTimeTool().Execute(context.Background(), json.RawMessage(`{"timezone":"Mars/Olympus"}`))
	assert.Error(t, err)
}

func TestTimeTool_RegisteredAsBuiltin(t *testing.T) {
	registry, err := toolcore.NewBuiltinRegistry(toolcore.BuiltinOptions{
		Now: func() time.Time { return fixedNow },
	}, TimeToolName)
	require.NoError(t, err)

	out, err := toolcore.NewRunner(registry).Execute(context.Background(), TimeToolName, "")
	require.NoError(t, err)
	assert.Contains(t, out, "2026-03-14T15:09:26Z")
}
