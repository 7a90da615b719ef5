// Package builtin holds the tools available to the chat loop without any
// configuration. Importing it registers them with the tool catalog.
package builtin

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	toolcore "github.com/harunnryd/tsuyaku/internal/tool"
)

func init() {
	toolcore.RegisterBuiltin(TimeToolName, func(options toolcore.BuiltinOptions) (toolcore.Tool, error) {
		return &TimeTool{now: options.Now}, nil
	})
}

const TimeToolName = "get_time"

// TimeTool reports the current time, optionally in another zone.
type TimeTool struct {
	now func() time.Time
}

func (t *TimeTool) Name() string {
	return TimeToolName
}

func (t *TimeTool) Description() string {
	return "Get the current date and time. Pass an IANA timezone or a UTC offset to localize it."
}

func (t *TimeTool) Parameters() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"timezone": map[string]interface{}{
				"type":        "string",
				"description": "IANA timezone such as Asia/Tokyo (optional)",
			},
			"utc_offset": map[string]interface{}{
				"type":        "string",
				"description": "UTC offset like +07:00 (optional, ignored when timezone is set)",
			},
		},
		"additionalProperties": false,
	}
}

func (t *TimeTool) Execute(ctx context.Context, input json.RawMessage) (json.RawMessage, error) {
	var args struct {
		Timezone  string `json:"timezone"`
		UTCOffset string `json:"utc_offset"`
	}
	if len(input) > 0 {
		if err := json.Unmarshal(input, &args); err != nil {
			return nil, fmt.Errorf("invalid input: %w", err)
		}
	}

	loc, err := resolveLocation(strings.TrimSpace(args.Timezone), strings.TrimSpace(args.UTCOffset))
	if err != nil {
		return nil, err
	}

	now := time.Now
	if t.now != nil {
		now = t.now
	}
	current := now().In(loc)

	return json.Marshal(map[string]string{
		"time":     current.Format(time.RFC3339),
		"timezone": loc.String(),
		"weekday":  current.Weekday().String(),
	})
}

func resolveLocation(timezone, offset string) (*time.Location, error) {
	if timezone != "" {
		loc, err := time.LoadLocation(timezone)
		if err != nil {
			return nil, fmt.Errorf("unknown timezone %q", timezone)
		}
		return loc, nil
	}
	if offset == "" {
		return time.UTC, nil
	}
	seconds, err := parseUTCOffset(offset)
	if err != nil {
		return nil, err
	}
	return time.FixedZone("UTC"+offset, seconds), nil
}

func parseUTCOffset(offset string) (int, error) {
	if len(offset) != 6 || offset[3] != ':' {
		return 0, fmt.Errorf("invalid utc_offset format %q", offset)
	}
	if offset[0] != '+' && offset[0] != '-' {
		return 0, fmt.Errorf("invalid utc_offset sign %q", offset)
	}
	for _, i := range []int{1, 2, 4, 5} {
		if offset[i] < '0' || offset[i] > '9' {
			return 0, fmt.Errorf("invalid utc_offset format %q", offset)
		}
	}

	hours := int(offset[1]-'0')*10 + int(offset[2]-'0')
	minutes := int(offset[4]-'0')*10 + int(offset[5]-'0')
	if hours > 23 || minutes > 59 {
		return 0, fmt.Errorf("invalid utc_offset value %q", offset)
	}

	totalSeconds := hours*3600 + minutes*60
	if offset[0] == '-' {
		totalSeconds = -totalSeconds
	}
	return totalSeconds, nil
}
