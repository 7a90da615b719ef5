package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	tsErrors "github.com/harunnryd/tsuyaku/internal/errors"
	"github.com/harunnryd/tsuyaku/internal/logger"
	"github.com/harunnryd/tsuyaku/internal/model/contract"
)

// Runner validates and executes tool calls against a registry. Arguments and
// results travel as JSON text, the way they appear in canonical messages.
type Runner struct {
	registry *Registry
}

func NewRunner(registry *Registry) *Runner {
	return &Runner{registry: registry}
}

func (r *Runner) Definitions() []contract.ToolDef {
	if r == nil || r.registry == nil {
		return nil
	}
	return r.registry.Definitions()
}

// Execute handles the full lifecycle: Find Tool -> Validate -> Run -> Return Result
func (r *Runner) Execute(ctx context.Context, toolName string, arguments string) (string, error) {
	t, ok := r.registry.Get(toolName)
	if !ok {
		return "", tsErrors.NotFound(fmt.Sprintf("tool %q not found", NormalizeToolName(toolName)))
	}
	resolvedToolName := NormalizeToolName(t.Name())

	input := json.RawMessage(strings.TrimSpace(arguments))
	if len(input) == 0 {
		input = json.RawMessage("{}")
	}

	if err := ValidateInput(t.Parameters(), input); err != nil {
		slog.Warn("Tool input validation failed", "tool", resolvedToolName, "error", err)
		return "", tsErrors.InvalidInput(fmt.Sprintf("tool %s: %v", resolvedToolName, err))
	}

	start := time.Now()
	traceID := logger.GetTraceID(ctx)
	slog.Info("Executing tool", "tool", resolvedToolName, "trace_id", traceID)

	result, err := t.Execute(ctx, input)

	duration := time.Since(start)
	if err != nil {
		slog.Error("Tool execution failed", "tool", resolvedToolName, "error", err, "duration", duration, "trace_id", traceID)
		return "", tsErrors.WrapWithCategory(err, fmt.Sprintf("tool %s", resolvedToolName), tsErrors.ErrInternal)
	}

	slog.Info("Tool execution success", "tool", resolvedToolName, "duration", duration, "trace_id", traceID)
	return string(result), nil
}
