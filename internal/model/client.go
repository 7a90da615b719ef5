package model

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/harunnryd/tsuyaku/internal/cast"
	"github.com/harunnryd/tsuyaku/internal/config"
	tsErrors "github.com/harunnryd/tsuyaku/internal/errors"
	"github.com/harunnryd/tsuyaku/internal/logger"
	"github.com/harunnryd/tsuyaku/internal/model/contract"
)

// Option keys the client consumes itself; they are never sent to a provider.
const (
	OptionTools    = "tools"
	OptionMaxTurns = "max_turns"
)

type ClientConfig struct {
	// Model is used when a request leaves Model empty. It may carry a
	// "<variant>:" prefix.
	Model string
	// Options are generation defaults; request options override them.
	Options  map[string]interface{}
	MaxTurns int
	// System is prepended when the conversation has no system message.
	System string
}

// Client is the entry point callers use: it fills defaults, stamps a trace
// id and optionally runs the tool-calling loop.
type Client struct {
	router ModelRouter
	tools  ToolExecutor
	cfg    ClientConfig
}

func NewClient(router ModelRouter, tools ToolExecutor, cfg ClientConfig) *Client {
	if cfg.MaxTurns <= 0 {
		cfg.MaxTurns = config.DefaultChatMaxTurns
	}
	return &Client{router: router, tools: tools, cfg: cfg}
}

// NewClientFromConfig wires a client from loaded configuration.
func NewClientFromConfig(router ModelRouter, tools ToolExecutor, cfg *config.Config) *Client {
	return NewClient(router, tools, ClientConfig{
		Model:    cfg.Provider.Model,
		Options:  cfg.Generation.Options(),
		MaxTurns: cfg.Chat.MaxTurns,
		System:   cfg.Chat.System,
	})
}

// ToolInvocation records one executed tool call.
type ToolInvocation struct {
	Call   *contract.ToolCall
	Output string
	Err    error
}

type Result struct {
	Response *contract.CompletionResponse
	// Messages is the input conversation followed by every assistant reply
	// and tool result produced during the run.
	Messages    []contract.Message
	Invocations []ToolInvocation
	Turns       int
	// Exhausted is set when the last reply still asked for tools but the
	// turn budget was spent.
	Exhausted bool
}

// Complete performs a single round trip without executing tools.
func (c *Client) Complete(ctx context.Context, req contract.CompletionRequest) (*contract.CompletionResponse, error) {
	ctx, _ = logger.EnsureTraceID(ctx)
	prepared, _ := c.prepare(req)
	return c.router.Route(ctx, prepared.Model, prepared)
}

// Run sends the conversation and, while the model asks for tools, executes
// them and sends the results back, for at most max_turns model calls.
func (c *Client) Run(ctx context.Context, req contract.CompletionRequest) (*Result, error) {
	ctx, traceID := logger.EnsureTraceID(ctx)
	prepared, maxTurns := c.prepare(req)

	result := &Result{Messages: prepared.Messages}
	for turn := 1; turn <= maxTurns; turn++ {
		prepared.Messages = result.Messages
		resp, err := c.router.Route(ctx, prepared.Model, prepared)
		if err != nil {
			return nil, err
		}

		result.Response = resp
		result.Turns = turn
		result.Messages = append(result.Messages, resp.AsMessage())

		if resp.FinishReason != contract.FinishToolCalls || c.tools == nil {
			return result, nil
		}
		if turn == maxTurns {
			result.Exhausted = true
			slog.Warn("Tool loop stopped at turn limit", "max_turns", maxTurns, "pending_calls", len(resp.Message.ToolCalls), "trace_id", traceID)
			return result, nil
		}

		for _, call := range resp.Message.ToolCalls {
			if err := ctx.Err(); err != nil {
				return nil, tsErrors.Wrap(err, "tool loop cancelled")
			}
			output, execErr := c.tools.Execute(ctx, call.FunctionName, call.Arguments)
			if execErr != nil {
				slog.Warn("Tool call failed, reporting error to model", "tool", call.FunctionName, "error", execErr, "trace_id", traceID)
				output = toolErrorOutput(execErr)
			}
			result.Invocations = append(result.Invocations, ToolInvocation{Call: call, Output: output, Err: execErr})
			result.Messages = append(result.Messages, contract.ToolMessage(call.FunctionName, call.ID, output))
		}
	}

	return result, nil
}

// prepare fills model, system prompt, tools and options. It never mutates
// the caller's slices or maps.
func (c *Client) prepare(req contract.CompletionRequest) (contract.CompletionRequest, int) {
	out := req
	if out.Model == "" {
		out.Model = c.cfg.Model
	}

	out.Messages = make([]contract.Message, 0, len(req.Messages)+1)
	if c.cfg.System != "" && !hasSystemMessage(req.Messages) {
		out.Messages = append(out.Messages, contract.SystemMessage(c.cfg.System))
	}
	out.Messages = append(out.Messages, req.Messages...)

	maxTurns := c.cfg.MaxTurns
	options := make(map[string]interface{}, len(c.cfg.Options)+len(req.Options))
	for k, v := range c.cfg.Options {
		options[k] = v
	}
	for k, v := range req.Options {
		switch k {
		case OptionTools:
			if defs, ok := v.([]contract.ToolDef); ok && len(out.Tools) == 0 {
				out.Tools = defs
			}
		case OptionMaxTurns:
			if n, ok := cast.ToInt64(v); ok && n > 0 {
				maxTurns = int(n)
			}
		default:
			options[k] = v
		}
	}
	out.Options = options

	if len(out.Tools) == 0 && c.tools != nil {
		out.Tools = c.tools.Definitions()
	}
	return out, maxTurns
}

func hasSystemMessage(messages []contract.Message) bool {
	for _, m := range messages {
		if m.Role == contract.RoleSystem {
			return true
		}
	}
	return false
}

func toolErrorOutput(err error) string {
	raw, _ := json.Marshal(map[string]string{"error": err.Error()})
	return string(raw)
}
