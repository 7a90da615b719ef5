package gemini

import (
	"fmt"
	"strings"

	tsErrors "github.com/harunnryd/tsuyaku/internal/errors"
	"github.com/harunnryd/tsuyaku/internal/model/contract"
)

// BuildRequest converts a completion request into a complete generateContent
// payload: turns, system instruction, generation config and tools.
func BuildRequest(req contract.CompletionRequest) (*Request, error) {
	contents, system, err := ConvertRequest(req.Messages)
	if err != nil {
		return nil, err
	}

	return &Request{
		Contents:          contents,
		SystemInstruction: system,
		GenerationConfig:  ExtractGenerationParams(req.Options).Config(),
		Tools:             ConvertTools(req.Tools),
	}, nil
}

// ConvertRequest maps canonical messages onto vendor turns. Message order is
// preserved; system messages never become turns and the last one wins.
func ConvertRequest(messages []contract.Message) ([]Content, *Content, error) {
	contents := make([]Content, 0, len(messages))
	var system *Content

	for i, m := range messages {
		switch m.Role {
		case contract.RoleSystem:
			system = &Content{Parts: []Part{TextPart(m.Text())}}
		case contract.RoleUser:
			contents = append(contents, Content{Role: roleUser, Parts: []Part{TextPart(m.Text())}})
		case contract.RoleAssistant:
			if len(m.ToolCalls) == 0 {
				contents = append(contents, Content{Role: roleModel, Parts: []Part{TextPart(m.Text())}})
				continue
			}
			for j, tc := range m.ToolCalls {
				if tc == nil {
					return nil, nil, tsErrors.InvalidInput(fmt.Sprintf("message %d: tool call %d is nil", i, j))
				}
				args, err := parseArguments(tc.Arguments)
				if err != nil {
					return nil, nil, tsErrors.InvalidInput(fmt.Sprintf("message %d: tool call %q has malformed arguments: %v", i, tc.FunctionName, err))
				}
				contents = append(contents, Content{
					Role:  roleModel,
					Parts: []Part{{FunctionCall: &FunctionCall{Name: tc.FunctionName, Args: args}}},
				})
			}
		case contract.RoleTool:
			contents = append(contents, Content{
				Role: roleUser,
				Parts: []Part{{FunctionResponse: &FunctionResponse{
					Name:     m.ToolName,
					Response: parseToolOutput(m.Text()),
				}}},
			})
		default:
			return nil, nil, tsErrors.InvalidInput(fmt.Sprintf("message %d: unsupported role %q", i, m.Role))
		}
	}

	return contents, system, nil
}

// ConvertTools declares one function per tool, keeping input order.
func ConvertTools(tools []contract.ToolDef) []Tool {
	if len(tools) == 0 {
		return nil
	}

	out := make([]Tool, 0, len(tools))
	for _, t := range tools {
		out = append(out, Tool{
			FunctionDeclarations: []FunctionDeclaration{{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters,
			}},
		})
	}
	return out
}

func parseArguments(raw string) (map[string]interface{}, error) {
	if strings.TrimSpace(raw) == "" {
		return map[string]interface{}{}, nil
	}

	var args map[string]interface{}
	if err := decodeJSON([]byte(raw), &args); err != nil {
		return nil, err
	}
	if args == nil {
		args = map[string]interface{}{}
	}
	return args, nil
}

// parseToolOutput never fails: output that is not JSON is passed through as
// the raw string.
func parseToolOutput(raw string) interface{} {
	var v interface{}
	if err := decodeJSON([]byte(raw), &v); err != nil {
		return raw
	}
	return v
}
