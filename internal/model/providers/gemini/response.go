package gemini

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	tsErrors "github.com/harunnryd/tsuyaku/internal/errors"
	"github.com/harunnryd/tsuyaku/internal/model/contract"

	"github.com/oklog/ulid/v2"
)

// DecodeResponse parses a raw generateContent body and converts it.
func DecodeResponse(raw []byte) (*contract.CompletionResponse, error) {
	var resp Response
	if err := decodeJSON(raw, &resp); err != nil {
		return nil, tsErrors.Malformed("response body is not valid JSON", err)
	}
	return ConvertResponse(&resp)
}

// ConvertResponse turns the first candidate of a vendor reply into a
// canonical response. Later candidates are ignored.
func ConvertResponse(resp *Response) (*contract.CompletionResponse, error) {
	if resp == nil {
		return nil, tsErrors.Malformed("response is nil", nil)
	}
	if len(resp.Candidates) == 0 {
		return nil, tsErrors.Malformed("response has no candidates", nil)
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil {
		return nil, tsErrors.Malformed("candidate 0 has no content", fmt.Errorf("finish reason %q", candidate.FinishReason))
	}
	if len(candidate.Content.Parts) == 0 {
		return nil, tsErrors.Malformed("candidate 0 has no parts", fmt.Errorf("finish reason %q", candidate.FinishReason))
	}

	ids := newCallIDSource()
	var text strings.Builder
	var toolCalls []*contract.ToolCall

	for i, part := range candidate.Content.Parts {
		if part.FunctionCall != nil {
			args := part.FunctionCall.Args
			if args == nil {
				args = map[string]interface{}{}
			}
			argsJSON, err := json.Marshal(args)
			if err != nil {
				return nil, tsErrors.Malformed(fmt.Sprintf("part %d: function call args are not serializable", i), err)
			}

			id := part.FunctionCall.ID
			if id == "" {
				id = ids.next()
			}
			toolCalls = append(toolCalls, &contract.ToolCall{
				ID:           id,
				FunctionName: part.FunctionCall.Name,
				Arguments:    string(argsJSON),
			})
			continue
		}
		if part.Text != nil && !part.Thought {
			text.WriteString(*part.Text)
		}
	}

	out := &contract.CompletionResponse{
		Message: contract.ResponseMessage{Role: contract.RoleAssistant},
		Model:   resp.ModelVersion,
	}
	if resp.UsageMetadata != nil {
		out.Usage = &contract.Usage{
			PromptTokens:     resp.UsageMetadata.PromptTokenCount,
			CompletionTokens: resp.UsageMetadata.CandidatesTokenCount,
			TotalTokens:      resp.UsageMetadata.TotalTokenCount,
		}
	}

	// Tool calls take priority over any text in the same turn.
	if len(toolCalls) > 0 {
		out.Message.ToolCalls = toolCalls
		out.FinishReason = contract.FinishToolCalls
		return out, nil
	}

	content := text.String()
	out.Message.Content = &content
	out.FinishReason = contract.FinishStop
	return out, nil
}

// callIDSource issues ids that are unique and increasing within one
// response, including for repeated calls to the same function.
type callIDSource struct {
	entropy io.Reader
	now     time.Time
}

func newCallIDSource() *callIDSource {
	return &callIDSource{
		entropy: ulid.Monotonic(rand.Reader, 0),
		now:     time.Now(),
	}
}

func (s *callIDSource) next() string {
	return "call_" + ulid.MustNew(ulid.Timestamp(s.now), s.entropy).String()
}
