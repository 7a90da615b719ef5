package contract

import "io"

// Role identifies the author of a canonical message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Valid reports whether r is one of the four canonical roles.
func (r Role) Valid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant, RoleTool:
		return true
	default:
		return false
	}
}

// FinishReason tags how a completion ended.
type FinishReason string

const (
	FinishStop      FinishReason = "stop"
	FinishToolCalls FinishReason = "tool_calls"
)

// Message is one entry of a vendor-neutral conversation. A nil Content
// means the message carries no text (e.g. an assistant tool-call turn).
type Message struct {
	Role       Role        `json:"role" yaml:"role"`
	Content    *string     `json:"content" yaml:"content"`
	ToolCalls  []*ToolCall `json:"tool_calls,omitempty" yaml:"tool_calls,omitempty"`
	ToolName   string      `json:"tool_name,omitempty" yaml:"tool_name,omitempty"`
	ToolCallID string      `json:"tool_call_id,omitempty" yaml:"tool_call_id,omitempty"`
}

// Text returns the message content, or "" when it is null.
func (m Message) Text() string {
	if m.Content == nil {
		return ""
	}
	return *m.Content
}

type ToolCall struct {
	ID           string `json:"id" yaml:"id"`
	FunctionName string `json:"function_name" yaml:"function_name"`
	Arguments    string `json:"arguments" yaml:"arguments"`
}

type ToolDef struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Parameters  map[string]interface{} `json:"parameters,omitempty"`
}

type CompletionRequest struct {
	Model    string                 `json:"model"`
	Messages []Message              `json:"messages"`
	Tools    []ToolDef              `json:"tools,omitempty"`
	Options  map[string]interface{} `json:"options,omitempty"`
}

// ResponseMessage is the assistant reply. Content and ToolCalls are never
// both populated.
type ResponseMessage struct {
	Role      Role        `json:"role"`
	Content   *string     `json:"content"`
	ToolCalls []*ToolCall `json:"tool_calls,omitempty"`
}

type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type CompletionResponse struct {
	Message      ResponseMessage `json:"message"`
	FinishReason FinishReason    `json:"finish_reason"`
	Model        string          `json:"model,omitempty"`
	Usage        *Usage          `json:"usage,omitempty"`
}

// Text returns the reply content, or "" for a tool-call response.
func (r *CompletionResponse) Text() string {
	if r == nil || r.Message.Content == nil {
		return ""
	}
	return *r.Message.Content
}

// AsMessage converts the reply into a history entry so it can be sent back
// on the next turn.
func (r *CompletionResponse) AsMessage() Message {
	return Message{
		Role:      RoleAssistant,
		Content:   r.Message.Content,
		ToolCalls: r.Message.ToolCalls,
	}
}

// StringPtr is a convenience for building messages with literal content.
func StringPtr(s string) *string {
	return &s
}

// UserMessage, SystemMessage, AssistantMessage and ToolMessage build the
// common canonical messages.
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: StringPtr(content)}
}

func SystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: StringPtr(content)}
}

func AssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: StringPtr(content)}
}

func ToolMessage(toolName, toolCallID, content string) Message {
	return Message{Role: RoleTool, Content: StringPtr(content), ToolName: toolName, ToolCallID: toolCallID}
}

// TranscriptionRequest asks a provider to transcribe audio.
type TranscriptionRequest struct {
	Model    string
	Audio    io.Reader
	Language string
}

type Transcription struct {
	Text     string `json:"text"`
	Language string `json:"language,omitempty"`
}
