// Package gemini converts canonical conversations into Gemini generateContent
// payloads and Gemini replies back into canonical responses. It performs no
// I/O; the rest and sdk subpackages own the transports.
package gemini

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
)

// Vendor roles. Tool results travel as user turns.
const (
	roleUser  = "user"
	roleModel = "model"
)

// Request is the generateContent request body.
type Request struct {
	Contents          []Content         `json:"contents"`
	SystemInstruction *Content          `json:"systemInstruction,omitempty"`
	GenerationConfig  *GenerationConfig `json:"generationConfig,omitempty"`
	Tools             []Tool            `json:"tools,omitempty"`
}

// Content is one vendor turn: a role and its ordered parts.
type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts"`
}

// Part holds exactly one of Text, FunctionCall or FunctionResponse. Text is a
// pointer so that an empty text part survives encoding.
type Part struct {
	Text             *string           `json:"text,omitempty"`
	Thought          bool              `json:"thought,omitempty"`
	FunctionCall     *FunctionCall     `json:"functionCall,omitempty"`
	FunctionResponse *FunctionResponse `json:"functionResponse,omitempty"`
}

// FunctionCall is a tool invocation emitted by the model or replayed from
// history.
type FunctionCall struct {
	ID   string                 `json:"id,omitempty"`
	Name string                 `json:"name"`
	Args map[string]interface{} `json:"args,omitempty"`
}

// FunctionResponse.Response is the parsed tool output, or the raw string when
// the output was not JSON.
type FunctionResponse struct {
	ID       string      `json:"id,omitempty"`
	Name     string      `json:"name"`
	Response interface{} `json:"response"`
}

// MarshalJSON wraps non-object responses as {"result": value}; the API only
// accepts a JSON object here.
func (f FunctionResponse) MarshalJSON() ([]byte, error) {
	type alias FunctionResponse
	out := alias(f)
	out.Response = ResponseObject(f.Response)
	return json.Marshal(out)
}

// ResponseObject returns v unchanged when it is already an object, otherwise
// {"result": v}.
func ResponseObject(v interface{}) map[string]interface{} {
	if m, ok := v.(map[string]interface{}); ok {
		return m
	}
	return map[string]interface{}{"result": v}
}

// Tool groups the function declarations offered to the model.
type Tool struct {
	FunctionDeclarations []FunctionDeclaration `json:"functionDeclarations"`
}

// FunctionDeclaration describes one callable tool with a JSON schema.
type FunctionDeclaration struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Parameters  map[string]interface{} `json:"parameters,omitempty"`
}

// GenerationConfig carries the sampling parameters.
type GenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int32   `json:"maxOutputTokens"`
	TopP            float64 `json:"topP"`
	TopK            int32   `json:"topK"`
}

// Response is the generateContent reply body.
type Response struct {
	Candidates    []Candidate    `json:"candidates"`
	UsageMetadata *UsageMetadata `json:"usageMetadata,omitempty"`
	ModelVersion  string         `json:"modelVersion,omitempty"`
	ResponseID    string         `json:"responseId,omitempty"`
}

// Candidate is one completion choice. Only the first is converted.
type Candidate struct {
	Content      *Content `json:"content,omitempty"`
	FinishReason string   `json:"finishReason,omitempty"`
	Index        int      `json:"index"`
}

// UsageMetadata reports token counts for the call.
type UsageMetadata struct {
	PromptTokenCount     int `json:"promptTokenCount"`
	CandidatesTokenCount int `json:"candidatesTokenCount"`
	TotalTokenCount      int `json:"totalTokenCount"`
}

// ErrorResponse is the body Gemini returns with non-2xx statuses.
type ErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// TextPart builds a text part.
func TextPart(s string) Part {
	return Part{Text: &s}
}

// decodeJSON unmarshals data keeping numbers as json.Number, so integers
// beyond 2^53 re-encode verbatim. Trailing data after the value is an error.
func decodeJSON(data []byte, v interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return errors.New("invalid character after top-level value")
	}
	return nil
}
