// Package sdk is the google.golang.org/genai flavour of the Gemini provider.
// Conversion goes through the parent package so both variants share one
// mapping; this package only translates between wire structs and SDK types.
package sdk

import (
	"github.com/harunnryd/tsuyaku/internal/model/contract"
	"github.com/harunnryd/tsuyaku/internal/model/providers/gemini"

	"google.golang.org/genai"
)

// Request is what the SDK call needs: the model is passed separately.
type Request struct {
	Contents []*genai.Content
	Config   *genai.GenerateContentConfig
}

// Converter is the SDK variant of the converter pair.
type Converter struct{}

var _ contract.Converter[*Request, *genai.GenerateContentResponse] = Converter{}

func (Converter) ConvertRequest(req contract.CompletionRequest) (*Request, error) {
	wire, err := gemini.BuildRequest(req)
	if err != nil {
		return nil, err
	}
	return toSDKRequest(wire), nil
}

func (Converter) ConvertResponse(resp *genai.GenerateContentResponse) (*contract.CompletionResponse, error) {
	return gemini.ConvertResponse(fromSDKResponse(resp))
}

func toSDKRequest(wire *gemini.Request) *Request {
	out := &Request{
		Contents: make([]*genai.Content, 0, len(wire.Contents)),
		Config:   &genai.GenerateContentConfig{},
	}
	for _, c := range wire.Contents {
		out.Contents = append(out.Contents, toSDKContent(c))
	}
	if wire.SystemInstruction != nil {
		out.Config.SystemInstruction = toSDKContent(*wire.SystemInstruction)
	}
	if g := wire.GenerationConfig; g != nil {
		out.Config.Temperature = genai.Ptr(float32(g.Temperature))
		out.Config.TopP = genai.Ptr(float32(g.TopP))
		out.Config.TopK = genai.Ptr(float32(g.TopK))
		out.Config.MaxOutputTokens = g.MaxOutputTokens
	}
	for _, t := range wire.Tools {
		tool := &genai.Tool{FunctionDeclarations: make([]*genai.FunctionDeclaration, 0, len(t.FunctionDeclarations))}
		for _, d := range t.FunctionDeclarations {
			decl := &genai.FunctionDeclaration{Name: d.Name, Description: d.Description}
			if d.Parameters != nil {
				decl.ParametersJsonSchema = d.Parameters
			}
			tool.FunctionDeclarations = append(tool.FunctionDeclarations, decl)
		}
		out.Config.Tools = append(out.Config.Tools, tool)
	}
	return out
}

func toSDKContent(c gemini.Content) *genai.Content {
	out := &genai.Content{Role: c.Role, Parts: make([]*genai.Part, 0, len(c.Parts))}
	for _, p := range c.Parts {
		part := &genai.Part{Thought: p.Thought}
		switch {
		case p.FunctionCall != nil:
			part.FunctionCall = &genai.FunctionCall{
				ID:   p.FunctionCall.ID,
				Name: p.FunctionCall.Name,
				Args: p.FunctionCall.Args,
			}
		case p.FunctionResponse != nil:
			part.FunctionResponse = &genai.FunctionResponse{
				ID:       p.FunctionResponse.ID,
				Name:     p.FunctionResponse.Name,
				Response: gemini.ResponseObject(p.FunctionResponse.Response),
			}
		case p.Text != nil:
			part.Text = *p.Text
		}
		out.Parts = append(out.Parts, part)
	}
	return out
}

func fromSDKResponse(resp *genai.GenerateContentResponse) *gemini.Response {
	if resp == nil {
		return nil
	}
	out := &gemini.Response{
		ModelVersion: resp.ModelVersion,
		ResponseID:   resp.ResponseID,
	}
	for _, c := range resp.Candidates {
		if c == nil {
			out.Candidates = append(out.Candidates, gemini.Candidate{})
			continue
		}
		candidate := gemini.Candidate{
			FinishReason: string(c.FinishReason),
			Index:        int(c.Index),
		}
		if c.Content != nil {
			candidate.Content = fromSDKContent(c.Content)
		}
		out.Candidates = append(out.Candidates, candidate)
	}
	if u := resp.UsageMetadata; u != nil {
		out.UsageMetadata = &gemini.UsageMetadata{
			PromptTokenCount:     int(u.PromptTokenCount),
			CandidatesTokenCount: int(u.CandidatesTokenCount),
			TotalTokenCount:      int(u.TotalTokenCount),
		}
	}
	return out
}

func fromSDKContent(c *genai.Content) *gemini.Content {
	out := &gemini.Content{Role: c.Role, Parts: make([]gemini.Part, 0, len(c.Parts))}
	for _, p := range c.Parts {
		if p == nil {
			continue
		}
		if p.FunctionCall != nil {
			out.Parts = append(out.Parts, gemini.Part{FunctionCall: &gemini.FunctionCall{
				ID:   p.FunctionCall.ID,
				Name: p.FunctionCall.Name,
				Args: p.FunctionCall.Args,
			}})
			continue
		}
		part := gemini.TextPart(p.Text)
		part.Thought = p.Thought
		out.Parts = append(out.Parts, part)
	}
	return out
}
