package gemini

import (
	"github.com/harunnryd/tsuyaku/internal/cast"
)

const (
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 8192
	DefaultTopP        = 0.95
	DefaultTopK        = 40
)

// Option keys recognized in CompletionRequest.Options. Anything else is ignored.
const (
	OptionTemperature = "temperature"
	OptionMaxTokens   = "max_tokens"
	OptionTopP        = "top_p"
	OptionTopK        = "top_k"
)

type GenerationParams struct {
	Temperature float64
	MaxTokens   int32
	TopP        float64
	TopK        int32
}

func DefaultGenerationParams() GenerationParams {
	return GenerationParams{
		Temperature: DefaultTemperature,
		MaxTokens:   DefaultMaxTokens,
		TopP:        DefaultTopP,
		TopK:        DefaultTopK,
	}
}

// ExtractGenerationParams reads the recognized keys from opts on top of the
// defaults. Values of the wrong type are ignored.
func ExtractGenerationParams(opts map[string]interface{}) GenerationParams {
	return DefaultGenerationParams().Apply(opts)
}

// Apply returns p overridden by the recognized keys present in opts.
func (p GenerationParams) Apply(opts map[string]interface{}) GenerationParams {
	if v, ok := opts[OptionTemperature]; ok {
		if f, ok := cast.ToFloat64(v); ok {
			p.Temperature = f
		}
	}
	if v, ok := opts[OptionMaxTokens]; ok {
		if i, ok := cast.ToInt32(v); ok {
			p.MaxTokens = i
		}
	}
	if v, ok := opts[OptionTopP]; ok {
		if f, ok := cast.ToFloat64(v); ok {
			p.TopP = f
		}
	}
	if v, ok := opts[OptionTopK]; ok {
		if i, ok := cast.ToInt32(v); ok {
			p.TopK = i
		}
	}
	return p
}

func (p GenerationParams) Config() *GenerationConfig {
	return &GenerationConfig{
		Temperature:     p.Temperature,
		MaxOutputTokens: p.MaxTokens,
		TopP:            p.TopP,
		TopK:            p.TopK,
	}
}
