package model

import (
	"context"

	"github.com/harunnryd/tsuyaku/internal/model/contract"
)

type ModelRouter interface {
	Route(ctx context.Context, model string, req contract.CompletionRequest) (*contract.CompletionResponse, error)
	Transcribe(ctx context.Context, model string, req contract.TranscriptionRequest) (*contract.Transcription, error)
	ListVariants() []string
	Health(ctx context.Context) error
}

type Provider interface {
	Generate(ctx context.Context, req contract.CompletionRequest) (*contract.CompletionResponse, error)
	Transcribe(ctx context.Context, req contract.TranscriptionRequest) (*contract.Transcription, error)
	Name() string
	Type() string
	Health(ctx context.Context) error
}

// ToolExecutor runs tool calls requested by the model. Arguments and results
// are JSON text.
type ToolExecutor interface {
	Definitions() []contract.ToolDef
	Execute(ctx context.Context, name string, arguments string) (string, error)
}
